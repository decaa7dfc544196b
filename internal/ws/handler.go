package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/haneimo/harts-viewer/internal/service/session"
	"github.com/haneimo/harts-viewer/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handler attaches rendering clients to replay sessions. A client
// receives the latest snapshot immediately on connect and one message
// per successful navigation afterwards; it may also send navigation
// commands over the same socket.
type Handler struct {
	sessions *session.Service
}

func NewHandler(sessions *session.Service) *Handler {
	return &Handler{sessions: sessions}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

func (h *Handler) HandleSessionWS(c *gin.Context) {
	sess, err := h.sessions.Get(c.Param("sessionId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Log.Error("Failed to upgrade websocket", zap.Error(err))
		return
	}

	logger.Log.Info("New WebSocket subscriber",
		zap.String("sessionID", sess.ID()),
	)

	client := newClient(c, conn, sess)
	client.run()
}

type client struct {
	conn         *websocket.Conn
	sess         *session.Session
	subscriberID string
	outbound     <-chan session.OutgoingMessage
	done         chan struct{}
	pingEvery    time.Duration
}

func newClient(c *gin.Context, conn *websocket.Conn, sess *session.Session) *client {
	conn.SetReadLimit(1 << 20)
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})
	subscriberID := uuid.NewString()
	return &client{
		conn:         conn,
		sess:         sess,
		subscriberID: subscriberID,
		outbound:     sess.Subscribe(c.Request.Context(), subscriberID),
		done:         make(chan struct{}),
		pingEvery:    25 * time.Second,
	}
}

func (c *client) run() {
	go c.writePump()
	c.readPump()
}

func (c *client) readPump() {
	defer func() {
		close(c.done)
		c.sess.Unsubscribe(c.subscriberID)
		c.conn.Close()
	}()

	for {
		mt, message, err := c.conn.ReadMessage()
		if err != nil {
			logger.Log.Info("WS read error", zap.Error(err), zap.String("sessionID", c.sess.ID()))
			return
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}

		var incoming struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(message, &incoming); err != nil {
			c.safeWrite(session.OutgoingMessage{
				Type: "error",
				Data: gin.H{"message": "invalid payload"},
			})
			continue
		}
		if incoming.Type == "" {
			continue
		}

		if err := c.handleCommand(incoming.Type, incoming.Data); err != nil {
			c.safeWrite(session.OutgoingMessage{
				Type: "error",
				Data: gin.H{"message": err.Error()},
			})
		}
	}
}

// handleCommand applies a navigation command. Rejected navigations
// come back as error messages; the broadcast of a successful one goes
// through the session's subscriber fan-out, including this client.
func (c *client) handleCommand(kind string, data json.RawMessage) error {
	ctx := context.Background()
	switch kind {
	case "step_forward":
		c.sess.StepForward(ctx)
	case "step_backward":
		c.sess.StepBackward(ctx)
	case "jump_turn":
		var body struct {
			Turn int `json:"turn"`
		}
		if err := json.Unmarshal(data, &body); err != nil {
			return err
		}
		_, err := c.sess.JumpToTurn(ctx, body.Turn)
		return err
	case "jump_round":
		var body struct {
			Round int `json:"round"`
		}
		if err := json.Unmarshal(data, &body); err != nil {
			return err
		}
		_, err := c.sess.JumpToRound(ctx, body.Round)
		return err
	case "seek":
		var body struct {
			Fraction float64 `json:"fraction"`
		}
		if err := json.Unmarshal(data, &body); err != nil {
			return err
		}
		_, err := c.sess.SeekFraction(ctx, body.Fraction)
		return err
	case "reset":
		c.sess.Reset(ctx)
	case "ping":
		c.safeWrite(session.OutgoingMessage{Type: "pong", Data: gin.H{"message": "pong"}})
	}
	return nil
}

func (c *client) writePump() {
	ticker := time.NewTicker(c.pingEvery)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.outbound:
			if !ok {
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				logger.Log.Info("WS write error", zap.Error(err), zap.String("sessionID", c.sess.ID()))
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second)); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *client) safeWrite(msg session.OutgoingMessage) {
	if err := c.conn.WriteJSON(msg); err != nil {
		logger.Log.Info("WS write error", zap.Error(err), zap.String("sessionID", c.sess.ID()))
	}
}
