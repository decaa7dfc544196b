package api

import (
	"io"
	"net/http"
	"strconv"

	"github.com/haneimo/harts-viewer/internal/config"
	"github.com/haneimo/harts-viewer/internal/middleware"
	"github.com/haneimo/harts-viewer/internal/service"
	"github.com/haneimo/harts-viewer/internal/service/replay"
	"github.com/haneimo/harts-viewer/internal/service/session"
	"github.com/haneimo/harts-viewer/internal/ws"
	pkgAuth "github.com/haneimo/harts-viewer/pkg/auth"
	"github.com/haneimo/harts-viewer/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	services *service.Container
}

func RegisterRoutes(r *gin.Engine, services *service.Container) {
	handler := &Handler{services: services}
	wsHandler := ws.NewHandler(services.Sessions)

	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{"message": "pong"})
	})

	v1 := r.Group("/harts/v1")
	{
		sessions := v1.Group("/sessions")
		{
			sessions.POST("", handler.CreateSession)
			sessions.POST("/demo", handler.CreateDemoSession)
			sessions.POST("/fetch", handler.CreateSessionFromURL)
			sessions.POST("/from-library/:id", handler.CreateSessionFromLibrary)

			sessions.GET("/:id", handler.GetSession)
			sessions.GET("/:id/snapshot", handler.GetSnapshot)
			sessions.POST("/:id/step", handler.Step)
			sessions.POST("/:id/jump/turn", handler.JumpToTurn)
			sessions.POST("/:id/jump/round", handler.JumpToRound)
			sessions.POST("/:id/seek", handler.Seek)
			sessions.POST("/:id/reset", handler.Reset)
			sessions.POST("/:id/speed", handler.SetSpeed)
			sessions.POST("/:id/load", handler.LoadIntoSession)
			sessions.DELETE("/:id", handler.DeleteSession)
		}

		libraryGroup := v1.Group("/library")
		{
			libraryGroup.GET("", handler.ListLibrary)
			libraryGroup.GET("/:id", handler.GetLibraryEntry)
			libraryGroup.POST("", handler.SaveToLibrary)
			libraryGroup.DELETE("/:id", middleware.AdminAuthRequired(), handler.DeleteLibraryEntry)
		}
	}

	adminGroup := r.Group("/admin")
	{
		adminGroup.POST("/auth/login", handler.AdminLogin)
	}

	r.GET("/ws/sessions/:sessionId", wsHandler.HandleSessionWS)
}

type fetchBody struct {
	URL string `json:"url" binding:"required"`
}

type stepBody struct {
	Direction string `json:"direction" binding:"required,oneof=forward back"`
}

type jumpTurnBody struct {
	Turn int `json:"turn" binding:"required"`
}

type jumpRoundBody struct {
	Round int `json:"round" binding:"required"`
}

type seekBody struct {
	Fraction float64 `json:"fraction"`
}

type speedBody struct {
	Speed  float64 `json:"speed"`
	Toggle bool    `json:"toggle"`
}

type loadBody struct {
	LibraryID int64 `json:"libraryId" binding:"required,min=1"`
}

type adminLoginBody struct {
	APIKey string `json:"apiKey" binding:"required"`
}

// CreateSession accepts a raw replay log in the request body (or a
// multipart upload under the "replay" field) and opens a session on
// it. A malformed log is rejected wholesale and no session is created.
func (h *Handler) CreateSession(c *gin.Context) {
	raw, err := readLogBody(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "failed to read request body")
		return
	}

	lg, err := replay.ParseGameLog(raw)
	if err != nil {
		response.FromError(c, err)
		return
	}

	sess := h.services.Sessions.Create(lg)
	response.Success(c, gin.H{
		"session":  sess.Info(),
		"snapshot": sess.Snapshot(c.Request.Context()),
	})
}

func readLogBody(c *gin.Context) ([]byte, error) {
	if file, err := c.FormFile("replay"); err == nil {
		f, err := file.Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return io.ReadAll(io.LimitReader(f, config.GlobalConfig.Fetch.MaxBodyBytes))
	}
	return io.ReadAll(io.LimitReader(c.Request.Body, config.GlobalConfig.Fetch.MaxBodyBytes))
}

func (h *Handler) CreateDemoSession(c *gin.Context) {
	sess := h.services.Sessions.Create(h.services.Fetch.DemoLog())
	response.Success(c, gin.H{
		"session":  sess.Info(),
		"snapshot": sess.Snapshot(c.Request.Context()),
	})
}

func (h *Handler) CreateSessionFromURL(c *gin.Context) {
	var body fetchBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	lg, err := h.services.Fetch.FetchLog(c.Request.Context(), body.URL)
	if err != nil {
		response.FromError(c, err)
		return
	}

	sess := h.services.Sessions.Create(lg)
	response.Success(c, gin.H{
		"session":  sess.Info(),
		"snapshot": sess.Snapshot(c.Request.Context()),
	})
}

func (h *Handler) CreateSessionFromLibrary(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	lg, err := h.services.Library.LoadGameLog(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}

	sess := h.services.Sessions.Create(lg)
	response.Success(c, gin.H{
		"session":  sess.Info(),
		"snapshot": sess.Snapshot(c.Request.Context()),
	})
}

func (h *Handler) GetSession(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	response.Success(c, sess.Info())
}

// GetSnapshot returns the display state at the current position.
// With ?validate=1 it also cross-checks the declared trick winner
// against winner-by-strength and flags a disagreement.
func (h *Handler) GetSnapshot(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	snap := sess.Snapshot(c.Request.Context())

	if c.Query("validate") == "1" {
		mismatch := false
		if snap.WinningPlayer != nil && len(snap.ActiveTrick) > 0 {
			mismatch = replay.ResolveWinnerByStrength(snap.ActiveTrick) != *snap.WinningPlayer
		}
		response.Success(c, gin.H{"snapshot": snap, "winnerMismatch": mismatch})
		return
	}
	response.Success(c, snap)
}

func (h *Handler) Step(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var body stepBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	var snap *replay.Snapshot
	if body.Direction == "forward" {
		snap = sess.StepForward(c.Request.Context())
	} else {
		snap = sess.StepBackward(c.Request.Context())
	}
	response.Success(c, snap)
}

func (h *Handler) JumpToTurn(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var body jumpTurnBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	snap, err := sess.JumpToTurn(c.Request.Context(), body.Turn)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, snap)
}

func (h *Handler) JumpToRound(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var body jumpRoundBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	snap, err := sess.JumpToRound(c.Request.Context(), body.Round)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, snap)
}

func (h *Handler) Seek(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var body seekBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	snap, err := sess.SeekFraction(c.Request.Context(), body.Fraction)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, snap)
}

func (h *Handler) Reset(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	response.Success(c, sess.Reset(c.Request.Context()))
}

func (h *Handler) SetSpeed(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var body speedBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	if body.Toggle {
		response.Success(c, gin.H{"speed": sess.ToggleSpeed()})
		return
	}
	speed, err := sess.SetSpeed(body.Speed)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"speed": speed})
}

// LoadIntoSession replaces the session's log wholesale from a library
// entry. On failure the current replay stays untouched.
func (h *Handler) LoadIntoSession(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var body loadBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	lg, err := h.services.Library.LoadGameLog(c.Request.Context(), body.LibraryID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, sess.ReplaceLog(c.Request.Context(), lg))
}

func (h *Handler) DeleteSession(c *gin.Context) {
	if err := h.services.Sessions.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{})
}

func (h *Handler) ListLibrary(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	result, err := h.services.Library.List(c.Request.Context(), page, size)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"items": result.Items, "total": result.Total})
}

func (h *Handler) GetLibraryEntry(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	entry, err := h.services.Library.Get(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, entry)
}

func (h *Handler) SaveToLibrary(c *gin.Context) {
	name := c.Query("name")
	raw, err := readLogBody(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "failed to read request body")
		return
	}

	entry, err := h.services.Library.SaveLog(c.Request.Context(), name, raw)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, entry)
}

func (h *Handler) DeleteLibraryEntry(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.services.Library.Delete(c.Request.Context(), id); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{})
}

func (h *Handler) AdminLogin(c *gin.Context) {
	var body adminLoginBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	if body.APIKey != config.GlobalConfig.Admin.APIKey {
		response.Error(c, http.StatusUnauthorized, "invalid api key")
		return
	}
	token, err := pkgAuth.GenerateAdminToken()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to issue token")
		return
	}
	response.Success(c, gin.H{"token": token})
}

func (h *Handler) session(c *gin.Context) (*session.Session, bool) {
	sess, err := h.services.Sessions.Get(c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return nil, false
	}
	return sess, true
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}
