package session

import (
	"context"
	"sync"

	"github.com/haneimo/harts-viewer/internal/model"
	"github.com/haneimo/harts-viewer/internal/service/replay"
	appErr "github.com/haneimo/harts-viewer/pkg/errors"
	"github.com/haneimo/harts-viewer/pkg/logger"

	"go.uber.org/zap"
)

// Speeds are the playback speeds a session cycles through. Speed is
// display-only; it never affects reconstruction.
var Speeds = []float64{0.5, 1, 1.5, 2, 3}

type OutgoingMessage struct {
	Type string      `json:"type"`
	Seq  int64       `json:"seq"`
	Data interface{} `json:"data"`
}

// Session owns the replay position for one loaded log. The log itself
// is immutable; the turn index is the only mutable state and every
// operation serializes on the session mutex, so concurrent HTTP or
// WebSocket callers cannot race a navigation. Every successful
// navigation rebuilds the snapshot and pushes it to all subscribers.
type Session struct {
	id string

	mu    sync.Mutex
	log   *model.GameLog
	index int
	speed float64
	seq   int64

	subscribers map[string]chan OutgoingMessage
	cache       *replay.SnapshotCache
}

func newSession(id string, lg *model.GameLog, cache *replay.SnapshotCache) *Session {
	return &Session{
		id:          id,
		log:         lg,
		speed:       1,
		subscribers: make(map[string]chan OutgoingMessage),
		cache:       cache,
	}
}

func (s *Session) ID() string { return s.id }

type Info struct {
	ID        string  `json:"id"`
	TurnIndex int     `json:"turnIndex"`
	TurnCount int     `json:"turnCount"`
	MaxRounds int     `json:"maxRounds"`
	Speed     float64 `json:"speed"`
	GameType  string  `json:"gameType"`
	StartTime string  `json:"startTime"`
}

func (s *Session) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Info{
		ID:        s.id,
		TurnIndex: s.index,
		TurnCount: len(s.log.Turns),
		MaxRounds: replay.MaxRounds(s.log),
		Speed:     s.speed,
		GameType:  s.log.GameType,
		StartTime: s.log.StartTime,
	}
}

// Snapshot returns the display state at the current position without
// navigating.
func (s *Session) Snapshot(ctx context.Context) *replay.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(ctx)
}

// StepForward advances one turn, clamped at the end of the log.
func (s *Session) StepForward(ctx context.Context) *replay.Snapshot {
	return s.navigate(ctx, func() (int, error) { return s.index + 1, nil })
}

// StepBackward rewinds one turn, clamped at the start of the log.
func (s *Session) StepBackward(ctx context.Context) *replay.Snapshot {
	return s.navigate(ctx, func() (int, error) { return s.index - 1, nil })
}

// JumpToTurn moves to a 1-based turn number. Out-of-range input is
// rejected without touching the position.
func (s *Session) JumpToTurn(ctx context.Context, turn int) (*replay.Snapshot, error) {
	return s.navigateErr(ctx, func() (int, error) {
		if turn < 1 || turn > len(s.log.Turns) {
			return 0, appErr.ErrTurnOutOfRange
		}
		return turn - 1, nil
	})
}

// JumpToRound moves to the first turn of the given round.
func (s *Session) JumpToRound(ctx context.Context, round int) (*replay.Snapshot, error) {
	return s.navigateErr(ctx, func() (int, error) {
		if round < 1 || round > replay.MaxRounds(s.log) {
			return 0, appErr.ErrRoundOutOfRange
		}
		target := replay.FirstTurnOfRound(s.log, round)
		if target < 0 {
			return 0, appErr.ErrRoundNotFound
		}
		return target, nil
	})
}

// SeekFraction maps a scrubber position in [0,1] onto a turn index.
func (s *Session) SeekFraction(ctx context.Context, fraction float64) (*replay.Snapshot, error) {
	return s.navigateErr(ctx, func() (int, error) {
		if fraction < 0 || fraction > 1 {
			return 0, appErr.ErrInvalidFraction
		}
		return int(fraction * float64(len(s.log.Turns))), nil
	})
}

// Reset rewinds to the first turn.
func (s *Session) Reset(ctx context.Context) *replay.Snapshot {
	return s.navigate(ctx, func() (int, error) { return 0, nil })
}

// SetSpeed sets the playback speed to one of the supported values.
func (s *Session) SetSpeed(speed float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range Speeds {
		if v == speed {
			s.speed = speed
			return s.speed, nil
		}
	}
	return s.speed, appErr.ErrInvalidSpeed
}

// ToggleSpeed cycles to the next supported playback speed.
func (s *Session) ToggleSpeed() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, v := range Speeds {
		if v == s.speed {
			s.speed = Speeds[(i+1)%len(Speeds)]
			return s.speed
		}
	}
	s.speed = Speeds[0]
	return s.speed
}

// ReplaceLog swaps in a new log wholesale: position resets to 0, the
// snapshot cache entry is purged, and subscribers get the fresh first
// snapshot. Panels from the previous log cannot leak because the
// snapshot is rebuilt from scratch.
func (s *Session) ReplaceLog(ctx context.Context, lg *model.GameLog) *replay.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = lg
	s.index = 0
	if s.cache != nil {
		s.cache.Purge(ctx, s.id)
	}
	snap := s.snapshotLocked(ctx)
	s.broadcastLocked(snap)
	return snap
}

func (s *Session) navigate(ctx context.Context, target func() (int, error)) *replay.Snapshot {
	snap, _ := s.navigateErr(ctx, target)
	return snap
}

// navigateErr applies a navigation under the session lock. A rejected
// navigation leaves index and snapshot untouched; a successful one
// clamps, rebuilds and broadcasts only when the position moved.
func (s *Session) navigateErr(ctx context.Context, target func() (int, error)) (*replay.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := target()
	if err != nil {
		return nil, err
	}
	next = replay.ClampIndex(s.log, next)
	moved := next != s.index
	s.index = next

	snap := s.snapshotLocked(ctx)
	if moved {
		s.broadcastLocked(snap)
	}
	return snap, nil
}

func (s *Session) snapshotLocked(ctx context.Context) *replay.Snapshot {
	if s.cache != nil {
		if snap, ok := s.cache.Get(ctx, s.id, s.index); ok {
			return snap
		}
	}
	snap := replay.BuildSnapshot(s.log, s.index)
	if s.cache != nil {
		s.cache.Set(ctx, s.id, s.index, snap)
	}
	return snap
}

// Subscribe registers a rendering subscriber. The latest snapshot is
// delivered immediately so a late-attaching renderer never has to poll
// for readiness.
func (s *Session) Subscribe(ctx context.Context, subscriberID string) <-chan OutgoingMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan OutgoingMessage, 8)
	s.subscribers[subscriberID] = ch
	ch <- OutgoingMessage{Type: "snapshot", Seq: s.nextSeqLocked(), Data: s.snapshotLocked(ctx)}
	return ch
}

func (s *Session) Unsubscribe(subscriberID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ch, ok := s.subscribers[subscriberID]; ok {
		delete(s.subscribers, subscriberID)
		close(ch)
	}
}

func (s *Session) broadcastLocked(snap *replay.Snapshot) {
	for id, ch := range s.subscribers {
		msg := OutgoingMessage{Type: "snapshot", Seq: s.nextSeqLocked(), Data: snap}
		select {
		case ch <- msg:
		default:
			logger.Log.Warn("dropping snapshot for slow subscriber",
				zap.String("sessionID", s.id),
				zap.String("subscriberID", id),
			)
		}
	}
}

func (s *Session) nextSeqLocked() int64 {
	s.seq++
	return s.seq
}

func (s *Session) closeSubscribersLocked() {
	for id, ch := range s.subscribers {
		delete(s.subscribers, id)
		close(ch)
	}
}
