package session

import (
	"context"
	"sync"

	"github.com/haneimo/harts-viewer/internal/model"
	"github.com/haneimo/harts-viewer/internal/service/replay"
	appErr "github.com/haneimo/harts-viewer/pkg/errors"
	"github.com/haneimo/harts-viewer/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service tracks the live replay sessions by id. Sessions live in
// memory only; a restart drops them (their logs can be re-opened from
// the library).
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	cache    *replay.SnapshotCache
}

func NewService(cache *replay.SnapshotCache) *Service {
	return &Service{
		sessions: make(map[string]*Session),
		cache:    cache,
	}
}

// Create builds a new session positioned at turn 0. The log must
// already be validated.
func (s *Service) Create(lg *model.GameLog) *Session {
	sess := newSession(uuid.NewString(), lg, s.cache)
	s.mu.Lock()
	s.sessions[sess.ID()] = sess
	s.mu.Unlock()

	logger.Log.Info("replay session created",
		zap.String("sessionID", sess.ID()),
		zap.Int("turns", len(lg.Turns)),
		zap.String("gameType", lg.GameType),
	)
	return sess
}

func (s *Service) Get(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, appErr.ErrSessionNotFound
	}
	return sess, nil
}

// Delete tears a session down: subscribers are closed and the cached
// snapshots are purged.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	s.mu.Unlock()
	if !ok {
		return appErr.ErrSessionNotFound
	}

	sess.mu.Lock()
	sess.closeSubscribersLocked()
	sess.mu.Unlock()
	if s.cache != nil {
		s.cache.Purge(ctx, id)
	}
	logger.Log.Info("replay session deleted", zap.String("sessionID", id))
	return nil
}
