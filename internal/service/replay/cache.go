package replay

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/haneimo/harts-viewer/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const cacheTTL = 30 * time.Minute

// SnapshotCache memoizes built snapshots per (session, index) so rapid
// scrubbing does not pay the O(index) reconstruction cost every time.
// It is purely an accelerator: every miss or redis error falls back to
// rebuilding, and the whole session entry is purged when a new log is
// loaded.
type SnapshotCache struct {
	rdb *redis.Client
}

func NewSnapshotCache(rdb *redis.Client) *SnapshotCache {
	return &SnapshotCache{rdb: rdb}
}

func cacheKey(sessionID string) string {
	return "harts:snapshots:" + sessionID
}

func (c *SnapshotCache) Get(ctx context.Context, sessionID string, index int) (*Snapshot, bool) {
	raw, err := c.rdb.HGet(ctx, cacheKey(sessionID), strconv.Itoa(index)).Bytes()
	if err != nil {
		return nil, false
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		logger.Log.Warn("corrupt cached snapshot, rebuilding",
			zap.String("sessionID", sessionID),
			zap.Int("index", index),
			zap.Error(err),
		)
		return nil, false
	}
	return &snap, true
}

func (c *SnapshotCache) Set(ctx context.Context, sessionID string, index int, snap *Snapshot) {
	raw, err := json.Marshal(snap)
	if err != nil {
		return
	}
	key := cacheKey(sessionID)
	if err := c.rdb.HSet(ctx, key, strconv.Itoa(index), raw).Err(); err != nil {
		logger.Log.Warn("failed to cache snapshot", zap.Error(err))
		return
	}
	c.rdb.Expire(ctx, key, cacheTTL)
}

// Purge drops every cached snapshot for a session. Called on log
// replacement and session teardown.
func (c *SnapshotCache) Purge(ctx context.Context, sessionID string) {
	if err := c.rdb.Del(ctx, cacheKey(sessionID)).Err(); err != nil {
		logger.Log.Warn("failed to purge snapshot cache",
			zap.String("sessionID", sessionID),
			zap.Error(err),
		)
	}
}
