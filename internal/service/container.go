package service

import (
	"github.com/haneimo/harts-viewer/internal/service/fetch"
	"github.com/haneimo/harts-viewer/internal/service/library"
	"github.com/haneimo/harts-viewer/internal/service/replay"
	"github.com/haneimo/harts-viewer/internal/service/session"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	Sessions *session.Service
	Library  *library.Service
	Fetch    *fetch.Service
}

func NewContainer(db *gorm.DB, rdb *redis.Client) *Container {
	var cache *replay.SnapshotCache
	if rdb != nil {
		cache = replay.NewSnapshotCache(rdb)
	}
	return &Container{
		Sessions: session.NewService(cache),
		Library:  library.NewService(db),
		Fetch:    fetch.NewService(),
	}
}
