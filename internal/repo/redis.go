package repo

import (
	"context"

	"github.com/haneimo/harts-viewer/internal/config"
	"github.com/haneimo/harts-viewer/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var RDB *redis.Client

// InitRedis connects the optional snapshot cache backend. An empty
// addr leaves RDB nil and the service runs without caching.
func InitRedis() {
	conf := config.GlobalConfig.Redis
	if conf.Addr == "" {
		logger.Log.Info("Redis not configured, snapshot cache disabled")
		return
	}
	RDB = redis.NewClient(&redis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
	})

	if _, err := RDB.Ping(context.Background()).Result(); err != nil {
		logger.Log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
}
