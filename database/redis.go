package database

import (
	"context"

	"github.com/lshigami/techmentor/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"
)

// NewRedisClient builds the cache client used for interview sessions. The
// client connects lazily, so a memory-backed deployment never dials it.
func NewRedisClient(lc fx.Lifecycle, cfg *config.Config) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Closing redis client")
			return client.Close()
		},
	})
	return client
}
