package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	httpapi "github.com/aussiebroadwan/campus/internal/campus/http"
	"github.com/aussiebroadwan/campus/internal/campus/notify"
	"github.com/redis/go-redis/v9"
)

const redisDialTimeout = 5 * time.Second

// initNotifier picks the delivery backend and wraps it in the async queue.
// With REDIS_ADDR set messages go to a Redis stream, otherwise to the log.
// The returned check is nil unless Redis is in use.
func initNotifier(cfg Config, logger *slog.Logger) (*notify.Queue, *redis.Client, httpapi.ReadyCheck, error) {
	var (
		backend notify.Dispatcher = notify.LogDispatcher{Logger: logger}
		client  *redis.Client
		check   httpapi.ReadyCheck
	)

	if cfg.RedisAddr != "" {
		client = redis.NewClient(&redis.Options{
			Addr:        cfg.RedisAddr,
			Password:    cfg.RedisPassword,
			DialTimeout: redisDialTimeout,
		})

		ctx, cancel := context.WithTimeout(context.Background(), redisDialTimeout)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.RedisAddr, err)
		}

		backend = notify.RedisDispatcher{Client: client, Stream: cfg.NotifyStream, MaxLen: 100_000}
		check = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		logger.Info("notifications go to redis stream", "addr", cfg.RedisAddr, "stream", cfg.NotifyStream)
	} else {
		logger.Info("notifications go to the log, set REDIS_ADDR to deliver them")
	}

	q := notify.NewQueue(backend, notify.QueueConfig{
		Buffer: cfg.NotifyBuffer,
		Logger: logger,
	})
	return q, client, check, nil
}
