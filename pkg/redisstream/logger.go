package redisstream

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// redisLogger sends go-redis' internal messages (pool and dial errors) to
// zerolog instead of stderr, which the terminal UI owns.
type redisLogger struct{}

func (redisLogger) Printf(ctx context.Context, format string, v ...interface{}) {
	log.Warn().Str("component", "redis").Msgf(format, v...)
}

var installLoggerOnce sync.Once

func installLogger() {
	installLoggerOnce.Do(func() {
		redis.SetLogger(redisLogger{})
	})
}
