package redisstream

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
)

// Settings holds Redis Streams transport configuration for the event bus.
type Settings struct {
	Enabled  bool   `mapstructure:"redis-enabled"`
	Addr     string `mapstructure:"redis-addr"`
	Group    string `mapstructure:"redis-group"`
	Consumer string `mapstructure:"redis-consumer"`
}

func DefaultSettings() Settings {
	return Settings{
		Enabled:  false,
		Addr:     "localhost:6379",
		Group:    "pandora-watch",
		Consumer: DefaultConsumer(),
	}
}

// DefaultConsumer names the consumer after the host and process, so two
// processes never read under the same name.
func DefaultConsumer() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "pandora"
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}

func (s Settings) Validate() error {
	if !s.Enabled {
		return nil
	}
	if s.Addr == "" {
		return errors.New("redis-addr is required when redis is enabled")
	}
	if s.Group == "" || s.Consumer == "" {
		return errors.New("redis-group and redis-consumer are required when redis is enabled")
	}
	return nil
}
