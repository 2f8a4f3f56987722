package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-go-golems/pandora/pkg/chat"
	"github.com/go-go-golems/pandora/pkg/conversation"
	"github.com/go-go-golems/pandora/pkg/redisstream"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	AppName   = "pandora"
	EnvPrefix = "PANDORA"
)

// Settings is everything the commands can be configured with, from flags,
// PANDORA_* environment variables or ~/.pandora/config.yaml.
type Settings struct {
	ReplyDelay time.Duration `mapstructure:"reply-delay"`
	ReplyText  string        `mapstructure:"reply-text"`
	IDStrategy string        `mapstructure:"id-strategy"`

	LogLevel  string `mapstructure:"log-level"`
	LogFormat string `mapstructure:"log-format"`
	LogFile   string `mapstructure:"log-file"`

	Redis redisstream.Settings `mapstructure:",squash"`
}

func Defaults() Settings {
	return Settings{
		ReplyDelay: chat.DefaultReplyDelay,
		ReplyText:  chat.DefaultReply,
		IDStrategy: conversation.IDStrategyUUID,
		LogLevel:   "info",
		LogFormat:  "text",
		Redis:      redisstream.DefaultSettings(),
	}
}

// AddFlags registers the shared flags on a (persistent) flag set.
func AddFlags(fs *pflag.FlagSet) {
	d := Defaults()
	fs.Duration("reply-delay", d.ReplyDelay, "How long the agent takes to reply")
	fs.String("reply-text", d.ReplyText, "The agent's canned reply")
	fs.String("id-strategy", d.IDStrategy, "Message id strategy (uuid, counter)")
	fs.String("log-level", d.LogLevel, "Log level (trace, debug, info, warn, error)")
	fs.String("log-format", d.LogFormat, "Log format (text, json)")
	fs.String("log-file", d.LogFile, "Write logs to this file instead of stderr")
	fs.Bool("redis-enabled", d.Redis.Enabled, "Mirror conversation events to Redis Streams")
	fs.String("redis-addr", d.Redis.Addr, "Redis address host:port")
	fs.String("redis-group", d.Redis.Group, "Redis consumer group")
	fs.String("redis-consumer", d.Redis.Consumer, "Redis consumer name")
}

// NewViper returns a viper instance reading PANDORA_* variables and the
// optional config file. An explicit configFile must exist.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "could not read config file %s", configFile)
		}
		return v, nil
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, "."+AppName))
	}
	v.AddConfigPath(filepath.Join("/etc", AppName))
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "could not read config file")
		}
	}
	return v, nil
}

// Load binds the flags to v and decodes the result.
func Load(v *viper.Viper, fs *pflag.FlagSet) (Settings, error) {
	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return Settings{}, errors.Wrap(err, "could not bind flags")
		}
	}
	s := Defaults()
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, errors.Wrap(err, "could not decode settings")
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (s Settings) Validate() error {
	if s.ReplyDelay < 0 {
		return errors.Errorf("reply-delay must not be negative, got %s", s.ReplyDelay)
	}
	if strings.TrimSpace(s.ReplyText) == "" {
		return errors.New("reply-text must not be empty")
	}
	if _, err := conversation.NewIDGenerator(s.IDStrategy); err != nil {
		return err
	}
	switch s.LogFormat {
	case "text", "json":
	default:
		return errors.Errorf("unknown log-format %q", s.LogFormat)
	}
	return s.Redis.Validate()
}

// SessionOptions turns the settings into options for chat.NewSession.
// Each call returns a fresh id generator so sessions never share counters.
func (s Settings) SessionOptions() ([]chat.SessionOption, error) {
	ids, err := conversation.NewIDGenerator(s.IDStrategy)
	if err != nil {
		return nil, err
	}
	return []chat.SessionOption{
		chat.WithReplyDelay(s.ReplyDelay),
		chat.WithResponder(chat.CannedResponder{Text: s.ReplyText}),
		chat.WithIDGenerator(ids),
	}, nil
}
