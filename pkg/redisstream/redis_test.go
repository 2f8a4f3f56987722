package redisstream

import (
	"bytes"
	"context"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
)

func TestSettingsValidate(t *testing.T) {
	require.NoError(t, Settings{}.Validate())
	require.NoError(t, DefaultSettings().Validate())

	s := DefaultSettings()
	s.Enabled = true
	require.NoError(t, s.Validate())

	s.Addr = ""
	require.Error(t, s.Validate())

	s = DefaultSettings()
	s.Enabled = true
	s.Consumer = ""
	require.Error(t, s.Validate())
}

func TestTransportPublishesToStream(t *testing.T) {
	mr := miniredis.RunT(t)
	s := DefaultSettings()
	s.Enabled = true
	s.Addr = mr.Addr()

	tr, err := NewTransport(s, watermill.NopLogger{})
	require.NoError(t, err)
	defer func() { _ = tr.Close() }()

	require.NoError(t, tr.Publisher.Publish("pandora.test", message.NewMessage("m1", []byte(`{"hello":"world"}`))))

	n, err := tr.Client.XLen(context.Background(), "pandora.test").Result()
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestEnsureGroupAtTailIsIdempotent(t *testing.T) {
	mr := miniredis.RunT(t)
	s := DefaultSettings()
	s.Enabled = true
	s.Addr = mr.Addr()

	tr, err := NewTransport(s, watermill.NopLogger{})
	require.NoError(t, err)
	defer func() { _ = tr.Close() }()

	ctx := context.Background()
	require.NoError(t, EnsureGroupAtTail(ctx, tr.Client, "pandora.test", "g"))
	require.NoError(t, EnsureGroupAtTail(ctx, tr.Client, "pandora.test", "g"))
}

func TestDefaultConsumerIsPerProcess(t *testing.T) {
	c := DefaultConsumer()
	require.True(t, strings.HasSuffix(c, "-"+strconv.Itoa(os.Getpid())), c)
	require.Equal(t, c, DefaultSettings().Consumer)
}

func TestRedisLoggerWritesToZerolog(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	redisLogger{}.Printf(context.Background(), "redis: failed to dial after %d attempts", 5)
	require.Contains(t, buf.String(), "failed to dial after 5 attempts")
	require.Contains(t, buf.String(), `"component":"redis"`)
}
