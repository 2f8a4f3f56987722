package conversation

import (
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)

func TestSeedMessages(t *testing.T) {
	seed := SeedMessages(t0)
	require.Len(t, seed, 3)
	require.Equal(t, []Sender{SenderUser, SenderAgent, SenderUser},
		[]Sender{seed[0].Sender, seed[1].Sender, seed[2].Sender})
	require.Equal(t, []string{"1", "2", "3"}, []string{seed[0].ID, seed[1].ID, seed[2].ID})
	require.True(t, strings.Contains(seed[1].Content, "\n\n1. Market Overview"))
	for _, m := range seed {
		require.Equal(t, t0, m.Timestamp)
	}
}

func TestStoreAppendKeepsOrderAndNotifies(t *testing.T) {
	s, err := NewStore(SeedMessages(t0)...)
	require.NoError(t, err)

	var seen []string
	s.Observe(func(m Message) { seen = append(seen, m.ID) })

	require.NoError(t, s.Append(NewMessage("a", SenderUser, "hello", t0)))
	require.NoError(t, s.Append(NewMessage("b", SenderAgent, "hi", t0)))

	msgs := s.Messages()
	require.Len(t, msgs, 5)
	require.Equal(t, "a", msgs[3].ID)
	require.Equal(t, "b", msgs[4].ID)
	require.Equal(t, []string{"a", "b"}, seen)

	last, ok := s.Last()
	require.True(t, ok)
	require.Equal(t, "b", last.ID)

	lastUser, ok := s.LastFrom(SenderUser)
	require.True(t, ok)
	require.Equal(t, "a", lastUser.ID)
}

func TestStoreMessagesReturnsCopy(t *testing.T) {
	s, err := NewStore(SeedMessages(t0)...)
	require.NoError(t, err)
	msgs := s.Messages()
	msgs[0].Content = "mutated"
	require.NotEqual(t, "mutated", s.Messages()[0].Content)
}

func TestStoreRejectsBadMessages(t *testing.T) {
	s, err := NewStore(SeedMessages(t0)...)
	require.NoError(t, err)

	err = s.Append(NewMessage("1", SenderUser, "dup", t0))
	require.True(t, errors.Is(err, ErrDuplicateID))

	err = s.Append(NewMessage("", SenderUser, "x", t0))
	require.ErrorIs(t, err, ErrEmptyID)

	err = s.Append(NewMessage("z", Sender("system"), "x", t0))
	require.ErrorIs(t, err, ErrInvalidSender)

	require.Equal(t, 3, s.Len())
}

func TestNewStoreRejectsDuplicateSeed(t *testing.T) {
	_, err := NewStore(NewMessage("x", SenderUser, "a", t0), NewMessage("x", SenderAgent, "b", t0))
	require.ErrorIs(t, err, ErrDuplicateID)
}

func TestEmptyStore(t *testing.T) {
	s, err := NewStore()
	require.NoError(t, err)
	_, ok := s.Last()
	require.False(t, ok)
	_, ok = s.LastFrom(SenderAgent)
	require.False(t, ok)
}

func TestCounterGenerator(t *testing.T) {
	g := NewCounterGenerator()
	require.Equal(t, "msg-1", g.NextID())
	require.Equal(t, "msg-2", g.NextID())
}

func TestNewIDGenerator(t *testing.T) {
	g, err := NewIDGenerator("")
	require.NoError(t, err)
	a, b := g.NextID(), g.NextID()
	require.Len(t, a, 36)
	require.NotEqual(t, a, b)

	g, err = NewIDGenerator(IDStrategyCounter)
	require.NoError(t, err)
	require.Equal(t, "msg-1", g.NextID())

	_, err = NewIDGenerator("clock")
	require.Error(t, err)
}

func TestSenderLabel(t *testing.T) {
	require.Equal(t, "PANDORA (YOU)", SenderUser.Label())
	require.Equal(t, "OUR AGENT (DIANA)", SenderAgent.Label())
	require.NoError(t, SenderAgent.Validate())
}
