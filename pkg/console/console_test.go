package console

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-go-golems/pandora/pkg/chat"
	"github.com/go-go-golems/pandora/pkg/conversation"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRunSubmitsLinesAndWaitsForReplies(t *testing.T) {
	out := &syncBuffer{}
	p := NewPrinter(out)
	s, err := chat.NewSession(chat.WithReplyDelay(10*time.Millisecond), chat.WithObserver(p.Observer()))
	require.NoError(t, err)
	defer s.Close()

	in := strings.NewReader("Hello\n   \nfirst\\\nsecond\n")
	require.NoError(t, Run(context.Background(), s, p, in, 2*time.Second))

	msgs := s.Messages()
	require.Len(t, msgs, 3+4)
	var sent []string
	for _, m := range msgs[3:] {
		if m.IsUser() {
			sent = append(sent, m.Content)
		}
	}
	require.Equal(t, []string{"Hello", "first\nsecond"}, sent)

	text := out.String()
	require.True(t, strings.HasPrefix(text, "PANDORA (YOU): Hi, I need"))
	require.Equal(t, 2, strings.Count(text, chat.DefaultReply))
}

func TestRunStopsOnContextCancel(t *testing.T) {
	p := NewPrinter(&syncBuffer{})
	s, err := chat.NewSession()
	require.NoError(t, err)
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	blocking, w := io.Pipe()
	defer w.Close()
	err = Run(ctx, s, p, blocking, time.Second)
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunSubmitsContinuedDraftAtEOF(t *testing.T) {
	p := NewPrinter(&syncBuffer{})
	s, err := chat.NewSession(chat.WithReplyDelay(time.Millisecond), chat.WithObserver(p.Observer()))
	require.NoError(t, err)
	defer s.Close()

	in := strings.NewReader("first\\\nsecond\\")
	require.NoError(t, Run(context.Background(), s, p, in, 2*time.Second))

	msgs := s.Messages()
	require.Len(t, msgs, 5)
	require.Equal(t, "first\nsecond", msgs[3].Content)
	require.True(t, msgs[4].IsAgent())
}

func TestPrintEventPrefixesSession(t *testing.T) {
	out := &syncBuffer{}
	p := NewPrinter(out)
	p.PrintEvent("s1", conversation.NewMessage("a1", conversation.SenderAgent, "Hi", time.Now()))
	require.Equal(t, "[s1] OUR AGENT (DIANA): Hi\n\n", out.String())
}
