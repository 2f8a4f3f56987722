package events

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-go-golems/pandora/pkg/chat"
	"github.com/go-go-golems/pandora/pkg/conversation"
	"github.com/go-go-golems/pandora/pkg/redisstream"
	"github.com/go-go-golems/pandora/pkg/schedule"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

var ts = time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)

func runBus(t *testing.T, b *Bus) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = b.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		_ = b.Close()
		<-done
	})
	select {
	case <-b.Running():
	case <-time.After(5 * time.Second):
		t.Fatal("router did not start")
	}
}

func closeMirror(t *testing.T, m *Mirror) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, m.Close(ctx))
}

func newRedisBus(t *testing.T, addr, group, consumer string) *Bus {
	t.Helper()
	s := redisstream.DefaultSettings()
	s.Enabled = true
	s.Addr = addr
	s.Group = group
	s.Consumer = consumer
	b, err := NewBus(s, watermill.NopLogger{})
	require.NoError(t, err)
	return b
}

type collector struct {
	mu  sync.Mutex
	got []string
}

func (c *collector) handle(e Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.got = append(c.got, e.SessionID+"/"+e.Message.ID)
	return nil
}

func (c *collector) snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.got...)
}

func TestEventRoundTrip(t *testing.T) {
	m := conversation.NewMessage("a", conversation.SenderAgent, "multi\nline", ts)
	b, err := NewMessageAppended("s1", m).Marshal()
	require.NoError(t, err)

	e, err := NewEventFromJSON(b)
	require.NoError(t, err)
	require.Equal(t, EventTypeMessageAppended, e.Type)
	require.Equal(t, "s1", e.SessionID)
	require.Equal(t, m, *e.Message)
}

func TestNewEventFromJSONRejectsGarbage(t *testing.T) {
	for _, payload := range []string{
		`not json`,
		`{"type":"message.appended"}`,
		`{"type":"message.appended","message":{"id":"x","sender":"system"}}`,
		`{"type":"typing"}`,
	} {
		_, err := NewEventFromJSON([]byte(payload))
		require.Error(t, err, payload)
	}
}

func TestInProcessBusDeliversStoreAppends(t *testing.T) {
	b, err := NewBus(redisstream.DefaultSettings(), watermill.NopLogger{})
	require.NoError(t, err)

	require.Nil(t, b.Redis())

	var mu sync.Mutex
	var got []Event
	b.AddHandler("collect", func(e Event) error {
		mu.Lock()
		got = append(got, e)
		mu.Unlock()
		return nil
	})
	runBus(t, b)

	store, err := conversation.NewStore(conversation.SeedMessages(ts)...)
	require.NoError(t, err)
	mirror := NewMirror(b, "s1", 0)
	store.Observe(mirror.Observer())
	require.NoError(t, store.Append(conversation.NewMessage("u1", conversation.SenderUser, "Hello", ts)))
	closeMirror(t, mirror)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	}, 5*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, "s1", got[0].SessionID)
	require.Equal(t, "Hello", got[0].Message.Content)
}

func TestRedisBusMirrorsEventsToStream(t *testing.T) {
	mr := miniredis.RunT(t)
	s := redisstream.DefaultSettings()
	s.Enabled = true
	s.Addr = mr.Addr()

	b, err := NewBus(s, watermill.NopLogger{})
	require.NoError(t, err)
	defer func() { _ = b.Close() }()

	require.NotNil(t, b.Redis())
	mirror := NewMirror(b, "s1", 0)
	obs := mirror.Observer()
	obs(conversation.NewMessage("u1", conversation.SenderUser, "Hello", ts))
	obs(conversation.NewMessage("a1", conversation.SenderAgent, "Hi", ts))
	closeMirror(t, mirror)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()
	n, err := client.XLen(context.Background(), TopicMessages).Result()
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
}

func TestRedisBusDeliversEveryEventToEachGroup(t *testing.T) {
	mr := miniredis.RunT(t)

	chatA := newRedisBus(t, mr.Addr(), "unused", "chat-a")
	chatB := newRedisBus(t, mr.Addr(), "unused", "chat-b")
	defer func() { _ = chatA.Close() }()
	defer func() { _ = chatB.Close() }()

	watch1 := newRedisBus(t, mr.Addr(), "watch-1", "w1")
	watch2 := newRedisBus(t, mr.Addr(), "watch-2", "w2")
	c1, c2 := &collector{}, &collector{}
	watch1.AddHandler("watch", c1.handle)
	watch2.AddHandler("watch", c2.handle)
	runBus(t, watch1)
	runBus(t, watch2)

	mirrorA := NewMirror(chatA, "a", 0)
	mirrorB := NewMirror(chatB, "b", 0)
	var want []string
	for i := 0; i < 10; i++ {
		id := fmt.Sprintf("m%d", i)
		mirrorA.Observer()(conversation.NewMessage(id, conversation.SenderUser, "from a", ts))
		mirrorB.Observer()(conversation.NewMessage(id, conversation.SenderAgent, "from b", ts))
		want = append(want, "a/"+id, "b/"+id)
	}
	closeMirror(t, mirrorA)
	closeMirror(t, mirrorB)

	for _, c := range []*collector{c1, c2} {
		require.Eventually(t, func() bool {
			return len(c.snapshot()) >= len(want)
		}, 10*time.Second, 20*time.Millisecond)
		require.ElementsMatch(t, want, c.snapshot())
	}
}

func TestMirrorKeepsSubmitFastWhenRedisIsDown(t *testing.T) {
	mr := miniredis.RunT(t)
	b := newRedisBus(t, mr.Addr(), "g", "c")
	t.Cleanup(func() { _ = b.Close() })

	clock := schedule.NewManual(ts)
	sess, err := chat.NewSession(chat.WithScheduler(clock), chat.WithClock(clock))
	require.NoError(t, err)
	defer sess.Close()

	mirror := NewMirror(b, sess.ID(), 0)
	sess.Store().Observe(mirror.Observer())
	mr.Close()

	start := time.Now()
	_, ok := sess.SubmitText("Hello")
	require.True(t, ok)
	clock.Advance(chat.DefaultReplyDelay)
	require.Less(t, time.Since(start), 500*time.Millisecond)
	require.Len(t, sess.Messages(), 5)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_ = mirror.Close(ctx)
}

func TestMirrorDropsAfterClose(t *testing.T) {
	b, err := NewBus(redisstream.DefaultSettings(), watermill.NopLogger{})
	require.NoError(t, err)
	defer func() { _ = b.Close() }()

	m := NewMirror(b, "s1", 1)
	closeMirror(t, m)
	closeMirror(t, m)
	// observing after Close is a no-op
	m.Observer()(conversation.NewMessage("u1", conversation.SenderUser, "late", ts))
}
