package schedule

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)

func TestManualFiresInDueOrder(t *testing.T) {
	m := NewManual(epoch)
	var order []string
	var at []time.Time
	m.AfterFunc(2*time.Second, func() { order = append(order, "b"); at = append(at, m.Now()) })
	m.AfterFunc(time.Second, func() { order = append(order, "a"); at = append(at, m.Now()) })
	m.AfterFunc(time.Second, func() { order = append(order, "a2") })

	m.Advance(500 * time.Millisecond)
	require.Empty(t, order)
	require.Equal(t, 3, m.Pending())

	m.Advance(2 * time.Second)
	require.Equal(t, []string{"a", "a2", "b"}, order)
	require.Equal(t, []time.Time{epoch.Add(time.Second), epoch.Add(2 * time.Second)}, at)
	require.Equal(t, epoch.Add(2500*time.Millisecond), m.Now())
	require.Equal(t, 0, m.Pending())
}

func TestManualStop(t *testing.T) {
	m := NewManual(epoch)
	fired := false
	h := m.AfterFunc(time.Second, func() { fired = true })
	require.True(t, h.Stop())
	require.False(t, h.Stop())
	m.Advance(time.Minute)
	require.False(t, fired)
}

func TestManualStopAfterFire(t *testing.T) {
	m := NewManual(epoch)
	h := m.AfterFunc(time.Second, func() {})
	m.Advance(time.Second)
	require.False(t, h.Stop())
}

func TestManualTaskSchedulingDuringAdvance(t *testing.T) {
	m := NewManual(epoch)
	var n int
	m.AfterFunc(time.Second, func() {
		n++
		m.AfterFunc(time.Second, func() { n++ })
	})
	m.Advance(3 * time.Second)
	require.Equal(t, 2, n)
}

func TestTimerSchedulerFiresAndStops(t *testing.T) {
	s := NewTimer()
	var fired atomic.Bool
	s.AfterFunc(5*time.Millisecond, func() { fired.Store(true) })
	require.Eventually(t, fired.Load, time.Second, time.Millisecond)

	var stopped atomic.Bool
	h := s.AfterFunc(time.Hour, func() { stopped.Store(true) })
	require.True(t, h.Stop())
	require.False(t, stopped.Load())
}
