package frame

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/canvasfx/internal/diagnostics"
)

func TestRequestRunsNextStepOnly(t *testing.T) {
	s := New(nil)
	var calls int
	var loop Callback
	loop = func(time.Duration) {
		calls++
		s.Request(loop)
	}
	s.Request(loop)
	assert.Equal(t, 1, s.Pending())

	s.Step(16 * time.Millisecond)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, s.Pending())

	s.Step(32 * time.Millisecond)
	assert.Equal(t, 2, calls)
}

func TestCancelInsideStep(t *testing.T) {
	s := New(nil)
	var bRan bool
	var hb Handle
	s.Request(func(time.Duration) { s.Cancel(hb) })
	hb = s.Request(func(time.Duration) { bRan = true })
	s.Step(time.Millisecond)
	assert.False(t, bRan)
	assert.Equal(t, 0, s.Pending())
	assert.False(t, s.Cancel(hb))
}

func TestTimersFireInOrder(t *testing.T) {
	s := New(nil)
	var got []string
	s.After(30*time.Millisecond, func() { got = append(got, "b") })
	s.After(10*time.Millisecond, func() { got = append(got, "a") })
	stopped := s.After(20*time.Millisecond, func() { got = append(got, "x") })
	assert.True(t, stopped.Stop())
	assert.False(t, stopped.Stop())

	s.Step(5 * time.Millisecond)
	assert.Empty(t, got)
	s.Step(40 * time.Millisecond)
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, 0, s.Timers())
}

func TestDebouncer(t *testing.T) {
	s := New(nil)
	d := NewDebouncer(s, 200*time.Millisecond)
	var n, last int
	for i := 1; i <= 3; i++ {
		v := i
		s.Step(time.Duration(i*50) * time.Millisecond)
		d.Trigger(func() { n++; last = v })
	}
	assert.True(t, d.Pending())
	s.Step(300 * time.Millisecond)
	assert.Equal(t, 0, n)
	s.Step(360 * time.Millisecond)
	assert.Equal(t, 1, n)
	assert.Equal(t, 3, last)
	assert.False(t, d.Pending())
}

func TestPanicEndsChainAndReports(t *testing.T) {
	l := diagnostics.NewLog(zerolog.Nop(), 0)
	s := New(l)
	var other int
	s.Request(func(time.Duration) { panic("bad frame") })
	var loop Callback
	loop = func(time.Duration) { other++; s.Request(loop) }
	s.Request(loop)

	s.Step(time.Millisecond)
	s.Step(2 * time.Millisecond)
	assert.Equal(t, 2, other)
	assert.Equal(t, 1, s.Pending())

	got := l.Entries()
	require.Len(t, got, 1)
	assert.Equal(t, diagnostics.Critical, got[0].Severity)
	assert.Equal(t, "frame", got[0].Module)
}

func TestPostRunsOnStep(t *testing.T) {
	s := New(nil)
	done := make(chan struct{})
	go func() {
		s.Post(func() { close(done) })
	}()
	require.Eventually(t, func() bool {
		s.Step(s.Now() + time.Millisecond)
		select {
		case <-done:
			return true
		default:
			return false
		}
	}, time.Second, time.Millisecond)
}

func TestRunStopsOnCancel(t *testing.T) {
	s := New(nil)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := s.Run(ctx, 120, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Greater(t, s.Frames(), uint64(0))
}

func TestRunStopsOnHookError(t *testing.T) {
	s := New(nil)
	boom := errors.New("boom")
	var seen []time.Duration
	err := s.Run(context.Background(), 240, func(now time.Duration) error {
		assert.Equal(t, s.Now(), now)
		seen = append(seen, now)
		if len(seen) == 3 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Len(t, seen, 3)
	assert.Equal(t, uint64(3), s.Frames())
}

func TestClockIsMonotonic(t *testing.T) {
	s := New(nil)
	s.Step(100 * time.Millisecond)
	s.Step(50 * time.Millisecond)
	assert.Equal(t, 100*time.Millisecond, s.Now())
}
