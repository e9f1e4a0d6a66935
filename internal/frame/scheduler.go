package frame

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/coreman2200/canvasfx/internal/diagnostics"
)

// Handle identifies a requested frame callback. The zero Handle is never issued.
type Handle uint64

// Callback receives the scheduler clock at the start of the step.
type Callback func(now time.Duration)

// Scheduler is a cooperative, single-consumer frame scheduler. Callbacks
// requested during a step run on the following step, so every animation
// forms its own chain by re-requesting at the end of its callback.
//
// Only Post is meant to be called from other goroutines; everything else
// runs on the goroutine that calls Step.
type Scheduler struct {
	mu      sync.Mutex
	next    Handle
	order   []Handle
	pending map[Handle]Callback
	timers  []*Timer
	timerID uint64
	posted  []func()

	now    time.Duration
	frames uint64
	sink   diagnostics.Sink
}

func New(sink diagnostics.Sink) *Scheduler {
	if sink == nil {
		sink = diagnostics.Discard{}
	}
	return &Scheduler{pending: map[Handle]Callback{}, sink: sink}
}

// Request enqueues cb for the next step.
func (s *Scheduler) Request(cb Callback) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	h := s.next
	s.pending[h] = cb
	s.order = append(s.order, h)
	return h
}

// Cancel drops a pending callback. A callback that already began is not
// interrupted. Returns false when h was not pending.
func (s *Scheduler) Cancel(h Handle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pending[h]; !ok {
		return false
	}
	delete(s.pending, h)
	return true
}

// Pending is the number of frame callbacks waiting for the next step.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *Scheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Frames counts completed steps.
func (s *Scheduler) Frames() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// Post queues fn to run at the start of the next step. Safe for concurrent use.
func (s *Scheduler) Post(fn func()) {
	s.mu.Lock()
	s.posted = append(s.posted, fn)
	s.mu.Unlock()
}

// Step advances the clock to now and runs, in order: posted functions, due
// timers, then every frame callback requested before the step began.
func (s *Scheduler) Step(now time.Duration) {
	s.mu.Lock()
	if now < s.now {
		now = s.now
	}
	s.now = now
	posted := s.posted
	s.posted = nil
	s.mu.Unlock()

	for _, fn := range posted {
		s.call(func() { fn() })
	}

	for _, t := range s.dueTimers(now) {
		s.call(t.fn)
	}

	s.mu.Lock()
	batch := s.order
	s.order = nil
	s.mu.Unlock()

	for _, h := range batch {
		s.mu.Lock()
		cb, ok := s.pending[h]
		delete(s.pending, h)
		s.mu.Unlock()
		if !ok {
			continue
		}
		s.call(func() { cb(now) })
	}

	s.mu.Lock()
	s.frames++
	// cancelled handles issued during this step may still be listed
	live := s.order[:0]
	for _, h := range s.order {
		if _, ok := s.pending[h]; ok {
			live = append(live, h)
		}
	}
	s.order = live
	s.mu.Unlock()
}

func (s *Scheduler) call(fn func()) {
	defer diagnostics.Catch(s.sink, "frame")
	fn()
}

// Run drives Step from a ticker at fps until ctx is done. after, when set,
// runs once per step on the same goroutine; an error from it stops Run.
func (s *Scheduler) Run(ctx context.Context, fps int, after func(now time.Duration) error) error {
	if fps <= 0 {
		fps = 60
	}
	start := time.Now()
	tick := time.NewTicker(time.Second / time.Duration(fps))
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
			now := time.Since(start)
			s.Step(now)
			if after == nil {
				continue
			}
			if err := after(now); err != nil {
				return err
			}
		}
	}
}

// Timer is a one-shot delayed function on the scheduler clock.
type Timer struct {
	s       *Scheduler
	id      uint64
	due     time.Duration
	fn      func()
	stopped bool
}

// After runs fn on the first step at or after Now()+d.
func (s *Scheduler) After(d time.Duration, fn func()) *Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timerID++
	t := &Timer{s: s, id: s.timerID, due: s.now + d, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

// Stop prevents the timer from firing. Returns false if it already fired or
// was stopped.
func (t *Timer) Stop() bool {
	if t == nil {
		return false
	}
	s := t.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.stopped {
		return false
	}
	for i, o := range s.timers {
		if o == t {
			s.timers = append(s.timers[:i], s.timers[i+1:]...)
			t.stopped = true
			return true
		}
	}
	return false
}

// Due is the scheduler time at which the timer fires.
func (t *Timer) Due() time.Duration { return t.due }

func (s *Scheduler) dueTimers(now time.Duration) []*Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	var due, keep []*Timer
	for _, t := range s.timers {
		if t.due <= now {
			t.stopped = true
			due = append(due, t)
		} else {
			keep = append(keep, t)
		}
	}
	s.timers = keep
	sort.SliceStable(due, func(i, j int) bool {
		if due[i].due != due[j].due {
			return due[i].due < due[j].due
		}
		return due[i].id < due[j].id
	})
	return due
}

// Timers is the number of armed timers.
func (s *Scheduler) Timers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
