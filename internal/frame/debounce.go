package frame

import "time"

// Debouncer collapses bursts of Trigger calls into one call of the latest fn,
// Delay after the last trigger.
type Debouncer struct {
	s     *Scheduler
	Delay time.Duration
	t     *Timer
}

func NewDebouncer(s *Scheduler, delay time.Duration) *Debouncer {
	return &Debouncer{s: s, Delay: delay}
}

func (d *Debouncer) Trigger(fn func()) {
	d.t.Stop()
	d.t = d.s.After(d.Delay, func() {
		d.t = nil
		fn()
	})
}

// Cancel drops a pending call.
func (d *Debouncer) Cancel() {
	d.t.Stop()
	d.t = nil
}

func (d *Debouncer) Pending() bool { return d.t != nil }
