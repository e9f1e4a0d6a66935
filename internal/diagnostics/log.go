package diagnostics

import (
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const DefaultMaxStored = 50

// Log is the shared error sink. It keeps the newest MaxStored reports in
// memory, mirrors each one to zerolog and fans it out to subscribers.
type Log struct {
	mu      sync.Mutex
	logger  zerolog.Logger
	max     int
	entries []Diagnostic
	seq     uint64
	ctx     map[string]string
	subs    map[int]func(Diagnostic)
	nextSub int

	now func() time.Time
}

func NewLog(logger zerolog.Logger, maxStored int) *Log {
	if maxStored <= 0 {
		maxStored = DefaultMaxStored
	}
	return &Log{
		logger: logger,
		max:    maxStored,
		ctx:    map[string]string{},
		subs:   map[int]func(Diagnostic){},
		now:    time.Now,
	}
}

func (l *Log) Report(message, module string, sev Severity, extra map[string]any) Diagnostic {
	if !sev.Valid() {
		sev = Medium
	}
	l.mu.Lock()
	l.seq++
	now := l.now()
	d := Diagnostic{
		ID:       fmt.Sprintf("diag-%d-%d", now.UnixMilli(), l.seq),
		Time:     now,
		Severity: sev,
		Module:   module,
		Summary:  message,
		Evidence: extra,
		Context:  maps.Clone(l.ctx),
	}
	l.entries = append(l.entries, d)
	if over := len(l.entries) - l.max; over > 0 {
		l.entries = append(l.entries[:0], l.entries[over:]...)
	}
	subs := make([]func(Diagnostic), 0, len(l.subs))
	for _, fn := range l.subs {
		subs = append(subs, fn)
	}
	l.mu.Unlock()

	ev := l.event(sev).Str("module", module).Str("id", d.ID).Str("severity", string(sev))
	for k, v := range extra {
		if k == "stack" {
			ev = ev.Str(k, fmt.Sprint(v))
			continue
		}
		ev = ev.Interface(k, v)
	}
	ev.Msg(message)

	for _, fn := range subs {
		fn(d)
	}
	return d
}

func (l *Log) event(sev Severity) *zerolog.Event {
	switch sev {
	case Low:
		return l.logger.Info()
	case Medium:
		return l.logger.Warn()
	default:
		return l.logger.Error()
	}
}

// SetContext attaches key=value to every subsequent report. An empty value
// removes the key.
func (l *Log) SetContext(key, value string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if value == "" {
		delete(l.ctx, key)
		return
	}
	l.ctx[key] = value
}

// Entries returns a copy of the stored reports, oldest first.
func (l *Log) Entries() []Diagnostic {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Diagnostic, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Log) Clear() {
	l.mu.Lock()
	l.entries = nil
	l.mu.Unlock()
}

// Subscribe registers fn for every future report and returns its cancel func.
func (l *Log) Subscribe(fn func(Diagnostic)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.subscribe(fn)
}

// Follow hands fn every stored report, oldest first, then subscribes it, all
// under one lock: each report reaches fn exactly once and stored ones come
// first. fn runs with the log locked during the replay and must not block or
// report.
func (l *Log) Follow(fn func(Diagnostic)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, d := range l.entries {
		fn(d)
	}
	return l.subscribe(fn)
}

func (l *Log) subscribe(fn func(Diagnostic)) func() {
	id := l.nextSub
	l.nextSub++
	l.subs[id] = fn
	return func() {
		l.mu.Lock()
		delete(l.subs, id)
		l.mu.Unlock()
	}
}
