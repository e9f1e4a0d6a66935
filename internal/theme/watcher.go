package theme

import (
	"fmt"
	"sync"
)

// Watcher tracks the active theme and tells subscribers when it changes.
type Watcher struct {
	src *Source

	mu      sync.Mutex
	current string
	subs    map[int]func(Palette)
	next    int
}

func NewWatcher(src *Source, initial string) (*Watcher, error) {
	if _, ok := src.Get(initial); !ok {
		return nil, fmt.Errorf("unknown theme %q", initial)
	}
	return &Watcher{src: src, current: initial, subs: map[int]func(Palette){}}, nil
}

func (w *Watcher) Name() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

func (w *Watcher) Current() Palette {
	p, _ := w.src.Get(w.Name())
	return p
}

// Provider exposes the watcher as a colour provider.
func (w *Watcher) Provider() Provider { return w.Current }

// Switch activates name and notifies subscribers. Switching to the active
// theme is a no-op.
func (w *Watcher) Switch(name string) error {
	p, ok := w.src.Get(name)
	if !ok {
		return fmt.Errorf("unknown theme %q", name)
	}
	w.mu.Lock()
	if w.current == name {
		w.mu.Unlock()
		return nil
	}
	w.current = name
	subs := make([]func(Palette), 0, len(w.subs))
	for i := 0; i < w.next; i++ {
		if fn, ok := w.subs[i]; ok {
			subs = append(subs, fn)
		}
	}
	w.mu.Unlock()
	for _, fn := range subs {
		fn(p)
	}
	return nil
}

// Subscribe registers fn and returns the function that removes it.
func (w *Watcher) Subscribe(fn func(Palette)) func() {
	w.mu.Lock()
	id := w.next
	w.next++
	w.subs[id] = fn
	w.mu.Unlock()
	return func() {
		w.mu.Lock()
		delete(w.subs, id)
		w.mu.Unlock()
	}
}
