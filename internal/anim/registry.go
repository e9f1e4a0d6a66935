package anim

import (
	"slices"

	"github.com/coreman2200/canvasfx/internal/theme"
)

// Registry tracks live instances so the controller can broadcast
// lifecycle changes. Instances add themselves in New and leave on
// Destroy. It is used from the scheduler goroutine only.
type Registry struct {
	items []*Instance
}

func NewRegistry() *Registry { return &Registry{} }

func (r *Registry) add(in *Instance) {
	if !slices.Contains(r.items, in) {
		r.items = append(r.items, in)
	}
}

func (r *Registry) remove(in *Instance) {
	r.items = slices.DeleteFunc(r.items, func(o *Instance) bool { return o == in })
}

// Instances returns a snapshot of the registered instances.
func (r *Registry) Instances() []*Instance { return slices.Clone(r.items) }

func (r *Registry) Len() int { return len(r.items) }

// Find returns the first instance with the given id.
func (r *Registry) Find(id string) (*Instance, bool) {
	for _, in := range r.items {
		if in.id == id {
			return in, true
		}
	}
	return nil, false
}

func (r *Registry) StopAll() {
	for _, in := range r.Instances() {
		in.Stop()
	}
}

func (r *Registry) StartAll() {
	for _, in := range r.Instances() {
		in.Start()
	}
}

func (r *Registry) UpdateColors(p theme.Palette) {
	for _, in := range r.Instances() {
		in.UpdateColors(p)
	}
}

// DestroyAll destroys every instance; the registry ends up empty.
func (r *Registry) DestroyAll() {
	for _, in := range r.Instances() {
		in.Destroy()
	}
}
