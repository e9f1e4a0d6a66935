// Package host lays animation containers out on a scrolling page, tracks
// which of them intersect the viewport and composites their canvases into
// one frame for a presenter.
package host

import (
	"slices"

	"github.com/coreman2200/canvasfx/internal/render"
)

// Rect is a box in page coordinates (CSS pixels).
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Element is a container that animations draw into. Fluid elements span the
// viewport width and follow it on resize.
type Element struct {
	ID      string
	Section string
	Fluid   bool

	rect     Rect
	canvases []render.Canvas
}

func NewElement(id, section string, r Rect) *Element {
	return &Element{ID: id, Section: section, rect: r}
}

func (e *Element) Bounds() Rect { return e.rect }

func (e *Element) SetBounds(r Rect) { e.rect = r }

// Attach adds c as a child canvas, stacked above earlier ones. The returned
// func removes it again.
func (e *Element) Attach(c render.Canvas) func() {
	e.canvases = append(e.canvases, c)
	return func() {
		if i := slices.Index(e.canvases, c); i >= 0 {
			e.canvases = slices.Delete(e.canvases, i, i+1)
		}
	}
}

// Canvases are the attached canvases, bottom first.
func (e *Element) Canvases() []render.Canvas { return e.canvases }
