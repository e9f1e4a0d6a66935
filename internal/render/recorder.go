package render

import (
	"image"
	"image/color"

	"github.com/coreman2200/canvasfx/internal/vmath"
)

type OpKind string

const (
	OpClear    OpKind = "clear"
	OpLine     OpKind = "line"
	OpPolyline OpKind = "polyline"
	OpCircle   OpKind = "circle"
	OpGlow     OpKind = "glow"
)

// Op is one recorded draw call.
type Op struct {
	Kind   OpKind
	A, B   vmath.Vec2
	Points int
	Radius float64
	Width  float64
	Color  color.NRGBA
}

// Recorder is a Canvas that logs draw calls instead of rasterising them.
type Recorder struct {
	Ops    []Op
	W, H   float64
	Ratio  float64
	Closed bool
}

func NewRecorder(w, h float64) *Recorder { return &Recorder{W: w, H: h, Ratio: 1} }

func (r *Recorder) Size() (float64, float64) { return r.W, r.H }
func (r *Recorder) DPR() float64              { return r.Ratio }

func (r *Recorder) Resize(w, h, dpr float64) error {
	r.W, r.H, r.Ratio = w, h, dpr
	return nil
}

func (r *Recorder) Clear(bg color.NRGBA) {
	r.Ops = append(r.Ops[:0], Op{Kind: OpClear, Color: bg})
}

func (r *Recorder) Line(a, b vmath.Vec2, width float64, c color.NRGBA) {
	r.Ops = append(r.Ops, Op{Kind: OpLine, A: a, B: b, Width: width, Color: c})
}

func (r *Recorder) Polyline(pts []vmath.Vec2, width float64, c color.NRGBA) {
	op := Op{Kind: OpPolyline, Points: len(pts), Width: width, Color: c}
	if len(pts) > 0 {
		op.A, op.B = pts[0], pts[len(pts)-1]
	}
	r.Ops = append(r.Ops, op)
}

func (r *Recorder) Circle(p vmath.Vec2, rad float64, c color.NRGBA) {
	r.Ops = append(r.Ops, Op{Kind: OpCircle, A: p, Radius: rad, Color: c})
}

func (r *Recorder) Glow(p vmath.Vec2, rad float64, c color.NRGBA, intensity float64) {
	r.Ops = append(r.Ops, Op{Kind: OpGlow, A: p, Radius: rad, Width: intensity, Color: c})
}

func (r *Recorder) Image() image.Image {
	return image.NewRGBA(image.Rect(0, 0, int(r.W*r.Ratio), int(r.H*r.Ratio)))
}

func (r *Recorder) Close() error {
	r.Closed = true
	return nil
}

// Count returns how many ops of kind were recorded since the last Clear.
func (r *Recorder) Count(kind OpKind) int {
	n := 0
	for _, op := range r.Ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}
