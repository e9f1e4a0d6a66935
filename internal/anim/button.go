package anim

import (
	"image/color"
	"math"

	"github.com/coreman2200/canvasfx/internal/entity"
	"github.com/coreman2200/canvasfx/internal/render"
	"github.com/coreman2200/canvasfx/internal/theme"
	"github.com/coreman2200/canvasfx/internal/vmath"
)

// button runs glowing dots around the border of a button-sized canvas,
// one full lap every CycleMS.
type button struct {
	col    color.NRGBA
	border []vmath.Vec2
}

func (b *button) Init(in *Instance) error {
	n := max(in.opt.Count, 1)
	for i := range n {
		in.store.Items = append(in.store.Items, entity.Entity{
			Size:     in.opt.GlowSize,
			BaseSize: in.opt.GlowSize,
			Opacity:  1,
			Phase:    float64(i) / float64(n),
		})
	}
	b.place(in, 0)
	return nil
}

func (b *button) Recolor(in *Instance, p theme.Palette) {
	b.col = in.color(p, theme.Primary, "primary")
	in.store.SetTones(theme.Tones{Primary: b.col, Secondary: b.col, Accent: b.col})
}

// perimeter maps t in [0,1) onto the rectangle edge, clockwise from the
// top-left corner.
func perimeter(w, h, t float64) vmath.Vec2 {
	total := 2 * (w + h)
	if total <= 0 {
		return vmath.Vec2{}
	}
	d := math.Mod(t, 1) * total
	switch {
	case d < w:
		return vmath.Vec2{X: d}
	case d < w+h:
		return vmath.Vec2{X: w, Y: d - w}
	case d < 2*w+h:
		return vmath.Vec2{X: w - (d - w - h), Y: h}
	}
	return vmath.Vec2{Y: h - (d - 2*w - h)}
}

func (b *button) place(in *Instance, elapsed float64) {
	lap := 0.0
	if in.opt.CycleMS > 0 {
		lap = elapsed / in.opt.CycleMS
	}
	for i := range in.store.Items {
		e := &in.store.Items[i]
		p := perimeter(in.store.W, in.store.H, lap+e.Phase)
		e.X, e.Y = p.X, p.Y
	}
}

func (b *button) Step(in *Instance, t Tick) {
	b.place(in, float64(t.Elapsed)/float64(msDur(1)))
	for i := range in.store.Items {
		in.store.Items[i].PushTrail(in.opt.TrailLength)
	}
}

func (b *button) Draw(in *Instance, c render.Canvas, t Tick) {
	w, h := in.store.W, in.store.H
	b.border = append(b.border[:0], vmath.Vec2{}, vmath.Vec2{X: w}, vmath.Vec2{X: w, Y: h}, vmath.Vec2{Y: h}, vmath.Vec2{})
	render.Draw(c, render.Scene{Items: in.store.Items}, render.Style{
		Background: in.background(),
		Underlay: func(c render.Canvas) {
			c.Polyline(b.border, in.opt.LineWidth, theme.WithAlpha(b.col, 0.3))
		},
		TrailWidth: 2,
		Node: func(e *entity.Entity) (float64, color.NRGBA, float64) {
			return e.Size, b.col, in.opt.GlowOpacity
		},
	})
}
