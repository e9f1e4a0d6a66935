package anim

import (
	"image/color"

	"github.com/coreman2200/canvasfx/internal/connect"
	"github.com/coreman2200/canvasfx/internal/entity"
	"github.com/coreman2200/canvasfx/internal/render"
	"github.com/coreman2200/canvasfx/internal/theme"
	"github.com/coreman2200/canvasfx/internal/vmath"
)

// framework is a handful of large nodes bouncing around the canvas, linked
// when close. Nodes near the pointer grow and light up.
type framework struct {
	node, line color.NRGBA
}

func (f *framework) Init(in *Instance) error {
	o := in.opt
	return in.store.Spawn(o.Count, entity.Spawn{
		Layout: entity.Random,
		Size:   o.Size,
		Speed:  o.Speed,
	})
}

func (f *framework) Recolor(in *Instance, p theme.Palette) {
	f.node = in.color(p, theme.Primary, "primary")
	f.line = theme.WithAlpha(f.node, 0.5)
	in.store.SetTones(theme.Tones{Primary: f.node, Secondary: f.node, Accent: f.node})
}

func (f *framework) Step(in *Instance, t Tick) {
	in.motion.Step(in.store, in.pointer, t.DT, t.Elapsed.Seconds())
	p, r := in.pointer, in.opt.HoverRadius
	for i := range in.store.Items {
		e := &in.store.Items[i]
		e.Active = p.Valid && r > 0 && e.Pos().DistTo(vmath.Vec2{X: p.X, Y: p.Y}) < r
		e.Size = e.BaseSize
		if e.Active {
			e.Size *= 1.5
		}
	}
	in.connect(t, in.opt.ConnectionDistance)
}

func (f *framework) Draw(in *Instance, c render.Canvas, t Tick) {
	cd := in.opt.ConnectionDistance
	render.Draw(c, render.Scene{Items: in.store.Items, Edges: in.edges}, render.Style{
		Background: in.background(),
		Edge: func(e connect.Edge, _, _ *entity.Entity) (color.NRGBA, float64) {
			if cd <= 0 {
				return color.NRGBA{}, 0
			}
			return theme.WithAlpha(f.line, 0.5*(1-e.Distance/cd)), in.opt.LineWidth
		},
		Node: func(e *entity.Entity) (float64, color.NRGBA, float64) {
			if e.Active {
				return e.Size, f.node, 0
			}
			return e.Size, f.line, 0
		},
	})
}
