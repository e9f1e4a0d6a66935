package anim

import (
	"image/color"
	"math"

	"github.com/coreman2200/canvasfx/internal/connect"
	"github.com/coreman2200/canvasfx/internal/entity"
	"github.com/coreman2200/canvasfx/internal/render"
	"github.com/coreman2200/canvasfx/internal/theme"
)

// neural is the drifting node network with glowing links and impulses
// that run along random links.
type neural struct {
	node, link, impulse color.NRGBA
}

func (n *neural) Init(in *Instance) error {
	o := in.opt
	return in.store.Spawn(o.Count, entity.Spawn{
		Layout:     entity.Random,
		Size:       o.Size,
		Speed:      o.Speed,
		Opacity:    o.Opacity,
		PulseSpeed: o.PulseSpeed,
	})
}

func (n *neural) Recolor(in *Instance, p theme.Palette) {
	t := in.tones(p)
	n.node, n.link, n.impulse = t.Primary, t.Secondary, t.Accent
	in.store.SetTones(t)
}

func (n *neural) Step(in *Instance, t Tick) {
	in.motion.Step(in.store, in.pointer, t.DT, t.Elapsed.Seconds())
	es := in.connect(t, in.opt.ConnectionDistance)
	in.fire(t, es)
}

func (n *neural) Draw(in *Instance, c render.Canvas, t Tick) {
	sec := t.Elapsed.Seconds()
	render.Draw(c, render.Scene{Items: in.store.Items, Transient: in.store.Transient, Edges: in.edges}, render.Style{
		Background:   in.background(),
		Edge:         render.StrengthEdge(n.link, in.opt.LineWidth),
		EdgeGlow:     in.opt.GlowSize,
		Impulse:      n.impulse,
		ImpulseWidth: in.opt.LineWidth * 2,
		Node: func(e *entity.Entity) (float64, color.NRGBA, float64) {
			return e.Size * pulse(sec, e.PulseSpeed, e.Phase) * 2, theme.WithAlpha(n.node, e.Opacity), 1
		},
	})
}

// organic is the slow noise-driven network whose nodes breathe on a fixed
// period.
type organic struct {
	node, link color.NRGBA
}

func (g *organic) Init(in *Instance) error {
	o := in.opt
	return in.store.Spawn(o.Count, entity.Spawn{
		Layout:         entity.Random,
		Size:           o.Size,
		Speed:          o.Speed,
		SecondaryRatio: o.SecondaryRatio,
		Opacity:        o.Opacity,
	})
}

func (g *organic) Recolor(in *Instance, p theme.Palette) {
	t := in.tones(p)
	g.node, g.link = t.Primary, t.Primary
	in.store.SetTones(t)
}

func (g *organic) Step(in *Instance, t Tick) {
	in.motion.Step(in.store, in.pointer, t.DT, t.Elapsed.Seconds())
	in.connect(t, in.opt.ConnectionDistance)
}

// scale is the breathing size factor: 1 at rest, PulseScale at the peak.
func (g *organic) scale(in *Instance, e *entity.Entity, ms float64) float64 {
	period := in.opt.PulsePeriodMS
	if period <= 0 {
		return 1
	}
	phase := math.Mod(ms/period+e.Phase/(2*math.Pi), 1)
	return 1 + math.Sin(phase*2*math.Pi)*(in.opt.PulseScale-1)
}

func (g *organic) Draw(in *Instance, c render.Canvas, t Tick) {
	ms := float64(t.Elapsed.Milliseconds())
	op := in.opt.ConnectionOpacity
	render.Draw(c, render.Scene{Items: in.store.Items, Edges: in.edges}, render.Style{
		Background: in.background(),
		Edge: func(e connect.Edge, _, _ *entity.Entity) (color.NRGBA, float64) {
			return theme.WithAlpha(g.link, e.Strength*op), in.opt.LineWidth
		},
		Node: func(e *entity.Entity) (float64, color.NRGBA, float64) {
			r := max(e.Size*g.scale(in, e, ms), 0.5)
			return r * 2, theme.WithAlpha(e.Color, e.Opacity), 0.8
		},
	})
}
