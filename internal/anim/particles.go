package anim

import (
	"image/color"
	"math"

	"github.com/coreman2200/canvasfx/internal/connect"
	"github.com/coreman2200/canvasfx/internal/entity"
	"github.com/coreman2200/canvasfx/internal/pattern"
	"github.com/coreman2200/canvasfx/internal/render"
	"github.com/coreman2200/canvasfx/internal/theme"
	"github.com/coreman2200/canvasfx/internal/vmath"
)

// particles is the free-drifting field that periodically morphs into the
// sacred geometry patterns. With sacred set it is the quieter philosophy
// variant whose formed pattern slowly rotates.
type particles struct {
	sacred  bool
	rot     float64
	scratch []entity.Entity
}

func (p *particles) Init(in *Instance) error {
	o := in.opt
	err := in.store.Spawn(o.Count, entity.Spawn{
		Layout:         entity.Random,
		Size:           o.Size,
		Speed:          o.Speed,
		SecondaryRatio: o.SecondaryRatio,
		AccentRatio:    o.AccentRatio,
		Opacity:        o.Opacity,
	})
	if err != nil {
		return err
	}
	if len(o.Patterns) == 0 && o.Program == nil {
		return nil
	}
	return in.cycle()
}

func (p *particles) Recolor(in *Instance, pal theme.Palette) {
	in.store.SetTones(in.tones(pal))
}

// reach is the distance multiplier and in-pattern opacity boost for the
// formed pattern.
func reach(name string) (mult, boost float64) {
	switch name {
	case pattern.PlatonicSolid:
		return 1.8, 2.5
	case pattern.VesicaPiscis:
		return 1.5, 2.2
	}
	return 1.5, 2
}

func (p *particles) formed(in *Instance) (string, bool) {
	if in.morph == nil || !in.morph.Formed() {
		return "", false
	}
	return in.morph.Name(), true
}

func (p *particles) Step(in *Instance, t Tick) {
	in.motion.Step(in.store, in.pointer, t.DT, t.Elapsed.Seconds())
	if p.sacred {
		p.rot = math.Mod(p.rot+in.opt.RotationSpeed*float64(t.Delta.Milliseconds()), 2*math.Pi)
	}

	cd := in.opt.ConnectionDistance
	if cd <= 0 {
		in.edges = in.edges[:0]
		return
	}
	name, formed := p.formed(in)
	mult := 1.0
	if formed {
		mult, _ = reach(name)
	}
	es := in.connect(t, cd*mult)
	if !formed {
		return
	}
	items := in.store.Items
	kept := es[:0]
	for _, e := range es {
		if (items[e.I].InPattern && items[e.J].InPattern) || e.Distance < cd {
			kept = append(kept, e)
		}
	}
	if name == pattern.VesicaPiscis {
		kept = connect.Ensure(kept, in.pts, cd*mult, 3, func(i int) bool { return items[i].InPattern })
	}
	in.edges = kept
}

func (p *particles) edgeLook(in *Instance) render.EdgeLook {
	cd := in.opt.ConnectionDistance
	name, formed := p.formed(in)
	mult, boost := reach(name)
	width := 0.5
	if !formed {
		mult = 1
	} else {
		width = 0.8
	}
	col := in.store.Tones().Primary
	return func(e connect.Edge, a, b *entity.Entity) (color.NRGBA, float64) {
		om := 1.0
		if formed && a.InPattern && b.InPattern {
			om = boost
		}
		k := max(1-e.Distance/(cd*mult), 0)
		alpha := math.Min(math.Pow(k, 1.5)*0.8*om, 0.9)
		if p.sacred {
			alpha = math.Min(alpha*in.opt.ConnectionOpacity*5, 0.6)
			width = in.opt.LineWidth
		}
		return theme.WithAlpha(col, alpha), width
	}
}

func (p *particles) node(in *Instance) render.NodeLook {
	highlight := in.opt.GlowOpacity > 0
	return func(e *entity.Entity) (float64, color.NRGBA, float64) {
		r, col, _ := render.FlatNode(e)
		if highlight && e.InPattern {
			return r * 1.2 * 2, col, in.opt.GlowOpacity
		}
		return r, col, 0
	}
}

func (p *particles) Draw(in *Instance, c render.Canvas, t Tick) {
	items := in.store.Items
	if p.sacred && p.rot != 0 {
		p.scratch = append(p.scratch[:0], items...)
		ctr := vmath.Vec2{X: in.store.W / 2, Y: in.store.H / 2}
		sin, cos := math.Sincos(p.rot)
		for i := range p.scratch {
			e := &p.scratch[i]
			if !e.InPattern {
				continue
			}
			dx, dy := e.X-ctr.X, e.Y-ctr.Y
			e.X = ctr.X + dx*cos - dy*sin
			e.Y = ctr.Y + dx*sin + dy*cos
		}
		items = p.scratch
	}
	render.Draw(c, render.Scene{Items: items, Edges: in.edges}, render.Style{
		Background: in.background(),
		Edge:       p.edgeLook(in),
		Node:       p.node(in),
	})
}
