package anim

import (
	"image/color"
	"math"

	"github.com/coreman2200/canvasfx/internal/connect"
	"github.com/coreman2200/canvasfx/internal/entity"
	"github.com/coreman2200/canvasfx/internal/render"
	"github.com/coreman2200/canvasfx/internal/theme"
)

// Sides of the split network.
const (
	human = 0
	ai    = 1
)

// split is two identical layered networks, human on the left and AI on
// the right, joined by cross links that carry pulses between them.
type split struct {
	links []connect.Edge // within a side
	cross []connect.Edge // between sides

	colour, glow [2]color.NRGBA
}

// layerY is the vertical placement of each layer as a fraction of height.
func layerY(i, n int) float64 {
	if n == 1 {
		return 0.5
	}
	return 0.2 + 0.6*float64(i)/float64(n-1)
}

func (s *split) Init(in *Instance) error {
	o := in.opt
	st := in.store
	rng := st.Rand()
	type slot struct{ x, y float64 }
	var layout [][]slot
	for li, count := range o.Layers {
		var row []slot
		for i := range count {
			x := 0.5
			if count > 1 {
				x = 0.1 + 0.8*float64(i)/float64(count-1)
			}
			row = append(row, slot{
				x: x + (rng.Float64()-0.5)*0.02,
				y: layerY(li, len(o.Layers)) + (rng.Float64()-0.5)*0.02,
			})
		}
		layout = append(layout, row)
	}

	// both sides share the layout; index = side*perSide + node
	perSide := 0
	for _, row := range layout {
		perSide += len(row)
	}
	half := st.W / 2
	for side := range 2 {
		for _, row := range layout {
			for _, sl := range row {
				e := entity.Entity{
					X:          float64(side)*half + sl.x*half,
					Y:          sl.y * st.H,
					Size:       o.Size.Sample(rng),
					Opacity:    1,
					Phase:      rng.Float64() * 2 * math.Pi,
					PulseSpeed: o.PulseSpeed.Sample(rng),
					Active:     rng.Float64() < o.ActiveRatio,
					Group:      side,
				}
				e.BaseSize = e.Size
				if side == ai {
					e.Tone = entity.Secondary
				}
				st.Items = append(st.Items, e)
			}
		}
	}

	// forward links from each node to 60% of the next layer
	start := 0
	for li := 0; li+1 < len(layout); li++ {
		next := start + len(layout[li])
		for i := range layout[li] {
			targets := rng.Perm(len(layout[li+1]))
			k := int(math.Ceil(float64(len(layout[li+1])) * 0.6))
			for _, t := range targets[:k] {
				strength := 0.4 + rng.Float64()*0.6
				for side := range 2 {
					off := side * perSide
					s.links = append(s.links, connect.Edge{I: off + start + i, J: off + next + t, Strength: strength})
				}
			}
		}
		start = next
	}

	if perSide == 0 {
		return nil
	}
	pick := func(side int) int {
		var active []int
		for i := range perSide {
			if st.Items[side*perSide+i].Active {
				active = append(active, side*perSide+i)
			}
		}
		if len(active) > 0 && rng.Float64() < 0.7 {
			return active[rng.IntN(len(active))]
		}
		return side*perSide + rng.IntN(perSide)
	}
	for range int(o.Connections.Mid()) * 2 {
		s.cross = append(s.cross, connect.Edge{I: pick(human), J: pick(ai), Strength: 0.3 + rng.Float64()*0.7})
	}
	return nil
}

func (s *split) Recolor(in *Instance, p theme.Palette) {
	s.colour[human] = in.color(p, theme.Human, "human")
	s.glow[human] = in.color(p, theme.HumanGradient, "human-gradient")
	s.colour[ai] = in.color(p, theme.AI, "ai")
	s.glow[ai] = in.color(p, theme.AIGradient, "ai-gradient")
	in.store.SetTones(theme.Tones{Primary: s.colour[human], Secondary: s.colour[ai], Accent: s.glow[human]})
}

func (s *split) Step(in *Instance, t Tick) {
	items := in.store.Items
	in.edges = append(in.edges[:0], s.links...)
	in.edges = append(in.edges, s.cross...)
	for i := range in.edges {
		e := &in.edges[i]
		e.Distance = items[e.I].Pos().DistTo(items[e.J].Pos())
	}
	in.fire(t, s.cross)
}

func (s *split) Draw(in *Instance, c render.Canvas, t Tick) {
	sec := t.Elapsed.Seconds()
	mid := theme.Interpolate(s.colour[human], s.colour[ai], 0.5)
	render.Draw(c, render.Scene{Items: in.store.Items, Transient: in.store.Transient, Edges: in.edges}, render.Style{
		Background: in.background(),
		Edge: func(e connect.Edge, a, b *entity.Entity) (color.NRGBA, float64) {
			if a.Group != b.Group {
				return theme.WithAlpha(mid, e.Strength*0.3), in.opt.LineWidth * 0.5
			}
			op := 0.1 + e.Strength*0.3 + math.Sin(sec*a.PulseSpeed+a.Phase)*0.1
			return theme.WithAlpha(s.colour[a.Group], op), 0.5
		},
		Impulse:      s.glow[ai],
		ImpulseWidth: 2,
		ImpulseDot:   true,
		Node: func(e *entity.Entity) (float64, color.NRGBA, float64) {
			r := e.Size * pulse(sec, e.PulseSpeed, e.Phase)
			if e.Active {
				return r * 3, s.glow[e.Group], 1
			}
			return r, s.colour[e.Group], 0
		},
	})
}
