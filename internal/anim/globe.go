package anim

import (
	"image/color"
	"math"

	"github.com/coreman2200/canvasfx/internal/connect"
	"github.com/coreman2200/canvasfx/internal/entity"
	"github.com/coreman2200/canvasfx/internal/physics"
	"github.com/coreman2200/canvasfx/internal/render"
	"github.com/coreman2200/canvasfx/internal/theme"
	"github.com/coreman2200/canvasfx/internal/vmath"
)

const (
	meridians = 12
	parallels = 5
	segments  = 36
)

// globe is the rotating wireframe sphere with community nodes on its
// surface linked by fixed random connections. The pointer steers the
// rotation while it is over the canvas.
type globe struct {
	spin  *physics.Globe
	links []connect.Edge
	tones theme.Tones
	line  []vmath.Vec2
}

func (g *globe) Init(in *Instance) error {
	o := in.opt
	err := in.store.Spawn(o.Count, entity.Spawn{
		Layout:         entity.Sphere,
		Size:           o.Size,
		PulseSpeed:     o.PulseSpeed,
		SecondaryRatio: o.SecondaryRatio,
		AccentRatio:    o.AccentRatio,
	})
	if err != nil {
		return err
	}
	g.spin = physics.NewGlobe(in.fps, o.RotationSpeed)
	g.link(in)
	g.project(in)
	return nil
}

// link gives every node a few random partners. Pairs are kept once.
func (g *globe) link(in *Instance) {
	n := in.store.Len()
	rng := in.store.Rand()
	seen := map[[2]int]bool{}
	g.links = g.links[:0]
	if n < 2 {
		return
	}
	for i := 0; i < n; i++ {
		k := int(math.Round(in.opt.Connections.Sample(rng)))
		for range k {
			j := rng.IntN(n - 1)
			if j >= i {
				j++
			}
			a, b := min(i, j), max(i, j)
			if seen[[2]int{a, b}] {
				continue
			}
			seen[[2]int{a, b}] = true
			g.links = append(g.links, connect.Edge{I: a, J: b, Strength: 0.1 + rng.Float64()*0.9})
		}
	}
}

func (g *globe) radius(in *Instance) float64 {
	return math.Min(in.opt.Radius, math.Min(in.store.W, in.store.H)*0.45)
}

func (g *globe) project(in *Instance) {
	r := g.radius(in)
	cx, cy := in.store.W/2, in.store.H/2
	for i := range in.store.Items {
		e := &in.store.Items[i]
		e.X, e.Y, e.Depth = physics.Project(e.Lat, e.Lng, g.spin.Rotation, cx, cy, r)
	}
	for i := range g.links {
		l := &g.links[i]
		l.Distance = in.store.Items[l.I].Pos().DistTo(in.store.Items[l.J].Pos())
	}
}

func (g *globe) Recolor(in *Instance, p theme.Palette) {
	g.tones = in.tones(p)
	in.store.SetTones(g.tones)
}

func (g *globe) Pointer(in *Instance, p physics.Pointer) {
	g.spin.Aim(p, in.store.W)
}

func (g *globe) Resized(in *Instance, _, _ float64) {
	g.project(in)
}

func (g *globe) Step(in *Instance, t Tick) {
	g.spin.Advance(float64(t.Delta) / float64(msDur(1)))
	g.project(in)
	items := in.store.Items
	in.edges = in.edges[:0]
	for _, l := range g.links {
		if items[l.I].Depth >= 0 || items[l.J].Depth >= 0 {
			in.edges = append(in.edges, l)
		}
	}
	in.fire(t, in.edges)
}

// graticule draws the front half of the meridians and parallels.
func (g *globe) graticule(in *Instance) func(c render.Canvas) {
	r := g.radius(in)
	cx, cy := in.store.W/2, in.store.H/2
	rot := g.spin.Rotation
	col := theme.WithAlpha(g.tones.Primary, 0.1)
	fill := theme.WithAlpha(g.tones.Primary, 0.05)
	return func(c render.Canvas) {
		c.Glow(vmath.Vec2{X: cx, Y: cy}, r, fill, 1)
		trace := func(at func(k int) (lat, lng float64)) {
			g.line = g.line[:0]
			for k := 0; k <= segments; k++ {
				lat, lng := at(k)
				x, y, z := physics.Project(lat, lng, rot, cx, cy, r)
				if z < 0 {
					if len(g.line) > 1 {
						c.Polyline(g.line, 0.5, col)
					}
					g.line = g.line[:0]
					continue
				}
				g.line = append(g.line, vmath.Vec2{X: x, Y: y})
			}
			if len(g.line) > 1 {
				c.Polyline(g.line, 0.5, col)
			}
		}
		for m := 0; m < meridians; m++ {
			lng := float64(m) / meridians * 2 * math.Pi
			trace(func(k int) (float64, float64) {
				return -math.Pi/2 + float64(k)/segments*math.Pi, lng
			})
		}
		for p := 1; p <= parallels; p++ {
			for _, sign := range []float64{1, -1} {
				lat := sign * float64(p) / (parallels + 1) * math.Pi / 2
				trace(func(k int) (float64, float64) {
					return lat, float64(k) / segments * 2 * math.Pi
				})
			}
		}
	}
}

func (g *globe) Draw(in *Instance, c render.Canvas, t Tick) {
	sec := t.Elapsed.Seconds()
	render.Draw(c, render.Scene{Items: in.store.Items, Transient: in.store.Transient, Edges: in.edges}, render.Style{
		Background: in.background(),
		Underlay:   g.graticule(in),
		Edge: func(e connect.Edge, a, b *entity.Entity) (color.NRGBA, float64) {
			depth := (math.Max(a.Depth, b.Depth) + 1) / 2
			return theme.WithAlpha(g.tones.Secondary, e.Strength*0.5*depth), in.opt.LineWidth
		},
		Impulse:      g.tones.Accent,
		ImpulseWidth: 1.5,
		ImpulseDot:   true,
		Node: func(e *entity.Entity) (float64, color.NRGBA, float64) {
			return e.Size * pulse(sec, e.PulseSpeed, e.Phase) * 2, e.Color, 1
		},
		Hidden: func(e *entity.Entity) bool { return e.Depth < 0 },
	})
}
