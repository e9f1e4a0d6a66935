package anim

import (
	"image/color"
	"math"
	"strconv"

	"github.com/coreman2200/canvasfx/internal/connect"
	"github.com/coreman2200/canvasfx/internal/entity"
	"github.com/coreman2200/canvasfx/internal/render"
	"github.com/coreman2200/canvasfx/internal/theme"
	"github.com/coreman2200/canvasfx/internal/vmath"
)

// Entity groups of the hub diagram. Clusters are 0..len(Layers)-1.
const (
	sageHub  = -1
	sageRole = -2
)

const (
	sageRings    = 2
	sageSides    = 6
	sageRoleSize = 6
	// signals count as arrived within this many pixels
	sageArrive = 5
)

// sageClusters names the cluster colour slots in order.
var sageClusters = []string{"visual", "analytical", "pattern"}

// sageArcs is the angular span of each cluster around the hub.
var sageArcs = [][2]float64{
	{-math.Pi / 6, math.Pi / 2},
	{math.Pi / 2, math.Pi + math.Pi/6},
	{math.Pi + math.Pi/6, 2*math.Pi - math.Pi/6},
}

// Signal travel states.
const (
	outbound = iota
	dwelling
	inbound
)

// signal is a particle running from the hub to a cluster node and back.
type signal struct {
	target   int
	state    int
	progress float64 // 0 at the hub, 1 at the target
	dwell    float64
	delay    float64 // frames
	speed    float64
	size     float64
}

// sage is a hub diagram: a central node wired to clusters of processing
// nodes, hexagonal boundary rings, signals flowing out and back, and a ring
// of role nodes whose highlight moves on every CycleMS.
type sage struct {
	hub, boundary color.NRGBA
	colours       []color.NRGBA

	clusters  [][]int
	roleStart int
	active    int
	switched  float64 // elapsed ms at the last role change
	now       float64

	rings   [sageRings]float64
	links   []connect.Edge
	signals []signal
	outline []vmath.Vec2
}

func (s *sage) Init(in *Instance) error {
	o := in.opt
	st := in.store
	rng := st.Rand()
	cx, cy := st.W/2, st.H/2
	radius := math.Min(cx, cy) * o.Radius

	st.Items = append(st.Items, entity.Entity{X: cx, Y: cy, CX: cx, CY: cy, Group: sageHub, Opacity: 1})
	for ci, n := range o.Layers {
		arc := sageArcs[ci%len(sageArcs)]
		step := 0.0
		if n > 1 {
			step = (arc[1] - arc[0]) / float64(n-1)
		}
		var members []int
		for i := range n {
			e := entity.Entity{
				CX:        cx,
				CY:        cy,
				Angle:     arc[0] + step*float64(i),
				OrbitDist: radius * (0.5 + float64(i%3)*0.16),
				Size:      4 + rng.Float64()*3,
				Opacity:   0.7,
				Phase:     rng.Float64() * 2 * math.Pi,
				Group:     ci,
			}
			e.BaseSize = e.Size
			members = append(members, st.Len())
			s.links = append(s.links, connect.Edge{I: 0, J: st.Len(), Strength: 0.3})
			st.Items = append(st.Items, e)
		}
		for a := range members {
			for b := a + 1; b < len(members); b++ {
				s.links = append(s.links, connect.Edge{I: members[a], J: members[b], Strength: 0.15})
			}
		}
		s.clusters = append(s.clusters, members)
	}

	s.roleStart = st.Len()
	for i := range o.Roles {
		st.Items = append(st.Items, entity.Entity{
			CX:        cx,
			CY:        cy,
			Angle:     2 * math.Pi * float64(i) / float64(len(o.Roles)),
			OrbitDist: radius * 0.9,
			Size:      sageRoleSize,
			BaseSize:  sageRoleSize,
			Opacity:   1,
			Group:     sageRole,
		})
	}
	in.group = 0

	for i := range s.rings {
		s.rings[i] = rng.Float64() * 2 * math.Pi
	}
	for range o.Count {
		sg := signal{
			delay: rng.Float64() * 100,
			speed: 0.5 + rng.Float64()*0.5,
			size:  o.Size.Sample(rng),
		}
		s.retarget(in, &sg)
		s.signals = append(s.signals, sg)
	}
	s.place(in)
	return nil
}

// retarget sends sg towards a random node of a random cluster.
func (s *sage) retarget(in *Instance, sg *signal) {
	sg.state, sg.progress, sg.dwell = outbound, 0, 0
	sg.target = 0
	if len(s.clusters) == 0 {
		return
	}
	rng := in.store.Rand()
	c := s.clusters[rng.IntN(len(s.clusters))]
	if len(c) > 0 {
		sg.target = c[rng.IntN(len(c))]
	}
}

func (s *sage) Recolor(in *Instance, p theme.Palette) {
	s.hub = in.color(p, theme.Primary, "primary")
	s.boundary = theme.WithAlpha(in.color(p, "--color-accent-4", "boundary"), 0.15)
	s.colours = s.colours[:0]
	for i := range s.clusters {
		slot := sageClusters[i%len(sageClusters)]
		s.colours = append(s.colours, in.color(p, "--color-accent-"+strconv.Itoa(i%len(sageClusters)+1), slot))
	}
	in.store.SetTones(theme.Tones{Primary: s.hub, Secondary: s.hub, Accent: s.hub})
}

func (s *sage) Groups(in *Instance) int { return len(in.opt.Roles) }

func (s *sage) Highlight(in *Instance, group int) {
	s.active = group
	s.switched = s.now
}

// place puts every node at its angle and breathing distance from the hub.
func (s *sage) place(in *Instance) {
	items := in.store.Items
	if len(items) == 0 {
		return
	}
	items[0].X, items[0].Y = items[0].CX, items[0].CY
	items[0].Size = math.Min(in.store.W, in.store.H) / 2 * 0.08
	for i := 1; i < len(items); i++ {
		e := &items[i]
		d := e.OrbitDist
		if e.Group >= 0 {
			d += math.Sin(e.Phase) * 5
		}
		e.X = e.CX + math.Cos(e.Angle)*d
		e.Y = e.CY + math.Sin(e.Angle)*d
	}
}

func (s *sage) Step(in *Instance, t Tick) {
	dt := t.DT * in.motion.SpeedScale
	s.now = float64(t.Elapsed) / float64(msDur(1))
	items := in.store.Items
	for i := range items {
		e := &items[i]
		rate := 0.01
		switch e.Group {
		case sageHub:
			rate = 0.03
		case sageRole:
			rate = 0.02
		}
		e.Phase = math.Mod(e.Phase+rate*dt, 2*math.Pi)
	}
	for i := range s.rings {
		s.rings[i] = math.Mod(s.rings[i]+0.005*dt, 2*math.Pi)
	}
	s.place(in)

	// roles light up by turn, everything else under the pointer
	p := in.pointer
	for i := range items {
		e := &items[i]
		if e.Group == sageRole {
			e.Active = i-s.roleStart == s.active
			continue
		}
		e.Active = p.Valid && e.Pos().DistTo(vmath.Vec2{X: p.X, Y: p.Y}) <= e.Size
	}

	for i := range s.signals {
		s.move(in, &s.signals[i], dt)
	}
	in.edges = s.links

	if cyc := in.opt.CycleMS; cyc > 0 && len(in.opt.Roles) > 1 && s.now-s.switched >= cyc {
		in.HighlightNext()
	}
}

func (s *sage) move(in *Instance, sg *signal, dt float64) {
	if sg.delay > 0 {
		sg.delay -= dt
		return
	}
	items := in.store.Items
	dist := items[0].Pos().DistTo(items[sg.target].Pos())
	if dist <= 0 {
		s.retarget(in, sg)
		return
	}
	v := sg.speed * in.opt.Speed * dt / dist
	switch sg.state {
	case outbound:
		sg.progress = math.Min(sg.progress+v, 1)
		if (1-sg.progress)*dist <= sageArrive {
			sg.state, sg.dwell = dwelling, 0
		}
	case dwelling:
		sg.dwell += 0.02 * dt
		if sg.dwell >= 1 {
			sg.state = inbound
		}
	case inbound:
		sg.progress = math.Max(sg.progress-v, 0)
		if sg.progress*dist <= sageArrive {
			s.retarget(in, sg)
		}
	}
}

// ring traces one hexagonal boundary, its corners wobbling with the pulse.
func (s *sage) ring(in *Instance, k int) []vmath.Vec2 {
	cx, cy := in.store.W/2, in.store.H/2
	r := math.Min(cx, cy) * 0.85 * float64(k+1) / sageRings
	s.outline = s.outline[:0]
	for i := range sageSides + 1 {
		a := 2 * math.Pi * float64(i%sageSides) / sageSides
		d := r + math.Sin(a*3+s.rings[k])*5
		s.outline = append(s.outline, vmath.Vec2{X: cx + math.Cos(a)*d, Y: cy + math.Sin(a)*d})
	}
	return s.outline
}

func (s *sage) cluster(g int) color.NRGBA {
	if g >= 0 && g < len(s.colours) {
		return s.colours[g]
	}
	return s.hub
}

func (s *sage) Draw(in *Instance, c render.Canvas, t Tick) {
	items := in.store.Items
	render.Draw(c, render.Scene{Items: items, Edges: in.edges}, render.Style{
		Background: in.background(),
		Underlay: func(c render.Canvas) {
			for k := range s.rings {
				c.Polyline(s.ring(in, k), 1, s.boundary)
			}
			for _, sg := range s.signals {
				if sg.delay > 0 {
					continue
				}
				alpha := 0.8
				if sg.state == dwelling {
					alpha = 0.5 + math.Sin(sg.dwell*math.Pi)*0.5
				}
				pos := items[0].Pos().Lerp(items[sg.target].Pos(), sg.progress)
				c.Circle(pos, sg.size, theme.WithAlpha(s.cluster(items[sg.target].Group), alpha))
			}
		},
		Edge: func(e connect.Edge, a, b *entity.Entity) (color.NRGBA, float64) {
			w := 0.3
			if a.Group == sageHub {
				w = 0.5
			}
			return theme.WithAlpha(s.cluster(b.Group), e.Strength), w
		},
		Node: func(e *entity.Entity) (float64, color.NRGBA, float64) {
			switch e.Group {
			case sageHub:
				return e.Size * (1 + math.Sin(e.Phase)*0.2) * 2, s.hub, 1
			case sageRole:
				if e.Active {
					return e.Size * (1 + math.Sin(e.Phase)*0.2) * 2, s.hub, 1
				}
				return e.Size, theme.WithAlpha(s.hub, 0.5), 0
			}
			if e.Active {
				return e.Size * 1.3, s.cluster(e.Group), 0
			}
			return e.Size, theme.WithAlpha(s.cluster(e.Group), e.Opacity), 0
		},
	})
}
