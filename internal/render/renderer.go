package render

import (
	"image/color"

	"github.com/coreman2200/canvasfx/internal/connect"
	"github.com/coreman2200/canvasfx/internal/entity"
	"github.com/coreman2200/canvasfx/internal/theme"
	"github.com/coreman2200/canvasfx/internal/vmath"
)

// Scene is one frame's worth of state handed to Draw.
type Scene struct {
	Items     []entity.Entity
	Transient []entity.Entity
	Edges     []connect.Edge
}

// EdgeLook returns the colour (alpha included) and width of one edge.
// A zero alpha skips the edge.
type EdgeLook func(e connect.Edge, a, b *entity.Entity) (color.NRGBA, float64)

// NodeLook returns the radius, colour and glow intensity of one entity.
// Glow 0 draws a flat disc.
type NodeLook func(e *entity.Entity) (float64, color.NRGBA, float64)

// Style parameterises Draw for one effect kind.
type Style struct {
	Background color.NRGBA

	Edge     EdgeLook
	EdgeGlow float64

	Impulse      color.NRGBA
	ImpulseWidth float64
	// ImpulseDot draws impulses as a travelling dot instead of a fading line.
	ImpulseDot bool

	// Underlay draws static decoration between the clear and the edges.
	Underlay func(c Canvas)

	Node       NodeLook
	TrailWidth float64

	// Hidden entities are not drawn; an edge is dropped only when both of
	// its ends are hidden.
	Hidden func(e *entity.Entity) bool
}

// FlatNode draws entities at their size and opacity without glow.
func FlatNode(e *entity.Entity) (float64, color.NRGBA, float64) {
	return e.Size, theme.WithAlpha(e.Color, float64(e.Color.A)/255*e.Opacity), 0
}

// StrengthEdge fades edges of colour c by their strength.
func StrengthEdge(c color.NRGBA, width float64) EdgeLook {
	return func(e connect.Edge, _, _ *entity.Entity) (color.NRGBA, float64) {
		return theme.WithAlpha(c, e.Strength), width
	}
}

// Draw paints the scene back to front: background, edges, impulses, then
// trails and entities.
func Draw(c Canvas, sc Scene, st Style) {
	c.Clear(st.Background)
	if st.Underlay != nil {
		st.Underlay(c)
	}
	hidden := func(i int) bool {
		return st.Hidden != nil && st.Hidden(&sc.Items[i])
	}

	if st.Edge != nil {
		for _, e := range sc.Edges {
			if hidden(e.I) && hidden(e.J) {
				continue
			}
			a, b := &sc.Items[e.I], &sc.Items[e.J]
			col, w := st.Edge(e, a, b)
			if col.A == 0 || w <= 0 {
				continue
			}
			if st.EdgeGlow > 0 {
				GlowLine(c, a.Pos(), b.Pos(), w*e.Strength, st.EdgeGlow*e.Strength, col)
			} else {
				c.Line(a.Pos(), b.Pos(), w, col)
			}
		}
	}

	for i := range sc.Transient {
		t := &sc.Transient[i]
		if t.From < 0 || t.To < 0 || t.From >= len(sc.Items) || t.To >= len(sc.Items) {
			continue
		}
		from, to := sc.Items[t.From].Pos(), sc.Items[t.To].Pos()
		if st.ImpulseDot {
			p := from.Lerp(to, t.Progress())
			c.Glow(p, st.ImpulseWidth*3, st.Impulse, 1)
			c.Circle(p, st.ImpulseWidth, st.Impulse)
			continue
		}
		fade := 1 - t.Progress()
		col := theme.WithAlpha(st.Impulse, float64(st.Impulse.A)/255*fade)
		GlowLine(c, from, to, st.ImpulseWidth, 10*fade, col)
	}

	node := st.Node
	if node == nil {
		node = FlatNode
	}
	for i := range sc.Items {
		if hidden(i) {
			continue
		}
		e := &sc.Items[i]
		r, col, glow := node(e)
		if st.TrailWidth > 0 && len(e.Trail) > 1 {
			drawTrail(c, e.Trail, st.TrailWidth, col)
		}
		if glow > 0 {
			c.Glow(e.Pos(), r, col, glow)
			c.Circle(e.Pos(), r*0.5, col)
			continue
		}
		c.Circle(e.Pos(), r, col)
	}
}

// GlowLine draws a soft halo of width+glow under a solid core line.
func GlowLine(c Canvas, a, b vmath.Vec2, width, glow float64, col color.NRGBA) {
	if glow > 0 {
		c.Line(a, b, width+glow, theme.WithAlpha(col, float64(col.A)/255*0.2))
	}
	c.Line(a, b, width, col)
}

// drawTrail fades older trail segments toward transparent.
func drawTrail(c Canvas, trail []vmath.Vec2, width float64, col color.NRGBA) {
	n := len(trail)
	for i := 0; i < n-1; i++ {
		k := 1 - float64(i)/float64(n)
		c.Line(trail[i], trail[i+1], width*k, theme.WithAlpha(col, float64(col.A)/255*k*0.5))
	}
}
