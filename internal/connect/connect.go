package connect

import (
	"math"
	"sort"

	"github.com/coreman2200/canvasfx/internal/vmath"
)

// Edge is a transient link between two entities, I < J.
type Edge struct {
	I, J     int
	Distance float64
	Strength float64
}

// Connector derives the edge list for one frame. Implementations must return
// every unordered pair closer than max, each exactly once.
type Connector interface {
	Connect(dst []Edge, pts []vmath.Vec2, max float64) []Edge
}

// Find is the quadratic scan: all pairs i<j with distance < max.
func Find(pts []vmath.Vec2, max float64) []Edge {
	return Brute{}.Connect(nil, pts, max)
}

type Brute struct{}

func (Brute) Connect(dst []Edge, pts []vmath.Vec2, max float64) []Edge {
	dst = dst[:0]
	if max <= 0 {
		return dst
	}
	for i := 0; i < len(pts); i++ {
		for j := i + 1; j < len(pts); j++ {
			if e, ok := link(pts, i, j, max); ok {
				dst = append(dst, e)
			}
		}
	}
	return dst
}

func link(pts []vmath.Vec2, i, j int, max float64) (Edge, bool) {
	d := math.Hypot(pts[j].X-pts[i].X, pts[j].Y-pts[i].Y)
	if d >= max {
		return Edge{}, false
	}
	return Edge{I: i, J: j, Distance: d, Strength: 1 - d/max}, true
}

// Sort orders edges by (I, J) so brute and grid output compare equal.
func Sort(es []Edge) {
	sort.Slice(es, func(a, b int) bool {
		if es[a].I != es[b].I {
			return es[a].I < es[b].I
		}
		return es[a].J < es[b].J
	})
}

// Degree counts edges per entity.
func Degree(es []Edge, n int) []int {
	deg := make([]int, n)
	for _, e := range es {
		deg[e.I]++
		deg[e.J]++
	}
	return deg
}

// Ensure tops up entities selected by want with fewer than min edges by
// linking them to their nearest neighbours within max. Added edges keep I<J
// and never duplicate an existing pair.
func Ensure(es []Edge, pts []vmath.Vec2, max float64, min int, want func(int) bool) []Edge {
	if min <= 0 || max <= 0 {
		return es
	}
	deg := Degree(es, len(pts))
	have := make(map[[2]int]bool, len(es))
	for _, e := range es {
		have[[2]int{e.I, e.J}] = true
	}
	type cand struct {
		idx int
		d   float64
	}
	var cs []cand
	for i := range pts {
		if deg[i] >= min || (want != nil && !want(i)) {
			continue
		}
		cs = cs[:0]
		for j := range pts {
			if j == i {
				continue
			}
			d := math.Hypot(pts[j].X-pts[i].X, pts[j].Y-pts[i].Y)
			if d < max {
				cs = append(cs, cand{j, d})
			}
		}
		sort.Slice(cs, func(a, b int) bool { return cs[a].d < cs[b].d })
		for _, c := range cs {
			if deg[i] >= min {
				break
			}
			a, b := i, c.idx
			if a > b {
				a, b = b, a
			}
			if have[[2]int{a, b}] {
				continue
			}
			have[[2]int{a, b}] = true
			es = append(es, Edge{I: a, J: b, Distance: c.d, Strength: 1 - c.d/max})
			deg[i]++
			deg[c.idx]++
		}
	}
	return es
}
