package connect

import (
	"math"

	"github.com/coreman2200/canvasfx/internal/vmath"
)

// Grid buckets points into square cells of side max so only neighbouring
// cells are compared. Output is the same pair set as Brute, in a different
// order.
type Grid struct {
	cells map[[2]int][]int
}

func NewGrid() *Grid { return &Grid{cells: map[[2]int][]int{}} }

func (g *Grid) Connect(dst []Edge, pts []vmath.Vec2, max float64) []Edge {
	dst = dst[:0]
	if max <= 0 {
		return dst
	}
	for k, v := range g.cells {
		g.cells[k] = v[:0]
	}
	cell := func(p vmath.Vec2) [2]int {
		return [2]int{int(math.Floor(p.X / max)), int(math.Floor(p.Y / max))}
	}
	for i, p := range pts {
		c := cell(p)
		g.cells[c] = append(g.cells[c], i)
	}
	for i, p := range pts {
		c := cell(p)
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				for _, j := range g.cells[[2]int{c[0] + dx, c[1] + dy}] {
					if j <= i {
						continue
					}
					if e, ok := link(pts, i, j, max); ok {
						dst = append(dst, e)
					}
				}
			}
		}
	}
	return dst
}
