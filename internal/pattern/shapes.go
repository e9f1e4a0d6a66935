package pattern

import (
	"math"

	"github.com/coreman2200/canvasfx/internal/vmath"
)

const (
	FlowerOfLife    = "flower-of-life"
	MetatronCube    = "metatron-cube"
	FibonacciSpiral = "fibonacci-spiral"
	PlatonicSolid   = "platonic-solid"
	VesicaPiscis    = "vesica-piscis"
)

// DefaultSequence is the order the cycle walks through the built-in shapes.
var DefaultSequence = []string{FlowerOfLife, MetatronCube, FibonacciSpiral, PlatonicSolid, VesicaPiscis}

var phi = (1 + math.Sqrt(5)) / 2

func centre(w, h float64) vmath.Vec2 { return vmath.Vec2{X: w / 2, Y: h / 2} }

// ring appends n points evenly spaced on a circle, starting at angle off.
func ring(pts []vmath.Vec2, c vmath.Vec2, r float64, n int, off float64) []vmath.Vec2 {
	for i := 0; i < n; i++ {
		pts = append(pts, vmath.Polar(c, r, off+2*math.Pi*float64(i)/float64(n)))
	}
	return pts
}

func flowerOfLife(w, h float64, _ int) []vmath.Vec2 {
	c := centre(w, h)
	r := math.Min(w, h) * 0.25
	pts := []vmath.Vec2{c}
	pts = ring(pts, c, r, 6, 0)
	for i := 0; i < 6; i++ {
		base := math.Pi / 3 * float64(i)
		petal := vmath.Polar(c, r, base)
		for j := 0; j < 6; j++ {
			pts = append(pts, vmath.Polar(petal, r, base+math.Pi/3*float64(j)))
		}
	}
	for i := 0; i < 12; i++ {
		a := math.Pi / 6 * float64(i)
		pts = append(pts, vmath.Polar(c, r*0.5, a), vmath.Polar(c, r*1.5, a))
	}
	for i := 0; i < 6; i++ {
		a := math.Pi / 3 * float64(i)
		pts = append(pts, vmath.Polar(c, r*0.33, a), vmath.Polar(c, r*0.66, a))
	}
	return ring(pts, c, r*0.866, 12, 0)
}

func metatronCube(w, h float64, _ int) []vmath.Vec2 {
	c := centre(w, h)
	s := math.Min(w, h) * 0.3
	pts := []vmath.Vec2{c}
	pts = ring(pts, c, s, 6, 0)
	pts = ring(pts, c, s*1.5, 6, math.Pi/6)
	return ring(pts, c, s*0.5, 12, 0)
}

// fibonacciSpiral keeps only every third spiral sample so the arm stays
// sparse; the reference rings and rays carry the density.
func fibonacciSpiral(w, h float64, count int) []vmath.Vec2 {
	c := centre(w, h)
	s := math.Min(w, h) * 0.35
	pts := []vmath.Vec2{c}
	n := math.Min(float64(count)*0.4, 120)
	for i := 1; float64(i) < n; i++ {
		if i%3 != 0 {
			continue
		}
		a := float64(i) * (2 * math.Pi / phi)
		pts = append(pts, vmath.Polar(c, s*math.Pow(float64(i)/n, 0.8), a))
	}
	for i := 1; i <= 5; i++ {
		pts = ring(pts, c, s*float64(i)/5, 8+i*4, 0)
	}
	for i := 0; i < 8; i++ {
		a := float64(i) * math.Pi / 4
		for k := 1; k <= 5; k++ {
			pts = append(pts, vmath.Polar(c, s*0.2*float64(k), a))
		}
	}
	for _, ratio := range []float64{1 / phi, 1 / phi / phi, 1 / phi / phi / phi} {
		sz := s * ratio
		for _, d := range [][2]float64{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}} {
			pts = append(pts, vmath.Vec2{X: c.X + sz*d[0], Y: c.Y + sz*d[1]})
		}
	}
	return pts
}

func platonicSolid(w, h float64, _ int) []vmath.Vec2 {
	c := centre(w, h)
	s := math.Min(w, h) * 0.25
	pts := []vmath.Vec2{c}

	const layers = 3
	spacing := s * 0.25
	for l := 0; l < layers; l++ {
		lr := s * (0.4 + float64(l)*0.2)
		n := 8 + l*4
		pts = ring(pts, c, lr, n, 0)
		if l < layers-1 {
			pts = ring(pts, c, lr+spacing/2, n, math.Pi/float64(n))
		}
	}
	for _, p := range [][2]float64{{0, -0.8}, {0, 0.8}, {-0.8, 0}, {0.8, 0}, {0, 0}, {-0.4, -0.4}, {0.4, -0.4}, {-0.4, 0.4}, {0.4, 0.4}} {
		pts = append(pts, vmath.Vec2{X: c.X + s*p[0], Y: c.Y + s*p[1]})
	}

	tr := s * 0.6
	for i := 0; i < 4; i++ {
		a := math.Pi/6 + math.Pi/2*float64(i)
		pts = append(pts, vmath.Polar(c, tr, a), vmath.Polar(c, tr*0.8, a+math.Pi/4))
	}
	for i := 0; i < 10; i++ {
		r := s * 0.3
		if i%2 == 0 {
			r = s * 0.45
		}
		pts = append(pts, vmath.Polar(c, r, math.Pi/5*float64(i)))
	}
	for i := 0; i < 6; i++ {
		a := math.Pi / 3 * float64(i)
		for k := 1; k <= 4; k++ {
			pts = append(pts, vmath.Polar(c, s*0.2*float64(k), a))
		}
	}
	return pts
}

func vesicaPiscis(w, h float64, _ int) []vmath.Vec2 {
	c := centre(w, h)
	r := math.Min(w, h) * 0.25
	left := vmath.Vec2{X: c.X - r/2, Y: c.Y}
	right := vmath.Vec2{X: c.X + r/2, Y: c.Y}

	var pts []vmath.Vec2
	pts = ring(pts, left, r, 48, 0)
	pts = ring(pts, right, r, 48, 0)

	ih := math.Sqrt(3) * r / 2
	for i := 0; i < 30; i++ {
		pts = append(pts, vmath.Vec2{X: c.X, Y: c.Y - ih + 2*ih*float64(i)/29})
	}
	pts = append(pts, left, right, c)

	const outline = 36
	for i := 0; i < outline; i++ {
		t := float64(i) / (outline - 1)
		pts = append(pts,
			vmath.Polar(left, r, math.Pi/3+4*math.Pi/3*t),
			vmath.Polar(right, r, -math.Pi/3-4*math.Pi/3*t))
	}
	for _, k := range []float64{0.3, 0.55, 0.8} {
		pts = ring(pts, c, r*k, 16, 0)
	}
	return ring(pts, c, r/phi, 12, 0)
}
