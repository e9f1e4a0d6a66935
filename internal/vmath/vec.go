package vmath

import "math"

// Vec2 is a point or direction in canvas (CSS pixel) space.
type Vec2 struct{ X, Y float64 }

func (v Vec2) Add(o Vec2) Vec2        { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2        { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(s float64) Vec2   { return Vec2{v.X * s, v.Y * s} }
func (v Vec2) Len() float64           { return math.Hypot(v.X, v.Y) }
func (v Vec2) DistTo(o Vec2) float64  { return Dist(v.X, v.Y, o.X, o.Y) }
func (v Vec2) Lerp(o Vec2, t float64) Vec2 {
	return Vec2{Lerp(v.X, o.X, t), Lerp(v.Y, o.Y, t)}
}

// Polar returns the point at angle a (radians) and radius r around c.
func Polar(c Vec2, r, a float64) Vec2 {
	return Vec2{c.X + r*math.Cos(a), c.Y + r*math.Sin(a)}
}

func Dist(ax, ay, bx, by float64) float64 { return math.Hypot(bx-ax, by-ay) }

func Lerp(a, b, t float64) float64 { return a + (b-a)*t }

func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func Clamp01(x float64) float64 { return Clamp(x, 0, 1) }

// MapRange maps x from [inLo,inHi] onto [outLo,outHi] without clamping.
func MapRange(x, inLo, inHi, outLo, outHi float64) float64 {
	if inHi == inLo {
		return outLo
	}
	return outLo + (x-inLo)*(outHi-outLo)/(inHi-inLo)
}

// ClampLen scales (x,y) uniformly so its length is at most max.
// Direction is preserved; components are never clamped independently.
func ClampLen(x, y, max float64) (float64, float64) {
	l := math.Hypot(x, y)
	if l <= max || l == 0 {
		return x, y
	}
	k := max / l
	return x * k, y * k
}
