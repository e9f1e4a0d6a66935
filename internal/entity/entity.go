package entity

import (
	"image/color"
	"time"

	"github.com/coreman2200/canvasfx/internal/vmath"
)

// Tone selects which theme colour an entity is painted with.
type Tone uint8

const (
	Primary Tone = iota
	Secondary
	Accent
)

// Next cycles primary -> secondary -> accent -> primary.
func (t Tone) Next() Tone { return (t + 1) % 3 }

// Entity is one particle or node. It is owned by exactly one Store.
type Entity struct {
	X, Y   float64
	VX, VY float64

	Size     float64
	BaseSize float64
	Tone     Tone
	Color    color.NRGBA
	Opacity  float64

	Phase      float64
	PulseSpeed float64

	TargetX, TargetY float64
	StartX, StartY   float64
	InPattern        bool
	Active           bool
	Group            int
	Delay            time.Duration

	// Orbit layout: angular motion around (CX, CY).
	CX, CY     float64
	Angle      float64
	OrbitDist  float64
	OrbitSpeed float64

	// Sphere layout: radians; Depth is the projected z (negative = far side).
	Lat, Lng float64
	Depth    float64

	// Entrance and colour cycling progress in [0,1].
	Entrance float64
	Blend    float64

	Trail []vmath.Vec2

	// Transient entities only.
	Age, TTL time.Duration
	From, To int
}

func (e *Entity) Pos() vmath.Vec2 { return vmath.Vec2{X: e.X, Y: e.Y} }

func (e *Entity) Speed() float64 { return vmath.Vec2{X: e.VX, Y: e.VY}.Len() }

// Expired reports whether a transient entity has outlived its TTL.
func (e *Entity) Expired() bool { return e.TTL > 0 && e.Age >= e.TTL }

// Progress is Age/TTL clamped to [0,1]; zero for permanent entities.
func (e *Entity) Progress() float64 {
	if e.TTL <= 0 {
		return 0
	}
	return vmath.Clamp01(float64(e.Age) / float64(e.TTL))
}

// PushTrail prepends the current position, keeping at most n points.
func (e *Entity) PushTrail(n int) {
	if n <= 0 {
		e.Trail = e.Trail[:0]
		return
	}
	if len(e.Trail) > n {
		e.Trail = e.Trail[:n]
	}
	if len(e.Trail) < n {
		e.Trail = append(e.Trail, vmath.Vec2{})
	}
	copy(e.Trail[1:], e.Trail[:len(e.Trail)-1])
	e.Trail[0] = e.Pos()
}
