package physics

import (
	"math"

	"github.com/charmbracelet/harmonica"
)

// Project maps a point on the unit sphere (radians) rotated by rot around the
// vertical axis onto the screen. z < 0 means the point is on the far side.
func Project(lat, lng, rot, cx, cy, radius float64) (x, y, z float64) {
	l := lng + rot
	x = cx + radius*math.Cos(lat)*math.Sin(l)
	y = cy - radius*math.Sin(lat)
	z = math.Cos(lat) * math.Cos(l)
	return x, y, z
}

// Globe is the rotation state of the community globe: it spins at Speed
// radians per millisecond until the pointer takes over, then springs toward
// the pointer's target angle.
type Globe struct {
	Speed    float64
	Rotation float64

	target   float64
	vel      float64
	tracking bool
	spring   harmonica.Spring
}

func NewGlobe(fps int, speed float64) *Globe {
	if fps <= 0 {
		fps = 60
	}
	return &Globe{Speed: speed, spring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0)}
}

// Aim points the globe at the pointer; an invalid pointer resumes auto spin.
func (g *Globe) Aim(p Pointer, width float64) {
	if !p.Valid || width <= 0 {
		g.tracking = false
		g.target = 0
		return
	}
	cx := width / 2
	g.target = (p.X - cx) / cx * math.Pi * 0.5
	g.tracking = true
}

// Advance moves the rotation forward by dtMS milliseconds.
func (g *Globe) Advance(dtMS float64) {
	if g.tracking {
		g.Rotation, g.vel = g.spring.Update(g.Rotation, g.vel, g.target)
		return
	}
	g.vel = 0
	g.Rotation = math.Mod(g.Rotation+g.Speed*dtMS, 2*math.Pi)
}
