package physics

import (
	"math"
	"math/rand/v2"

	perlin "github.com/aquilax/go-perlin"

	"github.com/coreman2200/canvasfx/internal/entity"
	"github.com/coreman2200/canvasfx/internal/vmath"
)

type Boundary string

const (
	Wrap   Boundary = "wrap"
	Bounce Boundary = "bounce"
	Open   Boundary = "none"
)

// Pointer is the cursor in canvas space. The zero value (Valid false) is the
// "pointer left" sentinel and disables the pointer term entirely.
type Pointer struct {
	X, Y  float64
	Valid bool
}

func At(x, y float64) Pointer { return Pointer{X: x, Y: y, Valid: true} }

// Motion is the per-instance motion policy. dt passed to Step is measured in
// 60 Hz frames, so dt == 1 reproduces the fixed per-frame behaviour.
type Motion struct {
	SpeedScale float64
	Friction   float64
	MaxSpeed   float64

	PointerRadius float64
	PointerForce  float64
	// Attract pulls toward the pointer instead of pushing away.
	Attract bool

	// Orbital spring toward OrbitRadius around the canvas centre.
	OrbitK      float64
	OrbitRadius float64

	NoiseForce float64
	NoiseScale float64

	JitterChance    float64
	JitterMagnitude float64

	Boundary    Boundary
	Restitution float64
	// Wrap margin beyond each edge, as a multiple of the entity size.
	WrapMargin float64

	rng   *rand.Rand
	noise *perlin.Perlin
}

// NewMotion binds a policy to a random source. noiseSeed seeds the perlin field
// used by the wander term.
func NewMotion(m Motion, rng *rand.Rand, noiseSeed int64) *Motion {
	if m.SpeedScale == 0 {
		m.SpeedScale = 1
	}
	if m.Friction == 0 {
		m.Friction = 1
	}
	if m.Boundary == "" {
		m.Boundary = Wrap
	}
	if m.NoiseScale == 0 {
		m.NoiseScale = 0.005
	}
	m.rng = rng
	if m.NoiseForce != 0 {
		m.noise = perlin.NewPerlin(2, 2, 3, noiseSeed)
	}
	return &m
}

// Step integrates every free entity of s. Entities flagged InPattern are left
// to the morph engine. t is elapsed seconds and animates the noise field.
func (m *Motion) Step(s *entity.Store, p Pointer, dt, t float64) {
	if dt <= 0 {
		return
	}
	cx, cy := s.W/2, s.H/2
	fr := math.Pow(m.Friction, dt)
	for i := range s.Items {
		e := &s.Items[i]
		if e.InPattern {
			continue
		}
		if p.Valid && m.PointerRadius > 0 {
			m.pointer(e, p, dt)
		}
		if m.OrbitK != 0 {
			m.orbit(e, cx, cy, dt)
		}
		if m.noise != nil {
			a := m.noise.Noise2D(e.X*m.NoiseScale, e.Y*m.NoiseScale+t*0.1) * 2 * math.Pi
			e.VX += math.Cos(a) * m.NoiseForce * dt
			e.VY += math.Sin(a) * m.NoiseForce * dt
		}
		if m.JitterChance > 0 && m.rng.Float64() < m.JitterChance*dt {
			e.VX += (m.rng.Float64() - 0.5) * m.JitterMagnitude
			e.VY += (m.rng.Float64() - 0.5) * m.JitterMagnitude
		}
		e.VX *= fr
		e.VY *= fr
		if m.MaxSpeed > 0 {
			e.VX, e.VY = vmath.ClampLen(e.VX, e.VY, m.MaxSpeed)
		}
		e.X += e.VX * m.SpeedScale * dt
		e.Y += e.VY * m.SpeedScale * dt
		m.bound(e, s.W, s.H)
	}
}

func (m *Motion) pointer(e *entity.Entity, p Pointer, dt float64) {
	dx, dy := e.X-p.X, e.Y-p.Y
	d := math.Hypot(dx, dy)
	if d >= m.PointerRadius || d == 0 {
		return
	}
	k := (1 - d/m.PointerRadius) * m.PointerForce * dt / d
	if m.Attract {
		k = -k
	}
	e.VX += dx * k
	e.VY += dy * k
}

func (m *Motion) orbit(e *entity.Entity, cx, cy, dt float64) {
	dx, dy := e.X-cx, e.Y-cy
	d := math.Hypot(dx, dy)
	if d == 0 {
		return
	}
	k := (d - m.OrbitRadius) * m.OrbitK * dt / d
	e.VX -= dx * k
	e.VY -= dy * k
}

func (m *Motion) bound(e *entity.Entity, w, h float64) {
	switch m.Boundary {
	case Wrap:
		mg := e.Size * m.WrapMargin
		if e.X < -mg {
			e.X = w + mg
		} else if e.X > w+mg {
			e.X = -mg
		}
		if e.Y < -mg {
			e.Y = h + mg
		} else if e.Y > h+mg {
			e.Y = -mg
		}
	case Bounce:
		r := m.Restitution
		if e.X < 0 {
			e.X, e.VX = -e.X, math.Abs(e.VX)*r
		} else if e.X > w {
			e.X, e.VX = 2*w-e.X, -math.Abs(e.VX)*r
		}
		if e.Y < 0 {
			e.Y, e.VY = -e.Y, math.Abs(e.VY)*r
		} else if e.Y > h {
			e.Y, e.VY = 2*h-e.Y, -math.Abs(e.VY)*r
		}
		e.X = vmath.Clamp(e.X, 0, w)
		e.Y = vmath.Clamp(e.Y, 0, h)
	}
}
