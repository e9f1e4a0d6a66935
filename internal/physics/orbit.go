package physics

import (
	"math"
	"time"

	"github.com/coreman2200/canvasfx/internal/entity"
	"github.com/coreman2200/canvasfx/internal/vmath"
)

// Orbits advances entities laid out around per-entity centres. Before an
// entity's Delay has elapsed it stays hidden; during entrance it eases from
// its start point onto the orbit and fades in.
type Orbits struct {
	Entrance time.Duration
	Ease     vmath.EaseFunc
}

// Step moves every orbiting entity; dt is in 60 Hz frames, elapsed is the
// time since the layout was spawned.
func (o Orbits) Step(s *entity.Store, dt float64, elapsed time.Duration) {
	ease := o.Ease
	if ease == nil {
		ease = vmath.OutCubic
	}
	for i := range s.Items {
		e := &s.Items[i]
		e.Angle += e.OrbitSpeed / 100 * dt
		ox := e.CX + math.Cos(e.Angle)*e.OrbitDist
		oy := e.CY + math.Sin(e.Angle)*e.OrbitDist

		since := elapsed - e.Delay
		switch {
		case since < 0:
			e.Opacity = 0
			e.Entrance = 0
			continue
		case o.Entrance > 0 && since < o.Entrance:
			e.Entrance = float64(since) / float64(o.Entrance)
		default:
			e.Entrance = 1
		}
		k := ease(e.Entrance)
		e.X = vmath.Lerp(e.StartX, ox, k)
		e.Y = vmath.Lerp(e.StartY, oy, k)
		e.Opacity = e.Entrance
	}
}
