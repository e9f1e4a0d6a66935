package physics

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/canvasfx/internal/entity"
	"github.com/coreman2200/canvasfx/internal/vmath"
)

func newRand() *rand.Rand { return rand.New(rand.NewPCG(3, 5)) }

func storeWith(w, h float64, es ...entity.Entity) *entity.Store {
	s := entity.NewStore(w, h, newRand())
	s.Items = es
	return s
}

func TestSpeedClampUniform(t *testing.T) {
	rng := newRand()
	s := entity.NewStore(500, 500, rng)
	require.NoError(t, s.Spawn(300, entity.Spawn{Speed: 20}))
	m := NewMotion(Motion{
		Friction: 0.95, MaxSpeed: 2, PointerRadius: 150, PointerForce: 3,
		JitterChance: 0.05, JitterMagnitude: 0.2, NoiseForce: 0.3,
	}, rng, 1)
	for f := 0; f < 50; f++ {
		m.Step(s, At(250, 250), 1, float64(f)/60)
		for _, e := range s.Items {
			assert.LessOrEqual(t, e.Speed(), 2+1e-9)
		}
	}
}

func TestClampKeepsDirection(t *testing.T) {
	s := storeWith(1000, 1000, entity.Entity{X: 500, Y: 500, VX: 30, VY: 40})
	m := NewMotion(Motion{MaxSpeed: 5}, newRand(), 1)
	m.Step(s, Pointer{}, 1, 0)
	e := s.Items[0]
	assert.InDelta(t, 3, e.VX, 1e-9)
	assert.InDelta(t, 4, e.VY, 1e-9)
}

func TestPointerLeaveDisablesTerm(t *testing.T) {
	s := storeWith(400, 400, entity.Entity{X: 210, Y: 200, VX: 1, VY: 0})
	m := NewMotion(Motion{Friction: 0.9, PointerRadius: 150, PointerForce: 5}, newRand(), 1)
	m.Step(s, Pointer{}, 1, 0)
	assert.InDelta(t, 0.9, s.Items[0].VX, 1e-12)
	assert.InDelta(t, 0, s.Items[0].VY, 1e-12)

	m.Step(s, At(200, 200), 1, 0)
	assert.Greater(t, s.Items[0].VX, 0.9*0.9)
}

func TestPointerPushDirection(t *testing.T) {
	s := storeWith(400, 400, entity.Entity{X: 190, Y: 200})
	m := NewMotion(Motion{PointerRadius: 100, PointerForce: 1}, newRand(), 1)
	m.Step(s, At(200, 200), 1, 0)
	assert.InDelta(t, -0.9, s.Items[0].VX, 1e-9)

	s = storeWith(400, 400, entity.Entity{X: 190, Y: 200})
	m = NewMotion(Motion{PointerRadius: 100, PointerForce: 1, Attract: true}, newRand(), 1)
	m.Step(s, At(200, 200), 1, 0)
	assert.InDelta(t, 0.9, s.Items[0].VX, 1e-9)
}

func TestWrapAndBounce(t *testing.T) {
	s := storeWith(100, 100, entity.Entity{X: 99, Y: 50, VX: 2})
	m := NewMotion(Motion{Boundary: Wrap}, newRand(), 1)
	m.Step(s, Pointer{}, 1, 0)
	assert.Equal(t, 0.0, s.Items[0].X)

	s = storeWith(100, 100, entity.Entity{X: 99, Y: 50, VX: 2})
	m = NewMotion(Motion{Boundary: Bounce, Restitution: 0.5}, newRand(), 1)
	m.Step(s, Pointer{}, 1, 0)
	assert.InDelta(t, 99, s.Items[0].X, 1e-9)
	assert.InDelta(t, -1, s.Items[0].VX, 1e-9)
}

func TestOrbitalSpringPullsTowardRadius(t *testing.T) {
	s := storeWith(200, 200, entity.Entity{X: 180, Y: 100})
	m := NewMotion(Motion{OrbitK: 0.01, OrbitRadius: 50, Boundary: Open}, newRand(), 1)
	m.Step(s, Pointer{}, 1, 0)
	assert.InDelta(t, -0.3, s.Items[0].VX, 1e-9)
	assert.Less(t, s.Items[0].X, 180.0)
}

func TestPatternEntitiesUntouched(t *testing.T) {
	s := storeWith(100, 100, entity.Entity{X: 10, Y: 10, VX: 5, InPattern: true})
	m := NewMotion(Motion{MaxSpeed: 1, Friction: 0.5}, newRand(), 1)
	m.Step(s, Pointer{}, 1, 0)
	assert.Equal(t, 10.0, s.Items[0].X)
	assert.Equal(t, 5.0, s.Items[0].VX)
}

func TestOrbitsEntrance(t *testing.T) {
	s := storeWith(400, 200, entity.Entity{
		StartX: 0, StartY: 0, CX: 200, CY: 100, OrbitDist: 50, Delay: 100 * time.Millisecond,
	})
	o := Orbits{Entrance: time.Second, Ease: vmath.Linear}
	o.Step(s, 0, 50*time.Millisecond)
	assert.Equal(t, 0.0, s.Items[0].Opacity)

	o.Step(s, 0, 600*time.Millisecond)
	assert.InDelta(t, 0.5, s.Items[0].Opacity, 1e-9)
	assert.InDelta(t, 125, s.Items[0].X, 1e-9)

	o.Step(s, 0, 2*time.Second)
	assert.Equal(t, 1.0, s.Items[0].Opacity)
	assert.InDelta(t, 250, s.Items[0].X, 1e-9)
}

func TestProjectFrontAndBack(t *testing.T) {
	x, y, z := Project(0, 0, 0, 100, 100, 50)
	assert.InDelta(t, 100, x, 1e-9)
	assert.InDelta(t, 100, y, 1e-9)
	assert.InDelta(t, 1, z, 1e-9)
	_, _, z = Project(0, math.Pi, 0, 100, 100, 50)
	assert.Less(t, z, 0.0)
	_, y, _ = Project(math.Pi/2, 0, 0, 100, 100, 50)
	assert.InDelta(t, 50, y, 1e-9)
}

func TestGlobeRotation(t *testing.T) {
	g := NewGlobe(60, 0.0005)
	g.Advance(1000)
	assert.InDelta(t, 0.5, g.Rotation, 1e-9)

	g.Aim(At(400, 0), 400)
	assert.True(t, g.tracking)
	for i := 0; i < 600; i++ {
		g.Advance(16)
	}
	assert.InDelta(t, math.Pi/2, g.Rotation, 0.01)

	g.Aim(Pointer{}, 400)
	assert.False(t, g.tracking)
}
