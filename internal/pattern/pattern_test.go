package pattern

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/canvasfx/internal/entity"
	"github.com/coreman2200/canvasfx/internal/frame"
	"github.com/coreman2200/canvasfx/internal/vmath"
)

func newStore(t *testing.T, n int) *entity.Store {
	t.Helper()
	s := entity.NewStore(800, 600, rand.New(rand.NewPCG(3, 5)))
	require.NoError(t, s.Spawn(n, entity.Spawn{Layout: entity.Random, Size: vmath.Range{Min: 2, Max: 3}, Speed: 2}))
	return s
}

func TestAnchorCounts(t *testing.T) {
	tests := map[string]int{
		FlowerOfLife:    91,
		MetatronCube:    25,
		FibonacciSpiral: 166,
		PlatonicSolid:   108,
		VesicaPiscis:    261,
	}
	reg := NewRegistry()
	for name, want := range tests {
		t.Run(name, func(t *testing.T) {
			p, ok := reg.Get(name)
			require.True(t, ok)
			assert.Len(t, p(800, 600, 100), want)
		})
	}
}

func TestFibonacciArmIsSparse(t *testing.T) {
	// 40 spiral samples, only multiples of three survive
	small := fibonacciSpiral(800, 600, 100)
	large := fibonacciSpiral(800, 600, 1000)
	// arm capped at 120 samples: 3..117 step 3 -> 39 points vs 13
	assert.Equal(t, 39-13, len(large)-len(small))
}

func TestFitFillsLimitingAxis(t *testing.T) {
	reg := NewRegistry()
	for _, name := range reg.Names() {
		p, _ := reg.Get(name)
		pts := Fit(p(800, 600, 200), 800, 600, FitFraction)
		minX, minY := math.Inf(1), math.Inf(1)
		maxX, maxY := math.Inf(-1), math.Inf(-1)
		for _, q := range pts {
			minX, maxX = math.Min(minX, q.X), math.Max(maxX, q.X)
			minY, maxY = math.Min(minY, q.Y), math.Max(maxY, q.Y)
		}
		w, h := maxX-minX, maxY-minY
		assert.LessOrEqual(t, w, 640+1e-6, name)
		assert.LessOrEqual(t, h, 480+1e-6, name)
		assert.True(t, math.Abs(w-640) < 1e-6 || math.Abs(h-480) < 1e-6, name)
		assert.InDelta(t, 400, minX+w/2, 1e-6, name)
		assert.InDelta(t, 300, minY+h/2, 1e-6, name)
	}
}

func TestFitSinglePoint(t *testing.T) {
	pts := Fit([]vmath.Vec2{{X: 5, Y: 5}}, 100, 50, 0.8)
	assert.Equal(t, []vmath.Vec2{{X: 50, Y: 25}}, pts)
	assert.Empty(t, Fit(nil, 100, 50, 0.8))
}

func TestMorphReachesTargets(t *testing.T) {
	s := newStore(t, 200)
	m := NewMorph(nil, s, time.Second)
	require.NoError(t, m.Form(FlowerOfLife, 0))
	assert.False(t, m.Done())

	assert.False(t, m.Advance(500*time.Millisecond))
	assert.True(t, m.Advance(time.Second))
	assert.True(t, m.Done())
	for _, e := range s.Items {
		assert.True(t, e.InPattern)
		assert.InDelta(t, e.TargetX, e.X, 1e-9)
		assert.InDelta(t, e.TargetY, e.Y, 1e-9)
	}
}

func TestMorphReusesAnchorsCyclically(t *testing.T) {
	s := newStore(t, 200)
	m := NewMorph(nil, s, time.Second)
	require.NoError(t, m.Form(MetatronCube, 0))
	anchors := Fit(metatronCube(800, 600, 200), 800, 600, FitFraction)
	for i, e := range s.Items {
		a := anchors[i%len(anchors)]
		assert.LessOrEqual(t, math.Abs(e.TargetX-a.X), 1.5)
		assert.LessOrEqual(t, math.Abs(e.TargetY-a.Y), 1.5)
		if i%5 == 0 {
			assert.Equal(t, entity.Secondary, e.Tone)
		} else {
			assert.Equal(t, entity.Primary, e.Tone)
		}
	}
}

func TestPlatonicReservesStructure(t *testing.T) {
	s := newStore(t, 50)
	m := NewMorph(nil, s, time.Second)
	require.NoError(t, m.Form(PlatonicSolid, 0))
	anchors := Fit(platonicSolid(800, 600, 50), 800, 600, FitFraction)
	for i := 0; i < 40; i++ {
		e := s.Items[i]
		assert.LessOrEqual(t, math.Abs(e.TargetX-anchors[i].X), 1.0)
		if i%5 == 0 || i%7 == 0 {
			assert.Equal(t, entity.Secondary, e.Tone)
			assert.InDelta(t, e.BaseSize*1.2, e.Size, 1e-9)
		} else {
			assert.Equal(t, entity.Primary, e.Tone)
			assert.Equal(t, e.BaseSize, e.Size)
		}
	}
}

func TestMorphRunChainsOnScheduler(t *testing.T) {
	s := newStore(t, 30)
	sched := frame.New(nil)
	m := NewMorph(nil, s, 100*time.Millisecond)
	require.NoError(t, m.Run(sched, VesicaPiscis))

	sched.Step(16 * time.Millisecond)
	assert.Equal(t, 1, sched.Pending())
	sched.Step(120 * time.Millisecond)
	assert.True(t, m.Done())
	assert.Zero(t, sched.Pending())
}

func TestMorphRunCancelsPreviousChain(t *testing.T) {
	s := newStore(t, 30)
	sched := frame.New(nil)
	m := NewMorph(nil, s, time.Second)
	require.NoError(t, m.Run(sched, FlowerOfLife))
	require.NoError(t, m.Run(sched, MetatronCube))
	assert.Equal(t, 1, sched.Pending())
	assert.Equal(t, MetatronCube, m.Name())
}

func TestMorphCancelAndResume(t *testing.T) {
	s := newStore(t, 30)
	sched := frame.New(nil)
	m := NewMorph(nil, s, 100*time.Millisecond)
	require.NoError(t, m.Run(sched, FlowerOfLife))
	m.Cancel()
	assert.Zero(t, sched.Pending())
	assert.False(t, m.Done())

	m.Resume(sched)
	m.Resume(sched)
	assert.Equal(t, 1, sched.Pending())
	sched.Step(200 * time.Millisecond)
	assert.True(t, m.Done())

	// a finished transition has nothing to resume
	m.Resume(sched)
	assert.Zero(t, sched.Pending())
}

func TestReleaseFreesEntities(t *testing.T) {
	s := newStore(t, 30)
	m := NewMorph(nil, s, 0)
	require.NoError(t, m.Form(PlatonicSolid, 0))
	m.Advance(0)
	m.Release()
	assert.False(t, m.Formed())
	for _, e := range s.Items {
		assert.False(t, e.InPattern)
		assert.Equal(t, e.BaseSize, e.Size)
	}
}

func TestUnknownPattern(t *testing.T) {
	m := NewMorph(nil, newStore(t, 1), time.Second)
	assert.Error(t, m.Form("torus", 0))
}

func TestRegisterCustomProvider(t *testing.T) {
	reg := NewRegistry()
	reg.Register("dot", func(w, h float64, _ int) []vmath.Vec2 { return []vmath.Vec2{{X: w / 2, Y: h / 2}} }, 0)
	s := newStore(t, 10)
	m := NewMorph(reg, s, 0)
	require.NoError(t, m.Form("dot", 0))
	m.Advance(0)
	for _, e := range s.Items {
		assert.InDelta(t, 400, e.X, 1e-9)
		assert.InDelta(t, 300, e.Y, 1e-9)
	}
	assert.Contains(t, reg.Names(), "dot")
}
