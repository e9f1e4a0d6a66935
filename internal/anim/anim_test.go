package anim

import (
	"image/color"
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/coreman2200/canvasfx/internal/diagnostics"
	"github.com/coreman2200/canvasfx/internal/entity"
	"github.com/coreman2200/canvasfx/internal/frame"
	"github.com/coreman2200/canvasfx/internal/pattern"
	"github.com/coreman2200/canvasfx/internal/render"
	"github.com/coreman2200/canvasfx/internal/theme"
)

type spy struct{ got []diagnostics.Diagnostic }

func (s *spy) Report(msg, module string, sev diagnostics.Severity, extra map[string]any) diagnostics.Diagnostic {
	d := diagnostics.Diagnostic{Summary: msg, Module: module, Severity: sev, Evidence: extra}
	s.got = append(s.got, d)
	return d
}

type rig struct {
	sched *frame.Scheduler
	sink  *spy
	reg   *Registry
	now   time.Duration
}

func newRig() *rig {
	s := &spy{}
	return &rig{sched: frame.New(s), sink: s, reg: NewRegistry()}
}

func (r *rig) build(t *testing.T, kind string, tweak func(*Options)) (*Instance, *render.Recorder) {
	t.Helper()
	o, err := Defaults(kind)
	require.NoError(t, err)
	if tweak != nil {
		tweak(&o)
	}
	require.NoError(t, o.Validate())
	rec := render.NewRecorder(400, 300)
	in, err := New(Config{
		Kind:      kind,
		ID:        kind,
		Options:   o,
		Canvas:    rec,
		Scheduler: r.sched,
		Sink:      r.sink,
		Rand:      rand.New(rand.NewPCG(7, 11)),
		Registry:  r.reg,
	})
	require.NoError(t, err)
	return in, rec
}

// run steps the scheduler n times, d apart.
func (r *rig) run(n int, d time.Duration) {
	for range n {
		r.now += d
		r.sched.Step(r.now)
	}
}

func TestDefaultsValidate(t *testing.T) {
	for _, k := range Kinds {
		o, err := Defaults(k)
		require.NoError(t, err, k)
		assert.NoError(t, o.Validate(), k)
	}
	_, err := Defaults("lava-lamp")
	assert.Error(t, err)
}

func TestOptionsForMergesOverDefaults(t *testing.T) {
	var node yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(`
count: 42
size: [1, 4]
colors: {secondary: "#ff0000"}
not_an_option: true
`), &node))
	o, err := OptionsFor(Particles, node.Content[0])
	require.NoError(t, err)
	assert.Equal(t, 42, o.Count)
	assert.Equal(t, 1.0, o.Size.Min)
	assert.Equal(t, 4.0, o.Size.Max)
	assert.Equal(t, 100.0, o.ConnectionDistance)
	assert.Equal(t, "#48cae4", o.Colors["primary"])
	assert.Equal(t, "#ff0000", o.Colors["secondary"])

	// defaults are not aliased between calls
	d, _ := Defaults(Particles)
	assert.Equal(t, "#7209b7", d.Colors["secondary"])
}

func TestOptionsRejectInvalid(t *testing.T) {
	cases := map[string]string{
		"negative count":    "count: -1",
		"negative distance": "connection_distance: -5",
		"inverted size":     "size: [5, 1]",
		"friction":          "friction: 1.5",
		"restitution":       "restitution: 2",
		"boundary":          "boundary: teleport",
		"layer":             "layers: [3, 0]",
	}
	for name, src := range cases {
		var node yaml.Node
		require.NoError(t, yaml.Unmarshal([]byte(src), &node))
		_, err := OptionsFor(SplitNeural, node.Content[0])
		assert.Error(t, err, name)
	}
}

func TestStartIsIdempotent(t *testing.T) {
	r := newRig()
	in, _ := r.build(t, Particles, func(o *Options) { o.Count = 20 })
	in.Start()
	in.Start()
	assert.Equal(t, 1, r.sched.Pending())
	r.run(3, 16*time.Millisecond)
	assert.Equal(t, 1, r.sched.Pending())

	in.Stop()
	assert.Equal(t, 0, r.sched.Pending())
	assert.False(t, in.Active())
	in.Stop()

	frames := in.Frames()
	r.run(3, 16*time.Millisecond)
	assert.Equal(t, frames, in.Frames())
}

func TestVisibilityPausesWithoutDuplicates(t *testing.T) {
	r := newRig()
	in, _ := r.build(t, NeuralNetwork, func(o *Options) { o.Count = 10 })
	in.Start()
	for range 5 {
		in.SetVisible(false)
		in.SetVisible(true)
	}
	assert.Equal(t, 1, r.sched.Pending())

	in.SetVisible(false)
	assert.Equal(t, 0, r.sched.Pending())
	assert.True(t, in.Running())

	// hidden instances stay started and come back on their own
	in.SetVisible(true)
	assert.True(t, in.Active())
}

func TestDestroyCleansUp(t *testing.T) {
	r := newRig()
	detached := false
	o, _ := Defaults(Globe)
	rec := render.NewRecorder(400, 300)
	in, err := New(Config{Kind: Globe, Options: o, Canvas: rec, Scheduler: r.sched, Registry: r.reg, Detach: func() { detached = true }})
	require.NoError(t, err)
	in.Start()
	r.run(5, 16*time.Millisecond)
	require.Equal(t, uint64(5), in.Frames())
	require.Equal(t, 1, r.reg.Len())

	in.Destroy()
	in.Destroy()
	r.run(5, 16*time.Millisecond)
	assert.Equal(t, uint64(5), in.Frames())
	assert.True(t, rec.Closed)
	assert.True(t, detached)
	assert.Equal(t, 0, r.reg.Len())
	assert.Equal(t, 0, r.sched.Pending())
	assert.Nil(t, in.Store().Items)

	in.Start()
	assert.Equal(t, 0, r.sched.Pending())
}

func TestMissingContainerIsInert(t *testing.T) {
	r := newRig()
	o, _ := Defaults(Particles)
	in, err := New(Config{Kind: Particles, Options: o, Scheduler: r.sched, Sink: r.sink, Registry: r.reg})
	require.ErrorIs(t, err, ErrNoContainer)
	require.NotNil(t, in)
	assert.True(t, in.Inert())
	require.Len(t, r.sink.got, 1)
	assert.Equal(t, diagnostics.High, r.sink.got[0].Severity)
	assert.Equal(t, Particles, r.sink.got[0].Module)

	in.Start()
	in.PointerMove(1, 1)
	in.Resize(10, 10, 1)
	in.Destroy()
	assert.Equal(t, 0, r.sched.Pending())
	assert.Equal(t, 0, r.reg.Len())
}

func TestUnknownKindIsInert(t *testing.T) {
	r := newRig()
	in, err := New(Config{Kind: "lava-lamp", Canvas: render.NewRecorder(10, 10), Scheduler: r.sched, Sink: r.sink})
	require.Error(t, err)
	assert.True(t, in.Inert())
	require.Len(t, r.sink.got, 1)
	assert.Equal(t, diagnostics.Medium, r.sink.got[0].Severity)
}

func TestResizeRoundTrip(t *testing.T) {
	r := newRig()
	in, rec := r.build(t, Particles, func(o *Options) { o.Count = 50 })
	before := in.Store().Points(nil)

	in.Resize(800, 600, 2)
	in.Resize(800, 600, 2) // coalesced
	r.run(1, 100*time.Millisecond)
	assert.Equal(t, 400.0, rec.W)
	r.run(1, 100*time.Millisecond)
	assert.Equal(t, 800.0, rec.W)
	assert.Equal(t, 2.0, rec.DPR())

	in.Resize(400, 300, 1)
	r.run(1, 200*time.Millisecond)
	after := in.Store().Points(nil)
	require.Len(t, after, len(before))
	for i := range before {
		assert.InDelta(t, before[i].X, after[i].X, 1e-9)
		assert.InDelta(t, before[i].Y, after[i].Y, 1e-9)
	}
}

func TestFormPatternReachesTargets(t *testing.T) {
	r := newRig()
	in, _ := r.build(t, Particles, func(o *Options) {
		o.Count = 40
		o.PatternLeadMS = 100000
	})
	in.Start()
	r.run(2, 16*time.Millisecond)
	require.Equal(t, "", in.Pattern())

	require.NoError(t, in.FormPattern(pattern.MetatronCube))
	assert.Equal(t, pattern.MetatronCube, in.Pattern())
	r.run(300, 16*time.Millisecond) // 4.8s covers the longest morph

	for i, e := range in.Store().Items {
		require.True(t, e.InPattern, i)
		assert.InDelta(t, e.TargetX, e.X, 1e-6, i)
		assert.InDelta(t, e.TargetY, e.Y, 1e-6, i)
	}
	assert.Error(t, in.FormPattern("tesseract"))
}

func TestFormPatternWhileHiddenWaitsForWake(t *testing.T) {
	r := newRig()
	in, _ := r.build(t, Particles, func(o *Options) {
		o.Count = 10
		o.PatternLeadMS = 100000
	})
	in.Start()
	in.SetVisible(false)
	require.NoError(t, in.FormPattern(pattern.FlowerOfLife))
	assert.Equal(t, 0, r.sched.Pending())

	in.SetVisible(true)
	// the frame chain plus the resumed morph chain
	assert.Equal(t, 2, r.sched.Pending())
}

func TestNoPatternsForNeural(t *testing.T) {
	r := newRig()
	in, _ := r.build(t, NeuralNetwork, func(o *Options) { o.Count = 5 })
	assert.ErrorIs(t, in.FormPattern(pattern.FlowerOfLife), ErrNoPatterns)
}

func TestFrameBudgetSkips(t *testing.T) {
	r := newRig()
	in, _ := r.build(t, NeuralNetwork, func(o *Options) { o.Count = 10 })
	in.Start()
	r.run(20, 8*time.Millisecond)
	assert.Equal(t, uint64(10), in.Frames())
	assert.Equal(t, uint64(10), in.Skipped())
}

func TestFrameBudgetKeepsJitteryDisplayRate(t *testing.T) {
	r := newRig()
	in, _ := r.build(t, NeuralNetwork, func(o *Options) { o.Count = 10 })
	in.Start()
	for range 30 {
		r.run(1, 15*time.Millisecond)
		r.run(1, time.Second/60)
		r.run(1, 18*time.Millisecond)
	}
	assert.Equal(t, uint64(90), in.Frames())
	assert.Zero(t, in.Skipped())
}

func TestImpulsesRunAlongEdges(t *testing.T) {
	r := newRig()
	in, rec := r.build(t, NeuralNetwork, nil)
	in.Start()
	r.run(120, 16*time.Millisecond)

	tr := in.Store().Transient
	require.NotEmpty(t, tr)
	for _, e := range tr {
		assert.GreaterOrEqual(t, e.TTL, time.Second)
		assert.Less(t, e.TTL, 1500*time.Millisecond)
		assert.NotEqual(t, e.From, e.To)
	}
	assert.Greater(t, rec.Count(render.OpLine), 0)
}

func TestUpdateColorsAppliesNextFrame(t *testing.T) {
	r := newRig()
	in, _ := r.build(t, Particles, func(o *Options) { o.Count = 30 })
	red := color.NRGBA{R: 255, A: 255}

	var idx = -1
	for i, e := range in.Store().Items {
		if e.Tone == entity.Primary {
			idx = i
			break
		}
	}
	require.GreaterOrEqual(t, idx, 0)
	in.RenderOnce(0)
	old := in.Store().Items[idx].Color
	require.NotEqual(t, red, old)

	in.UpdateColors(theme.Palette{Name: "test", Props: map[string]string{theme.Primary: "#ff0000"}})
	assert.Equal(t, old, in.Store().Items[idx].Color)
	in.RenderOnce(16 * time.Millisecond)
	assert.Equal(t, red, in.Store().Items[idx].Color)
}

func TestEveryKindDraws(t *testing.T) {
	for _, k := range Kinds {
		t.Run(k, func(t *testing.T) {
			r := newRig()
			in, rec := r.build(t, k, nil)
			in.Start()
			in.PointerMove(200, 150)
			r.run(30, 16*time.Millisecond)
			in.PointerLeave()
			r.run(30, 16*time.Millisecond)

			require.NotEmpty(t, rec.Ops)
			assert.Equal(t, render.OpClear, rec.Ops[0].Kind)
			assert.Greater(t, len(rec.Ops), 1)
			assert.Empty(t, r.sink.got)
		})
	}
}

func TestGlobeEdgesTouchFrontSide(t *testing.T) {
	r := newRig()
	in, _ := r.build(t, Globe, nil)
	in.Start()
	r.run(20, 16*time.Millisecond)
	items := in.Store().Items
	for _, e := range in.Edges() {
		assert.True(t, items[e.I].Depth >= 0 || items[e.J].Depth >= 0)
	}
}

func TestTiersHighlightCycles(t *testing.T) {
	r := newRig()
	in, _ := r.build(t, Tiers, func(o *Options) { o.Count = 20 })
	var got []int
	for range 5 {
		in.HighlightNext()
		got = append(got, in.Highlighted())
	}
	assert.Equal(t, []int{0, 1, 2, 3, 0}, got)
	in.HighlightPrev()
	assert.Equal(t, 3, in.Highlighted())

	fresh, _ := r.build(t, Tiers, func(o *Options) { o.Count = 5 })
	fresh.HighlightPrev()
	assert.Equal(t, 3, fresh.Highlighted())

	// kinds without categories ignore the keys
	other, _ := r.build(t, Globe, nil)
	other.HighlightNext()
	assert.Equal(t, -1, other.Highlighted())
}

func TestTiersTintNearFocus(t *testing.T) {
	r := newRig()
	in, _ := r.build(t, Tiers, func(o *Options) { o.Count = 50 })
	in.PointerMove(10, 150)
	in.RenderOnce(0)
	lit := 0
	for _, e := range in.Store().Items {
		if e.Active {
			lit++
			assert.GreaterOrEqual(t, e.Opacity, 0.7)
		}
	}
	assert.Greater(t, lit, 0)

	in.PointerLeave()
	in.RenderOnce(16 * time.Millisecond)
	for _, e := range in.Store().Items {
		assert.False(t, e.Active)
	}
}

func TestRegistryBroadcast(t *testing.T) {
	r := newRig()
	a, _ := r.build(t, NeuralOrganic, nil)
	b, _ := r.build(t, ButtonGlow, nil)
	require.Equal(t, 2, r.reg.Len())

	r.reg.StartAll()
	assert.Equal(t, 2, r.sched.Pending())
	r.reg.StopAll()
	assert.Equal(t, 0, r.sched.Pending())
	assert.False(t, a.Running())

	got, ok := r.reg.Find(ButtonGlow)
	require.True(t, ok)
	assert.Same(t, b, got)

	r.reg.DestroyAll()
	assert.Equal(t, 0, r.reg.Len())
	assert.True(t, a.Destroyed())
	assert.True(t, b.Destroyed())
}

func TestSetParamFromEnvelope(t *testing.T) {
	r := newRig()
	in, _ := r.build(t, Particles, func(o *Options) { o.Count = 5 })
	in.SetParam("connection_distance", 42)
	in.SetParam("glow", 0.3)
	assert.Equal(t, 42.0, in.Options().ConnectionDistance)
	assert.Equal(t, 0.3, in.param("glow", 1))
	assert.Equal(t, 1.0, in.param("missing", 1))
}

func TestButtonPerimeter(t *testing.T) {
	assert.Equal(t, 0.0, perimeter(100, 50, 0).X)
	p := perimeter(100, 50, 0.5) // halfway: bottom-right corner
	assert.InDelta(t, 100, p.X, 1e-9)
	assert.InDelta(t, 50, p.Y, 1e-9)
	p = perimeter(100, 50, 0.9)
	assert.InDelta(t, 0, p.X, 1e-9)
}

func TestFrameworkHoverGrowsNodes(t *testing.T) {
	r := newRig()
	in, _ := r.build(t, Framework, nil)
	require.Equal(t, 12, in.Store().Len())
	first := in.Store().Items[0]
	in.PointerMove(first.X, first.Y)
	in.RenderOnce(0)

	e := in.Store().Items[0]
	assert.True(t, e.Active)
	assert.InDelta(t, e.BaseSize*1.5, e.Size, 1e-9)
	for _, ed := range in.Edges() {
		assert.Less(t, ed.Distance, 120.0)
	}

	in.PointerLeave()
	in.RenderOnce(16 * time.Millisecond)
	for _, e := range in.Store().Items {
		assert.False(t, e.Active)
		assert.Equal(t, e.BaseSize, e.Size)
	}
}

func TestStarFieldLayers(t *testing.T) {
	r := newRig()
	in, _ := r.build(t, StarField, nil)
	items := in.Store().Items
	require.Len(t, items, 175)
	per := map[int]int{}
	for _, e := range items {
		per[e.Group]++
		assert.Equal(t, float64(e.Group+1), e.Size)
		assert.Equal(t, []float64{0.1, 0.25, 0.4}[e.Group], e.VX)
	}
	assert.Equal(t, map[int]int{0: 100, 1: 50, 2: 25}, per)

	before := slices.Clone(items)
	in.RenderOnce(0)
	for i, e := range in.Store().Items {
		if before[i].X > 390 {
			continue // may have wrapped
		}
		assert.InDelta(t, before[i].X+before[i].VX, e.X, 1e-9, i)
		assert.Equal(t, before[i].Y, e.Y)
		assert.GreaterOrEqual(t, e.Opacity, 0.3)
		assert.LessOrEqual(t, e.Opacity, 1.0)
	}
}

func TestStarFieldSurvivesResize(t *testing.T) {
	r := newRig()
	in, _ := r.build(t, StarField, nil)
	before := slices.Clone(in.Store().Items)

	in.Resize(800, 600, 1)
	r.run(1, 200*time.Millisecond)
	after := in.Store().Items
	require.Len(t, after, len(before))
	for i := range before {
		assert.InDelta(t, before[i].X*2, after[i].X, 1e-9)
		assert.InDelta(t, before[i].Y*2, after[i].Y, 1e-9)
		assert.Equal(t, before[i].Group, after[i].Group)
	}
}

func TestPromptSageLayout(t *testing.T) {
	r := newRig()
	in, rec := r.build(t, PromptSage, nil)
	// hub, three clusters of seven, three roles
	require.Equal(t, 25, in.Store().Len())
	in.RenderOnce(0)
	// hub spokes plus a full mesh inside each cluster
	assert.Len(t, in.Edges(), 21+3*21)
	assert.Equal(t, 2, rec.Count(render.OpPolyline))

	hub := in.Store().Items[0]
	assert.Equal(t, 200.0, hub.X)
	assert.Equal(t, 150.0, hub.Y)

	in.Resize(800, 600, 1)
	r.run(1, 200*time.Millisecond)
	in.RenderOnce(16 * time.Millisecond)
	hub = in.Store().Items[0]
	assert.Equal(t, 400.0, hub.X)
	assert.Equal(t, 300.0, hub.Y)
	for _, e := range in.Store().Items[1:] {
		if e.Group == sageRole {
			assert.InDelta(t, 300*0.7*0.9, e.Pos().DistTo(hub.Pos()), 1e-6)
		}
	}
}

func TestPromptSageRolesRotate(t *testing.T) {
	r := newRig()
	in, _ := r.build(t, PromptSage, nil)
	s := in.effect.(*sage)
	assert.Equal(t, 0, in.Highlighted())

	in.Start()
	r.run(320, 16*time.Millisecond) // just past 5s
	assert.Equal(t, 1, in.Highlighted())
	assert.True(t, in.Store().Items[s.roleStart+1].Active)
	assert.False(t, in.Store().Items[s.roleStart].Active)

	moving := 0
	for _, sg := range s.signals {
		assert.GreaterOrEqual(t, sg.progress, 0.0)
		assert.LessOrEqual(t, sg.progress, 1.0)
		assert.Greater(t, sg.target, 0)
		if sg.progress > 0 {
			moving++
		}
	}
	assert.Greater(t, moving, 0)

	in.HighlightPrev()
	assert.Equal(t, 0, in.Highlighted())
}
