package sequence

import (
	"testing"

	"github.com/coreman2200/canvasfx/internal/vmath"
)

func TestEnvelopeEval(t *testing.T) {
	env := Envelope{Keys: []Keyframe{
		{T: 0, V: 0, Ease: "linear"},
		{T: 10, V: 10, Ease: "linear"},
	}}
	if v := env.Eval(-1); v != 0 {
		t.Fatalf("expected 0 before start, got %v", v)
	}
	if v := env.Eval(5); v != 5 {
		t.Fatalf("expected 5 at t=5, got %v", v)
	}
	if v := env.Eval(11); v != 10 {
		t.Fatalf("expected 10 after end, got %v", v)
	}
	eased := Envelope{Keys: []Keyframe{{T: 0, V: 0, Ease: "in-out-cubic"}, {T: 2, V: 1}}}
	if v := eased.Eval(0.5); v >= 0.25 {
		t.Fatalf("expected in-out-cubic to lag linear at t=0.5, got %v", v)
	}
	if (Envelope{Keys: []Keyframe{{T: 1}, {T: 0}}}).Valid() {
		t.Fatalf("unsorted keys should be invalid")
	}
}

type recorder struct {
	log    []string
	morphs []float64
}

func (r *recorder) hooks() Hooks {
	return Hooks{
		Form: func(name string, morphS float64) {
			r.log = append(r.log, "form:"+name)
			r.morphs = append(r.morphs, morphS)
		},
		Release: func() { r.log = append(r.log, "release") },
	}
}

func fixedClip(name string, morph, hold, gap float64) Clip {
	return Clip{Name: name, Pattern: name, MorphS: vmath.Fixed(morph), HoldS: vmath.Fixed(hold), GapS: vmath.Fixed(gap)}
}

func TestPlayerWalksPhases(t *testing.T) {
	rec := &recorder{}
	p := NewPlayer(rec.hooks())
	prog := Program{LeadS: 1, Clips: []Clip{fixedClip("a", 1, 2, 1), fixedClip("b", 1, 1, 0)}}
	if err := p.Load(prog); err != nil {
		t.Fatalf("load: %v", err)
	}
	p.Start()
	if p.Phase() != Lead || len(rec.log) != 0 {
		t.Fatalf("expected lead before first form, got %s %v", p.Phase(), rec.log)
	}
	p.Tick(1.0) // t=1: a forms
	if p.Phase() != Morph {
		t.Fatalf("expected morph, got %s", p.Phase())
	}
	p.Tick(1.5) // t=2.5: holding
	if p.Phase() != Hold {
		t.Fatalf("expected hold, got %s", p.Phase())
	}
	p.Tick(2.0) // t=4.5: gap, released
	if p.Phase() != Gap {
		t.Fatalf("expected gap, got %s", p.Phase())
	}
	p.Tick(1.0) // t=5.5: b forms
	if c, ok := p.Current(); !ok || c.Name != "b" {
		t.Fatalf("expected clip b, got %+v", c)
	}
	p.Tick(5) // program ends
	if p.State != Idle {
		t.Fatalf("expected idle after last clip, got %s", p.State)
	}
	want := []string{"form:a", "release", "form:b"}
	if len(rec.log) != len(want) {
		t.Fatalf("unexpected log: %#v", rec.log)
	}
	for i := range want {
		if rec.log[i] != want[i] {
			t.Fatalf("unexpected log: %#v", rec.log)
		}
	}
}

func TestPlayerLoopsWithoutRelease(t *testing.T) {
	rec := &recorder{}
	p := NewPlayer(rec.hooks())
	prog := CycleProgram([]string{"x", "y"}, vmath.Range{Min: 3, Max: 4}, vmath.Range{Min: 15, Max: 18}, 0, 7)
	if err := p.Load(prog); err != nil {
		t.Fatalf("load: %v", err)
	}
	p.Start()
	for i := 0; i < 60*60; i++ {
		p.Tick(1.0 / 60)
	}
	if len(rec.log) < 4 {
		t.Fatalf("expected several forms in a minute, got %#v", rec.log)
	}
	for i, e := range rec.log {
		if e == "release" {
			t.Fatalf("cycle without gaps should never release: %#v", rec.log)
		}
		want := "form:x"
		if i%2 == 1 {
			want = "form:y"
		}
		if e != want {
			t.Fatalf("unexpected order: %#v", rec.log)
		}
	}
	for _, m := range rec.morphs {
		if m < 3 || m >= 4 {
			t.Fatalf("morph %v outside [3,4)", m)
		}
	}
}

func TestPlayerPauseAndJump(t *testing.T) {
	rec := &recorder{}
	p := NewPlayer(rec.hooks())
	if err := p.Load(Program{Loop: true, Clips: []Clip{fixedClip("a", 1, 1, 0), fixedClip("b", 1, 1, 0)}}); err != nil {
		t.Fatalf("load: %v", err)
	}
	p.Start()
	p.Pause()
	p.Tick(10)
	if len(rec.log) != 1 {
		t.Fatalf("paused player should not advance: %#v", rec.log)
	}
	p.Resume()
	if err := p.Jump(p.Find("b")); err != nil {
		t.Fatalf("jump: %v", err)
	}
	if p.Index() != 1 || rec.log[len(rec.log)-1] != "form:b" {
		t.Fatalf("jump did not form b: %#v", rec.log)
	}
	if err := p.Jump(5); err == nil {
		t.Fatalf("expected out of range error")
	}
}

func TestPlayerParams(t *testing.T) {
	var got float64
	p := NewPlayer(Hooks{SetParam: func(name string, v float64) {
		if name == "glow" {
			got = v
		}
	}})
	clip := fixedClip("a", 0, 4, 0)
	clip.Params = map[string]Envelope{"glow": {Keys: []Keyframe{{T: 0, V: 0}, {T: 4, V: 2}}}}
	if err := p.Load(Program{Clips: []Clip{clip}}); err != nil {
		t.Fatalf("load: %v", err)
	}
	p.Start()
	p.Tick(2)
	if got != 1 {
		t.Fatalf("expected glow 1 at t=2, got %v", got)
	}
}

func TestLoadRejectsBadClips(t *testing.T) {
	p := NewPlayer(Hooks{})
	bad := []Program{
		{},
		{Clips: []Clip{{Name: "nopattern", HoldS: vmath.Fixed(1)}}},
		{Clips: []Clip{fixedClip("zero", 0, 0, 0)}},
		{Clips: []Clip{{Pattern: "p", HoldS: vmath.Range{Min: 2, Max: 1}}}},
		{LeadS: -1, Clips: []Clip{fixedClip("a", 1, 1, 0)}},
	}
	for i, prog := range bad {
		if err := p.Load(prog); err == nil {
			t.Fatalf("program %d: expected error", i)
		}
	}
}
