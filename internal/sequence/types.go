package sequence

import "github.com/coreman2200/canvasfx/internal/vmath"

// Keyframe is a value at time T (seconds into the clip). Ease applies to
// the segment starting at this keyframe; see vmath.Ease for names.
type Keyframe struct {
	T    float64 `yaml:"t"`
	V    float64 `yaml:"v"`
	Ease string  `yaml:"ease,omitempty"`
}

// Envelope is a sorted list of keyframes; Eval(t) interpolates a value.
type Envelope struct {
	Keys []Keyframe `yaml:"keys"`
}

// Clip forms one pattern: a morph of MorphS seconds, a hold of HoldS, then
// an optional gap of free motion before the next clip. A zero gap moves
// straight from one pattern into the next.
type Clip struct {
	Name    string              `yaml:"name"`
	Pattern string              `yaml:"pattern"`
	MorphS  vmath.Range         `yaml:"morph_s"`
	HoldS   vmath.Range         `yaml:"hold_s"`
	GapS    vmath.Range         `yaml:"gap_s,omitempty"`
	Params  map[string]Envelope `yaml:"params,omitempty"`
}

// Program is a full cycle of clips. LeadS delays the first clip.
type Program struct {
	Loop  bool    `yaml:"loop,omitempty"`
	Seed  uint64  `yaml:"seed,omitempty"`
	LeadS float64 `yaml:"lead_s,omitempty"`
	Clips []Clip  `yaml:"clips"`
}

type PlayerState string

const (
	Idle    PlayerState = "idle"
	Running PlayerState = "running"
	Paused  PlayerState = "paused"
)

// Phase is where the player is inside the current clip.
type Phase string

const (
	Lead  Phase = "lead"
	Morph Phase = "morph"
	Hold  Phase = "hold"
	Gap   Phase = "gap"
)

// Hooks are injected callbacks into the animation instance.
type Hooks struct {
	// Form starts a transition onto pattern lasting morphS seconds.
	Form func(pattern string, morphS float64)
	// Release returns entities to free motion at the start of a gap.
	Release  func()
	SetParam func(name string, v float64)
}
