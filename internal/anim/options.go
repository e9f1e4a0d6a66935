package anim

import (
	"errors"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/coreman2200/canvasfx/internal/pattern"
	"github.com/coreman2200/canvasfx/internal/physics"
	"github.com/coreman2200/canvasfx/internal/sequence"
	"github.com/coreman2200/canvasfx/internal/vmath"
)

// Effect kinds.
const (
	Particles     = "particles"
	NeuralNetwork = "neural-network"
	NeuralOrganic = "neural-organic"
	Headline      = "headline-particles"
	Globe         = "globe"
	Sacred        = "sacred-geometry"
	SplitNeural   = "split-neural"
	ButtonGlow    = "button-glow"
	Tiers         = "community-tiers"
	Framework     = "framework"
	StarField     = "star-field"
	PromptSage    = "prompt-sage"
)

// Kinds lists every effect kind in page order.
var Kinds = []string{Particles, NeuralNetwork, NeuralOrganic, Headline, Globe, Sacred, SplitNeural, ButtonGlow, Tiers, Framework, StarField, PromptSage}

// Options is the flat option set shared by every kind. Each kind reads the
// keys it understands; the rest are ignored.
type Options struct {
	Count int         `yaml:"count"`
	Size  vmath.Range `yaml:"size"`
	Speed float64     `yaml:"speed"`

	MaxSpeed    float64 `yaml:"max_speed"`
	Friction    float64 `yaml:"friction"`
	Boundary    string  `yaml:"boundary"`
	Restitution float64 `yaml:"restitution"`

	PointerRadius float64 `yaml:"pointer_radius"`
	PointerForce  float64 `yaml:"pointer_force"`
	Attract       bool    `yaml:"attract"`
	HoverSpeed    float64 `yaml:"hover_speed"`
	HoverRadius   float64 `yaml:"hover_radius"`

	OrbitK      float64 `yaml:"orbit_k"`
	OrbitRadius float64 `yaml:"orbit_radius"`

	Noise           float64 `yaml:"noise"`
	NoiseScale      float64 `yaml:"noise_scale"`
	JitterChance    float64 `yaml:"jitter_chance"`
	JitterMagnitude float64 `yaml:"jitter_magnitude"`

	SecondaryRatio float64     `yaml:"secondary_ratio"`
	AccentRatio    float64     `yaml:"accent_ratio"`
	Opacity        vmath.Range `yaml:"opacity"`

	ConnectionDistance float64     `yaml:"connection_distance"`
	ConnectionOpacity  float64     `yaml:"connection_opacity"`
	ConnectEvery       int         `yaml:"connect_every"`
	LineWidth          float64     `yaml:"line_width"`
	MinConnections     int         `yaml:"min_connections"`
	Connections        vmath.Range `yaml:"connections"`
	Grid               bool        `yaml:"grid"`

	Patterns          []string          `yaml:"patterns"`
	PatternIntervalMS vmath.Range       `yaml:"pattern_interval_ms"`
	PatternDurationMS vmath.Range       `yaml:"pattern_duration_ms"`
	PatternLeadMS     float64           `yaml:"pattern_lead_ms"`
	Program           *sequence.Program `yaml:"program,omitempty"`
	RotationSpeed     float64           `yaml:"rotation_speed"`

	ImpulseIntervalMS float64     `yaml:"impulse_interval_ms"`
	ImpulseTTLMS      vmath.Range `yaml:"impulse_ttl_ms"`

	PulseSpeed    vmath.Range `yaml:"pulse_speed"`
	PulseScale    float64     `yaml:"pulse_scale"`
	PulsePeriodMS float64     `yaml:"pulse_period_ms"`

	TrailLength        int         `yaml:"trail_length"`
	OrbitDistance      vmath.Range `yaml:"orbit_distance"`
	OrbitSpeed         vmath.Range `yaml:"orbit_speed"`
	OrbitCentres       int         `yaml:"orbit_centres"`
	EntranceDelayMS    vmath.Range `yaml:"entrance_delay_ms"`
	EntranceDurationMS vmath.Range `yaml:"entrance_duration_ms"`
	ColorSpeed         float64     `yaml:"color_speed"`

	Radius      float64 `yaml:"radius"`
	Variance    float64 `yaml:"variance"`
	GlowSize    float64 `yaml:"glow_size"`
	GlowOpacity float64 `yaml:"glow_opacity"`
	CycleMS     float64 `yaml:"cycle_ms"`
	ActiveRatio float64 `yaml:"active_ratio"`

	Layers      []int     `yaml:"layers"`
	LayerSpeeds []float64 `yaml:"layer_speeds"`
	Tiers       []string  `yaml:"tiers"`
	Roles       []string  `yaml:"roles"`

	// Colors overrides fallback colours by slot name (primary, secondary,
	// accent, human, ai, explorer, ...).
	Colors     map[string]string `yaml:"colors"`
	Background string            `yaml:"background"`

	FrameBudgetMS float64 `yaml:"frame_budget_ms"`
}

// Defaults returns the option set a kind starts from before user options
// are applied.
func Defaults(kind string) (Options, error) {
	o := Options{
		Friction:     1,
		Boundary:     string(physics.Wrap),
		Restitution:  1,
		ConnectEvery: 1,
		LineWidth:    1,
		Opacity:      vmath.Fixed(1),
	}
	switch kind {
	case Particles:
		o.Count = 500
		o.Size = vmath.Range{Min: 2, Max: 3}
		o.Speed = 2
		o.MaxSpeed = 2
		o.Friction = 0.95
		o.PointerRadius = 150
		o.PointerForce = 0.5
		o.Attract = true
		o.JitterChance = 0.05
		o.JitterMagnitude = 0.2
		o.SecondaryRatio = 0.2
		o.ConnectionDistance = 100
		o.Patterns = slices.Clone(pattern.DefaultSequence)
		o.PatternIntervalMS = vmath.Range{Min: 15000, Max: 18000}
		o.PatternDurationMS = vmath.Range{Min: 3000, Max: 4000}
		o.PatternLeadMS = 1000
		o.Grid = true
		o.Colors = map[string]string{"primary": "#48cae4", "secondary": "#7209b7"}
	case Sacred:
		o.Count = 120
		o.Size = vmath.Range{Min: 1, Max: 2}
		o.Speed = 0.3
		o.MaxSpeed = 0.5
		o.Friction = 0.99
		o.ConnectionDistance = 60
		o.ConnectionOpacity = 0.1
		o.LineWidth = 0.5
		o.Patterns = slices.Clone(pattern.DefaultSequence)
		o.PatternIntervalMS = vmath.Fixed(10000)
		o.PatternDurationMS = vmath.Fixed(2000)
		o.RotationSpeed = 0.0005
		o.GlowOpacity = 0.5
		o.Colors = map[string]string{"primary": "#48cae4", "secondary": "#7209b7"}
	case NeuralNetwork:
		o.Count = 80
		o.Size = vmath.Range{Min: 2, Max: 4}
		o.Speed = 0.5
		o.JitterChance = 0.01
		o.JitterMagnitude = 0.5
		o.ConnectionDistance = 150
		o.ConnectEvery = 2
		o.ImpulseIntervalMS = 250
		o.ImpulseTTLMS = vmath.Range{Min: 1000, Max: 1500}
		o.PulseSpeed = vmath.Range{Min: 1, Max: 3}
		o.GlowSize = 5
		o.FrameBudgetMS = 12
		o.Colors = map[string]string{"primary": "#00f0ff", "secondary": "#7209b7", "accent": "#f72585"}
	case NeuralOrganic:
		o.Count = 40
		o.Size = vmath.Range{Min: 2, Max: 3.5}
		o.Speed = 0.6
		o.Noise = 0.02
		o.NoiseScale = 0.0015
		o.Friction = 0.98
		o.MaxSpeed = 1
		o.ConnectionDistance = 180
		o.ConnectionOpacity = 1
		o.LineWidth = 0.5
		o.PulsePeriodMS = 3500
		o.PulseScale = 1.75
		o.Colors = map[string]string{"primary": "#48cae4", "secondary": "#7209b7"}
	case Headline:
		o.Count = 12
		o.Size = vmath.Range{Min: 1.5, Max: 2.5}
		o.MaxSpeed = 1.2
		o.TrailLength = 10
		o.OrbitDistance = vmath.Range{Min: 30, Max: 80}
		o.OrbitSpeed = vmath.Range{Min: 0.5, Max: 1.5}
		o.OrbitCentres = 5
		o.EntranceDelayMS = vmath.Range{Min: 0, Max: 1500}
		o.EntranceDurationMS = vmath.Range{Min: 1000, Max: 1500}
		o.ColorSpeed = 0.01
		o.ConnectionDistance = 40
		o.LineWidth = 0.5
		o.Colors = map[string]string{"primary": "#00f0ff", "secondary": "#7209b7", "accent": "#ffd700"}
	case Globe:
		o.Count = 30
		o.Size = vmath.Range{Min: 2, Max: 5}
		o.Radius = 150
		o.RotationSpeed = 0.0005
		o.PulseSpeed = vmath.Range{Min: 0.5, Max: 2}
		o.Connections = vmath.Range{Min: 1, Max: 3}
		o.LineWidth = 0.5
		o.ImpulseIntervalMS = 400
		o.ImpulseTTLMS = vmath.Range{Min: 1500, Max: 2500}
		o.Colors = map[string]string{"primary": "#00f0ff", "secondary": "#7209b7", "accent": "#10b981"}
	case SplitNeural:
		o.Count = 50
		o.Size = vmath.Range{Min: 2, Max: 3}
		o.Layers = []int{5, 8, 12, 8, 3}
		o.Connections = vmath.Fixed(10)
		o.PulseSpeed = vmath.Range{Min: 0.5, Max: 1}
		o.PulsePeriodMS = 500
		o.ActiveRatio = 0.4
		o.LineWidth = 1
		o.ImpulseIntervalMS = 500
		o.ImpulseTTLMS = vmath.Range{Min: 800, Max: 1200}
		o.Colors = map[string]string{"human": "#00b4d8", "human-gradient": "#90e0ef", "ai": "#7209b7", "ai-gradient": "#f72585"}
	case ButtonGlow:
		o.Count = 1
		o.GlowSize = 10
		o.GlowOpacity = 0.6
		o.CycleMS = 2500
		o.LineWidth = 3
		o.Colors = map[string]string{"primary": "#00f0ff"}
	case Tiers:
		o.Count = 200
		o.Size = vmath.Range{Min: 2, Max: 5}
		o.Opacity = vmath.Range{Min: 0.7, Max: 1}
		o.Speed = 0.4
		o.HoverSpeed = 1.2
		o.PointerRadius = 100
		o.PointerForce = 60
		o.GlowSize = 3
		o.Tiers = []string{"explorer", "scholar", "visionary", "innovator"}
		o.Colors = map[string]string{
			"explorer":  "#10b981",
			"scholar":   "#7209b7",
			"visionary": "#ffd700",
			"innovator": "#00f0ff",
		}
	case Framework:
		o.Count = 12
		o.Size = vmath.Fixed(6)
		o.Speed = 2
		o.MaxSpeed = 2
		o.Boundary = string(physics.Bounce)
		o.ConnectionDistance = 120
		o.HoverRadius = 50
		o.Colors = map[string]string{"primary": "#4a90e2"}
	case StarField:
		o.Layers = []int{100, 50, 25}
		o.LayerSpeeds = []float64{0.1, 0.25, 0.4}
		o.PulseSpeed = vmath.Range{Min: 1, Max: 3}
		o.Opacity = vmath.Range{Min: 0.3, Max: 1}
		o.Colors = map[string]string{"star": "#ffffff"}
	case PromptSage:
		o.Count = 50
		o.Size = vmath.Range{Min: 1.5, Max: 3}
		o.Speed = 1
		o.Layers = []int{7, 7, 7}
		o.Radius = 0.7
		o.Roles = []string{"tutor", "examiner", "assistant"}
		o.CycleMS = 5000
		o.Colors = map[string]string{
			"primary":    "#00f0ff",
			"visual":     "#00c8ff",
			"analytical": "#9c6bff",
			"pattern":    "#ffbb00",
			"boundary":   "#ffffff",
		}
	default:
		return Options{}, fmt.Errorf("anim: unknown kind %q", kind)
	}
	return o, nil
}

// OptionsFor applies node on top of the kind's defaults and validates the
// result. Keys missing from node keep their defaults; a colours map is
// merged key by key.
func OptionsFor(kind string, node *yaml.Node) (Options, error) {
	o, err := Defaults(kind)
	if err != nil {
		return Options{}, err
	}
	if node != nil && node.Kind != 0 {
		base := o.Colors
		o.Colors = nil
		if err := node.Decode(&o); err != nil {
			return Options{}, fmt.Errorf("anim: %s options: %w", kind, err)
		}
		for k, v := range o.Colors {
			if base == nil {
				base = map[string]string{}
			}
			base[k] = v
		}
		o.Colors = base
	}
	if err := o.Validate(); err != nil {
		return Options{}, fmt.Errorf("anim: %s options: %w", kind, err)
	}
	return o, nil
}

// Validate rejects option values no effect can run with.
func (o Options) Validate() error {
	var errs []error
	neg := func(name string, v float64) {
		if v < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative", name))
		}
	}
	rng := func(name string, r vmath.Range) {
		if r.Negative() {
			errs = append(errs, fmt.Errorf("%s must not be negative", name))
		}
		if !r.Valid() {
			errs = append(errs, fmt.Errorf("%s range is inverted", name))
		}
	}
	neg("count", float64(o.Count))
	neg("speed", o.Speed)
	neg("max_speed", o.MaxSpeed)
	neg("pointer_radius", o.PointerRadius)
	neg("hover_radius", o.HoverRadius)
	neg("connection_distance", o.ConnectionDistance)
	neg("connection_opacity", o.ConnectionOpacity)
	neg("line_width", o.LineWidth)
	neg("min_connections", float64(o.MinConnections))
	neg("pattern_lead_ms", o.PatternLeadMS)
	neg("impulse_interval_ms", o.ImpulseIntervalMS)
	neg("pulse_period_ms", o.PulsePeriodMS)
	neg("trail_length", float64(o.TrailLength))
	neg("radius", o.Radius)
	neg("glow_size", o.GlowSize)
	neg("cycle_ms", o.CycleMS)
	neg("frame_budget_ms", o.FrameBudgetMS)
	neg("secondary_ratio", o.SecondaryRatio)
	neg("accent_ratio", o.AccentRatio)
	rng("size", o.Size)
	rng("opacity", o.Opacity)
	rng("connections", o.Connections)
	rng("pattern_interval_ms", o.PatternIntervalMS)
	rng("pattern_duration_ms", o.PatternDurationMS)
	rng("impulse_ttl_ms", o.ImpulseTTLMS)
	rng("pulse_speed", o.PulseSpeed)
	rng("orbit_distance", o.OrbitDistance)
	rng("orbit_speed", o.OrbitSpeed)
	rng("entrance_delay_ms", o.EntranceDelayMS)
	rng("entrance_duration_ms", o.EntranceDurationMS)
	if o.Friction <= 0 || o.Friction > 1 {
		errs = append(errs, fmt.Errorf("friction %v outside (0,1]", o.Friction))
	}
	if o.Restitution < 0 || o.Restitution > 1 {
		errs = append(errs, fmt.Errorf("restitution %v outside [0,1]", o.Restitution))
	}
	if o.ConnectEvery < 1 {
		errs = append(errs, errors.New("connect_every must be at least 1"))
	}
	if o.SecondaryRatio+o.AccentRatio > 1 {
		errs = append(errs, errors.New("secondary_ratio plus accent_ratio exceeds 1"))
	}
	switch physics.Boundary(o.Boundary) {
	case physics.Wrap, physics.Bounce, physics.Open:
	default:
		errs = append(errs, fmt.Errorf("unknown boundary %q", o.Boundary))
	}
	for _, n := range o.Layers {
		if n <= 0 {
			errs = append(errs, fmt.Errorf("layer size %d must be positive", n))
		}
	}
	for _, v := range o.LayerSpeeds {
		neg("layer_speeds", v)
	}
	return errors.Join(errs...)
}

// motion builds the physics policy the options describe.
func (o Options) motion() physics.Motion {
	return physics.Motion{
		Friction:        o.Friction,
		MaxSpeed:        o.MaxSpeed,
		PointerRadius:   o.PointerRadius,
		PointerForce:    o.PointerForce,
		Attract:         o.Attract,
		OrbitK:          o.OrbitK,
		OrbitRadius:     o.OrbitRadius,
		NoiseForce:      o.Noise,
		NoiseScale:      o.NoiseScale,
		JitterChance:    o.JitterChance,
		JitterMagnitude: o.JitterMagnitude,
		Boundary:        physics.Boundary(o.Boundary),
		Restitution:     o.Restitution,
		WrapMargin:      2,
	}
}
