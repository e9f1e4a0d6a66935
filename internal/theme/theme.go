package theme

import (
	"fmt"
	"image/color"
	"maps"
	"slices"
	"sync"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Custom properties read by the effects.
const (
	Primary       = "--color-primary"
	Secondary     = "--color-secondary"
	Accent        = "--color-accent"
	Background    = "--color-background"
	Text          = "--color-text"
	Human         = "--color-human"
	HumanGradient = "--color-human-gradient"
	AI            = "--color-ai"
	AIGradient    = "--color-ai-gradient"
)

const DefaultName = "quantum-void"

// Palette is one theme's resolved custom properties (property -> hex).
type Palette struct {
	Name  string
	Props map[string]string
}

// Lookup returns the property as a colour, or fallback (a hex string) when the
// property is absent or unparsable.
func (p Palette) Lookup(prop, fallback string) color.NRGBA {
	if v, ok := p.Props[prop]; ok {
		if c, err := ParseHex(v); err == nil {
			return c
		}
	}
	c, err := ParseHex(fallback)
	if err != nil {
		return color.NRGBA{A: 255}
	}
	return c
}

// Tones is the three colour slots entities are painted with.
type Tones struct {
	Primary, Secondary, Accent color.NRGBA
}

// Tones resolves the standard tone properties with per-effect fallbacks.
func (p Palette) Tones(primary, secondary, accent string) Tones {
	return Tones{
		Primary:   p.Lookup(Primary, primary),
		Secondary: p.Lookup(Secondary, secondary),
		Accent:    p.Lookup(Accent, accent),
	}
}

// Provider returns the palette in effect right now.
type Provider func() Palette

// Static is a Provider that always returns p.
func Static(p Palette) Provider { return func() Palette { return p } }

func ParseHex(s string) (color.NRGBA, error) {
	if len(s) == 4 && s[0] == '#' {
		s = string([]byte{'#', s[1], s[1], s[2], s[2], s[3], s[3]})
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("parse colour %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

func Hex(c color.NRGBA) string { return toColorful(c).Hex() }

// WithAlpha returns c with alpha a in [0,1].
func WithAlpha(c color.NRGBA, a float64) color.NRGBA {
	if a < 0 {
		a = 0
	}
	if a > 1 {
		a = 1
	}
	c.A = uint8(a*255 + 0.5)
	return c
}

// Source holds the named themes.
type Source struct {
	mu     sync.RWMutex
	themes map[string]Palette
}

func NewSource() *Source {
	s := &Source{themes: map[string]Palette{}}
	for _, p := range builtins() {
		s.themes[p.Name] = p
	}
	return s
}

// Merge overlays props onto the named theme, creating it if needed.
func (s *Source) Merge(name string, props map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.themes[name]
	if !ok {
		p = Palette{Name: name, Props: map[string]string{}}
	} else {
		p.Props = maps.Clone(p.Props)
	}
	maps.Copy(p.Props, props)
	s.themes[name] = p
}

func (s *Source) Get(name string) (Palette, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.themes[name]
	return p, ok
}

func (s *Source) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.themes))
}

func builtins() []Palette {
	return []Palette{
		{Name: "quantum-void", Props: map[string]string{
			Primary: "#00f0ff", Secondary: "#7209b7", Accent: "#f72585",
			Background: "#0a0e17", Text: "#e0fbfc",
			Human: "#00b4d8", HumanGradient: "#90e0ef", AI: "#7209b7", AIGradient: "#f72585",
		}},
		{Name: "biomorphic-synthesis", Props: map[string]string{
			Primary: "#43fec4", Secondary: "#ffb100", Accent: "#ff6b35",
			Background: "#08140f", Text: "#effff8",
			Human: "#43fec4", HumanGradient: "#90e0ef", AI: "#ffb100", AIGradient: "#ff6b35",
		}},
		{Name: "neural-circuit", Props: map[string]string{
			Primary: "#ff2b4e", Secondary: "#0066ff", Accent: "#ff6b6b",
			Background: "#10070b", Text: "#fff0f2",
			Human: "#0066ff", HumanGradient: "#00a8e8", AI: "#ff2b4e", AIGradient: "#ff6b6b",
		}},
		{Name: "blockchain-horizons", Props: map[string]string{
			Primary: "#00e9c0", Secondary: "#ff6b35", Accent: "#ff9e00",
			Background: "#051412", Text: "#eafffb",
			Human: "#00e9c0", HumanGradient: "#00f5d4", AI: "#ff6b35", AIGradient: "#ff9e00",
		}},
	}
}
