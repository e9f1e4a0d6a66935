package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/coreman2200/canvasfx/internal/typewriter"
)

type Viewport struct {
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	DPR    float64 `yaml:"dpr"`
}

// Box places a container inside its section. A nil box fills the section
// and follows the viewport width.
type Box struct {
	X      int `yaml:"x"`
	Y      int `yaml:"y"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Effect places one animation into a section. Options is decoded by the
// effect kind on top of its defaults; unknown keys are ignored.
type Effect struct {
	Kind    string    `yaml:"kind"`
	ID      string    `yaml:"id,omitempty"`
	Box     *Box      `yaml:"box,omitempty"`
	Options yaml.Node `yaml:"options,omitempty"`
}

// Section is a vertical band of the page.
type Section struct {
	Name       string              `yaml:"name"`
	Height     int                 `yaml:"height"`
	Effects    []Effect            `yaml:"effects"`
	Typewriter *typewriter.Options `yaml:"typewriter,omitempty"`
}

type Config struct {
	FPS             int     `yaml:"fps"`
	LogLevel        string  `yaml:"log_level"`
	Theme           string  `yaml:"theme"`
	ReducedMotion   bool    `yaml:"reduced_motion"`
	HighContrast    bool    `yaml:"high_contrast"`
	Seed            uint64  `yaml:"seed"`
	FrameBudgetMS   float64 `yaml:"frame_budget_ms"`
	MaxStoredErrors int     `yaml:"max_stored_errors"`

	Viewport Viewport `yaml:"viewport"`

	// Themes adds or overrides named themes: theme -> custom property -> hex.
	Themes   map[string]map[string]string `yaml:"themes,omitempty"`
	Sections []Section                    `yaml:"sections"`
}

// Default is the landing page layout used when no file is given.
func Default() *Config {
	return &Config{
		FPS:             60,
		LogLevel:        "info",
		Theme:           "quantum-void",
		Seed:            1,
		MaxStoredErrors: 50,
		Viewport:        Viewport{Width: 1280, Height: 720, DPR: 1},
		Sections: []Section{
			{
				Name:       "hero",
				Height:     720,
				Effects:    []Effect{{Kind: "particles"}, {Kind: "headline-particles", Box: &Box{X: 240, Y: 220, Width: 800, Height: 200}}},
				Typewriter: headline("Where human intuition meets artificial intelligence"),
			},
			{Name: "network", Height: 600, Effects: []Effect{{Kind: "neural-network"}, {Kind: "framework", Box: &Box{X: 40, Y: 60, Width: 400, Height: 300}}}},
			{Name: "philosophy", Height: 600, Effects: []Effect{{Kind: "star-field"}, {Kind: "sacred-geometry"}}},
			{Name: "assistants", Height: 500, Effects: []Effect{{Kind: "split-neural"}, {Kind: "prompt-sage", Box: &Box{X: 880, Y: 100, Width: 360, Height: 300}}}},
			{Name: "community", Height: 700, Effects: []Effect{{Kind: "globe"}, {Kind: "community-tiers"}}},
			{Name: "join", Height: 200, Effects: []Effect{{Kind: "button-glow", Box: &Box{X: 540, Y: 70, Width: 200, Height: 60}}}},
		},
	}
}

func headline(text string) *typewriter.Options {
	o := typewriter.DefaultOptions()
	o.Text = text
	return &o
}

// Load reads path on top of Default and validates the result.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

func (c *Config) Validate() error {
	var errs []error
	if c.FPS <= 0 {
		errs = append(errs, fmt.Errorf("fps must be positive, got %d", c.FPS))
	}
	if c.FrameBudgetMS < 0 {
		errs = append(errs, fmt.Errorf("frame_budget_ms must not be negative"))
	}
	if c.MaxStoredErrors < 0 {
		errs = append(errs, fmt.Errorf("max_stored_errors must not be negative"))
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		errs = append(errs, fmt.Errorf("viewport must be positive, got %dx%d", c.Viewport.Width, c.Viewport.Height))
	}
	if c.Viewport.DPR <= 0 {
		errs = append(errs, fmt.Errorf("viewport dpr must be positive"))
	}
	seen := map[string]bool{}
	for i, s := range c.Sections {
		if s.Name == "" {
			errs = append(errs, fmt.Errorf("section %d has no name", i))
		} else if seen[s.Name] {
			errs = append(errs, fmt.Errorf("section %q defined twice", s.Name))
		}
		seen[s.Name] = true
		if s.Height <= 0 {
			errs = append(errs, fmt.Errorf("section %q height must be positive", s.Name))
		}
		for j, e := range s.Effects {
			if e.Kind == "" {
				errs = append(errs, fmt.Errorf("section %q effect %d has no kind", s.Name, j))
			}
			if b := e.Box; b != nil {
				if b.Width <= 0 || b.Height <= 0 {
					errs = append(errs, fmt.Errorf("section %q effect %d box must have a positive size", s.Name, j))
				}
				if b.Y < 0 || b.Y+b.Height > s.Height {
					errs = append(errs, fmt.Errorf("section %q effect %d box leaves the section", s.Name, j))
				}
			}
		}
		if tw := s.Typewriter; tw != nil && (tw.ConsonantMS < 0 || tw.VowelMS < 0 || tw.StartDelayMS < 0) {
			errs = append(errs, fmt.Errorf("section %q typewriter delays must not be negative", s.Name))
		}
	}
	return errors.Join(errs...)
}

// PageHeight is the sum of all section heights.
func (c *Config) PageHeight() int {
	h := 0
	for _, s := range c.Sections {
		h += s.Height
	}
	return h
}
