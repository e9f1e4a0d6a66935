package anim

import (
	"fmt"
	"image/color"
	"math"

	"github.com/coreman2200/canvasfx/internal/entity"
	"github.com/coreman2200/canvasfx/internal/theme"
)

func newEffect(kind string) (Effect, error) {
	switch kind {
	case Particles:
		return &particles{}, nil
	case Sacred:
		return &particles{sacred: true}, nil
	case NeuralNetwork:
		return &neural{}, nil
	case NeuralOrganic:
		return &organic{}, nil
	case Headline:
		return &headline{}, nil
	case Globe:
		return &globe{}, nil
	case SplitNeural:
		return &split{}, nil
	case ButtonGlow:
		return &button{}, nil
	case Tiers:
		return &tiers{}, nil
	case Framework:
		return &framework{}, nil
	case StarField:
		return &stars{}, nil
	case PromptSage:
		return &sage{}, nil
	}
	return nil, fmt.Errorf("unknown effect kind %q", kind)
}

// tones resolves the standard three slots.
func (in *Instance) tones(p theme.Palette) theme.Tones {
	return theme.Tones{
		Primary:   in.color(p, theme.Primary, "primary"),
		Secondary: in.color(p, theme.Secondary, "secondary"),
		Accent:    in.color(p, theme.Accent, "accent"),
	}
}

// pulse is the 0.8..1.0 breathing factor shared by the node effects.
func pulse(sec, speed, phase float64) float64 {
	return 0.8 + 0.2*math.Sin(sec*speed+phase)
}

func toneColor(ts theme.Tones, t entity.Tone) color.NRGBA {
	switch t {
	case entity.Secondary:
		return ts.Secondary
	case entity.Accent:
		return ts.Accent
	}
	return ts.Primary
}
