package vmath

import "math"

// EaseFunc maps progress in [0,1] to eased progress in [0,1].
type EaseFunc func(float64) float64

func Linear(x float64) float64 { return x }

// InOutCubic is the morph easing: 4x^3 below the midpoint, mirrored above.
func InOutCubic(x float64) float64 {
	if x < 0.5 {
		return 4 * x * x * x
	}
	return 1 - math.Pow(-2*x+2, 3)/2
}

func OutCubic(x float64) float64 { return 1 - math.Pow(1-x, 3) }

func InOutQuad(x float64) float64 {
	if x < 0.5 {
		return 2 * x * x
	}
	return 1 - math.Pow(-2*x+2, 2)/2
}

// Smoothstep is 3x^2 - 2x^3.
func Smoothstep(x float64) float64 { return x * x * (3 - 2*x) }

// Smootherstep is 6x^5 - 15x^4 + 10x^3.
func Smootherstep(x float64) float64 { return x * x * x * (x*(x*6-15) + 10) }

var eases = map[string]EaseFunc{
	"":             Linear,
	"linear":       Linear,
	"smooth":       Smoothstep,
	"cubic":        Smootherstep,
	"in-out-cubic": InOutCubic,
	"out-cubic":    OutCubic,
	"in-out-quad":  InOutQuad,
}

// Ease looks up an easing by name, falling back to Linear for unknown names.
func Ease(name string) EaseFunc {
	if f, ok := eases[name]; ok {
		return f
	}
	return Linear
}

// KnownEase reports whether name is a registered easing.
func KnownEase(name string) bool {
	_, ok := eases[name]
	return ok
}
