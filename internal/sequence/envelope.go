package sequence

import "github.com/coreman2200/canvasfx/internal/vmath"

// Eval returns the value of the envelope at time t (seconds).
// If there are no keys, returns 0; if one key, returns its value.
// Keys must be sorted by T ascending.
func (e Envelope) Eval(t float64) float64 {
	n := len(e.Keys)
	if n == 0 {
		return 0
	}
	if t <= e.Keys[0].T {
		return e.Keys[0].V
	}
	if t >= e.Keys[n-1].T {
		return e.Keys[n-1].V
	}
	for i := 0; i < n-1; i++ {
		a, b := e.Keys[i], e.Keys[i+1]
		if t >= a.T && t <= b.T {
			den := b.T - a.T
			if den <= 0 {
				return b.V
			}
			u := vmath.Ease(a.Ease)(vmath.Clamp01((t - a.T) / den))
			return a.V + (b.V-a.V)*u
		}
	}
	return e.Keys[n-1].V
}

// Valid reports whether keys are sorted and use known easing names.
func (e Envelope) Valid() bool {
	for i, k := range e.Keys {
		if !vmath.KnownEase(k.Ease) {
			return false
		}
		if i > 0 && k.T < e.Keys[i-1].T {
			return false
		}
	}
	return true
}
