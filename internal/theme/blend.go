package theme

import (
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
)

func toColorful(c color.NRGBA) colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

func fromColorful(c colorful.Color, a uint8) color.NRGBA {
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: a}
}

// Interpolate blends a toward b in Lab space; t is clamped to [0,1].
func Interpolate(a, b color.NRGBA, t float64) color.NRGBA {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	alpha := float64(a.A) + (float64(b.A)-float64(a.A))*t
	return fromColorful(toColorful(a).BlendLab(toColorful(b), t), uint8(alpha+0.5))
}

// Variations returns n darker shades, base, then n lighter shades, stepping
// HSL lightness by 0.1.
func Variations(base color.NRGBA, n int) []color.NRGBA {
	h, s, l := toColorful(base).Hsl()
	out := make([]color.NRGBA, 0, 2*n+1)
	for i := n; i >= 1; i-- {
		out = append(out, fromColorful(colorful.Hsl(h, s, max(l-float64(i)*0.1, 0)), base.A))
	}
	out = append(out, base)
	for i := 1; i <= n; i++ {
		out = append(out, fromColorful(colorful.Hsl(h, s, min(l+float64(i)*0.1, 1)), base.A))
	}
	return out
}

// Boost raises lightness by amount and saturation by half of it, used by the
// high contrast mode.
func Boost(c color.NRGBA, amount float64) color.NRGBA {
	h, s, l := toColorful(c).Hsl()
	return fromColorful(colorful.Hsl(h, min(s+amount/2, 1), min(l+amount, 1)), c.A)
}
