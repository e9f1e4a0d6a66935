package render

import (
	"image"
	"image/color"

	"github.com/coreman2200/canvasfx/internal/vmath"
)

// Canvas is the 2D drawing surface of one animation instance. Coordinates
// are logical (CSS) pixels; implementations apply the device pixel ratio.
// Colours are non-premultiplied and already carry the draw opacity.
type Canvas interface {
	Size() (w, h float64)
	DPR() float64
	Resize(w, h, dpr float64) error
	// Clear wipes the surface; a zero-alpha bg leaves it transparent.
	Clear(bg color.NRGBA)
	Line(a, b vmath.Vec2, width float64, c color.NRGBA)
	Polyline(pts []vmath.Vec2, width float64, c color.NRGBA)
	Circle(p vmath.Vec2, r float64, c color.NRGBA)
	// Glow fills a disc of radius r fading from c at the centre to
	// transparent at the edge, scaled by intensity.
	Glow(p vmath.Vec2, r float64, c color.NRGBA, intensity float64)
	Image() image.Image
	Close() error
}
