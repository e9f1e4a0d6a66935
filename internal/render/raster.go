package render

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/gogpu/gg"

	"github.com/coreman2200/canvasfx/internal/vmath"
)

// Raster is a Canvas backed by a gg software context. The backing store is
// w*dpr by h*dpr device pixels and the transform scales logical coordinates.
type Raster struct {
	ctx  *gg.Context
	w, h float64
	dpr  float64
	err  error
}

func NewRaster(w, h, dpr float64) (*Raster, error) {
	if dpr <= 0 {
		dpr = 1
	}
	pw, ph := devicePixels(w, dpr), devicePixels(h, dpr)
	if pw <= 0 || ph <= 0 {
		return nil, fmt.Errorf("raster: invalid size %vx%v", w, h)
	}
	r := &Raster{ctx: gg.NewContext(pw, ph), w: w, h: h, dpr: dpr}
	r.ctx.Scale(dpr, dpr)
	return r, nil
}

func devicePixels(v, dpr float64) int { return int(math.Round(v * dpr)) }

func (r *Raster) Size() (float64, float64) { return r.w, r.h }

func (r *Raster) DPR() float64 { return r.dpr }

// Resize reallocates the backing store and resets the transform so the
// DPR scale is applied exactly once.
func (r *Raster) Resize(w, h, dpr float64) error {
	if dpr <= 0 {
		dpr = 1
	}
	if err := r.ctx.Resize(devicePixels(w, dpr), devicePixels(h, dpr)); err != nil {
		return fmt.Errorf("raster: %w", err)
	}
	r.ctx.Identity()
	r.ctx.Scale(dpr, dpr)
	r.w, r.h, r.dpr = w, h, dpr
	return nil
}

func (r *Raster) Clear(bg color.NRGBA) {
	if bg.A == 0 {
		r.ctx.Clear()
		return
	}
	r.ctx.ClearWithColor(gg.FromColor(bg))
}

func (r *Raster) setColor(c color.NRGBA) {
	r.ctx.SetRGBA(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255, float64(c.A)/255)
}

func (r *Raster) Line(a, b vmath.Vec2, width float64, c color.NRGBA) {
	if c.A == 0 || width <= 0 {
		return
	}
	r.setColor(c)
	r.ctx.SetLineWidth(width)
	r.ctx.DrawLine(a.X, a.Y, b.X, b.Y)
	r.keep(r.ctx.Stroke())
}

func (r *Raster) Polyline(pts []vmath.Vec2, width float64, c color.NRGBA) {
	if len(pts) < 2 || c.A == 0 || width <= 0 {
		return
	}
	r.setColor(c)
	r.ctx.SetLineWidth(width)
	r.ctx.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		r.ctx.LineTo(p.X, p.Y)
	}
	r.keep(r.ctx.Stroke())
}

func (r *Raster) Circle(p vmath.Vec2, rad float64, c color.NRGBA) {
	if c.A == 0 || rad <= 0 {
		return
	}
	r.setColor(c)
	r.ctx.DrawCircle(p.X, p.Y, rad)
	r.keep(r.ctx.Fill())
}

// Glow paints a radial gradient. Gradient brushes sample in device space,
// so the centre and radius are scaled by the DPR here.
func (r *Raster) Glow(p vmath.Vec2, rad float64, c color.NRGBA, intensity float64) {
	if c.A == 0 || rad <= 0 || intensity <= 0 {
		return
	}
	base := gg.FromColor(color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255})
	a := float64(c.A) / 255
	mid := base
	mid.A = a * vmath.Clamp01(intensity*80/255)
	edge := base
	edge.A = 0
	base.A = a
	brush := gg.NewRadialGradientBrush(p.X*r.dpr, p.Y*r.dpr, 0, rad*r.dpr).
		AddColorStop(0, base).
		AddColorStop(0.5, mid).
		AddColorStop(1, edge)
	r.ctx.SetFillBrush(brush)
	r.ctx.DrawCircle(p.X, p.Y, rad)
	r.keep(r.ctx.Fill())
}

// keep records the first draw error; Err reports and clears it.
func (r *Raster) keep(err error) {
	if err != nil && r.err == nil {
		r.err = err
	}
}

func (r *Raster) Err() error {
	err := r.err
	r.err = nil
	return err
}

func (r *Raster) Image() image.Image { return r.ctx.Image() }

func (r *Raster) EncodePNG(w io.Writer) error { return r.ctx.EncodePNG(w) }

func (r *Raster) Close() error {
	if r.ctx == nil {
		return nil
	}
	err := r.ctx.Close()
	r.ctx = nil
	return err
}
