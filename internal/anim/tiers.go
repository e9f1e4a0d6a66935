package anim

import (
	"image/color"

	"github.com/coreman2200/canvasfx/internal/entity"
	"github.com/coreman2200/canvasfx/internal/physics"
	"github.com/coreman2200/canvasfx/internal/render"
	"github.com/coreman2200/canvasfx/internal/theme"
	"github.com/coreman2200/canvasfx/internal/vmath"
)

// tintRadius is how far from the pointer particles take the hovered tier's
// colour.
const tintRadius = 500

var defaultTint = color.NRGBA{R: 26, G: 46, B: 59, A: 204}

// tiers is the community backdrop: a slow particle flow that the pointer
// pushes aside and that lights up in the colour of the tier card under the
// pointer. The canvas is split into one column per tier.
type tiers struct {
	colours []color.NRGBA
	hovered int
	focus   vmath.Vec2
	// alpha is each particle's resting opacity.
	alpha []float64
}

func (tr *tiers) Init(in *Instance) error {
	o := in.opt
	err := in.store.Spawn(o.Count, entity.Spawn{
		Layout:  entity.Random,
		Size:    o.Size,
		Speed:   o.Speed * 2,
		Opacity: o.Opacity,
		Groups:  len(o.Tiers),
	})
	if err != nil {
		return err
	}
	in.motion.PointerForce = o.PointerForce * 0.01
	in.motion.Attract = false
	if o.HoverSpeed > 0 {
		in.motion.MaxSpeed = o.HoverSpeed
	}
	tr.hovered = -1
	for _, e := range in.store.Items {
		tr.alpha = append(tr.alpha, e.Opacity)
	}
	return nil
}

func (tr *tiers) Recolor(in *Instance, p theme.Palette) {
	tr.colours = tr.colours[:0]
	for _, name := range in.opt.Tiers {
		tr.colours = append(tr.colours, in.color(p, "--color-tier-"+name, name))
	}
	in.store.SetTones(theme.Tones{Primary: defaultTint, Secondary: defaultTint, Accent: defaultTint})
}

// column is the tier card under x, or -1.
func (tr *tiers) column(in *Instance, x float64) int {
	n := len(in.opt.Tiers)
	if n == 0 || x < 0 || x >= in.store.W {
		return -1
	}
	return int(x / in.store.W * float64(n))
}

func (tr *tiers) Pointer(in *Instance, p physics.Pointer) {
	if !p.Valid {
		tr.hovered = -1
		return
	}
	tr.hovered = tr.column(in, p.X)
	tr.focus = vmath.Vec2{X: p.X, Y: p.Y}
}

func (tr *tiers) Groups(in *Instance) int { return len(in.opt.Tiers) }

// Highlight selects a tier from the keyboard, centring the tint on its card.
func (tr *tiers) Highlight(in *Instance, group int) {
	n := len(in.opt.Tiers)
	if group < 0 || group >= n {
		tr.hovered = -1
		return
	}
	tr.hovered = group
	tr.focus = vmath.Vec2{X: (float64(group) + 0.5) / float64(n) * in.store.W, Y: in.store.H / 2}
}

func (tr *tiers) Step(in *Instance, t Tick) {
	in.motion.Step(in.store, in.pointer, t.DT, t.Elapsed.Seconds())
	for i := range in.store.Items {
		e := &in.store.Items[i]
		e.Active = false
		e.Opacity = tr.alpha[i]
		if tr.hovered < 0 {
			continue
		}
		d := e.Pos().DistTo(tr.focus)
		if d < tintRadius {
			e.Active = true
			e.Opacity = 0.7 + 0.3*(1-d/tintRadius)
		}
	}
}

func (tr *tiers) Draw(in *Instance, c render.Canvas, t Tick) {
	render.Draw(c, render.Scene{Items: in.store.Items}, render.Style{
		Background: in.background(),
		Node: func(e *entity.Entity) (float64, color.NRGBA, float64) {
			col := defaultTint
			if e.Active && tr.hovered < len(tr.colours) {
				col = tr.colours[tr.hovered]
			}
			col = theme.WithAlpha(col, float64(col.A)/255*e.Opacity)
			return e.Size * max(in.opt.GlowSize, 2), col, 1
		},
	})
}
