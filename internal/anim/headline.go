package anim

import (
	"image/color"
	"math"

	"github.com/coreman2200/canvasfx/internal/connect"
	"github.com/coreman2200/canvasfx/internal/entity"
	"github.com/coreman2200/canvasfx/internal/physics"
	"github.com/coreman2200/canvasfx/internal/render"
	"github.com/coreman2200/canvasfx/internal/theme"
	"github.com/coreman2200/canvasfx/internal/vmath"
)

// headline orbits a few particles around centres along the headline,
// fading them in one by one and cycling each through the three tones.
type headline struct {
	orbits physics.Orbits
	tones  theme.Tones
}

func (h *headline) Init(in *Instance) error {
	o := in.opt
	err := in.store.Spawn(o.Count, entity.Spawn{
		Layout:     entity.Orbit,
		Size:       o.Size,
		From:       vmath.Vec2{X: 0.2, Y: 0.5},
		To:         vmath.Vec2{X: 0.8, Y: 0.5},
		Centres:    o.OrbitCentres,
		OrbitDist:  o.OrbitDistance,
		OrbitSpeed: o.OrbitSpeed,
		Delay:      o.EntranceDelayMS,
	})
	if err != nil {
		return err
	}
	rng := in.store.Rand()
	for i := range in.store.Items {
		e := &in.store.Items[i]
		e.Tone = entity.Tone(rng.IntN(3))
		e.Blend = rng.Float64()
	}
	h.orbits = physics.Orbits{Entrance: msDur(o.EntranceDurationMS.Mid()), Ease: vmath.OutCubic}
	return nil
}

func (h *headline) Recolor(in *Instance, p theme.Palette) {
	h.tones = in.tones(p)
	in.store.SetTones(h.tones)
}

func (h *headline) Step(in *Instance, t Tick) {
	h.orbits.Step(in.store, t.DT, t.Elapsed)
	for i := range in.store.Items {
		e := &in.store.Items[i]
		if e.Opacity <= 0 {
			continue
		}
		e.Blend += in.opt.ColorSpeed * t.DT
		if e.Blend >= 1 {
			e.Blend = 0
			e.Tone = e.Tone.Next()
		}
		e.PushTrail(in.opt.TrailLength)
	}
	in.connect(t, in.opt.ConnectionDistance)
}

func (h *headline) colour(e *entity.Entity) color.NRGBA {
	return theme.Interpolate(toneColor(h.tones, e.Tone), toneColor(h.tones, e.Tone.Next()), e.Blend)
}

func (h *headline) Draw(in *Instance, c render.Canvas, t Tick) {
	breathe := 1 + math.Sin(float64(t.Elapsed.Milliseconds())*0.002)*0.15
	cd := in.opt.ConnectionDistance
	render.Draw(c, render.Scene{Items: in.store.Items, Edges: in.edges}, render.Style{
		Background: in.background(),
		Edge: func(e connect.Edge, a, b *entity.Entity) (color.NRGBA, float64) {
			alpha := 0.2 * (1 - e.Distance/cd) * math.Min(a.Opacity, b.Opacity)
			return theme.WithAlpha(h.colour(a), alpha), in.opt.LineWidth
		},
		TrailWidth: 1,
		Node: func(e *entity.Entity) (float64, color.NRGBA, float64) {
			return e.Size * breathe * 2, theme.WithAlpha(h.colour(e), e.Opacity), 1
		},
		Hidden: func(e *entity.Entity) bool { return e.Opacity <= 0 },
	})
}
