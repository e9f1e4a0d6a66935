package anim

import (
	"image/color"
	"math"

	"github.com/coreman2200/canvasfx/internal/entity"
	"github.com/coreman2200/canvasfx/internal/render"
	"github.com/coreman2200/canvasfx/internal/theme"
	"github.com/coreman2200/canvasfx/internal/vmath"
)

// stars is a twinkling star field in depth layers. Layer i has Layers[i]
// stars of radius i+1 drifting right at LayerSpeeds[i], so nearer layers
// are bigger and faster.
type stars struct {
	col color.NRGBA
}

func (s *stars) Init(in *Instance) error {
	o := in.opt
	st := in.store
	for li, n := range o.Layers {
		from := st.Len()
		err := st.Spawn(n, entity.Spawn{
			Layout:     entity.Random,
			Size:       vmath.Fixed(float64(li + 1)),
			Opacity:    o.Opacity,
			PulseSpeed: o.PulseSpeed,
		})
		if err != nil {
			return err
		}
		speed := 0.0
		if li < len(o.LayerSpeeds) {
			speed = o.LayerSpeeds[li]
		}
		for i := from; i < st.Len(); i++ {
			st.Items[i].Group = li
			st.Items[i].VX = speed
		}
	}
	return nil
}

func (s *stars) Recolor(in *Instance, p theme.Palette) {
	s.col = in.color(p, "--color-star", "star")
	in.store.SetTones(theme.Tones{Primary: s.col, Secondary: s.col, Accent: s.col})
}

func (s *stars) Step(in *Instance, t Tick) {
	sec := t.Elapsed.Seconds()
	w := in.store.W
	k := in.motion.SpeedScale * t.DT
	for i := range in.store.Items {
		e := &in.store.Items[i]
		e.X += e.VX * k
		if span := w + 2*e.Size; e.X > w+e.Size {
			e.X -= span
		}
		e.Opacity = 0.3 + (math.Sin(sec*e.PulseSpeed+e.Phase)+1)*0.35
	}
}

func (s *stars) Draw(in *Instance, c render.Canvas, t Tick) {
	render.Draw(c, render.Scene{Items: in.store.Items}, render.Style{
		Background: in.background(),
		Node: func(e *entity.Entity) (float64, color.NRGBA, float64) {
			return e.Size, theme.WithAlpha(s.col, e.Opacity), 0
		},
	})
}
