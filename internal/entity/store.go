package entity

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"math/rand/v2"
	"time"

	"github.com/coreman2200/canvasfx/internal/theme"
	"github.com/coreman2200/canvasfx/internal/vmath"
)

type Layout string

const (
	Random Layout = "random"
	Ring   Layout = "ring"
	Line   Layout = "line"
	Orbit  Layout = "orbit"
	Sphere Layout = "sphere"
)

// Spawn configures how a batch of entities is placed.
type Spawn struct {
	Layout Layout
	Size   vmath.Range
	// Initial velocity per axis is (rand-0.5)*Speed.
	Speed float64

	SecondaryRatio float64
	AccentRatio    float64

	// Ring: radius as a fraction of min(W,H) with up to Variance*radius added.
	Radius   float64
	Variance float64

	// Line: endpoints as fractions of the canvas.
	From, To vmath.Vec2

	// Orbit: Centres evenly spaced along From..To.
	Centres    int
	OrbitDist  vmath.Range
	OrbitSpeed vmath.Range

	Delay      vmath.Range // milliseconds
	Opacity    vmath.Range
	PulseSpeed vmath.Range
	Groups     int
}

// Store owns every entity of one animation instance.
type Store struct {
	Items     []Entity
	Transient []Entity

	W, H float64

	rng   *rand.Rand
	tones theme.Tones
	dirty bool
}

func NewStore(w, h float64, rng *rand.Rand) *Store {
	return &Store{W: w, H: h, rng: rng}
}

func (s *Store) Len() int { return len(s.Items) }

func (s *Store) Rand() *rand.Rand { return s.rng }

// Spawn appends count entities placed according to sp.
func (s *Store) Spawn(count int, sp Spawn) error {
	if count < 0 {
		return fmt.Errorf("spawn: negative count %d", count)
	}
	if !sp.Size.Valid() {
		return errors.New("spawn: inverted size range")
	}
	if sp.Layout == Orbit && sp.Centres <= 0 {
		sp.Centres = 5
	}
	var centres []vmath.Vec2
	if sp.Layout == Orbit {
		centres = s.lineAnchors(sp, sp.Centres)
	}
	r := s.rng
	base := len(s.Items)
	for i := 0; i < count; i++ {
		e := Entity{
			Size:    sp.Size.Sample(r),
			VX:      (r.Float64() - 0.5) * sp.Speed,
			VY:      (r.Float64() - 0.5) * sp.Speed,
			Opacity: 1,
			Phase:   r.Float64() * 2 * math.Pi,
		}
		e.BaseSize = e.Size
		if sp.Opacity != (vmath.Range{}) {
			e.Opacity = sp.Opacity.Sample(r)
		}
		if sp.PulseSpeed != (vmath.Range{}) {
			e.PulseSpeed = sp.PulseSpeed.Sample(r)
		}
		if sp.Delay != (vmath.Range{}) {
			e.Delay = time.Duration(sp.Delay.Sample(r) * float64(time.Millisecond))
		}
		if sp.Groups > 0 {
			e.Group = (base + i) % sp.Groups
		}
		switch v := r.Float64(); {
		case v < sp.AccentRatio:
			e.Tone = Accent
		case v < sp.AccentRatio+sp.SecondaryRatio:
			e.Tone = Secondary
		}
		s.place(&e, sp, i, count, centres)
		s.Items = append(s.Items, e)
	}
	s.dirty = true
	return nil
}

func (s *Store) place(e *Entity, sp Spawn, i, n int, centres []vmath.Vec2) {
	r := s.rng
	switch sp.Layout {
	case Ring:
		radius := sp.Radius
		if radius == 0 {
			radius = 0.3
		}
		radius *= math.Min(s.W, s.H)
		variance := r.Float64() * radius * sp.Variance
		a := 2 * math.Pi * float64(i) / float64(n)
		p := vmath.Polar(vmath.Vec2{X: s.W / 2, Y: s.H / 2}, radius+variance, a)
		e.X, e.Y = p.X, p.Y
	case Line:
		t := 0.5
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		p := sp.From.Lerp(sp.To, t)
		e.X, e.Y = p.X*s.W, p.Y*s.H
	case Orbit:
		c := centres[r.IntN(len(centres))]
		e.CX, e.CY = c.X, c.Y
		e.Angle = r.Float64() * 2 * math.Pi
		e.OrbitDist = sp.OrbitDist.Sample(r)
		e.OrbitSpeed = sp.OrbitSpeed.Sample(r)
		if r.Float64() < 0.5 {
			e.OrbitSpeed = -e.OrbitSpeed
		}
		e.TargetX = c.X + math.Cos(e.Angle)*e.OrbitDist
		e.TargetY = c.Y + math.Sin(e.Angle)*e.OrbitDist
		e.StartX, e.StartY = s.entranceStart(e, vmath.Vec2{X: s.W / 2, Y: c.Y})
		e.X, e.Y = e.StartX, e.StartY
		e.Opacity = 0
	case Sphere:
		// uniform on the sphere surface
		e.Lat = math.Asin(2*r.Float64() - 1)
		e.Lng = (r.Float64()*2 - 1) * math.Pi
		e.X, e.Y = s.W/2, s.H/2
	default:
		e.X = r.Float64() * s.W
		e.Y = r.Float64() * s.H
	}
}

// entranceStart picks one of three entrance origins: the anchor centre,
// above/below the canvas, or left/right of it.
func (s *Store) entranceStart(e *Entity, centre vmath.Vec2) (float64, float64) {
	r := s.rng
	switch r.IntN(3) {
	case 0:
		return centre.X, centre.Y
	case 1:
		if r.Float64() > 0.5 {
			return e.TargetX, -50
		}
		return e.TargetX, s.H + 50
	default:
		if r.Float64() > 0.5 {
			return -50, e.TargetY
		}
		return s.W + 50, e.TargetY
	}
}

func (s *Store) lineAnchors(sp Spawn, n int) []vmath.Vec2 {
	from, to := sp.From, sp.To
	if from == to {
		from, to = vmath.Vec2{X: 0.2, Y: 0.5}, vmath.Vec2{X: 0.8, Y: 0.5}
	}
	out := make([]vmath.Vec2, n)
	for i := range out {
		t := 0.5
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		p := from.Lerp(to, t)
		out[i] = vmath.Vec2{X: p.X * s.W, Y: p.Y * s.H}
	}
	return out
}

// Rescale maps every stored coordinate from the current size to (w, h)
// proportionally so positions survive a resize without jumping.
func (s *Store) Rescale(w, h float64) {
	if w <= 0 || h <= 0 || s.W <= 0 || s.H <= 0 {
		s.W, s.H = w, h
		return
	}
	kx, ky := w/s.W, h/s.H
	kd := math.Min(w, h) / math.Min(s.W, s.H)
	scale := func(items []Entity) {
		for i := range items {
			e := &items[i]
			e.X *= kx
			e.Y *= ky
			e.TargetX *= kx
			e.TargetY *= ky
			e.StartX *= kx
			e.StartY *= ky
			e.CX *= kx
			e.CY *= ky
			e.OrbitDist *= kd
			for j := range e.Trail {
				e.Trail[j].X *= kx
				e.Trail[j].Y *= ky
			}
		}
	}
	scale(s.Items)
	scale(s.Transient)
	s.W, s.H = w, h
}

// Emit adds a transient entity. It is dropped by Age once Age >= TTL.
func (s *Store) Emit(e Entity) {
	if e.TTL <= 0 {
		return
	}
	s.Transient = append(s.Transient, e)
}

// Age advances transient entities by dt and drops expired ones, returning
// how many were removed.
func (s *Store) Age(dt time.Duration) int {
	kept := s.Transient[:0]
	for _, e := range s.Transient {
		e.Age += dt
		if !e.Expired() {
			kept = append(kept, e)
		}
	}
	removed := len(s.Transient) - len(kept)
	clear(s.Transient[len(kept):])
	s.Transient = kept
	return removed
}

// SetTones replaces the colours; entities are recoloured on the next Resolve.
func (s *Store) SetTones(t theme.Tones) {
	s.tones = t
	s.dirty = true
}

func (s *Store) Tones() theme.Tones { return s.tones }

// MarkDirty forces the next Resolve to recolour.
func (s *Store) MarkDirty() { s.dirty = true }

// Resolve recolours entities from their tone if colours changed since the
// last call. It reports whether any work was done.
func (s *Store) Resolve() bool {
	if !s.dirty {
		return false
	}
	for i := range s.Items {
		s.Items[i].Color = s.ToneColor(s.Items[i].Tone)
	}
	s.dirty = false
	return true
}

func (s *Store) ToneColor(t Tone) color.NRGBA {
	switch t {
	case Secondary:
		return s.tones.Secondary
	case Accent:
		return s.tones.Accent
	}
	return s.tones.Primary
}

// Points writes entity positions into dst, reusing its storage.
func (s *Store) Points(dst []vmath.Vec2) []vmath.Vec2 {
	dst = dst[:0]
	for i := range s.Items {
		dst = append(dst, s.Items[i].Pos())
	}
	return dst
}

// Release drops all entities.
func (s *Store) Release() {
	s.Items = nil
	s.Transient = nil
}
