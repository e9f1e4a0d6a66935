package pattern

import (
	"fmt"
	"time"

	"github.com/coreman2200/canvasfx/internal/entity"
	"github.com/coreman2200/canvasfx/internal/frame"
	"github.com/coreman2200/canvasfx/internal/vmath"
)

// FitFraction is the share of the limiting canvas axis a fitted pattern spans.
const FitFraction = 0.8

// structureShare is the fraction of entities reserved for platonic anchors.
const structureShare = 0.8

// Morph moves a store's entities from wherever they are onto a pattern's
// anchors and holds them there until Release. It is driven either by
// calling Advance directly or by Run, which chains itself on a scheduler.
type Morph struct {
	Duration time.Duration
	Ease     vmath.EaseFunc

	reg   *Registry
	store *entity.Store

	name   string
	start  time.Duration
	moving bool
	formed bool

	sched  *frame.Scheduler
	handle frame.Handle
}

func NewMorph(reg *Registry, store *entity.Store, d time.Duration) *Morph {
	if reg == nil {
		reg = NewRegistry()
	}
	return &Morph{Duration: d, Ease: vmath.InOutCubic, reg: reg, store: store}
}

func (m *Morph) Name() string { return m.name }

// Formed reports whether entities are currently assigned to a pattern.
func (m *Morph) Formed() bool { return m.formed }

// Done reports whether the last transition has reached its targets.
func (m *Morph) Done() bool { return m.formed && !m.moving }

// Form assigns every entity a target on the named pattern and starts the
// transition at now. Anchors are reused cyclically when entities outnumber
// them. A pattern with no anchors leaves entities free.
func (m *Morph) Form(name string, now time.Duration) error {
	p, ok := m.reg.Get(name)
	if !ok {
		return fmt.Errorf("pattern: unknown %q", name)
	}
	s := m.store
	items := s.Items
	anchors := Fit(p(s.W, s.H, len(items)), s.W, s.H, FitFraction)
	rng := s.Rand()
	jit := func(amount float64) (float64, float64) {
		return (rng.Float64() - 0.5) * amount, (rng.Float64() - 0.5) * amount
	}

	m.name = name
	m.start = now
	if len(anchors) == 0 {
		for i := range items {
			items[i].InPattern = false
		}
		m.formed, m.moving = false, false
		return nil
	}

	for i := range items {
		e := &items[i]
		e.StartX, e.StartY = e.X, e.Y
		e.InPattern = true
		e.Size = e.BaseSize
	}

	if name == PlatonicSolid {
		structure := min(len(anchors), int(float64(len(items))*structureShare))
		for i := range items {
			e := &items[i]
			if i < structure {
				a := anchors[i%len(anchors)]
				dx, dy := jit(m.reg.Jitter(name))
				e.TargetX, e.TargetY = a.X+dx, a.Y+dy
				if i%5 == 0 || i%7 == 0 {
					e.Tone = entity.Secondary
					e.Size = e.BaseSize * 1.2
				} else {
					e.Tone = entity.Primary
				}
				continue
			}
			a := anchors[rng.IntN(len(anchors))]
			dx, dy := jit(10)
			e.TargetX, e.TargetY = a.X+dx, a.Y+dy
			e.Tone = entity.Primary
			if rng.Float64() > 0.8 {
				e.Tone = entity.Secondary
			}
		}
	} else {
		amount := m.reg.Jitter(name)
		for i := range items {
			e := &items[i]
			a := anchors[i%len(anchors)]
			dx, dy := jit(amount)
			e.TargetX, e.TargetY = a.X+dx, a.Y+dy
			e.Tone = entity.Primary
			if i%5 == 0 {
				e.Tone = entity.Secondary
			}
		}
	}
	s.MarkDirty()
	m.formed, m.moving = true, true
	return nil
}

// Advance interpolates toward the targets and reports whether the
// transition has finished.
func (m *Morph) Advance(now time.Duration) bool {
	if !m.moving {
		return true
	}
	p := 1.0
	if m.Duration > 0 {
		p = vmath.Clamp01(float64(now-m.start) / float64(m.Duration))
	}
	k := m.Ease(p)
	if p >= 1 {
		k = 1
	}
	items := m.store.Items
	for i := range items {
		e := &items[i]
		if !e.InPattern {
			continue
		}
		e.X = e.StartX + (e.TargetX-e.StartX)*k
		e.Y = e.StartY + (e.TargetY-e.StartY)*k
	}
	if p >= 1 {
		m.moving = false
	}
	return !m.moving
}

// Release returns entities to free motion with their pre-pattern sizes.
func (m *Morph) Release() {
	m.Cancel()
	for i := range m.store.Items {
		e := &m.store.Items[i]
		e.InPattern = false
		e.Size = e.BaseSize
	}
	m.formed, m.moving = false, false
}

// Run forms name at the scheduler's clock and drives the transition on
// its own frame chain. A previous chain is cancelled first.
func (m *Morph) Run(s *frame.Scheduler, name string) error {
	m.Cancel()
	if err := m.Form(name, s.Now()); err != nil {
		return err
	}
	m.chain(s)
	return nil
}

// Cancel stops a running chain, leaving entities where they are. An
// unfinished transition can be picked up again with Resume.
func (m *Morph) Cancel() {
	if m.sched != nil && m.handle != 0 {
		m.sched.Cancel(m.handle)
	}
	m.handle = 0
}

// Resume restarts the frame chain of an unfinished transition.
func (m *Morph) Resume(s *frame.Scheduler) {
	if !m.moving || m.handle != 0 {
		return
	}
	m.chain(s)
}

func (m *Morph) chain(s *frame.Scheduler) {
	m.sched = s
	var step frame.Callback
	step = func(now time.Duration) {
		m.handle = 0
		if !m.Advance(now) {
			m.handle = s.Request(step)
		}
	}
	m.handle = s.Request(step)
}
