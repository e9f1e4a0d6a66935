package sequence

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// Player owns a Program timeline and uses Hooks to drive the pattern morph.
type Player struct {
	State PlayerState

	prog  Program
	rng   *rand.Rand
	idx   int
	phase Phase

	phaseT float64 // seconds into the current phase
	clipT  float64 // seconds into the current clip

	morph, hold, gap float64

	hooks Hooks
}

func NewPlayer(h Hooks) *Player {
	return &Player{State: Idle, hooks: h}
}

// Load replaces the current program. Resets time and state to Idle.
func (p *Player) Load(prog Program) error {
	if len(prog.Clips) == 0 {
		return errors.New("program has no clips")
	}
	if prog.LeadS < 0 {
		return errors.New("program: negative lead")
	}
	for i, c := range prog.Clips {
		if err := c.validate(); err != nil {
			return fmt.Errorf("clip %d (%s): %w", i, c.Name, err)
		}
	}
	p.prog = prog
	p.rng = rand.New(rand.NewPCG(prog.Seed, prog.Seed^0x9e3779b97f4a7c15))
	p.reset()
	return nil
}

func (c Clip) validate() error {
	if c.Pattern == "" {
		return errors.New("missing pattern")
	}
	for _, r := range []struct {
		name string
		min  float64
		max  float64
	}{{"morph_s", c.MorphS.Min, c.MorphS.Max}, {"hold_s", c.HoldS.Min, c.HoldS.Max}, {"gap_s", c.GapS.Min, c.GapS.Max}} {
		if r.min < 0 || r.max < r.min {
			return fmt.Errorf("%s: bad range [%v, %v]", r.name, r.min, r.max)
		}
	}
	if c.MorphS.Max+c.HoldS.Max+c.GapS.Max <= 0 {
		return errors.New("zero length")
	}
	for name, env := range c.Params {
		if !env.Valid() {
			return fmt.Errorf("param %s: unsorted keys or unknown ease", name)
		}
	}
	return nil
}

func (p *Player) reset() {
	p.State = Idle
	p.idx = 0
	p.phase = ""
	p.phaseT, p.clipT = 0, 0
}

func (p *Player) Index() int { return p.idx }

func (p *Player) Phase() Phase { return p.phase }

// Current returns the active clip; ok is false before the first Form.
func (p *Player) Current() (Clip, bool) {
	if len(p.prog.Clips) == 0 || p.phase == "" || p.phase == Lead {
		return Clip{}, false
	}
	return p.prog.Clips[p.idx], true
}

// Start moves to Running. The first clip forms after the program lead.
func (p *Player) Start() {
	if p.State == Running || len(p.prog.Clips) == 0 {
		return
	}
	p.State = Running
	if p.phase == "" {
		p.phase = Lead
		p.phaseT = 0
		if p.prog.LeadS <= 0 {
			p.enter(0)
		}
	}
}

func (p *Player) Pause() {
	if p.State == Running {
		p.State = Paused
	}
}

func (p *Player) Resume() {
	if p.State == Paused {
		p.State = Running
	}
}

// Stop resets to the start of the program without touching entities.
func (p *Player) Stop() { p.reset() }

// Jump forms clip i immediately, restarting its timing.
func (p *Player) Jump(i int) error {
	if i < 0 || i >= len(p.prog.Clips) {
		return fmt.Errorf("jump: clip %d out of range", i)
	}
	if p.State == Idle {
		p.State = Running
	}
	p.phaseT = 0
	p.enter(i)
	return nil
}

// Find returns the index of the first clip forming pattern, or -1.
func (p *Player) Find(pattern string) int {
	for i, c := range p.prog.Clips {
		if c.Pattern == pattern {
			return i
		}
	}
	return -1
}

// Tick advances the player by dt seconds and emits control hooks.
func (p *Player) Tick(dt float64) {
	if p.State != Running || dt <= 0 {
		return
	}
	p.phaseT += dt
	if p.phase != Lead {
		p.clipT += dt
		clip := p.prog.Clips[p.idx]
		if p.hooks.SetParam != nil {
			for name, env := range clip.Params {
				p.hooks.SetParam(name, env.Eval(p.clipT))
			}
		}
	}

	// Bounded so a tick spanning several clips cannot spin forever.
	for range 4*len(p.prog.Clips) + 4 {
		if p.State != Running || !p.transition() {
			return
		}
	}
}

// transition moves to the next phase if the current one has elapsed.
func (p *Player) transition() bool {
	switch p.phase {
	case Lead:
		if p.phaseT < p.prog.LeadS {
			return false
		}
		p.phaseT -= p.prog.LeadS
		p.enter(p.idx)
	case Morph:
		if p.phaseT < p.morph {
			return false
		}
		p.phaseT -= p.morph
		p.phase = Hold
	case Hold:
		if p.phaseT < p.hold {
			return false
		}
		p.phaseT -= p.hold
		if p.gap > 0 {
			p.phase = Gap
			if p.hooks.Release != nil {
				p.hooks.Release()
			}
			return true
		}
		p.advance()
	case Gap:
		if p.phaseT < p.gap {
			return false
		}
		p.phaseT -= p.gap
		p.advance()
	default:
		return false
	}
	return true
}

func (p *Player) nextIndex() int {
	ni := p.idx + 1
	if ni >= len(p.prog.Clips) {
		if p.prog.Loop {
			return 0
		}
		return -1
	}
	return ni
}

func (p *Player) advance() {
	next := p.nextIndex()
	if next == -1 {
		p.State = Idle
		p.phase = ""
		return
	}
	p.enter(next)
}

func (p *Player) enter(i int) {
	p.idx = i
	clip := p.prog.Clips[i]
	p.morph = clip.MorphS.Sample(p.rng)
	p.hold = clip.HoldS.Sample(p.rng)
	p.gap = clip.GapS.Sample(p.rng)
	p.phase = Morph
	p.clipT = p.phaseT
	if p.hooks.Form != nil {
		p.hooks.Form(clip.Pattern, p.morph)
	}
}
