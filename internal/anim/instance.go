package anim

import (
	"errors"
	"fmt"
	"image/color"
	"math/rand/v2"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"

	"github.com/coreman2200/canvasfx/internal/connect"
	"github.com/coreman2200/canvasfx/internal/diagnostics"
	"github.com/coreman2200/canvasfx/internal/entity"
	"github.com/coreman2200/canvasfx/internal/frame"
	"github.com/coreman2200/canvasfx/internal/pattern"
	"github.com/coreman2200/canvasfx/internal/physics"
	"github.com/coreman2200/canvasfx/internal/render"
	"github.com/coreman2200/canvasfx/internal/sequence"
	"github.com/coreman2200/canvasfx/internal/theme"
	"github.com/coreman2200/canvasfx/internal/vmath"
)

var (
	ErrNoContainer = errors.New("anim: container not found")
	ErrNoPatterns  = errors.New("anim: effect has no pattern cycle")
)

// ResizeDelay is how long Resize waits for the container to settle.
const ResizeDelay = 150 * time.Millisecond

// frameUnit is the step physics treats as dt == 1.
const frameUnit = time.Second / 60

// maxDT bounds the physics step after a stall so entities do not jump.
const maxDT = 4

// Config wires one instance to its collaborators.
type Config struct {
	Kind    string
	ID      string
	Options Options

	// Canvas is the drawing surface created for the container. A nil
	// Canvas means the container was missing and the instance stays inert.
	Canvas    render.Canvas
	Scheduler *frame.Scheduler
	Sink      diagnostics.Sink
	Logger    zerolog.Logger
	Colors    theme.Provider
	Rand      *rand.Rand
	Patterns  *pattern.Registry
	Registry  *Registry
	FPS       int

	// Detach removes the canvas from its container on Destroy.
	Detach func()
}

// Tick is the timing of one frame.
type Tick struct {
	Now     time.Duration
	Delta   time.Duration
	Elapsed time.Duration // active time since the first frame
	DT      float64       // Delta in 60 Hz frames
	Frame   uint64
}

// Effect is one kind of animation. Every method runs on the scheduler
// goroutine.
type Effect interface {
	Init(in *Instance) error
	Recolor(in *Instance, p theme.Palette)
	Step(in *Instance, t Tick)
	Draw(in *Instance, c render.Canvas, t Tick)
}

// Optional effect hooks.
type (
	resizer interface {
		Resized(in *Instance, w, h float64)
	}
	pointerAware interface {
		Pointer(in *Instance, p physics.Pointer)
	}
	highlighter interface {
		Groups(in *Instance) int
		Highlight(in *Instance, group int)
	}
)

// Instance is one running animation bound to one canvas. Its frame chain
// runs only while it is started, visible and not destroyed.
type Instance struct {
	kind, id string
	opt      Options
	canvas   render.Canvas
	sched    *frame.Scheduler
	sink     diagnostics.Sink
	log      zerolog.Logger
	colors   theme.Provider
	palette  theme.Palette
	rng      *rand.Rand
	reg      *Registry
	patterns *pattern.Registry
	fps      int
	detach   func()

	store  *entity.Store
	motion *physics.Motion
	conn   connect.Connector
	morph  *pattern.Morph
	player *sequence.Player
	effect Effect

	edges   []connect.Edge
	pts     []vmath.Vec2
	pointer physics.Pointer
	params  map[string]float64
	group   int

	handle    frame.Handle
	running   bool
	visible   bool
	destroyed bool
	inert     bool

	started     bool
	last        time.Duration
	elapsed     time.Duration
	lastImpulse time.Duration
	frames      uint64
	skipped     uint64

	resize *frame.Debouncer
}

// New builds an instance and its entities. It does not start the frame
// chain. When the container is missing or setup fails the failure is
// reported to the sink, the returned instance is inert and every later
// call on it is a no-op.
func New(cfg Config) (*Instance, error) {
	if cfg.Scheduler == nil {
		return nil, errors.New("anim: nil scheduler")
	}
	in := &Instance{
		kind:     cfg.Kind,
		id:       cfg.ID,
		opt:      cfg.Options,
		canvas:   cfg.Canvas,
		sched:    cfg.Scheduler,
		sink:     cfg.Sink,
		log:      cfg.Logger.With().Str("module", cfg.Kind).Str("id", cfg.ID).Logger(),
		colors:   cfg.Colors,
		rng:      cfg.Rand,
		reg:      cfg.Registry,
		patterns: cfg.Patterns,
		fps:      cfg.FPS,
		detach:   cfg.Detach,
		visible:  true,
		params:   map[string]float64{},
		group:    -1,
	}
	if in.sink == nil {
		in.sink = diagnostics.Discard{}
	}
	if in.rng == nil {
		in.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if in.colors == nil {
		in.colors = theme.Static(theme.Palette{})
	}
	if in.patterns == nil {
		in.patterns = pattern.NewRegistry()
	}
	if in.fps <= 0 {
		in.fps = 60
	}
	in.resize = frame.NewDebouncer(in.sched, ResizeDelay)

	if in.canvas == nil {
		in.inert = true
		in.sink.Report(fmt.Sprintf("%s container not found", in.kind), in.kind, diagnostics.High, map[string]any{"id": in.id})
		return in, ErrNoContainer
	}
	if err := in.setup(); err != nil {
		in.inert = true
		in.sink.Report(fmt.Sprintf("failed to initialize %s: %v", in.kind, err), in.kind, diagnostics.Medium, map[string]any{"id": in.id})
		return in, err
	}
	if in.reg != nil {
		in.reg.add(in)
	}
	in.log.Debug().Int("entities", in.store.Len()).Msg("initialized")
	return in, nil
}

func (in *Instance) setup() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
			in.sink.Report(err.Error(), in.kind, diagnostics.Critical, map[string]any{"stack": string(debug.Stack())})
		}
	}()
	effect, err := newEffect(in.kind)
	if err != nil {
		return err
	}
	in.effect = effect
	w, h := in.canvas.Size()
	if w <= 0 || h <= 0 {
		return fmt.Errorf("canvas has no area (%vx%v)", w, h)
	}
	in.store = entity.NewStore(w, h, in.rng)
	in.motion = physics.NewMotion(in.opt.motion(), in.rng, int64(in.rng.Uint64()>>1))
	if in.opt.Grid {
		in.conn = connect.NewGrid()
	} else {
		in.conn = connect.Brute{}
	}
	if err := effect.Init(in); err != nil {
		return err
	}
	in.UpdateColors(in.colors())
	return nil
}

func (in *Instance) Kind() string { return in.kind }
func (in *Instance) ID() string   { return in.id }

// Inert reports whether setup failed.
func (in *Instance) Inert() bool { return in.inert }

// Active reports whether a frame callback is pending.
func (in *Instance) Active() bool { return in.handle != 0 }

func (in *Instance) Running() bool   { return in.running }
func (in *Instance) Visible() bool   { return in.visible }
func (in *Instance) Destroyed() bool { return in.destroyed }

// Frames is the number of frames drawn.
func (in *Instance) Frames() uint64 { return in.frames }

// Skipped is the number of frames dropped by the frame budget.
func (in *Instance) Skipped() uint64 { return in.skipped }

func (in *Instance) Store() *entity.Store { return in.store }

func (in *Instance) Edges() []connect.Edge { return in.edges }

func (in *Instance) Canvas() render.Canvas { return in.canvas }

func (in *Instance) Options() Options { return in.opt }

// Pattern is the pattern currently formed, or "".
func (in *Instance) Pattern() string {
	if in.morph == nil || !in.morph.Formed() {
		return ""
	}
	return in.morph.Name()
}

// Start begins the frame chain. Starting a running instance is a no-op.
func (in *Instance) Start() {
	if in.inert || in.destroyed || in.running {
		return
	}
	in.running = true
	in.wake()
	in.log.Debug().Msg("started")
}

// Stop cancels the pending frame. Stopping twice is harmless.
func (in *Instance) Stop() {
	if !in.running {
		return
	}
	in.running = false
	in.sleep()
	in.log.Debug().Msg("stopped")
}

// SetVisible pauses the chain while the container is off screen without
// changing whether the instance is started.
func (in *Instance) SetVisible(v bool) {
	if in.inert || in.destroyed || in.visible == v {
		return
	}
	in.visible = v
	if v {
		in.wake()
	} else {
		in.sleep()
	}
}

func (in *Instance) live() bool {
	return in.running && in.visible && !in.destroyed && !in.inert
}

func (in *Instance) wake() {
	if !in.live() || in.handle != 0 {
		return
	}
	in.started = false
	in.handle = in.sched.Request(in.frame)
	if in.morph != nil {
		in.morph.Resume(in.sched)
	}
}

func (in *Instance) sleep() {
	if in.handle != 0 {
		in.sched.Cancel(in.handle)
		in.handle = 0
	}
	if in.morph != nil {
		in.morph.Cancel()
	}
}

// Destroy stops the instance, removes its canvas and drops its state.
func (in *Instance) Destroy() {
	if in.destroyed {
		return
	}
	in.sleep()
	in.running = false
	in.destroyed = true
	in.resize.Cancel()
	if in.player != nil {
		in.player.Stop()
	}
	if in.detach != nil {
		in.detach()
	}
	if in.canvas != nil {
		if err := in.canvas.Close(); err != nil {
			in.sink.Report(fmt.Sprintf("close canvas: %v", err), in.kind, diagnostics.Low, nil)
		}
	}
	if in.store != nil {
		in.store.Release()
	}
	in.edges, in.pts = nil, nil
	if in.reg != nil {
		in.reg.remove(in)
	}
	in.log.Debug().Msg("destroyed")
}

// UpdateColors re-resolves colours from p. Entities pick up the new
// colours on the next frame.
func (in *Instance) UpdateColors(p theme.Palette) {
	if in.inert || in.destroyed {
		return
	}
	in.palette = p
	in.effect.Recolor(in, p)
}

// SetColor overrides one colour slot and recolours with the last palette.
func (in *Instance) SetColor(slot, hex string) error {
	if _, err := theme.ParseHex(hex); err != nil {
		return err
	}
	if in.opt.Colors == nil {
		in.opt.Colors = map[string]string{}
	}
	in.opt.Colors[slot] = hex
	in.UpdateColors(in.palette)
	return nil
}

// Resize schedules a resize once the container stops changing for
// ResizeDelay.
func (in *Instance) Resize(w, h, dpr float64) {
	if in.inert || in.destroyed {
		return
	}
	in.resize.Trigger(func() { in.applyResize(w, h, dpr) })
}

func (in *Instance) applyResize(w, h, dpr float64) {
	if in.destroyed {
		return
	}
	if err := in.canvas.Resize(w, h, dpr); err != nil {
		in.sink.Report(fmt.Sprintf("resize: %v", err), in.kind, diagnostics.Medium, map[string]any{"width": w, "height": h})
		return
	}
	in.store.Rescale(w, h)
	if r, ok := in.effect.(resizer); ok {
		r.Resized(in, w, h)
	}
	in.log.Debug().Float64("width", w).Float64("height", h).Msg("resized")
}

// PointerMove sets the pointer in canvas coordinates.
func (in *Instance) PointerMove(x, y float64) {
	in.setPointer(physics.At(x, y))
}

// PointerLeave clears the pointer; pointer forces stop on the next step.
func (in *Instance) PointerLeave() {
	in.setPointer(physics.Pointer{})
}

func (in *Instance) setPointer(p physics.Pointer) {
	if in.inert || in.destroyed {
		return
	}
	in.pointer = p
	if pa, ok := in.effect.(pointerAware); ok {
		pa.Pointer(in, p)
	}
}

// FormPattern jumps the pattern cycle to name.
func (in *Instance) FormPattern(name string) error {
	if in.inert || in.destroyed {
		return ErrNoContainer
	}
	if in.morph == nil {
		return ErrNoPatterns
	}
	if _, ok := in.patterns.Get(name); !ok {
		return fmt.Errorf("anim: unknown pattern %q", name)
	}
	var err error
	if i := in.player.Find(name); i >= 0 {
		err = in.player.Jump(i)
	} else {
		in.morph.Duration = msDur(in.opt.PatternDurationMS.Mid())
		err = in.morph.Run(in.sched, name)
	}
	if !in.live() {
		// picked up again by wake
		in.morph.Cancel()
	}
	return err
}

// HighlightNext moves the highlighted category forward.
func (in *Instance) HighlightNext() { in.highlightStep(1) }

// HighlightPrev moves the highlighted category back.
func (in *Instance) HighlightPrev() { in.highlightStep(-1) }

func (in *Instance) highlightStep(d int) {
	h, ok := in.effect.(highlighter)
	if !ok || in.inert || in.destroyed {
		return
	}
	n := h.Groups(in)
	if n <= 0 {
		return
	}
	switch {
	case in.group < 0 && d > 0:
		in.group = 0
	case in.group < 0:
		in.group = n - 1
	default:
		in.group = ((in.group+d)%n + n) % n
	}
	h.Highlight(in, in.group)
}

// Highlighted is the highlighted category, or -1.
func (in *Instance) Highlighted() int { return in.group }

// SetParam adjusts a running parameter. Known names map onto options;
// others are kept for the effect to read.
func (in *Instance) SetParam(name string, v float64) {
	switch name {
	case "speed":
		in.motion.SpeedScale = v
	case "connection_distance":
		in.opt.ConnectionDistance = max(v, 0)
	case "connection_opacity":
		in.opt.ConnectionOpacity = max(v, 0)
	case "rotation_speed":
		in.opt.RotationSpeed = v
	case "line_width":
		in.opt.LineWidth = max(v, 0)
	}
	in.params[name] = v
}

func (in *Instance) param(name string, def float64) float64 {
	if v, ok := in.params[name]; ok {
		return v
	}
	return def
}

func (in *Instance) frame(now time.Duration) {
	in.handle = 0
	if !in.live() {
		return
	}
	if !in.started {
		in.started = true
		in.last = now - frameUnit
	}
	delta := now - in.last
	budget := msDur(in.opt.FrameBudgetMS)
	if budget > 0 && delta < budget && in.frames > 0 {
		in.skipped++
		in.handle = in.sched.Request(in.frame)
		return
	}
	in.last = now
	delta = min(delta, maxDT*frameUnit)
	in.elapsed += delta
	t := Tick{
		Now:     now,
		Delta:   delta,
		Elapsed: in.elapsed,
		DT:      float64(delta) / float64(frameUnit),
		Frame:   in.frames,
	}
	in.step(t)
	// a panic above ends the chain here
	in.handle = in.sched.Request(in.frame)
}

func (in *Instance) step(t Tick) {
	if in.player != nil {
		in.player.Tick(t.Delta.Seconds())
	}
	in.effect.Step(in, t)
	in.store.Age(t.Delta)
	in.store.Resolve()
	in.effect.Draw(in, in.canvas, t)
	if r, ok := in.canvas.(interface{ Err() error }); ok {
		if err := r.Err(); err != nil {
			in.sink.Report(fmt.Sprintf("draw: %v", err), in.kind, diagnostics.Low, nil)
		}
	}
	in.frames++
}

// RenderOnce steps and draws a single frame at now regardless of the
// chain. Inert and destroyed instances draw nothing.
func (in *Instance) RenderOnce(now time.Duration) {
	if in.inert || in.destroyed {
		return
	}
	if !in.started {
		in.started = true
		in.last = now - frameUnit
	}
	delta := min(max(now-in.last, 0), maxDT*frameUnit)
	in.last = now
	in.elapsed += delta
	in.step(Tick{Now: now, Delta: delta, Elapsed: in.elapsed, DT: float64(delta) / float64(frameUnit), Frame: in.frames})
}

// connect recomputes edges within dist every ConnectEvery frames.
func (in *Instance) connect(t Tick, dist float64) []connect.Edge {
	if t.Frame%uint64(max(in.opt.ConnectEvery, 1)) != 0 && in.edges != nil {
		return in.edges
	}
	in.pts = in.store.Points(in.pts)
	in.edges = in.conn.Connect(in.edges, in.pts, dist)
	return in.edges
}

// fire emits an impulse from a random connected node along one of its
// edges once per impulse interval.
func (in *Instance) fire(t Tick, edges []connect.Edge) bool {
	iv := msDur(in.opt.ImpulseIntervalMS)
	if iv <= 0 || len(edges) == 0 || t.Elapsed-in.lastImpulse < iv {
		return false
	}
	in.lastImpulse = t.Elapsed
	deg := connect.Degree(edges, in.store.Len())
	var nodes []int
	for i, d := range deg {
		if d > 0 {
			nodes = append(nodes, i)
		}
	}
	n := nodes[in.rng.IntN(len(nodes))]
	var mine []int
	for i, e := range edges {
		if e.I == n || e.J == n {
			mine = append(mine, i)
		}
	}
	e := edges[mine[in.rng.IntN(len(mine))]]
	to := e.J
	if to == n {
		to = e.I
	}
	in.store.Emit(entity.Entity{From: n, To: to, TTL: msDur(in.opt.ImpulseTTLMS.Sample(in.rng))})
	return true
}

// color resolves a theme property with the slot's configured fallback.
func (in *Instance) color(p theme.Palette, prop, slot string) color.NRGBA {
	return p.Lookup(prop, in.opt.Colors[slot])
}

// background is transparent unless the options name a colour.
func (in *Instance) background() color.NRGBA {
	if in.opt.Background == "" {
		return color.NRGBA{}
	}
	c, err := theme.ParseHex(in.opt.Background)
	if err != nil {
		return color.NRGBA{}
	}
	return c
}

// cycle loads the pattern program and wires it to the morph engine.
func (in *Instance) cycle() error {
	in.morph = pattern.NewMorph(in.patterns, in.store, msDur(in.opt.PatternDurationMS.Mid()))
	prog := sequence.CycleProgram(
		in.opt.Patterns,
		in.opt.PatternDurationMS.Scale(0.001),
		in.opt.PatternIntervalMS.Scale(0.001),
		in.opt.PatternLeadMS/1000,
		in.rng.Uint64(),
	)
	if in.opt.Program != nil {
		prog = *in.opt.Program
	}
	for _, c := range prog.Clips {
		if _, ok := in.patterns.Get(c.Pattern); !ok {
			return fmt.Errorf("unknown pattern %q", c.Pattern)
		}
	}
	in.player = sequence.NewPlayer(sequence.Hooks{
		Form: func(name string, morphS float64) {
			in.morph.Duration = time.Duration(morphS * float64(time.Second))
			if err := in.morph.Run(in.sched, name); err != nil {
				in.sink.Report(err.Error(), in.kind, diagnostics.Low, nil)
			}
		},
		Release:  in.morph.Release,
		SetParam: in.SetParam,
	})
	if len(prog.Clips) == 0 {
		return nil
	}
	if err := in.player.Load(prog); err != nil {
		return err
	}
	in.player.Start()
	return nil
}

func msDur(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}
