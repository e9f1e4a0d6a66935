// Package app wires configuration, the frame scheduler, themes and the
// animation instances of a page into one controller that presenters drive.
package app

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/coreman2200/canvasfx/internal/anim"
	"github.com/coreman2200/canvasfx/internal/config"
	"github.com/coreman2200/canvasfx/internal/diagnostics"
	"github.com/coreman2200/canvasfx/internal/frame"
	"github.com/coreman2200/canvasfx/internal/host"
	"github.com/coreman2200/canvasfx/internal/render"
	"github.com/coreman2200/canvasfx/internal/theme"
	"github.com/coreman2200/canvasfx/internal/typewriter"
)

// contrastLift is how much high contrast mode raises opacity and brightness.
const contrastLift = 0.5

// reducedDim is the brightness of the still frame shown with reduced motion.
const reducedDim = 0.7

type mount struct {
	el *host.Element
	in *anim.Instance
}

// Caption is a line of typed text anchored at the top of its section.
type Caption struct {
	Section string
	Y       float64
	Text    string
	Cursor  float64
}

type caption struct {
	section string
	tw      *typewriter.Typewriter
}

// Core is the application controller. Every method must be called on the
// scheduler goroutine; other goroutines go through Do.
type Core struct {
	Cfg    *config.Config
	Sched  *frame.Scheduler
	Diag   *diagnostics.Log
	Themes *theme.Source
	Theme  *theme.Watcher
	Reg    *anim.Registry
	Page   *host.Page

	log      zerolog.Logger
	mounts   []mount
	captions []caption
	post     render.PostPipeline
	reduced  bool
	contrast bool
	section  string
	hover    []*host.Element
	unsub    func()
	now      time.Duration
}

// New builds the page from cfg. Effects that fail to initialise are
// reported to the diagnostics log and left out; the rest of the page still
// comes up.
func New(cfg *config.Config, log zerolog.Logger) (*Core, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Core{
		Cfg:    cfg,
		Diag:   diagnostics.NewLog(log, cfg.MaxStoredErrors),
		Themes: theme.NewSource(),
		Reg:    anim.NewRegistry(),
		Page:   host.NewPage(float64(cfg.Viewport.Width), float64(cfg.Viewport.Height), cfg.Viewport.DPR),
		log:    log.With().Str("module", "app").Logger(),
	}
	c.Sched = frame.New(c.Diag)
	for name, props := range cfg.Themes {
		c.Themes.Merge(name, props)
	}
	w, err := theme.NewWatcher(c.Themes, cfg.Theme)
	if err != nil {
		return nil, err
	}
	c.Theme = w
	c.Diag.SetContext("theme", cfg.Theme)

	seed := cfg.Seed
	for _, s := range cfg.Sections {
		bounds := c.Page.AddSection(s.Name, float64(s.Height))
		for i, e := range s.Effects {
			seed++
			c.mountEffect(s.Name, i, bounds, e, seed)
		}
		if s.Typewriter != nil {
			c.addCaption(s.Name, *s.Typewriter)
		}
	}
	c.unsub = c.Theme.Subscribe(func(p theme.Palette) {
		c.Reg.UpdateColors(p)
		c.Diag.SetContext("theme", p.Name)
	})

	c.SetHighContrast(cfg.HighContrast)
	c.SetReducedMotion(cfg.ReducedMotion)
	c.Scroll(0)
	c.log.Info().Int("instances", c.Reg.Len()).Int("sections", len(cfg.Sections)).Int("height", cfg.PageHeight()).Msg("page ready")
	return c, nil
}

// newCanvas creates the drawing surface for one effect.
var newCanvas = func(w, h, dpr float64) (render.Canvas, error) {
	return render.NewRaster(w, h, dpr)
}

func (c *Core) mountEffect(section string, i int, bounds host.Rect, e config.Effect, seed uint64) {
	id := e.ID
	if id == "" {
		id = fmt.Sprintf("%s/%s-%d", section, e.Kind, i)
	}
	opts, err := anim.OptionsFor(e.Kind, &e.Options)
	if err != nil {
		c.Diag.Report(err.Error(), e.Kind, diagnostics.Medium, map[string]any{"id": id})
		return
	}
	if opts.FrameBudgetMS == 0 {
		opts.FrameBudgetMS = c.Cfg.FrameBudgetMS
	}

	el := host.NewElement(id, section, bounds)
	el.Fluid = e.Box == nil
	if b := e.Box; b != nil {
		el.SetBounds(host.Rect{X: float64(b.X), Y: bounds.Y + float64(b.Y), W: float64(b.Width), H: float64(b.Height)})
	}
	r := el.Bounds()
	_, _, dpr := c.Page.Viewport()
	canvas, err := newCanvas(r.W, r.H, dpr)
	if err != nil {
		c.log.Warn().Err(err).Str("id", id).Msg("no canvas")
		canvas = nil
	}

	cfg := anim.Config{
		Kind:      e.Kind,
		ID:        id,
		Options:   opts,
		Scheduler: c.Sched,
		Sink:      c.Diag,
		Logger:    c.log,
		Colors:    c.Theme.Provider(),
		Rand:      rand.New(rand.NewPCG(seed, seed*0x9e3779b97f4a7c15)),
		Registry:  c.Reg,
		FPS:       c.Cfg.FPS,
	}
	if canvas != nil {
		cfg.Canvas = canvas
		cfg.Detach = el.Attach(canvas)
	}
	in, err := anim.New(cfg)
	if err != nil || in.Inert() {
		// already reported by the instance
		c.log.Debug().Err(err).Str("id", id).Msg("effect left out")
		in.Destroy()
		return
	}
	c.Page.Add(el)
	c.mounts = append(c.mounts, mount{el: el, in: in})
}

func (c *Core) addCaption(section string, o typewriter.Options) {
	s := section
	tw := typewriter.New(c.Sched, o, typewriter.Hooks{
		OnComplete: func() { c.log.Debug().Str("section", s).Msg("caption typed") },
	}, c.log)
	c.captions = append(c.captions, caption{section: section, tw: tw})
}

// Do runs fn on the scheduler goroutine before the next step.
func (c *Core) Do(fn func()) { c.Sched.Post(fn) }

// Step advances every chain to now.
func (c *Core) Step(now time.Duration) {
	c.now = now
	c.Sched.Step(now)
}

// Frame composites the visible canvases and applies the post pipeline.
func (c *Core) Frame() *image.RGBA {
	img := render.ToRGBA(c.Page.Compose(c.Background()))
	c.post.Apply(img)
	return img
}

// Captions is the typed text of every section in view.
func (c *Core) Captions() []Caption {
	var out []Caption
	for _, cp := range c.captions {
		r, ok := c.Page.Section(cp.section)
		if !ok {
			continue
		}
		y := r.Y - c.Page.ScrollY()
		_, vh, _ := c.Page.Viewport()
		if y+r.H <= 0 || y >= vh {
			continue
		}
		out = append(out, Caption{Section: cp.section, Y: y, Text: cp.tw.Visible(), Cursor: cp.tw.CursorAlpha(c.now)})
	}
	return out
}

// Instances lists live instances in page order.
func (c *Core) Instances() []*anim.Instance {
	out := make([]*anim.Instance, 0, len(c.mounts))
	for _, m := range c.mounts {
		if !m.in.Destroyed() {
			out = append(out, m.in)
		}
	}
	return out
}

// Section is the section currently filling the viewport.
func (c *Core) Section() string { return c.section }

// Scroll moves the viewport and pauses every instance scrolled out of view.
func (c *Core) Scroll(y float64) {
	c.Page.Scroll(y)
	c.updateVisibility()
}

func (c *Core) ScrollTo(section string) error {
	if err := c.Page.ScrollTo(section); err != nil {
		return err
	}
	c.updateVisibility()
	return nil
}

func (c *Core) updateVisibility() {
	for _, m := range c.mounts {
		m.in.SetVisible(c.Page.Visible(m.el))
	}
	if s := c.Page.Current(); s != c.section {
		c.section = s
		c.Diag.SetContext("section", s)
		c.log.Debug().Str("section", s).Msg("section")
	}
}

// Pointer routes a viewport pointer position to every element beneath it.
func (c *Core) Pointer(x, y float64) {
	under := c.Page.ElementsAt(x, y)
	for _, el := range c.hover {
		if !slices.Contains(under, el) {
			c.each(el, func(in *anim.Instance) { in.PointerLeave() })
		}
	}
	c.hover = under
	for _, el := range under {
		lx, ly := c.Page.Local(el, x, y)
		c.each(el, func(in *anim.Instance) { in.PointerMove(lx, ly) })
	}
}

// PointerLeave clears the pointer from whatever it was over.
func (c *Core) PointerLeave() {
	for _, el := range c.hover {
		c.each(el, func(in *anim.Instance) { in.PointerLeave() })
	}
	c.hover = nil
}

func (c *Core) each(el *host.Element, fn func(*anim.Instance)) {
	for _, m := range c.mounts {
		if m.el == el {
			fn(m.in)
		}
	}
}

// Key handles keyboard navigation: "next"/"prev" step the highlighted
// category of visible instances.
func (c *Core) Key(k string) {
	c.Diag.SetContext("last_action", "key:"+k)
	for _, m := range c.mounts {
		if !c.Page.Visible(m.el) {
			continue
		}
		switch k {
		case "next", "right":
			m.in.HighlightNext()
		case "prev", "left":
			m.in.HighlightPrev()
		}
	}
}

// SetTheme switches the active theme; instances recolour on their next frame.
func (c *Core) SetTheme(name string) error {
	c.Diag.SetContext("last_action", "theme:"+name)
	if err := c.Theme.Switch(name); err != nil {
		c.Diag.Report(err.Error(), "app", diagnostics.Low, map[string]any{"theme": name})
		return err
	}
	c.log.Info().Str("theme", name).Msg("theme switched")
	return nil
}

// SetReducedMotion stops every instance and finishes the captions, or
// restarts them.
func (c *Core) SetReducedMotion(on bool) {
	c.reduced = on
	if on {
		c.Reg.StopAll()
		for _, cp := range c.captions {
			if !cp.tw.Done() {
				cp.tw.Stop(true)
			}
		}
		c.post.Dim = render.DimStage(reducedDim)
		// leave a still frame on every canvas
		for _, m := range c.mounts {
			m.in.RenderOnce(c.now)
		}
	} else {
		c.Reg.StartAll()
		c.post.Dim = nil
	}
	c.log.Debug().Bool("on", on).Msg("reduced motion")
}

func (c *Core) ReducedMotion() bool { return c.reduced }

func (c *Core) SetHighContrast(on bool) {
	c.contrast = on
	c.post.Contrast = nil
	if on {
		c.post.Contrast = render.HighContrast(contrastLift)
	}
}

func (c *Core) HighContrast() bool { return c.contrast }

// Resize changes the viewport; affected instances resize after the
// debounce delay.
func (c *Core) Resize(w, h, dpr float64) {
	for _, el := range c.Page.Resize(w, h, dpr) {
		b := el.Bounds()
		c.each(el, func(in *anim.Instance) { in.Resize(b.W, b.H, dpr) })
	}
	c.updateVisibility()
}

// Run steps and presents at the configured rate until ctx is done.
func (c *Core) Run(ctx context.Context, p host.Presenter) error {
	return c.Sched.Run(ctx, max(c.Cfg.FPS, 1), func(now time.Duration) error {
		c.now = now
		if err := p.Present(c.Frame()); err != nil {
			return fmt.Errorf("present: %w", err)
		}
		return nil
	})
}

// Render steps n frames on a fixed clock and presents each one.
func (c *Core) Render(n int, p host.Presenter) error {
	dt := time.Second / time.Duration(max(c.Cfg.FPS, 1))
	for i := 1; i <= n; i++ {
		c.Step(c.now + dt)
		if err := p.Present(c.Frame()); err != nil {
			return fmt.Errorf("present frame %d: %w", i, err)
		}
	}
	return nil
}

// Close destroys every instance and caption.
func (c *Core) Close() {
	if c.unsub != nil {
		c.unsub()
		c.unsub = nil
	}
	c.Reg.DestroyAll()
	for _, cp := range c.captions {
		cp.tw.Destroy()
	}
	c.log.Info().Msg("closed")
}

// Background is the active theme's page colour.
func (c *Core) Background() color.NRGBA {
	return c.Theme.Current().Lookup(theme.Background, "#0a0e17")
}
