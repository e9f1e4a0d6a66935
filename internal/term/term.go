// Package term presents the page in a terminal with half-block cells and
// turns mouse and key events into page input.
package term

import (
	"context"
	"errors"
	"image"
	"slices"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"github.com/coreman2200/canvasfx/internal/app"
	"github.com/coreman2200/canvasfx/internal/render"
	"github.com/coreman2200/canvasfx/internal/theme"
)

const (
	halfBlock  = '▀'
	scrollStep = 60.0
)

// Screen is a host.Presenter drawing two pixel rows per terminal row.
type Screen struct {
	screen tcell.Screen
	core   *app.Core
	log    zerolog.Logger
}

// New takes ownership of an initialised screen.
func New(s tcell.Screen, core *app.Core, log zerolog.Logger) *Screen {
	s.EnableMouse()
	s.HideCursor()
	return &Screen{screen: s, core: core, log: log.With().Str("module", "term").Logger()}
}

// Open initialises the controlling terminal.
func Open(core *app.Core, log zerolog.Logger) (*Screen, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := s.Init(); err != nil {
		return nil, err
	}
	return New(s, core, log), nil
}

// Present samples img onto the cell grid and overlays the captions. It runs
// on the scheduler goroutine from Core.Run.
func (s *Screen) Present(img image.Image) error {
	rgba := render.ToRGBA(img)
	b := rgba.Bounds()
	w, h := s.screen.Size()
	if w <= 0 || h <= 0 || b.Empty() {
		return nil
	}
	px := func(cx, cy int) tcell.Color {
		x := b.Min.X + cx*b.Dx()/w
		y := b.Min.Y + cy*b.Dy()/(2*h)
		c := rgba.RGBAAt(x, y)
		return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
	}
	for cy := 0; cy < h; cy++ {
		for cx := 0; cx < w; cx++ {
			st := tcell.StyleDefault.Foreground(px(cx, 2*cy)).Background(px(cx, 2*cy+1))
			s.screen.SetContent(cx, cy, halfBlock, nil, st)
		}
	}
	s.drawCaptions(w, h, px)
	s.screen.Show()
	return nil
}

func (s *Screen) drawCaptions(w, h int, px func(cx, cy int) tcell.Color) {
	_, vh, _ := s.core.Page.Viewport()
	tc := s.core.Theme.Current().Lookup(theme.Text, "#e0fbfc")
	fg := tcell.NewRGBColor(int32(tc.R), int32(tc.G), int32(tc.B))
	for _, cp := range s.core.Captions() {
		row := int(cp.Y/vh*float64(h)) + 1
		if row < 0 || row >= h {
			continue
		}
		line := []rune(cp.Text)
		if cp.Cursor >= 0.5 {
			line = append(line, '|')
		}
		col := max(0, (w-len(line))/2)
		for i, r := range line {
			if col+i >= w {
				break
			}
			st := tcell.StyleDefault.Foreground(fg).Background(px(col+i, 2*row)).Bold(true)
			s.screen.SetContent(col+i, row, r, nil, st)
		}
	}
}

// Run presents frames until ctx is done or the user quits.
func (s *Screen) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.pump(cancel)
	err := s.core.Run(ctx, s)
	s.log.Debug().Err(err).Msg("stopped")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *Screen) pump(quit func()) {
	for {
		ev := s.screen.PollEvent()
		if ev == nil {
			return
		}
		if !s.handle(ev) {
			quit()
			return
		}
	}
}

// handle queues ev for the scheduler goroutine. It returns false on quit.
func (s *Screen) handle(ev tcell.Event) bool {
	c := s.core
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyRight:
			c.Do(func() { c.Key("next") })
		case tcell.KeyLeft:
			c.Do(func() { c.Key("prev") })
		case tcell.KeyDown:
			c.Do(func() { c.Scroll(c.Page.ScrollY() + scrollStep) })
		case tcell.KeyUp:
			c.Do(func() { c.Scroll(c.Page.ScrollY() - scrollStep) })
		case tcell.KeyPgDn:
			c.Do(func() { _, vh, _ := c.Page.Viewport(); c.Scroll(c.Page.ScrollY() + vh) })
		case tcell.KeyPgUp:
			c.Do(func() { _, vh, _ := c.Page.Viewport(); c.Scroll(c.Page.ScrollY() - vh) })
		case tcell.KeyRune:
			return s.letter(ev.Rune())
		}
	case *tcell.EventMouse:
		s.mouse(ev)
	case *tcell.EventResize:
		s.screen.Sync()
	}
	return true
}

func (s *Screen) letter(r rune) bool {
	c := s.core
	switch {
	case r == 'q':
		return false
	case r == 't':
		c.Do(func() { _ = c.SetTheme(nextTheme(c.Themes.Names(), c.Theme.Name())) })
	case r == 'm':
		c.Do(func() { c.SetReducedMotion(!c.ReducedMotion()) })
	case r == 'c':
		c.Do(func() { c.SetHighContrast(!c.HighContrast()) })
	case r >= '1' && r <= '9':
		i := int(r - '1')
		c.Do(func() {
			if secs := c.Page.Sections(); i < len(secs) {
				_ = c.ScrollTo(secs[i].Name)
			}
		})
	}
	return true
}

func (s *Screen) mouse(ev *tcell.EventMouse) {
	c := s.core
	cx, cy := ev.Position()
	w, h := s.screen.Size()
	if w <= 0 || h <= 0 {
		return
	}
	switch btn := ev.Buttons(); {
	case btn&tcell.WheelDown != 0:
		c.Do(func() { c.Scroll(c.Page.ScrollY() + scrollStep) })
	case btn&tcell.WheelUp != 0:
		c.Do(func() { c.Scroll(c.Page.ScrollY() - scrollStep) })
	case cx < 0 || cy < 0 || cx >= w || cy >= h:
		c.Do(c.PointerLeave)
	default:
		c.Do(func() {
			vw, vh, _ := c.Page.Viewport()
			c.Pointer((float64(cx)+0.5)*vw/float64(w), (float64(cy)+0.5)*vh/float64(h))
		})
	}
}

func nextTheme(names []string, cur string) string {
	if len(names) == 0 {
		return cur
	}
	i := slices.Index(names, cur)
	return names[(i+1)%len(names)]
}

// Close restores the terminal.
func (s *Screen) Close() error {
	s.screen.Fini()
	return nil
}
