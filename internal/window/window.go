// Package window runs the page in a desktop window.
package window

import (
	"errors"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/rs/zerolog"

	"github.com/coreman2200/canvasfx/internal/app"
)

const scrollStep = 60.0

// keys maps window keys onto page actions.
var keys = map[ebiten.Key]string{
	ebiten.KeyArrowRight: "next",
	ebiten.KeyArrowLeft:  "prev",
	ebiten.KeyArrowDown:  "down",
	ebiten.KeyArrowUp:    "up",
	ebiten.KeyPageDown:   "pagedown",
	ebiten.KeyPageUp:     "pageup",
	ebiten.KeyT:          "theme",
	ebiten.KeyM:          "motion",
	ebiten.KeyC:          "contrast",
	ebiten.KeyEscape:     "quit",
	ebiten.KeyQ:          "quit",
}

// Game adapts app.Core to ebiten. Update and Draw run on ebiten's game
// goroutine, which doubles as the scheduler goroutine.
type Game struct {
	core  *app.Core
	log   zerolog.Logger
	start time.Time

	frame      *ebiten.Image
	cx, cy     int
	inside     bool
	outW, outH int
}

func New(core *app.Core, log zerolog.Logger) *Game {
	return &Game{core: core, log: log.With().Str("module", "window").Logger(), start: time.Now()}
}

func (g *Game) Update() error {
	c := g.core
	if w, h, dpr := c.Page.Viewport(); g.outW > 0 && (float64(g.outW) != w || float64(g.outH) != h) {
		c.Resize(float64(g.outW), float64(g.outH), dpr)
	}
	for k, action := range keys {
		if inpututil.IsKeyJustPressed(k) && !g.apply(action) {
			return ebiten.Termination
		}
	}
	if _, dy := ebiten.Wheel(); dy != 0 {
		c.Scroll(c.Page.ScrollY() - dy*scrollStep)
	}

	x, y := ebiten.CursorPosition()
	in := x >= 0 && y >= 0 && x < g.outW && y < g.outH
	switch {
	case in && (x != g.cx || y != g.cy || !g.inside):
		c.Pointer(float64(x), float64(y))
	case !in && g.inside:
		c.PointerLeave()
	}
	g.cx, g.cy, g.inside = x, y, in

	c.Step(time.Since(g.start))
	return nil
}

// apply runs one page action. It returns false on quit.
func (g *Game) apply(action string) bool {
	c := g.core
	_, vh, _ := c.Page.Viewport()
	switch action {
	case "quit":
		return false
	case "next", "prev":
		c.Key(action)
	case "down":
		c.Scroll(c.Page.ScrollY() + scrollStep)
	case "up":
		c.Scroll(c.Page.ScrollY() - scrollStep)
	case "pagedown":
		c.Scroll(c.Page.ScrollY() + vh)
	case "pageup":
		c.Scroll(c.Page.ScrollY() - vh)
	case "theme":
		names := c.Themes.Names()
		for i, n := range names {
			if n == c.Theme.Name() {
				_ = c.SetTheme(names[(i+1)%len(names)])
				break
			}
		}
	case "motion":
		c.SetReducedMotion(!c.ReducedMotion())
	case "contrast":
		c.SetHighContrast(!c.HighContrast())
	default:
		g.log.Debug().Str("action", action).Msg("unknown action")
	}
	return true
}

func (g *Game) Draw(screen *ebiten.Image) {
	img := g.core.Frame()
	b := img.Bounds()
	if g.frame == nil || g.frame.Bounds().Size() != b.Size() {
		if g.frame != nil {
			g.frame.Deallocate()
		}
		g.frame = ebiten.NewImage(b.Dx(), b.Dy())
	}
	g.frame.WritePixels(img.Pix)

	_, _, dpr := g.core.Page.Viewport()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(1/dpr, 1/dpr)
	screen.DrawImage(g.frame, op)

	for _, cp := range g.core.Captions() {
		line := cp.Text
		if cp.Cursor >= 0.5 {
			line += "|"
		}
		ebitenutil.DebugPrintAt(screen, line, 24, int(cp.Y)+24)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.outW, g.outH = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

// Run opens a window sized to the viewport and blocks until it closes.
func Run(core *app.Core, log zerolog.Logger, title string) error {
	w, h, _ := core.Page.Viewport()
	ebiten.SetWindowSize(int(w), int(h))
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(core.Cfg.FPS)
	if err := ebiten.RunGame(New(core, log)); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
