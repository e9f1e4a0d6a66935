package host

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/gogpu/gg"
)

// Section is a vertical band of the page.
type Section struct {
	Name      string
	Top, Size float64
}

// Page is a single column of sections scrolled under a viewport.
type Page struct {
	vw, vh, dpr float64
	scroll      float64

	sections []Section
	elements []*Element
}

func NewPage(vw, vh, dpr float64) *Page {
	if dpr <= 0 {
		dpr = 1
	}
	return &Page{vw: vw, vh: vh, dpr: dpr}
}

// AddSection appends a band of height h and returns its bounds.
func (p *Page) AddSection(name string, h float64) Rect {
	top := p.Height()
	p.sections = append(p.sections, Section{Name: name, Top: top, Size: h})
	return Rect{X: 0, Y: top, W: p.vw, H: h}
}

func (p *Page) Sections() []Section { return p.sections }

// Section returns the bounds of the named section.
func (p *Page) Section(name string) (Rect, bool) {
	for _, s := range p.sections {
		if s.Name == name {
			return Rect{Y: s.Top, W: p.vw, H: s.Size}, true
		}
	}
	return Rect{}, false
}

// Height is the total page height.
func (p *Page) Height() float64 {
	if n := len(p.sections); n > 0 {
		last := p.sections[n-1]
		return last.Top + last.Size
	}
	return 0
}

func (p *Page) Add(e *Element) { p.elements = append(p.elements, e) }

func (p *Page) Elements() []*Element { return p.elements }

func (p *Page) Viewport() (w, h, dpr float64) { return p.vw, p.vh, p.dpr }

func (p *Page) ScrollY() float64 { return p.scroll }

// Scroll moves the viewport to y, clamped to the page.
func (p *Page) Scroll(y float64) {
	p.scroll = math.Max(0, math.Min(y, p.Height()-p.vh))
}

// ScrollTo brings the named section to the top of the viewport.
func (p *Page) ScrollTo(section string) error {
	r, ok := p.Section(section)
	if !ok {
		return fmt.Errorf("host: unknown section %q", section)
	}
	p.Scroll(r.Y)
	return nil
}

// Current is the section holding most of the viewport, weighted toward the
// top so a section counts as current as soon as it starts filling the view.
func (p *Page) Current() string {
	best, name := 0.0, ""
	for _, s := range p.sections {
		top := s.Top - p.scroll
		vt := math.Max(0, top)
		vb := math.Min(p.vh, top+s.Size)
		h := math.Max(0, vb-vt)
		w := h * (1 - vt/p.vh) * 1.5
		if w > best {
			best, name = w, s.Name
		}
	}
	return name
}

// Visible reports whether any part of e intersects the viewport.
func (p *Page) Visible(e *Element) bool {
	r := e.rect
	return r.Y < p.scroll+p.vh && r.Y+r.H > p.scroll && r.W > 0 && r.H > 0
}

// Resize changes the viewport and widens fluid elements. It returns the
// elements whose bounds changed.
func (p *Page) Resize(vw, vh, dpr float64) []*Element {
	if dpr <= 0 {
		dpr = 1
	}
	dprChanged := dpr != p.dpr
	p.vw, p.vh, p.dpr = vw, vh, dpr
	var changed []*Element
	for _, e := range p.elements {
		if e.Fluid && e.rect.W != vw {
			e.rect.W = vw
			changed = append(changed, e)
		} else if dprChanged {
			changed = append(changed, e)
		}
	}
	p.Scroll(p.scroll)
	return changed
}

// ElementsAt returns the elements under the viewport point (x, y), topmost
// first.
func (p *Page) ElementsAt(x, y float64) []*Element {
	var out []*Element
	py := y + p.scroll
	for i := len(p.elements) - 1; i >= 0; i-- {
		if p.elements[i].rect.Contains(x, py) {
			out = append(out, p.elements[i])
		}
	}
	return out
}

// Local converts a viewport point into e's own coordinates.
func (p *Page) Local(e *Element, x, y float64) (float64, float64) {
	return x - e.rect.X, y + p.scroll - e.rect.Y
}

// Compose draws every visible element's canvases over bg into one frame of
// viewport size in device pixels.
func (p *Page) Compose(bg color.NRGBA) image.Image {
	pw := int(math.Round(p.vw * p.dpr))
	ph := int(math.Round(p.vh * p.dpr))
	dc := gg.NewContext(max(pw, 1), max(ph, 1))
	dc.ClearWithColor(gg.FromColor(bg))
	for _, e := range p.elements {
		if !p.Visible(e) {
			continue
		}
		x := e.rect.X * p.dpr
		y := (e.rect.Y - p.scroll) * p.dpr
		for _, c := range e.canvases {
			img := c.Image()
			if img == nil {
				continue
			}
			dc.DrawImage(gg.ImageBufFromImage(img), x, y)
		}
	}
	return dc.Image()
}
