package pattern

import (
	"maps"
	"math"
	"slices"

	"github.com/coreman2200/canvasfx/internal/vmath"
)

// Provider computes anchor points for a canvas of w x h holding count
// entities. The point count need not match count.
type Provider func(w, h float64, count int) []vmath.Vec2

// Registry maps pattern names to providers and their placement jitter.
type Registry struct {
	m      map[string]Provider
	jitter map[string]float64
}

func NewRegistry() *Registry {
	r := &Registry{m: map[string]Provider{}, jitter: map[string]float64{}}
	r.Register(FlowerOfLife, flowerOfLife, 3)
	r.Register(MetatronCube, metatronCube, 3)
	r.Register(FibonacciSpiral, fibonacciSpiral, 2)
	r.Register(PlatonicSolid, platonicSolid, 2)
	r.Register(VesicaPiscis, vesicaPiscis, 5)
	return r
}

// Register adds or replaces a provider. jitter is the full width of the
// random offset applied around each anchor.
func (r *Registry) Register(name string, p Provider, jitter float64) {
	if p == nil {
		return
	}
	r.m[name] = p
	r.jitter[name] = jitter
}

func (r *Registry) Get(name string) (Provider, bool) {
	p, ok := r.m[name]
	return p, ok
}

func (r *Registry) Jitter(name string) float64 {
	if j, ok := r.jitter[name]; ok {
		return j
	}
	return 5
}

func (r *Registry) Names() []string { return slices.Sorted(maps.Keys(r.m)) }

// Fit scales and centres pts so their bounding box fills frac of the canvas
// along its limiting axis.
func Fit(pts []vmath.Vec2, w, h, frac float64) []vmath.Vec2 {
	if len(pts) == 0 {
		return pts
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	pw, ph := maxX-minX, maxY-minY
	scale := math.Inf(1)
	if pw > 0 {
		scale = w * frac / pw
	}
	if ph > 0 {
		scale = math.Min(scale, h*frac/ph)
	}
	if math.IsInf(scale, 1) {
		scale = 1
	}
	pcx, pcy := minX+pw/2, minY+ph/2
	out := make([]vmath.Vec2, len(pts))
	for i, p := range pts {
		out[i] = vmath.Vec2{X: w/2 + (p.X-pcx)*scale, Y: h/2 + (p.Y-pcy)*scale}
	}
	return out
}
