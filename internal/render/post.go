package render

import (
	"image"
	"image/draw"
)

// Stage mutates a composited frame in place. Frames are premultiplied.
type Stage func(img *image.RGBA)

// PostPipeline groups post stages; all are optional and run in order.
type PostPipeline struct {
	Contrast Stage
	Dim      Stage
}

func (p PostPipeline) Apply(img *image.RGBA) {
	if p.Contrast != nil {
		p.Contrast(img)
	}
	if p.Dim != nil {
		p.Dim(img)
	}
}

// HighContrast lifts opacity and brightness of every visible pixel by
// amount (0.5 = +50%), keeping channels within their alpha.
func HighContrast(amount float64) Stage {
	k := 1 + amount
	return func(img *image.RGBA) {
		px := img.Pix
		for i := 0; i+3 < len(px); i += 4 {
			a := px[i+3]
			if a == 0 {
				continue
			}
			na := scale8(a, k)
			px[i] = min(scale8(px[i], k), na)
			px[i+1] = min(scale8(px[i+1], k), na)
			px[i+2] = min(scale8(px[i+2], k), na)
			px[i+3] = na
		}
	}
}

// DimStage scales every channel by k in [0,1]; used for the static frame
// shown when motion is reduced.
func DimStage(k float64) Stage {
	if k >= 1 {
		return nil
	}
	k = max(k, 0)
	return func(img *image.RGBA) {
		for i, v := range img.Pix {
			img.Pix[i] = scale8(v, k)
		}
	}
}

func scale8(v uint8, k float64) uint8 {
	f := float64(v)*k + 0.5
	if f >= 255 {
		return 255
	}
	return uint8(f)
}

// ToRGBA returns img as *image.RGBA, copying only when it is another type.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(b)
	draw.Draw(out, b, img, b.Min, draw.Src)
	return out
}
