package raster

import (
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"io"
	"os"
)

// GIF holds the composited frames of an animated GIF.
type GIF struct {
	Frames []Raster
	// Delays are per-frame delays in hundredths of a second.
	Delays []int
}

// FPS estimates a frame rate from the average frame delay.
func (g *GIF) FPS() int {
	total := 0
	for _, d := range g.Delays {
		total += d
	}
	if total <= 0 || len(g.Delays) == 0 {
		return 10
	}
	fps := (100*len(g.Delays) + total/2) / total
	if fps < 1 {
		fps = 1
	}
	if fps > 60 {
		fps = 60
	}
	return fps
}

func LoadGIF(path string, opts LoadOptions) (*GIF, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeGIF(f, opts)
}

// DecodeGIF composites every frame onto a persistent canvas, honouring the
// per-frame disposal method, so each output raster is a complete picture.
func DecodeGIF(r io.Reader, opts LoadOptions) (*GIF, error) {
	g, err := gif.DecodeAll(r)
	if err != nil {
		return nil, fmt.Errorf("decode gif: %w", err)
	}
	if len(g.Image) == 0 {
		return nil, fmt.Errorf("decode gif: no frames")
	}

	bounds := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if bounds.Empty() {
		bounds = g.Image[0].Bounds()
	}
	canvas := image.NewNRGBA(bounds)
	out := &GIF{
		Frames: make([]Raster, 0, len(g.Image)),
		Delays: make([]int, 0, len(g.Image)),
	}

	var saved *image.NRGBA
	for i, frame := range g.Image {
		disposal := byte(0)
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}
		if disposal == gif.DisposalPrevious {
			saved = cloneNRGBA(canvas)
		}

		draw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)
		out.Frames = append(out.Frames, fromNRGBA(prepare(canvas, 1, opts)))

		delay := 10
		if i < len(g.Delay) {
			delay = g.Delay[i]
		}
		out.Delays = append(out.Delays, delay)

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(canvas, frame.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			if saved != nil {
				canvas = saved
			}
		}
	}
	return out, nil
}

func cloneNRGBA(src *image.NRGBA) *image.NRGBA {
	dst := image.NewNRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	return dst
}
