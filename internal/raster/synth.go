package raster

import (
	"fmt"
	"math"
	"sort"

	"github.com/fogleman/ease"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/asciimate/internal/anim"
)

// Pattern renders frame i of n into r.
type Pattern func(r Raster, i, n int)

var patterns = map[string]Pattern{
	"sweep":  sweep,
	"pulse":  pulse,
	"orbit":  orbit,
	"static": static,
}

// PatternNames lists the synthetic patterns in sorted order.
func PatternNames() []string {
	names := make([]string, 0, len(patterns))
	for name := range patterns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Synthetic generates test frames without touching the filesystem.
type Synthetic struct {
	Width, Height int
	Frames        int
	pattern       Pattern
}

func NewSynthetic(name string, width, height, frames int) (*Synthetic, error) {
	p, ok := patterns[name]
	if !ok {
		return nil, fmt.Errorf("unknown pattern %q (available: %v)", name, PatternNames())
	}
	if width < 1 || height < 1 || frames < 1 {
		return nil, fmt.Errorf("%w: synthetic %dx%d x%d", anim.ErrInvalidDimensions, width, height, frames)
	}
	return &Synthetic{Width: width, Height: height, Frames: frames, pattern: p}, nil
}

func (s *Synthetic) Len() int { return s.Frames }

func (s *Synthetic) Frame(i int) (Raster, error) {
	if i < 0 || i >= s.Frames {
		return Raster{}, fmt.Errorf("frame %d out of range [0,%d)", i, s.Frames)
	}
	r := New(s.Width, s.Height)
	s.pattern(r, i, s.Frames)
	return r, nil
}

// phase maps frame i of n onto a 0..1..0 triangle, eased.
func phase(i, n int, fn func(float64) float64) float64 {
	if n <= 1 {
		return 0
	}
	t := float64(i) / float64(n-1) * 2
	if t > 1 {
		t = 2 - t
	}
	return fn(t)
}

func toRGB(c colorful.Color) anim.RGB {
	r, g, b := c.Clamped().RGB255()
	return anim.RGB{R: r, G: g, B: b}
}

// sweep moves a bright vertical band across a dark background.
func sweep(r Raster, i, n int) {
	back, _ := colorful.Hex("#000010")
	fore, _ := colorful.Hex("#f0f0ff")
	center := phase(i, n, ease.InOutQuad) * float64(r.Width-1)
	band := math.Max(float64(r.Width)/8, 1)
	for x := 0; x < r.Width; x++ {
		d := math.Abs(float64(x)-center) / band
		t := math.Max(0, 1-d)
		c := toRGB(back.BlendLab(fore, t))
		for y := 0; y < r.Height; y++ {
			r.Set(x, y, c)
		}
	}
}

// pulse fades the whole frame between black and a warm white.
func pulse(r Raster, i, n int) {
	back, _ := colorful.Hex("#050000")
	fore, _ := colorful.Hex("#ffe0b0")
	r.Fill(toRGB(back.BlendLab(fore, phase(i, n, ease.InOutSine))))
}

// orbit draws a disc travelling around the frame centre with a hue shift.
func orbit(r Raster, i, n int) {
	r.Fill(anim.RGB{})
	a := 2 * math.Pi * float64(i) / float64(n)
	cx := float64(r.Width)/2 + math.Cos(a)*float64(r.Width)/4
	cy := float64(r.Height)/2 + math.Sin(a)*float64(r.Height)/4
	rad := math.Max(math.Min(float64(r.Width), float64(r.Height))/6, 1)
	c := toRGB(colorful.Hsv(360*float64(i)/float64(n), 0.8, 1))
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			dx, dy := float64(x)-cx, float64(y)-cy
			if dx*dx+dy*dy <= rad*rad {
				r.Set(x, y, c)
			}
		}
	}
}

// static renders the same horizontal gradient on every frame.
func static(r Raster, _, _ int) {
	for x := 0; x < r.Width; x++ {
		v := uint8(x * 255 / max(r.Width-1, 1))
		for y := 0; y < r.Height; y++ {
			r.Set(x, y, anim.RGB{R: v, G: v, B: v})
		}
	}
}
