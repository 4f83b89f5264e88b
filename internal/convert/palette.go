package convert

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/asciimate/internal/anim"
)

// paletteCacheLimit caps the memoised colour lookups per palette.
const paletteCacheLimit = 1 << 14

// Palette snaps colours to the perceptually nearest entry of a fixed set.
type Palette struct {
	colors []anim.RGB
	lab    []colorful.Color
	cache  map[anim.RGB]anim.RGB
}

func NewPalette(colors []anim.RGB) *Palette {
	p := &Palette{
		colors: append([]anim.RGB(nil), colors...),
		lab:    make([]colorful.Color, len(colors)),
		cache:  make(map[anim.RGB]anim.RGB),
	}
	for i, c := range colors {
		p.lab[i] = toColorful(c)
	}
	return p
}

func (p *Palette) Colors() []anim.RGB { return p.colors }

// Nearest returns the palette colour with the smallest CIE Lab distance.
// Ties resolve to the lower index.
func (p *Palette) Nearest(c anim.RGB) anim.RGB {
	if q, ok := p.cache[c]; ok {
		return q
	}
	src := toColorful(c)
	best, bestDist := 0, src.DistanceLab(p.lab[0])
	for i := 1; i < len(p.lab); i++ {
		if d := src.DistanceLab(p.lab[i]); d < bestDist {
			best, bestDist = i, d
		}
	}
	if len(p.cache) >= paletteCacheLimit {
		clear(p.cache)
	}
	p.cache[c] = p.colors[best]
	return p.colors[best]
}

func toColorful(c anim.RGB) colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}
