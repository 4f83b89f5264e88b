// Package convert turns RGBA rasters into symbol and colour grids.
package convert

import (
	"fmt"
	"math"

	"github.com/san-kum/asciimate/internal/anim"
	"github.com/san-kum/asciimate/internal/ramp"
	"github.com/san-kum/asciimate/internal/raster"
)

// DefaultCharAspect is the width/height ratio of a rendered symbol.
const DefaultCharAspect = 0.5

// StepThresholds are the cell areas (in pixels) at which sampling becomes
// sparser: every second pixel from Medium, every fourth from Large.
type StepThresholds struct {
	Medium int
	Large  int
}

var DefaultStepThresholds = StepThresholds{Medium: 64, Large: 256}

// Step returns the sampling stride for a cell of the given area.
func (s StepThresholds) Step(area float64) int {
	switch {
	case s.Large > 0 && area >= float64(s.Large):
		return 4
	case s.Medium > 0 && area >= float64(s.Medium):
		return 2
	}
	return 1
}

type Options struct {
	Cols       int
	Ramp       ramp.Ramp
	Invert     bool
	ColorMode  anim.ColorMode
	Palette    []anim.RGB
	CharAspect float64
	Steps      StepThresholds
}

type Converter struct {
	opts  Options
	lut   *ramp.LUT
	pal   *Palette
	arena *Arena
}

func New(opts Options) (*Converter, error) {
	if opts.Cols < 1 || opts.Cols > math.MaxUint16 {
		return nil, fmt.Errorf("%w: cols %d", anim.ErrInvalidDimensions, opts.Cols)
	}
	if len(opts.Ramp) == 0 {
		return nil, ramp.ErrEmptyRamp
	}
	if len(opts.Ramp) > anim.MaxRampLength {
		return nil, fmt.Errorf("%w: %d symbols", anim.ErrUnsupportedRampLength, len(opts.Ramp))
	}
	if opts.CharAspect <= 0 {
		opts.CharAspect = DefaultCharAspect
	}
	if opts.Steps == (StepThresholds{}) {
		opts.Steps = DefaultStepThresholds
	}

	c := &Converter{opts: opts, arena: NewArena()}
	if opts.ColorMode == anim.PaletteColor {
		if len(opts.Palette) == 0 {
			return nil, fmt.Errorf("palette color mode needs at least one palette color")
		}
		c.pal = NewPalette(opts.Palette)
	}
	c.lut = ramp.NewLUT(len(opts.Ramp), opts.Invert)
	return c, nil
}

func (c *Converter) Options() Options { return c.opts }

// SetRamp swaps the symbol alphabet and rebuilds the lookup table.
func (c *Converter) SetRamp(r ramp.Ramp) error {
	if len(r) == 0 {
		return ramp.ErrEmptyRamp
	}
	if len(r) > anim.MaxRampLength {
		return fmt.Errorf("%w: %d symbols", anim.ErrUnsupportedRampLength, len(r))
	}
	c.opts.Ramp = r
	c.lut = ramp.NewLUT(len(r), c.opts.Invert)
	return nil
}

// SetInvert flips the brightness mapping and rebuilds the lookup table.
func (c *Converter) SetInvert(invert bool) {
	c.opts.Invert = invert
	c.lut = ramp.NewLUT(len(c.opts.Ramp), invert)
}

// Rows returns the number of symbol rows a width x height raster maps to.
func (c *Converter) Rows(width, height int) (int, error) {
	if width < 1 || height < 1 {
		return 0, fmt.Errorf("%w: raster %dx%d", anim.ErrInvalidDimensions, width, height)
	}
	_, cellH := c.cellSize(width)
	rows := int(math.Floor(float64(height) / cellH))
	if rows < 1 || rows > math.MaxUint16 {
		return 0, fmt.Errorf("%w: %d rows", anim.ErrInvalidDimensions, rows)
	}
	return rows, nil
}

func (c *Converter) cellSize(width int) (float64, float64) {
	cellW := float64(width) / float64(c.opts.Cols)
	return cellW, cellW / c.opts.CharAspect
}

// Luminance returns the Rec.709 weighted brightness of an RGB triplet in
// 8.8 fixed point, shifted back to 0..255.
func Luminance(r, g, b uint8) uint8 {
	return uint8((54*uint32(r) + 183*uint32(g) + 19*uint32(b)) >> 8)
}

// Convert maps one raster onto the symbol grid. The returned grid aliases
// the converter's arena: it stays valid across one further call and is
// overwritten by the call after that. Clone it to keep it longer.
// In mono mode the returned grid has nil Colors.
func (c *Converter) Convert(r raster.Raster) (anim.Grid, int, error) {
	if err := r.Validate(); err != nil {
		return anim.Grid{}, 0, err
	}
	rows, err := c.Rows(r.Width, r.Height)
	if err != nil {
		return anim.Grid{}, 0, err
	}
	cols := c.opts.Cols

	a := c.arena
	a.Reset(cols, rows)
	g := a.Swap()

	cellW, cellH := c.cellSize(r.Width)
	step := c.opts.Steps.Step(cellW * cellH)

	for col := 0; col <= cols; col++ {
		x := int(math.Floor(float64(col) * cellW))
		if x > r.Width {
			x = r.Width
		}
		a.xs[col] = x
	}

	stride := r.Width * 4
	for row := 0; row < rows; row++ {
		y0 := int(math.Floor(float64(row) * cellH))
		y1 := int(math.Floor(float64(row+1) * cellH))
		if y0 >= r.Height {
			y0 = r.Height - 1
		}
		if y1 > r.Height {
			y1 = r.Height
		}
		if y1 <= y0 {
			y1 = y0 + 1
		}

		a.clearRow()
		for y := y0; y < y1; y += step {
			line := r.Pix[y*stride : (y+1)*stride]
			for col := 0; col < cols; col++ {
				x0, x1 := a.xs[col], a.xs[col+1]
				if x0 >= r.Width {
					x0 = r.Width - 1
				}
				if x1 <= x0 {
					x1 = x0 + 1
				}
				acc := a.acc[col*4 : col*4+4]
				for x := x0; x < x1; x += step {
					p := line[x*4 : x*4+3]
					acc[0] += uint64(p[0])
					acc[1] += uint64(p[1])
					acc[2] += uint64(p[2])
					acc[3]++
				}
			}
		}

		base := row * cols
		for col := 0; col < cols; col++ {
			acc := a.acc[col*4 : col*4+4]
			n := acc[3]
			if n == 0 {
				n = 1
			}
			cr := uint8(acc[0] / n)
			cg := uint8(acc[1] / n)
			cb := uint8(acc[2] / n)

			i := base + col
			g.Symbols[i] = c.opts.Ramp[c.lut[Luminance(cr, cg, cb)]]

			if c.pal != nil {
				q := c.pal.Nearest(anim.RGB{R: cr, G: cg, B: cb})
				cr, cg, cb = q.R, q.G, q.B
			}
			g.Colors[i*3] = cr
			g.Colors[i*3+1] = cg
			g.Colors[i*3+2] = cb
		}
	}

	if !c.opts.ColorMode.HasColor() {
		return anim.Grid{Symbols: g.Symbols}, rows, nil
	}
	return g, rows, nil
}
