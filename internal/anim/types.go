package anim

import (
	"bytes"
	"fmt"
)

// Version is the stream version written by this package.
const Version uint8 = 1

// MaxRampLength is the largest ramp the one byte header field can describe.
const MaxRampLength = 255

// MaxPaletteLength is the largest palette the header can describe.
const MaxPaletteLength = 255

type ColorMode uint8

const (
	Mono ColorMode = iota
	RGBColor
	PaletteColor
)

func (c ColorMode) String() string {
	switch c {
	case Mono:
		return "mono"
	case RGBColor:
		return "rgb"
	case PaletteColor:
		return "palette"
	}
	return fmt.Sprintf("colormode(%d)", uint8(c))
}

// HasColor reports whether grids in this mode carry RGB triplets.
func (c ColorMode) HasColor() bool { return c != Mono }

// ParseColorMode maps a mode name to its ColorMode.
func ParseColorMode(s string) (ColorMode, error) {
	switch s {
	case "mono", "":
		return Mono, nil
	case "rgb", "color", "colour":
		return RGBColor, nil
	case "palette":
		return PaletteColor, nil
	}
	return Mono, fmt.Errorf("unknown color mode %q", s)
}

type RGB struct {
	R, G, B uint8
}

func (c RGB) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Meta carries the header fields of an animation.
type Meta struct {
	Version    uint8
	Cols       uint16
	Rows       uint16
	FPS        uint8
	FrameCount uint16
	ColorMode  ColorMode
	Ramp       []byte
	Palette    []RGB
}

// Cells returns rows*cols.
func (m Meta) Cells() int { return int(m.Cols) * int(m.Rows) }

// Duration returns the playback length in seconds.
func (m Meta) Duration() float64 {
	if m.FPS == 0 {
		return 0
	}
	return float64(m.FrameCount) / float64(m.FPS)
}

// Validate checks the invariants every stage relies on.
func (m Meta) Validate() error {
	if m.Cells() < 1 {
		return fmt.Errorf("%w: %dx%d grid", ErrInvalidDimensions, m.Cols, m.Rows)
	}
	if len(m.Ramp) == 0 {
		return fmt.Errorf("%w: empty ramp", ErrInvalidDimensions)
	}
	if len(m.Ramp) > MaxRampLength {
		return fmt.Errorf("%w: %d symbols", ErrUnsupportedRampLength, len(m.Ramp))
	}
	if len(m.Palette) > MaxPaletteLength {
		return fmt.Errorf("palette of %d colors exceeds %d", len(m.Palette), MaxPaletteLength)
	}
	if m.ColorMode > PaletteColor {
		return fmt.Errorf("unknown color mode %d", m.ColorMode)
	}
	return nil
}

// Grid is a row-major symbol grid with an optional parallel RGB grid.
// Colors holds three bytes per cell or is nil in mono mode.
type Grid struct {
	Symbols []byte
	Colors  []byte
}

// NewGrid allocates a grid of the given cell count.
func NewGrid(cells int, withColor bool) Grid {
	g := Grid{Symbols: make([]byte, cells)}
	if withColor {
		g.Colors = make([]byte, cells*3)
	}
	return g
}

func (g Grid) Len() int { return len(g.Symbols) }

// IsSet reports whether the grid holds any cells.
func (g Grid) IsSet() bool { return g.Symbols != nil }

func (g Grid) Clone() Grid {
	c := Grid{Symbols: make([]byte, len(g.Symbols))}
	copy(c.Symbols, g.Symbols)
	if g.Colors != nil {
		c.Colors = make([]byte, len(g.Colors))
		copy(c.Colors, g.Colors)
	}
	return c
}

func (g Grid) Equal(o Grid) bool {
	return bytes.Equal(g.Symbols, o.Symbols) && bytes.Equal(g.Colors, o.Colors)
}

// Color returns the RGB triplet of cell i. It is zero when the grid has no colors.
func (g Grid) Color(i int) RGB {
	if g.Colors == nil || i*3+2 >= len(g.Colors) {
		return RGB{}
	}
	return RGB{g.Colors[i*3], g.Colors[i*3+1], g.Colors[i*3+2]}
}

// Row returns the symbols of row r for a grid that is cols wide.
func (g Grid) Row(r, cols int) []byte {
	return g.Symbols[r*cols : (r+1)*cols]
}

// Frame is a full or delta frame record. The set of implementations is
// closed: only Full and Delta satisfy it.
type Frame interface {
	isFrame()
}

// Full holds a complete grid snapshot.
type Full struct {
	Grid Grid
}

// Delta holds the cells that changed since the previous resolved frame,
// strictly ascending by index.
type Delta struct {
	Changes []Change
}

func (*Full) isFrame()  {}
func (*Delta) isFrame() {}

// Change is a single cell update.
type Change struct {
	Index    uint32
	Symbol   byte
	Color    RGB
	HasColor bool
}

// Animation is a meta header plus its ordered frame records.
type Animation struct {
	Meta   Meta
	Frames []Frame
}

// Validate checks the meta invariants and that FrameCount matches the records.
func (a *Animation) Validate() error {
	if err := a.Meta.Validate(); err != nil {
		return err
	}
	if int(a.Meta.FrameCount) != len(a.Frames) {
		return fmt.Errorf("%w: header says %d, have %d", ErrFrameCountMismatch, a.Meta.FrameCount, len(a.Frames))
	}
	return nil
}

// Kind names the frame kind for display purposes.
func Kind(f Frame) string {
	switch f.(type) {
	case *Full:
		return "full"
	case *Delta:
		return "delta"
	}
	return "unknown"
}
