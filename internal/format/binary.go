package format

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/san-kum/asciimate/internal/anim"
)

// Magic opens every binary stream.
const Magic = "ASCI"

// HeaderSize is the fixed header length; ramp bytes start here.
const HeaderSize = 0x20

const (
	frameFull  byte = 0
	frameDelta byte = 1
)

var (
	ErrUnorderedDelta = errors.New("format: delta indices not strictly increasing")
	ErrTrailingData   = errors.New("format: trailing bytes after last frame")
	ErrVersion        = errors.New("format: unsupported stream version")
)

var errShort = anim.ErrTruncatedStream

// Marshal serializes a into the binary layout.
func Marshal(a *anim.Animation) ([]byte, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	m := a.Meta
	cells := m.Cells()
	colors := m.ColorMode.HasColor()

	size := HeaderSize + len(m.Ramp) + len(m.Palette)*3 + len(a.Frames)*(1+cells)
	b := make([]byte, HeaderSize, size)
	copy(b, Magic)
	version := m.Version
	if version == 0 {
		version = anim.Version
	}
	b[0x04] = version
	b[0x05] = byte(m.ColorMode)
	binary.LittleEndian.PutUint16(b[0x06:], m.Cols)
	binary.LittleEndian.PutUint16(b[0x08:], m.Rows)
	b[0x0A] = m.FPS
	binary.LittleEndian.PutUint16(b[0x0B:], m.FrameCount)
	b[0x0D] = byte(len(m.Ramp))
	// Palette streams extend the base layout: 0x0E carries the palette
	// length and len*3 RGB bytes follow the ramp. Readers that expect
	// 0x0E-0x1F to be zero can only parse mono and rgb streams.
	if m.ColorMode == anim.PaletteColor {
		b[0x0E] = byte(len(m.Palette))
	}

	b = append(b, m.Ramp...)
	if m.ColorMode == anim.PaletteColor {
		for _, c := range m.Palette {
			b = append(b, c.R, c.G, c.B)
		}
	}

	for i, f := range a.Frames {
		var err error
		b, err = AppendRecord(b, f, cells, colors)
		if err != nil {
			return nil, &anim.FrameError{Index: i, Wrapped: err}
		}
	}
	return b, nil
}

// AppendRecord appends the wire form of one frame record to b.
func AppendRecord(b []byte, f anim.Frame, cells int, colors bool) ([]byte, error) {
	switch fr := f.(type) {
	case *anim.Full:
		g := fr.Grid
		if g.Len() != cells {
			return nil, fmt.Errorf("%w: full frame has %d cells, want %d", anim.ErrInvalidDimensions, g.Len(), cells)
		}
		b = append(b, frameFull)
		b = append(b, g.Symbols...)
		if colors {
			if len(g.Colors) != cells*3 {
				return nil, fmt.Errorf("%w: full frame has %d color bytes, want %d", anim.ErrInvalidDimensions, len(g.Colors), cells*3)
			}
			b = append(b, g.Colors...)
		}
		return b, nil
	case *anim.Delta:
		b = append(b, frameDelta)
		b = AppendUvarint(b, uint64(len(fr.Changes)))
		for j, c := range fr.Changes {
			if int(c.Index) >= cells {
				return nil, fmt.Errorf("%w: %d >= %d", anim.ErrIndexOutOfRange, c.Index, cells)
			}
			if j > 0 && c.Index <= fr.Changes[j-1].Index {
				return nil, fmt.Errorf("%w: %d after %d", ErrUnorderedDelta, c.Index, fr.Changes[j-1].Index)
			}
			b = AppendUvarint(b, uint64(c.Index))
			b = append(b, c.Symbol)
			if colors {
				b = append(b, c.Color.R, c.Color.G, c.Color.B)
			}
		}
		return b, nil
	default:
		return nil, fmt.Errorf("%w: %T", anim.ErrUnknownFrame, f)
	}
}

// Write serializes a to w.
func Write(w io.Writer, a *anim.Animation) (int64, error) {
	b, err := Marshal(a)
	if err != nil {
		return 0, err
	}
	n, err := w.Write(b)
	return int64(n), err
}

// Read consumes r to EOF and decodes a binary stream.
func Read(r io.Reader) (*anim.Animation, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Unmarshal(b)
}

type cursor struct {
	b   []byte
	off int
}

func (c *cursor) remaining() int { return len(c.b) - c.off }

func (c *cursor) take(n int) ([]byte, error) {
	if n < 0 || c.remaining() < n {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", anim.ErrTruncatedStream, n, c.off, c.remaining())
	}
	p := c.b[c.off : c.off+n]
	c.off += n
	return p, nil
}

func (c *cursor) readByte() (byte, error) {
	p, err := c.take(1)
	if err != nil {
		return 0, err
	}
	return p[0], nil
}

func (c *cursor) uvarint() (uint64, error) {
	v, n, err := ReadUvarint(c.b[c.off:])
	if err != nil {
		if errors.Is(err, ErrVarintOverflow) {
			return 0, fmt.Errorf("%w: %w at offset %d", anim.ErrTruncatedStream, err, c.off)
		}
		return 0, fmt.Errorf("%w: varint at offset %d", anim.ErrTruncatedStream, c.off)
	}
	c.off += n
	return v, nil
}

// Unmarshal decodes a binary stream. It returns either a complete
// animation or an error, never a partial result.
func Unmarshal(b []byte) (*anim.Animation, error) {
	n := min(len(b), len(Magic))
	if !bytes.Equal(b[:n], []byte(Magic)[:n]) {
		return nil, anim.ErrBadMagic
	}
	if len(b) < HeaderSize {
		return nil, fmt.Errorf("%w: header needs %d bytes, have %d", anim.ErrTruncatedStream, HeaderSize, len(b))
	}

	m := anim.Meta{
		Version:    b[0x04],
		ColorMode:  anim.ColorMode(b[0x05]),
		Cols:       binary.LittleEndian.Uint16(b[0x06:]),
		Rows:       binary.LittleEndian.Uint16(b[0x08:]),
		FPS:        b[0x0A],
		FrameCount: binary.LittleEndian.Uint16(b[0x0B:]),
	}
	if m.Version == 0 || m.Version > anim.Version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, m.Version)
	}
	if m.ColorMode > anim.PaletteColor {
		return nil, fmt.Errorf("%w: color mode %d", anim.ErrUnsupportedFormat, m.ColorMode)
	}
	rampLen := int(b[0x0D])
	paletteLen := 0
	if m.ColorMode == anim.PaletteColor {
		paletteLen = int(b[0x0E])
	}

	c := &cursor{b: b, off: HeaderSize}
	ramp, err := c.take(rampLen)
	if err != nil {
		return nil, fmt.Errorf("ramp: %w", err)
	}
	m.Ramp = append([]byte(nil), ramp...)
	if paletteLen > 0 {
		pal, err := c.take(paletteLen * 3)
		if err != nil {
			return nil, fmt.Errorf("palette: %w", err)
		}
		m.Palette = make([]anim.RGB, paletteLen)
		for i := range m.Palette {
			m.Palette[i] = anim.RGB{R: pal[i*3], G: pal[i*3+1], B: pal[i*3+2]}
		}
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	cells := m.Cells()
	colors := m.ColorMode.HasColor()
	frames := make([]anim.Frame, 0, m.FrameCount)
	for i := 0; i < int(m.FrameCount); i++ {
		f, err := readFrame(c, cells, colors)
		if err != nil {
			return nil, &anim.FrameError{Index: i, Wrapped: err}
		}
		frames = append(frames, f)
	}
	if c.remaining() > 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrTrailingData, c.remaining())
	}
	return &anim.Animation{Meta: m, Frames: frames}, nil
}

func readFrame(c *cursor, cells int, colors bool) (anim.Frame, error) {
	kind, err := c.readByte()
	if err != nil {
		return nil, err
	}
	switch kind {
	case frameFull:
		syms, err := c.take(cells)
		if err != nil {
			return nil, err
		}
		g := anim.Grid{Symbols: append([]byte(nil), syms...)}
		if colors {
			rgb, err := c.take(cells * 3)
			if err != nil {
				return nil, err
			}
			g.Colors = append([]byte(nil), rgb...)
		}
		return &anim.Full{Grid: g}, nil
	case frameDelta:
		count, err := c.uvarint()
		if err != nil {
			return nil, err
		}
		per := 2
		if colors {
			per = 5
		}
		if count > uint64(c.remaining()/per) {
			return nil, fmt.Errorf("%w: %d changes declared, %d bytes left", anim.ErrTruncatedStream, count, c.remaining())
		}
		changes := make([]anim.Change, count)
		for j := range changes {
			idx, err := c.uvarint()
			if err != nil {
				return nil, err
			}
			if idx >= uint64(cells) {
				return nil, fmt.Errorf("%w: %d >= %d", anim.ErrIndexOutOfRange, idx, cells)
			}
			if j > 0 && uint32(idx) <= changes[j-1].Index {
				return nil, fmt.Errorf("%w: %d after %d", ErrUnorderedDelta, idx, changes[j-1].Index)
			}
			sym, err := c.readByte()
			if err != nil {
				return nil, err
			}
			ch := anim.Change{Index: uint32(idx), Symbol: sym}
			if colors {
				rgb, err := c.take(3)
				if err != nil {
					return nil, err
				}
				ch.Color = anim.RGB{R: rgb[0], G: rgb[1], B: rgb[2]}
				ch.HasColor = true
			}
			changes[j] = ch
		}
		return &anim.Delta{Changes: changes}, nil
	default:
		return nil, fmt.Errorf("%w: type byte %d", anim.ErrUnknownFrame, kind)
	}
}

// RecordSize returns the number of bytes f occupies in a binary stream.
func RecordSize(f anim.Frame, cells int, colors bool) int {
	switch fr := f.(type) {
	case *anim.Full:
		if colors {
			return 1 + cells*4
		}
		return 1 + cells
	case *anim.Delta:
		per := 1
		if colors {
			per = 4
		}
		n := 1 + uvarintLen(uint64(len(fr.Changes)))
		for _, c := range fr.Changes {
			n += uvarintLen(uint64(c.Index)) + per
		}
		return n
	}
	return 0
}

func uvarintLen(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}
