package format

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/text/encoding/charmap"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/asciimate/internal/anim"
	"github.com/san-kum/asciimate/internal/ramp"
)

// Document is the structured form of an animation. Symbols are written as
// text rows so the file can be read and edited by hand.
type Document struct {
	Meta   MetaDoc    `json:"meta" yaml:"meta"`
	Frames []FrameDoc `json:"frames" yaml:"frames"`
}

type MetaDoc struct {
	Version    uint8    `json:"version" yaml:"version"`
	Cols       uint16   `json:"cols" yaml:"cols"`
	Rows       uint16   `json:"rows" yaml:"rows"`
	FPS        uint8    `json:"fps" yaml:"fps"`
	FrameCount uint16   `json:"frameCount" yaml:"frameCount"`
	Duration   float64  `json:"durationSeconds" yaml:"durationSeconds"`
	ColorMode  string   `json:"colorMode" yaml:"colorMode"`
	Ramp       string   `json:"ramp" yaml:"ramp"`
	Palette    []string `json:"palette,omitempty" yaml:"palette,omitempty"`
}

type FrameDoc struct {
	Type    string      `json:"type" yaml:"type"`
	Rows    []string    `json:"rows,omitempty" yaml:"rows,omitempty"`
	Colors  string      `json:"colors,omitempty" yaml:"colors,omitempty"`
	Changes []ChangeDoc `json:"changes,omitempty" yaml:"changes,omitempty"`
}

type ChangeDoc struct {
	Index  uint32 `json:"i" yaml:"i"`
	Symbol string `json:"s" yaml:"s"`
	Color  string `json:"c,omitempty" yaml:"c,omitempty"`
}

// NewMetaDoc describes the header fields of m.
func NewMetaDoc(m anim.Meta) MetaDoc {
	md := MetaDoc{
		Version:    m.Version,
		Cols:       m.Cols,
		Rows:       m.Rows,
		FPS:        m.FPS,
		FrameCount: m.FrameCount,
		Duration:   m.Duration(),
		ColorMode:  m.ColorMode.String(),
		Ramp:       ramp.Ramp(m.Ramp).String(),
	}
	if md.Version == 0 {
		md.Version = anim.Version
	}
	for _, c := range m.Palette {
		md.Palette = append(md.Palette, c.String())
	}
	return md
}

// ToDocument converts a into its structured form.
func ToDocument(a *anim.Animation) (*Document, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	m := a.Meta
	doc := &Document{
		Meta:   NewMetaDoc(m),
		Frames: make([]FrameDoc, 0, len(a.Frames)),
	}

	cols := int(m.Cols)
	for i, f := range a.Frames {
		switch fr := f.(type) {
		case *anim.Full:
			if fr.Grid.Len() != m.Cells() {
				return nil, &anim.FrameError{Index: i, Wrapped: anim.ErrInvalidDimensions}
			}
			fd := FrameDoc{Type: "full", Rows: make([]string, m.Rows)}
			for r := range fd.Rows {
				fd.Rows[r] = ramp.Ramp(fr.Grid.Row(r, cols)).String()
			}
			if m.ColorMode.HasColor() && fr.Grid.Colors != nil {
				fd.Colors = base64.StdEncoding.EncodeToString(fr.Grid.Colors)
			}
			doc.Frames = append(doc.Frames, fd)
		case *anim.Delta:
			fd := FrameDoc{Type: "delta", Changes: make([]ChangeDoc, len(fr.Changes))}
			for j, c := range fr.Changes {
				cd := ChangeDoc{Index: c.Index, Symbol: string(ramp.Rune(c.Symbol))}
				if m.ColorMode.HasColor() {
					cd.Color = c.Color.String()
				}
				fd.Changes[j] = cd
			}
			doc.Frames = append(doc.Frames, fd)
		default:
			return nil, &anim.FrameError{Index: i, Wrapped: fmt.Errorf("%w: %T", anim.ErrUnknownFrame, f)}
		}
	}
	return doc, nil
}

// Animation converts the document back, applying the same checks as the
// binary reader.
func (d *Document) Animation() (*anim.Animation, error) {
	mode, err := anim.ParseColorMode(d.Meta.ColorMode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", anim.ErrUnsupportedFormat, err)
	}
	m := anim.Meta{
		Version:    d.Meta.Version,
		Cols:       d.Meta.Cols,
		Rows:       d.Meta.Rows,
		FPS:        d.Meta.FPS,
		FrameCount: d.Meta.FrameCount,
		ColorMode:  mode,
	}
	if m.Version == 0 {
		m.Version = anim.Version
	}
	if d.Meta.Ramp != "" {
		r, err := ramp.Parse(d.Meta.Ramp)
		if err != nil {
			return nil, err
		}
		m.Ramp = r
	}
	for _, h := range d.Meta.Palette {
		c, err := parseHex(h)
		if err != nil {
			return nil, err
		}
		m.Palette = append(m.Palette, c)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if int(m.FrameCount) != len(d.Frames) {
		return nil, fmt.Errorf("%w: header says %d, have %d", anim.ErrFrameCountMismatch, m.FrameCount, len(d.Frames))
	}

	cells := m.Cells()
	colors := mode.HasColor()
	frames := make([]anim.Frame, 0, len(d.Frames))
	for i, fd := range d.Frames {
		f, err := fd.frame(m, cells, colors)
		if err != nil {
			return nil, &anim.FrameError{Index: i, Wrapped: err}
		}
		frames = append(frames, f)
	}
	return &anim.Animation{Meta: m, Frames: frames}, nil
}

func (fd FrameDoc) frame(m anim.Meta, cells int, colors bool) (anim.Frame, error) {
	switch fd.Type {
	case "full":
		if len(fd.Rows) != int(m.Rows) {
			return nil, fmt.Errorf("%w: %d rows, want %d", anim.ErrInvalidDimensions, len(fd.Rows), m.Rows)
		}
		g := anim.Grid{Symbols: make([]byte, 0, cells)}
		for _, row := range fd.Rows {
			syms, err := symbols(row)
			if err != nil {
				return nil, err
			}
			if len(syms) != int(m.Cols) {
				return nil, fmt.Errorf("%w: row of %d symbols, want %d", anim.ErrInvalidDimensions, len(syms), m.Cols)
			}
			g.Symbols = append(g.Symbols, syms...)
		}
		if colors {
			rgb, err := base64.StdEncoding.DecodeString(fd.Colors)
			if err != nil {
				return nil, fmt.Errorf("colors: %w", err)
			}
			if len(rgb) != cells*3 {
				return nil, fmt.Errorf("%w: %d color bytes, want %d", anim.ErrTruncatedStream, len(rgb), cells*3)
			}
			g.Colors = rgb
		}
		return &anim.Full{Grid: g}, nil
	case "delta":
		changes := make([]anim.Change, len(fd.Changes))
		for j, cd := range fd.Changes {
			if int(cd.Index) >= cells {
				return nil, fmt.Errorf("%w: %d >= %d", anim.ErrIndexOutOfRange, cd.Index, cells)
			}
			if j > 0 && cd.Index <= changes[j-1].Index {
				return nil, fmt.Errorf("%w: %d after %d", ErrUnorderedDelta, cd.Index, changes[j-1].Index)
			}
			syms, err := symbols(cd.Symbol)
			if err != nil {
				return nil, err
			}
			if len(syms) != 1 {
				return nil, fmt.Errorf("change %d: symbol %q is not a single character", cd.Index, cd.Symbol)
			}
			ch := anim.Change{Index: cd.Index, Symbol: syms[0]}
			if colors {
				c, err := parseHex(cd.Color)
				if err != nil {
					return nil, err
				}
				ch.Color = c
				ch.HasColor = true
			}
			changes[j] = ch
		}
		return &anim.Delta{Changes: changes}, nil
	}
	return nil, fmt.Errorf("%w: %q", anim.ErrUnknownFrame, fd.Type)
}

// symbols maps display text back to symbol bytes. Unlike ramp.Parse it
// accepts any length, including empty.
func symbols(s string) ([]byte, error) {
	out := make([]byte, 0, len(s))
	for _, c := range s {
		b, ok := charmap.CodePage437.EncodeRune(c)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ramp.ErrUnmappableSymbol, c)
		}
		out = append(out, b)
	}
	return out, nil
}

func parseHex(s string) (anim.RGB, error) {
	c, err := colorful.Hex(strings.TrimSpace(s))
	if err != nil {
		return anim.RGB{}, fmt.Errorf("color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return anim.RGB{R: r, G: g, B: b}, nil
}

func MarshalJSON(a *anim.Animation) ([]byte, error) {
	doc, err := ToDocument(a)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(doc, "", "  ")
}

func UnmarshalJSON(data []byte) (*anim.Animation, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: json: %v", anim.ErrUnsupportedFormat, err)
	}
	return doc.Animation()
}

func MarshalYAML(a *anim.Animation) ([]byte, error) {
	doc, err := ToDocument(a)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(doc)
}

func UnmarshalYAML(data []byte) (*anim.Animation, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: yaml: %v", anim.ErrUnsupportedFormat, err)
	}
	return doc.Animation()
}
