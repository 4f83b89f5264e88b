// Package codec decides between full and delta frame records and replays
// them onto a running grid.
package codec

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/asciimate/internal/anim"
)

// DefaultThreshold is the fraction of changed cells above which a delta
// is discarded in favour of a full frame.
const DefaultThreshold = 0.4

var ErrTooManyFrames = errors.New("codec: too many frames")

// Policy controls the full/delta decision.
type Policy struct {
	Threshold float64
}

var DefaultPolicy = Policy{Threshold: DefaultThreshold}

// MakeFrame builds a record for curr using DefaultPolicy.
func MakeFrame(prev *anim.Grid, curr anim.Grid, includeColors bool) anim.Frame {
	return DefaultPolicy.MakeFrame(prev, curr, includeColors)
}

// MakeFrame compares curr against prev in row-major order. A nil or
// differently sized prev, or too many changed cells, yields a Full frame
// holding a copy of curr; otherwise a Delta with the changed cells.
func (p Policy) MakeFrame(prev *anim.Grid, curr anim.Grid, includeColors bool) anim.Frame {
	if prev == nil || !prev.IsSet() || prev.Len() != curr.Len() {
		return full(curr, includeColors)
	}
	colors := includeColors && curr.Colors != nil
	if colors && len(prev.Colors) != len(curr.Colors) {
		return full(curr, includeColors)
	}

	limit := p.Threshold * float64(curr.Len())
	changes := make([]anim.Change, 0)
	for i := range curr.Symbols {
		changed := prev.Symbols[i] != curr.Symbols[i]
		if colors && !changed {
			o := i * 3
			changed = prev.Colors[o] != curr.Colors[o] ||
				prev.Colors[o+1] != curr.Colors[o+1] ||
				prev.Colors[o+2] != curr.Colors[o+2]
		}
		if !changed {
			continue
		}
		c := anim.Change{Index: uint32(i), Symbol: curr.Symbols[i]}
		if colors {
			c.Color = curr.Color(i)
			c.HasColor = true
		}
		changes = append(changes, c)
		if float64(len(changes)) > limit {
			return full(curr, includeColors)
		}
	}
	return &anim.Delta{Changes: changes}
}

func full(g anim.Grid, includeColors bool) *anim.Full {
	c := g.Clone()
	if !includeColors {
		c.Colors = nil
	}
	return &anim.Full{Grid: c}
}

// ApplyFrame replays f onto buf. Full frames replace buf with a copy;
// deltas write each change in place.
func ApplyFrame(buf *anim.Grid, f anim.Frame) error {
	switch fr := f.(type) {
	case *anim.Full:
		*buf = fr.Grid.Clone()
		return nil
	case *anim.Delta:
		if !buf.IsSet() {
			return anim.ErrNoKeyframe
		}
		n := buf.Len()
		for _, c := range fr.Changes {
			i := int(c.Index)
			if i >= n {
				return fmt.Errorf("%w: %d >= %d", anim.ErrIndexOutOfRange, c.Index, n)
			}
			buf.Symbols[i] = c.Symbol
			if c.HasColor && buf.Colors != nil {
				buf.Colors[i*3] = c.Color.R
				buf.Colors[i*3+1] = c.Color.G
				buf.Colors[i*3+2] = c.Color.B
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: %T", anim.ErrUnknownFrame, f)
	}
}

// Encoder turns a sequence of grids into an Animation. Each grid is
// compared with the state obtained by replaying the records so far.
type Encoder struct {
	meta   anim.Meta
	policy Policy
	frames []anim.Frame
	state  anim.Grid
}

func NewEncoder(meta anim.Meta, policy Policy) *Encoder {
	if policy.Threshold <= 0 {
		policy.Threshold = DefaultThreshold
	}
	return &Encoder{meta: meta, policy: policy}
}

// Add encodes the next grid and returns the record it produced.
func (e *Encoder) Add(g anim.Grid) (anim.Frame, error) {
	if len(e.frames) >= math.MaxUint16 {
		return nil, fmt.Errorf("%w: limit is %d", ErrTooManyFrames, math.MaxUint16)
	}
	if cells := e.meta.Cells(); cells > 0 && g.Len() != cells {
		return nil, fmt.Errorf("%w: grid has %d cells, want %d", anim.ErrInvalidDimensions, g.Len(), cells)
	}
	colors := e.meta.ColorMode.HasColor()
	if colors && len(g.Colors) != g.Len()*3 {
		return nil, fmt.Errorf("%w: color grid has %d bytes, want %d", anim.ErrInvalidDimensions, len(g.Colors), g.Len()*3)
	}
	if !colors {
		g = anim.Grid{Symbols: g.Symbols}
	}

	var prev *anim.Grid
	if e.state.IsSet() {
		prev = &e.state
	}
	f := e.policy.MakeFrame(prev, g, colors)
	if err := ApplyFrame(&e.state, f); err != nil {
		return nil, &anim.FrameError{Index: len(e.frames), Wrapped: err}
	}
	e.frames = append(e.frames, f)
	return f, nil
}

func (e *Encoder) Len() int { return len(e.frames) }

// Animation finalises the records collected so far.
func (e *Encoder) Animation() *anim.Animation {
	m := e.meta
	m.FrameCount = uint16(len(e.frames))
	if m.Version == 0 {
		m.Version = anim.Version
	}
	frames := make([]anim.Frame, len(e.frames))
	copy(frames, e.frames)
	return &anim.Animation{Meta: m, Frames: frames}
}
