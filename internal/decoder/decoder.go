// Package decoder materialises every frame of an animation so playback
// can seek in constant time.
package decoder

import (
	"fmt"
	"io"

	"github.com/san-kum/asciimate/internal/anim"
	"github.com/san-kum/asciimate/internal/codec"
	"github.com/san-kum/asciimate/internal/format"
)

// Resolved is an animation with every record already applied.
type Resolved struct {
	Meta   anim.Meta
	Frames []anim.Grid
}

func (r *Resolved) Len() int { return len(r.Frames) }

// At returns frame i, clamped to the valid range. It returns an unset grid
// when there are no frames.
func (r *Resolved) At(i int) anim.Grid {
	if len(r.Frames) == 0 {
		return anim.Grid{}
	}
	if i < 0 {
		i = 0
	}
	if i >= len(r.Frames) {
		i = len(r.Frames) - 1
	}
	return r.Frames[i]
}

// Resolve replays the records of a onto one running buffer and keeps a
// copy after each step.
func Resolve(a *anim.Animation) ([]anim.Grid, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	out := make([]anim.Grid, 0, len(a.Frames))
	var buf anim.Grid
	cells := a.Meta.Cells()
	for i, f := range a.Frames {
		if err := codec.ApplyFrame(&buf, f); err != nil {
			return nil, &anim.FrameError{Index: i, Wrapped: err}
		}
		if buf.Len() != cells {
			return nil, &anim.FrameError{Index: i, Wrapped: fmt.Errorf("%w: %d cells, want %d", anim.ErrInvalidDimensions, buf.Len(), cells)}
		}
		out = append(out, buf.Clone())
	}
	return out, nil
}

// ResolveAnimation wraps Resolve with the animation's meta.
func ResolveAnimation(a *anim.Animation) (*Resolved, error) {
	frames, err := Resolve(a)
	if err != nil {
		return nil, err
	}
	return &Resolved{Meta: a.Meta, Frames: frames}, nil
}

// ResolveBytes decodes data in format f and resolves it.
func ResolveBytes(f format.Format, data []byte) (*Resolved, error) {
	a, err := format.Decode(f, data)
	if err != nil {
		return nil, err
	}
	return ResolveAnimation(a)
}

// ResolveReader sniffs the format of the stream before resolving it.
func ResolveReader(r io.Reader) (*Resolved, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ResolveBytes(format.Detect(data), data)
}

// ResolveFile loads and resolves an animation file of any format.
func ResolveFile(path string) (*Resolved, error) {
	a, _, err := format.Load(path)
	if err != nil {
		return nil, err
	}
	return ResolveAnimation(a)
}
