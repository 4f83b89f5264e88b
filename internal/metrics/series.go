package metrics

import (
	"github.com/san-kum/asciimate/internal/anim"
	"github.com/san-kum/asciimate/internal/format"
)

// Series keeps per-record numbers for plotting.
type Series struct {
	Sizes   []float64
	Changes []float64
	Kinds   []string
	colors  bool
}

func NewSeries(colors bool) *Series { return &Series{colors: colors} }

func (s *Series) Observe(_ int, f anim.Frame, cells int) {
	s.Sizes = append(s.Sizes, float64(format.RecordSize(f, cells, s.colors)))
	s.Kinds = append(s.Kinds, anim.Kind(f))
	switch fr := f.(type) {
	case *anim.Full:
		s.Changes = append(s.Changes, float64(cells))
	case *anim.Delta:
		s.Changes = append(s.Changes, float64(len(fr.Changes)))
	}
}

func (s *Series) Len() int { return len(s.Sizes) }

// TotalBytes is the size of all records, excluding the header.
func (s *Series) TotalBytes() int {
	n := 0.0
	for _, v := range s.Sizes {
		n += v
	}
	return int(n)
}

// Analyze runs the default metrics and a series over an existing animation.
func Analyze(a *anim.Animation) (*Series, map[string]float64) {
	colors := a.Meta.ColorMode.HasColor()
	cells := a.Meta.Cells()
	ms := Default(colors)
	s := NewSeries(colors)
	for i, f := range a.Frames {
		for _, m := range ms {
			m.Observe(i, f, cells)
		}
		s.Observe(i, f, cells)
	}
	return s, Collect(ms)
}
