package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/asciimate/internal/anim"
)

func sample() *anim.Animation {
	return &anim.Animation{
		Meta: anim.Meta{Cols: 5, Rows: 2, FPS: 10, FrameCount: 4, Ramp: []byte(" #")},
		Frames: []anim.Frame{
			&anim.Full{Grid: anim.Grid{Symbols: make([]byte, 10)}},
			&anim.Delta{Changes: []anim.Change{{Index: 1}, {Index: 2}}},
			&anim.Delta{},
			&anim.Full{Grid: anim.Grid{Symbols: make([]byte, 10)}},
		},
	}
}

func TestDefaultMetrics(t *testing.T) {
	_, values := Analyze(sample())

	tests := []struct {
		name string
		want float64
	}{
		{"delta_ratio", 0.5},
		{"change_density", 0.1},
		{"keyframes", 2},
		{"compression", (11.0 + 6 + 2 + 11) / 44},
	}
	for _, tt := range tests {
		if got := values[tt.name]; math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s = %f, want %f", tt.name, got, tt.want)
		}
	}
}

func TestMetricReset(t *testing.T) {
	for _, m := range Default(false) {
		m.Observe(0, &anim.Delta{Changes: []anim.Change{{Index: 0}}}, 4)
		m.Reset()
		if m.Value() != 0 {
			t.Errorf("%s not reset: %f", m.Name(), m.Value())
		}
	}
}

func TestSeries(t *testing.T) {
	s, _ := Analyze(sample())
	if s.Len() != 4 {
		t.Fatalf("expected 4 entries, got %d", s.Len())
	}
	wantChanges := []float64{10, 2, 0, 10}
	for i, w := range wantChanges {
		if s.Changes[i] != w {
			t.Errorf("changes[%d] = %f, want %f", i, s.Changes[i], w)
		}
	}
	if s.Kinds[2] != "delta" || s.TotalBytes() != 30 {
		t.Errorf("unexpected series %+v total=%d", s.Kinds, s.TotalBytes())
	}
}
