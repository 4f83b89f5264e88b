package batch

import (
	"testing"

	"github.com/san-kum/asciimate/internal/anim"
	"github.com/san-kum/asciimate/internal/codec"
)

func shiftingAnimation(t *testing.T) *anim.Animation {
	t.Helper()
	meta := anim.Meta{Version: anim.Version, Cols: 10, Rows: 1, FPS: 4, Ramp: []byte(" #")}
	enc := codec.NewEncoder(meta, codec.DefaultPolicy)
	rows := []string{"          ", "#####     ", "######    ", "          "}
	for _, r := range rows {
		if _, err := enc.Add(anim.Grid{Symbols: []byte(r)}); err != nil {
			t.Fatal(err)
		}
	}
	return enc.Animation()
}

func TestSweepThresholds(t *testing.T) {
	a := shiftingAnimation(t)
	results, err := Sweep(a, []float64{0.1, 1.0})
	if err != nil {
		t.Fatal(err)
	}
	// 0.1 of 10 cells: any change above one cell becomes a keyframe.
	if results[0].Keyframes != 3 {
		t.Errorf("expected 3 keyframes at 0.1, got %d", results[0].Keyframes)
	}
	if results[1].Keyframes != 1 {
		t.Errorf("expected 1 keyframe at 1.0, got %d", results[1].Keyframes)
	}

	best, ok := Best(results)
	if !ok {
		t.Fatal("expected a best result")
	}
	for _, r := range results {
		if r.Bytes < best.Bytes {
			t.Errorf("Best picked %d bytes, %d available", best.Bytes, r.Bytes)
		}
	}
}

func TestSweepRejectsBadThreshold(t *testing.T) {
	if _, err := Sweep(shiftingAnimation(t), []float64{0}); err == nil {
		t.Error("expected error for threshold 0")
	}
	if _, ok := Best(nil); ok {
		t.Error("Best of nothing should report false")
	}
}
