package batch

import (
	"fmt"

	"github.com/san-kum/asciimate/internal/anim"
	"github.com/san-kum/asciimate/internal/codec"
	"github.com/san-kum/asciimate/internal/decoder"
	"github.com/san-kum/asciimate/internal/format"
	"github.com/san-kum/asciimate/internal/metrics"
)

// SweepResult is the outcome of re-encoding with one delta threshold.
type SweepResult struct {
	Threshold  float64
	Bytes      int
	Keyframes  int
	DeltaRatio float64
}

// Sweep re-encodes the resolved frames of a with each threshold. The
// frames are resolved once; only the full/delta decisions change.
func Sweep(a *anim.Animation, thresholds []float64) ([]SweepResult, error) {
	grids, err := decoder.Resolve(a)
	if err != nil {
		return nil, err
	}
	results := make([]SweepResult, 0, len(thresholds))
	for _, th := range thresholds {
		if th <= 0 || th > 1 {
			return nil, fmt.Errorf("threshold must be in (0, 1], got %v", th)
		}
		enc := codec.NewEncoder(a.Meta, codec.Policy{Threshold: th})
		for _, g := range grids {
			if _, err := enc.Add(g); err != nil {
				return nil, err
			}
		}
		re := enc.Animation()
		data, err := format.Marshal(re)
		if err != nil {
			return nil, err
		}
		_, m := metrics.Analyze(re)
		results = append(results, SweepResult{
			Threshold:  th,
			Bytes:      len(data),
			Keyframes:  int(m["keyframes"]),
			DeltaRatio: m["delta_ratio"],
		})
	}
	return results, nil
}

// Best returns the smallest encoding; the first wins a tie.
func Best(results []SweepResult) (SweepResult, bool) {
	if len(results) == 0 {
		return SweepResult{}, false
	}
	best := results[0]
	for _, r := range results[1:] {
		if r.Bytes < best.Bytes {
			best = r
		}
	}
	return best, true
}
