// Package metrics observes frame records as they are encoded.
package metrics

import (
	"github.com/san-kum/asciimate/internal/anim"
	"github.com/san-kum/asciimate/internal/format"
)

// Metric accumulates a single number over an encode run.
type Metric interface {
	Name() string
	Observe(i int, f anim.Frame, cells int)
	Value() float64
	Reset()
}

// DeltaRatio is the fraction of records stored as deltas.
type DeltaRatio struct {
	deltas, total int
}

func NewDeltaRatio() *DeltaRatio { return &DeltaRatio{} }

func (d *DeltaRatio) Name() string { return "delta_ratio" }

func (d *DeltaRatio) Observe(_ int, f anim.Frame, _ int) {
	if _, ok := f.(*anim.Delta); ok {
		d.deltas++
	}
	d.total++
}

func (d *DeltaRatio) Value() float64 {
	if d.total == 0 {
		return 0
	}
	return float64(d.deltas) / float64(d.total)
}

func (d *DeltaRatio) Reset() { d.deltas, d.total = 0, 0 }

// ChangeDensity is the mean fraction of cells touched per delta record.
type ChangeDensity struct {
	sum     float64
	samples int
}

func NewChangeDensity() *ChangeDensity { return &ChangeDensity{} }

func (c *ChangeDensity) Name() string { return "change_density" }

func (c *ChangeDensity) Observe(_ int, f anim.Frame, cells int) {
	d, ok := f.(*anim.Delta)
	if !ok || cells == 0 {
		return
	}
	c.sum += float64(len(d.Changes)) / float64(cells)
	c.samples++
}

func (c *ChangeDensity) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ChangeDensity) Reset() { c.sum, c.samples = 0, 0 }

// Keyframes counts full records.
type Keyframes struct {
	n int
}

func NewKeyframes() *Keyframes { return &Keyframes{} }

func (k *Keyframes) Name() string { return "keyframes" }

func (k *Keyframes) Observe(_ int, f anim.Frame, _ int) {
	if _, ok := f.(*anim.Full); ok {
		k.n++
	}
}

func (k *Keyframes) Value() float64 { return float64(k.n) }

func (k *Keyframes) Reset() { k.n = 0 }

// Compression compares the encoded size with storing every frame in full.
// A value of 0.25 means the records take a quarter of the raw size.
type Compression struct {
	colors       bool
	encoded      int
	uncompressed int
}

func NewCompression(colors bool) *Compression { return &Compression{colors: colors} }

func (c *Compression) Name() string { return "compression" }

func (c *Compression) Observe(_ int, f anim.Frame, cells int) {
	c.encoded += format.RecordSize(f, cells, c.colors)
	c.uncompressed += format.RecordSize(&anim.Full{}, cells, c.colors)
}

func (c *Compression) Value() float64 {
	if c.uncompressed == 0 {
		return 0
	}
	return float64(c.encoded) / float64(c.uncompressed)
}

func (c *Compression) Reset() { c.encoded, c.uncompressed = 0, 0 }

// Default returns the metrics recorded for every encode.
func Default(colors bool) []Metric {
	return []Metric{NewDeltaRatio(), NewChangeDensity(), NewKeyframes(), NewCompression(colors)}
}

// Collect reads every metric into a map keyed by name.
func Collect(ms []Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}
