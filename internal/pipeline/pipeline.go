// Package pipeline runs rasters through the converter and frame encoder.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/san-kum/asciimate/internal/anim"
	"github.com/san-kum/asciimate/internal/codec"
	"github.com/san-kum/asciimate/internal/convert"
	"github.com/san-kum/asciimate/internal/logx"
	"github.com/san-kum/asciimate/internal/metrics"
	"github.com/san-kum/asciimate/internal/raster"
)

var ErrNoFrames = errors.New("pipeline: source has no frames")

type Config struct {
	Converter convert.Options
	Policy    codec.Policy
	FPS       int
}

// Observer is told about every encoded record together with the grid it
// was built from. The grid is only valid during the call.
type Observer interface {
	OnFrame(i int, f anim.Frame, g anim.Grid)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(i int, f anim.Frame, g anim.Grid)

func (fn ObserverFunc) OnFrame(i int, f anim.Frame, g anim.Grid) { fn(i, f, g) }

type Result struct {
	Animation *anim.Animation
	Metrics   map[string]float64
	Elapsed   time.Duration
}

type Pipeline struct {
	cfg       Config
	conv      *convert.Converter
	metrics   []metrics.Metric
	observers []Observer
	log       logx.Section
}

func New(cfg Config) (*Pipeline, error) {
	if cfg.FPS < 1 || cfg.FPS > math.MaxUint8 {
		return nil, fmt.Errorf("fps must be between 1 and %d, got %d", math.MaxUint8, cfg.FPS)
	}
	conv, err := convert.New(cfg.Converter)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		cfg:       cfg,
		conv:      conv,
		metrics:   make([]metrics.Metric, 0),
		observers: make([]Observer, 0),
		log:       logx.Discard().Section("pipeline"),
	}, nil
}

func (p *Pipeline) AddMetric(m metrics.Metric)    { p.metrics = append(p.metrics, m) }
func (p *Pipeline) AddObserver(o Observer)        { p.observers = append(p.observers, o) }
func (p *Pipeline) SetLogger(l *logx.Logger)      { p.log = l.Section("pipeline") }
func (p *Pipeline) Converter() *convert.Converter { return p.conv }

// Run converts and encodes every frame of src in order. Any failure stops
// the run; no animation is returned for a partial source.
func (p *Pipeline) Run(ctx context.Context, src raster.Source) (*Result, error) {
	n := src.Len()
	if n == 0 {
		return nil, ErrNoFrames
	}
	if n > math.MaxUint16 {
		return nil, fmt.Errorf("%w: source has %d frames", codec.ErrTooManyFrames, n)
	}

	for _, m := range p.metrics {
		m.Reset()
	}

	opts := p.conv.Options()
	start := time.Now()
	var enc *codec.Encoder
	var cells int

	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		r, err := src.Frame(i)
		if err != nil {
			return nil, &anim.FrameError{Index: i, Wrapped: err}
		}
		g, rows, err := p.conv.Convert(r)
		if err != nil {
			return nil, &anim.FrameError{Index: i, Wrapped: err}
		}

		if enc == nil {
			meta := anim.Meta{
				Version:   anim.Version,
				Cols:      uint16(opts.Cols),
				Rows:      uint16(rows),
				FPS:       uint8(p.cfg.FPS),
				ColorMode: opts.ColorMode,
				Ramp:      append([]byte(nil), opts.Ramp...),
			}
			if opts.ColorMode == anim.PaletteColor {
				meta.Palette = append([]anim.RGB(nil), opts.Palette...)
			}
			enc = codec.NewEncoder(meta, p.cfg.Policy)
			cells = meta.Cells()
			p.log.Infof("%dx%d grid from %dx%d raster, %d frames", opts.Cols, rows, r.Width, r.Height, n)
		}

		f, err := enc.Add(g)
		if err != nil {
			return nil, &anim.FrameError{Index: i, Wrapped: err}
		}
		for _, m := range p.metrics {
			m.Observe(i, f, cells)
		}
		for _, o := range p.observers {
			o.OnFrame(i, f, g)
		}
		p.log.Debugf("frame %d: %s", i, anim.Kind(f))
	}

	a := enc.Animation()
	res := &Result{
		Animation: a,
		Metrics:   metrics.Collect(p.metrics),
		Elapsed:   time.Since(start),
	}
	p.log.Noticef("encoded %d frames in %v", len(a.Frames), res.Elapsed.Round(time.Millisecond))
	return res, nil
}

// Preview converts src live at the configured rate on a worker goroutine,
// handing each finished grid to fn. Frames that arrive while a conversion
// is pending are dropped. It returns the number of dropped frames.
func (p *Pipeline) Preview(ctx context.Context, src raster.Source, fn func(convert.Result)) (uint64, error) {
	n := src.Len()
	if n == 0 {
		return 0, ErrNoFrames
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := convert.NewWorker(p.conv)
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx)
	}()

	var firstErr error
	delivered := make(chan struct{})
	go func() {
		defer close(delivered)
		for res := range w.Results() {
			if res.Err != nil {
				if firstErr == nil {
					firstErr = res.Err
				}
				cancel()
				continue
			}
			fn(res)
		}
	}()

	ticker := time.NewTicker(time.Second / time.Duration(p.cfg.FPS))
	defer ticker.Stop()

loop:
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			break loop
		case <-ticker.C:
		}
		r, err := src.Frame(i)
		if err != nil {
			cancel()
			<-done
			<-delivered
			return w.Dropped(), &anim.FrameError{Index: i, Wrapped: err}
		}
		if !w.Submit(r) {
			p.log.Debugf("dropped frame %d", i)
		}
	}

	// let the last accepted frame finish before shutting the worker down
	for w.Pending() && ctx.Err() == nil {
		time.Sleep(time.Millisecond)
	}
	cancel()
	<-done
	<-delivered
	if firstErr != nil {
		return w.Dropped(), firstErr
	}
	return w.Dropped(), nil
}
