package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/asciimate/internal/anim"
	"github.com/san-kum/asciimate/internal/codec"
	"github.com/san-kum/asciimate/internal/convert"
	"github.com/san-kum/asciimate/internal/decoder"
	"github.com/san-kum/asciimate/internal/metrics"
	"github.com/san-kum/asciimate/internal/ramp"
	"github.com/san-kum/asciimate/internal/raster"
)

func testConfig(mode anim.ColorMode) Config {
	return Config{
		Converter: convert.Options{Cols: 16, Ramp: ramp.MustParse(" .:-=+*#%@"), ColorMode: mode},
		Policy:    codec.DefaultPolicy,
		FPS:       10,
	}
}

func TestRunEncodesEveryFrame(t *testing.T) {
	src, err := raster.NewSynthetic("sweep", 64, 48, 6)
	if err != nil {
		t.Fatal(err)
	}
	p, err := New(testConfig(anim.RGBColor))
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range metrics.Default(true) {
		p.AddMetric(m)
	}
	var seen []anim.Grid
	p.AddObserver(ObserverFunc(func(i int, f anim.Frame, g anim.Grid) {
		seen = append(seen, g.Clone())
	}))

	res, err := p.Run(context.Background(), src)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	a := res.Animation
	if a.Meta.FrameCount != 6 || a.Meta.Cols != 16 || a.Meta.FPS != 10 {
		t.Errorf("unexpected meta %+v", a.Meta)
	}
	if _, ok := a.Frames[0].(*anim.Full); !ok {
		t.Errorf("first record is %T", a.Frames[0])
	}
	if _, ok := res.Metrics["delta_ratio"]; !ok {
		t.Error("metrics not collected")
	}

	frames, err := decoder.Resolve(a)
	if err != nil {
		t.Fatal(err)
	}
	for i := range frames {
		if !frames[i].Equal(seen[i]) {
			t.Errorf("frame %d: resolved grid differs from converted grid", i)
		}
	}
}

func TestRunStaticSourceUsesEmptyDeltas(t *testing.T) {
	src, _ := raster.NewSynthetic("static", 32, 32, 4)
	p, err := New(testConfig(anim.Mono))
	if err != nil {
		t.Fatal(err)
	}
	res, err := p.Run(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}
	for i, f := range res.Animation.Frames[1:] {
		d, ok := f.(*anim.Delta)
		if !ok || len(d.Changes) != 0 {
			t.Errorf("frame %d: expected empty delta, got %#v", i+1, f)
		}
	}
}

type failingSource struct{ at int }

func (f failingSource) Len() int { return 5 }

func (f failingSource) Frame(i int) (raster.Raster, error) {
	if i == f.at {
		return raster.Raster{Width: 0, Height: 0}, nil
	}
	r := raster.New(16, 16)
	return r, nil
}

func TestRunConversionFailureIsFatal(t *testing.T) {
	p, _ := New(testConfig(anim.Mono))
	res, err := p.Run(context.Background(), failingSource{at: 2})
	if !errors.Is(err, anim.ErrInvalidDimensions) {
		t.Fatalf("expected ErrInvalidDimensions, got %v", err)
	}
	var fe *anim.FrameError
	if !errors.As(err, &fe) || fe.Index != 2 {
		t.Errorf("expected failure at frame 2, got %v", err)
	}
	if res != nil {
		t.Error("expected no partial result")
	}
}

func TestRunGeometryChangeIsFatal(t *testing.T) {
	src := raster.Frames{raster.New(32, 32), raster.New(32, 64)}
	p, _ := New(testConfig(anim.Mono))
	if _, err := p.Run(context.Background(), src); !errors.Is(err, anim.ErrInvalidDimensions) {
		t.Errorf("expected ErrInvalidDimensions, got %v", err)
	}
}

func TestRunCancelled(t *testing.T) {
	src, _ := raster.NewSynthetic("pulse", 32, 32, 3)
	p, _ := New(testConfig(anim.Mono))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Run(ctx, src); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRunEmptySource(t *testing.T) {
	p, _ := New(testConfig(anim.Mono))
	if _, err := p.Run(context.Background(), raster.Frames{}); !errors.Is(err, ErrNoFrames) {
		t.Errorf("expected ErrNoFrames, got %v", err)
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := testConfig(anim.Mono)
	cfg.FPS = 0
	if _, err := New(cfg); err == nil {
		t.Error("expected error for zero fps")
	}
	cfg = testConfig(anim.Mono)
	cfg.Converter.Cols = 0
	if _, err := New(cfg); !errors.Is(err, anim.ErrInvalidDimensions) {
		t.Errorf("expected ErrInvalidDimensions, got %v", err)
	}
}

func TestPreviewDeliversOwnedGrids(t *testing.T) {
	src, _ := raster.NewSynthetic("orbit", 32, 32, 5)
	cfg := testConfig(anim.RGBColor)
	cfg.FPS = 50
	p, _ := New(cfg)

	var got []convert.Result
	dropped, err := p.Preview(context.Background(), src, func(r convert.Result) {
		got = append(got, r)
	})
	if err != nil {
		t.Fatal(err)
	}
	if uint64(len(got))+dropped != 5 {
		t.Errorf("delivered %d + dropped %d != 5", len(got), dropped)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Seq <= got[i-1].Seq {
			t.Errorf("results out of order: %d after %d", got[i].Seq, got[i-1].Seq)
		}
	}
}
