package convert

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/san-kum/asciimate/internal/anim"
	"github.com/san-kum/asciimate/internal/ramp"
	"github.com/san-kum/asciimate/internal/raster"
)

func newConverter(t *testing.T, opts Options) *Converter {
	t.Helper()
	c, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestConvertMidGray(t *testing.T) {
	c := newConverter(t, Options{Cols: 4, Ramp: ramp.MustParse(" .:+*#@"), ColorMode: anim.RGBColor})

	r := raster.New(80, 80)
	r.Fill(anim.RGB{R: 128, G: 128, B: 128})

	g, rows, err := c.Convert(r)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if rows != 2 {
		t.Fatalf("expected 2 rows, got %d", rows)
	}
	if g.Len() != 8 {
		t.Fatalf("expected 8 cells, got %d", g.Len())
	}
	for i, s := range g.Symbols {
		if s != '+' {
			t.Errorf("cell %d: expected '+', got %q", i, s)
		}
		if got := g.Color(i); got != (anim.RGB{R: 128, G: 128, B: 128}) {
			t.Errorf("cell %d: expected mid gray, got %v", i, got)
		}
	}
}

func TestConvertMonoDropsColors(t *testing.T) {
	c := newConverter(t, Options{Cols: 4, Ramp: ramp.MustParse(" #")})
	r := raster.New(8, 8)
	r.Fill(anim.RGB{R: 255, G: 255, B: 255})

	g, _, err := c.Convert(r)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if g.Colors != nil {
		t.Error("mono grid should carry no colors")
	}
	for _, s := range g.Symbols {
		if s != '#' {
			t.Errorf("expected '#', got %q", s)
		}
	}
}

func TestConvertInvert(t *testing.T) {
	c := newConverter(t, Options{Cols: 2, Ramp: ramp.MustParse(" #")})
	r := raster.New(4, 4)
	r.Fill(anim.RGB{})

	g, _, _ := c.Convert(r)
	if g.Symbols[0] != ' ' {
		t.Errorf("black should map to ' ', got %q", g.Symbols[0])
	}

	c.SetInvert(true)
	g, _, _ = c.Convert(r)
	if g.Symbols[0] != '#' {
		t.Errorf("inverted black should map to '#', got %q", g.Symbols[0])
	}
}

func TestConvertDeterministic(t *testing.T) {
	src, err := raster.NewSynthetic("orbit", 97, 61, 4)
	if err != nil {
		t.Fatal(err)
	}
	r, err := src.Frame(2)
	if err != nil {
		t.Fatal(err)
	}

	opts := Options{Cols: 23, Ramp: ramp.MustParse(" .:-=+*#%@"), ColorMode: anim.RGBColor}
	a := newConverter(t, opts)
	b := newConverter(t, opts)

	ga, rowsA, err := a.Convert(r)
	if err != nil {
		t.Fatal(err)
	}
	ga = ga.Clone()
	gb, rowsB, err := b.Convert(r)
	if err != nil {
		t.Fatal(err)
	}
	if rowsA != rowsB || !ga.Equal(gb) {
		t.Error("identical inputs produced different grids")
	}

	// Same converter, second call lands in the other arena buffer.
	gc, _, _ := a.Convert(r)
	if !ga.Equal(gc) {
		t.Error("repeated conversion differs")
	}
}

func TestConvertStepSampling(t *testing.T) {
	tests := []struct {
		area float64
		want int
	}{
		{1, 1},
		{63.9, 1},
		{64, 2},
		{255, 2},
		{256, 4},
		{10000, 4},
	}
	for _, tt := range tests {
		if got := DefaultStepThresholds.Step(tt.area); got != tt.want {
			t.Errorf("Step(%v) = %d, want %d", tt.area, got, tt.want)
		}
	}
}

func TestConvertPalette(t *testing.T) {
	pal := []anim.RGB{{R: 0, G: 0, B: 0}, {R: 255, G: 0, B: 0}, {R: 255, G: 255, B: 255}}
	c := newConverter(t, Options{
		Cols:      2,
		Ramp:      ramp.MustParse(" .:+*#@"),
		ColorMode: anim.PaletteColor,
		Palette:   pal,
	})
	r := raster.New(4, 4)
	r.Fill(anim.RGB{R: 220, G: 30, B: 20})

	g, _, err := c.Convert(r)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < g.Len(); i++ {
		if got := g.Color(i); got != pal[1] {
			t.Errorf("cell %d: expected %v, got %v", i, pal[1], got)
		}
	}
}

func TestConvertErrors(t *testing.T) {
	if _, err := New(Options{Cols: 0, Ramp: ramp.MustParse(" #")}); !errors.Is(err, anim.ErrInvalidDimensions) {
		t.Errorf("cols=0: expected ErrInvalidDimensions, got %v", err)
	}
	if _, err := New(Options{Cols: 4}); !errors.Is(err, ramp.ErrEmptyRamp) {
		t.Errorf("empty ramp: expected ErrEmptyRamp, got %v", err)
	}
	if _, err := New(Options{Cols: 4, Ramp: ramp.MustParse(" #"), ColorMode: anim.PaletteColor}); err == nil {
		t.Error("palette mode without palette should fail")
	}

	c := newConverter(t, Options{Cols: 4, Ramp: ramp.MustParse(" #")})
	if _, _, err := c.Convert(raster.Raster{}); !errors.Is(err, anim.ErrInvalidDimensions) {
		t.Errorf("empty raster: expected ErrInvalidDimensions, got %v", err)
	}
	short := raster.Raster{Width: 4, Height: 4, Pix: make([]byte, 10)}
	if _, _, err := c.Convert(short); !errors.Is(err, anim.ErrInvalidDimensions) {
		t.Errorf("short buffer: expected ErrInvalidDimensions, got %v", err)
	}

	// a 100x10 raster at 10 cols gives 10x20 cells: no full row fits
	wide := newConverter(t, Options{Cols: 10, Ramp: ramp.MustParse(" #")})
	if _, rows, err := wide.Convert(raster.New(100, 10)); !errors.Is(err, anim.ErrInvalidDimensions) {
		t.Errorf("wide short raster: expected ErrInvalidDimensions, got rows=%d err=%v", rows, err)
	}
	if _, err := wide.Rows(100, 20); err != nil {
		t.Errorf("exactly one row: %v", err)
	}
}

func TestConvertMoreColsThanPixels(t *testing.T) {
	c := newConverter(t, Options{Cols: 10, Ramp: ramp.MustParse(" #")})
	r := raster.New(3, 3)
	r.Fill(anim.RGB{R: 255, G: 255, B: 255})

	g, rows, err := c.Convert(r)
	if err != nil {
		t.Fatal(err)
	}
	if g.Len() != 10*rows {
		t.Fatalf("expected %d cells, got %d", 10*rows, g.Len())
	}
	for i, s := range g.Symbols {
		if s != '#' {
			t.Errorf("cell %d: expected '#', got %q", i, s)
		}
	}
}

func TestArenaReuse(t *testing.T) {
	c := newConverter(t, Options{Cols: 8, Ramp: ramp.MustParse(" #")})
	r := raster.New(32, 32)
	for i := 0; i < 5; i++ {
		if _, _, err := c.Convert(r); err != nil {
			t.Fatal(err)
		}
	}
	if got := c.arena.Allocs(); got != 1 {
		t.Errorf("expected 1 allocation for a fixed geometry, got %d", got)
	}

	if _, _, err := c.Convert(raster.New(64, 32)); err != nil {
		t.Fatal(err)
	}
	if got := c.arena.Allocs(); got != 2 {
		t.Errorf("expected reallocation on geometry change, got %d", got)
	}
}

func TestArenaPreviousGridSurvives(t *testing.T) {
	c := newConverter(t, Options{Cols: 2, Ramp: ramp.MustParse(" #")})
	white := raster.New(4, 4)
	white.Fill(anim.RGB{R: 255, G: 255, B: 255})
	black := raster.New(4, 4)

	first, _, _ := c.Convert(white)
	_, _, _ = c.Convert(black)
	if first.Symbols[0] != '#' {
		t.Error("previous grid was overwritten by the next call")
	}
}

func TestWorkerDropsWhileBusy(t *testing.T) {
	c := newConverter(t, Options{Cols: 4, Ramp: ramp.MustParse(" #")})
	w := NewWorker(c)

	r := raster.New(16, 16)
	if !w.Submit(r) {
		t.Fatal("first submit should be accepted")
	}
	// Run has not started, so the first job is still pending.
	if w.Submit(r) {
		t.Fatal("second submit should be dropped")
	}
	if w.Dropped() != 1 {
		t.Errorf("expected 1 dropped frame, got %d", w.Dropped())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	select {
	case res := <-w.Results():
		if res.Err != nil {
			t.Fatalf("unexpected error: %v", res.Err)
		}
		if res.Seq != 1 || res.Grid.Len() != 4*res.Rows {
			t.Errorf("unexpected result: seq=%d len=%d rows=%d", res.Seq, res.Grid.Len(), res.Rows)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for result")
	}

	if !w.Submit(r) {
		t.Error("submit after the result was delivered should be accepted")
	}
}
