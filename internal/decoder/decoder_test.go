package decoder

import (
	"bytes"
	"errors"
	"testing"

	"github.com/san-kum/asciimate/internal/anim"
	"github.com/san-kum/asciimate/internal/codec"
	"github.com/san-kum/asciimate/internal/format"
)

func encode(t *testing.T, mode anim.ColorMode, grids ...anim.Grid) *anim.Animation {
	t.Helper()
	enc := codec.NewEncoder(anim.Meta{Cols: 3, Rows: 1, FPS: 10, ColorMode: mode, Ramp: []byte(" .#")}, codec.DefaultPolicy)
	for _, g := range grids {
		if _, err := enc.Add(g); err != nil {
			t.Fatal(err)
		}
	}
	return enc.Animation()
}

func TestResolveReproducesInputs(t *testing.T) {
	grids := []anim.Grid{
		{Symbols: []byte("..."), Colors: []byte{1, 1, 1, 2, 2, 2, 3, 3, 3}},
		{Symbols: []byte("..#"), Colors: []byte{1, 1, 1, 2, 2, 2, 3, 3, 3}},
		{Symbols: []byte("..#"), Colors: []byte{1, 1, 1, 9, 2, 2, 3, 3, 3}},
		{Symbols: []byte("###"), Colors: []byte{0, 0, 0, 0, 0, 0, 0, 0, 0}},
	}
	a := encode(t, anim.RGBColor, grids...)

	frames, err := Resolve(a)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(frames) != len(grids) {
		t.Fatalf("expected %d frames, got %d", len(grids), len(frames))
	}
	for i := range grids {
		if !frames[i].Equal(grids[i]) {
			t.Errorf("frame %d: got %q %v, want %q %v", i, frames[i].Symbols, frames[i].Colors, grids[i].Symbols, grids[i].Colors)
		}
	}
}

func TestResolveSnapshotsAreIndependent(t *testing.T) {
	a := encode(t, anim.Mono,
		anim.Grid{Symbols: []byte("   ")},
		anim.Grid{Symbols: []byte(" . ")},
	)
	frames, err := Resolve(a)
	if err != nil {
		t.Fatal(err)
	}
	frames[1].Symbols[0] = 'X'
	if frames[0].Symbols[0] != ' ' {
		t.Error("resolved frames share storage")
	}
}

func TestResolveBinaryMatchesInMemory(t *testing.T) {
	a := encode(t, anim.RGBColor,
		anim.Grid{Symbols: []byte("..."), Colors: make([]byte, 9)},
		anim.Grid{Symbols: []byte(".#."), Colors: make([]byte, 9)},
	)
	direct, err := ResolveAnimation(a)
	if err != nil {
		t.Fatal(err)
	}

	data, err := format.Marshal(a)
	if err != nil {
		t.Fatal(err)
	}
	viaBytes, err := ResolveBytes(format.Binary, data)
	if err != nil {
		t.Fatal(err)
	}
	viaReader, err := ResolveReader(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < direct.Len(); i++ {
		if !direct.At(i).Equal(viaBytes.At(i)) || !direct.At(i).Equal(viaReader.At(i)) {
			t.Errorf("frame %d differs after serialization", i)
		}
	}
}

func TestResolveErrors(t *testing.T) {
	a := &anim.Animation{
		Meta:   anim.Meta{Cols: 2, Rows: 1, FrameCount: 1, Ramp: []byte("#")},
		Frames: []anim.Frame{&anim.Delta{}},
	}
	_, err := Resolve(a)
	if !errors.Is(err, anim.ErrNoKeyframe) {
		t.Errorf("expected ErrNoKeyframe, got %v", err)
	}
	var fe *anim.FrameError
	if !errors.As(err, &fe) || fe.Index != 0 {
		t.Errorf("expected FrameError at 0, got %v", err)
	}

	a.Meta.FrameCount = 2
	if _, err := Resolve(a); !errors.Is(err, anim.ErrFrameCountMismatch) {
		t.Errorf("expected ErrFrameCountMismatch, got %v", err)
	}

	if _, err := ResolveBytes(format.Unknown, nil); !errors.Is(err, anim.ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
	if _, err := ResolveReader(bytes.NewReader([]byte("ASCI"))); !errors.Is(err, anim.ErrTruncatedStream) {
		t.Errorf("expected ErrTruncatedStream, got %v", err)
	}
}

func TestResolvedAtClamps(t *testing.T) {
	r := &Resolved{Frames: []anim.Grid{{Symbols: []byte("a")}, {Symbols: []byte("b")}}}
	if r.At(-3).Symbols[0] != 'a' || r.At(9).Symbols[0] != 'b' {
		t.Error("At does not clamp")
	}
	if (&Resolved{}).At(0).IsSet() {
		t.Error("empty Resolved should return an unset grid")
	}
}
