package export

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/asciimate/internal/anim"
	"github.com/san-kum/asciimate/internal/decoder"
)

func resolved(t *testing.T, mode anim.ColorMode) *decoder.Resolved {
	t.Helper()
	full := anim.Grid{Symbols: []byte{'<', '&', 0xdb, ' '}}
	if mode.HasColor() {
		full.Colors = []byte{255, 0, 0, 255, 0, 0, 0, 255, 0, 0, 255, 0}
	}
	a := &anim.Animation{
		Meta: anim.Meta{Version: anim.Version, Cols: 2, Rows: 2, FPS: 5, FrameCount: 2, ColorMode: mode, Ramp: []byte{' ', '&', '<', 0xdb}},
		Frames: []anim.Frame{
			&anim.Full{Grid: full},
			&anim.Delta{Changes: []anim.Change{{Index: 3, Symbol: '&', HasColor: mode.HasColor()}}},
		},
	}
	if mode == anim.PaletteColor {
		a.Meta.Palette = []anim.RGB{{R: 255}, {G: 255}}
	}
	res, err := decoder.ResolveAnimation(a)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	return res
}

func TestGridToText(t *testing.T) {
	res := resolved(t, anim.Mono)
	got := GridToText(res.Frames[0], res.Meta)
	if got != "<&\n█ \n" {
		t.Errorf("unexpected text %q", got)
	}
}

func TestWriteTextSeparatesFrames(t *testing.T) {
	res := resolved(t, anim.Mono)
	var buf bytes.Buffer
	if err := WriteText(&buf, res); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "<&\n█ \n\f\n<&\n█&\n" {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestGridToSVGEscapes(t *testing.T) {
	res := resolved(t, anim.Mono)
	svg := GridToSVG(res.Frames[0], res.Meta, SVGOptions{})
	if !strings.Contains(svg, "&lt;&amp;") {
		t.Errorf("symbols not escaped:\n%s", svg)
	}
	if strings.Count(svg, "<text") != 2 {
		t.Errorf("expected one text element per row:\n%s", svg)
	}
	if !strings.Contains(svg, `width="16" height="32"`) {
		t.Errorf("default cell size not applied:\n%s", svg)
	}
}

func TestGridToSVGColorRuns(t *testing.T) {
	res := resolved(t, anim.RGBColor)
	svg := GridToSVG(res.Frames[0], res.Meta, DefaultSVGOptions)
	if strings.Count(svg, "<tspan") != 2 {
		t.Errorf("expected one tspan per row run:\n%s", svg)
	}
	if !strings.Contains(svg, `fill="#ff0000"`) || !strings.Contains(svg, `fill="#00ff00"`) {
		t.Errorf("cell colours missing:\n%s", svg)
	}
}

func TestFrameOutOfRange(t *testing.T) {
	res := resolved(t, anim.Mono)
	if _, err := Frame(res, 2); !errors.Is(err, anim.ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}
	if _, err := Frame(res, -1); !errors.Is(err, anim.ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestSaveFrame(t *testing.T) {
	res := resolved(t, anim.Mono)
	dir := t.TempDir()

	txt := filepath.Join(dir, "f.txt")
	if err := SaveFrame(txt, res, 1, false, SVGOptions{}); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(txt)
	if string(data) != "<&\n█&\n" {
		t.Errorf("unexpected text file %q", data)
	}

	svg := filepath.Join(dir, "f.svg")
	if err := SaveFrame(svg, res, 0, true, SVGOptions{}); err != nil {
		t.Fatal(err)
	}
	data, _ = os.ReadFile(svg)
	if !strings.HasPrefix(string(data), "<?xml") {
		t.Error("expected svg document")
	}
}

func TestSeriesToSVG(t *testing.T) {
	if SeriesToSVG([]float64{1}, 100, 50, "#fff") != "" {
		t.Error("single value should produce nothing")
	}
	svg := SeriesToSVG([]float64{0, 4, 2}, 100, 50, "#fff")
	if strings.Count(svg, " L") != 2 {
		t.Errorf("expected two line segments:\n%s", svg)
	}
}
