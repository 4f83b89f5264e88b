package format

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/asciimate/internal/anim"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		err  bool
	}{
		{"binary", Binary, false},
		{"ASCI", Binary, false},
		{"json", JSON, false},
		{"yml", YAML, false},
		{"YAML", YAML, false},
		{"toml", Unknown, true},
		{"", Unknown, true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if got != tt.want || (err != nil) != tt.err {
			t.Errorf("ParseFormat(%q) = %v, %v", tt.in, got, err)
		}
		if err != nil && !errors.Is(err, anim.ErrUnsupportedFormat) {
			t.Errorf("ParseFormat(%q) error %v is not ErrUnsupportedFormat", tt.in, err)
		}
	}
}

func TestFormatFromPath(t *testing.T) {
	if f, _ := FormatFromPath("out/clip.asci"); f != Binary {
		t.Errorf("expected binary, got %v", f)
	}
	if f, _ := FormatFromPath("clip.json"); f != JSON {
		t.Errorf("expected json, got %v", f)
	}
	if _, err := FormatFromPath("clip"); !errors.Is(err, anim.ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		data string
		want Format
	}{
		{"ASCI\x01", Binary},
		{"  {\"meta\":{}}", JSON},
		{"meta:\n  cols: 1\n", YAML},
		{"---\nmeta:\n", YAML},
		{"GIF89a", Unknown},
		{"", Unknown},
	}
	for _, tt := range tests {
		if got := Detect([]byte(tt.data)); got != tt.want {
			t.Errorf("Detect(%q) = %v, want %v", tt.data, got, tt.want)
		}
	}
}

func TestDecodeUnsupported(t *testing.T) {
	if _, err := Decode(Unknown, []byte("ASCI")); !errors.Is(err, anim.ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
	if _, err := Encode(Format(42), sampleAnimation(t, anim.Mono)); !errors.Is(err, anim.ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	a := sampleAnimation(t, anim.RGBColor)

	for _, name := range []string{"clip.asci", "clip.json", "clip.yaml"} {
		path := filepath.Join(dir, name)
		if err := Save(path, Unknown, a); err != nil {
			t.Fatalf("Save %s: %v", name, err)
		}
		got, f, err := Load(path)
		if err != nil {
			t.Fatalf("Load %s: %v", name, err)
		}
		want, _ := FormatFromPath(name)
		if f != want {
			t.Errorf("%s loaded as %v", name, f)
		}
		assertSameAnimation(t, a, got)
	}

	// content wins over a misleading extension
	path := filepath.Join(dir, "actually-binary.json")
	if err := Save(path, Binary, a); err != nil {
		t.Fatal(err)
	}
	if _, f, err := Load(path); err != nil || f != Binary {
		t.Errorf("expected binary detection, got %v, %v", f, err)
	}

	if _, _, err := Load(filepath.Join(dir, "missing.asci")); !os.IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}
