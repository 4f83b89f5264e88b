package ramp

import (
	"errors"
	"strings"
	"testing"

	"github.com/san-kum/asciimate/internal/anim"
)

func TestLUTMonotonic(t *testing.T) {
	for _, length := range []int{1, 2, 7, 10, 70, 255} {
		lut := NewLUT(length, false)
		for l := 1; l < 256; l++ {
			if lut[l] < lut[l-1] {
				t.Fatalf("length %d: lut decreases at %d", length, l)
			}
		}
		if int(lut[255]) != length-1 {
			t.Errorf("length %d: expected top index %d, got %d", length, length-1, lut[255])
		}
		if lut[0] != 0 {
			t.Errorf("length %d: expected bottom index 0, got %d", length, lut[0])
		}
	}
}

func TestLUTInvertedMonotonic(t *testing.T) {
	for _, length := range []int{1, 3, 7, 64} {
		lut := NewLUT(length, true)
		for l := 1; l < 256; l++ {
			if lut[l] > lut[l-1] {
				t.Fatalf("length %d: inverted lut increases at %d", length, l)
			}
		}
		if int(lut[0]) != length-1 {
			t.Errorf("length %d: expected index %d for black, got %d", length, length-1, lut[0])
		}
	}
}

func TestLUTMidGray(t *testing.T) {
	lut := NewLUT(7, false)
	if lut.Index(128) != 3 {
		t.Errorf("expected floor(128*7/256)=3, got %d", lut.Index(128))
	}
}

func TestParseASCII(t *testing.T) {
	r, err := Parse(" .:+*#@")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if string(r) != " .:+*#@" {
		t.Errorf("expected ascii passthrough, got %q", string(r))
	}
	if r.String() != " .:+*#@" {
		t.Errorf("expected display round trip, got %q", r.String())
	}
}

func TestParseBlocks(t *testing.T) {
	r, err := Parse(" ░▒▓█")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(r) != 5 {
		t.Fatalf("expected 5 single byte symbols, got %d", len(r))
	}
	if r[4] != 0xdb {
		t.Errorf("expected full block at 0xdb, got %#x", r[4])
	}
	if r.String() != " ░▒▓█" {
		t.Errorf("expected display round trip, got %q", r.String())
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse(""); !errors.Is(err, ErrEmptyRamp) {
		t.Errorf("expected ErrEmptyRamp, got %v", err)
	}
	if _, err := Parse("a😀"); !errors.Is(err, ErrUnmappableSymbol) {
		t.Errorf("expected ErrUnmappableSymbol, got %v", err)
	}
	if _, err := Parse(strings.Repeat("#", 256)); !errors.Is(err, anim.ErrUnsupportedRampLength) {
		t.Errorf("expected ErrUnsupportedRampLength, got %v", err)
	}
}

func TestPresets(t *testing.T) {
	names := PresetNames()
	if len(names) == 0 {
		t.Fatal("expected presets")
	}
	for _, name := range names {
		r, err := Preset(name)
		if err != nil {
			t.Errorf("preset %s: %v", name, err)
			continue
		}
		if r.Len() < 2 {
			t.Errorf("preset %s: expected at least 2 symbols", name)
		}
	}
	if _, err := Preset("nonexistent"); err == nil {
		t.Error("expected error for unknown preset")
	}
}
