// Package ramp holds the symbol alphabets used to represent brightness
// levels and the luminance lookup table that indexes into them.
package ramp

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/san-kum/asciimate/internal/anim"
)

var (
	ErrEmptyRamp        = errors.New("ramp: empty ramp")
	ErrUnmappableSymbol = errors.New("ramp: symbol has no single byte encoding")
)

// Ramp is an ordered alphabet of single byte symbols, darkest first.
// Bytes above 0x7f are Code Page 437 glyphs.
type Ramp []byte

// Parse converts s into a Ramp. Runes outside ASCII are mapped through
// Code Page 437 so block and shade characters stay one byte wide.
func Parse(s string) (Ramp, error) {
	if s == "" {
		return nil, ErrEmptyRamp
	}
	r := make(Ramp, 0, len(s))
	for _, c := range s {
		b, ok := charmap.CodePage437.EncodeRune(c)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnmappableSymbol, c)
		}
		r = append(r, b)
	}
	if len(r) > anim.MaxRampLength {
		return nil, fmt.Errorf("%w: %d symbols", anim.ErrUnsupportedRampLength, len(r))
	}
	return r, nil
}

// MustParse is Parse for package level presets.
func MustParse(s string) Ramp {
	r, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return r
}

// Rune decodes a single symbol byte for display.
func Rune(b byte) rune {
	return charmap.CodePage437.DecodeByte(b)
}

func (r Ramp) String() string {
	var sb strings.Builder
	for _, b := range r {
		sb.WriteRune(Rune(b))
	}
	return sb.String()
}

func (r Ramp) Len() int { return len(r) }

// Symbol returns the symbol for luminance lum under the given table.
func (r Ramp) Symbol(lut *LUT, lum uint8) byte {
	return r[lut[lum]]
}

var presets = map[string]string{
	"standard": " .:-=+*#%@",
	"simple":   " .:+*#@",
	"detailed": " .'`^\",:;Il!i><~+_-?][}{1)(|\\/tfjrxnuvczXYUJCLQ0OZmwqpdbkhao*#MW&8%B@$",
	"blocks":   " ░▒▓█",
	"binary":   " #",
}

// DefaultPreset is the ramp used when none is configured.
const DefaultPreset = "standard"

// Preset returns a named ramp.
func Preset(name string) (Ramp, error) {
	s, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown ramp preset %q (available: %v)", name, PresetNames())
	}
	return Parse(s)
}

// PresetNames lists the preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
