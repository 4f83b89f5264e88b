// Package format reads and writes animations: the compact binary stream
// and the structured JSON and YAML forms used for tooling.
package format

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/san-kum/asciimate/internal/anim"
)

type Format int

const (
	Unknown Format = iota
	Binary
	JSON
	YAML
)

func (f Format) String() string {
	switch f {
	case Binary:
		return "binary"
	case JSON:
		return "json"
	case YAML:
		return "yaml"
	}
	return "unknown"
}

// Ext returns the conventional file extension, including the dot.
func (f Format) Ext() string {
	switch f {
	case Binary:
		return ".asci"
	case JSON:
		return ".json"
	case YAML:
		return ".yaml"
	}
	return ""
}

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "binary", "bin", "asci":
		return Binary, nil
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	}
	return Unknown, fmt.Errorf("%w: %q", anim.ErrUnsupportedFormat, s)
}

// FormatFromPath picks a format from the file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return Unknown, fmt.Errorf("%w: no extension on %q", anim.ErrUnsupportedFormat, path)
	}
	return ParseFormat(ext)
}

// Detect sniffs the format from the first bytes of data.
func Detect(data []byte) Format {
	if bytes.HasPrefix(data, []byte(Magic)) {
		return Binary
	}
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	switch {
	case bytes.HasPrefix(trimmed, []byte("{")):
		return JSON
	case bytes.HasPrefix(trimmed, []byte("meta:")), bytes.HasPrefix(trimmed, []byte("---")):
		return YAML
	}
	return Unknown
}

func Encode(f Format, a *anim.Animation) ([]byte, error) {
	switch f {
	case Binary:
		return Marshal(a)
	case JSON:
		return MarshalJSON(a)
	case YAML:
		return MarshalYAML(a)
	}
	return nil, fmt.Errorf("%w: %v", anim.ErrUnsupportedFormat, f)
}

func Decode(f Format, data []byte) (*anim.Animation, error) {
	switch f {
	case Binary:
		return Unmarshal(data)
	case JSON:
		return UnmarshalJSON(data)
	case YAML:
		return UnmarshalYAML(data)
	}
	return nil, fmt.Errorf("%w: %v", anim.ErrUnsupportedFormat, f)
}

// Load reads path, choosing the format from its content and falling back
// to the extension.
func Load(path string) (*anim.Animation, Format, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Unknown, err
	}
	f := Detect(data)
	if f == Unknown {
		if f, err = FormatFromPath(path); err != nil {
			return nil, Unknown, err
		}
	}
	a, err := Decode(f, data)
	if err != nil {
		return nil, f, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return a, f, nil
}

// Save writes a to path in format f, or in the format implied by the
// extension when f is Unknown.
func Save(path string, f Format, a *anim.Animation) error {
	if f == Unknown {
		var err error
		if f, err = FormatFromPath(path); err != nil {
			return err
		}
	}
	data, err := Encode(f, a)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
