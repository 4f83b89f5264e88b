package raster

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// Source yields an ordered, finite sequence of rasters.
type Source interface {
	Len() int
	Frame(i int) (Raster, error)
}

// Frames is an in-memory Source.
type Frames []Raster

func (f Frames) Len() int { return len(f) }

func (f Frames) Frame(i int) (Raster, error) {
	if i < 0 || i >= len(f) {
		return Raster{}, fmt.Errorf("frame %d out of range [0,%d)", i, len(f))
	}
	return f[i], nil
}

// Files decodes image files lazily, one per frame.
type Files struct {
	Paths []string
	Opts  LoadOptions
}

func (f *Files) Len() int { return len(f.Paths) }

func (f *Files) Frame(i int) (Raster, error) {
	if i < 0 || i >= len(f.Paths) {
		return Raster{}, fmt.Errorf("frame %d out of range [0,%d)", i, len(f.Paths))
	}
	r, err := Load(f.Paths[i], f.Opts)
	if err != nil {
		return Raster{}, fmt.Errorf("%s: %w", f.Paths[i], err)
	}
	return r, nil
}

// Glob returns the regular files in dir whose names match pattern, sorted.
func Glob(dir, pattern string) ([]string, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !g.Match(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Open builds a Source from command line inputs. A single .gif input is
// expanded into its frames, a single directory is filtered with pattern,
// anything else is treated as a list of image files in the given order.
// The returned fps is nonzero only when the input carries timing.
func Open(inputs []string, pattern string, opts LoadOptions) (src Source, fps int, err error) {
	if len(inputs) == 0 {
		return nil, 0, fmt.Errorf("no inputs given")
	}
	if len(inputs) == 1 {
		in := inputs[0]
		if strings.EqualFold(filepath.Ext(in), ".gif") {
			g, err := LoadGIF(in, opts)
			if err != nil {
				return nil, 0, err
			}
			return Frames(g.Frames), g.FPS(), nil
		}
		st, err := os.Stat(in)
		if err != nil {
			return nil, 0, err
		}
		if st.IsDir() {
			if pattern == "" {
				pattern = "*.{png,jpg,jpeg,gif,bmp,webp}"
			}
			paths, err := Glob(in, pattern)
			if err != nil {
				return nil, 0, err
			}
			if len(paths) == 0 {
				return nil, 0, fmt.Errorf("no files matching %q in %s", pattern, in)
			}
			return &Files{Paths: paths, Opts: opts}, 0, nil
		}
	}
	return &Files{Paths: inputs, Opts: opts}, 0, nil
}
