// Package export writes resolved frames as SVG images or plain text.
package export

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/san-kum/asciimate/internal/anim"
	"github.com/san-kum/asciimate/internal/decoder"
	"github.com/san-kum/asciimate/internal/ramp"
)

// Frame picks resolved frame n. Unlike Resolved.At it does not clamp.
func Frame(res *decoder.Resolved, n int) (anim.Grid, error) {
	if n < 0 || n >= res.Len() {
		return anim.Grid{}, fmt.Errorf("%w: frame %d of %d", anim.ErrIndexOutOfRange, n, res.Len())
	}
	return res.Frames[n], nil
}

// GridToText returns the grid as UTF-8 lines, each ending in a newline.
func GridToText(g anim.Grid, meta anim.Meta) string {
	cols := int(meta.Cols)
	var sb strings.Builder
	for r := 0; r < int(meta.Rows) && g.IsSet(); r++ {
		for _, s := range g.Row(r, cols) {
			sb.WriteRune(ramp.Rune(s))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// WriteText writes every frame of res to w, separated by form feeds.
func WriteText(w io.Writer, res *decoder.Resolved) error {
	for i, g := range res.Frames {
		if i > 0 {
			if _, err := io.WriteString(w, "\f\n"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, GridToText(g, res.Meta)); err != nil {
			return err
		}
	}
	return nil
}

// SaveFrame writes frame n of res to path, as SVG when svg is set and as
// text otherwise.
func SaveFrame(path string, res *decoder.Resolved, n int, svg bool, opts SVGOptions) error {
	g, err := Frame(res, n)
	if err != nil {
		return err
	}
	out := GridToText(g, res.Meta)
	if svg {
		out = GridToSVG(g, res.Meta, opts)
	}
	return os.WriteFile(path, []byte(out), 0644)
}
