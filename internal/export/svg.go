package export

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/san-kum/asciimate/internal/anim"
	"github.com/san-kum/asciimate/internal/ramp"
)

// SVGOptions sizes the character cells of a rendered frame.
type SVGOptions struct {
	CellWidth  float64
	CellHeight float64
	Background string
	Foreground string
}

var DefaultSVGOptions = SVGOptions{
	CellWidth:  8,
	CellHeight: 16,
	Background: "#0a0a0a",
	Foreground: "#00ff00",
}

func (o SVGOptions) withDefaults() SVGOptions {
	if o.CellWidth <= 0 {
		o.CellWidth = DefaultSVGOptions.CellWidth
	}
	if o.CellHeight <= 0 {
		o.CellHeight = DefaultSVGOptions.CellHeight
	}
	if o.Background == "" {
		o.Background = DefaultSVGOptions.Background
	}
	if o.Foreground == "" {
		o.Foreground = DefaultSVGOptions.Foreground
	}
	return o
}

// GridToSVG draws one grid as monospace text, one <text> element per row.
// Colored grids emit a <tspan> per run of equally colored cells.
func GridToSVG(g anim.Grid, meta anim.Meta, opts SVGOptions) string {
	opts = opts.withDefaults()
	cols, rows := int(meta.Cols), int(meta.Rows)
	width := float64(cols) * opts.CellWidth
	height := float64(rows) * opts.CellHeight

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
<g font-family="monospace" font-size="%.1f" fill="%s" xml:space="preserve">
`, width, height, width, height, opts.Background, opts.CellHeight*0.85, opts.Foreground))

	colored := meta.ColorMode.HasColor() && g.Colors != nil
	for r := 0; r < rows && g.IsSet(); r++ {
		y := float64(r+1)*opts.CellHeight - opts.CellHeight*0.2
		sb.WriteString(fmt.Sprintf(`<text x="0" y="%.1f" textLength="%.0f">`, y, width))
		row := g.Row(r, cols)
		if !colored {
			sb.WriteString(escape(row))
		} else {
			start := r * cols
			for i := 0; i < len(row); {
				c := g.Color(start + i)
				j := i + 1
				for j < len(row) && g.Color(start+j) == c {
					j++
				}
				sb.WriteString(fmt.Sprintf(`<tspan fill="%s">%s</tspan>`, c, escape(row[i:j])))
				i = j
			}
		}
		sb.WriteString("</text>\n")
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

func escape(symbols []byte) string {
	var text strings.Builder
	for _, s := range symbols {
		text.WriteRune(ramp.Rune(s))
	}
	var out strings.Builder
	xml.EscapeText(&out, []byte(text.String()))
	return out.String()
}

// SeriesToSVG plots per-frame values, such as changed cells, as a line.
func SeriesToSVG(values []float64, width, height int, strokeColor string) string {
	if len(values) < 2 {
		return ""
	}

	minY, maxY := values[0], values[0]
	for _, v := range values {
		if v < minY {
			minY = v
		}
		if v > maxY {
			maxY = v
		}
	}
	rangeY := maxY - minY
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	rangeY *= 1.2
	stepX := float64(width) / float64(len(values)-1)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i, v := range values {
		x := float64(i) * stepX
		y := float64(height) - (v-minY)/rangeY*float64(height)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
