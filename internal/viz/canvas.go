package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/asciimate/internal/anim"
	"github.com/san-kum/asciimate/internal/ramp"
)

// Canvas lays a grid out as terminal rows. Runs of equally colored cells
// share one style so a row costs a handful of escape sequences rather
// than one per cell.
type Canvas struct {
	Cols, Rows int
	Color      bool
}

func NewCanvas(meta anim.Meta) *Canvas {
	return &Canvas{
		Cols:  int(meta.Cols),
		Rows:  int(meta.Rows),
		Color: meta.ColorMode.HasColor(),
	}
}

// Plain returns the grid as unstyled text, one line per row.
func (c *Canvas) Plain(g anim.Grid) string {
	if !g.IsSet() {
		return c.blank()
	}
	var b strings.Builder
	for r := 0; r < c.Rows; r++ {
		for _, s := range g.Row(r, c.Cols) {
			b.WriteRune(ramp.Rune(s))
		}
		if r < c.Rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Render returns the grid with cell colors applied, or in base when the
// animation carries no color.
func (c *Canvas) Render(g anim.Grid, base lipgloss.Style) string {
	if !g.IsSet() {
		return base.Render(c.blank())
	}
	if !c.Color || g.Colors == nil {
		return base.Render(c.Plain(g))
	}

	var b strings.Builder
	var run strings.Builder
	for r := 0; r < c.Rows; r++ {
		row := g.Row(r, c.Cols)
		start := r * c.Cols
		cur := g.Color(start)
		for i, s := range row {
			col := g.Color(start + i)
			if col != cur {
				b.WriteString(cellStyle(cur).Render(run.String()))
				run.Reset()
				cur = col
			}
			run.WriteRune(ramp.Rune(s))
		}
		b.WriteString(cellStyle(cur).Render(run.String()))
		run.Reset()
		if r < c.Rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (c *Canvas) blank() string {
	line := strings.Repeat(" ", c.Cols)
	rows := make([]string, c.Rows)
	for i := range rows {
		rows[i] = line
	}
	return strings.Join(rows, "\n")
}

func cellStyle(c anim.RGB) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c.String()))
}
