package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/asciimate/internal/player"
)

// styles are rebuilt whenever the theme changes.
type styles struct {
	canvas  lipgloss.Style
	side    lipgloss.Style
	header  lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	graph   lipgloss.Style
	help    lipgloss.Style
	cursor  lipgloss.Style
	cell    lipgloss.Style
	states  map[player.State]lipgloss.Style
	spent   lipgloss.Style
	pending lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		canvas: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border),
		side: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(t.Border).
			Padding(0, 2).
			Width(36),
		header: lipgloss.NewStyle().Foreground(t.Title).Bold(true).MarginBottom(1),
		label:  lipgloss.NewStyle().Foreground(t.Muted).Width(10),
		value:  lipgloss.NewStyle().Foreground(t.Foreground),
		graph:  lipgloss.NewStyle().Foreground(t.Accent).Padding(1, 0),
		help:   lipgloss.NewStyle().Foreground(t.Muted).Italic(true).MarginTop(1),
		cursor: lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		cell:   lipgloss.NewStyle().Foreground(t.Foreground),
		states: map[player.State]lipgloss.Style{
			player.Playing: lipgloss.NewStyle().Bold(true).Foreground(t.Playing),
			player.Paused:  lipgloss.NewStyle().Bold(true).Foreground(t.Paused),
			player.Stopped: lipgloss.NewStyle().Bold(true).Foreground(t.Stopped),
		},
		spent:   lipgloss.NewStyle().Foreground(t.Accent),
		pending: lipgloss.NewStyle().Foreground(t.Border),
	}
}

// Timeline renders the play head position as a bar of width cells.
func (s styles) Timeline(index, frames, width int) string {
	if width <= 0 {
		return ""
	}
	filled := 0
	if frames > 1 {
		filled = index * width / (frames - 1)
	} else if frames == 1 {
		filled = width
	}
	if filled > width {
		filled = width
	}
	return s.spent.Render(strings.Repeat("█", filled)) + s.pending.Render(strings.Repeat("░", width-filled))
}

// GradientText blends text from start to end in Lab space.
func GradientText(text string, start, end lipgloss.Color) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}
	a, errA := colorful.Hex(string(start))
	b, errB := colorful.Hex(string(end))
	if errA != nil || errB != nil {
		return lipgloss.NewStyle().Foreground(start).Render(text)
	}

	var out strings.Builder
	for i, r := range runes {
		t := 0.0
		if len(runes) > 1 {
			t = float64(i) / float64(len(runes)-1)
		}
		c := a.BlendLab(b, t).Clamped()
		out.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex())).Render(string(r)))
	}
	return out.String()
}
