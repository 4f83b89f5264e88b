package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/asciimate/internal/anim"
	"github.com/san-kum/asciimate/internal/decoder"
	"github.com/san-kum/asciimate/internal/metrics"
	"github.com/san-kum/asciimate/internal/player"
)

const (
	tickDivisor   = 4
	minTick       = 5 * time.Millisecond
	speedFactor   = 1.25
	minSpeed      = 0.125
	maxSpeed      = 8
	chartWidth    = 28
	chartHeight   = 5
	timelineWidth = 28
)

// tickMsg carries the generation of the tick chain that produced it.
// Play starts a new chain; ticks from an older chain are dropped.
type tickMsg struct {
	gen int
	at  time.Time
}

// screen is shared between Model copies. The player's renderer writes
// into it.
type screen struct {
	index int
	grid  anim.Grid
}

type Options struct {
	Name     string
	Speed    float64
	Loop     bool
	Theme    string
	Autoplay bool
}

// Model plays one animation.
type Model struct {
	player    *player.Player
	meta      anim.Meta
	name      string
	loop      bool
	canvas    *Canvas
	theme     Theme
	styles    styles
	screen    *screen
	changes   []float64
	gen       int
	autoplay  bool
	showChart bool
	showHelp  bool
	err       error
}

// NewModel resolves a and prepares a player for it.
func NewModel(a *anim.Animation, opts Options) (Model, error) {
	res, err := decoder.ResolveAnimation(a)
	if err != nil {
		return Model{}, err
	}
	series, _ := metrics.Analyze(a)

	scr := &screen{}
	m := Model{
		meta:      res.Meta,
		name:      opts.Name,
		loop:      opts.Loop,
		canvas:    NewCanvas(res.Meta),
		theme:     GetTheme(opts.Theme),
		screen:    scr,
		changes:   series.Changes,
		autoplay:  opts.Autoplay,
		showChart: true,
	}
	m.styles = newStyles(m.theme)

	speed := opts.Speed
	if speed == 0 {
		speed = 1
	}
	var p *player.Player
	p, err = player.New(res.Frames, int(res.Meta.FPS),
		player.WithSpeed(speed),
		player.WithRenderer(func(i int, g anim.Grid) {
			scr.index, scr.grid = i, g
		}),
		player.WithLoopHandler(func(int) {
			if !opts.Loop {
				p.Stop()
			}
		}),
	)
	if err != nil {
		return Model{}, err
	}
	m.player = p
	scr.grid = p.Current()
	return m, nil
}

// Player exposes the underlying state machine.
func (m Model) Player() *player.Player { return m.player }

func (m Model) Init() tea.Cmd {
	if !m.autoplay {
		return nil
	}
	m.player.Play()
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	d := m.player.FrameDuration() / tickDivisor
	if d < minTick {
		d = minTick
	}
	gen := m.gen
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg{gen: gen, at: t} })
}

// Update handles input events and advances playback.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		if !m.player.Tick(msg.at) {
			return m, nil
		}
		return m, m.tick()
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	p := m.player
	switch msg.String() {
	case "q", "ctrl+c":
		p.Destroy()
		return m, tea.Quit
	case " ":
		p.Toggle()
		if p.State() == player.Playing {
			m.gen++
			return m, m.tick()
		}
	case "s":
		p.Stop()
		p.Seek(0)
	case "left", "h":
		p.Step(-1)
	case "right", "l":
		p.Step(1)
	case "home", "g":
		p.Seek(0)
	case "end", "G":
		p.Seek(p.Len() - 1)
	case "+", "=":
		m = m.setSpeed(p.Speed() * speedFactor)
	case "-", "_":
		m = m.setSpeed(p.Speed() / speedFactor)
	case "t":
		m.theme = NextTheme(m.theme)
		m.styles = newStyles(m.theme)
	case "c":
		m.showChart = !m.showChart
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

// setSpeed clamps s to the key range. A rejected speed leaves playback
// untouched and is shown in the status panel.
func (m Model) setSpeed(s float64) Model {
	if s < minSpeed {
		s = minSpeed
	}
	if s > maxSpeed {
		s = maxSpeed
	}
	m.err = m.player.SetSpeed(s)
	return m
}

// Err reports the last rejected command, if any.
func (m Model) Err() error { return m.err }

// View renders the canvas and the status panel.
func (m Model) View() string {
	st := m.styles
	p := m.player
	canvasView := st.canvas.Render(m.canvas.Render(m.screen.grid, st.cell))

	var s strings.Builder
	title := m.name
	if title == "" {
		title = "asciimate"
	}
	s.WriteString(st.header.Render(GradientText(strings.ToUpper(title), m.theme.Title, m.theme.Accent)) + "\n")
	s.WriteString(st.states[p.State()].Render(strings.ToUpper(p.State().String())) + "\n\n")

	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Frame", fmt.Sprintf("%d/%d", m.screen.index+1, p.Len()))
	row("Loops", fmt.Sprintf("%d", p.Loops()))
	row("Speed", fmt.Sprintf("%.2fx", p.Speed()))
	row("FPS", fmt.Sprintf("%d", m.meta.FPS))
	row("Grid", fmt.Sprintf("%dx%d", m.meta.Cols, m.meta.Rows))
	row("Color", m.meta.ColorMode.String())
	row("Length", fmt.Sprintf("%.2fs", m.meta.Duration()))
	if m.err != nil {
		row("Error", m.err.Error())
	}
	s.WriteString("\n" + st.Timeline(m.screen.index, p.Len(), timelineWidth) + "\n")

	if m.showChart && len(m.changes) > 1 {
		chart := asciigraph.Plot(m.changes,
			asciigraph.Height(chartHeight),
			asciigraph.Width(chartWidth),
			asciigraph.Caption("changed cells"))
		s.WriteString(st.graph.Render(chart) + "\n")
	}
	s.WriteString(st.help.Render("SP:Play/Pause S:Stop Q:Quit\n←→:Step +-:Speed T:Theme\nC:Chart ?:Help"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, st.side.Render(s.String()))
	if m.showHelp {
		return helpOverlay + "\n\n" + mainView
	}
	return mainView
}

const helpOverlay = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Play/Pause               ║
║  S        - Stop and rewind          ║
║  ←/H →/L  - Step one frame           ║
║  Home/G   - First frame              ║
║  End/⇧G   - Last frame               ║
║  + / -    - Faster / slower          ║
║  T        - Cycle themes             ║
║  C        - Toggle change chart      ║
║  Q        - Quit                     ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`

// Run plays a in the alternate screen until the user quits.
func Run(a *anim.Animation, opts Options) error {
	m, err := NewModel(a, opts)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
