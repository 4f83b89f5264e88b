package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/asciimate/internal/storage"
)

const (
	stateMenu = iota
	statePlay
)

var (
	menuTitle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	menuSub     = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	menuCursor  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	menuActive  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	menuDesc    = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	menuIdle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	menuIdleSub = lipgloss.NewStyle().Foreground(lipgloss.Color("#444455"))
	menuKey     = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
	menuErr     = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
)

// Browser lists the library and plays the selected animation. Esc
// returns from the player to the list.
type Browser struct {
	store   *storage.Store
	entries []storage.Metadata
	state   int
	cursor  int
	opts    Options
	live    Model
	err     error
}

func NewBrowser(st *storage.Store, opts Options) (*Browser, error) {
	entries, err := st.List()
	if err != nil {
		return nil, err
	}
	return &Browser{store: st, entries: entries, opts: opts}, nil
}

func (b Browser) Init() tea.Cmd { return nil }

func (b Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		return b.handleKey(key)
	}
	if b.state == statePlay {
		next, cmd := b.live.Update(msg)
		b.live = next.(Model)
		return b, cmd
	}
	return b, nil
}

func (b Browser) handleKey(msg tea.KeyMsg) (Browser, tea.Cmd) {
	if b.state == statePlay {
		if msg.String() == "esc" {
			b.live.player.Destroy()
			b.state = stateMenu
			return b, nil
		}
		next, cmd := b.live.Update(msg)
		b.live = next.(Model)
		return b, cmd
	}

	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return b, tea.Quit
	case "up", "k":
		if b.cursor > 0 {
			b.cursor--
		}
	case "down", "j":
		if b.cursor < len(b.entries)-1 {
			b.cursor++
		}
	case "enter", " ":
		if len(b.entries) == 0 {
			return b, nil
		}
		return b.start()
	}
	return b, nil
}

func (b Browser) start() (Browser, tea.Cmd) {
	e := b.entries[b.cursor]
	a, _, err := b.store.LoadAnimation(e.ID)
	if err != nil {
		b.err = err
		return b, nil
	}
	opts := b.opts
	opts.Name = e.Name
	opts.Autoplay = true
	live, err := NewModel(a, opts)
	if err != nil {
		b.err = err
		return b, nil
	}
	b.err = nil
	b.live = live
	b.state = statePlay
	return b, live.Init()
}

func (b Browser) View() string {
	if b.state == statePlay {
		return b.live.View()
	}
	return b.viewMenu()
}

func (b Browser) viewMenu() string {
	var s strings.Builder
	s.WriteString("\n\n    " + menuTitle.Render("ASCIIMATE") + "\n    " + menuSub.Render(b.store.Dir()) + "\n    " + menuSub.Render("─────────────────────────") + "\n\n")
	if len(b.entries) == 0 {
		s.WriteString("    " + menuIdle.Render("library is empty; encode with --save first") + "\n")
	}
	for i, e := range b.entries {
		name := e.Name
		if len(name) > 20 {
			name = name[:17] + "..."
		}
		desc := fmt.Sprintf("%dx%d %d frames @%dfps %s", e.Cols, e.Rows, e.Frames, e.FPS, e.ColorMode)
		if i == b.cursor {
			s.WriteString(fmt.Sprintf("    %s %s  %s\n", menuCursor.Render("▸"), menuActive.Render(fmt.Sprintf("%-20s", name)), menuDesc.Render(desc)))
		} else {
			s.WriteString(fmt.Sprintf("    %s  %s\n", menuIdle.Render(fmt.Sprintf("  %-20s", name)), menuIdleSub.Render(desc)))
		}
	}
	if b.err != nil {
		s.WriteString("\n    " + menuErr.Render(b.err.Error()) + "\n")
	}
	s.WriteString("\n    " + menuKey.Render("j/k") + menuIdle.Render(" navigate  ") + menuKey.Render("enter") + menuIdle.Render(" play  ") + menuKey.Render("esc") + menuIdle.Render(" back  ") + menuKey.Render("q") + menuIdle.Render(" quit") + "\n")
	return s.String()
}

// RunBrowser opens the library browser in the alternate screen.
func RunBrowser(st *storage.Store, opts Options) error {
	b, err := NewBrowser(st, opts)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(b, tea.WithAltScreen()).Run()
	return err
}
