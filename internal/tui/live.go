// Package tui plays animations with raw ANSI escapes, for terminals and
// pipes where a full screen program is unwanted.
package tui

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/asciimate/internal/anim"
	"github.com/san-kum/asciimate/internal/decoder"
	"github.com/san-kum/asciimate/internal/logx"
	"github.com/san-kum/asciimate/internal/player"
	"github.com/san-kum/asciimate/internal/ramp"
)

const (
	clearScreen = "\033[2J\033[H"
	cursorHome  = "\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
	resetColor  = "\033[0m"
)

// LiveRenderer redraws each frame in place. The first frame clears the
// screen; later frames only home the cursor so rows are overwritten.
type LiveRenderer struct {
	w      io.Writer
	name   string
	meta   anim.Meta
	color  bool
	buf    bytes.Buffer
	drawn  int
	status func() string
}

func NewLiveRenderer(w io.Writer, name string, meta anim.Meta, color bool) *LiveRenderer {
	return &LiveRenderer{
		w:     w,
		name:  name,
		meta:  meta,
		color: color && meta.ColorMode.HasColor(),
	}
}

// Render is a player.RenderFunc.
func (r *LiveRenderer) Render(i int, g anim.Grid) {
	cols := int(r.meta.Cols)
	r.buf.Reset()
	if r.drawn == 0 {
		r.buf.WriteString(clearScreen)
	} else {
		r.buf.WriteString(cursorHome)
	}
	r.drawn++

	fmt.Fprintf(&r.buf, "  %s  %d/%d\n", r.name, i+1, r.meta.FrameCount)
	r.buf.WriteString("  " + strings.Repeat("-", cols) + "\n")
	for row := 0; row < int(r.meta.Rows); row++ {
		r.buf.WriteString("  ")
		r.writeRow(g, row, cols)
		r.buf.WriteByte('\n')
	}
	r.buf.WriteString("  " + strings.Repeat("-", cols) + "\n")
	if r.status != nil {
		r.buf.WriteString("  " + r.status() + "\033[K\n")
	}
	r.w.Write(r.buf.Bytes())
}

func (r *LiveRenderer) writeRow(g anim.Grid, row, cols int) {
	start := row * cols
	var cur anim.RGB
	for i, s := range g.Row(row, cols) {
		if r.color {
			c := g.Color(start + i)
			if i == 0 || c != cur {
				fmt.Fprintf(&r.buf, "\033[38;2;%d;%d;%dm", c.R, c.G, c.B)
				cur = c
			}
		}
		r.buf.WriteRune(ramp.Rune(s))
	}
	if r.color {
		r.buf.WriteString(resetColor)
	}
}

// Frames reports how many frames have been drawn.
func (r *LiveRenderer) Frames() int { return r.drawn }

func (r *LiveRenderer) Start() { io.WriteString(r.w, hideCursor) }
func (r *LiveRenderer) Stop()  { io.WriteString(r.w, showCursor) }

type Options struct {
	Name  string
	Speed float64
	Loop  bool
	Color logx.UseColor
}

// Play resolves a and draws it to w until ctx is done or, without Loop,
// after one pass.
func Play(ctx context.Context, w io.Writer, a *anim.Animation, opts Options) error {
	res, err := decoder.ResolveAnimation(a)
	if err != nil {
		return err
	}
	out, color := logx.Terminal(w, opts.Color)
	r := NewLiveRenderer(out, opts.Name, res.Meta, color)

	speed := opts.Speed
	if speed == 0 {
		speed = 1
	}
	var p *player.Player
	p, err = player.New(res.Frames, int(res.Meta.FPS),
		player.WithSpeed(speed),
		player.WithRenderer(r.Render),
		player.WithLoopHandler(func(int) {
			if !opts.Loop {
				p.Stop()
			}
		}),
	)
	if err != nil {
		return err
	}
	r.status = func() string {
		return fmt.Sprintf("%s  loops=%d  speed=%.2fx", p.State(), p.Loops(), p.Speed())
	}

	r.Start()
	defer r.Stop()
	defer p.Destroy()
	return p.Run(ctx, 0)
}
