// Package player steps through resolved frames at a fixed rate.
//
// A Player is a small state machine (Stopped, Playing, Paused) driven by
// Tick. It is not safe for concurrent use; drive it from one goroutine,
// either with Run or from an external loop such as a bubbletea program.
package player

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/san-kum/asciimate/internal/anim"
)

var (
	ErrNoFrames     = errors.New("player: no frames")
	ErrInvalidFPS   = errors.New("player: fps must be positive")
	ErrInvalidSpeed = errors.New("player: speed must be positive and finite")
)

type State int

const (
	Stopped State = iota
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// RenderFunc receives the frame index and grid to present.
type RenderFunc func(i int, g anim.Grid)

type Option func(*Player)

func WithClock(c Clock) Option { return func(p *Player) { p.clock = c } }

func WithRenderer(fn RenderFunc) Option { return func(p *Player) { p.render = fn } }

// WithLoopHandler registers fn to be called each time playback wraps
// around, with the number of completed loops.
func WithLoopHandler(fn func(loops int)) Option { return func(p *Player) { p.onLoop = fn } }

func WithSpeed(s float64) Option { return func(p *Player) { p.speed = s } }

type Player struct {
	frames    []anim.Grid
	fps       int
	speed     float64
	frameDur  time.Duration
	index     int
	loops     int
	state     State
	last      time.Time
	clock     Clock
	render    RenderFunc
	onLoop    func(int)
	destroyed bool
}

func New(frames []anim.Grid, fps int, opts ...Option) (*Player, error) {
	if len(frames) == 0 {
		return nil, ErrNoFrames
	}
	if fps < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFPS, fps)
	}
	p := &Player{
		frames: frames,
		fps:    fps,
		speed:  1,
		clock:  systemClock{},
		render: func(int, anim.Grid) {},
		onLoop: func(int) {},
	}
	for _, opt := range opts {
		opt(p)
	}
	if err := validSpeed(p.speed); err != nil {
		return nil, err
	}
	p.frameDur = frameDuration(fps, p.speed)
	return p, nil
}

func validSpeed(s float64) error {
	if s <= 0 || math.IsNaN(s) || math.IsInf(s, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidSpeed, s)
	}
	return nil
}

func frameDuration(fps int, speed float64) time.Duration {
	d := time.Duration(float64(time.Second) / (float64(fps) * speed))
	if d < 1 {
		d = 1
	}
	return d
}

func (p *Player) State() State                 { return p.state }
func (p *Player) Index() int                   { return p.index }
func (p *Player) Len() int                     { return len(p.frames) }
func (p *Player) Loops() int                   { return p.loops }
func (p *Player) Speed() float64               { return p.speed }
func (p *Player) FrameDuration() time.Duration { return p.frameDur }

// Current returns the grid at the play head.
func (p *Player) Current() anim.Grid {
	if p.destroyed {
		return anim.Grid{}
	}
	return p.frames[p.index]
}

// Play starts or resumes playback.
func (p *Player) Play() {
	if p.destroyed || p.state == Playing {
		return
	}
	p.state = Playing
	p.last = p.clock.Now()
}

func (p *Player) Pause() {
	if p.destroyed || p.state != Playing {
		return
	}
	p.state = Paused
}

// Stop halts playback and rewinds to the first frame.
func (p *Player) Stop() {
	if p.destroyed {
		return
	}
	p.state = Stopped
	p.index = 0
}

// Toggle switches between Playing and Paused.
func (p *Player) Toggle() {
	if p.state == Playing {
		p.Pause()
		return
	}
	p.Play()
}

// Destroy stops playback and releases the frames. The player is inert
// afterwards.
func (p *Player) Destroy() {
	if p.destroyed {
		return
	}
	p.state = Stopped
	p.frames = nil
	p.index = 0
	p.destroyed = true
}

// Tick is the scheduling callback. It renders and advances when at least
// one frame duration has passed since the last frame, carrying the
// remainder forward so scheduler jitter does not accumulate. It reports
// whether the caller should schedule another tick.
func (p *Player) Tick(now time.Time) bool {
	if p.destroyed || p.state != Playing {
		return false
	}
	elapsed := now.Sub(p.last)
	if elapsed < p.frameDur {
		return true
	}

	p.render(p.index, p.frames[p.index])
	p.index++
	if p.index >= len(p.frames) {
		p.index = 0
		p.loops++
		p.onLoop(p.loops)
	}
	p.last = now.Add(-(elapsed % p.frameDur))
	return true
}

// Seek moves the play head to i, clamped to the frame range, and renders
// it immediately. The play state is unchanged.
func (p *Player) Seek(i int) {
	if p.destroyed {
		return
	}
	if i < 0 {
		i = 0
	}
	if i >= len(p.frames) {
		i = len(p.frames) - 1
	}
	p.index = i
	p.render(i, p.frames[i])
}

// Step seeks relative to the current frame, wrapping around.
func (p *Player) Step(delta int) {
	if p.destroyed {
		return
	}
	n := len(p.frames)
	p.Seek(((p.index+delta)%n + n) % n)
}

// SetSpeed changes the playback rate without moving the play head.
func (p *Player) SetSpeed(s float64) error {
	if err := validSpeed(s); err != nil {
		return err
	}
	p.speed = s
	p.frameDur = frameDuration(p.fps, s)
	return nil
}

// Run plays until ctx is done or the player leaves the Playing state,
// polling Tick every interval.
func (p *Player) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = p.frameDur / 4
		if interval <= 0 {
			interval = time.Millisecond
		}
	}
	p.Play()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.Pause()
			return ctx.Err()
		case <-ticker.C:
			if !p.Tick(p.clock.Now()) {
				return nil
			}
		}
	}
}
