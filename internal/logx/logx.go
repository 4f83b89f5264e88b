// Package logx is a small levelled logger with section tags and optional
// ANSI colouring for terminals.
package logx

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

type Level int

const (
	DEBUG Level = iota
	INFO
	NOTICE
	WARN
	ERROR
	LevelCount
)

var levelNames = [LevelCount]string{"debug", "info", "notice", "warn", "error"}

func (l Level) String() string {
	if l < 0 || l >= LevelCount {
		return fmt.Sprintf("level(%d)", int(l))
	}
	return levelNames[l]
}

func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		return WARN, nil
	}
	for i, n := range levelNames {
		if n == s {
			return Level(i), nil
		}
	}
	return INFO, fmt.Errorf("unknown log level %q", s)
}

type UseColor int

const (
	ColorAuto UseColor = iota
	ColorOn
	ColorOff
)

func ParseColor(s string) (UseColor, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return ColorAuto, nil
	case "on", "always", "true":
		return ColorOn, nil
	case "off", "never", "false":
		return ColorOff, nil
	}
	return ColorAuto, fmt.Errorf("unknown color setting %q", s)
}

var levelTags = [2][LevelCount]string{
	{
		DEBUG:  " DEBUG",
		INFO:   "  INFO",
		NOTICE: "NOTICE",
		WARN:   "  WARN",
		ERROR:  " ERROR",
	},
	{
		DEBUG:  "\033[37m DEBUG\033[0m",
		INFO:   "\033[34m  INFO\033[0m",
		NOTICE: "\033[32mNOTICE\033[0m",
		WARN:   "\033[33m  WARN\033[0m",
		ERROR:  "\033[31m ERROR\033[0m",
	},
}

var sectionFormats = [2]string{
	"%s %s [%s] ",
	"%s %s [\033[36m%s\033[0m] ",
}

// Logger writes one line per call. It is safe for concurrent use.
type Logger struct {
	mu    sync.Mutex
	w     io.Writer
	min   Level
	color int
	now   func() time.Time
	buf   bytes.Buffer
}

// New returns a logger writing to w. Colour is enabled for ColorOn, or for
// ColorAuto when w is a terminal.
func New(w io.Writer, min Level, c UseColor) *Logger {
	l := &Logger{min: min, now: time.Now}
	var color bool
	l.w, color = Terminal(w, c)
	if color {
		l.color = 1
	}
	return l
}

// Terminal decides whether escape sequences should be written to w. When
// they should and w is a file, the returned writer translates them for
// consoles that need it.
func Terminal(w io.Writer, c UseColor) (io.Writer, bool) {
	if c == ColorOff {
		return w, false
	}
	if f, ok := w.(*os.File); ok {
		fd := f.Fd()
		if c == ColorOn || isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
			return colorable.NewColorable(f), true
		}
		return w, false
	}
	return w, c == ColorOn
}

// Discard drops everything.
func Discard() *Logger { return New(io.Discard, LevelCount, ColorOff) }

func (l *Logger) Level() Level { return l.min }

func (l *Logger) SetLevel(lvl Level) {
	l.mu.Lock()
	l.min = lvl
	l.mu.Unlock()
}

func (l *Logger) Enabled(lvl Level) bool { return lvl >= l.min }

func (l *Logger) Printf(section string, lvl Level, format string, v ...any) {
	if !l.Enabled(lvl) {
		return
	}
	t := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.buf.Reset()
	fmt.Fprintf(&l.buf, sectionFormats[l.color], t.Format("15:04:05"), levelTags[l.color][lvl], section)
	fmt.Fprintf(&l.buf, format, v...)
	if b := l.buf.Bytes(); len(b) == 0 || b[len(b)-1] != '\n' {
		l.buf.WriteByte('\n')
	}
	l.w.Write(l.buf.Bytes())
}

// Section returns a logger bound to one section tag.
func (l *Logger) Section(name string) Section {
	return Section{name: name, l: l}
}

type Section struct {
	name string
	l    *Logger
}

func (s Section) Debugf(format string, v ...any)  { s.l.Printf(s.name, DEBUG, format, v...) }
func (s Section) Infof(format string, v ...any)   { s.l.Printf(s.name, INFO, format, v...) }
func (s Section) Noticef(format string, v ...any) { s.l.Printf(s.name, NOTICE, format, v...) }
func (s Section) Warnf(format string, v ...any)   { s.l.Printf(s.name, WARN, format, v...) }
func (s Section) Errorf(format string, v ...any)  { s.l.Printf(s.name, ERROR, format, v...) }
