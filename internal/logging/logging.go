// Package logging provides the slog handler the command line uses: one short line per
// record, coloured when writing to a terminal.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/toothbrush/md2confluence/internal/termfmt"
)

// Level maps the --verbose and --quiet flags onto a slog level.
func Level(verbose, quiet bool) slog.Level {
	switch {
	case verbose:
		return slog.LevelDebug
	case quiet:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// IsTerminal reports whether w is a terminal we may send escapes to.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// New returns a logger writing to w at the given level.
func New(w io.Writer, level slog.Leveler) *slog.Logger {
	return slog.New(NewHandler(w, level, IsTerminal(w)))
}

type Handler struct {
	mu    *sync.Mutex
	w     io.Writer
	level slog.Leveler
	color bool

	// preformatted attrs from WithAttrs, and the current group prefix.
	attrs  string
	prefix string
}

func NewHandler(w io.Writer, level slog.Leveler, color bool) *Handler {
	return &Handler{mu: &sync.Mutex{}, w: w, level: level, color: color}
}

func (h *Handler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder

	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	b.WriteString(h.style(termfmt.Fg(termfmt.DarkGrey)).Sprint(ts.Format(time.TimeOnly)))
	b.WriteString(" ")
	b.WriteString(h.style(levelStyle(r.Level)).Sprint(levelTag(r.Level)))
	b.WriteString(" ")
	b.WriteString(r.Message)
	b.WriteString(h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		h.appendAttr(&b, h.prefix, a)
		return true
	})
	b.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	var b strings.Builder
	b.WriteString(h.attrs)
	for _, a := range attrs {
		h.appendAttr(&b, h.prefix, a)
	}
	c.attrs = b.String()
	return &c
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.prefix = h.prefix + name + "."
	return &c
}

func (h *Handler) appendAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, g := range a.Value.Group() {
			h.appendAttr(b, prefix, g)
		}
		return
	}

	val := a.Value.String()
	if strings.ContainsAny(val, " \t\n\"=") || val == "" {
		val = fmt.Sprintf("%q", val)
	}
	b.WriteString(" ")
	b.WriteString(h.style(termfmt.Fg(termfmt.Cyan)).Sprint(prefix + a.Key))
	b.WriteString("=")
	b.WriteString(val)
}

func (h *Handler) style(s termfmt.Style) termfmt.Style {
	if !h.color {
		return termfmt.Style{}
	}
	return s
}

func levelTag(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "ERR"
	case l >= slog.LevelWarn:
		return "WRN"
	case l >= slog.LevelInfo:
		return ">"
	default:
		return "DBG"
	}
}

func levelStyle(l slog.Level) termfmt.Style {
	switch {
	case l >= slog.LevelError:
		return termfmt.Bold().Fg(termfmt.Red)
	case l >= slog.LevelWarn:
		return termfmt.Fg(termfmt.Yellow)
	case l >= slog.LevelInfo:
		return termfmt.Fg(termfmt.Green)
	default:
		return termfmt.Fg(termfmt.DarkGrey)
	}
}

// Headline prints msg in reverse video (when colour is on) to mark the start and end of a
// command.
func Headline(w io.Writer, msg string) {
	s := termfmt.Style{}
	if IsTerminal(w) {
		s = termfmt.Reverse().Bold()
	}
	fmt.Fprintf(w, "%s\n", s.V(" "+msg+" "))
}
