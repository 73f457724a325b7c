// Terminal styling for log output, trimmed down from
// https://raw.githubusercontent.com/shabbyrobe/golib/master/termfmt/termfmt.go
// Provided under an MIT license.
package termfmt

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

type Escape interface {
	Wrap(out string) string
}

func Bold() Style               { return (Style{}).Bold() }
func Reverse() Style            { return (Style{}).Reverse() }
func Fg(c C16Name) Style        { return (Style{}).Fg(c) }
func With(escs ...Escape) Style { return (Style{}).With(escs...) }

// Style wraps a value in escapes when formatted with any verb.  The zero Style prints the
// value as is, which is what you want when output isn't a terminal.
type Style struct {
	escapes []Escape
	v       any
}

var _ fmt.Formatter = Style{}

func (c Style) With(escs ...Escape) Style {
	c.escapes = append(append([]Escape(nil), c.escapes...), escs...)
	return c
}

func (c Style) Bold() Style         { return c.With(sgr(1)) }
func (c Style) Reverse() Style      { return c.With(sgr(7)) }
func (c Style) Fg(n C16Name) Style  { return c.With(C16Color{Name: n}) }
func (c Style) Bg(n C16Name) Style  { return c.With(C16Color{Name: n, Bg: true}) }
func (c Style) Plain() bool         { return len(c.escapes) == 0 }
func (c Style) Sprint(v any) string { return fmt.Sprint(c.V(v)) }

func (c Style) V(v any) Style {
	c.v = v
	return c
}

func (c Style) Format(f fmt.State, verb rune) {
	v := fmt.Sprintf(buildValueFormat(f, verb), c.v)
	if len(c.escapes) > 0 {
		v = printable(v)
	}
	for i := len(c.escapes) - 1; i >= 0; i-- {
		v = c.escapes[i].Wrap(v)
	}
	f.Write([]byte(v))
}

func buildValueFormat(f fmt.State, verb rune) string {
	s := "%"
	for _, flag := range " +-0#" {
		if f.Flag(int(flag)) {
			s += string(flag)
		}
	}
	if width, ok := f.Width(); ok {
		s += strconv.Itoa(width)
	}
	if prec, ok := f.Precision(); ok {
		s += "." + strconv.Itoa(prec)
	}
	return s + string(verb)
}

// sgr is a plain Select Graphic Rendition attribute.
type sgr uint8

func (s sgr) Wrap(v string) string { return fmt.Sprintf("\x1b[%dm%s\x1b[0m", uint8(s), v) }

type C16Name uint8

const (
	DefaultColor C16Name = iota

	Black
	Red
	Green
	Yellow
	Blue
	Magenta
	Cyan
	LightGrey

	DarkGrey
	LightRed
	LightGreen
	LightYellow
	LightBlue
	LightMagenta
	LightCyan
	White
)

type C16Color struct {
	Name C16Name
	Bg   bool
}

func (c C16Color) Wrap(out string) string {
	var cv uint8
	if c.Name == DefaultColor {
		cv = 39
	} else {
		// Our enum starts at one, adjust so it starts at 0:
		cv = uint8(c.Name) - 1

		// If fg, the lower 8 colours run from 30 to 37, the upper 8 from 90 to 97.
		if c.Name < DarkGrey {
			cv += 30
		} else {
			cv += 90 - 8
		}
	}

	if c.Bg {
		cv += 10
	}

	return fmt.Sprintf("\x1b[%dm%s\x1b[0m", cv, out)
}

func printable(v string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsGraphic(r) || r == '\n' || r == '\t' {
			return r
		}
		return -1
	}, v)
}
