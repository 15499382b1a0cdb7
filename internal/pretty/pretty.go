// Terminal-dependent output helpers.
package pretty

import (
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

var (
	green = color.New(color.FgGreen)
	red   = color.New(color.FgRed)
	bold  = color.New(color.Bold)
	dim   = color.New(color.Faint)
)

// True if f is a terminal we can redraw lines on.
func AllowDynamic(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// SetColorEnabled controls whether ANSI color codes are output
func SetColorEnabled(enabled bool) {
	color.NoColor = !enabled
}

// ColorEnabled returns whether ANSI color codes are currently output
func ColorEnabled() bool {
	return !color.NoColor
}

func Green(s string) string {
	return green.Sprint(s)
}

func Red(s string) string {
	return red.Sprint(s)
}

func Bold(s string) string {
	return bold.Sprint(s)
}

func Dim(s string) string {
	return dim.Sprint(s)
}

// EraseLine is always output, since it is only used for progress lines drawn
// on a terminal
const EraseLine string = "\x1b[2K"
