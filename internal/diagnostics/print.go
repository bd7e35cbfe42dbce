package diagnostics

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
)

const (
	ansiRed   = "\x1b[31m"
	ansiBold  = "\x1b[1m"
	ansiReset = "\x1b[0m"
)

var (
	colorOnce sync.Once
	colorOn   bool
)

func useColor() bool {
	colorOnce.Do(func() {
		// NO_COLOR convention: https://no-color.org/
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			return
		}
		if os.Getenv("TERM") == "dumb" {
			return
		}
		colorOn = isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	})
	return colorOn
}

// Print renders one diagnostic as a single "- "-prefixed line, colorized
// when stderr is a terminal.
func Print(w io.Writer, d *Diagnostic) {
	if useColor() {
		fmt.Fprintf(w, "- %s[%s]%s %s: %s%s%s\n",
			ansiRed, d.Code, ansiReset, d.Span, ansiBold, d.Message, ansiReset)
		return
	}
	fmt.Fprintf(w, "- %s\n", d.Error())
}

// PrintAll renders a batch of diagnostics and reports whether any were printed.
func PrintAll(w io.Writer, ds []*Diagnostic) bool {
	for _, d := range ds {
		Print(w, d)
	}
	return len(ds) > 0
}
