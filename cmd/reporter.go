package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/term"

	"mammut/pkg/logging"
)

// consoleReporter prints login progress. A spinner is shown while waiting
// when the output is a terminal and debug logs are not interleaved with it.
type consoleReporter struct {
	out io.Writer
}

func newConsoleReporter(out io.Writer) *consoleReporter {
	return &consoleReporter{out: out}
}

func (r *consoleReporter) Progress(msg string) {
	fmt.Fprintln(r.out, msg)
}

func (r *consoleReporter) Waiting(msg string) func() {
	f, ok := r.out.(*os.File)
	if logging.Enabled(logging.LevelDebug) || !ok || !term.IsTerminal(int(f.Fd())) {
		fmt.Fprintln(r.out, msg)
		return func() {}
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(f))
	s.Suffix = " " + msg
	s.Start()
	return s.Stop
}

func successMark() string {
	return text.FgGreen.Sprint("✓")
}
