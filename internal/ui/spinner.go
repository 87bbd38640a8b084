package ui

import (
	"os"
	"time"

	"github.com/briandowns/spinner"
	"golang.org/x/term"
)

// Spinner is a thin wrapper that degrades to a plain message when stderr is
// not a terminal.
type Spinner struct {
	s   *spinner.Spinner
	tty bool
}

// NewSpinner creates a spinner writing to stderr so it never mixes with
// command output on stdout.
func NewSpinner() *Spinner {
	return &Spinner{
		s:   spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr)),
		tty: term.IsTerminal(int(os.Stderr.Fd())),
	}
}

// Start shows the spinner with the given message.
func (sp *Spinner) Start(msg string) {
	if !sp.tty {
		os.Stderr.WriteString(msg + "\n")
		return
	}
	sp.s.Suffix = " " + msg
	sp.s.Start()
}

// Stop removes the spinner.
func (sp *Spinner) Stop() {
	if sp.tty {
		sp.s.Stop()
	}
}
