package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/quickq/qq/internal/backend"
	"github.com/quickq/qq/internal/format"
	"github.com/quickq/qq/internal/session"
)

// SupportsColor reports whether stdout is a terminal that should receive
// ANSI colors. NO_COLOR always wins.
func SupportsColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// Terminal implements session.UI on the real terminal using survey prompts
// and colored output.
type Terminal struct {
	spinner *Spinner
}

// NewTerminal creates the terminal UI. When noColor is set all output is
// plain text.
func NewTerminal(noColor bool) *Terminal {
	if noColor {
		color.NoColor = true
	}
	return &Terminal{spinner: NewSpinner()}
}

// ShowCommand displays the current candidate command with its estimated
// cost.
func (t *Terminal) ShowCommand(command string, cost backend.CostEstimate) {
	cyan := color.New(color.FgCyan, color.Bold)
	cyan.Println("\nGenerated command:")
	fmt.Printf("  %s\n", command)
	gray := color.New(color.FgHiBlack)
	gray.Printf("  estimated cost: %s\n\n", cost)
}

// ShowExplanation displays the parsed explanation block: one line per
// token/description pair, then the summary, then the cost annotation.
func (t *Terminal) ShowExplanation(entries []format.Entry, summary string, cost backend.CostEstimate) {
	magenta := color.New(color.FgMagenta, color.Bold)
	fmt.Println()
	for _, e := range entries {
		magenta.Printf("%s", e.Token)
		fmt.Printf(" - %s\n", e.Description)
	}
	if summary != "" {
		fmt.Printf("\n%s\n", summary)
	}
	gray := color.New(color.FgHiBlack)
	gray.Printf("\nestimated cost: %s\n", cost)
}

// ShowMessage displays an informational message.
func (t *Terminal) ShowMessage(msg string) {
	blue := color.New(color.FgBlue)
	blue.Println(msg)
}

// ShowError displays an error message.
func (t *Terminal) ShowError(msg string) {
	red := color.New(color.FgRed, color.Bold)
	red.Printf("✗ %s\n", msg)
}

// PromptAction reads the next single-letter action.
func (t *Terminal) PromptAction() (session.Action, error) {
	var input string
	prompt := &survey.Input{
		Message: "(e)xplain / e(x)ec / ed(i)t / (r)eprompt / (c)opy / (q)uit:",
	}
	if err := survey.AskOne(prompt, &input); err != nil {
		return session.ActionUnknown, err
	}
	return session.ParseAction(input), nil
}

// PromptGuidance reads the additional direction for a reprompt.
func (t *Terminal) PromptGuidance() (string, error) {
	var guidance string
	prompt := &survey.Input{
		Message: "Enter your reprompt:",
	}
	if err := survey.AskOne(prompt, &guidance, survey.WithValidator(survey.Required)); err != nil {
		return "", err
	}
	return guidance, nil
}

// EditCommand opens the current command in the user's configured editor and
// returns the edited text.
func (t *Terminal) EditCommand(current string) (string, error) {
	var edited string
	prompt := &survey.Editor{
		Message:       "Edit the command",
		Default:       current,
		AppendDefault: true,
		HideDefault:   true,
		FileName:      "qq-command-*.sh",
	}
	if err := survey.AskOne(prompt, &edited); err != nil {
		return "", err
	}
	return strings.TrimSpace(edited), nil
}

// StartThinking shows a spinner while a backend call is in flight.
func (t *Terminal) StartThinking(msg string) {
	t.spinner.Start(msg)
}

// StopThinking removes the spinner.
func (t *Terminal) StopThinking() {
	t.spinner.Stop()
}
