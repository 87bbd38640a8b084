package session

import (
	"context"
	"fmt"
	"os"

	"github.com/quickq/qq/internal/backend"
	"github.com/quickq/qq/internal/format"
	"github.com/quickq/qq/internal/prompt"
)

// UI is the terminal surface the loop talks to. internal/ui provides the
// real implementation; tests inject a mock.
type UI interface {
	ShowCommand(command string, cost backend.CostEstimate)
	ShowExplanation(entries []format.Entry, summary string, cost backend.CostEstimate)
	ShowMessage(msg string)
	ShowError(msg string)
	PromptAction() (Action, error)
	PromptGuidance() (string, error)
	EditCommand(current string) (string, error)
	StartThinking(msg string)
	StopThinking()
}

// Runner executes a command string in the user's shell and reports its
// exit code.
type Runner interface {
	Run(command string) (int, error)
}

// Loop drives the generate-mode interaction: show the candidate command,
// read a single-letter action, dispatch, repeat until the user executes or
// quits.
type Loop struct {
	Session *Session
	Backend backend.Completer
	Prompts *prompt.Builder
	UI      UI
	Runner  Runner
	// Clipboard copies a string to the system clipboard.
	Clipboard func(string) error
	Debug     bool

	// lastCost is the estimate from the most recent generation, shown
	// alongside the candidate command.
	lastCost backend.CostEstimate
}

func (l *Loop) debugf(msg string, args ...interface{}) {
	if l.Debug {
		fmt.Fprintf(os.Stderr, "[DEBUG] Loop(%s): "+msg+"\n", append([]interface{}{l.Session.ID}, args...)...)
	}
}

// generate asks the backend for a candidate command and records it on
// success. Failures are reported to the user and the loop continues, so a
// transient backend error never ends the session.
func (l *Loop) generate(ctx context.Context, promptText string) {
	l.UI.StartThinking("Thinking...")
	res, err := l.Backend.Complete(ctx, promptText)
	l.UI.StopThinking()
	if err != nil {
		l.UI.ShowError(fmt.Sprintf("Generation failed: %v", err))
		return
	}

	cmd, err := format.ExtractCommand(res.Text)
	if err != nil {
		l.UI.ShowError(err.Error())
		return
	}

	l.debugf("generated command: %q", cmd)
	l.Session.SetCommand(cmd)
	l.lastCost = res.Cost
}

// Run executes the interaction loop and returns the process exit code:
// the executed command's own exit code for the exec action, 0 for quit.
func (l *Loop) Run(ctx context.Context) int {
	l.generate(ctx, l.Prompts.Generate(l.Session.OriginalInput))

	for {
		if l.Session.CurrentCommand != "" {
			l.UI.ShowCommand(l.Session.CurrentCommand, l.lastCost)
		}

		action, err := l.UI.PromptAction()
		if err != nil {
			// Ctrl-C or closed stdin: treat as quit.
			l.debugf("action prompt ended: %v", err)
			return 0
		}

		switch action {
		case ActionExplain:
			l.explainCurrent(ctx)

		case ActionExecute:
			if !l.requireCommand() {
				continue
			}
			l.debugf("executing: %q", l.Session.CurrentCommand)
			code, err := l.Runner.Run(l.Session.CurrentCommand)
			if err != nil {
				l.UI.ShowError(fmt.Sprintf("Command failed: %v", err))
			}
			return code

		case ActionEdit:
			if !l.requireCommand() {
				continue
			}
			edited, err := l.UI.EditCommand(l.Session.CurrentCommand)
			if err != nil {
				l.UI.ShowError(fmt.Sprintf("Editor failed: %v", err))
				continue
			}
			if edited != "" && edited != l.Session.CurrentCommand {
				l.Session.SetCommand(edited)
			}

		case ActionReprompt:
			guidance, err := l.UI.PromptGuidance()
			if err != nil {
				l.UI.ShowError(fmt.Sprintf("Failed to read guidance: %v", err))
				continue
			}
			l.Session.Guidance = append(l.Session.Guidance, guidance)
			l.generate(ctx, l.Prompts.Reprompt(
				l.Session.OriginalInput, l.Session.Guidance, l.Session.CurrentCommand))

		case ActionCopy:
			if !l.requireCommand() {
				continue
			}
			if err := l.Clipboard(l.Session.CurrentCommand); err != nil {
				l.UI.ShowError(fmt.Sprintf("Failed to copy to clipboard: %v", err))
			} else {
				l.UI.ShowMessage("Command copied to clipboard")
			}

		case ActionQuit:
			return 0

		default:
			// Unrecognized input: redisplay the prompt, no error.
		}
	}
}

// requireCommand reports whether a candidate command exists, telling the
// user to reprompt when generation has not succeeded yet.
func (l *Loop) requireCommand() bool {
	if l.Session.CurrentCommand == "" {
		l.UI.ShowError("No command generated yet; use (r) to try again or (q) to quit")
		return false
	}
	return true
}

func (l *Loop) explainCurrent(ctx context.Context) {
	if !l.requireCommand() {
		return
	}
	l.UI.StartThinking("Explaining...")
	res, err := l.Backend.Complete(ctx, l.Prompts.Explain(l.Session.CurrentCommand))
	l.UI.StopThinking()
	if err != nil {
		l.UI.ShowError(fmt.Sprintf("Explanation failed: %v", err))
		return
	}
	entries, summary := format.ParseExplanation(res.Text)
	l.UI.ShowExplanation(entries, summary, res.Cost)
}

// Explain performs the single-pass explain mode: build the prompt, call the
// backend once, format and display. Backend failures are returned so the
// caller can exit non-zero.
func Explain(ctx context.Context, b backend.Completer, pb *prompt.Builder, ui UI, command string) error {
	ui.StartThinking("Thinking...")
	res, err := b.Complete(ctx, pb.Explain(command))
	ui.StopThinking()
	if err != nil {
		return fmt.Errorf("failed to explain command: %w", err)
	}

	entries, summary := format.ParseExplanation(res.Text)
	ui.ShowExplanation(entries, summary, res.Cost)
	return nil
}
