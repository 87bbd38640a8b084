package session

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/quickq/qq/internal/backend"
	"github.com/quickq/qq/internal/format"
	"github.com/quickq/qq/internal/prompt"
)

// mockCompleter plays back a scripted sequence of completions, recording
// every prompt it receives.
type completion struct {
	res *backend.CompletionResult
	err error
}

type mockCompleter struct {
	prompts []string
	script  []completion
}

func (m *mockCompleter) Complete(ctx context.Context, p string) (*backend.CompletionResult, error) {
	m.prompts = append(m.prompts, p)
	if len(m.script) == 0 {
		return nil, &backend.Error{Message: "mock script exhausted"}
	}
	next := m.script[0]
	m.script = m.script[1:]
	return next.res, next.err
}

func textCompletion(text string) completion {
	return completion{res: &backend.CompletionResult{
		Text:  text,
		Usage: &backend.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
		Cost:  backend.CostEstimate{USD: 0.0001, Known: true},
	}}
}

func errCompletion(msg string) completion {
	return completion{err: &backend.Error{StatusCode: 500, Message: msg}}
}

// mockUI feeds scripted actions into the loop and records everything the
// loop displays.
type mockUI struct {
	actions  []Action
	guidance []string
	edits    []string

	shownCommands []string
	explanations  []string
	messages      []string
	errors        []string
}

func (m *mockUI) ShowCommand(command string, cost backend.CostEstimate) {
	m.shownCommands = append(m.shownCommands, command)
}

func (m *mockUI) ShowExplanation(entries []format.Entry, summary string, cost backend.CostEstimate) {
	var sb strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&sb, "%s - %s\n", e.Token, e.Description)
	}
	fmt.Fprintf(&sb, "%s\n(cost: %s)", summary, cost)
	m.explanations = append(m.explanations, sb.String())
}

func (m *mockUI) ShowMessage(msg string) { m.messages = append(m.messages, msg) }
func (m *mockUI) ShowError(msg string)   { m.errors = append(m.errors, msg) }

func (m *mockUI) PromptAction() (Action, error) {
	if len(m.actions) == 0 {
		return ActionQuit, nil
	}
	next := m.actions[0]
	m.actions = m.actions[1:]
	return next, nil
}

func (m *mockUI) PromptGuidance() (string, error) {
	if len(m.guidance) == 0 {
		return "", nil
	}
	next := m.guidance[0]
	m.guidance = m.guidance[1:]
	return next, nil
}

func (m *mockUI) EditCommand(current string) (string, error) {
	if len(m.edits) == 0 {
		return current, nil
	}
	next := m.edits[0]
	m.edits = m.edits[1:]
	return next, nil
}

func (m *mockUI) StartThinking(msg string) {}
func (m *mockUI) StopThinking()            {}

type mockRunner struct {
	code        int
	lastCommand string
	called      bool
}

func (m *mockRunner) Run(command string) (int, error) {
	m.called = true
	m.lastCommand = command
	return m.code, nil
}

func testBuilder() *prompt.Builder {
	return prompt.NewBuilderWithInfo(prompt.Info{
		OS: "linux", Shell: "/bin/zsh", User: "dev", Home: "/home/dev", ColorSupport: "disabled",
	})
}

func newTestLoop(description string, completer *mockCompleter, ui *mockUI, runner *mockRunner) *Loop {
	return &Loop{
		Session:   New(ModeGenerate, description),
		Backend:   completer,
		Prompts:   testBuilder(),
		UI:        ui,
		Runner:    runner,
		Clipboard: func(string) error { return nil },
	}
}

// The end-to-end reprompt scenario: generate, refine once, quit without
// executing anything.
func TestLoopRepromptScenario(t *testing.T) {
	completer := &mockCompleter{script: []completion{
		textCompletion("<command>ffmpeg -i video.mp4 -vn audio.mp3</command>"),
		textCompletion("<command>ffmpeg -i video.mp4 -vn song.mp3</command>"),
	}}
	ui := &mockUI{
		actions:  []Action{ActionReprompt, ActionQuit},
		guidance: []string{"output should be song.mp3"},
	}
	runner := &mockRunner{}
	loop := newTestLoop("make an mp3 from video.mp4", completer, ui, runner)

	code := loop.Run(context.Background())

	if code != 0 {
		t.Errorf("expected exit code 0, got %d", code)
	}
	if runner.called {
		t.Error("no command may be executed in this scenario")
	}
	if len(loop.Session.History) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(loop.Session.History))
	}
	if loop.Session.CurrentCommand != "ffmpeg -i video.mp4 -vn song.mp3" {
		t.Errorf("unexpected final command: %q", loop.Session.CurrentCommand)
	}

	// The regeneration prompt must carry the guidance and the previous
	// candidate.
	if len(completer.prompts) != 2 {
		t.Fatalf("expected 2 backend calls, got %d", len(completer.prompts))
	}
	reprompt := completer.prompts[1]
	if !strings.Contains(reprompt, "output should be song.mp3") {
		t.Error("reprompt does not carry the guidance")
	}
	if !strings.Contains(reprompt, "ffmpeg -i video.mp4 -vn audio.mp3") {
		t.Error("reprompt does not carry the previous candidate")
	}
}

func TestLoopExecutePropagatesExitCode(t *testing.T) {
	completer := &mockCompleter{script: []completion{
		textCompletion("<command>false</command>"),
	}}
	ui := &mockUI{actions: []Action{ActionExecute}}
	runner := &mockRunner{code: 3}
	loop := newTestLoop("fail on purpose", completer, ui, runner)

	code := loop.Run(context.Background())

	if code != 3 {
		t.Errorf("expected the command's exit code 3, got %d", code)
	}
	if runner.lastCommand != "false" {
		t.Errorf("unexpected executed command: %q", runner.lastCommand)
	}
}

func TestLoopUnknownActionRedisplays(t *testing.T) {
	completer := &mockCompleter{script: []completion{
		textCompletion("<command>ls -la</command>"),
	}}
	ui := &mockUI{actions: []Action{ActionUnknown, ActionUnknown, ActionQuit}}
	runner := &mockRunner{}
	loop := newTestLoop("list files", completer, ui, runner)

	code := loop.Run(context.Background())

	if code != 0 {
		t.Errorf("expected exit code 0, got %d", code)
	}
	if len(loop.Session.History) != 1 {
		t.Errorf("unrecognized input must not change state, history = %d", len(loop.Session.History))
	}
	// The command is redisplayed on every pass, including after bad input.
	if len(ui.shownCommands) != 3 {
		t.Errorf("expected the command shown 3 times, got %d", len(ui.shownCommands))
	}
	if len(ui.errors) != 0 {
		t.Errorf("bad keystrokes must not raise errors: %v", ui.errors)
	}
}

func TestLoopBackendErrorKeepsSessionAlive(t *testing.T) {
	completer := &mockCompleter{script: []completion{
		errCompletion("upstream exploded"),
		textCompletion("<command>ls</command>"),
	}}
	ui := &mockUI{
		actions:  []Action{ActionReprompt, ActionQuit},
		guidance: []string{"try again"},
	}
	runner := &mockRunner{}
	loop := newTestLoop("list files", completer, ui, runner)

	code := loop.Run(context.Background())

	if code != 0 {
		t.Errorf("expected exit code 0, got %d", code)
	}
	if len(ui.errors) == 0 {
		t.Fatal("the initial failure must be reported")
	}
	if !strings.Contains(ui.errors[0], "upstream exploded") {
		t.Errorf("error message lost: %q", ui.errors[0])
	}
	if loop.Session.CurrentCommand != "ls" {
		t.Errorf("reprompt after failure should recover: %q", loop.Session.CurrentCommand)
	}
	if len(loop.Session.History) != 1 {
		t.Errorf("only the successful generation counts: %d", len(loop.Session.History))
	}
}

func TestLoopExplainAction(t *testing.T) {
	completer := &mockCompleter{script: []completion{
		textCompletion("<command>tar -xzf a.tar.gz</command>"),
		textCompletion("tar - Archive tool\n    -xzf a.tar.gz - Extract the gzipped archive\nThis extracts a.tar.gz."),
	}}
	ui := &mockUI{actions: []Action{ActionExplain, ActionQuit}}
	runner := &mockRunner{}
	loop := newTestLoop("extract the archive", completer, ui, runner)

	code := loop.Run(context.Background())

	if code != 0 {
		t.Errorf("expected exit code 0, got %d", code)
	}
	if len(ui.explanations) != 1 {
		t.Fatalf("expected 1 explanation, got %d", len(ui.explanations))
	}
	if !strings.Contains(ui.explanations[0], "Extract the gzipped archive") {
		t.Errorf("unexpected explanation: %q", ui.explanations[0])
	}
	if len(loop.Session.History) != 1 {
		t.Error("explaining must not grow the history")
	}
}

func TestLoopEditAppendsHistory(t *testing.T) {
	completer := &mockCompleter{script: []completion{
		textCompletion("<command>ls</command>"),
	}}
	ui := &mockUI{
		actions: []Action{ActionEdit, ActionQuit},
		edits:   []string{"ls -la"},
	}
	runner := &mockRunner{}
	loop := newTestLoop("list files", completer, ui, runner)

	loop.Run(context.Background())

	if loop.Session.CurrentCommand != "ls -la" {
		t.Errorf("edited text must become the current command: %q", loop.Session.CurrentCommand)
	}
	if len(loop.Session.History) != 2 {
		t.Errorf("edit must append to history, got %d entries", len(loop.Session.History))
	}
}

func TestLoopCopyAction(t *testing.T) {
	completer := &mockCompleter{script: []completion{
		textCompletion("<command>uptime</command>"),
	}}
	ui := &mockUI{actions: []Action{ActionCopy, ActionQuit}}
	runner := &mockRunner{}
	loop := newTestLoop("how long has this box been up", completer, ui, runner)

	var copied string
	loop.Clipboard = func(s string) error {
		copied = s
		return nil
	}

	loop.Run(context.Background())

	if copied != "uptime" {
		t.Errorf("unexpected clipboard content: %q", copied)
	}
	if len(loop.Session.History) != 1 {
		t.Error("copy must not change state")
	}
}

func TestLoopMalformedGeneration(t *testing.T) {
	completer := &mockCompleter{script: []completion{
		textCompletion("I am sorry, I cannot help with that.\nPlease clarify."),
	}}
	ui := &mockUI{actions: []Action{ActionQuit}}
	runner := &mockRunner{}
	loop := newTestLoop("do something odd", completer, ui, runner)

	code := loop.Run(context.Background())

	if code != 0 {
		t.Errorf("expected exit code 0, got %d", code)
	}
	if len(loop.Session.History) != 0 {
		t.Error("a malformed response must not enter the history")
	}
	if len(ui.errors) != 1 {
		t.Fatalf("expected 1 reported error, got %d", len(ui.errors))
	}
	// The raw response is included so the user can judge the output.
	if !strings.Contains(ui.errors[0], "I am sorry, I cannot help with that.") {
		t.Errorf("raw response missing from error: %q", ui.errors[0])
	}
}

func TestExplainIdempotent(t *testing.T) {
	const response = "ffmpeg - Multimedia converter\n" +
		"    -i in.mov - Read input from in.mov\n" +
		"    -vcodec libx264 out.mov - Encode with libx264 into out.mov\n" +
		"This command converts in.mov into an H.264 encoded out.mov."

	render := func() string {
		completer := &mockCompleter{script: []completion{textCompletion(response)}}
		ui := &mockUI{}
		err := Explain(context.Background(), completer, testBuilder(), ui, "ffmpeg -i in.mov -vcodec libx264 out.mov")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(ui.explanations) != 1 {
			t.Fatalf("expected 1 explanation, got %d", len(ui.explanations))
		}
		return ui.explanations[0]
	}

	first := render()
	second := render()
	if first != second {
		t.Errorf("explain output is not byte-identical:\n%q\n%q", first, second)
	}

	// Scenario 1: three entries plus one summary line, in order.
	if !strings.HasPrefix(first, "ffmpeg - Multimedia converter\n") {
		t.Errorf("entries out of order: %q", first)
	}
	if !strings.Contains(first, "This command converts in.mov") {
		t.Errorf("summary missing: %q", first)
	}
}

func TestExplainBackendErrorIsFatal(t *testing.T) {
	completer := &mockCompleter{script: []completion{errCompletion("boom")}}
	ui := &mockUI{}

	err := Explain(context.Background(), completer, testBuilder(), ui, "ls")
	if err == nil {
		t.Fatal("backend failure in explain mode must surface as an error")
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("cause lost: %v", err)
	}
}
