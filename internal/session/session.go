package session

import (
	"strings"

	"github.com/google/uuid"
)

// Mode selects which of the two operations a session performs.
type Mode int

const (
	// ModeExplain breaks an existing command into a structured explanation.
	ModeExplain Mode = iota
	// ModeGenerate turns a description into a candidate command and enters
	// the interactive action loop.
	ModeGenerate
)

// Session is the transient state of one qq invocation. It lives in memory
// for the duration of the process and is never persisted.
type Session struct {
	// ID identifies the session in debug traces.
	ID            string
	Mode          Mode
	OriginalInput string
	// CurrentCommand is set only in generate mode, once at least one
	// generation has succeeded.
	CurrentCommand string
	// History holds every candidate command in order, oldest first. It
	// grows by one per successful generation, reprompt or edit and never
	// shrinks.
	History []string
	// Guidance accumulates the extra direction supplied on each reprompt.
	Guidance []string
}

// New creates a session for the given mode and user input.
func New(mode Mode, input string) *Session {
	return &Session{
		ID:            uuid.New().String(),
		Mode:          mode,
		OriginalInput: input,
	}
}

// SetCommand records a new candidate command, appending it to the history.
func (s *Session) SetCommand(cmd string) {
	s.CurrentCommand = cmd
	s.History = append(s.History, cmd)
}

// Action is one of the single-letter choices offered by the interaction
// loop.
type Action int

const (
	// ActionUnknown is the deliberate default for any input that is not a
	// recognized action; the loop redisplays its prompt without error.
	ActionUnknown Action = iota
	// ActionExplain explains the current command.
	ActionExplain
	// ActionExecute runs the current command and ends the session.
	ActionExecute
	// ActionEdit opens the current command in the user's editor.
	ActionEdit
	// ActionReprompt regenerates the command with extra guidance.
	ActionReprompt
	// ActionCopy copies the current command to the clipboard.
	ActionCopy
	// ActionQuit ends the session without running anything.
	ActionQuit
)

// actionKeys is the total mapping from input letter to action. Anything
// not present maps to ActionUnknown.
var actionKeys = map[string]Action{
	"e": ActionExplain,
	"x": ActionExecute,
	"i": ActionEdit,
	"r": ActionReprompt,
	"c": ActionCopy,
	"q": ActionQuit,
}

// ParseAction maps user input to an Action. Input is trimmed and
// lowercased; unrecognized input yields ActionUnknown.
func ParseAction(input string) Action {
	if a, ok := actionKeys[strings.ToLower(strings.TrimSpace(input))]; ok {
		return a
	}
	return ActionUnknown
}
