// Package format turns loosely-structured model output into displayable
// records. The backend gives no schema guarantee, so parsing is best-effort:
// anything that does not match the expected shape lands verbatim in an
// unparsed remainder rather than being dropped.
package format

import (
	"fmt"
	"regexp"
	"strings"
)

// Entry is one parsed line of an explanation: a command fragment and its
// description.
type Entry struct {
	Token       string
	Description string
}

// MalformedResponseError reports a backend response that could not be
// parsed into a usable command. Raw carries the full response so the user
// can judge the backend's output directly.
type MalformedResponseError struct {
	Raw string
}

func (e *MalformedResponseError) Error() string {
	if strings.TrimSpace(e.Raw) == "" {
		return "malformed response: backend returned no content"
	}
	return fmt.Sprintf("malformed response: no command found in backend output:\n%s", e.Raw)
}

var (
	ansiPattern    = regexp.MustCompile(`\x1b\[[0-9;]*m`)
	commandPattern = regexp.MustCompile(`(?s)<command>(.*?)</command>`)
	fencePattern   = regexp.MustCompile("(?s)```[a-zA-Z]*\n?(.*?)```")
)

// stripANSI removes color escape sequences the backend may emit.
func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

// ParseExplanation splits raw model output into token/description entries
// plus a trailing summary. A line of the shape "token - description" becomes
// an Entry; every other non-blank line is kept verbatim as part of the
// summary so no content from the response is lost.
func ParseExplanation(raw string) ([]Entry, string) {
	var entries []Entry
	var summary []string

	for _, line := range strings.Split(stripANSI(raw), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		token, desc, found := strings.Cut(trimmed, " - ")
		if found && strings.TrimSpace(token) != "" && strings.TrimSpace(desc) != "" {
			entries = append(entries, Entry{
				Token:       strings.TrimSpace(token),
				Description: strings.TrimSpace(desc),
			})
			continue
		}
		summary = append(summary, trimmed)
	}

	return entries, strings.Join(summary, "\n")
}

// ExtractCommand isolates the single command line from a generate-mode
// response. It prefers <command></command> tags, then a code fence, then a
// bare single-line response. A response that is empty or contains only
// prose yields a *MalformedResponseError.
func ExtractCommand(raw string) (string, error) {
	cleaned := stripANSI(raw)

	if m := commandPattern.FindStringSubmatch(cleaned); m != nil {
		if cmd := strings.TrimSpace(m[1]); cmd != "" {
			return cmd, nil
		}
	}

	if m := fencePattern.FindStringSubmatch(cleaned); m != nil {
		for _, line := range strings.Split(m[1], "\n") {
			if cmd := strings.TrimSpace(line); cmd != "" {
				return cmd, nil
			}
		}
	}

	var lines []string
	for _, line := range strings.Split(cleaned, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	if len(lines) == 1 {
		return lines[0], nil
	}

	return "", &MalformedResponseError{Raw: raw}
}
