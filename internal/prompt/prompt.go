package prompt

import (
	"os"
	"runtime"
	"strings"
	"text/template"
)

// Builder renders the instruction templates sent to the completion backend.
// A Builder captures its system information once at construction so that
// building the same prompt twice always yields the same string.
type Builder struct {
	info Info
}

// Info is the environment detail embedded into generate prompts.
type Info struct {
	OS           string
	Shell        string
	User         string
	Home         string
	ColorSupport string
}

// NewBuilder collects system information from the current process
// environment. When includeEnv is false, environment fields are reported as
// "Unknown" so the backend cannot tailor commands to this machine.
func NewBuilder(includeEnv, color bool) *Builder {
	info := Info{
		OS:    "Unknown",
		Shell: "Unknown",
		User:  "Unknown",
		Home:  "Unknown",
	}
	if includeEnv {
		info.OS = runtime.GOOS
		if shell := os.Getenv("SHELL"); shell != "" {
			info.Shell = shell
		}
		if user := os.Getenv("USER"); user != "" {
			info.User = user
		}
		if home, err := os.UserHomeDir(); err == nil {
			info.Home = home
		}
	}
	info.ColorSupport = "disabled"
	if color {
		info.ColorSupport = "enabled"
	}
	return &Builder{info: info}
}

// NewBuilderWithInfo creates a Builder with fixed system information.
func NewBuilderWithInfo(info Info) *Builder {
	return &Builder{info: info}
}

const explainTemplate = `You are an expert in explaining command-line operations across operating
systems and shells. Break the command below into its constituent parts.

Guidelines:
1. Print one line per command fragment: the fragment, then " - ", then a
   concise explanation of that fragment. Indent fragments according to their
   role in the pipeline or argument list.
2. Mention notable side effects or considerations where they matter.
3. Conclude with a one-line summary of the overall operation on its own line,
   with no " - " separator.
4. Shell color support is {{.ColorSupport}}. If enabled you may use subtle
   ANSI color codes; if disabled you must not emit any escape sequences.
5. Do not wrap the output in backticks, tags, or markdown formatting.

Example:
Input: find . -name "*.txt" -delete
Output:
find . - Start searching from the current directory
    -name "*.txt" - Match files whose names end in .txt
    -delete - Remove each matched file
This command deletes every .txt file under the current directory.

Explain this command:
{{.Command}}
`

const generateTemplate = `You are an expert in generating command-line operations across operating
systems and shells. Create a correct, efficient and safe command for the
request below.

Current system information:
- Operating System: {{.Info.OS}}
- Shell: {{.Info.Shell}}
- User: {{.Info.User}}
- Home Directory: {{.Info.Home}}

Guidelines:
1. Output only the command, wrapped in <command></command> tags.
2. Use flags and syntax appropriate for the system above.
3. For complex operations, connect commands with pipes rather than writing
   multi-step instructions.
4. Do not add explanations or markdown outside the tags.

Example:
Input: find all python files changed in the last week and zip them
Output: <command>find . -type f -name "*.py" -mtime -7 -print0 | xargs -0 zip updated.zip</command>

Request:
{{.Description}}
`

var (
	explainTpl  = template.Must(template.New("explain").Parse(explainTemplate))
	generateTpl = template.Must(template.New("generate").Parse(generateTemplate))
)

// Explain builds the prompt asking the backend to explain command. Any
// string is accepted, including empty.
func (b *Builder) Explain(command string) string {
	var sb strings.Builder
	data := struct {
		ColorSupport string
		Command      string
	}{b.info.ColorSupport, command}
	// Templates are parsed at init and the data is plain strings, so
	// execution cannot fail.
	_ = explainTpl.Execute(&sb, data)
	return sb.String()
}

// Generate builds the prompt asking the backend to produce a command for a
// natural-language description.
func (b *Builder) Generate(description string) string {
	var sb strings.Builder
	data := struct {
		Info        Info
		Description string
	}{b.info, description}
	_ = generateTpl.Execute(&sb, data)
	return sb.String()
}

// Reprompt builds a generate prompt that carries the original description,
// the guidance supplied on each reprompt in order, and the most recent
// candidate so the backend can refine rather than start over.
func (b *Builder) Reprompt(description string, guidance []string, previous string) string {
	var sb strings.Builder
	sb.WriteString(description)
	if len(guidance) > 0 {
		sb.WriteString("\n\nAdditional guidance, in order:")
		for _, g := range guidance {
			sb.WriteString("\n- ")
			sb.WriteString(g)
		}
	}
	if previous != "" {
		sb.WriteString("\n\nThe previous candidate command was: ")
		sb.WriteString(previous)
	}
	return b.Generate(sb.String())
}
