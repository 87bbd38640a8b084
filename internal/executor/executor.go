package executor

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// ShellRunner executes command strings in the user's shell. It satisfies
// the session.Runner interface.
type ShellRunner struct {
	Debug bool
}

// Run executes the literal command string via the user's shell with the
// process's standard streams attached. It returns the command's exit code
// so the caller can propagate it as qq's own exit code; err is non-nil only
// when the command could not be started.
func (r ShellRunner) Run(command string) (int, error) {
	var shell string
	var shellArgs []string

	if runtime.GOOS == "windows" {
		shell = "cmd"
		shellArgs = []string{"/C", command}
	} else {
		shell = os.Getenv("SHELL")
		if shell == "" {
			shell = "/bin/sh"
		}
		shellArgs = []string{"-c", command}
	}

	if r.Debug {
		fmt.Fprintf(os.Stderr, "[DEBUG] Executor: running %q via %s\n", command, shell)
	}

	cmd := exec.Command(shell, shellArgs...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			if r.Debug {
				fmt.Fprintf(os.Stderr, "[DEBUG] Executor: exit code %d\n", exitErr.ExitCode())
			}
			return exitErr.ExitCode(), nil
		}
		return 1, fmt.Errorf("failed to run command: %w", err)
	}

	return 0, nil
}
