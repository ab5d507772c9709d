package adapter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
)

// Command describes one external process invocation. Arguments are passed to
// the executable as-is; nothing is interpreted by a shell.
type Command struct {
	Name string
	Args []string
	Dir  string
	// Env entries are appended to the parent environment.
	Env []string
	// Capture keeps stdout/stderr in the Result instead of streaming them to the console.
	Capture bool
	// Check turns a non-zero exit code into a *ShellFatalError.
	Check bool
}

// String renders the command line for echoing and logs.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Name)

	for _, arg := range c.Args {
		if arg == "" || strings.ContainsAny(arg, " \t\n\"'") {
			arg = fmt.Sprintf("%q", arg)
		}

		parts = append(parts, arg)
	}

	return strings.Join(parts, " ")
}

// Result is the outcome of a finished process.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Success reports whether the process exited with status zero.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// ShellFatalError is returned for a checked command that exited non-zero. The
// process is expected to terminate with ExitCode.
type ShellFatalError struct {
	Command  string
	ExitCode int
}

func (e *ShellFatalError) Error() string {
	return fmt.Sprintf("command %q exited with status %d", e.Command, e.ExitCode)
}

// ShellAdapter runs external tools on behalf of the pipeline.
type ShellAdapter interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// LocalShellAdapter runs commands with os/exec.
type LocalShellAdapter struct {
	console io.Writer
	errors  io.Writer
}

// NewLocalShellAdapter constructs a LocalShellAdapter that echoes commands to
// console and surfaces the streams of failed checked commands on console/errs.
func NewLocalShellAdapter(console, errs io.Writer) *LocalShellAdapter {
	if console == nil {
		console = io.Discard
	}

	if errs == nil {
		errs = io.Discard
	}

	return &LocalShellAdapter{console: console, errors: errs}
}

// Run executes cmd and waits for it to exit.
func (a *LocalShellAdapter) Run(ctx context.Context, cmd Command) (Result, error) {
	line := cmd.String()
	_, _ = fmt.Fprintf(a.console, "$ %s\n", line)

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir

	if len(cmd.Env) > 0 {
		c.Env = append(c.Environ(), cmd.Env...)
	}

	var stdout, stderr bytes.Buffer

	if cmd.Capture {
		c.Stdout = &stdout
		c.Stderr = &stderr
	} else {
		c.Stdout = io.MultiWriter(&stdout, a.console)
		c.Stderr = io.MultiWriter(&stderr, a.errors)
	}

	err := c.Run()

	result := Result{Stdout: stdout.String(), Stderr: stderr.String()}

	var exitErr *exec.ExitError

	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	default:
		slog.Warn("Failed to start command", "command", line, "error", err)
		return result, fmt.Errorf("run %s: %w", cmd.Name, err)
	}

	slog.Debug("Command finished", "command", line, "exitCode", result.ExitCode)

	if cmd.Check && result.ExitCode != 0 {
		if cmd.Capture {
			_, _ = fmt.Fprint(a.console, result.Stdout)
			_, _ = fmt.Fprint(a.errors, result.Stderr)
		}

		slog.Error("Checked command failed", "command", line, "exitCode", result.ExitCode)

		return result, &ShellFatalError{Command: line, ExitCode: result.ExitCode}
	}

	return result, nil
}
