package adapter

import (
	"context"
	"fmt"
)

// TestRunnerAdapter abstracts running the pytest suite of the working tree.
type TestRunnerAdapter interface {
	// RunTests runs the suite in workDir with the given extra arguments and
	// returns the combined stdout/stderr output and the runner's exit code.
	RunTests(ctx context.Context, workDir string, args ...string) (output string, exitCode int, err error)
}

// LocalTestRunnerAdapter runs the configured runner command through a ShellAdapter.
type LocalTestRunnerAdapter struct {
	shell   ShellAdapter
	command []string
}

// DefaultRunnerCommand runs pytest through the interpreter so the working
// directory is importable (src.<module> resolves without extra config).
var DefaultRunnerCommand = []string{"python", "-m", "pytest"}

// NewLocalTestRunnerAdapter constructs a LocalTestRunnerAdapter. An empty
// command falls back to DefaultRunnerCommand.
func NewLocalTestRunnerAdapter(shell ShellAdapter, command []string) *LocalTestRunnerAdapter {
	if len(command) == 0 {
		command = DefaultRunnerCommand
	}

	return &LocalTestRunnerAdapter{shell: shell, command: command}
}

// RunTests runs the suite and reports its exit code. A runner that cannot be
// started is an error; a failing suite is not.
func (a *LocalTestRunnerAdapter) RunTests(ctx context.Context, workDir string, args ...string) (string, int, error) {
	argv := make([]string, 0, len(a.command)-1+len(args))
	argv = append(argv, a.command[1:]...)
	argv = append(argv, args...)

	res, err := a.shell.Run(ctx, Command{
		Name:    a.command[0],
		Args:    argv,
		Dir:     workDir,
		Capture: true,
	})
	if err != nil {
		return "", -1, fmt.Errorf("run test runner: %w", err)
	}

	return res.Stdout + res.Stderr, res.ExitCode, nil
}
