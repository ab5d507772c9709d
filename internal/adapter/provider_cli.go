package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

type promptStyle int

const (
	promptPositional promptStyle = iota
	promptLongFlag
	promptShortFlag
)

// CLIProvider drives a local suggestion CLI such as `gh copilot suggest`.
type CLIProvider struct {
	name    string
	shell   ShellAdapter
	workDir string
	// argv prefix, e.g. ["gh", "copilot", "suggest"].
	argv []string

	checked   bool
	available bool
	style     promptStyle
}

// NewGHCopilotProvider returns the `gh copilot suggest` provider.
func NewGHCopilotProvider(shell ShellAdapter, workDir string) *CLIProvider {
	return NewCLIProvider(ProviderGHCopilot, shell, workDir, "gh", "copilot", "suggest")
}

// NewCopilotCLIProvider returns the standalone `copilot generate` provider.
func NewCopilotCLIProvider(shell ShellAdapter, workDir string) *CLIProvider {
	return NewCLIProvider(ProviderCopilotCLI, shell, workDir, "copilot", "generate")
}

// NewCLIProvider constructs a provider that runs argv followed by the prompt.
func NewCLIProvider(name string, shell ShellAdapter, workDir string, argv ...string) *CLIProvider {
	return &CLIProvider{name: name, shell: shell, workDir: workDir, argv: argv}
}

// Name implements Provider.
func (p *CLIProvider) Name() string {
	return p.name
}

// Available runs `<argv> --help` once and remembers how the prompt is passed.
func (p *CLIProvider) Available(ctx context.Context) bool {
	if p.checked {
		return p.available
	}

	p.checked = true

	args := append(append([]string{}, p.argv[1:]...), "--help")

	res, err := p.shell.Run(ctx, Command{Name: p.argv[0], Args: args, Dir: p.workDir, Capture: true})
	if err != nil || !res.Success() {
		slog.Info("Provider unavailable", "provider", p.name, "exitCode", res.ExitCode, "error", err)
		return false
	}

	p.available = true
	p.style = detectPromptStyle(res.Stdout + res.Stderr)

	slog.Debug("Provider available", "provider", p.name, "style", p.style)

	return true
}

func detectPromptStyle(help string) promptStyle {
	help = strings.ToLower(help)
	if strings.Contains(help, "--prompt") {
		return promptLongFlag
	}

	for _, field := range strings.Fields(help) {
		if strings.TrimRight(field, ",") == "-p" {
			return promptShortFlag
		}
	}

	return promptPositional
}

// Suggest runs the CLI with prompt. A non-zero exit is reported as an error.
func (p *CLIProvider) Suggest(ctx context.Context, prompt string) (string, error) {
	args := append([]string{}, p.argv[1:]...)

	switch p.style {
	case promptLongFlag:
		args = append(args, "--prompt", prompt)
	case promptShortFlag:
		args = append(args, "-p", prompt)
	default:
		args = append(args, prompt)
	}

	res, err := p.shell.Run(ctx, Command{Name: p.argv[0], Args: args, Dir: p.workDir, Capture: true})
	if err != nil {
		return "", fmt.Errorf("%s: %w", p.name, err)
	}

	if !res.Success() {
		slog.Warn("Provider exited non-zero", "provider", p.name, "exitCode", res.ExitCode, "stderr", strings.TrimSpace(res.Stderr))
		return "", fmt.Errorf("%s: exit status %d", p.name, res.ExitCode)
	}

	return res.Stdout, nil
}
