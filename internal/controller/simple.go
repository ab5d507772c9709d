package controller

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "gapfill.dev/pkg/gapfill/internal/model"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#20B9B4"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#2CD7C7"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F4D03F"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#E74C3C"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#2C4A54"))
)

// SimpleUI implements UI using cobra Command's output stream.
type SimpleUI struct {
	cmd    *cobra.Command
	styled bool
}

// NewSimpleUI creates a new SimpleUI. Styling is applied only when styled is true.
func NewSimpleUI(cmd *cobra.Command, styled bool) *SimpleUI {
	return &SimpleUI{cmd: cmd, styled: styled}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context) error {
	return ctx.Err()
}

// Close finalizes the UI.
func (s *SimpleUI) Close(_ context.Context) {}

// DisplayChangedFiles lists the modules the run will work on.
func (s *SimpleUI) DisplayChangedFiles(ctx context.Context, files []m.SourceFile) {
	if ctx.Err() != nil {
		return
	}

	s.printf("%s\n", s.style(titleStyle, fmt.Sprintf("Changed files detected: %d", len(files))))

	for _, f := range files {
		s.printf("  %s\n", f.Rel)
	}
}

// DisplayNoWork reports that there was nothing to generate tests for.
func (s *SimpleUI) DisplayNoWork(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	s.printf("%s\n", s.style(mutedStyle, "No changed source files found, nothing to do."))
}

// DisplaySuggestion reports the result of one provider request.
func (s *SimpleUI) DisplaySuggestion(ctx context.Context, phase m.Phase, outcome *m.FileOutcome, fn m.FunctionName, err error) {
	if ctx.Err() != nil || outcome == nil {
		return
	}

	target := outcome.Source.Rel
	if fn != "" {
		target = fmt.Sprintf("%s::%s", target, fn)
	}

	if err != nil {
		s.printf("[%s] %s %s\n", phase, s.style(warningStyle, "no tests for"), fmt.Sprintf("%s (%v)", target, err))
		return
	}

	path := "-"
	if outcome.Artifact != nil {
		path = string(outcome.Artifact.Path)
	}

	s.printf("[%s] %s %s -> %s (%s)\n", phase, s.style(successStyle, "generated"), target, path, outcome.Provider)
}

// DisplayValidation prints the runner output and the verdict.
func (s *SimpleUI) DisplayValidation(ctx context.Context, phase m.Phase, result m.Validation) {
	if ctx.Err() != nil {
		return
	}

	if out := strings.TrimRight(result.Output, "\n"); out != "" {
		s.printf("%s\n", out)
	}

	if result.NoTests {
		s.printf("%s\n", s.style(warningStyle, "No tests collected."))
	}

	if result.Passed {
		s.printf("[%s] %s\n", phase, s.style(successStyle, "tests passed"))
		return
	}

	s.printf("[%s] %s (exit status %d)\n", phase, s.style(errorStyle, "tests failed"), result.ExitCode)
}

// DisplayUncovered lists the functions selected for gap closing.
func (s *SimpleUI) DisplayUncovered(ctx context.Context, set m.UncoveredSet) {
	if ctx.Err() != nil || len(set.Functions) == 0 {
		return
	}

	names := make([]string, 0, len(set.Functions))
	for _, fn := range set.Functions {
		names = append(names, string(fn))
	}

	s.printf("Uncovered in %s: %s\n", set.Module, strings.Join(names, ", "))
}

// DisplayPublished reports the commit outcome.
func (s *SimpleUI) DisplayPublished(ctx context.Context, files []m.TestFile, published bool) {
	if ctx.Err() != nil {
		return
	}

	switch {
	case len(files) == 0:
		s.printf("%s\n", s.style(mutedStyle, "No generated test files to commit."))
	case published:
		updated := 0

		for _, f := range files {
			if f.Existed {
				updated++
			}
		}

		s.printf("%s\n", s.style(successStyle, fmt.Sprintf("Committed and pushed %d generated test file(s) (%d new, %d updated).",
			len(files), len(files)-updated, updated)))
	default:
		s.printf("%s\n", s.style(warningStyle, "Generated tests were not fully published, see the log for details."))
	}
}

// DisplayRolledBack lists the files restored or removed after a failed validation.
func (s *SimpleUI) DisplayRolledBack(ctx context.Context, paths []m.Path) {
	if ctx.Err() != nil {
		return
	}

	for _, p := range paths {
		s.printf("Rolled back %s\n", p)
	}

	s.printf("%s\n", s.style(errorStyle, "Rolled back generated test files."))
}

// DisplaySummary renders the per-file outcome table.
func (s *SimpleUI) DisplaySummary(ctx context.Context, report *m.RunReport) {
	if ctx.Err() != nil || report == nil || len(report.Outcomes) == 0 {
		return
	}

	s.printf("\n%s", renderSummaryTable(report))
}

func renderSummaryTable(report *m.RunReport) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Source", "Provider", "Test File", "Uncovered", "Gap Writes"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)

	written := 0

	for _, outcome := range report.Outcomes {
		provider := outcome.Provider
		if provider == "" {
			provider = "-"
		}

		artifact := "-"
		if outcome.Artifact != nil {
			artifact = string(outcome.Artifact.Path)
			if outcome.Artifact.Existed {
				artifact += " (updated)"
			}

			written++
		}

		uncovered := make([]string, 0, len(outcome.Uncovered))
		for _, fn := range outcome.Uncovered {
			uncovered = append(uncovered, string(fn))
		}

		table.Append([]string{
			outcome.Source.Rel,
			provider,
			artifact,
			strings.Join(uncovered, ","),
			fmt.Sprintf("%d", outcome.GapWrites),
		})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Files %d", len(report.Outcomes)),
		"",
		fmt.Sprintf("%d written", written),
		"",
		runStatus(report),
	})

	table.Render()

	return tableBuffer.String()
}

func runStatus(report *m.RunReport) string {
	switch {
	case report.RolledBack:
		return "rolled back"
	case report.Published:
		return "published"
	case report.Validated:
		return "validated"
	}

	return "incomplete"
}

func (s *SimpleUI) style(st lipgloss.Style, text string) string {
	if !s.styled {
		return text
	}

	return st.Render(text)
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
