// Package controller provides console output for pipeline runs.
package controller

import (
	"context"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	m "gapfill.dev/pkg/gapfill/internal/model"
)

// UI reports run progress to the user.
// Implementations can use different output methods (plain text, styled text).
type UI interface {
	Start(ctx context.Context) error
	Close(ctx context.Context)
	DisplayChangedFiles(ctx context.Context, files []m.SourceFile)
	DisplayNoWork(ctx context.Context)
	DisplaySuggestion(ctx context.Context, phase m.Phase, outcome *m.FileOutcome, fn m.FunctionName, err error)
	DisplayValidation(ctx context.Context, phase m.Phase, result m.Validation)
	DisplayUncovered(ctx context.Context, set m.UncoveredSet)
	DisplayPublished(ctx context.Context, files []m.TestFile, published bool)
	DisplayRolledBack(ctx context.Context, paths []m.Path)
	DisplaySummary(ctx context.Context, report *m.RunReport)
}

// NewUI returns a SimpleUI writing to cmd's output, styled when attached to a terminal.
func NewUI(cmd *cobra.Command, isTTY bool) UI {
	return NewSimpleUI(cmd, isTTY)
}

// IsTTY reports whether f is an interactive terminal.
func IsTTY(f *os.File) bool {
	if f == nil {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
