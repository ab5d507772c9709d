package domain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gapfill.dev/pkg/gapfill/internal/adapter"
	m "gapfill.dev/pkg/gapfill/internal/model"
)

// Validator runs the test suite with coverage enabled.
type Validator interface {
	// Validate runs the suite and writes the JSON coverage report to reportPath.
	// A suite that cannot be started is an error; a failing suite is not.
	Validate(ctx context.Context, reportPath m.Path) (m.Validation, error)
}

type validator struct {
	runner adapter.TestRunnerAdapter
	layout Layout
}

// NewValidator constructs a Validator measuring coverage of layout's source root.
func NewValidator(runner adapter.TestRunnerAdapter, layout Layout) Validator {
	return &validator{runner: runner, layout: layout}
}

// ValidatorArgs are the runner flags for a quiet, fail-fast run with coverage.
func ValidatorArgs(sourceRoot string, reportPath m.Path) []string {
	return []string{
		"-q",
		"--disable-warnings",
		"--maxfail=1",
		"--cov=" + sourceRoot,
		"--cov-report=term-missing",
		"--cov-report=json:" + string(reportPath),
	}
}

func (v *validator) Validate(ctx context.Context, reportPath m.Path) (m.Validation, error) {
	output, exitCode, err := v.runner.RunTests(ctx, string(v.layout.WorkDir), ValidatorArgs(v.layout.SourceRoot, reportPath)...)
	if err != nil {
		slog.Error("Failed to run test suite", "error", err)
		return m.Validation{ExitCode: exitCode}, fmt.Errorf("validate: %w", err)
	}

	result := m.Validation{
		Passed:   exitCode == 0,
		ExitCode: exitCode,
		Output:   output,
		NoTests:  strings.Contains(output, "collected 0 items") || strings.Contains(output, "no tests ran"),
	}

	if result.NoTests {
		slog.Warn("Test runner collected no tests")
	}

	slog.Info("Validation finished", "passed", result.Passed, "exitCode", exitCode)

	return result, nil
}
