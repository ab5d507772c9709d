package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"gapfill.dev/pkg/gapfill/internal/adapter"
	"gapfill.dev/pkg/gapfill/internal/controller"
	m "gapfill.dev/pkg/gapfill/internal/model"
)

// GapStrategy selects how targeted suggestions are folded into a module's test file.
type GapStrategy string

const (
	// GapMerge adds each targeted suggestion's new tests to the existing file.
	GapMerge GapStrategy = "merge"
	// GapReplace overwrites the file with every targeted suggestion; the last one wins.
	GapReplace GapStrategy = "replace"
)

// ParseGapStrategy maps a config value to a GapStrategy, defaulting to merge.
func ParseGapStrategy(s string) GapStrategy {
	if GapStrategy(strings.ToLower(strings.TrimSpace(s))) == GapReplace {
		return GapReplace
	}

	return GapMerge
}

// RunArgs controls one pipeline run.
type RunArgs struct {
	Strategy GapStrategy
	// Revalidate runs the suite again after gap closing and rolls back on failure.
	Revalidate bool
}

// Workflow seeds tests for changed modules, closes coverage gaps and publishes
// the result, or rolls everything back when the suite fails.
type Workflow interface {
	// Run returns ErrNoWork when nothing qualified and ErrValidationFailed
	// after a rollback. The report is non-nil whenever detection succeeded.
	Run(ctx context.Context, args RunArgs) (*m.RunReport, error)
}

// Pipeline groups the components a Workflow sequences.
type Pipeline struct {
	Detector     ChangeDetector
	Extractor    FunctionExtractor
	Suggester    Suggester
	Sanitizer    Sanitizer
	Materializer Materializer
	Validator    Validator
	Analyzer     CoverageAnalyzer
	Publisher    Publisher
}

type workflow struct {
	adapter.SourceFSAdapter
	controller.UI
	Pipeline
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
func NewWorkflow(fsAdapter adapter.SourceFSAdapter, ui controller.UI, pipeline Pipeline) Workflow {
	return &workflow{
		SourceFSAdapter: fsAdapter,
		UI:              ui,
		Pipeline:        pipeline,
	}
}

func (w *workflow) Run(ctx context.Context, args RunArgs) (*m.RunReport, error) {
	if err := w.Start(ctx); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return nil, err
	}
	defer w.Close(ctx)

	files, err := w.Detector.Detect(ctx)
	if errors.Is(err, ErrNoWork) {
		w.DisplayNoWork(ctx)
		return nil, err
	}

	if err != nil {
		slog.Error("Failed to detect changed files", "error", err)
		return nil, fmt.Errorf("detect changes: %w", err)
	}

	w.DisplayChangedFiles(ctx, files)

	tmpDir, err := w.CreateTempDir("gapfill-run-*")
	if err != nil {
		slog.Error("Failed to create temp dir", "error", err)
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer w.cleanupTempDir(tmpDir)

	reportPath := m.Path(filepath.Join(string(tmpDir), "coverage.json"))
	report := &m.RunReport{}

	if err := w.seed(ctx, files, report); err != nil {
		return w.rollback(ctx, report, err)
	}

	validation, err := w.Validator.Validate(ctx, reportPath)
	w.DisplayValidation(ctx, m.PhaseSeed, validation)

	if err != nil || !validation.Passed {
		return w.rollback(ctx, report, errors.Join(ErrValidationFailed, err))
	}

	report.Validated = true

	gapWrites, err := w.closeGaps(ctx, args.Strategy, reportPath, report)
	if err != nil {
		return w.rollback(ctx, report, err)
	}

	if gapWrites > 0 && args.Revalidate {
		validation, err = w.Validator.Validate(ctx, reportPath)
		w.DisplayValidation(ctx, m.PhaseGap, validation)

		if err != nil || !validation.Passed {
			return w.rollback(ctx, report, errors.Join(ErrValidationFailed, err))
		}

		report.Revalidated = true
	}

	artifacts := report.Artifacts()

	published, err := w.Publisher.Commit(ctx, artifacts)
	report.Published = published
	w.DisplayPublished(ctx, artifacts, published)
	w.DisplaySummary(ctx, report)

	if err != nil {
		return report, fmt.Errorf("publish: %w", err)
	}

	return report, nil
}

// seed asks for a whole-module suite per file and writes what survives sanitizing.
func (w *workflow) seed(ctx context.Context, files []m.SourceFile, report *m.RunReport) error {
	for _, src := range files {
		outcome := &m.FileOutcome{Source: src}
		report.Outcomes = append(report.Outcomes, outcome)

		prompt := WholeModulePrompt(src, w.Extractor.Functions(ctx, src))

		content, provider, err := w.suggest(ctx, prompt)
		outcome.Provider = provider

		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}

			outcome.Note = err.Error()
			w.DisplaySuggestion(ctx, m.PhaseSeed, outcome, "", err)

			continue
		}

		artifact, err := w.Materializer.Write(ctx, src, content)
		if err != nil {
			return fmt.Errorf("materialize %s: %w", src.Rel, err)
		}

		outcome.Artifact = artifact
		w.DisplaySuggestion(ctx, m.PhaseSeed, outcome, "", nil)
	}

	return nil
}

// closeGaps asks for targeted tests of every uncovered function and returns
// the number of writes made.
func (w *workflow) closeGaps(ctx context.Context, strategy GapStrategy, reportPath m.Path, report *m.RunReport) (int, error) {
	writes := 0

	for _, outcome := range report.Outcomes {
		set := w.Analyzer.Analyze(ctx, outcome.Source.Module, reportPath)
		outcome.Uncovered = set.Functions
		w.DisplayUncovered(ctx, set)

		for _, fn := range set.Functions {
			content, provider, err := w.suggest(ctx, SingleFunctionPrompt(outcome.Source, fn))
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return writes, ctxErr
				}

				w.DisplaySuggestion(ctx, m.PhaseGap, outcome, fn, err)

				continue
			}

			if strategy != GapReplace {
				if current, ok := w.Materializer.Current(outcome.Source); ok {
					content = w.Materializer.Merge(ctx, current, content)
				}
			}

			artifact, err := w.Materializer.Write(ctx, outcome.Source, content)
			if err != nil {
				return writes, fmt.Errorf("materialize %s: %w", outcome.Source.Rel, err)
			}

			if artifact != nil {
				outcome.Artifact = artifact
				outcome.GapWrites++
				writes++
			}

			if outcome.Provider == "" {
				outcome.Provider = provider
			}

			w.DisplaySuggestion(ctx, m.PhaseGap, outcome, fn, nil)
		}
	}

	return writes, nil
}

func (w *workflow) suggest(ctx context.Context, prompt m.Prompt) (string, string, error) {
	raw, err := w.Suggester.Suggest(ctx, prompt)
	if err != nil {
		return "", "", err
	}

	content, err := w.Sanitizer.Sanitize(ctx, raw.Text, prompt.Source.Module)
	if err != nil {
		slog.Warn("Discarded suggestion", "provider", raw.Provider, "source", prompt.Source.Rel, "kind", prompt.Kind, "error", err)
		return "", raw.Provider, err
	}

	return content, raw.Provider, nil
}

func (w *workflow) rollback(ctx context.Context, report *m.RunReport, cause error) (*m.RunReport, error) {
	// Rollback must run even when the run itself was canceled.
	paths, rbErr := w.Publisher.Rollback(context.WithoutCancel(ctx))
	report.RolledBack = true

	w.DisplayRolledBack(ctx, paths)
	w.DisplaySummary(ctx, report)

	slog.Error("Rolled back generated tests", "files", len(paths), "cause", cause, "rollbackError", rbErr)

	return report, errors.Join(cause, rbErr)
}

func (w *workflow) cleanupTempDir(tmpDir m.Path) {
	if err := w.RemoveAll(tmpDir); err != nil {
		slog.Error("Failed to cleanup temp dir", "tmpDir", tmpDir, "error", err)
	}
}
