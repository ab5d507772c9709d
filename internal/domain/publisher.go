package domain

import (
	"context"
	"fmt"
	"log/slog"

	"gapfill.dev/pkg/gapfill/internal/adapter"
	m "gapfill.dev/pkg/gapfill/internal/model"
)

// Identity is the author recorded on generated commits.
type Identity struct {
	Name  string
	Email string
}

// Publisher commits validated artifacts or rolls them back.
type Publisher interface {
	// Commit stages, commits and pushes artifacts. Step failures are logged and
	// reported through the returned flag unless the publisher is strict, in
	// which case the first failure is returned.
	Commit(ctx context.Context, artifacts []m.TestFile) (bool, error)
	// Rollback undoes every test file written during the run. No VCS calls are made.
	Rollback(ctx context.Context) ([]m.Path, error)
}

type publisher struct {
	vcs          adapter.VCSAdapter
	materializer Materializer
	layout       Layout
	identity     Identity
	message      string
	strict       bool
}

// NewPublisher constructs a Publisher.
func NewPublisher(
	vcs adapter.VCSAdapter,
	materializer Materializer,
	layout Layout,
	identity Identity,
	message string,
	strict bool,
) Publisher {
	return &publisher{
		vcs:          vcs,
		materializer: materializer,
		layout:       layout,
		identity:     identity,
		message:      message,
		strict:       strict,
	}
}

func (p *publisher) Commit(ctx context.Context, artifacts []m.TestFile) (bool, error) {
	if len(artifacts) == 0 {
		slog.Info("No generated test files, skipping commit")
		return false, nil
	}

	ok := true

	step := func(name string, err error) error {
		if err == nil {
			return nil
		}

		ok = false

		if p.strict {
			slog.Error("Publish step failed", "step", name, "error", err)
			return fmt.Errorf("%s: %w", name, err)
		}

		slog.Warn("Publish step failed", "step", name, "error", err)

		return nil
	}

	if err := step("configure identity", p.vcs.ConfigureIdentity(ctx, p.identity.Name, p.identity.Email)); err != nil {
		return false, err
	}

	for _, artifact := range artifacts {
		rel, err := p.layout.Rel(artifact.Path)
		if err != nil {
			rel = string(artifact.Path)
		}

		if err := step("add "+rel, p.vcs.Add(ctx, rel)); err != nil {
			return false, err
		}
	}

	if err := step("commit", p.vcs.Commit(ctx, p.message)); err != nil {
		return false, err
	}

	if err := step("push", p.vcs.Push(ctx)); err != nil {
		return false, err
	}

	if ok {
		slog.Info("Published generated tests", "files", len(artifacts))
	}

	return ok, nil
}

func (p *publisher) Rollback(ctx context.Context) ([]m.Path, error) {
	return p.materializer.Rollback(ctx)
}
