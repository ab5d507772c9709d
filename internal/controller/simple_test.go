package controller

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "gapfill.dev/pkg/gapfill/internal/model"
)

func newTestUI() (*SimpleUI, *bytes.Buffer) {
	var buf bytes.Buffer

	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	return NewSimpleUI(cmd, false), &buf
}

var mathops = m.SourceFile{Path: "/work/src/mathops.py", Rel: "src/mathops.py", Module: "src.mathops"}

func TestSimpleUI_DisplayChangedFiles(t *testing.T) {
	ui, buf := newTestUI()

	ui.DisplayChangedFiles(context.Background(), []m.SourceFile{mathops})

	assert.Equal(t, "Changed files detected: 1\n  src/mathops.py\n", buf.String())
}

func TestSimpleUI_DisplaySuggestion(t *testing.T) {
	ui, buf := newTestUI()
	ctx := context.Background()

	outcome := &m.FileOutcome{
		Source:   mathops,
		Provider: "openai",
		Artifact: &m.TestFile{Path: "/work/tests/test_mathops.py"},
	}

	ui.DisplaySuggestion(ctx, m.PhaseSeed, outcome, "", nil)
	ui.DisplaySuggestion(ctx, m.PhaseGap, outcome, "divide", errors.New("suggestion contains no test functions"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "[seed] generated src/mathops.py -> /work/tests/test_mathops.py (openai)", lines[0])
	assert.Equal(t, "[gap] no tests for src/mathops.py::divide (suggestion contains no test functions)", lines[1])
}

func TestSimpleUI_DisplayValidation(t *testing.T) {
	ui, buf := newTestUI()
	ctx := context.Background()

	ui.DisplayValidation(ctx, m.PhaseSeed, m.Validation{Passed: true, Output: "collected 0 items\n", NoTests: true})
	ui.DisplayValidation(ctx, m.PhaseGap, m.Validation{ExitCode: 1})

	out := buf.String()
	assert.Contains(t, out, "collected 0 items\nNo tests collected.\n[seed] tests passed\n")
	assert.Contains(t, out, "[gap] tests failed (exit status 1)\n")
}

func TestSimpleUI_DisplayPublishedAndRolledBack(t *testing.T) {
	ui, buf := newTestUI()
	ctx := context.Background()

	ui.DisplayPublished(ctx, nil, false)
	ui.DisplayPublished(ctx, []m.TestFile{{Path: "tests/test_mathops.py"}, {Path: "tests/test_strings.py", Existed: true}}, true)
	ui.DisplayRolledBack(ctx, []m.Path{"/work/tests/test_mathops.py"})

	out := buf.String()
	assert.Contains(t, out, "No generated test files to commit.")
	assert.Contains(t, out, "Committed and pushed 2 generated test file(s) (1 new, 1 updated).")
	assert.Contains(t, out, "Rolled back /work/tests/test_mathops.py\n")
}

func TestSimpleUI_DisplayUncovered(t *testing.T) {
	ui, buf := newTestUI()

	ui.DisplayUncovered(context.Background(), m.UncoveredSet{Module: "src.mathops"})
	assert.Empty(t, buf.String())

	ui.DisplayUncovered(context.Background(), m.UncoveredSet{Module: "src.mathops", Functions: []m.FunctionName{"divide", "factorial"}})
	assert.Equal(t, "Uncovered in src.mathops: divide, factorial\n", buf.String())
}

func TestSimpleUI_DisplaySummary(t *testing.T) {
	ui, buf := newTestUI()

	report := &m.RunReport{
		Validated: true,
		Published: true,
		Outcomes: []*m.FileOutcome{
			{Source: mathops, Provider: "gh-copilot", Artifact: &m.TestFile{Path: "/work/tests/test_mathops.py"}, Uncovered: []m.FunctionName{"divide"}, GapWrites: 1},
			{Source: m.SourceFile{Rel: "src/strings.py"}, Provider: "gh-copilot", Artifact: &m.TestFile{Path: "/work/tests/test_strings.py", Existed: true}},
			{Source: m.SourceFile{Rel: "src/empty.py"}},
		},
	}

	ui.DisplaySummary(context.Background(), report)

	out := buf.String()
	assert.Contains(t, out, "src/mathops.py")
	assert.Contains(t, out, "gh-copilot")
	assert.Contains(t, out, "divide")
	assert.Contains(t, out, "/work/tests/test_strings.py (updated)")
	assert.NotContains(t, out, "test_mathops.py (updated)")
	assert.Contains(t, out, "TOTAL FILES 3")
	assert.Contains(t, out, "2 WRITTEN")
	assert.Contains(t, out, "PUBLISHED")
}

func TestSimpleUI_CanceledContextPrintsNothing(t *testing.T) {
	ui, buf := newTestUI()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ui.DisplayNoWork(ctx)
	ui.DisplayChangedFiles(ctx, []m.SourceFile{mathops})
	assert.Empty(t, buf.String())
	assert.Error(t, ui.Start(ctx))
}

func TestIsTTY(t *testing.T) {
	assert.False(t, IsTTY(nil))

	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()

	assert.False(t, IsTTY(f))
}
