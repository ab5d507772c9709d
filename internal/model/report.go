package model

// FileCoverage holds the measured lines of one file.
type FileCoverage struct {
	Executed []int
	Missing  []int
}

// CoverageRecord is the set of measured files keyed by slash-separated path
// relative to the working directory.
type CoverageRecord struct {
	Files map[string]FileCoverage
}

// Measured reports whether rel was measured by the test runner.
func (c CoverageRecord) Measured(rel string) bool {
	_, ok := c.Files[rel]
	return ok
}

// MissingLines returns the unexecuted lines of rel.
func (c CoverageRecord) MissingLines(rel string) []int {
	return c.Files[rel].Missing
}

// Empty reports whether nothing was measured.
func (c CoverageRecord) Empty() bool {
	return len(c.Files) == 0
}

// UncoveredSet lists the functions of a module with unexecuted lines.
type UncoveredSet struct {
	Module    string
	Functions []FunctionName
}

// Phase identifies the stage of the run that produced an artifact.
type Phase string

const (
	// PhaseSeed is the whole-module seeding pass.
	PhaseSeed Phase = "seed"
	// PhaseGap is the per-function gap closing pass.
	PhaseGap Phase = "gap"
)

// FileOutcome records what happened to one source file during a run.
type FileOutcome struct {
	Source    SourceFile
	Provider  string
	Artifact  *TestFile
	Uncovered []FunctionName
	GapWrites int
	Note      string
}

// RunReport summarizes a run.
type RunReport struct {
	Outcomes    []*FileOutcome
	Validated   bool
	Revalidated bool
	Published   bool
	RolledBack  bool
}

// Artifacts returns the non-nil test files produced by the run, without duplicates.
func (r *RunReport) Artifacts() []TestFile {
	seen := make(map[Path]struct{})

	var files []TestFile

	for _, outcome := range r.Outcomes {
		if outcome.Artifact == nil {
			continue
		}

		if _, ok := seen[outcome.Artifact.Path]; ok {
			continue
		}

		seen[outcome.Artifact.Path] = struct{}{}
		files = append(files, *outcome.Artifact)
	}

	return files
}

// Validation is the outcome of one test suite run.
type Validation struct {
	Passed   bool
	ExitCode int
	Output   string
	// NoTests is set when the runner collected nothing. It is advisory only.
	NoTests bool
}
