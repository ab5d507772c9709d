package domain

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"gapfill.dev/pkg/gapfill/internal/adapter"
	m "gapfill.dev/pkg/gapfill/internal/model"
)

// Granularity selects how missing lines are attributed to functions.
type Granularity string

const (
	// GranularityFunction flags a function only when one of its own lines is missing.
	GranularityFunction Granularity = "function"
	// GranularityFile flags every function of a file that has any missing line.
	GranularityFile Granularity = "file"
)

// ParseGranularity maps a config value to a Granularity, defaulting to function.
func ParseGranularity(s string) Granularity {
	if Granularity(strings.ToLower(strings.TrimSpace(s))) == GranularityFile {
		return GranularityFile
	}

	return GranularityFunction
}

// CoverageAnalyzer reports which functions of a module were left unexecuted.
type CoverageAnalyzer interface {
	// Analyze loads the coverage written by the last validation and returns
	// the uncovered top-level functions of module. Missing data yields an empty set.
	Analyze(ctx context.Context, module string, reportPath m.Path) m.UncoveredSet
}

type coverageAnalyzer struct {
	store       adapter.CoverageStore
	fs          adapter.SourceFSAdapter
	extractor   FunctionExtractor
	layout      Layout
	dataFile    string
	granularity Granularity
}

// NewCoverageAnalyzer constructs a CoverageAnalyzer. dataFile is relative to the working directory.
func NewCoverageAnalyzer(
	store adapter.CoverageStore,
	fs adapter.SourceFSAdapter,
	extractor FunctionExtractor,
	layout Layout,
	dataFile string,
	granularity Granularity,
) CoverageAnalyzer {
	return &coverageAnalyzer{
		store:       store,
		fs:          fs,
		extractor:   extractor,
		layout:      layout,
		dataFile:    dataFile,
		granularity: granularity,
	}
}

func (a *coverageAnalyzer) Analyze(ctx context.Context, module string, reportPath m.Path) m.UncoveredSet {
	set := m.UncoveredSet{Module: module}

	var dataPath m.Path
	if a.dataFile != "" {
		dataPath = m.Path(filepath.Join(string(a.layout.WorkDir), a.dataFile))
	}

	record, err := a.store.LoadCoverage(dataPath, reportPath)
	if err != nil {
		slog.Warn("Failed to load coverage", "module", module, "error", err)
		return set
	}

	if record.Empty() {
		return set
	}

	src, ok := a.resolve(module)
	if !ok {
		slog.Warn("Cannot resolve module to a source file", "module", module)
		return set
	}

	key, ok := measuredKey(record, src)
	if !ok {
		slog.Info("Module not measured", "module", module)
		return set
	}

	missing := record.MissingLines(key)
	if len(missing) == 0 {
		return set
	}

	for _, scope := range a.extractor.Scopes(ctx, src) {
		if a.granularity == GranularityFile || anyLineIn(scope, missing) {
			set.Functions = append(set.Functions, scope.Name)
		}
	}

	slog.Info("Coverage analyzed", "module", module, "missingLines", len(missing), "uncovered", len(set.Functions))

	return set
}

// resolve finds the file a dotted module name is imported from.
func (a *coverageAnalyzer) resolve(module string) (m.SourceFile, bool) {
	base := filepath.Join(string(a.layout.WorkDir), filepath.FromSlash(strings.ReplaceAll(module, ".", "/")))

	for _, candidate := range []string{base + a.layout.Extension, filepath.Join(base, "__init__"+a.layout.Extension)} {
		info, err := a.fs.FileInfo(m.Path(candidate))
		if err != nil || !info.Mode().IsRegular() {
			continue
		}

		src, err := a.layout.SourceFile(m.Path(candidate))
		if err != nil {
			return m.SourceFile{}, false
		}

		return src, true
	}

	return m.SourceFile{}, false
}

func measuredKey(record m.CoverageRecord, src m.SourceFile) (string, bool) {
	for _, key := range []string{src.Rel, filepath.ToSlash(string(src.Path))} {
		if record.Measured(key) {
			return key, true
		}
	}

	return "", false
}

func anyLineIn(scope m.CodeScope, lines []int) bool {
	for _, line := range lines {
		if scope.Contains(line) {
			return true
		}
	}

	return false
}
