package adapter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	m "gapfill.dev/pkg/gapfill/internal/model"
)

// CoverageStore loads what the coverage plugin persisted after a test run.
type CoverageStore interface {
	// LoadCoverage reads the JSON report at reportPath. When the coverage data
	// file or the report is absent an empty record is returned.
	LoadCoverage(dataFile, reportPath m.Path) (m.CoverageRecord, error)
}

// coverageReport is the subset of coverage.py's JSON report the pipeline reads.
type coverageReport struct {
	Files map[string]struct {
		ExecutedLines []int `json:"executed_lines"`
		MissingLines  []int `json:"missing_lines"`
	} `json:"files"`
}

// JSONCoverageStore reads coverage.py JSON reports from disk.
type JSONCoverageStore struct{}

// NewCoverageStore constructs a JSONCoverageStore.
func NewCoverageStore() *JSONCoverageStore {
	return &JSONCoverageStore{}
}

// LoadCoverage implements CoverageStore.
func (s *JSONCoverageStore) LoadCoverage(dataFile, reportPath m.Path) (m.CoverageRecord, error) {
	empty := m.CoverageRecord{Files: map[string]m.FileCoverage{}}

	if dataFile != "" {
		if _, err := os.Stat(string(dataFile)); err != nil {
			if os.IsNotExist(err) {
				slog.Info("No coverage data file", "path", dataFile)
				return empty, nil
			}

			return empty, fmt.Errorf("stat coverage data: %w", err)
		}
	}

	// #nosec G304 - reportPath is the run's own temp report
	data, err := os.ReadFile(string(reportPath))
	if err != nil {
		if os.IsNotExist(err) {
			slog.Info("No coverage report", "path", reportPath)
			return empty, nil
		}

		return empty, fmt.Errorf("read coverage report: %w", err)
	}

	var report coverageReport
	if err := json.Unmarshal(data, &report); err != nil {
		slog.Error("Failed to decode coverage report", "path", reportPath, "error", err)
		return empty, fmt.Errorf("decode coverage report: %w", err)
	}

	for name, file := range report.Files {
		empty.Files[filepath.ToSlash(filepath.Clean(name))] = m.FileCoverage{
			Executed: file.ExecutedLines,
			Missing:  file.MissingLines,
		}
	}

	return empty, nil
}
