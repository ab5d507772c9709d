// Package domain implements the test generation and coverage closing pipeline.
package domain

import (
	"fmt"
	"path/filepath"
	"strings"

	m "gapfill.dev/pkg/gapfill/internal/model"
)

// Layout describes where sources and generated tests live in the working tree.
type Layout struct {
	WorkDir    m.Path
	SourceRoot string
	TestsRoot  string
	Extension  string
}

// DefaultLayout returns the src/ + tests/ layout for Python modules rooted at workDir.
func DefaultLayout(workDir m.Path) Layout {
	return Layout{
		WorkDir:    workDir,
		SourceRoot: "src",
		TestsRoot:  "tests",
		Extension:  ".py",
	}
}

func (l Layout) abs(path m.Path) string {
	p := string(path)
	if !filepath.IsAbs(p) {
		p = filepath.Join(string(l.WorkDir), p)
	}

	return filepath.Clean(p)
}

// Rel returns path relative to the working directory, slash separated.
func (l Layout) Rel(path m.Path) (string, error) {
	rel, err := filepath.Rel(filepath.Clean(string(l.WorkDir)), l.abs(path))
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrPathOutsideRoot, path)
	}

	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrPathOutsideRoot, path)
	}

	return filepath.ToSlash(rel), nil
}

// ModuleName maps a file under the working directory to its dotted import path:
// the extension is dropped, separators become dots and the source root name is
// prefixed when missing (mathops.py -> src.mathops).
func (l Layout) ModuleName(path m.Path) (string, error) {
	rel, err := l.Rel(path)
	if err != nil {
		return "", err
	}

	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	module := strings.ReplaceAll(rel, "/", ".")

	root := strings.ReplaceAll(strings.Trim(filepath.ToSlash(l.SourceRoot), "/"), "/", ".")
	if root != "" && module != root && !strings.HasPrefix(module, root+".") {
		module = root + "." + module
	}

	return module, nil
}

// SourceFile resolves path into a SourceFile.
func (l Layout) SourceFile(path m.Path) (m.SourceFile, error) {
	rel, err := l.Rel(path)
	if err != nil {
		return m.SourceFile{}, err
	}

	module, err := l.ModuleName(path)
	if err != nil {
		return m.SourceFile{}, err
	}

	return m.SourceFile{Path: m.Path(l.abs(path)), Rel: rel, Module: module}, nil
}

// TestsDir is the absolute tests root.
func (l Layout) TestsDir() m.Path {
	return m.Path(filepath.Join(string(l.WorkDir), l.TestsRoot))
}

// CanonicalTestPath returns tests/test_<stem><ext> for src.
func (l Layout) CanonicalTestPath(src m.SourceFile) m.Path {
	return m.Path(filepath.Join(string(l.TestsDir()), "test_"+src.Stem()+l.Extension))
}
