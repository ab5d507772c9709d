// Package model defines the data structures shared by the test generation pipeline.
package model

import (
	"path"
	"strings"
)

// Path represents a file system path.
type Path string

// FunctionName is a bare top-level function identifier.
type FunctionName string

// SourceFile is a module under the source root that the pipeline generates tests for.
type SourceFile struct {
	// Path is the absolute location of the file.
	Path Path
	// Rel is Path relative to the working directory, slash separated.
	Rel string
	// Module is the dotted import path (e.g. src.pkg.mathops).
	Module string
}

// Stem returns the file's base name without its extension.
func (s SourceFile) Stem() string {
	base := path.Base(s.Rel)
	return strings.TrimSuffix(base, path.Ext(base))
}

// CodeScope is the line span of a top-level function definition.
// Lines are 1-based and inclusive.
type CodeScope struct {
	Name      FunctionName
	StartLine int
	EndLine   int
}

// Contains reports whether line falls inside the scope.
func (c CodeScope) Contains(line int) bool {
	return line >= c.StartLine && line <= c.EndLine
}

// TestFile is a canonical generated test file (tests/test_<stem>.py).
type TestFile struct {
	Path   Path
	Source SourceFile
	// Existed is true when the path already held a file before this run touched it.
	Existed bool
}
