package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"gapfill.dev/pkg/gapfill/internal/adapter"
	m "gapfill.dev/pkg/gapfill/internal/model"
)

const testFilePerm = 0o644

// Materializer owns the canonical test file of each source module.
type Materializer interface {
	// Write replaces the canonical test file of src with content. Empty content
	// writes nothing and returns a nil artifact.
	Write(ctx context.Context, src m.SourceFile, content string) (*m.TestFile, error)
	// Current returns the on-disk contents of the canonical test file of src.
	Current(src m.SourceFile) (string, bool)
	// Merge adds the imports, test functions and test class methods of
	// addition that base lacks.
	Merge(ctx context.Context, base, addition string) string
	// Rollback undoes every write of the run: files that existed before are
	// restored, new files are deleted. It returns the paths it touched.
	Rollback(ctx context.Context) ([]m.Path, error)
}

type snapshot struct {
	existed bool
	content []byte
}

type materializer struct {
	fs     adapter.SourceFSAdapter
	parser adapter.PythonFileAdapter
	layout Layout

	snapshots      map[m.Path]snapshot
	createdTestDir bool
}

// NewMaterializer constructs a Materializer writing under layout's tests root.
func NewMaterializer(fs adapter.SourceFSAdapter, parser adapter.PythonFileAdapter, layout Layout) Materializer {
	return &materializer{
		fs:        fs,
		parser:    parser,
		layout:    layout,
		snapshots: make(map[m.Path]snapshot),
	}
}

func (w *materializer) Write(ctx context.Context, src m.SourceFile, content string) (*m.TestFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if strings.TrimSpace(content) == "" {
		slog.Info("No test content to write", "source", src.Rel)
		return nil, nil
	}

	path := w.layout.CanonicalTestPath(src)

	if err := w.ensureTestsDir(); err != nil {
		return nil, err
	}

	snap, err := w.snapshot(path)
	if err != nil {
		return nil, err
	}

	if previous, ok := w.Current(src); ok && previous != content {
		slog.Debug("Replacing test file", "path", path, "diff", unifiedDiff(string(path), previous, content))
	}

	if err := w.fs.WriteFile(path, []byte(content), testFilePerm); err != nil {
		slog.Error("Failed to write test file", "path", path, "error", err)
		return nil, fmt.Errorf("write %s: %w", path, err)
	}

	slog.Info("Wrote test file", "path", path, "source", src.Rel, "existed", snap.existed)

	return &m.TestFile{Path: path, Source: src, Existed: snap.existed}, nil
}

func (w *materializer) ensureTestsDir() error {
	dir := w.layout.TestsDir()

	if _, err := w.fs.FileInfo(dir); err == nil {
		return nil
	}

	if err := w.fs.MkdirAll(dir); err != nil {
		slog.Error("Failed to create tests directory", "path", dir, "error", err)
		return fmt.Errorf("create %s: %w", dir, err)
	}

	w.createdTestDir = true

	return nil
}

// snapshot records the pre-run state of path on first touch.
func (w *materializer) snapshot(path m.Path) (snapshot, error) {
	if snap, ok := w.snapshots[path]; ok {
		return snap, nil
	}

	content, err := w.fs.ReadFile(path)

	var snap snapshot

	switch {
	case err == nil:
		snap = snapshot{existed: true, content: content}
	case errors.Is(err, os.ErrNotExist):
		snap = snapshot{}
	default:
		return snapshot{}, fmt.Errorf("read %s: %w", path, err)
	}

	w.snapshots[path] = snap

	return snap, nil
}

func (w *materializer) Current(src m.SourceFile) (string, bool) {
	content, err := w.fs.ReadFile(w.layout.CanonicalTestPath(src))
	if err != nil {
		return "", false
	}

	return string(content), true
}

func (w *materializer) Rollback(ctx context.Context) ([]m.Path, error) {
	paths := make([]m.Path, 0, len(w.snapshots))
	for path := range w.snapshots {
		paths = append(paths, path)
	}

	sort.Slice(paths, func(i, j int) bool { return paths[i] < paths[j] })

	var errs []error

	for _, path := range paths {
		snap := w.snapshots[path]

		var err error
		if snap.existed {
			err = w.fs.WriteFile(path, snap.content, testFilePerm)
			slog.Info("Restored test file", "path", path)
		} else {
			err = w.fs.Remove(path)
			slog.Info("Removed test file", "path", path)
		}

		if err != nil {
			slog.Error("Failed to roll back test file", "path", path, "error", err)
			errs = append(errs, fmt.Errorf("roll back %s: %w", path, err))
		}
	}

	// A tests directory created by this run holds nothing but our files and
	// the runner's caches.
	if w.createdTestDir {
		if err := w.fs.RemoveAll(w.layout.TestsDir()); err != nil {
			slog.Error("Failed to remove tests directory", "path", w.layout.TestsDir(), "error", err)
			errs = append(errs, fmt.Errorf("remove %s: %w", w.layout.TestsDir(), err))
		}
	}

	w.snapshots = make(map[m.Path]snapshot)
	w.createdTestDir = false

	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}

	return paths, errors.Join(errs...)
}

func (w *materializer) Merge(ctx context.Context, base, addition string) string {
	if strings.TrimSpace(base) == "" {
		return addition
	}

	baseFile, err := w.parser.Parse(ctx, "base.py", []byte(base))
	if err != nil || baseFile.HasErrors {
		slog.Warn("Cannot merge into unparseable test file, replacing it", "error", err)
		return addition
	}

	addFile, err := w.parser.Parse(ctx, "addition.py", []byte(addition))
	if err != nil || addFile.HasErrors {
		slog.Warn("Cannot merge unparseable suggestion, keeping existing tests", "error", err)
		return base
	}

	var imports, body []string

	importSeen := make(map[string]bool)
	textSeen := make(map[string]bool)
	nameSeen := make(map[string]bool)
	// classAt maps a class name to its body index and parsed statement.
	classAt := make(map[string]int)
	classes := make(map[string]adapter.Statement)

	for _, stmt := range baseFile.Statements {
		text := strings.TrimSpace(stmt.Text)

		switch stmt.Kind {
		case adapter.StatementImport:
			imports = append(imports, text)
			importSeen[text] = true
		case adapter.StatementFunction:
			body = append(body, text)
			nameSeen[stmt.Name] = true
		case adapter.StatementClass:
			classAt[stmt.Name] = len(body)
			classes[stmt.Name] = stmt
			body = append(body, text)
		default:
			body = append(body, text)
			textSeen[text] = true
		}
	}

	for _, stmt := range addFile.Statements {
		text := strings.TrimSpace(stmt.Text)

		switch stmt.Kind {
		case adapter.StatementImport:
			if !importSeen[text] {
				imports = append(imports, text)
				importSeen[text] = true
			}
		case adapter.StatementFunction:
			if !nameSeen[stmt.Name] {
				body = append(body, text)
				nameSeen[stmt.Name] = true
			}
		case adapter.StatementClass:
			idx, ok := classAt[stmt.Name]
			if !ok {
				classAt[stmt.Name] = len(body)
				classes[stmt.Name] = stmt
				body = append(body, text)

				continue
			}

			merged, members := mergeClass(body[idx], classes[stmt.Name], stmt)
			body[idx] = merged
			classes[stmt.Name] = members
		default:
			if !textSeen[text] {
				body = append(body, text)
				textSeen[text] = true
			}
		}
	}

	var b strings.Builder

	b.WriteString(strings.Join(imports, "\n"))

	if len(imports) > 0 && len(body) > 0 {
		b.WriteString("\n\n\n")
	}

	b.WriteString(strings.Join(body, "\n\n\n"))
	b.WriteString("\n")

	return b.String()
}

// mergeClass appends the methods of addition that base lacks to text, the
// current source of base. It returns the new source and base with the added members.
func mergeClass(text string, base, addition adapter.Statement) (string, adapter.Statement) {
	seen := make(map[string]bool, len(base.Members))
	for _, member := range base.Members {
		seen[member.Name] = true
	}

	indent := memberIndent(base)
	if indent == "" {
		indent = memberIndent(addition)
	}

	var b strings.Builder

	b.WriteString(text)

	added := 0

	for _, member := range addition.Members {
		if member.Name == "" || seen[member.Name] {
			continue
		}

		seen[member.Name] = true
		base.Members = append(base.Members, member)

		b.WriteString("\n\n")
		b.WriteString(reindent(member.Text, leadingSpace(member.Text), indent))

		added++
	}

	slog.Debug("Merged test class", "class", base.Name, "added", added)

	return b.String(), base
}

func memberIndent(class adapter.Statement) string {
	if len(class.Members) == 0 {
		return ""
	}

	return leadingSpace(class.Members[0].Text)
}

// reindent swaps the from prefix of every line for to.
func reindent(text, from, to string) string {
	if from == to {
		return text
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, from) {
			lines[i] = to + strings.TrimPrefix(line, from)
		}
	}

	return strings.Join(lines, "\n")
}

func unifiedDiff(name, a, b string) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(a),
		B:        difflib.SplitLines(b),
		FromFile: name,
		ToFile:   name,
		Context:  3,
	})
	if err != nil {
		return ""
	}

	return diff
}
