package domain

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gapfill.dev/pkg/gapfill/internal/adapter"
	m "gapfill.dev/pkg/gapfill/internal/model"
)

// ChangeDetector finds the source files a run should generate tests for.
type ChangeDetector interface {
	// Detect returns the changed source files, sorted by relative path. When
	// nothing qualifies, even after a full scan of the source root, it returns ErrNoWork.
	Detect(ctx context.Context) ([]m.SourceFile, error)
}

type changeDetector struct {
	vcs    adapter.VCSAdapter
	fs     adapter.SourceFSAdapter
	layout Layout
	remote string
	branch string
}

// NewChangeDetector constructs a ChangeDetector comparing HEAD with remote/branch.
func NewChangeDetector(vcs adapter.VCSAdapter, fs adapter.SourceFSAdapter, layout Layout, remote, branch string) ChangeDetector {
	return &changeDetector{vcs: vcs, fs: fs, layout: layout, remote: remote, branch: branch}
}

func (d *changeDetector) Detect(ctx context.Context) ([]m.SourceFile, error) {
	if err := d.vcs.Fetch(ctx, d.remote, d.branch); err != nil {
		slog.Warn("Failed to fetch mainline", "remote", d.remote, "branch", d.branch, "error", err)
	}

	base, err := d.vcs.MergeBase(ctx, d.remote+"/"+d.branch)
	if err != nil {
		slog.Warn("Failed to compute merge base", "error", err)
		base = ""
	}

	var (
		candidates []m.Path
		scanned    bool
	)

	if base != "" {
		changed, err := d.vcs.ChangedFiles(ctx, base)
		if err != nil {
			slog.Warn("Failed to list changed files", "base", base, "error", err)
		}

		for _, rel := range changed {
			candidates = append(candidates, m.Path(filepath.Join(string(d.layout.WorkDir), filepath.FromSlash(rel))))
		}
	} else {
		slog.Info("No merge base, scanning the source root", "ref", d.remote+"/"+d.branch)

		candidates, err = d.scan()
		if err != nil {
			return nil, err
		}

		scanned = true
	}

	files := d.filter(candidates)

	if len(files) == 0 && !scanned {
		slog.Info("No changed source files, scanning the source root")

		candidates, err = d.scan()
		if err != nil {
			return nil, err
		}

		files = d.filter(candidates)
	}

	if len(files) == 0 {
		return nil, ErrNoWork
	}

	slog.Info("Detected source files", "count", len(files))

	return files, nil
}

// scan lists every file with the source extension under the source root.
func (d *changeDetector) scan() ([]m.Path, error) {
	root := filepath.Join(string(d.layout.WorkDir), d.layout.SourceRoot)

	var paths []m.Path

	err := d.fs.Walk(m.Path(root), true, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}

			return err
		}

		if !info.IsDir() && filepath.Ext(path) == d.layout.Extension {
			paths = append(paths, m.Path(path))
		}

		return nil
	})
	if err != nil {
		slog.Error("Failed to scan source root", "root", root, "error", err)
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}

	return paths, nil
}

func (d *changeDetector) filter(paths []m.Path) []m.SourceFile {
	seen := make(map[string]struct{}, len(paths))
	files := make([]m.SourceFile, 0, len(paths))

	for _, path := range paths {
		src, ok := d.qualify(path)
		if !ok {
			continue
		}

		if _, dup := seen[src.Rel]; dup {
			continue
		}

		seen[src.Rel] = struct{}{}
		files = append(files, src)
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Rel < files[j].Rel
	})

	return files
}

func (d *changeDetector) qualify(path m.Path) (m.SourceFile, bool) {
	if filepath.Ext(string(path)) != d.layout.Extension {
		return m.SourceFile{}, false
	}

	info, err := d.fs.FileInfo(path)
	if err != nil || !info.Mode().IsRegular() {
		return m.SourceFile{}, false
	}

	src, err := d.layout.SourceFile(path)
	if err != nil {
		return m.SourceFile{}, false
	}

	segments := strings.Split(src.Rel, "/")
	root := strings.Split(strings.Trim(filepath.ToSlash(d.layout.SourceRoot), "/"), "/")

	if len(segments) <= len(root) {
		return m.SourceFile{}, false
	}

	for i, seg := range root {
		if segments[i] != seg {
			return m.SourceFile{}, false
		}
	}

	for _, seg := range segments[:len(segments)-1] {
		if seg == d.layout.TestsRoot {
			return m.SourceFile{}, false
		}
	}

	return src, true
}
