package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sourcegraph/go-diff/diff"
)

const devNull = "/dev/null"

// VCSAdapter abstracts the version-control operations used by the pipeline.
type VCSAdapter interface {
	// Fetch shallow-fetches branch from remote into refs/remotes/<remote>/<branch>.
	Fetch(ctx context.Context, remote, branch string) error
	// MergeBase returns the common ancestor of HEAD and ref, or "" when there is none.
	MergeBase(ctx context.Context, ref string) (string, error)
	// ChangedFiles lists the paths (relative, slash separated) that exist on HEAD
	// and differ from base. Deleted files are omitted; renames report the new name.
	ChangedFiles(ctx context.Context, base string) ([]string, error)
	// ConfigureIdentity sets the commit author for the repository.
	ConfigureIdentity(ctx context.Context, name, email string) error
	// Add stages a single path.
	Add(ctx context.Context, path string) error
	// Commit records the staged changes.
	Commit(ctx context.Context, message string) error
	// Push publishes the current branch.
	Push(ctx context.Context) error
}

// GitAdapter implements VCSAdapter on top of the git CLI.
type GitAdapter struct {
	shell   ShellAdapter
	workDir string
	// strict makes identity/add/commit/push failures fatal.
	strict bool
}

// NewGitAdapter constructs a GitAdapter that runs git inside workDir.
func NewGitAdapter(shell ShellAdapter, workDir string, strict bool) *GitAdapter {
	return &GitAdapter{shell: shell, workDir: workDir, strict: strict}
}

func (g *GitAdapter) git(ctx context.Context, check bool, args ...string) (Result, error) {
	return g.shell.Run(ctx, Command{
		Name:    "git",
		Args:    args,
		Dir:     g.workDir,
		Capture: true,
		Check:   check,
	})
}

// Fetch shallow-fetches the mainline branch. Failure is reported, not fatal.
func (g *GitAdapter) Fetch(ctx context.Context, remote, branch string) error {
	refspec := fmt.Sprintf("%s:refs/remotes/%s/%s", branch, remote, branch)

	res, err := g.git(ctx, false, "fetch", remote, refspec, "--depth=1")
	if err != nil {
		return fmt.Errorf("git fetch: %w", err)
	}

	if !res.Success() {
		return fmt.Errorf("git fetch %s %s: exit status %d: %s", remote, branch, res.ExitCode, strings.TrimSpace(res.Stderr))
	}

	return nil
}

// MergeBase returns the merge base of HEAD and ref. A missing base is not an error.
func (g *GitAdapter) MergeBase(ctx context.Context, ref string) (string, error) {
	res, err := g.git(ctx, false, "merge-base", "HEAD", ref)
	if err != nil {
		return "", fmt.Errorf("git merge-base: %w", err)
	}

	if !res.Success() {
		slog.Info("No merge base", "ref", ref, "exitCode", res.ExitCode, "stderr", strings.TrimSpace(res.Stderr))
		return "", nil
	}

	return strings.TrimSpace(res.Stdout), nil
}

// ChangedFiles diffs base...HEAD and returns the post-image paths.
// Prefixes are pinned so diff.noprefix or diff.mnemonicPrefix in the user's
// git config cannot change the paths.
func (g *GitAdapter) ChangedFiles(ctx context.Context, base string) ([]string, error) {
	res, err := g.git(ctx, false, "diff", "--no-color", "--no-ext-diff", "-M",
		"--src-prefix=a/", "--dst-prefix=b/", base+"...HEAD")
	if err != nil {
		return nil, fmt.Errorf("git diff: %w", err)
	}

	if !res.Success() {
		return nil, fmt.Errorf("git diff %s...HEAD: exit status %d: %s", base, res.ExitCode, strings.TrimSpace(res.Stderr))
	}

	return ParseChangedPaths(res.Stdout)
}

// ParseChangedPaths extracts post-image paths from unified multi-file diff text.
func ParseChangedPaths(patch string) ([]string, error) {
	if strings.TrimSpace(patch) == "" {
		return nil, nil
	}

	fileDiffs, err := diff.NewMultiFileDiffReader(strings.NewReader(patch)).ReadAllFiles()
	if err != nil {
		return nil, fmt.Errorf("parse diff: %w", err)
	}

	seen := make(map[string]struct{}, len(fileDiffs))
	paths := make([]string, 0, len(fileDiffs))

	for _, fd := range fileDiffs {
		name := stripDiffPrefix(fd.NewName)
		if name == "" || name == devNull {
			continue
		}

		if _, ok := seen[name]; ok {
			continue
		}

		seen[name] = struct{}{}
		paths = append(paths, name)
	}

	return paths, nil
}

func stripDiffPrefix(name string) string {
	name = strings.TrimSpace(name)
	if name == devNull {
		return name
	}

	if strings.HasPrefix(name, "b/") || strings.HasPrefix(name, "a/") {
		return name[2:]
	}

	return name
}

// ConfigureIdentity sets user.name and user.email for the repository.
func (g *GitAdapter) ConfigureIdentity(ctx context.Context, name, email string) error {
	if err := g.step(ctx, "config", "user.name", name); err != nil {
		return err
	}

	return g.step(ctx, "config", "user.email", email)
}

// Add stages path.
func (g *GitAdapter) Add(ctx context.Context, path string) error {
	return g.step(ctx, "add", "--", path)
}

// Commit records the staged changes with message.
func (g *GitAdapter) Commit(ctx context.Context, message string) error {
	return g.step(ctx, "commit", "-m", message)
}

// Push publishes HEAD to its upstream.
func (g *GitAdapter) Push(ctx context.Context) error {
	return g.step(ctx, "push")
}

func (g *GitAdapter) step(ctx context.Context, args ...string) error {
	res, err := g.git(ctx, g.strict, args...)
	if err != nil {
		return err
	}

	if !res.Success() {
		return fmt.Errorf("git %s: exit status %d: %s", args[0], res.ExitCode, strings.TrimSpace(res.Stderr+res.Stdout))
	}

	return nil
}
