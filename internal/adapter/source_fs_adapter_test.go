package adapter

import (
	"os"
	"path/filepath"
	"testing"

	m "gapfill.dev/pkg/gapfill/internal/model"
)

func TestLocalSourceFSAdapter_Walk(t *testing.T) {
	t.Run("non recursive skips nested files", func(t *testing.T) {
		adapter := NewLocalSourceFSAdapter()

		root := t.TempDir()
		writeTestFile(t, filepath.Join(root, "mathops.py"), "def add(a, b):\n    return a + b\n")

		nestedDir := filepath.Join(root, "nested")
		mustMkdir(t, nestedDir)
		writeTestFile(t, filepath.Join(nestedDir, "child.py"), "x = 1\n")

		var visited []string
		err := adapter.Walk(m.Path(root), false, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			visited = append(visited, path)
			return nil
		})
		if err != nil {
			t.Fatalf("Walk() error = %v", err)
		}

		for _, forbidden := range []string{nestedDir, filepath.Join(nestedDir, "child.py")} {
			if containsPath(visited, forbidden) {
				t.Fatalf("Walk() unexpectedly visited %s when recursive is false", forbidden)
			}
		}

		if !containsPath(visited, filepath.Join(root, "mathops.py")) {
			t.Fatalf("Walk() did not visit top-level file")
		}
	})

	t.Run("recursive visits nested files", func(t *testing.T) {
		adapter := NewLocalSourceFSAdapter()

		root := t.TempDir()
		nestedDir := filepath.Join(root, "nested")
		mustMkdir(t, nestedDir)
		child := filepath.Join(nestedDir, "child.py")
		writeTestFile(t, child, "x = 1\n")

		var visited []string
		err := adapter.Walk(m.Path(root), true, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			visited = append(visited, path)
			return nil
		})
		if err != nil {
			t.Fatalf("Walk() error = %v", err)
		}

		if !containsPath(visited, child) {
			t.Fatalf("Walk() did not visit nested file when recursive")
		}
	})

	t.Run("recursive skips caches and hidden dirs", func(t *testing.T) {
		adapter := NewLocalSourceFSAdapter()

		root := t.TempDir()
		cache := filepath.Join(root, "__pycache__")
		hidden := filepath.Join(root, ".venv")
		mustMkdir(t, cache)
		mustMkdir(t, hidden)
		writeTestFile(t, filepath.Join(cache, "mathops.cpython-312.py"), "")
		writeTestFile(t, filepath.Join(hidden, "site.py"), "")

		var visited []string
		err := adapter.Walk(m.Path(root), true, func(path string, info os.FileInfo, err error) error {
			visited = append(visited, path)
			return err
		})
		if err != nil {
			t.Fatalf("Walk() error = %v", err)
		}

		if containsPath(visited, filepath.Join(cache, "mathops.cpython-312.py")) || containsPath(visited, filepath.Join(hidden, "site.py")) {
			t.Fatalf("Walk() entered a skipped directory: %v", visited)
		}
	})
}

func TestLocalSourceFSAdapter_ReadFile(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	root := t.TempDir()
	path := filepath.Join(root, "mathops.py")
	content := "def add(a, b):\n    return a + b\n"
	writeTestFile(t, path, content)

	got, err := adapter.ReadFile(m.Path(path))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	if string(got) != content {
		t.Fatalf("ReadFile() = %q, want %q", string(got), content)
	}
}

func TestLocalSourceFSAdapter_FileInfo(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	root := t.TempDir()
	path := filepath.Join(root, "mathops.py")
	writeTestFile(t, path, "x = 1\n")

	info, err := adapter.FileInfo(m.Path(path))
	if err != nil {
		t.Fatalf("FileInfo() error = %v", err)
	}

	if !info.Mode().IsRegular() {
		t.Fatalf("FileInfo() reported file as non-regular")
	}

	dirInfo, err := adapter.FileInfo(m.Path(root))
	if err != nil {
		t.Fatalf("FileInfo() error = %v", err)
	}

	if !dirInfo.IsDir() {
		t.Fatalf("FileInfo() reported directory as file")
	}
}

func TestLocalSourceFSAdapter_CreateTempDirAndRemoveAll(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	tmp, err := adapter.CreateTempDir("gapfill-test-*")
	if err != nil {
		t.Fatalf("CreateTempDir() error = %v", err)
	}

	if fi, err := os.Stat(string(tmp)); err != nil || !fi.IsDir() {
		t.Fatalf("CreateTempDir() did not create directory, stat err=%v", err)
	}

	writeTestFile(t, filepath.Join(string(tmp), "coverage.json"), "{}")

	if err := adapter.RemoveAll(tmp); err != nil {
		t.Fatalf("RemoveAll() error = %v", err)
	}

	if _, err := os.Stat(string(tmp)); !os.IsNotExist(err) {
		t.Fatalf("RemoveAll() did not remove directory, stat err=%v", err)
	}
}

func TestLocalSourceFSAdapter_Remove(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	root := t.TempDir()
	path := filepath.Join(root, "test_mathops.py")
	writeTestFile(t, path, "x = 1\n")

	if err := adapter.Remove(m.Path(path)); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("Remove() left the file behind")
	}

	if err := adapter.Remove(m.Path(path)); err != nil {
		t.Fatalf("Remove() on missing file error = %v", err)
	}
}

func TestLocalSourceFSAdapter_WriteFileReplaces(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	root := t.TempDir()
	tests := filepath.Join(root, "tests")
	if err := adapter.MkdirAll(m.Path(tests)); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	path := filepath.Join(tests, "test_mathops.py")
	if err := adapter.WriteFile(m.Path(path), []byte("first\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if err := adapter.WriteFile(m.Path(path), []byte("second\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error = %v", err)
	}

	if string(got) != "second\n" {
		t.Fatalf("WriteFile() content = %q, want %q", got, "second\n")
	}

	entries, err := os.ReadDir(tests)
	if err != nil {
		t.Fatalf("ReadDir error = %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("WriteFile() left %d entries in tests dir, want 1", len(entries))
	}
}

func writeTestFile(t *testing.T, path, contents string) {
	t.Helper()
	writeTestBytes(t, path, []byte(contents))
}

func writeTestBytes(t *testing.T, path string, contents []byte) {
	t.Helper()
	if err := os.WriteFile(path, contents, 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func mustMkdir(t *testing.T, path string) {
	t.Helper()
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatalf("failed to create dir %s: %v", path, err)
	}
}

func containsPath(paths []string, target string) bool {
	for _, p := range paths {
		if p == target {
			return true
		}
	}

	return false
}
