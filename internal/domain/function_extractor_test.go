package domain

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"gapfill.dev/pkg/gapfill/internal/adapter"
	m "gapfill.dev/pkg/gapfill/internal/model"
)

const mathopsModule = `import math


def add(a, b):
    return a + b


def divide(a, b):
    if b == 0:
        raise ZeroDivisionError("division by zero")
    return a / b


def factorial(n):
    if n < 0:
        raise ValueError("negative")
    return math.factorial(n)


def fibonacci(n):
    a, b = 0, 1
    for _ in range(n):
        a, b = b, a + b
    return a


class Calculator:
    def total(self, *xs):
        return sum(xs)
`

func newExtractor() FunctionExtractor {
	return NewFunctionExtractor(adapter.NewLocalSourceFSAdapter(), adapter.NewLocalPythonFileAdapter())
}

func TestFunctionExtractor_Functions(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "src", "mathops.py")
	writeFile(t, path, mathopsModule)

	src := m.SourceFile{Path: m.Path(path), Rel: "src/mathops.py", Module: "src.mathops"}

	got := newExtractor().Functions(context.Background(), src)
	assert.Equal(t, []m.FunctionName{"add", "divide", "factorial", "fibonacci"}, got)
}

func TestFunctionExtractor_Scopes(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "src", "mathops.py")
	writeFile(t, path, mathopsModule)

	src := m.SourceFile{Path: m.Path(path), Rel: "src/mathops.py"}

	scopes := newExtractor().Scopes(context.Background(), src)
	assert.Equal(t, m.CodeScope{Name: "divide", StartLine: 8, EndLine: 11}, scopes[1])
}

func TestFunctionExtractor_FailuresYieldEmpty(t *testing.T) {
	root := t.TempDir()
	broken := filepath.Join(root, "src", "broken.py")
	writeFile(t, broken, "def broken(:\n    pass\n")

	extractor := newExtractor()

	assert.Empty(t, extractor.Functions(context.Background(), m.SourceFile{Path: m.Path(broken), Rel: "src/broken.py"}))
	assert.Empty(t, extractor.Functions(context.Background(), m.SourceFile{Path: m.Path(filepath.Join(root, "missing.py"))}))
}
