package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	m "gapfill.dev/pkg/gapfill/internal/model"
)

var mathopsSource = m.SourceFile{Path: "/work/src/mathops.py", Rel: "src/mathops.py", Module: "src.mathops"}

func TestWholeModulePrompt(t *testing.T) {
	prompt := WholeModulePrompt(mathopsSource, []m.FunctionName{"add", "divide"})

	assert.Equal(t, m.PromptWholeModule, prompt.Kind)
	assert.Contains(t, prompt.Text, "src/mathops.py")
	assert.Contains(t, prompt.Text, "src.mathops")
	assert.Contains(t, prompt.Text, "add, divide")
	assert.Contains(t, prompt.Text, "boundary")
	assert.Contains(t, prompt.Text, "source code only")
}

func TestWholeModulePrompt_NoFunctions(t *testing.T) {
	prompt := WholeModulePrompt(mathopsSource, nil)

	assert.Contains(t, prompt.Text, "every public function")
	assert.Empty(t, prompt.Functions)
}

func TestSingleFunctionPrompt(t *testing.T) {
	prompt := SingleFunctionPrompt(mathopsSource, "divide")

	assert.Equal(t, m.PromptSingleFunction, prompt.Kind)
	assert.Equal(t, []m.FunctionName{"divide"}, prompt.Functions)
	assert.Contains(t, prompt.Text, "function divide")
	assert.Contains(t, prompt.Text, "edge cases")
	assert.Contains(t, prompt.Text, "test_divide_<case>")
	assert.NotContains(t, prompt.Text, "add")
	assert.Contains(t, prompt.Text, "source code only")
}
