package domain

import (
	"fmt"
	"strings"

	m "gapfill.dev/pkg/gapfill/internal/model"
)

const codeOnlyInstruction = "Respond with Python source code only. Do not include explanations, prose or Markdown."

// WholeModulePrompt asks for a test suite covering every function of src.
func WholeModulePrompt(src m.SourceFile, functions []m.FunctionName) m.Prompt {
	var b strings.Builder

	fmt.Fprintf(&b, "Write runnable pytest test cases for %s (import it as %s).\n", src.Rel, src.Module)

	if len(functions) > 0 {
		names := make([]string, 0, len(functions))
		for _, fn := range functions {
			names = append(names, string(fn))
		}

		fmt.Fprintf(&b, "Cover every one of these functions: %s.\n", strings.Join(names, ", "))
	} else {
		b.WriteString("Cover every public function of the module.\n")
	}

	b.WriteString("For each function include a success case, a failure case and boundary values.\n")
	b.WriteString("Name every test function test_<function>_<case>.\n")
	b.WriteString(codeOnlyInstruction)

	return m.Prompt{
		Kind:      m.PromptWholeModule,
		Source:    src,
		Functions: functions,
		Text:      b.String(),
	}
}

// SingleFunctionPrompt asks for edge-case tests of exactly one function of src.
func SingleFunctionPrompt(src m.SourceFile, fn m.FunctionName) m.Prompt {
	var b strings.Builder

	fmt.Fprintf(&b, "Write runnable pytest test cases for the function %s in %s (import it from %s).\n", fn, src.Rel, src.Module)
	b.WriteString("Focus on edge cases and error paths that existing tests are likely to miss.\n")
	fmt.Fprintf(&b, "Name every test function test_%s_<case>.\n", fn)
	b.WriteString(codeOnlyInstruction)

	return m.Prompt{
		Kind:      m.PromptSingleFunction,
		Source:    src,
		Functions: []m.FunctionName{fn},
		Text:      b.String(),
	}
}
