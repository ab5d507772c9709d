package model

// PromptKind selects the shape of a provider request.
type PromptKind int

const (
	// PromptWholeModule asks for tests covering every function of a module.
	PromptWholeModule PromptKind = iota
	// PromptSingleFunction asks for edge-case tests of exactly one function.
	PromptSingleFunction
)

func (k PromptKind) String() string {
	switch k {
	case PromptWholeModule:
		return "whole-module"
	case PromptSingleFunction:
		return "single-function"
	}

	return "unknown"
}

// Prompt is a natural-language request sent to a suggestion provider.
type Prompt struct {
	Kind      PromptKind
	Source    SourceFile
	Functions []FunctionName
	Text      string
}

// RawSuggestion is the unmodified text returned by a provider.
type RawSuggestion struct {
	Provider string
	Text     string
}
