package domain

import (
	"context"
	"log/slog"

	"gapfill.dev/pkg/gapfill/internal/adapter"
	m "gapfill.dev/pkg/gapfill/internal/model"
)

// FunctionExtractor lists the top-level functions of a source file.
type FunctionExtractor interface {
	// Scopes returns the top-level function spans of src. Unreadable or
	// unparseable files yield no scopes.
	Scopes(ctx context.Context, src m.SourceFile) []m.CodeScope
	// Functions returns the top-level function names of src in definition order.
	Functions(ctx context.Context, src m.SourceFile) []m.FunctionName
}

type functionExtractor struct {
	adapter.SourceFSAdapter
	adapter.PythonFileAdapter
}

// NewFunctionExtractor constructs a FunctionExtractor.
func NewFunctionExtractor(fs adapter.SourceFSAdapter, parser adapter.PythonFileAdapter) FunctionExtractor {
	return &functionExtractor{SourceFSAdapter: fs, PythonFileAdapter: parser}
}

func (e *functionExtractor) Scopes(ctx context.Context, src m.SourceFile) []m.CodeScope {
	content, err := e.ReadFile(src.Path)
	if err != nil {
		slog.Warn("Failed to read source file", "path", src.Path, "error", err)
		return nil
	}

	file, err := e.Parse(ctx, src.Rel, content)
	if err != nil {
		slog.Warn("Failed to parse source file", "path", src.Path, "error", err)
		return nil
	}

	if file.HasErrors {
		slog.Warn("Source file has syntax errors", "path", src.Path)
		return nil
	}

	return e.ExtractScopes(file)
}

func (e *functionExtractor) Functions(ctx context.Context, src m.SourceFile) []m.FunctionName {
	scopes := e.Scopes(ctx, src)

	names := make([]m.FunctionName, 0, len(scopes))
	for _, scope := range scopes {
		names = append(names, scope.Name)
	}

	return names
}
