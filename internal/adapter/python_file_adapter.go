package adapter

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	m "gapfill.dev/pkg/gapfill/internal/model"
)

// StatementKind classifies a module-level Python statement.
type StatementKind int

const (
	// StatementOther is any statement that is not an import, function or class.
	StatementOther StatementKind = iota
	// StatementImport is an `import` or `from ... import` statement.
	StatementImport
	// StatementFunction is a (possibly decorated, possibly async) function definition.
	StatementFunction
	// StatementClass is a (possibly decorated) class definition.
	StatementClass
)

// Statement is one module-level statement with its source text.
type Statement struct {
	Kind      StatementKind
	Name      string
	StartLine int
	EndLine   int
	Text      string
	// Members are the methods of a class, with their indentation. Empty for
	// other statements.
	Members []Statement
}

// PythonFile is the module-level outline of a parsed Python file.
type PythonFile struct {
	Filename   string
	Statements []Statement
	// HasErrors is set when the parser had to recover from syntax errors.
	HasErrors bool
}

// PythonFileAdapter encapsulates Python-specific parsing so the domain layer
// can reason about modules and generated tests without knowing tree-sitter.
type PythonFileAdapter interface {
	// Parse builds the module outline for the provided source bytes.
	Parse(ctx context.Context, filename string, src []byte) (*PythonFile, error)

	// ExtractScopes returns the top-level function scopes of a parsed file.
	// Methods and nested functions are not included.
	ExtractScopes(file *PythonFile) []m.CodeScope
}

// LocalPythonFileAdapter provides a concrete PythonFileAdapter backed by tree-sitter.
type LocalPythonFileAdapter struct{}

// NewLocalPythonFileAdapter constructs a LocalPythonFileAdapter.
func NewLocalPythonFileAdapter() *LocalPythonFileAdapter {
	return &LocalPythonFileAdapter{}
}

// Parse builds a syntax tree for src and records its module-level statements.
func (a *LocalPythonFileAdapter) Parse(ctx context.Context, filename string, src []byte) (*PythonFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// New parser per call; tree-sitter parsers are not safe to share.
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("parse %s: empty syntax tree", filename)
	}

	file := &PythonFile{
		Filename:  filename,
		HasErrors: root.HasError(),
	}

	for i := 0; i < int(root.NamedChildCount()); i++ {
		node := root.NamedChild(i)
		if node == nil {
			continue
		}

		stmt := Statement{
			Kind:      StatementOther,
			StartLine: int(node.StartPoint().Row) + 1,
			EndLine:   int(node.EndPoint().Row) + 1,
			Text:      node.Content(src),
		}

		switch node.Type() {
		case "import_statement", "import_from_statement", "future_import_statement":
			stmt.Kind = StatementImport
		case "function_definition":
			stmt.Kind = StatementFunction
			stmt.Name = definitionName(node, src)
		case "class_definition":
			stmt.Kind = StatementClass
			stmt.Name = definitionName(node, src)
			stmt.Members = classMembers(node, src)
		case "decorated_definition":
			def := node.ChildByFieldName("definition")
			if def == nil {
				break
			}

			switch def.Type() {
			case "function_definition":
				stmt.Kind = StatementFunction
				stmt.Name = definitionName(def, src)
			case "class_definition":
				stmt.Kind = StatementClass
				stmt.Name = definitionName(def, src)
				stmt.Members = classMembers(def, src)
			}
		}

		file.Statements = append(file.Statements, stmt)
	}

	return file, nil
}

func definitionName(node *sitter.Node, src []byte) string {
	name := node.ChildByFieldName("name")
	if name == nil {
		return ""
	}

	return name.Content(src)
}

// classMembers lists the methods of class, keeping their leading indentation.
func classMembers(class *sitter.Node, src []byte) []Statement {
	body := class.ChildByFieldName("body")
	if body == nil {
		return nil
	}

	var members []Statement

	for i := 0; i < int(body.NamedChildCount()); i++ {
		node := body.NamedChild(i)
		if node == nil {
			continue
		}

		def := node
		if node.Type() == "decorated_definition" {
			def = node.ChildByFieldName("definition")
		}

		if def == nil || def.Type() != "function_definition" {
			continue
		}

		lineStart := node.StartByte() - node.StartPoint().Column

		members = append(members, Statement{
			Kind:      StatementFunction,
			Name:      definitionName(def, src),
			StartLine: int(node.StartPoint().Row) + 1,
			EndLine:   int(node.EndPoint().Row) + 1,
			Text:      string(src[lineStart:node.EndByte()]),
		})
	}

	return members
}

// ExtractScopes returns one scope per named top-level function.
func (a *LocalPythonFileAdapter) ExtractScopes(file *PythonFile) []m.CodeScope {
	if file == nil {
		return nil
	}

	var scopes []m.CodeScope

	for _, stmt := range file.Statements {
		if stmt.Kind != StatementFunction || stmt.Name == "" {
			continue
		}

		scopes = append(scopes, m.CodeScope{
			Name:      m.FunctionName(stmt.Name),
			StartLine: stmt.StartLine,
			EndLine:   stmt.EndLine,
		})
	}

	return scopes
}
