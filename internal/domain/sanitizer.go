package domain

import (
	"context"
	"log/slog"
	"strings"

	"gapfill.dev/pkg/gapfill/internal/adapter"
)

// DefaultNoiseTerms drop provider chatter such as banners and links.
var DefaultNoiseTerms = []string{
	"copilot",
	"visit",
	"announcement",
	"deprecation",
	"information",
	"http",
	"github.com",
}

// keptPrefixes are statement openers that survive at any indentation.
var keptPrefixes = []string{
	"import ", "from ", "def ", "async ", "class ", "@", "assert", "if ", "for ",
	"while ", "try", "except", "with ", "return", "#",
}

// Sanitizer turns conversational provider output into a test module.
type Sanitizer interface {
	// Sanitize filters raw down to code lines and ensures pytest and module
	// imports are present. It returns ErrUnusable when no test function survives.
	Sanitize(ctx context.Context, raw, module string) (string, error)
}

type sanitizer struct {
	parser adapter.PythonFileAdapter
	noise  []string
}

// NewSanitizer constructs a Sanitizer. noiseHosts extend DefaultNoiseTerms.
// A nil parser disables the syntax diagnostic.
func NewSanitizer(parser adapter.PythonFileAdapter, noiseHosts []string) Sanitizer {
	noise := append([]string{}, DefaultNoiseTerms...)

	for _, host := range noiseHosts {
		if host = strings.ToLower(strings.TrimSpace(host)); host != "" {
			noise = append(noise, host)
		}
	}

	return &sanitizer{parser: parser, noise: noise}
}

func (s *sanitizer) Sanitize(ctx context.Context, raw, module string) (string, error) {
	header := moduleImport(module)

	var kept []string

	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		line = strings.TrimRight(line, " \t\r")
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			continue
		case trimmed == header:
			kept = append(kept, line)
			continue
		case s.noisy(trimmed), strings.HasPrefix(trimmed, "```"):
			continue
		}

		if keepLine(line, header) {
			kept = append(kept, line)
		}
	}

	// Dedenting can expose lines that were only kept for their indentation.
	for {
		before := len(kept)

		kept = filterLines(dedent(kept), header)

		if len(kept) == before {
			break
		}
	}

	kept = dropLeadingIndented(kept)

	if !hasTestFunction(kept) {
		return "", ErrUnusable
	}

	if !importsPytest(kept) {
		kept = append([]string{"import pytest", header}, kept...)
	}

	out := strings.Join(kept, "\n") + "\n"

	s.diagnose(ctx, module, out)

	return out, nil
}

func (s *sanitizer) noisy(trimmed string) bool {
	lower := strings.ToLower(trimmed)
	for _, term := range s.noise {
		if strings.Contains(lower, term) {
			return true
		}
	}

	return false
}

func (s *sanitizer) diagnose(ctx context.Context, module, out string) {
	if s.parser == nil {
		return
	}

	file, err := s.parser.Parse(ctx, "test_"+module+".py", []byte(out))
	if err != nil {
		slog.Debug("Skipped syntax check of sanitized suggestion", "module", module, "error", err)
		return
	}

	if file.HasErrors {
		slog.Warn("Sanitized suggestion has syntax errors", "module", module)
	}
}

func keepLine(line, header string) bool {
	trimmed := strings.TrimSpace(line)

	return trimmed == header ||
		hasAnyPrefix(trimmed, keptPrefixes) ||
		line != strings.TrimLeft(line, " \t") ||
		strings.HasPrefix(trimmed, `"""`) ||
		strings.HasPrefix(trimmed, `'''`)
}

func filterLines(lines []string, header string) []string {
	out := make([]string, 0, len(lines))

	for _, line := range lines {
		if keepLine(line, header) {
			out = append(out, line)
		}
	}

	return out
}

func moduleImport(module string) string {
	return "from " + module + " import *"
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}

	return false
}

func hasTestFunction(lines []string) bool {
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "def test_") || strings.HasPrefix(trimmed, "async def test_") {
			return true
		}
	}

	return false
}

func importsPytest(lines []string) bool {
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "import pytest" || strings.HasPrefix(trimmed, "import pytest ") ||
			strings.HasPrefix(trimmed, "from pytest ") {
			return true
		}
	}

	return false
}

// dedent removes the indentation shared by every line.
func dedent(lines []string) []string {
	if len(lines) == 0 {
		return lines
	}

	prefix := leadingSpace(lines[0])
	for _, line := range lines[1:] {
		if prefix == "" {
			return lines
		}

		ws := leadingSpace(line)
		for !strings.HasPrefix(ws, prefix) {
			prefix = prefix[:len(prefix)-1]
		}
	}

	if prefix == "" {
		return lines
	}

	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = strings.TrimPrefix(line, prefix)
	}

	return out
}

// dropLeadingIndented removes continuation lines that precede the first
// top-level statement.
func dropLeadingIndented(lines []string) []string {
	for i, line := range lines {
		if leadingSpace(line) == "" {
			return lines[i:]
		}
	}

	return nil
}

func leadingSpace(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}
