package engine

import (
	"strings"

	"github.com/repobee/sanitizer/internal/syntax"
)

// Decision is what the caller should do with a file.
type Decision int

const (
	// DecisionRewrite means replace the file's content with Result.Text.
	DecisionRewrite Decision = iota
	// DecisionDelete means remove the file; Result.Text is empty.
	DecisionDelete
)

func (d Decision) String() string {
	switch d {
	case DecisionRewrite:
		return "rewrite"
	case DecisionDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Result is the outcome of sanitizing one valid file.
type Result struct {
	Decision Decision
	Text     string
}

// SanitizeText validates and transforms one file's content. A non-empty
// error slice means every defect in the file, and no output: validation
// is all-or-nothing per file. Splitting and rejoining on "\n" preserves
// a trailing newline byte for byte.
func SanitizeText(text string, mode Mode) (Result, []SyntaxError) {
	lines := syntax.ClassifyAll(strings.Split(text, "\n"))

	outcome, errs := Parse(lines)
	if len(errs) > 0 {
		return Result{}, errs
	}
	if outcome.Shred {
		return Result{Decision: DecisionDelete}, nil
	}
	return Result{
		Decision: DecisionRewrite,
		Text:     strings.Join(Render(outcome.Tree, mode), "\n"),
	}, nil
}
