// Package format renders aggregated syntax-error reports for the CLI.
package format

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/repobee/sanitizer/internal/engine"
)

// FileErrors pairs a repo-relative path with the defects found in it.
type FileErrors struct {
	RelPath string
	Errors  []engine.SyntaxError
}

// styles for the error report
var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	pathStyle   = lipgloss.NewStyle().Bold(true)
	lineStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	kindStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Report renders every defect in every file as one printable string.
func Report(files []FileErrors) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(
		fmt.Sprintf("Syntax errors detected in %d file(s):", len(files))))
	b.WriteString("\n")

	for _, f := range files {
		b.WriteString("\n")
		b.WriteString(pathStyle.Render(f.RelPath))
		b.WriteString("\n")
		for _, e := range f.Errors {
			b.WriteString(fmt.Sprintf("    %s %s %s\n",
				lineStyle.Render(fmt.Sprintf("line %d:", e.Line)),
				e.Msg,
				kindStyle.Render("["+e.Kind.String()+"]")))
		}
	}

	return b.String()
}
