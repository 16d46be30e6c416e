// Package ui is the interactive review screen: it shows every file the
// sanitizer would touch, the output each one would produce in the current
// mode, and the full defect list for invalid files. Nothing is written.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/repobee/sanitizer/internal/engine"
	"github.com/repobee/sanitizer/internal/repo"
)

type fileStatus int

const (
	statusOK fileStatus = iota
	statusDelete
	statusErrors
)

type fileEntry struct {
	relpath string
	text    string
	status  fileStatus
	preview []string
}

type reviewModel struct {
	mode    engine.Mode
	all     []fileEntry
	visible []int // indices into all, after filtering
	cursor  int
	offset  int // list viewport scroll offset
	width   int
	height  int
	filter  textinput.Model
}

// Run launches the review TUI over the given dirty files.
func Run(files []repo.DirtyFile, mode engine.Mode) error {
	if len(files) == 0 {
		fmt.Println("No files contain sanitizer markers.")
		return nil
	}

	ti := textinput.New()
	ti.Placeholder = "filter files"
	ti.Prompt = "/ "
	ti.Focus()

	m := reviewModel{
		mode:   mode,
		filter: ti,
		width:  80,
		height: 24,
	}
	m.all = buildEntries(files, mode)
	m.applyFilter()

	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func buildEntries(files []repo.DirtyFile, mode engine.Mode) []fileEntry {
	entries := make([]fileEntry, 0, len(files))
	for _, f := range files {
		e := fileEntry{relpath: f.RelPath, text: f.Text}
		result, errs := engine.SanitizeText(f.Text, mode)
		switch {
		case len(errs) > 0:
			e.status = statusErrors
			for _, se := range errs {
				e.preview = append(e.preview, se.Error())
			}
		case result.Decision == engine.DecisionDelete:
			e.status = statusDelete
			e.preview = []string{"file will be deleted"}
		default:
			e.status = statusOK
			e.preview = strings.Split(result.Text, "\n")
		}
		entries = append(entries, e)
	}
	return entries
}

func (m *reviewModel) applyFilter() {
	query := strings.ToLower(m.filter.Value())
	m.visible = m.visible[:0]
	for i, e := range m.all {
		if query == "" || strings.Contains(strings.ToLower(e.relpath), query) {
			m.visible = append(m.visible, i)
		}
	}
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.adjustOffset()
}

// Init implements tea.Model
func (m reviewModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model
func (m reviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.adjustOffset()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "ctrl+p":
			if m.cursor > 0 {
				m.cursor--
				m.adjustOffset()
			}
			return m, nil
		case "down", "ctrl+n":
			if m.cursor < len(m.visible)-1 {
				m.cursor++
				m.adjustOffset()
			}
			return m, nil
		case "tab":
			// Toggle between the two transformations and recompute.
			if m.mode == engine.ModeSanitize {
				m.mode = engine.ModeStrip
			} else {
				m.mode = engine.ModeSanitize
			}
			m.all = rebuildEntries(m.all, m.mode)
			m.applyFilter()
			return m, nil
		}
	}

	var cmd tea.Cmd
	before := m.filter.Value()
	m.filter, cmd = m.filter.Update(msg)
	if m.filter.Value() != before {
		m.applyFilter()
	}
	return m, cmd
}

func rebuildEntries(old []fileEntry, mode engine.Mode) []fileEntry {
	files := make([]repo.DirtyFile, len(old))
	for i, e := range old {
		files[i] = repo.DirtyFile{RelPath: e.relpath, Text: e.text}
	}
	return buildEntries(files, mode)
}

func (m *reviewModel) listHeight() int {
	// header + filter + divider + preview pane
	h := m.height/2 - 3
	if h < 3 {
		h = 3
	}
	return h
}

// adjustOffset ensures cursor is visible within viewport
func (m *reviewModel) adjustOffset() {
	h := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// View implements tea.Model
func (m reviewModel) View() string {
	var b strings.Builder

	header := fmt.Sprintf("sanitizer review — mode: %s — %d file(s) — tab toggles mode",
		m.mode, len(m.visible))
	b.WriteString(styles.Header.Render(header))
	b.WriteString("\n")
	b.WriteString(m.filter.View())
	b.WriteString("\n")

	h := m.listHeight()
	for row := m.offset; row < len(m.visible) && row < m.offset+h; row++ {
		e := m.all[m.visible[row]]

		glyph := styles.StatusOK.Render("ok    ")
		switch e.status {
		case statusDelete:
			glyph = styles.StatusDelete.Render("shred ")
		case statusErrors:
			glyph = styles.StatusError.Render("errors")
		}

		line := "  "
		if row == m.cursor {
			line = styles.Cursor.Render("> ")
		}
		line += glyph + " " + styles.Path.Render(e.relpath)
		if row == m.cursor {
			line = styles.Selected.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString(styles.Divider.Render(strings.Repeat("─", max(m.width, 10))))
	b.WriteString("\n")

	if len(m.visible) > 0 {
		e := m.all[m.visible[m.cursor]]
		previewHeight := m.height - h - 4
		style := styles.PreviewLine
		if e.status == statusErrors {
			style = styles.PreviewError
		}
		for i, ln := range e.preview {
			if i >= previewHeight {
				b.WriteString(styles.Dim.Render(fmt.Sprintf("… %d more lines", len(e.preview)-i)))
				b.WriteString("\n")
				break
			}
			b.WriteString(style.Render(ln))
			b.WriteString("\n")
		}
	}

	return b.String()
}
