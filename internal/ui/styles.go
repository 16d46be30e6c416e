package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/repobee/sanitizer/internal/config"
)

// StyleManager encapsulates all TUI styles and provides methods for style operations
type StyleManager struct {
	Header   lipgloss.Style
	Path     lipgloss.Style
	Selected lipgloss.Style
	Cursor   lipgloss.Style
	Dim      lipgloss.Style

	StatusOK     lipgloss.Style
	StatusDelete lipgloss.Style
	StatusError  lipgloss.Style

	PreviewLine  lipgloss.Style
	PreviewError lipgloss.Style

	Divider lipgloss.Style
}

// DefaultStyles returns a StyleManager with default styles
func DefaultStyles() *StyleManager {
	return &StyleManager{
		Header:       lipgloss.NewStyle().Bold(true),
		Path:         lipgloss.NewStyle(),
		Selected:     lipgloss.NewStyle().Background(lipgloss.Color("236")),
		Cursor:       lipgloss.NewStyle().Foreground(lipgloss.Color("212")),
		Dim:          lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		StatusOK:     lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		StatusDelete: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		StatusError:  lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		PreviewLine:  lipgloss.NewStyle(),
		PreviewError: lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		Divider:      lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

// LoadFromConfig updates styles based on configuration
func (s *StyleManager) LoadFromConfig() {
	errColor := lipgloss.Color(config.GetColorErrors())
	statusColor := lipgloss.Color(config.GetColorStatus())

	s.Header = lipgloss.NewStyle().Bold(true).Foreground(statusColor)
	s.StatusError = lipgloss.NewStyle().Foreground(errColor)
	s.PreviewError = lipgloss.NewStyle().Foreground(errColor)
}

// Global style manager instance
var styles = DefaultStyles()

// RefreshStyles updates the global styles from config
func RefreshStyles() {
	styles.LoadFromConfig()
}
