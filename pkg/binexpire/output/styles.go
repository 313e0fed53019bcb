package output

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jamesainslie/binexpire/pkg/binexpire/types"
)

// Color constants using ANSI 256-color palette.
const (
	// ColorPrimary is used for headers and titles (bright blue).
	ColorPrimary = lipgloss.Color("39")

	// ColorSuccess marks OK rows and completed moves (green).
	ColorSuccess = lipgloss.Color("42")

	// ColorWarning is used for warnings (orange/yellow).
	ColorWarning = lipgloss.Color("214")

	// ColorDanger marks stale rows and failures (red).
	ColorDanger = lipgloss.Color("196")

	// ColorMuted is used for secondary text and stubs (gray).
	ColorMuted = lipgloss.Color("245")
)

// Box styles.
var (
	HeaderBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 1).
			MarginBottom(1)

	FooterBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorMuted).
			Padding(0, 1).
			MarginTop(1)
)

// Text styles.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	ValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorDanger)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	SizeStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)
)

// Table styles.
var (
	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorMuted).
				PaddingRight(2)

	TableCellStyle = lipgloss.NewStyle().
			PaddingRight(2)
)

// StatusStyle returns the style for a status glyph.
func StatusStyle(s types.Status) lipgloss.Style {
	switch s {
	case types.StatusStale:
		return ErrorStyle.Bold(true)
	case types.StatusStub:
		return MutedStyle
	default:
		return SuccessStyle
	}
}
