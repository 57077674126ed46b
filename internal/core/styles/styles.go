// Package styles provides shared lipgloss styles for CLI output.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Style exports. SetTheme rebuilds them.
var (
	HeaderStyle  lipgloss.Style
	MutedStyle   lipgloss.Style
	SuccessStyle lipgloss.Style
	WarningStyle lipgloss.Style
	ErrorStyle   lipgloss.Style

	UrgencyHighStyle   lipgloss.Style
	UrgencyMediumStyle lipgloss.Style
	UrgencyLowStyle    lipgloss.Style
	CompletedStyle     lipgloss.Style

	CalendarTodayStyle lipgloss.Style
	CalendarBusyStyle  lipgloss.Style
	CalendarDoneStyle  lipgloss.Style
)

// CurrentPalette is the palette applied by the last SetTheme call.
var CurrentPalette Palette

// SetTheme sets the active palette and rebuilds all global styles.
func SetTheme(p Palette) {
	CurrentPalette = p

	HeaderStyle = lipgloss.NewStyle().
		Foreground(p.Primary).
		Bold(true)
	MutedStyle = lipgloss.NewStyle().
		Foreground(p.Muted)
	SuccessStyle = lipgloss.NewStyle().
		Foreground(p.Success)
	WarningStyle = lipgloss.NewStyle().
		Foreground(p.Warning)
	ErrorStyle = lipgloss.NewStyle().
		Foreground(p.Error).
		Bold(true)

	UrgencyHighStyle = lipgloss.NewStyle().
		Foreground(p.Error).
		Bold(true)
	UrgencyMediumStyle = lipgloss.NewStyle().
		Foreground(p.Warning)
	UrgencyLowStyle = lipgloss.NewStyle().
		Foreground(p.Secondary)
	CompletedStyle = lipgloss.NewStyle().
		Foreground(p.Muted).
		Strikethrough(true)

	CalendarTodayStyle = lipgloss.NewStyle().
		Foreground(p.Background).
		Background(p.Primary).
		Bold(true)
	CalendarBusyStyle = lipgloss.NewStyle().
		Foreground(p.Warning).
		Bold(true)
	CalendarDoneStyle = lipgloss.NewStyle().
		Foreground(p.Success)
}

func init() {
	SetTheme(themes[DefaultTheme])
}
