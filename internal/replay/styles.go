// Package replay renders compiled game timelines: a printed transcript,
// aggregate statistics, exports and an interactive stepper.
package replay

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Each actor has a distinct, consistent color.
var (
	// Structural / metadata
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")) // Gray - stages, metadata

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")) // Gray - labels

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")) // White - values

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")) // White bold - headers

	// Phases
	dayStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("11")) // Yellow

	nightStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")) // Blue

	// Town talk - white
	speechStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15"))

	// Ballots - Cyan
	voteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("14"))

	voteResultStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("14"))

	// Mafia negotiation - Magenta
	mafiaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("13"))

	mafiaDimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5"))

	// Detective - Orange
	detectiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("208"))

	// Outcomes
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")) // Green

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")) // Red

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")) // Yellow

	// Timeline
	seqStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			Width(5).
			Align(lipgloss.Right)

	stageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			Width(stageWidth)

	// Content blocks
	reasoningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			Italic(true)

	divider = strings.Repeat("━", 60)
)

const stageWidth = 14

// phaseStyle picks the banner color for a phase key.
func phaseStyle(phase string) lipgloss.Style {
	switch {
	case strings.HasPrefix(phase, "day"):
		return dayStyle
	case strings.HasPrefix(phase, "night"):
		return nightStyle
	}
	return titleStyle
}
