package replay

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/vinayprograms/mafiareplay/internal/timeline"
)

// contIndent aligns continuation lines with the content column.
var contIndent = "      │ " + strings.Repeat(" ", stageWidth) + " │   "

// printContent prints quoted text with timeline indentation.
func (r *Replayer) printContent(content string) {
	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(r.output, "%s%s\n", contIndent, r.paint(valueStyle, line))
	}
}

// printDetail prints a single styled continuation line.
func (r *Replayer) printDetail(st lipgloss.Style, text string) {
	for _, line := range strings.Split(text, "\n") {
		fmt.Fprintf(r.output, "%s%s\n", contIndent, r.paint(st, line))
	}
}

// printReasoning prints a beat's private reasoning.
func (r *Replayer) printReasoning(reasoning string) {
	lines := strings.Split(r.truncate(reasoning), "\n")
	for i, line := range lines {
		prefix := "  "
		if i == 0 {
			prefix = "» "
		}
		fmt.Fprintf(r.output, "%s%s\n", contIndent, r.paint(reasoningStyle, prefix+line))
	}
}

// printRoster prints the roster carried by a beat.
func (r *Replayer) printRoster(roster *timeline.Roster) {
	if roster == nil {
		return
	}
	fmt.Fprintf(r.output, "%s%s %s\n", contIndent,
		r.paint(labelStyle, "alive:"),
		r.paint(successStyle, formatNames(roster.Living)))
	if len(roster.Dead) > 0 {
		fmt.Fprintf(r.output, "%s%s %s\n", contIndent,
			r.paint(labelStyle, "dead: "),
			r.paint(errorStyle, formatNames(roster.Dead)))
	}
	if len(roster.Nominated) > 0 {
		fmt.Fprintf(r.output, "%s%s %s\n", contIndent,
			r.paint(labelStyle, "nominated:"),
			r.paint(warnStyle, formatNames(roster.Nominated)))
	}
}

// outcomeStyle returns the style for a vote outcome.
func outcomeStyle(outcome string) lipgloss.Style {
	if strings.HasSuffix(outcome, " eliminated") {
		return errorStyle
	}
	return warnStyle
}

// truncate shortens text longer than the configured limit.
func (r *Replayer) truncate(s string) string {
	return truncateContent(s, r.maxTextSize)
}

func truncateContent(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + fmt.Sprintf("... [truncated, %d bytes total]", len(s))
}

func formatNames(names []string) string {
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ", ")
}
