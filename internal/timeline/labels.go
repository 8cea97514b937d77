package timeline

import (
	"strconv"
	"strings"

	"github.com/vinayprograms/mafiareplay/internal/gamelog"
)

var stageLabels = map[string]string{
	"discussion":        "Discussion",
	"vote":              "Vote",
	"vote_result":       "Vote Result",
	"revote":            "Revote",
	"revote_result":     "Revote Result",
	"defense":           "Defense",
	"night_kill":        "Kill Planning",
	"night_kill_result": "Night Result",
	"night_zero":        "Night Zero",
	"investigation":     "Investigation",
	"last_words":        "Last Words",
	"elimination":       "Elimination",
	"day_announcement":  "Announcement",
	"game_end":          "Game End",
}

// PhaseLabel renders a phase key such as "day_2" as "Day 2".
func PhaseLabel(phase string) string {
	if phase == "" || phase == "unknown" {
		return "Phase"
	}
	if phase == "night_zero" || phase == "night_0" {
		return "Night Zero"
	}
	kind, num, _ := strings.Cut(phase, "_")
	switch kind {
	case "day":
		return strings.TrimSpace("Day " + num)
	case "night":
		return strings.TrimSpace("Night " + num)
	}
	return phase
}

// StageLabel renders a stage key for display.
func StageLabel(stage string) string {
	if label, ok := stageLabels[stage]; ok {
		return label
	}
	if stage == "" {
		return "Stage"
	}
	return stage
}

// FormatOutcome renders a machine outcome. "eliminated:X" becomes
// "X eliminated"; anything else is returned unchanged.
func FormatOutcome(outcome string) string {
	if name, ok := strings.CutPrefix(outcome, "eliminated:"); ok {
		return name + " eliminated"
	}
	return outcome
}

// TokenLabel is the short marker for a vote target: its seat number when
// seated, otherwise its upper-cased initial.
func TokenLabel(target string, players map[string]gamelog.Player) string {
	if p, ok := players[target]; ok {
		return "#" + strconv.Itoa(p.Seat)
	}
	if target == "" {
		return "?"
	}
	r := []rune(target)
	return strings.ToUpper(string(r[0]))
}
