package replay

import (
	"fmt"
	"io"
	"slices"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/vinayprograms/mafiareplay/internal/playback"
	"github.com/vinayprograms/mafiareplay/internal/timeline"
)

// PhaseStats summarizes one phase of the timeline.
type PhaseStats struct {
	Phase      string
	Beats      int
	PlaybackMs int64
}

// Stats holds aggregate statistics for a compiled timeline.
type Stats struct {
	Mode        timeline.Mode
	Beats       int
	PublicBeats int
	Days        int
	Nights      int

	// Total auto-play time at normal speed
	PlaybackMs int64
	Phases     []PhaseStats

	Speeches       int
	Defenses       int
	SpeechesBy     map[string]int
	VoteRounds     int
	Revotes        int
	BallotsCast    int
	Eliminated     []string // in order: vote outcomes and elimination events
	NightKills     []string // resolved night targets, "none" excluded
	Proposals      int
	Investigations int

	Winner string
}

// ComputeStats calculates aggregate statistics from a timeline.
func ComputeStats(tl *timeline.Timeline) *Stats {
	stats := &Stats{
		Mode:       tl.Mode,
		Beats:      tl.Len(),
		SpeechesBy: make(map[string]int),
		Winner:     winnerOf(tl),
	}

	for _, phase := range tl.PhaseIndex.Phases() {
		ps := PhaseStats{Phase: phase}
		for _, i := range tl.PhaseIndex.Beats(phase) {
			ps.Beats++
			ps.PlaybackMs += playback.DurationOf(tl.Beats, i).Milliseconds()
		}
		stats.PlaybackMs += ps.PlaybackMs
		stats.Phases = append(stats.Phases, ps)

		switch {
		case strings.HasPrefix(phase, "day"):
			stats.Days++
		case strings.HasPrefix(phase, "night"):
			stats.Nights++
		}
	}

	for _, b := range tl.Beats {
		if b.IsPublic {
			stats.PublicBeats++
		}

		switch b.Type {
		case timeline.BeatSpeech:
			stats.Speeches++
			if b.Speaker != "" {
				stats.SpeechesBy[b.Speaker]++
			}
		case timeline.BeatDefense:
			stats.Defenses++
		case timeline.BeatVoteCast, timeline.BeatRevoteCast:
			stats.BallotsCast++
		case timeline.BeatVoteResult:
			stats.VoteRounds++
			stats.addElimination(b.Outcome)
		case timeline.BeatRevoteResult:
			stats.Revotes++
			stats.addElimination(b.Outcome)
		case timeline.BeatElimination:
			stats.addElimination(b.Outcome)
		case timeline.BeatMafiaProposal, timeline.BeatMafiaR1, timeline.BeatMafiaR2:
			stats.Proposals++
		case timeline.BeatNightKillResult:
			if b.Target != "" && b.Target != "none" {
				stats.NightKills = append(stats.NightKills, b.Target)
			}
		case timeline.BeatInvestigation:
			stats.Investigations++
		}
	}

	return stats
}

// addElimination records a rendered "X eliminated" outcome once.
func (s *Stats) addElimination(outcome string) {
	name, ok := strings.CutSuffix(outcome, " eliminated")
	if !ok || name == "" {
		return
	}
	if slices.Contains(s.Eliminated, name) {
		return
	}
	s.Eliminated = append(s.Eliminated, name)
}

// PrintStats outputs the statistics to the writer.
func PrintStats(w io.Writer, stats *Stats) {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("15"))

	line := func(indent, label, value string) {
		fmt.Fprintf(w, "%s%s %s\n", indent, labelStyle.Render(label), valueStyle.Render(value))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("═══════════════════════════════════════════════════════════════════"))
	fmt.Fprintln(w, headerStyle.Render("                          GAME STATISTICS                          "))
	fmt.Fprintln(w, headerStyle.Render("═══════════════════════════════════════════════════════════════════"))
	fmt.Fprintln(w)

	line("", "Mode:          ", string(stats.Mode))
	line("", "Beats:         ", fmt.Sprintf("%d (%d public)", stats.Beats, stats.PublicBeats))
	line("", "Days / Nights: ", fmt.Sprintf("%d / %d", stats.Days, stats.Nights))
	line("", "Playback Time: ", formatDuration(stats.PlaybackMs))
	if stats.Winner != "" {
		line("", "Winner:        ", stats.Winner)
	}
	fmt.Fprintln(w)

	if len(stats.Phases) > 0 {
		fmt.Fprintln(w, headerStyle.Render("Phases:"))
		for _, p := range stats.Phases {
			line("  ", fmt.Sprintf("%-12s", timeline.PhaseLabel(p.Phase)+":"),
				fmt.Sprintf("%d beats, %s", p.Beats, formatDuration(p.PlaybackMs)))
		}
		fmt.Fprintln(w)
	}

	if stats.Speeches > 0 || stats.Defenses > 0 {
		fmt.Fprintln(w, headerStyle.Render("Discussion:"))
		line("  ", "Speeches:", fmt.Sprintf("%d", stats.Speeches))
		if stats.Defenses > 0 {
			line("  ", "Defenses:", fmt.Sprintf("%d", stats.Defenses))
		}
		speakers := make([]string, 0, len(stats.SpeechesBy))
		for s := range stats.SpeechesBy {
			speakers = append(speakers, s)
		}
		sort.Slice(speakers, func(i, j int) bool {
			a, b := stats.SpeechesBy[speakers[i]], stats.SpeechesBy[speakers[j]]
			if a != b {
				return a > b
			}
			return speakers[i] < speakers[j]
		})
		for _, s := range speakers {
			line("    ", s+":", fmt.Sprintf("%d", stats.SpeechesBy[s]))
		}
		fmt.Fprintln(w)
	}

	if stats.VoteRounds > 0 || stats.Revotes > 0 {
		fmt.Fprintln(w, headerStyle.Render("Voting:"))
		line("  ", "Rounds: ", fmt.Sprintf("%d", stats.VoteRounds))
		line("  ", "Revotes:", fmt.Sprintf("%d", stats.Revotes))
		line("  ", "Ballots:", fmt.Sprintf("%d", stats.BallotsCast))
		fmt.Fprintln(w)
	}

	if len(stats.Eliminated) > 0 || len(stats.NightKills) > 0 {
		fmt.Fprintln(w, headerStyle.Render("Deaths:"))
		if len(stats.Eliminated) > 0 {
			line("  ", "Eliminated: ", strings.Join(stats.Eliminated, ", "))
		}
		if len(stats.NightKills) > 0 {
			line("  ", "Night kills:", strings.Join(stats.NightKills, ", "))
		}
		fmt.Fprintln(w)
	}

	if stats.Proposals > 0 || stats.Investigations > 0 {
		fmt.Fprintln(w, headerStyle.Render("Hidden Actions:"))
		line("  ", "Mafia proposals:", fmt.Sprintf("%d", stats.Proposals))
		line("  ", "Investigations: ", fmt.Sprintf("%d", stats.Investigations))
		fmt.Fprintln(w)
	}
}

// formatDuration formats milliseconds as human-readable duration.
func formatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	if ms < 60000 {
		return fmt.Sprintf("%.2fs", float64(ms)/1000)
	}
	mins := ms / 60000
	secs := (ms % 60000) / 1000
	return fmt.Sprintf("%dm%ds", mins, secs)
}
