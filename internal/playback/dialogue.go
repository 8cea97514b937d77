package playback

import (
	"sort"
	"time"

	"github.com/vinayprograms/mafiareplay/internal/timeline"
)

// DialogueEntry is one line of night negotiation.
type DialogueEntry struct {
	Speaker string
	Label   string
	Text    string
}

var roundLabels = map[string]string{
	timeline.BeatMafiaR1: "R1",
	timeline.BeatMafiaR2: "R2",
}

var roundRank = map[string]int{
	timeline.BeatMafiaProposal: 0,
	timeline.BeatMafiaR1:       1,
	timeline.BeatMafiaR2:       2,
}

// DialogueEntries lists the lines cycled while beats[index] is shown. A
// night result replays every proposal of its night in proposal order;
// single proposals and night-zero plans show themselves. Investigations
// have no dialogue.
func DialogueEntries(beats []timeline.Beat, index int) []DialogueEntry {
	if index < 0 || index >= len(beats) {
		return nil
	}
	b := beats[index]
	switch {
	case b.Type == timeline.BeatNightKillResult:
		var proposals []timeline.Beat
		for j := roundStart(beats, index); j < index; j++ {
			if p := beats[j]; p.Phase == b.Phase && p.IsProposal() {
				proposals = append(proposals, p)
			}
		}
		// Beats are seat-ordered; the slideshow follows proposal order.
		sort.SliceStable(proposals, func(i, j int) bool {
			ri, rj := roundRank[proposals[i].Type], roundRank[proposals[j].Type]
			if ri != rj {
				return ri < rj
			}
			return proposals[i].ProposalOrder < proposals[j].ProposalOrder
		})
		var entries []DialogueEntry
		for _, p := range proposals {
			if e, ok := proposalEntry(p); ok {
				entries = append(entries, e)
			}
		}
		return entries
	case b.IsProposal():
		if e, ok := proposalEntry(b); ok {
			return []DialogueEntry{e}
		}
	case b.Type == timeline.BeatNightZero:
		if b.Text != "" {
			return []DialogueEntry{{Speaker: orMafia(b.Speaker), Text: b.Text}}
		}
	}
	return nil
}

// roundStart finds the first beat after the previous night result of the
// same phase.
func roundStart(beats []timeline.Beat, index int) int {
	for j := index - 1; j >= 0; j-- {
		if beats[j].Type == timeline.BeatNightKillResult && beats[j].Phase == beats[index].Phase {
			return j + 1
		}
	}
	return 0
}

func proposalEntry(b timeline.Beat) (DialogueEntry, bool) {
	text := b.Text
	if text == "" && b.Target != "" {
		text = "Proposes " + b.Target
	}
	if text == "" {
		return DialogueEntry{}, false
	}
	return DialogueEntry{Speaker: b.Speaker, Label: roundLabels[b.Type], Text: text}, true
}

func orMafia(s string) string {
	if s == "" {
		return "Mafia"
	}
	return s
}

// DialogueIndex is the entry shown elapsed after the dialogue started. The
// slideshow loops.
func DialogueIndex(n int, elapsed time.Duration) int {
	if n <= 0 || elapsed < 0 {
		return 0
	}
	return int(elapsed/DialogueStep) % n
}

// DialogueAt returns the entry shown elapsed after the dialogue started.
func DialogueAt(entries []DialogueEntry, elapsed time.Duration) (DialogueEntry, bool) {
	if len(entries) == 0 {
		return DialogueEntry{}, false
	}
	return entries[DialogueIndex(len(entries), elapsed)], true
}
