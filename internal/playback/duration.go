// Package playback schedules unattended replay: how long each beat stays on
// screen, the vote reveal and night dialogue sub-sequences, and the
// auto-advance driver that ties them together.
package playback

import (
	"time"

	"github.com/vinayprograms/mafiareplay/internal/timeline"
)

// Timing constants.
const (
	BaseStep         = 2200 * time.Millisecond
	VoteStep         = 900 * time.Millisecond
	VoteFinishPause  = 500 * time.Millisecond
	DialogueStep     = 2600 * time.Millisecond
	SpeechHold       = 4200 * time.Millisecond
	AnnouncementHold = 3000 * time.Millisecond
)

// DurationOf returns how long beats[index] stays on screen during auto-play.
// Out-of-range indices get the base step.
func DurationOf(beats []timeline.Beat, index int) time.Duration {
	if index < 0 || index >= len(beats) {
		return BaseStep
	}
	switch beats[index].Type {
	case timeline.BeatVoteResult, timeline.BeatRevoteResult:
		voters := len(RoundVotes(beats, index))
		return max(BaseStep, time.Duration(voters)*VoteStep+VoteFinishPause)
	case timeline.BeatSpeech, timeline.BeatDefense, timeline.BeatLastWords:
		return SpeechHold
	case timeline.BeatNightKillResult, timeline.BeatMafiaProposal, timeline.BeatMafiaR1,
		timeline.BeatMafiaR2, timeline.BeatInvestigation, timeline.BeatNightZero:
		entries := len(DialogueEntries(beats, index))
		return max(BaseStep, time.Duration(entries)*DialogueStep)
	case timeline.BeatDayAnnouncement, timeline.BeatElimination:
		return AnnouncementHold
	}
	return BaseStep
}

// castTypeFor maps a result beat to the cast beats of its round.
func castTypeFor(resultType string) string {
	if resultType == timeline.BeatRevoteResult {
		return timeline.BeatRevoteCast
	}
	return timeline.BeatVoteCast
}

// RoundVotes returns the final choice of every voter in the round closed by
// the result beat at index. A round reaches back to the previous result of
// the same kind in the same phase. Voters are listed in first-cast order.
func RoundVotes(beats []timeline.Beat, index int) []timeline.VoteToken {
	if index < 0 || index >= len(beats) {
		return nil
	}
	result := beats[index]
	castType := castTypeFor(result.Type)

	start := 0
	for j := index - 1; j >= 0; j-- {
		if beats[j].Phase == result.Phase && beats[j].Type == result.Type {
			start = j + 1
			break
		}
	}

	var tokens []timeline.VoteToken
	pos := make(map[string]int)
	for j := start; j < index; j++ {
		b := beats[j]
		if b.Phase != result.Phase || b.Type != castType || b.Speaker == "" {
			continue
		}
		if p, ok := pos[b.Speaker]; ok {
			tokens[p].Target = b.Target
			continue
		}
		pos[b.Speaker] = len(tokens)
		tokens = append(tokens, timeline.VoteToken{Voter: b.Speaker, Target: b.Target})
	}
	return tokens
}
