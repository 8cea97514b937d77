package playback

import (
	"sort"
	"time"

	"github.com/vinayprograms/mafiareplay/internal/gamelog"
	"github.com/vinayprograms/mafiareplay/internal/timeline"
)

// RevealState is the phase of a vote reveal.
type RevealState int

const (
	RevealIdle RevealState = iota
	RevealRevealing
	RevealComplete
)

func (s RevealState) String() string {
	switch s {
	case RevealIdle:
		return "idle"
	case RevealRevealing:
		return "revealing"
	case RevealComplete:
		return "complete"
	}
	return "unknown"
}

// Reveal is a point in a vote reveal: how many of Total voters are shown.
type Reveal struct {
	State    RevealState
	Revealed int
	Total    int
}

// Done reports whether the reveal reached its terminal state.
func (r Reveal) Done() bool {
	return r.State == RevealComplete
}

// OrderVoters puts seated voters first in seat order, then everyone else
// alphabetically.
func OrderVoters(tokens []timeline.VoteToken, players []gamelog.Player) []timeline.VoteToken {
	seated := make([]gamelog.Player, len(players))
	copy(seated, players)
	sort.SliceStable(seated, func(i, j int) bool { return seated[i].Seat < seated[j].Seat })

	byVoter := make(map[string]timeline.VoteToken, len(tokens))
	for _, t := range tokens {
		byVoter[t.Voter] = t
	}

	ordered := make([]timeline.VoteToken, 0, len(tokens))
	for _, p := range seated {
		if t, ok := byVoter[p.Name]; ok {
			ordered = append(ordered, t)
			delete(byVoter, p.Name)
		}
	}

	rest := make([]string, 0, len(byVoter))
	for voter := range byVoter {
		rest = append(rest, voter)
	}
	sort.Strings(rest)
	for _, voter := range rest {
		ordered = append(ordered, byVoter[voter])
	}
	return ordered
}

// RevealCompleteAt is when a reveal of n voters completes.
func RevealCompleteAt(n int) time.Duration {
	return time.Duration(n)*VoteStep + VoteFinishPause
}

// RevealAt returns the reveal of n voters elapsed after it became active.
// Voter k appears at k*VoteStep; the reveal completes a short pause after
// the last one.
func RevealAt(n int, elapsed time.Duration) Reveal {
	r := Reveal{Total: n}
	switch {
	case elapsed >= RevealCompleteAt(n):
		r.State = RevealComplete
		r.Revealed = n
	case elapsed >= VoteStep:
		r.State = RevealRevealing
		r.Revealed = min(int(elapsed/VoteStep), n)
	default:
		r.State = RevealIdle
	}
	return r
}

// RevealStep is one scheduled transition of a reveal.
type RevealStep struct {
	At     time.Duration
	Reveal Reveal
}

// RevealSchedule lists every transition of a reveal of n voters in order.
func RevealSchedule(n int) []RevealStep {
	steps := make([]RevealStep, 0, n+1)
	for k := 1; k <= n; k++ {
		steps = append(steps, RevealStep{
			At:     time.Duration(k) * VoteStep,
			Reveal: Reveal{State: RevealRevealing, Revealed: k, Total: n},
		})
	}
	steps = append(steps, RevealStep{
		At:     RevealCompleteAt(n),
		Reveal: Reveal{State: RevealComplete, Revealed: n, Total: n},
	})
	return steps
}

// VoteSequence is the ordered reveal of the round shown by a result beat.
type VoteSequence struct {
	Stage string
	Votes []timeline.VoteToken
}

// SequenceFor builds the vote sequence for the beat at index. It is empty
// unless the beat closes a vote or revote round.
func SequenceFor(tl *timeline.Timeline, index int) VoteSequence {
	b, ok := tl.Beat(index)
	if !ok || (b.Type != timeline.BeatVoteResult && b.Type != timeline.BeatRevoteResult) {
		return VoteSequence{}
	}
	stage := "vote"
	if b.Type == timeline.BeatRevoteResult {
		stage = "revote"
	}
	return VoteSequence{
		Stage: stage,
		Votes: OrderVoters(RoundVotes(tl.Beats, index), tl.Players),
	}
}
