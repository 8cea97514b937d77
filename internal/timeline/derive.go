package timeline

import "slices"

// VoteToken is one voter's current choice during a vote reveal.
type VoteToken struct {
	Voter  string `json:"voter" yaml:"voter"`
	Target string `json:"target" yaml:"target"`
}

// NightTarget is a proposed kill target and who proposed it.
type NightTarget struct {
	Target    string   `json:"target" yaml:"target"`
	Proposers []string `json:"proposers" yaml:"proposers"`
}

// NightTargets lists targets in the order they were first proposed.
type NightTargets []NightTarget

// Proposers returns who proposed target, or nil.
func (n NightTargets) Proposers(target string) []string {
	for _, t := range n {
		if t.Target == target {
			return t.Proposers
		}
	}
	return nil
}

// Derived is the transient state shown alongside one beat.
type Derived struct {
	Index        int          `json:"index" yaml:"index"`
	VoteTokens   []VoteToken  `json:"vote_tokens" yaml:"vote_tokens"`
	VoteStage    string       `json:"vote_stage,omitempty" yaml:"vote_stage,omitempty"`
	NightTargets NightTargets `json:"night_targets" yaml:"night_targets"`
	Roster       Roster       `json:"roster" yaml:"roster"`
}

// Derive computes the state for beats[index]. The index is clamped.
func Derive(beats []Beat, index int, mode Mode) Derived {
	d := Derived{
		VoteTokens:   []VoteToken{},
		NightTargets: NightTargets{},
		Roster:       EmptyRoster(),
	}
	if len(beats) == 0 {
		return d
	}
	index = Clamp(index, len(beats))
	d.Index = index
	d.VoteTokens, d.VoteStage = VoteTokens(beats, index, mode)
	d.NightTargets = NightTargetsAt(beats, index, mode)
	d.Roster = beats[index].StatePublic.OrEmpty()
	return d
}

// VoteTokens returns each voter's latest choice in the vote or revote round
// containing beats[index], plus that round's stage. Outside a vote stage
// the list is empty.
func VoteTokens(beats []Beat, index int, mode Mode) ([]VoteToken, string) {
	tokens := []VoteToken{}
	if index < 0 || index >= len(beats) {
		return tokens, ""
	}
	current := beats[index]

	var castType string
	switch current.Stage {
	case "vote", "vote_result":
		castType = BeatVoteCast
	case "revote", "revote_result":
		castType = BeatRevoteCast
	default:
		return tokens, ""
	}

	pos := make(map[string]int)
	for i := 0; i <= index; i++ {
		b := beats[i]
		if b.Phase != current.Phase || b.Type != castType {
			continue
		}
		if mode == ModePublic && !b.IsPublic {
			continue
		}
		if b.Speaker == "" || b.Target == "" {
			continue
		}
		if p, ok := pos[b.Speaker]; ok {
			tokens[p].Target = b.Target
			continue
		}
		pos[b.Speaker] = len(tokens)
		tokens = append(tokens, VoteToken{Voter: b.Speaker, Target: b.Target})
	}
	return tokens, current.Stage
}

// NightTargetsAt maps proposed targets to their proposers up to beats[index].
// Only omniscient observers during kill planning see this.
func NightTargetsAt(beats []Beat, index int, mode Mode) NightTargets {
	targets := NightTargets{}
	if mode != ModeOmniscient || index < 0 || index >= len(beats) {
		return targets
	}
	current := beats[index]
	if current.Stage != "night_kill" {
		return targets
	}

	pos := make(map[string]int)
	for i := 0; i <= index; i++ {
		b := beats[i]
		if b.Phase != current.Phase || !b.IsProposal() || b.Target == "" || b.Speaker == "" {
			continue
		}
		p, ok := pos[b.Target]
		if !ok {
			p = len(targets)
			pos[b.Target] = p
			targets = append(targets, NightTarget{Target: b.Target})
		}
		if !slices.Contains(targets[p].Proposers, b.Speaker) {
			targets[p].Proposers = append(targets[p].Proposers, b.Speaker)
		}
	}
	return targets
}
