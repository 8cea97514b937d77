package timeline

import (
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/vinayprograms/mafiareplay/internal/gamelog"
)

// Beat types.
const (
	BeatSpeech          = "speech"
	BeatNightZero       = "night_zero"
	BeatVoteCast        = "vote_cast"
	BeatVoteResult      = "vote_result"
	BeatRevoteCast      = "revote_cast"
	BeatRevoteResult    = "revote_result"
	BeatDefense         = "defense"
	BeatMafiaProposal   = "mafia_proposal"
	BeatMafiaR1         = "mafia_r1"
	BeatMafiaR2         = "mafia_r2"
	BeatNightKillResult = "night_kill_result"
	BeatInvestigation   = "investigation"
	BeatLastWords       = "last_words"
	BeatElimination     = "elimination"
	BeatDayAnnouncement = "day_announcement"
	BeatGameEnd         = "game_end"
)

// Beat is one atomic, navigable replay unit.
type Beat struct {
	Index       int     `json:"index" yaml:"index"`
	Type        string  `json:"type" yaml:"type"`
	Label       string  `json:"label" yaml:"label"`
	Speaker     string  `json:"speaker,omitempty" yaml:"speaker,omitempty"`
	Target      string  `json:"target,omitempty" yaml:"target,omitempty"`
	Text        string  `json:"text,omitempty" yaml:"text,omitempty"`
	Tally       string  `json:"tally,omitempty" yaml:"tally,omitempty"`
	Outcome     string  `json:"outcome,omitempty" yaml:"outcome,omitempty"`
	Nomination  string  `json:"nomination,omitempty" yaml:"nomination,omitempty"`
	Reasoning   string  `json:"reasoning,omitempty" yaml:"reasoning,omitempty"`
	Phase       string  `json:"phase" yaml:"phase"`
	Stage       string  `json:"stage" yaml:"stage"`
	StatePublic *Roster `json:"state_public,omitempty" yaml:"state_public,omitempty"`
	IsPublic    bool    `json:"is_public" yaml:"is_public"`
	Source      int     `json:"source" yaml:"source"`
	// ProposalOrder is the position of a proposal in its round's map.
	ProposalOrder int `json:"proposal_order,omitempty" yaml:"proposal_order,omitempty"`
}

// IsProposal reports whether the beat is a mafia kill proposal of any round.
func (b Beat) IsProposal() bool {
	switch b.Type {
	case BeatMafiaProposal, BeatMafiaR1, BeatMafiaR2:
		return true
	}
	return false
}

// proposalRounds lists the proposal maps of a night_kill event in the order
// they are expanded. All present maps are expanded.
var proposalRounds = []struct {
	key   string
	beat  string
	label string
}{
	{"proposal_details", BeatMafiaProposal, "Mafia proposal"},
	{"proposal_details_r1", BeatMafiaR1, "Mafia R1"},
	{"proposal_details_r2", BeatMafiaR2, "Mafia R2"},
}

// ballot describes one vote or revote round for expansion.
type ballot struct {
	votesKey   string
	detailsKey string
	outcomeKey string
	castType   string
	resultType string
	castStage  string
	verb       string
	label      string
}

var (
	voteBallot = ballot{
		votesKey: "votes", detailsKey: "vote_details", outcomeKey: "outcome",
		castType: BeatVoteCast, resultType: BeatVoteResult, castStage: "vote",
		verb: "votes", label: "Vote result",
	}
	revoteBallot = ballot{
		votesKey: "revote", detailsKey: "revote_details", outcomeKey: "revote_outcome",
		castType: BeatRevoteCast, resultType: BeatRevoteResult, castStage: "revote",
		verb: "revotes", label: "Revote result",
	}
)

// compiler holds the per-compile accumulators. Nothing survives a call to
// CompileBeats.
type compiler struct {
	mode    Mode
	players map[string]gamelog.Player
	beats   []Beat

	pending      map[string][]Beat
	pendingOrder []string
}

// CompileBeats expands a filtered event stream into beats. In public mode
// non-public beats are dropped. Indices are dense and assigned last.
func CompileBeats(events []NormalizedEvent, players map[string]gamelog.Player, mode Mode) []Beat {
	c := &compiler{
		mode:    mode,
		players: players,
		beats:   []Beat{},
		pending: make(map[string][]Beat),
	}
	for _, e := range events {
		c.compile(e)
	}
	for _, phase := range c.pendingOrder {
		c.beats = append(c.beats, c.pending[phase]...)
	}

	beats := c.beats
	if mode == ModePublic {
		beats = make([]Beat, 0, len(c.beats))
		for _, b := range c.beats {
			if b.IsPublic {
				beats = append(beats, b)
			}
		}
	}
	for i := range beats {
		beats[i].Index = i
	}
	return beats
}

func (c *compiler) compile(e NormalizedEvent) {
	d := e.View(c.mode)
	base := Beat{
		Phase:       e.Phase,
		Stage:       e.Stage,
		StatePublic: e.StatePublic,
		IsPublic:    true,
		Source:      e.Index,
	}

	switch e.Type {
	case "speech":
		b := base
		b.Type = BeatSpeech
		b.Speaker = stringOf(d.Get("speaker"))
		b.Label = orDefault(b.Speaker, "Player") + " speaks"
		b.Text = stringOf(d.Get("text"))
		b.Nomination = stringOf(d.Get("nomination"))
		b.Reasoning = reasoningOf(d.Get("reasoning"))
		c.push(b)

	case "night_zero_strategy":
		b := base
		b.Type = BeatNightZero
		b.Speaker = stringOf(d.Get("speaker"))
		b.Label = orDefault(b.Speaker, "Mafia") + " plan"
		b.Text = stringOf(d.Get("text"))
		b.Reasoning = reasoningOf(d.Get("reasoning"))
		b.IsPublic = false
		c.push(b)

	case "last_words":
		b := base
		b.Type = BeatLastWords
		b.Label = "Last words"
		b.Speaker = stringOf(d.Get("speaker"))
		b.Text = stringOf(d.Get("text"))
		b.Reasoning = reasoningOf(d.Get("reasoning"))
		c.push(b)

	case "defense":
		b := base
		b.Type = BeatDefense
		b.Label = "Defense"
		b.Speaker = stringOf(d.Get("speaker"))
		b.Text = stringOf(d.Get("text"))
		b.Reasoning = reasoningOf(d.Get("reasoning"))
		if _, ok := c.pending[e.Phase]; !ok {
			c.pendingOrder = append(c.pendingOrder, e.Phase)
		}
		c.pending[e.Phase] = append(c.pending[e.Phase], b)

	case "vote":
		before, after := snapshots(d, e)
		c.expandBallot(d, base, voteBallot, before, after)
		c.flushDefenses(e.Phase)
		c.expandBallot(d, base, revoteBallot, before, after)

	case "vote_round":
		before, after := snapshots(d, e)
		// Newer logs record each ballot as its own event; round 2 is the revote.
		round := voteBallot
		if d.Get("round").Int() == 2 {
			round = revoteBallot
			round.votesKey, round.detailsKey, round.outcomeKey = voteBallot.votesKey, voteBallot.detailsKey, voteBallot.outcomeKey
		}
		c.expandBallot(d, base, round, before, after)
		if round.castType == BeatVoteCast {
			c.flushDefenses(e.Phase)
		}

	case "night_kill":
		c.expandNightKill(d, base, e)

	case "investigation":
		b := base
		b.Type = BeatInvestigation
		b.Speaker = "Detective"
		b.Target = stringOf(d.Get("target"))
		b.Outcome = stringOf(d.Get("result"))
		b.Label = "Investigation: " + orDefault(b.Target, "unknown") + " is " + orDefault(b.Outcome, "unknown")
		b.Reasoning = reasoningOf(d.Get("reasoning"))
		b.IsPublic = false
		c.insertBeforeNightResult(b)

	case "elimination":
		_, after := snapshots(d, e)
		b := base
		b.Type = BeatElimination
		b.Target = eliminatedName(d)
		b.Label = orDefault(b.Target, "Player") + " eliminated"
		b.Outcome = b.Label
		b.StatePublic = after
		c.push(b)

	case "day_announcement":
		b := base
		b.Type = BeatDayAnnouncement
		b.Label = "Day announcement"
		b.Text = stringOf(d.Get("text"))
		b.Target = strings.Join(namesOf(d.Get("victims")), ", ")
		c.push(b)

	case "game_end":
		b := base
		b.Type = BeatGameEnd
		b.Label = "Game end"
		b.Outcome = stringOf(d.Get("winner"))
		if b.Outcome != "" {
			b.Text = "Winner: " + b.Outcome
		}
		c.push(b)
	}
}

func (c *compiler) push(b Beat) {
	c.beats = append(c.beats, b)
}

// expandBallot emits one cast beat per (voter, target) in document order,
// then a result beat when an outcome is recorded.
func (c *compiler) expandBallot(d gjson.Result, base Beat, round ballot, before, after *Roster) {
	votes := d.Get(round.votesKey)
	details := d.Get(round.detailsKey)

	var order []string
	counts := make(map[string]int)
	votes.ForEach(func(k, v gjson.Result) bool {
		voter, target := k.String(), v.String()
		if _, seen := counts[target]; !seen {
			order = append(order, target)
		}
		counts[target]++

		b := base
		b.Type = round.castType
		b.Label = voter + " " + round.verb + " " + target
		b.Speaker = voter
		b.Target = target
		b.Tally = target + ": " + strconv.Itoa(counts[target])
		b.Reasoning = reasoningOf(child(details, voter))
		b.Stage = round.castStage
		b.StatePublic = before
		c.push(b)
		return true
	})

	outcome := stringOf(d.Get(round.outcomeKey))
	if outcome == "" {
		return
	}
	tally := make([]string, 0, len(order))
	for _, target := range order {
		tally = append(tally, target+": "+strconv.Itoa(counts[target]))
	}

	b := base
	b.Type = round.resultType
	b.Label = round.label
	b.Outcome = FormatOutcome(outcome)
	b.Text = strings.Join(tally, ", ")
	b.Stage = round.resultType
	b.StatePublic = after
	c.push(b)
}

func (c *compiler) flushDefenses(phase string) {
	if len(c.pending[phase]) == 0 {
		return
	}
	c.beats = append(c.beats, c.pending[phase]...)
	c.pending[phase] = nil
}

func (c *compiler) expandNightKill(d gjson.Result, base Beat, e NormalizedEvent) {
	before, after := snapshots(d, e)
	details := d.Get("reasoning")

	for _, round := range proposalRounds {
		proposals := details.Get(round.key)
		if !proposals.IsObject() {
			continue
		}
		names := keysOf(proposals)
		order := make(map[string]int, len(names))
		for i, name := range names {
			order[name] = i
		}
		for _, name := range c.bySeat(names) {
			output := child(proposals, name)
			b := base
			b.ProposalOrder = order[name]
			b.Type = round.beat
			b.Label = round.label
			b.Speaker = name
			b.Target = stringOf(output.Get("target"))
			b.Text = proposalText(output)
			b.Reasoning = reasoningOf(output.Get("reasoning"))
			b.Stage = "night_kill"
			b.StatePublic = before
			b.IsPublic = false
			c.push(b)
		}
	}

	b := base
	b.Type = BeatNightKillResult
	b.Label = "Night kill"
	b.Target = orDefault(stringOf(d.Get("target")), "none")
	b.Stage = BeatNightKillResult
	b.StatePublic = after
	c.push(b)
}

// insertBeforeNightResult splices b in front of the phase's night result, or
// appends it when the night has not resolved yet.
func (c *compiler) insertBeforeNightResult(b Beat) {
	for i, existing := range c.beats {
		if existing.Type == BeatNightKillResult && existing.Phase == b.Phase {
			c.beats = slices.Insert(c.beats, i, b)
			return
		}
	}
	c.push(b)
}

// bySeat orders names by ascending seat. Unknown players count as seat 0 and
// ties keep their original order.
func (c *compiler) bySeat(names []string) []string {
	sort.SliceStable(names, func(i, j int) bool {
		return c.players[names[i]].Seat < c.players[names[j]].Seat
	})
	return names
}

// snapshots picks the pre- and post-action rosters for a compound event.
func snapshots(d gjson.Result, e NormalizedEvent) (before, after *Roster) {
	before, after = e.StatePublic, e.StatePublic
	if r := rosterFrom(d.Get("state_before")); r != nil {
		before = r
	}
	if r := rosterFrom(d.Get("state_after")); r != nil {
		after = r
	}
	return before, after
}

func proposalText(output gjson.Result) string {
	if output.Type == gjson.String {
		return output.Str
	}
	for _, key := range []string{"message", "speech", "text"} {
		if s := stringOf(output.Get(key)); s != "" {
			return s
		}
	}
	return ""
}

func keysOf(r gjson.Result) []string {
	var keys []string
	r.ForEach(func(k, _ gjson.Result) bool {
		keys = append(keys, k.String())
		return true
	})
	return keys
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
