package timeline

import (
	"reflect"
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/vinayprograms/mafiareplay/internal/gamelog"
)

// eventKinds are the building blocks of generated logs.
var eventKinds = []func() string{
	func() string {
		return event("phase_start", `{"phase": "day_1", "state_public": `+roster([]string{"A", "B", "C", "D"}, nil)+`}`)
	},
	func() string { return event("speech", `{"phase": "day_1", "speaker": "A", "text": "hello"}`) },
	func() string { return event("defense", `{"phase": "day_1", "speaker": "B", "text": "innocent"}`) },
	func() string {
		return event("vote", `{"phase": "day_1", "votes": {"A": "B", "C": "B", "D": "A"}, "outcome": "revote",
			"revote": {"A": "B", "C": "D"}, "revote_outcome": "eliminated:B"}`, "vote_details")
	},
	func() string {
		return event("night_kill", `{"phase": "night_1", "target": "C", "reasoning": {
			"proposal_details_r1": {"D": {"target": "C"}, "A": {"target": "B"}},
			"proposal_details_r2": {"A": {"target": "C"}}}}`, "reasoning")
	},
	func() string { return event("investigation", `{"phase": "night_1", "target": "A", "result": "Mafia"}`) },
	func() string {
		return event("night_zero_strategy", `{"phase": "night_0", "speaker": "A", "text": "plan"}`)
	},
	func() string { return event("mystery", `{"phase": "day_1"}`) },
	func() string {
		return event("phase_start", `{"phase": "night_1", "state_public": `+roster([]string{"A", "B", "C", "D"}, nil)+`}`)
	},
	func() string {
		return event("phase_start", `{"phase": "day_2", "state_public": `+roster([]string{"A", "B", "D"}, []string{"C"})+`}`)
	},
	func() string { return event("last_words", `{"phase": "day_2", "speaker": "B", "text": "bye"}`) },
	func() string {
		return event("vote_round", `{"phase": "day_2", "round": 1, "votes": {"A": "D", "B": "D"}, "outcome": "eliminated"}`)
	},
}

// silentKinds never produce a beat of their own.
var silentKinds = map[int]bool{0: true, 7: true, 8: true, 9: true}

func logFromKinds(kinds []int) *gamelog.Log {
	events := make([]string, len(kinds))
	for i, k := range kinds {
		events[i] = eventKinds[k]()
	}
	log, err := gamelog.Parse([]byte(docOf(fourPlayers, events...)))
	if err != nil {
		panic(err)
	}
	return log
}

func genKinds() gopter.Gen {
	return gen.SliceOf(gen.IntRange(0, len(eventKinds)-1))
}

func propertyParameters() *gopter.TestParameters {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	return parameters
}

func TestProperty_CompileIsIdempotent(t *testing.T) {
	properties := gopter.NewProperties(propertyParameters())

	properties.Property("compiling twice yields identical beats", prop.ForAll(
		func(kinds []int) bool {
			log := logFromKinds(kinds)
			for _, mode := range []Mode{ModePublic, ModeOmniscient} {
				a, b := Compile(log, mode), Compile(log, mode)
				if !reflect.DeepEqual(a.Beats, b.Beats) || !reflect.DeepEqual(a.PhaseIndex, b.PhaseIndex) {
					return false
				}
			}
			return true
		},
		genKinds(),
	))

	properties.TestingRun(t)
}

func TestProperty_BeatStructure(t *testing.T) {
	properties := gopter.NewProperties(propertyParameters())

	properties.Property("indices are dense", prop.ForAll(
		func(kinds []int) bool {
			for _, mode := range []Mode{ModePublic, ModeOmniscient} {
				for i, b := range Compile(logFromKinds(kinds), mode).Beats {
					if b.Index != i {
						return false
					}
				}
			}
			return true
		},
		genKinds(),
	))

	properties.Property("phase_start contributes no beats", prop.ForAll(
		func(kinds []int) bool {
			log := logFromKinds(kinds)
			for _, mode := range []Mode{ModePublic, ModeOmniscient} {
				for _, b := range Compile(log, mode).Beats {
					if log.Events[b.Source].Type == "phase_start" && b.Type != BeatDayAnnouncement {
						return false
					}
				}
			}
			return true
		},
		genKinds(),
	))

	properties.Property("every beat-producing event yields a beat", prop.ForAll(
		func(kinds []int) bool {
			producing := 0
			for _, k := range kinds {
				if !silentKinds[k] {
					producing++
				}
			}
			return Compile(logFromKinds(kinds), ModeOmniscient).Len() >= producing
		},
		genKinds(),
	))

	properties.TestingRun(t)
}

func TestProperty_Visibility(t *testing.T) {
	properties := gopter.NewProperties(propertyParameters())

	properties.Property("public mode shows only public beats", prop.ForAll(
		func(kinds []int) bool {
			for _, b := range Compile(logFromKinds(kinds), ModePublic).Beats {
				if !b.IsPublic || b.IsProposal() || b.Type == BeatNightZero || b.Type == BeatInvestigation {
					return false
				}
			}
			return true
		},
		genKinds(),
	))

	properties.Property("omniscient mode keeps every public beat", prop.ForAll(
		func(kinds []int) bool {
			log := logFromKinds(kinds)
			public := 0
			for _, b := range Compile(log, ModeOmniscient).Beats {
				if b.IsPublic {
					public++
				}
			}
			announcements := 0
			for _, b := range Compile(log, ModePublic).Beats {
				if b.Type == BeatDayAnnouncement {
					announcements++
				}
			}
			return public == Compile(log, ModePublic).Len()-announcements
		},
		genKinds(),
	))

	properties.Property("a death is never shown before it is announced", prop.ForAll(
		func(kinds []int) bool {
			tl := Compile(logFromKinds(kinds), ModePublic)
			announced := map[string]bool{}
			for _, b := range tl.Beats {
				switch {
				case b.Type == BeatNightKillResult:
					announced[b.Target] = true
				case b.Type == BeatVoteResult || b.Type == BeatRevoteResult:
					announced["B"] = announced["B"] || b.Outcome == "B eliminated"
				case b.Type == BeatDayAnnouncement:
					for _, e := range tl.Events {
						if e.Synthetic && e.Index == b.Source {
							for _, v := range namesOf(e.View(ModePublic).Get("victims")) {
								announced[v] = true
							}
						}
					}
				}
				if b.StatePublic == nil {
					continue
				}
				for _, dead := range b.StatePublic.Dead {
					if !announced[dead] {
						return false
					}
				}
			}
			return true
		},
		genKinds(),
	))

	properties.TestingRun(t)
}

func TestProperty_Ordering(t *testing.T) {
	properties := gopter.NewProperties(propertyParameters())

	properties.Property("investigations precede the night result", prop.ForAll(
		func(kinds []int) bool {
			beats := Compile(logFromKinds(kinds), ModeOmniscient).Beats
			for i, inv := range beats {
				if inv.Type != BeatInvestigation {
					continue
				}
				for j, res := range beats {
					if res.Type == BeatNightKillResult && res.Phase == inv.Phase && j < i {
						return false
					}
				}
			}
			return true
		},
		genKinds(),
	))

	properties.Property("queued defenses sit between the vote result and the revote", prop.ForAll(
		func(before, after int) bool {
			events := []string{}
			for i := 0; i < before; i++ {
				events = append(events, eventKinds[2]())
			}
			events = append(events, eventKinds[1]())
			events = append(events, eventKinds[3]())
			for i := 0; i < after; i++ {
				events = append(events, eventKinds[1]())
			}
			log, err := gamelog.Parse([]byte(docOf(fourPlayers, events...)))
			if err != nil {
				return false
			}

			beats := Compile(log, ModeOmniscient).Beats
			result := indexOfType(beats, BeatVoteResult)
			revote := indexOfType(beats, BeatRevoteCast)
			defenses := 0
			for i, b := range beats {
				if b.Type != BeatDefense {
					continue
				}
				defenses++
				if i < result || i > revote {
					return false
				}
			}
			return defenses == before
		},
		gen.IntRange(0, 4),
		gen.IntRange(0, 3),
	))

	properties.Property("proposals are ordered by seat", prop.ForAll(
		func(seats []int) bool {
			players := make([]string, len(seats))
			proposals := ""
			for i, seat := range seats {
				name := "P" + strconv.Itoa(i)
				players[i] = player(name, seat)
				if i > 0 {
					proposals += ","
				}
				proposals += strconv.Quote(name) + `: {"target": "X"}`
			}
			doc := docOf(players, event("night_kill", `{"phase": "night_1", "reasoning": {"proposal_details_r1": {`+proposals+`}}}`))
			log, err := gamelog.Parse([]byte(doc))
			if err != nil {
				return false
			}

			seatOf := map[string]int{}
			order := map[string]int{}
			for i, p := range log.Players {
				seatOf[p.Name] = p.Seat
				order[p.Name] = i
			}
			beats := Compile(log, ModeOmniscient).Beats
			if len(beats) != len(seats)+1 {
				return false
			}
			for i := 1; i < len(seats); i++ {
				prev, cur := beats[i-1].Speaker, beats[i].Speaker
				if seatOf[prev] > seatOf[cur] {
					return false
				}
				if seatOf[prev] == seatOf[cur] && order[prev] > order[cur] {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(6, gen.IntRange(1, 9)),
	))

	properties.TestingRun(t)
}
