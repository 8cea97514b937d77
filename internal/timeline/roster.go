package timeline

import (
	"slices"

	"github.com/tidwall/gjson"
)

// Roster is a public snapshot of the table as recorded by the game engine.
// It is attached to events and beats, never recomputed.
type Roster struct {
	Phase       string   `json:"phase,omitempty" yaml:"phase,omitempty"`
	RoundNumber *int     `json:"round_number,omitempty" yaml:"round_number,omitempty"`
	Living      []string `json:"living" yaml:"living"`
	Dead        []string `json:"dead" yaml:"dead"`
	Nominated   []string `json:"nominated" yaml:"nominated"`
}

// EmptyRoster is what a missing snapshot renders as.
func EmptyRoster() Roster {
	return Roster{Living: []string{}, Dead: []string{}, Nominated: []string{}}
}

// rosterFrom reads a snapshot object. Anything that is not an object yields nil.
func rosterFrom(r gjson.Result) *Roster {
	if !r.IsObject() {
		return nil
	}
	roster := EmptyRoster()
	roster.Phase = stringOf(r.Get("phase"))
	roster.RoundNumber = intPtrOf(r.Get("round_number"))
	roster.Living = namesOf(r.Get("living"))
	roster.Dead = namesOf(r.Get("dead"))
	roster.Nominated = namesOf(r.Get("nominated"))
	return &roster
}

func namesOf(r gjson.Result) []string {
	names := []string{}
	r.ForEach(func(_, v gjson.Result) bool {
		if v.Type == gjson.String {
			names = append(names, v.Str)
		}
		return true
	})
	return names
}

// IsAlive reports whether name is in the living list.
func (r *Roster) IsAlive(name string) bool {
	return r != nil && slices.Contains(r.Living, name)
}

// IsDead reports whether name is in the dead list.
func (r *Roster) IsDead(name string) bool {
	return r != nil && slices.Contains(r.Dead, name)
}

// OrEmpty dereferences r, substituting the empty roster for nil.
func (r *Roster) OrEmpty() Roster {
	if r == nil {
		return EmptyRoster()
	}
	return *r
}
