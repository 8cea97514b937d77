// Package timeline compiles a recorded game log into an ordered list of
// visibility-aware beats and derives per-beat state from it.
package timeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"github.com/vinayprograms/mafiareplay/internal/gamelog"
)

// Mode selects what the observer is allowed to see.
type Mode string

const (
	ModePublic     Mode = "public"
	ModeOmniscient Mode = "omniscient"
)

// ParseMode accepts "public" or "omniscient" (case-insensitive).
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModePublic:
		return ModePublic, nil
	case ModeOmniscient:
		return ModeOmniscient, nil
	}
	return "", fmt.Errorf("unknown mode %q (want public or omniscient)", s)
}

// Toggle returns the other mode.
func (m Mode) Toggle() Mode {
	if m == ModeOmniscient {
		return ModePublic
	}
	return ModeOmniscient
}

// NormalizedEvent is a raw event annotated with phase, stage and its
// public/private payload split.
type NormalizedEvent struct {
	Index       int             `json:"index"`
	Type        string          `json:"type"`
	Timestamp   string          `json:"timestamp,omitempty"`
	Phase       string          `json:"phase"`
	Stage       string          `json:"stage"`
	RoundNumber *int            `json:"round_number,omitempty"`
	Data        json.RawMessage `json:"data"`
	PublicData  json.RawMessage `json:"public_data"`
	IsPublic    bool            `json:"is_public"`
	StatePublic *Roster         `json:"state_public,omitempty"`
	Synthetic   bool            `json:"synthetic,omitempty"`
}

// Normalize annotates one raw event. It never fails: missing or mistyped
// fields fall back to their defaults.
func Normalize(ev gamelog.Event, index int) NormalizedEvent {
	data := []byte(ev.Data)
	if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject() {
		data = []byte("{}")
	}
	d := gjson.ParseBytes(data)

	n := NormalizedEvent{
		Index:       index,
		Type:        ev.Type,
		Timestamp:   ev.Timestamp,
		Phase:       stringOf(d.Get("phase")),
		Stage:       stringOf(d.Get("stage")),
		RoundNumber: intPtrOf(d.Get("round_number")),
		Data:        append(json.RawMessage(nil), data...),
		StatePublic: rosterFrom(d.Get("state_public")),
	}
	if n.Type == "" {
		n.Type = "unknown"
	}
	if n.Phase == "" {
		n.Phase = "unknown"
	}
	if n.Stage == "" {
		n.Stage = n.Type
	}

	n.PublicData = stripPrivate(data, ev.PrivateFields)
	n.IsPublic = countKeys(gjson.ParseBytes(n.PublicData)) > 0
	return n
}

// NormalizeAll normalizes a whole event stream, keeping log positions.
func NormalizeAll(events []gamelog.Event) []NormalizedEvent {
	out := make([]NormalizedEvent, 0, len(events))
	for i, ev := range events {
		out = append(out, Normalize(ev, i))
	}
	return out
}

// View returns the payload a compiler in the given mode is allowed to read.
func (e NormalizedEvent) View(mode Mode) gjson.Result {
	if mode == ModePublic {
		return gjson.ParseBytes(e.PublicData)
	}
	return gjson.ParseBytes(e.Data)
}

// stripPrivate deletes the private keys from a copy of data.
func stripPrivate(data []byte, private []string) json.RawMessage {
	out := append([]byte(nil), data...)
	for _, key := range private {
		if key == "" {
			continue
		}
		stripped, err := sjson.DeleteBytes(out, gjson.Escape(key))
		if err != nil {
			continue
		}
		out = stripped
	}
	return out
}

func countKeys(r gjson.Result) int {
	n := 0
	r.ForEach(func(_, _ gjson.Result) bool {
		n++
		return true
	})
	return n
}

func stringOf(r gjson.Result) string {
	if r.Type == gjson.String {
		return r.Str
	}
	return ""
}

func intPtrOf(r gjson.Result) *int {
	if r.Type != gjson.Number {
		return nil
	}
	v := int(r.Int())
	return &v
}

// reasoningOf reads a reasoning payload, which engines record either as a
// plain string or as an object with a "reasoning" member.
func reasoningOf(r gjson.Result) string {
	switch {
	case r.Type == gjson.String:
		return r.Str
	case r.IsObject():
		return stringOf(r.Get("reasoning"))
	}
	return ""
}

// child looks up a literal key, escaping path syntax in names.
func child(r gjson.Result, key string) gjson.Result {
	return r.Get(gjson.Escape(key))
}
