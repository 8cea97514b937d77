// Package gamelog provides the recorded game log document model and loading.
package gamelog

import (
	"encoding/json"
	"sort"

	"github.com/tidwall/gjson"
)

// Log is a complete recorded game: the seated players plus the
// chronologically ordered event stream.
type Log struct {
	SchemaVersion  string   `json:"schema_version,omitempty"`
	GameID         string   `json:"game_id,omitempty"`
	TimestampStart string   `json:"timestamp_start,omitempty"`
	TimestampEnd   string   `json:"timestamp_end,omitempty"`
	Winner         string   `json:"winner,omitempty"`
	Players        []Player `json:"players"`
	Events         []Event  `json:"events"`
}

// Player is a seated participant. Name is the unique key.
type Player struct {
	Name      string `json:"name"`
	Seat      int    `json:"seat"`
	Role      string `json:"role,omitempty"`
	PersonaID string `json:"persona_id,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Portrait  string `json:"portrait,omitempty"`
	Outcome   string `json:"outcome,omitempty"`
}

// Event is one raw log record. Data keeps the original JSON object bytes so
// that key order survives (vote maps are replayed in document order).
type Event struct {
	Type          string          `json:"type"`
	Timestamp     string          `json:"timestamp"`
	Data          json.RawMessage `json:"data"`
	PrivateFields []string        `json:"private_fields"`
}

// UnmarshalJSON decodes a log document leniently: fields of the wrong type
// degrade to their zero value instead of failing the whole document.
func (l *Log) UnmarshalJSON(b []byte) error {
	r := gjson.ParseBytes(b)
	*l = Log{
		SchemaVersion:  stringOf(r.Get("schema_version")),
		GameID:         stringOf(r.Get("game_id")),
		TimestampStart: stringOf(r.Get("timestamp_start")),
		TimestampEnd:   stringOf(r.Get("timestamp_end")),
		Winner:         stringOf(r.Get("winner")),
	}

	r.Get("players").ForEach(func(_, v gjson.Result) bool {
		if v.IsObject() {
			l.Players = append(l.Players, playerFrom(v))
		}
		return true
	})

	l.Events = []Event{}
	r.Get("events").ForEach(func(_, v gjson.Result) bool {
		l.Events = append(l.Events, eventFrom(v))
		return true
	})
	return nil
}

// UnmarshalJSON decodes a single event leniently.
func (e *Event) UnmarshalJSON(b []byte) error {
	*e = eventFrom(gjson.ParseBytes(b))
	return nil
}

// UnmarshalJSON decodes a player leniently.
func (p *Player) UnmarshalJSON(b []byte) error {
	*p = playerFrom(gjson.ParseBytes(b))
	return nil
}

func eventFrom(v gjson.Result) Event {
	ev := Event{
		Type:      stringOf(v.Get("type")),
		Timestamp: stringOf(v.Get("timestamp")),
		Data:      json.RawMessage("{}"),
	}
	if data := v.Get("data"); data.IsObject() {
		ev.Data = append(json.RawMessage(nil), data.Raw...)
	}
	v.Get("private_fields").ForEach(func(_, f gjson.Result) bool {
		if f.Type == gjson.String {
			ev.PrivateFields = append(ev.PrivateFields, f.Str)
		}
		return true
	})
	return ev
}

func playerFrom(v gjson.Result) Player {
	return Player{
		Name:      stringOf(v.Get("name")),
		Seat:      int(v.Get("seat").Int()),
		Role:      stringOf(v.Get("role")),
		PersonaID: stringOf(v.Get("persona_id")),
		Avatar:    stringOf(v.Get("avatar")),
		AvatarURL: stringOf(v.Get("avatar_url")),
		Portrait:  stringOf(v.Get("portrait")),
		Outcome:   stringOf(v.Get("outcome")),
	}
}

func stringOf(r gjson.Result) string {
	if r.Type == gjson.String {
		return r.Str
	}
	return ""
}

// SortedPlayers returns the players ordered by seat. Ties keep document order.
func (l *Log) SortedPlayers() []Player {
	if l == nil {
		return nil
	}
	sorted := make([]Player, len(l.Players))
	copy(sorted, l.Players)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Seat < sorted[j].Seat
	})
	return sorted
}

// PlayersByName indexes the players by name.
func (l *Log) PlayersByName() map[string]Player {
	byName := make(map[string]Player)
	if l == nil {
		return byName
	}
	for _, p := range l.Players {
		byName[p.Name] = p
	}
	return byName
}

// AvatarRef returns the best available avatar reference for the player.
func (p Player) AvatarRef() string {
	switch {
	case p.AvatarURL != "":
		return p.AvatarURL
	case p.Avatar != "":
		return p.Avatar
	case p.Portrait != "":
		return p.Portrait
	case p.PersonaID != "":
		return "/avatars/" + p.PersonaID + ".png"
	}
	return ""
}
