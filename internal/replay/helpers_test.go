package replay

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vinayprograms/mafiareplay/internal/gamelog"
	"github.com/vinayprograms/mafiareplay/internal/timeline"
)

// gameDoc compiles to 12 omniscient beats:
//
//	0 speech Ann, 1 speech Bob, 2-6 vote casts, 7 vote result,
//	8 mafia proposal, 9 investigation, 10 night result, 11 game end
//
// and to 10 public beats (8 and 9 are dropped).
const gameDoc = `{
	"game_id": "g-7",
	"timestamp_start": "2024-05-01T20:00:00Z",
	"winner": "town",
	"players": [
		{"name": "Bob", "seat": 2, "role": "mafia"},
		{"name": "Ann", "seat": 1, "role": "villager"},
		{"name": "Cal", "seat": 3, "role": "detective"},
		{"name": "Dan", "seat": 4, "role": "villager"},
		{"name": "Eve", "seat": 5, "role": "mafia"}
	],
	"events": [
		{"type": "speech", "data": {"phase": "day_1", "stage": "discussion", "speaker": "Ann",
			"text": "Bob has been awfully quiet", "reasoning": "deflect suspicion"},
			"private_fields": ["reasoning"]},
		{"type": "speech", "data": {"phase": "day_1", "stage": "discussion", "speaker": "Bob",
			"text": "I was reading the room", "nomination": "Ann"}},
		{"type": "vote", "data": {"phase": "day_1",
			"votes": {"Ann": "Bob", "Cal": "Bob", "Dan": "Bob", "Bob": "Ann", "Eve": "Ann"},
			"outcome": "eliminated:Bob"}},
		{"type": "night_kill", "data": {"phase": "night_1", "target": "Dan",
			"reasoning": {"proposal_details": {"Eve": {"target": "Dan", "message": "Dan is next"}}}}},
		{"type": "investigation", "data": {"phase": "night_1", "target": "Eve", "result": "mafia"}},
		{"type": "game_end", "data": {"phase": "day_2", "winner": "town"}}
	]
}`

func compileGame(t *testing.T, mode timeline.Mode) *timeline.Timeline {
	t.Helper()
	log, err := gamelog.Parse([]byte(gameDoc))
	if err != nil {
		t.Fatalf("failed to parse fixture: %v", err)
	}
	return timeline.Compile(log, mode)
}

func writeGame(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}
