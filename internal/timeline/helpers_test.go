package timeline

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vinayprograms/mafiareplay/internal/gamelog"
)

// docOf assembles a log document from raw player and event JSON fragments.
func docOf(players []string, events ...string) string {
	return `{"players": [` + strings.Join(players, ",") + `], "events": [` + strings.Join(events, ",") + `]}`
}

func player(name string, seat int) string {
	return `{"name": ` + strconv.Quote(name) + `, "seat": ` + strconv.Itoa(seat) + `}`
}

func event(typ, data string, private ...string) string {
	quoted := make([]string, len(private))
	for i, p := range private {
		quoted[i] = strconv.Quote(p)
	}
	return `{"type": ` + strconv.Quote(typ) + `, "timestamp": "t", "data": ` + data +
		`, "private_fields": [` + strings.Join(quoted, ",") + `]}`
}

func roster(living, dead []string) string {
	q := func(names []string) string {
		out := make([]string, len(names))
		for i, n := range names {
			out[i] = strconv.Quote(n)
		}
		return "[" + strings.Join(out, ",") + "]"
	}
	return `{"living": ` + q(living) + `, "dead": ` + q(dead) + `, "nominated": []}`
}

func mustParse(t *testing.T, doc string) *gamelog.Log {
	t.Helper()
	log, err := gamelog.Parse([]byte(doc))
	require.NoError(t, err)
	return log
}

func compileDoc(t *testing.T, doc string, mode Mode) *Timeline {
	t.Helper()
	return Compile(mustParse(t, doc), mode)
}

func beatTypes(beats []Beat) []string {
	types := make([]string, len(beats))
	for i, b := range beats {
		types[i] = b.Type
	}
	return types
}

func indexOfType(beats []Beat, typ string) int {
	for i, b := range beats {
		if b.Type == typ {
			return i
		}
	}
	return -1
}

var fourPlayers = []string{player("A", 1), player("B", 2), player("C", 3), player("D", 4)}
