package timeline

import (
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Event types that only the mafia or the detective ever see.
var hiddenTypes = map[string]bool{
	"night_zero_strategy": true,
	"investigation":       true,
}

// Filter drops the records an observer in mode cannot see. Omniscient
// observers see everything.
func Filter(events []NormalizedEvent, mode Mode) []NormalizedEvent {
	out := make([]NormalizedEvent, 0, len(events))
	for _, e := range events {
		if mode == ModePublic && (!e.IsPublic || hiddenTypes[e.Type]) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Synthesize inserts a day_announcement event after every public day start
// that reveals deaths nobody announced yet. The day start itself is rolled
// back to the previous phase's snapshot so the death is not visible early.
// Only public mode is affected.
func Synthesize(events []NormalizedEvent, mode Mode) []NormalizedEvent {
	out := make([]NormalizedEvent, 0, len(events))
	if mode != ModePublic {
		return append(out, events...)
	}

	announced := make(map[string]bool)
	for _, e := range events {
		for _, name := range announcedBy(e) {
			announced[name] = true
		}

		if e.Type != "phase_start" || !strings.HasPrefix(e.Phase, "day") || e.StatePublic == nil {
			out = append(out, e)
			continue
		}

		prev := previousSnapshot(out, e.Phase)
		next := e.StatePublic
		var victims []string
		for _, name := range next.Dead {
			if prev.IsAlive(name) && !announced[name] {
				victims = append(victims, name)
			}
		}
		if len(victims) == 0 {
			out = append(out, e)
			continue
		}

		marker := e
		marker.StatePublic = prev
		out = append(out, marker, announcement(e, next, victims))
		for _, name := range victims {
			announced[name] = true
		}
	}
	return out
}

// previousSnapshot finds the latest snapshot carried by an event outside phase.
func previousSnapshot(events []NormalizedEvent, phase string) *Roster {
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Phase != phase && events[i].StatePublic != nil {
			return events[i].StatePublic
		}
	}
	return nil
}

// announcedBy lists the deaths an event makes public knowledge.
func announcedBy(e NormalizedEvent) []string {
	d := gjson.ParseBytes(e.PublicData)
	var names []string
	switch e.Type {
	case "night_kill":
		if t := stringOf(d.Get("target")); t != "" && t != "none" {
			names = append(names, t)
		}
	case "vote", "vote_round":
		for _, key := range []string{"outcome", "revote_outcome"} {
			if name, ok := strings.CutPrefix(stringOf(d.Get(key)), "eliminated:"); ok && name != "" {
				names = append(names, name)
			}
		}
	case "elimination":
		if name := eliminatedName(d); name != "" {
			names = append(names, name)
		}
	case "day_announcement":
		names = append(names, namesOf(d.Get("victims"))...)
	}
	return names
}

func eliminatedName(d gjson.Result) string {
	for _, key := range []string{"eliminated", "player", "target"} {
		if name := stringOf(d.Get(key)); name != "" {
			return name
		}
	}
	return ""
}

func announcement(dayStart NormalizedEvent, next *Roster, victims []string) NormalizedEvent {
	data := []byte(`{}`)
	data, _ = sjson.SetBytes(data, "phase", dayStart.Phase)
	data, _ = sjson.SetBytes(data, "stage", "day_announcement")
	data, _ = sjson.SetBytes(data, "text", AnnouncementText(victims))
	data, _ = sjson.SetBytes(data, "victims", victims)

	return NormalizedEvent{
		Index:       dayStart.Index,
		Type:        "day_announcement",
		Timestamp:   dayStart.Timestamp,
		Phase:       dayStart.Phase,
		Stage:       "day_announcement",
		RoundNumber: dayStart.RoundNumber,
		Data:        data,
		PublicData:  append([]byte(nil), data...),
		IsPublic:    true,
		StatePublic: next,
		Synthetic:   true,
	}
}

// AnnouncementText narrates one or more night deaths.
func AnnouncementText(victims []string) string {
	switch len(victims) {
	case 0:
		return ""
	case 1:
		return victims[0] + " was killed during the night."
	}
	head := strings.Join(victims[:len(victims)-1], ", ")
	return head + " and " + victims[len(victims)-1] + " were killed during the night."
}
