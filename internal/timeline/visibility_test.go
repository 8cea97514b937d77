package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// nightDeathLog: B dies during night_1 through a fully private kill record.
func nightDeathLog(killPrivate ...string) string {
	alive := roster([]string{"A", "B", "C", "D"}, nil)
	afterNight := roster([]string{"A", "C", "D"}, []string{"B"})
	return docOf(fourPlayers,
		event("phase_start", `{"phase": "day_1", "state_public": `+alive+`}`),
		event("speech", `{"phase": "day_1", "speaker": "A", "text": "morning", "state_public": `+alive+`}`),
		event("phase_start", `{"phase": "night_1", "state_public": `+alive+`}`),
		event("night_kill", `{"phase": "night_1", "target": "B", "reasoning": {"proposal_details": {"C": {"target": "B"}}}}`, killPrivate...),
		event("phase_start", `{"phase": "day_2", "state_public": `+afterNight+`}`),
		event("speech", `{"phase": "day_2", "speaker": "A", "text": "oh no", "state_public": `+afterNight+`}`),
	)
}

func TestFilter(t *testing.T) {
	events := NormalizeAll(mustParse(t, docOf(fourPlayers,
		event("speech", `{"phase": "day_1", "speaker": "A"}`),
		event("night_zero_strategy", `{"phase": "night_0", "text": "x"}`),
		event("investigation", `{"phase": "night_1", "target": "A"}`),
		event("speech", `{"phase": "day_1"}`, "phase"),
	)).Events)

	assert.Len(t, Filter(events, ModeOmniscient), 4)

	pub := Filter(events, ModePublic)
	require.Len(t, pub, 1)
	assert.Equal(t, 0, pub[0].Index)
}

func TestSynthesize_AnnouncesHiddenDeath(t *testing.T) {
	tl := compileDoc(t, nightDeathLog("phase", "target", "reasoning"), ModePublic)

	require.Equal(t, []string{BeatSpeech, BeatDayAnnouncement, BeatSpeech}, beatTypes(tl.Beats))
	ann := tl.Beats[1]
	assert.Equal(t, "B was killed during the night.", ann.Text)
	assert.Equal(t, "day_2", ann.Phase)
	assert.True(t, ann.IsPublic)
	assert.Equal(t, []string{"B"}, ann.StatePublic.Dead)
	assert.Equal(t, 4, ann.Source)

	// The day start itself still shows the pre-death roster.
	var dayStart *NormalizedEvent
	for i, e := range tl.Events {
		if e.Type == "phase_start" && e.Phase == "day_2" {
			dayStart = &tl.Events[i]
			require.Equal(t, "day_announcement", tl.Events[i+1].Type)
			assert.True(t, tl.Events[i+1].Synthetic)
		}
	}
	require.NotNil(t, dayStart)
	assert.True(t, dayStart.StatePublic.IsAlive("B"))
	assert.False(t, dayStart.StatePublic.IsDead("B"))
}

func TestSynthesize_OmniscientUnchanged(t *testing.T) {
	tl := compileDoc(t, nightDeathLog("phase", "target", "reasoning"), ModeOmniscient)
	assert.Equal(t, -1, indexOfType(tl.Beats, BeatDayAnnouncement))
	assert.Equal(t, []string{BeatSpeech, BeatMafiaProposal, BeatNightKillResult, BeatSpeech}, beatTypes(tl.Beats))
	for _, e := range tl.Events {
		assert.False(t, e.Synthetic)
	}
}

func TestSynthesize_PublicKillAlreadyAnnounced(t *testing.T) {
	tl := compileDoc(t, nightDeathLog("reasoning"), ModePublic)
	assert.Equal(t, []string{BeatSpeech, BeatNightKillResult, BeatSpeech}, beatTypes(tl.Beats))
}

func TestSynthesize_VoteEliminationAlreadyAnnounced(t *testing.T) {
	alive := roster([]string{"A", "B", "C", "D"}, nil)
	after := roster([]string{"A", "C", "D"}, []string{"B"})
	doc := docOf(fourPlayers,
		event("phase_start", `{"phase": "day_1", "state_public": `+alive+`}`),
		event("vote", `{"phase": "day_1", "votes": {"A": "B"}, "outcome": "eliminated:B", "state_public": `+alive+`}`),
		event("phase_start", `{"phase": "night_1", "state_public": `+after+`}`),
		event("phase_start", `{"phase": "day_2", "state_public": `+after+`}`),
	)
	tl := compileDoc(t, doc, ModePublic)
	assert.Equal(t, -1, indexOfType(tl.Beats, BeatDayAnnouncement))
}

func TestSynthesize_SeveralDeaths(t *testing.T) {
	alive := roster([]string{"A", "B", "C", "D"}, nil)
	after := roster([]string{"A"}, []string{"B", "C", "D"})
	doc := docOf(fourPlayers,
		event("phase_start", `{"phase": "night_1", "state_public": `+alive+`}`),
		event("phase_start", `{"phase": "day_2", "state_public": `+after+`}`),
	)
	tl := compileDoc(t, doc, ModePublic)
	require.Len(t, tl.Beats, 1)
	assert.Equal(t, "B, C and D were killed during the night.", tl.Beats[0].Text)
	assert.Equal(t, "B, C, D", tl.Beats[0].Target)
}

func TestSynthesize_NoSnapshotNoAnnouncement(t *testing.T) {
	doc := docOf(fourPlayers,
		event("phase_start", `{"phase": "night_1"}`),
		event("phase_start", `{"phase": "day_2", "state_public": `+roster([]string{"A"}, []string{"B"})+`}`),
	)
	assert.Empty(t, compileDoc(t, doc, ModePublic).Beats)
}

func TestSynthesize_AnnouncesOnce(t *testing.T) {
	alive := roster([]string{"A", "B", "C"}, nil)
	after := roster([]string{"A", "C"}, []string{"B"})
	doc := docOf(fourPlayers,
		event("phase_start", `{"phase": "night_1", "state_public": `+alive+`}`),
		event("phase_start", `{"phase": "day_2", "state_public": `+after+`}`),
		event("phase_start", `{"phase": "night_2", "state_public": `+after+`}`),
		event("phase_start", `{"phase": "day_3", "state_public": `+after+`}`),
	)
	tl := compileDoc(t, doc, ModePublic)
	require.Equal(t, []string{BeatDayAnnouncement}, beatTypes(tl.Beats))
}

func TestAnnouncementText(t *testing.T) {
	tests := []struct {
		victims []string
		want    string
	}{
		{nil, ""},
		{[]string{"X"}, "X was killed during the night."},
		{[]string{"X", "Y"}, "X and Y were killed during the night."},
		{[]string{"X", "Y", "Z"}, "X, Y and Z were killed during the night."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AnnouncementText(tt.victims))
	}
}
