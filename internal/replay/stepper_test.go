package replay

import (
	"context"
	"os"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vinayprograms/mafiareplay/internal/gamelog"
	"github.com/vinayprograms/mafiareplay/internal/playback"
	"github.com/vinayprograms/mafiareplay/internal/timeline"
)

func newTestStepper(t *testing.T, opts StepperOptions) *stepperModel {
	t.Helper()
	log, err := gamelog.Parse([]byte(gameDoc))
	require.NoError(t, err)
	if opts.Mode == "" {
		opts.Mode = timeline.ModeOmniscient
	}
	m := newStepperModel(context.Background(), nil, log, opts)
	t.Cleanup(m.closeIndex)
	return m
}

func keyPress(key string) tea.KeyMsg {
	switch key {
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
}

func press(m *stepperModel, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = m.Update(keyPress(k))
	}
	return cmd
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestStepper_Navigation(t *testing.T) {
	m := newTestStepper(t, StepperOptions{})
	assert.Equal(t, 0, m.driver.Index())
	assert.False(t, m.driver.Playing())

	press(m, "right", "l")
	assert.Equal(t, 2, m.driver.Index())

	press(m, "left")
	assert.Equal(t, 1, m.driver.Index())

	press(m, "G")
	assert.Equal(t, 11, m.driver.Index())

	press(m, "right")
	assert.Equal(t, 11, m.driver.Index(), "stepping stops at the last beat")

	press(m, "g")
	assert.Equal(t, 0, m.driver.Index())

	press(m, "h")
	assert.Equal(t, 0, m.driver.Index(), "stepping stops at the first beat")
}

func TestStepper_PhaseJump(t *testing.T) {
	m := newTestStepper(t, StepperOptions{})

	press(m, "]")
	assert.Equal(t, 8, m.driver.Index())
	press(m, "]")
	assert.Equal(t, 11, m.driver.Index())
	press(m, "]")
	assert.Equal(t, 11, m.driver.Index())
	press(m, "[", "[")
	assert.Equal(t, 0, m.driver.Index())
}

func TestStepper_PlayPause(t *testing.T) {
	m := newTestStepper(t, StepperOptions{})

	cmd := press(m, " ")
	assert.True(t, m.driver.Playing())
	assert.NotNil(t, cmd, "playing arms the advance timer")

	press(m, "p")
	assert.False(t, m.driver.Playing())
}

func TestStepper_Autoplay(t *testing.T) {
	m := newTestStepper(t, StepperOptions{Autoplay: true})
	assert.True(t, m.driver.Playing())
	require.NotEmpty(t, m.pending)
	assert.NotNil(t, m.Init())
	assert.Empty(t, m.pending)
}

func TestStepper_TimerAdvances(t *testing.T) {
	m := newTestStepper(t, StepperOptions{})
	timers := m.driver.Play()
	require.Len(t, timers, 1)

	m.Update(timerMsg{timer: timers[0]})
	assert.Equal(t, 1, m.driver.Index())

	// The same timer is stale after the advance.
	m.Update(timerMsg{timer: timers[0]})
	assert.Equal(t, 1, m.driver.Index())
}

func TestStepper_AutoplaySkipsFilteredBeats(t *testing.T) {
	m := newTestStepper(t, StepperOptions{View: timeline.View{Player: "Ann"}})
	assert.Equal(t, 0, m.driver.Index())

	timers := m.driver.Play()
	require.Len(t, timers, 1)
	m.Update(timerMsg{timer: timers[0]})

	// Beat 1 is Bob's speech; Ann's next beat is her vote.
	assert.Equal(t, 2, m.driver.Index())
	assert.True(t, m.driver.Playing())
}

func TestStepper_AutoplayPausesAfterLastFilteredBeat(t *testing.T) {
	m := newTestStepper(t, StepperOptions{View: timeline.View{Player: "Ann"}})
	m.driver.Seek(6)
	timers := m.driver.Play()
	require.Len(t, timers, 1)

	m.Update(timerMsg{timer: timers[0]})
	assert.False(t, m.driver.Playing())
	assert.Equal(t, 7, m.driver.Index())
}

func TestStepper_ToggleMode(t *testing.T) {
	m := newTestStepper(t, StepperOptions{ShowReasoning: true})
	press(m, "G")

	press(m, "m")
	assert.Equal(t, timeline.ModePublic, m.timeline().Mode)
	assert.Equal(t, 10, m.driver.Len())
	assert.Equal(t, 0, m.driver.Index())
	assert.False(t, m.showReasoning, "reasoning is turned off in public mode")

	press(m, "r")
	assert.False(t, m.showReasoning, "reasoning cannot be shown in public mode")

	press(m, "m")
	assert.Equal(t, timeline.ModeOmniscient, m.timeline().Mode)
	press(m, "r")
	assert.True(t, m.showReasoning)
}

func TestStepper_PhaseFilter(t *testing.T) {
	m := newTestStepper(t, StepperOptions{})

	press(m, "f")
	assert.Equal(t, "day_1", m.view.Phase)
	assert.Equal(t, 0, m.driver.Index())

	press(m, "f")
	assert.Equal(t, "night_1", m.view.Phase)
	assert.Equal(t, 8, m.driver.Index(), "the cursor snaps into the filtered phase")

	press(m, "right", "right", "right")
	assert.Equal(t, 10, m.driver.Index())

	press(m, "f", "f")
	assert.Equal(t, "", m.view.Phase, "cycling wraps back to no filter")
}

func TestStepper_PlayerFilter(t *testing.T) {
	m := newTestStepper(t, StepperOptions{})

	press(m, "o")
	assert.Equal(t, "Ann", m.view.Player)
	assert.Equal(t, []int{0, 2, 5, 6}, m.indexes())

	press(m, "right")
	assert.Equal(t, 2, m.driver.Index())
}

func TestStepper_Speed(t *testing.T) {
	m := newTestStepper(t, StepperOptions{})

	press(m, "+", "+", "+")
	assert.Equal(t, maxSpeed, m.speed)

	press(m, "-", "-", "-", "-", "-", "-")
	assert.Equal(t, minSpeed, m.speed)
}

func TestStepper_SearchInput(t *testing.T) {
	m := newTestStepper(t, StepperOptions{})
	press(m, "G")

	press(m, "/")
	require.True(t, m.searching)
	press(m, "q", "u", "i", "e", "t")
	assert.Equal(t, 11, m.driver.Index(), "typing does not navigate")
	assert.Equal(t, "quiet", m.searchInput.Value())

	press(m, "enter")
	assert.False(t, m.searching)
	assert.Equal(t, []int{0}, m.searchHits)
	assert.Equal(t, 0, m.driver.Index())
}

func TestStepper_SearchHits(t *testing.T) {
	m := newTestStepper(t, StepperOptions{})
	m.driver.Seek(7)

	m.runSearch("Eve")
	require.Equal(t, []int{6, 8, 9}, m.searchHits)
	assert.Equal(t, 8, m.driver.Index(), "search starts at the current beat")

	press(m, "n")
	assert.Equal(t, 9, m.driver.Index())
	press(m, "n")
	assert.Equal(t, 6, m.driver.Index(), "hits wrap around")
	press(m, "N")
	assert.Equal(t, 9, m.driver.Index())
}

func TestStepper_SearchNotFound(t *testing.T) {
	m := newTestStepper(t, StepperOptions{})

	m.runSearch("zebra")
	assert.True(t, m.searchFailed)
	assert.Empty(t, m.searchHits)
	assert.Equal(t, 0, m.driver.Index())
}

func TestStepper_EscClearsSearchThenQuits(t *testing.T) {
	m := newTestStepper(t, StepperOptions{})
	m.runSearch("Eve")

	cmd := press(m, "esc")
	assert.False(t, isQuit(cmd))
	assert.Empty(t, m.searchQuery)

	cmd = press(m, "esc")
	assert.True(t, isQuit(cmd))
}

func TestStepper_Quit(t *testing.T) {
	m := newTestStepper(t, StepperOptions{})
	assert.True(t, isQuit(press(m, "q")))
}

func TestStepper_Reload(t *testing.T) {
	path := writeGame(t, t.TempDir(), "live.json", gameDoc)
	m := newTestStepper(t, StepperOptions{})
	m.path = path
	m.driver.Seek(5)

	grown := strings.Replace(gameDoc,
		`{"type": "game_end"`,
		`{"type": "last_words", "data": {"phase": "day_2", "speaker": "Cal", "text": "Told you"}},
		{"type": "game_end"`, 1)
	require.NoError(t, os.WriteFile(path, []byte(grown), 0644))

	m.Update(fileChangedMsg{})
	require.NoError(t, m.loadErr)
	assert.Equal(t, 13, m.driver.Len())
	assert.Equal(t, 5, m.driver.Index(), "the cursor survives a reload")

	// A partial write keeps the current timeline.
	require.NoError(t, os.WriteFile(path, []byte(`{"events": [`), 0644))
	m.reload()
	assert.Error(t, m.loadErr)
	assert.Equal(t, 13, m.driver.Len())
}

func TestStepper_ReloadKeepsSearchWithoutSeeking(t *testing.T) {
	path := writeGame(t, t.TempDir(), "live.json", gameDoc)
	m := newTestStepper(t, StepperOptions{})
	m.path = path
	m.runSearch("Eve")
	m.driver.Seek(7)

	m.Update(fileChangedMsg{})
	require.NoError(t, m.loadErr)
	assert.Equal(t, 7, m.driver.Index(), "reload does not jump to a hit")
	assert.Equal(t, []int{6, 8, 9}, m.searchHits)
	assert.Equal(t, 1, m.searchPos)

	press(m, "n")
	assert.Equal(t, 9, m.driver.Index())
}

func TestStepper_View(t *testing.T) {
	m := newTestStepper(t, StepperOptions{ShowReasoning: true})
	assert.Contains(t, m.View(), "Loading")

	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	view := m.View()
	assert.Contains(t, view, "g-7")
	assert.Contains(t, view, "OMNISCIENT")
	assert.Contains(t, view, "1/12")
	assert.Contains(t, view, "space: play")
}

func TestStepper_RenderBeat(t *testing.T) {
	m := newTestStepper(t, StepperOptions{ShowReasoning: true})

	out := m.renderBeat(100)
	assert.Contains(t, out, "Day 1")
	assert.Contains(t, out, "Ann speaks")
	assert.Contains(t, out, "Bob has been awfully quiet")
	assert.Contains(t, out, "» deflect suspicion")

	m.driver.Seek(7)
	out = m.renderBeat(100)
	assert.Contains(t, out, "Bob eliminated")
	assert.Contains(t, out, "Ballots")

	m.driver.Seek(8)
	out = m.renderBeat(100)
	assert.Contains(t, out, "[private]")
	assert.Contains(t, out, "Kill proposals")
	assert.Contains(t, out, "Dan is next")
}

func TestStepper_RenderRevealProgress(t *testing.T) {
	m := newTestStepper(t, StepperOptions{})
	timers := m.driver.Seek(7)

	var reveal playback.Timer
	for _, tm := range timers {
		if tm.Kind == playback.TimerReveal {
			reveal = tm
		}
	}
	require.Equal(t, 1, reveal.Step)
	m.Update(timerMsg{timer: reveal})

	out := m.renderBeat(100)
	assert.Contains(t, out, "revealing 1/5")
	// Ann is seated first, so her ballot is revealed first.
	assert.Contains(t, out, "Ann")
	assert.Contains(t, out, "#2")
}

func TestStepper_RenderEmptyTimeline(t *testing.T) {
	m := newStepperModel(context.Background(), nil, &gamelog.Log{}, StepperOptions{})
	t.Cleanup(m.closeIndex)
	assert.Contains(t, m.renderBeat(80), "No beats to show")
}
