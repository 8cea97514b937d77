package timeline

import "github.com/vinayprograms/mafiareplay/internal/gamelog"

// Timeline is a log compiled for one viewing mode. It is rebuilt wholesale
// whenever the log or the mode changes.
type Timeline struct {
	Mode       Mode
	Log        *gamelog.Log
	Players    []gamelog.Player
	Events     []NormalizedEvent
	Beats      []Beat
	PhaseIndex PhaseIndex

	byName map[string]gamelog.Player
}

// Compile runs the whole pipeline: normalize, filter, synthesize, compile.
func Compile(log *gamelog.Log, mode Mode) *Timeline {
	if log == nil {
		log = &gamelog.Log{}
	}
	byName := log.PlayersByName()

	events := NormalizeAll(log.Events)
	events = Filter(events, mode)
	events = Synthesize(events, mode)
	beats := CompileBeats(events, byName, mode)

	return &Timeline{
		Mode:       mode,
		Log:        log,
		Players:    log.SortedPlayers(),
		Events:     events,
		Beats:      beats,
		PhaseIndex: BuildPhaseIndex(beats),
		byName:     byName,
	}
}

// Len returns the number of beats.
func (t *Timeline) Len() int {
	return len(t.Beats)
}

// Beat returns the beat at index i.
func (t *Timeline) Beat(i int) (Beat, bool) {
	if i < 0 || i >= len(t.Beats) {
		return Beat{}, false
	}
	return t.Beats[i], true
}

// Derive computes the derived state for the beat at index (clamped).
func (t *Timeline) Derive(index int) Derived {
	return Derive(t.Beats, index, t.Mode)
}

// Indexes returns the navigable beats under v.
func (t *Timeline) Indexes(v View) []int {
	return Indexes(t.Beats, t.PhaseIndex, v)
}

// Player looks up a seated player by name.
func (t *Timeline) Player(name string) (gamelog.Player, bool) {
	p, ok := t.byName[name]
	return p, ok
}

// PlayersByName returns the seated players keyed by name.
func (t *Timeline) PlayersByName() map[string]gamelog.Player {
	return t.byName
}
