package playback

import (
	"time"

	"github.com/vinayprograms/mafiareplay/internal/timeline"
)

// TimerKind identifies what a timer drives.
type TimerKind int

const (
	TimerAdvance TimerKind = iota
	TimerReveal
	TimerDialogue
)

// Timer is a request to call Driver.Fire after Delay. The driver never
// sleeps; whoever owns the event loop schedules timers and hands them back.
// A timer whose generation is stale when it fires is ignored.
type Timer struct {
	Gen   uint64
	Kind  TimerKind
	Step  int
	Delay time.Duration
}

// Driver is the auto-play state machine over one compiled timeline.
//
// Two generations guard against stale timers. The beat generation moves
// whenever the current beat changes (seek, advance, load) and owns the
// reveal and dialogue timers. The advance generation additionally moves on
// play and pause.
type Driver struct {
	tl      *timeline.Timeline
	index   int
	playing bool

	beatGen    uint64
	advanceGen uint64

	votes    VoteSequence
	reveal   Reveal
	dialogue []DialogueEntry
	line     int
}

// NewDriver creates a paused driver positioned on the first beat.
func NewDriver(tl *timeline.Timeline) *Driver {
	d := &Driver{}
	d.Load(tl)
	return d
}

// Load replaces the timeline (new log or new mode). Playback pauses, the
// position resets and every outstanding timer goes stale.
func (d *Driver) Load(tl *timeline.Timeline) []Timer {
	if tl == nil {
		tl = timeline.Compile(nil, timeline.ModePublic)
	}
	d.tl = tl
	d.index = 0
	d.playing = false
	d.advanceGen++
	return d.enterBeat()
}

// Timeline returns the timeline being played.
func (d *Driver) Timeline() *timeline.Timeline { return d.tl }

// Index returns the current beat index.
func (d *Driver) Index() int { return d.index }

// Playing reports whether auto-play is on.
func (d *Driver) Playing() bool { return d.playing }

// Len returns the number of beats.
func (d *Driver) Len() int { return d.tl.Len() }

// Play starts auto-play from the current beat. At the last beat, or with no
// beats at all, it stays paused.
func (d *Driver) Play() []Timer {
	if d.atEnd() {
		d.playing = false
		return nil
	}
	d.playing = true
	d.advanceGen++
	return []Timer{d.advanceTimer()}
}

// Pause stops auto-play. The reveal and dialogue of the current beat keep
// running.
func (d *Driver) Pause() {
	d.playing = false
	d.advanceGen++
}

// Toggle flips between playing and paused.
func (d *Driver) Toggle() []Timer {
	if d.playing {
		d.Pause()
		return nil
	}
	return d.Play()
}

// Seek moves to index (clamped). Pending timers go stale; if playing, the
// advance timer is re-armed for the new beat.
func (d *Driver) Seek(index int) []Timer {
	d.index = timeline.Clamp(index, d.tl.Len())
	d.advanceGen++
	timers := d.enterBeat()
	if d.playing {
		if d.atEnd() {
			d.playing = false
		} else {
			timers = append(timers, d.advanceTimer())
		}
	}
	return timers
}

// Fire delivers an expired timer and returns the timers to arm next.
func (d *Driver) Fire(t Timer) []Timer {
	switch t.Kind {
	case TimerAdvance:
		if t.Gen != d.advanceGen || !d.playing {
			return nil
		}
		if d.atEnd() {
			d.playing = false
			return nil
		}
		return d.Seek(d.index + 1)

	case TimerReveal:
		if t.Gen != d.beatGen {
			return nil
		}
		n := len(d.votes.Votes)
		if t.Step > n {
			d.reveal = Reveal{State: RevealComplete, Revealed: n, Total: n}
			return nil
		}
		d.reveal = Reveal{State: RevealRevealing, Revealed: t.Step, Total: n}
		return []Timer{d.revealTimer(t.Step + 1)}

	case TimerDialogue:
		if t.Gen != d.beatGen || len(d.dialogue) == 0 {
			return nil
		}
		d.line = t.Step % len(d.dialogue)
		return []Timer{{Gen: d.beatGen, Kind: TimerDialogue, Step: t.Step + 1, Delay: DialogueStep}}
	}
	return nil
}

// Votes returns the ordered vote sequence of the current beat, if any.
func (d *Driver) Votes() VoteSequence { return d.votes }

// Reveal returns how far the current vote reveal has progressed.
func (d *Driver) Reveal() Reveal { return d.reveal }

// RevealedVotes returns the votes shown so far.
func (d *Driver) RevealedVotes() []timeline.VoteToken {
	return d.votes.Votes[:d.reveal.Revealed]
}

// Dialogue returns the dialogue line currently shown.
func (d *Driver) Dialogue() (DialogueEntry, bool) {
	if len(d.dialogue) == 0 {
		return DialogueEntry{}, false
	}
	return d.dialogue[d.line], true
}

// DialogueEntries returns every line of the current beat's dialogue.
func (d *Driver) DialogueEntries() []DialogueEntry { return d.dialogue }

// enterBeat resets per-beat state and arms its reveal and dialogue timers.
func (d *Driver) enterBeat() []Timer {
	d.beatGen++
	d.votes = SequenceFor(d.tl, d.index)
	d.reveal = Reveal{State: RevealIdle, Total: len(d.votes.Votes)}
	d.dialogue = DialogueEntries(d.tl.Beats, d.index)
	d.line = 0

	var timers []Timer
	if d.votes.Stage != "" {
		timers = append(timers, d.revealTimer(1))
	}
	if len(d.dialogue) > 1 {
		timers = append(timers, Timer{Gen: d.beatGen, Kind: TimerDialogue, Step: 1, Delay: DialogueStep})
	}
	return timers
}

// revealTimer arms the transition to step k: voter k appears, or for
// k = n+1 the reveal completes.
func (d *Driver) revealTimer(k int) Timer {
	delay := VoteStep
	if k > len(d.votes.Votes) {
		delay = VoteFinishPause
	}
	return Timer{Gen: d.beatGen, Kind: TimerReveal, Step: k, Delay: delay}
}

func (d *Driver) advanceTimer() Timer {
	return Timer{Gen: d.advanceGen, Kind: TimerAdvance, Delay: DurationOf(d.tl.Beats, d.index)}
}

func (d *Driver) atEnd() bool {
	return d.tl.Len() == 0 || d.index >= d.tl.Len()-1
}
