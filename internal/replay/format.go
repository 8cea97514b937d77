package replay

import (
	"fmt"
	"strconv"

	"github.com/vinayprograms/mafiareplay/internal/timeline"
)

// formatBeat prints a single beat.
func (r *Replayer) formatBeat(tl *timeline.Timeline, b timeline.Beat, lastPhase *string) {
	// Show phase transitions
	if b.Phase != *lastPhase {
		fmt.Fprintln(r.output)
		fmt.Fprintln(r.output, r.paint(phaseStyle(b.Phase), timeline.PhaseLabel(b.Phase)))
		fmt.Fprintln(r.output)
		*lastPhase = b.Phase
	}

	seqNum := r.seq(b.Index)
	stage := r.stage(b.Stage)

	switch b.Type {
	case timeline.BeatSpeech, timeline.BeatDefense, timeline.BeatLastWords:
		r.fmtSpeech(seqNum, stage, b)
	case timeline.BeatVoteCast, timeline.BeatRevoteCast:
		r.fmtVoteCast(seqNum, stage, b)
	case timeline.BeatVoteResult, timeline.BeatRevoteResult:
		r.fmtVoteResult(seqNum, stage, b)
	case timeline.BeatMafiaProposal, timeline.BeatMafiaR1, timeline.BeatMafiaR2:
		r.fmtProposal(seqNum, stage, b)
	case timeline.BeatNightZero:
		r.fmtNightZero(seqNum, stage, b)
	case timeline.BeatNightKillResult:
		r.fmtNightResult(seqNum, stage, b)
	case timeline.BeatInvestigation:
		fmt.Fprintf(r.output, "%s │ %s │ %s\n", seqNum, stage, r.paint(detectiveStyle, b.Label))
	case timeline.BeatElimination:
		fmt.Fprintf(r.output, "%s │ %s │ %s\n", seqNum, stage, r.paint(errorStyle, b.Label))
	case timeline.BeatDayAnnouncement:
		fmt.Fprintf(r.output, "%s │ %s │ %s\n", seqNum, stage, r.paint(errorStyle, orLabel(b.Text, b.Label)))
	case timeline.BeatGameEnd:
		fmt.Fprintf(r.output, "%s │ %s │ %s\n", seqNum, stage, r.paint(successStyle, orLabel(b.Text, "GAME OVER")))
	default:
		fmt.Fprintf(r.output, "%s │ %s │ %s\n", seqNum, stage, r.paint(valueStyle, b.Label))
	}

	if r.verbosity >= 1 && tl.Mode == timeline.ModeOmniscient && b.Reasoning != "" {
		r.printReasoning(b.Reasoning)
	}
	if r.verbosity >= 2 {
		r.printRoster(b.StatePublic)
	}
}

func (r *Replayer) fmtSpeech(seqNum, stage string, b timeline.Beat) {
	label := b.Label
	if b.Type != timeline.BeatSpeech && b.Speaker != "" {
		label += ": " + b.Speaker
	}
	fmt.Fprintf(r.output, "%s │ %s │ %s%s\n", seqNum, stage, r.paint(speechStyle, label), r.privacy(b))
	if b.Text != "" {
		r.printContent(r.truncate(b.Text))
	}
	if b.Nomination != "" {
		r.printDetail(voteStyle, "nominates "+b.Nomination)
	}
}

func (r *Replayer) fmtVoteCast(seqNum, stage string, b timeline.Beat) {
	fmt.Fprintf(r.output, "%s │ %s │ %s %s\n", seqNum, stage,
		r.paint(voteStyle, b.Label),
		r.paint(dimStyle, "("+b.Tally+")"))
}

func (r *Replayer) fmtVoteResult(seqNum, stage string, b timeline.Beat) {
	fmt.Fprintf(r.output, "%s │ %s │ %s %s\n", seqNum, stage,
		r.paint(voteResultStyle, b.Label+":"),
		r.paint(valueStyle, b.Text))
	if b.Outcome != "" {
		r.printDetail(outcomeStyle(b.Outcome), b.Outcome)
	}
}

func (r *Replayer) fmtProposal(seqNum, stage string, b timeline.Beat) {
	fmt.Fprintf(r.output, "%s │ %s │ %s %s%s\n", seqNum, stage,
		r.paint(mafiaStyle, b.Label+":"),
		r.paint(valueStyle, b.Speaker+" → "+orLabel(b.Target, "?")),
		r.privacy(b))
	if b.Text != "" {
		r.printDetail(mafiaDimStyle, r.truncate(b.Text))
	}
}

func (r *Replayer) fmtNightZero(seqNum, stage string, b timeline.Beat) {
	fmt.Fprintf(r.output, "%s │ %s │ %s%s\n", seqNum, stage, r.paint(mafiaStyle, b.Label), r.privacy(b))
	if b.Text != "" {
		r.printDetail(mafiaDimStyle, r.truncate(b.Text))
	}
}

func (r *Replayer) fmtNightResult(seqNum, stage string, b timeline.Beat) {
	st := errorStyle
	if b.Target == "none" {
		st = successStyle
	}
	fmt.Fprintf(r.output, "%s │ %s │ %s %s\n", seqNum, stage,
		r.paint(nightStyle, b.Label+":"),
		r.paint(st, b.Target))
}

func (r *Replayer) seq(index int) string {
	if r.noColor {
		return fmt.Sprintf("%5d", index)
	}
	return seqStyle.Render(strconv.Itoa(index))
}

func (r *Replayer) stage(stage string) string {
	label := timeline.StageLabel(stage)
	if r.noColor {
		return fmt.Sprintf("%-*s", stageWidth, label)
	}
	return stageStyle.Render(label)
}

// privacy marks beats only an omniscient observer sees.
func (r *Replayer) privacy(b timeline.Beat) string {
	if b.IsPublic {
		return ""
	}
	return " " + r.paint(dimStyle, "[private]")
}

func orLabel(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
