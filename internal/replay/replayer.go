package replay

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/vinayprograms/mafiareplay/internal/logging"
	"github.com/vinayprograms/mafiareplay/internal/timeline"
)

// Replayer prints compiled timelines as a styled transcript.
type Replayer struct {
	output      io.Writer
	verbosity   int // 0=normal, 1=reasoning (-v), 2=reasoning and rosters (-vv)
	maxTextSize int // Maximum length of text blocks (0 = unlimited)
	noColor     bool
	view        timeline.View
	loader      *Loader
}

// ReplayerOption configures a Replayer.
type ReplayerOption func(*Replayer)

// WithMaxTextSize truncates long speeches and reasoning.
func WithMaxTextSize(size int) ReplayerOption {
	return func(r *Replayer) {
		r.maxTextSize = size
	}
}

// WithNoColor disables styling.
func WithNoColor() ReplayerOption {
	return func(r *Replayer) {
		r.noColor = true
	}
}

// WithView restricts output to the beats selected by v.
func WithView(v timeline.View) ReplayerOption {
	return func(r *Replayer) {
		r.view = v
	}
}

// WithLogger routes load and compile logging to logger.
func WithLogger(logger *logging.Logger) ReplayerOption {
	return func(r *Replayer) {
		r.loader = NewLoader(logger)
	}
}

// New creates a new Replayer.
// verbosity: 0=normal, 1=reasoning (-v), 2=reasoning and rosters (-vv)
func New(output io.Writer, verbosity int, opts ...ReplayerOption) *Replayer {
	r := &Replayer{
		output:      output,
		verbosity:   verbosity,
		maxTextSize: 4 * 1024,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.loader == nil {
		r.loader = NewLoader(nil)
	}
	return r
}

// ReplayFile loads, compiles and prints the log at path.
func (r *Replayer) ReplayFile(ctx context.Context, path string, mode timeline.Mode) error {
	tl, err := r.loader.Open(ctx, path, mode)
	if err != nil {
		return err
	}
	return r.Replay(tl)
}

// Render returns the transcript of tl as a string.
func (r *Replayer) Render(tl *timeline.Timeline) (string, error) {
	var buf strings.Builder
	oldOutput := r.output
	r.output = &buf
	err := r.Replay(tl)
	r.output = oldOutput
	return buf.String(), err
}

// Replay prints the header, every selected beat and the summary.
func (r *Replayer) Replay(tl *timeline.Timeline) error {
	r.printHeader(tl)
	r.printTimeline(tl)
	r.printSummary(tl)
	return nil
}

func (r *Replayer) printHeader(tl *timeline.Timeline) {
	id := tl.Log.GameID
	if id == "" {
		id = "(unnamed)"
	}
	fmt.Fprintln(r.output)
	fmt.Fprintf(r.output, "%s %s\n", r.paint(titleStyle, "GAME"), r.paint(valueStyle, id))
	fmt.Fprintln(r.output, r.paint(dimStyle, divider))
	fmt.Fprintf(r.output, "%s %s\n", r.paint(labelStyle, "Mode:   "), r.paint(valueStyle, string(tl.Mode)))
	if tl.Log.TimestampStart != "" {
		fmt.Fprintf(r.output, "%s %s\n", r.paint(labelStyle, "Started:"), r.paint(valueStyle, tl.Log.TimestampStart))
	}
	fmt.Fprintf(r.output, "%s %s\n", r.paint(labelStyle, "Players:"), r.paint(valueStyle, r.playerList(tl)))
	fmt.Fprintln(r.output)
}

// playerList renders the seating. Roles are secret in public mode.
func (r *Replayer) playerList(tl *timeline.Timeline) string {
	parts := make([]string, 0, len(tl.Players))
	for _, p := range tl.Players {
		s := fmt.Sprintf("#%d %s", p.Seat, p.Name)
		if tl.Mode == timeline.ModeOmniscient && p.Role != "" {
			s += " (" + p.Role + ")"
		}
		parts = append(parts, s)
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}

func (r *Replayer) printTimeline(tl *timeline.Timeline) {
	indexes := tl.Indexes(r.view)
	fmt.Fprintf(r.output, "%s %s\n", r.paint(titleStyle, "TIMELINE"), r.paint(dimStyle, fmt.Sprintf("(%d beats)", len(indexes))))
	fmt.Fprintln(r.output, r.paint(dimStyle, divider))

	var lastPhase string
	for _, i := range indexes {
		b := tl.Beats[i]
		r.formatBeat(tl, b, &lastPhase)
	}
}

func (r *Replayer) printSummary(tl *timeline.Timeline) {
	fmt.Fprintln(r.output)
	fmt.Fprintln(r.output, r.paint(dimStyle, divider))

	if winner := winnerOf(tl); winner != "" {
		fmt.Fprintf(r.output, "%s %s\n", r.paint(successStyle, "WINNER:"), r.paint(valueStyle, winner))
	} else {
		fmt.Fprintln(r.output, r.paint(warnStyle, "NO RESULT"))
	}

	if r.verbosity >= 1 {
		PrintStats(r.output, ComputeStats(tl))
	}
}

// paint renders s with st unless color is off.
func (r *Replayer) paint(st lipgloss.Style, s string) string {
	if r.noColor {
		return s
	}
	return st.Render(s)
}

// winnerOf prefers the game_end beat, then the document's winner field.
func winnerOf(tl *timeline.Timeline) string {
	for i := len(tl.Beats) - 1; i >= 0; i-- {
		if b := tl.Beats[i]; b.Type == timeline.BeatGameEnd && b.Outcome != "" {
			return b.Outcome
		}
	}
	return tl.Log.Winner
}
