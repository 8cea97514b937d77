package replay

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/vinayprograms/mafiareplay/internal/gamelog"
	"github.com/vinayprograms/mafiareplay/internal/timeline"
	"gopkg.in/yaml.v3"
)

// Export formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Export is the serialized form of a compiled timeline.
type Export struct {
	GameID  string          `json:"game_id,omitempty" yaml:"game_id,omitempty"`
	Mode    timeline.Mode   `json:"mode" yaml:"mode"`
	Winner  string          `json:"winner,omitempty" yaml:"winner,omitempty"`
	Players []ExportPlayer  `json:"players" yaml:"players"`
	Phases  []ExportPhase   `json:"phases" yaml:"phases"`
	Beats   []timeline.Beat `json:"beats" yaml:"beats"`
}

// ExportPlayer is a seated player. Roles are omitted in public mode.
type ExportPlayer struct {
	Name string `json:"name" yaml:"name"`
	Seat int    `json:"seat" yaml:"seat"`
	Role string `json:"role,omitempty" yaml:"role,omitempty"`
}

// ExportPhase lists the beats of one phase.
type ExportPhase struct {
	Phase string `json:"phase" yaml:"phase"`
	Label string `json:"label" yaml:"label"`
	Beats []int  `json:"beats" yaml:"beats"`
}

// NewExport builds the export document for tl.
func NewExport(tl *timeline.Timeline) Export {
	exp := Export{
		GameID:  tl.Log.GameID,
		Mode:    tl.Mode,
		Winner:  winnerOf(tl),
		Players: make([]ExportPlayer, 0, len(tl.Players)),
		Phases:  make([]ExportPhase, 0, len(tl.PhaseIndex.Phases())),
		Beats:   tl.Beats,
	}
	for _, p := range tl.Players {
		exp.Players = append(exp.Players, exportPlayer(p, tl.Mode))
	}
	for _, e := range tl.PhaseIndex.Entries() {
		exp.Phases = append(exp.Phases, ExportPhase{
			Phase: e.Phase,
			Label: timeline.PhaseLabel(e.Phase),
			Beats: e.Beats,
		})
	}
	return exp
}

func exportPlayer(p gamelog.Player, mode timeline.Mode) ExportPlayer {
	ep := ExportPlayer{Name: p.Name, Seat: p.Seat}
	if mode == timeline.ModeOmniscient {
		ep.Role = p.Role
	}
	return ep
}

// WriteExport writes tl to w as JSON or YAML.
func WriteExport(w io.Writer, tl *timeline.Timeline, format string) error {
	exp := NewExport(tl)
	switch strings.ToLower(format) {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(exp); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
	case FormatYAML, "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(exp); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
	return nil
}
