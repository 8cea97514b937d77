// Package main defines the CLI structure using kong.
package main

import "github.com/alecthomas/kong"

// CLI defines the command-line interface.
type CLI struct {
	Config   string `help:"Config file path (default: ./mafia-replay.toml)" type:"path"`
	LogLevel string `name:"log-level" help:"Log level: debug, info, warn, error"`

	View    ViewCmd    `cmd:"" help:"Step through a game interactively"`
	Print   PrintCmd   `cmd:"" help:"Print game timelines"`
	Export  ExportCmd  `cmd:"" help:"Export compiled beats as JSON or YAML"`
	Stats   StatsCmd   `cmd:"" help:"Show game statistics"`
	Search  SearchCmd  `cmd:"" help:"Search the beats of a game"`
	Library LibraryCmd `cmd:"" help:"Manage the game library"`
	Version VersionCmd `cmd:"" help:"Show version information (${version})"`
}

// ViewCmd opens the interactive stepper.
type ViewCmd struct {
	Log       string  `arg:"" help:"Game log file or library ID"`
	Mode      string  `short:"m" help:"Viewing mode: public or omniscient"`
	Follow    bool    `short:"f" help:"Reload the log whenever the file changes"`
	Autoplay  bool    `short:"a" help:"Start playing immediately"`
	Phase     string  `help:"Only step through this phase (e.g. day_1)"`
	Player    string  `help:"Only step through beats by or about this player"`
	Reasoning bool    `short:"r" help:"Show private reasoning (omniscient only)"`
	Speed     float64 `help:"Playback speed multiplier"`
}

// PrintCmd prints game timelines as text.
type PrintCmd struct {
	Logs    []string `arg:"" help:"Game log files, directories or glob patterns"`
	Mode    string   `short:"m" help:"Viewing mode: public or omniscient"`
	Verbose int      `short:"v" type:"counter" help:"Verbosity level (-v reasoning and stats, -vv rosters)"`
	NoColor bool     `help:"Disable colored output"`
	Phase   string   `help:"Only print this phase (e.g. night_2)"`
	Player  string   `help:"Only print beats by or about this player"`
	MaxText int      `default:"4096" help:"Truncate text blocks longer than this (0 = unlimited)"`
}

// ExportCmd writes the compiled timeline.
type ExportCmd struct {
	Log    string `arg:"" help:"Game log file or library ID"`
	Format string `short:"F" default:"json" enum:"json,yaml,yml" help:"Output format: json or yaml"`
	Mode   string `short:"m" help:"Viewing mode: public or omniscient"`
	Output string `short:"o" type:"path" help:"Output file (default: stdout)"`
}

// StatsCmd prints aggregate statistics.
type StatsCmd struct {
	Log  string `arg:"" help:"Game log file or library ID"`
	Mode string `short:"m" help:"Viewing mode: public or omniscient"`
}

// SearchCmd runs a full-text query over a game's beats.
type SearchCmd struct {
	Log   string `arg:"" help:"Game log file or library ID"`
	Query string `arg:"" help:"Query (words, or field:value such as speaker:Ann)"`
	Mode  string `short:"m" help:"Viewing mode: public or omniscient"`
	Limit int    `short:"n" default:"50" help:"Maximum number of hits"`
}

// LibraryCmd manages the catalog of imported games.
type LibraryCmd struct {
	Add    LibraryAddCmd    `cmd:"" help:"Import game logs into the library"`
	List   LibraryListCmd   `cmd:"" help:"List imported games"`
	Remove LibraryRemoveCmd `cmd:"" help:"Remove a game from the library"`
}

// LibraryAddCmd imports logs.
type LibraryAddCmd struct {
	Paths []string `arg:"" help:"Game log files, directories or glob patterns"`
}

// LibraryListCmd lists the library.
type LibraryListCmd struct{}

// LibraryRemoveCmd removes one entry. The log file is left alone.
type LibraryRemoveCmd struct {
	ID string `arg:"" help:"Library ID"`
}

// VersionCmd shows version information.
type VersionCmd struct{}

// kongVars returns variables for kong (version info).
func kongVars() kong.Vars {
	return kong.Vars{
		"version": version,
	}
}
