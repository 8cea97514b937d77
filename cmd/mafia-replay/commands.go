package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/vinayprograms/mafiareplay/internal/catalog"
	"github.com/vinayprograms/mafiareplay/internal/replay"
	"github.com/vinayprograms/mafiareplay/internal/search"
	"github.com/vinayprograms/mafiareplay/internal/timeline"
)

var (
	listHeaderStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	listCellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// Run opens the stepper, or prints the timeline when stdout is not a
// terminal.
func (c *ViewCmd) Run(app *App) error {
	mode, err := app.mode(c.Mode)
	if err != nil {
		return err
	}
	path, err := app.resolveLog(c.Log)
	if err != nil {
		return err
	}
	view := timeline.View{Phase: c.Phase, Player: c.Player}

	if !isTerminal(app.out) {
		r := replay.New(app.out, 0, replay.WithNoColor(), replay.WithView(view), replay.WithLogger(app.logger))
		return r.ReplayFile(app.ctx, path, mode)
	}

	if c.Follow {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if info.IsDir() {
			return fmt.Errorf("--follow requires a file, not a directory")
		}
	}

	speed := c.Speed
	if speed <= 0 {
		speed = app.cfg.Viewer.Speed
	}

	// The alt screen owns the terminal; reload errors show in the footer.
	app.logger.SetOutput(io.Discard)

	s := replay.NewStepper(path, replay.StepperOptions{
		Mode:          mode,
		Autoplay:      c.Autoplay || app.cfg.Viewer.Autoplay,
		ShowReasoning: c.Reasoning || app.cfg.Viewer.ShowReasoning,
		Speed:         speed,
		View:          view,
		Follow:        c.Follow,
		Logger:        app.logger,
	})
	return s.Run(app.ctx)
}

// Run prints every matching log, oldest game first.
func (c *PrintCmd) Run(app *App) error {
	mode, err := app.mode(c.Mode)
	if err != nil {
		return err
	}
	paths, err := app.expandLogs(c.Logs)
	if err != nil {
		return err
	}

	opts := []replay.ReplayerOption{
		replay.WithMaxTextSize(c.MaxText),
		replay.WithView(timeline.View{Phase: c.Phase, Player: c.Player}),
		replay.WithLogger(app.logger),
	}
	if c.NoColor || !app.cfg.Viewer.Color || !isTerminal(app.out) {
		opts = append(opts, replay.WithNoColor())
	}

	r := replay.New(app.out, c.Verbose, opts...)
	return replay.NewMulti(app.out, r).ReplayFiles(app.ctx, paths, mode)
}

func (c *ExportCmd) Run(app *App) error {
	tl, err := app.open(c.Log, c.Mode)
	if err != nil {
		return err
	}

	if c.Output == "" {
		return replay.WriteExport(app.out, tl, c.Format)
	}

	f, err := os.Create(c.Output)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := replay.WriteExport(f, tl, c.Format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (c *StatsCmd) Run(app *App) error {
	tl, err := app.open(c.Log, c.Mode)
	if err != nil {
		return err
	}
	replay.PrintStats(app.out, replay.ComputeStats(tl))
	return nil
}

func (c *SearchCmd) Run(app *App) error {
	tl, err := app.open(c.Log, c.Mode)
	if err != nil {
		return err
	}

	idx, err := search.Build(tl)
	if err != nil {
		return err
	}
	defer idx.Close()

	hits, err := idx.Search(c.Query, c.Limit)
	if err != nil {
		return err
	}
	if len(hits) == 0 {
		fmt.Fprintln(app.out, "no matches")
		return nil
	}

	for _, h := range hits {
		fmt.Fprintf(app.out, "%5d │ %-10s │ %-14s │ %s\n",
			h.Index,
			timeline.PhaseLabel(h.Beat.Phase),
			timeline.StageLabel(h.Beat.Stage),
			h.Beat.Label)
	}
	fmt.Fprintf(app.out, "\n%d matches\n", len(hits))
	return nil
}

func (c *LibraryAddCmd) Run(app *App) error {
	paths, err := replay.ExpandPaths(c.Paths)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no game logs found")
	}

	store, err := app.openLibrary()
	if err != nil {
		return err
	}
	defer store.Close()

	failed := 0
	for _, path := range paths {
		entry, err := store.Import(app.ctx, path)
		if err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", path, err)
			continue
		}
		fmt.Fprintf(app.out, "✓ %s  %s\n", entry.ID, entry.Path)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d logs failed to import", failed, len(paths))
	}
	return nil
}

func (c *LibraryListCmd) Run(app *App) error {
	store, err := app.openLibrary()
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List(app.ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(app.out, "library is empty")
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return listHeaderStyle
			}
			return listCellStyle
		}).
		Headers("ID", "WINNER", "PLAYERS", "EVENTS", "STARTED", "PATH")
	for _, e := range entries {
		t.Row(e.ID, orDash(e.Winner), strconv.Itoa(e.Players), strconv.Itoa(e.Events),
			orDash(e.TimestampStart), e.Path)
	}
	fmt.Fprintln(app.out, t.String())
	return nil
}

func (c *LibraryRemoveCmd) Run(app *App) error {
	store, err := app.openLibrary()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Remove(app.ctx, c.ID); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return fmt.Errorf("no game %q in the library", c.ID)
		}
		return err
	}
	fmt.Fprintf(app.out, "removed %s\n", c.ID)
	return nil
}

func (c *VersionCmd) Run(app *App) error {
	fmt.Fprintf(app.out, "mafia-replay version %s (commit: %s, built: %s)\n", version, commit, buildTime)
	return nil
}
