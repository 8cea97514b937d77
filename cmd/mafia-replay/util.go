package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/vinayprograms/mafiareplay/internal/catalog"
	"github.com/vinayprograms/mafiareplay/internal/replay"
	"github.com/vinayprograms/mafiareplay/internal/timeline"
)

// isTerminal checks if w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

// mode parses a --mode flag, falling back to the configured mode.
func (a *App) mode(flag string) (timeline.Mode, error) {
	if flag == "" {
		flag = a.cfg.Viewer.Mode
	}
	return timeline.ParseMode(flag)
}

// open loads and compiles one log for the --mode flag.
func (a *App) open(arg, modeFlag string) (*timeline.Timeline, error) {
	mode, err := a.mode(modeFlag)
	if err != nil {
		return nil, err
	}
	path, err := a.resolveLog(arg)
	if err != nil {
		return nil, err
	}
	return replay.NewLoader(a.logger).Open(a.ctx, path, mode)
}

// resolveLog maps arg to a file path. Existing files win; otherwise arg is
// looked up as a library ID. Unknown arguments are returned unchanged so
// the loader reports the missing file.
func (a *App) resolveLog(arg string) (string, error) {
	if _, err := os.Stat(arg); err == nil {
		return arg, nil
	}
	if _, err := os.Stat(a.cfg.LibraryPath()); err != nil {
		return arg, nil
	}

	store, err := a.openLibrary()
	if err != nil {
		return "", err
	}
	defer store.Close()

	entry, err := store.Get(a.ctx, arg)
	if errors.Is(err, catalog.ErrNotFound) {
		return arg, nil
	}
	if err != nil {
		return "", err
	}
	a.logger.Debug("library_resolved", map[string]interface{}{
		"id":   arg,
		"path": entry.Path,
	})
	return entry.Path, nil
}

// expandLogs expands patterns and directories, then resolves library IDs.
func (a *App) expandLogs(args []string) ([]string, error) {
	paths, err := replay.ExpandPaths(args)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no game logs found")
	}
	for i, p := range paths {
		if paths[i], err = a.resolveLog(p); err != nil {
			return nil, err
		}
	}
	return paths, nil
}

func (a *App) openLibrary() (*catalog.Store, error) {
	return catalog.Open(a.cfg.LibraryPath())
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
