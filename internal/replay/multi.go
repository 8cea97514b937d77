package replay

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/vinayprograms/mafiareplay/internal/timeline"
)

// MultiReplayer prints several game logs one after another.
type MultiReplayer struct {
	output   io.Writer
	replayer *Replayer
	loader   *Loader
}

// NewMulti creates a MultiReplayer that prints each game with r.
func NewMulti(output io.Writer, r *Replayer) *MultiReplayer {
	return &MultiReplayer{
		output:   output,
		replayer: r,
		loader:   r.loader,
	}
}

// gameInfo holds a compiled game with its source.
type gameInfo struct {
	Timeline *timeline.Timeline
	Source   string
	Name     string
}

// ReplayFiles prints every log in paths, oldest game first.
func (m *MultiReplayer) ReplayFiles(ctx context.Context, paths []string, mode timeline.Mode) error {
	games, err := m.loadGames(ctx, paths, mode)
	if err != nil {
		return err
	}
	return m.replayAll(games)
}

// ExpandPaths resolves glob patterns and directories. A directory expands
// to the .json files directly inside it. Patterns without a match are kept
// so the loader reports them as missing files.
func ExpandPaths(patterns []string) ([]string, error) {
	var paths []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			paths = append(paths, pattern)
			continue
		}
		for _, p := range matches {
			info, err := os.Stat(p)
			if err != nil || !info.IsDir() {
				paths = append(paths, p)
				continue
			}
			entries, err := os.ReadDir(p)
			if err != nil {
				return nil, fmt.Errorf("cannot read directory %s: %w", p, err)
			}
			for _, entry := range entries {
				if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
					paths = append(paths, filepath.Join(p, entry.Name()))
				}
			}
		}
	}
	return paths, nil
}

func (m *MultiReplayer) loadGames(ctx context.Context, paths []string, mode timeline.Mode) ([]gameInfo, error) {
	var games []gameInfo
	for _, path := range paths {
		tl, err := m.loader.Open(ctx, path, mode)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		games = append(games, gameInfo{
			Timeline: tl,
			Source:   path,
			Name:     inferGameName(tl, path),
		})
	}

	// Sort by start time; ISO timestamps compare lexically.
	sort.SliceStable(games, func(i, j int) bool {
		return games[i].Timeline.Log.TimestampStart < games[j].Timeline.Log.TimestampStart
	})
	return games, nil
}

// inferGameName uses the game ID, else the file name without extension.
func inferGameName(tl *timeline.Timeline, path string) string {
	if tl.Log.GameID != "" {
		return tl.Log.GameID
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (m *MultiReplayer) replayAll(games []gameInfo) error {
	for i, g := range games {
		if len(games) > 1 {
			m.printGameHeader(g, i+1, len(games))
		}
		out, err := m.replayer.Render(g.Timeline)
		if err != nil {
			return fmt.Errorf("failed to replay %s: %w", g.Source, err)
		}
		fmt.Fprint(m.output, out)

		if i < len(games)-1 {
			fmt.Fprintln(m.output)
		}
	}
	return nil
}

// Game header styles
var (
	gameHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("6")) // Cyan background

	gameDividerStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")) // Cyan
)

// printGameHeader prints a distinctive header for each game.
func (m *MultiReplayer) printGameHeader(g gameInfo, num, total int) {
	header := fmt.Sprintf(" [%d/%d] %s │ %d players │ %s ",
		num, total, g.Name, len(g.Timeline.Players), filepath.Base(g.Source))

	fmt.Fprintln(m.output)
	fmt.Fprintln(m.output, m.replayer.paint(gameDividerStyle, strings.Repeat("━", 70)))
	fmt.Fprintln(m.output, m.replayer.paint(gameHeaderStyle, header))
	fmt.Fprintln(m.output, m.replayer.paint(gameDividerStyle, strings.Repeat("━", 70)))
}
