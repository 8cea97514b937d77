// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the config file looked up in the current directory.
const FileName = "mafia-replay.toml"

// Environment overrides.
const (
	EnvConfig  = "MAFIA_REPLAY_CONFIG"
	EnvLibrary = "MAFIA_REPLAY_LIBRARY"
)

// Config represents the viewer configuration.
type Config struct {
	Viewer  ViewerConfig  `toml:"viewer"`
	Library LibraryConfig `toml:"library"`
	Logging LoggingConfig `toml:"logging"`
}

// ViewerConfig contains playback defaults.
type ViewerConfig struct {
	Mode          string  `toml:"mode"`           // public | omniscient
	Autoplay      bool    `toml:"autoplay"`       // start playing on open
	ShowReasoning bool    `toml:"show_reasoning"` // omniscient only
	Speed         float64 `toml:"speed"`          // playback rate multiplier
	Color         bool    `toml:"color"`
}

// LibraryConfig contains the game catalog settings.
type LibraryConfig struct {
	Path string `toml:"path"` // SQLite database file
}

// LoggingConfig contains logger settings.
type LoggingConfig struct {
	Level string `toml:"level"` // debug | info | warn | error
}

// New creates a new config with defaults.
func New() *Config {
	return &Config{
		Viewer: ViewerConfig{
			Mode:  "public",
			Speed: 1.0,
			Color: true,
		},
		Library: LibraryConfig{
			Path: "~/.local/share/mafia-replay/library.db",
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// LoadFile loads configuration from a TOML file over the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := New()
	if _, err := toml.DecodeFile(ExpandPath(path), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault loads the file named by MAFIA_REPLAY_CONFIG, else
// mafia-replay.toml in the current directory. A missing default file
// yields the defaults; a missing explicit file is an error.
func LoadDefault() (*Config, error) {
	if path := os.Getenv(EnvConfig); path != "" {
		return LoadFile(path)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}

	cfg, err := LoadFile(filepath.Join(cwd, FileName))
	if errors.Is(err, fs.ErrNotExist) {
		cfg = New()
		cfg.applyEnv()
		return cfg, nil
	}
	return cfg, err
}

func (c *Config) applyEnv() {
	if path := os.Getenv(EnvLibrary); path != "" {
		c.Library.Path = path
	}
}

// Validate rejects values the viewer cannot use.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Viewer.Mode) {
	case "public", "omniscient":
	default:
		return fmt.Errorf("invalid viewer.mode %q: want public or omniscient", c.Viewer.Mode)
	}
	if c.Viewer.Speed <= 0 {
		return fmt.Errorf("invalid viewer.speed %v: must be positive", c.Viewer.Speed)
	}
	return nil
}

// LibraryPath returns the catalog database path with ~ expanded.
func (c *Config) LibraryPath() string {
	return ExpandPath(c.Library.Path)
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
