// Package main is the entry point for the mafia-replay CLI.
// It prints, steps through, exports and searches recorded Mafia games.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/vinayprograms/mafiareplay/internal/config"
	"github.com/vinayprograms/mafiareplay/internal/logging"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func init() {
	// Load .env for MAFIA_REPLAY_* overrides
	_ = godotenv.Load()
}

// App is the state shared by every command.
type App struct {
	ctx    context.Context
	cfg    *config.Config
	logger *logging.Logger
	out    io.Writer
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("mafia-replay"),
		kong.Description("Replay recorded Mafia games beat by beat."),
		kong.UsageOnError(),
		kongVars(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	app, err := newApp(ctx, cli.Config, cli.LogLevel)
	if err == nil {
		err = kctx.Run(app)
	}
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// newApp loads configuration and sets up logging. An empty configPath
// falls back to MAFIA_REPLAY_CONFIG or ./mafia-replay.toml.
func newApp(ctx context.Context, configPath, logLevel string) (*App, error) {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if logLevel == "" {
		logLevel = cfg.Logging.Level
	}
	level, ok := logging.ParseLevel(logLevel)
	if !ok {
		return nil, fmt.Errorf("invalid log level %q", logLevel)
	}
	logger := logging.New()
	logger.SetLevel(level)

	return &App{
		ctx:    ctx,
		cfg:    cfg,
		logger: logger,
		out:    os.Stdout,
	}, nil
}
