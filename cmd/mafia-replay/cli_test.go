package main

import (
	"testing"

	"github.com/alecthomas/kong"
)

func parse(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli, kongVars())
	if err != nil {
		t.Fatal(err)
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		t.Fatal(err)
	}
	return &cli, ctx
}

func TestViewCmd_Basic(t *testing.T) {
	cli, ctx := parse(t, "view", "game.json")

	if ctx.Command() != "view <log>" {
		t.Errorf("unexpected command %q", ctx.Command())
	}
	if cli.View.Log != "game.json" {
		t.Errorf("expected log 'game.json', got %q", cli.View.Log)
	}
	if cli.View.Mode != "" || cli.View.Follow || cli.View.Autoplay || cli.View.Reasoning {
		t.Errorf("expected zero flags, got %+v", cli.View)
	}
}

func TestViewCmd_Flags(t *testing.T) {
	cli, _ := parse(t, "view", "-m", "omniscient", "-f", "-a", "-r",
		"--phase", "night_1", "--player", "Ann", "--speed", "2", "game.json")

	v := cli.View
	if v.Mode != "omniscient" {
		t.Errorf("expected mode omniscient, got %q", v.Mode)
	}
	if !v.Follow || !v.Autoplay || !v.Reasoning {
		t.Errorf("expected follow, autoplay and reasoning, got %+v", v)
	}
	if v.Phase != "night_1" || v.Player != "Ann" {
		t.Errorf("unexpected filters: phase=%q player=%q", v.Phase, v.Player)
	}
	if v.Speed != 2 {
		t.Errorf("expected speed 2, got %v", v.Speed)
	}
}

func TestPrintCmd_Verbose(t *testing.T) {
	cli, _ := parse(t, "print", "-vv", "a.json", "b.json")

	if cli.Print.Verbose != 2 {
		t.Errorf("expected verbose=2, got %d", cli.Print.Verbose)
	}
	if len(cli.Print.Logs) != 2 {
		t.Errorf("expected 2 logs, got %v", cli.Print.Logs)
	}
	if cli.Print.MaxText != 4096 {
		t.Errorf("expected default max text 4096, got %d", cli.Print.MaxText)
	}
}

func TestPrintCmd_NoColor(t *testing.T) {
	cli, _ := parse(t, "print", "--no-color", "a.json")
	if !cli.Print.NoColor {
		t.Error("expected no-color to be true")
	}
}

func TestExportCmd_Format(t *testing.T) {
	cli, _ := parse(t, "export", "game.json")
	if cli.Export.Format != "json" {
		t.Errorf("expected default format json, got %q", cli.Export.Format)
	}

	cli, _ = parse(t, "export", "-F", "yaml", "-o", "out.yaml", "game.json")
	if cli.Export.Format != "yaml" {
		t.Errorf("expected format yaml, got %q", cli.Export.Format)
	}
	if cli.Export.Output == "" {
		t.Error("expected output path")
	}
}

func TestExportCmd_RejectsUnknownFormat(t *testing.T) {
	var cli CLI
	parser, err := kong.New(&cli, kongVars())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := parser.Parse([]string{"export", "-F", "xml", "game.json"}); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestSearchCmd(t *testing.T) {
	cli, _ := parse(t, "search", "-n", "5", "game.json", "speaker:Ann")

	if cli.Search.Query != "speaker:Ann" {
		t.Errorf("unexpected query %q", cli.Search.Query)
	}
	if cli.Search.Limit != 5 {
		t.Errorf("expected limit 5, got %d", cli.Search.Limit)
	}
}

func TestLibraryCmds(t *testing.T) {
	cli, ctx := parse(t, "library", "add", "a.json", "games/")
	if ctx.Command() != "library add <paths>" {
		t.Errorf("unexpected command %q", ctx.Command())
	}
	if len(cli.Library.Add.Paths) != 2 {
		t.Errorf("expected 2 paths, got %v", cli.Library.Add.Paths)
	}

	_, ctx = parse(t, "library", "list")
	if ctx.Command() != "library list" {
		t.Errorf("unexpected command %q", ctx.Command())
	}

	cli, _ = parse(t, "library", "remove", "g-1")
	if cli.Library.Remove.ID != "g-1" {
		t.Errorf("expected ID g-1, got %q", cli.Library.Remove.ID)
	}
}

func TestGlobalFlags(t *testing.T) {
	cli, _ := parse(t, "--log-level", "debug", "version")
	if cli.LogLevel != "debug" {
		t.Errorf("expected log level debug, got %q", cli.LogLevel)
	}
}
