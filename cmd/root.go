package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/humanlog"

	"github.com/lepinkainen/eikon/cmd/update"
	"github.com/lepinkainen/eikon/internal/config"
)

// logFileName is the run log written into the working directory.
const logFileName = "eikon.log"

// CLI represents the complete command structure for the eikon application
type CLI struct {
	Input       string `arg:"" help:"Deck to update, either a CSV export or an Anki .apkg package"`
	DeckName    string `help:"Name of the generated Anki deck" default:"Updated Deck"`
	Config      string `help:"Path to a JSON config file"`
	SearchField string `help:"Build image searches from this field: question or answer (overrides the config file)"`
}

// Run executes one update pass with the resolved configuration.
func (cli *CLI) Run() error {
	cfg, err := resolveConfig(cli)
	if err != nil {
		return err
	}

	pipeline := update.NewPipeline(cfg)
	return pipeline.Run(context.Background(), cli.Input, cli.DeckName)
}

// resolveConfig loads the config file (or defaults) and applies flag
// overrides on top.
func resolveConfig(cli *CLI) (*config.Config, error) {
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return nil, err
	}

	if cli.SearchField != "" {
		if cli.SearchField != config.SearchFieldQuestion && cli.SearchField != config.SearchFieldAnswer {
			return nil, fmt.Errorf("invalid search field %q, expected %q or %q",
				cli.SearchField, config.SearchFieldQuestion, config.SearchFieldAnswer)
		}
		cfg.SearchField = cli.SearchField
	}

	return cfg, nil
}

// Execute runs the Kong-based CLI
func Execute() {
	initLogging()

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("eikon"),
		kong.Description("Fill the empty image fields of a flashcard deck with web images and repackage the deck for Anki."),
		kong.UsageOnError(),
	)

	if err := ctx.Run(); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func initLogging() {
	// Create a human-readable handler for logging
	handler := humanlog.NewHandler(logWriter(), &humanlog.Options{
		Level: logLevel(),
	})

	// Set the default logger
	slog.SetDefault(slog.New(handler))
}

// logWriter mirrors every log line into eikon.log so a long run can be
// reviewed after the terminal scrollback is gone.
func logWriter() io.Writer {
	logFile, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return os.Stdout
	}
	return io.MultiWriter(os.Stdout, logFile)
}

func logLevel() slog.Level {
	switch strings.ToLower(os.Getenv("EIKON_LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
