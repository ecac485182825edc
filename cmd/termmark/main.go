// Package main is the entry point for the termmark terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/dshills/termmark/internal/app"
	"github.com/dshills/termmark/internal/config"
	"github.com/dshills/termmark/internal/event"
	"github.com/dshills/termmark/internal/terminal"
	"github.com/dshills/termmark/internal/ui"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath  string
		shell       string
		logLevel    string
		logFile     string
		showVersion bool
	)

	flag.StringVar(&configPath, "config", "", "path to configuration file")
	flag.StringVar(&shell, "shell", "", "shell to run (overrides config and $SHELL)")
	flag.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	flag.StringVar(&logFile, "log-file", "", "log destination file")
	flag.BoolVar(&showVersion, "version", false, "print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("termmark %s (%s)\n", version, commit)
		return 0
	}

	if configPath == "" {
		configPath = config.DefaultPath()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFile != "" {
		cfg.Log.File = logFile
	}

	logger, cleanup, err := buildLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer cleanup()

	application := app.New(app.Options{
		Config:     cfg,
		ConfigPath: configPath,
		Logger:     logger,
		Shell:      shell,
	})
	defer application.Shutdown()

	application.SetUIFactory(func(term *terminal.Terminal, bus *event.Bus) (app.UI, error) {
		return ui.New(term, bus, ui.Options{
			CopyOnCommandFinish: cfg.Terminal.CopyOnCommandFinish,
			Logger:              logger.With("component", "ui"),
		})
	})

	if err := application.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// buildLogger opens the configured log destination. Logging a terminal
// app to its own stderr would corrupt the display, so without a file
// the logs are discarded.
func buildLogger(cfg config.LogConfig) (*app.Logger, func(), error) {
	var out io.Writer = io.Discard
	cleanup := func() {}

	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		out = f
		cleanup = func() { f.Close() }
	}

	return app.NewLogger(out, app.ParseLogLevel(cfg.Level)), cleanup, nil
}
