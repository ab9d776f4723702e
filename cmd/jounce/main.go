// # cmd/jounce/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"jounce/internal/config"
	"jounce/internal/shared/observability"
)

var (
	configPath = flag.String("config", "./jounce.toml", "Path to config file")
	once       = flag.Bool("once", false, "Compile once and exit")
	ui         = flag.Bool("ui", false, "Enable terminal UI in watch mode")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	version    = flag.Bool("version", false, "Print version and exit")
)

const VERSION = "0.9.0"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("jounce v%s\n", VERSION)
		os.Exit(0)
	}

	// Setup logging
	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}

	output := os.Stdout
	if *ui {
		// In UI mode, avoid stdout logs corrupting the TUI.
		logPath := resolveLogPath()
		if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to create log dir for %s: %v\n", logPath, err)
		} else {
			f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
			if err == nil {
				output = f
			} else {
				fmt.Fprintf(os.Stderr, "warning: failed to open log file %s: %v\n", logPath, err)
			}
		}
	}

	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Load config; a missing default config file means defaults.
	cfg, err := config.Load(*configPath)
	if err != nil {
		if *configPath == "./jounce.toml" && os.IsNotExist(err) {
			cfg = config.Default()
		} else {
			slog.Error("failed to load config", "error", err)
			os.Exit(1)
		}
	}
	if flag.NArg() > 0 {
		cfg.SourceRoots = flag.Args()
	}

	ctx := context.Background()

	shutdownTracing, err := observability.InitTracing(ctx, cfg.Observe.OTLPEndpoint)
	if err != nil {
		slog.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}
	defer shutdownTracing(ctx)

	app := NewApp(cfg)
	defer app.Close()

	if cfg.Observe.Addr != "" {
		obs := observability.NewServer(cfg.Observe.Addr, app.Health)
		if err := obs.Start(ctx); err != nil {
			slog.Error("failed to start observability server", "error", err)
			os.Exit(1)
		}
		defer obs.Stop(ctx)
	}

	failed := app.CompileAll(ctx)
	if *once {
		if failed {
			os.Exit(1)
		}
		os.Exit(0)
	}

	if err := app.StartWatcher(ctx); err != nil {
		slog.Error("failed to start watcher", "error", err)
		os.Exit(1)
	}

	if *ui {
		if err := app.RunUI(); err != nil {
			slog.Error("failed to run UI", "error", err)
			os.Exit(1)
		}
	} else {
		select {}
	}
}

func resolveLogPath() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "jounce", "jounce.log")
	}
	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".local", "state", "jounce", "jounce.log")
	}
	return "jounce.log"
}
