// # cmd/docref/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"docref/internal/app"
	"docref/internal/config"
	"docref/internal/errors"
)

var (
	configPath = flag.String("config", "./docref.toml", "Path to config file")
	once       = flag.Bool("once", false, "Build the site once and exit")
	watch      = flag.Bool("watch", false, "Rebuild on source changes")
	ui         = flag.Bool("ui", false, "Enable terminal UI mode (implies -watch)")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	version    = flag.Bool("version", false, "Print version and exit")
)

const VERSION = "1.0.0"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("docref v%s\n", VERSION)
		os.Exit(0)
	}

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
		} else if f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600); err == nil {
			output = f
		} else {
			fmt.Fprintf(os.Stderr, "warning: failed to open log file %s: %v\n", logPath, err)
		}
	}

	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		if *configPath == "./docref.toml" && os.IsNotExist(err) {
			cfg = config.Default()
		} else {
			slog.Error("failed to load config", "error", err)
			os.Exit(1)
		}
	}

	// Positional arguments override the configured source roots.
	if flag.NArg() > 0 {
		cfg.Roots = flag.Args()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(cfg)
	if err != nil {
		slog.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer a.Stop(context.Background())

	if err := a.Start(ctx); err != nil {
		slog.Error("failed to start services", "error", err)
		os.Exit(1)
	}

	if err := a.InitialBuild(ctx); err != nil {
		if errors.IsCode(err, errors.CodeDuplicateName) {
			slog.Error("initial build failed: conflicting definitions", "error", err)
		} else {
			slog.Error("initial build failed", "error", err)
		}
		os.Exit(1)
	}

	if m := a.Model(); m != nil {
		for _, d := range m.Diagnostics {
			slog.Warn("diagnostic", "severity", d.Severity, "file", d.File, "line", d.Line, "message", d.Message)
		}
	}

	if *once || (!*watch && !*ui) {
		return
	}

	if err := a.StartWatcher(ctx); err != nil {
		slog.Error("failed to start watcher", "error", err)
		os.Exit(1)
	}

	if *ui {
		if err := runUI(a); err != nil {
			slog.Error("failed to run UI", "error", err)
			os.Exit(1)
		}
		return
	}

	<-ctx.Done()
}

func resolveLogPath() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "docref", "docref.log")
	}

	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".local", "state", "docref", "docref.log")
	}

	return "docref.log"
}
