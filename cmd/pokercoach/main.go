package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/pokercoach/internal/config"
	"github.com/lox/pokercoach/internal/engine"
	"github.com/lox/pokercoach/internal/session"
	"github.com/lox/pokercoach/internal/table"
	"github.com/lox/pokercoach/internal/tui"
)

var CLI struct {
	Config   string `short:"c" default:"pokercoach.hcl" help:"Path to HCL configuration file"`
	Engine   string `short:"e" help:"Engine URL to connect to (overrides config)"`
	Offline  bool   `help:"Run without connecting to the engine"`
	LogLevel string `short:"l" help:"Log level (overrides config)"`
	LogFile  string `help:"Log file path (overrides config)"`
}

func main() {
	ctx := kong.Parse(&CLI)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		ctx.Exit(1)
	}

	// Apply command line overrides
	if CLI.Engine != "" {
		cfg.Engine.URL = CLI.Engine
	}
	if CLI.Offline {
		cfg.Engine.Offline = true
	}
	if CLI.LogLevel != "" {
		cfg.UI.LogLevel = CLI.LogLevel
	}
	if CLI.LogFile != "" {
		cfg.UI.LogFile = CLI.LogFile
	}

	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		ctx.Exit(1)
	}

	// Logging goes to a file so it never fights the TUI for the terminal
	logFile, err := os.OpenFile(cfg.UI.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		fmt.Printf("Failed to open log file: %v\n", err)
		ctx.Exit(1)
	}
	defer func() { _ = logFile.Close() }()

	logger := log.New(logFile)
	switch cfg.UI.LogLevel {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "info":
		logger.SetLevel(log.InfoLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}

	logger.Info("starting pokercoach",
		"engine", cfg.Engine.URL,
		"offline", cfg.Engine.Offline,
		"config", CLI.Config)

	replyTimeout := time.Duration(cfg.Engine.ReplyTimeout) * time.Second
	engineClient := engine.NewClient(cfg.Engine.URL, replyTimeout, logger, nil)
	engineClient.SetStakes(cfg.Game.BigBlind, cfg.Game.StackSize)

	tables := table.New(engineClient, logger)
	engineClient.SetSnapshotProvider(tables.Snapshot)
	if cfg.UI.AutoSnapshots {
		if snap, ok := loadSnapshot(cfg.UI.SnapshotFile); ok {
			tables.Restore(snap)
			logger.Info("resumed from snapshot", "file", cfg.UI.SnapshotFile)
		}
	}

	tui.ApplyTheme(cfg.UI.Theme)

	// The engine dial happens inside the program loop, never before it:
	// delivering messages to a program that is not yet running blocks.
	var connect func() error
	if !cfg.Engine.Offline {
		connect = engineClient.Connect
	}
	model := tui.New(tables, connect, logger)
	program := tea.NewProgram(model, tea.WithAltScreen())

	// Engine replies are handed to the program loop, never applied from
	// the reader goroutine directly.
	engineClient.OnDecisionResult(func(tableID int, result session.DecisionResult) {
		program.Send(tui.DecisionResultMsg{TableID: tableID, Result: result})
	})
	engineClient.OnNewHand(func(tableID int) {
		program.Send(tui.NewHandMsg{TableID: tableID})
	})
	engineClient.OnContinueStreet(func(tableID int) {
		program.Send(tui.ContinueStreetMsg{TableID: tableID})
	})
	engineClient.OnRestore(func(snap table.Snapshot) {
		program.Send(tui.RestoreMsg{Snapshot: snap})
	})

	g, gctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		_, err := program.Run()
		return err
	})
	g.Go(func() error {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigCh)
		select {
		case <-gctx.Done():
			return nil
		case <-sigCh:
			program.Quit()
			return nil
		}
	})

	if err := g.Wait(); err != nil {
		fmt.Printf("Error running TUI: %v\n", err)
		ctx.Exit(1)
	}

	if cfg.UI.AutoSnapshots {
		if err := saveSnapshot(cfg.UI.SnapshotFile, tables.Snapshot()); err != nil {
			logger.Error("failed to save snapshot", "error", err)
		}
	}
	if engineClient.IsConnected() {
		if err := engineClient.SendSnapshot(tables.Snapshot()); err != nil {
			logger.Warn("failed to ship snapshot to engine", "error", err)
		}
	}
	_ = engineClient.Disconnect()
}

// loadSnapshot reads a saved snapshot. A missing or malformed file
// just means a fresh start.
func loadSnapshot(path string) (table.Snapshot, bool) {
	var snap table.Snapshot
	data, err := os.ReadFile(path)
	if err != nil {
		return snap, false
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, false
	}
	return snap, true
}

func saveSnapshot(path string, snap table.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
