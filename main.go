package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"markestedt/winlock/config"
	"markestedt/winlock/storage"
	"markestedt/winlock/systray"
	"markestedt/winlock/web"
)

func main() {
	// Setup logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	configPath, _ := config.ConfigPath()
	slog.Info("Configuration loaded", "path", configPath)

	// Validate the hotkey specification before touching anything
	if _, err := cfg.KeySpec(); err != nil {
		slog.Error("Invalid hotkey configuration", "error", err)
		os.Exit(1)
	}

	agent := NewAgent(cfg)

	// Lock-event journal (optional)
	var db *storage.DB
	if cfg.Journal.Enabled {
		dir, err := config.Dir()
		if err == nil {
			db, err = storage.Open(dir)
		}
		if err != nil {
			slog.Error("Failed to open journal, continuing without it", "error", err)
		} else {
			defer db.Close()
			agent.SetJournal(db)
		}
	}

	// Dashboard (optional)
	if cfg.Web.Enabled {
		server := web.NewServer(db, cfg, cfg.Web.Port)
		agent.SetBroadcaster(server)
		go func() {
			if err := server.Start(); err != nil {
				slog.Error("Dashboard stopped", "error", err)
			}
		}()
	}

	// Setup signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Tray icon (optional)
	if cfg.Systray.Enabled {
		webPort := 0
		if cfg.Web.Enabled {
			webPort = cfg.Web.Port
		}
		tray := systray.New(webPort, nil)
		agent.SetLockRequests(tray.LockRequests())
		go tray.Run()
		go func() {
			select {
			case <-tray.WaitForQuit():
				cancel()
			case <-ctx.Done():
				tray.Stop()
			}
		}()
	}

	// Run agent
	if err := agent.Run(ctx); err != nil {
		slog.Error("Agent error", "error", err)
		os.Exit(1)
	}

	slog.Info("winlock stopped")
}
