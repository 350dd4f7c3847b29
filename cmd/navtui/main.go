package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"tournament-nav/internal/config"
	"tournament-nav/internal/history"
	"tournament-nav/internal/logging"
	"tournament-nav/internal/session"
	"tournament-nav/internal/tui"
)

const appVersion = "dev"

func main() {
	if os.Getenv("SKIP_TUI_RUN") == "1" {
		return
	}
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	var out io.Writer = io.Discard
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		out = f
	}
	logger := logging.NewLogger(logging.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: "navtui",
		Version: appVersion,
		Output:  out,
	})

	h := history.Default()
	h.Replace(cfg.InitialPath)
	s := session.NewWithHistory("navtui", h, session.OptionsFor(cfg.Navigation, logger, nil))
	defer s.Close()

	return tui.Run(s, tea.WithAltScreen())
}
