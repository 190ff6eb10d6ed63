package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/helmcrest/dispatch/internal/console"
)

func main() {
	cfg, err := console.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "ordersh"})
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	// Disable styling when not attached to a terminal, or when asked to.
	if !term.IsTerminal(int(os.Stdout.Fd())) || cfg.NoColor || os.Getenv("NO_COLOR") != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	store, err := console.NewStore(cfg.DatabasePath)
	if err != nil {
		logger.Error("open store", "path", cfg.DatabasePath, "err", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := console.Run(cfg, store, logger); err != nil {
		logger.Error("shell failed", "err", err)
		os.Exit(1)
	}
}
