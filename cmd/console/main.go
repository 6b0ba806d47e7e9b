package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/jwebster45206/casefile/internal/config"
	"github.com/jwebster45206/casefile/internal/game"
	"github.com/jwebster45206/casefile/internal/logger"
	"github.com/jwebster45206/casefile/internal/storage"
	"github.com/jwebster45206/casefile/pkg/manifest"
)

// consoleSessionID keeps one save slot per save file, so the console always resumes.
var consoleSessionID = uuid.NewSHA1(uuid.NameSpaceURL, []byte("casefile:console"))

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// The terminal belongs to the UI, so logs go to a file next to the save.
	if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create data directory: %v\n", err)
		os.Exit(1)
	}
	logPath := filepath.Join(filepath.Dir(cfg.SQLitePath), "console.log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logFile.Close()
	}()
	log := logger.SetupWriter(cfg, logFile)

	m, err := manifest.Load(cfg.ManifestPath)
	if err != nil {
		log.Error("Failed to load case manifest", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\nTry: casefile manifest generate --dir %s\n", err, cfg.CasesDir)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := storage.NewSQLiteStorage(ctx, cfg.SQLitePath, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open save file: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = store.Close()
	}()

	engine := game.NewEngine(m, store, log)
	view, err := engine.Resume(ctx, consoleSessionID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to restore session: %v\n", err)
		os.Exit(1)
	}
	log.Info("Console started", "session_id", consoleSessionID, "save", cfg.SQLitePath)

	p := tea.NewProgram(NewConsoleUI(engine, view, cfg.CasesDir),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}
