package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/casefile/internal/config"
	"github.com/jwebster45206/casefile/internal/game"
	"github.com/jwebster45206/casefile/internal/handlers"
	"github.com/jwebster45206/casefile/internal/logger"
	"github.com/jwebster45206/casefile/internal/middleware"
	internalstorage "github.com/jwebster45206/casefile/internal/storage"
	"github.com/jwebster45206/casefile/pkg/manifest"
	"github.com/jwebster45206/casefile/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Casefile API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"store_backend", cfg.StoreBackend,
		"manifest_path", cfg.ManifestPath)

	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()

	var store storage.Storage
	switch cfg.StoreBackend {
	case config.BackendRedis:
		redisStore, err := internalstorage.NewRedisStorage(cfg.RedisURL, cfg.SessionTTL, log)
		if err != nil {
			log.Error("Failed to configure Redis", "error", err)
			os.Exit(1)
		}
		if err := redisStore.WaitForConnection(storageCtx); err != nil {
			log.Error("Failed to connect to storage", "error", err)
			os.Exit(1)
		}
		store = redisStore
	case config.BackendSQLite:
		sqliteStore, err := internalstorage.NewSQLiteStorage(storageCtx, cfg.SQLitePath, log)
		if err != nil {
			log.Error("Failed to open SQLite storage", "error", err, "path", cfg.SQLitePath)
			os.Exit(1)
		}
		store = sqliteStore
	default:
		log.Warn("Using in-memory storage; sessions are lost on restart")
		store = storage.NewMockStorage()
	}
	log.Info("Storage connection established successfully")

	// A missing manifest leaves the server up but inert.
	m, err := manifest.Load(cfg.ManifestPath)
	if err != nil {
		log.Error("Failed to load case manifest", "error", err, "guidance", manifest.LoadGuidance)
	} else {
		log.Info("Manifest loaded", "cases", len(m))
	}

	engine := game.NewEngine(m, store, log)

	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	if cfg.WatchManifest {
		go func() {
			if err := manifest.Watch(watchCtx, cfg.ManifestPath, log, engine.SetManifest); err != nil {
				log.Warn("Manifest reloading disabled", "error", err)
			}
		}()
	}

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(store, engine, log)
	mux.Handle("/health", healthHandler)

	casesHandler := handlers.NewCasesHandler(engine, log)
	mux.Handle("/v1/cases", casesHandler)

	sessionHandler := handlers.NewSessionHandler(engine, log)
	mux.Handle("/v1/sessions", sessionHandler)
	mux.Handle("/v1/sessions/", sessionHandler)

	mux.Handle("/files/", handlers.NewFilesHandler("/files/", cfg.CasesDir))

	handler := middleware.Logger(mux)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	// Close storage connection
	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	log.Info("Server exited")
}
