package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"purpleletter/app/api"
	"purpleletter/app/cfg"
	"purpleletter/app/curation"
	"purpleletter/app/database"
	"purpleletter/app/scoring"
	"purpleletter/app/source"
	"purpleletter/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting Purple Letter", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "migration_version", version, "dirty", dirty)

	articleRepo := database.NewArticleRepository(db)
	syncRunRepo := database.NewSyncRunRepository(db)

	engine := scoring.NewEngine(scoring.DefaultPolicy(), appCfg.EcommerceScoring)
	transformer := curation.NewTransformer(engine)
	ranker := curation.NewRanker(appCfg.MinImpactScore, engine.EcommerceEnabled())
	selector := curation.NewSelector(articleRepo, appCfg.MaxSelected, appCfg.MinAvgScore)

	articleSource := buildSource(appCfg)
	syncer := tasks.NewSyncer(articleSource, transformer, articleRepo, syncRunRepo, appCfg.SyncLimit)

	var scheduler tasks.TaskSchedulerInterface
	if appCfg.SyncInterval > 0 {
		slog.Info("Starting background scheduler",
			"workers", appCfg.WorkerCount, "interval_seconds", appCfg.SyncInterval)
		scheduler = tasks.NewScheduler(syncer)
		scheduler.Start()
		defer scheduler.Stop()
	} else {
		slog.Info("Automatic sync disabled (SYNC_INTERVAL=0), use POST /sync")
	}

	handler := api.NewHandler(articleRepo, syncRunRepo, ranker, selector, syncer)
	router := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port, "source", articleSource.Name())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
}

// buildSource picks the article source: the external scanner database when
// configured, RSS feeds otherwise.
func buildSource(appCfg *cfg.Cfg) source.Source {
	if appCfg.ScannerDBPath != "" {
		scanner := source.NewScannerSource(appCfg.ScannerDBPath)
		if count, err := scanner.Check(); err != nil {
			slog.Warn("Scanner database not reachable yet", "path", appCfg.ScannerDBPath, "error", err)
		} else {
			slog.Info("Scanner database connected", "path", appCfg.ScannerDBPath, "articles", count)
		}
		return scanner
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	return source.NewRSSSource(appCfg.FeedURLs, httpClient, appCfg.UserAgent)
}
