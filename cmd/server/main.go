package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/bsglab/workshoptrack/internal/config"
	"github.com/bsglab/workshoptrack/internal/domain/models"
	"github.com/bsglab/workshoptrack/internal/repository/mongodb"
	"github.com/bsglab/workshoptrack/internal/repository/sheets"
	"github.com/bsglab/workshoptrack/internal/repository/sqlite"
	"github.com/bsglab/workshoptrack/internal/scheduler"
	"github.com/bsglab/workshoptrack/internal/server/handlers"
	"github.com/bsglab/workshoptrack/internal/server/router"
	"github.com/bsglab/workshoptrack/internal/service/bot"
	ingestsvc "github.com/bsglab/workshoptrack/internal/service/ingest"
	reportingsvc "github.com/bsglab/workshoptrack/internal/service/reporting"
	searchsvc "github.com/bsglab/workshoptrack/internal/service/search"
	"github.com/bsglab/workshoptrack/pkg/clients/telegram"
	"github.com/bsglab/workshoptrack/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	registry := models.NewStationRegistry(cfg.Stations.Names)
	packaging, ok := registry.Lookup(cfg.Stations.PackagingStation)
	if !ok {
		baseLogger.Fatal("packaging station missing from registry",
			zap.String("station", cfg.Stations.PackagingStation))
	}

	store, err := sqlite.NewStore(cfg.Storage.SQLitePath, registry, baseLogger.Named("repo.sqlite"))
	if err != nil {
		baseLogger.Fatal("failed to init sqlite store", zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			baseLogger.Error("failed to close sqlite store", zap.Error(err))
		}
	}()

	mongoRepo, err := mongodb.NewMongoDBRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := mongoRepo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	var exporter sheets.Exporter
	if cfg.SheetsEnabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets exporter", zap.Error(err))
		}
		exporter = sheetsRepo
		baseLogger.Info("spreadsheet export enabled")
	} else {
		baseLogger.Warn("spreadsheet export disabled, sheets credentials missing")
	}

	ingestService := ingestsvc.NewService(registry, store, store, baseLogger.Named("svc.ingest"))
	searchService := searchsvc.NewService(registry, packaging, store, baseLogger.Named("svc.search"))
	reportingService := reportingsvc.NewService(registry, store, baseLogger.Named("svc.reporting"))

	entryClient := telegram.NewClient(cfg.Telegram.BaseURL, cfg.Telegram.EntryBotToken)
	analystClient := telegram.NewClient(cfg.Telegram.BaseURL, cfg.Telegram.AnalystBotToken)

	entryBot := bot.NewEntryBot(entryClient, ingestService, store, registry, baseLogger.Named("bot.entry"))
	analystBot := bot.NewAnalystBot(analystClient, searchService, store, baseLogger.Named("bot.analyst"))

	webhookHandler := handlers.NewWebhookHandler(entryBot, analystBot, analystClient, cfg.Telegram.WebhookSecret, baseLogger.Named("handlers.telegram"))
	engine := router.New(webhookHandler, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(cfg.Reporting, reportingService, mongoRepo, exporter, analystClient, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
