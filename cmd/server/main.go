package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/logistics/internal/config"
	"github.com/mamadbah2/logistics/internal/domain/models"
	"github.com/mamadbah2/logistics/internal/repository/memory"
	"github.com/mamadbah2/logistics/internal/repository/mongodb"
	"github.com/mamadbah2/logistics/internal/repository/sheets"
	"github.com/mamadbah2/logistics/internal/scheduler"
	"github.com/mamadbah2/logistics/internal/server/handlers"
	"github.com/mamadbah2/logistics/internal/server/router"
	"github.com/mamadbah2/logistics/internal/service/optimizer"
	reportingsvc "github.com/mamadbah2/logistics/internal/service/reporting"
	whatsappclient "github.com/mamadbah2/logistics/pkg/clients/whatsapp"
	"github.com/mamadbah2/logistics/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Server.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	repo, err := newInventoryRepository(cfg, baseLogger)
	if err != nil {
		baseLogger.Fatal("failed to init inventory repository", zap.Error(err))
	}

	params := models.CostParams{Distance: cfg.Logistics.DistanceKm, RatePerKm: cfg.Logistics.RatePerKm}
	optimizerSvc, err := optimizer.NewService(repo, params, logger.Named(baseLogger, "svc.optimizer"))
	if err != nil {
		baseLogger.Fatal("invalid transport parameters", zap.Error(err))
	}

	var snapshots mongodb.SnapshotRepository
	if cfg.MongoDB.URI != "" {
		connectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		mongoRepo, err := mongodb.NewMongoDBRepository(connectCtx, cfg.MongoDB.URI, cfg.MongoDB.DBName, cfg.MongoDB.SnapshotCollection)
		cancel()
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		snapshots = mongoRepo
	} else {
		baseLogger.Warn("mongodb uri missing, cost snapshots disabled")
	}

	var notifier whatsappclient.Notifier
	if cfg.WhatsApp.Enabled() {
		notifier = whatsappclient.NewClient(cfg.WhatsApp)
		baseLogger.Info("whatsapp notifications enabled")
	}

	reportingSvc := reportingsvc.NewService(optimizerSvc, snapshots, notifier, cfg.WhatsApp.ReportRecipient, logger.Named(baseLogger, "svc.reporting"))

	if cfg.Reporting.CronSchedule != "" {
		sched, err := scheduler.NewScheduler(cfg.Reporting, reportingSvc, logger.Named(baseLogger, "scheduler"))
		if err != nil {
			baseLogger.Fatal("failed to init scheduler", zap.Error(err))
		}
		if err := sched.Start(); err != nil {
			baseLogger.Fatal("failed to start scheduler", zap.Error(err))
		}
		defer sched.Stop()
	}

	dashboard := handlers.NewDashboardHandler(optimizerSvc, reportingSvc, logger.Named(baseLogger, "handlers.dashboard"))
	engine := router.New(dashboard, logger.Named(baseLogger, "router"))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting",
			zap.String("port", cfg.Server.Port),
			zap.String("inventory_source", cfg.Inventory.Source))
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

func newInventoryRepository(cfg *config.Config, baseLogger *zap.Logger) (optimizer.Repository, error) {
	if cfg.Inventory.Source == config.SourceSheets {
		repo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, logger.Named(baseLogger, "repo.sheets"))
		if err != nil {
			return nil, err
		}
		return repo, nil
	}

	repo := memory.NewInventoryRepository()
	if cfg.Inventory.SeedDemo {
		if err := repo.ReplaceRecords(context.Background(), memory.DemoRecords()); err != nil {
			return nil, err
		}
		baseLogger.Info("seeded demo inventory", zap.Int("products", len(memory.DemoRecords())))
	}
	return repo, nil
}
