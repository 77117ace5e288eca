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

	"github.com/mamadbah2/agrifleet/internal/config"
	"github.com/mamadbah2/agrifleet/internal/repository/mongodb"
	"github.com/mamadbah2/agrifleet/internal/repository/sheets"
	"github.com/mamadbah2/agrifleet/internal/scheduler"
	"github.com/mamadbah2/agrifleet/internal/server/handlers"
	"github.com/mamadbah2/agrifleet/internal/server/router"
	commandsvc "github.com/mamadbah2/agrifleet/internal/service/commands"
	fleetsvc "github.com/mamadbah2/agrifleet/internal/service/fleet"
	reportingsvc "github.com/mamadbah2/agrifleet/internal/service/reporting"
	whatsappsvc "github.com/mamadbah2/agrifleet/internal/service/whatsapp"
	whatsappclient "github.com/mamadbah2/agrifleet/pkg/clients/whatsapp"
	"github.com/mamadbah2/agrifleet/pkg/logger"
	"github.com/mamadbah2/agrifleet/pkg/metrics"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	mongoRepo, err := mongodb.NewMongoDBRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := mongoRepo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	var rows sheets.Repository
	if cfg.Sheets.Enabled() {
		rows, err = sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
	} else {
		baseLogger.Warn("google sheets not configured, ledger kept in memory")
		rows = sheets.NewMemoryRepository()
	}
	ledger := sheets.NewLedger(rows, baseLogger.Named("repo.ledger"))

	var (
		whatsClient whatsappclient.Client
		notifier    *whatsappsvc.Notifier
	)
	if cfg.WhatsApp.Enabled() {
		whatsClient = whatsappclient.NewClient(cfg.WhatsApp)
		notifier = whatsappsvc.NewNotifier(cfg.WhatsApp, whatsClient)
	} else {
		baseLogger.Warn("whatsapp credentials missing, chat commands and alerts disabled")
	}

	// A nil *Notifier must not reach the services as a non-nil interface.
	var (
		fleetNotifier fleetsvc.Notifier
		reportSink    scheduler.Notifier
	)
	if notifier != nil {
		fleetNotifier = notifier
		reportSink = notifier
	}

	fleet := fleetsvc.NewService(fleetsvc.NewEnv(cfg.Simulation), mongoRepo, ledger, fleetNotifier, baseLogger.Named("svc.fleet"))
	var fleetMetrics *metrics.Metrics
	if cfg.Metrics.Enabled {
		fleetMetrics = metrics.New(fleet)
		fleet.WithObserver(fleetMetrics)
	}
	restoreCtx, cancelRestore := context.WithTimeout(context.Background(), 30*time.Second)
	if _, err := fleet.Restore(restoreCtx); err != nil {
		baseLogger.Fatal("failed to restore fleet", zap.Error(err))
	}
	cancelRestore()

	reportingSvc := reportingsvc.NewService(ledger, fleet, baseLogger.Named("svc.reporting"))
	commandDispatcher := commandsvc.NewService(fleet, reportingSvc, commandsvc.NewSessionManager(), baseLogger.Named("svc.commands"))

	routes := router.Handlers{
		Equipment: handlers.NewEquipmentHandler(fleet, reportingSvc, baseLogger.Named("handlers.equipment")),
		Commands:  handlers.NewCommandHandler(commandDispatcher, baseLogger.Named("handlers.commands")),
	}
	if fleetMetrics != nil {
		routes.Metrics = fleetMetrics.Handler()
	}
	if whatsClient != nil {
		messagingSvc := whatsappsvc.NewMetaWhatsAppService(cfg.WhatsApp, whatsClient, commandDispatcher, baseLogger.Named("svc.whatsapp"))
		routes.Webhook = handlers.NewWebhookHandler(messagingSvc, baseLogger.Named("handlers.whatsapp"))
	}
	engine := router.New(routes, baseLogger.Named("router"))

	sched, err := scheduler.NewScheduler(cfg.Scheduler, fleet, reportingSvc, mongoRepo, reportSink, baseLogger.Named("scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

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

	if err := fleet.PersistAll(shutdownCtx); err != nil {
		baseLogger.Error("failed to persist fleet on shutdown", zap.Error(err))
	}
}
