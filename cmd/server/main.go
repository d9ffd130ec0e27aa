package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/dairyfeed/internal/config"
	"github.com/mamadbah2/dairyfeed/internal/ratelimit"
	"github.com/mamadbah2/dairyfeed/internal/repository/mongodb"
	"github.com/mamadbah2/dairyfeed/internal/repository/sheets"
	"github.com/mamadbah2/dairyfeed/internal/scheduler"
	"github.com/mamadbah2/dairyfeed/internal/server/handlers"
	"github.com/mamadbah2/dairyfeed/internal/server/router"
	authsvc "github.com/mamadbah2/dairyfeed/internal/service/auth"
	feedsvc "github.com/mamadbah2/dairyfeed/internal/service/feeds"
	"github.com/mamadbah2/dairyfeed/internal/service/nutrition"
	"github.com/mamadbah2/dairyfeed/pkg/clients/messaging"
	"github.com/mamadbah2/dairyfeed/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	mongoClient, err := mongodb.Connect(context.Background(), cfg.MongoDB.URI)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb connection", zap.Error(err))
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	feedRepo := mongodb.NewMongoFeedRepository(mongoClient, cfg.MongoDB.DBName)
	authRepo := mongodb.NewMongoAuthRepository(mongoClient, cfg.MongoDB.DBName)
	usageRepo := mongodb.NewMongoUsageRepository(mongoClient, cfg.MongoDB.DBName)

	gatewayClient := messaging.NewClient(cfg.Gateway)
	authService := authsvc.NewService(authRepo, gatewayClient, cfg.Auth, baseLogger.Named("svc.auth"))

	loader := feedsvc.NewLoader(feedRepo, baseLogger.Named("svc.feeds"))
	calculator := nutrition.NewCalculator(baseLogger.Named("svc.requirements"))
	evaluator := nutrition.NewEvaluator(loader, calculator, baseLogger.Named("svc.evaluation"))

	// Bulk import is optional; it needs Google credentials.
	var importer *feedsvc.Importer
	if cfg.Sheets.CredentialsPath != "" && cfg.Sheets.SpreadsheetID != "" {
		sheetRepo, err := sheets.NewFeedSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		importer = feedsvc.NewImporter(sheetRepo, feedRepo, usageRepo, baseLogger.Named("svc.import"))
	} else {
		baseLogger.Warn("sheets credentials missing, bulk feed import disabled")
	}

	limiter := ratelimit.NewRegistry(cfg.RateLimit)

	engine := router.New(cfg.Server, router.Deps{
		Auth:       handlers.NewAuthHandler(authService, baseLogger.Named("handlers.auth")),
		Feeds:      handlers.NewFeedHandler(feedRepo, importer, cfg.Sheets.ImportRange, baseLogger.Named("handlers.feeds")),
		Evaluation: handlers.NewEvaluationHandler(evaluator, baseLogger.Named("handlers.evaluation")),
		AuthSvc:    authService,
		Limiter:    limiter,
		Orgs:       authRepo,
		Usage:      usageRepo,
	}, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(cfg.Jobs, authRepo, usageRepo, baseLogger.Named("scheduler"))
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
