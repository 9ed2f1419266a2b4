package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/lotpilot/lotpilot/internal/app"
	"github.com/lotpilot/lotpilot/internal/lifecycle"
	"github.com/lotpilot/lotpilot/internal/masterdata/bankaccounts"
	"github.com/lotpilot/lotpilot/internal/masterdata/suppliers"
	"github.com/lotpilot/lotpilot/internal/platform/cache"
	"github.com/lotpilot/lotpilot/internal/platform/db"
	"github.com/lotpilot/lotpilot/internal/shared"
	"github.com/lotpilot/lotpilot/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		// The supplier service tolerates a nil cache; credit reads just hit
		// Postgres every time.
		logger.Warn("redis unavailable, supplier credit cache disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	auditLogger := shared.NewAuditLogger(dbpool)
	idempotencyStore := shared.NewIdempotencyStore(dbpool)

	supplierRepo := suppliers.NewRepository(dbpool)
	supplierService := suppliers.NewService(supplierRepo, redisClient, cfg.SupplierCacheTTL, logger)
	supplierHandler := suppliers.NewHandler(logger, supplierService)

	bankRepo := bankaccounts.NewRepository(dbpool)
	bankService := bankaccounts.NewService(bankRepo)
	bankHandler := bankaccounts.NewHandler(logger, bankService)

	orderRepo := lifecycle.NewRepository(dbpool)
	engine := lifecycle.NewEngine(
		orderRepo,
		supplierService,
		bankaccounts.NewViews(bankService),
		auditLogger,
		idempotencyStore,
		cfg.LandedCostMarkupPct,
	)
	orderHandler := lifecycle.NewHandler(logger, engine)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		OrderHandler:       orderHandler,
		SupplierHandler:    supplierHandler,
		BankAccountHandler: bankHandler,
		JobHandler:         jobHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
