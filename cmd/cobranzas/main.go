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
	"github.com/redis/go-redis/v9"

	"github.com/andes-erp/cobranzas/internal/accounts"
	"github.com/andes-erp/cobranzas/internal/app"
	"github.com/andes-erp/cobranzas/internal/audit"
	"github.com/andes-erp/cobranzas/internal/auth"
	"github.com/andes-erp/cobranzas/internal/debtors"
	"github.com/andes-erp/cobranzas/internal/directory"
	"github.com/andes-erp/cobranzas/internal/payments"
	"github.com/andes-erp/cobranzas/internal/platform/db"
	"github.com/andes-erp/cobranzas/internal/report"
	"github.com/andes-erp/cobranzas/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	queueClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := queueClient.Close(); err != nil {
			logger.Warn("queue close", slog.Any("error", err))
		}
	}()
	dispatcher := audit.NewDispatcher(queueClient, logger)

	verifier := auth.NewVerifier(cfg.JWTSecret)
	authHandler := auth.NewHandler(logger, verifier)

	accountsRepo := accounts.NewRepository(pool)
	accountsService := accounts.NewService(accountsRepo, dispatcher)
	accountsHandler := accounts.NewHandler(logger, accountsService)

	gotenberg := report.NewClient(cfg.GotenbergURL)
	if err := gotenberg.Ping(ctx); err != nil {
		logger.Warn("gotenberg ping", slog.Any("error", err))
	}
	renderer := report.NewRenderer(gotenberg)
	pdfStore, err := report.NewFileStore(cfg.PDFDir, cfg.BaseURL)
	if err != nil {
		logger.Error("init pdf store", slog.Any("error", err))
		os.Exit(1)
	}

	paymentsRepo := payments.NewRepository(pool)
	paymentsService := payments.NewService(paymentsRepo, renderer, pdfStore, dispatcher)
	paymentsHandler := payments.NewHandler(logger, paymentsService)

	dirClient := directory.NewHTTPClient(cfg.ClientsAPIURL, cfg.InvoicesAPIURL, nil)
	directoryHandler := directory.NewHandler(logger, dirClient)

	debtorsService := debtors.NewService(dirClient, paymentsRepo, dispatcher)
	debtorsHandler := debtors.NewHandler(logger, debtorsService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		AuthMiddleware:   auth.Middleware(verifier, logger),
		AuthHandler:      authHandler,
		AccountsHandler:  accountsHandler,
		PaymentsHandler:  paymentsHandler,
		DirectoryHandler: directoryHandler,
		DebtorsHandler:   debtorsHandler,
		JobHandler:       jobHandler,
		PDFDir:           pdfStore.Dir(),
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
