package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/meridian-hq/meridian/internal/app"
	"github.com/meridian-hq/meridian/internal/auth"
	"github.com/meridian-hq/meridian/internal/employees"
	"github.com/meridian-hq/meridian/internal/finance"
	"github.com/meridian-hq/meridian/internal/invoices"
	"github.com/meridian-hq/meridian/internal/observability"
	"github.com/meridian-hq/meridian/internal/platform/blob"
	"github.com/meridian-hq/meridian/internal/platform/db"
	"github.com/meridian-hq/meridian/internal/shared"
	"github.com/meridian-hq/meridian/internal/tickets"
	"github.com/meridian-hq/meridian/internal/vault"
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

	sessionManager := shared.NewSessionManager(redisClient, "meridian_session", cfg.SessionTTL, cfg.IsProduction())

	// The receipt key is provisioned once at startup; a keystore failure
	// degrades to a deterministic demo key and is logged inside NewKeystore.
	keystore := vault.NewKeystore(filepath.Join(cfg.DataDir, "tickets.key"), logger)

	uploads, err := blob.NewDirStore(filepath.Join(cfg.DataDir, "uploads"))
	if err != nil {
		logger.Error("open upload store", slog.Any("error", err))
		os.Exit(1)
	}

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService)
	authMW := auth.Middleware{Service: authService, Logger: logger}

	employeesRepo := employees.NewRepository(pool)
	employeesHandler := employees.NewHandler(logger, employeesRepo, authMW)

	summaryCache := finance.NewSummaryCache(redisClient, cfg.SummaryCacheTTL, logger)

	financeRepo := finance.NewRepository(pool)
	financeService := finance.NewService(financeRepo, employeesRepo, summaryCache, logger)
	financeHandler := finance.NewHandler(logger, financeService, authMW)

	ticketsRepo := tickets.NewRepository(pool)
	ticketsService := tickets.NewService(ticketsRepo, employeesRepo, uploads, keystore, logger, summaryCache)
	ticketsHandler := tickets.NewHandler(logger, ticketsService, authMW, cfg.MaxUploadBytes)

	invoicesRepo := invoices.NewRepository(pool)
	invoicesService := invoices.NewService(invoicesRepo, uploads, logger, summaryCache)
	invoicesHandler := invoices.NewHandler(logger, invoicesService, authMW, cfg.MaxUploadBytes)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   sessionManager,
		AuthHandler:      authHandler,
		AuthMiddleware:   authMW,
		TicketsHandler:   ticketsHandler,
		InvoicesHandler:  invoicesHandler,
		FinanceHandler:   financeHandler,
		EmployeesHandler: employeesHandler,
		Metrics:          metrics,
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
