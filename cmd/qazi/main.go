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

	"github.com/qazi-erp/qazi-erp/internal/app"
	"github.com/qazi-erp/qazi-erp/internal/assistant"
	"github.com/qazi-erp/qazi-erp/internal/auth"
	"github.com/qazi-erp/qazi-erp/internal/customers"
	"github.com/qazi-erp/qazi-erp/internal/dashboard"
	"github.com/qazi-erp/qazi-erp/internal/inventory"
	"github.com/qazi-erp/qazi-erp/internal/observability"
	"github.com/qazi-erp/qazi-erp/internal/orders"
	"github.com/qazi-erp/qazi-erp/internal/payments"
	"github.com/qazi-erp/qazi-erp/internal/platform/cache"
	"github.com/qazi-erp/qazi-erp/internal/rbac"
	"github.com/qazi-erp/qazi-erp/internal/reports"
	"github.com/qazi-erp/qazi-erp/internal/settings"
	"github.com/qazi-erp/qazi-erp/internal/shared"
	"github.com/qazi-erp/qazi-erp/internal/shell"
	"github.com/qazi-erp/qazi-erp/internal/view"
	"github.com/qazi-erp/qazi-erp/jobs"
	"github.com/qazi-erp/qazi-erp/report"
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

	st, closeStore, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("open store", slog.Any("error", err))
		os.Exit(1)
	}
	defer closeStore()

	redisClient, err := cache.New(ctx, cfg.Redis())
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "qazi_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	policy := rbac.Default()
	rbacMiddleware := rbac.Middleware{Policy: policy, Logger: logger}
	metrics := observability.NewMetrics()

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	reportClient := report.NewClient(cfg.GotenbergURL)
	var pdf orders.PDFRenderer
	if reportClient.Enabled() {
		pdf = reportClient
	}

	var suggester assistant.Suggester
	if cfg.AssistantEnabled() {
		gemini, err := assistant.NewGeminiSuggester(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Warn("assistant disabled", slog.Any("error", err))
		} else {
			suggester = gemini
		}
	}

	redisOpts := cfg.AsynqRedis()
	jobClient := jobs.NewClient(redisOpts)
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	authHandler := auth.NewHandler(logger, auth.NewService(st, policy), policy, sessionManager, csrfManager)
	shellHandler := shell.NewHandler(logger, shell.NewService(policy))
	dashboardHandler := dashboard.NewHandler(logger, dashboard.NewService(st, policy, suggester != nil))
	inventoryHandler := inventory.NewHandler(logger, inventory.NewService(st, policy), rbacMiddleware, metrics)
	customersHandler := customers.NewHandler(logger, customers.NewService(st, policy), rbacMiddleware, metrics)
	ordersHandler := orders.NewHandler(logger, orders.NewService(st, policy), rbacMiddleware, metrics, templates, pdf, cfg.Currency)
	paymentsHandler := payments.NewHandler(logger, payments.NewService(st, policy), rbacMiddleware)
	reportsHandler := reports.NewHandler(logger, reports.NewService(st, policy), rbacMiddleware, jobClient)
	settingsHandler := settings.NewHandler(settings.NewService(policy, cfg.Currency, settings.Runtime{
		Environment:      cfg.AppEnv,
		StoreDriver:      cfg.StoreDriver,
		AssistantEnabled: suggester != nil,
		PDFEnabled:       pdf != nil,
	}), rbacMiddleware)
	assistantHandler := assistant.NewHandler(logger, assistant.NewService(st, policy, suggester, metrics), rbacMiddleware)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   sessionManager,
		CSRFManager:      csrfManager,
		RBACMiddleware:   rbacMiddleware,
		AuthHandler:      authHandler,
		ShellHandler:     shellHandler,
		DashboardHandler: dashboardHandler,
		InventoryHandler: inventoryHandler,
		CustomersHandler: customersHandler,
		OrdersHandler:    ordersHandler,
		PaymentsHandler:  paymentsHandler,
		ReportsHandler:   reportsHandler,
		SettingsHandler:  settingsHandler,
		AssistantHandler: assistantHandler,
		ReportHandler:    report.NewHandler(reportClient, logger),
		JobHandler:       jobs.NewHandler(inspector, logger),
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("env", cfg.AppEnv))
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
