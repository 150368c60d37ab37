package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/qazi-erp/qazi-erp/internal/assistant"
	"github.com/qazi-erp/qazi-erp/internal/auth"
	"github.com/qazi-erp/qazi-erp/internal/customers"
	"github.com/qazi-erp/qazi-erp/internal/dashboard"
	"github.com/qazi-erp/qazi-erp/internal/inventory"
	"github.com/qazi-erp/qazi-erp/internal/observability"
	"github.com/qazi-erp/qazi-erp/internal/orders"
	"github.com/qazi-erp/qazi-erp/internal/payments"
	"github.com/qazi-erp/qazi-erp/internal/rbac"
	"github.com/qazi-erp/qazi-erp/internal/reports"
	"github.com/qazi-erp/qazi-erp/internal/settings"
	"github.com/qazi-erp/qazi-erp/internal/shared"
	"github.com/qazi-erp/qazi-erp/internal/shell"
	"github.com/qazi-erp/qazi-erp/jobs"
	"github.com/qazi-erp/qazi-erp/report"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	RBACMiddleware rbac.Middleware

	AuthHandler      *auth.Handler
	ShellHandler     *shell.Handler
	DashboardHandler *dashboard.Handler
	InventoryHandler *inventory.Handler
	CustomersHandler *customers.Handler
	OrdersHandler    *orders.Handler
	PaymentsHandler  *payments.Handler
	ReportsHandler   *reports.Handler
	SettingsHandler  *settings.Handler
	AssistantHandler *assistant.Handler

	ReportHandler *report.Handler
	JobHandler    *jobs.Handler
	Metrics       *observability.Metrics
}

// NewRouter constructs the chi.Router with dashboard defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	if !params.Config.IsProduction() {
		r.Use(chimw.Logger)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Group(func(r chi.Router) {
		r.Use(params.RBACMiddleware.RequireUser)
		r.Route("/shell", params.ShellHandler.MountRoutes)
		r.Route("/dashboard", params.DashboardHandler.MountRoutes)
		r.Route("/inventory", params.InventoryHandler.MountRoutes)
		r.Route("/customers", params.CustomersHandler.MountRoutes)
		r.Route("/orders", params.OrdersHandler.MountRoutes)
		r.Route("/payments", params.PaymentsHandler.MountRoutes)
		r.Route("/reports", params.ReportsHandler.MountRoutes)
		r.Route("/settings", params.SettingsHandler.MountRoutes)
		if params.AssistantHandler != nil {
			r.Route("/assistant", params.AssistantHandler.MountRoutes)
		}
	})

	if params.ReportHandler != nil {
		r.Route("/report", params.ReportHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
