package reports

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/qazi-erp/qazi-erp/internal/platform/httpx"
	"github.com/qazi-erp/qazi-erp/internal/rbac"
	"github.com/qazi-erp/qazi-erp/internal/shared"
)

// Enqueuer schedules the daily summary job for a date.
type Enqueuer interface {
	EnqueueDailySummary(ctx context.Context, date string) (string, error)
}

// Handler serves the reports view.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
	jobs    Enqueuer
}

// NewHandler constructs a Handler. jobs may be nil when no queue is configured.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware, jobs Enqueuer) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, rbac: rbac, jobs: jobs}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireView(rbac.ViewReports))
		r.Get("/daily", h.handleDaily)
		r.Get("/locations", h.handleLocations)
	})
	r.With(h.rbac.RequireCapability(rbac.ViewReports, rbac.CapCreate)).Post("/daily/run", h.handleRun)
}

func (h *Handler) handleDaily(w http.ResponseWriter, r *http.Request) {
	day, err := h.service.ParseDay(r.URL.Query().Get("date"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	user, _ := shared.UserFromContext(r.Context())
	summary, err := h.service.Daily(r.Context(), user.Role, day)
	if err != nil {
		h.logger.Error("daily summary", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) handleLocations(w http.ResponseWriter, r *http.Request) {
	user, _ := shared.UserFromContext(r.Context())
	locations, err := h.service.Locations(r.Context(), user.Role)
	if err != nil {
		h.logger.Error("booker locations", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"locations": locations})
}

func (h *Handler) handleRun(w http.ResponseWriter, r *http.Request) {
	if h.jobs == nil {
		httpx.RespondError(w, httpx.ErrUnavailable)
		return
	}
	day, err := h.service.ParseDay(r.URL.Query().Get("date"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	date := day.Format(time.DateOnly)
	id, err := h.jobs.EnqueueDailySummary(r.Context(), date)
	if err != nil {
		h.logger.Error("enqueue daily summary", slog.String("date", date), slog.Any("error", err))
		httpx.RespondError(w, httpx.Mark(err, httpx.ErrUnavailable))
		return
	}
	h.logger.Info("daily summary enqueued", slog.String("date", date), slog.String("task_id", id))
	httpx.JSON(w, http.StatusAccepted, map[string]string{"task_id": id, "date": date})
}
