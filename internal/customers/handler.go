package customers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/qazi-erp/qazi-erp/internal/observability"
	"github.com/qazi-erp/qazi-erp/internal/platform/httpx"
	"github.com/qazi-erp/qazi-erp/internal/rbac"
	"github.com/qazi-erp/qazi-erp/internal/shared"
)

// Handler wires HTTP endpoints for the customers view.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
	metrics *observability.Metrics
}

// NewHandler constructs customers handler.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware, metrics *observability.Metrics) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, rbac: rbac, metrics: metrics}
}

// MountRoutes registers customer routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireView(rbac.ViewCustomers))
		r.Get("/", h.handleList)
		r.Get("/routes", h.handleRoutes)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireCapability(rbac.ViewCustomers, rbac.CapCreate))
		r.Post("/", h.handleCreate)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireCapability(rbac.ViewCustomers, rbac.CapDelete))
		r.Delete("/{id}", h.handleDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := shared.UserFromContext(r.Context())
	q := r.URL.Query()
	list, err := h.service.Search(r.Context(), user.Role, Criteria{Name: q.Get("q"), Route: q.Get("route")})
	if err != nil {
		h.logger.Error("list customers", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"customers": list})
}

func (h *Handler) handleRoutes(w http.ResponseWriter, r *http.Request) {
	user, _ := shared.UserFromContext(r.Context())
	routes, err := h.service.Routes(r.Context(), user.Role)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"routes": routes})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := shared.UserFromContext(r.Context())
	httpx.RespondError(w, h.service.Create(r.Context(), user.Role))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid customer id")
		return
	}
	user, _ := shared.UserFromContext(r.Context())
	err = h.service.Delete(r.Context(), user.Role, id, shared.HeaderConfirmer(r, id))
	switch {
	case errors.Is(err, shared.ErrConfirmationDeclined):
		httpx.JSON(w, http.StatusOK, map[string]any{"deleted": false, "prompt": DeletePrompt})
	case err != nil:
		h.logger.Warn("delete customer", slog.Int64("customer_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
	default:
		h.metrics.ObserveDeletion("customer")
		h.logger.Info("customer deleted", slog.Int64("customer_id", id), slog.String("role", string(user.Role)))
		httpx.JSON(w, http.StatusOK, map[string]any{"deleted": true, "id": id})
	}
}
