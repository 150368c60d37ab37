package inventory

import (
	"bytes"
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

// Handler wires HTTP endpoints for the inventory view.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
	metrics *observability.Metrics
}

// NewHandler constructs inventory handler.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware, metrics *observability.Metrics) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, rbac: rbac, metrics: metrics}
}

// MountRoutes registers inventory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireView(rbac.ViewInventory))
		r.Get("/", h.handleList)
		r.Get("/export.csv", h.handleExport)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireCapability(rbac.ViewInventory, rbac.CapCreate))
		r.Post("/", h.handleCreate)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireCapability(rbac.ViewInventory, rbac.CapDelete))
		r.Delete("/{id}", h.handleDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := shared.UserFromContext(r.Context())
	rows, err := h.service.List(r.Context(), user.Role, r.URL.Query().Get("q"))
	if err != nil {
		h.logger.Error("list products", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"products": rows})
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	user, _ := shared.UserFromContext(r.Context())
	products, err := h.service.Export(r.Context(), user.Role, r.URL.Query().Get("q"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, products); err != nil {
		h.logger.Error("export inventory", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.metrics.ObserveExport("inventory_csv")
	httpx.Attachment(w, "text/csv; charset=utf-8", ExportFileName)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := shared.UserFromContext(r.Context())
	httpx.RespondError(w, h.service.Create(r.Context(), user.Role))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid product id")
		return
	}
	user, _ := shared.UserFromContext(r.Context())
	err = h.service.Delete(r.Context(), user.Role, id, shared.HeaderConfirmer(r, id))
	switch {
	case errors.Is(err, shared.ErrConfirmationDeclined):
		httpx.JSON(w, http.StatusOK, map[string]any{"deleted": false, "prompt": DeletePrompt})
	case err != nil:
		h.logger.Warn("delete product", slog.Int64("product_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
	default:
		h.metrics.ObserveDeletion("product")
		h.logger.Info("product deleted", slog.Int64("product_id", id), slog.String("role", string(user.Role)))
		httpx.JSON(w, http.StatusOK, map[string]any{"deleted": true, "id": id})
	}
}
