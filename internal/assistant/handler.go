package assistant

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/qazi-erp/qazi-erp/internal/platform/httpx"
	"github.com/qazi-erp/qazi-erp/internal/rbac"
	"github.com/qazi-erp/qazi-erp/internal/shared"
)

// Handler serves the order assistant.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	rbac      rbac.Middleware
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, rbac: rbac, validator: validator.New()}
}

type draftRequest struct {
	Prompt string `json:"prompt" validate:"required,max=2000"`
}

// MountRoutes registers assistant routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireCapability(rbac.ViewOrders, rbac.CapCreate))
		r.Get("/", h.handleStatus)
		r.Post("/draft", h.handleDraft)
	})
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{"enabled": h.service.Enabled(), "greeting": Greeting})
}

func (h *Handler) handleDraft(w http.ResponseWriter, r *http.Request) {
	var req draftRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	user, _ := shared.UserFromContext(r.Context())
	draft, err := h.service.Draft(r.Context(), user.Role, req.Prompt)
	if err != nil {
		h.logger.Warn("assistant draft", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if draft.Failed {
		h.logger.Warn("assistant suggestion failed", slog.String("role", string(user.Role)))
	}
	httpx.JSON(w, http.StatusOK, draft)
}
