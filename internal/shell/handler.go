package shell

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/qazi-erp/qazi-erp/internal/platform/httpx"
	"github.com/qazi-erp/qazi-erp/internal/rbac"
	"github.com/qazi-erp/qazi-erp/internal/shared"
)

// Handler exposes the shell over HTTP.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers shell routes. Callers must require a user.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleState)
	r.Post("/view", h.handleSwitch)
}

type switchRequest struct {
	View string `json:"view" validate:"required"`
}

func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	user, ok := shared.PrincipalFromSession(sess)
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	state := h.service.State(user, sess.Get(shared.SessionKeyActiveView))
	if sess.Get(shared.SessionKeyActiveView) != string(state.ActiveView) {
		sess.Set(shared.SessionKeyActiveView, string(state.ActiveView))
	}
	httpx.JSON(w, http.StatusOK, state)
}

func (h *Handler) handleSwitch(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	user, ok := shared.PrincipalFromSession(sess)
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	var req switchRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	view, err := h.service.Switch(user, req.View)
	if err != nil {
		if errors.Is(err, rbac.ErrForbidden) {
			h.logger.Warn("shell view denied", slog.String("role", string(user.Role)), slog.String("view", req.View))
		}
		httpx.RespondError(w, err)
		return
	}
	sess.Set(shared.SessionKeyActiveView, string(view))
	httpx.JSON(w, http.StatusOK, h.service.State(user, string(view)))
}
