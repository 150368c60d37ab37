package settings

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/qazi-erp/qazi-erp/internal/platform/httpx"
	"github.com/qazi-erp/qazi-erp/internal/rbac"
	"github.com/qazi-erp/qazi-erp/internal/shared"
)

// Handler serves the settings view.
type Handler struct {
	service *Service
	rbac    rbac.Middleware
}

// NewHandler constructs a Handler.
func NewHandler(service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{service: service, rbac: rbac}
}

// MountRoutes registers settings routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.RequireView(rbac.ViewSettings)).Get("/", h.handleSettings)
}

func (h *Handler) handleSettings(w http.ResponseWriter, r *http.Request) {
	user, _ := shared.UserFromContext(r.Context())
	s, err := h.service.Current(user.Role)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, s)
}
