package orders

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/qazi-erp/qazi-erp/internal/domain"
	"github.com/qazi-erp/qazi-erp/internal/observability"
	"github.com/qazi-erp/qazi-erp/internal/platform/httpx"
	"github.com/qazi-erp/qazi-erp/internal/rbac"
	"github.com/qazi-erp/qazi-erp/internal/shared"
	"github.com/qazi-erp/qazi-erp/internal/view"
)

// PDFRenderer converts an HTML document into a PDF.
type PDFRenderer interface {
	RenderHTML(ctx context.Context, html []byte) ([]byte, error)
}

// Handler wires HTTP endpoints for the orders view.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	rbac      rbac.Middleware
	metrics   *observability.Metrics
	pages     *view.Engine
	pdf       PDFRenderer
	currency  string
	validator *validator.Validate
}

// NewHandler constructs orders handler. pages and pdf may be nil, which
// disables the printable invoice routes.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware, metrics *observability.Metrics, pages *view.Engine, pdf PDFRenderer, currency string) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		service:   service,
		rbac:      rbac,
		metrics:   metrics,
		pages:     pages,
		pdf:       pdf,
		currency:  currency,
		validator: validator.New(),
	}
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=Pending Delivered Paid"`
}

// MountRoutes registers order routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireView(rbac.ViewOrders))
		r.Get("/", h.handleList)
		r.Get("/export.csv", h.handleExport)
		r.Get("/{id}/invoice", h.handleInvoice)
		r.Get("/{id}/invoice.html", h.handleInvoiceHTML)
		r.Get("/{id}/invoice.pdf", h.handleInvoicePDF)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireCapability(rbac.ViewOrders, rbac.CapCreate))
		r.Post("/", h.handleCreate)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireCapability(rbac.ViewOrders, rbac.CapStatus))
		r.Post("/{id}/status", h.handleStatus)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireCapability(rbac.ViewOrders, rbac.CapDelete))
		r.Delete("/{id}", h.handleDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := shared.UserFromContext(r.Context())
	rows, err := h.service.List(r.Context(), user.Role, criteriaFromQuery(r))
	if err != nil {
		h.logger.Error("list orders", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"orders": rows, "statuses": domain.OrderStatuses()})
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	user, _ := shared.UserFromContext(r.Context())
	rows, err := h.service.Export(r.Context(), user.Role, criteriaFromQuery(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		h.logger.Error("export orders", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.metrics.ObserveExport("orders_csv")
	httpx.Attachment(w, "text/csv; charset=utf-8", ExportFileName)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	user, _ := shared.UserFromContext(r.Context())
	order, err := h.service.Create(r.Context(), user.Role, req)
	if err != nil {
		h.logger.Warn("create order", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("order created", slog.Int64("order_id", order.ID), slog.String("role", string(user.Role)))
	httpx.JSON(w, http.StatusCreated, order)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	user, _ := shared.UserFromContext(r.Context())
	order, err := h.service.ChangeStatus(r.Context(), user.Role, id, domain.OrderStatus(req.Status))
	if err != nil {
		h.logger.Warn("change order status", slog.Int64("order_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.metrics.ObserveStatusChange(string(order.Status))
	h.logger.Info("order status changed", slog.Int64("order_id", id), slog.String("status", string(order.Status)))
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}
	user, _ := shared.UserFromContext(r.Context())
	remove, prompt := h.service.Delete, DeletePrompt
	if r.URL.Query().Get("from") == "invoice" {
		remove, prompt = h.service.DeleteFromInvoice, fmt.Sprintf(InvoiceDeletePrompt, id)
	}
	err := remove(r.Context(), user.Role, id, shared.HeaderConfirmer(r, id))
	switch {
	case errors.Is(err, shared.ErrConfirmationDeclined):
		httpx.JSON(w, http.StatusOK, map[string]any{"deleted": false, "prompt": prompt})
	case err != nil:
		h.logger.Warn("delete order", slog.Int64("order_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
	default:
		h.metrics.ObserveDeletion("order")
		h.logger.Info("order deleted", slog.Int64("order_id", id), slog.String("role", string(user.Role)))
		httpx.JSON(w, http.StatusOK, map[string]any{"deleted": true, "id": id})
	}
}

func (h *Handler) handleInvoice(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.loadInvoice(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) handleInvoiceHTML(w http.ResponseWriter, r *http.Request) {
	if h.pages == nil {
		httpx.RespondError(w, httpx.ErrNotImplemented)
		return
	}
	inv, ok := h.loadInvoice(w, r)
	if !ok {
		return
	}
	if err := h.pages.Render(w, "invoice.html", h.invoiceData(inv)); err != nil {
		h.logger.Error("render invoice", slog.Int64("order_id", inv.OrderID), slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

func (h *Handler) handleInvoicePDF(w http.ResponseWriter, r *http.Request) {
	if h.pages == nil || h.pdf == nil {
		httpx.RespondError(w, httpx.ErrNotImplemented)
		return
	}
	inv, ok := h.loadInvoice(w, r)
	if !ok {
		return
	}
	var html bytes.Buffer
	if err := h.pages.Execute(&html, "invoice.html", h.invoiceData(inv)); err != nil {
		h.logger.Error("render invoice", slog.Int64("order_id", inv.OrderID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	pdf, err := h.pdf.RenderHTML(r.Context(), html.Bytes())
	if err != nil {
		h.logger.Error("convert invoice pdf", slog.Int64("order_id", inv.OrderID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.metrics.ObserveExport("invoice_pdf")
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", inv.Number+".pdf"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (h *Handler) loadInvoice(w http.ResponseWriter, r *http.Request) (Invoice, bool) {
	id, ok := orderID(w, r)
	if !ok {
		return Invoice{}, false
	}
	user, _ := shared.UserFromContext(r.Context())
	inv, err := h.service.Invoice(r.Context(), user.Role, id)
	if err != nil {
		h.logger.Warn("load invoice", slog.Int64("order_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return Invoice{}, false
	}
	return inv, true
}

func (h *Handler) invoiceData(inv Invoice) view.TemplateData {
	return view.TemplateData{Title: "Invoice " + inv.Number, Currency: h.currency, Data: inv}
}

func criteriaFromQuery(r *http.Request) Criteria {
	q := r.URL.Query()
	return Criteria{Status: domain.OrderStatus(q.Get("status")), Customer: q.Get("customer")}
}

func orderID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid order id")
		return 0, false
	}
	return id, true
}
