package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/africa-markett/storefront/internal/service"
	"github.com/africa-markett/storefront/pkg/httputil"
	"github.com/africa-markett/storefront/pkg/middleware"
	"github.com/africa-markett/storefront/pkg/pagination"
)

// OrderHandler serves a shopper's own order history. Orders are scoped to
// the X-Session-ID header.
type OrderHandler struct {
	service *service.OrderService
	logger  *slog.Logger
}

// NewOrderHandler creates a new order HTTP handler.
func NewOrderHandler(svc *service.OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		service: svc,
		logger:  logger,
	}
}

// List handles GET /api/v1/orders?page=&per_page=
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ListSessionOrders(r.Context(), r.Header.Get(middleware.HeaderSessionID), pagination.FromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// Get handles GET /api/v1/orders/{orderId}
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.GetSessionOrder(r.Context(), r.Header.Get(middleware.HeaderSessionID), chi.URLParam(r, "orderId"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, order)
}
