package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/africa-markett/storefront/internal/domain"
	"github.com/africa-markett/storefront/internal/service"
	"github.com/africa-markett/storefront/pkg/httputil"
	"github.com/africa-markett/storefront/pkg/pagination"
	"github.com/africa-markett/storefront/pkg/validator"
)

// AdminHandler handles back-office catalog and fulfilment endpoints.
type AdminHandler struct {
	catalog *service.CatalogService
	orders  *service.OrderService
	logger  *slog.Logger
}

// NewAdminHandler creates a new admin HTTP handler.
func NewAdminHandler(catalog *service.CatalogService, orders *service.OrderService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		catalog: catalog,
		orders:  orders,
		logger:  logger,
	}
}

// --- Request DTOs ---

// ProductRequest is the JSON request body for creating or replacing a product.
type ProductRequest struct {
	Name           string              `json:"name" validate:"required,max=200"`
	Category       string              `json:"category" validate:"max=100"`
	Price          decimal.Decimal     `json:"price"`
	Currency       string              `json:"currency" validate:"omitempty,len=3"`
	Description    string              `json:"description" validate:"max=5000"`
	Images         []string            `json:"images" validate:"omitempty,dive,required"`
	Dimensions     []domain.Dimension  `json:"dimensions"`
	Mediums        []domain.Medium     `json:"mediums"`
	Surfaces       []string            `json:"surfaces" validate:"omitempty,dive,required"`
	Features       []string            `json:"features"`
	Specifications map[string]string   `json:"specifications"`
	ShippingInfo   domain.ShippingInfo `json:"shipping_info"`
	InStock        bool                `json:"in_stock"`
}

func (req ProductRequest) toInput() service.ProductInput {
	return service.ProductInput{
		Name:           req.Name,
		Category:       req.Category,
		Price:          req.Price,
		Currency:       req.Currency,
		Description:    req.Description,
		Images:         req.Images,
		Dimensions:     req.Dimensions,
		Mediums:        req.Mediums,
		Surfaces:       req.Surfaces,
		Features:       req.Features,
		Specifications: req.Specifications,
		ShippingInfo:   req.ShippingInfo,
		InStock:        req.InStock,
	}
}

// UpdateOrderStatusRequest is the JSON request body for moving an order
// through fulfilment.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// --- Catalog ---

// CreateProduct handles POST /api/v1/admin/products
func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	product, err := h.catalog.CreateProduct(r.Context(), req.toInput())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.Header().Set("Location", "/api/v1/products/"+product.ID)
	httputil.WriteData(w, http.StatusCreated, product)
}

// UpdateProduct handles PUT /api/v1/admin/products/{productId}
func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	product, err := h.catalog.UpdateProduct(r.Context(), chi.URLParam(r, "productId"), req.toInput())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, product)
}

// DeleteProduct handles DELETE /api/v1/admin/products/{productId}
func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteProduct(r.Context(), chi.URLParam(r, "productId")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Orders ---

// ListOrders handles GET /api/v1/admin/orders?status=&page=&per_page=
func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	result, err := h.orders.ListOrders(r.Context(), r.URL.Query().Get("status"), pagination.FromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// GetOrder handles GET /api/v1/admin/orders/{orderId}
func (h *AdminHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.GetOrder(r.Context(), chi.URLParam(r, "orderId"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, order)
}

// UpdateOrderStatus handles PUT /api/v1/admin/orders/{orderId}/status
func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateOrderStatusRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), chi.URLParam(r, "orderId"), req.Status)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, order)
}
