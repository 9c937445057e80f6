package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/africa-markett/storefront/internal/domain"
	"github.com/africa-markett/storefront/internal/service"
	"github.com/africa-markett/storefront/pkg/httputil"
	"github.com/africa-markett/storefront/pkg/validator"
)

// ConfigurationHandler handles HTTP requests for configurator endpoints.
type ConfigurationHandler struct {
	service *service.ConfiguratorService
	logger  *slog.Logger
}

// NewConfigurationHandler creates a new configuration HTTP handler.
func NewConfigurationHandler(svc *service.ConfiguratorService, logger *slog.Logger) *ConfigurationHandler {
	return &ConfigurationHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// OpenConfigurationRequest is the JSON request body for opening a configuration.
type OpenConfigurationRequest struct {
	ProductID string `json:"product_id" validate:"required,max=64"`
}

// SelectDimensionRequest is the JSON request body for selecting a dimension.
type SelectDimensionRequest struct {
	DimensionID int `json:"dimension_id" validate:"required"`
}

// SelectMediumRequest is the JSON request body for selecting a medium.
type SelectMediumRequest struct {
	MediumID int `json:"medium_id" validate:"required"`
}

// SelectSurfaceRequest is the JSON request body for selecting a surface.
type SelectSurfaceRequest struct {
	Surface string `json:"surface" validate:"required,max=64"`
}

// SetQuantityRequest is the JSON request body for setting the quantity.
// Values below 1 are accepted and clamped to 1.
type SetQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

// SwitchTabRequest is the JSON request body for switching the active tab.
type SwitchTabRequest struct {
	Tab string `json:"tab" validate:"required"`
}

// CheckoutRequest is the JSON request body for confirming an order.
type CheckoutRequest struct {
	PaymentMethod    string `json:"payment_method" validate:"required"`
	DeliveryLocation string `json:"delivery_location" validate:"max=500"`
}

// --- Response DTOs ---

// ConfigurationResponse is a configuration with its derived prices.
type ConfigurationResponse struct {
	*domain.Configuration
	EffectivePrice string              `json:"effective_price"`
	Summary        domain.OrderSummary `json:"summary"`
}

func (h *ConfigurationHandler) toResponse(cfg *domain.Configuration) ConfigurationResponse {
	return ConfigurationResponse{
		Configuration:  cfg,
		EffectivePrice: cfg.EffectivePrice().StringFixed(2),
		Summary:        domain.SummarizeOrder(cfg, h.service.ShippingFee()),
	}
}

// --- Handlers ---

// Open handles POST /api/v1/configurations
func (h *ConfigurationHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req OpenConfigurationRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	cfg, err := h.service.Open(r.Context(), req.ProductID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.Header().Set("Location", "/api/v1/configurations/"+cfg.ID)
	httputil.WriteData(w, http.StatusCreated, h.toResponse(cfg))
}

// Get handles GET /api/v1/configurations/{configurationId}
func (h *ConfigurationHandler) Get(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.service.Get(r.Context(), chi.URLParam(r, "configurationId"))
	h.respond(w, r, cfg, err)
}

// Close handles DELETE /api/v1/configurations/{configurationId}
func (h *ConfigurationHandler) Close(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Close(r.Context(), chi.URLParam(r, "configurationId")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SelectDimension handles PUT /api/v1/configurations/{configurationId}/dimension
func (h *ConfigurationHandler) SelectDimension(w http.ResponseWriter, r *http.Request) {
	var req SelectDimensionRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	cfg, err := h.service.SelectDimension(r.Context(), chi.URLParam(r, "configurationId"), req.DimensionID)
	h.respond(w, r, cfg, err)
}

// SelectMedium handles PUT /api/v1/configurations/{configurationId}/medium
func (h *ConfigurationHandler) SelectMedium(w http.ResponseWriter, r *http.Request) {
	var req SelectMediumRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	cfg, err := h.service.SelectMedium(r.Context(), chi.URLParam(r, "configurationId"), req.MediumID)
	h.respond(w, r, cfg, err)
}

// SelectSurface handles PUT /api/v1/configurations/{configurationId}/surface
func (h *ConfigurationHandler) SelectSurface(w http.ResponseWriter, r *http.Request) {
	var req SelectSurfaceRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	cfg, err := h.service.SelectSurface(r.Context(), chi.URLParam(r, "configurationId"), req.Surface)
	h.respond(w, r, cfg, err)
}

// SetQuantity handles PUT /api/v1/configurations/{configurationId}/quantity
func (h *ConfigurationHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	var req SetQuantityRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	cfg, err := h.service.SetQuantity(r.Context(), chi.URLParam(r, "configurationId"), *req.Quantity)
	h.respond(w, r, cfg, err)
}

// SwitchTab handles PUT /api/v1/configurations/{configurationId}/tab
func (h *ConfigurationHandler) SwitchTab(w http.ResponseWriter, r *http.Request) {
	var req SwitchTabRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	cfg, err := h.service.SwitchTab(r.Context(), chi.URLParam(r, "configurationId"), req.Tab)
	h.respond(w, r, cfg, err)
}

// Summary handles GET /api/v1/configurations/{configurationId}/summary
func (h *ConfigurationHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context(), chi.URLParam(r, "configurationId"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, summary)
}

// Checkout handles POST /api/v1/configurations/{configurationId}/checkout
func (h *ConfigurationHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	order, err := h.service.Checkout(r.Context(), chi.URLParam(r, "configurationId"), service.CheckoutInput{
		PaymentMethod:    req.PaymentMethod,
		DeliveryLocation: req.DeliveryLocation,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusCreated, order)
}

func (h *ConfigurationHandler) respond(w http.ResponseWriter, r *http.Request, cfg *domain.Configuration, err error) {
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, h.toResponse(cfg))
}
