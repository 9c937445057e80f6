package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/africa-markett/storefront/internal/service"
	apperrors "github.com/africa-markett/storefront/pkg/errors"
	"github.com/africa-markett/storefront/pkg/httputil"
	"github.com/africa-markett/storefront/pkg/pagination"
)

// ProductHandler handles HTTP requests for catalog and review endpoints.
type ProductHandler struct {
	catalog *service.CatalogService
	reviews *service.ReviewService
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(catalog *service.CatalogService, reviews *service.ReviewService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		catalog: catalog,
		reviews: reviews,
		logger:  logger,
	}
}

// ListProducts handles GET /api/v1/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	result, err := h.catalog.ListProducts(r.Context(), pagination.FromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// GetProduct handles GET /api/v1/products/{productId}. The path segment may
// be a product ID or slug.
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.GetProduct(r.Context(), chi.URLParam(r, "productId"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, product)
}

// ListReviews handles GET /api/v1/products/{productId}/reviews?rating=&page=&limit=
func (h *ProductHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page")
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	result, err := h.reviews.ListReviews(r.Context(), service.ListReviewsInput{
		ProductID: chi.URLParam(r, "productId"),
		Rating:    r.URL.Query().Get("rating"),
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, result)
}

// GetReviewSummary handles GET /api/v1/products/{productId}/reviews/summary
func (h *ProductHandler) GetReviewSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.reviews.Summary(r.Context(), chi.URLParam(r, "productId"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, summary)
}

// queryInt parses an optional integer query parameter. Absent means 0.
func queryInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.InvalidField(key, fmt.Sprintf("must be an integer, got %q", raw))
	}
	return n, nil
}
