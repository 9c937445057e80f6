package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/africa-markett/storefront/internal/service"
	"github.com/africa-markett/storefront/pkg/health"
	"github.com/africa-markett/storefront/pkg/middleware"
)

// RouterConfig holds the tunables of the HTTP surface.
type RouterConfig struct {
	ServiceName    string
	PprofCIDRs     []string
	AdminCIDRs     []string
	RateLimitRPS   float64
	RateLimitBurst int
	CacheMaxAge    int
	CORS           middleware.CORSConfig
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(
	catalog *service.CatalogService,
	reviews *service.ReviewService,
	configurator *service.ConfiguratorService,
	orders *service.OrderService,
	healthHandler *health.Handler,
	logger *slog.Logger,
	cfg RouterConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	productHandler := NewProductHandler(catalog, reviews, logger)
	configurationHandler := NewConfigurationHandler(configurator, logger)
	orderHandler := NewOrderHandler(orders, logger)
	adminHandler := NewAdminHandler(catalog, orders, logger)

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Use(middleware.CacheControl(cfg.CacheMaxAge))

		r.Get("/", productHandler.ListProducts)
		r.Get("/{productId}", productHandler.GetProduct)
		r.Get("/{productId}/reviews", productHandler.ListReviews)
		r.Get("/{productId}/reviews/summary", productHandler.GetReviewSummary)
	})

	r.Route("/api/v1/configurations", func(r chi.Router) {
		r.Use(middleware.NoStore)
		r.Use(ContentTypeJSON)
		r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, logger))

		r.Post("/", configurationHandler.Open)
		r.Route("/{configurationId}", func(r chi.Router) {
			r.Get("/", configurationHandler.Get)
			r.Delete("/", configurationHandler.Close)
			r.Put("/dimension", configurationHandler.SelectDimension)
			r.Put("/medium", configurationHandler.SelectMedium)
			r.Put("/surface", configurationHandler.SelectSurface)
			r.Put("/quantity", configurationHandler.SetQuantity)
			r.Put("/tab", configurationHandler.SwitchTab)
			r.Get("/summary", configurationHandler.Summary)
			r.Post("/checkout", configurationHandler.Checkout)
		})
	})

	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Use(middleware.NoStore)

		r.Get("/", orderHandler.List)
		r.Get("/{orderId}", orderHandler.Get)
	})

	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(middleware.IPAllowlist(cfg.AdminCIDRs, logger))
		r.Use(middleware.NoStore)
		r.Use(ContentTypeJSON)

		r.Post("/products", adminHandler.CreateProduct)
		r.Put("/products/{productId}", adminHandler.UpdateProduct)
		r.Delete("/products/{productId}", adminHandler.DeleteProduct)

		r.Get("/orders", adminHandler.ListOrders)
		r.Get("/orders/{orderId}", adminHandler.GetOrder)
		r.Put("/orders/{orderId}/status", adminHandler.UpdateOrderStatus)
	})

	return r
}
