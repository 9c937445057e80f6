package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/africa-markett/storefront/internal/domain"
	"github.com/africa-markett/storefront/internal/repository"
	apperrors "github.com/africa-markett/storefront/pkg/errors"
	"github.com/africa-markett/storefront/pkg/logger"
	"github.com/africa-markett/storefront/pkg/tracing"
)

// EventPublisher publishes configurator domain events.
type EventPublisher interface {
	PublishConfigurationOpened(ctx context.Context, cfg *domain.Configuration) error
	PublishCheckoutRequested(ctx context.Context, order *domain.Order) error
}

// CheckoutInput holds the parameters for confirming an order.
type CheckoutInput struct {
	PaymentMethod    string
	DeliveryLocation string
}

// ConfiguratorService implements the product detail view's selection state:
// one configuration per open view, persisted between requests.
type ConfiguratorService struct {
	products    repository.ProductRepository
	repo        repository.ConfigurationRepository
	orders      repository.OrderRepository
	events      EventPublisher
	logger      *slog.Logger
	shippingFee decimal.Decimal

	now         func() time.Time
	newID       func() string
	orderSuffix func() int
}

// NewConfiguratorService creates a new configurator service that charges
// shippingFee on every order and records checkouts in orders.
func NewConfiguratorService(
	products repository.ProductRepository,
	repo repository.ConfigurationRepository,
	orders repository.OrderRepository,
	events EventPublisher,
	logger *slog.Logger,
	shippingFee decimal.Decimal,
) *ConfiguratorService {
	return &ConfiguratorService{
		products:    products,
		repo:        repo,
		orders:      orders,
		events:      events,
		logger:      logger,
		shippingFee: shippingFee,
		now:         func() time.Time { return time.Now().UTC() },
		newID:       uuid.NewString,
		orderSuffix: func() int { return rand.IntN(10000) },
	}
}

// ShippingFee returns the flat fee added to every order.
func (s *ConfiguratorService) ShippingFee() decimal.Decimal { return s.shippingFee }

// Open starts a configuration for a product with its default selections.
func (s *ConfiguratorService) Open(ctx context.Context, productID string) (*domain.Configuration, error) {
	if productID == "" {
		return nil, apperrors.InvalidField("product_id", "is required")
	}

	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}

	cfg := domain.NewConfiguration(s.newID(), p, s.now())
	if err := s.repo.Save(ctx, cfg); err != nil {
		return nil, fmt.Errorf("save configuration: %w", err)
	}

	if err := s.events.PublishConfigurationOpened(ctx, cfg); err != nil {
		s.logger.WarnContext(ctx, "failed to publish configuration.opened event",
			slog.String("configuration_id", cfg.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "configuration opened",
		slog.String("configuration_id", cfg.ID),
		slog.String("product_id", cfg.ProductID),
	)

	return cfg, nil
}

// Get returns a configuration by ID.
func (s *ConfiguratorService) Get(ctx context.Context, id string) (*domain.Configuration, error) {
	cfg, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get configuration: %w", err)
	}
	return cfg, nil
}

// Close discards a configuration when its view goes away. Closing an
// unknown or expired configuration is not an error.
func (s *ConfiguratorService) Close(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete configuration: %w", err)
	}

	s.logger.InfoContext(ctx, "configuration closed", slog.String("configuration_id", id))
	return nil
}

// SelectDimension selects one of the product's dimensions. Out-of-stock
// dimensions are accepted.
func (s *ConfiguratorService) SelectDimension(ctx context.Context, id string, dimensionID int) (*domain.Configuration, error) {
	return s.mutate(ctx, id, "select_dimension", func(c *domain.Configuration) error {
		if err := c.SelectDimension(dimensionID); err != nil {
			return err
		}
		if c.SelectedDimension.StockMismatch() {
			s.logger.WarnContext(ctx, "selected dimension has inconsistent stock data",
				slog.String("product_id", c.ProductID),
				slog.Int("dimension_id", dimensionID),
				slog.Int("stock", c.SelectedDimension.Stock),
				slog.Bool("in_stock", c.SelectedDimension.InStock),
			)
		}
		return nil
	})
}

// SelectMedium selects one of the product's mediums.
func (s *ConfiguratorService) SelectMedium(ctx context.Context, id string, mediumID int) (*domain.Configuration, error) {
	return s.mutate(ctx, id, "select_medium", func(c *domain.Configuration) error {
		return c.SelectMedium(mediumID)
	})
}

// SelectSurface selects one of the allowed surfaces.
func (s *ConfiguratorService) SelectSurface(ctx context.Context, id, surface string) (*domain.Configuration, error) {
	return s.mutate(ctx, id, "select_surface", func(c *domain.Configuration) error {
		return c.SelectSurface(surface)
	})
}

// SetQuantity sets the quantity, clamping values below 1 to 1.
func (s *ConfiguratorService) SetQuantity(ctx context.Context, id string, quantity int) (*domain.Configuration, error) {
	return s.mutate(ctx, id, "set_quantity", func(c *domain.Configuration) error {
		c.SetQuantity(quantity)
		return nil
	})
}

// SwitchTab activates a content tab.
func (s *ConfiguratorService) SwitchTab(ctx context.Context, id, tab string) (*domain.Configuration, error) {
	return s.mutate(ctx, id, "switch_tab", func(c *domain.Configuration) error {
		return c.SwitchTab(tab)
	})
}

// Summary prices a configuration with the shipping fee.
func (s *ConfiguratorService) Summary(ctx context.Context, id string) (domain.OrderSummary, error) {
	cfg, err := s.Get(ctx, id)
	if err != nil {
		return domain.OrderSummary{}, err
	}
	return domain.SummarizeOrder(cfg, s.shippingFee), nil
}

// Checkout confirms and stores an order for a configuration, tagged with the
// caller's session. No payment is taken; the order is handed on through a
// checkout.requested event.
func (s *ConfiguratorService) Checkout(ctx context.Context, id string, in CheckoutInput) (_ *domain.Order, err error) {
	ctx, span := tracing.StartSpan(ctx, "ConfiguratorService.Checkout",
		attribute.String("configuration.id", id),
		attribute.String("payment.method", in.PaymentMethod),
	)
	defer span.End()
	defer func() { err = tracing.RecordError(span, err) }()

	method, err := domain.ParsePaymentMethod(in.PaymentMethod)
	if err != nil {
		return nil, err
	}

	cfg, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	order, err := s.placeOrder(ctx, cfg, method, in.DeliveryLocation)
	if err != nil {
		return nil, err
	}
	checkoutsTotal.WithLabelValues(string(method)).Inc()

	if err := s.events.PublishCheckoutRequested(ctx, order); err != nil {
		s.logger.WarnContext(ctx, "failed to publish checkout.requested event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "checkout requested",
		slog.String("order_id", order.ID),
		slog.String("configuration_id", cfg.ID),
		slog.String("product_id", cfg.ProductID),
		slog.String("payment_method", string(method)),
		slog.String("total", order.Summary.Total.StringFixed(2)),
	)

	return order, nil
}

// maxOrderIDAttempts bounds how often checkout draws a new order ID after
// colliding with an existing order.
const maxOrderIDAttempts = 3

// placeOrder builds the order for cfg and stores it, drawing a fresh ID
// suffix when the generated one is already taken.
func (s *ConfiguratorService) placeOrder(ctx context.Context, cfg *domain.Configuration, method domain.PaymentMethod, location string) (*domain.Order, error) {
	sessionID := logger.SessionIDFromContext(ctx)

	var err error
	for attempt := 1; attempt <= maxOrderIDAttempts; attempt++ {
		now := s.now()
		var order *domain.Order
		order, err = domain.NewOrder(domain.OrderID(now, s.orderSuffix()), cfg, method, location, s.shippingFee, now)
		if err != nil {
			selectionsRejectedTotal.WithLabelValues("checkout").Inc()
			return nil, err
		}
		order.SessionID = sessionID

		err = s.orders.Create(ctx, order)
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, apperrors.ErrConflict) {
			return nil, fmt.Errorf("store order: %w", err)
		}
		s.logger.WarnContext(ctx, "order id collision, retrying",
			slog.String("order_id", order.ID),
			slog.Int("attempt", attempt),
		)
	}
	return nil, fmt.Errorf("store order: %w", err)
}

// maxSaveAttempts bounds how often mutate re-reads and reapplies a change
// that lost a race with another request on the same configuration.
const maxSaveAttempts = 3

// mutate loads a configuration, applies fn and saves the result. A rejected
// change leaves the stored configuration untouched. Saves are versioned, so
// a concurrent change makes mutate start over from the fresh state; after
// maxSaveAttempts the conflict is returned.
func (s *ConfiguratorService) mutate(ctx context.Context, id, operation string, fn func(*domain.Configuration) error) (*domain.Configuration, error) {
	var (
		cfg *domain.Configuration
		err error
	)
	for attempt := 1; attempt <= maxSaveAttempts; attempt++ {
		cfg, err = s.Get(ctx, id)
		if err != nil {
			return nil, err
		}

		if err := fn(cfg); err != nil {
			selectionsRejectedTotal.WithLabelValues(operation).Inc()
			s.logger.InfoContext(ctx, "configuration change rejected",
				slog.String("configuration_id", id),
				slog.String("operation", operation),
				slog.String("error", err.Error()),
			)
			return nil, err
		}

		cfg.Touch(s.now())
		err = s.repo.Save(ctx, cfg)
		if err == nil || !errors.Is(err, apperrors.ErrConflict) {
			break
		}
		configurationConflictsTotal.Inc()
		s.logger.DebugContext(ctx, "configuration changed concurrently, retrying",
			slog.String("configuration_id", id),
			slog.String("operation", operation),
			slog.Int("attempt", attempt),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("save configuration: %w", err)
	}

	s.logger.InfoContext(ctx, "configuration updated",
		slog.String("configuration_id", id),
		slog.String("operation", operation),
		slog.Int("quantity", cfg.Quantity),
		slog.String("effective_price", cfg.EffectivePrice().StringFixed(2)),
	)

	return cfg, nil
}
