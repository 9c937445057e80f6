package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/africa-markett/storefront/internal/domain"
	pkgkafka "github.com/africa-markett/storefront/pkg/kafka"
	"github.com/africa-markett/storefront/pkg/logger"
)

// Kafka topic constants for storefront domain events.
const (
	TopicConfigurationOpened = "storefront.configuration.opened"
	TopicCheckoutRequested   = "storefront.checkout.requested"
	TopicOrderStatusChanged  = "storefront.order.status_changed"
)

// Aggregate type constants.
const (
	AggregateTypeConfiguration = "configuration"
	AggregateTypeOrder         = "order"
)

// SourceStorefrontService identifies events originating from this service.
const SourceStorefrontService = "storefront-service"

// ConfigurationOpenedData is the payload for a configuration.opened event.
type ConfigurationOpenedData struct {
	ConfigurationID string `json:"configuration_id"`
	ProductID       string `json:"product_id"`
	DimensionID     *int   `json:"dimension_id,omitempty"`
	MediumID        *int   `json:"medium_id,omitempty"`
	Surface         string `json:"surface"`
}

// CheckoutRequestedData is the payload for a checkout.requested event.
type CheckoutRequestedData struct {
	OrderID          string              `json:"order_id"`
	ConfigurationID  string              `json:"configuration_id"`
	ProductID        string              `json:"product_id"`
	DimensionID      int                 `json:"dimension_id"`
	MediumID         int                 `json:"medium_id"`
	Surface          string              `json:"surface"`
	PaymentMethod    string              `json:"payment_method"`
	DeliveryLocation string              `json:"delivery_location"`
	Summary          domain.OrderSummary `json:"summary"`
}

// OrderStatusChangedData is the payload for an order.status_changed event.
type OrderStatusChangedData struct {
	OrderID    string    `json:"order_id"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	ChangedAt  time.Time `json:"changed_at"`
}

type publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes storefront domain events to Kafka. A Producer built
// without a Kafka publisher drops every event.
type Producer struct {
	kafka  publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer. Pass a nil kafka producer when
// Kafka is disabled.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	if kafka == nil {
		return &Producer{logger: logger}
	}
	return &Producer{kafka: kafka, logger: logger}
}

// Enabled reports whether events are actually sent.
func (p *Producer) Enabled() bool { return p.kafka != nil }

// PublishConfigurationOpened publishes a configuration.opened event.
func (p *Producer) PublishConfigurationOpened(ctx context.Context, cfg *domain.Configuration) error {
	data := ConfigurationOpenedData{
		ConfigurationID: cfg.ID,
		ProductID:       cfg.ProductID,
		Surface:         cfg.SelectedSurface,
	}
	if cfg.SelectedDimension != nil {
		data.DimensionID = &cfg.SelectedDimension.ID
	}
	if cfg.SelectedMedium != nil {
		data.MediumID = &cfg.SelectedMedium.ID
	}

	return p.publish(ctx, TopicConfigurationOpened, cfg.ID, AggregateTypeConfiguration, data)
}

// PublishCheckoutRequested publishes a checkout.requested event.
func (p *Producer) PublishCheckoutRequested(ctx context.Context, order *domain.Order) error {
	data := CheckoutRequestedData{
		OrderID:          order.ID,
		ConfigurationID:  order.ConfigurationID,
		ProductID:        order.ProductID,
		DimensionID:      order.Dimension.ID,
		MediumID:         order.Medium.ID,
		Surface:          order.Surface,
		PaymentMethod:    string(order.PaymentMethod),
		DeliveryLocation: order.DeliveryLocation,
		Summary:          order.Summary,
	}

	return p.publish(ctx, TopicCheckoutRequested, order.ID, AggregateTypeOrder, data)
}

// PublishOrderStatusChanged publishes an order.status_changed event for an
// order that just moved out of fromStatus.
func (p *Producer) PublishOrderStatusChanged(ctx context.Context, order *domain.Order, fromStatus string) error {
	data := OrderStatusChangedData{
		OrderID:    order.ID,
		FromStatus: fromStatus,
		ToStatus:   order.Status,
		ChangedAt:  order.UpdatedAt,
	}

	return p.publish(ctx, TopicOrderStatusChanged, order.ID, AggregateTypeOrder, data)
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	if p.kafka == nil {
		return nil
	}

	event, err := pkgkafka.NewEvent(topic, SourceStorefrontService,
		pkgkafka.Aggregate{Type: aggregateType, ID: aggregateID}, data,
		pkgkafka.WithCorrelationID(logger.CorrelationIDFromContext(ctx)),
		pkgkafka.WithSessionID(logger.SessionIDFromContext(ctx)),
	)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)

	return nil
}
