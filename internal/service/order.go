package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/africa-markett/storefront/internal/domain"
	"github.com/africa-markett/storefront/internal/repository"
	apperrors "github.com/africa-markett/storefront/pkg/errors"
	"github.com/africa-markett/storefront/pkg/pagination"
)

// OrderEventPublisher publishes order lifecycle events.
type OrderEventPublisher interface {
	PublishOrderStatusChanged(ctx context.Context, order *domain.Order, fromStatus string) error
}

// OrderService reads orders placed at checkout and moves them through
// fulfilment.
type OrderService struct {
	repo   repository.OrderRepository
	events OrderEventPublisher
	logger *slog.Logger
	now    func() time.Time
}

// NewOrderService creates a new order service.
func NewOrderService(repo repository.OrderRepository, events OrderEventPublisher, logger *slog.Logger) *OrderService {
	return &OrderService{
		repo:   repo,
		events: events,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// GetOrder returns any order by ID.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	if id == "" {
		return nil, apperrors.InvalidField("order_id", "is required")
	}

	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

// GetSessionOrder returns an order placed by the given shopper session.
// Orders of other sessions are reported as not found.
func (s *OrderService) GetSessionOrder(ctx context.Context, sessionID, id string) (*domain.Order, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidField("session_id", "X-Session-ID header is required")
	}

	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.SessionID != sessionID {
		return nil, apperrors.NotFound("order", id)
	}
	return order, nil
}

// ListSessionOrders returns the order history of one shopper session.
func (s *OrderService) ListSessionOrders(ctx context.Context, sessionID string, params pagination.Params) (pagination.Result[domain.Order], error) {
	if sessionID == "" {
		return pagination.Result[domain.Order]{}, apperrors.InvalidField("session_id", "X-Session-ID header is required")
	}
	return s.list(ctx, repository.OrderFilter{SessionID: sessionID}, params)
}

// ListOrders returns every order, optionally narrowed to one status.
func (s *OrderService) ListOrders(ctx context.Context, status string, params pagination.Params) (pagination.Result[domain.Order], error) {
	if status != "" {
		if _, err := domain.ParseOrderStatus(status); err != nil {
			return pagination.Result[domain.Order]{}, err
		}
	}
	return s.list(ctx, repository.OrderFilter{Status: status}, params)
}

func (s *OrderService) list(ctx context.Context, filter repository.OrderFilter, params pagination.Params) (pagination.Result[domain.Order], error) {
	filter.Page = params.Page
	filter.PerPage = params.PerPage

	orders, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return pagination.Result[domain.Order]{}, fmt.Errorf("list orders: %w", err)
	}
	return pagination.NewResult(orders, total, params), nil
}

// UpdateStatus moves an order to a new status. Transitions the lifecycle
// does not allow are rejected with a conflict.
func (s *OrderService) UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error) {
	if _, err := domain.ParseOrderStatus(status); err != nil {
		return nil, err
	}

	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	from := order.Status
	if err := order.TransitionTo(status, s.now()); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, order.ID, order.Status, order.UpdatedAt); err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	orderStatusChangesTotal.WithLabelValues(from, order.Status).Inc()

	if err := s.events.PublishOrderStatusChanged(ctx, order, from); err != nil {
		s.logger.WarnContext(ctx, "failed to publish order.status_changed event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order status updated",
		slog.String("order_id", order.ID),
		slog.String("old_status", from),
		slog.String("new_status", order.Status),
	)

	return order, nil
}
