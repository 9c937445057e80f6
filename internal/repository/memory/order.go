package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/africa-markett/storefront/internal/domain"
	"github.com/africa-markett/storefront/internal/repository"
	apperrors "github.com/africa-markett/storefront/pkg/errors"
	"github.com/africa-markett/storefront/pkg/pagination"
)

// OrderRepository keeps orders in process memory. Orders are lost on
// restart.
type OrderRepository struct {
	mu     sync.RWMutex
	orders map[string]domain.Order
}

// NewOrderRepository creates an empty order store.
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{orders: make(map[string]domain.Order)}
}

// Create stores a copy of order.
func (r *OrderRepository) Create(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.orders[order.ID]; dup {
		return apperrors.Conflict(fmt.Sprintf("order %s already exists", order.ID))
	}
	r.orders[order.ID] = *order
	return nil
}

// GetByID retrieves an order by its ID.
func (r *OrderRepository) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, apperrors.NotFound("order", id)
	}
	return &o, nil
}

// List returns matching orders newest first. Orders created in the same
// instant are ordered by descending ID.
func (r *OrderRepository) List(_ context.Context, filter repository.OrderFilter) ([]domain.Order, int, error) {
	r.mu.RLock()
	matched := make([]domain.Order, 0, len(r.orders))
	for _, o := range r.orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.SessionID != "" && o.SessionID != filter.SessionID {
			continue
		}
		matched = append(matched, o)
	}
	r.mu.RUnlock()

	slices.SortFunc(matched, func(a, b domain.Order) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})

	return pagination.Window(matched, filter.Page-1, filter.PerPage), len(matched), nil
}

// UpdateStatus sets an order's status and update time.
func (r *OrderRepository) UpdateStatus(_ context.Context, id, status string, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return apperrors.NotFound("order", id)
	}
	o.Status = status
	o.UpdatedAt = updatedAt
	r.orders[id] = o
	return nil
}

// Len returns the number of stored orders.
func (r *OrderRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.orders)
}
