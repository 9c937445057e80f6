package repository

import (
	"context"
	"time"

	"github.com/africa-markett/storefront/internal/domain"
)

// ProductRepository defines access to the product catalog.
type ProductRepository interface {
	// GetByID retrieves a product by its identifier.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// GetBySlug retrieves a product by its URL-friendly slug.
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)

	// List returns one page of products (1-indexed) and the total count.
	List(ctx context.Context, page, perPage int) ([]domain.Product, int, error)

	// Create adds a product. A taken ID or slug is a conflict.
	Create(ctx context.Context, product *domain.Product) error

	// Update replaces a product, keeping its position in the catalog.
	Update(ctx context.Context, product *domain.Product) error

	// Delete removes a product. Configurations already opened on it keep
	// their snapshot.
	Delete(ctx context.Context, id string) error
}

// ReviewRepository defines read access to product reviews.
type ReviewRepository interface {
	// ListByProductID returns every review of a product in insertion order.
	// An unknown product yields an empty slice and no error.
	ListByProductID(ctx context.Context, productID string) ([]domain.Review, error)
}

// ConfigurationRepository defines persistence for configurator sessions.
type ConfigurationRepository interface {
	// Get retrieves a configuration by its ID.
	Get(ctx context.Context, id string) (*domain.Configuration, error)

	// Save persists a configuration and restarts its inactivity timeout.
	// cfg.Version must equal the stored version, otherwise Save returns a
	// conflict; a configuration at version 0 may only create a new record.
	// A stored version > 0 whose record is gone yields not found. On success
	// cfg.Version is incremented.
	Save(ctx context.Context, cfg *domain.Configuration) error

	// Delete removes a configuration. Deleting an unknown ID is not an error.
	Delete(ctx context.Context, id string) error
}

// OrderFilter narrows an order listing. Empty fields match everything.
type OrderFilter struct {
	Status    string
	SessionID string
	Page      int
	PerPage   int
}

// OrderRepository defines persistence for orders placed at checkout.
type OrderRepository interface {
	// Create stores a new order. A taken order ID is a conflict.
	Create(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order by its ID.
	GetByID(ctx context.Context, id string) (*domain.Order, error)

	// List returns one page (1-indexed) of matching orders, newest first,
	// and the total match count.
	List(ctx context.Context, filter OrderFilter) ([]domain.Order, int, error)

	// UpdateStatus sets an order's status and update time.
	UpdateStatus(ctx context.Context, id, status string, updatedAt time.Time) error
}
