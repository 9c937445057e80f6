package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/africa-markett/storefront/internal/domain"
	apperrors "github.com/africa-markett/storefront/pkg/errors"
	"github.com/africa-markett/storefront/pkg/pagination"
	"github.com/africa-markett/storefront/pkg/slug"
)

// ProductRepository keeps the catalog in memory in insertion order.
type ProductRepository struct {
	mu       sync.RWMutex
	products []domain.Product
	byID     map[string]int
	bySlug   map[string]int
}

// NewProductRepository validates and indexes products. A missing slug is
// derived from the product name.
func NewProductRepository(products []domain.Product) (*ProductRepository, error) {
	r := &ProductRepository{
		products: make([]domain.Product, 0, len(products)),
		byID:     make(map[string]int, len(products)),
		bySlug:   make(map[string]int, len(products)),
	}

	for i := range products {
		if err := r.insert(products[i]); err != nil {
			return nil, fmt.Errorf("product %q: %w", products[i].ID, err)
		}
	}
	return r, nil
}

// GetByID retrieves a product by its identifier.
func (r *ProductRepository) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.byID[id]
	if !ok {
		return nil, apperrors.NotFound("product", id)
	}
	p := r.products[i]
	return &p, nil
}

// GetBySlug retrieves a product by its slug.
func (r *ProductRepository) GetBySlug(_ context.Context, s string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.bySlug[s]
	if !ok {
		return nil, apperrors.NotFound("product", s)
	}
	p := r.products[i]
	return &p, nil
}

// List returns a 1-indexed page of products in catalog order.
func (r *ProductRepository) List(_ context.Context, page, perPage int) ([]domain.Product, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return pagination.Window(r.products, page-1, perPage), len(r.products), nil
}

// Create appends a product to the catalog.
func (r *ProductRepository) Create(_ context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.insert(*product); err != nil {
		return err
	}
	product.Slug = r.products[len(r.products)-1].Slug
	return nil
}

// Update replaces the product with the same ID.
func (r *ProductRepository) Update(_ context.Context, product *domain.Product) error {
	if err := product.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.byID[product.ID]
	if !ok {
		return apperrors.NotFound("product", product.ID)
	}

	p := *product
	if p.Slug == "" {
		p.Slug = slug.Generate(p.Name)
	}
	if j, taken := r.bySlug[p.Slug]; taken && j != i {
		return apperrors.Conflict(fmt.Sprintf("product slug %q is taken", p.Slug))
	}

	delete(r.bySlug, r.products[i].Slug)
	r.products[i] = p
	r.bySlug[p.Slug] = i
	product.Slug = p.Slug
	return nil
}

// Delete removes a product. Deleting an unknown ID is not found.
func (r *ProductRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.byID[id]
	if !ok {
		return apperrors.NotFound("product", id)
	}

	r.products = slices.Delete(r.products, i, i+1)
	r.reindex()
	return nil
}

// insert must be called with r.mu held or before r is shared.
func (r *ProductRepository) insert(p domain.Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.Slug == "" {
		p.Slug = slug.Generate(p.Name)
	}
	if _, dup := r.byID[p.ID]; dup {
		return apperrors.Conflict(fmt.Sprintf("duplicate product id %q", p.ID))
	}
	if _, dup := r.bySlug[p.Slug]; dup {
		return apperrors.Conflict(fmt.Sprintf("duplicate product slug %q", p.Slug))
	}
	r.byID[p.ID] = len(r.products)
	r.bySlug[p.Slug] = len(r.products)
	r.products = append(r.products, p)
	return nil
}

func (r *ProductRepository) reindex() {
	clear(r.byID)
	clear(r.bySlug)
	for i, p := range r.products {
		r.byID[p.ID] = i
		r.bySlug[p.Slug] = i
	}
}
