package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/africa-markett/storefront/internal/domain"
	"github.com/africa-markett/storefront/internal/repository"
	apperrors "github.com/africa-markett/storefront/pkg/errors"
	"github.com/africa-markett/storefront/pkg/pagination"
)

// CatalogService implements the storefront's catalog reads and the back
// office's catalog edits.
type CatalogService struct {
	repo     repository.ProductRepository
	logger   *slog.Logger
	currency string
	newID    func() string
}

// NewCatalogService creates a new catalog service. Products created without
// a currency are priced in currency.
func NewCatalogService(repo repository.ProductRepository, logger *slog.Logger, currency string) *CatalogService {
	return &CatalogService{
		repo:     repo,
		logger:   logger,
		currency: currency,
		newID:    uuid.NewString,
	}
}

// ProductInput holds the editable fields of a product.
type ProductInput struct {
	Name           string
	Category       string
	Price          decimal.Decimal
	Currency       string
	Description    string
	Images         []string
	Dimensions     []domain.Dimension
	Mediums        []domain.Medium
	Surfaces       []string
	Features       []string
	Specifications map[string]string
	ShippingInfo   domain.ShippingInfo
	InStock        bool
}

func (s *CatalogService) toProduct(id string, in ProductInput) *domain.Product {
	currency := in.Currency
	if currency == "" {
		currency = s.currency
	}
	return &domain.Product{
		ID:             id,
		Name:           strings.TrimSpace(in.Name),
		Category:       in.Category,
		Price:          in.Price,
		Currency:       currency,
		Images:         in.Images,
		Description:    in.Description,
		Dimensions:     in.Dimensions,
		Mediums:        in.Mediums,
		Surfaces:       in.Surfaces,
		Features:       in.Features,
		Specifications: in.Specifications,
		ShippingInfo:   in.ShippingInfo,
		InStock:        in.InStock,
	}
}

// CreateProduct adds a product under a fresh ID. Its slug is derived from
// the name.
func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error) {
	p := s.toProduct(s.newID(), in)
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	catalogChangesTotal.WithLabelValues("create").Inc()

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", p.ID),
		slog.String("slug", p.Slug),
	)
	return p, nil
}

// UpdateProduct replaces every editable field of a product. The slug is
// derived again from the new name.
func (s *CatalogService) UpdateProduct(ctx context.Context, id string, in ProductInput) (*domain.Product, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}

	p := s.toProduct(id, in)
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	catalogChangesTotal.WithLabelValues("update").Inc()

	s.logger.InfoContext(ctx, "product updated", slog.String("product_id", id))
	return p, nil
}

// DeleteProduct removes a product from the catalog.
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("product id is required")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	catalogChangesTotal.WithLabelValues("delete").Inc()

	s.logger.InfoContext(ctx, "product deleted", slog.String("product_id", id))
	return nil
}

// ListProducts returns one page of the catalog.
func (s *CatalogService) ListProducts(ctx context.Context, params pagination.Params) (pagination.Result[domain.Product], error) {
	products, total, err := s.repo.List(ctx, params.Page, params.PerPage)
	if err != nil {
		return pagination.Result[domain.Product]{}, fmt.Errorf("list products: %w", err)
	}
	return pagination.NewResult(products, total, params), nil
}

// GetProduct looks a product up by ID, then by slug.
func (s *CatalogService) GetProduct(ctx context.Context, idOrSlug string) (*domain.Product, error) {
	if idOrSlug == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}

	p, err := s.repo.GetByID(ctx, idOrSlug)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("get product by id: %w", err)
	}

	p, err = s.repo.GetBySlug(ctx, idOrSlug)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("product", idOrSlug)
		}
		return nil, fmt.Errorf("get product by slug: %w", err)
	}
	return p, nil
}
