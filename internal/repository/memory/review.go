package memory

import (
	"context"

	"github.com/africa-markett/storefront/internal/domain"
)

// ReviewRepository adapts a domain.ReviewStore to repository.ReviewRepository.
type ReviewRepository struct {
	store *domain.ReviewStore
}

// NewReviewRepository indexes reviews into a new store.
func NewReviewRepository(reviews []domain.Review) (*ReviewRepository, error) {
	store, err := domain.NewReviewStore(reviews)
	if err != nil {
		return nil, err
	}
	return &ReviewRepository{store: store}, nil
}

// ListByProductID returns the product's reviews in insertion order.
func (r *ReviewRepository) ListByProductID(_ context.Context, productID string) ([]domain.Review, error) {
	return r.store.ReviewsForProduct(productID), nil
}

// Len returns the number of indexed reviews.
func (r *ReviewRepository) Len() int { return r.store.Len() }
