package domain

import (
	"fmt"

	apperrors "github.com/africa-markett/storefront/pkg/errors"
)

// ReviewStore is an immutable, per-product index over a review collection.
// Reviews are grouped by their own ProductID and keep insertion order.
type ReviewStore struct {
	byProduct map[string][]Review
	total     int
}

// NewReviewStore indexes reviews. Review IDs must be unique across the whole
// collection and every rating must be in 1..5.
func NewReviewStore(reviews []Review) (*ReviewStore, error) {
	s := &ReviewStore{byProduct: make(map[string][]Review)}
	seen := make(map[int]struct{}, len(reviews))

	for _, r := range reviews {
		if _, dup := seen[r.ID]; dup {
			return nil, apperrors.InvalidField("id", fmt.Sprintf("duplicate review id %d", r.ID))
		}
		seen[r.ID] = struct{}{}

		if err := ValidateRating(r.Rating); err != nil {
			return nil, fmt.Errorf("review %d: %w", r.ID, err)
		}
		s.byProduct[r.ProductID] = append(s.byProduct[r.ProductID], r)
	}
	s.total = len(reviews)
	return s, nil
}

// ReviewsForProduct returns a copy of the product's reviews in insertion
// order. An unknown product yields an empty slice.
func (s *ReviewStore) ReviewsForProduct(productID string) []Review {
	src := s.byProduct[productID]
	out := make([]Review, len(src))
	copy(out, src)
	return out
}

// Len returns the number of reviews across all products.
func (s *ReviewStore) Len() int { return s.total }
