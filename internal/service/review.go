package service

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/africa-markett/storefront/internal/domain"
	"github.com/africa-markett/storefront/internal/repository"
	apperrors "github.com/africa-markett/storefront/pkg/errors"
	"github.com/africa-markett/storefront/pkg/tracing"
)

// ListReviewsInput holds the parameters for listing a product's reviews.
// Page is zero-indexed; a zero Limit selects the default page size.
type ListReviewsInput struct {
	ProductID string
	Rating    string
	Page      int
	Limit     int
}

// ReviewPage is one page of a product's reviews together with the summary
// of all of its reviews. TotalCount and TotalPages describe the filtered set.
type ReviewPage struct {
	ProductID  string               `json:"product_id"`
	Reviews    []domain.Review      `json:"reviews"`
	Rating     string               `json:"rating"`
	Page       int                  `json:"page"`
	Limit      int                  `json:"limit"`
	TotalCount int                  `json:"total_count"`
	TotalPages int                  `json:"total_pages"`
	HasMore    bool                 `json:"has_more"`
	Summary    domain.RatingSummary `json:"summary"`
}

// ReviewSummary is the rating summary of one product.
type ReviewSummary struct {
	ProductID string `json:"product_id"`
	domain.RatingSummary
}

// ReviewService implements the business logic for review queries.
type ReviewService struct {
	repo         repository.ReviewRepository
	logger       *slog.Logger
	defaultLimit int
	maxLimit     int
}

// NewReviewService creates a new review service.
func NewReviewService(repo repository.ReviewRepository, logger *slog.Logger, defaultLimit, maxLimit int) *ReviewService {
	return &ReviewService{
		repo:         repo,
		logger:       logger,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// ListReviews filters a product's reviews by rating and returns the
// requested page. An unknown product has no reviews.
func (s *ReviewService) ListReviews(ctx context.Context, in ListReviewsInput) (_ *ReviewPage, err error) {
	ctx, span := tracing.StartSpan(ctx, "ReviewService.ListReviews",
		attribute.String("product.id", in.ProductID),
		attribute.String("review.rating_filter", in.Rating),
	)
	defer span.End()
	defer func() { err = tracing.RecordError(span, err) }()

	if in.ProductID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	filter, err := domain.ParseRatingFilter(in.Rating)
	if err != nil {
		return nil, err
	}
	if in.Page < 0 {
		return nil, apperrors.InvalidField("page", "must not be negative")
	}
	limit := in.Limit
	if limit == 0 {
		limit = s.defaultLimit
	}
	if limit < 1 || limit > s.maxLimit {
		return nil, apperrors.InvalidField("limit", fmt.Sprintf("must be between 1 and %d", s.maxLimit))
	}

	reviews, err := s.repo.ListByProductID(ctx, in.ProductID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	summary, err := domain.Summarize(reviews)
	if err != nil {
		return nil, fmt.Errorf("summarize reviews: %w", err)
	}

	filtered := domain.FilterByRating(reviews, filter)
	totalPages := domain.TotalPages(filtered, limit)
	reviewQueriesTotal.WithLabelValues(filter.String()).Inc()

	return &ReviewPage{
		ProductID:  in.ProductID,
		Reviews:    domain.Paginate(filtered, in.Page, limit),
		Rating:     filter.String(),
		Page:       in.Page,
		Limit:      limit,
		TotalCount: len(filtered),
		TotalPages: totalPages,
		HasMore:    in.Page+1 < totalPages,
		Summary:    summary,
	}, nil
}

// Summary returns the average rating and rating histogram of a product.
func (s *ReviewService) Summary(ctx context.Context, productID string) (*ReviewSummary, error) {
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}

	reviews, err := s.repo.ListByProductID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	summary, err := domain.Summarize(reviews)
	if err != nil {
		return nil, fmt.Errorf("summarize reviews: %w", err)
	}

	return &ReviewSummary{ProductID: productID, RatingSummary: summary}, nil
}
