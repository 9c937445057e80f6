package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/africa-markett/storefront/internal/domain"
	apperrors "github.com/africa-markett/storefront/pkg/errors"
)

func productOneReviews() []domain.Review {
	ratings := []int{4, 5, 4, 5, 3, 5, 4, 2}
	out := make([]domain.Review, len(ratings))
	for i, r := range ratings {
		out[i] = domain.Review{ID: i + 3, ProductID: "1", Rating: r, Name: "Reviewer"}
	}
	return out
}

func newTestReviewService(repo *mockReviewRepository) *ReviewService {
	return NewReviewService(repo, newTestLogger(), 5, 50)
}

func TestListReviews_DefaultsToAllFirstPage(t *testing.T) {
	repo := new(mockReviewRepository)
	svc := newTestReviewService(repo)

	repo.On("ListByProductID", mock.Anything, "1").Return(productOneReviews(), nil)

	page, err := svc.ListReviews(context.Background(), ListReviewsInput{ProductID: "1"})

	require.NoError(t, err)
	assert.Equal(t, "all", page.Rating)
	assert.Equal(t, 5, page.Limit)
	assert.Len(t, page.Reviews, 5)
	assert.Equal(t, 8, page.TotalCount)
	assert.Equal(t, 2, page.TotalPages)
	assert.True(t, page.HasMore)
	assert.Equal(t, "4.0", page.Summary.Average.String())
	assert.Equal(t, 8, page.Summary.Total)
	repo.AssertExpectations(t)
}

func TestListReviews_FilterAndPage(t *testing.T) {
	repo := new(mockReviewRepository)
	svc := newTestReviewService(repo)

	repo.On("ListByProductID", mock.Anything, "1").Return(productOneReviews(), nil)
	before := testutil.ToFloat64(reviewQueriesTotal.WithLabelValues("5"))

	page, err := svc.ListReviews(context.Background(), ListReviewsInput{ProductID: "1", Rating: "5", Page: 1, Limit: 2})

	require.NoError(t, err)
	require.Len(t, page.Reviews, 1)
	assert.Equal(t, 8, page.Reviews[0].ID)
	assert.Equal(t, 3, page.TotalCount)
	assert.Equal(t, 2, page.TotalPages)
	assert.False(t, page.HasMore)
	assert.Equal(t, 8, page.Summary.Total, "summary covers the unfiltered set")
	assert.Equal(t, before+1, testutil.ToFloat64(reviewQueriesTotal.WithLabelValues("5")))
}

func TestListReviews_UnknownProductIsEmpty(t *testing.T) {
	repo := new(mockReviewRepository)
	svc := newTestReviewService(repo)

	repo.On("ListByProductID", mock.Anything, "404").Return([]domain.Review{}, nil)

	page, err := svc.ListReviews(context.Background(), ListReviewsInput{ProductID: "404"})

	require.NoError(t, err)
	assert.Empty(t, page.Reviews)
	assert.NotNil(t, page.Reviews)
	assert.Equal(t, 0, page.TotalPages)
	assert.True(t, page.Summary.Average.IsNone())

	data, err := json.Marshal(page.Summary)
	require.NoError(t, err)
	assert.JSONEq(t, `{"average_rating":0,"total_reviews":0,"rating_counts":{"all":0,"1":0,"2":0,"3":0,"4":0,"5":0}}`, string(data))
}

func TestListReviews_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		input ListReviewsInput
	}{
		{"missing product", ListReviewsInput{}},
		{"bad rating", ListReviewsInput{ProductID: "1", Rating: "7"}},
		{"negative page", ListReviewsInput{ProductID: "1", Page: -1}},
		{"negative limit", ListReviewsInput{ProductID: "1", Limit: -5}},
		{"limit above max", ListReviewsInput{ProductID: "1", Limit: 51}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockReviewRepository)
			svc := newTestReviewService(repo)

			_, err := svc.ListReviews(context.Background(), tt.input)

			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
			repo.AssertNotCalled(t, "ListByProductID", mock.Anything, mock.Anything)
		})
	}
}

func TestListReviews_RepositoryError(t *testing.T) {
	repo := new(mockReviewRepository)
	svc := newTestReviewService(repo)

	repo.On("ListByProductID", mock.Anything, "1").Return(nil, errors.New("db down"))

	_, err := svc.ListReviews(context.Background(), ListReviewsInput{ProductID: "1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list reviews")
}

func TestReviewSummary(t *testing.T) {
	repo := new(mockReviewRepository)
	svc := newTestReviewService(repo)
	ctx := context.Background()

	reviews := []domain.Review{
		{ID: 1, ProductID: "8", Rating: 5},
		{ID: 2, ProductID: "8", Rating: 5},
		{ID: 3, ProductID: "8", Rating: 4},
		{ID: 4, ProductID: "8", Rating: 2},
	}
	repo.On("ListByProductID", ctx, "8").Return(reviews, nil)

	summary, err := svc.Summary(ctx, "8")
	require.NoError(t, err)

	data, err := json.Marshal(summary)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"product_id": "8",
		"average_rating": "4.0",
		"total_reviews": 4,
		"rating_counts": {"all": 4, "5": 2, "4": 1, "3": 0, "2": 1, "1": 0}
	}`, string(data))
}
