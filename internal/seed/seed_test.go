package seed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/africa-markett/storefront/internal/domain"
)

func TestProducts(t *testing.T) {
	products, err := Products()
	require.NoError(t, err)
	require.Len(t, products, 4)

	for _, p := range products {
		assert.NoError(t, p.Validate(), "product %s", p.ID)
	}

	baton := products[0]
	assert.Equal(t, "Balerie Baton", baton.Name)
	assert.Equal(t, "97499.99", baton.Price.StringFixed(2))
	assert.Len(t, baton.Dimensions, 5)
	assert.Len(t, baton.Mediums, 4)
	assert.Equal(t, "Ghana", baton.Specifications["Origin"])
	assert.Equal(t, "3-5 business days", baton.ShippingInfo.DeliveryTime)
}

func TestProducts_OfferDefaultSurfaces(t *testing.T) {
	products, err := Products()
	require.NoError(t, err)

	for _, p := range products {
		assert.Equal(t, domain.DefaultSurfaces, p.AllowedSurfaces(), "product %s", p.ID)
	}

	cfg := domain.NewConfiguration("cfg-1", &products[0], time.Date(2025, 9, 11, 10, 4, 0, 0, time.UTC))
	require.NoError(t, cfg.SelectSurface("Glass"))
	assert.Equal(t, "Glass", cfg.SelectedSurface)
}

func TestReviews(t *testing.T) {
	reviews, err := Reviews()
	require.NoError(t, err)
	require.Len(t, reviews, 12)

	store, err := domain.NewReviewStore(reviews)
	require.NoError(t, err)

	assert.Len(t, store.ReviewsForProduct("1"), 8)
	assert.Len(t, store.ReviewsForProduct("2"), 2)
	assert.Len(t, store.ReviewsForProduct("8"), 2)
	assert.Empty(t, store.ReviewsForProduct("3"))

	summary, err := domain.Summarize(store.ReviewsForProduct("1"))
	require.NoError(t, err)
	assert.Equal(t, "4.0", summary.Average.String())
	assert.Equal(t, 3, summary.Counts.Count(5))
	assert.Equal(t, 3, summary.Counts.Count(4))
}
