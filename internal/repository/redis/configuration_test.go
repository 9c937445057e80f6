package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/africa-markett/storefront/internal/domain"
	apperrors "github.com/africa-markett/storefront/pkg/errors"
)

func setupTestRedis(t *testing.T) (*ConfigurationRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	repo := NewConfigurationRepository(client, 2*time.Hour)
	return repo, mr
}

func sampleConfiguration() *domain.Configuration {
	now := time.Date(2025, 9, 11, 10, 4, 0, 0, time.UTC)
	p := &domain.Product{
		ID:       "1",
		Name:     "Balerie Baton",
		Price:    decimal.RequireFromString("97499.99"),
		Currency: "NGN",
		Dimensions: []domain.Dimension{
			{ID: 1, Size: `24" x 19W"`, Price: decimal.RequireFromString("97499.99"), Stock: 5, InStock: true},
			{ID: 2, Size: `30L" x 28W"`, Price: decimal.RequireFromString("167000"), Stock: 10, InStock: true},
		},
		Mediums: []domain.Medium{{ID: 1, Name: "Watercolor"}, {ID: 2, Name: "Oil"}},
	}
	return domain.NewConfiguration("cfg-001", p, now)
}

// ---------------------------------------------------------------------------
// Get
// ---------------------------------------------------------------------------

func TestConfigurationRepository_Get_Success(t *testing.T) {
	repo, mr := setupTestRedis(t)

	cfg := sampleConfiguration()
	require.NoError(t, cfg.SelectDimension(2))
	cfg.SetQuantity(3)
	data, err := json.Marshal(cfg)
	require.NoError(t, err)

	require.NoError(t, mr.Set(keyPrefix+cfg.ID, string(data)))

	got, err := repo.Get(context.Background(), cfg.ID)
	require.NoError(t, err)
	assert.Equal(t, cfg.ID, got.ID)
	assert.Equal(t, "1", got.ProductID)
	assert.Equal(t, 3, got.Quantity)
	assert.Equal(t, domain.TabDetails, got.ActiveTab)
	require.NotNil(t, got.SelectedDimension)
	assert.Equal(t, 2, got.SelectedDimension.ID)
	assert.True(t, got.EffectivePrice().Equal(decimal.RequireFromString("167000")))
	assert.Len(t, got.Dimensions, 2)
	assert.Equal(t, domain.DefaultSurfaces, got.Surfaces)
}

func TestConfigurationRepository_Get_NotFound(t *testing.T) {
	repo, _ := setupTestRedis(t)

	got, err := repo.Get(context.Background(), "missing")
	assert.Nil(t, got)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestConfigurationRepository_Get_InvalidJSON(t *testing.T) {
	repo, mr := setupTestRedis(t)

	require.NoError(t, mr.Set(keyPrefix+"bad", "{{not-json"))

	got, err := repo.Get(context.Background(), "bad")
	assert.Nil(t, got)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal configuration")
}

func TestConfigurationRepository_Get_ConnectionError(t *testing.T) {
	repo, mr := setupTestRedis(t)
	mr.Close()

	_, err := repo.Get(context.Background(), "cfg-001")
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrNotFound)
	assert.Contains(t, err.Error(), "redis get configuration")
}

// ---------------------------------------------------------------------------
// Save
// ---------------------------------------------------------------------------

func TestConfigurationRepository_Save_RoundTrip(t *testing.T) {
	repo, mr := setupTestRedis(t)

	cfg := sampleConfiguration()
	require.NoError(t, cfg.SelectMedium(2))
	require.NoError(t, cfg.SwitchTab("reviews"))
	require.NoError(t, repo.Save(context.Background(), cfg))

	assert.True(t, mr.Exists(keyPrefix+cfg.ID))

	got, err := repo.Get(context.Background(), cfg.ID)
	require.NoError(t, err)
	assert.Equal(t, "Oil", got.SelectedMedium.Name)
	assert.Equal(t, domain.TabReviews, got.ActiveTab)
	assert.True(t, got.CreatedAt.Equal(cfg.CreatedAt))
}

func TestConfigurationRepository_Save_TTL(t *testing.T) {
	repo, mr := setupTestRedis(t)

	cfg := sampleConfiguration()
	require.NoError(t, repo.Save(context.Background(), cfg))

	assert.Equal(t, 2*time.Hour, mr.TTL(keyPrefix+cfg.ID))

	mr.FastForward(time.Hour)
	require.NoError(t, repo.Save(context.Background(), cfg))
	assert.Equal(t, 2*time.Hour, mr.TTL(keyPrefix+cfg.ID))

	mr.FastForward(2*time.Hour + time.Second)
	_, err := repo.Get(context.Background(), cfg.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// ---------------------------------------------------------------------------
// Delete
// ---------------------------------------------------------------------------

func TestConfigurationRepository_Delete(t *testing.T) {
	repo, mr := setupTestRedis(t)

	cfg := sampleConfiguration()
	require.NoError(t, repo.Save(context.Background(), cfg))

	require.NoError(t, repo.Delete(context.Background(), cfg.ID))
	assert.False(t, mr.Exists(keyPrefix+cfg.ID))

	assert.NoError(t, repo.Delete(context.Background(), "nonexistent"))
}

func TestConfigurationRepository_Save_BumpsVersion(t *testing.T) {
	repo, mr := setupTestRedis(t)
	ctx := context.Background()

	cfg := sampleConfiguration()
	require.NoError(t, repo.Save(ctx, cfg))
	assert.Equal(t, int64(1), cfg.Version)

	cfg.SetQuantity(2)
	require.NoError(t, repo.Save(ctx, cfg))
	assert.Equal(t, int64(2), cfg.Version)

	raw, err := mr.Get(keyPrefix + cfg.ID)
	require.NoError(t, err)
	assert.Contains(t, raw, `"version":2`)
}

func TestConfigurationRepository_Save_StaleVersionConflicts(t *testing.T) {
	repo, _ := setupTestRedis(t)
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, sampleConfiguration()))

	first, err := repo.Get(ctx, "cfg-001")
	require.NoError(t, err)
	second, err := repo.Get(ctx, "cfg-001")
	require.NoError(t, err)

	require.NoError(t, first.SelectMedium(2))
	require.NoError(t, repo.Save(ctx, first))

	second.SetQuantity(5)
	err = repo.Save(ctx, second)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Equal(t, int64(1), second.Version)

	got, err := repo.Get(ctx, "cfg-001")
	require.NoError(t, err)
	assert.Equal(t, "Oil", got.SelectedMedium.Name)
	assert.Equal(t, 1, got.Quantity)
}

func TestConfigurationRepository_Save_ExpiredSessionIsNotRecreated(t *testing.T) {
	repo, mr := setupTestRedis(t)
	ctx := context.Background()

	cfg := sampleConfiguration()
	require.NoError(t, repo.Save(ctx, cfg))
	require.NoError(t, repo.Delete(ctx, cfg.ID))

	err := repo.Save(ctx, cfg)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.False(t, mr.Exists(keyPrefix+cfg.ID))
}

func TestConfigurationRepository_Save_DuplicateCreateConflicts(t *testing.T) {
	repo, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, sampleConfiguration()))

	err := repo.Save(ctx, sampleConfiguration())
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}
