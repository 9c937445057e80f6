package service

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/africa-markett/storefront/internal/domain"
	"github.com/africa-markett/storefront/internal/repository"
)

// --- Mock Repositories ---

type mockProductRepository struct {
	mock.Mock
}

func (m *mockProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepository) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepository) List(ctx context.Context, page, perPage int) ([]domain.Product, int, error) {
	args := m.Called(ctx, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Product), args.Int(1), args.Error(2)
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockReviewRepository struct {
	mock.Mock
}

func (m *mockReviewRepository) ListByProductID(ctx context.Context, productID string) ([]domain.Review, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Review), args.Error(1)
}

type mockConfigurationRepository struct {
	mock.Mock
}

func (m *mockConfigurationRepository) Get(ctx context.Context, id string) (*domain.Configuration, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Configuration), args.Error(1)
}

func (m *mockConfigurationRepository) Save(ctx context.Context, cfg *domain.Configuration) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

func (m *mockConfigurationRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockOrderRepository struct {
	mock.Mock
}

func (m *mockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *mockOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Order), args.Int(1), args.Error(2)
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, id, status string, updatedAt time.Time) error {
	args := m.Called(ctx, id, status, updatedAt)
	return args.Error(0)
}

// --- Mock Event Publisher ---

type mockEventPublisher struct {
	mock.Mock
}

func (m *mockEventPublisher) PublishConfigurationOpened(ctx context.Context, cfg *domain.Configuration) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

func (m *mockEventPublisher) PublishCheckoutRequested(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *mockEventPublisher) PublishOrderStatusChanged(ctx context.Context, order *domain.Order, fromStatus string) error {
	args := m.Called(ctx, order, fromStatus)
	return args.Error(0)
}

// --- Test Helpers ---

var fixedNow = time.Date(2025, 9, 11, 10, 4, 0, 0, time.UTC)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func sampleProduct() *domain.Product {
	return &domain.Product{
		ID:       "1",
		Slug:     "balerie-baton",
		Name:     "Balerie Baton",
		Category: "Art & Craft",
		Price:    decimal.RequireFromString("97499.99"),
		Currency: "NGN",
		Dimensions: []domain.Dimension{
			{ID: 1, Size: `24" x 19W"`, Price: decimal.NewFromInt(1000), Stock: 5, InStock: true},
			{ID: 2, Size: `30L" x 28W"`, Price: decimal.RequireFromString("167000"), Stock: 0, InStock: true},
		},
		Mediums: []domain.Medium{
			{ID: 1, Name: "Watercolor"},
			{ID: 2, Name: "Oil"},
		},
		InStock: true,
	}
}

func sampleConfiguration() *domain.Configuration {
	return domain.NewConfiguration("cfg-1", sampleProduct(), fixedNow)
}

func sampleOrder() *domain.Order {
	cfg := sampleConfiguration()
	order, err := domain.NewOrder("ORD20250911-10040042", cfg, domain.PaymentPaystack, "Ikeja, Lagos", decimal.NewFromInt(50), fixedNow)
	if err != nil {
		panic(err)
	}
	order.SessionID = "sess-1"
	return order
}
