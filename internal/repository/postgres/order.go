package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/africa-markett/storefront/internal/domain"
	"github.com/africa-markett/storefront/internal/repository"
	"github.com/africa-markett/storefront/pkg/database"
	apperrors "github.com/africa-markett/storefront/pkg/errors"
)

const uniqueViolation = "23505"

// OrderRepository implements repository.OrderRepository using PostgreSQL.
// Amounts travel as text so no precision is lost between NUMERIC and
// decimal.Decimal.
type OrderRepository struct {
	pool database.DBTX
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool database.DBTX) *OrderRepository {
	return &OrderRepository{pool: pool}
}

const orderColumns = `id, configuration_id, session_id, product_id, dimension, medium, surface,
		payment_method, delivery_location, unit_price::text, quantity, subtotal::text,
		shipping_fee::text, total::text, currency, status, created_at, updated_at`

const insertOrderQuery = `
		INSERT INTO orders (id, configuration_id, session_id, product_id, dimension, medium, surface,
			payment_method, delivery_location, unit_price, quantity, subtotal, shipping_fee, total,
			currency, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::numeric, $11, $12::numeric, $13::numeric,
			$14::numeric, $15, $16, $17, $18)`

// Create inserts a new order.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) (err error) {
	ctx, end := database.TraceQuery(ctx, "CreateOrder", insertOrderQuery)
	defer func() { end(err) }()

	dimensionJSON, err := json.Marshal(o.Dimension)
	if err != nil {
		return fmt.Errorf("marshal dimension: %w", err)
	}
	mediumJSON, err := json.Marshal(o.Medium)
	if err != nil {
		return fmt.Errorf("marshal medium: %w", err)
	}

	_, err = r.pool.Exec(ctx, insertOrderQuery,
		o.ID,
		o.ConfigurationID,
		o.SessionID,
		o.ProductID,
		dimensionJSON,
		mediumJSON,
		o.Surface,
		string(o.PaymentMethod),
		o.DeliveryLocation,
		o.Summary.UnitPrice.String(),
		o.Summary.Quantity,
		o.Summary.Subtotal.String(),
		o.Summary.ShippingFee.String(),
		o.Summary.Total.String(),
		o.Summary.Currency,
		o.Status,
		o.CreatedAt,
		o.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperrors.Conflict(fmt.Sprintf("order %s already exists", o.ID))
		}
		return fmt.Errorf("insert order: %w", err)
	}

	return nil
}

const getOrderQuery = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

// GetByID retrieves an order by its ID.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (_ *domain.Order, err error) {
	ctx, end := database.TraceQuery(ctx, "GetOrder", getOrderQuery)
	defer func() { end(err) }()

	o, err := scanOrder(r.pool.QueryRow(ctx, getOrderQuery, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("order", id)
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	return o, nil
}

// List returns one page of matching orders, newest first, with the total
// match count.
func (r *OrderRepository) List(ctx context.Context, filter repository.OrderFilter) (_ []domain.Order, _ int, err error) {
	var (
		conditions []string
		args       []any
	)
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.SessionID != "" {
		args = append(args, filter.SessionID)
		conditions = append(conditions, fmt.Sprintf("session_id = $%d", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	limit := filter.PerPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}
	args = append(args, limit, offset)

	query := fmt.Sprintf(`
		SELECT %s, count(*) OVER() AS total_count
		FROM orders
		%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`,
		orderColumns, where, len(args)-1, len(args),
	)

	ctx, end := database.TraceQuery(ctx, "ListOrders", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	total := 0
	orders := make([]domain.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate order rows: %w", err)
	}

	return orders, total, nil
}

const updateOrderStatusQuery = `
		UPDATE orders
		SET status = $1, updated_at = $2
		WHERE id = $3`

// UpdateStatus sets an order's status and update time.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id, status string, updatedAt time.Time) (err error) {
	ctx, end := database.TraceQuery(ctx, "UpdateOrderStatus", updateOrderStatusQuery)
	defer func() { end(err) }()

	tag, err := r.pool.Exec(ctx, updateOrderStatusQuery, status, updatedAt, id)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("order", id)
	}

	return nil
}

// scanOrder reads one orderColumns row, followed by any extra destinations.
func scanOrder(row pgx.Row, extra ...any) (*domain.Order, error) {
	var (
		o                                       domain.Order
		method                                  string
		dimensionJSON, mediumJSON               []byte
		unitPrice, subtotal, shippingFee, total string
	)

	dest := []any{
		&o.ID,
		&o.ConfigurationID,
		&o.SessionID,
		&o.ProductID,
		&dimensionJSON,
		&mediumJSON,
		&o.Surface,
		&method,
		&o.DeliveryLocation,
		&unitPrice,
		&o.Summary.Quantity,
		&subtotal,
		&shippingFee,
		&total,
		&o.Summary.Currency,
		&o.Status,
		&o.CreatedAt,
		&o.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	o.PaymentMethod = domain.PaymentMethod(method)
	if err := json.Unmarshal(dimensionJSON, &o.Dimension); err != nil {
		return nil, fmt.Errorf("unmarshal dimension: %w", err)
	}
	if err := json.Unmarshal(mediumJSON, &o.Medium); err != nil {
		return nil, fmt.Errorf("unmarshal medium: %w", err)
	}

	amounts := []struct {
		raw string
		dst *decimal.Decimal
	}{
		{unitPrice, &o.Summary.UnitPrice},
		{subtotal, &o.Summary.Subtotal},
		{shippingFee, &o.Summary.ShippingFee},
		{total, &o.Summary.Total},
	}
	for _, a := range amounts {
		d, err := decimal.NewFromString(a.raw)
		if err != nil {
			return nil, fmt.Errorf("parse amount %q: %w", a.raw, err)
		}
		*a.dst = d
	}

	return &o, nil
}
