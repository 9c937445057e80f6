package postgres

import (
	"context"
	"fmt"

	"github.com/africa-markett/storefront/internal/domain"
	"github.com/africa-markett/storefront/pkg/database"
)

// ReviewRepository reads product reviews from PostgreSQL. Review IDs follow
// insertion order, so ordering by ID preserves it.
type ReviewRepository struct {
	pool database.TxBeginner
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool database.TxBeginner) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

const listReviewsQuery = `
		SELECT id, product_id, rating, comment, reviewer_name, avatar_url, review_date
		FROM product_reviews
		WHERE product_id = $1
		ORDER BY id`

// ListByProductID returns every review of a product in insertion order. A
// stored rating outside 1..5 is reported as an error.
func (r *ReviewRepository) ListByProductID(ctx context.Context, productID string) (reviews []domain.Review, err error) {
	ctx, end := database.TraceQuery(ctx, "ListReviewsByProduct", listReviewsQuery)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, listReviewsQuery, productID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(
			&rv.ID,
			&rv.ProductID,
			&rv.Rating,
			&rv.Comment,
			&rv.Name,
			&rv.Avatar,
			&rv.Date,
		); err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		if err := domain.ValidateRating(rv.Rating); err != nil {
			return nil, fmt.Errorf("review %d: %w", rv.ID, err)
		}
		reviews = append(reviews, rv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review rows: %w", err)
	}

	if reviews == nil {
		reviews = []domain.Review{}
	}

	return reviews, nil
}

const importReviewQuery = `
		INSERT INTO product_reviews (id, product_id, rating, comment, reviewer_name, avatar_url, review_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING`

// Import inserts reviews in one transaction, skipping IDs that already
// exist, and returns how many rows were added. The batch is validated as a
// whole before anything is written.
func (r *ReviewRepository) Import(ctx context.Context, reviews []domain.Review) (inserted int64, err error) {
	if _, err := domain.NewReviewStore(reviews); err != nil {
		return 0, fmt.Errorf("validate reviews: %w", err)
	}

	ctx, end := database.TraceQuery(ctx, "ImportReviews", importReviewQuery)
	defer func() { end(err) }()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, rv := range reviews {
		tag, err := tx.Exec(ctx, importReviewQuery,
			rv.ID,
			rv.ProductID,
			rv.Rating,
			rv.Comment,
			rv.Name,
			rv.Avatar,
			rv.Date,
		)
		if err != nil {
			return 0, fmt.Errorf("insert review %d: %w", rv.ID, err)
		}
		inserted += tag.RowsAffected()
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}

	return inserted, nil
}
