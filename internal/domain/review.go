package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	apperrors "github.com/africa-markett/storefront/pkg/errors"
	"github.com/africa-markett/storefront/pkg/pagination"
)

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// Review is a single customer rating and comment attached to one product.
// Name, Avatar and Date are display metadata and are never interpreted.
type Review struct {
	ID        int    `json:"id"`
	ProductID string `json:"product_id"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
	Name      string `json:"name"`
	Avatar    string `json:"avatar"`
	Date      string `json:"date"`
}

// ValidateRating reports whether r is a rating bucket.
func ValidateRating(r int) error {
	if r < MinRating || r > MaxRating {
		return apperrors.InvalidField("rating", fmt.Sprintf("must be between %d and %d, got %d", MinRating, MaxRating, r))
	}
	return nil
}

// AverageRating is either "none" (no reviews) or a mean rounded to one
// decimal place. On the wire "none" is the number 0 and a value is a string
// such as "4.0", which is what storefront clients already parse.
type AverageRating struct {
	value decimal.Decimal
	ok    bool
}

// NoAverage is the average of an empty review set.
var NoAverage = AverageRating{}

// AverageOf wraps a mean, rounding it to one decimal place.
func AverageOf(v decimal.Decimal) AverageRating {
	return AverageRating{value: v.Round(1), ok: true}
}

// Value returns the rounded mean and false when there is none.
func (a AverageRating) Value() (decimal.Decimal, bool) {
	return a.value, a.ok
}

// IsNone reports whether the average was taken over no reviews.
func (a AverageRating) IsNone() bool { return !a.ok }

func (a AverageRating) String() string {
	if !a.ok {
		return "0"
	}
	return a.value.StringFixed(1)
}

// MarshalJSON emits 0 for none and "X.X" otherwise.
func (a AverageRating) MarshalJSON() ([]byte, error) {
	if !a.ok {
		return []byte("0"), nil
	}
	return json.Marshal(a.value.StringFixed(1))
}

// UnmarshalJSON accepts both wire shapes.
func (a *AverageRating) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "0" || s == "null" {
		*a = NoAverage
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("average rating: %w", err)
	}
	v, err := decimal.NewFromString(str)
	if err != nil {
		return fmt.Errorf("average rating: %w", err)
	}
	*a = AverageOf(v)
	return nil
}

// ComputeAverageRating returns the arithmetic mean rating of reviews.
func ComputeAverageRating(reviews []Review) AverageRating {
	if len(reviews) == 0 {
		return NoAverage
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return AverageOf(decimal.NewFromInt(int64(sum)).Div(decimal.NewFromInt(int64(len(reviews)))))
}

// RatingCounts is the rating histogram of a review set.
type RatingCounts struct {
	All     int
	buckets [MaxRating]int
}

// Count returns the number of reviews with exactly rating r, or 0 outside 1..5.
func (c RatingCounts) Count(r int) int {
	if r < MinRating || r > MaxRating {
		return 0
	}
	return c.buckets[r-1]
}

// MarshalJSON emits {"all":n,"1":..,"5":..}.
func (c RatingCounts) MarshalJSON() ([]byte, error) {
	m := make(map[string]int, MaxRating+1)
	m["all"] = c.All
	for r := MinRating; r <= MaxRating; r++ {
		m[strconv.Itoa(r)] = c.Count(r)
	}
	return json.Marshal(m)
}

// ComputeRatingCounts builds the histogram of reviews. A rating outside 1..5
// is rejected rather than dropped.
func ComputeRatingCounts(reviews []Review) (RatingCounts, error) {
	c := RatingCounts{All: len(reviews)}
	for _, r := range reviews {
		if err := ValidateRating(r.Rating); err != nil {
			return RatingCounts{}, fmt.Errorf("review %d: %w", r.ID, err)
		}
		c.buckets[r.Rating-1]++
	}
	return c, nil
}

// RatingSummary aggregates a product's reviews.
type RatingSummary struct {
	Average AverageRating `json:"average_rating"`
	Total   int           `json:"total_reviews"`
	Counts  RatingCounts  `json:"rating_counts"`
}

// Summarize computes the average and histogram of reviews.
func Summarize(reviews []Review) (RatingSummary, error) {
	counts, err := ComputeRatingCounts(reviews)
	if err != nil {
		return RatingSummary{}, err
	}
	return RatingSummary{
		Average: ComputeAverageRating(reviews),
		Total:   counts.All,
		Counts:  counts,
	}, nil
}

// RatingFilter selects either every review or a single rating bucket.
type RatingFilter struct {
	rating int // 0 means all
}

// AllRatings matches every review.
var AllRatings = RatingFilter{}

// FilterRating returns a filter for exactly rating r.
func FilterRating(r int) (RatingFilter, error) {
	if err := ValidateRating(r); err != nil {
		return RatingFilter{}, err
	}
	return RatingFilter{rating: r}, nil
}

// ParseRatingFilter accepts "all", an integer 1..5, or its decimal string.
// Anything else is a validation error.
func ParseRatingFilter(v any) (RatingFilter, error) {
	switch f := v.(type) {
	case nil:
		return AllRatings, nil
	case RatingFilter:
		return f, nil
	case int:
		return FilterRating(f)
	case string:
		s := strings.TrimSpace(f)
		if s == "" || strings.EqualFold(s, "all") {
			return AllRatings, nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return RatingFilter{}, apperrors.InvalidField("rating", fmt.Sprintf("must be \"all\" or 1-5, got %q", f))
		}
		return FilterRating(n)
	default:
		return RatingFilter{}, apperrors.InvalidField("rating", fmt.Sprintf("unsupported filter type %T", v))
	}
}

// IsAll reports whether the filter matches every review.
func (f RatingFilter) IsAll() bool { return f.rating == 0 }

// Rating returns the selected bucket, or 0 for all.
func (f RatingFilter) Rating() int { return f.rating }

func (f RatingFilter) String() string {
	if f.IsAll() {
		return "all"
	}
	return strconv.Itoa(f.rating)
}

// FilterByRating returns the reviews matching f in their original order. The
// all filter returns reviews itself.
func FilterByRating(reviews []Review, f RatingFilter) []Review {
	if f.IsAll() {
		return reviews
	}
	out := make([]Review, 0, len(reviews))
	for _, r := range reviews {
		if r.Rating == f.rating {
			out = append(out, r)
		}
	}
	return out
}

// Paginate returns the zero-indexed page of reviews. Out-of-range pages are
// empty.
func Paginate(reviews []Review, page, limit int) []Review {
	return pagination.Window(reviews, page, limit)
}

// TotalPages returns ceil(len(reviews)/limit).
func TotalPages(reviews []Review, limit int) int {
	return pagination.TotalPages(len(reviews), limit)
}
