package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/africa-markett/storefront/pkg/errors"
)

func reviewsWithRatings(ratings ...int) []Review {
	out := make([]Review, len(ratings))
	for i, r := range ratings {
		out[i] = Review{ID: i + 1, ProductID: "1", Rating: r, Name: "Reviewer"}
	}
	return out
}

func TestFilterByRating_ExactMatchesInOrder(t *testing.T) {
	reviews := reviewsWithRatings(4, 5, 4, 5, 3, 5, 4, 2)

	for r := MinRating; r <= MaxRating; r++ {
		f, err := FilterRating(r)
		require.NoError(t, err)

		got := FilterByRating(reviews, f)
		var want []Review
		for _, rv := range reviews {
			if rv.Rating == r {
				want = append(want, rv)
			}
		}
		if want == nil {
			want = []Review{}
		}
		assert.Equal(t, want, got, "rating %d", r)
	}
}

func TestFilterByRating_AllReturnsInput(t *testing.T) {
	reviews := reviewsWithRatings(5, 1, 3)

	got := FilterByRating(reviews, AllRatings)

	assert.Equal(t, reviews, got)
	assert.Same(t, &reviews[0], &got[0])
}

func TestParseRatingFilter(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		want    string
		wantErr bool
	}{
		{"nil", nil, "all", false},
		{"all", "all", "all", false},
		{"all uppercase", "ALL", "all", false},
		{"empty", "", "all", false},
		{"string digit", "4", "4", false},
		{"padded digit", " 2 ", "2", false},
		{"int", 5, "5", false},
		{"filter value", AllRatings, "all", false},
		{"zero", 0, "", true},
		{"six", "6", "", true},
		{"word", "five", "", true},
		{"float", 4.5, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := ParseRatingFilter(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.String())
		})
	}
}

func TestComputeRatingCounts_SumsToAll(t *testing.T) {
	sets := [][]Review{
		nil,
		reviewsWithRatings(1),
		reviewsWithRatings(5, 5, 4, 2),
		reviewsWithRatings(1, 2, 3, 4, 5, 5, 4, 3, 2, 1, 3),
	}

	for _, reviews := range sets {
		counts, err := ComputeRatingCounts(reviews)
		require.NoError(t, err)

		sum := 0
		for r := MinRating; r <= MaxRating; r++ {
			sum += counts.Count(r)
		}
		assert.Equal(t, len(reviews), counts.All)
		assert.Equal(t, counts.All, sum)
	}
}

func TestComputeRatingCounts_RejectsOutOfRange(t *testing.T) {
	for _, bad := range []int{0, 6, -1} {
		_, err := ComputeRatingCounts(reviewsWithRatings(5, bad))
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	}
}

func TestComputeAverageRating(t *testing.T) {
	tests := []struct {
		name    string
		ratings []int
		want    string
	}{
		{"five and three", []int{5, 3}, "4.0"},
		{"rounds down", []int{5, 4, 4}, "4.3"},
		{"rounds up", []int{5, 5, 4}, "4.7"},
		{"half", []int{5, 4}, "4.5"},
		{"single", []int{1}, "1.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			avg := ComputeAverageRating(reviewsWithRatings(tt.ratings...))
			assert.False(t, avg.IsNone())
			assert.Equal(t, tt.want, avg.String())
		})
	}
}

func TestComputeAverageRating_EmptyIsNone(t *testing.T) {
	avg := ComputeAverageRating(nil)

	assert.True(t, avg.IsNone())
	_, ok := avg.Value()
	assert.False(t, ok)

	data, err := json.Marshal(avg)
	require.NoError(t, err)
	assert.Equal(t, "0", string(data))
}

func TestAverageRating_JSON(t *testing.T) {
	data, err := json.Marshal(ComputeAverageRating(reviewsWithRatings(5, 3)))
	require.NoError(t, err)
	assert.Equal(t, `"4.0"`, string(data))

	var got AverageRating
	require.NoError(t, json.Unmarshal([]byte(`"4.3"`), &got))
	assert.Equal(t, "4.3", got.String())

	require.NoError(t, json.Unmarshal([]byte(`0`), &got))
	assert.True(t, got.IsNone())

	assert.Error(t, json.Unmarshal([]byte(`"four"`), &got))
}

func TestSummarize_Scenario(t *testing.T) {
	summary, err := Summarize(reviewsWithRatings(5, 5, 4, 2))
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, "4.0", summary.Average.String())

	data, err := json.Marshal(summary.Counts)
	require.NoError(t, err)
	assert.JSONEq(t, `{"all":4,"5":2,"4":1,"3":0,"2":1,"1":0}`, string(data))
}

func TestPaginate_CoversEveryReviewOnce(t *testing.T) {
	reviews := reviewsWithRatings(4, 5, 4, 5, 3, 5, 4, 2, 5, 1, 3)

	for limit := 1; limit <= 12; limit++ {
		pages := TotalPages(reviews, limit)
		assert.Equal(t, (len(reviews)+limit-1)/limit, pages, "limit %d", limit)

		var seen []Review
		for p := 0; p < pages; p++ {
			seen = append(seen, Paginate(reviews, p, limit)...)
		}
		assert.Equal(t, reviews, seen, "limit %d", limit)
	}
}

func TestPaginate_OutOfRangeIsEmpty(t *testing.T) {
	reviews := reviewsWithRatings(5, 4, 3)

	assert.Empty(t, Paginate(reviews, 1, 3))
	assert.Empty(t, Paginate(reviews, 7, 2))
	assert.Empty(t, Paginate(nil, 0, 5))
	assert.NotNil(t, Paginate(reviews, 9, 1))
	assert.Equal(t, reviews[2:], Paginate(reviews, 1, 2))
}

func TestTotalPages_Empty(t *testing.T) {
	assert.Equal(t, 0, TotalPages(nil, 5))
	assert.Equal(t, 0, TotalPages([]Review{}, 1))
}

func TestComputeAverageRating_RoundsHalfAwayFromZero(t *testing.T) {
	ratings := make([]int, 0, 20)
	for i := 0; i < 7; i++ {
		ratings = append(ratings, 5)
	}
	for i := 0; i < 13; i++ {
		ratings = append(ratings, 4)
	}

	// 87/20 is exactly 4.35, so it rounds up rather than down as a float64 would.
	avg := ComputeAverageRating(reviewsWithRatings(ratings...))

	assert.Equal(t, "4.4", avg.String())
}
