package megasena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceOf(t *testing.T) {
	for n := MinNumbersPerGame; n <= MaxNumbersPerGame; n++ {
		price, ok := PriceOf(n)
		require.True(t, ok, "n=%d", n)
		assert.Positive(t, price)
	}

	_, ok := PriceOf(21)
	assert.False(t, ok)
}

func TestResolveGameCount(t *testing.T) {
	budget := func(v float64) *float64 { return &v }
	count := func(v int) *int { return &v }

	tests := []struct {
		name    string
		budget  *float64
		count   *int
		n       int
		want    int
		wantErr error
	}{
		{"budget_buys_floor", budget(12), nil, 6, 2, nil},
		{"budget_exact", budget(35), nil, 7, 1, nil},
		{"budget_wins_over_count", budget(10), count(99), 6, 2, nil},
		{"budget_too_small", budget(4.99), nil, 6, 0, ErrInvalidBudget},
		{"budget_too_small_for_bigger_bet", budget(100), nil, 8, 0, ErrInvalidBudget},
		{"count_only", nil, count(7), 6, 7, nil},
		{"count_zero", nil, count(0), 6, 0, nil},
		{"nothing_given", nil, nil, 6, 0, ErrInvalidParameter},
		{"no_price", budget(1e9), nil, 21, 0, ErrInvalidParameter},
		{"budget_at_limit", budget(5 * MaxGameCount), nil, 6, MaxGameCount, nil},
		{"budget_beyond_limit", budget(1e12), nil, 6, 0, ErrInvalidBudget},
		{"budget_beyond_int", budget(1e300), nil, 6, 0, ErrInvalidBudget},
		{"count_beyond_limit", nil, count(MaxGameCount + 1), 6, 0, ErrInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveGameCount(tt.budget, tt.count, tt.n)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
