package megasena

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStrategy(t *testing.T) {
	for _, s := range Strategies() {
		parsed, err := ParseStrategy(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	_, err := ParseStrategy("martingale")
	assert.ErrorIs(t, err, ErrUnknownStrategy)
	assert.True(t, IsClientError(err))
}

func TestStrategy_IsAdvanced(t *testing.T) {
	advanced := map[Strategy]bool{
		StrategyQuadrantSuppression: true,
		StrategyCycleAnalysis:       true,
		StrategyLinearRegression:    true,
		StrategyClusteringKMeans:    true,
	}
	for _, s := range Strategies() {
		assert.Equal(t, advanced[s], s.IsAdvanced(), s.String())
	}
}

func TestStrategy_JSON(t *testing.T) {
	var req struct {
		Strategy Strategy `json:"strategy"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"strategy":"cycle_analysis"}`), &req))
	assert.Equal(t, StrategyCycleAnalysis, req.Strategy)

	err := json.Unmarshal([]byte(`{"strategy":"nope"}`), &req)
	assert.ErrorIs(t, err, ErrUnknownStrategy)

	out, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"strategy":"cycle_analysis"}`, string(out))
}

func TestQuadrant(t *testing.T) {
	tests := []struct {
		n    int
		want Quadrant
	}{
		{1, Q1}, {15, Q1}, {16, Q2}, {30, Q2}, {31, Q3}, {45, Q3}, {46, Q4}, {60, Q4},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, QuadrantOf(tt.n), "number %d", tt.n)
	}

	assert.Equal(t, []int{16, 17, 18, 19, 20, 21, 22, 23, 24, 25, 26, 27, 28, 29, 30}, Q2.Numbers())

	q, ok := ParseQuadrant("Q3")
	assert.True(t, ok)
	assert.Equal(t, Q3, q)

	_, ok = ParseQuadrant("Q5")
	assert.False(t, ok)
}
