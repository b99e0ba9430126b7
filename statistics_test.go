package megasena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statsHistory(t *testing.T) *DrawHistory {
	t.Helper()
	return makeHistory(t,
		makeDraw(1, 1, 2, 3, 4, 5, 6),
		makeDraw(2, 1, 2, 3, 10, 20, 30),
		makeDraw(3, 1, 2, 40, 41, 42, 43),
	)
}

func TestDrawHistory_Statistics(t *testing.T) {
	h := statsHistory(t)

	stats, err := h.Statistics(0)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalDraws)
	assert.Equal(t, 3, stats.OverallDraws)
	assert.Equal(t, 1, stats.FirstContest)
	assert.Equal(t, 3, stats.LastContest)

	t.Run("numbers", func(t *testing.T) {
		require.Len(t, stats.Numbers, DefaultTopNumbers)

		got := make([]int, len(stats.Numbers))
		for i, s := range stats.Numbers {
			got[i] = s.Number
		}
		assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 10, 20, 30, 40}, got)

		one := stats.Numbers[0]
		assert.Equal(t, 3, one.Frequency)
		assert.Equal(t, 100.0, one.Percentage)
		require.NotNil(t, one.LastAppearance)
		assert.Equal(t, 3, *one.LastAppearance)
		assert.Equal(t, 1, *one.DrawsAgo)

		three := stats.Numbers[2]
		assert.Equal(t, 2, three.Frequency)
		assert.Equal(t, 66.67, three.Percentage)
		assert.Equal(t, 2, *three.DrawsAgo)
	})

	t.Run("pairs_and_trios", func(t *testing.T) {
		require.Len(t, stats.Pairs, DefaultTopCombinations)
		assert.Equal(t, []int{1, 2}, stats.Pairs[0].Numbers)
		assert.Equal(t, 3, stats.Pairs[0].Frequency)
		assert.Equal(t, []int{1, 3}, stats.Pairs[1].Numbers)
		assert.Equal(t, []int{2, 3}, stats.Pairs[2].Numbers)
		assert.Equal(t, []int{1, 4}, stats.Pairs[3].Numbers, "ties keep first-seen order")

		assert.Equal(t, []int{1, 2, 3}, stats.Trios[0].Numbers)
		assert.Equal(t, 2, stats.Trios[0].Frequency)
		assert.Equal(t, 66.67, stats.Trios[0].Percentage)
	})

	t.Run("last_n", func(t *testing.T) {
		recent, err := h.Statistics(2)
		require.NoError(t, err)
		assert.Equal(t, 2, recent.TotalDraws)
		assert.Equal(t, 3, recent.OverallDraws)
		assert.Equal(t, 2, recent.FirstContest)
		assert.Equal(t, 2, recent.Numbers[0].Frequency)
	})

	t.Run("empty_history", func(t *testing.T) {
		_, err := makeHistory(t).Statistics(0)
		assert.ErrorIs(t, err, ErrDatasetNotFound)
	})
}

func TestTopNumbers_AbsentNumbers(t *testing.T) {
	stats := TopNumbers(statsHistory(t).Draws(), MaxNumber)
	require.Len(t, stats, MaxNumber)

	last := stats[MaxNumber-1]
	assert.Equal(t, 60, last.Number)
	assert.Zero(t, last.Frequency)
	assert.Nil(t, last.LastAppearance)
	assert.Nil(t, last.DrawsAgo)
}

func TestForEachCombination(t *testing.T) {
	var got [][]int
	forEachCombination([]int{1, 2, 3, 4}, 2, func(c []int) {
		got = append(got, append([]int(nil), c...))
	})
	assert.Equal(t, [][]int{{1, 2}, {1, 3}, {1, 4}, {2, 3}, {2, 4}, {3, 4}}, got)

	count := 0
	forEachCombination([]int{1, 2, 3, 4, 5, 6}, 3, func([]int) { count++ })
	assert.Equal(t, 20, count)
}

func TestDrawHistory_Summary(t *testing.T) {
	h := syntheticHistory(t, 8, 31)

	summary, err := h.Summary()
	require.NoError(t, err)
	assert.Equal(t, 8, summary.Latest.Number)
	require.Len(t, summary.Previous, SummaryPreviousDraws)
	assert.Equal(t, 3, summary.Previous[0].Number)
	assert.Equal(t, 7, summary.Previous[SummaryPreviousDraws-1].Number)

	single, err := makeHistory(t, makeDraw(1, 1, 2, 3, 4, 5, 6)).Summary()
	require.NoError(t, err)
	assert.Empty(t, single.Previous)

	_, err = makeHistory(t).Summary()
	assert.ErrorIs(t, err, ErrDatasetNotFound)
}

func TestDrawHistory_DelayedNumbers(t *testing.T) {
	h := makeHistory(t, cycleDraws(t)...)

	find := func(t *testing.T, report *DelayReport, n int) DelayedNumber {
		t.Helper()
		for _, d := range report.Delayed {
			if d.Number == n {
				return d
			}
		}
		t.Fatalf("number %d missing from report", n)
		return DelayedNumber{}
	}

	t.Run("whole_history", func(t *testing.T) {
		report, err := h.DelayedNumbers(RangeAll, MaxNumber)
		require.NoError(t, err)
		assert.Equal(t, MaxNumber, report.Total)
		assert.Equal(t, 16, report.LastContest)
		assert.Equal(t, 16, report.AnalyzedDraws)
		assert.Equal(t, "delay_ratio", report.OrderedBy)
		require.Len(t, report.Delayed, MaxNumber)

		for i := 1; i < len(report.Delayed); i++ {
			assert.GreaterOrEqual(t, report.Delayed[i-1].DelayRatio, report.Delayed[i].DelayRatio)
		}

		// 1 was drawn at contests 1, 6 and 11
		one := report.Delayed[0]
		assert.Equal(t, 1, one.Number)
		assert.Equal(t, 5, one.NaturalCycle)
		assert.Equal(t, 5, one.DrawsAgo)
		assert.Equal(t, 3, one.Appearances)
		assert.Equal(t, 1.0, one.DelayRatio)
		require.NotNil(t, one.LastContest)
		assert.Equal(t, 11, *one.LastContest)

		never := report.Delayed[1]
		assert.Equal(t, 10, never.Number)
		assert.Nil(t, never.LastContest)
		assert.Equal(t, 17, never.NaturalCycle)
		assert.Equal(t, 16, never.DrawsAgo)
		assert.Equal(t, 0.94, never.DelayRatio)

		single := find(t, report, 4)
		assert.Equal(t, 16, single.NaturalCycle)
		assert.Equal(t, 13, single.DrawsAgo)
		assert.Equal(t, 0.81, single.DelayRatio)

		assert.Zero(t, find(t, report, 11).DelayRatio)
	})

	t.Run("number_last_seen_before_range", func(t *testing.T) {
		report, err := h.DelayedNumbers(LastDraws(5), MaxNumber)
		require.NoError(t, err)
		assert.Equal(t, 5, report.AnalyzedDraws)

		one := find(t, report, 1)
		assert.Zero(t, one.Appearances)
		assert.Equal(t, 6, one.NaturalCycle)
		assert.Equal(t, 5, one.DrawsAgo)
		require.NotNil(t, one.LastContest)
		assert.Equal(t, 11, *one.LastContest)
	})

	t.Run("count_limits_report", func(t *testing.T) {
		report, err := h.DelayedNumbers(RangeAll, 3)
		require.NoError(t, err)
		assert.Len(t, report.Delayed, 3)
		assert.Equal(t, MaxNumber, report.Total)

		none, err := h.DelayedNumbers(RangeAll, 0)
		require.NoError(t, err)
		assert.Empty(t, none.Delayed)
	})

	t.Run("invalid_input", func(t *testing.T) {
		_, err := h.DelayedNumbers(RangeAll, -1)
		assert.ErrorIs(t, err, ErrInvalidParameter)

		_, err = makeHistory(t).DelayedNumbers(RangeAll, 5)
		assert.ErrorIs(t, err, ErrDatasetNotFound)
	})
}
