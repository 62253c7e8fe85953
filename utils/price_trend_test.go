package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrendScore_NotEnoughHistory(t *testing.T) {
	assert.Equal(t, 0.0, TrendScore(nil))
	assert.Equal(t, 0.0, TrendScore([]int64{300000}))
}

func TestTrendScore_Direction(t *testing.T) {
	rising := TrendScore([]int64{300000, 310000, 325000})
	falling := TrendScore([]int64{325000, 310000, 300000})

	assert.Greater(t, rising, 0.0)
	assert.Less(t, falling, 0.0)
}

func TestTrendScore_LatestMoveDominates(t *testing.T) {
	// Old rise, recent drop: the recent move should win.
	score := TrendScore([]int64{300000, 340000, 290000})
	assert.Less(t, score, 0.0)
}

func TestEstimatePrice_ZeroListPrice(t *testing.T) {
	assert.Equal(t, int64(0), EstimatePrice(0, 80, 4000, 0))
}

func TestEstimatePrice_NoAreaData(t *testing.T) {
	// With no area signal and flat trend the estimate is the list price.
	assert.Equal(t, int64(300000), EstimatePrice(300000, 0, 0, 0))
}

func TestVerdict(t *testing.T) {
	assert.Equal(t, "underpriced", Verdict(320000, 300000))
	assert.Equal(t, "overpriced", Verdict(280000, 300000))
	assert.Equal(t, "fair", Verdict(301000, 300000))
	assert.Equal(t, "unknown", Verdict(0, 300000))
}
