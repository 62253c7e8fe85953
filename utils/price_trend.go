package utils

import "math"

// TrendScore summarizes a listing's price history as a signed score.
// Positive means the price has been climbing, negative falling.
// History is ordered oldest-first; weights decay so the latest moves
// dominate.
func TrendScore(history []int64) float64 {
	if len(history) < 2 {
		return 0
	}

	score := 0.0
	weight := 1.0
	for i := len(history) - 1; i > 0; i-- {
		prev := float64(history[i-1])
		if prev == 0 {
			continue
		}
		change := (float64(history[i]) - prev) / prev
		score += change * weight
		weight *= 0.6
	}

	return score * 100
}

// EstimatePrice produces the model price for a listing from its list
// price, area and trend. The area term nudges toward the city's
// per-sqm midpoint; the trend term discounts listings on a falling
// curve.
func EstimatePrice(listPrice int64, areaSqm float64, cityAvgPerSqm float64, trendScore float64) int64 {
	if listPrice <= 0 {
		return 0
	}

	base := float64(listPrice)
	if areaSqm > 0 && cityAvgPerSqm > 0 {
		areaValue := areaSqm * cityAvgPerSqm
		base = base*0.7 + areaValue*0.3
	}

	adjusted := base * (1 + math.Max(-0.15, math.Min(0.15, trendScore/100))*0.5)

	return int64(math.Round(adjusted))
}

// Verdict labels the gap between estimate and list price.
func Verdict(estimated, listPrice int64) string {
	if listPrice <= 0 || estimated <= 0 {
		return "unknown"
	}

	ratio := float64(estimated) / float64(listPrice)
	switch {
	case ratio >= 1.05:
		return "underpriced"
	case ratio <= 0.95:
		return "overpriced"
	default:
		return "fair"
	}
}
