package odds

import "math"

// ApplyMargin spreads an overround of marginPercent across a complete
// market by proportional scaling and returns decimal odds in input order.
//
// The input is renormalized first, so Σ 1/odds equals 1 + marginPercent/100
// for every side that carries probability. Empty or all-zero input, and a
// margin at or below -100%, give all-zero odds.
func ApplyMargin(probs []float64, marginPercent float64) []float64 {
	out := make([]float64, len(probs))

	total := 0.0
	for _, p := range probs {
		if p > 0 {
			total += p
		}
	}
	target := 1.0 + marginPercent/100.0
	if total <= 0 || target <= 0 {
		return out
	}

	for i, p := range probs {
		adjusted := math.Max(p, 0) / total * target
		if adjusted > 0 {
			out[i] = 1.0 / adjusted
		}
	}
	return out
}

// ProbabilityToOdds converts a fair probability to decimal odds. The
// probability is clamped to [0, 1]; zero maps to +Inf.
func ProbabilityToOdds(p float64) float64 {
	p = math.Min(math.Max(p, 0), 1)
	if p <= 0 {
		return math.Inf(1)
	}
	return 1.0 / p
}

// OddsToProbability returns the implied probability of a decimal price,
// or 0 for a non-positive or infinite price.
func OddsToProbability(o float64) float64 {
	if o <= 0 || math.IsInf(o, 1) {
		return 0
	}
	return 1.0 / o
}

// Overround sums the implied probabilities of a market's prices.
func Overround(prices []float64) float64 {
	sum := 0.0
	for _, o := range prices {
		sum += OddsToProbability(o)
	}
	return sum
}
