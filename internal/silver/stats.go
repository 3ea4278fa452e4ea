package silver

import "sort"

// Median returns the middle value of vs (mean of the two middle values
// for even lengths). Returns false when vs is empty.
func Median(vs []float64) (float64, bool) {
	if len(vs) == 0 {
		return 0, false
	}
	sorted := append([]float64(nil), vs...)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid], true
	}
	return (sorted[mid-1] + sorted[mid]) / 2, true
}

// Quantile returns the p-quantile of vs using linear interpolation
// between closest ranks. p must be in [0, 1].
func Quantile(vs []float64, p float64) (float64, bool) {
	if len(vs) == 0 {
		return 0, false
	}
	sorted := append([]float64(nil), vs...)
	sort.Float64s(sorted)

	if len(sorted) == 1 {
		return sorted[0], true
	}

	pos := p * float64(len(sorted)-1)
	lo := int(pos)
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1], true
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo]), true
}

// GroupMedians computes a median per group key. Used for group-wise
// imputation of bedroom and bathroom counts by accommodates value.
func GroupMedians(groups map[int][]float64) map[int]float64 {
	medians := make(map[int]float64, len(groups))
	for key, vs := range groups {
		if m, ok := Median(vs); ok {
			medians[key] = m
		}
	}
	return medians
}

// PriceCapper replaces prices outside the IQR fence with the dataset
// median. Bounds are computed once per cleaning run over the whole
// dataset, never per group.
type PriceCapper struct {
	Lower  float64
	Upper  float64
	Median float64
}

// NewPriceCapper builds a capper from precomputed quartiles.
func NewPriceCapper(q1, q3, median float64) PriceCapper {
	iqr := q3 - q1
	return PriceCapper{
		Lower:  q1 - 1.5*iqr,
		Upper:  q3 + 1.5*iqr,
		Median: median,
	}
}

// PriceCapperFromData derives quartiles from the observed prices.
func PriceCapperFromData(prices []float64) (PriceCapper, bool) {
	q1, ok1 := Quantile(prices, 0.25)
	q3, ok3 := Quantile(prices, 0.75)
	med, okm := Median(prices)
	if !ok1 || !ok3 || !okm {
		return PriceCapper{}, false
	}
	return NewPriceCapper(q1, q3, med), true
}

// Cap returns the capped price.
func (c PriceCapper) Cap(price float64) float64 {
	if price < c.Lower || price > c.Upper {
		return c.Median
	}
	return price
}
