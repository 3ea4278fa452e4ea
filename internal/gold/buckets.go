package gold

// Price range labels for the recommendations summary. Buckets are
// half-open and lower-inclusive: a $20.00 listing is Very Cheap, a
// $19.99 one Extremely Cheap.
const (
	RangeExtremelyCheap = "Extremely Cheap (<$20)"
	RangeVeryCheap      = "Very Cheap ($20-$50)"
	RangeCheap          = "Cheap ($50-$100)"
	RangeModerate       = "Moderate ($100-$200)"
	RangeExpensive      = "Expensive ($200-$300)"
	RangeVeryExpensive  = "Very Expensive (>$300)"
)

// PriceRanges lists every bucket label from cheapest to most expensive.
var PriceRanges = []string{
	RangeExtremelyCheap,
	RangeVeryCheap,
	RangeCheap,
	RangeModerate,
	RangeExpensive,
	RangeVeryExpensive,
}

// PriceRange buckets a nightly price into its display label.
func PriceRange(price float64) string {
	switch {
	case price < 20:
		return RangeExtremelyCheap
	case price < 50:
		return RangeVeryCheap
	case price < 100:
		return RangeCheap
	case price < 200:
		return RangeModerate
	case price < 300:
		return RangeExpensive
	default:
		return RangeVeryExpensive
	}
}
