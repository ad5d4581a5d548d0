package analysis

// Confidence maps a listing count (post outlier filter) to a 0-100
// reliability score. Pure step function; the 5-listing breakpoint also gates
// the Exceptional Deal rating, so the boundaries must not drift.
func Confidence(listingCount int) int {
	switch {
	case listingCount >= 20:
		return 100
	case listingCount >= 10:
		return 80
	case listingCount >= 5:
		return 60
	case listingCount >= 1:
		return 40
	default:
		return 20
	}
}
