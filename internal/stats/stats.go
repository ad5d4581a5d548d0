package stats

import (
	"math"
	"sort"

	"github.com/guarzo/auctiongap/internal/model"
)

// MinFilterSample is the smallest sample that gets outlier filtering. Below
// this there is not enough data to tell an outlier from signal.
const MinFilterSample = 5

// outlierSigma is the z-score cutoff for excluding listings.
const outlierSigma = 2.0

// Summarize computes robust summary statistics for a price sample.
//
// Samples of MinFilterSample or more first drop prices beyond two standard
// deviations from the mean, guarding against a single corrupted scrape
// skewing a small auction. StdDev is the sample standard deviation (n-1).
// Volatility is (max-min)/median*100, defined as 0 when the median is 0.
// The returned slice holds the prices that survived filtering.
func Summarize(prices []float64) (model.Stats, []float64) {
	if len(prices) == 0 {
		return model.Stats{}, nil
	}

	kept := prices
	if len(prices) >= MinFilterSample {
		kept = filterOutliers(prices)
	}

	s := model.Stats{
		Mean:   mean(kept),
		Median: Median(kept),
		Min:    kept[0],
		Max:    kept[0],
		StdDev: stddev(kept),
	}
	for _, p := range kept {
		if p < s.Min {
			s.Min = p
		}
		if p > s.Max {
			s.Max = p
		}
	}
	if s.Median > 0 {
		s.Volatility = (s.Max - s.Min) / s.Median * 100
	}
	return s, kept
}

// Band buckets a volatility percentage: Low <= 20, Medium <= 50, High above.
func Band(volatility float64) model.VolatilityBand {
	switch {
	case volatility <= 20:
		return model.VolatilityLow
	case volatility <= 50:
		return model.VolatilityMedium
	default:
		return model.VolatilityHigh
	}
}

// Median returns the middle value, averaging the two middle values for
// even-sized samples. Zero for an empty sample.
func Median(prices []float64) float64 {
	n := len(prices)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, prices)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func filterOutliers(prices []float64) []float64 {
	m := mean(prices)
	sd := stddev(prices)
	if sd == 0 {
		return prices
	}

	kept := make([]float64, 0, len(prices))
	for _, p := range prices {
		if math.Abs(p-m) <= outlierSigma*sd {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		// Degenerate sample, keep everything rather than report nothing.
		return prices
	}
	return kept
}

func mean(prices []float64) float64 {
	if len(prices) == 0 {
		return 0
	}
	var sum float64
	for _, p := range prices {
		sum += p
	}
	return sum / float64(len(prices))
}

func stddev(prices []float64) float64 {
	n := len(prices)
	if n < 2 {
		return 0
	}
	m := mean(prices)
	var sq float64
	for _, p := range prices {
		d := p - m
		sq += d * d
	}
	return math.Sqrt(sq / float64(n-1))
}
