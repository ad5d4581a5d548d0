package analysis

import (
	"fmt"
	"math"

	"github.com/guarzo/auctiongap/internal/model"
)

// WeightPair is one market/retail blend. The pair always sums to 1.0.
type WeightPair struct {
	Market float64
	Retail float64
}

// WeightTable holds the blending weights keyed by confidence tier plus the
// adjustment applied under high volatility. Externalized so tuning does not
// touch the algorithm.
type WeightTable struct {
	// HighConfidence applies at confidence >= 60.
	HighConfidence WeightPair
	// MediumConfidence applies at 40 <= confidence < 60.
	MediumConfidence WeightPair
	// LowConfidence applies below 40.
	LowConfidence WeightPair
	// HighVolatilityDelta shifts this much weight from market to retail
	// when the sample's volatility band is High.
	HighVolatilityDelta float64
}

// DefaultWeights returns the standard blend table.
func DefaultWeights() WeightTable {
	return WeightTable{
		HighConfidence:      WeightPair{Market: 0.7, Retail: 0.3},
		MediumConfidence:    WeightPair{Market: 0.6, Retail: 0.4},
		LowConfidence:       WeightPair{Market: 0.4, Retail: 0.6},
		HighVolatilityDelta: 0.1,
	}
}

// Weights selects the blend for a confidence score and volatility band. Both
// weights stay in [0,1] and sum to 1.0.
func (w WeightTable) Weights(confidence int, band model.VolatilityBand) WeightPair {
	var pair WeightPair
	switch {
	case confidence >= 60:
		pair = w.HighConfidence
	case confidence >= 40:
		pair = w.MediumConfidence
	default:
		pair = w.LowConfidence
	}

	if band == model.VolatilityHigh {
		delta := math.Min(w.HighVolatilityDelta, pair.Market)
		pair.Market -= delta
		pair.Retail += delta
	}
	return pair
}

// OptimalPrice blends the market median and the retail price into the
// bidding benchmark. The median is used rather than the mean because it is
// robust to the outliers small auction samples attract. Non-positive inputs
// are rejected rather than clamped.
func (w WeightTable) OptimalPrice(marketMedian, retailPrice float64, confidence int, band model.VolatilityBand) (float64, error) {
	if marketMedian <= 0 {
		return 0, fmt.Errorf("optimal price: market median must be positive, got %g", marketMedian)
	}
	if retailPrice <= 0 {
		return 0, fmt.Errorf("optimal price: retail price must be positive, got %g", retailPrice)
	}

	pair := w.Weights(confidence, band)
	price := pair.Market*marketMedian + pair.Retail*retailPrice
	if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, fmt.Errorf("optimal price: blend produced non-finite value %g", price)
	}
	return price, nil
}
