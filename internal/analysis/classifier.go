package analysis

import (
	"fmt"

	"github.com/guarzo/auctiongap/internal/model"
)

// Classify converts the optimal price and starting bid into a deal score and
// a discrete rating. The score is (optimal - bid)/optimal * 100: the discount
// the starting bid represents against the blended fair value, higher is
// better. listingCount gates the Exceptional tier, which requires at least 5
// real observations; it cannot be recovered from the score alone.
//
// Tiers, evaluated high to low, first match wins:
//
//	score >= 60 and listingCount >= 5  -> Exceptional Deal
//	score >= 50                        -> Great Deal
//	score >= 30                        -> Good Deal
//	score >= 15                        -> Fair Deal
//	score >= 0                         -> Slight Deal
//	score <  0                         -> Overpriced
func Classify(optimalPrice, startingBid float64, listingCount int) (float64, model.DealRating, error) {
	if optimalPrice <= 0 {
		return 0, "", fmt.Errorf("classify: optimal price must be positive, got %g", optimalPrice)
	}
	if startingBid < 0 {
		return 0, "", fmt.Errorf("classify: starting bid must be non-negative, got %g", startingBid)
	}

	score := (optimalPrice - startingBid) / optimalPrice * 100

	var rating model.DealRating
	switch {
	case score >= 60 && listingCount >= 5:
		rating = model.RatingExceptional
	case score >= 50:
		rating = model.RatingGreat
	case score >= 30:
		rating = model.RatingGood
	case score >= 15:
		rating = model.RatingFair
	case score >= 0:
		rating = model.RatingSlight
	default:
		rating = model.RatingOverpriced
	}
	return score, rating, nil
}

// ValuePercentage is the starting bid expressed as a percentage of the
// optimal price.
func ValuePercentage(optimalPrice, startingBid float64) float64 {
	if optimalPrice <= 0 {
		return 0
	}
	return startingBid / optimalPrice * 100
}

// RetailMarketGap reports how far retail sits above market, as a percentage
// of retail. Positive means retail exceeds the market median.
func RetailMarketGap(retailPrice, marketMedian float64) float64 {
	if retailPrice <= 0 {
		return 0
	}
	return (retailPrice - marketMedian) / retailPrice * 100
}
