package market

import (
	"time"

	"github.com/guarzo/auctiongap/internal/analysis"
	"github.com/guarzo/auctiongap/internal/cache"
	"github.com/guarzo/auctiongap/internal/model"
	"github.com/guarzo/auctiongap/internal/stats"
)

// buildResult assembles a MarketQueryResult from parsed listings. Statistics,
// the listing count and the condition tally all reflect the outlier-filtered
// sample; the stored listings keep the full parsed set.
func buildResult(description string, listings []model.Listing, source model.SourceType) *model.MarketQueryResult {
	prices := make([]float64, len(listings))
	for i, l := range listings {
		prices[i] = l.Price
	}

	summary, kept := stats.Summarize(prices)

	// Tally conditions over the surviving sample only; an excluded outlier
	// must not count. Kept prices are a multiset, so consume matches.
	remaining := make(map[float64]int, len(kept))
	for _, p := range kept {
		remaining[p]++
	}
	counts := make(map[model.Condition]int, 4)
	for _, l := range listings {
		if remaining[l.Price] > 0 {
			remaining[l.Price]--
			counts[l.Condition]++
		}
	}

	return &model.MarketQueryResult{
		ItemKey:         cache.NormalizeKey(description),
		Listings:        listings,
		Stats:           summary,
		ListingCount:    len(kept),
		ConditionCounts: counts,
		Confidence:      analysis.Confidence(len(kept)),
		SourceType:      source,
		FetchedAt:       time.Now().UTC(),
	}
}

// mapCondition folds source condition labels onto the closed enum.
func mapCondition(label string) model.Condition {
	switch label {
	case "Mint", "Brand New", "B-Stock", "Excellent":
		return model.ConditionExcellent
	case "Very Good", "Good":
		return model.ConditionGood
	case "Fair":
		return model.ConditionFair
	case "Poor", "Non Functioning":
		return model.ConditionPoor
	default:
		return model.ConditionUnknown
	}
}
