package model

import "time"

// SourceType tags the provenance of an entire MarketQueryResult. A result is
// wholly real or wholly synthetic; listings from different origins are never
// mixed under one tag.
type SourceType string

const (
	SourceAPI       SourceType = "api"
	SourceScraped   SourceType = "scraped"
	SourceSimulated SourceType = "simulated"
)

// Condition is the observed condition of a single listing.
type Condition string

const (
	ConditionExcellent Condition = "Excellent"
	ConditionGood      Condition = "Good"
	ConditionFair      Condition = "Fair"
	ConditionPoor      Condition = "Poor"
	ConditionUnknown   Condition = "Unknown"
)

// VolatilityBand buckets relative price spread.
type VolatilityBand string

const (
	VolatilityLow    VolatilityBand = "Low"
	VolatilityMedium VolatilityBand = "Medium"
	VolatilityHigh   VolatilityBand = "High"
)

// DealRating is the discrete deal tier assigned by the classifier.
type DealRating string

const (
	RatingExceptional DealRating = "Exceptional Deal"
	RatingGreat       DealRating = "Great Deal"
	RatingGood        DealRating = "Good Deal"
	RatingFair        DealRating = "Fair Deal"
	RatingSlight      DealRating = "Slight Deal"
	RatingOverpriced  DealRating = "Overpriced"
)

// Listing is one observed sale/offer price for a comparable item.
// Immutable once recorded.
type Listing struct {
	Price      float64    `json:"price"`
	Condition  Condition  `json:"condition"`
	ObservedAt time.Time  `json:"observed_at"`
	Source     SourceType `json:"source"`
}

// Stats holds the summary statistics derived from a listing sample.
// StdDev is the sample standard deviation (n-1).
type Stats struct {
	Mean       float64 `json:"mean"`
	Median     float64 `json:"median"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	StdDev     float64 `json:"stddev"`
	Volatility float64 `json:"volatility"` // (max-min)/median * 100, 0 when median is 0
}

// MarketQueryResult is the cached unit of market data for one normalized item
// key. A refresh produces a new instance that wholly replaces the prior one.
type MarketQueryResult struct {
	ItemKey  string    `json:"item_key"`
	Listings []Listing `json:"listings"`
	Stats    Stats     `json:"stats"`

	// ListingCount is the number of real observations backing the stats
	// (post outlier filter). Simulated results always carry 0, regardless
	// of how many synthetic draws produced the stats.
	ListingCount    int               `json:"listing_count"`
	ConditionCounts map[Condition]int `json:"condition_counts,omitempty"`
	Confidence      int               `json:"confidence"`
	SourceType      SourceType        `json:"source_type"`
	FetchedAt       time.Time         `json:"fetched_at"`
}

// AuctionItem is supplied by the auction-list parser. Read-only to the
// analysis core.
type AuctionItem struct {
	LotNumber   int     `json:"lot_number"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	RetailPrice float64 `json:"retail_price"`
	StartingBid float64 `json:"starting_bid"`
}

// DealAnalysis is the per-item output of the pipeline. Derived and cheap, it
// is recomputed every run and never cached.
type DealAnalysis struct {
	Item   AuctionItem       `json:"item"`
	Market MarketQueryResult `json:"market"`

	OptimalPrice    float64        `json:"optimal_price"`
	DealScore       float64        `json:"deal_score"` // (optimal-bid)/optimal*100, higher is better
	DealRating      DealRating     `json:"deal_rating"`
	ValuePercentage float64        `json:"value_percentage"` // bid/optimal*100
	Volatility      VolatilityBand `json:"volatility"`
	RetailMarketGap float64        `json:"retail_market_gap"` // (retail-median)/retail*100
}
