package analysis

import (
	"testing"

	"github.com/guarzo/auctiongap/internal/model"
)

func TestClassify_RatingTable(t *testing.T) {
	tests := []struct {
		name         string
		optimal      float64
		bid          float64
		listingCount int
		wantScore    float64
		wantRating   model.DealRating
	}{
		{"exceptional with enough listings", 1000, 350, 12, 65, model.RatingExceptional},
		{"score 60 but too few listings", 1000, 400, 4, 60, model.RatingGreat},
		{"great", 1000, 450, 12, 55, model.RatingGreat},
		{"good lower bound", 1000, 700, 12, 30, model.RatingGood},
		{"fair lower bound", 1000, 850, 12, 15, model.RatingFair},
		{"slight", 1000, 900, 12, 10, model.RatingSlight},
		{"zero score is slight", 1000, 1000, 12, 0, model.RatingSlight},
		{"overpriced", 1000, 1200, 12, -20, model.RatingOverpriced},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, rating, err := Classify(tt.optimal, tt.bid, tt.listingCount)
			if err != nil {
				t.Fatalf("Classify failed: %v", err)
			}
			if !almostEqual(score, tt.wantScore) {
				t.Errorf("Expected score %v, got %v", tt.wantScore, score)
			}
			if rating != tt.wantRating {
				t.Errorf("Expected rating %v, got %v", tt.wantRating, rating)
			}
		})
	}
}

func TestClassify_Pure(t *testing.T) {
	s1, r1, err1 := Classify(760, 300, 12)
	s2, r2, err2 := Classify(760, 300, 12)
	if err1 != nil || err2 != nil {
		t.Fatalf("Classify failed: %v, %v", err1, err2)
	}
	if s1 != s2 || r1 != r2 {
		t.Errorf("Classify is not pure: (%v,%v) vs (%v,%v)", s1, r1, s2, r2)
	}
}

func TestClassify_ExceptionalGateNeedsListingCount(t *testing.T) {
	// Identical price inputs, different listing counts: only the count
	// distinguishes Exceptional from Great.
	_, withListings, _ := Classify(1000, 350, 5)
	_, withoutListings, _ := Classify(1000, 350, 4)
	if withListings != model.RatingExceptional {
		t.Errorf("Expected Exceptional at 5 listings, got %v", withListings)
	}
	if withoutListings != model.RatingGreat {
		t.Errorf("Expected Great below 5 listings, got %v", withoutListings)
	}
}

func TestClassify_RejectsInvalidInputs(t *testing.T) {
	if _, _, err := Classify(0, 100, 5); err == nil {
		t.Error("Expected error for non-positive optimal price")
	}
	if _, _, err := Classify(100, -1, 5); err == nil {
		t.Error("Expected error for negative starting bid")
	}
}

func TestValuePercentage(t *testing.T) {
	if got := ValuePercentage(760, 300); !almostEqual(got, 39.47368) {
		t.Errorf("Expected ~39.47, got %v", got)
	}
	if got := ValuePercentage(0, 300); got != 0 {
		t.Errorf("Expected 0 for non-positive optimal, got %v", got)
	}
}

func TestRetailMarketGap(t *testing.T) {
	// Retail 1000, median 600: retail sits 40% above market.
	if got := RetailMarketGap(1000, 600); !almostEqual(got, 40) {
		t.Errorf("Expected 40, got %v", got)
	}
	if got := RetailMarketGap(0, 600); got != 0 {
		t.Errorf("Expected 0 for non-positive retail, got %v", got)
	}
}
