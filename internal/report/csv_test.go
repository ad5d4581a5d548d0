package report

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/guarzo/auctiongap/internal/model"
)

func sampleAnalyses() []model.DealAnalysis {
	return []model.DealAnalysis{
		{
			Item: model.AuctionItem{
				LotNumber: 1, Description: "Fender Stratocaster", Category: "Electric Guitar",
				RetailPrice: 1500, StartingBid: 600,
			},
			Market: model.MarketQueryResult{
				Stats: model.Stats{Median: 1100}, ListingCount: 8, Confidence: 60,
				SourceType: model.SourceAPI,
			},
			OptimalPrice: 1220, DealScore: 50.8, DealRating: model.RatingGreat,
			ValuePercentage: 49.2, Volatility: model.VolatilityLow,
		},
		{
			Item: model.AuctionItem{
				LotNumber: 2, Description: "=HYPERLINK evil pedal", Category: "Effect Pedal",
				RetailPrice: 200, StartingBid: 50,
			},
			Market: model.MarketQueryResult{
				Stats: model.Stats{Median: 150}, ListingCount: 0, Confidence: 20,
				SourceType: model.SourceSimulated,
			},
			OptimalPrice: 180, DealScore: 72.2, DealRating: model.RatingExceptional,
			ValuePercentage: 27.8, Volatility: model.VolatilityMedium,
		},
	}
}

func TestWriteCSV_SortedBestFirst(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleAnalyses()); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Reading output failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Expected header plus 2 rows, got %d records", len(records))
	}
	if records[0][0] != "Lot" {
		t.Errorf("Expected header row first, got %v", records[0])
	}
	// Lot 2 has the higher score and comes first.
	if records[1][0] != "2" || records[2][0] != "1" {
		t.Errorf("Expected rows sorted best-first, got lots %s, %s", records[1][0], records[2][0])
	}
	if records[2][3] != "1500.00" {
		t.Errorf("Expected two-decimal money column, got %q", records[2][3])
	}
	if records[1][13] != "simulated" {
		t.Errorf("Expected simulated source column, got %q", records[1][13])
	}
}

func TestWriteCSV_EscapesFormulaCells(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleAnalyses()); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Reading output failed: %v", err)
	}
	if got := records[1][1]; !strings.HasPrefix(got, "'=") {
		t.Errorf("Expected formula description escaped, got %q", got)
	}
}

func TestEscapeCell(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Fender Stratocaster", "Fender Stratocaster"},
		{"=1+1", "'=1+1"},
		{"+447", "'+447"},
		{"-stage", "'-stage"},
		{"@mention", "'@mention"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := EscapeCell(tt.in); got != tt.want {
			t.Errorf("EscapeCell(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExportFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	path, err := ExportFile(dir, sampleAnalyses())
	if err != nil {
		t.Fatalf("ExportFile failed: %v", err)
	}
	if filepath.Base(path) != "auction_analysis.csv" {
		t.Errorf("Unexpected report name: %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Reading report failed: %v", err)
	}
	if !strings.Contains(string(data), "Fender Stratocaster") {
		t.Error("Expected report to contain analysis rows")
	}
}
