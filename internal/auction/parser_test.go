package auction

import (
	"strings"
	"testing"
)

func TestParse_BasicFile(t *testing.T) {
	input := `# Fall Auction 2025
1 Gibson Les Paul Standard Retail $2,499.00 Starting Bid $800
2 Fender Deluxe Reverb Amp Retail $1,200 Starting Bid $350

INTERMISSION

3 Boss DD-7 Digital Delay Pedal Retail $180.00 Starting Bid $40
`
	items, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(items))
	}

	first := items[0]
	if first.LotNumber != 1 {
		t.Errorf("Expected lot 1, got %d", first.LotNumber)
	}
	if first.Description != "Gibson Les Paul Standard" {
		t.Errorf("Unexpected description: %q", first.Description)
	}
	if first.RetailPrice != 2499 {
		t.Errorf("Expected retail 2499, got %v", first.RetailPrice)
	}
	if first.StartingBid != 800 {
		t.Errorf("Expected starting bid 800, got %v", first.StartingBid)
	}
	if first.Category != "Electric Guitar" {
		t.Errorf("Expected Electric Guitar, got %q", first.Category)
	}

	if items[1].Category != "Amplifier" {
		t.Errorf("Expected Amplifier, got %q", items[1].Category)
	}
	if items[1].RetailPrice != 1200 {
		t.Errorf("Expected retail 1200 without cents, got %v", items[1].RetailPrice)
	}
	if items[2].Category != "Effect Pedal" {
		t.Errorf("Expected Effect Pedal, got %q", items[2].Category)
	}
}

func TestParse_UnrecognizedLine(t *testing.T) {
	input := `1 Gibson Les Paul Retail $2,499.00 Starting Bid $800
this line has no prices at all
`
	_, err := Parse(strings.NewReader(input))
	if err == nil {
		t.Fatal("Expected error for unrecognized line")
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("Expected line number in error, got %v", err)
	}
}

func TestParse_Empty(t *testing.T) {
	items, err := Parse(strings.NewReader("\n# only comments\n\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("Expected no items, got %d", len(items))
	}
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		description string
		want        string
	}{
		{"Gibson Les Paul Standard", "Electric Guitar"},
		{"Fender Stratocaster", "Electric Guitar"},
		{"Taylor 814ce Acoustic Guitar", "Acoustic Guitar"},
		{"Fender Precision Bass Guitar", "Bass Guitar"},
		{"Fender Jazz Bass", "Bass Guitar"},
		{"Marshall JCM800 Amplifier", "Amplifier"},
		{"Boss DD-7 Digital Delay", "Effect Pedal"},
		{"Kala Concert Ukulele", "Ukulele"},
		{"Deering Goodtime Banjo", "Banjo"},
		{"Eastman MD305 Mandolin", "Mandolin"},
		{"LP Aspire Conga Set", "Percussion"},
		{"Shure SM57 Microphone", "Other"},
	}
	for _, tt := range tests {
		if got := Categorize(tt.description); got != tt.want {
			t.Errorf("Categorize(%q) = %q, want %q", tt.description, got, tt.want)
		}
	}
}
