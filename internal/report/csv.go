package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/guarzo/auctiongap/internal/model"
)

// header is the column layout of the deal analysis export.
var header = []string{
	"Lot", "Description", "Category", "RetailUSD", "StartingBidUSD",
	"MarketMedianUSD", "ListingCount", "Confidence", "Volatility",
	"OptimalPriceUSD", "DealScore", "DealRating", "ValuePct", "Source",
}

// WriteCSV writes the deal analyses to w, best deals first. Cells are escaped
// against spreadsheet formula injection.
func WriteCSV(w io.Writer, analyses []model.DealAnalysis) error {
	sorted := make([]model.DealAnalysis, len(analyses))
	copy(sorted, analyses)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].DealScore > sorted[j].DealScore
	})

	cw := csv.NewWriter(w)
	if err := cw.Write(escapeRow(header)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, da := range sorted {
		row := []string{
			fmt.Sprintf("%d", da.Item.LotNumber),
			da.Item.Description,
			da.Item.Category,
			money(da.Item.RetailPrice),
			money(da.Item.StartingBid),
			money(da.Market.Stats.Median),
			fmt.Sprintf("%d", da.Market.ListingCount),
			fmt.Sprintf("%d", da.Market.Confidence),
			string(da.Volatility),
			money(da.OptimalPrice),
			fmt.Sprintf("%.1f", da.DealScore),
			string(da.DealRating),
			fmt.Sprintf("%.1f%%", da.ValuePercentage),
			string(da.Market.SourceType),
		}
		if err := cw.Write(escapeRow(row)); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportFile writes the analyses to dir/auction_analysis.csv.
func ExportFile(dir string, analyses []model.DealAnalysis) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, "auction_analysis.csv")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report: %w", err)
	}
	defer f.Close()
	if err := WriteCSV(f, analyses); err != nil {
		return "", err
	}
	return path, nil
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// EscapeCell protects against CSV formula injection by prefixing cells that
// start with characters spreadsheets interpret as formulas.
func EscapeCell(value string) string {
	if value == "" {
		return value
	}
	switch value[0] {
	case '=', '+', '-', '@', '|', '%', '\t', '\r', '\n':
		return "'" + value
	}
	return value
}

func escapeRow(row []string) []string {
	escaped := make([]string, len(row))
	for i, cell := range row {
		escaped[i] = EscapeCell(cell)
	}
	return escaped
}
