package auction

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/guarzo/auctiongap/internal/model"
)

// lineRe matches the auction list format:
//
//	<lot> <description> Retail $<amount> Starting Bid $<amount>
var lineRe = regexp.MustCompile(`^(\d+)\s+(.*?)\s+Retail\s+\$([0-9,]+(?:\.\d+)?)\s+Starting\s+Bid\s+\$([0-9,]+(?:\.\d+)?)$`)

// ParseFile reads an auction list file into AuctionItems.
func ParseFile(path string) ([]model.AuctionItem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open auction file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads auction items line by line. Blank lines, comments and the
// INTERMISSION marker are skipped; lines that do not match the format are
// reported rather than silently dropped.
func Parse(r io.Reader) ([]model.AuctionItem, error) {
	var items []model.AuctionItem
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || line == "INTERMISSION" {
			continue
		}

		m := lineRe.FindStringSubmatch(line)
		if m == nil {
			return nil, fmt.Errorf("parse auction file: line %d: unrecognized format: %q", lineNum, line)
		}

		lot, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, fmt.Errorf("parse auction file: line %d: lot number: %w", lineNum, err)
		}
		retail, err := parseAmount(m[3])
		if err != nil {
			return nil, fmt.Errorf("parse auction file: line %d: retail price: %w", lineNum, err)
		}
		bid, err := parseAmount(m[4])
		if err != nil {
			return nil, fmt.Errorf("parse auction file: line %d: starting bid: %w", lineNum, err)
		}

		description := strings.TrimSpace(m[2])
		items = append(items, model.AuctionItem{
			LotNumber:   lot,
			Description: description,
			Category:    Categorize(description),
			RetailPrice: retail,
			StartingBid: bid,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read auction file: %w", err)
	}
	return items, nil
}

func parseAmount(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
}

// Categorize assigns a coarse instrument category from description keywords.
func Categorize(description string) string {
	d := strings.ToLower(description)

	contains := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(d, w) {
				return true
			}
		}
		return false
	}

	switch {
	case contains("guitar", "stratocaster", "telecaster", "les paul"):
		switch {
		case contains("acoustic", "parlor"):
			return "Acoustic Guitar"
		case contains("bass"):
			return "Bass Guitar"
		default:
			return "Electric Guitar"
		}
	case contains("bass"):
		return "Bass Guitar"
	case contains("amp", "amplifier"):
		return "Amplifier"
	case contains("pedal", "effect", "delay", "reverb", "overdrive"):
		return "Effect Pedal"
	case contains("ukulele"):
		return "Ukulele"
	case contains("banjo"):
		return "Banjo"
	case contains("mandolin"):
		return "Mandolin"
	case contains("conga", "percussion", "drum"):
		return "Percussion"
	default:
		return "Other"
	}
}
