package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"

	"github.com/guarzo/auctiongap/internal/auction"
	"github.com/guarzo/auctiongap/internal/cache"
	"github.com/guarzo/auctiongap/internal/config"
	"github.com/guarzo/auctiongap/internal/market"
	"github.com/guarzo/auctiongap/internal/model"
	"github.com/guarzo/auctiongap/internal/pipeline"
	"github.com/guarzo/auctiongap/internal/refresh"
	"github.com/guarzo/auctiongap/internal/report"
)

func main() {
	dataFile := flag.String("data-file", "data/auction_items.txt", "path to the auction list file")
	forceRefresh := flag.Bool("refresh", false, "bypass cached market data")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("auctiongap: %v", err)
	}

	store, err := cache.New(filepath.Join(cfg.CacheDir, "market_prices.json"), cfg.CacheTTL())
	if err != nil {
		log.Fatalf("auctiongap: open cache: %v", err)
	}

	if flag.Arg(0) == "refresh-cache" {
		runRefresh(cfg, store)
		return
	}

	items, err := auction.ParseFile(*dataFile)
	if err != nil {
		log.Fatalf("auctiongap: %v", err)
	}

	analyzer := pipeline.New(store, market.NewProvider(cfg), market.NewSimulator(1), pipeline.Options{
		Workers:      cfg.Workers,
		ForceRefresh: *forceRefresh,
	})

	results, err := analyzer.Analyze(context.Background(), items)
	if err != nil {
		log.Fatalf("auctiongap: %v", err)
	}
	for _, ie := range analyzer.Errors() {
		log.Printf("auctiongap: skipped %v", ie)
	}

	switch cmd := flag.Arg(0); cmd {
	case "summary":
		printSummary(results, analyzer)

	case "top":
		n := 10
		if flag.NArg() > 1 {
			if n, err = strconv.Atoi(flag.Arg(1)); err != nil {
				log.Fatalf("auctiongap: top: %v", err)
			}
		}
		fmt.Printf("Top %d deals:\n", n)
		for _, da := range analyzer.Top(n) {
			printDeal(da)
		}

	case "category":
		if flag.NArg() < 2 {
			log.Fatal("auctiongap: category requires a name argument")
		}
		matches := analyzer.ByCategory(flag.Arg(1))
		if len(matches) == 0 {
			fmt.Printf("No items found in category %q\n", flag.Arg(1))
			return
		}
		for _, da := range matches {
			printDeal(da)
		}

	case "item":
		if flag.NArg() < 2 {
			log.Fatal("auctiongap: item requires a lot number")
		}
		lot, err := strconv.Atoi(flag.Arg(1))
		if err != nil {
			log.Fatalf("auctiongap: item: %v", err)
		}
		da, ok := analyzer.ByLot(lot)
		if !ok {
			fmt.Printf("No item found with lot number %d\n", lot)
			return
		}
		printItemDetail(da)

	case "export":
		dir := "results"
		if flag.NArg() > 1 {
			dir = flag.Arg(1)
		}
		path, err := report.ExportFile(dir, results)
		if err != nil {
			log.Fatalf("auctiongap: export: %v", err)
		}
		fmt.Printf("Results exported to %s\n", path)

	default:
		log.Fatalf("auctiongap: unknown command %q", cmd)
	}
}

// runRefresh re-fetches aging cache entries: once by default, or on a cron
// schedule until interrupted.
func runRefresh(cfg *config.Config, store *cache.Store) {
	svc := refresh.New(store, market.NewProvider(cfg), cfg.CacheTTL()/2)

	if flag.NArg() > 1 {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := svc.Start(ctx, flag.Arg(1)); err != nil {
			log.Fatalf("auctiongap: refresh-cache: %v", err)
		}
		log.Printf("auctiongap: refreshing on schedule %q, Ctrl-C to stop", flag.Arg(1))
		<-ctx.Done()
		svc.Stop()
		return
	}

	n := svc.RefreshOnce(context.Background())
	fmt.Printf("Refreshed %d cache entries\n", n)
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: auctiongap [flags] <command> [args]

Commands:
  summary           analysis totals and best/worst deals
  top [n]           top n deals by score (default 10)
  category <name>   deals in a category (case-insensitive substring)
  item <lot>        details for one lot
  export [dir]      write auction_analysis.csv (default results/)
  refresh-cache [cron]  re-fetch aging cache entries, once or on a schedule

Flags:
`)
	flag.PrintDefaults()
}

func printSummary(results []model.DealAnalysis, analyzer *pipeline.Analyzer) {
	counts := make(map[model.DealRating]int)
	for _, da := range results {
		counts[da.DealRating]++
	}

	fmt.Println("===== AUCTION ANALYSIS SUMMARY =====")
	fmt.Printf("Total items analyzed: %d\n\nDeal breakdown:\n", len(results))
	order := []model.DealRating{
		model.RatingExceptional, model.RatingGreat, model.RatingGood,
		model.RatingFair, model.RatingSlight, model.RatingOverpriced,
	}
	for _, rating := range order {
		if n := counts[rating]; n > 0 {
			fmt.Printf("  %s: %d items (%.1f%%)\n", rating, n, float64(n)/float64(len(results))*100)
		}
	}

	fmt.Println("\nTop 5 deals:")
	for _, da := range analyzer.Top(5) {
		printDeal(da)
	}

	all := analyzer.Top(0)
	fmt.Println("\nWorst 5 deals:")
	for i := len(all) - 1; i >= 0 && i >= len(all)-5; i-- {
		printDeal(all[i])
	}
}

func printDeal(da model.DealAnalysis) {
	fmt.Printf("  #%d: %s - %s (score %.1f)\n", da.Item.LotNumber, da.Item.Description, da.DealRating, da.DealScore)
	fmt.Printf("    Starting bid: $%.2f | Optimal price: $%.2f | Retail: $%.2f\n",
		da.Item.StartingBid, da.OptimalPrice, da.Item.RetailPrice)
}

func printItemDetail(da model.DealAnalysis) {
	fmt.Printf("Lot %d: %s\n", da.Item.LotNumber, da.Item.Description)
	fmt.Printf("Category: %s\n\n", da.Item.Category)
	fmt.Printf("Retail Price: $%.2f\n", da.Item.RetailPrice)
	fmt.Printf("Starting Bid: $%.2f\n\n", da.Item.StartingBid)
	fmt.Printf("Market Median: $%.2f (range $%.2f - $%.2f)\n",
		da.Market.Stats.Median, da.Market.Stats.Min, da.Market.Stats.Max)
	fmt.Printf("Listings: %d | Confidence: %d%% | Volatility: %s\n",
		da.Market.ListingCount, da.Market.Confidence, da.Volatility)
	fmt.Printf("Data Source: %s\n\n", da.Market.SourceType)
	fmt.Printf("Optimal Price: $%.2f\n", da.OptimalPrice)
	fmt.Printf("Deal Score: %.1f%%\n", da.DealScore)
	fmt.Printf("Deal Rating: %s\n", da.DealRating)
	fmt.Printf("Value: bid is %.1f%% of optimal\n", da.ValuePercentage)
	fmt.Printf("Retail/Market Gap: %.1f%%\n", da.RetailMarketGap)
}
