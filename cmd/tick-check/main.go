// One-shot tool: summarize recorded tick history for a symbol and date to
// verify what the feed recorder wrote.
//
// Usage:
//
//	go run cmd/tick-check/main.go AAPL [2026-03-02]
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/V-ini-t86/broker-platform/internal/domain"
	"github.com/V-ini-t86/broker-platform/internal/store"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: tick-check SYMBOL [DATE]")
		os.Exit(1)
	}
	sym := strings.ToUpper(os.Args[1])
	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}
	date := time.Now().UTC().Format("2006-01-02")
	if len(os.Args) > 2 {
		date = os.Args[2]
	}
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bad date %q: %v\n", date, err)
		os.Exit(1)
	}

	ticks := store.NewParquetStore(dataDir)
	ctx := context.Background()

	fmt.Printf("=== %s on %s ===\n\n", sym, date)

	symbols, err := ticks.ListSymbols(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "listing symbols: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("recorded symbols: %s\n\n", strings.Join(symbols, ", "))

	records, err := ticks.ReadTicks(ctx, sym, day, day.Add(24*time.Hour-time.Millisecond))
	if err != nil {
		fmt.Fprintf(os.Stderr, "reading ticks: %v\n", err)
		os.Exit(1)
	}
	if len(records) == 0 {
		fmt.Println("no ticks recorded")
		return
	}

	var (
		minPrice, maxPrice = records[0].Price, records[0].Price
		volume             int64
		buys, sells        int
	)
	for _, r := range records {
		if r.Price < minPrice {
			minPrice = r.Price
		}
		if r.Price > maxPrice {
			maxPrice = r.Price
		}
		volume += r.Size
		if r.Side == domain.OrderSideBuy {
			buys++
		} else {
			sells++
		}
	}

	fmt.Printf("ticks:  %d (%d buys, %d sells)\n", len(records), buys, sells)
	fmt.Printf("range:  %.2f - %.2f\n", minPrice, maxPrice)
	fmt.Printf("volume: %d\n", volume)
	fmt.Printf("first:  %s @ %.2f\n", records[0].Time.Format(time.RFC3339), records[0].Price)
	last := records[len(records)-1]
	fmt.Printf("last:   %s @ %.2f\n", last.Time.Format(time.RFC3339), last.Price)
}
