package marketdata

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/V-ini-t86/broker-platform/internal/domain"
)

// Compile-time interface checks.
var _ QuoteSource = (*StaticSource)(nil)
var _ SymbolLister = (*StaticSource)(nil)

type staticEntry struct {
	name          string
	price         float64
	changeAbs     float64
	changePercent float64
}

// defaultTable carries the dashboard's built-in prices.
var defaultTable = map[string]staticEntry{
	"AAPL":  {"Apple Inc.", 152.30, 2.45, 1.64},
	"GOOGL": {"Alphabet Inc.", 2720.50, 35.20, 1.31},
	"MSFT":  {"Microsoft Corp.", 305.20, -3.75, -1.21},
	"TSLA":  {"Tesla Inc.", 185.40, 5.80, 3.23},
	"AMZN":  {"Amazon.com Inc.", 142.80, 1.25, 0.88},
}

// StaticSource serves quotes from a fixed in-memory table, optionally with
// simulated lookup latency so the UI's loading states stay exercisable.
type StaticSource struct {
	table   map[string]staticEntry
	latency time.Duration
}

// NewStaticSource creates a StaticSource with the built-in price table and
// the given simulated per-lookup latency (0 for none).
func NewStaticSource(latency time.Duration) *StaticSource {
	return &StaticSource{table: defaultTable, latency: latency}
}

// GetQuote returns the table entry for symbol, or ErrSymbolNotFound. The
// simulated latency respects context cancellation.
func (s *StaticSource) GetQuote(ctx context.Context, symbol string) (domain.Quote, error) {
	if s.latency > 0 {
		select {
		case <-ctx.Done():
			return domain.Quote{}, ctx.Err()
		case <-time.After(s.latency):
		}
	}

	entry, ok := s.table[strings.ToUpper(symbol)]
	if !ok {
		return domain.Quote{}, ErrSymbolNotFound
	}
	return domain.Quote{
		Symbol:        strings.ToUpper(symbol),
		Price:         entry.price,
		ChangeAbs:     entry.changeAbs,
		ChangePercent: entry.changePercent,
	}, nil
}

// Symbols returns the fixed instrument universe in symbol order.
func (s *StaticSource) Symbols() []SymbolInfo {
	out := make([]SymbolInfo, 0, len(s.table))
	for sym, e := range s.table {
		out = append(out, SymbolInfo{Symbol: sym, Name: e.name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}
