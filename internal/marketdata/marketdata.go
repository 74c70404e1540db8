// Package marketdata provides quote lookup for the order pad: a static
// table source matching the dashboard's built-in prices, and a real source
// backed by the Alpaca market-data API. Lookups are single-shot: no retry
// and no caching across calls.
package marketdata

import (
	"context"
	"errors"

	"github.com/V-ini-t86/broker-platform/internal/domain"
)

// ErrSymbolNotFound means the source has no quote for the requested symbol.
// The lookup fails loudly; whether to degrade to a default price is the
// caller's policy, not the source's.
var ErrSymbolNotFound = errors.New("symbol not found")

// QuoteSource looks up a quote for one symbol. Implementations must treat
// every call as a fresh lookup.
type QuoteSource interface {
	GetQuote(ctx context.Context, symbol string) (domain.Quote, error)
}

// SymbolInfo pairs a symbol with its display name.
type SymbolInfo struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// SymbolLister is implemented by sources with a fixed instrument universe,
// for populating the dashboard's symbol selector. Sources with an unbounded
// universe (like Alpaca) do not implement it.
type SymbolLister interface {
	Symbols() []SymbolInfo
}
