package marketdata

import (
	"context"
	"fmt"
	"strings"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"github.com/V-ini-t86/broker-platform/internal/domain"
	"github.com/V-ini-t86/broker-platform/internal/util"
)

// Compile-time interface check.
var _ QuoteSource = (*AlpacaSource)(nil)

// AlpacaSource serves quotes from the Alpaca market-data snapshot API. API
// calls are gated by a token-bucket rate limiter so bursts of order-pad
// opens stay inside the account's request budget.
type AlpacaSource struct {
	client  *marketdata.Client
	limiter *util.RateLimiter
}

// NewAlpacaSource creates an AlpacaSource with the given credentials and
// request budget (calls per minute).
func NewAlpacaSource(apiKey, apiSecret, dataURL string, ratePerMin int) *AlpacaSource {
	opts := marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
	if dataURL != "" {
		opts.BaseURL = dataURL
	}
	return &AlpacaSource{
		client:  marketdata.NewClient(opts),
		limiter: util.NewRateLimiter(ratePerMin),
	}
}

// GetQuote fetches a snapshot for symbol and derives the quote from its
// latest trade and previous daily close.
func (s *AlpacaSource) GetQuote(ctx context.Context, symbol string) (domain.Quote, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return domain.Quote{}, err
	}

	symbol = strings.ToUpper(symbol)
	snap, err := s.client.GetSnapshot(symbol, marketdata.GetSnapshotRequest{})
	if err != nil {
		return domain.Quote{}, fmt.Errorf("fetching snapshot for %s: %w", symbol, err)
	}
	if snap == nil || snap.LatestTrade == nil {
		return domain.Quote{}, ErrSymbolNotFound
	}

	q := domain.Quote{
		Symbol: symbol,
		Price:  snap.LatestTrade.Price,
	}
	if snap.PrevDailyBar != nil && snap.PrevDailyBar.Close > 0 {
		q.ChangeAbs = q.Price - snap.PrevDailyBar.Close
		q.ChangePercent = q.ChangeAbs / snap.PrevDailyBar.Close * 100
	}
	return q, nil
}
