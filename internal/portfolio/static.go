package portfolio

import (
	"context"
	"time"

	"github.com/V-ini-t86/broker-platform/internal/domain"
)

// Compile-time interface checks.
var _ HoldingsSource = (*StaticSource)(nil)
var _ PositionsSource = (*StaticSource)(nil)

// holdingRow is the raw input of one holdings row. Market value, P&L, and
// allocation are derived.
type holdingRow struct {
	symbol   string
	name     string
	quantity int64
	avgPrice float64
	current  float64
	sector   string
}

var defaultHoldings = []holdingRow{
	{"AAPL", "Apple Inc.", 150, 145.20, 152.30, "Technology"},
	{"GOOGL", "Alphabet Inc.", 25, 2650.00, 2720.50, "Technology"},
	{"MSFT", "Microsoft Corp.", 80, 310.00, 305.20, "Technology"},
	{"TSLA", "Tesla Inc.", 60, 172.00, 185.40, "Automotive"},
	{"AMZN", "Amazon.com Inc.", 90, 138.50, 142.80, "Consumer"},
}

var defaultPositions = []domain.Position{
	{Symbol: "AAPL", Side: "long", Quantity: 500, EntryPrice: 148.50, CurrentPrice: 152.30,
		MarketValue: 76150, UnrealizedPL: 1900, UnrealizedPLPercent: 2.56, Margin: 15230, Leverage: 5},
	{Symbol: "TSLA", Side: "short", Quantity: 200, EntryPrice: 190.00, CurrentPrice: 185.40,
		MarketValue: -37080, UnrealizedPL: 920, UnrealizedPLPercent: 2.42, Margin: 7416, Leverage: 5},
	{Symbol: "GOOGL", Side: "long", Quantity: 100, EntryPrice: 2680.00, CurrentPrice: 2720.50,
		MarketValue: 272050, UnrealizedPL: 4050, UnrealizedPLPercent: 1.51, Margin: 54410, Leverage: 5},
	{Symbol: "MSFT", Side: "short", Quantity: 150, EntryPrice: 315.00, CurrentPrice: 305.20,
		MarketValue: -45780, UnrealizedPL: 1470, UnrealizedPLPercent: 3.11, Margin: 9156, Leverage: 5},
}

// StaticSource serves a fixed portfolio with an optional artificial latency,
// standing in for a real brokerage backend.
type StaticSource struct {
	holdings  []holdingRow
	positions []domain.Position
	latency   time.Duration
}

// NewStaticSource creates a StaticSource with the default portfolio.
func NewStaticSource(latency time.Duration) *StaticSource {
	return &StaticSource{
		holdings:  defaultHoldings,
		positions: defaultPositions,
		latency:   latency,
	}
}

func (s *StaticSource) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return nil
	}
	t := time.NewTimer(s.latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// GetHoldings returns the holdings rows with all derived values filled in.
func (s *StaticSource) GetHoldings(ctx context.Context) ([]domain.Holding, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	holdings := make([]domain.Holding, len(s.holdings))
	for i, r := range s.holdings {
		qty := float64(r.quantity)
		value := round2(r.current * qty)
		pl := round2((r.current - r.avgPrice) * qty)
		var plPct float64
		if basis := r.avgPrice * qty; basis != 0 {
			plPct = round2(pl / basis * 100)
		}
		holdings[i] = domain.Holding{
			Symbol:              r.symbol,
			Name:                r.name,
			Quantity:            r.quantity,
			AvgPrice:            r.avgPrice,
			CurrentPrice:        r.current,
			MarketValue:         value,
			UnrealizedPL:        pl,
			UnrealizedPLPercent: plPct,
			Sector:              r.sector,
		}
	}
	return WithAllocation(holdings), nil
}

// GetPositions returns the position rows.
func (s *StaticSource) GetPositions(ctx context.Context) ([]domain.Position, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	out := make([]domain.Position, len(s.positions))
	copy(out, s.positions)
	return out, nil
}
