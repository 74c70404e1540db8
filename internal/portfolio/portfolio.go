// Package portfolio provides the holdings and positions views: row sources
// plus the aggregation that produces the headline summary figures. All
// derived values (market value, P&L, allocation, totals) are computed here
// so every view agrees on them.
package portfolio

import (
	"context"
	"math"

	"github.com/V-ini-t86/broker-platform/internal/domain"
)

// HoldingsSource supplies the rows of the holdings view.
type HoldingsSource interface {
	GetHoldings(ctx context.Context) ([]domain.Holding, error)
}

// PositionsSource supplies the rows of the positions view.
type PositionsSource interface {
	GetPositions(ctx context.Context) ([]domain.Position, error)
}

// HoldingsSummary is the headline strip above the holdings table.
type HoldingsSummary struct {
	TotalValue     float64 `json:"totalValue"`
	TotalPL        float64 `json:"totalPL"`
	TotalPLPercent float64 `json:"totalPLPercent"`
}

// PositionsSummary is the headline strip above the positions table. Total
// value sums absolute market values so shorts count toward exposure.
type PositionsSummary struct {
	TotalValue  float64 `json:"totalValue"`
	TotalPL     float64 `json:"totalPL"`
	TotalMargin float64 `json:"totalMargin"`
}

// SummarizeHoldings aggregates the holdings rows. The percentage is P&L over
// cost basis (current value minus the gain).
func SummarizeHoldings(holdings []domain.Holding) HoldingsSummary {
	var s HoldingsSummary
	for _, h := range holdings {
		s.TotalValue += h.MarketValue
		s.TotalPL += h.UnrealizedPL
	}
	if basis := s.TotalValue - s.TotalPL; basis != 0 {
		s.TotalPLPercent = round2(s.TotalPL / basis * 100)
	}
	s.TotalValue = round2(s.TotalValue)
	s.TotalPL = round2(s.TotalPL)
	return s
}

// SummarizePositions aggregates the position rows.
func SummarizePositions(positions []domain.Position) PositionsSummary {
	var s PositionsSummary
	for _, p := range positions {
		s.TotalValue += math.Abs(p.MarketValue)
		s.TotalPL += p.UnrealizedPL
		s.TotalMargin += p.Margin
	}
	s.TotalValue = round2(s.TotalValue)
	s.TotalPL = round2(s.TotalPL)
	s.TotalMargin = round2(s.TotalMargin)
	return s
}

// WithAllocation fills in each holding's allocation as its share of the
// total market value.
func WithAllocation(holdings []domain.Holding) []domain.Holding {
	var total float64
	for _, h := range holdings {
		total += h.MarketValue
	}
	if total == 0 {
		return holdings
	}
	out := make([]domain.Holding, len(holdings))
	for i, h := range holdings {
		h.Allocation = round2(h.MarketValue / total * 100)
		out[i] = h
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
