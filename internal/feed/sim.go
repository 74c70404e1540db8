// Package feed produces streaming order-book data for the dashboard: depth,
// recent trades, and headline stats per symbol, advanced on a fixed interval.
package feed

import (
	"math/rand/v2"
	"time"

	"github.com/V-ini-t86/broker-platform/internal/domain"
)

// Simulation tuning. Prices walk a quarter point per tick, depth levels sit
// within half a point of the last price.
const (
	priceWalkRange = 0.25
	depthRange     = 0.5
	minLevelSize   = 100
	maxLevelSize   = 1000
	minTradeSize   = 1
	maxTradeSize   = 500
)

// simBook is the evolving order-book state for one symbol.
type simBook struct {
	symbol    string
	basePrice float64
	price     float64
	volume    int64
	realized  float64
	trades    []domain.TradeTick
	depth     int
	maxTrades int
	rng       *rand.Rand
}

func newSimBook(symbol string, price float64, depth, maxTrades int, seed uint64) *simBook {
	return &simBook{
		symbol:    symbol,
		basePrice: price,
		price:     price,
		depth:     depth,
		maxTrades: maxTrades,
		rng:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// advance walks the price, prints one trade, and rebuilds the depth ladder.
// It returns the new snapshot and the trade that was printed.
func (b *simBook) advance(now time.Time) (domain.BookSnapshot, domain.TradeTick) {
	b.price += (b.rng.Float64()*2 - 1) * priceWalkRange
	if b.price < 0.01 {
		b.price = 0.01
	}

	side := domain.OrderSideBuy
	if b.rng.IntN(2) == 1 {
		side = domain.OrderSideSell
	}
	trade := domain.TradeTick{
		Symbol: b.symbol,
		Time:   now,
		Price:  round2(b.price),
		Size:   int64(minTradeSize + b.rng.IntN(maxTradeSize-minTradeSize+1)),
		Side:   side,
	}
	b.trades = append(b.trades, trade)
	if len(b.trades) > b.maxTrades {
		b.trades = b.trades[len(b.trades)-b.maxTrades:]
	}
	b.volume += trade.Size
	b.realized += (b.rng.Float64()*2 - 1) * 25

	return b.snapshot(), trade
}

// snapshot assembles the current book view without advancing the state.
func (b *simBook) snapshot() domain.BookSnapshot {
	bids := make([]domain.DepthLevel, b.depth)
	asks := make([]domain.DepthLevel, b.depth)
	step := depthRange / float64(b.depth)

	var bidTotal, askTotal float64
	for i := 0; i < b.depth; i++ {
		bidSize := int64(minLevelSize + b.rng.IntN(maxLevelSize-minLevelSize+1))
		askSize := int64(minLevelSize + b.rng.IntN(maxLevelSize-minLevelSize+1))
		bidPrice := round2(b.price - float64(i+1)*step)
		askPrice := round2(b.price + float64(i+1)*step)

		bidTotal += bidPrice * float64(bidSize)
		askTotal += askPrice * float64(askSize)
		bids[i] = domain.DepthLevel{Price: bidPrice, Size: bidSize, Total: round2(bidTotal)}
		asks[i] = domain.DepthLevel{Price: askPrice, Size: askSize, Total: round2(askTotal)}
	}

	trades := make([]domain.TradeTick, len(b.trades))
	for i := range b.trades {
		// Most recent first.
		trades[i] = b.trades[len(b.trades)-1-i]
	}

	return domain.BookSnapshot{
		Symbol:        b.symbol,
		LastPrice:     round2(b.price),
		PriceChange:   round2(b.price - b.basePrice),
		Volume:        b.volume,
		UnrealizedPnL: round2((b.price - b.basePrice) * 100),
		RealizedPnL:   round2(b.realized),
		Bids:          bids,
		Asks:          asks,
		Trades:        trades,
	}
}

func round2(v float64) float64 {
	if v < 0 {
		return float64(int64(v*100-0.5)) / 100
	}
	return float64(int64(v*100+0.5)) / 100
}
