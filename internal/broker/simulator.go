package broker

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/V-ini-t86/broker-platform/internal/domain"
)

// Compile-time interface check.
var _ Broker = (*SimulatorBroker)(nil)

const simulatorStartingCash = 100_000.00

// SimulatorBroker implements the Broker interface for paper trading. Every
// order fills immediately and in full at its submitted price; positions and
// cash are tracked in memory.
type SimulatorBroker struct {
	log      *slog.Logger
	recorder Recorder

	mu        sync.Mutex
	cash      decimal.Decimal
	positions map[string]*simPosition
	orders    map[string]*domain.Order
}

// simPosition is the simulator's internal position ledger entry. Quantity is
// signed; negative means short.
type simPosition struct {
	qty       int64
	avgEntry  decimal.Decimal
	lastPrice decimal.Decimal
}

// NewSimulatorBroker creates a SimulatorBroker with the default starting
// cash balance. recorder may be nil.
func NewSimulatorBroker(recorder Recorder, log *slog.Logger) *SimulatorBroker {
	return &SimulatorBroker{
		log:       log,
		recorder:  recorder,
		cash:      decimal.NewFromFloat(simulatorStartingCash),
		positions: make(map[string]*simPosition),
		orders:    make(map[string]*domain.Order),
	}
}

// Name returns "simulator".
func (b *SimulatorBroker) Name() string {
	return "simulator"
}

// SubmitOrder fills the order immediately at its submitted price, adjusts
// the cash balance and position ledger, and records the fill.
func (b *SimulatorBroker) SubmitOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	b.mu.Lock()

	placed := *order
	if placed.ID == "" {
		placed.ID = uuid.NewString()
	}
	now := time.Now()
	placed.Status = domain.OrderStatusFilled
	placed.FilledQty = placed.Qty
	placed.FilledAvgPrice = placed.LimitPrice
	placed.UpdatedAt = now
	if placed.CreatedAt.IsZero() {
		placed.CreatedAt = now
	}

	price := decimal.NewFromFloat(placed.LimitPrice)
	qty := placed.Qty
	if placed.Side == domain.OrderSideSell {
		qty = -qty
	}
	b.applyFill(placed.Symbol, qty, price)

	b.orders[placed.ID] = &placed
	b.mu.Unlock()

	if b.recorder != nil {
		if err := b.recorder.SaveOrder(ctx, &placed); err != nil {
			b.log.Warn("recording order failed", "order", placed.ID, "error", err)
		}
	}

	b.log.Info("order filled",
		"order", placed.ID, "symbol", placed.Symbol, "side", placed.Side,
		"qty", placed.Qty, "price", placed.LimitPrice)
	result := placed
	return &result, nil
}

// applyFill adjusts cash and the position ledger for a signed fill quantity.
// Caller holds b.mu.
func (b *SimulatorBroker) applyFill(symbol string, qty int64, price decimal.Decimal) {
	b.cash = b.cash.Sub(price.Mul(decimal.NewFromInt(qty)))

	pos, ok := b.positions[symbol]
	if !ok {
		pos = &simPosition{}
		b.positions[symbol] = pos
	}
	prev := pos.qty
	pos.qty += qty
	pos.lastPrice = price

	switch {
	case pos.qty == 0:
		delete(b.positions, symbol)
	case prev == 0 || (prev > 0) != (pos.qty > 0):
		// Fresh position, or a fill that flipped the direction.
		pos.avgEntry = price
	case abs(pos.qty) > abs(prev):
		// Adding to the position: volume-weighted average entry.
		added := decimal.NewFromInt(abs(pos.qty) - abs(prev))
		held := decimal.NewFromInt(abs(prev))
		total := pos.avgEntry.Mul(held).Add(price.Mul(added))
		pos.avgEntry = total.Div(decimal.NewFromInt(abs(pos.qty)))
	}
	// Reducing keeps the entry price unchanged.
}

// CancelOrder rejects cancellation of filled orders. Since the simulator
// fills everything instantly, every known order is terminal.
func (b *SimulatorBroker) CancelOrder(_ context.Context, orderID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	o, ok := b.orders[orderID]
	if !ok {
		return ErrOrderNotFound
	}
	switch o.Status {
	case domain.OrderStatusFilled, domain.OrderStatusCancelled, domain.OrderStatusRejected:
		return ErrOrderNotCancellable
	}
	o.Status = domain.OrderStatusCancelled
	o.UpdatedAt = time.Now()
	return nil
}

// GetPositions returns all simulated positions, sorted by symbol.
func (b *SimulatorBroker) GetPositions(_ context.Context) ([]domain.Position, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	positions := make([]domain.Position, 0, len(b.positions))
	for symbol, pos := range b.positions {
		positions = append(positions, toDomainPosition(symbol, pos))
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i].Symbol < positions[j].Symbol })
	return positions, nil
}

func toDomainPosition(symbol string, pos *simPosition) domain.Position {
	side := "long"
	if pos.qty < 0 {
		side = "short"
	}
	qty := decimal.NewFromInt(abs(pos.qty))
	value := pos.lastPrice.Mul(decimal.NewFromInt(pos.qty))
	pl := pos.lastPrice.Sub(pos.avgEntry).Mul(decimal.NewFromInt(pos.qty))
	var plPct float64
	if !pos.avgEntry.IsZero() {
		plPct, _ = pl.Div(pos.avgEntry.Mul(qty)).Mul(decimal.NewFromInt(100)).Round(2).Float64()
	}

	entry, _ := pos.avgEntry.Round(2).Float64()
	last, _ := pos.lastPrice.Round(2).Float64()
	mv, _ := value.Round(2).Float64()
	plf, _ := pl.Round(2).Float64()
	return domain.Position{
		Symbol:              symbol,
		Side:                side,
		Quantity:            abs(pos.qty),
		EntryPrice:          entry,
		CurrentPrice:        last,
		MarketValue:         mv,
		UnrealizedPL:        plf,
		UnrealizedPLPercent: plPct,
		Leverage:            1,
	}
}

// GetAccount returns the simulated cash balance and marked-to-last equity.
func (b *SimulatorBroker) GetAccount(_ context.Context) (*domain.AccountInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	equity := b.cash
	for _, pos := range b.positions {
		equity = equity.Add(pos.lastPrice.Mul(decimal.NewFromInt(pos.qty)))
	}
	cash, _ := b.cash.Round(2).Float64()
	eq, _ := equity.Round(2).Float64()
	return &domain.AccountInfo{
		Cash:        cash,
		Equity:      eq,
		BuyingPower: cash,
	}, nil
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
