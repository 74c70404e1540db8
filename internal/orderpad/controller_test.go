package orderpad

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/V-ini-t86/broker-platform/internal/domain"
	"github.com/V-ini-t86/broker-platform/internal/intent"
	"github.com/V-ini-t86/broker-platform/internal/marketdata"
)

// fakeQuotes serves scripted prices and can block individual symbols until
// released, to exercise in-flight lookups.
type fakeQuotes struct {
	mu      sync.Mutex
	prices  map[string]float64
	blocked map[string]chan struct{}
}

func newFakeQuotes(prices map[string]float64) *fakeQuotes {
	return &fakeQuotes{prices: prices, blocked: make(map[string]chan struct{})}
}

func (f *fakeQuotes) block(symbol string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.blocked[symbol] = ch
	return ch
}

func (f *fakeQuotes) GetQuote(ctx context.Context, symbol string) (domain.Quote, error) {
	f.mu.Lock()
	gate := f.blocked[symbol]
	price, ok := f.prices[symbol]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return domain.Quote{}, ctx.Err()
		}
	}
	if !ok {
		return domain.Quote{}, marketdata.ErrSymbolNotFound
	}
	return domain.Quote{Symbol: symbol, Price: price}, nil
}

// fakeSink records submitted orders and acknowledges them as filled.
type fakeSink struct {
	mu     sync.Mutex
	orders []*domain.Order
	err    error
}

func (f *fakeSink) SubmitOrder(_ context.Context, order *domain.Order) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	placed := *order
	placed.ID = "ord-1"
	placed.Status = domain.OrderStatusFilled
	placed.FilledQty = order.Qty
	placed.FilledAvgPrice = order.LimitPrice
	f.orders = append(f.orders, &placed)
	return &placed, nil
}

func (f *fakeSink) submitted() []*domain.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*domain.Order(nil), f.orders...)
}

type fixture struct {
	intents *intent.Store
	quotes  *fakeQuotes
	sink    *fakeSink
	ctrl    *Controller
	events  <-chan intent.Event
}

func newFixture(t *testing.T, prices map[string]float64) *fixture {
	t.Helper()
	is := intent.NewStore()
	quotes := newFakeQuotes(prices)
	sink := &fakeSink{}
	ctrl := NewController(is, quotes, sink, 100.00, slog.New(slog.DiscardHandler))

	id, ch := is.Subscribe(16)
	t.Cleanup(func() { is.Unsubscribe(id) })

	return &fixture{intents: is, quotes: quotes, sink: sink, ctrl: ctrl, events: ch}
}

// step delivers the next pending intent event to the controller.
func (f *fixture) step(t *testing.T) {
	t.Helper()
	select {
	case ev := <-f.events:
		f.ctrl.HandleEvent(context.Background(), ev)
	case <-time.After(time.Second):
		t.Fatal("no pending intent event")
	}
}

func TestOpenSeedsDraftDefaults(t *testing.T) {
	f := newFixture(t, map[string]float64{"AAPL": 152.30})

	f.intents.Open("AAPL", domain.OrderSideBuy)
	f.step(t)

	draft, ok := f.ctrl.Draft()
	require.True(t, ok)
	require.Equal(t, "AAPL", draft.Symbol)
	require.Equal(t, domain.OrderSideBuy, draft.Side)
	require.Equal(t, domain.OrderTypeMarket, draft.Type)
	require.Equal(t, 152.30, draft.Price)
	require.Equal(t, int64(10), draft.Quantity)
	require.Equal(t, domain.TimeInForceDay, draft.TimeInForce)
	require.False(t, f.ctrl.Loading())
}

func TestEstimatedCost(t *testing.T) {
	f := newFixture(t, map[string]float64{"AAPL": 152.30})

	require.Equal(t, 0.0, f.ctrl.EstimatedCost(), "closed pad costs nothing")

	f.intents.Open("AAPL", domain.OrderSideBuy)
	f.step(t)

	require.Equal(t, 1523.00, f.ctrl.EstimatedCost())

	require.NoError(t, f.ctrl.SetQuantity(3))
	require.Equal(t, 456.90, f.ctrl.EstimatedCost())
}

func TestMarketOrderPriceLock(t *testing.T) {
	f := newFixture(t, map[string]float64{"AAPL": 152.30})
	f.intents.Open("AAPL", domain.OrderSideBuy)
	f.step(t)

	// Setting the price on a market order has no observable effect.
	require.NoError(t, f.ctrl.SetPrice(999.99))
	draft, _ := f.ctrl.Draft()
	require.Equal(t, 152.30, draft.Price)

	// A limit order frees the field.
	require.NoError(t, f.ctrl.SetOrderType(domain.OrderTypeLimit))
	require.NoError(t, f.ctrl.SetPrice(150.00))
	draft, _ = f.ctrl.Draft()
	require.Equal(t, 150.00, draft.Price)

	// Switching back to market re-locks to the quote price.
	require.NoError(t, f.ctrl.SetOrderType(domain.OrderTypeMarket))
	draft, _ = f.ctrl.Draft()
	require.Equal(t, 152.30, draft.Price)
}

func TestSubmitValidationGate(t *testing.T) {
	f := newFixture(t, map[string]float64{"AAPL": 152.30})
	f.intents.Open("AAPL", domain.OrderSideBuy)
	f.step(t)

	require.NoError(t, f.ctrl.SetOrderType(domain.OrderTypeLimit))
	require.NoError(t, f.ctrl.SetPrice(0))

	_, err := f.ctrl.Submit(context.Background())
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "price", verr.Field)
	require.True(t, f.intents.State().IsOpen, "rejected submit keeps the pad open")
	require.Empty(t, f.sink.submitted())

	require.NoError(t, f.ctrl.SetPrice(10))
	require.NoError(t, f.ctrl.SetQuantity(5))
	placed, err := f.ctrl.Submit(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(5), placed.Qty)
	require.False(t, f.intents.State().IsOpen, "successful submit closes the pad")
	require.Len(t, f.sink.submitted(), 1)
}

func TestSubmitRejectsNonPositiveQuantity(t *testing.T) {
	f := newFixture(t, map[string]float64{"AAPL": 152.30})
	f.intents.Open("AAPL", domain.OrderSideBuy)
	f.step(t)

	require.NoError(t, f.ctrl.SetQuantity(0))
	_, err := f.ctrl.Submit(context.Background())
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "quantity", verr.Field)
	require.True(t, f.intents.State().IsOpen)
}

func TestFallbackPriceForUnknownSymbol(t *testing.T) {
	f := newFixture(t, map[string]float64{}) // every lookup fails

	f.intents.Open("ZZZZ", domain.OrderSideBuy)
	f.step(t)

	draft, ok := f.ctrl.Draft()
	require.True(t, ok)
	require.Equal(t, 100.00, draft.Price, "unknown symbol degrades to the fallback price")
}

func TestStaleQuoteDiscarded(t *testing.T) {
	f := newFixture(t, map[string]float64{"X": 111.00, "Y": 222.00})
	release := f.quotes.block("X")

	// Open X; its quote lookup hangs in flight.
	f.intents.Open("X", domain.OrderSideBuy)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		select {
		case ev := <-f.events:
			f.ctrl.HandleEvent(context.Background(), ev)
		case <-time.After(time.Second):
		}
	}()

	// Before X resolves, the user closes the pad and opens Y.
	f.intents.Close()
	f.intents.Open("Y", domain.OrderSideBuy)

	// X's quote now resolves; it belongs to a dead intent.
	close(release)
	wg.Wait()

	_, ok := f.ctrl.Draft()
	require.False(t, ok, "stale quote must not seed a draft")

	// Process the queued close/open and let Y seed normally.
	f.step(t) // closed (X)
	f.step(t) // opened (Y)

	draft, ok := f.ctrl.Draft()
	require.True(t, ok)
	require.Equal(t, "Y", draft.Symbol)
	require.Equal(t, 222.00, draft.Price, "Y's draft must not carry X's price")
}

func TestSubmitWhileLoading(t *testing.T) {
	f := newFixture(t, map[string]float64{"AAPL": 152.30})
	release := f.quotes.block("AAPL")
	defer close(release)

	f.intents.Open("AAPL", domain.OrderSideBuy)
	done := make(chan struct{})
	go func() {
		defer close(done)
		select {
		case ev := <-f.events:
			f.ctrl.HandleEvent(context.Background(), ev)
		case <-time.After(time.Second):
		}
	}()

	// Wait for the controller to enter the loading window.
	require.Eventually(t, f.ctrl.Loading, time.Second, time.Millisecond)

	_, err := f.ctrl.Submit(context.Background())
	require.ErrorIs(t, err, ErrQuotePending)
}

func TestCloseDiscardsDraft(t *testing.T) {
	f := newFixture(t, map[string]float64{"AAPL": 152.30})
	f.intents.Open("AAPL", domain.OrderSideBuy)
	f.step(t)

	f.intents.Close()
	f.step(t)

	_, ok := f.ctrl.Draft()
	require.False(t, ok)
	require.ErrorIs(t, f.ctrl.SetQuantity(5), ErrNoOpenOrderPad)
	require.ErrorIs(t, f.ctrl.SetOrderType(domain.OrderTypeLimit), ErrNoOpenOrderPad)

	_, err := f.ctrl.Submit(context.Background())
	require.ErrorIs(t, err, ErrNoOpenOrderPad)
}

func TestSubmitSinkFailureKeepsPadOpen(t *testing.T) {
	f := newFixture(t, map[string]float64{"AAPL": 152.30})
	f.sink.err = errors.New("broker down")

	f.intents.Open("AAPL", domain.OrderSideBuy)
	f.step(t)

	_, err := f.ctrl.Submit(context.Background())
	require.Error(t, err)
	require.True(t, f.intents.State().IsOpen)

	// Draft survives for another attempt.
	_, ok := f.ctrl.Draft()
	require.True(t, ok)
}

func TestEndToEnd(t *testing.T) {
	f := newFixture(t, map[string]float64{"AAPL": 152.30})

	f.intents.Open("AAPL", domain.OrderSideBuy)
	f.step(t)

	draft, ok := f.ctrl.Draft()
	require.True(t, ok)
	require.Equal(t, int64(10), draft.Quantity)
	require.Equal(t, domain.OrderTypeMarket, draft.Type)
	require.Equal(t, 152.30, draft.Price)
	require.Equal(t, 1523.00, f.ctrl.EstimatedCost())

	placed, err := f.ctrl.Submit(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusFilled, placed.Status)
	require.False(t, f.intents.State().IsOpen)
}
