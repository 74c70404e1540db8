package feed

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/V-ini-t86/broker-platform/internal/domain"
)

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestFeedSnapshotShape(t *testing.T) {
	f := New(map[string]float64{"AAPL": 152.30}, Options{Depth: 15, MaxTrades: 20}, discard())
	f.tick(context.Background(), time.Now())

	snap, err := f.Snapshot("AAPL")
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if len(snap.Bids) != 15 || len(snap.Asks) != 15 {
		t.Fatalf("depth = %d bids / %d asks, want 15 each", len(snap.Bids), len(snap.Asks))
	}
	if len(snap.Trades) != 1 {
		t.Errorf("got %d trades after one tick, want 1", len(snap.Trades))
	}

	for i, bid := range snap.Bids {
		if bid.Price >= snap.LastPrice {
			t.Errorf("bid[%d] = %v, want below last price %v", i, bid.Price, snap.LastPrice)
		}
		if i > 0 && bid.Price >= snap.Bids[i-1].Price {
			t.Errorf("bid[%d] = %v not below bid[%d] = %v", i, bid.Price, i-1, snap.Bids[i-1].Price)
		}
	}
	for i, ask := range snap.Asks {
		if ask.Price <= snap.LastPrice {
			t.Errorf("ask[%d] = %v, want above last price %v", i, ask.Price, snap.LastPrice)
		}
		if i > 0 && ask.Price <= snap.Asks[i-1].Price {
			t.Errorf("ask[%d] = %v not above ask[%d] = %v", i, ask.Price, i-1, snap.Asks[i-1].Price)
		}
	}
}

func TestFeedPriceWalkBounded(t *testing.T) {
	f := New(map[string]float64{"AAPL": 152.30}, Options{}, discard())

	prev := 152.30
	for i := 0; i < 50; i++ {
		f.tick(context.Background(), time.Now())
		snap, err := f.Snapshot("AAPL")
		if err != nil {
			t.Fatalf("Snapshot() error = %v", err)
		}
		delta := snap.LastPrice - prev
		if delta > priceWalkRange+0.01 || delta < -priceWalkRange-0.01 {
			t.Fatalf("tick %d moved price by %v, want within ±%v", i, delta, priceWalkRange)
		}
		prev = snap.LastPrice
	}
}

func TestFeedTradesCapped(t *testing.T) {
	f := New(map[string]float64{"TSLA": 185.40}, Options{MaxTrades: 20}, discard())

	for i := 0; i < 30; i++ {
		f.tick(context.Background(), time.Now())
	}
	snap, err := f.Snapshot("TSLA")
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if len(snap.Trades) != 20 {
		t.Errorf("got %d trades, want capped at 20", len(snap.Trades))
	}
	// Most recent first.
	if !snap.Trades[0].Time.After(snap.Trades[len(snap.Trades)-1].Time) &&
		!snap.Trades[0].Time.Equal(snap.Trades[len(snap.Trades)-1].Time) {
		t.Error("trades not ordered most recent first")
	}
}

func TestFeedVolumeAccumulates(t *testing.T) {
	f := New(map[string]float64{"MSFT": 305.20}, Options{}, discard())

	f.tick(context.Background(), time.Now())
	first, _ := f.Snapshot("MSFT")
	f.tick(context.Background(), time.Now())
	second, _ := f.Snapshot("MSFT")

	if second.Volume <= first.Volume {
		t.Errorf("volume did not accumulate: %d then %d", first.Volume, second.Volume)
	}
}

func TestFeedUnknownSymbol(t *testing.T) {
	f := New(map[string]float64{"AAPL": 152.30}, Options{}, discard())
	if _, err := f.Snapshot("ZZZZ"); err == nil {
		t.Error("Snapshot(unknown) error = nil, want error")
	}
}

func TestFeedSymbols(t *testing.T) {
	f := New(map[string]float64{"MSFT": 305.20, "AAPL": 152.30}, Options{}, discard())
	got := f.Symbols()
	if len(got) != 2 || got[0] != "AAPL" || got[1] != "MSFT" {
		t.Errorf("Symbols() = %v, want [AAPL MSFT]", got)
	}
}

func TestFeedSubscribe(t *testing.T) {
	f := New(map[string]float64{"AAPL": 152.30}, Options{}, discard())
	id, ch := f.Subscribe(4)
	defer f.Unsubscribe(id)

	f.tick(context.Background(), time.Now())

	select {
	case ev := <-ch:
		if ev.Symbol != "AAPL" {
			t.Errorf("event symbol = %q, want %q", ev.Symbol, "AAPL")
		}
		if ev.Snapshot.LastPrice <= 0 {
			t.Errorf("event last price = %v, want positive", ev.Snapshot.LastPrice)
		}
	case <-time.After(time.Second):
		t.Fatal("no event received after tick")
	}
}

func TestFeedUnsubscribeClosesChannel(t *testing.T) {
	f := New(map[string]float64{"AAPL": 152.30}, Options{}, discard())
	id, ch := f.Subscribe(1)
	f.Unsubscribe(id)

	if _, ok := <-ch; ok {
		t.Error("channel still open after Unsubscribe")
	}
}

// tickRecorder captures recorded ticks.
type tickRecorder struct {
	mu    sync.Mutex
	ticks []domain.TradeTick
}

func (r *tickRecorder) WriteTicks(_ context.Context, ticks []domain.TradeTick) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ticks = append(r.ticks, ticks...)
	return nil
}

func (r *tickRecorder) ReadTicks(context.Context, string, time.Time, time.Time) ([]domain.TradeTick, error) {
	return nil, nil
}

func (r *tickRecorder) ListSymbols(context.Context) ([]string, error) { return nil, nil }

func TestFeedRecordsTicks(t *testing.T) {
	rec := &tickRecorder{}
	f := New(map[string]float64{"AAPL": 152.30}, Options{Recorder: rec}, discard())

	f.tick(context.Background(), time.Now())
	f.tick(context.Background(), time.Now())

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.ticks) != 2 {
		t.Errorf("recorded %d ticks, want 2", len(rec.ticks))
	}
}
