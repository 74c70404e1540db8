package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/V-ini-t86/broker-platform/internal/domain"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "orders.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testOrder(id string) *domain.Order {
	now := time.Now().Truncate(time.Millisecond)
	return &domain.Order{
		ID:             id,
		Symbol:         "AAPL",
		Side:           domain.OrderSideBuy,
		Type:           domain.OrderTypeMarket,
		Qty:            10,
		LimitPrice:     152.30,
		TimeInForce:    domain.TimeInForceDay,
		Status:         domain.OrderStatusFilled,
		FilledQty:      10,
		FilledAvgPrice: 152.30,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestSQLiteStoreSaveAndGet(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	want := testOrder("ord-1")
	if err := s.SaveOrder(ctx, want); err != nil {
		t.Fatalf("SaveOrder() error = %v", err)
	}

	got, err := s.GetOrder(ctx, "ord-1")
	if err != nil {
		t.Fatalf("GetOrder() error = %v", err)
	}
	if got.Symbol != want.Symbol || got.Qty != want.Qty || got.Status != want.Status {
		t.Errorf("GetOrder() = %+v, want %+v", got, want)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, want.CreatedAt)
	}
}

func TestSQLiteStoreGetMissing(t *testing.T) {
	s := newTestSQLiteStore(t)

	_, err := s.GetOrder(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetOrder(missing) error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStoreListOrders(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	first := testOrder("ord-1")
	first.CreatedAt = first.CreatedAt.Add(-time.Minute)
	second := testOrder("ord-2")
	second.Status = domain.OrderStatusCancelled
	for _, o := range []*domain.Order{first, second} {
		if err := s.SaveOrder(ctx, o); err != nil {
			t.Fatalf("SaveOrder(%s) error = %v", o.ID, err)
		}
	}

	all, err := s.ListOrders(ctx, "")
	if err != nil {
		t.Fatalf("ListOrders() error = %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("ListOrders() returned %d orders, want 2", len(all))
	}
	if all[0].ID != "ord-2" {
		t.Errorf("ListOrders() first = %q, want most recent %q", all[0].ID, "ord-2")
	}

	cancelled, err := s.ListOrders(ctx, domain.OrderStatusCancelled)
	if err != nil {
		t.Fatalf("ListOrders(cancelled) error = %v", err)
	}
	if len(cancelled) != 1 || cancelled[0].ID != "ord-2" {
		t.Errorf("ListOrders(cancelled) = %+v, want single ord-2", cancelled)
	}
}

func TestSQLiteStoreUpdateOrder(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	order := testOrder("ord-1")
	order.Status = domain.OrderStatusNew
	if err := s.SaveOrder(ctx, order); err != nil {
		t.Fatalf("SaveOrder() error = %v", err)
	}

	order.Status = domain.OrderStatusCancelled
	order.UpdatedAt = time.Now().Truncate(time.Millisecond)
	if err := s.UpdateOrder(ctx, order); err != nil {
		t.Fatalf("UpdateOrder() error = %v", err)
	}

	got, err := s.GetOrder(ctx, "ord-1")
	if err != nil {
		t.Fatalf("GetOrder() error = %v", err)
	}
	if got.Status != domain.OrderStatusCancelled {
		t.Errorf("Status = %q, want %q", got.Status, domain.OrderStatusCancelled)
	}

	ghost := testOrder("ghost")
	if err := s.UpdateOrder(ctx, ghost); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateOrder(missing) error = %v, want ErrNotFound", err)
	}
}

func TestParquetStoreWriteReadTicks(t *testing.T) {
	s := NewParquetStore(t.TempDir())
	ctx := context.Background()

	base := time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC)
	ticks := []domain.TradeTick{
		{Symbol: "AAPL", Time: base, Price: 152.30, Size: 100, Side: domain.OrderSideBuy},
		{Symbol: "AAPL", Time: base.Add(2 * time.Second), Price: 152.35, Size: 50, Side: domain.OrderSideSell},
		{Symbol: "AAPL", Time: base.Add(4 * time.Second), Price: 152.28, Size: 75, Side: domain.OrderSideBuy},
	}
	if err := s.WriteTicks(ctx, ticks); err != nil {
		t.Fatalf("WriteTicks() error = %v", err)
	}

	got, err := s.ReadTicks(ctx, "AAPL", base, base.Add(3*time.Second))
	if err != nil {
		t.Fatalf("ReadTicks() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ReadTicks() returned %d ticks, want 2 in range", len(got))
	}
	if got[0].Price != 152.30 || got[1].Price != 152.35 {
		t.Errorf("ReadTicks() prices = %v, %v, want 152.30, 152.35", got[0].Price, got[1].Price)
	}
	if got[1].Side != domain.OrderSideSell {
		t.Errorf("Side = %q, want %q", got[1].Side, domain.OrderSideSell)
	}
}

func TestParquetStoreMergeOnRewrite(t *testing.T) {
	s := NewParquetStore(t.TempDir())
	ctx := context.Background()

	base := time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC)
	first := []domain.TradeTick{
		{Symbol: "TSLA", Time: base, Price: 185.40, Size: 10, Side: domain.OrderSideBuy},
	}
	second := []domain.TradeTick{
		// Duplicate of the first write plus one new tick.
		{Symbol: "TSLA", Time: base, Price: 185.40, Size: 10, Side: domain.OrderSideBuy},
		{Symbol: "TSLA", Time: base.Add(2 * time.Second), Price: 185.65, Size: 20, Side: domain.OrderSideSell},
	}
	if err := s.WriteTicks(ctx, first); err != nil {
		t.Fatalf("WriteTicks(first) error = %v", err)
	}
	if err := s.WriteTicks(ctx, second); err != nil {
		t.Fatalf("WriteTicks(second) error = %v", err)
	}

	got, err := s.ReadTicks(ctx, "TSLA", base, base.Add(time.Minute))
	if err != nil {
		t.Fatalf("ReadTicks() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("ReadTicks() returned %d ticks after merge, want 2", len(got))
	}
}

func TestParquetStoreListSymbols(t *testing.T) {
	s := NewParquetStore(t.TempDir())
	ctx := context.Background()

	symbols, err := s.ListSymbols(ctx)
	if err != nil {
		t.Fatalf("ListSymbols() error = %v", err)
	}
	if len(symbols) != 0 {
		t.Errorf("ListSymbols() on empty dir = %v, want none", symbols)
	}

	base := time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC)
	err = s.WriteTicks(ctx, []domain.TradeTick{
		{Symbol: "MSFT", Time: base, Price: 305.20, Size: 5, Side: domain.OrderSideBuy},
		{Symbol: "AAPL", Time: base, Price: 152.30, Size: 5, Side: domain.OrderSideBuy},
	})
	if err != nil {
		t.Fatalf("WriteTicks() error = %v", err)
	}

	symbols, err = s.ListSymbols(ctx)
	if err != nil {
		t.Fatalf("ListSymbols() error = %v", err)
	}
	if len(symbols) != 2 || symbols[0] != "AAPL" || symbols[1] != "MSFT" {
		t.Errorf("ListSymbols() = %v, want [AAPL MSFT]", symbols)
	}
}
