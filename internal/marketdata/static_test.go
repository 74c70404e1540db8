package marketdata

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestStaticSourceKnownSymbol(t *testing.T) {
	src := NewStaticSource(0)

	q, err := src.GetQuote(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("GetQuote(AAPL): %v", err)
	}
	if q.Price != 152.30 {
		t.Errorf("AAPL price = %v, want 152.30", q.Price)
	}
	if q.ChangeAbs != 2.45 || q.ChangePercent != 1.64 {
		t.Errorf("AAPL change = %v/%v, want 2.45/1.64", q.ChangeAbs, q.ChangePercent)
	}

	// Lookup is case-insensitive; quote symbol is normalised.
	q, err = src.GetQuote(context.Background(), "tsla")
	if err != nil {
		t.Fatalf("GetQuote(tsla): %v", err)
	}
	if q.Symbol != "TSLA" || q.Price != 185.40 {
		t.Errorf("tsla quote = %+v, want TSLA at 185.40", q)
	}
}

func TestStaticSourceUnknownSymbol(t *testing.T) {
	src := NewStaticSource(0)
	_, err := src.GetQuote(context.Background(), "ZZZZ")
	if !errors.Is(err, ErrSymbolNotFound) {
		t.Errorf("GetQuote(ZZZZ) = %v, want ErrSymbolNotFound", err)
	}
}

func TestStaticSourceLatencyRespectsContext(t *testing.T) {
	src := NewStaticSource(time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := src.GetQuote(ctx, "AAPL")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("GetQuote with exhausted context = %v, want DeadlineExceeded", err)
	}
}

func TestStaticSourceSymbols(t *testing.T) {
	src := NewStaticSource(0)
	syms := src.Symbols()
	if len(syms) != 5 {
		t.Fatalf("Symbols() returned %d entries, want 5", len(syms))
	}
	if syms[0].Symbol != "AAPL" || syms[0].Name != "Apple Inc." {
		t.Errorf("Symbols()[0] = %+v, want AAPL / Apple Inc.", syms[0])
	}
	for i := 1; i < len(syms); i++ {
		if syms[i-1].Symbol >= syms[i].Symbol {
			t.Errorf("Symbols() not sorted at %d: %s >= %s", i, syms[i-1].Symbol, syms[i].Symbol)
		}
	}
}
