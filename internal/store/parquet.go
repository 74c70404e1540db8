package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/V-ini-t86/broker-platform/internal/domain"
)

// Compile-time interface check.
var _ TickStore = (*ParquetStore)(nil)

// ParquetStore implements TickStore using Parquet files on disk, one file
// per symbol per day.
type ParquetStore struct {
	DataDir string
}

// NewParquetStore creates a new ParquetStore rooted at the given data directory.
func NewParquetStore(dataDir string) *ParquetStore {
	return &ParquetStore{DataDir: dataDir}
}

// TickRecord is the Parquet schema for trade tick data.
type TickRecord struct {
	Symbol    string  `parquet:"symbol"`
	Timestamp int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Price     float64 `parquet:"price"`
	Size      int64   `parquet:"size"`
	Side      string  `parquet:"side"`
}

// WriteTicks writes tick data to Parquet files organized by symbol and date.
// Each symbol+date combination produces a separate file at:
//
//	<DataDir>/ticks/<SYMBOL>/<YYYY-MM-DD>.parquet
func (s *ParquetStore) WriteTicks(_ context.Context, ticks []domain.TradeTick) error {
	if len(ticks) == 0 {
		return nil
	}

	type key struct {
		symbol string
		date   string // YYYY-MM-DD
	}
	groups := make(map[key][]TickRecord)
	for _, t := range ticks {
		k := key{symbol: t.Symbol, date: t.Time.UTC().Format("2006-01-02")}
		groups[k] = append(groups[k], TickRecord{
			Symbol:    t.Symbol,
			Timestamp: t.Time.UnixMilli(),
			Price:     t.Price,
			Size:      t.Size,
			Side:      string(t.Side),
		})
	}

	for k, records := range groups {
		day, _ := time.Parse("2006-01-02", k.date)
		path := s.tickPath(k.symbol, day)

		existing, _ := readParquetFile[TickRecord](path)
		merged := mergeTickRecords(existing, records)

		if err := writeParquetFile(path, merged); err != nil {
			return fmt.Errorf("writing ticks for %s/%s: %w", k.symbol, k.date, err)
		}
	}
	return nil
}

// ReadTicks reads tick data from Parquet files for the given symbol and time range.
func (s *ParquetStore) ReadTicks(_ context.Context, symbol string, start, end time.Time) ([]domain.TradeTick, error) {
	var ticks []domain.TradeTick
	for d := start.UTC().Truncate(24 * time.Hour); !d.After(end); d = d.AddDate(0, 0, 1) {
		path := s.tickPath(symbol, d)
		records, err := readParquetFile[TickRecord](path)
		if err != nil {
			// No file for this day.
			continue
		}
		for _, r := range records {
			ts := time.UnixMilli(r.Timestamp)
			if (ts.Equal(start) || ts.After(start)) && (ts.Equal(end) || ts.Before(end)) {
				ticks = append(ticks, domain.TradeTick{
					Symbol: r.Symbol,
					Time:   ts,
					Price:  r.Price,
					Size:   r.Size,
					Side:   domain.OrderSide(r.Side),
				})
			}
		}
	}
	return ticks, nil
}

// ListSymbols lists all symbols that have recorded tick data.
func (s *ParquetStore) ListSymbols(_ context.Context) ([]string, error) {
	dir := filepath.Join(s.DataDir, "ticks")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var symbols []string
	for _, e := range entries {
		if e.IsDir() {
			symbols = append(symbols, e.Name())
		}
	}
	sort.Strings(symbols)
	return symbols, nil
}

// tickPath returns the filesystem path for a tick Parquet file.
// Layout: <dataDir>/ticks/<SYMBOL>/<YYYY-MM-DD>.parquet
func (s *ParquetStore) tickPath(symbol string, t time.Time) string {
	date := t.Format("2006-01-02")
	return filepath.Join(s.DataDir, "ticks", strings.ToUpper(symbol), date+".parquet")
}

// ---------------------------------------------------------------------------
// Parquet file helpers
// ---------------------------------------------------------------------------

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

func readParquetFile[T any](path string) ([]T, error) {
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// mergeTickRecords deduplicates tick records by (symbol, timestamp, price,
// size), preferring new records over existing ones. Results are sorted by
// timestamp.
func mergeTickRecords(existing, incoming []TickRecord) []TickRecord {
	type key struct {
		symbol string
		ts     int64
		price  float64
		size   int64
	}
	seen := make(map[key]TickRecord, len(existing)+len(incoming))
	for _, r := range existing {
		seen[key{r.Symbol, r.Timestamp, r.Price, r.Size}] = r
	}
	for _, r := range incoming {
		seen[key{r.Symbol, r.Timestamp, r.Price, r.Size}] = r
	}

	merged := make([]TickRecord, 0, len(seen))
	for _, r := range seen {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Timestamp < merged[j].Timestamp
	})
	return merged
}
