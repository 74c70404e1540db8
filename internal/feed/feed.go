package feed

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/V-ini-t86/broker-platform/internal/domain"
	"github.com/V-ini-t86/broker-platform/internal/store"
)

// Event carries one advanced book snapshot to subscribers.
type Event struct {
	Symbol   string
	Snapshot domain.BookSnapshot
}

// Options tunes the feed. Zero values fall back to the defaults below.
type Options struct {
	Interval  time.Duration
	Depth     int
	MaxTrades int
	Recorder  store.TickStore // nil disables tick recording
}

const (
	defaultInterval  = 2 * time.Second
	defaultDepth     = 15
	defaultMaxTrades = 20
)

// Feed advances a simulated order book per symbol on a fixed interval and
// broadcasts snapshots to subscribers.
type Feed struct {
	interval time.Duration
	recorder store.TickStore
	log      *slog.Logger

	mu    sync.RWMutex
	books map[string]*simBook

	subsMu    sync.Mutex
	nextSubID int
	subs      map[int]chan Event
}

// New creates a Feed with one book per entry of prices, the starting price
// for each symbol.
func New(prices map[string]float64, opts Options, log *slog.Logger) *Feed {
	if opts.Interval <= 0 {
		opts.Interval = defaultInterval
	}
	if opts.Depth <= 0 {
		opts.Depth = defaultDepth
	}
	if opts.MaxTrades <= 0 {
		opts.MaxTrades = defaultMaxTrades
	}

	books := make(map[string]*simBook, len(prices))
	for symbol, price := range prices {
		books[symbol] = newSimBook(symbol, price, opts.Depth, opts.MaxTrades, seedFor(symbol))
	}
	return &Feed{
		interval: opts.Interval,
		recorder: opts.Recorder,
		log:      log,
		books:    books,
		subs:     make(map[int]chan Event),
	}
}

func seedFor(symbol string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(symbol))
	return h.Sum64()
}

// Run advances every book on the configured interval until ctx is cancelled.
func (f *Feed) Run(ctx context.Context) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			f.tick(ctx, now)
		}
	}
}

// tick advances every book once, broadcasts the snapshots, and records the
// printed trades.
func (f *Feed) tick(ctx context.Context, now time.Time) {
	f.mu.Lock()
	snapshots := make([]domain.BookSnapshot, 0, len(f.books))
	ticks := make([]domain.TradeTick, 0, len(f.books))
	for _, book := range f.books {
		snap, trade := book.advance(now)
		snapshots = append(snapshots, snap)
		ticks = append(ticks, trade)
	}
	f.mu.Unlock()

	for _, snap := range snapshots {
		f.broadcast(Event{Symbol: snap.Symbol, Snapshot: snap})
	}

	if f.recorder != nil && len(ticks) > 0 {
		if err := f.recorder.WriteTicks(ctx, ticks); err != nil {
			f.log.Warn("recording ticks failed", "error", err)
		}
	}
}

// Snapshot returns the current book state for a symbol without advancing it.
func (f *Feed) Snapshot(symbol string) (domain.BookSnapshot, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	book, ok := f.books[symbol]
	if !ok {
		return domain.BookSnapshot{}, fmt.Errorf("no book for symbol %q", symbol)
	}
	return book.snapshot(), nil
}

// Symbols returns the symbols this feed simulates, sorted.
func (f *Feed) Symbols() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	symbols := make([]string, 0, len(f.books))
	for s := range f.books {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols
}

// Subscribe registers a subscriber and returns its ID and event channel.
func (f *Feed) Subscribe(bufSize int) (int, <-chan Event) {
	f.subsMu.Lock()
	defer f.subsMu.Unlock()
	id := f.nextSubID
	f.nextSubID++
	ch := make(chan Event, bufSize)
	f.subs[id] = ch
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (f *Feed) Unsubscribe(id int) {
	f.subsMu.Lock()
	defer f.subsMu.Unlock()
	if ch, ok := f.subs[id]; ok {
		delete(f.subs, id)
		close(ch)
	}
}

func (f *Feed) broadcast(ev Event) {
	f.subsMu.Lock()
	defer f.subsMu.Unlock()
	for _, ch := range f.subs {
		select {
		case ch <- ev:
		default:
			// Slow subscriber, drop event.
		}
	}
}
