// Package intent owns the order-pad state: whether the order-entry panel is
// open, and for which instrument and side. Exactly one intent exists
// process-wide; opening while already open replaces the previous intent
// unconditionally. Transitions are published to subscribers so the
// order-entry controller can react without polling.
package intent

import (
	"sync"

	"github.com/V-ini-t86/broker-platform/internal/domain"
)

// EventType identifies an intent transition.
type EventType string

const (
	EventOpened EventType = "opened"
	EventClosed EventType = "closed"
)

// Event describes one intent transition. Gen is a monotonically increasing
// generation number, bumped on every transition; consumers use it to discard
// results that arrive after the intent they belong to is gone.
type Event struct {
	Type   EventType
	Symbol string
	Side   domain.OrderSide
	Gen    uint64
}

// State is a read-only snapshot of the store. While IsOpen is false, Symbol
// and Side retain their last values but must not be rendered as an active
// draft (kept so a closing animation can still reference the last symbol).
type State struct {
	IsOpen bool
	Symbol string
	Side   domain.OrderSide
	Gen    uint64
}

// Store is the singleton order-intent state machine: closed → open on Open,
// open → closed on Close, with Open re-entering open when already open.
type Store struct {
	mu     sync.RWMutex
	isOpen bool
	symbol string
	side   domain.OrderSide
	gen    uint64

	subsMu    sync.Mutex
	nextSubID int
	subs      map[int]chan Event
}

// NewStore creates a closed intent store.
func NewStore() *Store {
	return &Store{
		side: domain.OrderSideBuy,
		subs: make(map[int]chan Event),
	}
}

// Open marks the intent open for the given symbol and side, replacing any
// previously open intent. Last caller wins, there is no queue. No
// validation happens here; an empty symbol is the caller's problem.
func (s *Store) Open(symbol string, side domain.OrderSide) {
	if side == "" {
		side = domain.OrderSideBuy
	}

	s.mu.Lock()
	s.isOpen = true
	s.symbol = symbol
	s.side = side
	s.gen++
	ev := Event{Type: EventOpened, Symbol: symbol, Side: side, Gen: s.gen}
	s.mu.Unlock()

	s.broadcast(ev)
}

// Close marks the intent closed. Symbol and side are deliberately left in
// place. Closing an already-closed intent is a no-op that publishes nothing.
func (s *Store) Close() {
	s.mu.Lock()
	if !s.isOpen {
		s.mu.Unlock()
		return
	}
	s.isOpen = false
	s.gen++
	ev := Event{Type: EventClosed, Symbol: s.symbol, Side: s.side, Gen: s.gen}
	s.mu.Unlock()

	s.broadcast(ev)
}

// State returns a snapshot of the current intent.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{IsOpen: s.isOpen, Symbol: s.symbol, Side: s.side, Gen: s.gen}
}

// Gen returns the current generation number.
func (s *Store) Gen() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

// Subscribe returns a channel that receives transition events. bufSize
// controls the channel buffer; slow consumers have events dropped rather
// than blocking a transition.
func (s *Store) Subscribe(bufSize int) (int, <-chan Event) {
	ch := make(chan Event, bufSize)
	s.subsMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = ch
	s.subsMu.Unlock()
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (s *Store) Unsubscribe(id int) {
	s.subsMu.Lock()
	if ch, ok := s.subs[id]; ok {
		delete(s.subs, id)
		close(ch)
	}
	s.subsMu.Unlock()
}

// broadcast sends an event to all subscribers non-blocking (drop on full).
func (s *Store) broadcast(ev Event) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			// Slow consumer, drop event.
		}
	}
}
