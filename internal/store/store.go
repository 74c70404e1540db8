// Package store defines storage interfaces for persisting and retrieving
// domain objects such as orders and trade ticks.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/V-ini-t86/broker-platform/internal/domain"
)

// ErrNotFound is returned when the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// OrderStore persists and retrieves order records.
type OrderStore interface {
	// SaveOrder inserts a new order into storage.
	SaveOrder(ctx context.Context, order *domain.Order) error

	// GetOrder retrieves a single order by its ID.
	GetOrder(ctx context.Context, id string) (*domain.Order, error)

	// ListOrders returns all orders, most recent first. An empty status
	// matches every order.
	ListOrders(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error)

	// UpdateOrder persists changes to an existing order.
	UpdateOrder(ctx context.Context, order *domain.Order) error
}

// TickStore persists and retrieves trade tick data.
type TickStore interface {
	// WriteTicks persists a batch of ticks to storage.
	WriteTicks(ctx context.Context, ticks []domain.TradeTick) error

	// ReadTicks returns ticks for the given symbol within [start, end].
	ReadTicks(ctx context.Context, symbol string, start, end time.Time) ([]domain.TradeTick, error)

	// ListSymbols returns all distinct symbols with recorded ticks.
	ListSymbols(ctx context.Context) ([]string, error)
}
