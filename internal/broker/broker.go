// Package broker defines the Broker interface and provides implementations
// for executing orders and managing accounts across different brokerages.
package broker

import (
	"context"
	"errors"

	"github.com/V-ini-t86/broker-platform/internal/domain"
)

// ErrOrderNotFound is returned by CancelOrder for an unknown order ID.
var ErrOrderNotFound = errors.New("order not found")

// ErrOrderNotCancellable is returned when the order exists but has already
// reached a terminal status.
var ErrOrderNotCancellable = errors.New("order is not cancellable")

// Broker abstracts brokerage operations for order execution and account management.
type Broker interface {
	// Name returns the broker identifier (e.g. "alpaca", "simulator").
	Name() string

	// SubmitOrder sends an order to the brokerage for execution and returns
	// the order as acknowledged, with its broker-assigned ID and status.
	SubmitOrder(ctx context.Context, order *domain.Order) (*domain.Order, error)

	// CancelOrder requests cancellation of an open order by its ID.
	CancelOrder(ctx context.Context, orderID string) error

	// GetPositions returns all current positions held at the brokerage.
	GetPositions(ctx context.Context) ([]domain.Position, error)

	// GetAccount returns a snapshot of the account's financial metrics.
	GetAccount(ctx context.Context) (*domain.AccountInfo, error)
}

// Recorder receives every acknowledged order for persistence. Implemented by
// the order store; a nil Recorder disables recording.
type Recorder interface {
	SaveOrder(ctx context.Context, order *domain.Order) error
}
