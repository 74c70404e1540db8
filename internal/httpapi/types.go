// Package httpapi provides the dashboard HTTP REST API: session and login,
// portfolio views, the order pad, and the live order-book stream.
package httpapi

import (
	"github.com/V-ini-t86/broker-platform/internal/domain"
)

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Broker   string `json:"broker"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse reports the current session state.
type SessionResponse struct {
	Authenticated bool            `json:"authenticated"`
	Session       *domain.Session `json:"session,omitempty"`
}

// BrokersResponse lists the selectable brokers on the login screen.
type BrokersResponse struct {
	Brokers []domain.BrokerInfo `json:"brokers"`
}

// HoldingsResponse pairs the holdings rows with their summary strip.
type HoldingsResponse struct {
	Holdings []domain.Holding `json:"holdings"`
	Summary  HoldingsSummary  `json:"summary"`
}

// HoldingsSummary mirrors portfolio.HoldingsSummary on the wire.
type HoldingsSummary struct {
	TotalValue     float64 `json:"totalValue"`
	TotalPL        float64 `json:"totalPL"`
	TotalPLPercent float64 `json:"totalPLPercent"`
}

// PositionsResponse pairs the position rows with their summary strip.
type PositionsResponse struct {
	Positions []domain.Position `json:"positions"`
	Summary   PositionsSummary  `json:"summary"`
}

// PositionsSummary mirrors portfolio.PositionsSummary on the wire.
type PositionsSummary struct {
	TotalValue  float64 `json:"totalValue"`
	TotalPL     float64 `json:"totalPL"`
	TotalMargin float64 `json:"totalMargin"`
}

// OrdersResponse lists submitted orders, most recent first.
type OrdersResponse struct {
	Orders []domain.Order `json:"orders"`
}

// OpenOrderPadRequest is the body of POST /api/orderpad/open.
type OpenOrderPadRequest struct {
	Symbol string `json:"symbol"`
	Side   string `json:"side"`
}

// UpdateOrderPadRequest is the body of PUT /api/orderpad. Nil fields are
// left unchanged.
type UpdateOrderPadRequest struct {
	OrderType   *string  `json:"orderType,omitempty"`
	Side        *string  `json:"side,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Quantity    *int64   `json:"quantity,omitempty"`
	TimeInForce *string  `json:"timeInForce,omitempty"`
}

// OrderPadResponse is the full state of the order pad.
type OrderPadResponse struct {
	Open          bool               `json:"open"`
	Symbol        string             `json:"symbol,omitempty"`
	Side          string             `json:"side,omitempty"`
	Loading       bool               `json:"loading"`
	Draft         *domain.OrderDraft `json:"draft,omitempty"`
	Quote         *domain.Quote      `json:"quote,omitempty"`
	EstimatedCost float64            `json:"estimatedCost"`
}

// TickHistoryResponse lists recorded ticks for one symbol and date.
type TickHistoryResponse struct {
	Symbol string             `json:"symbol"`
	Date   string             `json:"date"`
	Ticks  []domain.TradeTick `json:"ticks"`
}

// StreamMessage is one websocket frame of the order-book stream.
type StreamMessage struct {
	Symbol   string              `json:"symbol"`
	Snapshot domain.BookSnapshot `json:"snapshot"`
}
