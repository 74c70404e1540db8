// Package domain defines the shared types for the broker-platform backend:
// sessions, quotes, order drafts, orders, holdings, positions, and the
// order-book shapes served to the dashboard views.
package domain

import (
	"fmt"
	"time"
)

// ---------------------------------------------------------------------------
// Enums
// ---------------------------------------------------------------------------

// OrderSide is the direction of an order.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// ParseOrderSide validates and returns a side, defaulting to buy for the
// empty string (the order pad opens as a buy unless told otherwise).
func ParseOrderSide(s string) (OrderSide, error) {
	switch OrderSide(s) {
	case OrderSideBuy, OrderSideSell:
		return OrderSide(s), nil
	case "":
		return OrderSideBuy, nil
	default:
		return "", fmt.Errorf("invalid order side %q", s)
	}
}

// OrderType determines how an order is priced.
type OrderType string

const (
	OrderTypeMarket    OrderType = "market"
	OrderTypeLimit     OrderType = "limit"
	OrderTypeStop      OrderType = "stop"
	OrderTypeStopLimit OrderType = "stop_limit"
)

// ParseOrderType validates and returns an order type.
func ParseOrderType(s string) (OrderType, error) {
	switch OrderType(s) {
	case OrderTypeMarket, OrderTypeLimit, OrderTypeStop, OrderTypeStopLimit:
		return OrderType(s), nil
	default:
		return "", fmt.Errorf("invalid order type %q", s)
	}
}

// TimeInForce controls how long an order stays working.
type TimeInForce string

const (
	TimeInForceDay TimeInForce = "day"
	TimeInForceGTC TimeInForce = "gtc"
	TimeInForceIOC TimeInForce = "ioc"
)

// ParseTimeInForce validates and returns a time-in-force.
func ParseTimeInForce(s string) (TimeInForce, error) {
	switch TimeInForce(s) {
	case TimeInForceDay, TimeInForceGTC, TimeInForceIOC:
		return TimeInForce(s), nil
	default:
		return "", fmt.Errorf("invalid time in force %q", s)
	}
}

// OrderStatus is the lifecycle state of a submitted order.
type OrderStatus string

const (
	OrderStatusNew       OrderStatus = "new"
	OrderStatusFilled    OrderStatus = "filled"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusRejected  OrderStatus = "rejected"
)

// ---------------------------------------------------------------------------
// Session & brokers
// ---------------------------------------------------------------------------

// Session is the authenticated identity for one running client instance.
// A Session exists if and only if the user is logged in; there is no
// half-authenticated state.
type Session struct {
	ID          string `json:"id"`
	DisplayName string `json:"name"`
	Email       string `json:"email"`
	BrokerID    string `json:"broker"`
	AvatarURL   string `json:"avatar"`
}

// BrokerInfo describes a selectable broker on the login screen.
type BrokerInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Credentials are the values submitted with a login attempt.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ---------------------------------------------------------------------------
// Quotes & order drafts
// ---------------------------------------------------------------------------

// Quote is a read-only market-data snapshot for one symbol. It may be stale;
// no freshness invariant is enforced.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	ChangeAbs     float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
}

// OrderDraft is the working state of the order-entry form for one open
// order-pad cycle. It is instantiated fresh on every open and never persisted.
type OrderDraft struct {
	Symbol      string      `json:"symbol"`
	Side        OrderSide   `json:"side"`
	Type        OrderType   `json:"orderType"`
	Price       float64     `json:"price"`
	Quantity    int64       `json:"quantity"`
	TimeInForce TimeInForce `json:"timeInForce"`
}

// Validate checks the draft invariants: quantity must be at least 1, and a
// positive price is required for every type except market (where the price
// is locked to the quote and cannot be wrong by construction).
func (d *OrderDraft) Validate() error {
	if d.Quantity < 1 {
		return &ValidationError{Field: "quantity", Message: "quantity must be at least 1"}
	}
	if d.Type != OrderTypeMarket && d.Price <= 0 {
		return &ValidationError{Field: "price", Message: "price must be positive for non-market orders"}
	}
	return nil
}

// ValidationError reports a field-level order draft violation. It is surfaced
// inline on the offending field and never closes the order pad.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ---------------------------------------------------------------------------
// Orders, holdings, positions
// ---------------------------------------------------------------------------

// Order is a submitted order as acknowledged by a broker.
type Order struct {
	ID             string      `json:"id"`
	Symbol         string      `json:"symbol"`
	Side           OrderSide   `json:"side"`
	Type           OrderType   `json:"orderType"`
	Qty            int64       `json:"quantity"`
	LimitPrice     float64     `json:"price"`
	TimeInForce    TimeInForce `json:"timeInForce"`
	Status         OrderStatus `json:"status"`
	FilledQty      int64       `json:"filledQuantity"`
	FilledAvgPrice float64     `json:"filledAvgPrice"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

// Holding is one row of the portfolio holdings view.
type Holding struct {
	Symbol              string  `json:"symbol"`
	Name                string  `json:"name"`
	Quantity            int64   `json:"quantity"`
	AvgPrice            float64 `json:"avgPrice"`
	CurrentPrice        float64 `json:"currentPrice"`
	MarketValue         float64 `json:"marketValue"`
	UnrealizedPL        float64 `json:"unrealizedPL"`
	UnrealizedPLPercent float64 `json:"unrealizedPLPercent"`
	Sector              string  `json:"sector"`
	Allocation          float64 `json:"allocation"`
}

// Position is one row of the positions view. Short positions carry a
// negative market value.
type Position struct {
	Symbol              string  `json:"symbol"`
	Side                string  `json:"side"` // "long" or "short"
	Quantity            int64   `json:"quantity"`
	EntryPrice          float64 `json:"entryPrice"`
	CurrentPrice        float64 `json:"currentPrice"`
	MarketValue         float64 `json:"marketValue"`
	UnrealizedPL        float64 `json:"unrealizedPL"`
	UnrealizedPLPercent float64 `json:"unrealizedPLPercent"`
	Margin              float64 `json:"margin"`
	Leverage            int     `json:"leverage"`
}

// AccountInfo is a snapshot of account-level financial metrics.
type AccountInfo struct {
	Cash        float64 `json:"cash"`
	Equity      float64 `json:"equity"`
	BuyingPower float64 `json:"buyingPower"`
}

// ---------------------------------------------------------------------------
// Order-book view shapes
// ---------------------------------------------------------------------------

// DepthLevel is one price level of the simulated order book.
type DepthLevel struct {
	Price float64 `json:"price"`
	Size  int64   `json:"size"`
	Total float64 `json:"total"`
}

// TradeTick is one trade print in the recent-trades panel.
type TradeTick struct {
	Symbol string    `json:"symbol"`
	Time   time.Time `json:"time"`
	Price  float64   `json:"price"`
	Size   int64     `json:"size"`
	Side   OrderSide `json:"side"`
}

// BookSnapshot is the full state of the order-book view for one symbol at
// one instant: depth on both sides, recent trades, and the headline stats.
type BookSnapshot struct {
	Symbol        string       `json:"symbol"`
	LastPrice     float64      `json:"lastPrice"`
	PriceChange   float64      `json:"priceChange"`
	Volume        int64        `json:"volume"`
	UnrealizedPnL float64      `json:"unrealizedPnl"`
	RealizedPnL   float64      `json:"realizedPnl"`
	Bids          []DepthLevel `json:"bids"`
	Asks          []DepthLevel `json:"asks"`
	Trades        []TradeTick  `json:"trades"`
}
