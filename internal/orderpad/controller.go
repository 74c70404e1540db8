// Package orderpad bridges the order-intent store to a concrete, validated
// order draft: it reacts to intent transitions, seeds the draft from a fresh
// quote, applies the field rules (market orders lock the price to the
// quote), and owns the submission attempt.
package orderpad

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/V-ini-t86/broker-platform/internal/domain"
	"github.com/V-ini-t86/broker-platform/internal/intent"
	"github.com/V-ini-t86/broker-platform/internal/marketdata"
)

// ErrNoOpenOrderPad is returned by draft operations while the order pad is
// closed or its draft has not been seeded yet.
var ErrNoOpenOrderPad = errors.New("order pad is not open")

// ErrQuotePending gates resubmission while the seeding quote lookup is still
// in flight.
var ErrQuotePending = errors.New("quote lookup in progress")

// ErrSubmitPending gates re-entry while a submission attempt is in flight.
var ErrSubmitPending = errors.New("submission in progress")

// DefaultQuantity seeds every fresh draft.
const DefaultQuantity = 10

// Submitter is the external order-submission sink. In this system it is a
// broker implementation; failure modes beyond an error return are not
// modeled here.
type Submitter interface {
	SubmitOrder(ctx context.Context, order *domain.Order) (*domain.Order, error)
}

// Controller owns the order draft for the duration of one open/close cycle
// of the order pad.
type Controller struct {
	intents      *intent.Store
	quotes       marketdata.QuoteSource
	sink         Submitter
	defaultPrice float64
	log          *slog.Logger

	mu         sync.Mutex
	loading    bool
	submitting bool
	draft      *domain.OrderDraft
	quote      domain.Quote
}

// NewController creates a Controller wired to the given intent store, quote
// source, and submission sink. defaultPrice substitutes for failed or
// unknown-symbol quote lookups so the form never blocks on market data.
func NewController(intents *intent.Store, quotes marketdata.QuoteSource, sink Submitter, defaultPrice float64, log *slog.Logger) *Controller {
	return &Controller{
		intents:      intents,
		quotes:       quotes,
		sink:         sink,
		defaultPrice: defaultPrice,
		log:          log,
	}
}

// Run subscribes to intent transitions and processes them until ctx is
// cancelled. It should be launched as a goroutine.
func (c *Controller) Run(ctx context.Context) {
	id, ch := c.intents.Subscribe(64)
	defer c.intents.Unsubscribe(id)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			c.HandleEvent(ctx, ev)
		}
	}
}

// HandleEvent applies one intent transition: an open seeds a fresh draft
// from a fresh quote lookup, a close discards the draft.
func (c *Controller) HandleEvent(ctx context.Context, ev intent.Event) {
	switch ev.Type {
	case intent.EventOpened:
		c.handleOpened(ctx, ev)
	case intent.EventClosed:
		c.mu.Lock()
		c.draft = nil
		c.loading = false
		c.mu.Unlock()
	}
}

// handleOpened performs the quote lookup for a newly opened intent and seeds
// the draft. The lookup result is discarded if the intent has transitioned
// again in the meantime (closed, or reopened for another symbol).
func (c *Controller) handleOpened(ctx context.Context, ev intent.Event) {
	c.mu.Lock()
	c.loading = true
	c.draft = nil
	c.mu.Unlock()

	quote, err := c.quotes.GetQuote(ctx, ev.Symbol)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		// Degrade to the configured fallback price rather than blocking the
		// form. Inherited placeholder policy, not a production recommendation.
		c.log.Warn("quote lookup failed, using fallback price",
			"symbol", ev.Symbol, "fallback", c.defaultPrice, "error", err)
		quote = domain.Quote{Symbol: ev.Symbol, Price: c.defaultPrice}
	}

	c.applyQuote(ev, quote)
}

// applyQuote seeds the draft from a resolved quote, unless the intent has
// moved on since the lookup started.
func (c *Controller) applyQuote(ev intent.Event, quote domain.Quote) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ev.Gen != c.intents.Gen() {
		// Late-arriving result for an intent that is closed or replaced.
		c.log.Debug("discarding stale quote", "symbol", ev.Symbol, "gen", ev.Gen)
		return
	}

	c.quote = quote
	c.draft = &domain.OrderDraft{
		Symbol:      ev.Symbol,
		Side:        ev.Side,
		Type:        domain.OrderTypeMarket,
		Price:       quote.Price,
		Quantity:    DefaultQuantity,
		TimeInForce: domain.TimeInForceDay,
	}
	c.loading = false
}

// Draft returns a copy of the current draft. ok is false while the pad is
// closed or the draft is still being seeded.
func (c *Controller) Draft() (domain.OrderDraft, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.draft == nil {
		return domain.OrderDraft{}, false
	}
	return *c.draft, true
}

// Quote returns the quote the current draft was seeded from.
func (c *Controller) Quote() domain.Quote {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.quote
}

// Loading reports whether the seeding quote lookup is still in flight.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// SetOrderType updates the order type. Switching to market re-locks the
// price to the last fetched quote; switching away leaves the last entered
// value in place and makes the field editable again.
func (c *Controller) SetOrderType(t domain.OrderType) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.draft == nil {
		return ErrNoOpenOrderPad
	}
	c.draft.Type = t
	if t == domain.OrderTypeMarket {
		c.draft.Price = c.quote.Price
	}
	return nil
}

// SetSide updates the draft side. Purely presentational; validation does not
// depend on it.
func (c *Controller) SetSide(side domain.OrderSide) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.draft == nil {
		return ErrNoOpenOrderPad
	}
	c.draft.Side = side
	return nil
}

// SetPrice updates the draft price. While the order type is market the price
// is locked to the quote and the call has no effect.
func (c *Controller) SetPrice(price float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.draft == nil {
		return ErrNoOpenOrderPad
	}
	if c.draft.Type == domain.OrderTypeMarket {
		return nil
	}
	c.draft.Price = price
	return nil
}

// SetQuantity updates the draft quantity. Range checking happens at submit.
func (c *Controller) SetQuantity(qty int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.draft == nil {
		return ErrNoOpenOrderPad
	}
	c.draft.Quantity = qty
	return nil
}

// SetTimeInForce updates the draft time-in-force.
func (c *Controller) SetTimeInForce(tif domain.TimeInForce) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.draft == nil {
		return ErrNoOpenOrderPad
	}
	c.draft.TimeInForce = tif
	return nil
}

// EstimatedCost returns quantity × price rounded to 2 decimal places, or 0
// when no draft is open. There is no commission model; commission is 0.
func (c *Controller) EstimatedCost() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.draft == nil {
		return 0
	}
	cost := decimal.NewFromFloat(c.draft.Price).
		Mul(decimal.NewFromInt(c.draft.Quantity)).
		Round(2)
	f, _ := cost.Float64()
	return f
}

// Submit validates the draft and hands it to the submission sink. On success
// the intent store is closed, ending the open cycle. On validation failure
// the error names the offending field and the pad stays open.
func (c *Controller) Submit(ctx context.Context) (*domain.Order, error) {
	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return nil, ErrQuotePending
	}
	if c.submitting {
		c.mu.Unlock()
		return nil, ErrSubmitPending
	}
	if c.draft == nil {
		c.mu.Unlock()
		return nil, ErrNoOpenOrderPad
	}
	if err := c.draft.Validate(); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	draft := *c.draft
	c.submitting = true
	c.mu.Unlock()

	now := time.Now()
	order := &domain.Order{
		Symbol:      draft.Symbol,
		Side:        draft.Side,
		Type:        draft.Type,
		Qty:         draft.Quantity,
		LimitPrice:  draft.Price,
		TimeInForce: draft.TimeInForce,
		Status:      domain.OrderStatusNew,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	placed, err := c.sink.SubmitOrder(ctx, order)

	c.mu.Lock()
	c.submitting = false
	if err != nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("submitting order: %w", err)
	}
	c.draft = nil
	c.mu.Unlock()

	c.log.Info("order submitted",
		"symbol", placed.Symbol, "side", placed.Side, "qty", placed.Qty, "type", placed.Type)
	c.intents.Close()
	return placed, nil
}
