package broker

import (
	"context"
	"fmt"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/shopspring/decimal"

	"github.com/V-ini-t86/broker-platform/internal/domain"
)

// Compile-time interface check.
var _ Broker = (*AlpacaBroker)(nil)

// AlpacaBroker implements the Broker interface using the Alpaca brokerage API.
type AlpacaBroker struct {
	client   *alpaca.Client
	recorder Recorder
}

// NewAlpacaBroker creates an AlpacaBroker configured with the given
// credentials and API endpoint. recorder may be nil.
func NewAlpacaBroker(apiKey, apiSecret, baseURL string, recorder Recorder) *AlpacaBroker {
	return &AlpacaBroker{
		client: alpaca.NewClient(alpaca.ClientOpts{
			APIKey:    apiKey,
			APISecret: apiSecret,
			BaseURL:   baseURL,
		}),
		recorder: recorder,
	}
}

// Name returns "alpaca".
func (b *AlpacaBroker) Name() string {
	return "alpaca"
}

// SubmitOrder sends the order to Alpaca and records the acknowledgement.
func (b *AlpacaBroker) SubmitOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	qty := decimal.NewFromInt(order.Qty)
	req := alpaca.PlaceOrderRequest{
		Symbol:      order.Symbol,
		Qty:         &qty,
		Side:        alpaca.Side(order.Side),
		Type:        alpaca.OrderType(order.Type),
		TimeInForce: alpaca.TimeInForce(order.TimeInForce),
	}
	if order.Type == domain.OrderTypeLimit || order.Type == domain.OrderTypeStopLimit {
		limit := decimal.NewFromFloat(order.LimitPrice)
		req.LimitPrice = &limit
	}
	if order.Type == domain.OrderTypeStop || order.Type == domain.OrderTypeStopLimit {
		stop := decimal.NewFromFloat(order.LimitPrice)
		req.StopPrice = &stop
	}

	ack, err := b.client.PlaceOrder(req)
	if err != nil {
		return nil, fmt.Errorf("PlaceOrder: %w", err)
	}

	placed := fromAlpacaOrder(ack)
	if b.recorder != nil {
		if err := b.recorder.SaveOrder(ctx, placed); err != nil {
			return placed, fmt.Errorf("recording order %s: %w", placed.ID, err)
		}
	}
	return placed, nil
}

// CancelOrder requests cancellation of an open order via the Alpaca API.
func (b *AlpacaBroker) CancelOrder(_ context.Context, orderID string) error {
	if err := b.client.CancelOrder(orderID); err != nil {
		return fmt.Errorf("CancelOrder %s: %w", orderID, err)
	}
	return nil
}

// GetPositions returns all current positions from the Alpaca account.
func (b *AlpacaBroker) GetPositions(_ context.Context) ([]domain.Position, error) {
	raw, err := b.client.GetPositions()
	if err != nil {
		return nil, fmt.Errorf("GetPositions: %w", err)
	}

	positions := make([]domain.Position, 0, len(raw))
	for _, p := range raw {
		pos := domain.Position{
			Symbol:     p.Symbol,
			Side:       p.Side,
			Quantity:   p.Qty.Abs().IntPart(),
			EntryPrice: p.AvgEntryPrice.InexactFloat64(),
			Leverage:   1,
		}
		if p.CurrentPrice != nil {
			pos.CurrentPrice = p.CurrentPrice.InexactFloat64()
		}
		if p.MarketValue != nil {
			pos.MarketValue = p.MarketValue.InexactFloat64()
		}
		if p.UnrealizedPL != nil {
			pos.UnrealizedPL = p.UnrealizedPL.InexactFloat64()
		}
		if p.UnrealizedPLPC != nil {
			pos.UnrealizedPLPercent = p.UnrealizedPLPC.Mul(decimal.NewFromInt(100)).InexactFloat64()
		}
		positions = append(positions, pos)
	}
	return positions, nil
}

// GetAccount returns the current account information from the Alpaca API.
func (b *AlpacaBroker) GetAccount(_ context.Context) (*domain.AccountInfo, error) {
	acct, err := b.client.GetAccount()
	if err != nil {
		return nil, fmt.Errorf("GetAccount: %w", err)
	}
	return &domain.AccountInfo{
		Cash:        acct.Cash.InexactFloat64(),
		Equity:      acct.Equity.InexactFloat64(),
		BuyingPower: acct.BuyingPower.InexactFloat64(),
	}, nil
}

// fromAlpacaOrder maps an Alpaca order acknowledgement onto the local shape.
func fromAlpacaOrder(o *alpaca.Order) *domain.Order {
	out := &domain.Order{
		ID:          o.ID,
		Symbol:      o.Symbol,
		Side:        domain.OrderSide(o.Side),
		Type:        domain.OrderType(o.Type),
		TimeInForce: domain.TimeInForce(o.TimeInForce),
		Status:      domain.OrderStatus(o.Status),
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
	if o.Qty != nil {
		out.Qty = o.Qty.IntPart()
	}
	if o.LimitPrice != nil {
		out.LimitPrice = o.LimitPrice.InexactFloat64()
	}
	out.FilledQty = o.FilledQty.IntPart()
	if o.FilledAvgPrice != nil {
		out.FilledAvgPrice = o.FilledAvgPrice.InexactFloat64()
	}
	return out
}
