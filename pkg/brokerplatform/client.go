// Package brokerplatform provides a Go SDK for the broker-platform dashboard
// API: session management, portfolio views, and the order pad.
package brokerplatform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/V-ini-t86/broker-platform/internal/domain"
	"github.com/V-ini-t86/broker-platform/internal/httpapi"
)

// Client talks to a broker-platform server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
	Field      string
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("api error %d: %s (field %s)", e.StatusCode, e.Message, e.Field)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		buf = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, buf)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
			Field string `json:"field"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
			e.Error = resp.Status
		}
		return &APIError{StatusCode: resp.StatusCode, Message: e.Error, Field: e.Field}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}

// Login authenticates and starts a session.
func (c *Client) Login(ctx context.Context, brokerID, email, password string) (*domain.Session, error) {
	var resp httpapi.SessionResponse
	req := httpapi.LoginRequest{Broker: brokerID, Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/login", req, &resp); err != nil {
		return nil, err
	}
	return resp.Session, nil
}

// Logout ends the current session.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/logout", nil, nil)
}

// Session returns the current session state.
func (c *Client) Session(ctx context.Context) (*httpapi.SessionResponse, error) {
	var resp httpapi.SessionResponse
	if err := c.do(ctx, http.MethodGet, "/api/session", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Brokers lists the selectable brokers.
func (c *Client) Brokers(ctx context.Context) ([]domain.BrokerInfo, error) {
	var resp httpapi.BrokersResponse
	if err := c.do(ctx, http.MethodGet, "/api/brokers", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Brokers, nil
}

// Holdings retrieves the holdings view.
func (c *Client) Holdings(ctx context.Context) (*httpapi.HoldingsResponse, error) {
	var resp httpapi.HoldingsResponse
	if err := c.do(ctx, http.MethodGet, "/api/holdings", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Positions retrieves the positions view.
func (c *Client) Positions(ctx context.Context) (*httpapi.PositionsResponse, error) {
	var resp httpapi.PositionsResponse
	if err := c.do(ctx, http.MethodGet, "/api/positions", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Orders lists submitted orders, most recent first.
func (c *Client) Orders(ctx context.Context) ([]domain.Order, error) {
	var resp httpapi.OrdersResponse
	if err := c.do(ctx, http.MethodGet, "/api/orders", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Orders, nil
}

// OrderBook retrieves the current order-book snapshot for a symbol.
func (c *Client) OrderBook(ctx context.Context, symbol string) (*domain.BookSnapshot, error) {
	var snap domain.BookSnapshot
	if err := c.do(ctx, http.MethodGet, "/api/orderbook/"+symbol, nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// OpenOrderPad opens the order pad for a symbol.
func (c *Client) OpenOrderPad(ctx context.Context, symbol, side string) (*httpapi.OrderPadResponse, error) {
	var resp httpapi.OrderPadResponse
	req := httpapi.OpenOrderPadRequest{Symbol: symbol, Side: side}
	if err := c.do(ctx, http.MethodPost, "/api/orderpad/open", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CloseOrderPad closes the order pad without submitting.
func (c *Client) CloseOrderPad(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/orderpad/close", nil, nil)
}

// OrderPad returns the current order-pad state.
func (c *Client) OrderPad(ctx context.Context) (*httpapi.OrderPadResponse, error) {
	var resp httpapi.OrderPadResponse
	if err := c.do(ctx, http.MethodGet, "/api/orderpad", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateOrderPad applies field updates to the open draft.
func (c *Client) UpdateOrderPad(ctx context.Context, req httpapi.UpdateOrderPadRequest) (*httpapi.OrderPadResponse, error) {
	var resp httpapi.OrderPadResponse
	if err := c.do(ctx, http.MethodPut, "/api/orderpad", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SubmitOrder submits the open draft and returns the placed order.
func (c *Client) SubmitOrder(ctx context.Context) (*domain.Order, error) {
	var placed domain.Order
	if err := c.do(ctx, http.MethodPost, "/api/orderpad/submit", nil, &placed); err != nil {
		return nil, err
	}
	return &placed, nil
}
