// Package topstepx is a minimal client for the TopstepX REST API: key
// auth plus the account, trade, and order search endpoints the sync
// pipeline needs.
package topstepx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gw/topstepx-tradelog/internal/config"
)

const timestampLayout = "2006-01-02T15:04:05.000Z"

// statusFilled is the Order.Status value for fully filled orders.
const statusFilled = 2

type Client struct {
	http     *http.Client
	baseURL  string
	username string
	apiKey   string
	token    string
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		http:     &http.Client{Timeout: 15 * time.Second},
		baseURL:  cfg.BaseURL,
		username: cfg.Username,
		apiKey:   cfg.APIKey,
	}
}

// APIError is a failed TopstepX call: either an HTTP-level failure or a
// success=false envelope.
type APIError struct {
	Endpoint string
	Status   int
	Message  string
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("topstepx %s: HTTP %d: %s", e.Endpoint, e.Status, e.Message)
	}
	return fmt.Sprintf("topstepx %s: %s", e.Endpoint, e.Message)
}

// --- API Types ---

type Account struct {
	ID      int     `json:"id"`
	Name    string  `json:"name"`
	Balance float64 `json:"balance"`
}

// Trade is one record from Trade/search: a half-turn execution that
// carries realized P&L when it closes a position.
type Trade struct {
	ContractID        string   `json:"contractId"`
	Side              int      `json:"side"` // 0=buy, 1=sell
	Size              int      `json:"size"`
	Price             float64  `json:"price"`
	ProfitAndLoss     *float64 `json:"profitAndLoss"`
	Fees              float64  `json:"fees"`
	Voided            bool     `json:"voided"`
	CreationTimestamp string   `json:"creationTimestamp"`
}

// Order is one record from Order/search.
type Order struct {
	ContractID        string   `json:"contractId"`
	Side              int      `json:"side"` // 0=buy, 1=sell
	Size              int      `json:"size"`
	Price             float64  `json:"price"`
	FillVolume        int      `json:"fillVolume"`
	FilledPrice       *float64 `json:"filledPrice"`
	Status            int      `json:"status"`
	CreationTimestamp string   `json:"creationTimestamp"`
	UpdateTimestamp   string   `json:"updateTimestamp"`
}

// FilledSize prefers the fill volume over the ordered size.
func (o *Order) FilledSize() int {
	if o.FillVolume > 0 {
		return o.FillVolume
	}
	return o.Size
}

// FillPrice prefers the actual filled price over the order price.
func (o *Order) FillPrice() float64 {
	if o.FilledPrice != nil {
		return *o.FilledPrice
	}
	return o.Price
}

// Timestamp prefers the update timestamp (fill time) over creation.
func (o *Order) Timestamp() string {
	if o.UpdateTimestamp != "" {
		return o.UpdateTimestamp
	}
	return o.CreationTimestamp
}

// --- API Methods ---

// Authenticate exchanges the API key for a session token used by all
// later calls.
func (c *Client) Authenticate(ctx context.Context) error {
	var result struct {
		Success      bool   `json:"success"`
		Token        string `json:"token"`
		ErrorMessage string `json:"errorMessage"`
	}
	payload := map[string]string{
		"userName": c.username,
		"apiKey":   c.apiKey,
	}
	if err := c.post(ctx, "/Auth/loginKey", payload, &result); err != nil {
		return err
	}
	if !result.Success {
		return &APIError{Endpoint: "/Auth/loginKey", Message: result.ErrorMessage}
	}
	c.token = result.Token
	return nil
}

func (c *Client) SearchAccounts(ctx context.Context) ([]Account, error) {
	var result struct {
		Success      bool      `json:"success"`
		Accounts     []Account `json:"accounts"`
		ErrorMessage string    `json:"errorMessage"`
	}
	if err := c.post(ctx, "/Account/search", map[string]any{}, &result); err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, &APIError{Endpoint: "/Account/search", Message: result.ErrorMessage}
	}
	return result.Accounts, nil
}

// SearchTrades fetches the trade history for an account, dropping voided
// trades.
func (c *Client) SearchTrades(ctx context.Context, accountID int, start, end time.Time) ([]Trade, error) {
	var result struct {
		Success      bool    `json:"success"`
		Trades       []Trade `json:"trades"`
		ErrorMessage string  `json:"errorMessage"`
	}
	if err := c.post(ctx, "/Trade/search", searchPayload(accountID, start, end), &result); err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, &APIError{Endpoint: "/Trade/search", Message: result.ErrorMessage}
	}

	trades := result.Trades[:0]
	for _, t := range result.Trades {
		if !t.Voided {
			trades = append(trades, t)
		}
	}
	return trades, nil
}

// SearchOrders fetches the order history for an account, keeping filled
// orders only.
func (c *Client) SearchOrders(ctx context.Context, accountID int, start, end time.Time) ([]Order, error) {
	var result struct {
		Success      bool    `json:"success"`
		Orders       []Order `json:"orders"`
		ErrorMessage string  `json:"errorMessage"`
	}
	if err := c.post(ctx, "/Order/search", searchPayload(accountID, start, end), &result); err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, &APIError{Endpoint: "/Order/search", Message: result.ErrorMessage}
	}

	orders := result.Orders[:0]
	for _, o := range result.Orders {
		if o.Status == statusFilled {
			orders = append(orders, o)
		}
	}
	return orders, nil
}

func searchPayload(accountID int, start, end time.Time) map[string]any {
	return map[string]any{
		"accountId":      accountID,
		"startTimestamp": start.UTC().Format(timestampLayout),
		"endTimestamp":   end.UTC().Format(timestampLayout),
	}
}

// --- HTTP helpers ---

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	slog.Debug("topstepx request", "path", path)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("topstepx request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		slog.Error("topstepx API error", "path", path, "status", resp.StatusCode, "body", string(respBody))
		return &APIError{Endpoint: path, Status: resp.StatusCode, Message: string(respBody)}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decoding response: %w (body: %s)", err, string(respBody))
		}
	}
	return nil
}
