package flowappsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a minimal FlowApp HTTP API client.
type Client struct {
	BaseURL     string
	BearerToken string
	HTTPClient  *http.Client
	Timeout     time.Duration
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		Timeout: 10 * time.Second,
	}
}

// OrderItem is one line of an order.
type OrderItem struct {
	ItemID   string  `json:"item_id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Order represents the API order model.
type Order struct {
	ID              string      `json:"id"`
	RestaurantID    string      `json:"restaurant_id"`
	Items           []OrderItem `json:"items"`
	Subtotal        float64     `json:"subtotal"`
	Taxes           float64     `json:"taxes"`
	DeliveryFee     float64     `json:"delivery_fee"`
	Total           float64     `json:"total"`
	Status          string      `json:"status"`
	OrderTime       string      `json:"order_time"`
	LastUpdateTime  string      `json:"last_update_time"`
	CompletionTime  *int        `json:"completion_time,omitempty"`
	RejectionReason *string     `json:"rejection_reason,omitempty"`
}

// Estimate is the wait estimate returned by track.
type Estimate struct {
	OrdersAhead      int `json:"orders_ahead"`
	EstimatedMinutes int `json:"estimated_minutes"`
}

// Track bundles an order with its estimate.
type Track struct {
	Order    Order    `json:"order"`
	Estimate Estimate `json:"estimate"`
}

// Decision previews what a status move would take.
type Decision struct {
	Kind           string `json:"kind"`
	TargetStatusID string `json:"target_status_id,omitempty"`
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

// Login exchanges credentials for a bearer token and stores it on the client.
func (c *Client) Login(ctx context.Context, username, password string) error {
	var resp struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, http.MethodPost, "v1/auth/login", map[string]any{
		"username": username,
		"password": password,
	}, &resp)
	if err != nil {
		return err
	}
	c.BearerToken = resp.Token
	return nil
}

// Checkout places an order.
func (c *Client) Checkout(ctx context.Context, restaurantID string, items []OrderItem) (Order, error) {
	var resp Order
	err := c.do(ctx, http.MethodPost, "v1/orders", map[string]any{
		"restaurant_id": restaurantID,
		"items":         items,
	}, &resp)
	return resp, err
}

// GetOrder fetches an order by id.
func (c *Client) GetOrder(ctx context.Context, id string) (Order, error) {
	var resp Order
	err := c.do(ctx, http.MethodGet, "v1/orders/"+url.PathEscape(id), nil, &resp)
	return resp, err
}

// TrackOrder returns the order and its wait estimate.
func (c *Client) TrackOrder(ctx context.Context, id string) (Track, error) {
	var resp Track
	err := c.do(ctx, http.MethodGet, "v1/orders/"+url.PathEscape(id)+"/track", nil, &resp)
	return resp, err
}

// PreviewTransition asks what moving the order would take, without moving it.
func (c *Client) PreviewTransition(ctx context.Context, orderID, targetStatusID string) (Decision, error) {
	var resp Decision
	endpoint := fmt.Sprintf("v1/orders/%s/transition?target_status_id=%s",
		url.PathEscape(orderID), url.QueryEscape(targetStatusID))
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

// Transition moves an order to a status. Reason is required when entering
// rejected; force confirms a backward move.
func (c *Client) Transition(ctx context.Context, orderID, targetStatusID, reason string, force bool) (Order, error) {
	body := map[string]any{
		"target_status_id": targetStatusID,
	}
	if reason != "" {
		body["reason"] = reason
	}
	if force {
		body["force"] = true
	}
	var resp Order
	err := c.do(ctx, http.MethodPost, "v1/orders/"+url.PathEscape(orderID)+"/transition", body, &resp)
	return resp, err
}

// Drop moves an order by dropping it onto a board column.
func (c *Client) Drop(ctx context.Context, orderID, columnID, reason string, force bool) (Order, error) {
	body := map[string]any{
		"column_id": columnID,
	}
	if reason != "" {
		body["reason"] = reason
	}
	if force {
		body["force"] = true
	}
	var resp Order
	err := c.do(ctx, http.MethodPost, "v1/orders/"+url.PathEscape(orderID)+"/drop", body, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	url := c.base() + "/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.BearerToken)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) base() string {
	return strings.TrimRight(c.BaseURL, "/")
}
