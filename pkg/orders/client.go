package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/nyudevops/shopcarts/pkg/errors"
)

const (
	// StatusPlaced marks every line item handed to the order service.
	StatusPlaced = "PLACED"

	defaultTimeout              = 10 * time.Second
	responseBodyReadLimit int64 = 1024
)

var errEndpointRequired = errors.New("order endpoint is required")

// Client hands shopcart contents to the external order service.
type Client struct {
	httpClient *http.Client
	endpoint   string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// NewClient builds an order client posting to endpoint.
func NewClient(endpoint string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(endpoint)
	if trimmed == "" {
		return nil, errEndpointRequired
	}

	client := &Client{
		endpoint:   trimmed,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// Endpoint returns the configured order service URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Order is the cart snapshot sent to the order service.
type Order struct {
	CustomerID int         `json:"customer_id"`
	Items      []OrderItem `json:"order_items"`
}

// OrderItem is a single line of an Order.
type OrderItem struct {
	ItemID    int     `json:"item_id"`
	ProductID int     `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Status    string  `json:"status"`
}

// NewOrderItem builds a placed line item with the price rounded to cents.
func NewOrderItem(itemID, sku, amount int, price float64) OrderItem {
	return OrderItem{
		ItemID:    itemID,
		ProductID: sku,
		Quantity:  amount,
		Price:     RoundPrice(price),
		Status:    StatusPlaced,
	}
}

// RoundPrice rounds a unit price half away from zero to two decimals.
func RoundPrice(price float64) float64 {
	return decimal.NewFromFloat(price).Round(2).InexactFloat64()
}

// PlaceOrder posts the order once. Only a 201 Created counts as accepted.
func (c *Client) PlaceOrder(ctx context.Context, order Order) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "order client not configured")
	}
	if len(order.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order has no items")
	}

	payload, err := json.Marshal(order)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal order request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build order request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeOrderRejected, err, "order service unreachable")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return pkgerrors.Wrap(
			pkgerrors.CodeOrderRejected,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
			"order service did not accept the order",
		).WithDetails(map[string]any{"upstream_status": resp.StatusCode})
	}

	return nil
}
