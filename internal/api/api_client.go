package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"go-printshop-storefront/internal/apperror"
)

// TokenSource supplies the current bearer credential. An empty token means the
// request goes out unauthenticated and the server rejects as appropriate.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a closure to TokenSource.
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	logger  *zap.Logger
}

type ClientOption func(*Client)

func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.http = h }
}

func WithLogger(l *zap.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

func NewClient(baseURL string, tokens TokenSource, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		tokens:  tokens,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   *errorDetail    `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Prefer the body's message field for the user-facing notification,
		// falling back to the generic message when absent.
		message := ""
		if decodeErr == nil {
			if env.Error != nil && env.Error.Message != "" {
				message = env.Error.Message
			} else if env.Message != "" {
				message = env.Message
			}
		}
		return apperror.FromStatus(resp.StatusCode, message)
	}

	if out == nil {
		return nil
	}
	if decodeErr != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, decodeErr)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s %s data: %w", method, path, err)
	}
	return nil
}

// ==================== AUTH ====================

func (c *Client) Login(ctx context.Context, email, password string) (AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", LoginRequest{Email: email, Password: password}, &out)
	return out, err
}

func (c *Client) Register(ctx context.Context, name, email, password string) (AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/register", RegisterRequest{Name: name, Email: email, Password: password}, &out)
	return out, err
}

func (c *Client) Me(ctx context.Context) (User, error) {
	var out User
	err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &out)
	return out, err
}

// ==================== CATALOG ====================

func (c *Client) Products(ctx context.Context) ([]Product, error) {
	var out []Product
	err := c.do(ctx, http.MethodGet, "/api/products", nil, &out)
	return out, err
}

// ==================== WISHLIST ====================

func (c *Client) Wishlist(ctx context.Context) ([]WishlistEntry, error) {
	var out []WishlistEntry
	err := c.do(ctx, http.MethodGet, "/api/wishlist", nil, &out)
	return out, err
}

func (c *Client) WishlistAdd(ctx context.Context, productID string) ([]WishlistEntry, error) {
	var out []WishlistEntry
	err := c.do(ctx, http.MethodPost, "/api/wishlist/"+productID, nil, &out)
	return out, err
}

func (c *Client) WishlistRemove(ctx context.Context, productID string) ([]WishlistEntry, error) {
	var out []WishlistEntry
	err := c.do(ctx, http.MethodDelete, "/api/wishlist/"+productID, nil, &out)
	return out, err
}

// ==================== ORDERS & PAYMENT ====================

func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (CreateOrderResponse, error) {
	var out CreateOrderResponse
	err := c.do(ctx, http.MethodPost, "/api/orders", req, &out)
	return out, err
}

func (c *Client) CreateInvoice(ctx context.Context, orderID string) (Invoice, error) {
	var out Invoice
	err := c.do(ctx, http.MethodPost, "/api/orders/"+orderID+"/invoice", nil, &out)
	return out, err
}

func (c *Client) PaymentStatus(ctx context.Context, orderID string) (PaymentStatusResponse, error) {
	var out PaymentStatusResponse
	err := c.do(ctx, http.MethodGet, "/api/orders/"+orderID+"/payment-status", nil, &out)
	return out, err
}

// ==================== WALLET ====================

func (c *Client) TopUp(ctx context.Context, amount decimal.Decimal) (User, error) {
	var out User
	err := c.do(ctx, http.MethodPost, "/api/wallet/topup", TopUpRequest{Amount: amount}, &out)
	return out, err
}
