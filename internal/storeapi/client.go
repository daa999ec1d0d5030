package storeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"storedash/internal/models"
	"storedash/internal/pkg/httpclient"
)

// TokenSource yields the bearer token attached to every call.
type TokenSource interface {
	Token() string
}

// Client talks to the storefront REST backend. Every call is a single
// attempt; failures come back as *Error.
type Client struct {
	http   *httpclient.Client
	tokens TokenSource
	logger *zap.Logger
}

// New creates a backend client. A zero timeout means none.
func New(baseURL string, timeout time.Duration, tokens TokenSource, logger *zap.Logger) *Client {
	return &Client{
		http:   httpclient.New(baseURL).WithTimeout(timeout),
		tokens: tokens,
		logger: logger,
	}
}

// envelope holds the fields every backend reply may carry.
type envelope struct {
	OK    *bool  `json:"ok"`
	Error string `json:"error"`
}

func (c *Client) request(ctx context.Context, body interface{}) *resty.Request {
	req := c.http.Request(ctx)
	if token := c.tokens.Token(); token != "" {
		req.SetAuthToken(token)
	}
	req.SetHeader("Content-Type", "application/json")
	if body != nil {
		req.SetBody(body)
	}
	return req
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	req := c.request(ctx, body)
	if len(query) > 0 {
		req.SetQueryParamsFromValues(query)
	}
	reqID := req.Header.Get(httpclient.RequestIDHeader)

	resp, err := req.Execute(method, path)
	if err != nil {
		c.logger.Warn("Store API call failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", reqID),
			zap.Error(err),
		)
		return &Error{Message: err.Error(), Err: err}
	}

	raw := resp.Body()
	var env envelope
	_ = json.Unmarshal(raw, &env) // non-JSON bodies decode as {}

	if !resp.IsSuccess() || (env.OK != nil && !*env.OK) {
		apiErr := newHTTPError(resp.StatusCode(), env.Error)
		c.logger.Warn("Store API returned an error",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", reqID),
			zap.Int("status", apiErr.Status),
			zap.String("error", apiErr.Message),
		)
		return apiErr
	}

	c.logger.Debug("Store API call",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", reqID),
		zap.Int("status", resp.StatusCode()),
	)

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Status: resp.StatusCode(), Message: fmt.Sprintf("invalid response from %s: %v", path, err), Err: err}
	}
	return nil
}

func itemPath(collection, id string, suffix ...string) string {
	p := "/api/" + collection + "/" + url.PathEscape(id)
	for _, s := range suffix {
		p += "/" + s
	}
	return p
}

// ── Store ─────────────────────────────────────────────────────────────

// GetStore fetches GET /api/store.
func (c *Client) GetStore(ctx context.Context) (*models.Store, error) {
	var out struct {
		Store *models.Store `json:"store"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/store", nil, nil, &out); err != nil {
		return nil, err
	}
	if out.Store == nil {
		return nil, &Error{Status: http.StatusOK, Message: "Store not found in response"}
	}
	return out.Store, nil
}

// UpdateStore sends PUT /api/store.
func (c *Client) UpdateStore(ctx context.Context, settings models.StoreSettings) error {
	return c.do(ctx, http.MethodPut, "/api/store", nil, settings, nil)
}

// UpdateBank sends PUT /api/store/bank.
func (c *Client) UpdateBank(ctx context.Context, bank models.BankDetails) error {
	return c.do(ctx, http.MethodPut, "/api/store/bank", nil, bank, nil)
}

// ── Products ──────────────────────────────────────────────────────────

// ListProducts fetches GET /api/products.
func (c *Client) ListProducts(ctx context.Context) ([]models.Product, error) {
	var out struct {
		Products []models.Product `json:"products"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/products", nil, nil, &out); err != nil {
		return nil, err
	}
	if out.Products == nil {
		out.Products = []models.Product{}
	}
	return out.Products, nil
}

// CreateProduct sends POST /api/products.
func (c *Client) CreateProduct(ctx context.Context, in models.ProductInput) error {
	return c.do(ctx, http.MethodPost, "/api/products", nil, in, nil)
}

// UpdateProduct sends the full record with PUT /api/products/:id.
func (c *Client) UpdateProduct(ctx context.Context, id string, in models.ProductInput) error {
	return c.do(ctx, http.MethodPut, itemPath("products", id), nil, in, nil)
}

// ── Orders ────────────────────────────────────────────────────────────

// ListOrders fetches GET /api/orders.
func (c *Client) ListOrders(ctx context.Context) ([]models.Order, error) {
	var out struct {
		Orders []models.Order `json:"orders"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/orders", nil, nil, &out); err != nil {
		return nil, err
	}
	if out.Orders == nil {
		out.Orders = []models.Order{}
	}
	return out.Orders, nil
}

// SetOrderStatus sends PUT /api/orders/:id/status.
func (c *Client) SetOrderStatus(ctx context.Context, id, status string) error {
	return c.do(ctx, http.MethodPut, itemPath("orders", id, "status"), nil, models.OrderStatusBody{Status: status}, nil)
}

// ── Payments ──────────────────────────────────────────────────────────

// ListPayments fetches GET /api/payments, optionally filtered by status.
func (c *Client) ListPayments(ctx context.Context, status string) ([]models.Payment, error) {
	var query url.Values
	if status != "" {
		query = url.Values{"status": {status}}
	}
	var out struct {
		Payments []models.Payment `json:"payments"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/payments", query, nil, &out); err != nil {
		return nil, err
	}
	if out.Payments == nil {
		out.Payments = []models.Payment{}
	}
	return out.Payments, nil
}

// GetPayment fetches GET /api/payments/:id.
func (c *Client) GetPayment(ctx context.Context, id string) (*models.Payment, error) {
	var out struct {
		Payment *models.Payment `json:"payment"`
	}
	if err := c.do(ctx, http.MethodGet, itemPath("payments", id), nil, nil, &out); err != nil {
		return nil, err
	}
	if out.Payment == nil {
		return nil, &Error{Status: http.StatusNotFound, Message: "Payment not found"}
	}
	return out.Payment, nil
}

// ApprovePayment sends PUT /api/payments/:id/approve.
func (c *Client) ApprovePayment(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPut, itemPath("payments", id, "approve"), nil, nil, nil)
}

// RejectPayment sends PUT /api/payments/:id/reject.
func (c *Client) RejectPayment(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPut, itemPath("payments", id, "reject"), nil, nil, nil)
}

// PaymentProof downloads GET /api/payments/:id/proof as raw bytes.
func (c *Client) PaymentProof(ctx context.Context, id string) (*models.Proof, error) {
	path := itemPath("payments", id, "proof")
	resp, err := c.request(ctx, nil).Get(path)
	if err != nil {
		return nil, &Error{Message: err.Error(), Err: err}
	}
	if !resp.IsSuccess() {
		var env envelope
		_ = json.Unmarshal(resp.Body(), &env)
		return nil, newHTTPError(resp.StatusCode(), env.Error)
	}
	return &models.Proof{
		ContentType: resp.Header().Get("Content-Type"),
		Data:        resp.Body(),
	}, nil
}

// ── Analytics ─────────────────────────────────────────────────────────

// GetAnalytics fetches GET /api/analytics?period=. The summary may come
// wrapped in an "analytics" key or as the top-level object.
func (c *Client) GetAnalytics(ctx context.Context, period string) (*models.Analytics, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/analytics", url.Values{"period": {period}}, nil, &raw); err != nil {
		return nil, err
	}

	var wrapped struct {
		Analytics *models.Analytics `json:"analytics"`
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Analytics != nil {
			return wrapped.Analytics, nil
		}
	}

	var flat models.Analytics
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &flat); err != nil {
			return nil, &Error{Status: http.StatusOK, Message: "invalid analytics response", Err: err}
		}
	}
	return &flat, nil
}
