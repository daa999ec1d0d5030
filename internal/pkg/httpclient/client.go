package httpclient

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// RequestIDHeader carries a per-request id to upstream services.
const RequestIDHeader = "X-Request-ID"

// Client wraps resty for calls to the store backend and the Telegram Bot API.
// Requests are attempted once; callers opt into retries explicitly.
type Client struct {
	r *resty.Client
}

// New creates a client rooted at baseURL with retries disabled and no timeout.
func New(baseURL string) *Client {
	r := resty.New().
		SetBaseURL(baseURL).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")

	return &Client{r: r}
}

// WithTimeout sets a client-side timeout. Zero or negative leaves it unset.
func (c *Client) WithTimeout(d time.Duration) *Client {
	if d > 0 {
		c.r.SetTimeout(d)
	}
	return c
}

// WithRetries enables resty's retry loop.
func (c *Client) WithRetries(count int, wait time.Duration) *Client {
	c.r.SetRetryCount(count).SetRetryWaitTime(wait)
	return c
}

// Request returns a new resty Request bound to ctx and stamped with a request id.
func (c *Client) Request(ctx context.Context) *resty.Request {
	return c.r.R().
		SetContext(ctx).
		SetHeader(RequestIDHeader, uuid.NewString())
}
