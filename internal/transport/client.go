// Package transport performs the raw HTTP exchanges with the assessment API.
// It returns status and body as-is; retry and validation belong to callers.
package transport

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// APIKeyHeader carries the caller's opaque request key.
const APIKeyHeader = "x-api-key"

// DefaultTimeout bounds a single request when the caller sets none.
const DefaultTimeout = 30 * time.Second

// Request describes one call. Key is sent verbatim in APIKeyHeader.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Key    string
	Body   any
}

// Response is the unvalidated outcome of a request that reached the server.
type Response struct {
	Status int
	Body   []byte
}

// Client wraps a resty client bound to one base URL.
type Client struct {
	http *resty.Client
}

// New returns a Client for baseURL. Transport-level retries are disabled.
func New(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetLogger(restyLogger{log: log}).
		SetHeader("Accept", "application/json")
	return &Client{http: c}
}

// Do executes req. A non-nil error means no response was obtained (timeout,
// connection refused, cancelled context); any HTTP status is returned as-is.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	r := c.http.R().SetContext(ctx)
	if req.Key != "" {
		r.SetHeader(APIKeyHeader, req.Key)
	}
	if len(req.Query) > 0 {
		r.SetQueryParamsFromValues(req.Query)
	}
	if req.Body != nil {
		r.SetHeader("Content-Type", "application/json").SetBody(req.Body)
	}

	resp, err := r.Execute(req.Method, req.Path)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}
	return &Response{Status: resp.StatusCode(), Body: resp.Body()}, nil
}

// restyLogger routes resty's internal messages through zerolog.
type restyLogger struct {
	log zerolog.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.log.Error().Msgf(format, v...)
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.log.Warn().Msgf(format, v...)
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.log.Debug().Msgf(format, v...)
}
