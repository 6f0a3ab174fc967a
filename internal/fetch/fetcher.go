package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/gyeh/vitalrisk/internal/model"
	"github.com/gyeh/vitalrisk/internal/normalize"
	"github.com/gyeh/vitalrisk/internal/transport"
)

// PatientsPath is the collection endpoint.
const PatientsPath = "/patients"

// ErrMalformedPage is returned for a body without a "data" array.
var ErrMalformedPage = errors.New("malformed page body")

// Doer performs one HTTP exchange. *transport.Client satisfies it.
type Doer interface {
	Do(ctx context.Context, req transport.Request) (*transport.Response, error)
}

// Config holds the request key and retry tunables. Zero values fall back to
// the package defaults.
type Config struct {
	Key            string
	MaxAttempts    int
	BaseDelay      time.Duration
	RateLimitDelay time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = DefaultBaseDelay
	}
	if c.RateLimitDelay <= 0 {
		c.RateLimitDelay = DefaultRateLimitDelay
	}
	return c
}

// StatusError is a response outside the 2xx range.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Status, e.Body)
}

// ExhaustedError is returned once every attempt for a page has failed.
// It unwraps to the last attempt's error.
type ExhaustedError struct {
	Page     int
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("page %d: giving up after %d attempts: %s", e.Page, e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Fetcher fetches single pages with validation and retry.
type Fetcher struct {
	doer Doer
	cfg  Config
	log  zerolog.Logger
}

// NewFetcher returns a Fetcher using doer for the network exchange.
func NewFetcher(doer Doer, cfg Config, log zerolog.Logger) *Fetcher {
	return &Fetcher{doer: doer, cfg: cfg.withDefaults(), log: log}
}

// Fetch returns the requested page, retrying transport errors, non-2xx
// statuses and malformed bodies until MaxAttempts is reached.
func (f *Fetcher) Fetch(ctx context.Context, req model.PageRequest) (*model.PageResponse, error) {
	var (
		page    *model.PageResponse
		attempt int
	)

	op := func() error {
		attempt++
		f.log.Debug().Int("page", req.Page).Int("attempt", attempt).Msg("fetching page")

		p, err := f.fetchOnce(ctx, req)
		if err != nil {
			f.log.Warn().Err(err).Int("page", req.Page).Int("attempt", attempt).Msg("page fetch failed")
			return err
		}
		page = p
		return nil
	}
	notify := func(err error, wait time.Duration) {
		f.log.Info().
			Int("page", req.Page).
			Int("next_attempt", attempt+1).
			Dur("retry_in", wait).
			Msg("retrying page fetch")
	}

	if err := backoff.RetryNotify(op, f.policy(ctx), notify); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("page %d: %w", req.Page, ctxErr)
		}
		return nil, &ExhaustedError{Page: req.Page, Attempts: attempt, Err: err}
	}

	page.Attempts = attempt
	return page, nil
}

// policy bounds the schedule to MaxAttempts total attempts.
func (f *Fetcher) policy(ctx context.Context) backoff.BackOff {
	var b backoff.BackOff = &backoff.StopBackOff{}
	if f.cfg.MaxAttempts > 1 {
		// WithMaxRetries treats 0 as unlimited, hence the guard above.
		b = backoff.WithMaxRetries(
			NewSchedule(f.cfg.BaseDelay, f.cfg.RateLimitDelay),
			uint64(f.cfg.MaxAttempts-1),
		)
	}
	return backoff.WithContext(b, ctx)
}

func (f *Fetcher) fetchOnce(ctx context.Context, req model.PageRequest) (*model.PageResponse, error) {
	resp, err := f.doer.Do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   PatientsPath,
		Query: url.Values{
			"page":  {strconv.Itoa(req.Page)},
			"limit": {strconv.Itoa(req.Limit)},
		},
		Key: f.cfg.Key,
	})
	if err != nil {
		return nil, err
	}
	if resp.Status < 200 || resp.Status > 299 {
		return nil, &StatusError{Status: resp.Status, Body: snippet(resp.Body)}
	}
	return DecodePage(resp.Body)
}

// DecodePage validates and decodes a page body. The "data" field must be a
// JSON array; its elements are returned undecoded.
func DecodePage(body []byte) (*model.PageResponse, error) {
	var env struct {
		Data       json.RawMessage `json:"data"`
		Pagination json.RawMessage `json:"pagination"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPage, err)
	}

	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || data[0] != '[' {
		return nil, fmt.Errorf("%w: data is not an array", ErrMalformedPage)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPage, err)
	}
	pagination, err := decodePagination(env.Pagination)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPage, err)
	}
	return &model.PageResponse{Records: records, Pagination: pagination}, nil
}

// decodePagination requires only a boolean hasNext (absent means false). The
// other fields are informational and decoded best effort.
func decodePagination(raw json.RawMessage) (model.Pagination, error) {
	var p model.Pagination
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return p, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return p, fmt.Errorf("pagination is not an object: %v", err)
	}
	if v, ok := fields["hasNext"]; ok {
		if err := json.Unmarshal(v, &p.HasNext); err != nil {
			return p, fmt.Errorf("hasNext is not a boolean: %v", err)
		}
	}

	p.Page = looseInt(fields["page"])
	p.Limit = looseInt(fields["limit"])
	p.Total = looseInt(fields["total"])
	p.TotalPages = looseInt(fields["totalPages"])
	_ = json.Unmarshal(fields["hasPrevious"], &p.HasPrevious)
	return p, nil
}

// looseInt reads a number or numeric string, truncated; anything else is 0.
func looseInt(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0
	}
	f, ok := normalize.ParseNumber(v)
	if !ok || math.IsInf(f, 0) {
		return 0
	}
	return int(f)
}

func snippet(b []byte) string {
	const limit = 200
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}
