package fetch

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyeh/vitalrisk/internal/model"
	"github.com/gyeh/vitalrisk/internal/transport"
)

// scriptedDoer replays one outcome per call; the last outcome repeats.
type scriptedDoer struct {
	outcomes []outcome
	calls    int
	requests []transport.Request
}

type outcome struct {
	status int
	body   string
	err    error
}

func (d *scriptedDoer) Do(_ context.Context, req transport.Request) (*transport.Response, error) {
	d.requests = append(d.requests, req)
	o := d.outcomes[len(d.outcomes)-1]
	if d.calls < len(d.outcomes) {
		o = d.outcomes[d.calls]
	}
	d.calls++
	if o.err != nil {
		return nil, o.err
	}
	return &transport.Response{Status: o.status, Body: []byte(o.body)}, nil
}

const okPage = `{"data":[{"patient_id":"A"},{"patient_id":"B"}],"pagination":{"page":1,"limit":2,"total":2,"totalPages":1,"hasNext":false}}`

func fastConfig() Config {
	return Config{Key: "k", MaxAttempts: 5, BaseDelay: time.Millisecond, RateLimitDelay: time.Millisecond}
}

func TestFetch_SuccessFirstAttempt(t *testing.T) {
	d := &scriptedDoer{outcomes: []outcome{{status: 200, body: okPage}}}
	f := NewFetcher(d, fastConfig(), zerolog.Nop())

	page, err := f.Fetch(context.Background(), model.PageRequest{Page: 3, Limit: 20})
	require.NoError(t, err)

	assert.Len(t, page.Records, 2)
	assert.False(t, page.Pagination.HasNext)
	assert.Equal(t, 1, page.Attempts)
	require.Len(t, d.requests, 1)

	req := d.requests[0]
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, PatientsPath, req.Path)
	assert.Equal(t, "3", req.Query.Get("page"))
	assert.Equal(t, "20", req.Query.Get("limit"))
	assert.Equal(t, "k", req.Key)
}

func TestFetch_SucceedsOnThirdAttempt(t *testing.T) {
	d := &scriptedDoer{outcomes: []outcome{
		{err: errors.New("connection reset")},
		{status: 503, body: "unavailable"},
		{status: 200, body: okPage},
	}}
	f := NewFetcher(d, fastConfig(), zerolog.Nop())

	page, err := f.Fetch(context.Background(), model.PageRequest{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, d.calls)
	assert.Equal(t, 3, page.Attempts)
	assert.Len(t, page.Records, 2)
}

func TestFetch_MalformedBodyIsRetried(t *testing.T) {
	d := &scriptedDoer{outcomes: []outcome{
		{status: 200, body: `{"data":"oops"}`},
		{status: 200, body: `{"error":"missing"}`},
		{status: 200, body: `not json`},
		{status: 200, body: okPage},
	}}
	f := NewFetcher(d, fastConfig(), zerolog.Nop())

	_, err := f.Fetch(context.Background(), model.PageRequest{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 4, d.calls)
}

func TestFetch_ExhaustsAfterMaxAttempts(t *testing.T) {
	d := &scriptedDoer{outcomes: []outcome{{status: 429, body: "slow down"}}}
	f := NewFetcher(d, fastConfig(), zerolog.Nop())

	_, err := f.Fetch(context.Background(), model.PageRequest{Page: 7, Limit: 2})
	require.Error(t, err)
	assert.Equal(t, 5, d.calls)

	var ex *ExhaustedError
	require.True(t, errors.As(err, &ex))
	assert.Equal(t, 7, ex.Page)
	assert.Equal(t, 5, ex.Attempts)

	var se *StatusError
	require.True(t, errors.As(err, &se), "last error is propagated")
	assert.Equal(t, 429, se.Status)
}

func TestFetch_SingleAttempt(t *testing.T) {
	d := &scriptedDoer{outcomes: []outcome{{err: errors.New("boom")}}}
	cfg := fastConfig()
	cfg.MaxAttempts = 1
	f := NewFetcher(d, cfg, zerolog.Nop())

	_, err := f.Fetch(context.Background(), model.PageRequest{Page: 1, Limit: 2})
	require.Error(t, err)
	assert.Equal(t, 1, d.calls)
}

func TestFetch_ContextCancelledStopsRetrying(t *testing.T) {
	d := &scriptedDoer{outcomes: []outcome{{err: errors.New("down")}}}
	f := NewFetcher(d, fastConfig(), zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Fetch(ctx, model.PageRequest{Page: 1, Limit: 2})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 1, d.calls)
}

func TestConfig_Defaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	assert.Equal(t, DefaultMaxAttempts, cfg.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.BaseDelay)
	assert.Equal(t, 60*time.Second, cfg.RateLimitDelay)
}

func TestSchedule_Delays(t *testing.T) {
	s := NewSchedule(DefaultBaseDelay, DefaultRateLimitDelay)

	assert.Equal(t, time.Duration(0), s.Delay(1))
	assert.Equal(t, 2*time.Second, s.Delay(2))
	assert.Equal(t, 4*time.Second, s.Delay(3))
	assert.Equal(t, 60*time.Second, s.Delay(4))
	assert.Equal(t, 60*time.Second, s.Delay(5))
}

func TestSchedule_BoundedByMaxRetries(t *testing.T) {
	b := backoff.WithMaxRetries(NewSchedule(DefaultBaseDelay, DefaultRateLimitDelay), DefaultMaxAttempts-1)
	b.Reset()

	var got []time.Duration
	for {
		d := b.NextBackOff()
		if d == backoff.Stop {
			break
		}
		got = append(got, d)
	}
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second, 60 * time.Second, 60 * time.Second}, got)
}

func TestDecodePage(t *testing.T) {
	page, err := DecodePage([]byte(`{"data":[],"pagination":{"hasNext":true,"page":1}}`))
	require.NoError(t, err)
	assert.Empty(t, page.Records)
	assert.True(t, page.Pagination.HasNext)

	page, err = DecodePage([]byte(`{"data":[{"patient_id":"A"}],"pagination":{"page":"2","limit":20,"total":1.5,"totalPages":null,"hasPrevious":"yes","hasNext":false}}`))
	require.NoError(t, err, "loosely typed informational fields are tolerated")
	assert.Len(t, page.Records, 1)
	assert.Equal(t, 2, page.Pagination.Page)
	assert.Equal(t, 20, page.Pagination.Limit)
	assert.Equal(t, 1, page.Pagination.Total)
	assert.Equal(t, 0, page.Pagination.TotalPages)
	assert.False(t, page.Pagination.HasPrevious)
	assert.False(t, page.Pagination.HasNext)

	page, err = DecodePage([]byte(`{"data":[]}`))
	require.NoError(t, err)
	assert.False(t, page.Pagination.HasNext, "absent pagination ends the walk")

	for _, body := range []string{
		`{"data":[],"pagination":{"hasNext":"true"}}`,
		`{"data":[],"pagination":[1]}`,
		`{}`,
		`{"data":null}`,
		`{"data":{"patient_id":"A"}}`,
		`{"data":5}`,
		`[]`,
		``,
	} {
		_, err := DecodePage([]byte(body))
		assert.ErrorIs(t, err, ErrMalformedPage, "body %q", body)
	}
}
