// Package submit posts the final risk summary to the assessment API.
package submit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/gyeh/vitalrisk/internal/model"
	"github.com/gyeh/vitalrisk/internal/transport"
)

// SubmitPath is the summary endpoint.
const SubmitPath = "/submit-assessment"

// Doer performs one HTTP exchange. *transport.Client satisfies it.
type Doer interface {
	Do(ctx context.Context, req transport.Request) (*transport.Response, error)
}

// Error is a failed submission: either no response (Err set) or a non-2xx
// status.
type Error struct {
	Status int
	Body   string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("submit assessment: %s", e.Err)
	}
	return fmt.Sprintf("submit assessment: status %d: %s", e.Status, e.Body)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Client submits summaries with a fixed request key.
type Client struct {
	doer Doer
	key  string
	log  zerolog.Logger
}

// New returns a Client.
func New(doer Doer, key string, log zerolog.Logger) *Client {
	return &Client{doer: doer, key: key, log: log}
}

// Submit posts summary once and returns the decoded acknowledgment. A body
// that is not a JSON object is returned under the "raw" key.
func (c *Client) Submit(ctx context.Context, summary model.RiskSummary) (map[string]any, error) {
	c.log.Info().
		Int("high_risk", len(summary.HighRiskPatients)).
		Int("fever", len(summary.FeverPatients)).
		Int("data_quality", len(summary.DataQualityIssues)).
		Msg("submitting assessment")

	resp, err := c.doer.Do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   SubmitPath,
		Key:    c.key,
		Body:   summary,
	})
	if err != nil {
		return nil, &Error{Err: err}
	}
	if resp.Status < 200 || resp.Status > 299 {
		return nil, &Error{Status: resp.Status, Body: string(resp.Body)}
	}

	ack := map[string]any{}
	if err := json.Unmarshal(resp.Body, &ack); err != nil {
		ack = map[string]any{"raw": string(resp.Body)}
	}
	return ack, nil
}
