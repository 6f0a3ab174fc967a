// Package fetch retrieves the patient collection from the assessment API.
//
// Fetcher issues one page request, validates the body (a JSON object whose
// "data" field is an array) and retries failures on a fixed schedule: a
// linear ramp of BaseDelay×(k−1) before attempts 2 and 3, then a flat
// RateLimitDelay before every later attempt. The schedule is a
// backoff.BackOff so cenkalti/backoff drives the waits and honours ctx.
//
// Paginator walks pages 1..n strictly in sequence, handing each page's
// records to a consumer before asking for the next one, and stops after the
// first page that reports hasNext=false.
package fetch
