// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by the search and
// extraction stages: politeness pacing, paced fetches, and retry on
// throttling responses.
package httputil

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// RetryBaseDelay is the first backoff when a throttled response carries no
// usable Retry-After header. Tests shrink it.
var RetryBaseDelay = 2 * time.Second

// MaxRetryAfter caps how long a server-provided Retry-After can stall a
// request; longer waits are treated as a failure of this attempt.
var MaxRetryAfter = 30 * time.Second

const defaultMaxRetries = 3

// retryable reports whether status means "try again later". NCBI and arXiv
// answer bursts with 429 or 503.
func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable
}

// DoWithRetry sends req and retries throttled responses (429, 503) up to
// maxRetries times, or 3 when maxRetries is not positive. The wait honors a
// Retry-After header in seconds, otherwise doubles from RetryBaseDelay. The
// final throttled response is returned as is so the caller sees its status.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	return doWithRetry(ctx, client, req, maxRetries, nil)
}

// doWithRetry is DoWithRetry with an optional pace hook run before every
// resend.
func doWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int, pace func(context.Context) error) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	backoff := RetryBaseDelay
	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}
		if !retryable(resp.StatusCode) || attempt >= maxRetries {
			return resp, nil
		}

		wait, ok := retryAfter(resp.Header.Get("Retry-After"))
		if !ok {
			wait = backoff
			backoff *= 2
		}
		if wait > MaxRetryAfter {
			return resp, nil
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		slog.Debug("throttled, backing off",
			"url", req.URL.String(), "status", resp.StatusCode, "wait", wait, "attempt", attempt+1)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		if pace != nil {
			if err := pace(ctx); err != nil {
				return nil, err
			}
		}
	}
}

// retryAfter parses a Retry-After value given in seconds. HTTP-date values
// are not used by the upstreams we call and are ignored.
func retryAfter(v string) (time.Duration, bool) {
	if v == "" {
		return 0, false
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0, false
	}
	return time.Duration(secs) * time.Second, true
}
