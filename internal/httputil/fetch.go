// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// MaxBodyBytes caps how much of a response body Fetch reads.
const MaxBodyBytes = 64 << 20

// Request describes a paced GET.
type Request struct {
	URL       string
	UserAgent string
	Accept    string
}

// Fetch waits on the pacer, issues a GET that retries throttled responses
// (waiting on the pacer again before each retry), and returns the body of a
// 200 response. Any other status is an error. A
// nil client uses http.DefaultClient.
func Fetch(ctx context.Context, client *http.Client, pacer *Pacer, r Request) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	if err := pacer.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if r.UserAgent != "" {
		req.Header.Set("User-Agent", r.UserAgent)
	}
	if r.Accept != "" {
		req.Header.Set("Accept", r.Accept)
	}

	resp, err := doWithRetry(ctx, client, req, 0, pacer.Wait)
	if err != nil {
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, r.URL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return body, nil
}
