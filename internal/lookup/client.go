// Package lookup fetches enrichment records from the remote account status
// service, one HTTP call per row key, with per-call timeouts and per-key
// error isolation. One key's failure never cancels another key's call.
package lookup

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultTimeout bounds connect plus transfer for a single call.
	DefaultTimeout = 5 * time.Second

	// DefaultConcurrency is the worker count for batch fetches.
	DefaultConcurrency = 4

	// DefaultKeyField is the record field that carries the identifier.
	DefaultKeyField = "account_id"

	// maxBodySize caps how much of a response body is read. Enrichment
	// records are tiny; anything bigger is a misbehaving endpoint.
	maxBodySize = 1 << 20
)

// Config holds the lookup client settings.
type Config struct {
	// BaseURL is the enrichment endpoint; the key is appended as the last
	// path segment.
	BaseURL string

	// Timeout bounds each individual call. Zero means DefaultTimeout.
	Timeout time.Duration

	// Concurrency is the maximum number of in-flight calls during a batch
	// fetch. Zero means DefaultConcurrency.
	Concurrency int

	// KeyField is the record field holding the identifier. Zero value
	// means DefaultKeyField.
	KeyField string
}

// Client issues lookup calls against the enrichment endpoint.
type Client struct {
	baseURL     string
	timeout     time.Duration
	concurrency int
	keyField    string
	httpClient  *http.Client
}

// NewClient builds a Client from cfg, applying defaults for unset values.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	keyField := cfg.KeyField
	if keyField == "" {
		keyField = DefaultKeyField
	}

	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		timeout:     timeout,
		concurrency: concurrency,
		keyField:    keyField,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// KeyField returns the configured identifier field name.
func (c *Client) KeyField() string {
	return c.keyField
}

// Fetch retrieves the enrichment record for one key. Failures come back as
// *Error with the kind set; the caller decides what a failed row means.
func (c *Client) Fetch(ctx context.Context, key string) (Record, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reqURL := c.baseURL + "/" + url.PathEscape(key)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Record{}, &Error{Kind: Unreachable, Key: key, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Record{}, &Error{Kind: classify(err), Key: key, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return Record{}, &Error{Kind: BadStatus, Key: key, Status: resp.StatusCode}
	}

	rec, err := decodeRecord(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return Record{}, &Error{Kind: BadPayload, Key: key, Err: err}
	}

	return rec, nil
}

// classify maps a transport error to its lookup kind.
func classify(err error) Kind {
	if errors.Is(err, context.DeadlineExceeded) {
		return Timeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Timeout
	}
	return Unreachable
}

// Outcome is the result of one key's fetch: a record or a per-key error,
// never both.
type Outcome struct {
	Key    string
	Record Record
	Err    error
}

// FetchAll fetches records for all keys using a bounded worker pool.
// Duplicate keys are fetched once. Every key gets exactly one outcome;
// a failing call is recorded against its key and does not cancel or abort
// the rest of the batch. Completion order is irrelevant — results are
// keyed, and callers reassemble by key.
func (c *Client) FetchAll(ctx context.Context, keys []string) map[string]Outcome {
	outcomes := make(map[string]Outcome, len(keys))

	sem := make(chan struct{}, c.concurrency)
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for _, key := range keys {
		mu.Lock()
		_, seen := outcomes[key]
		if !seen {
			// Reserve the slot so duplicates are not scheduled twice.
			outcomes[key] = Outcome{Key: key}
		}
		mu.Unlock()
		if seen {
			continue
		}

		wg.Add(1)
		go func(k string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				mu.Lock()
				outcomes[k] = Outcome{Key: k, Err: &Error{Kind: classify(ctx.Err()), Key: k, Err: ctx.Err()}}
				mu.Unlock()
				return
			}
			defer func() { <-sem }()

			rec, err := c.Fetch(ctx, k)
			mu.Lock()
			outcomes[k] = Outcome{Key: k, Record: rec, Err: err}
			mu.Unlock()
		}(key)
	}

	wg.Wait()
	return outcomes
}
