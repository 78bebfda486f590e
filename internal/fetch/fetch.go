// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch retrieves register pages with caching, timeouts, and
// exponential-backoff retry.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pdiddy/trial-harvester/pkg/types"
)

const (
	defaultMaxAttempts = 7
	defaultBackoffBase = 1 * time.Second
	defaultMaxBackoff  = 5 * time.Minute
	defaultTimeout     = 60 * time.Second
	defaultUserAgent   = "trial-harvester/0.1"
)

// FetchError is the terminal error for a single URL after every retry
// attempt has been exhausted.
type FetchError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher issues single logical GETs. Successful bodies are cached by
// URL, so reprocessing after a crash does not re-hit the network.
type Fetcher struct {
	client *http.Client
	cfg    types.FetchConfig
	cache  *Cache
	w      io.Writer
}

// New builds a Fetcher from cfg, opening the response cache when
// cfg.CachePath is set. Progress and retry notices go to w.
func New(cfg types.FetchConfig, w io.Writer) (*Fetcher, error) {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = defaultBackoffBase
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = defaultMaxBackoff
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if w == nil {
		w = io.Discard
	}

	f := &Fetcher{
		client: &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
		w:      w,
	}

	if cfg.CachePath != "" {
		cache, err := OpenCache(cfg.CachePath)
		if err != nil {
			return nil, fmt.Errorf("opening response cache: %w", err)
		}
		f.cache = cache
	}
	return f, nil
}

// Close releases the response cache, if any.
func (f *Fetcher) Close() error {
	if f.cache == nil {
		return nil
	}
	return f.cache.Close()
}

// Fetch retrieves url, retrying on transport failures and non-2xx
// statuses. Attempt k sleeps 2^k * BackoffBase (clamped to MaxBackoff)
// before attempt k+1. A cached body is returned without touching the
// network. Exhausting MaxAttempts returns a *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if f.cache != nil {
		if body, ok, err := f.cache.Get(ctx, url); err == nil && ok {
			return body, nil
		}
	}

	var lastErr error
	for attempt := 1; ; attempt++ {
		body, err := f.get(ctx, url)
		if err == nil {
			if f.cache != nil {
				if cacheErr := f.cache.Put(ctx, url, body); cacheErr != nil {
					fmt.Fprintf(f.w, "warning: caching %s failed: %v\n", url, cacheErr)
				}
			}
			return body, nil
		}
		lastErr = err

		if attempt >= f.cfg.MaxAttempts {
			return nil, &FetchError{URL: url, Attempts: f.cfg.MaxAttempts, Err: lastErr}
		}

		backoff := f.backoff(attempt)
		fmt.Fprintf(f.w, "attempt %d/%d failed for %s: %v (retrying in %v)\n",
			attempt, f.cfg.MaxAttempts, url, err, backoff)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}

// backoff returns the sleep after the given 1-indexed attempt: doubling
// from 2x the base, capped at MaxBackoff.
func (f *Fetcher) backoff(attempt int) time.Duration {
	d := f.cfg.BackoffBase
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= f.cfg.MaxBackoff {
			return f.cfg.MaxBackoff
		}
	}
	return d
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	if f.cfg.Accept != "" {
		req.Header.Set("Accept", f.cfg.Accept)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return body, nil
}
