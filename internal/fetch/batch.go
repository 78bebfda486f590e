// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"

	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 16

// Result is one slot of a batch fetch: the body on success, or the
// terminal error for that URL. Exactly one of Body and Err is set.
type Result struct {
	URL  string
	Body []byte
	Err  error
}

// FetchAll fans urls out over the fetcher concurrently and returns one
// Result per input URL, in input order. A per-URL failure (after the
// fetcher's own retries) is captured in its slot and does not abort
// sibling fetches. Callers that need only successes filter afterwards.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string) []Result {
	results := make([]Result, len(urls))

	limit := f.cfg.Concurrency
	if limit <= 0 {
		limit = defaultConcurrency
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, url := range urls {
		i, url := i, url
		results[i].URL = url
		g.Go(func() error {
			body, err := f.Fetch(ctx, url)
			if err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Body = body
			return nil
		})
	}

	g.Wait()
	return results
}
