// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scrape drives the end-to-end harvest: resolve pagination,
// fetch search pages, parse cards, persist minimal rows, then retrieve
// and merge per-trial detail. Per-trial failures are isolated; only
// pagination failure aborts a run.
package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/trial-harvester/internal/blob"
	"github.com/pdiddy/trial-harvester/internal/fetch"
	"github.com/pdiddy/trial-harvester/internal/merge"
	"github.com/pdiddy/trial-harvester/internal/parse"
	"github.com/pdiddy/trial-harvester/internal/report"
	"github.com/pdiddy/trial-harvester/internal/store"
	"github.com/pdiddy/trial-harvester/pkg/types"
)

const (
	defaultParseWorkers  = 8
	defaultDetailWorkers = 1
)

// Scraper runs one harvest in either date-range or page-range mode.
type Scraper struct {
	fetcher *fetch.Fetcher
	trials  *store.Store
	blobs   *blob.Store
	cfg     types.ScrapeConfig
	w       io.Writer

	startDate, endDate string
	startPage, endPage int
}

// Summary holds the outcome of a harvest run.
type Summary struct {
	Pages        int
	TotalResults int
	Cards        int
	Succeeded    int
	Failed       int
}

// NewByDate builds a scraper that filters trials by entry date. The
// page count is resolved from the live first result page.
func NewByDate(fetcher *fetch.Fetcher, trials *store.Store, blobs *blob.Store, cfg types.ScrapeConfig, startDate, endDate string, w io.Writer) *Scraper {
	s := newScraper(fetcher, trials, blobs, cfg, w)
	s.startDate = startDate
	s.endDate = endDate
	return s
}

// NewByPage builds a scraper over an explicit search page range.
func NewByPage(fetcher *fetch.Fetcher, trials *store.Store, blobs *blob.Store, cfg types.ScrapeConfig, startPage, endPage int, w io.Writer) *Scraper {
	s := newScraper(fetcher, trials, blobs, cfg, w)
	s.startPage = startPage
	s.endPage = endPage
	return s
}

func newScraper(fetcher *fetch.Fetcher, trials *store.Store, blobs *blob.Store, cfg types.ScrapeConfig, w io.Writer) *Scraper {
	if cfg.ParseWorkers <= 0 {
		cfg.ParseWorkers = defaultParseWorkers
	}
	if cfg.DetailWorkers <= 0 {
		cfg.DetailWorkers = defaultDetailWorkers
	}
	if w == nil {
		w = io.Discard
	}
	return &Scraper{fetcher: fetcher, trials: trials, blobs: blobs, cfg: cfg, w: w}
}

// Run executes the harvest and returns the run summary. The returned
// error is non-nil only for run-fatal conditions: an indeterminate
// first page, or a failed batch persist of the card rows.
func (s *Scraper) Run(ctx context.Context) (Summary, error) {
	var summary Summary

	pageURLs, err := s.searchPageURLs(ctx, &summary)
	if err != nil {
		return summary, err
	}

	cards := s.fetchCards(ctx, pageURLs)
	summary.Cards = len(cards)
	fmt.Fprintf(s.w, "extracted %d cards from %d search pages\n", len(cards), len(pageURLs))

	cardRows := make([]types.FlatRow, len(cards))
	for i, card := range cards {
		cardRows[i] = merge.CardRow(card)
	}
	if err := s.trials.PutMany(ctx, cardRows); err != nil {
		return summary, fmt.Errorf("storing card rows: %w", err)
	}
	fmt.Fprintf(s.w, "stored %d card rows\n", len(cardRows))
	s.archiveCards(cards)

	var succeeded atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.DetailWorkers)
	for _, card := range cards {
		card := card
		g.Go(func() error {
			if err := s.processTrial(gctx, card); err != nil {
				fmt.Fprintf(s.w, "failed to retrieve trial data for trial: %s\turl: %s\terror: %v\n",
					card.TrialID, card.ResultsLink, err)
				return nil
			}
			succeeded.Add(1)
			return nil
		})
	}
	g.Wait()

	summary.Succeeded = int(succeeded.Load())
	summary.Failed = summary.Cards - summary.Succeeded
	fmt.Fprintf(s.w, "trials successfully processed: %d out of %d\n", summary.Succeeded, summary.Cards)
	return summary, nil
}

// searchPageURLs returns the search page URLs for the configured mode.
// Date mode fetches the first result page and resolves the page count
// from it; a pagination failure there is fatal for the run.
func (s *Scraper) searchPageURLs(ctx context.Context, summary *Summary) ([]string, error) {
	if s.startDate == "" {
		pages := s.endPage - s.startPage + 1
		urls := make([]string, 0, pages)
		for page := s.startPage; page <= s.endPage; page++ {
			urls = append(urls, fmt.Sprintf("%s&page=%d", s.cfg.BaseURL, page))
		}
		summary.Pages = pages
		return urls, nil
	}

	searchURL := fmt.Sprintf("%s&dateFrom=%s&dateTo=%s", s.cfg.BaseURL, s.startDate, s.endDate)
	body, err := s.fetcher.Fetch(ctx, searchURL)
	if err != nil {
		return nil, fmt.Errorf("fetching first search page: %w", err)
	}
	doc, err := parse.Document(body)
	if err != nil {
		return nil, err
	}
	pages, results, err := parse.ResolvePagination(doc)
	if err != nil {
		return nil, fmt.Errorf("resolving pagination: %w", err)
	}
	summary.Pages = pages
	summary.TotalResults = results
	fmt.Fprintf(s.w, "%d result(s) across %d page(s)\n", results, pages)

	urls := make([]string, 0, pages)
	for page := 1; page <= pages; page++ {
		urls = append(urls, fmt.Sprintf("%s&page=%d", searchURL, page))
	}
	return urls, nil
}

// fetchCards fetches the search pages concurrently and parses their
// card fragments in a bounded worker pool. A failed page is logged and
// skipped. The returned order follows parse completion, not input
// order; downstream stages key everything by trial ID.
func (s *Scraper) fetchCards(ctx context.Context, pageURLs []string) []types.TrialCard {
	responses := s.fetcher.FetchAll(ctx, pageURLs)

	var fragments []*goquery.Selection
	for i, res := range responses {
		if res.Err != nil {
			fmt.Fprintf(s.w, "warning: search page %d failed: %v\n", i+1, res.Err)
			continue
		}
		doc, err := parse.Document(res.Body)
		if err != nil {
			fmt.Fprintf(s.w, "warning: search page %d unparsable: %v\n", i+1, err)
			continue
		}
		fmt.Fprintf(s.w, "scraping page %d of %d\n", i+1, len(pageURLs))
		fragments = append(fragments, parse.Cards(doc)...)
	}

	ch := make(chan types.TrialCard, len(fragments))
	var wg sync.WaitGroup
	sem := make(chan struct{}, s.cfg.ParseWorkers)
	for _, fragment := range fragments {
		wg.Add(1)
		sem <- struct{}{}
		go func(fragment *goquery.Selection) {
			defer wg.Done()
			defer func() { <-sem }()
			card, err := parse.Card(fragment, s.cfg.BaseURL)
			if err != nil {
				fmt.Fprintf(s.w, "warning: skipping card: %v\n", err)
				return
			}
			ch <- card
		}(fragment)
	}

	go func() {
		wg.Wait()
		close(ch)
	}()

	var cards []types.TrialCard
	for card := range ch {
		cards = append(cards, card)
	}
	return cards
}

func (s *Scraper) archiveCards(cards []types.TrialCard) {
	for _, card := range cards {
		data, err := json.Marshal(card)
		if err != nil {
			fmt.Fprintf(s.w, "warning: marshaling card %s: %v\n", card.TrialID, err)
			continue
		}
		name := fmt.Sprintf("cards_data-%s.json", card.TrialID)
		if err := s.blobs.Put(card.TrialID, name, data); err != nil {
			fmt.Fprintf(s.w, "warning: archiving card %s: %v\n", card.TrialID, err)
		}
	}
}

// processTrial retrieves a trial's protocols and results, merges them
// into a flat row, archives the raw aggregate, and persists the row. A
// failed protocol fetch drops that protocol only; a failed results
// fetch fails the trial.
func (s *Scraper) processTrial(ctx context.Context, card types.TrialCard) error {
	data := merge.TrialData{Card: card}

	for i, ref := range card.Protocols {
		if ref.URL == "" {
			continue
		}
		if i > 0 && s.cfg.RequestDelay > 0 {
			time.Sleep(s.cfg.RequestDelay)
		}
		body, err := s.fetcher.Fetch(ctx, ref.URL)
		if err != nil {
			fmt.Fprintf(s.w, "failed to retrieve protocol data: %s\terror: %v\n", ref.URL, err)
			continue
		}
		doc, err := parse.Document(body)
		if err != nil {
			fmt.Fprintf(s.w, "failed to parse protocol data: %s\terror: %v\n", ref.URL, err)
			continue
		}
		protocol, err := parse.Protocol(doc, ref.URL)
		if err != nil {
			fmt.Fprintf(s.w, "failed to parse protocol data: %s\terror: %v\n", ref.URL, err)
			continue
		}
		data.Protocols = append(data.Protocols, protocol)
	}

	var reportURL string
	if card.ResultsLink != "" {
		body, err := s.fetcher.Fetch(ctx, card.ResultsLink)
		if err != nil {
			return fmt.Errorf("retrieving results: %w", err)
		}
		doc, err := parse.Document(body)
		if err != nil {
			return fmt.Errorf("parsing results: %w", err)
		}
		results, err := parse.Results(doc)
		if err != nil {
			return fmt.Errorf("parsing results: %w", err)
		}
		data.Results = results

		if err := s.blobs.Put(card.TrialID, fmt.Sprintf("results-%s.html", card.TrialID), body); err != nil {
			fmt.Fprintf(s.w, "warning: archiving results HTML for %s: %v\n", card.TrialID, err)
		}

		reportURL = parse.ReportLink(doc, s.cfg.BaseURL)
		if reportURL != "" {
			s.archiveReport(ctx, card.TrialID, reportURL)
		}
	}

	row := merge.BuildRow(data)
	if reportURL != "" {
		row.StudyDocuments = reportURL
	}

	aggregate, err := json.Marshal(data.Aggregate())
	if err != nil {
		return fmt.Errorf("marshaling trial data: %w", err)
	}
	name := fmt.Sprintf("trial_data-%s.json", card.TrialID)
	if err := s.blobs.Put(card.TrialID, name, aggregate); err != nil {
		return fmt.Errorf("archiving trial data: %w", err)
	}

	fmt.Fprintf(s.w, "updating record %s\n", row.TrialID)
	return s.trials.Put(ctx, row)
}

// archiveReport downloads the report package and archives its extracted
// text. Report failures never fail the trial.
func (s *Scraper) archiveReport(ctx context.Context, trialID, reportURL string) {
	zipBytes, err := s.fetcher.Fetch(ctx, reportURL)
	if err != nil {
		fmt.Fprintf(s.w, "warning: fetching report for %s: %v\n", trialID, err)
		return
	}
	text, tables, err := report.ExtractTextAndTables(zipBytes)
	if err != nil {
		fmt.Fprintf(s.w, "warning: extracting report for %s: %v\n", trialID, err)
		return
	}

	name := fmt.Sprintf("report-%s.txt", trialID)
	if err := s.blobs.Put(trialID, name, []byte(text)); err != nil {
		fmt.Fprintf(s.w, "warning: archiving report text for %s: %v\n", trialID, err)
	}
	if len(tables) > 0 {
		data, err := json.Marshal(tables)
		if err != nil {
			fmt.Fprintf(s.w, "warning: marshaling report tables for %s: %v\n", trialID, err)
			return
		}
		name := fmt.Sprintf("report_tables-%s.json", trialID)
		if err := s.blobs.Put(trialID, name, data); err != nil {
			fmt.Fprintf(s.w, "warning: archiving report tables for %s: %v\n", trialID, err)
		}
	}
}
