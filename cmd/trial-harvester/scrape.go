package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/trial-harvester/internal/blob"
	"github.com/pdiddy/trial-harvester/internal/fetch"
	"github.com/pdiddy/trial-harvester/internal/scrape"
	"github.com/pdiddy/trial-harvester/internal/store"
	"github.com/pdiddy/trial-harvester/pkg/types"
)

const (
	defaultBaseURL   = "https://www.clinicaltrialsregister.eu/ctr-search/search?query="
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/88.0.4324.150 Safari/537.36"
	defaultAccept    = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	dateLayout       = "2006-01-02"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Harvest trials by date range or search page range",
	Long: `Scrape runs one harvest against the register. Select trials either by
entry date (--start-date/--end-date) or by explicit search page range
(--start-page/--end-page); exactly one pair must be fully specified.

Examples:
  trial-harvester scrape --start-date 2021-01-01 --end-date 2021-01-31
  trial-harvester scrape --start-page 1 --end-page 10`,
	RunE: runScrape,
}

func init() {
	scrapeCmd.Flags().String("start-date", "", "start date (YYYY-MM-DD)")
	scrapeCmd.Flags().String("end-date", "", "end date (YYYY-MM-DD)")
	scrapeCmd.Flags().Int("start-page", 0, "start page number")
	scrapeCmd.Flags().Int("end-page", 0, "end page number")
	scrapeCmd.Flags().String("base-url", defaultBaseURL, "register search endpoint")
	scrapeCmd.Flags().Duration("timeout", defaultTimeout, "HTTP request timeout")
	scrapeCmd.Flags().Int("max-attempts", 0, "attempts per URL before giving up (default 7)")
	scrapeCmd.Flags().String("cache-db", "request_cache.db", "SQLite file for the URL response cache (empty disables caching)")
	scrapeCmd.Flags().String("db", "trials.db", "SQLite file for harvested trial rows")
	scrapeCmd.Flags().String("data-dir", "data", "directory for raw per-trial artifacts")
	scrapeCmd.Flags().Int("detail-workers", 0, "concurrent per-trial detail fetches (default 1)")
	scrapeCmd.Flags().Duration("request-delay", 0, "pause between detail fetches for one trial")

	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	startDate, _ := cmd.Flags().GetString("start-date")
	endDate, _ := cmd.Flags().GetString("end-date")
	startPage, _ := cmd.Flags().GetInt("start-page")
	endPage, _ := cmd.Flags().GetInt("end-page")

	byDate, err := validateSelection(startDate, endDate, startPage, endPage)
	if err != nil {
		return err
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	maxAttempts, _ := cmd.Flags().GetInt("max-attempts")
	cacheDB, _ := cmd.Flags().GetString("cache-db")
	baseURL, _ := cmd.Flags().GetString("base-url")
	dbPath, _ := cmd.Flags().GetString("db")
	dataDir, _ := cmd.Flags().GetString("data-dir")
	detailWorkers, _ := cmd.Flags().GetInt("detail-workers")
	requestDelay, _ := cmd.Flags().GetDuration("request-delay")

	cfg := types.HarvestConfig{
		Fetch: types.FetchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   timeout,
				UserAgent: defaultUserAgent,
				Accept:    defaultAccept,
			},
			MaxAttempts: maxAttempts,
			CachePath:   cacheDB,
		},
		Scrape: types.ScrapeConfig{
			BaseURL:       baseURL,
			DetailWorkers: detailWorkers,
			RequestDelay:  requestDelay,
		},
		Storage: types.StorageConfig{
			DBPath:  dbPath,
			DataDir: dataDir,
		},
	}

	fetcher, err := fetch.New(cfg.Fetch, os.Stdout)
	if err != nil {
		return err
	}
	defer fetcher.Close()

	trials, err := store.Open(cfg.Storage)
	if err != nil {
		return err
	}
	defer trials.Close()

	blobs := blob.NewStore(cfg.Storage.DataDir)

	var scraper *scrape.Scraper
	if byDate {
		fmt.Fprintf(os.Stdout, "processing by date range: %s to %s\n", startDate, endDate)
		scraper = scrape.NewByDate(fetcher, trials, blobs, cfg.Scrape, startDate, endDate, os.Stdout)
	} else {
		fmt.Fprintf(os.Stdout, "processing by page range: %d to %d\n", startPage, endPage)
		scraper = scrape.NewByPage(fetcher, trials, blobs, cfg.Scrape, startPage, endPage, os.Stdout)
	}

	started := time.Now()
	summary, err := scraper.Run(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "scraping complete: %d/%d trials in %.2fs\n",
		summary.Succeeded, summary.Cards, time.Since(started).Seconds())
	return nil
}

// validateSelection enforces the mode matrix: a full date range or a
// full page range, never both, never half of either. It reports whether
// date mode was selected.
func validateSelection(startDate, endDate string, startPage, endPage int) (byDate bool, err error) {
	haveDates := startDate != "" || endDate != ""
	havePages := startPage != 0 || endPage != 0

	switch {
	case !haveDates && !havePages:
		return false, fmt.Errorf("provide either start/end dates or start/end pages")
	case haveDates && havePages:
		return false, fmt.Errorf("provide either start/end dates or start/end pages, not both")
	case haveDates:
		if startDate == "" || endDate == "" {
			return false, fmt.Errorf("both start and end dates must be provided")
		}
		from, err := time.Parse(dateLayout, startDate)
		if err != nil {
			return false, fmt.Errorf("invalid start date %q: expected YYYY-MM-DD", startDate)
		}
		to, err := time.Parse(dateLayout, endDate)
		if err != nil {
			return false, fmt.Errorf("invalid end date %q: expected YYYY-MM-DD", endDate)
		}
		if from.After(to) {
			return false, fmt.Errorf("start date cannot be after end date")
		}
		return true, nil
	default:
		if startPage == 0 || endPage == 0 {
			return false, fmt.Errorf("both start and end pages must be provided")
		}
		if startPage < 1 || endPage < 1 {
			return false, fmt.Errorf("page numbers must be positive")
		}
		if startPage > endPage {
			return false, fmt.Errorf("start page cannot be after end page")
		}
		return false, nil
	}
}
