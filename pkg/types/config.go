// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// Accept is the Accept header sent with HTTP requests.
	Accept string `json:"accept,omitempty" yaml:"accept,omitempty"`
}

// FetchConfig holds settings for the fetch/retry engine.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxAttempts is the total number of attempts per URL, including the
	// first (default 7).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`

	// BackoffBase scales the exponential backoff: attempt k sleeps
	// 2^k * BackoffBase before attempt k+1 (default 1s). Tests use a
	// millisecond base to avoid real sleeps.
	BackoffBase time.Duration `json:"backoff_base" yaml:"backoff_base"`

	// MaxBackoff caps a single backoff sleep (default 5m). Unreachable
	// with the default attempt count; it only binds when MaxAttempts is
	// raised past the point where 2^k * BackoffBase exceeds it.
	MaxBackoff time.Duration `json:"max_backoff" yaml:"max_backoff"`

	// Concurrency bounds how many batch fetches run at once (default 16).
	Concurrency int `json:"concurrency" yaml:"concurrency"`

	// CachePath is the SQLite file backing the URL response cache.
	// Empty disables caching.
	CachePath string `json:"cache_path" yaml:"cache_path"`
}

// ScrapeConfig holds settings for the scrape orchestrator.
type ScrapeConfig struct {
	// BaseURL is the register search endpoint, query-string ready
	// (e.g. "https://www.clinicaltrialsregister.eu/ctr-search/search?query=").
	BaseURL string `json:"base_url" yaml:"base_url"`

	// ParseWorkers bounds the parallel card-parsing stage (default 8).
	ParseWorkers int `json:"parse_workers" yaml:"parse_workers"`

	// DetailWorkers bounds the per-trial detail fetch loop (default 1,
	// which keeps one detail request in flight against the register at a
	// time).
	DetailWorkers int `json:"detail_workers" yaml:"detail_workers"`

	// RequestDelay is an optional pause between consecutive detail
	// fetches for the same trial (default 0).
	RequestDelay time.Duration `json:"request_delay" yaml:"request_delay"`
}

// StorageConfig holds settings for the trial store and blob archive.
type StorageConfig struct {
	// DBPath is the SQLite file holding flat trial rows.
	DBPath string `json:"db_path" yaml:"db_path"`

	// DataDir is the base directory for raw per-trial artifacts
	// (JSON aggregates, HTML, extracted report text).
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// HarvestConfig groups all component configurations for one run. It is
// constructed once at process start and passed explicitly; nothing in the
// core reads global state.
type HarvestConfig struct {
	Fetch   FetchConfig   `json:"fetch" yaml:"fetch"`
	Scrape  ScrapeConfig  `json:"scrape" yaml:"scrape"`
	Storage StorageConfig `json:"storage" yaml:"storage"`
}
