package types

import (
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Record represents one observation of a product listing at a site
type Record struct {
	Name         string    `json:"name"`
	Price        *float64  `json:"price"`
	Site         string    `json:"site"`
	URL          string    `json:"url"`
	ObservedAt   time.Time `json:"observed_at"`
	Description  string    `json:"description,omitempty"`
	Rating       float64   `json:"rating,omitempty"`
	ReviewCount  int       `json:"review_count,omitempty"`
	Availability string    `json:"availability,omitempty"`
}

// HasPrice reports whether the listing price could be parsed
func (r Record) HasPrice() bool {
	return r.Price != nil
}

// Valid reports whether the record may be ranked and persisted
func (r Record) Valid() bool {
	return r.Name != "" && r.HasPrice()
}

// Observation represents a persisted record in the price history
type Observation struct {
	Name         string    `json:"name"`
	Price        float64   `json:"price"`
	Site         string    `json:"site"`
	URL          string    `json:"url"`
	ObservedAt   time.Time `json:"observed_at"`
	Description  string    `json:"description,omitempty"`
	Rating       float64   `json:"rating,omitempty"`
	ReviewCount  int       `json:"review_count,omitempty"`
	Availability string    `json:"availability,omitempty"`
}

// SkipReason explains why an item element did not produce a record
type SkipReason string

const (
	SkipNone        SkipReason = ""
	SkipNoName      SkipReason = "missing name"
	SkipPlaceholder SkipReason = "placeholder tile"
	SkipMalformed   SkipReason = "malformed item"
)

// ItemResult is the outcome of parsing a single item element
type ItemResult struct {
	Record *Record
	Skip   SkipReason
	Err    error
}

// Records returns the successfully parsed records in document order
func Records(results []ItemResult) []Record {
	records := make([]Record, 0, len(results))
	for _, r := range results {
		if r.Record != nil {
			records = append(records, *r.Record)
		}
	}
	return records
}

// SiteResult represents the search result for a single site
type SiteResult struct {
	SiteName string         `json:"site_name"`
	URL      string         `json:"url"`
	Records  []Record       `json:"records"`
	Skipped  map[string]int `json:"skipped,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// SearchResult represents the complete result of one search
type SearchResult struct {
	SearchID string       `json:"search_id"`
	Query    string       `json:"query"`
	Sites    []SiteResult `json:"sites"`
}

// AllRecords merges the per-site records, first site first
func (s SearchResult) AllRecords() []Record {
	var records []Record
	for _, site := range s.Sites {
		records = append(records, site.Records...)
	}
	return records
}

// Config holds the configuration for the price tracker
type Config struct {
	MinDelay           time.Duration
	MaxDelay           time.Duration
	Timeout            time.Duration
	UseHeadlessBrowser bool
	UserAgent          string
	// SiteURLs overrides the search URL template per site name (lowercase).
	// Templates contain a {query} placeholder.
	SiteURLs map[string]string
	DBPath   string
	LogFile  string
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		MinDelay:           2 * time.Second,
		MaxDelay:           4 * time.Second,
		Timeout:            15 * time.Second,
		UseHeadlessBrowser: false,
		UserAgent:          "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		SiteURLs:           map[string]string{},
		DBPath:             "product_prices.db",
		LogFile:            "price_tracker.log",
	}
}

// SiteAdapter defines the interface for site-specific search page parsing
type SiteAdapter interface {
	// Name returns the site identifier stored with each record
	Name() string

	// SearchURL builds the search page URL for a query
	SearchURL(query string) string

	// FetchDocument retrieves and parses a page
	FetchDocument(ctx context.Context, url string) (*goquery.Document, error)

	// ParseItems converts a search results page into per-item results
	ParseItems(doc *goquery.Document, pageURL string) []ItemResult

	Close()
}

// Logger defines the logging interface
type Logger interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}
