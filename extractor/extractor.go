package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"price-tracker/internal/types"
)

// ErrEmptyQuery is returned when a search is requested without a query
var ErrEmptyQuery = errors.New("empty search query")

// Extractor runs a query against every configured site, one after another
type Extractor struct {
	adapters []types.SiteAdapter
	logger   types.Logger
}

// NewExtractor creates an extractor over adapters, searched in the given order
func NewExtractor(adapters []types.SiteAdapter, logger types.Logger) *Extractor {
	return &Extractor{
		adapters: adapters,
		logger:   logger,
	}
}

// Search returns the records from all sites, first site first, each in
// document order. A failing site contributes no records.
func (e *Extractor) Search(ctx context.Context, query string) ([]types.Record, error) {
	result, err := e.SearchReport(ctx, query)
	if err != nil {
		return nil, err
	}
	return result.AllRecords(), nil
}

// SearchReport is Search with per-site detail: skip counts and fetch errors
func (e *Extractor) SearchReport(ctx context.Context, query string) (types.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return types.SearchResult{}, ErrEmptyQuery
	}

	result := types.SearchResult{
		SearchID: uuid.NewString(),
		Query:    query,
	}
	logger := withFields(e.logger, logrus.Fields{"search_id": result.SearchID})

	startTime := time.Now()
	logger.Infof("Searching %d sites for %q", len(e.adapters), query)

	for _, adapter := range e.adapters {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		siteResult := e.searchSite(ctx, adapter, query, logger)
		result.Sites = append(result.Sites, siteResult)
	}

	logger.Infof("Search completed in %v with %d records", time.Since(startTime), len(result.AllRecords()))
	return result, nil
}

func (e *Extractor) searchSite(ctx context.Context, adapter types.SiteAdapter, query string, logger types.Logger) (siteResult types.SiteResult) {
	siteResult = types.SiteResult{
		SiteName: adapter.Name(),
		URL:      adapter.SearchURL(query),
		Records:  []types.Record{},
	}
	logger = withFields(logger, logrus.Fields{"site": siteResult.SiteName, "url": siteResult.URL})

	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("Error searching %s: %v", siteResult.SiteName, r)
			siteResult.Records = []types.Record{}
			siteResult.Error = fmt.Sprint(r)
		}
	}()

	logger.Infof("Searching on %s", siteResult.SiteName)

	doc, err := adapter.FetchDocument(ctx, siteResult.URL)
	if err != nil {
		logger.Errorf("Error fetching %s: %v", siteResult.URL, err)
		siteResult.Error = err.Error()
		return siteResult
	}

	results := adapter.ParseItems(doc, siteResult.URL)
	for _, r := range results {
		if r.Record != nil {
			siteResult.Records = append(siteResult.Records, *r.Record)
			continue
		}
		if siteResult.Skipped == nil {
			siteResult.Skipped = make(map[string]int)
		}
		siteResult.Skipped[string(r.Skip)]++
	}

	logger.Infof("Found %d products on %s (%d items skipped)", len(siteResult.Records), siteResult.SiteName, len(results)-len(siteResult.Records))
	return siteResult
}

// Close cleans up resources of every adapter
func (e *Extractor) Close() {
	for _, adapter := range e.adapters {
		adapter.Close()
	}
}

// ValidRecords keeps records that have a name and a known price
func ValidRecords(records []types.Record) []types.Record {
	valid := make([]types.Record, 0, len(records))
	for _, r := range records {
		if r.Valid() {
			valid = append(valid, r)
		}
	}
	return valid
}

// RankByPrice returns the valid records sorted by ascending price. Records
// with equal prices keep their search order.
func RankByPrice(records []types.Record) []types.Record {
	ranked := ValidRecords(records)
	sort.SliceStable(ranked, func(i, j int) bool {
		return *ranked[i].Price < *ranked[j].Price
	})
	return ranked
}

// TopDeals returns the n cheapest valid records
func TopDeals(records []types.Record, n int) []types.Record {
	ranked := RankByPrice(records)
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// WriteJSON writes the search result as indented JSON
func WriteJSON(w io.Writer, result types.SearchResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("failed to marshal results to JSON: %w", err)
	}
	return nil
}

// ExportToJSON saves the search result to filename
func ExportToJSON(filename string, result types.SearchResult) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to write results to file: %w", err)
	}
	defer f.Close()

	return WriteJSON(f, result)
}

// withFields attaches structured fields when the logger supports them
func withFields(logger types.Logger, fields logrus.Fields) types.Logger {
	if l, ok := logger.(logrus.FieldLogger); ok {
		return l.WithFields(fields)
	}
	return logger
}
