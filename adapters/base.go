package adapters

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"price-tracker/internal/types"
	"price-tracker/utils"

	"github.com/PuerkitoBio/goquery"
)

// QueryPlaceholder marks where the escaped query goes in a search URL template
const QueryPlaceholder = "{query}"

// BaseAdapter provides common functionality for site adapters.
// Site adapters embed it and supply only their selectors and item mapping.
type BaseAdapter struct {
	config        *types.Config
	logger        types.Logger
	httpClient    *utils.HTTPClient
	browserClient *utils.BrowserClient
	now           func() time.Time
}

// NewBaseAdapter creates a new base adapter with initialized HTTP and browser clients
func NewBaseAdapter(config *types.Config, logger types.Logger) *BaseAdapter {
	return &BaseAdapter{
		config:        config,
		logger:        logger,
		httpClient:    utils.NewHTTPClient(config, logger),
		browserClient: utils.NewBrowserClient(config, logger),
		now:           time.Now,
	}
}

// SetClock replaces the clock used to stamp records
func (b *BaseAdapter) SetClock(now func() time.Time) {
	b.now = now
}

// GetPageContent retrieves the HTML of a page using either the HTTP client or
// the headless browser, depending on UseHeadlessBrowser
func (b *BaseAdapter) GetPageContent(ctx context.Context, url string) (string, error) {
	if b.config.UseHeadlessBrowser {
		return b.browserClient.GetPageContent(ctx, url)
	}

	body, err := b.httpClient.Get(ctx, url)
	if err != nil {
		return "", err
	}

	return string(body), nil
}

// FetchDocument retrieves a page and parses it into a goquery document
func (b *BaseAdapter) FetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	html, err := b.GetPageContent(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}

	doc, err := b.ParseHTML(html)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", url, err)
	}
	return doc, nil
}

// ParseHTML parses HTML content into a goquery document
func (b *BaseAdapter) ParseHTML(html string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// ParseHTMLBytes parses a raw response body into a goquery document
func ParseHTMLBytes(body []byte) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(bytes.NewReader(body))
}

// BuildSearchURL fills a search URL template with the query, percent-encoded
// the way HTML forms encode it (spaces become '+')
func BuildSearchURL(template, query string) string {
	return strings.ReplaceAll(template, QueryPlaceholder, url.QueryEscape(query))
}

// searchTemplate returns the configured template for a site, or fallback
func (b *BaseAdapter) searchTemplate(site, fallback string) string {
	if t, ok := b.config.SiteURLs[strings.ToLower(site)]; ok && t != "" {
		return t
	}
	return fallback
}

// ChildText returns the cleaned text of the first element matching selector
// under item, and whether such an element exists
func ChildText(item *goquery.Selection, selector string) (string, bool) {
	el := item.Find(selector).First()
	if el.Length() == 0 {
		return "", false
	}
	return utils.CleanText(el.Text()), true
}

// ResolveItemURL returns the href of the first element matching selector under
// item. Relative hrefs are resolved against the origin of pageURL. When no link
// is found, pageURL itself is returned.
func ResolveItemURL(item *goquery.Selection, selector, pageURL string) string {
	href, ok := item.Find(selector).First().Attr("href")
	href = strings.TrimSpace(href)
	if !ok || href == "" {
		return pageURL
	}
	return ResolveAgainstOrigin(pageURL, href)
}

// ResolveAgainstOrigin resolves href against the scheme and host of pageURL.
// Absolute hrefs are returned unchanged.
func ResolveAgainstOrigin(pageURL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return pageURL
	}
	if ref.IsAbs() {
		return ref.String()
	}

	base, err := url.Parse(pageURL)
	if err != nil || base.Host == "" {
		return href
	}
	origin := &url.URL{Scheme: base.Scheme, Host: base.Host, Path: "/"}
	return origin.ResolveReference(ref).String()
}

// EachItem runs parse on every element matching itemSelector. A panic inside
// parse only affects that item: it is logged and reported as SkipMalformed.
func (b *BaseAdapter) EachItem(doc *goquery.Document, site, itemSelector string, parse func(*goquery.Selection) types.ItemResult) []types.ItemResult {
	var results []types.ItemResult
	if doc == nil {
		return results
	}

	doc.Find(itemSelector).Each(func(i int, s *goquery.Selection) {
		result := b.safeParse(i, site, s, parse)
		if result.Skip != types.SkipNone {
			b.logger.Debugf("Skipping %s item %d: %s", site, i, result.Skip)
		}
		results = append(results, result)
	})

	return results
}

func (b *BaseAdapter) safeParse(i int, site string, s *goquery.Selection, parse func(*goquery.Selection) types.ItemResult) (result types.ItemResult) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("item %d: %v", i, r)
			b.logger.Errorf("Error parsing %s product: %v", site, err)
			result = types.ItemResult{Skip: types.SkipMalformed, Err: err}
		}
	}()
	return parse(s)
}

// NewRecord stamps a record with the adapter's clock
func (b *BaseAdapter) NewRecord(site, name string, price *float64, itemURL string) *types.Record {
	return &types.Record{
		Name:       name,
		Price:      price,
		Site:       site,
		URL:        itemURL,
		ObservedAt: b.now(),
	}
}

// Close cleans up resources
func (b *BaseAdapter) Close() {
	if b.httpClient != nil {
		b.httpClient.Close()
	}
}

// Config returns the config field of the BaseAdapter
func (b *BaseAdapter) Config() *types.Config {
	return b.config
}
