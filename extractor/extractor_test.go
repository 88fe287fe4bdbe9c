package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"price-tracker/adapters"
	"price-tracker/internal/types"
)

func amazonTile(name, price string) string {
	return fmt.Sprintf(`<div data-component-type="s-search-result">
<h2><a href="/dp/%s"><span>%s</span></a></h2>
<span class="a-price"><span class="a-offscreen">%s</span></span>
</div>`, strings.ReplaceAll(name, " ", "-"), name, price)
}

func ebayTile(name, price string) string {
	return fmt.Sprintf(`<li class="s-item">
<a class="s-item__link" href="https://www.ebay.com/itm/%s"><div class="s-item__title">%s</div></a>
<span class="s-item__price">%s</span>
</li>`, strings.ReplaceAll(name, " ", "-"), name, price)
}

// newMockSites serves an Amazon-like page with 3 items and an eBay-like page
// with 2 items. ebayDelay slows the eBay handler down.
func newMockSites(t *testing.T, ebayDelay time.Duration) (*httptest.Server, *types.Config) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/amazon/s", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "laptop", r.URL.Query().Get("k"))
		fmt.Fprint(w, "<html><body>"+
			amazonTile("Laptop Pro", "$1,299.00")+
			amazonTile("Laptop Air", "$899.99")+
			amazonTile("Laptop Mini", "Currently unavailable")+
			"</body></html>")
	})
	mux.HandleFunc("/ebay/sch", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(ebayDelay)
		fmt.Fprint(w, "<html><body><ul>"+
			ebayTile("Used Laptop", "$350.00")+
			ebayTile("Refurb Laptop", "$899.99")+
			"</ul></body></html>")
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	config := types.DefaultConfig()
	config.MinDelay = time.Millisecond
	config.MaxDelay = 2 * time.Millisecond
	config.Timeout = 2 * time.Second
	config.SiteURLs = map[string]string{
		"amazon": server.URL + "/amazon/s?k={query}",
		"ebay":   server.URL + "/ebay/sch?_nkw={query}",
	}
	return server, config
}

func TestNewExtractor(t *testing.T) {
	config := types.DefaultConfig()
	logger := logrus.New()
	sites := adapters.All(config, logger)

	extractor := NewExtractor(sites, logger)
	defer extractor.Close()

	assert.NotNil(t, extractor)
	assert.Equal(t, logger, extractor.logger)
	require.Len(t, extractor.adapters, 2)
	assert.Equal(t, "Amazon", extractor.adapters[0].Name())
	assert.Equal(t, "eBay", extractor.adapters[1].Name())
}

func TestSearch_EmptyQuery(t *testing.T) {
	extractor := NewExtractor(nil, logrus.New())

	_, err := extractor.Search(context.Background(), "   ")

	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestSearch_EndToEnd(t *testing.T) {
	_, config := newMockSites(t, 0)
	logger := logrus.New()
	extractor := NewExtractor(adapters.All(config, logger), logger)
	defer extractor.Close()

	records, err := extractor.Search(context.Background(), "laptop")
	require.NoError(t, err)
	require.Len(t, records, 5)

	var names []string
	for _, r := range records {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"Laptop Pro", "Laptop Air", "Laptop Mini", "Used Laptop", "Refurb Laptop"}, names)
	assert.Equal(t, "Amazon", records[0].Site)
	assert.Equal(t, "eBay", records[4].Site)
	assert.True(t, strings.HasSuffix(records[0].URL, "/dp/Laptop-Pro"))

	ranked := RankByPrice(records)
	require.Len(t, ranked, 4)
	for i := 1; i < len(ranked); i++ {
		assert.LessOrEqual(t, *ranked[i-1].Price, *ranked[i].Price)
	}
	assert.Equal(t, "Used Laptop", ranked[0].Name)
	// equal prices keep search order
	assert.Equal(t, "Laptop Air", ranked[1].Name)
	assert.Equal(t, "Refurb Laptop", ranked[2].Name)
}

func TestSearch_TimeoutOnOneSite(t *testing.T) {
	_, config := newMockSites(t, 500*time.Millisecond)
	config.Timeout = 100 * time.Millisecond
	logger := logrus.New()
	extractor := NewExtractor(adapters.All(config, logger), logger)
	defer extractor.Close()

	report, err := extractor.SearchReport(context.Background(), "laptop")
	require.NoError(t, err)
	require.Len(t, report.Sites, 2)

	assert.Len(t, report.Sites[0].Records, 3)
	assert.Empty(t, report.Sites[1].Records)
	assert.NotEmpty(t, report.Sites[1].Error)
	assert.Len(t, report.AllRecords(), 3)
}

type panickingAdapter struct{}

func (panickingAdapter) Name() string                  { return "Broken" }
func (panickingAdapter) SearchURL(query string) string { return "http://broken.invalid/?q=" + query }
func (panickingAdapter) FetchDocument(context.Context, string) (*goquery.Document, error) {
	panic("markup exploded")
}
func (panickingAdapter) ParseItems(*goquery.Document, string) []types.ItemResult { return nil }
func (panickingAdapter) Close()                                               {}

func TestSearch_PanickingSiteDoesNotStopOthers(t *testing.T) {
	_, config := newMockSites(t, 0)
	logger := logrus.New()
	sites := append([]types.SiteAdapter{panickingAdapter{}}, adapters.All(config, logger)...)
	extractor := NewExtractor(sites, logger)
	defer extractor.Close()

	report, err := extractor.SearchReport(context.Background(), "laptop")
	require.NoError(t, err)
	require.Len(t, report.Sites, 3)
	assert.Equal(t, "markup exploded", report.Sites[0].Error)
	assert.Len(t, report.AllRecords(), 5)
}

func TestSearchReport_SkipCounts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<ul>
<li class="s-item"><div class="s-item__title">Shop on eBay</div></li>
<li class="s-item"><span class="s-item__price">$1</span></li>
<li class="s-item"><div class="s-item__title">Real</div><span class="s-item__price">$2</span></li>
</ul>`)
	}))
	defer server.Close()

	config := types.DefaultConfig()
	config.MinDelay, config.MaxDelay = 0, 0
	config.SiteURLs["ebay"] = server.URL + "/?q={query}"
	logger := logrus.New()
	extractor := NewExtractor([]types.SiteAdapter{adapters.NewEbayAdapter(config, logger)}, logger)
	defer extractor.Close()

	report, err := extractor.SearchReport(context.Background(), "anything")
	require.NoError(t, err)
	require.Len(t, report.Sites, 1)
	assert.Len(t, report.Sites[0].Records, 1)
	assert.Equal(t, map[string]int{
		string(types.SkipPlaceholder): 1,
		string(types.SkipNoName):      1,
	}, report.Sites[0].Skipped)
	assert.NotEmpty(t, report.SearchID)
}

func price(v float64) *float64 { return &v }

func TestTopDeals(t *testing.T) {
	records := []types.Record{
		{Name: "a", Price: price(5)},
		{Name: "b", Price: nil},
		{Name: "", Price: price(1)},
		{Name: "c", Price: price(3)},
		{Name: "d", Price: price(4)},
	}

	top := TopDeals(records, 2)
	require.Len(t, top, 2)
	assert.Equal(t, "c", top[0].Name)
	assert.Equal(t, "d", top[1].Name)

	assert.Len(t, TopDeals(records, 10), 3)
	assert.Len(t, ValidRecords(records), 3)
}

func TestExportToJSON(t *testing.T) {
	result := types.SearchResult{
		SearchID: "id-1",
		Query:    "phone",
		Sites: []types.SiteResult{{
			SiteName: "eBay",
			Records:  []types.Record{{Name: "Phone", Price: price(10), Site: "eBay"}},
		}},
	}

	filename := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, ExportToJSON(filename, result))

	data, err := os.ReadFile(filename)
	require.NoError(t, err)

	var decoded types.SearchResult
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "phone", decoded.Query)
	require.Len(t, decoded.Sites, 1)
	assert.Equal(t, "Phone", decoded.Sites[0].Records[0].Name)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, result))
	assert.Contains(t, buf.String(), `"search_id": "id-1"`)
}
