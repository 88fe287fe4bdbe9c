package adapters

import (
	"strings"

	"price-tracker/internal/types"
	"price-tracker/utils"

	"github.com/PuerkitoBio/goquery"
)

const (
	ebaySearchURL = "https://www.ebay.com/sch/i.html?_nkw=" + QueryPlaceholder

	ebayItemSelector      = "li.s-item"
	ebayNameSelector      = "div.s-item__title"
	ebayPriceSelector     = "span.s-item__price"
	ebayConditionSelector = "span.SECONDARY_INFO"
	ebaySubtitleSelector  = "div.s-item__subtitle"
	ebayLinkSelector      = "a.s-item__link"
)

// ebayPlaceholders are tile titles eBay renders in the result list that are not listings
var ebayPlaceholders = []string{"shop on ebay"}

// EbayAdapter handles search result pages of ebay.com
type EbayAdapter struct {
	*BaseAdapter
}

// NewEbayAdapter creates a new eBay adapter
func NewEbayAdapter(config *types.Config, logger types.Logger) *EbayAdapter {
	return &EbayAdapter{
		BaseAdapter: NewBaseAdapter(config, logger),
	}
}

// Name returns the site name
func (e *EbayAdapter) Name() string {
	return "eBay"
}

// SearchURL returns the search page URL for query
func (e *EbayAdapter) SearchURL(query string) string {
	return BuildSearchURL(e.searchTemplate(e.Name(), ebaySearchURL), query)
}

// ParseItems extracts one result per listing
func (e *EbayAdapter) ParseItems(doc *goquery.Document, pageURL string) []types.ItemResult {
	return e.EachItem(doc, e.Name(), ebayItemSelector, func(item *goquery.Selection) types.ItemResult {
		name, ok := ChildText(item, ebayNameSelector)
		if !ok || name == "" {
			return types.ItemResult{Skip: types.SkipNoName}
		}
		if isPlaceholder(name, ebayPlaceholders) {
			return types.ItemResult{Skip: types.SkipPlaceholder}
		}

		priceText, _ := ChildText(item, ebayPriceSelector)
		record := e.NewRecord(e.Name(), name, utils.PricePtr(priceText), ResolveItemURL(item, ebayLinkSelector, pageURL))

		record.Availability, _ = ChildText(item, ebayConditionSelector)
		record.Description, _ = ChildText(item, ebaySubtitleSelector)

		return types.ItemResult{Record: record}
	})
}

func isPlaceholder(name string, placeholders []string) bool {
	for _, p := range placeholders {
		if strings.EqualFold(name, p) {
			return true
		}
	}
	return false
}
