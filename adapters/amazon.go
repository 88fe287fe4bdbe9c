package adapters

import (
	"price-tracker/internal/types"
	"price-tracker/utils"

	"github.com/PuerkitoBio/goquery"
)

const (
	amazonSearchURL = "https://www.amazon.com/s?k=" + QueryPlaceholder

	amazonItemSelector    = `div[data-component-type="s-search-result"]`
	amazonNameSelector    = "h2 a span"
	amazonPriceSelector   = "span.a-price > span.a-offscreen"
	amazonRatingSelector  = "span.a-icon-alt"
	amazonReviewsSelector = "span.a-size-base.s-underline-text"
	amazonLinkSelector    = "h2 a"
)

// AmazonAdapter handles search result pages of amazon.com
type AmazonAdapter struct {
	*BaseAdapter
}

// NewAmazonAdapter creates a new Amazon adapter
func NewAmazonAdapter(config *types.Config, logger types.Logger) *AmazonAdapter {
	return &AmazonAdapter{
		BaseAdapter: NewBaseAdapter(config, logger),
	}
}

// Name returns the site name
func (a *AmazonAdapter) Name() string {
	return "Amazon"
}

// SearchURL returns the search page URL for query
func (a *AmazonAdapter) SearchURL(query string) string {
	return BuildSearchURL(a.searchTemplate(a.Name(), amazonSearchURL), query)
}

// ParseItems extracts one result per search result tile
func (a *AmazonAdapter) ParseItems(doc *goquery.Document, pageURL string) []types.ItemResult {
	return a.EachItem(doc, a.Name(), amazonItemSelector, func(item *goquery.Selection) types.ItemResult {
		name, ok := ChildText(item, amazonNameSelector)
		if !ok || name == "" {
			return types.ItemResult{Skip: types.SkipNoName}
		}

		priceText, _ := ChildText(item, amazonPriceSelector)
		record := a.NewRecord(a.Name(), name, utils.PricePtr(priceText), ResolveItemURL(item, amazonLinkSelector, pageURL))

		if rating, ok := ChildText(item, amazonRatingSelector); ok {
			record.Rating = utils.ParseRating(rating)
		}
		if reviews, ok := ChildText(item, amazonReviewsSelector); ok {
			record.ReviewCount = utils.ParseReviewCount(reviews)
		}

		return types.ItemResult{Record: record}
	})
}
