package adapters

import (
	"strings"

	"price-tracker/internal/types"
)

// All returns an adapter for every supported site in search order
func All(config *types.Config, logger types.Logger) []types.SiteAdapter {
	return []types.SiteAdapter{
		NewAmazonAdapter(config, logger),
		NewEbayAdapter(config, logger),
	}
}

// Selectors returns the CSS selectors a site's adapter relies on, item selector first
func Selectors(site string) []string {
	switch strings.ToLower(site) {
	case "amazon":
		return []string{amazonItemSelector, amazonNameSelector, amazonPriceSelector, amazonRatingSelector, amazonReviewsSelector, amazonLinkSelector}
	case "ebay":
		return []string{ebayItemSelector, ebayNameSelector, ebayPriceSelector, ebayConditionSelector, ebaySubtitleSelector, ebayLinkSelector}
	}
	return nil
}
