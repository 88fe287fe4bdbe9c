package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"price-tracker/adapters"
	"price-tracker/internal/types"
)

func main() {
	var (
		query      = flag.String("query", "laptop", "Search query to fetch")
		file       = flag.String("file", "", "Parse a saved HTML file instead of fetching")
		site       = flag.String("site", "", "Only probe this site (amazon, ebay)")
		useBrowser = flag.Bool("browser", false, "Fetch pages with a headless browser")
	)
	flag.Parse()

	config := types.DefaultConfig()
	types.ApplyEnv(config)
	config.UseHeadlessBrowser = *useBrowser

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	for _, adapter := range adapters.All(config, logger) {
		name := strings.ToLower(adapter.Name())
		if *site != "" && *site != name {
			continue
		}

		fmt.Printf("=== %s ===\n", adapter.Name())
		pageURL := adapter.SearchURL(*query)

		doc, err := loadDocument(context.Background(), adapter, pageURL, *file)
		if err != nil {
			log.Printf("Failed to load %s: %v", pageURL, err)
			adapter.Close()
			continue
		}

		for _, selector := range adapters.Selectors(name) {
			fmt.Printf("  %-45s %d\n", selector, doc.Find(selector).Length())
		}

		results := adapter.ParseItems(doc, pageURL)
		records := types.Records(results)
		fmt.Printf("Parsed %d records from %d items\n", len(records), len(results))
		for i, r := range records {
			if i >= 5 {
				break
			}
			price := "unknown"
			if r.HasPrice() {
				price = fmt.Sprintf("%.2f", *r.Price)
			}
			fmt.Printf("  %d: %s | %s | %s\n", i+1, r.Name, price, r.URL)
		}
		adapter.Close()
	}
}

func loadDocument(ctx context.Context, adapter types.SiteAdapter, pageURL, file string) (*goquery.Document, error) {
	if file == "" {
		return adapter.FetchDocument(ctx, pageURL)
	}
	body, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return adapters.ParseHTMLBytes(body)
}
