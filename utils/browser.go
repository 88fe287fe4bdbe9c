package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"price-tracker/internal/types"
)

// BrowserClient renders search pages in a headless browser, for sites that
// build their result list client-side
type BrowserClient struct {
	config *types.Config
	logger types.Logger
	// settle is how long to wait after navigation for scripts to populate results
	settle time.Duration
}

// NewBrowserClient creates a new browser client
func NewBrowserClient(config *types.Config, logger types.Logger) *BrowserClient {
	return &BrowserClient{
		config: config,
		logger: logger,
		settle: 500 * time.Millisecond,
	}
}

// GetPageContent waits for the politeness delay, then retrieves the rendered
// HTML of a page
func (b *BrowserClient) GetPageContent(ctx context.Context, url string) (string, error) {
	if err := Pause(ctx, b.config); err != nil {
		return "", err
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(b.config.UserAgent),
	)
	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, b.config.Timeout)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.Sleep(b.settle),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("failed to get page content: %w", err)
	}

	b.logger.Debugf("Successfully retrieved page content from %s (%d bytes)", url, len(html))
	return html, nil
}
