package types

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, 2*time.Second, config.MinDelay)
	assert.Equal(t, 4*time.Second, config.MaxDelay)
	assert.Equal(t, 15*time.Second, config.Timeout)
	assert.False(t, config.UseHeadlessBrowser)
	assert.Equal(t, "product_prices.db", config.DBPath)
	assert.NotNil(t, config.SiteURLs)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("PRICE_DB", "/tmp/p.db")
	t.Setenv("PRICE_LOG_FILE", "")
	t.Setenv("PRICE_TIMEOUT", "5s")
	t.Setenv("PRICE_MIN_DELAY", "bogus")
	t.Setenv("PRICE_HEADLESS", "true")
	t.Setenv("PRICE_EBAY_URL", "http://localhost/ebay?q={query}")

	config := DefaultConfig()
	ApplyEnv(config)

	assert.Equal(t, "/tmp/p.db", config.DBPath)
	assert.Equal(t, "", config.LogFile)
	assert.Equal(t, 5*time.Second, config.Timeout)
	assert.Equal(t, 2*time.Second, config.MinDelay)
	assert.True(t, config.UseHeadlessBrowser)
	assert.Equal(t, "http://localhost/ebay?q={query}", config.SiteURLs["ebay"])
}

func TestRecordValid(t *testing.T) {
	p := 1.5
	assert.True(t, Record{Name: "a", Price: &p}.Valid())
	assert.False(t, Record{Name: "", Price: &p}.Valid())
	assert.False(t, Record{Name: "a"}.Valid())
}

func TestRecords_KeepsOrderAndDropsSkips(t *testing.T) {
	results := []ItemResult{
		{Record: &Record{Name: "first"}},
		{Skip: SkipNoName},
		{Skip: SkipMalformed, Err: errors.New("boom")},
		{Record: &Record{Name: "second"}},
	}

	records := Records(results)

	assert.Len(t, records, 2)
	assert.Equal(t, "first", records[0].Name)
	assert.Equal(t, "second", records[1].Name)
	assert.Empty(t, Records(nil))
}
