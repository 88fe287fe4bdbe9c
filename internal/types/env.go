package types

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnv overrides config fields from PRICE_* environment variables.
// Unset or malformed variables leave the field unchanged.
func ApplyEnv(config *Config) {
	if v := os.Getenv("PRICE_DB"); v != "" {
		config.DBPath = v
	}
	if v, ok := os.LookupEnv("PRICE_LOG_FILE"); ok {
		config.LogFile = v
	}
	if d, err := time.ParseDuration(os.Getenv("PRICE_TIMEOUT")); err == nil && d > 0 {
		config.Timeout = d
	}
	if d, err := time.ParseDuration(os.Getenv("PRICE_MIN_DELAY")); err == nil && d >= 0 {
		config.MinDelay = d
	}
	if d, err := time.ParseDuration(os.Getenv("PRICE_MAX_DELAY")); err == nil && d >= 0 {
		config.MaxDelay = d
	}
	if b, err := strconv.ParseBool(os.Getenv("PRICE_HEADLESS")); err == nil {
		config.UseHeadlessBrowser = b
	}
	if v := os.Getenv("PRICE_USER_AGENT"); v != "" {
		config.UserAgent = v
	}
	for _, site := range []string{"amazon", "ebay"} {
		if v := os.Getenv("PRICE_" + strings.ToUpper(site) + "_URL"); v != "" {
			config.SiteURLs[site] = v
		}
	}
}
