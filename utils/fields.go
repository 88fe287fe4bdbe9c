package utils

import (
	"strconv"
	"strings"
)

// ParsePrice extracts a numeric amount from displayed price text such as "$1,234.56".
// Commas are always treated as thousands separators. The second return value is
// false when no amount could be parsed.
func ParsePrice(text string) (float64, bool) {
	if text == "" {
		return 0, false
	}

	var b strings.Builder
	for _, r := range text {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}

	cleaned := b.String()
	if cleaned == "" {
		return 0, false
	}

	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return price, true
}

// PricePtr is ParsePrice returning nil for an unknown price
func PricePtr(text string) *float64 {
	price, ok := ParsePrice(text)
	if !ok {
		return nil
	}
	return &price
}

// ParseRating parses the leading number of rating text like "4.5 out of 5 stars".
// Returns 0 when there is no rating.
func ParseRating(text string) float64 {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0
	}

	rating, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || rating < 0 {
		return 0
	}
	return rating
}

// ParseReviewCount parses review count text like "1,234" or "(1,234)".
// Returns 0 when absent or unparseable.
func ParseReviewCount(text string) int {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "(")
	text = strings.TrimSuffix(text, ")")

	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ',', '.', '\'', ' ', '\u00a0':
			return -1
		}
		return r
	}, text)
	if cleaned == "" {
		return 0
	}

	count, err := strconv.Atoi(cleaned)
	if err != nil || count < 0 {
		return 0
	}
	return count
}

// CleanText trims text and collapses internal runs of whitespace
func CleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
