package parser

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Earnings revision scores of the finanzen.net analyst stance
const (
	EarningsRevisionPositive = 6.0
	EarningsRevisionNegative = -6.0
)

// ParseEarningsRevision reads the analyst stance from a finanzen.net page.
// A negative stance wins over a positive one; no stance scores 0.
func ParseEarningsRevision(html string) (float64, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return 0, fmt.Errorf("failed to parse html: %w", err)
	}

	var positive, negative bool
	doc.Find("td").Each(func(_ int, td *goquery.Selection) {
		text := strings.TrimSpace(td.Text())
		switch {
		case strings.HasPrefix(text, "Positive Analystenhaltung"):
			positive = true
		case strings.HasPrefix(text, "Negative Analystenhaltung"):
			negative = true
		}
	})

	switch {
	case negative:
		return EarningsRevisionNegative, nil
	case positive:
		return EarningsRevisionPositive, nil
	}
	return 0, nil
}
