package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// AnalystEstimation is an average analyst recommendation on the 1 (buy) to 3 (sell) scale
type AnalystEstimation struct {
	Value float64
	Count int // 0 when the source does not report the number of analysts
}

var (
	digitsPattern     = regexp.MustCompile(`^\d+$`)
	yahooValuePattern = regexp.MustCompile(`^\d,\d$`)
)

const yahooRecommendationLabel = "Durchschn. Empfehlung (diese Woche):"

// ParseDibaAnalystEstimation reads the buy/hold/sell counts of an ING-DiBa page.
// The estimation is only reported when all three counts are present.
func ParseDibaAnalystEstimation(html string) (AnalystEstimation, bool, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return AnalystEstimation{}, false, fmt.Errorf("failed to parse html: %w", err)
	}

	counts := make([]int, 0, 3)
	for _, col := range []string{"sh_analysis_col_1", "sh_analysis_col_2", "sh_analysis_col_3"} {
		if n, ok := analysisCount(doc.Find("div." + col).First()); ok {
			counts = append(counts, n)
		}
	}
	if len(counts) != 3 {
		return AnalystEstimation{}, false, nil
	}

	buy, hold, sell := counts[0], counts[1], counts[2]
	total := buy + hold + sell
	if total == 0 {
		return AnalystEstimation{}, false, nil
	}

	return AnalystEstimation{
		Value: float64(buy+2*hold+3*sell) / float64(total),
		Count: total,
	}, true, nil
}

// analysisCount returns the count rendered as bare text after the column caption
func analysisCount(col *goquery.Selection) (int, bool) {
	n, found := 0, false
	col.Contents().Each(func(_ int, node *goquery.Selection) {
		if goquery.NodeName(node) != "#text" {
			return
		}
		text := strings.TrimSpace(node.Text())
		if !digitsPattern.MatchString(text) {
			return
		}
		if v, err := strconv.Atoi(text); err == nil {
			n, found = v, true
		}
	})
	return n, found
}

// ParseYahooAnalystEstimation reads the weekly average recommendation of a Yahoo
// page (1 to 5) and maps it onto the 1 to 3 scale
func ParseYahooAnalystEstimation(html string) (AnalystEstimation, bool, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return AnalystEstimation{}, false, fmt.Errorf("failed to parse html: %w", err)
	}

	var est AnalystEstimation
	found := false
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 || !strings.Contains(cells.Eq(0).Text(), yahooRecommendationLabel) {
			return
		}
		raw := strings.TrimSpace(cells.Eq(1).Text())
		if !yahooValuePattern.MatchString(raw) {
			return
		}
		v, err := parseNumber(raw)
		if err != nil {
			return
		}
		est = AnalystEstimation{Value: ((v-1)/4)*2 + 1}
		found = true
	})

	return est, found, nil
}
