package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ErrFiscalYearEnd is returned when the fiscal year end is missing or malformed
var ErrFiscalYearEnd = errors.New("fiscal year end not resolvable")

// CalendarYearEnd is the fiscal year end of companies reporting per calendar year
const CalendarYearEnd = "31.12."

var fiscalYearEndPattern = regexp.MustCompile(`Geschäftsjahresende:\s*([.0-9]*)`)

// ParseFiscalYearEnd returns the "dd.mm." fiscal year end announced in a
// <span>Geschäftsjahresende: dd.mm.</span>. The last occurrence wins.
func ParseFiscalYearEnd(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse html: %w", err)
	}
	return fiscalYearEnd(doc)
}

func fiscalYearEnd(doc *goquery.Document) (string, error) {
	var fye string
	doc.Find("span").Each(func(_ int, s *goquery.Selection) {
		if m := fiscalYearEndPattern.FindStringSubmatch(strings.TrimSpace(s.Text())); m != nil {
			fye = strings.TrimSpace(m[1])
		}
	})
	if fye == "" {
		return "", ErrFiscalYearEnd
	}
	return fye, nil
}

// ResolveBusinessYears returns the labels [next, current, last, twoAgo, threeAgo].
//
// Calendar years use plain labels ("2025e"); other fiscal years use split labels
// ("24/25e") whose window moves forward once the fiscal year end of the current
// calendar year has passed. Only next and current carry the "e" estimate suffix.
func ResolveBusinessYears(fiscalYearEnd string, now time.Time) ([]string, error) {
	year := now.Year()

	if fiscalYearEnd == CalendarYearEnd {
		return []string{
			strconv.Itoa(year+1) + "e",
			strconv.Itoa(year) + "e",
			strconv.Itoa(year - 1),
			strconv.Itoa(year - 2),
			strconv.Itoa(year - 3),
		}, nil
	}

	day, month, err := parseDayMonth(fiscalYearEnd)
	if err != nil {
		return nil, err
	}

	end := time.Date(year, time.Month(month), day, 23, 59, 59, 0, now.Location())

	// first year of the "next" fiscal period
	start := year + 1
	if now.Before(end) {
		start = year
	}

	return []string{
		splitYear(start) + "e",
		splitYear(start-1) + "e",
		splitYear(start - 2),
		splitYear(start - 3),
		splitYear(start - 4),
	}, nil
}

// splitYear formats the fiscal period starting in year y as "YY/YY"
func splitYear(y int) string {
	return fmt.Sprintf("%02d/%02d", y%100, (y+1)%100)
}

func parseDayMonth(fye string) (int, int, error) {
	if len(fye) < 5 || fye[2] != '.' {
		return 0, 0, fmt.Errorf("%w: %q", ErrFiscalYearEnd, fye)
	}
	day, err := strconv.Atoi(fye[0:2])
	if err != nil || day < 1 || day > 31 {
		return 0, 0, fmt.Errorf("%w: bad day in %q", ErrFiscalYearEnd, fye)
	}
	month, err := strconv.Atoi(fye[3:5])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("%w: bad month in %q", ErrFiscalYearEnd, fye)
	}
	return day, month, nil
}
