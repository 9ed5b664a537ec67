package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrLabelCountMismatch is returned when a row has a different number of values than
// its table has year headers. The source layout changed or the labels are stale.
var ErrLabelCountMismatch = errors.New("label count mismatch")

// numericClass marks value cells in the onvista fundamentals tables
const numericClass = "ZAHL"

// MetricTable maps a year label to the raw cell text of one metric row
type MetricTable map[string]string

// BuildMetricTable zips year labels with row values. The counts must match.
func BuildMetricTable(labels, values []string) (MetricTable, error) {
	if len(labels) != len(values) {
		return nil, fmt.Errorf("%w: %d labels, %d values", ErrLabelCountMismatch, len(labels), len(values))
	}
	table := make(MetricTable, len(labels))
	for i, label := range labels {
		table[label] = values[i]
	}
	return table, nil
}

// Resolve looks up label, then label+"e", then twoAgoLabel. Each candidate must hold
// a decimal-comma number to be accepted.
func (t MetricTable) Resolve(label, twoAgoLabel string) (string, bool) {
	return t.ResolveWith(label, twoAgoLabel, isNumber)
}

// ResolveWith is Resolve with the numeric check of the row, e.g. isGroupedNumber for
// values written with thousands separators.
func (t MetricTable) ResolveWith(label, twoAgoLabel string, numeric func(string) bool) (string, bool) {
	for _, key := range []string{label, label + "e", twoAgoLabel} {
		if v, ok := t[key]; ok && numeric(v) {
			return v, true
		}
	}
	return "", false
}

// ExtractYearHeaders returns the numeric header cells of the first table whose
// leading header cell starts with sectionLabel (e.g. "Rentabilität").
func ExtractYearHeaders(html, sectionLabel string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	return yearHeaders(doc, sectionLabel), nil
}

// ExtractRowValues returns the numeric cells of the first row whose label cell
// ends with rowLabel (e.g. "Eigenkapitalrendite"), trimmed, in document order.
func ExtractRowValues(html, rowLabel string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	return rowValues(doc, rowLabel), nil
}

func yearHeaders(doc *goquery.Document, sectionLabel string) []string {
	headers := []string{}
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		head := table.Find("thead tr").First()
		first := strings.TrimSpace(head.Find("th").First().Text())
		if !strings.HasPrefix(first, sectionLabel) {
			return true
		}
		head.Find("th." + numericClass).Each(func(_ int, th *goquery.Selection) {
			headers = append(headers, strings.TrimSpace(th.Text()))
		})
		return false
	})
	return headers
}

func rowValues(doc *goquery.Document, rowLabel string) []string {
	values := []string{}
	doc.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		label := row.Find("td").First()
		if label.HasClass(numericClass) || !strings.HasSuffix(strings.TrimSpace(label.Text()), rowLabel) {
			return true
		}
		row.Find("td." + numericClass).Each(func(_ int, td *goquery.Selection) {
			values = append(values, strings.TrimSpace(td.Text()))
		})
		return false
	})
	return values
}

// metricTable extracts one labelled row and aligns it with the given year headers
func metricTable(doc *goquery.Document, rowLabel string, years []string) (MetricTable, error) {
	table, err := BuildMetricTable(years, rowValues(doc, rowLabel))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", rowLabel, err)
	}
	return table, nil
}
