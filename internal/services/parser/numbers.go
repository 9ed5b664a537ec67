package parser

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ternarybob/stockanalyzer/internal/common"
)

// normalizeNumber turns a German formatted cell ("12,5 %") into a parseable decimal string
func normalizeNumber(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimSuffix(s, "%")
	s = strings.TrimSpace(s)
	return strings.ReplaceAll(s, ",", ".")
}

// isNumber reports whether a table cell holds a number after stripping '%' and
// switching the decimal comma
func isNumber(raw string) bool {
	if strings.TrimSpace(raw) == "" {
		return false
	}
	_, err := decimal.NewFromString(normalizeNumber(raw))
	return err == nil
}

// isGroupedNumber reports whether a cell holds a German number with grouped
// thousands ("140.123,45")
func isGroupedNumber(raw string) bool {
	_, err := parseGroupedNumber(raw)
	return err == nil
}

// parseNumber parses a decimal-comma cell, optionally with a trailing '%'
func parseNumber(raw string) (float64, error) {
	d, err := decimal.NewFromString(normalizeNumber(raw))
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", raw)
	}
	return d.InexactFloat64(), nil
}

// parseNumberOrZero parses a decimal-comma cell, 0 for placeholders like "-" or "n.v."
func parseNumberOrZero(raw string) float64 {
	v, err := parseNumber(raw)
	if err != nil {
		return 0
	}
	return v
}

// parseGroupedNumber parses German grouped thousands ("12.345,67")
func parseGroupedNumber(raw string) (float64, error) {
	return common.ParseGermanNumber(raw)
}
