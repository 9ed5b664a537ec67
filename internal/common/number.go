package common

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseGermanNumber parses a number in German notation with grouped thousands
// ("12.345,67")
func ParseGermanNumber(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("not a German number: %q", raw)
	}
	return d.InexactFloat64(), nil
}
