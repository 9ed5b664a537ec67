// Package common provides shared utilities across the application.
package common

import (
	"strings"
)

// Ticker is a parsed stock symbol.
// Format: CODE.EXCHANGE (e.g., "SAP.DE", "AAPL.US"); a leading "^" marks an index ("^GDAXI").
type Ticker struct {
	// Code is the stock/security code without exchange suffix (e.g., "SAP")
	Code string
	// Exchange is the exchange suffix (e.g., "DE", "F", "US"); empty when absent
	Exchange string
	// IsIndex is true for "^"-prefixed index symbols; Code has the caret removed
	IsIndex bool
	// Raw is the original symbol string
	Raw string
}

// ParseTicker splits a symbol into code and exchange suffix.
//   - "SAP.DE"  -> Code="SAP", Exchange="DE"
//   - "AAPL"    -> Code="AAPL", Exchange=""
//   - "^GDAXI"  -> Code="GDAXI", IsIndex=true
//   - "BRK.B.US" -> Code="BRK", Exchange="B" (only the first delimiter counts)
func ParseTicker(symbol string) Ticker {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return Ticker{}
	}

	parts := strings.Split(symbol, ".")
	t := Ticker{
		Code: parts[0],
		Raw:  symbol,
	}
	if len(parts) > 1 {
		t.Exchange = parts[1]
	}

	if strings.HasPrefix(t.Code, "^") {
		t.IsIndex = true
		t.Code = strings.TrimPrefix(t.Code, "^")
	}

	return t
}

// String returns the symbol in CODE.EXCHANGE form.
func (t Ticker) String() string {
	code := t.Code
	if t.IsIndex {
		code = "^" + code
	}
	if t.Exchange == "" {
		return code
	}
	return code + "." + t.Exchange
}

// NormalizeTicker trims and upper-cases a symbol for storage lookups.
func NormalizeTicker(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
