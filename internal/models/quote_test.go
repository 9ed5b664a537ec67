package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(s string) time.Time {
	t, _ := time.Parse(DateLayout, s)
	return t
}

func TestPriceSeriesOrdering(t *testing.T) {
	series := PriceSeries{
		{Symbol: "SAP.DE", Date: date("2024-03-05"), Close: 3},
		{Symbol: "SAP.DE", Date: date("2024-03-01"), Close: 1},
		{Symbol: "SAP.DE", Date: date("2024-03-04"), Close: 2},
	}

	latest, ok := series.Latest()
	assert.True(t, ok)
	assert.Equal(t, 3.0, latest.Close)

	earliest, ok := series.Earliest()
	assert.True(t, ok)
	assert.Equal(t, 1.0, earliest.Close)

	sorted := series.SortedAscending()
	assert.Equal(t, []float64{1, 2, 3}, []float64{sorted[0].Close, sorted[1].Close, sorted[2].Close})
	// original untouched
	assert.Equal(t, 3.0, series[0].Close)
}

func TestPriceSeriesEmpty(t *testing.T) {
	var series PriceSeries
	_, ok := series.Latest()
	assert.False(t, ok)
	_, ok = series.Earliest()
	assert.False(t, ok)
}

func TestStockTypeGroups(t *testing.T) {
	tests := []struct {
		stockType  StockType
		finance    bool
		smallOrMid bool
	}{
		{StockTypeLargeCap, false, false},
		{StockTypeMidCap, false, true},
		{StockTypeSmallCap, false, true},
		{StockTypeLargeFinance, true, false},
		{StockTypeMidFinance, true, true},
		{StockTypeSmallFinance, true, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.stockType), func(t *testing.T) {
			assert.Equal(t, tt.finance, tt.stockType.IsFinance())
			assert.Equal(t, tt.smallOrMid, tt.stockType.IsSmallOrMid())
		})
	}
}

func TestFundamentalMetricsAccessors(t *testing.T) {
	fd := NewFundamentalMetrics("SAP.DE")
	fd.BusinessYears = []string{"2025e", "2024e", "2023", "2022", "2021"}
	fd.URLs = []FundamentalDataURL{{Type: URLTypeEarningsRevision, URL: "https://example.com/rev"}}

	assert.Equal(t, "SAP", fd.BaseSymbol())
	assert.Equal(t, "SAP.DE", fd.DisplayName())
	fd.Name = "SAP SE"
	assert.Equal(t, "SAP SE (SAP.DE)", fd.DisplayName())
	assert.Equal(t, "2025e", fd.NextYear())
	assert.Equal(t, "2021", fd.ThreeYearsAgo())
	assert.Equal(t, "", fd.IndexSymbol())

	u, ok := fd.URL(URLTypeEarningsRevision)
	assert.True(t, ok)
	assert.Equal(t, "https://example.com/rev", u)
	_, ok = fd.URL(URLTypeOnvistaFundamentalData)
	assert.False(t, ok)
}

func TestFundamentalMetricsYearLabels(t *testing.T) {
	tests := []struct {
		name  string
		years []string
		want  []string
	}{
		{name: "full", years: []string{"2025e", "2024e", "2023", "2022", "2021"}, want: []string{"2025e", "2024e", "2023", "2022", "2021"}},
		{name: "short", years: []string{"2025e", "2024e", "2023"}, want: []string{"2025e", "2024e", "2023", "", ""}},
		{name: "empty", want: []string{"", "", "", "", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fd := NewFundamentalMetrics("SAP.DE")
			fd.BusinessYears = tt.years

			got := []string{fd.NextYear(), fd.CurrentYear(), fd.LastYear(), fd.TwoYearsAgo(), fd.ThreeYearsAgo()}
			assert.Equal(t, tt.want, got)
		})
	}
}
