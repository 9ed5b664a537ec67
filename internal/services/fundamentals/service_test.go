package fundamentals

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/stockanalyzer/internal/common"
	"github.com/ternarybob/stockanalyzer/internal/interfaces"
	"github.com/ternarybob/stockanalyzer/internal/models"
	"github.com/ternarybob/stockanalyzer/internal/services/parser"
)

const (
	fundamentalsURL = "https://www.onvista.de/aktien/fundamental/SAP-Aktie-DE0007164600"
	revisionURL     = "https://www.finanzen.net/analysen/sap"
	dibaURL         = "https://wertpapiere.ing.de/sap"
	searchURL       = "https://www.onvista.de/assetSearch.json?searchValue="
)

func newTestService(storage *fakeStorage, fetcher *fakeFetcher, quotes *fakeQuotes) *Service {
	logger := arbor.NewLogger()
	p := parser.NewFundamentalsParser(quotes, logger)
	p.SetClock(func() time.Time { return refreshNow })
	return NewService(storage, fetcher, quotes, p, common.OnvistaConfig{AssetSearchURL: searchURL}, logger)
}

func storedSAP() *models.FundamentalMetrics {
	fd := models.NewFundamentalMetrics("SAP.DE")
	fd.ID = "fd_sap"
	fd.Name = "SAP"
	fd.AutomaticRating = true
	fd.EarningsRevision = -6
	fd.URLs = []models.FundamentalDataURL{
		{Type: models.URLTypeOnvistaFundamentalData, URL: fundamentalsURL},
		{Type: models.URLTypeEarningsRevision, URL: revisionURL},
		{Type: models.URLTypeDibaAnalystEstimation, URL: dibaURL},
	}
	return fd
}

func TestRefresh(t *testing.T) {
	storage := newFakeStorage(storedSAP())
	fetcher := &fakeFetcher{pages: map[string]string{
		fundamentalsURL: onvistaPage,
		revisionURL:     revisionPage,
		dibaURL:         dibaPage,
	}}
	quotes := &fakeQuotes{}

	fd, err := newTestService(storage, fetcher, quotes).Refresh(context.Background(), "sap.de")
	require.NoError(t, err)

	assert.Equal(t, "fd_sap", fd.ID)
	assert.Equal(t, "SAP", fd.Name)
	assert.True(t, fd.AutomaticRating)
	assert.Equal(t, 21.3, fd.ROE)
	assert.Equal(t, 12.5, fd.EBIT)
	assert.Equal(t, 28.4, fd.EquityRatio)
	assert.Equal(t, 50.0, fd.Ask)
	assert.Equal(t, 6.0, fd.EarningsRevision)
	assert.InDelta(t, 1.7, fd.AnalystEstimation, 1e-9)
	assert.Equal(t, 10, fd.AnalystEstimationCount)
	assert.InDelta(t, 20, fd.ProfitGrowth, 1e-9)
	assert.Equal(t, []float64{-1, -1, -1}, fd.Reversal3Month)
	assert.Equal(t, 1, quotes.reversalCalls)

	assert.Equal(t, 1, fd.Ratings.ROE)
	assert.Equal(t, -1, fd.Ratings.PerCurrent)
	assert.Equal(t, 0, fd.Ratings.AnalystEstimation)
	assert.Equal(t, 0, fd.Ratings.RateMomentum)
	assert.Equal(t, 1, fd.Ratings.Reversal3Month)
	assert.Equal(t, 7, fd.OverallRating)
	assert.Equal(t, fd.Ratings.Sum(), fd.OverallRating)

	stored, err := storage.LoadLatest(context.Background(), "SAP.DE")
	require.NoError(t, err)
	assert.Equal(t, 7, stored.OverallRating)
}

func TestRefresh_AuxiliaryFailureKeepsPreviousValues(t *testing.T) {
	existing := storedSAP()
	existing.AnalystEstimation = 2.2
	existing.AnalystEstimationCount = 8
	storage := newFakeStorage(existing)
	fetcher := &fakeFetcher{pages: map[string]string{fundamentalsURL: onvistaPage}}

	fd, err := newTestService(storage, fetcher, &fakeQuotes{}).Refresh(context.Background(), "SAP.DE")
	require.NoError(t, err)

	assert.Equal(t, -6.0, fd.EarningsRevision)
	assert.Equal(t, 2.2, fd.AnalystEstimation)
	assert.Equal(t, 8, fd.AnalystEstimationCount)
}

func TestRefresh_AuxiliarySourcesAreIndependent(t *testing.T) {
	tests := []struct {
		name          string
		pages         map[string]string
		wantRevision  float64
		wantEstimate  float64
		wantEstimates int
	}{
		{
			name:          "revision fails, estimation applied",
			pages:         map[string]string{fundamentalsURL: onvistaPage, dibaURL: dibaPage},
			wantRevision:  -6,
			wantEstimate:  1.7,
			wantEstimates: 10,
		},
		{
			name:          "estimation fails, revision applied",
			pages:         map[string]string{fundamentalsURL: onvistaPage, revisionURL: revisionPage},
			wantRevision:  6,
			wantEstimate:  2.2,
			wantEstimates: 8,
		},
		{
			name:          "both fail",
			pages:         map[string]string{fundamentalsURL: onvistaPage},
			wantRevision:  -6,
			wantEstimate:  2.2,
			wantEstimates: 8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			existing := storedSAP()
			existing.AnalystEstimation = 2.2
			existing.AnalystEstimationCount = 8
			fetcher := &fakeFetcher{pages: tt.pages}

			fd, err := newTestService(newFakeStorage(existing), fetcher, &fakeQuotes{}).Refresh(context.Background(), "SAP.DE")
			require.NoError(t, err)

			assert.Equal(t, tt.wantRevision, fd.EarningsRevision)
			assert.InDelta(t, tt.wantEstimate, fd.AnalystEstimation, 1e-9)
			assert.Equal(t, tt.wantEstimates, fd.AnalystEstimationCount)
			assert.Contains(t, fetcher.calls, revisionURL)
			assert.Contains(t, fetcher.calls, dibaURL)
		})
	}
}

func TestRefresh_NewSymbolUsesAssetSearch(t *testing.T) {
	storage := newFakeStorage()
	fetcher := &fakeFetcher{pages: map[string]string{
		searchURL + "SAP": assetSearchBody,
		fundamentalsURL:   onvistaPage,
	}}

	fd, err := newTestService(storage, fetcher, &fakeQuotes{}).Refresh(context.Background(), "SAP.DE")
	require.NoError(t, err)

	assert.Equal(t, "SAP.DE", fd.Symbol)
	assert.Equal(t, models.StockTypeLargeCap, fd.StockType)
	link, ok := fd.URL(models.URLTypeOnvistaFundamentalData)
	require.True(t, ok)
	assert.Equal(t, fundamentalsURL, link)
	assert.Equal(t, []string{searchURL + "SAP", fundamentalsURL}, fetcher.calls)
}

func TestRefresh_NoFundamentalURL(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{searchURL + "SAP": `{"onvista":{"results":{"asset":[]}}}`}}
	_, err := newTestService(newFakeStorage(), fetcher, &fakeQuotes{}).Refresh(context.Background(), "SAP.DE")
	assert.ErrorIs(t, err, ErrNoFundamentalURL)
}

func TestRefresh_ParseFailureSavesNothing(t *testing.T) {
	storage := newFakeStorage(storedSAP())
	fetcher := &fakeFetcher{pages: map[string]string{fundamentalsURL: "<html><body>maintenance</body></html>"}}

	_, err := newTestService(storage, fetcher, &fakeQuotes{}).Refresh(context.Background(), "SAP.DE")
	assert.ErrorIs(t, err, parser.ErrFiscalYearEnd)
	assert.Equal(t, 0, storage.saves)
}

func TestRefresh_MidCapSkipsReversal(t *testing.T) {
	existing := storedSAP()
	existing.StockType = models.StockTypeMidCap
	storage := newFakeStorage(existing)
	fetcher := &fakeFetcher{pages: map[string]string{fundamentalsURL: onvistaPage}}
	quotes := &fakeQuotes{}

	fd, err := newTestService(storage, fetcher, quotes).Refresh(context.Background(), "SAP.DE")
	require.NoError(t, err)
	assert.Equal(t, 0, quotes.reversalCalls)
	assert.Equal(t, []float64{0, 0, 0}, fd.Reversal3Month)
}

func TestEnableAutomaticRatings(t *testing.T) {
	a := models.NewFundamentalMetrics("SAP.DE")
	b := models.NewFundamentalMetrics("BAS.DE")
	b.AutomaticRating = true
	storage := newFakeStorage(a, b)
	svc := newTestService(storage, &fakeFetcher{}, &fakeQuotes{})
	ctx := context.Background()

	changed, err := svc.EnableAllAutomaticRatings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)
	assert.True(t, storage.records["SAP.DE"].AutomaticRating)

	_, err = svc.EnableAutomaticRating(ctx, "ALV.DE")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	storage.records["SAP.DE"].AutomaticRating = false
	fd, err := svc.EnableAutomaticRating(ctx, "sap.de")
	require.NoError(t, err)
	assert.True(t, fd.AutomaticRating)
}
