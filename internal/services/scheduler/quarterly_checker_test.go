package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/stockanalyzer/internal/models"
)

func newTestChecker(storage *fakeStorage, notifier *fakeNotifier) *QuarterlyFiguresChecker {
	c := NewQuarterlyFiguresChecker(storage, notifier, arbor.NewLogger())
	c.now = func() time.Time { return testNow }
	return c
}

func TestQuarterlyFiguresChecker_RollsPassedDateForward(t *testing.T) {
	fd := stock("SAP.DE", models.StockTypeLargeCap, 3, "2024-06-10")
	fd.LastQuarterlyFigures = datePtr("2024-01-25")
	fd.NextQuarterlyFigures = datePtr("2024-06-14")
	fd.URLs = []models.FundamentalDataURL{{Type: models.URLTypeOnvistaFundamentalData, URL: "https://www.onvista.de/aktien/fundamental/SAP"}}
	storage := newFakeStorage(fd)
	notifier := &fakeNotifier{}

	require.NoError(t, newTestChecker(storage, notifier).Run(context.Background()))

	saved := storage.records["SAP.DE"]
	require.NotNil(t, saved.LastQuarterlyFigures)
	assert.Equal(t, "2024-06-14", saved.LastQuarterlyFigures.Format(models.DateLayout))
	assert.Nil(t, saved.NextQuarterlyFigures)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "Neue Quartalszahlen: SAP (SAP.DE)", notifier.sent[0].subject)
	assert.Contains(t, notifier.sent[0].body, "14.06.2024")
	assert.Contains(t, notifier.sent[0].body, "https://www.onvista.de/aktien/fundamental/SAP")
}

func TestQuarterlyFiguresChecker_Cases(t *testing.T) {
	tests := []struct {
		name        string
		date        string
		last        string
		next        string
		wantSubject string
	}{
		{name: "announced today is not passed yet", date: "2024-06-01", last: "2024-01-25", next: "2024-06-15"},
		{name: "future date", date: "2024-06-01", last: "2024-01-25", next: "2024-07-20"},
		{name: "outdated last figures", date: "2024-06-01", last: "2024-02-01", wantSubject: "Quartalszahlen Datum prüfen: SAP (SAP.DE)"},
		{name: "missing last figures", date: "2024-06-01", wantSubject: "Quartalszahlen Datum prüfen: SAP (SAP.DE)"},
		{name: "recent last figures", date: "2024-06-01", last: "2024-04-20"},
		{name: "recently rated", date: "2024-06-12", last: "2024-02-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fd := stock("SAP.DE", models.StockTypeLargeCap, 3, tt.date)
			if tt.last != "" {
				fd.LastQuarterlyFigures = datePtr(tt.last)
			}
			if tt.next != "" {
				fd.NextQuarterlyFigures = datePtr(tt.next)
			}
			storage := newFakeStorage(fd)
			notifier := &fakeNotifier{}

			require.NoError(t, newTestChecker(storage, notifier).Run(context.Background()))

			if tt.wantSubject == "" {
				assert.Empty(t, notifier.sent)
				assert.Empty(t, storage.saved)
				return
			}
			require.Len(t, notifier.sent, 1)
			assert.Equal(t, tt.wantSubject, notifier.sent[0].subject)
		})
	}
}
