package badger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/stockanalyzer/internal/common"
	"github.com/ternarybob/stockanalyzer/internal/interfaces"
	"github.com/ternarybob/stockanalyzer/internal/models"
)

func newTestStorage(t *testing.T) interfaces.FundamentalsStorage {
	t.Helper()
	logger := arbor.NewLogger()
	db, err := NewBadgerDB(logger, &common.BadgerConfig{Path: filepath.Join(t.TempDir(), "db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewFundamentalsStorage(db, logger)
}

func snapshot(symbol string, date time.Time, rating int) *models.FundamentalMetrics {
	fd := models.NewFundamentalMetrics(symbol)
	fd.Date = date
	fd.OverallRating = rating
	fd.EpsHistory["2024-01-02"] = models.EarningsPerShare{EpsCurrentYear: 1.5, EpsNextYear: 2}
	return fd
}

func TestFundamentalsStorage_SaveAndLoadLatest(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	older, err := s.Save(ctx, snapshot("sap.de", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), 3))
	require.NoError(t, err)
	assert.NotEmpty(t, older.ID)
	assert.Equal(t, "SAP.DE", older.Symbol)
	assert.False(t, older.CreatedAt.IsZero())

	_, err = s.Save(ctx, snapshot("SAP.DE", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), 7))
	require.NoError(t, err)

	latest, err := s.LoadLatest(ctx, "SAP.DE")
	require.NoError(t, err)
	assert.Equal(t, 7, latest.OverallRating)
	assert.Equal(t, 2.0, latest.EpsHistory["2024-01-02"].EpsNextYear)

	_, err = s.LoadLatest(ctx, "BAS.DE")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestFundamentalsStorage_SaveExistingKeepsCreatedAt(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	saved, err := s.Save(ctx, snapshot("SAP.DE", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), 3))
	require.NoError(t, err)

	update := *saved
	update.CreatedAt = time.Time{}
	update.OverallRating = 5
	updated, err := s.Save(ctx, &update)
	require.NoError(t, err)

	assert.Equal(t, saved.ID, updated.ID)
	assert.True(t, saved.CreatedAt.Equal(updated.CreatedAt))

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 5, list[0].OverallRating)
}

func TestFundamentalsStorage_SaveValidates(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(fd *models.FundamentalMetrics)
	}{
		{"missing symbol", func(fd *models.FundamentalMetrics) { fd.Symbol = "" }},
		{"unknown stock type", func(fd *models.FundamentalMetrics) { fd.StockType = "GIANT_CAP" }},
		{"bad url", func(fd *models.FundamentalMetrics) {
			fd.URLs = []models.FundamentalDataURL{{Type: models.URLTypeEarningsRevision, URL: "not a url"}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fd := snapshot("SAP.DE", time.Now(), 0)
			tt.mutate(fd)
			_, err := s.Save(ctx, fd)
			assert.Error(t, err)
		})
	}
}

func TestFundamentalsStorage_ListAndDelete(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	for _, fd := range []*models.FundamentalMetrics{
		snapshot("SAP.DE", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), 1),
		snapshot("SAP.DE", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), 2),
		snapshot("BAS.DE", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), 4),
	} {
		_, err := s.Save(ctx, fd)
		require.NoError(t, err)
	}

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "BAS.DE", list[0].Symbol)
	assert.Equal(t, "SAP.DE", list[1].Symbol)
	assert.Equal(t, 2, list[1].OverallRating)

	require.NoError(t, s.Delete(ctx, "sap.de"))
	_, err = s.LoadLatest(ctx, "SAP.DE")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	assert.ErrorIs(t, s.Delete(ctx, "SAP.DE"), interfaces.ErrNotFound)

	list, err = s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
