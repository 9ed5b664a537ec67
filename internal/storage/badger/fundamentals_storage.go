package badger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stockanalyzer/internal/common"
	"github.com/ternarybob/stockanalyzer/internal/interfaces"
	"github.com/ternarybob/stockanalyzer/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// FundamentalsStorage implements interfaces.FundamentalsStorage for Badger.
// Each Save of a record without ID adds a new snapshot; LoadLatest returns the
// snapshot with the most recent Date.
type FundamentalsStorage struct {
	db       *BadgerDB
	validate *validator.Validate
	logger   arbor.ILogger
}

// NewFundamentalsStorage creates a new FundamentalsStorage instance
func NewFundamentalsStorage(db *BadgerDB, logger arbor.ILogger) interfaces.FundamentalsStorage {
	return &FundamentalsStorage{
		db:       db,
		validate: validator.New(),
		logger:   logger,
	}
}

// LoadLatest returns the newest snapshot of symbol or interfaces.ErrNotFound
func (s *FundamentalsStorage) LoadLatest(ctx context.Context, symbol string) (*models.FundamentalMetrics, error) {
	var records []models.FundamentalMetrics
	query := badgerhold.Where("Symbol").Eq(common.NormalizeTicker(symbol)).Index("Symbol").
		SortBy("Date", "UpdatedAt").Reverse().Limit(1)
	if err := s.db.Store().Find(&records, query); err != nil {
		return nil, fmt.Errorf("failed to load fundamentals for %s: %w", symbol, err)
	}
	if len(records) == 0 {
		return nil, interfaces.ErrNotFound
	}
	return &records[0], nil
}

// Save validates fd and upserts it, assigning an ID to new records
func (s *FundamentalsStorage) Save(ctx context.Context, fd *models.FundamentalMetrics) (*models.FundamentalMetrics, error) {
	if fd == nil {
		return nil, errors.New("fundamentals record is nil")
	}

	record := *fd
	record.Symbol = common.NormalizeTicker(record.Symbol)
	if err := s.validate.Struct(&record); err != nil {
		return nil, fmt.Errorf("invalid fundamentals record: %w", err)
	}

	now := time.Now()
	if record.ID == "" {
		record.ID = common.NewFundamentalsID()
		record.CreatedAt = now
	} else if record.CreatedAt.IsZero() {
		var existing models.FundamentalMetrics
		if err := s.db.Store().Get(record.ID, &existing); err == nil {
			record.CreatedAt = existing.CreatedAt
		} else {
			record.CreatedAt = now
		}
	}
	record.UpdatedAt = now
	if record.EpsHistory == nil {
		record.EpsHistory = make(map[string]models.EarningsPerShare)
	}

	if err := s.db.Store().Upsert(record.ID, &record); err != nil {
		return nil, fmt.Errorf("failed to save fundamentals for %s: %w", record.Symbol, err)
	}

	s.logger.Debug().Str("id", record.ID).Str("symbol", record.Symbol).Msg("Fundamentals saved")
	return &record, nil
}

// List returns the newest snapshot of every stored symbol, ordered by symbol
func (s *FundamentalsStorage) List(ctx context.Context) ([]*models.FundamentalMetrics, error) {
	var records []models.FundamentalMetrics
	if err := s.db.Store().Find(&records, nil); err != nil {
		return nil, fmt.Errorf("failed to list fundamentals: %w", err)
	}

	latest := make(map[string]*models.FundamentalMetrics)
	for i := range records {
		r := &records[i]
		cur, ok := latest[r.Symbol]
		if !ok || r.Date.After(cur.Date) || (r.Date.Equal(cur.Date) && r.UpdatedAt.After(cur.UpdatedAt)) {
			latest[r.Symbol] = r
		}
	}

	out := make([]*models.FundamentalMetrics, 0, len(latest))
	for _, r := range latest {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

// Delete removes every snapshot of symbol
func (s *FundamentalsStorage) Delete(ctx context.Context, symbol string) error {
	query := badgerhold.Where("Symbol").Eq(common.NormalizeTicker(symbol)).Index("Symbol")

	count, err := s.db.Store().Count(&models.FundamentalMetrics{}, query)
	if err != nil {
		return fmt.Errorf("failed to count fundamentals for %s: %w", symbol, err)
	}
	if count == 0 {
		return interfaces.ErrNotFound
	}

	if err := s.db.Store().DeleteMatching(&models.FundamentalMetrics{}, query); err != nil {
		return fmt.Errorf("failed to delete fundamentals for %s: %w", symbol, err)
	}
	return nil
}
