package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stockanalyzer/internal/interfaces"
	"github.com/ternarybob/stockanalyzer/internal/models"
)

// RatingBotJobName is the scheduler name of the rating bot
const RatingBotJobName = "rating_bot"

// Refresher re-rates one stock
type Refresher interface {
	Refresh(ctx context.Context, symbol string) (*models.FundamentalMetrics, error)
}

// RatingBot re-rates stocks whose data is stale or predates their last
// quarterly figures, and mails rating changes that cross a notable bound
type RatingBot struct {
	storage    interfaces.FundamentalsStorage
	refresher  Refresher
	notifier   interfaces.Notifier
	maxPerTick int
	logger     arbor.ILogger
	now        func() time.Time
}

// NewRatingBot creates a rating bot refreshing at most maxPerTick stocks per run
func NewRatingBot(storage interfaces.FundamentalsStorage, refresher Refresher, notifier interfaces.Notifier, maxPerTick int, logger arbor.ILogger) *RatingBot {
	return &RatingBot{
		storage:    storage,
		refresher:  refresher,
		notifier:   notifier,
		maxPerTick: maxPerTick,
		logger:     logger,
		now:        time.Now,
	}
}

// Run performs one rating pass
func (b *RatingBot) Run(ctx context.Context) error {
	b.logger.Info().Msg("Looking for stocks to rate")

	stocks, err := b.storage.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list stocks: %w", err)
	}

	oneWeekAgo := b.now().AddDate(0, 0, -7)
	rated := 0

	for _, stock := range stocks {
		if rated >= b.maxPerTick {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !stock.AutomaticRating || !needsRating(stock, oneWeekAgo) {
			continue
		}

		rated++
		b.rate(ctx, stock)
	}

	b.logger.Info().Int("rated", rated).Int("stocks", len(stocks)).Msg("Rating pass finished")
	return nil
}

func (b *RatingBot) rate(ctx context.Context, stock *models.FundamentalMetrics) {
	oldRating := stock.OverallRating

	fd, err := b.refresher.Refresh(ctx, stock.Symbol)
	if err != nil {
		b.logger.Error().Err(err).Str("symbol", stock.Symbol).Msg("Refresh failed, disabling automatic rating")
		b.disable(ctx, stock)
		return
	}

	newRating := fd.OverallRating
	b.logger.Info().
		Str("symbol", stock.Symbol).
		Str("stock_type", string(stock.StockType)).
		Int("old_rating", oldRating).
		Int("new_rating", newRating).
		Msg("Stock rated")

	if !RatingChangeNotable(stock.StockType, oldRating, newRating) {
		return
	}

	subject := "Neues Rating: " + stock.DisplayName()
	body := fmt.Sprintf("Für %s gibt es ein neues Rating: %d (%d)", displayName(stock), newRating, oldRating)
	if err := b.notifier.Notify(ctx, subject, body); err != nil {
		b.logger.Warn().Err(err).Str("symbol", stock.Symbol).Msg("Failed to send rating notification")
	}
}

func (b *RatingBot) disable(ctx context.Context, stock *models.FundamentalMetrics) {
	stock.AutomaticRating = false
	if _, err := b.storage.Save(ctx, stock); err != nil {
		b.logger.Error().Err(err).Str("symbol", stock.Symbol).Msg("Failed to disable automatic rating")
	}

	subject := "Automatische Ratings deaktiviert: " + stock.DisplayName()
	body := fmt.Sprintf("Für %s wurden aufgrund eines Fehlers die automatischen Ratings deaktiviert", displayName(stock))
	if err := b.notifier.Notify(ctx, subject, body); err != nil {
		b.logger.Warn().Err(err).Str("symbol", stock.Symbol).Msg("Failed to send deactivation notification")
	}
}

// needsRating is true for data older than a week, or for newer data that predates
// the last quarterly figures. Stocks never rated are skipped.
func needsRating(stock *models.FundamentalMetrics, oneWeekAgo time.Time) bool {
	if stock.Date.IsZero() {
		return false
	}
	if stock.Date.Before(oneWeekAgo) {
		return true
	}
	return stock.LastQuarterlyFigures != nil && stock.LastQuarterlyFigures.After(stock.Date)
}

// RatingChangeNotable reports whether a rating change crosses the buy or sell bound
// of the stock type. Small and mid caps use 7 and 4, the rest 4 and 2.
func RatingChangeNotable(t models.StockType, oldRating, newRating int) bool {
	buy, sell := 4, 2
	if t.IsSmallOrMid() {
		buy, sell = 7, 4
	}
	return (oldRating < buy && newRating >= buy) || (oldRating > sell && newRating <= sell)
}

func displayName(stock *models.FundamentalMetrics) string {
	if stock.Name == "" {
		return stock.Symbol
	}
	return stock.Name
}
