package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stockanalyzer/internal/interfaces"
	"github.com/ternarybob/stockanalyzer/internal/models"
)

// QuarterlyCheckerJobName is the scheduler name of the quarterly figures checker
const QuarterlyCheckerJobName = "quarterly_checker"

// QuarterlyFiguresChecker rolls announced quarterly figure dates forward once they
// pass and warns about stocks whose figures look out of date
type QuarterlyFiguresChecker struct {
	storage  interfaces.FundamentalsStorage
	notifier interfaces.Notifier
	logger   arbor.ILogger
	now      func() time.Time
}

// NewQuarterlyFiguresChecker creates a new checker
func NewQuarterlyFiguresChecker(storage interfaces.FundamentalsStorage, notifier interfaces.Notifier, logger arbor.ILogger) *QuarterlyFiguresChecker {
	return &QuarterlyFiguresChecker{
		storage:  storage,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Run checks every stored stock once
func (c *QuarterlyFiguresChecker) Run(ctx context.Context) error {
	c.logger.Info().Msg("Checking quarterly figures")

	stocks, err := c.storage.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list stocks: %w", err)
	}

	now := c.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	oneWeekAgo := today.AddDate(0, 0, -7)
	threeMonthsAgo := today.AddDate(0, -3, 0)

	for _, stock := range stocks {
		if err := ctx.Err(); err != nil {
			return err
		}

		next := stock.NextQuarterlyFigures
		switch {
		case next != nil && next.Before(today):
			c.released(ctx, stock, *next)
		case next == nil && !stock.Date.IsZero() && stock.Date.Before(oneWeekAgo):
			if stock.LastQuarterlyFigures == nil || stock.LastQuarterlyFigures.Before(threeMonthsAgo) {
				c.outdated(ctx, stock)
			}
		}
	}
	return nil
}

func (c *QuarterlyFiguresChecker) released(ctx context.Context, stock *models.FundamentalMetrics, date time.Time) {
	stock.LastQuarterlyFigures = &date
	stock.NextQuarterlyFigures = nil
	if _, err := c.storage.Save(ctx, stock); err != nil {
		c.logger.Error().Err(err).Str("symbol", stock.Symbol).Msg("Failed to roll quarterly figures forward")
		return
	}

	c.logger.Info().Str("symbol", stock.Symbol).Str("date", date.Format(models.DateLayout)).Msg("New quarterly figures released")

	body := fmt.Sprintf("Für %s wurden am %s neue Quartalszahlen veröffentlicht!\n%s",
		displayName(stock), date.Format("02.01.2006"), urlList(stock))
	c.notify(ctx, stock, "Neue Quartalszahlen: "+stock.DisplayName(), body)
}

func (c *QuarterlyFiguresChecker) outdated(ctx context.Context, stock *models.FundamentalMetrics) {
	last := "unbekannt"
	if stock.LastQuarterlyFigures != nil {
		last = stock.LastQuarterlyFigures.Format("02.01.2006")
	}

	c.logger.Info().Str("symbol", stock.Symbol).Str("last", last).Msg("Quarterly figures are out of date")

	body := fmt.Sprintf("Für %s wurden die letzten Quartalszahlen vor mehr als 3 Monaten veröffentlicht (%s)\n%s",
		displayName(stock), last, urlList(stock))
	c.notify(ctx, stock, "Quartalszahlen Datum prüfen: "+stock.DisplayName(), body)
}

func (c *QuarterlyFiguresChecker) notify(ctx context.Context, stock *models.FundamentalMetrics, subject, body string) {
	if err := c.notifier.Notify(ctx, subject, body); err != nil {
		c.logger.Warn().Err(err).Str("symbol", stock.Symbol).Msg("Failed to send quarterly figures notification")
	}
}

func urlList(stock *models.FundamentalMetrics) string {
	lines := make([]string, 0, len(stock.URLs))
	for _, u := range stock.URLs {
		lines = append(lines, string(u.Type)+": "+u.URL)
	}
	return strings.Join(lines, "\n")
}
