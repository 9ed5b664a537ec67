package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/stockanalyzer/internal/common"
	"github.com/ternarybob/stockanalyzer/internal/eodhd"
	"github.com/ternarybob/stockanalyzer/internal/handlers"
	"github.com/ternarybob/stockanalyzer/internal/httpclient"
	"github.com/ternarybob/stockanalyzer/internal/interfaces"
	"github.com/ternarybob/stockanalyzer/internal/quandl"
	"github.com/ternarybob/stockanalyzer/internal/services/fetcher"
	"github.com/ternarybob/stockanalyzer/internal/services/fundamentals"
	"github.com/ternarybob/stockanalyzer/internal/services/mailer"
	"github.com/ternarybob/stockanalyzer/internal/services/parser"
	"github.com/ternarybob/stockanalyzer/internal/services/quotes"
	"github.com/ternarybob/stockanalyzer/internal/services/scheduler"
	"github.com/ternarybob/stockanalyzer/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	// Storage
	DB      *badger.BadgerDB
	Storage interfaces.FundamentalsStorage

	// Core services
	Fetcher      *fetcher.Service
	Quotes       *quotes.Service
	Parser       *parser.FundamentalsParser
	Fundamentals *fundamentals.Service
	Mailer       *mailer.Service

	// Jobs
	Scheduler        *scheduler.Service
	RatingBot        *scheduler.RatingBot
	QuarterlyChecker *scheduler.QuarterlyFiguresChecker

	// HTTP handlers
	SystemHandler       *handlers.SystemHandler
	FundamentalsHandler *handlers.FundamentalsHandler
	ExchangeRateHandler *handlers.ExchangeRateHandler
	SchedulerHandler    *handlers.SchedulerHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := app.initServices(); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if err := app.initJobs(); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize jobs: %w", err)
	}

	app.initHandlers()

	logger.Info().
		Str("quotes_provider", cfg.Quotes.Provider).
		Str("badger_path", cfg.Storage.Badger.Path).
		Bool("mail_configured", app.Mailer.IsConfigured()).
		Int("jobs", len(app.Scheduler.GetAllJobStatuses())).
		Msg("Application initialization complete")

	return app, nil
}

// initDatabase opens the badger store and the fundamentals storage on top of it
func (a *App) initDatabase() error {
	db, err := badger.NewBadgerDB(a.Logger, &a.Config.Storage.Badger)
	if err != nil {
		return err
	}
	a.DB = db
	a.Storage = badger.NewFundamentalsStorage(db, a.Logger)
	return nil
}

// initServices wires the fetch, quote, parse and rating pipeline
func (a *App) initServices() error {
	a.Fetcher = fetcher.NewService(a.Config.Fetcher, a.Logger)

	source, err := a.newQuoteSource()
	if err != nil {
		return err
	}
	backup := quotes.NewIndexBackup(httpclient.NewBrowserClient(a.Config.Fetcher.UserAgent, a.Config.Fetcher.Timeout))
	a.Quotes = quotes.NewService(source, backup, a.Logger)
	a.Logger.Debug().Str("source", source.Name()).Msg("Quote service initialized")

	a.Parser = parser.NewFundamentalsParser(a.Quotes, a.Logger)
	a.Fundamentals = fundamentals.NewService(a.Storage, a.Fetcher, a.Quotes, a.Parser, a.Config.Onvista, a.Logger)
	a.Mailer = mailer.NewService(a.Config.Mail, a.Logger)

	if !a.Mailer.IsConfigured() {
		a.Logger.Warn().Msg("Mail not configured, notifications are logged only")
	}
	return nil
}

// newQuoteSource builds the configured historical quote source
func (a *App) newQuoteSource() (quotes.Source, error) {
	cfg := a.Config.Quotes
	timeout := a.Config.Fetcher.Timeout

	switch cfg.Provider {
	case "eodhd":
		if cfg.EODHD.Token == "" {
			a.Logger.Warn().Msg("EODHD token not set, quote requests will fail")
		}
		client := eodhd.NewClient(cfg.EODHD.Token,
			eodhd.WithBaseURL(cfg.EODHD.BaseURL),
			eodhd.WithHTTPClient(httpclient.NewDefaultHTTPClient(timeout)),
			eodhd.WithLogger(a.Logger),
			eodhd.WithRateLimit(cfg.EODHD.RateLimit),
		)
		return quotes.NewEODHDSource(client), nil
	case "quandl":
		if cfg.Quandl.Token == "" {
			a.Logger.Warn().Msg("Quandl token not set, quote requests will fail")
		}
		client := quandl.NewClient(cfg.Quandl.Token,
			quandl.WithBaseURL(cfg.Quandl.BaseURL),
			quandl.WithHTTPClient(httpclient.NewDefaultHTTPClient(timeout)),
			quandl.WithLogger(a.Logger),
			quandl.WithRateLimit(cfg.Quandl.RateLimit),
		)
		return quotes.NewQuandlSource(client), nil
	default:
		return nil, fmt.Errorf("unknown quotes provider %q", cfg.Provider)
	}
}

// initJobs registers the rating bot and the quarterly figures checker, then starts the scheduler
func (a *App) initJobs() error {
	a.Scheduler = scheduler.NewService(a.Logger)

	a.RatingBot = scheduler.NewRatingBot(a.Storage, a.Fundamentals, a.Mailer, a.Config.RatingBot.MaxPerTick, a.Logger)
	if a.Config.RatingBot.Enabled {
		if err := a.Scheduler.RegisterJob(
			scheduler.RatingBotJobName,
			a.Config.RatingBot.Schedule,
			"Refreshes and rates stocks with new quarterly figures",
			func() error { return a.RatingBot.Run(context.Background()) },
		); err != nil {
			return err
		}
	}

	a.QuarterlyChecker = scheduler.NewQuarterlyFiguresChecker(a.Storage, a.Mailer, a.Logger)
	if a.Config.QuarterlyChecker.Enabled {
		if err := a.Scheduler.RegisterJob(
			scheduler.QuarterlyCheckerJobName,
			a.Config.QuarterlyChecker.Schedule,
			"Rolls quarterly figure dates forward and reports stale ones",
			func() error { return a.QuarterlyChecker.Run(context.Background()) },
		); err != nil {
			return err
		}
	}

	return a.Scheduler.Start()
}

// initHandlers initializes all HTTP handlers
func (a *App) initHandlers() {
	a.SystemHandler = handlers.NewSystemHandler(a.Scheduler, a.Logger)
	a.FundamentalsHandler = handlers.NewFundamentalsHandler(a.Fundamentals, a.Logger)
	a.ExchangeRateHandler = handlers.NewExchangeRateHandler(a.Quotes, a.Logger)
	a.SchedulerHandler = handlers.NewSchedulerHandler(a.Scheduler, a.Logger)
}

// Close closes all application resources
func (a *App) Close() error {
	if a.Scheduler != nil {
		if err := a.Scheduler.Stop(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to stop scheduler")
		} else {
			a.Logger.Debug().Msg("Scheduler stopped")
		}
	}

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
		a.Logger.Debug().Msg("Database closed")
	}

	return nil
}
