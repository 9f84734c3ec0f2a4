package app

import (
	"context"
	"log/slog"
	"net/http"

	"SpendScout/internal/config"
	"SpendScout/internal/infrastructure/cache"
	"SpendScout/internal/infrastructure/llm"
	"SpendScout/internal/infrastructure/scraper"
	"SpendScout/internal/infrastructure/storage"
	"SpendScout/internal/logging"
	"SpendScout/internal/ports"
	"SpendScout/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	discounts *usecase.DiscountService
	accounts  *usecase.AccountService
}

// New builds a runnable application instance. Storage and the ranker are
// optional collaborators: without a DSN the account service stays nil, and
// without an API key the pipeline runs on fallback messages only.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	fetcher := scraper.NewHTTPFetcher(
		&http.Client{Timeout: cfg.Scraper.Timeout()},
		cfg.Scraper.UserAgent,
	)
	source := scraper.NewTrolleySource(fetcher, cfg.Scraper.BaseURL, nil, baseLogger.With("component", "source"))
	source.SetLimits(cfg.Scraper.ListingLimit, cfg.Scraper.SampleSize)

	var ranker ports.DealRanker
	if cfg.OpenAI.APIKey != "" {
		ranker = llm.NewOpenAIRanker(cfg.OpenAI, baseLogger.With("component", "ranker"))
	}

	discounts := usecase.NewDiscountService(usecase.DiscountServiceDeps{
		Source:   source,
		Ranker:   ranker,
		Cache:    cache.NewMemoryCache(),
		CacheTTL: cfg.Cache.Duration(),
		Logger:   baseLogger.With("component", "discounts"),
	})

	var accounts *usecase.AccountService
	if cfg.Database.DSN != "" {
		db, err := storage.Open(cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		repo := storage.NewPostgresRepository(db)
		accounts = usecase.NewAccountService(repo, baseLogger.With("component", "accounts"))
	}

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		discounts: discounts,
		accounts:  accounts,
	}, nil
}

// Discounts exposes the pipeline service to delivery layers.
func (a *Application) Discounts() *usecase.DiscountService {
	return a.discounts
}

// Accounts exposes the account service; nil when no database is configured.
func (a *Application) Accounts() *usecase.AccountService {
	return a.accounts
}

// Run performs a single pipeline execution against the default category set
// and logs the outcome.
func (a *Application) Run(ctx context.Context) error {
	if a.discounts == nil {
		return nil
	}

	queries := usecase.QueriesForLabels(nil)
	messages := a.discounts.GetTopDiscounts(ctx, queries, map[string]any{})

	a.logger.Info("pipeline finished", "messages", len(messages))
	for _, msg := range messages {
		a.logger.Info("deal", "text", msg.Text)
	}
	return nil
}
