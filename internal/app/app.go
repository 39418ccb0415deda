// Package app wires configuration, storage, clients, and services into one
// shared core used by cmd/finsight-server.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/finsightapp/finsight/internal/clients/advisor"
	"github.com/finsightapp/finsight/internal/clients/finnhub"
	"github.com/finsightapp/finsight/internal/clients/twelvedata"
	"github.com/finsightapp/finsight/internal/common"
	"github.com/finsightapp/finsight/internal/interfaces"
	"github.com/finsightapp/finsight/internal/models"
	"github.com/finsightapp/finsight/internal/quotecache"
	"github.com/finsightapp/finsight/internal/refresh"
	advisorsvc "github.com/finsightapp/finsight/internal/services/advisor"
	"github.com/finsightapp/finsight/internal/services/finsight"
	portfoliosvc "github.com/finsightapp/finsight/internal/services/portfolio"
	quotesvc "github.com/finsightapp/finsight/internal/services/quote"
	"github.com/finsightapp/finsight/internal/storage/surrealdb"
)

// App holds all initialized services and clients.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	Storage          interfaces.StorageManager
	Cache            *quotecache.Cache
	QuoteService     interfaces.QuoteService
	PortfolioService interfaces.PortfolioService
	FinsightService  interfaces.FinsightService
	AdvisorService   interfaces.AdvisorService
	Refresher        *refresh.Refresher
	StartupTime      time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes storage, clients, and services from configuration.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	binDir := getBinaryDir()

	if configPath == "" {
		configPath = os.Getenv("FINSIGHT_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "finsight.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/finsight.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	storageManager, err := surrealdb.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	ctx := context.Background()

	// Resolve API keys (env > system KV store > config)
	users := storageManager.UserStore()

	twelveDataKey, err := resolveAPIKey(ctx, users, "twelvedata_api_key", config.Clients.TwelveData.APIKey)
	if err != nil {
		logger.Warn().Msg("Twelve Data API key not configured - daily quotes will be unavailable")
	}

	finnhubKey, err := resolveAPIKey(ctx, users, "finnhub_api_key", config.Clients.Finnhub.APIKey)
	if err != nil {
		logger.Warn().Msg("Finnhub API key not configured - realtime refresh will fall back to the daily source")
	}

	geminiKey, err := resolveAPIKey(ctx, users, "gemini_api_key", config.Clients.Gemini.APIKey)
	if err != nil {
		logger.Warn().Msg("Gemini API key not configured - advisor recommendations will be unavailable")
	}

	// Quote sources
	daily := twelvedata.NewClient(twelveDataKey,
		twelvedata.WithBaseURL(config.Clients.TwelveData.BaseURL),
		twelvedata.WithLogger(logger),
		twelvedata.WithRateLimit(config.Clients.TwelveData.RateLimit),
		twelvedata.WithTimeout(config.Clients.TwelveData.GetTimeout()),
	)

	var realtime interfaces.QuoteSource
	if finnhubKey != "" {
		realtime = finnhub.NewClient(finnhubKey,
			finnhub.WithBaseURL(config.Clients.Finnhub.BaseURL),
			finnhub.WithLogger(logger),
			finnhub.WithRateLimit(config.Clients.Finnhub.RateLimit),
			finnhub.WithTimeout(config.Clients.Finnhub.GetTimeout()),
		)
	}

	var advisorClient interfaces.AdvisorClient
	if geminiKey != "" {
		advisorClient, err = advisor.NewClient(ctx, geminiKey,
			advisor.WithLogger(logger),
			advisor.WithModel(config.Clients.Gemini.Model),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Advisor client initialization failed")
			advisorClient = nil
		}
	}
	if advisorClient == nil {
		advisorClient = unavailableAdvisor{}
	}

	// Shared cache and services
	cache := quotecache.New(logger)
	quoteService := quotesvc.NewService(cache, daily, realtime, logger)
	quoteService.SetHydrateWindow(config.Refresh.GetHydrateWindow())
	portfolioService := portfoliosvc.NewService(storageManager, quoteService, logger)
	finsightService := finsight.NewService(storageManager, quoteService, logger)
	advisorService := advisorsvc.NewService(storageManager, advisorClient, logger)

	refresher := refresh.NewRefresher(
		quoteService,
		portfolioService,
		logger,
		config.Refresh.GetRealtimeInterval(),
		config.Refresh.GetDailyInterval(),
	)

	logger.Info().
		Str("environment", config.Environment).
		Bool("realtime_source", realtime != nil).
		Msg("Application initialized")

	return &App{
		Config:           config,
		Logger:           logger,
		Storage:          storageManager,
		Cache:            cache,
		QuoteService:     quoteService,
		PortfolioService: portfolioService,
		FinsightService:  finsightService,
		AdvisorService:   advisorService,
		Refresher:        refresher,
		StartupTime:      time.Now(),
	}, nil
}

// StartRefresher begins the background refresh loop.
func (a *App) StartRefresher(ctx context.Context) {
	a.Refresher.Start(ctx)
}

// Close stops background work and releases resources.
func (a *App) Close() error {
	if a.Refresher != nil {
		a.Refresher.Stop()
	}
	if a.Storage != nil {
		return a.Storage.Close()
	}
	return nil
}

// resolveAPIKey resolves a client API key through the three tiers: environment
// variables first, then the system KV store (keys provisioned at runtime via
// the store survive restarts without touching disk), then the config file.
func resolveAPIKey(ctx context.Context, users interfaces.UserStore, name, fallback string) (string, error) {
	if key, err := common.ResolveAPIKey(name, ""); err == nil {
		return key, nil
	}

	if value, err := users.GetSystemKV(ctx, name); err == nil && value != "" {
		return value, nil
	}

	if fallback != "" {
		return fallback, nil
	}

	return "", fmt.Errorf("API key %q not found in environment, store, or config", name)
}

// unavailableAdvisor stands in when no Gemini key is configured; every call
// reports the upstream as unavailable.
type unavailableAdvisor struct{}

func (unavailableAdvisor) GenerateRecommendations(context.Context, *models.RiskProfile) ([]models.Recommendation, error) {
	return nil, fmt.Errorf("%w: advisor not configured", models.ErrUpstreamUnavailable)
}
