package app

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/riskibarqy/esports-stats/internal/config"
	"github.com/riskibarqy/esports-stats/internal/domain/entity"
	"github.com/riskibarqy/esports-stats/internal/infrastructure/fetch"
	"github.com/riskibarqy/esports-stats/internal/interfaces/httpapi"
	"github.com/riskibarqy/esports-stats/internal/observability"
	"github.com/riskibarqy/esports-stats/internal/platform/logging"
	"github.com/riskibarqy/esports-stats/internal/platform/resilience"
	"github.com/riskibarqy/esports-stats/internal/scrape/scraper"
	"github.com/riskibarqy/esports-stats/internal/scrape/upsert"
	"github.com/riskibarqy/esports-stats/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Services holds the wired use cases shared by the API and the scraper CLI.
type Services struct {
	Store   entity.Store
	Scrape  *usecase.ScrapeService
	Stats   *usecase.StatsService
	Metrics *observability.Metrics

	closeStore func() error
}

// Close releases the store connection.
func (s *Services) Close() error {
	if s == nil || s.closeStore == nil {
		return nil
	}
	return s.closeStore()
}

// NewServices opens the configured store and builds the scrape pipeline on top of it.
func NewServices(cfg config.Config, logger *logging.Logger) (*Services, error) {
	if logger == nil {
		logger = logging.Default()
	}

	store, closeStore, err := openStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	metrics := observability.NewMetrics()
	fetcher := fetch.New(fetch.Config{
		HTTPClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		UserAgent:  cfg.ScraperUserAgent,
		Timeout:    cfg.ScraperTimeout,
		Delay:      cfg.ScraperRequestDelay,
		BaseDir:    cfg.ScraperBaseDir,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.FetchCircuitEnabled,
			FailureThreshold: cfg.FetchCircuitFailureCount,
			OpenTimeout:      cfg.FetchCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.FetchCircuitHalfOpenMaxReq,
		},
		Logger:   logger,
		Recorder: metrics,
	})

	registry := scraper.NewRegistry(
		scraper.NewChampions(fetcher, logger),
		scraper.NewTeams(fetcher, logger),
		scraper.NewPatches(fetcher, logger),
		scraper.NewTournaments(fetcher, tournamentDir(cfg), cfg.ScraperParseWorkers, logger),
		scraper.NewMatches(fetcher, store, cfg.ScraperMatchListBaseURL, logger),
	)

	scrapeSvc := usecase.NewScrapeService(
		registry,
		upsert.New(store, logger),
		nil,
		metrics,
		usecase.ScrapeServiceConfig{StoreDriver: cfg.StoreDriver, RequestDelay: cfg.ScraperRequestDelay},
		logger,
	)
	statsSvc := usecase.NewStatsService(store, logger)

	return &Services{
		Store:      store,
		Scrape:     scrapeSvc,
		Stats:      statsSvc,
		Metrics:    metrics,
		closeStore: closeStore,
	}, nil
}

// NewHTTPServer builds the API server. The returned Services must be closed
// after the server shuts down.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, *Services, error) {
	if cfg.HTTPAddr == "" {
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	services, err := NewServices(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	var metricsHandler http.Handler
	if cfg.MetricsEnabled {
		metricsHandler = services.Metrics.Handler()
	}

	handler := httpapi.NewHandler(services.Scrape, services.Stats, logger)
	router := httpapi.NewRouter(
		handler,
		logger,
		cfg.CORSAllowedOrigins,
		cfg.ScrapeAPIToken,
		httpapi.NewScrapeLimiter(cfg.ScrapeRateLimitPerMinute),
		metricsHandler,
	)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return server, services, nil
}

func tournamentDir(cfg config.Config) string {
	if cfg.ScraperTournamentDir == "" || filepath.IsAbs(cfg.ScraperTournamentDir) {
		return cfg.ScraperTournamentDir
	}
	return filepath.Join(cfg.ScraperBaseDir, cfg.ScraperTournamentDir)
}
