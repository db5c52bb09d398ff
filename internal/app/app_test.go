package app

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/riskibarqy/esports-stats/internal/config"
	"github.com/riskibarqy/esports-stats/internal/platform/logging"
	"github.com/riskibarqy/esports-stats/internal/scrape/scraper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() config.Config {
	return config.Config{
		HTTPAddr:            ":0",
		ReadTimeout:         time.Second,
		WriteTimeout:        time.Second,
		StoreDriver:         config.StoreMemory,
		CORSAllowedOrigins:  []string{"*"},
		CacheEnabled:        true,
		CacheTTL:            time.Minute,
		ScraperRequestDelay: 0,
		ScraperTimeout:      time.Second,
		ScraperBaseDir:      "/srv/scrape",
		ScraperParseWorkers: 2,
		MetricsEnabled:      true,
	}
}

func TestNewServices_RegistersEveryScraper(t *testing.T) {
	services, err := NewServices(memoryConfig(), logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = services.Close() })

	status := services.Scrape.Status(t.Context())
	assert.Equal(t, scraper.Kinds(), status.Scrapers)
	assert.Equal(t, config.StoreMemory, status.StoreDriver)
}

func TestNewServices_UnknownStoreDriver(t *testing.T) {
	cfg := memoryConfig()
	cfg.StoreDriver = "sqlite"

	_, err := NewServices(cfg, logging.NewNop())
	require.Error(t, err)
}

func TestNewHTTPServer_ServesHealthAndMetrics(t *testing.T) {
	server, services, err := NewHTTPServer(memoryConfig(), logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = services.Close() })

	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "esports_stats_fetch_circuit_state")
}

func TestNewHTTPServer_RequiresAddr(t *testing.T) {
	cfg := memoryConfig()
	cfg.HTTPAddr = ""

	_, _, err := NewHTTPServer(cfg, logging.NewNop())
	require.Error(t, err)
}

func TestTournamentDir(t *testing.T) {
	cfg := memoryConfig()

	cfg.ScraperTournamentDir = "rawhtml/tournamentListsBySeason"
	assert.Equal(t, filepath.Join("/srv/scrape", "rawhtml/tournamentListsBySeason"), tournamentDir(cfg))

	cfg.ScraperTournamentDir = "/data/tournaments"
	assert.Equal(t, "/data/tournaments", tournamentDir(cfg))
}
