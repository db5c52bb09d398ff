package httpapi

import (
	"net/http"

	"github.com/riskibarqy/esports-stats/internal/usecase"
	"golang.org/x/time/rate"
)

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, metricsHandler http.Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}
}

func registerScrapeRoutes(mux *http.ServeMux, handler *Handler, scrapeToken string, limiter *rate.Limiter) {
	mux.HandleFunc("GET /v1/scrape/status", handler.ScrapeStatus)
	mux.Handle("POST /v1/scrape/{kind}", RequireScrapeToken(scrapeToken, RateLimit(limiter, http.HandlerFunc(handler.RunScrape))))
}

func registerStatsRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/overview", handler.Overview)
	for _, resource := range usecase.ResourceNames() {
		mux.Handle("GET /v1/"+resource, handler.ListResource(resource))
	}
}
