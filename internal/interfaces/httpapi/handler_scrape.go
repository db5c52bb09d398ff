package httpapi

import (
	"net/http"

	"github.com/riskibarqy/esports-stats/internal/usecase"
	"go.opentelemetry.io/otel/attribute"
)

type runScrapeRequest struct {
	SourceURL   string   `json:"source_url" validate:"omitempty,url,max=2048"`
	FilePath    string   `json:"file_path" validate:"omitempty,max=1024"`
	SaveToDB    bool     `json:"save_to_db"`
	Season      string   `json:"season" validate:"omitempty,max=100"`
	Seasons     []string `json:"seasons" validate:"omitempty,max=50,dive,required,max=100"`
	Tournaments []string `json:"tournaments" validate:"omitempty,max=200,dive,required,max=200"`
}

func (h *Handler) ScrapeStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ScrapeStatus")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, h.scrapeService.Status(ctx))
}

// RunScrape runs one scraper kind. Failed payloads still answer 200; the run
// status and per-payload errors carry the outcome.
func (h *Handler) RunScrape(w http.ResponseWriter, r *http.Request) {
	kind := r.PathValue("kind")
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunScrape", attribute.String("scrape.kind", kind))
	defer span.End()

	var req runScrapeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	run, err := h.scrapeService.Run(ctx, usecase.ScrapeCommand{
		Kind:        kind,
		SourceURL:   req.SourceURL,
		FilePath:    req.FilePath,
		Season:      req.Season,
		Seasons:     req.Seasons,
		Tournaments: req.Tournaments,
		Save:        req.SaveToDB,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "scrape run failed", "kind", kind, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, run)
}
