package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/esports-stats/internal/domain/entity"
	"github.com/riskibarqy/esports-stats/internal/platform/id"
	"github.com/riskibarqy/esports-stats/internal/platform/logging"
	"github.com/riskibarqy/esports-stats/internal/scrape/scraper"
	"go.opentelemetry.io/otel/attribute"
)

// Run statuses. A run is partial when some payloads failed and others did not.
const (
	RunStatusSuccess = "success"
	RunStatusPartial = "partial"
	RunStatusError   = "error"
)

// Upserter persists candidate records; satisfied by *upsert.Upserter.
type Upserter interface {
	Upsert(ctx context.Context, records []entity.CandidateRecord) (entity.Result, error)
}

// ScrapeRecorder observes scrape runs; satisfied by *observability.Metrics.
type ScrapeRecorder interface {
	ObserveScrape(kind, status string, records int, elapsed time.Duration)
	ObserveUpsert(kind string, created, updated, skipped int)
}

type ScrapeCommand struct {
	Kind        string   `validate:"required"`
	SourceURL   string   `validate:"omitempty,max=2048"`
	FilePath    string   `validate:"omitempty,max=1024"`
	Season      string   `validate:"omitempty,max=100"`
	Seasons     []string `validate:"omitempty,dive,required,max=100"`
	Tournaments []string `validate:"omitempty,dive,required,max=200"`
	Save        bool
}

func (c ScrapeCommand) request() scraper.Request {
	return scraper.Request{
		SourceURL:   strings.TrimSpace(c.SourceURL),
		FilePath:    strings.TrimSpace(c.FilePath),
		Season:      strings.TrimSpace(c.Season),
		Seasons:     c.Seasons,
		Tournaments: c.Tournaments,
	}
}

type ScrapeCounts struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

type ScrapeRun struct {
	RunID     string            `json:"run_id"`
	Kind      scraper.Kind      `json:"kind"`
	Status    string            `json:"status"`
	Payloads  []scraper.Payload `json:"payloads"`
	Saved     bool              `json:"saved"`
	Counts    ScrapeCounts      `json:"counts"`
	Skipped   []entity.Skip     `json:"skipped"`
	Timestamp time.Time         `json:"timestamp"`
}

type ScrapeStatus struct {
	Status       string         `json:"status"`
	Scrapers     []scraper.Kind `json:"available_scrapers"`
	StoreDriver  string         `json:"store_driver"`
	RequestDelay string         `json:"request_delay"`
	Timestamp    time.Time      `json:"timestamp"`
}

type ScrapeServiceConfig struct {
	StoreDriver  string
	RequestDelay time.Duration
}

type ScrapeService struct {
	scrapers scraper.Registry
	upserter Upserter
	ids      id.Generator
	recorder ScrapeRecorder
	logger   *logging.Logger
	validate *validator.Validate
	cfg      ScrapeServiceConfig
	now      func() time.Time
}

func NewScrapeService(
	scrapers scraper.Registry,
	upserter Upserter,
	ids id.Generator,
	recorder ScrapeRecorder,
	cfg ScrapeServiceConfig,
	logger *logging.Logger,
) *ScrapeService {
	if logger == nil {
		logger = logging.Default()
	}
	if ids == nil {
		ids = id.NewRunIDGenerator()
	}
	return &ScrapeService{
		scrapers: scrapers,
		upserter: upserter,
		ids:      ids,
		recorder: recorder,
		logger:   logger,
		validate: validator.New(),
		cfg:      cfg,
		now:      time.Now,
	}
}

func (s *ScrapeService) Status(ctx context.Context) ScrapeStatus {
	_, span := startUsecaseSpan(ctx, "usecase.ScrapeService.Status")
	defer span.End()

	return ScrapeStatus{
		Status:       "active",
		Scrapers:     s.scrapers.Kinds(),
		StoreDriver:  s.cfg.StoreDriver,
		RequestDelay: s.cfg.RequestDelay.String(),
		Timestamp:    s.now().UTC(),
	}
}

// Run scrapes one kind and, when cmd.Save is set, upserts every record the
// scraper produced in a single transaction.
func (s *ScrapeService) Run(ctx context.Context, cmd ScrapeCommand) (ScrapeRun, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScrapeService.Run")
	defer span.End()

	if err := s.validate.StructCtx(ctx, cmd); err != nil {
		return ScrapeRun{}, fmt.Errorf("%w: validation failed: %v", ErrInvalidInput, err)
	}
	kind := scraper.Kind(strings.ToLower(strings.TrimSpace(cmd.Kind)))
	sc, ok := s.scrapers[kind]
	if !ok {
		return ScrapeRun{}, fmt.Errorf("%w: unknown scraper %q", ErrInvalidInput, cmd.Kind)
	}
	runID, err := s.ids.NewID()
	if err != nil {
		return ScrapeRun{}, fmt.Errorf("generate run id: %w", err)
	}
	span.SetAttributes(attribute.String("scrape.kind", string(kind)), attribute.String("scrape.run_id", runID))
	logger := s.logger.With("run_id", runID, "kind", string(kind))

	started := s.now()
	payloads := sc.Scrape(ctx, cmd.request())

	run := ScrapeRun{
		RunID:     runID,
		Kind:      kind,
		Status:    runStatus(payloads),
		Payloads:  payloads,
		Skipped:   []entity.Skip{},
		Timestamp: started.UTC(),
	}
	records := make([]entity.CandidateRecord, 0)
	for _, payload := range payloads {
		records = append(records, payload.Records...)
		run.Skipped = append(run.Skipped, payload.Rejected...)
		if payload.Failed() && payload.Error != nil {
			logger.WarnContext(ctx, "scrape payload failed", "source", payload.SourceURL, "error", *payload.Error)
		}
	}
	if s.recorder != nil {
		s.recorder.ObserveScrape(string(kind), run.Status, len(records), s.now().Sub(started))
	}

	if cmd.Save && len(records) > 0 {
		result, err := s.upserter.Upsert(ctx, records)
		if err != nil {
			logger.ErrorContext(ctx, "scrape upsert failed", "records", len(records), "error", err)
			return ScrapeRun{}, failSpan(span, mapStoreError(err))
		}
		run.Saved = true
		run.Counts.Created = result.Created
		run.Counts.Updated = result.Updated
		run.Skipped = append(run.Skipped, result.Skipped...)
		if s.recorder != nil {
			s.recorder.ObserveUpsert(string(kind), result.Created, result.Updated, len(result.Skipped))
		}
	}
	run.Counts.Skipped = len(run.Skipped)
	span.SetAttributes(attribute.String("scrape.status", run.Status), attribute.Int("scrape.records", len(records)))

	logger.InfoContext(ctx, "scrape run finished",
		"status", run.Status,
		"payloads", len(payloads),
		"records", len(records),
		"saved", run.Saved,
		"created", run.Counts.Created,
		"updated", run.Counts.Updated,
		"skipped", run.Counts.Skipped,
	)
	return run, nil
}

func runStatus(payloads []scraper.Payload) string {
	failed := 0
	for _, payload := range payloads {
		if payload.Failed() {
			failed++
		}
	}
	switch {
	case failed == 0:
		return RunStatusSuccess
	case failed == len(payloads):
		return RunStatusError
	default:
		return RunStatusPartial
	}
}

func mapStoreError(err error) error {
	switch {
	case errors.Is(err, entity.ErrAmbiguousLookup), errors.Is(err, entity.ErrConflict):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case errors.Is(err, entity.ErrUnknownKind), errors.Is(err, entity.ErrUnknownField):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", ErrDependencyUnavailable, err)
	default:
		return fmt.Errorf("upsert records: %w", err)
	}
}
