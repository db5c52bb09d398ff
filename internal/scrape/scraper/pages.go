package scraper

import (
	"context"
	"strings"

	"github.com/riskibarqy/esports-stats/internal/domain/entity"
	"github.com/riskibarqy/esports-stats/internal/platform/logging"
	"github.com/riskibarqy/esports-stats/internal/scrape/htmltable"
	"github.com/riskibarqy/esports-stats/internal/scrape/mapper"
)

const playersListClass = "playerslist"

// Champions scrapes the champion statistics list.
type Champions struct {
	page   tablePage
	logger *logging.Logger
}

func NewChampions(fetcher Fetcher, logger *logging.Logger) *Champions {
	logger = orDefault(logger)
	return &Champions{
		page: tablePage{
			fetcher:  fetcher,
			selector: htmltable.Selector{Class: playersListClass},
			columns:  mapper.ChampionColumns,
			logger:   logger,
		},
		logger: logger,
	}
}

func (s *Champions) Kind() Kind { return KindChampions }

// Scrape emits season statistics when a season is given. Without one only
// the champion roster is kept, since the statistics have no season to
// belong to.
func (s *Champions) Scrape(ctx context.Context, req Request) []Payload {
	source := req.Source()
	if source == "" {
		return []Payload{errorPayload("", ErrNoSource)}
	}

	season := strings.TrimSpace(req.Season)
	payload := s.page.run(ctx, source, seasonContext(entity.FieldSeason, season), nil)
	payload.Season = season
	if season == "" && !payload.Failed() {
		payload.Records = rosterOnly(payload.Records)
		payload.Warnings = append(payload.Warnings, "no season given: only champion names are kept")
	}
	return []Payload{payload}
}

func rosterOnly(records []entity.CandidateRecord) []entity.CandidateRecord {
	out := make([]entity.CandidateRecord, 0, len(records))
	for _, record := range records {
		out = append(out, entity.CandidateRecord{
			Kind:     entity.KindChampion,
			Lookup:   entity.Values{entity.FieldName: record.Lookup[entity.FieldName]},
			Defaults: entity.Values{},
		})
	}
	return out
}

// Teams scrapes the team statistics list.
type Teams struct {
	page tablePage
}

func NewTeams(fetcher Fetcher, logger *logging.Logger) *Teams {
	return &Teams{
		page: tablePage{
			fetcher:  fetcher,
			selector: htmltable.Selector{Class: playersListClass},
			columns:  mapper.TeamColumns,
			logger:   orDefault(logger),
		},
	}
}

func (s *Teams) Kind() Kind { return KindTeams }

func (s *Teams) Scrape(ctx context.Context, req Request) []Payload {
	source := req.Source()
	if source == "" {
		return []Payload{errorPayload("", ErrNoSource)}
	}

	season := strings.TrimSpace(req.Season)
	payload := s.page.run(ctx, source, seasonContext(entity.FieldSeason, season), nil)
	payload.Season = season
	return []Payload{payload}
}

// Patches scrapes the first table of a patch list page.
type Patches struct {
	page tablePage
}

func NewPatches(fetcher Fetcher, logger *logging.Logger) *Patches {
	return &Patches{
		page: tablePage{
			fetcher: fetcher,
			columns: mapper.PatchColumns,
			logger:  orDefault(logger),
		},
	}
}

func (s *Patches) Kind() Kind { return KindPatches }

func (s *Patches) Scrape(ctx context.Context, req Request) []Payload {
	source := req.Source()
	if source == "" {
		return []Payload{errorPayload("", ErrNoSource)}
	}
	return []Payload{s.page.run(ctx, source, mapper.Context{}, nil)}
}

func seasonContext(field entity.Field, season string) mapper.Context {
	if season == "" {
		return mapper.Context{}
	}
	return mapper.Context{Defaults: entity.Values{field: season}}
}
