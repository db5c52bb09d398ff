package scraper

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/riskibarqy/esports-stats/internal/domain/entity"
	"github.com/riskibarqy/esports-stats/internal/platform/logging"
	"github.com/riskibarqy/esports-stats/internal/scrape/htmltable"
	"github.com/riskibarqy/esports-stats/internal/scrape/mapper"
)

// DefaultMatchListBaseURL serves one match list page per tournament name.
const DefaultMatchListBaseURL = "https://gol.gg/tournament/tournament-matchlist/"

// Matches scrapes the match list of every stored tournament, optionally
// restricted by name.
type Matches struct {
	page    tablePage
	reader  entity.Reader
	baseURL string
	logger  *logging.Logger
}

func NewMatches(fetcher Fetcher, reader entity.Reader, baseURL string, logger *logging.Logger) *Matches {
	logger = orDefault(logger)
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultMatchListBaseURL
	}
	return &Matches{
		page: tablePage{
			fetcher:  fetcher,
			selector: htmltable.Selector{Class: "table_list"},
			columns:  mapper.MatchColumns,
			logger:   logger,
		},
		reader:  reader,
		baseURL: baseURL,
		logger:  logger,
	}
}

func (s *Matches) Kind() Kind { return KindMatches }

func (s *Matches) Scrape(ctx context.Context, req Request) []Payload {
	tournaments, err := s.loadTournaments(ctx, req.Tournaments)
	if err != nil {
		return []Payload{errorPayload(s.baseURL, err)}
	}
	if len(tournaments) == 0 {
		return []Payload{errorPayload(s.baseURL, ErrNoTournaments)}
	}

	payloads := make([]Payload, 0, len(tournaments))
	for _, tournament := range tournaments {
		name := tournament.Values.String(entity.FieldName)
		season := tournament.Values.String(entity.FieldSeasonName)
		mctx := mapper.Context{Defaults: entity.Values{
			entity.FieldTournament: entity.Values{
				entity.FieldName:       name,
				entity.FieldSeasonName: season,
			},
		}}

		payload := s.page.run(ctx, MatchListURL(s.baseURL, name), mctx, hasTeam)
		payload.Tournament = name
		payload.Season = season
		payloads = append(payloads, payload)
	}
	return payloads
}

func (s *Matches) loadTournaments(ctx context.Context, names []string) ([]entity.Record, error) {
	rows, err := s.reader.List(ctx, entity.KindTournament, entity.Query{
		OrderBy: []entity.Field{entity.FieldName, entity.FieldSeasonName},
	})
	if err != nil {
		return nil, fmt.Errorf("load tournaments: %w", err)
	}

	wanted := make(map[string]struct{}, len(names))
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			wanted[name] = struct{}{}
		}
	}
	if len(wanted) == 0 {
		return rows, nil
	}

	out := make([]entity.Record, 0, len(wanted))
	for _, row := range rows {
		if _, ok := wanted[row.Values.String(entity.FieldName)]; ok {
			out = append(out, row)
		}
	}
	return out, nil
}

// MatchListURL joins the path-escaped tournament name onto base.
func MatchListURL(base, name string) string {
	return strings.TrimRight(base, "/") + "/" + url.PathEscape(strings.TrimSpace(name)) + "/"
}

// hasTeam drops rows where both team cells are blank.
func hasTeam(cells []string) bool {
	if len(cells) < 4 {
		return true
	}
	return strings.TrimSpace(cells[1]) != "" || strings.TrimSpace(cells[3]) != ""
}
