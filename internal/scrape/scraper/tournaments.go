package scraper

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/esports-stats/internal/domain/entity"
	"github.com/riskibarqy/esports-stats/internal/platform/logging"
	"github.com/riskibarqy/esports-stats/internal/scrape/mapper"
)

const (
	tournamentFilePrefix = "tournament_list_"
	tournamentFileSuffix = ".html"

	DefaultParseWorkers = 4
)

// Tournaments scrapes a directory of saved tournament_list_<season>.html
// pages, one payload per season file.
type Tournaments struct {
	page    tablePage
	dir     string
	workers int
	logger  *logging.Logger
}

func NewTournaments(fetcher Fetcher, dir string, workers int, logger *logging.Logger) *Tournaments {
	logger = orDefault(logger)
	if workers <= 0 {
		workers = DefaultParseWorkers
	}
	return &Tournaments{
		page: tablePage{
			fetcher: fetcher,
			columns: mapper.TournamentColumns,
			logger:  logger,
		},
		dir:     strings.TrimSpace(dir),
		workers: workers,
		logger:  logger,
	}
}

func (s *Tournaments) Kind() Kind { return KindTournaments }

type seasonFile struct {
	season string
	path   string
}

// Scrape reads the configured directory, or req.FilePath when it names one.
// req.Season and req.Seasons restrict the season files read.
func (s *Tournaments) Scrape(ctx context.Context, req Request) []Payload {
	dir := s.dir
	if path := strings.TrimSpace(req.FilePath); path != "" {
		dir = path
	}

	files, err := seasonFiles(dir)
	if err != nil {
		return []Payload{errorPayload(dir, err)}
	}

	wanted := make(map[string]struct{}, len(req.Seasons)+1)
	for _, season := range append([]string{req.Season}, req.Seasons...) {
		if season = strings.TrimSpace(season); season != "" {
			wanted[season] = struct{}{}
		}
	}
	if len(wanted) > 0 {
		selected := files[:0]
		for _, file := range files {
			if _, ok := wanted[file.season]; ok {
				selected = append(selected, file)
			}
		}
		files = selected
	}
	if len(files) == 0 {
		return []Payload{errorPayload(dir, ErrNoSeasonFiles)}
	}

	payloads, err := s.parseAll(ctx, files)
	if err != nil {
		return []Payload{errorPayload(dir, err)}
	}

	failed := 0
	for _, payload := range payloads {
		if payload.Failed() {
			failed++
		}
	}
	s.logger.InfoContext(ctx, "tournament lists scraped", "dir", dir, "files", len(files), "failed", failed)
	return payloads
}

func (s *Tournaments) parseAll(ctx context.Context, files []seasonFile) ([]Payload, error) {
	pool, err := ants.NewPool(min(s.workers, len(files)))
	if err != nil {
		return nil, fmt.Errorf("create parse pool: %w", err)
	}
	defer pool.Release()

	payloads := make([]Payload, len(files))
	var workers sync.WaitGroup
	for idx, file := range files {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			payload := s.page.run(ctx, file.path, seasonContext(entity.FieldSeasonName, file.season), nil)
			payload.Season = file.season
			payloads[idx] = payload
		}); err != nil {
			workers.Done()
			workers.Wait()
			return nil, fmt.Errorf("submit parse task: %w", err)
		}
	}
	workers.Wait()
	return payloads, nil
}

// seasonFiles lists tournament list files of dir ordered by file name.
func seasonFiles(dir string) ([]seasonFile, error) {
	if dir == "" {
		return nil, fmt.Errorf("tournament list directory is not configured")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read tournament list directory %s: %w", dir, err)
	}

	out := make([]seasonFile, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, tournamentFilePrefix) || !strings.HasSuffix(name, tournamentFileSuffix) {
			continue
		}
		season := strings.TrimSuffix(strings.TrimPrefix(name, tournamentFilePrefix), tournamentFileSuffix)
		if season == "" {
			continue
		}
		out = append(out, seasonFile{season: season, path: filepath.Join(dir, name)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].path < out[j].path })
	return out, nil
}
