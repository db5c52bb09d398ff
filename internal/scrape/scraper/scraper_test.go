package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/esports-stats/internal/domain/entity"
	"github.com/riskibarqy/esports-stats/internal/infrastructure/fetch"
	"github.com/riskibarqy/esports-stats/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/esports-stats/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const championPage = `<html><body>
<table class="other"><tr><td>ignored</td></tr></table>
<table class="playerslist">
<thead><tr><th>Champion</th><th>Picks</th><th>Bans</th><th>PrioScore</th><th>Wins</th><th>Losses</th>
<th>Winrate</th><th>KDA</th><th>Avg BT</th><th>Avg RP</th><th>GT</th><th>CSM</th><th>DPM</th>
<th>GPM</th><th>CSD@15</th><th>GD@15</th><th>XPD@15</th></tr></thead>
<tbody>
<tr><td><a href="/champion/jinx">Jinx</a></td><td>120</td><td>30</td><td>12.50%</td><td>80</td><td>40</td>
<td>66.67%</td><td>4.5</td><td>3.1</td><td>9.2</td><td>32:48</td><td>9.8</td><td>650</td><td>420</td>
<td>5</td><td>120</td><td>80</td></tr>
<tr><td>Ahri</td><td>12</td></tr>
</tbody>
</table>
</body></html>`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func localFetcher(dir string) *fetch.Fetcher {
	return fetch.New(fetch.Config{BaseDir: dir, Logger: logging.NewNop()})
}

func TestChampions_SeasonStats(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "champions.html", championPage)

	payloads := NewChampions(localFetcher(dir), logging.NewNop()).Scrape(t.Context(), Request{FilePath: path, Season: "S14"})
	require.Len(t, payloads, 1)
	payload := payloads[0]

	require.False(t, payload.Failed(), "error: %v", payload.Error)
	assert.True(t, payload.Local)
	assert.Equal(t, 2, payload.TableCount)
	assert.Equal(t, "S14", payload.Season)
	require.Equal(t, 1, payload.Count)
	require.Len(t, payload.Records, 1)

	record := payload.Records[0]
	assert.Equal(t, entity.KindChampionSeasonStats, record.Kind)
	assert.Equal(t, entity.Values{entity.FieldName: "Jinx", entity.FieldSeason: "S14"}, record.Lookup)
	assert.Equal(t, 120, record.Defaults["picks"])
	assert.Equal(t, 66.67, record.Defaults["winrate"])
	assert.Equal(t, 32*time.Minute+48*time.Second, record.Defaults["gt"])

	require.Len(t, payload.Rejected, 1)
	assert.Equal(t, RejectShortRow, payload.Rejected[0].Reason)
	assert.Equal(t, 1, payload.Rejected[0].Data["row"])
}

func TestChampions_WithoutSeasonKeepsRoster(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "champions.html", championPage)

	payloads := NewChampions(localFetcher(dir), logging.NewNop()).Scrape(t.Context(), Request{FilePath: "champions.html"})
	require.Len(t, payloads, 1)
	payload := payloads[0]

	require.False(t, payload.Failed())
	require.Len(t, payload.Records, 1)
	assert.Equal(t, entity.CandidateRecord{
		Kind:     entity.KindChampion,
		Lookup:   entity.Values{entity.FieldName: "Jinx"},
		Defaults: entity.Values{},
	}, payload.Records[0])
	assert.Len(t, payload.Warnings, 1)
}

func TestChampions_TableMissing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "empty.html", `<html><body><table><tr><td>x</td></tr></table></body></html>`)

	payloads := NewChampions(localFetcher(dir), logging.NewNop()).Scrape(t.Context(), Request{FilePath: path})
	require.Len(t, payloads, 1)
	payload := payloads[0]

	assert.Equal(t, StatusError, payload.Status)
	require.NotNil(t, payload.Error)
	assert.Contains(t, *payload.Error, "no matching table")
	assert.Equal(t, 1, payload.TableCount)
	assert.Nil(t, payload.Table)
	assert.Empty(t, payload.Records)
}

func TestScrapers_RequireSource(t *testing.T) {
	t.Parallel()

	fetcher := localFetcher(t.TempDir())
	for _, s := range []Scraper{
		NewChampions(fetcher, logging.NewNop()),
		NewTeams(fetcher, logging.NewNop()),
		NewPatches(fetcher, logging.NewNop()),
	} {
		payloads := s.Scrape(t.Context(), Request{SourceURL: "  "})
		require.Len(t, payloads, 1, s.Kind())
		require.NotNil(t, payloads[0].Error, s.Kind())
		assert.Equal(t, ErrNoSource.Error(), *payloads[0].Error, s.Kind())
	}
}

func TestTeams_HeaderKeyedWithSeason(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "teams.html", `<table class="playerslist">
<thead><tr><th>Name</th><th>Region</th><th>Games</th><th>Win rate</th><th>Game duration</th></tr></thead>
<tbody>
<tr><td>T1</td><td>KR</td><td>20</td><td>75%</td><td>31:05</td></tr>
<tr><td> </td><td>EU</td><td>3</td><td>-</td><td>-</td></tr>
</tbody></table>`)

	payloads := NewTeams(localFetcher(dir), logging.NewNop()).Scrape(t.Context(), Request{FilePath: path, Season: "S14"})
	require.Len(t, payloads, 1)
	payload := payloads[0]

	require.Len(t, payload.Records, 1)
	record := payload.Records[0]
	assert.Equal(t, entity.KindTeamSeasonStats, record.Kind)
	assert.Equal(t, entity.Values{entity.FieldTeamName: "T1", entity.FieldSeason: "S14"}, record.Lookup)
	assert.Equal(t, "KR", record.Defaults[entity.FieldRegion])
	assert.Equal(t, 20, record.Defaults["games"])

	require.Len(t, payload.Rejected, 1)
	assert.Equal(t, RejectBlankNaturalKey, payload.Rejected[0].Reason)
}

const tournamentPage = `<table>
<thead><tr><th>#</th><th>Name</th><th>Region</th><th>Games</th><th>Avg</th><th>Patch</th><th>Last game</th></tr></thead>
<tbody>
<tr><td>1</td><td><a href="./tournament-stats/LCK%20Spring/">LCK Spring</a></td><td>KR</td><td>120</td><td>31:00</td><td>14.5</td><td>2024-04-14</td></tr>
<tr><td>2</td><td>Short</td></tr>
</tbody></table>`

func TestTournaments_ReadsSeasonFilesInOrder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "tournament_list_S14.html", tournamentPage)
	writeFile(t, dir, "tournament_list_S13.html", tournamentPage)
	writeFile(t, dir, "tournament_list_S12.html", `<p>no table</p>`)
	writeFile(t, dir, "notes.txt", "ignored")

	s := NewTournaments(localFetcher(dir), dir, 2, logging.NewNop())
	payloads := s.Scrape(t.Context(), Request{})
	require.Len(t, payloads, 3)

	assert.Equal(t, "S12", payloads[0].Season)
	assert.True(t, payloads[0].Failed())
	assert.Equal(t, "S13", payloads[1].Season)
	assert.Equal(t, "S14", payloads[2].Season)

	payload := payloads[2]
	require.False(t, payload.Failed())
	require.Len(t, payload.Records, 1)
	record := payload.Records[0]
	assert.Equal(t, entity.KindTournament, record.Kind)
	assert.Equal(t, entity.Values{entity.FieldName: "LCK Spring", entity.FieldSeasonName: "S14"}, record.Lookup)
	assert.Equal(t, "KR", record.Defaults[entity.FieldRegion])
	assert.Equal(t, "./tournament-stats/LCK%20Spring/", record.Defaults[entity.FieldDetailsURL])
	assert.Equal(t, time.Date(2024, 4, 14, 0, 0, 0, 0, time.UTC), record.Defaults["last_game_date"])
	require.Len(t, payload.Rejected, 1)
	assert.Equal(t, RejectShortRow, payload.Rejected[0].Reason)
}

func TestTournaments_SeasonFilter(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "tournament_list_S13.html", tournamentPage)
	writeFile(t, dir, "tournament_list_S14.html", tournamentPage)
	s := NewTournaments(localFetcher(dir), dir, 0, logging.NewNop())

	payloads := s.Scrape(t.Context(), Request{Seasons: []string{"S14"}})
	require.Len(t, payloads, 1)
	assert.Equal(t, "S14", payloads[0].Season)

	payloads = s.Scrape(t.Context(), Request{Season: "S99"})
	require.Len(t, payloads, 1)
	require.NotNil(t, payloads[0].Error)
	assert.Equal(t, ErrNoSeasonFiles.Error(), *payloads[0].Error)
}

func TestTournaments_MissingDirectory(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "nope")
	payloads := NewTournaments(localFetcher(""), missing, 1, logging.NewNop()).Scrape(t.Context(), Request{})
	require.Len(t, payloads, 1)
	require.NotNil(t, payloads[0].Error)
	assert.Contains(t, *payloads[0].Error, "read tournament list directory")
}

const matchPage = `<table class="table_list">
<thead><tr><th>Game</th><th>Blue</th><th>Score</th><th>Red</th><th>Week</th><th>Patch</th><th>Date</th></tr></thead>
<tbody>
<tr><td><a href="../game/stats/100/page-summary/">T1 vs GEN</a></td><td>T1</td><td>1 - 0</td><td>GEN</td><td>WEEK1</td><td>14.5</td><td>2024-01-17</td></tr>
<tr><td></td><td></td><td></td><td></td><td></td><td></td><td></td></tr>
</tbody></table>`

func seedTournament(t *testing.T, store *memory.Store, name, season string) {
	t.Helper()
	err := store.WithinTx(t.Context(), func(ctx context.Context, tx entity.Tx) error {
		_, _, err := tx.GetOrCreate(ctx, entity.KindTournament,
			entity.Values{entity.FieldName: name, entity.FieldSeasonName: season}, entity.Values{})
		return err
	})
	require.NoError(t, err)
}

func TestMatches_ScrapesStoredTournaments(t *testing.T) {
	t.Parallel()

	var (
		mu    sync.Mutex
		paths []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.EscapedPath())
		mu.Unlock()
		w.Header().Set("Content-Type", "text/html; charset=UTF-8")
		_, _ = w.Write([]byte(matchPage))
	}))
	t.Cleanup(server.Close)

	store := memory.NewStore()
	seedTournament(t, store, "LCK Spring 2024", "S14")
	seedTournament(t, store, "LEC Winter 2024", "S14")

	fetcher := fetch.New(fetch.Config{Logger: logging.NewNop()})
	s := NewMatches(fetcher, store, server.URL+"/tournament/tournament-matchlist/", logging.NewNop())

	payloads := s.Scrape(t.Context(), Request{Tournaments: []string{"LCK Spring 2024"}})
	require.Len(t, payloads, 1)
	mu.Lock()
	assert.Equal(t, []string{"/tournament/tournament-matchlist/LCK%20Spring%202024/"}, paths)
	mu.Unlock()

	payload := payloads[0]
	require.False(t, payload.Failed(), "error: %v", payload.Error)
	assert.Equal(t, "LCK Spring 2024", payload.Tournament)
	assert.Equal(t, "S14", payload.Season)
	assert.Equal(t, "utf-8", payload.Encoding)
	assert.Empty(t, payload.Rejected)
	require.Len(t, payload.Records, 1)

	record := payload.Records[0]
	assert.Equal(t, entity.Values{entity.FieldMatchURL: "https://gol.gg/game/stats/100/page-summary/"}, record.Lookup)
	assert.Equal(t, "T1", record.Defaults[entity.FieldTeamOne])
	assert.Equal(t, "GEN", record.Defaults[entity.FieldTeamTwo])
	assert.Equal(t, 1, record.Defaults["team_one_score"])
	assert.Equal(t, 0, record.Defaults["team_two_score"])
	assert.Equal(t, entity.Values{
		entity.FieldName:       "LCK Spring 2024",
		entity.FieldSeasonName: "S14",
	}, record.Defaults[entity.FieldTournament])
}

func TestMatches_NoTournaments(t *testing.T) {
	t.Parallel()

	s := NewMatches(localFetcher(""), memory.NewStore(), "", logging.NewNop())
	payloads := s.Scrape(t.Context(), Request{Tournaments: []string{"Worlds"}})
	require.Len(t, payloads, 1)
	require.NotNil(t, payloads[0].Error)
	assert.Equal(t, ErrNoTournaments.Error(), *payloads[0].Error)
	assert.Equal(t, DefaultMatchListBaseURL, payloads[0].SourceURL)
}

func TestMatchListURL(t *testing.T) {
	t.Parallel()

	got := MatchListURL(DefaultMatchListBaseURL, " LCK Spring/Summer 2024 ")
	assert.Equal(t, "https://gol.gg/tournament/tournament-matchlist/LCK%20Spring%2FSummer%202024/", got)
	assert.True(t, strings.HasSuffix(MatchListURL("http://x", "a"), "/a/"))
}

func TestRegistry_Kinds(t *testing.T) {
	t.Parallel()

	fetcher := localFetcher("")
	registry := NewRegistry(NewPatches(fetcher, nil), NewChampions(fetcher, nil))
	assert.Equal(t, []Kind{KindChampions, KindPatches}, registry.Kinds())
}
