package mapper

import (
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/esports-stats/internal/domain/entity"
	"github.com/riskibarqy/esports-stats/internal/scrape/coerce"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChampionColumns_JinxRow(t *testing.T) {
	t.Parallel()

	row := []string{
		"Jinx", "120", "30", "12.50%", "80", "40", "66.67%", "4.5",
		"1.2", "0.8", "32:48", "9.1", "650", "420", "5", "120", "-",
	}
	record, err := ChampionColumns.Map(nil, row, Context{})
	require.NoError(t, err)

	assert.Equal(t, entity.KindChampionSeasonStats, record.Kind)
	assert.Equal(t, entity.Values{entity.FieldName: "Jinx"}, record.Lookup)
	assert.Equal(t, 120, record.Defaults["picks"])
	assert.Equal(t, 66.67, record.Defaults["winrate"])
	assert.Equal(t, 12.5, record.Defaults["prioscore"])
	assert.Equal(t, 4.5, record.Defaults["kda"])
	assert.Equal(t, 32*time.Minute+48*time.Second, record.Defaults["gt"])
	assert.Equal(t, 0, record.Defaults["xpd_15"])
}

func TestChampionColumns_SeasonFromContext(t *testing.T) {
	t.Parallel()

	row := make([]string, 17)
	row[0] = "Ahri"
	record, err := ChampionColumns.Map(nil, row, Context{Defaults: entity.Values{entity.FieldSeason: "S14"}})
	require.NoError(t, err)
	assert.Equal(t, entity.Values{entity.FieldName: "Ahri", entity.FieldSeason: "S14"}, record.Lookup)
	assert.Nil(t, record.Defaults["gt"])
}

func TestChampionColumns_Rejects(t *testing.T) {
	t.Parallel()

	_, err := ChampionColumns.Map(nil, []string{"Jinx", "1"}, Context{})
	assert.True(t, errors.Is(err, ErrShortRow), "got %v", err)

	row := make([]string, 17)
	row[0] = "  "
	_, err = ChampionColumns.Map(nil, row, Context{})
	assert.True(t, errors.Is(err, ErrBlankNaturalKey), "got %v", err)
}

func TestTeamColumns_HeaderKeyed(t *testing.T) {
	t.Parallel()

	headers := []string{" Name ", "Region", "Games", "Win rate", "K:D", "Game duration", "GD@15", "Unknown column"}
	cells := []string{"T1", "KR", "20", "75%", "1.8", "31:05", "1,204", "x"}

	record, err := TeamColumns.Map(headers, cells, Context{Defaults: entity.Values{entity.FieldSeason: "S14"}})
	require.NoError(t, err)

	assert.Equal(t, entity.Values{entity.FieldTeamName: "T1", entity.FieldSeason: "S14"}, record.Lookup)
	assert.Equal(t, "KR", record.Defaults[entity.FieldRegion])
	assert.Equal(t, 20, record.Defaults["games"])
	assert.Equal(t, 75.0, record.Defaults["winrate"])
	assert.Equal(t, 1.8, record.Defaults["kill_death_ratio"])
	assert.Equal(t, 31*time.Minute+5*time.Second, record.Defaults["game_duration"])
	assert.Equal(t, 1204, record.Defaults["gold_difference_15"])
	assert.Equal(t, 0.0, record.Defaults["nashor_percent"])
	assert.Nil(t, record.Defaults["unknown column"])
}

func TestTeamColumns_RowSeasonWinsOverContext(t *testing.T) {
	t.Parallel()

	record, err := TeamColumns.Map([]string{"name", "season"}, []string{"G2", "S13"}, Context{
		Defaults: entity.Values{entity.FieldSeason: "S14"},
	})
	require.NoError(t, err)
	assert.Equal(t, "S13", record.Lookup[entity.FieldSeason])
}

func TestMatchColumns_LinkAndScore(t *testing.T) {
	t.Parallel()

	cells := []string{"T1 vs GEN", "T1", "2 - 1", "GEN", "WEEK1", "14.5", "2024-03-02"}
	links := []string{"../game/stats/123/page-summary/", "", "", "", "", "", ""}
	tournament := entity.Values{entity.FieldName: "LCK Spring 2024", entity.FieldSeasonName: "S14"}

	record, err := MatchColumns.MapRow(nil, cells, links, Context{Defaults: entity.Values{entity.FieldTournament: tournament}})
	require.NoError(t, err)

	assert.Equal(t, "https://gol.gg/game/stats/123/page-summary/", record.Lookup[entity.FieldMatchURL])
	assert.Equal(t, 2, record.Defaults["team_one_score"])
	assert.Equal(t, 1, record.Defaults["team_two_score"])
	assert.Equal(t, "GEN", record.Defaults[entity.FieldTeamTwo])
	assert.Equal(t, tournament, record.Defaults[entity.FieldTournament])
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), record.Defaults["match_date"])

	cells[2] = "TBD"
	record, err = MatchColumns.MapRow(nil, cells, links, Context{})
	require.NoError(t, err)
	assert.Nil(t, record.Defaults["team_one_score"])
	assert.Nil(t, record.Defaults["team_two_score"])
}

func TestTournamentColumns(t *testing.T) {
	t.Parallel()

	cells := []string{"", "LCK Spring 2024", "KR", "x", "x", "x", "2024-04-14"}
	links := []string{"", "./tournament-stats/LCK%20Spring%202024/", "", "", "", "", ""}
	record, err := TournamentColumns.MapRow(nil, cells, links, Context{Defaults: entity.Values{entity.FieldSeasonName: "S14"}})
	require.NoError(t, err)

	assert.Equal(t, entity.Values{entity.FieldName: "LCK Spring 2024", entity.FieldSeasonName: "S14"}, record.Lookup)
	assert.Equal(t, "./tournament-stats/LCK%20Spring%202024/", record.Defaults[entity.FieldDetailsURL])
	assert.Equal(t, "KR", record.Defaults[entity.FieldRegion])
}

func TestPatchColumns(t *testing.T) {
	t.Parallel()

	record, err := PatchColumns.Map([]string{"Patch", "Release Date"}, []string{"14.5", "2024-03-05"}, Context{})
	require.NoError(t, err)
	assert.Equal(t, entity.Values{entity.FieldVersion: "14.5"}, record.Lookup)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), record.Defaults["release_date"])
}

func TestNewColumnMap_Validation(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		kind    entity.Kind
		key     entity.Field
		columns []Column
	}{
		"unknown kind":     {kind: "player", key: "name"},
		"undeclared key":   {kind: entity.KindTeam, key: "nickname"},
		"undeclared field": {kind: entity.KindTeam, key: entity.FieldName, columns: []Column{{Index: 0, Field: "logo", Coerce: coerce.Text}}},
		"incompatible":     {kind: entity.KindTeam, key: entity.FieldName, columns: []Column{{Index: 0, Field: entity.FieldName, Coerce: coerce.Int}}},
		"duplicate header": {kind: entity.KindTeam, key: entity.FieldName, columns: []Column{
			{Header: "Name", Field: entity.FieldName, Coerce: coerce.Text},
			{Header: " name", Field: entity.FieldRegion, Coerce: coerce.Text},
		}},
		"duplicate index": {kind: entity.KindTeam, key: entity.FieldName, columns: []Column{
			{Index: 0, Field: entity.FieldName, Coerce: coerce.Text},
			{Index: 0, Field: entity.FieldRegion, Coerce: coerce.Text},
		}},
	}
	for name, tc := range cases {
		_, err := NewColumnMap(tc.kind, tc.key, tc.columns)
		assert.True(t, errors.Is(err, ErrInvalidColumns), "%s: got %v", name, err)
	}
}
