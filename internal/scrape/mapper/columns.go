package mapper

import (
	"github.com/riskibarqy/esports-stats/internal/domain/entity"
	"github.com/riskibarqy/esports-stats/internal/scrape/coerce"
)

// MatchLinkBase resolves relative match links of the match list table.
const MatchLinkBase = "https://gol.gg"

// ChampionColumns reads the positional champion list (table.playerslist).
var ChampionColumns = MustColumnMap(entity.KindChampionSeasonStats, entity.FieldName, []Column{
	{Index: 0, Field: entity.FieldName, Coerce: coerce.Text},
	{Index: 1, Field: "picks", Coerce: coerce.Int},
	{Index: 2, Field: "bans", Coerce: coerce.Int},
	{Index: 3, Field: "prioscore", Coerce: coerce.Percent},
	{Index: 4, Field: "wins", Coerce: coerce.Int},
	{Index: 5, Field: "losses", Coerce: coerce.Int},
	{Index: 6, Field: "winrate", Coerce: coerce.Percent},
	{Index: 7, Field: "kda", Coerce: coerce.Float},
	{Index: 8, Field: "avg_bt", Coerce: coerce.Float},
	{Index: 9, Field: "avg_rp", Coerce: coerce.Float},
	{Index: 10, Field: "gt", Coerce: coerce.Duration},
	{Index: 11, Field: "csm", Coerce: coerce.Float},
	{Index: 12, Field: "dpm", Coerce: coerce.Int},
	{Index: 13, Field: "gpm", Coerce: coerce.Int},
	{Index: 14, Field: "csd_15", Coerce: coerce.Int},
	{Index: 15, Field: "gd_15", Coerce: coerce.Int},
	{Index: 16, Field: "xpd_15", Coerce: coerce.Int},
}, WithMinCells(17))

// TeamColumns reads the team stats list by header.
var TeamColumns = MustColumnMap(entity.KindTeamSeasonStats, entity.FieldTeamName, []Column{
	{Header: "name", Field: entity.FieldTeamName, Coerce: coerce.Text},
	{Header: "season", Field: entity.FieldSeason, Coerce: coerce.Text},
	{Header: "region", Field: entity.FieldRegion, Coerce: coerce.Text},
	{Header: "games", Field: "games", Coerce: coerce.Int},
	{Header: "win rate", Field: "winrate", Coerce: coerce.Percent},
	{Header: "winrate", Field: "winrate", Coerce: coerce.Percent},
	{Header: "k:d", Field: "kill_death_ratio", Coerce: coerce.Float},
	{Header: "gpm", Field: "gpm", Coerce: coerce.Int},
	{Header: "gdm", Field: "gdm", Coerce: coerce.Int},
	{Header: "game duration", Field: "game_duration", Coerce: coerce.Duration},
	{Header: "kills / game", Field: "kills_per_game", Coerce: coerce.Float},
	{Header: "deaths / game", Field: "deaths_per_game", Coerce: coerce.Float},
	{Header: "towers killed", Field: "towers_killed", Coerce: coerce.Float},
	{Header: "towers lost", Field: "towers_lost", Coerce: coerce.Float},
	{Header: "fb%", Field: "first_blood_percent", Coerce: coerce.Percent},
	{Header: "ft%", Field: "first_tower_percent", Coerce: coerce.Percent},
	{Header: "fos%", Field: "first_objective_percent", Coerce: coerce.Percent},
	{Header: "drapg", Field: "dragons_per_game", Coerce: coerce.Float},
	{Header: "dra%", Field: "dragon_control_percent", Coerce: coerce.Percent},
	{Header: "vgpg", Field: "void_grub_per_game", Coerce: coerce.Float},
	{Header: "her%", Field: "herald_percent", Coerce: coerce.Percent},
	{Header: "atakhan%", Field: "atakhan_percent", Coerce: coerce.Percent},
	{Header: "dra@15", Field: "dragons_at_15", Coerce: coerce.Float},
	{Header: "td@15", Field: "tower_difference_15", Coerce: coerce.Float},
	{Header: "gd@15", Field: "gold_difference_15", Coerce: coerce.Int},
	{Header: "ppg", Field: "points_per_game", Coerce: coerce.Float},
	{Header: "nashpg", Field: "nashors_per_game", Coerce: coerce.Float},
	{Header: "nash%", Field: "nashor_percent", Coerce: coerce.Percent},
	{Header: "csm", Field: "csm", Coerce: coerce.Float},
	{Header: "dpm", Field: "dpm", Coerce: coerce.Int},
	{Header: "wpm", Field: "wards_per_minute", Coerce: coerce.Float},
	{Header: "vwpm", Field: "vision_wards_per_minute", Coerce: coerce.Float},
	{Header: "wcpm", Field: "wards_cleared_per_minute", Coerce: coerce.Float},
})

// TournamentColumns reads a saved tournament list; the season comes from
// the file name.
var TournamentColumns = MustColumnMap(entity.KindTournament, entity.FieldName, []Column{
	{Index: 1, Field: entity.FieldName, Coerce: coerce.Text},
	{Index: 1, Field: entity.FieldDetailsURL, Coerce: coerce.Text, Source: SourceLink},
	{Index: 2, Field: entity.FieldRegion, Coerce: coerce.Text},
	{Index: 6, Field: "last_game_date", Coerce: coerce.Date},
}, WithMinCells(7))

// MatchColumns reads a tournament match list (table.table_list).
var MatchColumns = MustColumnMap(entity.KindMatch, entity.FieldMatchURL, []Column{
	{Index: 0, Field: entity.FieldMatchURL, Coerce: coerce.Text, Source: SourceLink, BaseURL: MatchLinkBase},
	{Index: 1, Field: entity.FieldTeamOne, Coerce: coerce.Text},
	{Index: 2, Field: "team_one_score", Coerce: coerce.Int, Sep: "-", Part: 0, Nullable: true},
	{Index: 2, Field: "team_two_score", Coerce: coerce.Int, Sep: "-", Part: 1, Nullable: true},
	{Index: 3, Field: entity.FieldTeamTwo, Coerce: coerce.Text},
	{Index: 4, Field: "week", Coerce: coerce.Text},
	{Index: 5, Field: "patch", Coerce: coerce.Text},
	{Index: 6, Field: "match_date", Coerce: coerce.Date},
}, WithMinCells(7))

// PatchColumns reads a patch list by header.
var PatchColumns = MustColumnMap(entity.KindPatch, entity.FieldVersion, []Column{
	{Header: "patch", Field: entity.FieldVersion, Coerce: coerce.Text},
	{Header: "version", Field: entity.FieldVersion, Coerce: coerce.Text},
	{Header: "date", Field: "release_date", Coerce: coerce.Date},
	{Header: "release date", Field: "release_date", Coerce: coerce.Date},
})
