package entity

import (
	"fmt"
	"sort"
	"time"

	"github.com/bytedance/sonic"
)

// Kind names a persisted entity type.
type Kind string

const (
	KindChampion            Kind = "champion"
	KindPatch               Kind = "patch"
	KindTeam                Kind = "team"
	KindSeason              Kind = "season"
	KindTournament          Kind = "tournament"
	KindMatch               Kind = "match"
	KindChampionSeasonStats Kind = "champion_season_stats"
	KindTeamSeasonStats     Kind = "team_season_stats"
)

// Field is a canonical field name of an entity schema.
type Field string

const (
	FieldName       Field = "name"
	FieldVersion    Field = "version"
	FieldRegion     Field = "region"
	FieldSeason     Field = "season"
	FieldSeasonName Field = "season_name"
	FieldTeamName   Field = "team_name"
	FieldMatchURL   Field = "match_url"
	FieldTournament Field = "tournament"
	FieldTeamOne    Field = "team_one"
	FieldTeamTwo    Field = "team_two"
	FieldDetailsURL Field = "details_url"
)

// Values maps fields to typed values: int, float64, string, time.Duration,
// time.Time, nil, or for reference fields a natural key (string or Values)
// before resolution and a row id (int64) after.
type Values map[Field]any

func (v Values) Clone() Values {
	if v == nil {
		return nil
	}
	out := make(Values, len(v))
	for key, value := range v {
		if nested, ok := value.(Values); ok {
			value = nested.Clone()
		}
		out[key] = value
	}
	return out
}

// String returns the string value of field, or "" when absent or not a string.
func (v Values) String(field Field) string {
	s, _ := v[field].(string)
	return s
}

// Export converts values into JSON friendly types.
func (v Values) Export() map[string]any {
	out := make(map[string]any, len(v))
	for key, value := range v {
		out[string(key)] = exportValue(value)
	}
	return out
}

func exportValue(value any) any {
	switch typed := value.(type) {
	case time.Duration:
		return FormatDuration(typed)
	case *time.Duration:
		if typed == nil {
			return nil
		}
		return FormatDuration(*typed)
	case time.Time:
		return typed.Format(time.DateOnly)
	case Values:
		return typed.Export()
	default:
		return value
	}
}

// FormatDuration renders a duration as H:MM:SS.
func FormatDuration(d time.Duration) string {
	total := int64(d / time.Second)
	return fmt.Sprintf("%d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// SortedFields returns the fields of v in lexical order.
func (v Values) SortedFields() []Field {
	out := make([]Field, 0, len(v))
	for key := range v {
		out = append(out, key)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// CandidateRecord is the contract every scraper produces for the upserter.
type CandidateRecord struct {
	Kind     Kind
	Lookup   Values
	Defaults Values
}

func (r CandidateRecord) Export() map[string]any {
	return map[string]any{
		"kind":     r.Kind,
		"lookup":   r.Lookup.Export(),
		"defaults": r.Defaults.Export(),
	}
}

// Record is a stored row.
type Record struct {
	ID     int64
	Values Values
}

func (r Record) Export() map[string]any {
	out := r.Values.Export()
	out["id"] = r.ID
	return out
}

// Skip describes a record that was not persisted.
type Skip struct {
	Reason string         `json:"reason"`
	Data   map[string]any `json:"data,omitempty"`
}

// Result is the uniform outcome of one persistence invocation.
type Result struct {
	Created int    `json:"created"`
	Updated int    `json:"updated"`
	Skipped []Skip `json:"skipped"`
}

func (r *Result) Merge(other Result) {
	r.Created += other.Created
	r.Updated += other.Updated
	r.Skipped = append(r.Skipped, other.Skipped...)
}

func (r *Result) Skip(reason string, data map[string]any) {
	r.Skipped = append(r.Skipped, Skip{Reason: reason, Data: data})
}

func (r CandidateRecord) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(r.Export())
}

func (r Record) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(r.Export())
}
