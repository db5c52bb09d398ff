package entity

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// FieldType is the storage type of a schema field.
type FieldType int

const (
	TypeText FieldType = iota + 1
	TypeInt
	TypeFloat
	TypePercent
	TypeDuration
	TypeDate
	TypeRef
)

func (t FieldType) String() string {
	switch t {
	case TypeText:
		return "text"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypePercent:
		return "percent"
	case TypeDuration:
		return "duration"
	case TypeDate:
		return "date"
	case TypeRef:
		return "ref"
	default:
		return fmt.Sprintf("FieldType(%d)", int(t))
	}
}

// RefMode controls how a reference is resolved during ingestion.
type RefMode int

const (
	// RefGetOrCreate creates the referenced entity with placeholders when missing.
	RefGetOrCreate RefMode = iota
	// RefExisting requires the referenced entity to exist already.
	RefExisting
)

// FieldSpec describes one schema field.
type FieldSpec struct {
	Name   Field
	Type   FieldType
	Column string
	MaxLen int

	// Reference fields only.
	Ref     Kind
	RefMode RefMode
	// RefAux copies observed record fields onto the referenced entity
	// (record field -> referenced entity field).
	RefAux map[Field]Field
}

// Schema describes the table, natural key and fields of one entity kind.
type Schema struct {
	Kind         Kind
	Table        string
	Key          []Field
	Fields       []FieldSpec
	Placeholders Values

	byName map[Field]int
}

func (s *Schema) Field(name Field) (FieldSpec, bool) {
	idx, ok := s.byName[name]
	if !ok {
		return FieldSpec{}, false
	}
	return s.Fields[idx], true
}

func (s *Schema) IsKey(name Field) bool {
	for _, key := range s.Key {
		if key == name {
			return true
		}
	}
	return false
}

// RefFields returns the reference fields in declaration order.
func (s *Schema) RefFields() []FieldSpec {
	out := make([]FieldSpec, 0, 2)
	for _, spec := range s.Fields {
		if spec.Type == TypeRef {
			out = append(out, spec)
		}
	}
	return out
}

// CheckValues reports the first field that is not part of the schema.
func (s *Schema) CheckValues(values Values) error {
	for _, name := range values.SortedFields() {
		if _, ok := s.byName[name]; !ok {
			return fmt.Errorf("%w: %s.%s", ErrUnknownField, s.Kind, name)
		}
	}
	return nil
}

// CheckKey verifies that key carries every natural key field with a value.
func (s *Schema) CheckKey(key Values) error {
	for _, name := range s.Key {
		value, ok := key[name]
		if !ok || value == nil {
			return fmt.Errorf("%w: %s.%s", ErrMissingKey, s.Kind, name)
		}
		if str, isStr := value.(string); isStr && strings.TrimSpace(str) == "" {
			return fmt.Errorf("%w: %s.%s", ErrMissingKey, s.Kind, name)
		}
	}
	return nil
}

// Normalize truncates text values to their declared length.
func (s *Schema) Normalize(values Values) Values {
	out := values.Clone()
	for name, value := range out {
		spec, ok := s.Field(name)
		if !ok || spec.Type != TypeText || spec.MaxLen <= 0 {
			continue
		}
		if str, isStr := value.(string); isStr {
			out[name] = truncate(str, spec.MaxLen)
		}
	}
	return out
}

// KeyFromRef turns a reference value into a natural key of s. Single-field
// keys accept a plain string; composite keys require Values.
func (s *Schema) KeyFromRef(value any) (Values, error) {
	switch typed := value.(type) {
	case string:
		if len(s.Key) != 1 {
			return nil, fmt.Errorf("%w: %s needs a composite key", ErrInvalidReference, s.Kind)
		}
		name := strings.TrimSpace(typed)
		if name == "" {
			return nil, fmt.Errorf("%w: %s.%s", ErrMissingKey, s.Kind, s.Key[0])
		}
		return Values{s.Key[0]: name}, nil
	case Values:
		key := make(Values, len(s.Key))
		for _, field := range s.Key {
			v := typed[field]
			if str, ok := v.(string); ok {
				v = strings.TrimSpace(str)
			}
			key[field] = v
		}
		if err := s.CheckKey(key); err != nil {
			return nil, err
		}
		return key, nil
	default:
		return nil, fmt.Errorf("%w: %s reference of type %T", ErrInvalidReference, s.Kind, value)
	}
}

func truncate(value string, max int) string {
	if utf8.RuneCountInString(value) <= max {
		return value
	}
	runes := []rune(value)
	return string(runes[:max])
}

var registry = map[Kind]*Schema{}

// SchemaFor returns the registered schema of kind.
func SchemaFor(kind Kind) (*Schema, error) {
	schema, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return schema, nil
}

// Kinds lists the registered kinds in lexical order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(registry))
	for kind := range registry {
		out = append(out, kind)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func register(schema *Schema) {
	if err := schema.init(); err != nil {
		panic(err)
	}
	registry[schema.Kind] = schema
}

func (s *Schema) init() error {
	if s.Kind == "" || s.Table == "" {
		return fmt.Errorf("schema kind and table are required")
	}
	if len(s.Key) == 0 {
		return fmt.Errorf("schema %s: natural key is required", s.Kind)
	}

	s.byName = make(map[Field]int, len(s.Fields))
	columns := make(map[string]struct{}, len(s.Fields))
	for idx := range s.Fields {
		spec := &s.Fields[idx]
		if spec.Name == "" || spec.Type == 0 {
			return fmt.Errorf("schema %s: field %d has no name or type", s.Kind, idx)
		}
		if _, dup := s.byName[spec.Name]; dup {
			return fmt.Errorf("schema %s: duplicate field %s", s.Kind, spec.Name)
		}
		if spec.Column == "" {
			spec.Column = string(spec.Name)
			if spec.Type == TypeRef {
				spec.Column += "_id"
			}
		}
		if _, dup := columns[spec.Column]; dup {
			return fmt.Errorf("schema %s: duplicate column %s", s.Kind, spec.Column)
		}
		if spec.Type == TypeRef && spec.Ref == "" {
			return fmt.Errorf("schema %s: reference field %s has no target", s.Kind, spec.Name)
		}
		columns[spec.Column] = struct{}{}
		s.byName[spec.Name] = idx
	}
	for _, key := range s.Key {
		if _, ok := s.byName[key]; !ok {
			return fmt.Errorf("schema %s: key field %s is not declared", s.Kind, key)
		}
	}
	for name := range s.Placeholders {
		if _, ok := s.byName[name]; !ok {
			return fmt.Errorf("schema %s: placeholder field %s is not declared", s.Kind, name)
		}
	}
	return nil
}

// TeamRegionPlaceholder marks a team whose region has not been observed yet.
const TeamRegionPlaceholder = "Unknown"

func text(name Field) FieldSpec { return FieldSpec{Name: name, Type: TypeText} }

func textMax(name Field, max int) FieldSpec {
	return FieldSpec{Name: name, Type: TypeText, MaxLen: max}
}

func integer(name Field) FieldSpec  { return FieldSpec{Name: name, Type: TypeInt} }
func float(name Field) FieldSpec    { return FieldSpec{Name: name, Type: TypeFloat} }
func percent(name Field) FieldSpec  { return FieldSpec{Name: name, Type: TypePercent} }
func duration(name Field) FieldSpec { return FieldSpec{Name: name, Type: TypeDuration} }
func date(name Field) FieldSpec     { return FieldSpec{Name: name, Type: TypeDate} }

func init() {
	register(&Schema{
		Kind:  KindChampion,
		Table: "champions",
		Key:   []Field{FieldName},
		Fields: []FieldSpec{
			textMax(FieldName, 100),
			date("release_date"),
			textMax("primary_damage_type", 50),
		},
		Placeholders: Values{"primary_damage_type": ""},
	})
	register(&Schema{
		Kind:   KindPatch,
		Table:  "patches",
		Key:    []Field{FieldVersion},
		Fields: []FieldSpec{textMax(FieldVersion, 20), date("release_date")},
	})
	register(&Schema{
		Kind:         KindTeam,
		Table:        "teams",
		Key:          []Field{FieldName},
		Fields:       []FieldSpec{textMax(FieldName, 100), textMax(FieldRegion, 50)},
		Placeholders: Values{FieldRegion: TeamRegionPlaceholder},
	})
	register(&Schema{
		Kind:   KindSeason,
		Table:  "seasons",
		Key:    []Field{FieldName},
		Fields: []FieldSpec{textMax(FieldName, 100)},
	})
	register(&Schema{
		Kind:  KindTournament,
		Table: "tournaments",
		Key:   []Field{FieldName, FieldSeasonName},
		Fields: []FieldSpec{
			textMax(FieldName, 200),
			textMax(FieldSeasonName, 100),
			textMax("tier", 50),
			textMax(FieldRegion, 10),
			date("last_game_date"),
			text(FieldDetailsURL),
		},
		Placeholders: Values{"tier": "", FieldRegion: ""},
	})
	register(&Schema{
		Kind:  KindMatch,
		Table: "matches",
		Key:   []Field{FieldMatchURL},
		Fields: []FieldSpec{
			text(FieldMatchURL),
			{Name: FieldTournament, Type: TypeRef, Ref: KindTournament, RefMode: RefExisting},
			{Name: FieldTeamOne, Type: TypeRef, Ref: KindTeam},
			{Name: FieldTeamTwo, Type: TypeRef, Ref: KindTeam},
			integer("team_one_score"),
			integer("team_two_score"),
			textMax("week", 50),
			textMax("patch", 20),
			date("match_date"),
		},
	})
	register(&Schema{
		Kind:  KindChampionSeasonStats,
		Table: "champion_season_stats",
		Key:   []Field{FieldName, FieldSeason},
		Fields: []FieldSpec{
			{Name: FieldName, Type: TypeRef, Ref: KindChampion, Column: "champion_id"},
			{Name: FieldSeason, Type: TypeRef, Ref: KindSeason},
			integer("picks"),
			integer("bans"),
			percent("prioscore"),
			integer("wins"),
			integer("losses"),
			percent("winrate"),
			float("kda"),
			float("avg_bt"),
			float("avg_rp"),
			duration("gt"),
			float("csm"),
			integer("dpm"),
			integer("gpm"),
			integer("csd_15"),
			integer("gd_15"),
			integer("xpd_15"),
		},
	})
	register(&Schema{
		Kind:  KindTeamSeasonStats,
		Table: "team_season_stats",
		Key:   []Field{FieldTeamName, FieldSeason},
		Fields: []FieldSpec{
			{
				Name:   FieldTeamName,
				Type:   TypeRef,
				Ref:    KindTeam,
				Column: "team_id",
				RefAux: map[Field]Field{FieldRegion: FieldRegion},
			},
			{Name: FieldSeason, Type: TypeRef, Ref: KindSeason},
			textMax(FieldRegion, 10),
			integer("games"),
			percent("winrate"),
			float("kill_death_ratio"),
			integer("gpm"),
			integer("gdm"),
			duration("game_duration"),
			float("kills_per_game"),
			float("deaths_per_game"),
			float("towers_killed"),
			float("towers_lost"),
			percent("first_blood_percent"),
			percent("first_tower_percent"),
			percent("first_objective_percent"),
			float("dragons_per_game"),
			percent("dragon_control_percent"),
			float("void_grub_per_game"),
			percent("herald_percent"),
			percent("atakhan_percent"),
			float("dragons_at_15"),
			float("tower_difference_15"),
			integer("gold_difference_15"),
			float("points_per_game"),
			float("nashors_per_game"),
			percent("nashor_percent"),
			float("csm"),
			integer("dpm"),
			float("wards_per_minute"),
			float("vision_wards_per_minute"),
			float("wards_cleared_per_minute"),
		},
	})
}
