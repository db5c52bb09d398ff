package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/esports-stats/internal/domain/entity"
)

type table struct {
	nextID int64
	rows   []entity.Record
}

func (t *table) clone() *table {
	rows := make([]entity.Record, len(t.rows))
	for i, row := range t.rows {
		rows[i] = entity.Record{ID: row.ID, Values: row.Values.Clone()}
	}
	return &table{nextID: t.nextID, rows: rows}
}

// Store keeps every kind in process memory. Transactions are serialized and
// work on a copy that replaces the live tables on commit.
type Store struct {
	mu     sync.RWMutex
	tables map[entity.Kind]*table
}

func NewStore() *Store {
	tables := make(map[entity.Kind]*table)
	for _, kind := range entity.Kinds() {
		tables[kind] = &table{nextID: 1}
	}
	return &Store{tables: tables}
}

func (s *Store) List(_ context.Context, kind entity.Kind, query entity.Query) ([]entity.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, err := lookupTable(s.tables, kind)
	if err != nil {
		return nil, err
	}
	schema, _ := entity.SchemaFor(kind)
	if err := schema.CheckValues(query.Filter); err != nil {
		return nil, err
	}
	for _, field := range query.OrderBy {
		if _, ok := schema.Field(field); !ok {
			return nil, fmt.Errorf("%w: %s.%s", entity.ErrUnknownField, kind, field)
		}
	}

	out := make([]entity.Record, 0, len(t.rows))
	for _, row := range t.rows {
		if matches(row.Values, query.Filter) {
			out = append(out, entity.Record{ID: row.ID, Values: row.Values.Clone()})
		}
	}
	if len(query.OrderBy) > 0 {
		sort.SliceStable(out, func(i, j int) bool {
			for _, field := range query.OrderBy {
				if c := compareValues(out[i].Values[field], out[j].Values[field]); c != 0 {
					return c < 0
				}
			}
			return out[i].ID < out[j].ID
		})
	}
	if query.Limit > 0 && len(out) > query.Limit {
		out = out[:query.Limit]
	}
	return out, nil
}

func (s *Store) Count(_ context.Context, kind entity.Kind) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, err := lookupTable(s.tables, kind)
	if err != nil {
		return 0, err
	}
	return len(t.rows), nil
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx entity.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	working := make(map[entity.Kind]*table, len(s.tables))
	for kind, t := range s.tables {
		working[kind] = t.clone()
	}
	if err := fn(ctx, &memoryTx{tables: working}); err != nil {
		return err
	}
	s.tables = working
	return nil
}

type memoryTx struct {
	tables map[entity.Kind]*table
}

func (tx *memoryTx) Find(_ context.Context, kind entity.Kind, key entity.Values) (entity.Record, bool, error) {
	t, schema, err := tx.prepare(kind, key)
	if err != nil {
		return entity.Record{}, false, err
	}
	idx, err := findIndex(t, schema, key)
	if err != nil || idx < 0 {
		return entity.Record{}, false, err
	}
	return copyRecord(t.rows[idx]), true, nil
}

func (tx *memoryTx) GetOrCreate(_ context.Context, kind entity.Kind, key, defaults entity.Values) (entity.Record, bool, error) {
	t, schema, err := tx.prepare(kind, key)
	if err != nil {
		return entity.Record{}, false, err
	}
	if err := schema.CheckValues(defaults); err != nil {
		return entity.Record{}, false, err
	}
	idx, err := findIndex(t, schema, key)
	if err != nil {
		return entity.Record{}, false, err
	}
	if idx >= 0 {
		return copyRecord(t.rows[idx]), false, nil
	}
	return copyRecord(t.insert(schema, key, defaults)), true, nil
}

func (tx *memoryTx) UpdateOrCreate(_ context.Context, kind entity.Kind, key, defaults entity.Values) (entity.Record, bool, error) {
	t, schema, err := tx.prepare(kind, key)
	if err != nil {
		return entity.Record{}, false, err
	}
	if err := schema.CheckValues(defaults); err != nil {
		return entity.Record{}, false, err
	}
	idx, err := findIndex(t, schema, key)
	if err != nil {
		return entity.Record{}, false, err
	}
	if idx < 0 {
		return copyRecord(t.insert(schema, key, defaults)), true, nil
	}
	for field, value := range defaults {
		if schema.IsKey(field) {
			continue
		}
		t.rows[idx].Values[field] = value
	}
	return copyRecord(t.rows[idx]), false, nil
}

func (tx *memoryTx) Update(_ context.Context, kind entity.Kind, id int64, values entity.Values) (entity.Record, error) {
	t, err := lookupTable(tx.tables, kind)
	if err != nil {
		return entity.Record{}, err
	}
	schema, _ := entity.SchemaFor(kind)
	if err := schema.CheckValues(values); err != nil {
		return entity.Record{}, err
	}
	for idx := range t.rows {
		if t.rows[idx].ID != id {
			continue
		}
		for field, value := range values {
			t.rows[idx].Values[field] = value
		}
		return copyRecord(t.rows[idx]), nil
	}
	return entity.Record{}, fmt.Errorf("%w: %s id=%d", entity.ErrRecordNotFound, kind, id)
}

func (tx *memoryTx) prepare(kind entity.Kind, key entity.Values) (*table, *entity.Schema, error) {
	t, err := lookupTable(tx.tables, kind)
	if err != nil {
		return nil, nil, err
	}
	schema, _ := entity.SchemaFor(kind)
	if err := schema.CheckKey(key); err != nil {
		return nil, nil, err
	}
	return t, schema, nil
}

func (t *table) insert(schema *entity.Schema, key, defaults entity.Values) entity.Record {
	values := make(entity.Values, len(schema.Fields))
	for _, spec := range schema.Fields {
		values[spec.Name] = nil
	}
	for field, value := range defaults {
		values[field] = value
	}
	for field, value := range key {
		values[field] = value
	}
	record := entity.Record{ID: t.nextID, Values: values}
	t.nextID++
	t.rows = append(t.rows, record)
	return record
}

func findIndex(t *table, schema *entity.Schema, key entity.Values) (int, error) {
	found := -1
	for idx, row := range t.rows {
		if !matches(row.Values, key) {
			continue
		}
		if found >= 0 {
			return -1, fmt.Errorf("%w: %s", entity.ErrAmbiguousLookup, schema.Kind)
		}
		found = idx
	}
	return found, nil
}

func lookupTable(tables map[entity.Kind]*table, kind entity.Kind) (*table, error) {
	t, ok := tables[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", entity.ErrUnknownKind, kind)
	}
	return t, nil
}

func copyRecord(record entity.Record) entity.Record {
	return entity.Record{ID: record.ID, Values: record.Values.Clone()}
}

func matches(values, filter entity.Values) bool {
	for field, want := range filter {
		if compareValues(values[field], want) != 0 {
			return false
		}
	}
	return true
}

// compareValues orders nil first, then by the dynamic type of a.
func compareValues(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv)
		}
	case int:
		if bv, ok := toFloat(b); ok {
			return compareFloat(float64(av), bv)
		}
	case int64:
		if bv, ok := toFloat(b); ok {
			return compareFloat(float64(av), bv)
		}
	case float64:
		if bv, ok := toFloat(b); ok {
			return compareFloat(av, bv)
		}
	case time.Duration:
		if bv, ok := b.(time.Duration); ok {
			return compareFloat(float64(av), float64(bv))
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv)
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func toFloat(v any) (float64, bool) {
	switch typed := v.(type) {
	case int:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case float64:
		return typed, true
	default:
		return 0, false
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
