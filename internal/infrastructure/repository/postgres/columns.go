package postgres

import (
	"fmt"
	"strconv"
	"time"

	"github.com/riskibarqy/esports-stats/internal/domain/entity"
	qb "github.com/riskibarqy/esports-stats/internal/platform/querybuilder"
)

// selectColumns lists id and every schema column in declaration order.
// Durations are read back as whole seconds.
func selectColumns(schema *entity.Schema) []string {
	out := make([]string, 0, len(schema.Fields)+1)
	out = append(out, qb.Ident(idColumn))
	for _, spec := range schema.Fields {
		column := qb.Ident(spec.Column)
		if spec.Type == entity.TypeDuration {
			column = fmt.Sprintf("EXTRACT(EPOCH FROM %s)::bigint AS %s", column, column)
		}
		out = append(out, column)
	}
	return out
}

// toDB converts a typed value into a driver argument.
func toDB(spec entity.FieldSpec, value any) any {
	switch typed := value.(type) {
	case nil:
		return nil
	case time.Duration:
		return fmt.Sprintf("%d seconds", int64(typed/time.Second))
	case int:
		return int64(typed)
	default:
		return value
	}
}

func recordFromRow(schema *entity.Schema, raw []any) (entity.Record, error) {
	if len(raw) != len(schema.Fields)+1 {
		return entity.Record{}, fmt.Errorf("%s row has %d columns, want %d", schema.Kind, len(raw), len(schema.Fields)+1)
	}
	id, err := asInt64(raw[0])
	if err != nil {
		return entity.Record{}, fmt.Errorf("%s id: %w", schema.Kind, err)
	}

	record := entity.Record{ID: id, Values: make(entity.Values, len(schema.Fields))}
	for idx, spec := range schema.Fields {
		value, err := fromDB(spec, raw[idx+1])
		if err != nil {
			return entity.Record{}, fmt.Errorf("%s.%s: %w", schema.Kind, spec.Name, err)
		}
		record.Values[spec.Name] = value
	}
	return record, nil
}

// fromDB converts a scanned column into the typed value of spec.
func fromDB(spec entity.FieldSpec, raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}
	switch spec.Type {
	case entity.TypeText:
		switch typed := raw.(type) {
		case string:
			return typed, nil
		case []byte:
			return string(typed), nil
		}
	case entity.TypeInt:
		n, err := asInt64(raw)
		return int(n), err
	case entity.TypeRef:
		return asInt64(raw)
	case entity.TypeFloat, entity.TypePercent:
		return asFloat64(raw)
	case entity.TypeDuration:
		seconds, err := asInt64(raw)
		return time.Duration(seconds) * time.Second, err
	case entity.TypeDate:
		if t, ok := raw.(time.Time); ok {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return nil, fmt.Errorf("unexpected %T for %s column", raw, spec.Type)
}

func asInt64(raw any) (int64, error) {
	switch typed := raw.(type) {
	case int64:
		return typed, nil
	case int32:
		return int64(typed), nil
	case int:
		return int64(typed), nil
	case []byte:
		return strconv.ParseInt(string(typed), 10, 64)
	case string:
		return strconv.ParseInt(typed, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected integer type %T", raw)
	}
}

func asFloat64(raw any) (float64, error) {
	switch typed := raw.(type) {
	case float64:
		return typed, nil
	case float32:
		return float64(typed), nil
	case int64:
		return float64(typed), nil
	case []byte:
		return strconv.ParseFloat(string(typed), 64)
	case string:
		return strconv.ParseFloat(typed, 64)
	default:
		return 0, fmt.Errorf("unexpected numeric type %T", raw)
	}
}
