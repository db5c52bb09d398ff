package postgres

import (
	"context"
	"database/sql"
	"fmt"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/esports-stats/internal/domain/entity"
	"github.com/riskibarqy/esports-stats/internal/platform/logging"
	qb "github.com/riskibarqy/esports-stats/internal/platform/querybuilder"
)

const idColumn = "id"

// Store keeps every registered entity kind in its own table, one column per
// schema field.
type Store struct {
	db     *sqlx.DB
	logger *logging.Logger
}

func NewStore(db *sqlx.DB, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{db: db, logger: logger}
}

// queryer is satisfied by *sqlx.DB and *sqlx.Tx.
type queryer interface {
	QueryxContext(ctx context.Context, query string, args ...any) (*sqlx.Rows, error)
}

func (s *Store) List(ctx context.Context, kind entity.Kind, query entity.Query) ([]entity.Record, error) {
	schema, err := entity.SchemaFor(kind)
	if err != nil {
		return nil, err
	}
	if err := schema.CheckValues(query.Filter); err != nil {
		return nil, err
	}

	builder := qb.Select(selectColumns(schema)...).From(qb.Ident(schema.Table)).
		Where(conditions(schema, query.Filter)...).
		Limit(query.Limit)
	for _, field := range query.OrderBy {
		spec, ok := schema.Field(field)
		if !ok {
			return nil, fmt.Errorf("%w: order by %s.%s", entity.ErrUnknownField, kind, field)
		}
		builder.OrderBy(qb.Ident(spec.Column))
	}
	builder.OrderBy(qb.Ident(idColumn))

	sqlQuery, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list %s query: %w", kind, err)
	}
	records, err := selectRecords(ctx, s.db, schema, sqlQuery, args)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	return records, nil
}

func (s *Store) Count(ctx context.Context, kind entity.Kind) (int, error) {
	schema, err := entity.SchemaFor(kind)
	if err != nil {
		return 0, err
	}
	query, args, err := qb.Select("COUNT(*)").From(qb.Ident(schema.Table)).ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count %s query: %w", kind, err)
	}

	var count int
	if err := s.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count %s: %w", kind, err)
	}
	return count, nil
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx entity.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !crerr.Is(rbErr, sql.ErrTxDone) {
			s.logger.WarnContext(ctx, "rollback failed", "error", rbErr)
		}
	}()

	if err := fn(ctx, &pgTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return nil
}

type pgTx struct {
	tx *sqlx.Tx
}

func (t *pgTx) Find(ctx context.Context, kind entity.Kind, key entity.Values) (entity.Record, bool, error) {
	schema, err := keyedSchema(kind, key)
	if err != nil {
		return entity.Record{}, false, err
	}
	return t.find(ctx, schema, key)
}

func (t *pgTx) find(ctx context.Context, schema *entity.Schema, key entity.Values) (entity.Record, bool, error) {
	keyValues := make(entity.Values, len(schema.Key))
	for _, field := range schema.Key {
		keyValues[field] = key[field]
	}
	// LIMIT 2 is enough to detect an ambiguous natural key.
	query, args, err := qb.Select(selectColumns(schema)...).From(qb.Ident(schema.Table)).
		Where(conditions(schema, keyValues)...).
		OrderBy(qb.Ident(idColumn)).
		Limit(2).
		ToSQL()
	if err != nil {
		return entity.Record{}, false, fmt.Errorf("build find %s query: %w", schema.Kind, err)
	}

	records, err := selectRecords(ctx, t.tx, schema, query, args)
	if err != nil {
		return entity.Record{}, false, fmt.Errorf("find %s: %w", schema.Kind, err)
	}
	switch len(records) {
	case 0:
		return entity.Record{}, false, nil
	case 1:
		return records[0], true, nil
	default:
		return entity.Record{}, false, fmt.Errorf("%w: %s %v", entity.ErrAmbiguousLookup, schema.Kind, keyValues.Export())
	}
}

func (t *pgTx) GetOrCreate(ctx context.Context, kind entity.Kind, key, defaults entity.Values) (entity.Record, bool, error) {
	schema, err := keyedSchema(kind, key)
	if err != nil {
		return entity.Record{}, false, err
	}
	if err := schema.CheckValues(defaults); err != nil {
		return entity.Record{}, false, err
	}

	record, found, err := t.find(ctx, schema, key)
	if err != nil || found {
		return record, false, err
	}
	record, err = t.insert(ctx, schema, key, defaults)
	return record, err == nil, err
}

func (t *pgTx) UpdateOrCreate(ctx context.Context, kind entity.Kind, key, defaults entity.Values) (entity.Record, bool, error) {
	schema, err := keyedSchema(kind, key)
	if err != nil {
		return entity.Record{}, false, err
	}
	if err := schema.CheckValues(defaults); err != nil {
		return entity.Record{}, false, err
	}

	record, found, err := t.find(ctx, schema, key)
	if err != nil {
		return entity.Record{}, false, err
	}
	if !found {
		record, err = t.insert(ctx, schema, key, defaults)
		return record, err == nil, err
	}

	changes := make(entity.Values, len(defaults))
	for field, value := range defaults {
		if !schema.IsKey(field) {
			changes[field] = value
		}
	}
	if len(changes) == 0 {
		return record, false, nil
	}
	record, err = t.update(ctx, schema, record.ID, changes)
	return record, false, err
}

func (t *pgTx) Update(ctx context.Context, kind entity.Kind, id int64, values entity.Values) (entity.Record, error) {
	schema, err := entity.SchemaFor(kind)
	if err != nil {
		return entity.Record{}, err
	}
	if err := schema.CheckValues(values); err != nil {
		return entity.Record{}, err
	}
	return t.update(ctx, schema, id, values)
}

func (t *pgTx) insert(ctx context.Context, schema *entity.Schema, key, defaults entity.Values) (entity.Record, error) {
	values := defaults.Clone()
	if values == nil {
		values = entity.Values{}
	}
	for field, value := range key {
		values[field] = value
	}

	builder := qb.InsertInto(qb.Ident(schema.Table)).Returning(selectColumns(schema)...)
	for _, field := range values.SortedFields() {
		spec, _ := schema.Field(field)
		builder.Set(qb.Ident(spec.Column), toDB(spec, values[field]))
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return entity.Record{}, fmt.Errorf("build insert %s query: %w", schema.Kind, err)
	}

	records, err := selectRecords(ctx, t.tx, schema, query, args)
	if err != nil {
		if isUniqueViolation(err) {
			return entity.Record{}, fmt.Errorf("%w: insert %s: %v", entity.ErrConflict, schema.Kind, err)
		}
		return entity.Record{}, fmt.Errorf("insert %s: %w", schema.Kind, err)
	}
	if len(records) != 1 {
		return entity.Record{}, fmt.Errorf("insert %s returned %d rows", schema.Kind, len(records))
	}
	return records[0], nil
}

func (t *pgTx) update(ctx context.Context, schema *entity.Schema, id int64, values entity.Values) (entity.Record, error) {
	builder := qb.Update(qb.Ident(schema.Table)).
		Where(qb.Eq(qb.Ident(idColumn), id)).
		Returning(selectColumns(schema)...)
	for _, field := range values.SortedFields() {
		spec, _ := schema.Field(field)
		builder.Set(qb.Ident(spec.Column), toDB(spec, values[field]))
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return entity.Record{}, fmt.Errorf("build update %s query: %w", schema.Kind, err)
	}

	records, err := selectRecords(ctx, t.tx, schema, query, args)
	if err != nil {
		if isUniqueViolation(err) {
			return entity.Record{}, fmt.Errorf("%w: update %s: %v", entity.ErrConflict, schema.Kind, err)
		}
		return entity.Record{}, fmt.Errorf("update %s: %w", schema.Kind, err)
	}
	if len(records) == 0 {
		return entity.Record{}, fmt.Errorf("%w: %s id=%d", entity.ErrRecordNotFound, schema.Kind, id)
	}
	return records[0], nil
}

func keyedSchema(kind entity.Kind, key entity.Values) (*entity.Schema, error) {
	schema, err := entity.SchemaFor(kind)
	if err != nil {
		return nil, err
	}
	if err := schema.CheckKey(key); err != nil {
		return nil, err
	}
	return schema, nil
}

func conditions(schema *entity.Schema, filter entity.Values) []qb.Condition {
	out := make([]qb.Condition, 0, len(filter))
	for _, field := range filter.SortedFields() {
		spec, _ := schema.Field(field)
		out = append(out, qb.EqOrNull(qb.Ident(spec.Column), toDB(spec, filter[field])))
	}
	return out
}

func selectRecords(ctx context.Context, q queryer, schema *entity.Schema, query string, args []any) ([]entity.Record, error) {
	rows, err := q.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]entity.Record, 0)
	for rows.Next() {
		raw, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("scan %s row: %w", schema.Kind, err)
		}
		record, err := recordFromRow(schema, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return crerr.As(err, &pqErr) && pqErr.Code == "23505"
}
