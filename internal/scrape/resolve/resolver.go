// Package resolve finds or creates referenced entities by natural key,
// memoized per ingestion run.
package resolve

import (
	"context"
	"fmt"
	"strings"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/esports-stats/internal/domain/entity"
	"github.com/riskibarqy/esports-stats/internal/platform/logging"
)

// ErrNotFound is returned by Lookup when the entity does not exist.
var ErrNotFound = crerr.New("referenced entity not found")

// Cache memoizes resolved entities for one run. The zero value is not
// usable; create one with NewCache per run and drop it afterwards.
type Cache struct {
	entries map[string]entity.Record
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]entity.Record)}
}

func (c *Cache) Len() int {
	return len(c.entries)
}

func (c *Cache) get(kind entity.Kind, key entity.Values) (entity.Record, bool) {
	record, ok := c.entries[cacheKey(kind, key)]
	return record, ok
}

func (c *Cache) put(kind entity.Kind, key entity.Values, record entity.Record) {
	c.entries[cacheKey(kind, key)] = record
}

func cacheKey(kind entity.Kind, key entity.Values) string {
	var b strings.Builder
	b.WriteString(string(kind))
	for _, field := range key.SortedFields() {
		fmt.Fprintf(&b, "|%s=%v", field, key[field])
	}
	return b.String()
}

type Resolver struct {
	logger *logging.Logger
}

func New(logger *logging.Logger) *Resolver {
	if logger == nil {
		logger = logging.Default()
	}
	return &Resolver{logger: logger}
}

// Resolve returns the entity identified by key, creating it with schema
// placeholders when missing. Real observed text values (non-blank and not a
// placeholder) are written to the entity when they differ from the stored
// ones, keeping the same identity.
func (r *Resolver) Resolve(
	ctx context.Context,
	tx entity.Tx,
	cache *Cache,
	kind entity.Kind,
	key entity.Values,
	observed entity.Values,
) (entity.Record, error) {
	schema, err := entity.SchemaFor(kind)
	if err != nil {
		return entity.Record{}, err
	}
	if err := schema.CheckKey(key); err != nil {
		return entity.Record{}, err
	}
	real := realValues(schema, observed)

	record, ok := cache.get(kind, key)
	if !ok {
		defaults := schema.Placeholders.Clone()
		if defaults == nil {
			defaults = entity.Values{}
		}
		for field, value := range real {
			defaults[field] = value
		}

		var created bool
		record, created, err = tx.GetOrCreate(ctx, kind, key, schema.Normalize(defaults))
		if err != nil {
			return entity.Record{}, crerr.Wrapf(err, "get or create %s", kind)
		}
		if created {
			r.logger.DebugContext(ctx, "created placeholder entity", "kind", kind, "id", record.ID)
		}
		cache.put(kind, key, record)
	}

	return r.refresh(ctx, tx, cache, schema, key, record, real)
}

// Lookup returns the existing entity identified by key, or ErrNotFound.
func (r *Resolver) Lookup(
	ctx context.Context,
	tx entity.Tx,
	cache *Cache,
	kind entity.Kind,
	key entity.Values,
) (entity.Record, error) {
	schema, err := entity.SchemaFor(kind)
	if err != nil {
		return entity.Record{}, err
	}
	if err := schema.CheckKey(key); err != nil {
		return entity.Record{}, err
	}
	if record, ok := cache.get(kind, key); ok {
		return record, nil
	}

	record, found, err := tx.Find(ctx, kind, key)
	if err != nil {
		return entity.Record{}, crerr.Wrapf(err, "find %s", kind)
	}
	if !found {
		return entity.Record{}, fmt.Errorf("%w: %s %s", ErrNotFound, kind, cacheKey(kind, key))
	}
	cache.put(kind, key, record)
	return record, nil
}

func (r *Resolver) refresh(
	ctx context.Context,
	tx entity.Tx,
	cache *Cache,
	schema *entity.Schema,
	key entity.Values,
	record entity.Record,
	real entity.Values,
) (entity.Record, error) {
	changes := entity.Values{}
	for field, value := range schema.Normalize(real) {
		if record.Values[field] != value {
			changes[field] = value
		}
	}
	if len(changes) == 0 {
		return record, nil
	}

	updated, err := tx.Update(ctx, schema.Kind, record.ID, changes)
	if err != nil {
		return entity.Record{}, crerr.Wrapf(err, "refresh %s", schema.Kind)
	}
	r.logger.DebugContext(ctx, "refreshed entity fields", "kind", schema.Kind, "id", record.ID, "fields", changes.SortedFields())
	cache.put(schema.Kind, key, updated)
	return updated, nil
}

func realValues(schema *entity.Schema, observed entity.Values) entity.Values {
	out := entity.Values{}
	for field, value := range observed {
		if _, ok := schema.Field(field); !ok || schema.IsKey(field) {
			continue
		}
		str, isStr := value.(string)
		if !isStr {
			continue
		}
		str = strings.TrimSpace(str)
		if str == "" {
			continue
		}
		if placeholder, ok := schema.Placeholders[field].(string); ok && placeholder == str {
			continue
		}
		out[field] = str
	}
	return out
}
