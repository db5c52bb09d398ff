// Package upsert persists candidate records idempotently inside one
// transaction per call.
package upsert

import (
	"context"
	"fmt"
	"strings"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/esports-stats/internal/domain/entity"
	"github.com/riskibarqy/esports-stats/internal/platform/logging"
	"github.com/riskibarqy/esports-stats/internal/scrape/resolve"
)

// Skip reasons.
const (
	ReasonMissingCoreFields = "missing_core_fields"
	ReasonInvalidReference  = "invalid_reference"
	ReasonInvalidRecord     = "invalid_record"
)

// NotFoundReason is the skip reason for an unresolved lookup-only reference.
func NotFoundReason(kind entity.Kind) string {
	return string(kind) + "_not_found"
}

type Upserter struct {
	store    entity.Store
	resolver *resolve.Resolver
	logger   *logging.Logger
}

func New(store entity.Store, logger *logging.Logger) *Upserter {
	if logger == nil {
		logger = logging.Default()
	}
	return &Upserter{
		store:    store,
		resolver: resolve.New(logger),
		logger:   logger,
	}
}

// Upsert writes records in a single transaction. Records that cannot be
// resolved are skipped with a reason; storage faults and ambiguous lookups
// roll back the whole batch and are returned.
func (u *Upserter) Upsert(ctx context.Context, records []entity.CandidateRecord) (entity.Result, error) {
	result := entity.Result{Skipped: []entity.Skip{}}
	if len(records) == 0 {
		return result, nil
	}

	err := u.store.WithinTx(ctx, func(ctx context.Context, tx entity.Tx) error {
		cache := resolve.NewCache()
		batch := entity.Result{Skipped: []entity.Skip{}}
		for _, record := range records {
			created, skip, err := u.upsertOne(ctx, tx, cache, record)
			if err != nil {
				return err
			}
			switch {
			case skip != nil:
				batch.Skipped = append(batch.Skipped, *skip)
			case created:
				batch.Created++
			default:
				batch.Updated++
			}
		}
		result = batch
		return nil
	})
	if err != nil {
		return entity.Result{}, err
	}

	u.logger.InfoContext(ctx, "upsert batch committed",
		"records", len(records),
		"created", result.Created,
		"updated", result.Updated,
		"skipped", len(result.Skipped),
	)
	return result, nil
}

func (u *Upserter) upsertOne(
	ctx context.Context,
	tx entity.Tx,
	cache *resolve.Cache,
	record entity.CandidateRecord,
) (bool, *entity.Skip, error) {
	schema, err := entity.SchemaFor(record.Kind)
	if err != nil {
		return false, skipOf(ReasonInvalidRecord, record, err), nil
	}

	values := record.Defaults.Clone()
	if values == nil {
		values = entity.Values{}
	}
	for field, value := range record.Lookup {
		values[field] = value
	}
	if err := schema.CheckValues(values); err != nil {
		return false, skipOf(ReasonInvalidRecord, record, err), nil
	}

	refs := schema.RefFields()
	keys := make([]entity.Values, len(refs))
	for idx, spec := range refs {
		raw, ok := values[spec.Name]
		if !ok || isBlank(raw) {
			return false, skipOf(ReasonMissingCoreFields, record, fmt.Errorf("%s is missing", spec.Name)), nil
		}
		refSchema, err := entity.SchemaFor(spec.Ref)
		if err != nil {
			return false, nil, err
		}
		keys[idx], err = refSchema.KeyFromRef(raw)
		if err != nil {
			if crerr.Is(err, entity.ErrMissingKey) {
				return false, skipOf(ReasonMissingCoreFields, record, err), nil
			}
			return false, skipOf(ReasonInvalidReference, record, err), nil
		}
	}

	// Lookup-only references go first so a missing one creates nothing.
	order := make([]int, 0, len(refs))
	for idx, spec := range refs {
		if spec.RefMode == entity.RefExisting {
			order = append(order, idx)
		}
	}
	for idx, spec := range refs {
		if spec.RefMode != entity.RefExisting {
			order = append(order, idx)
		}
	}

	for _, idx := range order {
		spec := refs[idx]
		var (
			ref entity.Record
			err error
		)
		if spec.RefMode == entity.RefExisting {
			ref, err = u.resolver.Lookup(ctx, tx, cache, spec.Ref, keys[idx])
			if crerr.Is(err, resolve.ErrNotFound) {
				return false, skipOf(NotFoundReason(spec.Ref), record, err), nil
			}
		} else {
			ref, err = u.resolver.Resolve(ctx, tx, cache, spec.Ref, keys[idx], observedAux(spec, values))
		}
		if err != nil {
			return false, nil, err
		}

		values[spec.Name] = ref.ID
		for recordField, refField := range spec.RefAux {
			if isBlank(values[recordField]) {
				values[recordField] = ref.Values[refField]
			}
		}
	}

	for field, placeholder := range schema.Placeholders {
		if _, ok := values[field]; !ok {
			values[field] = placeholder
		}
	}
	values = schema.Normalize(values)

	key := make(entity.Values, len(schema.Key))
	defaults := make(entity.Values, len(values))
	for field, value := range values {
		if schema.IsKey(field) {
			key[field] = value
			continue
		}
		defaults[field] = value
	}
	if err := schema.CheckKey(key); err != nil {
		return false, skipOf(ReasonMissingCoreFields, record, err), nil
	}

	_, created, err := tx.UpdateOrCreate(ctx, schema.Kind, key, defaults)
	if err != nil {
		return false, nil, crerr.Wrapf(err, "upsert %s", schema.Kind)
	}
	return created, nil, nil
}

func observedAux(spec entity.FieldSpec, values entity.Values) entity.Values {
	if len(spec.RefAux) == 0 {
		return nil
	}
	out := make(entity.Values, len(spec.RefAux))
	for recordField, refField := range spec.RefAux {
		if value, ok := values[recordField]; ok {
			out[refField] = value
		}
	}
	return out
}

func skipOf(reason string, record entity.CandidateRecord, cause error) *entity.Skip {
	data := record.Export()
	if cause != nil {
		data["error"] = cause.Error()
	}
	return &entity.Skip{Reason: reason, Data: data}
}

func isBlank(value any) bool {
	switch typed := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(typed) == ""
	default:
		return false
	}
}
