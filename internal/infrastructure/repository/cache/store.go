// Package cache decorates an entity store with cached reads.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/riskibarqy/esports-stats/internal/domain/entity"
	basecache "github.com/riskibarqy/esports-stats/internal/platform/cache"
)

// Store serves List and Count from the cache and clears it after every
// committed transaction.
type Store struct {
	next  entity.Store
	cache *basecache.Store
}

func NewStore(next entity.Store, cache *basecache.Store) *Store {
	return &Store{next: next, cache: cache}
}

func (s *Store) List(ctx context.Context, kind entity.Kind, query entity.Query) ([]entity.Record, error) {
	v, err := s.cache.GetOrLoad(ctx, listKey(kind, query), func(ctx context.Context) (any, error) {
		return s.next.List(ctx, kind, query)
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]entity.Record)
	out := make([]entity.Record, len(items))
	for i, item := range items {
		out[i] = entity.Record{ID: item.ID, Values: item.Values.Clone()}
	}
	return out, nil
}

func (s *Store) Count(ctx context.Context, kind entity.Kind) (int, error) {
	v, err := s.cache.GetOrLoad(ctx, basecache.Key("count", string(kind)), func(ctx context.Context) (any, error) {
		return s.next.Count(ctx, kind)
	})
	if err != nil {
		return 0, err
	}
	count, _ := v.(int)
	return count, nil
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx entity.Tx) error) error {
	if err := s.next.WithinTx(ctx, fn); err != nil {
		return err
	}
	s.cache.Clear()
	return nil
}

func listKey(kind entity.Kind, query entity.Query) string {
	parts := []string{"list", string(kind)}
	for _, field := range query.Filter.SortedFields() {
		parts = append(parts, fmt.Sprintf("%s=%v", field, query.Filter[field]))
	}
	order := make([]string, len(query.OrderBy))
	for i, field := range query.OrderBy {
		order[i] = string(field)
	}
	parts = append(parts, "order="+strings.Join(order, ","), "limit="+strconv.Itoa(query.Limit))
	return basecache.Key(parts...)
}
