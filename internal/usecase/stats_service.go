package usecase

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/riskibarqy/esports-stats/internal/domain/entity"
	"github.com/riskibarqy/esports-stats/internal/platform/logging"
	"github.com/riskibarqy/esports-stats/internal/scrape/coerce"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"
)

const overviewWorkers = 4

// Resources maps public collection names onto entity kinds.
var Resources = map[string]entity.Kind{
	"champions":             entity.KindChampion,
	"patches":               entity.KindPatch,
	"teams":                 entity.KindTeam,
	"seasons":               entity.KindSeason,
	"tournaments":           entity.KindTournament,
	"matches":               entity.KindMatch,
	"champion-season-stats": entity.KindChampionSeasonStats,
	"team-season-stats":     entity.KindTeamSeasonStats,
}

// ResourceNames lists Resources keys in lexical order.
func ResourceNames() []string {
	out := make([]string, 0, len(Resources))
	for name := range Resources {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

type KindCount struct {
	Kind  entity.Kind `json:"kind"`
	Count int         `json:"count"`
}

type StatsService struct {
	reader entity.Reader
	logger *logging.Logger
}

func NewStatsService(reader entity.Reader, logger *logging.Logger) *StatsService {
	if logger == nil {
		logger = logging.Default()
	}
	return &StatsService{reader: reader, logger: logger}
}

// List returns the rows of resource matching every filter exactly, ordered by
// natural key. Filter names are schema fields; reference fields take row ids.
func (s *StatsService) List(ctx context.Context, resource string, filters map[string]string) ([]entity.Record, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.List",
		attribute.String("stats.resource", resource),
		attribute.Int("stats.filters", len(filters)),
	)
	defer span.End()

	kind, ok := Resources[resource]
	if !ok {
		return nil, fmt.Errorf("%w: unknown resource %q", ErrNotFound, resource)
	}
	schema, err := entity.SchemaFor(kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	filter, err := parseFilter(schema, filters)
	if err != nil {
		return nil, err
	}

	records, err := s.reader.List(ctx, kind, entity.Query{Filter: filter, OrderBy: schema.Key})
	if err != nil {
		return nil, failSpan(span, fmt.Errorf("list %s: %w", kind, err))
	}
	span.SetAttributes(attribute.Int("stats.rows", len(records)))
	return records, nil
}

// Overview counts the rows of every kind.
func (s *StatsService) Overview(ctx context.Context) ([]KindCount, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.Overview")
	defer span.End()

	p := pool.NewWithResults[KindCount]().
		WithContext(ctx).
		WithCancelOnError().
		WithMaxGoroutines(overviewWorkers)
	for _, kind := range entity.Kinds() {
		p.Go(func(ctx context.Context) (KindCount, error) {
			count, err := s.reader.Count(ctx, kind)
			if err != nil {
				return KindCount{}, fmt.Errorf("count %s: %w", kind, err)
			}
			return KindCount{Kind: kind, Count: count}, nil
		})
	}
	counts, err := p.Wait()
	if err != nil {
		s.logger.WarnContext(ctx, "overview counts failed", "error", err)
		return nil, failSpan(span, err)
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Kind < counts[j].Kind })
	return counts, nil
}

func parseFilter(schema *entity.Schema, filters map[string]string) (entity.Values, error) {
	if len(filters) == 0 {
		return nil, nil
	}
	out := make(entity.Values, len(filters))
	for name, raw := range filters {
		spec, ok := schema.Field(entity.Field(name))
		if !ok {
			return nil, fmt.Errorf("%w: unknown filter %q for %s", ErrInvalidInput, name, schema.Kind)
		}
		value, err := parseFilterValue(spec, strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("%w: filter %s: %v", ErrInvalidInput, name, err)
		}
		out[spec.Name] = value
	}
	return out, nil
}

func parseFilterValue(spec entity.FieldSpec, raw string) (any, error) {
	switch spec.Type {
	case entity.TypeText:
		return raw, nil
	case entity.TypeInt:
		return coerce.ParseInt(raw)
	case entity.TypeFloat:
		return coerce.ParseFloat(raw)
	case entity.TypePercent:
		return coerce.ParsePercent(raw)
	case entity.TypeDuration:
		return coerce.ParseDuration(raw)
	case entity.TypeDate:
		return coerce.ParseDate(raw)
	case entity.TypeRef:
		return strconv.ParseInt(raw, 10, 64)
	default:
		return nil, fmt.Errorf("unsupported field type %s", spec.Type)
	}
}
