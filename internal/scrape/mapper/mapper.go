// Package mapper turns table rows into candidate records using static,
// schema-checked column tables.
package mapper

import (
	"fmt"
	"net/url"
	"strings"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/esports-stats/internal/domain/entity"
	"github.com/riskibarqy/esports-stats/internal/platform/logging"
	"github.com/riskibarqy/esports-stats/internal/scrape/coerce"
)

var (
	ErrBlankNaturalKey = crerr.New("natural key field is blank")
	ErrShortRow        = crerr.New("row has too few cells")
	ErrInvalidColumns  = crerr.New("invalid column map")
)

// Source selects what a column reads from a cell.
type Source int

const (
	SourceText Source = iota
	SourceLink
)

// Column binds one table column to a schema field. Header-keyed columns set
// Header (matched lowercased and trimmed); positional columns set Index.
type Column struct {
	Header string
	Index  int
	Field  entity.Field
	Coerce coerce.Kind
	Source Source
	// BaseURL resolves relative links of SourceLink columns.
	BaseURL string
	// Split cuts the cell on Sep and reads part Part, e.g. "1-0".
	Sep  string
	Part int
	// Nullable yields nil instead of the zero value on fallback.
	Nullable bool
}

// ColumnMap is an immutable, validated column table for one entity kind.
type ColumnMap struct {
	kind     entity.Kind
	schema   *entity.Schema
	key      entity.Field
	minCells int
	columns  []Column
	byHeader map[string]Column
}

type Option func(*ColumnMap)

// WithMinCells rejects rows with fewer than n cells.
func WithMinCells(n int) Option {
	return func(m *ColumnMap) {
		m.minCells = n
	}
}

var compatible = map[coerce.Kind][]entity.FieldType{
	coerce.Text:     {entity.TypeText, entity.TypeRef},
	coerce.Int:      {entity.TypeInt},
	coerce.Float:    {entity.TypeFloat},
	coerce.Percent:  {entity.TypePercent},
	coerce.Duration: {entity.TypeDuration},
	coerce.Date:     {entity.TypeDate},
}

// NewColumnMap validates columns against the schema of kind. key is the
// field whose blank value rejects a row.
func NewColumnMap(kind entity.Kind, key entity.Field, columns []Column, opts ...Option) (*ColumnMap, error) {
	schema, err := entity.SchemaFor(kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidColumns, err)
	}
	if _, ok := schema.Field(key); !ok {
		return nil, fmt.Errorf("%w: key field %s.%s is not declared", ErrInvalidColumns, kind, key)
	}

	m := &ColumnMap{
		kind:     kind,
		schema:   schema,
		key:      key,
		columns:  make([]Column, 0, len(columns)),
		byHeader: make(map[string]Column, len(columns)),
	}
	positions := make(map[string]struct{}, len(columns))
	for _, col := range columns {
		spec, ok := schema.Field(col.Field)
		if !ok {
			return nil, fmt.Errorf("%w: field %s.%s is not declared", ErrInvalidColumns, kind, col.Field)
		}
		if !typeAllowed(col.Coerce, spec.Type) {
			return nil, fmt.Errorf("%w: coercer %s cannot fill %s field %s", ErrInvalidColumns, col.Coerce, spec.Type, col.Field)
		}
		if col.Header != "" {
			header := NormalizeHeader(col.Header)
			if _, dup := m.byHeader[header]; dup {
				return nil, fmt.Errorf("%w: duplicate header %q", ErrInvalidColumns, header)
			}
			col.Header = header
			m.byHeader[header] = col
		} else {
			if col.Index < 0 {
				return nil, fmt.Errorf("%w: negative index for %s", ErrInvalidColumns, col.Field)
			}
			pos := fmt.Sprintf("%d/%d/%d", col.Index, col.Source, col.Part)
			if _, dup := positions[pos]; dup {
				return nil, fmt.Errorf("%w: duplicate column %d for %s", ErrInvalidColumns, col.Index, col.Field)
			}
			positions[pos] = struct{}{}
		}
		m.columns = append(m.columns, col)
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// MustColumnMap is NewColumnMap for package level tables.
func MustColumnMap(kind entity.Kind, key entity.Field, columns []Column, opts ...Option) *ColumnMap {
	m, err := NewColumnMap(kind, key, columns, opts...)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *ColumnMap) Kind() entity.Kind { return m.kind }

func (m *ColumnMap) KeyField() entity.Field { return m.key }

// Fields lists the distinct fields the map can produce, in column order.
func (m *ColumnMap) Fields() []entity.Field {
	seen := make(map[entity.Field]struct{}, len(m.columns))
	out := make([]entity.Field, 0, len(m.columns))
	for _, col := range m.columns {
		if _, ok := seen[col.Field]; ok {
			continue
		}
		seen[col.Field] = struct{}{}
		out = append(out, col.Field)
	}
	return out
}

// Context carries caller supplied values for one mapping call.
type Context struct {
	// Defaults fill fields that the row leaves absent or blank.
	Defaults entity.Values
	Logger   *logging.Logger
}

// Map converts one row of cell text into a candidate record.
func (m *ColumnMap) Map(headers, cells []string, mctx Context) (entity.CandidateRecord, error) {
	return m.MapRow(headers, cells, nil, mctx)
}

// MapRow is Map with the per-cell links of the row.
func (m *ColumnMap) MapRow(headers, cells, links []string, mctx Context) (entity.CandidateRecord, error) {
	if len(cells) < m.minCells {
		return entity.CandidateRecord{}, fmt.Errorf("%w: got %d, want %d", ErrShortRow, len(cells), m.minCells)
	}
	logger := mctx.Logger
	if logger == nil {
		logger = logging.Default()
	}

	values := make(entity.Values, len(m.columns))
	set := func(col Column, raw string) {
		if col.Source == SourceLink {
			raw = absoluteURL(col.BaseURL, raw)
		}
		if col.Sep != "" {
			raw = splitPart(raw, col.Sep, col.Part)
		}
		value, err := coerce.Apply(col.Coerce, raw)
		if err != nil {
			if !crerr.Is(err, coerce.ErrMissing) {
				logger.Debug("coercion fallback", "kind", m.kind, "field", col.Field, "raw", raw, "error", err)
			}
			if col.Nullable {
				value = nil
			}
		}
		if _, exists := values[col.Field]; exists && isBlank(value) {
			return
		}
		values[col.Field] = value
	}

	for _, col := range m.columns {
		if col.Header != "" {
			continue
		}
		source := cells
		if col.Source == SourceLink {
			source = links
		}
		set(col, at(source, col.Index))
	}
	if len(m.byHeader) > 0 {
		matched := make(map[string]struct{}, len(headers))
		for idx, header := range headers {
			col, ok := m.byHeader[NormalizeHeader(header)]
			if !ok {
				continue
			}
			matched[col.Header] = struct{}{}
			set(col, at(cells, idx))
		}
		for _, col := range m.columns {
			if col.Header == "" {
				continue
			}
			if _, ok := matched[col.Header]; !ok {
				if _, exists := values[col.Field]; !exists {
					set(col, "")
				}
			}
		}
	}

	for field, value := range mctx.Defaults {
		if current, ok := values[field]; !ok || isBlank(current) {
			values[field] = value
		}
	}

	if isBlank(values[m.key]) {
		return entity.CandidateRecord{}, fmt.Errorf("%w: %s.%s", ErrBlankNaturalKey, m.kind, m.key)
	}

	record := entity.CandidateRecord{Kind: m.kind, Lookup: entity.Values{}, Defaults: entity.Values{}}
	for field, value := range values {
		if m.schema.IsKey(field) {
			if !isBlank(value) {
				record.Lookup[field] = value
			}
			continue
		}
		record.Defaults[field] = value
	}
	return record, nil
}

// NormalizeHeader lowercases and trims header text.
func NormalizeHeader(header string) string {
	return strings.ToLower(strings.TrimSpace(header))
}

func at(cells []string, idx int) string {
	if idx < 0 || idx >= len(cells) {
		return ""
	}
	return cells[idx]
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

func splitPart(raw, sep string, part int) string {
	parts := strings.Split(strings.ReplaceAll(strings.TrimSpace(raw), " ", ""), sep)
	if len(parts) != 2 || part < 0 || part >= len(parts) {
		return ""
	}
	return parts[part]
}

func absoluteURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || base == "" {
		return href
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}

func typeAllowed(kind coerce.Kind, fieldType entity.FieldType) bool {
	for _, allowed := range compatible[kind] {
		if allowed == fieldType {
			return true
		}
	}
	return false
}
