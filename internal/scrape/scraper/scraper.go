// Package scraper composes the fetcher, table locator and column maps into
// one scraper per source page kind.
package scraper

import (
	"context"
	"strings"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/esports-stats/internal/domain/entity"
	"github.com/riskibarqy/esports-stats/internal/infrastructure/fetch"
	"github.com/riskibarqy/esports-stats/internal/platform/logging"
	"github.com/riskibarqy/esports-stats/internal/scrape/htmltable"
	"github.com/riskibarqy/esports-stats/internal/scrape/mapper"
)

// Kind names a scraper.
type Kind string

const (
	KindChampions   Kind = "champions"
	KindTeams       Kind = "teams"
	KindTournaments Kind = "tournaments"
	KindMatches     Kind = "matches"
	KindPatches     Kind = "patches"
)

// Kinds lists every scraper kind in a stable order.
func Kinds() []Kind {
	return []Kind{KindChampions, KindTeams, KindTournaments, KindMatches, KindPatches}
}

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

const (
	RejectShortRow        = "short_row"
	RejectBlankNaturalKey = "blank_natural_key"
	RejectUnmappable      = "unmappable_row"
)

var (
	ErrNoSource      = crerr.New("source_url or file_path is required")
	ErrNoSeasonFiles = crerr.New("no tournament files matched the requested seasons")
	ErrNoTournaments = crerr.New("no tournaments matched the requested names")
)

// Request carries the caller's inputs. Scrapers ignore fields they do not use.
type Request struct {
	SourceURL   string   `json:"source_url"`
	FilePath    string   `json:"file_path"`
	Season      string   `json:"season"`
	Seasons     []string `json:"seasons"`
	Tournaments []string `json:"tournaments"`
}

// Source prefers the saved file over the url.
func (r Request) Source() string {
	if path := strings.TrimSpace(r.FilePath); path != "" {
		return path
	}
	return strings.TrimSpace(r.SourceURL)
}

// Payload is the outcome of scraping one page.
type Payload struct {
	Status     string                   `json:"status"`
	SourceURL  string                   `json:"source_url"`
	StatusCode int                      `json:"status_code,omitempty"`
	Encoding   string                   `json:"encoding,omitempty"`
	Local      bool                     `json:"local"`
	Table      *htmltable.RawTable      `json:"table"`
	Records    []entity.CandidateRecord `json:"records"`
	Count      int                      `json:"count"`
	Error      *string                  `json:"error"`
	TableCount int                      `json:"table_count"`
	Warnings   []string                 `json:"warnings"`
	Rejected   []entity.Skip            `json:"rejected"`
	Season     string                   `json:"season,omitempty"`
	Tournament string                   `json:"tournament,omitempty"`
}

func newPayload(source string) Payload {
	return Payload{
		Status:    StatusSuccess,
		SourceURL: source,
		Records:   []entity.CandidateRecord{},
		Warnings:  []string{},
		Rejected:  []entity.Skip{},
	}
}

func errorPayload(source string, err error) Payload {
	payload := newPayload(source)
	payload.fail(err)
	return payload
}

func (p *Payload) fail(err error) {
	msg := err.Error()
	p.Status = StatusError
	p.Error = &msg
}

// Failed reports whether the payload carries an error.
func (p Payload) Failed() bool {
	return p.Status == StatusError
}

// Scraper produces candidate records from one kind of page.
type Scraper interface {
	Kind() Kind
	Scrape(ctx context.Context, req Request) []Payload
}

// Registry indexes scrapers by kind.
type Registry map[Kind]Scraper

func NewRegistry(scrapers ...Scraper) Registry {
	out := make(Registry, len(scrapers))
	for _, s := range scrapers {
		out[s.Kind()] = s
	}
	return out
}

// Kinds lists registered kinds in the order of Kinds().
func (r Registry) Kinds() []Kind {
	out := make([]Kind, 0, len(r))
	for _, kind := range Kinds() {
		if _, ok := r[kind]; ok {
			out = append(out, kind)
		}
	}
	return out
}

// Fetcher is satisfied by *fetch.Fetcher.
type Fetcher interface {
	Fetch(ctx context.Context, source string) (fetch.Response, error)
}

// rowFilter drops rows silently before mapping.
type rowFilter func(cells []string) bool

// tablePage is the fetch, locate and map pipeline shared by all scrapers.
type tablePage struct {
	fetcher  Fetcher
	selector htmltable.Selector
	columns  *mapper.ColumnMap
	logger   *logging.Logger
}

func (t tablePage) run(ctx context.Context, source string, mctx mapper.Context, keep rowFilter) Payload {
	payload := newPayload(source)

	resp, err := t.fetcher.Fetch(ctx, source)
	payload.StatusCode = resp.StatusCode
	payload.Encoding = resp.Encoding
	payload.Local = resp.Local
	if err != nil {
		t.logger.WarnContext(ctx, "fetch page failed", "source", source, "error", err)
		payload.fail(err)
		return payload
	}

	t.parse(ctx, &payload, resp.Content, mctx, keep)
	return payload
}

func (t tablePage) parse(ctx context.Context, payload *Payload, content []byte, mctx mapper.Context, keep rowFilter) {
	doc, err := htmltable.Document(content)
	if err != nil {
		payload.fail(err)
		return
	}
	payload.TableCount = htmltable.CountTables(doc, htmltable.Selector{})

	raw, err := htmltable.Locate(doc, t.selector)
	if err != nil {
		t.logger.WarnContext(ctx, "locate table failed",
			"source", payload.SourceURL,
			"selector", t.selector.String(),
			"table_count", payload.TableCount,
		)
		payload.fail(err)
		return
	}
	payload.Table = &raw
	if htmltable.LooksClientRendered(raw) {
		payload.Warnings = append(payload.Warnings, "table looks client-rendered: many cells are empty without JavaScript")
	}

	if mctx.Logger == nil {
		mctx.Logger = t.logger
	}
	for idx, cells := range raw.Rows {
		if keep != nil && !keep(cells) {
			continue
		}
		var links []string
		if idx < len(raw.Links) {
			links = raw.Links[idx]
		}
		record, err := t.columns.MapRow(raw.Headers, cells, links, mctx)
		if err != nil {
			payload.Rejected = append(payload.Rejected, rejectOf(idx, cells, err))
			continue
		}
		payload.Records = append(payload.Records, record)
	}
	payload.Count = len(payload.Records)

	t.logger.DebugContext(ctx, "table mapped",
		"source", payload.SourceURL,
		"kind", t.columns.Kind(),
		"rows", len(raw.Rows),
		"records", payload.Count,
		"rejected", len(payload.Rejected),
	)
}

func rejectOf(row int, cells []string, err error) entity.Skip {
	reason := RejectUnmappable
	switch {
	case crerr.Is(err, mapper.ErrShortRow):
		reason = RejectShortRow
	case crerr.Is(err, mapper.ErrBlankNaturalKey):
		reason = RejectBlankNaturalKey
	}
	return entity.Skip{
		Reason: reason,
		Data: map[string]any{
			"row":   row,
			"cells": cells,
			"error": err.Error(),
		},
	}
}

func orDefault(logger *logging.Logger) *logging.Logger {
	if logger == nil {
		return logging.Default()
	}
	return logger
}
