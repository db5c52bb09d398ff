package htmltable

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func locate(t *testing.T, content string, sel Selector) (RawTable, error) {
	t.Helper()
	doc, err := Document([]byte(content))
	if err != nil {
		t.Fatalf("parse document: %v", err)
	}
	return Locate(doc, sel)
}

func TestLocate_TheadAndTbody(t *testing.T) {
	t.Parallel()

	content := `<html><body>
<table class="other"><tr><td>ignored</td></tr></table>
<table class="playerslist">
  <thead><tr><th> Champion </th><th>Picks</th></tr></thead>
  <tbody>
    <tr><td><a href="/champion/jinx">Jinx</a></td><td>1,200</td></tr>
    <tr><td>Ahri</td><td>-</td></tr>
  </tbody>
</table></body></html>`

	got, err := locate(t, content, Selector{Class: "playerslist"})
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	want := RawTable{
		Headers: []string{"Champion", "Picks"},
		Rows:    [][]string{{"Jinx", "1,200"}, {"Ahri", "-"}},
		Links:   [][]string{{"/champion/jinx", ""}, {"", ""}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected table (-want +got):\n%s", diff)
	}
}

func TestLocate_FirstRowIsHeaderWithoutThead(t *testing.T) {
	t.Parallel()

	content := `<table>
<tr><td>Name</td><td>Region</td></tr>
<tr><td>T1</td><td>KR</td></tr>
<tr><td>G2</td><td>EU</td></tr>
</table>`

	got, err := locate(t, content, Selector{})
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if diff := cmp.Diff([]string{"Name", "Region"}, got.Headers); diff != "" {
		t.Fatalf("unexpected headers (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([][]string{{"T1", "KR"}, {"G2", "EU"}}, got.Rows); diff != "" {
		t.Fatalf("unexpected rows (-want +got):\n%s", diff)
	}
}

func TestLocate_SkipsNestedTableRows(t *testing.T) {
	t.Parallel()

	content := `<table class="table_list">
<thead><tr><th>Game</th><th>Info</th></tr></thead>
<tbody>
<tr><td>G1</td><td><table><tr><td>inner</td></tr></table></td></tr>
</tbody></table>`

	got, err := locate(t, content, Selector{Class: "table_list"})
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if len(got.Rows) != 1 {
		t.Fatalf("expected one body row, got %d: %v", len(got.Rows), got.Rows)
	}
	if got.Rows[0][1] != "inner" {
		t.Fatalf("unexpected nested cell text: %q", got.Rows[0][1])
	}
}

func TestLocate_MissingTableIsError(t *testing.T) {
	t.Parallel()

	_, err := locate(t, `<table class="other"><tr><td>x</td></tr></table>`, Selector{Class: "playerslist"})
	if !errors.Is(err, ErrTableNotFound) {
		t.Fatalf("expected ErrTableNotFound, got %v", err)
	}
}

func TestLocate_EmptyBodyIsNotError(t *testing.T) {
	t.Parallel()

	got, err := locate(t, `<table class="playerslist"><thead><tr><th>Name</th></tr></thead><tbody></tbody></table>`, Selector{Class: "playerslist"})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(got.Rows) != 0 {
		t.Fatalf("expected zero rows, got %d", len(got.Rows))
	}
	if diff := cmp.Diff([]string{"Name"}, got.Headers); diff != "" {
		t.Fatalf("unexpected headers (-want +got):\n%s", diff)
	}
}

func TestCellText_Normalizes(t *testing.T) {
	t.Parallel()

	content := "<table><tr><th>h</th></tr><tr><td>  Team\u00a0<b>Liquid</b>\u200b \n\t Honda </td></tr></table>"
	got, err := locate(t, content, Selector{})
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if got.Cell(0, 0) != "Team Liquid Honda" {
		t.Fatalf("unexpected cell text: %q", got.Cell(0, 0))
	}
	if got.Cell(5, 5) != "" || got.Link(-1, 0) != "" {
		t.Fatalf("out of range access must return empty text")
	}
}

func TestCountTablesAndClientRendering(t *testing.T) {
	t.Parallel()

	doc, err := Document([]byte(`<table class="a"></table><table class="a"></table><table></table>`))
	if err != nil {
		t.Fatalf("parse document: %v", err)
	}
	if got := CountTables(doc, Selector{Class: "a"}); got != 2 {
		t.Fatalf("CountTables = %d, want 2", got)
	}
	if got := CountTables(doc, Selector{}); got != 3 {
		t.Fatalf("CountTables(all) = %d, want 3", got)
	}

	rendered := RawTable{Rows: [][]string{{"Jinx", "", "", "4"}}}
	if !LooksClientRendered(rendered) {
		t.Fatalf("expected table with half empty cells to look client rendered")
	}
	if LooksClientRendered(RawTable{Rows: [][]string{{"Jinx", "1", "2", ""}}}) {
		t.Fatalf("25%% empty cells must not look client rendered")
	}
	if LooksClientRendered(RawTable{}) {
		t.Fatalf("empty table must not look client rendered")
	}
}
