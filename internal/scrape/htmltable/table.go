// Package htmltable locates a table in an HTML document and flattens it into
// header and body rows of normalized cell text.
package htmltable

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"golang.org/x/net/html"
)

// ErrTableNotFound means the document has no table matching the selector.
var ErrTableNotFound = crerr.New("no matching table found")

// Selector picks the first table carrying Class, or the first table when
// Class is empty.
type Selector struct {
	Class string
}

func (s Selector) css() string {
	class := strings.TrimSpace(s.Class)
	if class == "" {
		return "table"
	}
	return "table." + class
}

func (s Selector) String() string {
	return s.css()
}

// RawTable is a table flattened to text. Links holds the first anchor href
// of each body cell, aligned with Rows.
type RawTable struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
	Links   [][]string `json:"-"`
}

// Cell returns the text at (row, col), or "" when out of range.
func (t RawTable) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// Link returns the href at (row, col), or "" when out of range.
func (t RawTable) Link(row, col int) string {
	if row < 0 || row >= len(t.Links) || col < 0 || col >= len(t.Links[row]) {
		return ""
	}
	return t.Links[row][col]
}

// Document parses HTML content.
func Document(content []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, crerr.Wrap(err, "parse html document")
	}
	return doc, nil
}

// CountTables reports how many tables match sel anywhere in doc.
func CountTables(doc *goquery.Document, sel Selector) int {
	if doc == nil {
		return 0
	}
	return doc.Find(sel.css()).Length()
}

// Locate extracts the first table matching sel. A table without body rows
// yields an empty RawTable and a nil error.
func Locate(doc *goquery.Document, sel Selector) (RawTable, error) {
	if doc == nil {
		return RawTable{}, crerr.Wrapf(ErrTableNotFound, "%s", sel)
	}
	table := doc.Find(sel.css()).First()
	if table.Length() == 0 {
		return RawTable{}, crerr.Wrapf(ErrTableNotFound, "%s", sel)
	}

	var (
		header *goquery.Selection
		body   []*goquery.Selection
	)
	thead := table.ChildrenFiltered("thead").First()
	if thead.Length() > 0 {
		header = thead.ChildrenFiltered("tr").First()
		table.ChildrenFiltered("tbody").ChildrenFiltered("tr").Each(func(_ int, row *goquery.Selection) {
			body = append(body, row)
		})
	} else {
		rows := ownRows(table)
		if len(rows) > 0 {
			header = rows[0]
			body = rows[1:]
		}
	}

	out := RawTable{
		Headers: []string{},
		Rows:    make([][]string, 0, len(body)),
		Links:   make([][]string, 0, len(body)),
	}
	if header != nil && header.Length() > 0 {
		out.Headers, _ = rowCells(header)
	}
	for _, row := range body {
		cells, links := rowCells(row)
		if len(cells) == 0 {
			continue
		}
		out.Rows = append(out.Rows, cells)
		out.Links = append(out.Links, links)
	}
	return out, nil
}

// LooksClientRendered reports whether more than 30% of the first body row is
// empty, which usually means the table is filled in by JavaScript.
func LooksClientRendered(table RawTable) bool {
	if len(table.Rows) == 0 || len(table.Rows[0]) == 0 {
		return false
	}
	empty := 0
	for _, cell := range table.Rows[0] {
		if cell == "" {
			empty++
		}
	}
	return float64(empty) > float64(len(table.Rows[0]))*0.3
}

// ownRows returns the rows of table in document order, skipping rows of
// nested tables.
func ownRows(table *goquery.Selection) []*goquery.Selection {
	var rows []*goquery.Selection
	table.Children().Each(func(_ int, child *goquery.Selection) {
		switch goquery.NodeName(child) {
		case "tr":
			rows = append(rows, child)
		case "thead", "tbody", "tfoot":
			child.ChildrenFiltered("tr").Each(func(_ int, row *goquery.Selection) {
				rows = append(rows, row)
			})
		}
	})
	return rows
}

func rowCells(row *goquery.Selection) ([]string, []string) {
	cells := row.ChildrenFiltered("th, td")
	texts := make([]string, 0, cells.Length())
	links := make([]string, 0, cells.Length())
	cells.Each(func(_ int, cell *goquery.Selection) {
		texts = append(texts, CellText(cell))
		href, _ := cell.Find("a[href]").First().Attr("href")
		links = append(links, strings.TrimSpace(href))
	})
	return texts, links
}

// CellText joins the descendant text nodes of sel with single spaces, drops
// zero-width and non-breaking spaces, and collapses whitespace.
func CellText(sel *goquery.Selection) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	for _, node := range sel.Nodes {
		collectText(node, buf)
	}
	return normalize(buf.String())
}

func collectText(node *html.Node, buf *bytebufferpool.ByteBuffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		if buf.Len() > 0 {
			_ = buf.WriteByte(' ')
		}
		_, _ = buf.WriteString(node.Data)
		return
	}
	if node.Type == html.ElementNode && (node.Data == "script" || node.Data == "style") {
		return
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		collectText(child, buf)
	}
}

var cellReplacer = strings.NewReplacer("\u200b", "", "\u00a0", " ")

func normalize(s string) string {
	return strings.Join(strings.Fields(cellReplacer.Replace(s)), " ")
}
