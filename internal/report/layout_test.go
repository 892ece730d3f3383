package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"hosereport/internal/inspection"
)

func TestColumns_Geometry(t *testing.T) {
	cols := Columns()
	require.Len(t, cols, 24)
	assert.Equal(t, RowNumberKey, cols[0].Key)
	assert.False(t, cols[0].Rotated)

	total, rotated := 0, 0
	for i, c := range cols {
		total += c.WidthPx
		if c.Rotated {
			rotated++
		}
		if i > 0 {
			assert.Equal(t, inspection.RenderedFields()[i-1].Key, c.Key)
		}
	}
	assert.Equal(t, ContentWidthPx, total)
	assert.Equal(t, 13, rotated, "five numeric columns and eight code columns")
}

func TestBuildLayout(t *testing.T) {
	next := "2025-03-01T00:00:00Z"
	items := makeItems(10)
	items[8].PipeBrand = "Superflex"
	items[8].ManufactureYear = "2021-05-10"
	items[8].NextInspection = &next
	items[8].Result = inspection.CodeApproved

	header := &inspection.Header{Client: "ACME", InspectionDate: "2024-03-15T00:00:00Z"}
	pages := Paginate(items, 0)
	layout := BuildLayout(header, pages[1], len(pages))

	assert.Equal(t, ReportTitle, layout.Title)
	assert.Equal(t, "ACME", layout.Client)
	assert.Equal(t, "15/03/2024", layout.InspectionDate)
	assert.Equal(t, 2, layout.PageNumber)
	assert.Equal(t, 2, layout.PageCount)
	assert.Equal(t, PageWidthPx, layout.WidthPx)
	require.Len(t, layout.Rows, 2)

	row := layout.Rows[0]
	assert.Equal(t, 9, row.Number)
	require.Len(t, row.Cells, len(layout.Columns))

	byKey := map[string]string{}
	for i, c := range layout.Columns {
		byKey[c.Key] = row.Cells[i]
	}
	want := map[string]string{
		RowNumberKey:      "9",
		"tag":             "TAG-9",
		"pipeBrand":       "Superflex",
		"manufactureYear": "2021",
		"nextInspection":  "03/2025",
		"nextMaintenance": "",
		"result":          "A",
		"observations":    "",
	}
	for k, v := range want {
		assert.Equal(t, v, byKey[k], k)
	}
	assert.Equal(t, "10", layout.Rows[1].Cells[0])
}

func TestBuildLayout_IsDeterministic(t *testing.T) {
	header := &inspection.Header{Client: "ACME"}
	page := Paginate(makeItems(3), 0)[0]
	a := BuildLayout(header, page, 1)
	b := BuildLayout(header, page, 1)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("layouts differ (-a +b):\n%s", diff)
	}
	assert.Equal(t, "", a.InspectionDate)
}

// renderedPage is the interesting part of a rendered page, pulled out of
// the HTML.
type renderedPage struct {
	pageRoot  bool
	headers   []string
	rotated   int
	rowNums   []string
	rows      map[string][]string // cell texts keyed by data-row
	cellTexts []string
	client    string
}

func parsePage(t *testing.T, doc []byte) renderedPage {
	t.Helper()
	root, err := html.Parse(bytes.NewReader(doc))
	require.NoError(t, err)

	out := renderedPage{rows: map[string][]string{}}
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "div":
				if attr(n, "id") == "report-page" {
					out.pageRoot = true
				}
			case "th":
				out.headers = append(out.headers, strings.TrimSpace(text(n)))
				if attr(n, "class") == "rotated" {
					out.rotated++
				}
			case "tr":
				if v := attr(n, "data-row"); v != "" {
					out.rowNums = append(out.rowNums, v)
					for c := n.FirstChild; c != nil; c = c.NextSibling {
						if c.Type == html.ElementNode && c.Data == "td" {
							out.rows[v] = append(out.rows[v], strings.TrimSpace(text(c)))
						}
					}
				}
			case "td":
				out.cellTexts = append(out.cellTexts, text(n))
			case "dd":
				if attr(n, "class") == "client" {
					out.client = text(n)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func TestRenderHTML(t *testing.T) {
	items := makeItems(2)
	items[0].PipeBrand = "Superflex"
	items[1].Observations = `<script>alert("x")</script>`

	layout := BuildLayout(&inspection.Header{Client: "Açúcar & Álcool"}, Paginate(items, 0)[0], 1)
	doc, err := RenderHTML(layout)
	require.NoError(t, err)

	page := parsePage(t, doc)
	assert.True(t, page.pageRoot)
	require.Len(t, page.headers, 24)
	assert.Equal(t, "#", page.headers[0])
	assert.Equal(t, "Tag", page.headers[1])
	assert.Equal(t, "Observations", page.headers[23])
	assert.Equal(t, 13, page.rotated)
	assert.Equal(t, []string{"1", "2"}, page.rowNums)
	assert.Contains(t, page.cellTexts, "Superflex")
	assert.Contains(t, page.cellTexts, `<script>alert("x")</script>`, "cell text is escaped, not markup")
	assert.Equal(t, "Açúcar & Álcool", page.client)
	assert.Contains(t, string(doc), "width: 1123px")
}
