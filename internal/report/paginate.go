package report

import "hosereport/internal/inspection"

// DefaultPageSize is the number of items printed on one sheet.
const DefaultPageSize = 8

// Page is a derived, never-stored group of consecutive items.
type Page struct {
	Index    int // 0-based
	FirstRow int // global 1-based row number of Items[0]
	Items    []inspection.Item
}

// RowNumber returns the global 1-based row number of the i-th item on p.
func (p Page) RowNumber(i int) int { return p.FirstRow + i }

// Paginate splits items into pages of size items each; the last page holds
// the remainder. size <= 0 means DefaultPageSize. An empty list yields no
// pages.
func Paginate(items []inspection.Item, size int) []Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	count := (len(items) + size - 1) / size
	pages := make([]Page, 0, count)
	for p := 0; p < count; p++ {
		start := p * size
		end := min(start+size, len(items))
		pages = append(pages, Page{
			Index:    p,
			FirstRow: start + 1,
			Items:    items[start:end:end],
		})
	}
	return pages
}
