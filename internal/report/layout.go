package report

import (
	"strconv"

	"hosereport/internal/inspection"
)

// ReportTitle is printed at the top of every page.
const ReportTitle = "Hose Inspection Report"

// PageLayout is the backend-neutral description of one report page.
type PageLayout struct {
	Title          string
	Client         string
	InspectionDate string // DD/MM/YYYY
	PageNumber     int    // 1-based
	PageCount      int
	WidthPx        int
	Columns        []Column // row-number column first
	Rows           []Row
	Legend         []LegendEntry
}

// Row is one printed item. Cells align with Columns; Cells[0] is the
// global row number.
type Row struct {
	Number int
	Cells  []string
}

// LegendEntry explains one result code.
type LegendEntry struct {
	Code    string
	Meaning string
}

var legend = []LegendEntry{
	{Code: inspection.CodeApproved, Meaning: "Approved"},
	{Code: inspection.CodeRejected, Meaning: "Rejected"},
	{Code: inspection.CodeYes, Meaning: "Yes"},
	{Code: inspection.CodeNo, Meaning: "No"},
	{Code: inspection.CodeNotApplicable, Meaning: "Not applicable"},
}

// Legend returns the static code legend.
func Legend() []LegendEntry {
	out := make([]LegendEntry, len(legend))
	copy(out, legend)
	return out
}

// BuildLayout describes page of a report with pageCount pages. It is pure:
// the same inputs always produce the same layout.
func BuildLayout(header *inspection.Header, page Page, pageCount int) PageLayout {
	var h inspection.Header
	if header != nil {
		h = *header
	}

	fs := inspection.RenderedFields()
	rows := make([]Row, len(page.Items))
	for i := range page.Items {
		it := &page.Items[i]
		n := page.RowNumber(i)
		cells := make([]string, 0, len(fs)+1)
		cells = append(cells, strconv.Itoa(n))
		for _, f := range fs {
			cells = append(cells, formatCell(f, f.Get(it)))
		}
		rows[i] = Row{Number: n, Cells: cells}
	}

	return PageLayout{
		Title:          ReportTitle,
		Client:         h.Client,
		InspectionDate: FormatDay(h.InspectionDate),
		PageNumber:     page.Index + 1,
		PageCount:      pageCount,
		WidthPx:        PageWidthPx,
		Columns:        Columns(),
		Rows:           rows,
		Legend:         Legend(),
	}
}

func formatCell(f inspection.Field, v string) string {
	switch f.Kind {
	case inspection.KindYear:
		return FormatYear(v)
	case inspection.KindDate:
		return FormatMonthYear(v)
	default:
		return v
	}
}
