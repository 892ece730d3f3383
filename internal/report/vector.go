package report

import (
	"fmt"
	"strings"

	"hosereport/internal/inspection"
)

// Vector page geometry, millimetres.
const (
	mmPerPx       = PageWidthMM / PageWidthPx
	headerRowMM   = 28.0
	bodyRowMM     = 17.0
	cellLineMM    = 2.6
	cellPaddingMM = 0.6

	// floor(bodyRowMM / cellLineMM)
	maxCellLines = 6
)

// AddLayout appends one page drawn directly from l, without a browser.
// Column order, labels and cell contents match the HTML rendering.
func (a *Assembler) AddLayout(l PageLayout) error {
	if err := a.pdf.Error(); err != nil {
		return err
	}
	pdf := a.pdf
	pdf.AddPage()

	margin := PageMarginPx * mmPerPx
	contentW := PageWidthMM - 2*margin

	// Header block
	pdf.SetTextColor(31, 59, 90)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(margin, margin)
	pdf.CellFormat(contentW/2, 8, a.tr(l.Title), "", 0, "L", false, 0, "")

	pdf.SetTextColor(17, 17, 17)
	pdf.SetFont("Helvetica", "", 8)
	meta := []string{
		"Client: " + l.Client,
		"Inspection date: " + l.InspectionDate,
		fmt.Sprintf("Page %d of %d", l.PageNumber, l.PageCount),
	}
	for i, line := range meta {
		pdf.SetXY(margin+contentW/2, margin+float64(i)*3.6)
		pdf.CellFormat(contentW/2, 3.6, a.tr(line), "", 0, "R", false, 0, "")
	}

	pdf.SetDrawColor(31, 59, 90)
	pdf.SetLineWidth(0.5)
	top := margin + 12
	pdf.Line(margin, top, margin+contentW, top)

	// Table
	pdf.SetDrawColor(85, 85, 85)
	pdf.SetLineWidth(0.15)
	y := top + 3
	a.drawHeaderRow(l.Columns, margin, y)
	y += headerRowMM
	for _, row := range l.Rows {
		a.drawBodyRow(l.Columns, row, margin, y)
		y += bodyRowMM
	}

	// Legend
	pdf.SetXY(margin, y+3)
	for _, e := range l.Legend {
		pdf.SetFont("Helvetica", "B", 8)
		pdf.CellFormat(pdf.GetStringWidth(e.Code)+1, 4, e.Code, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 8)
		pdf.CellFormat(pdf.GetStringWidth(e.Meaning)+5, 4, a.tr(e.Meaning), "", 0, "L", false, 0, "")
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("draw page %d: %w", l.PageNumber, err)
	}
	a.pages++
	return nil
}

func (a *Assembler) drawHeaderRow(cols []Column, x, y float64) {
	pdf := a.pdf
	pdf.SetFillColor(223, 231, 239)
	pdf.SetFont("Helvetica", "B", 6)
	for _, c := range cols {
		w := float64(c.WidthPx) * mmPerPx
		pdf.Rect(x, y, w, headerRowMM, "FD")
		label := a.tr(c.Label)
		if c.Rotated {
			// Baseline runs bottom to top through the middle of the cell.
			tx, ty := x+w/2+0.8, y+headerRowMM-1.5
			pdf.TransformBegin()
			pdf.TransformRotate(90, tx, ty)
			pdf.Text(tx, ty, label)
			pdf.TransformEnd()
		} else {
			a.drawLines(a.wrap(label, w-2*cellPaddingMM), x, y, w, headerRowMM, "C")
		}
		x += w
	}
}

func (a *Assembler) drawBodyRow(cols []Column, row Row, x, y float64) {
	pdf := a.pdf
	for i, c := range cols {
		w := float64(c.WidthPx) * mmPerPx
		pdf.Rect(x, y, w, bodyRowMM, "D")

		var cell string
		if i < len(row.Cells) {
			cell = row.Cells[i]
		}
		align := "C"
		switch {
		case c.Kind == inspection.KindCode:
			pdf.SetFont("Helvetica", "B", 7)
		case c.Kind == inspection.KindText && c.Key != RowNumberKey:
			pdf.SetFont("Helvetica", "", 6)
			align = "L"
		default:
			pdf.SetFont("Helvetica", "", 6)
		}

		lines := a.wrap(a.tr(cell), w-2*cellPaddingMM)
		if len(lines) > maxCellLines {
			lines = lines[:maxCellLines]
		}
		a.drawLines(lines, x, y, w, bodyRowMM, align)
		x += w
	}
}

// drawLines centres lines vertically inside the box at (x, y).
func (a *Assembler) drawLines(lines []string, x, y, w, h float64, align string) {
	start := y + (h-float64(len(lines))*cellLineMM)/2
	for i, line := range lines {
		a.pdf.SetXY(x+cellPaddingMM, start+float64(i)*cellLineMM)
		a.pdf.CellFormat(w-2*cellPaddingMM, cellLineMM, line, "", 0, align, false, 0, "")
	}
}

// wrap breaks already-translated text into lines no wider than w at the
// current font. Words longer than a line are split.
func (a *Assembler) wrap(s string, w float64) []string {
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		var cur string
		for _, word := range strings.Fields(para) {
			next := word
			if cur != "" {
				next = cur + " " + word
			}
			if a.pdf.GetStringWidth(next) <= w {
				cur = next
				continue
			}
			if cur != "" {
				lines = append(lines, cur)
			}
			for a.pdf.GetStringWidth(word) > w && len(word) > 1 {
				cut := len(word) - 1
				for cut > 1 && a.pdf.GetStringWidth(word[:cut]) > w {
					cut--
				}
				lines = append(lines, word[:cut])
				word = word[cut:]
			}
			cur = word
		}
		if cur != "" {
			lines = append(lines, cur)
		}
	}
	return lines
}
