package report

import (
	"fmt"

	"hosereport/internal/inspection"
)

// Page geometry in CSS pixels at 96 DPI. A4 landscape is 297 mm wide.
const (
	PageWidthPx    = 1123
	PageMarginPx   = 16
	ContentWidthPx = PageWidthPx - 2*PageMarginPx

	// Data columns at or below this width get their header text rotated 90°.
	rotateAtPx = 30
)

// RowNumberKey is the key of the synthetic row-number column.
const RowNumberKey = "row"

// Column is one printed column with its fixed geometry.
type Column struct {
	Key     string
	Label   string
	WidthPx int
	Rotated bool
	Kind    inspection.Kind
}

var columnWidths = map[string]int{
	RowNumberKey:           26,
	"tag":                  56,
	"pipeBrand":            70,
	"pipeType":             62,
	"nominalDiameter":      30,
	"length":               30,
	"workingPressure":      30,
	"testPressure":         30,
	"manufactureYear":      30,
	"fittingBrand":         64,
	"fittingType":          58,
	"fluid":                52,
	"equipment":            80,
	"externalCover":        26,
	"reinforcement":        26,
	"fittingCondition":     26,
	"leakage":              26,
	"hydrostaticTest":      26,
	"electricalContinuity": 26,
	"identificationSeal":   26,
	"result":               26,
	"nextInspection":       46,
	"nextMaintenance":      46,
	"observations":         173,
}

var columns = buildColumns()

func buildColumns() []Column {
	out := []Column{newColumn(RowNumberKey, "#", inspection.KindNumber)}
	for _, f := range inspection.RenderedFields() {
		out = append(out, newColumn(f.Key, f.Label, f.Kind))
	}
	return out
}

func newColumn(key, label string, kind inspection.Kind) Column {
	w, ok := columnWidths[key]
	if !ok {
		panic(fmt.Sprintf("report: no width for column %q", key))
	}
	return Column{
		Key:     key,
		Label:   label,
		WidthPx: w,
		Rotated: key != RowNumberKey && w <= rotateAtPx,
		Kind:    kind,
	}
}

// Columns returns the printed columns in order, the row-number column first.
func Columns() []Column {
	out := make([]Column, len(columns))
	copy(out, columns)
	return out
}
