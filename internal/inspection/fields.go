package inspection

// Kind tells the renderer how a field's value is formatted.
type Kind int

const (
	KindText   Kind = iota
	KindNumber      // dimensional / numeric strings
	KindCode        // single-letter pass/fail or yes/no
	KindYear        // rendered YYYY
	KindDate        // nullable, rendered MM/YYYY
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindCode:
		return "code"
	case KindYear:
		return "year"
	case KindDate:
		return "date"
	default:
		return "text"
	}
}

// Field describes one named item field: where it may be found in raw
// payloads and how to read and write it on an Item.
type Field struct {
	Key      string // camelCase source key and JSON name
	Alt      string // name used inside the per-step sub-objects
	Label    string // column header
	Kind     Kind
	Rendered bool // false for bookkeeping fields that never reach the report

	get func(*Item) string
	set func(*Item, string)
}

// Get returns the field's value on it, "" when unset.
func (f Field) Get(it *Item) string { return f.get(it) }

// Nullable reports whether the field holds nil rather than "" when absent.
func (f Field) Nullable() bool { return f.Kind == KindDate }

func text(key, alt, label string, kind Kind, ptr func(*Item) *string) Field {
	return Field{
		Key: key, Alt: alt, Label: label, Kind: kind, Rendered: true,
		get: func(it *Item) string { return *ptr(it) },
		set: func(it *Item, v string) { *ptr(it) = v },
	}
}

func date(key, alt, label string, ptr func(*Item) **string) Field {
	return Field{
		Key: key, Alt: alt, Label: label, Kind: KindDate, Rendered: true,
		get: func(it *Item) string {
			if p := *ptr(it); p != nil {
				return *p
			}
			return ""
		},
		set: func(it *Item, v string) {
			if v == "" {
				*ptr(it) = nil
				return
			}
			*ptr(it) = &v
		},
	}
}

// fields is the canonical field table. The order of rendered fields is the
// column order of the report.
var fields = []Field{
	{
		Key: "itemId", Alt: "id", Label: "ID", Kind: KindText,
		get: func(it *Item) string { return it.ItemID },
		set: func(it *Item, v string) { it.ItemID = v },
	},
	text("tag", "identification", "Tag", KindText, func(it *Item) *string { return &it.Tag }),
	text("pipeBrand", "hoseBrand", "Hose brand", KindText, func(it *Item) *string { return &it.PipeBrand }),
	text("pipeType", "hoseType", "Hose type", KindText, func(it *Item) *string { return &it.PipeType }),
	text("nominalDiameter", "diameter", "Diameter (in)", KindNumber, func(it *Item) *string { return &it.NominalDiameter }),
	text("length", "hoseLength", "Length (m)", KindNumber, func(it *Item) *string { return &it.Length }),
	text("workingPressure", "maxWorkingPressure", "Working pressure (bar)", KindNumber, func(it *Item) *string { return &it.WorkingPressure }),
	text("testPressure", "hydrostaticPressure", "Test pressure (bar)", KindNumber, func(it *Item) *string { return &it.TestPressure }),
	text("manufactureYear", "manufactureDate", "Manufacture year", KindYear, func(it *Item) *string { return &it.ManufactureYear }),
	text("fittingBrand", "terminalBrand", "Fitting brand", KindText, func(it *Item) *string { return &it.FittingBrand }),
	text("fittingType", "terminalType", "Fitting type", KindText, func(it *Item) *string { return &it.FittingType }),
	text("fluid", "conductedFluid", "Fluid", KindText, func(it *Item) *string { return &it.Fluid }),
	text("equipment", "installationLocation", "Equipment / location", KindText, func(it *Item) *string { return &it.Equipment }),
	text("externalCover", "coverCondition", "External cover", KindCode, func(it *Item) *string { return &it.ExternalCover }),
	text("reinforcement", "reinforcementCondition", "Reinforcement", KindCode, func(it *Item) *string { return &it.Reinforcement }),
	text("fittingCondition", "terminalCondition", "Fitting condition", KindCode, func(it *Item) *string { return &it.FittingCondition }),
	text("leakage", "leakTest", "Leakage", KindCode, func(it *Item) *string { return &it.Leakage }),
	text("hydrostaticTest", "pressureTest", "Hydrostatic test", KindCode, func(it *Item) *string { return &it.HydrostaticTest }),
	text("electricalContinuity", "continuityTest", "Electrical continuity", KindCode, func(it *Item) *string { return &it.ElectricalContinuity }),
	text("identificationSeal", "seal", "Identification seal", KindCode, func(it *Item) *string { return &it.IdentificationSeal }),
	text("result", "finalResult", "Result", KindCode, func(it *Item) *string { return &it.Result }),
	date("nextInspection", "nextInspectionDate", "Next inspection", func(it *Item) **string { return &it.NextInspection }),
	date("nextMaintenance", "nextMaintenanceDate", "Next maintenance", func(it *Item) **string { return &it.NextMaintenance }),
	text("observations", "remarks", "Observations", KindText, func(it *Item) *string { return &it.Observations }),
}

// Fields returns every item field in canonical order.
func Fields() []Field {
	out := make([]Field, len(fields))
	copy(out, fields)
	return out
}

// RenderedFields returns the report columns in order.
func RenderedFields() []Field {
	out := make([]Field, 0, len(fields))
	for _, f := range fields {
		if f.Rendered {
			out = append(out, f)
		}
	}
	return out
}

// FieldByKey looks a field up by its camelCase key.
func FieldByKey(key string) (Field, bool) {
	for _, f := range fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}
