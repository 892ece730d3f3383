// Package inspection defines the canonical inspection records and turns the
// loosely typed payloads produced by the inspection wizard into them.
package inspection

// Header identifies the inspection a report is generated for.
type Header struct {
	Client         string `json:"client" yaml:"client"`
	InspectionDate string `json:"inspectionDate" yaml:"inspectionDate"` // ISO-8601
}

// Item is one inspected hose or pipe segment in canonical form.
// Text fields are "" when absent; the two scheduling dates are nil.
type Item struct {
	ItemID               string  `json:"itemId"`
	Tag                  string  `json:"tag"`
	PipeBrand            string  `json:"pipeBrand"`
	PipeType             string  `json:"pipeType"`
	NominalDiameter      string  `json:"nominalDiameter"`
	Length               string  `json:"length"`
	WorkingPressure      string  `json:"workingPressure"`
	TestPressure         string  `json:"testPressure"`
	ManufactureYear      string  `json:"manufactureYear"`
	FittingBrand         string  `json:"fittingBrand"`
	FittingType          string  `json:"fittingType"`
	Fluid                string  `json:"fluid"`
	Equipment            string  `json:"equipment"`
	ExternalCover        string  `json:"externalCover"`
	Reinforcement        string  `json:"reinforcement"`
	FittingCondition     string  `json:"fittingCondition"`
	Leakage              string  `json:"leakage"`
	HydrostaticTest      string  `json:"hydrostaticTest"`
	ElectricalContinuity string  `json:"electricalContinuity"`
	IdentificationSeal   string  `json:"identificationSeal"`
	Result               string  `json:"result"`
	NextInspection       *string `json:"nextInspection"`
	NextMaintenance      *string `json:"nextMaintenance"`
	Observations         string  `json:"observations"`
}

// Result and condition codes.
const (
	CodeApproved      = "A"
	CodeRejected      = "R"
	CodeYes           = "Y"
	CodeNo            = "N"
	CodeNotApplicable = "NA"
)
