// Package insight is the diagnostics rule engine for tolerancing projects.
// It evaluates a fixed, ordered sequence of independent rules over a project
// snapshot and returns typed findings. Findings are never persisted; they are
// recomputed from current state on every call.
package insight

// Severity grades a finding.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityTip     Severity = "tip"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Kind buckets findings by the concern a rule inspects.
type Kind string

const (
	KindBonus      Kind = "bonus"
	KindDatum      Kind = "datum"
	KindDatumOrder Kind = "datum_order"
	KindDiameter   Kind = "diameter"
	KindTolerance  Kind = "tolerance"
	KindOverSpec   Kind = "over_spec"
	KindLegacy     Kind = "legacy"
	KindUnits      Kind = "units"
	KindDuplicate  Kind = "duplicate"
	KindZone       Kind = "zone"
)

// Stable finding codes. Codes identify the exact condition a rule detected
// and are part of the API contract; kinds may group several codes.
const (
	CodeBonusTolerance          = "bonus_tolerance"
	CodePositionWithoutDatum    = "position_without_datum"
	CodePositionDatumOrder      = "position_datum_order"
	CodePositionWithoutDiameter = "position_without_diameter"
	CodePositionNoTolerance     = "position_missing_tolerance"
	CodeMissingTolerance        = "missing_tolerance"
	CodeProfileFormOverlap      = "profile_form_overlap"
	CodeLegacyControl           = "legacy_control"
	CodeFormControlWithDatum    = "form_control_with_datum"
	CodeRepeatedDatum           = "repeated_datum"
	CodeUnitMismatch            = "unit_mismatch"
	CodeDuplicateTitle          = "duplicate_title"
	CodeZoneShapeMismatch       = "zone_shape_mismatch"
)

// Finding is one diagnostic result. RequirementID is zero for project-wide
// findings (over-specification, duplicate titles).
type Finding struct {
	Kind          Kind     `json:"kind"`
	Code          string   `json:"code"`
	Title         string   `json:"title"`
	Detail        string   `json:"detail"`
	Severity      Severity `json:"severity"`
	RequirementID int64    `json:"requirement_id,omitempty"`
}
