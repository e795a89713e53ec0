package gdt

import (
	"time"

	"github.com/shopspring/decimal"
)

// Unit is a linear measurement unit.
type Unit string

const (
	UnitMM Unit = "mm"
	UnitIn Unit = "in"
)

// ValidUnit reports whether u is one of the supported units.
func ValidUnit(u Unit) bool {
	return u == UnitMM || u == UnitIn
}

// MaterialCondition is a material condition modifier applied to a tolerance.
type MaterialCondition string

const (
	RFS MaterialCondition = "RFS" // Regardless of Feature Size
	MMC MaterialCondition = "MMC" // Maximum Material Condition
	LMC MaterialCondition = "LMC" // Least Material Condition
)

// ValidMaterialCondition reports whether m is a recognized modifier.
func ValidMaterialCondition(m MaterialCondition) bool {
	return m == RFS || m == MMC || m == LMC
}

// FullName expands the modifier abbreviation, or returns the raw value if
// unrecognized.
func (m MaterialCondition) FullName() string {
	switch m {
	case RFS:
		return "Regardless of Feature Size"
	case MMC:
		return "Maximum Material Condition"
	case LMC:
		return "Least Material Condition"
	default:
		return string(m)
	}
}

// ZoneShape describes the geometric shape of a tolerance zone.
type ZoneShape string

const (
	ZoneCylindrical ZoneShape = "cylindrical"
	ZoneSpherical   ZoneShape = "spherical"
	ZonePlanar      ZoneShape = "planar"
)

// ValidZoneShape reports whether z is a recognized zone shape.
func ValidZoneShape(z ZoneShape) bool {
	return z == ZoneCylindrical || z == ZoneSpherical || z == ZonePlanar
}

// Project is the value snapshot of a tolerancing project. Units is the
// baseline the diagnostics engine compares requirement units against.
type Project struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Customer  string    `json:"customer,omitempty"`
	Revision  string    `json:"revision,omitempty"`
	Units     Unit      `json:"units"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Requirement is the value snapshot of a single tolerancing requirement.
// FCFText is derived from the encoded attributes and must be recomputed
// whenever any of them changes; it is never an independent source of truth.
//
// Optional enum fields use "" for unset. ToleranceValue uses a decimal
// pointer so that absence is distinguishable from zero and the textual
// precision of the input is preserved exactly ("0.20" does not become "0.2").
type Requirement struct {
	ID                int64              `json:"id"`
	ProjectID         int64              `json:"project_id"`
	Title             string             `json:"title"`
	FeatureName       string             `json:"feature_name,omitempty"`
	Description       string             `json:"description,omitempty"`
	Symbol            Symbol             `json:"symbol_key"`
	ToleranceValue    *decimal.Decimal   `json:"tolerance_value,omitempty"`
	ToleranceUnit     Unit               `json:"tolerance_unit,omitempty"`
	DiameterModifier  bool               `json:"diameter_modifier"`
	MaterialCondition MaterialCondition  `json:"material_condition,omitempty"`
	DatumRefs         []string           `json:"datum_refs,omitempty"`
	ZoneShape         ZoneShape          `json:"zone_shape,omitempty"`
	FCFText           string             `json:"fcf_text,omitempty"`
	Notes             string             `json:"notes,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}
