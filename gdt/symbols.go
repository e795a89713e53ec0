// Package gdt models geometric dimensioning and tolerancing (GD&T) controls:
// the closed catalog of control symbols, the requirement/project value types,
// feature control frame (FCF) rendering, and plain-language explanations.
//
// The source of truth for which controls exist is ASME Y14.5. This package
// provides the Go-native typed constants and lookup tables for the fourteen
// geometric characteristic symbols the workbench recognizes.
package gdt

// Symbol identifies one of the fourteen recognized geometric controls.
// The zero value is not a valid symbol.
type Symbol string

// The fourteen geometric characteristic symbols.
const (
	SymbolPosition         Symbol = "position"
	SymbolFlatness         Symbol = "flatness"
	SymbolStraightness     Symbol = "straightness"
	SymbolCircularity      Symbol = "circularity"
	SymbolCylindricity     Symbol = "cylindricity"
	SymbolPerpendicularity Symbol = "perpendicularity"
	SymbolParallelism      Symbol = "parallelism"
	SymbolAngularity       Symbol = "angularity"
	SymbolProfileLine      Symbol = "profile_line"
	SymbolProfileSurface   Symbol = "profile_surface"
	SymbolCircularRunout   Symbol = "circular_runout"
	SymbolTotalRunout      Symbol = "total_runout"
	SymbolConcentricity    Symbol = "concentricity"
	SymbolSymmetry         Symbol = "symmetry"
)

// Category groups symbols by the kind of geometric relationship they control.
type Category string

const (
	CategoryForm        Category = "form"
	CategoryOrientation Category = "orientation"
	CategoryLocation    Category = "location"
	CategoryProfile     Category = "profile"
	CategoryRunout      Category = "runout"
)

// entry binds a Symbol to its display glyph, label, category, and the
// canonical one-sentence description used by Explain.
type entry struct {
	symbol      Symbol
	glyph       string
	label       string
	category    Category
	description string
}

// registry is the canonical symbol table. Order matches the ASME Y14.5
// presentation order (form, orientation, location, profile, runout) and is
// the order Palette returns.
var registry = []entry{
	{SymbolFlatness, "⌔", "Flatness", CategoryForm, "Controls the flatness of the surface without using any datums."},
	{SymbolStraightness, "—", "Straightness", CategoryForm, "Controls the straightness of a surface line element or an axis without using any datums."},
	{SymbolCircularity, "◯", "Circularity", CategoryForm, "Controls the roundness of each circular cross-section independently."},
	{SymbolCylindricity, "◎", "Cylindricity", CategoryForm, "Controls the form of the whole cylindrical surface at once."},
	{SymbolPerpendicularity, "⟂", "Perpendicularity", CategoryOrientation, "Controls the 90° orientation relative to the specified datum."},
	{SymbolParallelism, "∥", "Parallelism", CategoryOrientation, "Controls the parallel orientation relative to the specified datum."},
	{SymbolAngularity, "∠", "Angularity", CategoryOrientation, "Controls the orientation at a basic angle relative to the specified datum."},
	{SymbolPosition, "⟂⦿", "Position", CategoryLocation, "Controls the 3D location of the feature relative to the referenced datums."},
	{SymbolProfileLine, "∿", "Profile of a Line", CategoryProfile, "Controls the 2D profile of each line element relative to basic dimensions and optional datums."},
	{SymbolProfileSurface, "≈", "Profile of a Surface", CategoryProfile, "Controls the 3D profile of a surface, relative to basic dimensions and optional datums."},
	{SymbolCircularRunout, "↻", "Circular Runout", CategoryRunout, "Controls composite form/orientation for each circular element during a single revolution."},
	{SymbolTotalRunout, "⟲", "Total Runout", CategoryRunout, "Controls composite runout across the full surface length."},
	{SymbolConcentricity, "◎(legacy)", "Concentricity", CategoryLocation, "Legacy control; typically replace with position relative to a datum axis."},
	{SymbolSymmetry, "≡(legacy)", "Symmetry", CategoryLocation, "Legacy control; typically replace with position/profile."},
}

// Lookup tables built from the registry at init time.
var (
	glyphForSymbol       map[Symbol]string
	labelForSymbol       map[Symbol]string
	descriptionForSymbol map[Symbol]string
	categoryForSymbol    map[Symbol]Category
)

func init() {
	glyphForSymbol = make(map[Symbol]string, len(registry))
	labelForSymbol = make(map[Symbol]string, len(registry))
	descriptionForSymbol = make(map[Symbol]string, len(registry))
	categoryForSymbol = make(map[Symbol]Category, len(registry))
	for _, e := range registry {
		glyphForSymbol[e.symbol] = e.glyph
		labelForSymbol[e.symbol] = e.label
		descriptionForSymbol[e.symbol] = e.description
		categoryForSymbol[e.symbol] = e.category
	}
}

// Known reports whether s is one of the fourteen catalog symbols.
func Known(s Symbol) bool {
	_, ok := glyphForSymbol[s]
	return ok
}

// Glyph returns the display glyph for s. Unrecognized symbols echo their raw
// key string; callers render whatever they were given rather than failing.
func Glyph(s Symbol) string {
	if g, ok := glyphForSymbol[s]; ok {
		return g
	}
	return string(s)
}

// Label returns the human-readable name for s, or the raw key if unknown.
func Label(s Symbol) string {
	if l, ok := labelForSymbol[s]; ok {
		return l
	}
	return string(s)
}

// CategoryOf returns the geometric category for s, or "" if unknown.
func CategoryOf(s Symbol) Category {
	return categoryForSymbol[s]
}

// Palette returns the fourteen symbols in canonical presentation order.
func Palette() []Symbol {
	out := make([]Symbol, len(registry))
	for i, e := range registry {
		out[i] = e.symbol
	}
	return out
}

// Legacy reports whether s is one of the controls ASME Y14.5-2018 dropped
// (symmetry and concentricity).
func Legacy(s Symbol) bool {
	return s == SymbolSymmetry || s == SymbolConcentricity
}

// ModernAlternative returns the recommended replacement for a legacy control,
// or "" for non-legacy symbols.
func ModernAlternative(s Symbol) string {
	switch s {
	case SymbolSymmetry:
		return "position/profile"
	case SymbolConcentricity:
		return "position relative to a datum axis"
	default:
		return ""
	}
}
