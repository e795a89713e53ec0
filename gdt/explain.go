package gdt

import "strings"

// genericDescription is what Explain falls back to for symbols outside the
// catalog; unknown keys degrade to a generic sentence, never an error.
const genericDescription = "Generic geometric control."

// deprecationNote is appended for the two controls ASME Y14.5-2018 dropped.
const deprecationNote = "Note: ASME Y14.5-2018 discourages this control in favor of position/profile due to inspection difficulty."

// Explain renders a plain-language description of a requirement. It is pure
// and deterministic.
//
// The output starts with the symbol's canonical sentence and appends clauses
// in a fixed order: tolerance, diametral zone, material condition, datum
// list, zone shape, legacy deprecation note. Clause order is part of the
// contract; downstream tests and exports rely on it.
func Explain(r Requirement) string {
	base, ok := descriptionForSymbol[r.Symbol]
	if !ok {
		base = genericDescription
	}

	clauses := []string{base}
	if r.ToleranceValue != nil {
		c := "Tolerance: " + r.ToleranceValue.String()
		if r.ToleranceUnit != "" {
			c += " " + string(r.ToleranceUnit)
		}
		clauses = append(clauses, c+".")
	}
	if r.DiameterModifier {
		clauses = append(clauses, "The zone is diametral ("+DiameterGlyph+").")
	}
	if ValidMaterialCondition(r.MaterialCondition) {
		clauses = append(clauses, "Material condition: "+r.MaterialCondition.FullName()+".")
	}
	if len(r.DatumRefs) > 0 {
		clauses = append(clauses, "Datums: "+strings.Join(r.DatumRefs, FCFDelimiter)+".")
	}
	if r.ZoneShape != "" {
		clauses = append(clauses, "Zone shape: "+string(r.ZoneShape)+".")
	}
	if Legacy(r.Symbol) {
		clauses = append(clauses, deprecationNote)
	}
	return strings.Join(clauses, " ")
}
