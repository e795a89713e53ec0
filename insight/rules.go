package insight

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/calibrant/gdtbench/gdt"
)

// bonusDeparture is the fixed example increment the bonus-tolerance rule uses
// to illustrate available bonus. Exact decimal, so the illustrated sum keeps
// the input's precision.
var bonusDeparture = decimal.New(1, -1) // 0.1

// expectedToleranceSymbols are the controls that are meaningless without a
// tolerance value.
var expectedToleranceSymbols = map[gdt.Symbol]bool{
	gdt.SymbolPerpendicularity: true,
	gdt.SymbolParallelism:      true,
	gdt.SymbolAngularity:       true,
	gdt.SymbolProfileLine:      true,
	gdt.SymbolProfileSurface:   true,
	gdt.SymbolCircularRunout:   true,
	gdt.SymbolTotalRunout:      true,
	gdt.SymbolCylindricity:     true,
	gdt.SymbolCircularity:      true,
}

// formSymbols are form controls, which by definition reference no datums.
var formSymbols = map[gdt.Symbol]bool{
	gdt.SymbolFlatness:     true,
	gdt.SymbolStraightness: true,
	gdt.SymbolCircularity:  true,
	gdt.SymbolCylindricity: true,
}

// expectedZoneShape maps controls to the zone shape they conventionally use.
// Symbols absent from the map are unconstrained.
var expectedZoneShape = map[gdt.Symbol]gdt.ZoneShape{
	gdt.SymbolFlatness:         gdt.ZonePlanar,
	gdt.SymbolPerpendicularity: gdt.ZonePlanar,
	gdt.SymbolParallelism:      gdt.ZonePlanar,
	gdt.SymbolCylindricity:     gdt.ZoneCylindrical,
}

func ruleBonusTolerance(p gdt.Project, reqs []gdt.Requirement) []Finding {
	var out []Finding
	for _, r := range reqs {
		if r.MaterialCondition != gdt.MMC && r.MaterialCondition != gdt.LMC {
			continue
		}
		if r.ToleranceValue == nil {
			continue
		}
		available := r.ToleranceValue.Add(bonusDeparture)
		out = append(out, Finding{
			Kind:     KindBonus,
			Code:     CodeBonusTolerance,
			Title:    fmt.Sprintf("Bonus tolerance at %s", r.MaterialCondition),
			Detail:   fmt.Sprintf("If the actual size departs from %s by +%s, the available tolerance increases to %s (bonus).", r.MaterialCondition, bonusDeparture, available),
			Severity:      SeverityInfo,
			RequirementID: r.ID,
		})
	}
	return out
}

func rulePositionCompleteness(p gdt.Project, reqs []gdt.Requirement) []Finding {
	var out []Finding
	for _, r := range reqs {
		if r.Symbol != gdt.SymbolPosition {
			continue
		}
		if len(r.DatumRefs) == 0 {
			out = append(out, Finding{
				Kind:          KindDatum,
				Code:          CodePositionWithoutDatum,
				Title:         "Position without datum",
				Detail:        "Add at least one datum (e.g., A | B | C).",
				Severity:      SeverityWarning,
				RequirementID: r.ID,
			})
		}
		if len(r.DatumRefs) > 0 && !sort.StringsAreSorted(r.DatumRefs) {
			out = append(out, Finding{
				Kind:          KindDatumOrder,
				Code:          CodePositionDatumOrder,
				Title:         "Non-ordered datums",
				Detail:        "Order datums A→Z to reflect precedence.",
				Severity:      SeverityTip,
				RequirementID: r.ID,
			})
		}
		if !r.DiameterModifier {
			out = append(out, Finding{
				Kind:          KindDiameter,
				Code:          CodePositionWithoutDiameter,
				Title:         "Position without " + gdt.DiameterGlyph,
				Detail:        "Holes typically use " + gdt.DiameterGlyph + " for the position zone.",
				Severity:      SeverityTip,
				RequirementID: r.ID,
			})
		}
		if r.ToleranceValue == nil {
			out = append(out, Finding{
				Kind:          KindTolerance,
				Code:          CodePositionNoTolerance,
				Title:         "Position without tolerance",
				Detail:        "A position control needs a tolerance value.",
				Severity:      SeverityError,
				RequirementID: r.ID,
			})
		}
	}
	return out
}

func ruleExpectedTolerance(p gdt.Project, reqs []gdt.Requirement) []Finding {
	var out []Finding
	for _, r := range reqs {
		if !expectedToleranceSymbols[r.Symbol] || r.ToleranceValue != nil {
			continue
		}
		out = append(out, Finding{
			Kind:          KindTolerance,
			Code:          CodeMissingTolerance,
			Title:         "Missing tolerance value",
			Detail:        fmt.Sprintf("A %s control usually carries an explicit tolerance value.", gdt.Label(r.Symbol)),
			Severity:      SeverityWarning,
			RequirementID: r.ID,
		})
	}
	return out
}

// ruleOverSpecification emits at most one project-wide finding no matter how
// many form controls coexist with the surface profile.
func ruleOverSpecification(p gdt.Project, reqs []gdt.Requirement) []Finding {
	hasProfile := false
	hasForm := false
	for _, r := range reqs {
		switch {
		case r.Symbol == gdt.SymbolProfileSurface:
			hasProfile = true
		case formSymbols[r.Symbol]:
			hasForm = true
		}
	}
	if !hasProfile || !hasForm {
		return nil
	}
	return []Finding{{
		Kind:     KindOverSpec,
		Code:     CodeProfileFormOverlap,
		Title:    "Possible over-specification",
		Detail:   "Profile may already control form; check if form controls are redundant.",
		Severity: SeverityTip,
	}}
}

func ruleLegacyControls(p gdt.Project, reqs []gdt.Requirement) []Finding {
	var out []Finding
	for _, r := range reqs {
		if !gdt.Legacy(r.Symbol) {
			continue
		}
		out = append(out, Finding{
			Kind:          KindLegacy,
			Code:          CodeLegacyControl,
			Title:         fmt.Sprintf("Legacy control: %s", r.Symbol),
			Detail:        fmt.Sprintf("Consider modern alternative: %s.", gdt.ModernAlternative(r.Symbol)),
			Severity:      SeverityWarning,
			RequirementID: r.ID,
		})
	}
	return out
}

func ruleDatumOnFormControl(p gdt.Project, reqs []gdt.Requirement) []Finding {
	var out []Finding
	for _, r := range reqs {
		if !formSymbols[r.Symbol] || len(r.DatumRefs) == 0 {
			continue
		}
		out = append(out, Finding{
			Kind:          KindDatum,
			Code:          CodeFormControlWithDatum,
			Title:         "Form control with datums",
			Detail:        fmt.Sprintf("%s is a form control and is measured without datums; remove %s.", gdt.Label(r.Symbol), strings.Join(r.DatumRefs, ", ")),
			Severity:      SeverityWarning,
			RequirementID: r.ID,
		})
	}
	return out
}

func ruleRepeatedDatum(p gdt.Project, reqs []gdt.Requirement) []Finding {
	var out []Finding
	for _, r := range reqs {
		seen := make(map[string]bool, len(r.DatumRefs))
		repeated := ""
		for _, d := range r.DatumRefs {
			if seen[d] {
				repeated = d
				break
			}
			seen[d] = true
		}
		if repeated == "" {
			continue
		}
		out = append(out, Finding{
			Kind:          KindDatum,
			Code:          CodeRepeatedDatum,
			Title:         "Repeated datum reference",
			Detail:        fmt.Sprintf("Datum %s appears more than once; a datum establishes one reference and should be listed once.", repeated),
			Severity:      SeverityTip,
			RequirementID: r.ID,
		})
	}
	return out
}

func ruleUnitMismatch(p gdt.Project, reqs []gdt.Requirement) []Finding {
	var out []Finding
	for _, r := range reqs {
		if r.ToleranceUnit == "" || r.ToleranceUnit == p.Units {
			continue
		}
		out = append(out, Finding{
			Kind:          KindUnits,
			Code:          CodeUnitMismatch,
			Title:         "Unit mismatch",
			Detail:        fmt.Sprintf("Requirement in %s but project is %s.", r.ToleranceUnit, p.Units),
			Severity:      SeverityInfo,
			RequirementID: r.ID,
		})
	}
	return out
}

// ruleDuplicateTitles groups by (trimmed lower-cased title, symbol) and emits
// one finding per group, in first-seen order.
func ruleDuplicateTitles(p gdt.Project, reqs []gdt.Requirement) []Finding {
	type group struct {
		title  string
		symbol gdt.Symbol
		count  int
	}
	counts := make(map[string]*group)
	var order []string
	for _, r := range reqs {
		key := strings.ToLower(strings.TrimSpace(r.Title)) + "\x00" + string(r.Symbol)
		g, ok := counts[key]
		if !ok {
			g = &group{title: strings.TrimSpace(r.Title), symbol: r.Symbol}
			counts[key] = g
			order = append(order, key)
		}
		g.count++
	}

	var out []Finding
	for _, key := range order {
		g := counts[key]
		if g.count < 2 {
			continue
		}
		out = append(out, Finding{
			Kind:     KindDuplicate,
			Code:     CodeDuplicateTitle,
			Title:    "Duplicate requirement titles",
			Detail:   fmt.Sprintf("%d requirements share the title %q and symbol %s.", g.count, g.title, g.symbol),
			Severity: SeverityTip,
		})
	}
	return out
}

func ruleZoneShapeSanity(p gdt.Project, reqs []gdt.Requirement) []Finding {
	var out []Finding
	for _, r := range reqs {
		expected, constrained := expectedZoneShape[r.Symbol]
		if !constrained || r.ZoneShape == "" || r.ZoneShape == expected {
			continue
		}
		out = append(out, Finding{
			Kind:          KindZone,
			Code:          CodeZoneShapeMismatch,
			Title:         "Unusual zone shape",
			Detail:        fmt.Sprintf("%s conventionally uses a %s zone, not %s.", gdt.Label(r.Symbol), expected, r.ZoneShape),
			Severity:      SeverityTip,
			RequirementID: r.ID,
		})
	}
	return out
}
