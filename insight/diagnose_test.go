package insight

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calibrant/gdtbench/gdt"
)

func dec(t *testing.T, s string) *decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return &d
}

func mmProject() gdt.Project {
	return gdt.Project{ID: 1, Title: "T", Units: gdt.UnitMM}
}

func findingsWithCode(fs []Finding, code string) []Finding {
	var out []Finding
	for _, f := range fs {
		if f.Code == code {
			out = append(out, f)
		}
	}
	return out
}

func TestBonusToleranceUsesExactDecimalArithmetic(t *testing.T) {
	reqs := []gdt.Requirement{
		{ID: 10, Symbol: gdt.SymbolPosition, ToleranceValue: dec(t, "0.2"), MaterialCondition: gdt.MMC, DiameterModifier: true, DatumRefs: []string{"A"}},
		{ID: 11, Symbol: gdt.SymbolPosition, ToleranceValue: dec(t, "0.25"), MaterialCondition: gdt.LMC, DiameterModifier: true, DatumRefs: []string{"A"}},
		{ID: 12, Symbol: gdt.SymbolPosition, ToleranceValue: dec(t, "0.2"), MaterialCondition: gdt.RFS, DiameterModifier: true, DatumRefs: []string{"A"}},
	}
	fs := findingsWithCode(Diagnose(mmProject(), reqs), CodeBonusTolerance)
	require.Len(t, fs, 2, "RFS must not earn bonus tolerance")

	assert.Equal(t, int64(10), fs[0].RequirementID)
	assert.Contains(t, fs[0].Detail, "increases to 0.3 (bonus)")
	assert.Equal(t, "Bonus tolerance at MMC", fs[0].Title)
	assert.Equal(t, SeverityInfo, fs[0].Severity)

	assert.Equal(t, int64(11), fs[1].RequirementID)
	assert.Contains(t, fs[1].Detail, "increases to 0.35 (bonus)")
}

func TestPositionWithoutDatumEmitsExactlyOneFinding(t *testing.T) {
	reqs := []gdt.Requirement{
		{ID: 1, Symbol: gdt.SymbolPosition, ToleranceValue: dec(t, "0.2"), DiameterModifier: true},
	}
	fs := findingsWithCode(Diagnose(mmProject(), reqs), CodePositionWithoutDatum)
	require.Len(t, fs, 1)
	assert.Equal(t, SeverityWarning, fs[0].Severity)
	assert.Equal(t, int64(1), fs[0].RequirementID)
}

func TestPositionCompletenessAllConditions(t *testing.T) {
	// No datums, no diameter, no tolerance: three findings, fixed order.
	reqs := []gdt.Requirement{{ID: 7, Symbol: gdt.SymbolPosition}}
	fs := Diagnose(mmProject(), reqs)

	var codes []string
	for _, f := range fs {
		codes = append(codes, f.Code)
	}
	assert.Equal(t, []string{
		CodePositionWithoutDatum,
		CodePositionWithoutDiameter,
		CodePositionNoTolerance,
	}, codes)
	assert.Equal(t, SeverityError, fs[2].Severity)
}

func TestPositionDatumOrdering(t *testing.T) {
	ordered := []gdt.Requirement{
		{ID: 1, Symbol: gdt.SymbolPosition, ToleranceValue: dec(t, "0.1"), DiameterModifier: true, DatumRefs: []string{"A", "B", "C"}},
	}
	assert.Empty(t, findingsWithCode(Diagnose(mmProject(), ordered), CodePositionDatumOrder))

	scrambled := []gdt.Requirement{
		{ID: 2, Symbol: gdt.SymbolPosition, ToleranceValue: dec(t, "0.1"), DiameterModifier: true, DatumRefs: []string{"B", "A"}},
	}
	fs := findingsWithCode(Diagnose(mmProject(), scrambled), CodePositionDatumOrder)
	require.Len(t, fs, 1)
	assert.Equal(t, SeverityTip, fs[0].Severity)
}

func TestExpectedToleranceSymbolSet(t *testing.T) {
	expect := []gdt.Symbol{
		gdt.SymbolPerpendicularity, gdt.SymbolParallelism, gdt.SymbolAngularity,
		gdt.SymbolProfileLine, gdt.SymbolProfileSurface,
		gdt.SymbolCircularRunout, gdt.SymbolTotalRunout,
		gdt.SymbolCylindricity, gdt.SymbolCircularity,
	}
	for _, s := range expect {
		fs := findingsWithCode(Diagnose(mmProject(), []gdt.Requirement{{ID: 1, Symbol: s}}), CodeMissingTolerance)
		assert.Len(t, fs, 1, "symbol %s without tolerance must warn", s)
	}

	// Flatness is not in the set; no warning from this rule.
	fs := findingsWithCode(Diagnose(mmProject(), []gdt.Requirement{{ID: 1, Symbol: gdt.SymbolFlatness}}), CodeMissingTolerance)
	assert.Empty(t, fs)

	// Tolerance present: silent.
	fs = findingsWithCode(Diagnose(mmProject(), []gdt.Requirement{{ID: 1, Symbol: gdt.SymbolCylindricity, ToleranceValue: dec(t, "0.02")}}), CodeMissingTolerance)
	assert.Empty(t, fs)
}

func TestOverSpecificationEmitsExactlyOnce(t *testing.T) {
	reqs := []gdt.Requirement{
		{ID: 1, Symbol: gdt.SymbolProfileSurface, ToleranceValue: dec(t, "0.5")},
		{ID: 2, Symbol: gdt.SymbolFlatness, ToleranceValue: dec(t, "0.1")},
		{ID: 3, Symbol: gdt.SymbolCylindricity, ToleranceValue: dec(t, "0.02")},
		{ID: 4, Symbol: gdt.SymbolStraightness, ToleranceValue: dec(t, "0.05")},
		{ID: 5, Symbol: gdt.SymbolPerpendicularity, ToleranceValue: dec(t, "0.1"), DatumRefs: []string{"A"}},
	}
	fs := findingsWithCode(Diagnose(mmProject(), reqs), CodeProfileFormOverlap)
	require.Len(t, fs, 1, "over-specification is a single project-wide tip")
	assert.Zero(t, fs[0].RequirementID)

	// Without the surface profile there is nothing to flag.
	fs = findingsWithCode(Diagnose(mmProject(), reqs[1:]), CodeProfileFormOverlap)
	assert.Empty(t, fs)
}

func TestLegacyControls(t *testing.T) {
	reqs := []gdt.Requirement{
		{ID: 1, Symbol: gdt.SymbolSymmetry, ToleranceValue: dec(t, "0.2"), DatumRefs: []string{"A"}},
		{ID: 2, Symbol: gdt.SymbolConcentricity, ToleranceValue: dec(t, "0.1"), DatumRefs: []string{"A"}},
	}
	fs := findingsWithCode(Diagnose(mmProject(), reqs), CodeLegacyControl)
	require.Len(t, fs, 2)
	assert.Contains(t, fs[0].Detail, "position/profile")
	assert.Contains(t, fs[1].Detail, "position relative to a datum axis")
	assert.Equal(t, SeverityWarning, fs[0].Severity)
}

func TestDatumOnFormControl(t *testing.T) {
	reqs := []gdt.Requirement{
		{ID: 1, Symbol: gdt.SymbolFlatness, ToleranceValue: dec(t, "0.1"), DatumRefs: []string{"A"}},
		{ID: 2, Symbol: gdt.SymbolFlatness, ToleranceValue: dec(t, "0.1")},
	}
	fs := findingsWithCode(Diagnose(mmProject(), reqs), CodeFormControlWithDatum)
	require.Len(t, fs, 1)
	assert.Equal(t, int64(1), fs[0].RequirementID)
}

func TestRepeatedDatum(t *testing.T) {
	reqs := []gdt.Requirement{
		{ID: 1, Symbol: gdt.SymbolPosition, ToleranceValue: dec(t, "0.1"), DiameterModifier: true, DatumRefs: []string{"A", "B", "A"}},
	}
	fs := findingsWithCode(Diagnose(mmProject(), reqs), CodeRepeatedDatum)
	require.Len(t, fs, 1)
	assert.Contains(t, fs[0].Detail, "Datum A")
}

func TestUnitMismatch(t *testing.T) {
	reqs := []gdt.Requirement{
		{ID: 1, Symbol: gdt.SymbolFlatness, ToleranceValue: dec(t, "0.005"), ToleranceUnit: gdt.UnitIn},
		{ID: 2, Symbol: gdt.SymbolFlatness, ToleranceValue: dec(t, "0.1"), ToleranceUnit: gdt.UnitMM},
		{ID: 3, Symbol: gdt.SymbolFlatness, ToleranceValue: dec(t, "0.1")},
	}
	fs := findingsWithCode(Diagnose(mmProject(), reqs), CodeUnitMismatch)
	require.Len(t, fs, 1)
	assert.Equal(t, int64(1), fs[0].RequirementID)
	assert.Equal(t, "Requirement in in but project is mm.", fs[0].Detail)
	assert.Equal(t, SeverityInfo, fs[0].Severity)
}

func TestDuplicateTitlesOneFindingPerGroup(t *testing.T) {
	reqs := []gdt.Requirement{
		{ID: 1, Title: "Hole pattern", Symbol: gdt.SymbolPosition, ToleranceValue: dec(t, "0.1"), DiameterModifier: true, DatumRefs: []string{"A"}},
		{ID: 2, Title: " hole pattern ", Symbol: gdt.SymbolPosition, ToleranceValue: dec(t, "0.2"), DiameterModifier: true, DatumRefs: []string{"A"}},
		{ID: 3, Title: "HOLE PATTERN", Symbol: gdt.SymbolPosition, ToleranceValue: dec(t, "0.3"), DiameterModifier: true, DatumRefs: []string{"A"}},
		// Same title, different symbol: its own group of one, no finding.
		{ID: 4, Title: "Hole pattern", Symbol: gdt.SymbolFlatness, ToleranceValue: dec(t, "0.1")},
	}
	fs := findingsWithCode(Diagnose(mmProject(), reqs), CodeDuplicateTitle)
	require.Len(t, fs, 1)
	assert.Contains(t, fs[0].Detail, "3 requirements")
	assert.Contains(t, fs[0].Detail, "position")
}

func TestZoneShapeSanity(t *testing.T) {
	reqs := []gdt.Requirement{
		{ID: 1, Symbol: gdt.SymbolFlatness, ToleranceValue: dec(t, "0.1"), ZoneShape: gdt.ZoneCylindrical},
		{ID: 2, Symbol: gdt.SymbolFlatness, ToleranceValue: dec(t, "0.1"), ZoneShape: gdt.ZonePlanar},
		{ID: 3, Symbol: gdt.SymbolFlatness, ToleranceValue: dec(t, "0.1")},
		// Position is unconstrained; any shape passes.
		{ID: 4, Symbol: gdt.SymbolPosition, ToleranceValue: dec(t, "0.1"), DiameterModifier: true, DatumRefs: []string{"A"}, ZoneShape: gdt.ZoneSpherical},
	}
	fs := findingsWithCode(Diagnose(mmProject(), reqs), CodeZoneShapeMismatch)
	require.Len(t, fs, 1)
	assert.Equal(t, int64(1), fs[0].RequirementID)
}

func TestRuleOrderWhenConditionsCoOccur(t *testing.T) {
	reqs := []gdt.Requirement{
		// Bonus + legacy + unit mismatch on one requirement.
		{ID: 1, Title: "Slot", Symbol: gdt.SymbolSymmetry, ToleranceValue: dec(t, "0.2"), ToleranceUnit: gdt.UnitIn, MaterialCondition: gdt.MMC, DatumRefs: []string{"A"}},
		// Position with no datums.
		{ID: 2, Title: "Hole", Symbol: gdt.SymbolPosition, ToleranceValue: dec(t, "0.1"), DiameterModifier: true},
	}
	fs := Diagnose(mmProject(), reqs)

	var codes []string
	for _, f := range fs {
		codes = append(codes, f.Code)
	}
	assert.Equal(t, []string{
		CodeBonusTolerance,
		CodePositionWithoutDatum,
		CodeLegacyControl,
		CodeUnitMismatch,
	}, codes)
}

func TestDiagnoseIsIdempotent(t *testing.T) {
	reqs := []gdt.Requirement{
		{ID: 1, Title: "Hole pattern", Symbol: gdt.SymbolPosition, ToleranceValue: dec(t, "0.2"), ToleranceUnit: gdt.UnitMM, MaterialCondition: gdt.MMC, DiameterModifier: true, DatumRefs: []string{"A", "B", "C"}},
		{ID: 2, Title: "Pad", Symbol: gdt.SymbolFlatness, ToleranceValue: dec(t, "0.1"), ToleranceUnit: gdt.UnitMM},
		{ID: 3, Title: "Profile", Symbol: gdt.SymbolProfileSurface, ToleranceValue: dec(t, "0.5"), DatumRefs: []string{"A", "B"}},
		{ID: 4, Title: "Old slot", Symbol: gdt.SymbolSymmetry, ToleranceValue: dec(t, "0.2"), DatumRefs: []string{"A"}},
	}
	p := mmProject()
	assert.Equal(t, Diagnose(p, reqs), Diagnose(p, reqs))
}

func TestDiagnoseEmptyProject(t *testing.T) {
	assert.Empty(t, Diagnose(mmProject(), nil))
}
