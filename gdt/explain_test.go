package gdt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExplainBaseSentencePerSymbol(t *testing.T) {
	for _, e := range registry {
		got := Explain(Requirement{Symbol: e.symbol})
		if !strings.HasPrefix(got, e.description) {
			t.Errorf("Explain(%s) = %q, want prefix %q", e.symbol, got, e.description)
		}
	}
}

func TestExplainUnknownSymbolFallsBack(t *testing.T) {
	got := Explain(Requirement{Symbol: Symbol("lumpiness")})
	assert.Equal(t, "Generic geometric control.", got)
}

func TestExplainClauseOrderIsContract(t *testing.T) {
	r := Requirement{
		Symbol:            SymbolPosition,
		ToleranceValue:    dec(t, "0.2"),
		ToleranceUnit:     UnitMM,
		DiameterModifier:  true,
		MaterialCondition: MMC,
		DatumRefs:         []string{"A", "B", "C"},
		ZoneShape:         ZoneCylindrical,
	}
	want := "Controls the 3D location of the feature relative to the referenced datums." +
		" Tolerance: 0.2 mm." +
		" The zone is diametral (⌀)." +
		" Material condition: Maximum Material Condition." +
		" Datums: A | B | C." +
		" Zone shape: cylindrical."
	assert.Equal(t, want, Explain(r))
}

func TestExplainToleranceWithoutUnit(t *testing.T) {
	r := Requirement{Symbol: SymbolFlatness, ToleranceValue: dec(t, "0.1")}
	assert.Equal(t,
		"Controls the flatness of the surface without using any datums. Tolerance: 0.1.",
		Explain(r))
}

func TestExplainMaterialConditionFullNames(t *testing.T) {
	for _, tc := range []struct {
		m    MaterialCondition
		want string
	}{
		{RFS, "Material condition: Regardless of Feature Size."},
		{MMC, "Material condition: Maximum Material Condition."},
		{LMC, "Material condition: Least Material Condition."},
	} {
		got := Explain(Requirement{Symbol: SymbolPosition, MaterialCondition: tc.m})
		assert.Contains(t, got, tc.want)
	}
}

func TestExplainLegacyControlsCarryDeprecationNote(t *testing.T) {
	for _, s := range []Symbol{SymbolSymmetry, SymbolConcentricity} {
		got := Explain(Requirement{Symbol: s})
		assert.True(t, strings.HasSuffix(got, deprecationNote), "Explain(%s) = %q", s, got)
	}
	got := Explain(Requirement{Symbol: SymbolPosition})
	assert.NotContains(t, got, "discourages")
}

func TestExplainIsDeterministic(t *testing.T) {
	r := Requirement{
		Symbol:            SymbolSymmetry,
		ToleranceValue:    dec(t, "0.25"),
		ToleranceUnit:     UnitIn,
		MaterialCondition: LMC,
		DatumRefs:         []string{"B", "A"},
		ZoneShape:         ZonePlanar,
	}
	assert.Equal(t, Explain(r), Explain(r))
}
