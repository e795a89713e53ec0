package gdt

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Glyphs used inside a feature control frame beyond the symbol itself.
const (
	DiameterGlyph = "⌀"

	glyphMMC = "Ⓜ"
	glyphLMC = "Ⓛ"
	glyphRFS = "Ⓢ"
)

// FCFDelimiter separates the compartments of a rendered feature control frame.
const FCFDelimiter = " | "

// materialGlyph maps a modifier to its circled frame glyph.
var materialGlyph = map[MaterialCondition]string{
	MMC: glyphMMC,
	LMC: glyphLMC,
	RFS: glyphRFS,
}

// EncodeFCF renders a feature control frame as display text. It is pure and
// deterministic: identical inputs always produce identical output.
//
// Compartments, in order: symbol glyph (raw key for unrecognized symbols),
// tolerance block (⌀ modifier, exact-decimal value, unit), material condition
// glyph, then each datum letter. Empty compartments are omitted. The decimal
// value renders at its given scale; no float rounding is involved.
func EncodeFCF(symbol Symbol, tol *decimal.Decimal, unit Unit, diameter bool, material MaterialCondition, datums []string) string {
	parts := []string{Glyph(symbol)}

	var block strings.Builder
	if diameter {
		block.WriteString(DiameterGlyph)
	}
	if tol != nil {
		block.WriteString(tol.String())
		if unit != "" {
			block.WriteString(" ")
			block.WriteString(string(unit))
		}
	}
	if block.Len() > 0 {
		parts = append(parts, block.String())
	}

	if g, ok := materialGlyph[material]; ok {
		parts = append(parts, g)
	}

	parts = append(parts, datums...)
	return strings.Join(parts, FCFDelimiter)
}

// EncodeRequirement renders the feature control frame for a requirement
// snapshot. Callers persisting requirements use this to refresh FCFText.
func EncodeRequirement(r Requirement) string {
	return EncodeFCF(r.Symbol, r.ToleranceValue, r.ToleranceUnit, r.DiameterModifier, r.MaterialCondition, r.DatumRefs)
}
