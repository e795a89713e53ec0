package insight

import "github.com/calibrant/gdtbench/gdt"

// Rule inspects a project snapshot and returns zero or more findings. Rules
// must not mutate the snapshot and must not depend on each other.
type Rule func(p gdt.Project, reqs []gdt.Requirement) []Finding

// rules run in registration order. The order is a contract: when several
// conditions co-occur, callers see their findings in this sequence, and
// within one rule in requirement iteration order.
var rules = []Rule{
	ruleBonusTolerance,
	rulePositionCompleteness,
	ruleExpectedTolerance,
	ruleOverSpecification,
	ruleLegacyControls,
	ruleDatumOnFormControl,
	ruleRepeatedDatum,
	ruleUnitMismatch,
	ruleDuplicateTitles,
	ruleZoneShapeSanity,
}

// Diagnose evaluates every rule against the snapshot and returns the
// accumulated findings. It is pure and idempotent: an unchanged snapshot
// yields an identical list, order included.
func Diagnose(p gdt.Project, reqs []gdt.Requirement) []Finding {
	var out []Finding
	for _, rule := range rules {
		out = append(out, rule(p, reqs)...)
	}
	return out
}
