package validate

import (
	"fmt"

	"github.com/meridian-grc/keel/pkg/policy"
)

// ValidateRiskAppetite checks the risk appetite module. A missing framework
// name is advisory only; the tolerance bands are what the engine consumes.
func ValidateRiskAppetite(doc *policy.RiskAppetiteDocument) *ValidationResult {
	r := newResult()
	checkSchemaVersion(r, doc.SchemaVersion)

	if doc.FrameworkName == "" {
		r.addWarning("frameworkName", CodeRiskFrameworkNameMissing, "risk framework name is not set")
	}

	seen := make(map[string]bool)
	for i, d := range doc.Dimensions {
		field := func(name string) string { return fmt.Sprintf("dimensions[%d].%s", i, name) }

		if d.ID == "" {
			r.addError(field("id"), CodeRiskDimensionIDRequired, "risk dimension id is required")
		} else if seen[d.ID] {
			r.addError(field("id"), CodeRiskDimensionIDsNotUnique, "risk dimension id %q is declared more than once", d.ID)
		} else {
			seen[d.ID] = true
		}

		if d.Name == "" {
			r.addError(field("name"), CodeRiskDimensionNameRequired, "risk dimension name is required")
		}
		if d.ToleranceMin < 0 || d.ToleranceMax < 0 || d.ToleranceMin > d.ToleranceMax {
			r.addError(field("tolerance"), CodeRiskToleranceRangeInvalid,
				"tolerance range [%v, %v] must be non-negative with min <= max", d.ToleranceMin, d.ToleranceMax)
		}
	}

	r.IsComplete = len(doc.Dimensions) > 0
	return r
}
