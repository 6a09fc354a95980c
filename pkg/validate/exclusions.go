package validate

import (
	"fmt"

	"github.com/meridian-grc/keel/pkg/policy"
)

// ValidateExclusions checks the exclusions module. An empty collection is
// both valid and complete: a portfolio may legitimately exclude nothing.
func ValidateExclusions(doc *policy.ExclusionsDocument) *ValidationResult {
	r := newResult()
	checkSchemaVersion(r, doc.SchemaVersion)

	seen := make(map[string]bool)
	for i, e := range doc.Exclusions {
		field := func(name string) string { return fmt.Sprintf("exclusions[%d].%s", i, name) }

		if e.ID == "" {
			r.addError(field("id"), CodeExclusionIDRequired, "exclusion id is required")
		} else if seen[e.ID] {
			r.addError(field("id"), CodeExclusionIDsNotUnique, "exclusion id %q is declared more than once", e.ID)
		} else {
			seen[e.ID] = true
		}

		if e.Name == "" {
			r.addError(field("name"), CodeExclusionNameRequired, "exclusion name is required")
		}
		if !e.Type.Valid() {
			r.addError(field("type"), CodeExclusionTypeInvalid, "exclusion type %q is not HARD or CONDITIONAL", e.Type)
		}
		if e.Dimension == "" {
			r.addError(field("dimension"), CodeExclusionDimensionRequired, "exclusion dimension is required")
		}
		if len(e.Values) == 0 {
			r.addError(field("values"), CodeExclusionValuesEmpty, "exclusion must list at least one value")
		}
		if e.Rationale == "" {
			r.addError(field("rationale"), CodeExclusionRationaleRequired, "exclusion rationale is required")
		}
		if e.Type == policy.ExclusionConditional && e.ApprovalRequired == nil {
			r.addError(field("approvalRequired"), CodeConditionalNeedsApproval,
				"CONDITIONAL exclusion must declare who may approve an override")
		}
	}

	r.IsComplete = true
	return r
}
