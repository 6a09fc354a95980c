package validate

import (
	"fmt"
	"sort"

	"github.com/meridian-grc/keel/pkg/policy"
)

// ValidateMandates checks the mandates module. A document with zero
// mandates is structurally valid but incomplete: a baseline cannot publish
// without at least one declared mandate.
func ValidateMandates(doc *policy.MandatesDocument) *ValidationResult {
	r := newResult()
	checkSchemaVersion(r, doc.SchemaVersion)

	seen := make(map[string]bool)
	priorities := make(map[int]int) // priority -> active count
	activePrimary := false

	for i, m := range doc.Mandates {
		field := func(name string) string { return fmt.Sprintf("mandates[%d].%s", i, name) }

		if m.ID == "" {
			r.addError(field("id"), CodeMandateIDRequired, "mandate id is required")
		} else if seen[m.ID] {
			r.addError(field("id"), CodeMandateIDsNotUnique, "mandate id %q is declared more than once", m.ID)
		} else {
			seen[m.ID] = true
		}

		if m.Name == "" {
			r.addError(field("name"), CodeMandateNameRequired, "mandate name is required")
		}
		if !m.Type.Valid() {
			r.addError(field("type"), CodeMandateTypeInvalid, "mandate type %q is not one of PRIMARY, THEMATIC, CARVEOUT", m.Type)
		}
		if !m.Status.Valid() {
			r.addError(field("status"), CodeMandateStatusInvalid, "mandate status %q is not one of ACTIVE, RETIRED, DRAFT", m.Status)
		}
		if m.Priority <= 0 {
			r.addError(field("priority"), CodeMandatePriorityInvalid, "mandate priority must be a positive integer, got %d", m.Priority)
		}
		if m.PrimaryObjective == "" {
			r.addError(field("primaryObjective"), CodeMandateObjectiveRequired, "mandate primary objective is required")
		}
		if len(m.Scope.Geographies) == 0 {
			r.addError(field("scope.geographies"), CodeMandateScopeEmpty, "mandate geography scope must not be empty")
		}
		if len(m.Scope.Domains) == 0 {
			r.addError(field("scope.domains"), CodeMandateScopeEmpty, "mandate domain scope must not be empty")
		}
		if len(m.Scope.Stages) == 0 {
			r.addError(field("scope.stages"), CodeMandateScopeEmpty, "mandate stage scope must not be empty")
		}
		for j, hc := range m.HardConstraints {
			if hc.Dimension == "" || hc.Operator == "" || hc.Value == nil {
				r.addError(fmt.Sprintf("mandates[%d].hardConstraints[%d]", i, j),
					CodeMandateConstraintBad, "hard constraint needs dimension, operator, and value")
			}
		}

		if m.Status == policy.MandateActive {
			priorities[m.Priority]++
			if m.Type == policy.MandatePrimary {
				activePrimary = true
			}
		}
	}

	if len(doc.Mandates) > 0 && !activePrimary {
		r.addWarning("mandates", CodeNoActivePrimaryMandate, "no mandate is both ACTIVE and PRIMARY")
	}
	dupPriorities := make([]int, 0, len(priorities))
	for p, n := range priorities {
		if n > 1 {
			dupPriorities = append(dupPriorities, p)
		}
	}
	sort.Ints(dupPriorities)
	for _, p := range dupPriorities {
		r.addWarning("mandates", CodeDuplicateMandatePriority,
			"%d active mandates share priority %d", priorities[p], p)
	}

	r.IsComplete = len(doc.Mandates) > 0
	return r
}
