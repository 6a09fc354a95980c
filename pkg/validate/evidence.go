package validate

import (
	"fmt"

	"github.com/meridian-grc/keel/pkg/policy"
)

// ValidateEvidence checks the evidence admissibility module, including the
// cross-check that no evidence type is simultaneously allowed and
// forbidden.
func ValidateEvidence(doc *policy.EvidenceDocument) *ValidationResult {
	r := newResult()
	checkSchemaVersion(r, doc.SchemaVersion)

	allowed := make(map[string]bool)
	checkTypes(r, "allowedEvidenceTypes", doc.AllowedEvidenceTypes, allowed)

	forbidden := make(map[string]bool)
	checkTypes(r, "forbiddenEvidenceTypes", doc.ForbiddenEvidenceTypes, forbidden)

	for i, t := range doc.ForbiddenEvidenceTypes {
		if t.ID != "" && allowed[t.ID] {
			r.addError(fmt.Sprintf("forbiddenEvidenceTypes[%d].id", i), CodeEvidenceTypeConflict,
				"evidence type %q is both allowed and forbidden", t.ID)
		}
	}

	r.IsComplete = len(doc.AllowedEvidenceTypes) > 0
	return r
}

func checkTypes(r *ValidationResult, listName string, types []policy.EvidenceType, seen map[string]bool) {
	for i, t := range types {
		field := func(name string) string { return fmt.Sprintf("%s[%d].%s", listName, i, name) }

		if t.ID == "" {
			r.addError(field("id"), CodeEvidenceTypeIDRequired, "evidence type id is required")
		} else if seen[t.ID] {
			r.addError(field("id"), CodeEvidenceTypeIDsNotUnique, "evidence type id %q is declared more than once", t.ID)
		} else {
			seen[t.ID] = true
		}

		if t.Name == "" {
			r.addError(field("name"), CodeEvidenceNameRequired, "evidence type name is required")
		}
		if !t.Category.Valid() {
			r.addError(field("category"), CodeEvidenceCategoryInvalid,
				"evidence category %q is not one of FINANCIAL, LEGAL, OPERATIONAL, MARKET, TECHNICAL", t.Category)
		}
	}
}
