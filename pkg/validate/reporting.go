package validate

import (
	"fmt"

	"github.com/meridian-grc/keel/pkg/policy"
)

// ValidateReporting checks the reporting obligations module. An empty
// collection is valid and complete.
func ValidateReporting(doc *policy.ReportingDocument) *ValidationResult {
	r := newResult()
	checkSchemaVersion(r, doc.SchemaVersion)

	seen := make(map[string]bool)
	for i, p := range doc.Packs {
		field := func(name string) string { return fmt.Sprintf("packs[%d].%s", i, name) }

		if p.ID == "" {
			r.addError(field("id"), CodeReportPackIDRequired, "reporting pack id is required")
		} else if seen[p.ID] {
			r.addError(field("id"), CodeReportPackIDsNotUnique, "reporting pack id %q is declared more than once", p.ID)
		} else {
			seen[p.ID] = true
		}

		if p.Name == "" {
			r.addError(field("name"), CodeReportPackNameRequired, "reporting pack name is required")
		}
		if p.Frequency == "" {
			r.addError(field("frequency"), CodeReportFrequencyRequired, "reporting frequency is required")
		}
		if len(p.Audience) == 0 {
			r.addError(field("audience"), CodeReportAudienceEmpty, "reporting audience must not be empty")
		}
		if len(p.Sections) == 0 {
			r.addError(field("sections"), CodeReportSectionsEmpty, "reporting pack must declare at least one section")
		}
		if len(p.SignoffRoles) == 0 {
			r.addError(field("signoffRoles"), CodeReportSignoffRolesEmpty, "reporting pack must declare signoff roles")
		}
	}

	r.IsComplete = true
	return r
}
