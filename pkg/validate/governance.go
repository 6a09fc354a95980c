package validate

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/meridian-grc/keel/pkg/engine"
	"github.com/meridian-grc/keel/pkg/policy"
)

// guardCompiler is shared across validations; it only caches compiled CEL
// programs and never observes runtime context.
var guardCompiler = sync.OnceValue(func() *engine.GuardEvaluator {
	g, err := engine.NewGuardEvaluator()
	if err != nil {
		return nil
	}
	return g
})

// ValidateGovernance checks the governance thresholds module from its typed
// form. Presence checks that need the raw payload (absent vs zero-valued
// booleans) are applied from a re-marshaled view of the document.
func ValidateGovernance(doc *policy.GovernanceDocument) *ValidationResult {
	raw := map[string]any{}
	if b, err := json.Marshal(doc); err == nil {
		_ = json.Unmarshal(b, &raw)
	}
	return validateGovernance(doc, raw)
}

func validateGovernance(doc *policy.GovernanceDocument, raw map[string]any) *ValidationResult {
	r := newResult()
	checkSchemaVersion(r, doc.SchemaVersion)

	roles := validateRoles(r, doc.Roles)
	committees := validateCommittees(r, doc.Committees, roles)
	validateTiers(r, doc.ApprovalTiers, committees, roles)
	validateExceptionBlock(r, doc.Exceptions, committees, roles)
	validateConflictsBlock(r, doc.Conflicts, raw)
	validateAuditBlock(r, doc.Audit, raw)

	if len(doc.Committees) == 0 {
		r.addWarning("committees", CodeNoCommitteesDefined, "governance defines no committees; no body can approve anything")
	}
	if len(doc.ApprovalTiers) == 0 {
		r.addWarning("approvalTiers", CodeNoApprovalTiersDefined, "governance defines no approval tiers; no action requires approval")
	}

	r.IsComplete = len(doc.Roles) > 0 &&
		len(doc.Committees) > 0 &&
		len(doc.ApprovalTiers) > 0 &&
		doc.Exceptions != nil &&
		doc.Conflicts != nil &&
		doc.Audit != nil
	return r
}

func validateRoles(r *ValidationResult, list []policy.Role) map[string]bool {
	roles := make(map[string]bool, len(list))
	for i, role := range list {
		field := func(name string) string { return fmt.Sprintf("roles[%d].%s", i, name) }
		if role.ID == "" {
			r.addError(field("id"), CodeRoleIDRequired, "role id is required")
		} else if roles[role.ID] {
			r.addError(field("id"), CodeRoleIDsNotUnique, "role id %q is declared more than once", role.ID)
		} else {
			roles[role.ID] = true
		}
		if role.Name == "" {
			r.addError(field("name"), CodeRoleNameRequired, "role name is required")
		}
	}
	return roles
}

func validateCommittees(r *ValidationResult, list []policy.Committee, roles map[string]bool) map[string]bool {
	committees := make(map[string]bool, len(list))
	for i, c := range list {
		field := func(name string) string { return fmt.Sprintf("committees[%d].%s", i, name) }
		if c.ID == "" {
			r.addError(field("id"), CodeCommitteeIDRequired, "committee id is required")
		} else if committees[c.ID] {
			r.addError(field("id"), CodeCommitteeIDsNotUnique, "committee id %q is declared more than once", c.ID)
		} else {
			committees[c.ID] = true
		}

		if len(c.RoleIDs) == 0 {
			r.addError(field("roleIds"), CodeCommitteeRolesEmpty, "committee must have at least one role")
		}
		for j, roleID := range c.RoleIDs {
			if !roles[roleID] {
				r.addError(fmt.Sprintf("committees[%d].roleIds[%d]", i, j), CodeCommitteeRoleUnresolved,
					"committee references undeclared role %q", roleID)
			}
		}

		q := c.Quorum
		if q.MinVotes <= 0 || q.MinYesVotes <= 0 || q.MinYesVotes > q.MinVotes {
			r.addError(field("quorum"), CodeQuorumInvalid,
				"quorum requires 0 < minYesVotes (%d) <= minVotes (%d)", q.MinYesVotes, q.MinVotes)
		}
		if !q.VoteType.Valid() {
			r.addError(field("quorum.voteType"), CodeVoteTypeInvalid,
				"vote type %q is not one of UNANIMOUS, MAJORITY, SUPERMAJORITY, SIMPLE", q.VoteType)
		}
	}
	return committees
}

func validateTiers(r *ValidationResult, list []policy.ApprovalTier, committees, roles map[string]bool) {
	seen := make(map[string]bool, len(list))
	for i, t := range list {
		prefix := fmt.Sprintf("approvalTiers[%d]", i)
		if t.ID == "" {
			r.addError(prefix+".id", CodeTierIDRequired, "approval tier id is required")
		} else if seen[t.ID] {
			r.addError(prefix+".id", CodeTierIDsNotUnique, "approval tier id %q is declared more than once", t.ID)
		} else {
			seen[t.ID] = true
		}

		if len(t.Conditions) == 0 {
			r.addError(prefix+".conditions", CodeTierConditionsEmpty, "approval tier must declare at least one condition")
		}
		validateConditionList(r, prefix+".conditions", t.Conditions)
		validateApprovals(r, prefix+".requiredApprovals", t.RequiredApprovals, committees)
		validateSignoffs(r, prefix+".requiredSignoffs", t.RequiredSignoffs, roles)

		if t.GuardExpression != "" {
			if g := guardCompiler(); g != nil {
				if err := g.Compile(t.GuardExpression); err != nil {
					r.addError(prefix+".guardExpression", CodeGuardExpressionInvalid,
						"guard expression does not compile: %v", err)
				}
			}
		}
	}
}

func validateConditionList(r *ValidationResult, prefix string, conds []policy.Condition) {
	for j, c := range conds {
		field := fmt.Sprintf("%s[%d]", prefix, j)
		if c.Field == "" {
			r.addError(field+".field", CodeConditionFieldRequired, "condition field path is required")
		}
		if !c.Operator.Valid() {
			r.addError(field+".operator", CodeConditionOperatorBad, "condition operator %q is not recognized", c.Operator)
		}
	}
}

func validateApprovals(r *ValidationResult, prefix string, list []policy.CommitteeApproval, committees map[string]bool) {
	for j, a := range list {
		field := fmt.Sprintf("%s[%d]", prefix, j)
		if !committees[a.CommitteeID] {
			r.addError(field+".committeeId", CodeTierCommitteeUnresolved,
				"references undeclared committee %q", a.CommitteeID)
		}
		if a.MinYesVotes <= 0 {
			r.addError(field+".minYesVotes", CodeTierMinYesVotesInvalid,
				"minYesVotes must be positive, got %d", a.MinYesVotes)
		}
	}
}

func validateSignoffs(r *ValidationResult, prefix string, list []policy.Signoff, roles map[string]bool) {
	for j, s := range list {
		if !roles[s.RoleID] && s.RoleID != policy.CaseOwnerRole {
			r.addError(fmt.Sprintf("%s[%d].roleId", prefix, j), CodeTierRoleUnresolved,
				"references undeclared role %q", s.RoleID)
		}
	}
}

// validateExceptionBlock validates each severity class the same way as a
// tier body, in document order.
func validateExceptionBlock(r *ValidationResult, ep *policy.ExceptionPolicy, committees, roles map[string]bool) {
	if ep == nil {
		return
	}
	if ep.ExpiryDefaultDays <= 0 {
		r.addError("exceptionPolicy.expiryDefaultDays", CodeExceptionExpiryInvalid,
			"expiryDefaultDays must be positive, got %d", ep.ExpiryDefaultDays)
	}
	for i, class := range ep.ExceptionSeverity {
		prefix := fmt.Sprintf("exceptionPolicy.exceptionSeverity[%d]", i)
		if class.Severity == "" {
			r.addError(prefix+".severity", CodeSeverityClassInvalid, "severity class needs a severity label")
		}
		if len(class.Conditions) == 0 {
			r.addError(prefix+".conditions", CodeSeverityClassInvalid, "severity class must declare at least one condition")
		}
		validateConditionList(r, prefix+".conditions", class.Conditions)
		validateApprovals(r, prefix+".requiredApprovals", class.RequiredApprovals, committees)
		validateSignoffs(r, prefix+".requiredSignoffs", class.RequiredSignoffs, roles)
	}
}

// validateConflictsBlock needs the raw payload: a zero-valued boolean and a
// missing key unmarshal identically, and blockedRoles may arrive as any
// JSON type.
func validateConflictsBlock(r *ValidationResult, cp *policy.ConflictsPolicy, raw map[string]any) {
	if cp == nil {
		return
	}
	block, _ := raw["conflictsPolicy"].(map[string]any)
	for _, key := range []string{"requiresDisclosure", "recusalRequired"} {
		if _, ok := block[key].(bool); !ok {
			r.addError("conflictsPolicy."+key, CodeConflictsFieldsMissing,
				"conflicts policy boolean field %q is missing or not a boolean", key)
		}
	}
	// A JSON null is how a nil Go slice round-trips; treat it like an
	// absent key and reserve the code for genuinely mistyped values.
	if rolesRaw, ok := block["blockedRoles"]; ok && rolesRaw != nil {
		if _, isArray := rolesRaw.([]any); !isArray {
			r.addError("conflictsPolicy.blockedRoles", CodeBlockedRolesNotArray, "blockedRoles must be an array")
		}
	}
}

func validateAuditBlock(r *ValidationResult, ap *policy.AuditPolicy, raw map[string]any) {
	if ap == nil {
		return
	}
	block, _ := raw["audit"].(map[string]any)
	for _, key := range []string{"decisionRecordRequired", "retainVersions"} {
		if _, ok := block[key].(bool); !ok {
			r.addError("audit."+key, CodeAuditFieldsMissing,
				"audit policy boolean field %q is missing or not a boolean", key)
		}
	}
	if !ap.SignoffCapture.Valid() {
		r.addError("audit.signoffCapture", CodeSignoffCaptureInvalid,
			"signoff capture %q is not one of ELECTRONIC, MANUAL, BOTH", ap.SignoffCapture)
	}
}
