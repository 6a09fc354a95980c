package engine

import (
	"fmt"

	"github.com/meridian-grc/keel/pkg/policy"
)

// Participation is the conflict-of-interest eligibility verdict for one
// caller. Reasons collect every rule that fired, for audit display.
type Participation struct {
	CanVote    bool     `json:"canVote"`
	CanSignoff bool     `json:"canSignoff"`
	Reasons    []string `json:"reasons"`
}

// CanParticipate computes vote and signoff eligibility under the policy's
// conflicts rules. Both start true; blocked-role membership revokes both,
// case ownership combined with a blocked CASE_OWNER pseudo-role revokes
// both, and a recusal requirement revokes voting (only) for the case owner.
func CanParticipate(pol *policy.GovernancePolicy, callerRoles []string, isCaseOwner bool) Participation {
	p := Participation{CanVote: true, CanSignoff: true}
	if pol == nil || pol.Conflicts == nil {
		return p
	}
	conflicts := pol.Conflicts

	blocked := make(map[string]bool, len(conflicts.BlockedRoles))
	for _, r := range conflicts.BlockedRoles {
		blocked[r] = true
	}

	for _, r := range callerRoles {
		if blocked[r] {
			p.CanVote = false
			p.CanSignoff = false
			p.Reasons = append(p.Reasons, fmt.Sprintf("role %q is blocked from participation", r))
		}
	}

	if isCaseOwner && blocked[policy.CaseOwnerRole] {
		p.CanVote = false
		p.CanSignoff = false
		p.Reasons = append(p.Reasons, "case owner is blocked from participation")
	}

	if conflicts.RecusalRequired && isCaseOwner {
		p.CanVote = false
		p.Reasons = append(p.Reasons, "recusal required: case owner may not vote")
	}

	return p
}
