package engine

import (
	"fmt"
	"sort"

	"github.com/meridian-grc/keel/pkg/policy"
)

// TierMatch is one triggered approval tier together with its evidence.
type TierMatch struct {
	Tier              policy.ApprovalTier `json:"tier"`
	MatchedConditions []policy.Condition  `json:"matchedConditions"`
}

// MatchTiers evaluates every approval tier against the context. All tiers
// are evaluated; there is no short-circuit, and multiple simultaneous
// matches are expected. Guard diagnostics are returned separately so the
// caller can surface them without affecting the match set.
func MatchTiers(pol *policy.GovernancePolicy, ctx *policy.EvaluationContext, guard *GuardEvaluator) ([]TierMatch, []string) {
	if pol == nil {
		return nil, nil
	}
	var matches []TierMatch
	var diagnostics []string
	for _, tier := range pol.ApprovalTiers {
		res := EvaluateConditions(tier.Conditions, ctx)
		if !res.Matches {
			continue
		}
		if tier.GuardExpression != "" {
			if guard == nil {
				diagnostics = append(diagnostics,
					fmt.Sprintf("tier %q guard skipped: no guard evaluator", tier.ID))
				continue
			}
			ok, err := guard.Evaluate(tier.GuardExpression, ctx)
			if err != nil {
				diagnostics = append(diagnostics,
					fmt.Sprintf("tier %q guard error (tier not triggered): %v", tier.ID, err))
				continue
			}
			if !ok {
				continue
			}
		}
		matches = append(matches, TierMatch{Tier: tier, MatchedConditions: res.Matched})
	}
	return matches, diagnostics
}

// Requirements is the normalized approval demand after merging tiers.
type Requirements struct {
	CommitteeApprovals []policy.CommitteeApproval `json:"committeeApprovals"`
	Signoffs           []policy.Signoff           `json:"signoffs"`
}

// MergeRequirements reduces the matched tiers into one requirement set:
// per committee the maximum minYesVotes observed, per role the OR of the
// required flags. Output is sorted by grouping key so identical inputs
// produce identical bytes.
func MergeRequirements(matches []TierMatch) Requirements {
	votes := make(map[string]int)
	signoff := make(map[string]bool)

	for _, m := range matches {
		for _, a := range m.Tier.RequiredApprovals {
			if cur, ok := votes[a.CommitteeID]; !ok || a.MinYesVotes > cur {
				votes[a.CommitteeID] = a.MinYesVotes
			}
		}
		for _, s := range m.Tier.RequiredSignoffs {
			signoff[s.RoleID] = signoff[s.RoleID] || s.Required
		}
	}

	req := Requirements{
		CommitteeApprovals: make([]policy.CommitteeApproval, 0, len(votes)),
		Signoffs:           make([]policy.Signoff, 0, len(signoff)),
	}
	for id, v := range votes {
		req.CommitteeApprovals = append(req.CommitteeApprovals, policy.CommitteeApproval{
			CommitteeID: id, MinYesVotes: v,
		})
	}
	for id, required := range signoff {
		req.Signoffs = append(req.Signoffs, policy.Signoff{RoleID: id, Required: required})
	}
	sort.Slice(req.CommitteeApprovals, func(i, j int) bool {
		return req.CommitteeApprovals[i].CommitteeID < req.CommitteeApprovals[j].CommitteeID
	})
	sort.Slice(req.Signoffs, func(i, j int) bool {
		return req.Signoffs[i].RoleID < req.Signoffs[j].RoleID
	})
	return req
}
