package engine

import "github.com/meridian-grc/keel/pkg/policy"

// ExceptionClassification is the outcome of severity classification.
// Class is nil when the policy defines no severity classes.
type ExceptionClassification struct {
	Class        *policy.ExceptionSeverityClass `json:"class,omitempty"`
	ClassIndex   int                            `json:"classIndex"`
	Requirements Requirements                   `json:"requirements"`
	Reasons      []string                       `json:"reasons"`
}

// ClassifyException walks the severity classes in document order and
// returns the first whose condition group matches. When no class matches a
// non-empty list, the first defined class is assigned and the fallback is
// recorded as a diagnostic; this mirrors how exception routing has always
// behaved and is deliberately left intact.
func ClassifyException(exc *policy.ExceptionContext, pol *policy.GovernancePolicy) ExceptionClassification {
	out := ExceptionClassification{ClassIndex: -1}
	if pol == nil || pol.Exceptions == nil || len(pol.Exceptions.ExceptionSeverity) == 0 {
		out.Reasons = append(out.Reasons, "no severity classes defined; exception left unclassified")
		return out
	}

	ctx := &policy.EvaluationContext{
		ActionType: policy.ActionException,
		Exception:  exc,
	}
	classes := pol.Exceptions.ExceptionSeverity
	for i := range classes {
		res := EvaluateConditions(classes[i].Conditions, ctx)
		if res.Matches {
			out.Class = &classes[i]
			out.ClassIndex = i
			out.Requirements = classRequirements(classes[i])
			return out
		}
	}

	// First-defined fallback: assign index 0 and say so.
	out.Class = &classes[0]
	out.ClassIndex = 0
	out.Requirements = classRequirements(classes[0])
	out.Reasons = append(out.Reasons, "no severity class matched; defaulting to first defined class")
	return out
}

// classRequirements copies a class's own requirement lists verbatim; only
// one class ever applies, so there is nothing to merge.
func classRequirements(c policy.ExceptionSeverityClass) Requirements {
	req := Requirements{
		CommitteeApprovals: make([]policy.CommitteeApproval, len(c.RequiredApprovals)),
		Signoffs:           make([]policy.Signoff, len(c.RequiredSignoffs)),
	}
	copy(req.CommitteeApprovals, c.RequiredApprovals)
	copy(req.Signoffs, c.RequiredSignoffs)
	return req
}
