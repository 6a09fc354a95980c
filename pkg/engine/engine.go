package engine

import (
	"fmt"

	"github.com/meridian-grc/keel/pkg/policy"
)

// Engine bundles the pure evaluation components behind one entry point.
// It holds only the CEL guard cache; everything else is stateless, so one
// Engine may serve concurrent evaluations without coordination.
type Engine struct {
	guard *GuardEvaluator
}

// New constructs an Engine with a ready guard evaluator.
func New() (*Engine, error) {
	guard, err := NewGuardEvaluator()
	if err != nil {
		return nil, fmt.Errorf("engine init: %w", err)
	}
	return &Engine{guard: guard}, nil
}

// GovernanceEvaluation is the full outcome of a decision evaluation.
type GovernanceEvaluation struct {
	TriggeredTiers []TierMatch  `json:"triggeredTiers"`
	Requirements   Requirements `json:"requirements"`
	Blocked        bool         `json:"blocked"`
	Reasons        []string     `json:"reasons"`
}

// EvaluateGovernance matches every approval tier, merges the triggered
// requirements, and applies the blocking policy. Triggered tier names are
// appended to the reasons purely for explanation; they never affect the
// blocked flag.
func (e *Engine) EvaluateGovernance(ctx *policy.EvaluationContext, pol *policy.GovernancePolicy) GovernanceEvaluation {
	matches, diagnostics := MatchTiers(pol, ctx, e.guard)
	blocked, reasons := EvaluateBlocking(ctx)

	for _, m := range matches {
		reasons = append(reasons, fmt.Sprintf("approval tier triggered: %s", m.Tier.Name))
	}
	reasons = append(reasons, diagnostics...)

	return GovernanceEvaluation{
		TriggeredTiers: matches,
		Requirements:   MergeRequirements(matches),
		Blocked:        blocked,
		Reasons:        reasons,
	}
}

// ExceptionEvaluation is the outcome of exception classification. Blocked
// is always false here: an exception flow is how a blocked decision gets
// unblocked, so classification itself never halts.
type ExceptionEvaluation struct {
	SeverityClass *policy.ExceptionSeverityClass `json:"severityClass,omitempty"`
	ClassIndex    int                            `json:"classIndex"`
	Requirements  Requirements                   `json:"requirements"`
	Blocked       bool                           `json:"blocked"`
	Reasons       []string                       `json:"reasons"`
}

// EvaluateExceptionPolicy classifies the exception context into a severity
// class and returns that class's own requirements verbatim.
func (e *Engine) EvaluateExceptionPolicy(exc *policy.ExceptionContext, pol *policy.GovernancePolicy) ExceptionEvaluation {
	c := ClassifyException(exc, pol)
	return ExceptionEvaluation{
		SeverityClass: c.Class,
		ClassIndex:    c.ClassIndex,
		Requirements:  c.Requirements,
		Blocked:       false,
		Reasons:       c.Reasons,
	}
}

// CanParticipate is the method form of the package-level resolver, kept on
// Engine so callers wire one dependency.
func (e *Engine) CanParticipate(pol *policy.GovernancePolicy, callerRoles []string, isCaseOwner bool) Participation {
	return CanParticipate(pol, callerRoles, isCaseOwner)
}
