package engine

import (
	"fmt"

	"github.com/meridian-grc/keel/pkg/policy"
)

// EvaluateBlocking decides whether the action must halt. Two independent
// triggers, each sufficient on its own and both reported when both fire:
//
//  1. a declared hard breach on a DECISION action with no exception draft,
//  2. a positive case.hardRiskBreaches count with no exception draft.
func EvaluateBlocking(ctx *policy.EvaluationContext) (bool, []string) {
	if ctx == nil {
		return false, nil
	}
	draft := ctx.Exception != nil && ctx.Exception.HasExceptionDraft

	blocked := false
	var reasons []string

	if ctx.ActionType == policy.ActionDecision &&
		ctx.Exception != nil && ctx.Exception.HardBreach && !draft {
		blocked = true
		reasons = append(reasons, "hard breach declared with no exception draft")
	}

	if n, ok := caseBreachCount(ctx); ok && n > 0 && !draft {
		blocked = true
		reasons = append(reasons, fmt.Sprintf("%d hard risk breach(es) with no exception draft", n))
	}

	return blocked, reasons
}

func caseBreachCount(ctx *policy.EvaluationContext) (int, bool) {
	root, ok := ctx.Root("case")
	if !ok {
		return 0, false
	}
	val, ok := root.Resolve([]string{"hardRiskBreaches"})
	if !ok {
		return 0, false
	}
	f, ok := toFloat(val)
	if !ok {
		return 0, false
	}
	return int(f), true
}
