// Package engine evaluates governance policy against runtime decision
// context: condition matching, tier triggering, requirement merging,
// exception classification, blocking, and participation eligibility.
//
// Every function here is pure and fail-closed: malformed or missing data
// resolves to "condition not met", never to an error or a panic, so broken
// policy data can never silently grant an approval.
package engine

import (
	"strings"

	"github.com/meridian-grc/keel/pkg/policy"
)

// EvaluateCondition evaluates one predicate against the context.
// Missing roots, missing fields, type mismatches, and unknown operators all
// evaluate to false.
func EvaluateCondition(cond policy.Condition, ctx *policy.EvaluationContext) bool {
	segments := strings.Split(cond.Field, ".")
	if len(segments) < 2 {
		return false
	}
	root, ok := ctx.Root(segments[0])
	if !ok {
		return false
	}
	val, ok := root.Resolve(segments[1:])
	if !ok {
		return false
	}

	switch cond.Operator {
	case policy.OpEquals:
		return equalValues(val, cond.Value)
	case policy.OpNotEquals:
		return !equalValues(val, cond.Value)
	case policy.OpGT, policy.OpGTE, policy.OpLT, policy.OpLTE:
		return compareNumeric(cond.Operator, val, cond.Value)
	case policy.OpIn:
		return memberOf(val, cond.Value)
	case policy.OpNotIn:
		list, ok := asList(cond.Value)
		if !ok {
			return false
		}
		for _, item := range list {
			if equalValues(val, item) {
				return false
			}
		}
		return true
	case policy.OpContains:
		return contains(val, cond.Value)
	}
	// Unknown operator: fail closed.
	return false
}

// ConditionsResult is the aggregate outcome of a condition group, including
// the subset of conditions that individually matched (kept for diagnostics).
type ConditionsResult struct {
	Matches bool               `json:"matches"`
	Matched []policy.Condition `json:"matched"`
}

// EvaluateConditions combines a condition group. Conditions tagged with OR
// logic are additive: the group matches when at least one OR condition
// matches, or when every AND condition matches. An empty group never
// matches.
func EvaluateConditions(conds []policy.Condition, ctx *policy.EvaluationContext) ConditionsResult {
	if len(conds) == 0 {
		return ConditionsResult{}
	}

	var matched []policy.Condition
	hasOr := false
	orMatched := false
	allAndMatched := true
	hasAnd := false

	for _, c := range conds {
		hit := EvaluateCondition(c, ctx)
		if hit {
			matched = append(matched, c)
		}
		if c.Logic == policy.LogicOr {
			hasOr = true
			if hit {
				orMatched = true
			}
		} else {
			hasAnd = true
			if !hit {
				allAndMatched = false
			}
		}
	}

	matches := false
	switch {
	case hasOr:
		matches = orMatched || (hasAnd && allAndMatched)
	default:
		matches = allAndMatched
	}
	return ConditionsResult{Matches: matches, Matched: matched}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// equalValues compares strictly by type class; numbers are normalized so a
// JSON 3 (float64) equals a Go int 3.
func equalValues(a, b any) bool {
	if af, ok := toFloat(a); ok {
		bf, ok := toFloat(b)
		return ok && af == bf
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case nil:
		return b == nil
	}
	return false
}

func compareNumeric(op policy.Operator, val, literal any) bool {
	v, ok := toFloat(val)
	if !ok {
		return false
	}
	l, ok := toFloat(literal)
	if !ok {
		return false
	}
	switch op {
	case policy.OpGT:
		return v > l
	case policy.OpGTE:
		return v >= l
	case policy.OpLT:
		return v < l
	case policy.OpLTE:
		return v <= l
	}
	return false
}

func asList(v any) ([]any, bool) {
	switch list := v.(type) {
	case []any:
		return list, true
	case []string:
		out := make([]any, len(list))
		for i, s := range list {
			out[i] = s
		}
		return out, true
	case []int:
		out := make([]any, len(list))
		for i, n := range list {
			out[i] = n
		}
		return out, true
	case []float64:
		out := make([]any, len(list))
		for i, n := range list {
			out[i] = n
		}
		return out, true
	}
	return nil, false
}

func memberOf(val, literal any) bool {
	list, ok := asList(literal)
	if !ok {
		return false
	}
	for _, item := range list {
		if equalValues(val, item) {
			return true
		}
	}
	return false
}

// contains handles substring match on string context values and element
// membership on list context values.
func contains(val, literal any) bool {
	switch v := val.(type) {
	case string:
		sub, ok := literal.(string)
		return ok && strings.Contains(v, sub)
	default:
		list, ok := asList(val)
		if !ok {
			return false
		}
		for _, item := range list {
			if equalValues(item, literal) {
				return true
			}
		}
		return false
	}
}
