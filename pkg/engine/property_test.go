//go:build property
// +build property

// Package engine_test contains property-based tests for condition
// evaluation and requirement merging determinism.
package engine_test

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/meridian-grc/keel/pkg/engine"
	"github.com/meridian-grc/keel/pkg/policy"
)

// TestConditionNeverPanics verifies evaluation is total over arbitrary
// field paths, operators, and values.
// Property: EvaluateCondition(cond, ctx) returns without panic for any cond
func TestConditionNeverPanics(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	ctx := &policy.EvaluationContext{
		ActionType: policy.ActionDecision,
		Case:       &policy.CaseContext{Fields: policy.Bag{"amount": 10.0, "sector": "credit"}},
	}

	properties.Property("evaluation is total", prop.ForAll(
		func(field, op, value string) bool {
			cond := policy.Condition{
				Field:    field,
				Operator: policy.Operator(op),
				Value:    value,
			}
			_ = engine.EvaluateCondition(cond, ctx)
			return true
		},
		gen.AlphaString(),
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

// TestMissingFieldFailsClosed verifies conditions on absent fields never
// match regardless of operator.
// Property: EvaluateCondition over an empty context is always false
func TestMissingFieldFailsClosed(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	empty := &policy.EvaluationContext{
		ActionType: policy.ActionDecision,
		Case:       &policy.CaseContext{Fields: policy.Bag{}},
	}
	operators := []policy.Operator{
		policy.OpEquals, policy.OpNotEquals, policy.OpGT, policy.OpGTE,
		policy.OpLT, policy.OpLTE, policy.OpIn, policy.OpNotIn, policy.OpContains,
	}

	properties.Property("absent fields never match", prop.ForAll(
		func(field string, opIdx int) bool {
			if field == "" {
				return true
			}
			cond := policy.Condition{
				Field:    "case." + field,
				Operator: operators[opIdx%len(operators)],
				Value:    "anything",
			}
			return !engine.EvaluateCondition(cond, empty)
		},
		gen.AlphaString(),
		gen.IntRange(0, 8),
	))

	properties.TestingRun(t)
}

// TestMergeRequirementsOrderInvariant verifies the merged requirement set
// does not depend on tier order.
// Property: MergeRequirements(ms) == MergeRequirements(reverse(ms))
func TestMergeRequirementsOrderInvariant(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("merge is order invariant", prop.ForAll(
		func(committees []string, votes []int) bool {
			var matches []engine.TierMatch
			for i := 0; i < len(committees) && i < len(votes); i++ {
				if committees[i] == "" {
					continue
				}
				matches = append(matches, engine.TierMatch{
					Tier: policy.ApprovalTier{
						RequiredApprovals: []policy.CommitteeApproval{
							{CommitteeID: committees[i], MinYesVotes: votes[i]},
						},
					},
				})
			}

			reversed := make([]engine.TierMatch, len(matches))
			for i, m := range matches {
				reversed[len(matches)-1-i] = m
			}

			forward := engine.MergeRequirements(matches)
			backward := engine.MergeRequirements(reversed)
			if len(forward.CommitteeApprovals) != len(backward.CommitteeApprovals) {
				return false
			}
			for i := range forward.CommitteeApprovals {
				if forward.CommitteeApprovals[i] != backward.CommitteeApprovals[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.AlphaString()),
		gen.SliceOf(gen.IntRange(1, 10)),
	))

	properties.TestingRun(t)
}
