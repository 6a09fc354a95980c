package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridian-grc/keel/pkg/policy"
)

// TestEvaluateGovernanceEndToEnd runs a full decision through tier
// matching, merging, and blocking.
func TestEvaluateGovernanceEndToEnd(t *testing.T) {
	eng, err := New()
	require.NoError(t, err)

	pol := tieredPolicy()
	ctx := decisionContext(policy.Bag{
		"commitmentMm": 80.0,
		"flags":        []any{"cross_border"},
	})

	out := eng.EvaluateGovernance(ctx, pol)
	require.False(t, out.Blocked)
	require.Len(t, out.TriggeredTiers, 2)
	require.Equal(t, 4, out.Requirements.CommitteeApprovals[0].MinYesVotes)
	require.Contains(t, out.Reasons, "approval tier triggered: Large Commitment")
	require.Contains(t, out.Reasons, "approval tier triggered: Cross Border")
}

// TestEvaluateGovernanceBlockedStillReports keeps the triggered tiers and
// requirements visible even when the action is blocked.
func TestEvaluateGovernanceBlockedStillReports(t *testing.T) {
	eng, err := New()
	require.NoError(t, err)

	pol := tieredPolicy()
	ctx := &policy.EvaluationContext{
		ActionType: policy.ActionDecision,
		Case:       &policy.CaseContext{Fields: policy.Bag{"commitmentMm": 80.0}},
		Exception:  &policy.ExceptionContext{HardBreach: true},
	}

	out := eng.EvaluateGovernance(ctx, pol)
	require.True(t, out.Blocked)
	require.Len(t, out.TriggeredTiers, 1)
	require.NotEmpty(t, out.Requirements.CommitteeApprovals)
	require.Contains(t, out.Reasons, "hard breach declared with no exception draft")
}

// TestEvaluateGovernanceEmptyPolicy yields an unblocked evaluation with
// empty requirements.
func TestEvaluateGovernanceEmptyPolicy(t *testing.T) {
	eng, err := New()
	require.NoError(t, err)

	out := eng.EvaluateGovernance(decisionContext(policy.Bag{}), &policy.GovernancePolicy{})
	require.False(t, out.Blocked)
	require.Empty(t, out.TriggeredTiers)
	require.Empty(t, out.Requirements.CommitteeApprovals)
	require.Empty(t, out.Requirements.Signoffs)
}

// TestEvaluateExceptionPolicyNeverBlocks confirms classification reports
// but does not halt.
func TestEvaluateExceptionPolicyNeverBlocks(t *testing.T) {
	eng, err := New()
	require.NoError(t, err)

	out := eng.EvaluateExceptionPolicy(&policy.ExceptionContext{HardBreach: true}, severityLadder())
	require.False(t, out.Blocked)
	require.Equal(t, "critical", out.SeverityClass.Severity)
	require.Equal(t, 0, out.ClassIndex)
}

// TestEvaluateGovernanceDeterministic repeats one evaluation and expects
// identical output each time.
func TestEvaluateGovernanceDeterministic(t *testing.T) {
	eng, err := New()
	require.NoError(t, err)

	pol := tieredPolicy()
	ctx := decisionContext(policy.Bag{
		"commitmentMm": 80.0,
		"flags":        []any{"cross_border"},
	})

	first := eng.EvaluateGovernance(ctx, pol)
	for i := 0; i < 25; i++ {
		require.Equal(t, first, eng.EvaluateGovernance(ctx, pol))
	}
}
