package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridian-grc/keel/pkg/policy"
)

func conflictsPolicy(recusal bool, blockedRoles ...string) *policy.GovernancePolicy {
	return &policy.GovernancePolicy{
		Conflicts: &policy.ConflictsPolicy{
			RequiresDisclosure: true,
			RecusalRequired:    recusal,
			BlockedRoles:       blockedRoles,
		},
	}
}

// TestCanParticipateDefaults grants full participation when no conflicts
// block is configured.
func TestCanParticipateDefaults(t *testing.T) {
	tests := []struct {
		name string
		pol  *policy.GovernancePolicy
	}{
		{"nil policy", nil},
		{"no conflicts block", &policy.GovernancePolicy{}},
		{"empty conflicts block", conflictsPolicy(false)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := CanParticipate(tc.pol, []string{"analyst"}, true)
			require.True(t, p.CanVote)
			require.True(t, p.CanSignoff)
			require.Empty(t, p.Reasons)
		})
	}
}

// TestCanParticipateBlockedRole revokes both vote and signoff for any
// caller holding a blocked role.
func TestCanParticipateBlockedRole(t *testing.T) {
	pol := conflictsPolicy(false, "deal_lead")

	p := CanParticipate(pol, []string{"analyst", "deal_lead"}, false)
	require.False(t, p.CanVote)
	require.False(t, p.CanSignoff)
	require.Len(t, p.Reasons, 1)
	require.Contains(t, p.Reasons[0], "deal_lead")
}

// TestCanParticipateCaseOwnerBlocked treats the CASE_OWNER pseudo-role in
// blockedRoles as blocking the case owner even without that literal role.
func TestCanParticipateCaseOwnerBlocked(t *testing.T) {
	pol := conflictsPolicy(false, policy.CaseOwnerRole)

	p := CanParticipate(pol, []string{"analyst"}, true)
	require.False(t, p.CanVote)
	require.False(t, p.CanSignoff)

	// A non-owner with the same roles is unaffected.
	p = CanParticipate(pol, []string{"analyst"}, false)
	require.True(t, p.CanVote)
	require.True(t, p.CanSignoff)
}

// TestCanParticipateRecusal revokes voting only for the case owner when
// recusal is required; signoff survives.
func TestCanParticipateRecusal(t *testing.T) {
	pol := conflictsPolicy(true)

	p := CanParticipate(pol, []string{"analyst"}, true)
	require.False(t, p.CanVote)
	require.True(t, p.CanSignoff)
	require.Equal(t, []string{"recusal required: case owner may not vote"}, p.Reasons)

	p = CanParticipate(pol, []string{"analyst"}, false)
	require.True(t, p.CanVote)
	require.True(t, p.CanSignoff)
}

// TestCanParticipateReasonsAccumulate collects one reason per rule that
// fired.
func TestCanParticipateReasonsAccumulate(t *testing.T) {
	pol := conflictsPolicy(true, "deal_lead", policy.CaseOwnerRole)

	p := CanParticipate(pol, []string{"deal_lead"}, true)
	require.False(t, p.CanVote)
	require.False(t, p.CanSignoff)
	require.Len(t, p.Reasons, 3)
}
