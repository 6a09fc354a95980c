package validate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridian-grc/keel/pkg/policy"
)

func hardExclusion(id string) policy.Exclusion {
	return policy.Exclusion{
		ID:        id,
		Name:      "Thermal Coal",
		Type:      policy.ExclusionHard,
		Dimension: "sector",
		Values:    []string{"thermal_coal"},
		Rationale: "Climate policy commitment",
	}
}

// TestValidateExclusionsClean accepts well-formed exclusions.
func TestValidateExclusionsClean(t *testing.T) {
	r := ValidateExclusions(&policy.ExclusionsDocument{
		SchemaVersion: "1.0.0",
		Exclusions:    []policy.Exclusion{hardExclusion("x-1")},
	})

	require.True(t, r.IsValid)
	require.True(t, r.IsComplete)
}

// TestValidateExclusionsEmptyComplete treats an empty exclusion list as
// valid and complete; excluding nothing is a legitimate policy.
func TestValidateExclusionsEmptyComplete(t *testing.T) {
	r := ValidateExclusions(&policy.ExclusionsDocument{SchemaVersion: "1.0.0"})
	require.True(t, r.IsValid)
	require.True(t, r.IsComplete)
}

// TestValidateExclusionsConditionalNeedsApproval requires an approver on
// CONDITIONAL exclusions.
func TestValidateExclusionsConditionalNeedsApproval(t *testing.T) {
	cond := hardExclusion("x-1")
	cond.Type = policy.ExclusionConditional

	r := ValidateExclusions(&policy.ExclusionsDocument{
		SchemaVersion: "1.0.0",
		Exclusions:    []policy.Exclusion{cond},
	})
	require.False(t, r.IsValid)
	require.True(t, r.HasCode(CodeConditionalNeedsApproval))

	cond.ApprovalRequired = &policy.ExclusionApproval{CommitteeID: "ic"}
	r = ValidateExclusions(&policy.ExclusionsDocument{
		SchemaVersion: "1.0.0",
		Exclusions:    []policy.Exclusion{cond},
	})
	require.True(t, r.IsValid)
}

// TestValidateExclusionsFieldErrors checks the per-field rules.
func TestValidateExclusionsFieldErrors(t *testing.T) {
	bad := policy.Exclusion{Type: "SOFT"}

	r := ValidateExclusions(&policy.ExclusionsDocument{
		SchemaVersion: "1.0.0",
		Exclusions:    []policy.Exclusion{bad},
	})

	require.False(t, r.IsValid)
	for _, code := range []string{
		CodeExclusionIDRequired,
		CodeExclusionNameRequired,
		CodeExclusionTypeInvalid,
		CodeExclusionDimensionRequired,
		CodeExclusionValuesEmpty,
		CodeExclusionRationaleRequired,
	} {
		require.True(t, r.HasCode(code), "expected code %s", code)
	}
}

// TestValidateExclusionsDuplicateIDs flags repeated ids.
func TestValidateExclusionsDuplicateIDs(t *testing.T) {
	r := ValidateExclusions(&policy.ExclusionsDocument{
		SchemaVersion: "1.0.0",
		Exclusions:    []policy.Exclusion{hardExclusion("x-1"), hardExclusion("x-1")},
	})

	require.False(t, r.IsValid)
	require.True(t, r.HasCode(CodeExclusionIDsNotUnique))
}
