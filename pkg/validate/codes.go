package validate

// Error codes are stable identifiers. They MUST NOT change between
// releases; downstream surfaces branch on them.
const (
	// --- Payload & versioning ---
	CodeInvalidPayload           = "INVALID_PAYLOAD"
	CodeSchemaVersionRequired    = "SCHEMA_VERSION_REQUIRED"
	CodeSchemaVersionInvalid     = "SCHEMA_VERSION_INVALID"
	CodeSchemaVersionUnsupported = "SCHEMA_VERSION_UNSUPPORTED"

	// --- Mandates ---
	CodeMandateIDRequired        = "MANDATE_ID_REQUIRED"
	CodeMandateIDsNotUnique      = "MANDATE_IDS_NOT_UNIQUE"
	CodeMandateNameRequired      = "MANDATE_NAME_REQUIRED"
	CodeMandateTypeInvalid       = "MANDATE_TYPE_INVALID"
	CodeMandateStatusInvalid     = "MANDATE_STATUS_INVALID"
	CodeMandatePriorityInvalid   = "MANDATE_PRIORITY_INVALID"
	CodeMandateObjectiveRequired = "MANDATE_OBJECTIVE_REQUIRED"
	CodeMandateScopeEmpty        = "MANDATE_SCOPE_EMPTY"
	CodeMandateConstraintBad     = "MANDATE_CONSTRAINT_MALFORMED"
	CodeNoActivePrimaryMandate   = "NO_ACTIVE_PRIMARY_MANDATE"
	CodeDuplicateMandatePriority = "DUPLICATE_MANDATE_PRIORITIES"

	// --- Exclusions ---
	CodeExclusionIDRequired        = "EXCLUSION_ID_REQUIRED"
	CodeExclusionIDsNotUnique      = "EXCLUSION_IDS_NOT_UNIQUE"
	CodeExclusionNameRequired      = "EXCLUSION_NAME_REQUIRED"
	CodeExclusionTypeInvalid       = "EXCLUSION_TYPE_INVALID"
	CodeExclusionDimensionRequired = "EXCLUSION_DIMENSION_REQUIRED"
	CodeExclusionValuesEmpty       = "EXCLUSION_VALUES_EMPTY"
	CodeExclusionRationaleRequired = "EXCLUSION_RATIONALE_REQUIRED"
	CodeConditionalNeedsApproval   = "CONDITIONAL_NEEDS_APPROVAL"

	// --- Risk appetite ---
	CodeRiskDimensionIDRequired   = "RISK_DIMENSION_ID_REQUIRED"
	CodeRiskDimensionIDsNotUnique = "RISK_DIMENSION_IDS_NOT_UNIQUE"
	CodeRiskDimensionNameRequired = "RISK_DIMENSION_NAME_REQUIRED"
	CodeRiskToleranceRangeInvalid = "RISK_TOLERANCE_RANGE_INVALID"
	CodeRiskFrameworkNameMissing  = "RISK_FRAMEWORK_NAME_MISSING"

	// --- Governance thresholds ---
	CodeRoleIDRequired          = "ROLE_ID_REQUIRED"
	CodeRoleIDsNotUnique        = "ROLE_IDS_NOT_UNIQUE"
	CodeRoleNameRequired        = "ROLE_NAME_REQUIRED"
	CodeCommitteeIDRequired     = "COMMITTEE_ID_REQUIRED"
	CodeCommitteeIDsNotUnique   = "COMMITTEE_IDS_NOT_UNIQUE"
	CodeCommitteeRolesEmpty     = "COMMITTEE_ROLES_EMPTY"
	CodeCommitteeRoleUnresolved = "COMMITTEE_ROLE_UNRESOLVED"
	CodeQuorumInvalid           = "QUORUM_INVALID"
	CodeVoteTypeInvalid         = "VOTE_TYPE_INVALID"
	CodeTierIDRequired          = "TIER_ID_REQUIRED"
	CodeTierIDsNotUnique        = "TIER_IDS_NOT_UNIQUE"
	CodeTierConditionsEmpty     = "TIER_CONDITIONS_EMPTY"
	CodeTierCommitteeUnresolved = "TIER_COMMITTEE_UNRESOLVED"
	CodeTierRoleUnresolved      = "TIER_ROLE_UNRESOLVED"
	CodeTierMinYesVotesInvalid  = "TIER_MIN_YES_VOTES_INVALID"
	CodeConditionFieldRequired  = "CONDITION_FIELD_REQUIRED"
	CodeConditionOperatorBad    = "CONDITION_OPERATOR_INVALID"
	CodeGuardExpressionInvalid  = "GUARD_EXPRESSION_INVALID"
	CodeExceptionExpiryInvalid  = "EXCEPTION_EXPIRY_INVALID"
	CodeSeverityClassInvalid    = "SEVERITY_CLASS_INVALID"
	CodeConflictsFieldsMissing  = "CONFLICTS_FIELDS_MISSING"
	CodeBlockedRolesNotArray    = "BLOCKED_ROLES_NOT_ARRAY"
	CodeAuditFieldsMissing      = "AUDIT_FIELDS_MISSING"
	CodeSignoffCaptureInvalid   = "SIGNOFF_CAPTURE_INVALID"
	CodeNoCommitteesDefined     = "NO_COMMITTEES_DEFINED"
	CodeNoApprovalTiersDefined  = "NO_APPROVAL_TIERS_DEFINED"

	// --- Reporting obligations ---
	CodeReportPackIDRequired    = "REPORT_PACK_ID_REQUIRED"
	CodeReportPackIDsNotUnique  = "REPORT_PACK_IDS_NOT_UNIQUE"
	CodeReportPackNameRequired  = "REPORT_PACK_NAME_REQUIRED"
	CodeReportFrequencyRequired = "REPORT_FREQUENCY_REQUIRED"
	CodeReportAudienceEmpty     = "REPORT_AUDIENCE_EMPTY"
	CodeReportSectionsEmpty     = "REPORT_SECTIONS_EMPTY"
	CodeReportSignoffRolesEmpty = "REPORT_SIGNOFF_ROLES_EMPTY"

	// --- Evidence admissibility ---
	CodeEvidenceTypeIDRequired   = "EVIDENCE_TYPE_ID_REQUIRED"
	CodeEvidenceTypeIDsNotUnique = "EVIDENCE_TYPE_IDS_NOT_UNIQUE"
	CodeEvidenceNameRequired     = "EVIDENCE_NAME_REQUIRED"
	CodeEvidenceCategoryInvalid  = "EVIDENCE_CATEGORY_INVALID"
	CodeEvidenceTypeConflict     = "EVIDENCE_TYPE_CONFLICT"
)
