package validate

import (
	"encoding/json"

	"github.com/Masterminds/semver/v3"

	"github.com/meridian-grc/keel/pkg/policy"
)

// SupportedSchemaMajor is the module document schema major version this
// build understands.
const SupportedSchemaMajor = 1

// ValidateModule validates a raw module payload of the given kind. It never
// returns a Go error: any payload the engine cannot even read collapses to
// a single top-level INVALID_PAYLOAD error.
func ValidateModule(kind policy.ModuleKind, payload []byte) *ValidationResult {
	if !kind.Valid() {
		return invalidPayload("unknown module kind " + string(kind))
	}

	var decoded any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return invalidPayload(err.Error())
	}
	raw, ok := decoded.(map[string]any)
	if !ok {
		return invalidPayload("document must be a JSON object")
	}
	if err := checkShape(kind, decoded); err != nil {
		return invalidPayload(err.Error())
	}

	switch kind {
	case policy.ModuleMandates:
		var doc policy.MandatesDocument
		if err := json.Unmarshal(payload, &doc); err != nil {
			return invalidPayload(err.Error())
		}
		return ValidateMandates(&doc)
	case policy.ModuleExclusions:
		var doc policy.ExclusionsDocument
		if err := json.Unmarshal(payload, &doc); err != nil {
			return invalidPayload(err.Error())
		}
		return ValidateExclusions(&doc)
	case policy.ModuleRiskAppetite:
		var doc policy.RiskAppetiteDocument
		if err := json.Unmarshal(payload, &doc); err != nil {
			return invalidPayload(err.Error())
		}
		return ValidateRiskAppetite(&doc)
	case policy.ModuleGovernanceThresholds:
		var doc policy.GovernanceDocument
		if err := json.Unmarshal(payload, &doc); err != nil {
			// A mistyped blockedRoles must surface as its own code, not as
			// INVALID_PAYLOAD, so retry with that field neutralized and let
			// the conflicts check report it from the raw view.
			fixed, ok := neutralizeBlockedRoles(raw)
			if !ok {
				return invalidPayload(err.Error())
			}
			if err2 := json.Unmarshal(fixed, &doc); err2 != nil {
				return invalidPayload(err.Error())
			}
		}
		return validateGovernance(&doc, raw)
	case policy.ModuleReporting:
		var doc policy.ReportingDocument
		if err := json.Unmarshal(payload, &doc); err != nil {
			return invalidPayload(err.Error())
		}
		return ValidateReporting(&doc)
	case policy.ModuleEvidence:
		var doc policy.EvidenceDocument
		if err := json.Unmarshal(payload, &doc); err != nil {
			return invalidPayload(err.Error())
		}
		return ValidateEvidence(&doc)
	}
	return invalidPayload("unknown module kind " + string(kind))
}

// neutralizeBlockedRoles clears a non-array conflictsPolicy.blockedRoles
// from a copy of the raw document so the typed unmarshal can proceed.
func neutralizeBlockedRoles(raw map[string]any) ([]byte, bool) {
	block, ok := raw["conflictsPolicy"].(map[string]any)
	if !ok {
		return nil, false
	}
	rolesRaw, ok := block["blockedRoles"]
	if !ok {
		return nil, false
	}
	if _, isArray := rolesRaw.([]any); isArray {
		return nil, false
	}

	clone := make(map[string]any, len(raw))
	for k, v := range raw {
		clone[k] = v
	}
	blockClone := make(map[string]any, len(block))
	for k, v := range block {
		blockClone[k] = v
	}
	blockClone["blockedRoles"] = []any{}
	clone["conflictsPolicy"] = blockClone

	fixed, err := json.Marshal(clone)
	if err != nil {
		return nil, false
	}
	return fixed, true
}

// checkSchemaVersion applies the shared version rules: the field is
// required, must parse as semver, and must be a major version this build
// supports (a different major is advisory, not blocking, so older readers
// can still surface the rest of the document's issues).
func checkSchemaVersion(r *ValidationResult, version string) {
	if version == "" {
		r.addError("schemaVersion", CodeSchemaVersionRequired, "schemaVersion is required")
		return
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		r.addError("schemaVersion", CodeSchemaVersionInvalid, "schemaVersion %q is not a valid semantic version", version)
		return
	}
	if v.Major() != SupportedSchemaMajor {
		r.addWarning("schemaVersion", CodeSchemaVersionUnsupported,
			"schemaVersion %q is outside the supported major version %d", version, SupportedSchemaMajor)
	}
}
