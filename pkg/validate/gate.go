package validate

import (
	"encoding/json"
	"fmt"

	"github.com/meridian-grc/keel/pkg/policy"
)

// ModuleSet maps each supplied module kind to its raw document payload.
type ModuleSet map[policy.ModuleKind]json.RawMessage

// AllResult aggregates validation across a module set.
type AllResult struct {
	AllValid    bool                                    `json:"allValid"`
	AllComplete bool                                    `json:"allComplete"`
	Results     map[policy.ModuleKind]*ValidationResult `json:"results"`
}

// ValidateAllModules validates every supplied module independently.
func ValidateAllModules(modules ModuleSet) AllResult {
	out := AllResult{
		AllValid:    true,
		AllComplete: true,
		Results:     make(map[policy.ModuleKind]*ValidationResult, len(modules)),
	}
	for _, kind := range policy.AllModuleKinds() {
		payload, ok := modules[kind]
		if !ok {
			continue
		}
		res := ValidateModule(kind, payload)
		out.Results[kind] = res
		out.AllValid = out.AllValid && res.IsValid
		out.AllComplete = out.AllComplete && res.IsComplete
	}
	return out
}

// mandatoryModules must be complete before a baseline may publish,
// independent of whether they validate cleanly.
var mandatoryModules = []policy.ModuleKind{
	policy.ModuleMandates,
	policy.ModuleGovernanceThresholds,
}

// GateDecision is the all-or-nothing publish verdict. Blockers are
// human-readable and ordered by module, so the same module set always
// yields the same list.
type GateDecision struct {
	CanPublish bool                                    `json:"canPublish"`
	Blockers   []string                                `json:"blockers"`
	Results    map[policy.ModuleKind]*ValidationResult `json:"results"`
}

// CanPublishBaseline runs every supplied module through validation and
// aggregates blockers: one per invalid module, plus one per mandatory
// module that is missing or incomplete. Publication requires an empty
// blocker list; there is no partial publish.
func CanPublishBaseline(modules ModuleSet) GateDecision {
	all := ValidateAllModules(modules)
	decision := GateDecision{Blockers: []string{}, Results: all.Results}

	for _, kind := range policy.AllModuleKinds() {
		res, ok := all.Results[kind]
		if !ok {
			continue
		}
		if !res.IsValid {
			decision.Blockers = append(decision.Blockers,
				fmt.Sprintf("%s: %d validation error(s)", kind, len(res.Errors)))
		}
	}

	for _, kind := range mandatoryModules {
		res, ok := all.Results[kind]
		if !ok {
			decision.Blockers = append(decision.Blockers,
				fmt.Sprintf("%s: mandatory module missing", kind))
			continue
		}
		if !res.IsComplete {
			decision.Blockers = append(decision.Blockers,
				fmt.Sprintf("%s: module is incomplete", kind))
		}
	}

	decision.CanPublish = len(decision.Blockers) == 0
	return decision
}
