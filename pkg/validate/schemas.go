package validate

import (
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/meridian-grc/keel/pkg/policy"
)

// Shape schemas are deliberately shallow: they pin the payload to an object
// with correctly typed top-level collections, so the typed unmarshal cannot
// partially succeed on garbage. A JSON null collection counts as absent,
// matching how nil Go slices and struct pointers marshal. All field-level
// rules live in the Go validators where they can carry stable codes.
var moduleShapeSchemas = map[policy.ModuleKind]string{
	policy.ModuleMandates: `{
		"type": "object",
		"properties": {
			"schemaVersion": {"type": "string"},
			"mandates": {"type": ["array", "null"], "items": {"type": "object"}}
		}
	}`,
	policy.ModuleExclusions: `{
		"type": "object",
		"properties": {
			"schemaVersion": {"type": "string"},
			"exclusions": {"type": ["array", "null"], "items": {"type": "object"}}
		}
	}`,
	policy.ModuleRiskAppetite: `{
		"type": "object",
		"properties": {
			"schemaVersion": {"type": "string"},
			"frameworkName": {"type": "string"},
			"dimensions": {"type": ["array", "null"], "items": {"type": "object"}}
		}
	}`,
	policy.ModuleGovernanceThresholds: `{
		"type": "object",
		"properties": {
			"schemaVersion": {"type": "string"},
			"roles": {"type": ["array", "null"], "items": {"type": "object"}},
			"committees": {"type": ["array", "null"], "items": {"type": "object"}},
			"approvalTiers": {"type": ["array", "null"], "items": {"type": "object"}},
			"exceptionPolicy": {"type": ["object", "null"]},
			"conflictsPolicy": {"type": ["object", "null"]},
			"audit": {"type": ["object", "null"]}
		}
	}`,
	policy.ModuleReporting: `{
		"type": "object",
		"properties": {
			"schemaVersion": {"type": "string"},
			"packs": {"type": ["array", "null"], "items": {"type": "object"}}
		}
	}`,
	policy.ModuleEvidence: `{
		"type": "object",
		"properties": {
			"schemaVersion": {"type": "string"},
			"allowedEvidenceTypes": {"type": ["array", "null"], "items": {"type": "object"}},
			"forbiddenEvidenceTypes": {"type": ["array", "null"], "items": {"type": "object"}}
		}
	}`,
}

var compiledShapes = func() map[policy.ModuleKind]*jsonschema.Schema {
	out := make(map[policy.ModuleKind]*jsonschema.Schema, len(moduleShapeSchemas))
	for kind, src := range moduleShapeSchemas {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		url := fmt.Sprintf("https://keel.schemas.local/%s.schema.json", kind)
		if err := c.AddResource(url, strings.NewReader(src)); err != nil {
			panic(fmt.Sprintf("module shape schema %s: %v", kind, err))
		}
		schema, err := c.Compile(url)
		if err != nil {
			panic(fmt.Sprintf("module shape schema %s: %v", kind, err))
		}
		out[kind] = schema
	}
	return out
}()

// checkShape validates the decoded payload against the kind's shape schema.
func checkShape(kind policy.ModuleKind, decoded any) error {
	schema, ok := compiledShapes[kind]
	if !ok {
		return fmt.Errorf("unknown module kind %q", kind)
	}
	if err := schema.Validate(decoded); err != nil {
		return fmt.Errorf("shape validation: %w", err)
	}
	return nil
}
