package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const exclusionsDoc = `{"schemaVersion":"1.0.0","exclusions":[]}`

const governanceDoc = `{
	"schemaVersion": "1.0.0",
	"roles": [{"id": "cio", "name": "CIO"}],
	"committees": [{
		"id": "ic", "name": "IC", "roleIds": ["cio"],
		"quorum": {"minVotes": 3, "minYesVotes": 2, "voteType": "MAJORITY"}
	}],
	"approvalTiers": [{
		"id": "tier-1", "name": "Standard",
		"conditions": [{"field": "case.commitmentMm", "operator": "GT", "value": 10}],
		"requiredApprovals": [{"committeeId": "ic", "minYesVotes": 2}],
		"requiredSignoffs": []
	}],
	"exceptionPolicy": {"requiresExceptionRecord": true, "expiryDefaultDays": 90, "exceptionSeverity": []},
	"conflictsPolicy": {"requiresDisclosure": true, "recusalRequired": false, "blockedRoles": []},
	"audit": {"decisionRecordRequired": true, "signoffCapture": "ELECTRONIC", "retainVersions": true}
}`

// TestRunUsageAndUnknown covers the dispatcher edges.
func TestRunUsageAndUnknown(t *testing.T) {
	var stdout, stderr bytes.Buffer

	require.Equal(t, 2, Run([]string{"keel"}, &stdout, &stderr))
	require.Equal(t, 0, Run([]string{"keel", "help"}, &stdout, &stderr))
	require.Equal(t, 2, Run([]string{"keel", "frobnicate"}, &stdout, &stderr))
	require.Contains(t, stderr.String(), "Unknown command")
}

// TestValidateCmd validates a document from disk and maps validity to the
// exit code.
func TestValidateCmd(t *testing.T) {
	dir := t.TempDir()
	var stdout, stderr bytes.Buffer

	good := writeFile(t, dir, "exclusions.json", exclusionsDoc)
	code := Run([]string{"keel", "validate", "--module", "exclusions", "--file", good}, &stdout, &stderr)
	require.Equal(t, 0, code, "stderr: %s", stderr.String())
	require.Contains(t, stdout.String(), "VALID")

	stdout.Reset()
	bad := writeFile(t, dir, "bad.json", `{"exclusions":[]}`)
	code = Run([]string{"keel", "validate", "--module", "exclusions", "--file", bad}, &stdout, &stderr)
	require.Equal(t, 1, code)
	require.Contains(t, stdout.String(), "SCHEMA_VERSION_REQUIRED")
}

// TestValidateCmdYAML accepts YAML documents.
func TestValidateCmdYAML(t *testing.T) {
	dir := t.TempDir()
	var stdout, stderr bytes.Buffer

	path := writeFile(t, dir, "exclusions.yaml", "schemaVersion: 1.0.0\nexclusions: []\n")
	code := Run([]string{"keel", "validate", "--module", "exclusions", "--file", path}, &stdout, &stderr)
	require.Equal(t, 0, code, "stderr: %s", stderr.String())
}

// TestValidateCmdErrors exercises the runtime error paths.
func TestValidateCmdErrors(t *testing.T) {
	var stdout, stderr bytes.Buffer

	require.Equal(t, 2, Run([]string{"keel", "validate"}, &stdout, &stderr))
	require.Equal(t, 2, Run([]string{"keel", "validate", "--module", "alignments", "--file", "x.json"}, &stdout, &stderr))
	require.Equal(t, 2, Run([]string{"keel", "validate", "--module", "exclusions", "--file", "/nonexistent.json"}, &stdout, &stderr))
}

// TestGateCmd runs the publish gate over a module directory.
func TestGateCmd(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "exclusions.json", exclusionsDoc)
	writeFile(t, dir, "governance_thresholds.json", governanceDoc)

	var stdout, stderr bytes.Buffer
	code := Run([]string{"keel", "gate", "--dir", dir}, &stdout, &stderr)
	require.Equal(t, 1, code, "stderr: %s", stderr.String())
	require.Contains(t, stdout.String(), "mandatory module missing")
}

// TestEvaluateCmdJSON evaluates a context against a policy and emits the
// machine-readable result.
func TestEvaluateCmdJSON(t *testing.T) {
	dir := t.TempDir()
	policyPath := writeFile(t, dir, "policy.json", governanceDoc)
	contextPath := writeFile(t, dir, "context.json", `{
		"actionType": "DECISION",
		"case": {"fields": {"commitmentMm": 25}}
	}`)

	var stdout, stderr bytes.Buffer
	code := Run([]string{"keel", "evaluate", "--policy", policyPath, "--context", contextPath, "--json"}, &stdout, &stderr)
	require.Equal(t, 0, code, "stderr: %s", stderr.String())

	var result map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &result))
	require.Equal(t, false, result["blocked"])
	require.Len(t, result["triggeredTiers"], 1)
}

// TestEvaluateCmdBlocked exits 1 for a blocked decision.
func TestEvaluateCmdBlocked(t *testing.T) {
	dir := t.TempDir()
	policyPath := writeFile(t, dir, "policy.json", governanceDoc)
	contextPath := writeFile(t, dir, "context.json", `{
		"actionType": "DECISION",
		"case": {"fields": {"hardRiskBreaches": 2}}
	}`)

	var stdout, stderr bytes.Buffer
	code := Run([]string{"keel", "evaluate", "--policy", policyPath, "--context", contextPath}, &stdout, &stderr)
	require.Equal(t, 1, code)
	require.Contains(t, stdout.String(), "BLOCKED")
	require.Contains(t, stdout.String(), "2 hard risk breach(es)")
}

// TestClassifyCmd classifies an exception context.
func TestClassifyCmd(t *testing.T) {
	dir := t.TempDir()
	policyPath := writeFile(t, dir, "policy.json", `{
		"schemaVersion": "1.0.0",
		"roles": [], "committees": [], "approvalTiers": [],
		"exceptionPolicy": {
			"requiresExceptionRecord": true,
			"expiryDefaultDays": 90,
			"exceptionSeverity": [{
				"severity": "material",
				"conditions": [{"field": "exception.count", "operator": "GTE", "value": 1}],
				"requiredApprovals": [], "requiredSignoffs": []
			}]
		}
	}`)
	contextPath := writeFile(t, dir, "context.json", `{
		"actionType": "EXCEPTION",
		"exception": {"count": 2}
	}`)

	var stdout, stderr bytes.Buffer
	code := Run([]string{"keel", "classify", "--policy", policyPath, "--context", contextPath}, &stdout, &stderr)
	require.Equal(t, 0, code, "stderr: %s", stderr.String())
	require.Contains(t, stdout.String(), "material")
}
