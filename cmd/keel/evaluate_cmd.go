package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"github.com/meridian-grc/keel/pkg/engine"
	"github.com/meridian-grc/keel/pkg/policy"
)

// runEvaluateCmd implements `keel evaluate`.
//
// Exit codes:
//
//	0 = evaluation ran, action not blocked
//	1 = evaluation ran, action blocked
//	2 = runtime error
func runEvaluateCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("evaluate", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		policyFile  string
		contextFile string
		jsonOutput  bool
	)

	cmd.StringVar(&policyFile, "policy", "", "Governance policy document (REQUIRED)")
	cmd.StringVar(&contextFile, "context", "", "Evaluation context document (REQUIRED)")
	cmd.BoolVar(&jsonOutput, "json", false, "Output the full evaluation as JSON")

	if err := cmd.Parse(args); err != nil {
		return 2
	}
	if policyFile == "" || contextFile == "" {
		_, _ = fmt.Fprintln(stderr, "Error: --policy and --context are required")
		return 2
	}

	pol, evalCtx, code := loadPolicyAndContext(policyFile, contextFile, stderr)
	if code != 0 {
		return code
	}

	eng, err := engine.New()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	result := eng.EvaluateGovernance(evalCtx, pol)

	if jsonOutput {
		data, _ := json.MarshalIndent(result, "", "  ")
		_, _ = fmt.Fprintln(stdout, string(data))
	} else {
		verdict := "CLEAR"
		if result.Blocked {
			verdict = "BLOCKED"
		}
		_, _ = fmt.Fprintf(stdout, "Verdict: %s\n", verdict)
		for _, m := range result.TriggeredTiers {
			_, _ = fmt.Fprintf(stdout, "  tier: %s\n", m.Tier.Name)
		}
		for _, c := range result.Requirements.CommitteeApprovals {
			_, _ = fmt.Fprintf(stdout, "  committee: %s (min %d yes votes)\n", c.CommitteeID, c.MinYesVotes)
		}
		for _, s := range result.Requirements.Signoffs {
			_, _ = fmt.Fprintf(stdout, "  signoff: %s (required=%t)\n", s.RoleID, s.Required)
		}
		for _, r := range result.Reasons {
			_, _ = fmt.Fprintf(stdout, "  reason: %s\n", r)
		}
	}

	if result.Blocked {
		return 1
	}
	return 0
}

// runClassifyCmd implements `keel classify`.
//
// Exit codes:
//
//	0 = classification ran
//	2 = runtime error
func runClassifyCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("classify", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		policyFile  string
		contextFile string
		jsonOutput  bool
	)

	cmd.StringVar(&policyFile, "policy", "", "Governance policy document (REQUIRED)")
	cmd.StringVar(&contextFile, "context", "", "Evaluation context document (REQUIRED)")
	cmd.BoolVar(&jsonOutput, "json", false, "Output the full classification as JSON")

	if err := cmd.Parse(args); err != nil {
		return 2
	}
	if policyFile == "" || contextFile == "" {
		_, _ = fmt.Fprintln(stderr, "Error: --policy and --context are required")
		return 2
	}

	pol, evalCtx, code := loadPolicyAndContext(policyFile, contextFile, stderr)
	if code != 0 {
		return code
	}

	eng, err := engine.New()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	result := eng.EvaluateExceptionPolicy(evalCtx.Exception, pol)

	if jsonOutput {
		data, _ := json.MarshalIndent(result, "", "  ")
		_, _ = fmt.Fprintln(stdout, string(data))
	} else {
		if result.SeverityClass != nil {
			_, _ = fmt.Fprintf(stdout, "Severity: %s (class %d)\n", result.SeverityClass.Severity, result.ClassIndex)
		} else {
			_, _ = fmt.Fprintln(stdout, "Severity: unclassified")
		}
		for _, c := range result.Requirements.CommitteeApprovals {
			_, _ = fmt.Fprintf(stdout, "  committee: %s (min %d yes votes)\n", c.CommitteeID, c.MinYesVotes)
		}
		for _, s := range result.Requirements.Signoffs {
			_, _ = fmt.Fprintf(stdout, "  signoff: %s (required=%t)\n", s.RoleID, s.Required)
		}
		for _, r := range result.Reasons {
			_, _ = fmt.Fprintf(stdout, "  reason: %s\n", r)
		}
	}
	return 0
}

func loadPolicyAndContext(policyFile, contextFile string, stderr io.Writer) (*policy.GovernancePolicy, *policy.EvaluationContext, int) {
	policyDoc, err := loadDocument(policyFile)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return nil, nil, 2
	}
	var doc policy.GovernanceDocument
	if err := json.Unmarshal(policyDoc, &doc); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: parse policy: %v\n", err)
		return nil, nil, 2
	}

	contextDoc, err := loadDocument(contextFile)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return nil, nil, 2
	}
	var evalCtx policy.EvaluationContext
	if err := json.Unmarshal(contextDoc, &evalCtx); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: parse context: %v\n", err)
		return nil, nil, 2
	}

	return &doc.GovernancePolicy, &evalCtx, 0
}
