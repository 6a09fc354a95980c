package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"github.com/meridian-grc/keel/pkg/policy"
	"github.com/meridian-grc/keel/pkg/validate"
)

// runGateCmd implements `keel gate`.
//
// Exit codes:
//
//	0 = baseline may be published
//	1 = publication blocked
//	2 = runtime error
func runGateCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("gate", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		dir        string
		jsonOutput bool
	)

	cmd.StringVar(&dir, "dir", "", "Directory of module documents, one per kind (REQUIRED)")
	cmd.BoolVar(&jsonOutput, "json", false, "Output the full gate decision as JSON")

	if err := cmd.Parse(args); err != nil {
		return 2
	}
	if dir == "" {
		_, _ = fmt.Fprintln(stderr, "Error: --dir is required")
		return 2
	}

	modules, err := loadModuleDir(dir)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	decision := validate.CanPublishBaseline(validate.ModuleSet(modules))

	if jsonOutput {
		data, _ := json.MarshalIndent(decision, "", "  ")
		_, _ = fmt.Fprintln(stdout, string(data))
	} else {
		if decision.CanPublish {
			_, _ = fmt.Fprintln(stdout, "Gate: PASS, baseline may be published")
		} else {
			_, _ = fmt.Fprintln(stdout, "Gate: BLOCKED")
			for _, b := range decision.Blockers {
				_, _ = fmt.Fprintf(stdout, "  blocker: %s\n", b)
			}
		}
		for _, kind := range policy.AllModuleKinds() {
			if res, ok := decision.Results[kind]; ok {
				printResult(stdout, kind, res)
			}
		}
	}

	if !decision.CanPublish {
		return 1
	}
	return 0
}
