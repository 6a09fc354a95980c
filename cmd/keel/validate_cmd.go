package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"github.com/meridian-grc/keel/pkg/policy"
	"github.com/meridian-grc/keel/pkg/validate"
)

// runValidateCmd implements `keel validate`.
//
// Exit codes:
//
//	0 = document is valid
//	1 = document is invalid
//	2 = runtime error
func runValidateCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("validate", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		module     string
		file       string
		jsonOutput bool
	)

	cmd.StringVar(&module, "module", "", "Module kind (REQUIRED)")
	cmd.StringVar(&file, "file", "", "Path to the module document (REQUIRED)")
	cmd.BoolVar(&jsonOutput, "json", false, "Output the full validation result as JSON")

	if err := cmd.Parse(args); err != nil {
		return 2
	}
	if module == "" || file == "" {
		_, _ = fmt.Fprintln(stderr, "Error: --module and --file are required")
		return 2
	}

	kind := policy.ModuleKind(module)
	if !kindKnown(kind) {
		_, _ = fmt.Fprintf(stderr, "Error: unknown module kind %q\n", module)
		return 2
	}

	payload, err := loadDocument(file)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	res := validate.ValidateModule(kind, payload)

	if jsonOutput {
		data, _ := json.MarshalIndent(res, "", "  ")
		_, _ = fmt.Fprintln(stdout, string(data))
	} else {
		printResult(stdout, kind, res)
	}

	if !res.IsValid {
		return 1
	}
	return 0
}

func kindKnown(kind policy.ModuleKind) bool {
	for _, k := range policy.AllModuleKinds() {
		if k == kind {
			return true
		}
	}
	return false
}

func printResult(w io.Writer, kind policy.ModuleKind, res *validate.ValidationResult) {
	status := "VALID"
	if !res.IsValid {
		status = "INVALID"
	}
	complete := "complete"
	if !res.IsComplete {
		complete = "incomplete"
	}
	_, _ = fmt.Fprintf(w, "%s: %s (%s)\n", kind, status, complete)
	for _, e := range res.Errors {
		_, _ = fmt.Fprintf(w, "  error   %-32s %s: %s\n", e.Code, e.Field, e.Message)
	}
	for _, warn := range res.Warnings {
		_, _ = fmt.Fprintf(w, "  warning %-32s %s: %s\n", warn.Code, warn.Field, warn.Message)
	}
}
