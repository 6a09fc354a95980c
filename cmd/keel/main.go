package main

import (
	"fmt"
	"io"
	"os"
)

// Dispatcher
func main() {
	os.Exit(Run(os.Args, os.Stdout, os.Stderr))
}

// Run is the entrypoint for testing.
func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 2 {
		printUsage(stderr)
		return 2
	}

	switch args[1] {
	case "validate":
		return runValidateCmd(args[2:], stdout, stderr)
	case "gate":
		return runGateCmd(args[2:], stdout, stderr)
	case "evaluate":
		return runEvaluateCmd(args[2:], stdout, stderr)
	case "classify":
		return runClassifyCmd(args[2:], stdout, stderr)
	case "publish":
		return runPublishCmd(args[2:], stdout, stderr)
	case "help", "--help", "-h":
		printUsage(stdout)
		return 0
	default:
		_, _ = fmt.Fprintf(stderr, "Unknown command: %s\n", args[1])
		printUsage(stderr)
		return 2
	}
}

func printUsage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "keel - governance condition and validation engine")
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "Usage:")
	_, _ = fmt.Fprintln(w, "  keel validate --module <kind> --file <doc>   Validate one module document")
	_, _ = fmt.Fprintln(w, "  keel gate --dir <dir>                        Check baseline publication gate")
	_, _ = fmt.Fprintln(w, "  keel evaluate --policy <doc> --context <doc> Evaluate governance for a context")
	_, _ = fmt.Fprintln(w, "  keel classify --policy <doc> --context <doc> Classify an exception")
	_, _ = fmt.Fprintln(w, "  keel publish --tenant <id> --dir <dir>       Validate, gate, and publish a baseline")
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "Documents may be JSON or YAML. Add --json to any command for machine output.")
	_, _ = fmt.Fprintln(w, "")
}
