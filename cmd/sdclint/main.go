// Sdclint checks the Twig templates and definitions of single-directory
// components for unknown variables, forbidden filters and functions,
// deprecated constructs and schema mistakes.
//
// Usage:
//
//	# Lint every component below the current directory
//	sdclint lint
//
//	# Lint two projects and fail on warnings
//	sdclint lint themes/olivero modules/custom --fail-on warning
//
//	# Lint only the components touched since main
//	sdclint lint --changed-since main
//
//	# Lint a template read from stdin
//	sdclint lint - < card.twig
//
//	# Re-validate on every change and serve metrics
//	sdclint watch --metrics-addr :9090
//
//	# List the rules and their name tables
//	sdclint rules
//
// Exit status is 0 when no diagnostic reaches the fail-on severity, 1 when
// one does, 2 on usage or configuration errors and 3 otherwise.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"mercator-hq/sdclint/pkg/cli"
)

func main() {
	if err := Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}

// printError writes err and its suggestion, if any. A failed lint has
// already printed its report.
func printError(w io.Writer, err error) {
	if errors.Is(err, cli.ErrLintFailed) {
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)

	var cmdErr *cli.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Suggestion != "" {
		fmt.Fprintf(w, "Suggestion: %s\n", cmdErr.Suggestion)
	}
}
