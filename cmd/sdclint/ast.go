package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/sdclint/pkg/cli"
	"mercator-hq/sdclint/pkg/twig/ast"
	"mercator-hq/sdclint/pkg/twig/parser"
)

var astCmd = &cobra.Command{
	Use:   "ast <file.twig|->",
	Short: "Print the syntax tree of a template",
	Long: `Ast parses a template and prints its syntax tree, one node per line
with its slot name, attributes and line. "-" reads the template from stdin.

Use it to see which node kinds a rule will receive.`,
	Example: `  sdclint ast components/card/card.twig
  echo '{{ title|upper }}' | sdclint ast -`,
	Args: cobra.ExactArgs(1),
	RunE: runAST,
}

func init() {
	rootCmd.AddCommand(astCmd)
}

func runAST(cmd *cobra.Command, args []string) error {
	source, err := readSource(cmd.InOrStdin(), args[0])
	if err != nil {
		return cli.NewUsageError("ast", err, "")
	}

	root, err := parser.Parse(string(source))
	if err != nil {
		return cli.NewUsageError("ast", fmt.Errorf("%s: %w", args[0], err), "fix the syntax error first")
	}
	if err := ast.Dump(cmd.OutOrStdout(), root); err != nil {
		return cli.NewCommandError("ast", err)
	}
	return nil
}

// readSource reads path, or stdin when path is "-".
func readSource(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}
