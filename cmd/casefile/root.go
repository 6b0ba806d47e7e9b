package main

import (
	"strings"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "casefile",
		Short:        "Casefile manifest and rule tooling",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Build data.json from ./data/Case01..Case10
  casefile manifest generate --dir ./data

  # Check file naming and gate rules
  casefile manifest validate ./data/data.json

  # Try a rule against a set of letters
  casefile rule eval "A-AND-__B-OR-C__" --letters A,C
`),
	}

	cmd.AddCommand(newManifestCmd())
	cmd.AddCommand(newRuleCmd())
	return cmd
}
