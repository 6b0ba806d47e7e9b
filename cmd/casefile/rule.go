package main

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/casefile/pkg/conditionals"
	"github.com/jwebster45206/casefile/pkg/gate"
	"github.com/jwebster45206/casefile/pkg/state"
	"github.com/spf13/cobra"
)

func newRuleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rule",
		Short: "Inspect gate rules",
	}
	cmd.AddCommand(newRuleEvalCmd())
	cmd.AddCommand(newRuleExplainCmd())
	return cmd
}

func newRuleEvalCmd() *cobra.Command {
	var letters []string

	cmd := &cobra.Command{
		Use:   "eval <rule>",
		Short: "Evaluate a rule against collected letters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rule, err := conditionals.Compile(args[0])
			if err != nil {
				return err
			}

			facts := state.NewFactSet()
			for _, l := range letters {
				if _, err := facts.Add(l); err != nil {
					return err
				}
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "rule:     %s\n", rule.Readable())
			fmt.Fprintf(w, "parsed:   %s\n", rule.Expr.String())
			fmt.Fprintf(w, "letters:  %s\n", strings.Join(facts.Collected.Sorted(), ","))
			fmt.Fprintf(w, "result:   %t\n", rule.Eval(facts))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&letters, "letters", nil, "collected letters, comma separated")
	return cmd
}

func newRuleExplainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain <filename>...",
		Short: "Show how evidence filenames are gated",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			for _, u := range gate.Resolve(args, noFacts{}) {
				switch u.Kind {
				case gate.KindPlain:
					fmt.Fprintf(w, "%s: plain\n", u.Filename)
				case gate.KindInert:
					fmt.Fprintf(w, "%s: unreadable rule (%s)\n", u.Filename, u.Error)
				default:
					fmt.Fprintf(w, "%s: %s\n", u.Filename, u.Label)
				}
			}
			return nil
		},
	}
	return cmd
}

// noFacts is an empty session for describing gates.
type noFacts struct{}

func (noFacts) HasLetter(string) bool      { return false }
func (noFacts) IsMoreRevealed(string) bool { return false }
