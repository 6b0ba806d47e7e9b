package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jwebster45206/casefile/pkg/manifest"
	"github.com/spf13/cobra"
)

func newManifestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Generate and validate the case manifest",
	}
	cmd.AddCommand(newManifestGenerateCmd())
	cmd.AddCommand(newManifestValidateCmd())
	return cmd
}

func newManifestGenerateCmd() *cobra.Command {
	var dir, out string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Scan Case01..Case10 folders and write data.json",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				out = filepath.Join(dir, "data.json")
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Scanning directory: %s\n\n", dir)

			m, report, err := manifest.Generate(dir)
			if err != nil {
				return err
			}

			for _, caseID := range manifest.CaseIDs() {
				if n, ok := report.Found[caseID]; ok {
					fmt.Fprintf(w, "[OK]      %s: Found %d files.\n", caseID, n)
				} else {
					fmt.Fprintf(w, "[MISSING] %s (Expected at: %s)\n", caseID, filepath.Join(dir, caseID))
				}
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", out, err)
			}
			if err := m.Write(f); err != nil {
				_ = f.Close()
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			if err := f.Close(); err != nil {
				return err
			}

			fmt.Fprintf(w, "\nSuccess! Manifest saved to: %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "./data", "directory holding the Case01..Case10 folders")
	cmd.Flags().StringVar(&out, "out", "", "output file (default <dir>/data.json)")
	return cmd
}

func newManifestValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [data.json]",
		Short: "Check evidence names and gate rules in a manifest",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "./data/data.json"
			if len(args) == 1 {
				path = args[0]
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Validating %s...\n", path)

			m, err := manifest.Load(path)
			if err != nil {
				return err
			}

			v := &manifest.Validator{}
			if err := v.Validate(m); err != nil {
				for _, p := range v.Problems() {
					fmt.Fprintln(cmd.ErrOrStderr(), p)
				}
				return errors.New("validation failed")
			}

			fmt.Fprintln(w, "Manifest is valid!")
			return nil
		},
	}
	return cmd
}
