package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newNormalizeCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Rewrite project credits onto canonical role fields",
		Long:  "Resolves every credit key through the role table and the roles collection, merges lists that resolve to the same field and removes duplicate names. Running it twice changes nothing the second time.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *Deps) error {
				report, err := d.Normalize.Handle(cmd.Context(), dryRun)
				if err != nil {
					return err
				}
				if globalJSON {
					return writeJSON(cmd, report)
				}

				out := cmd.OutOrStdout()
				if report.DryRun {
					fmt.Fprintf(out, "Dry run: %d projects would be updated", report.Candidates)
				} else {
					fmt.Fprintf(out, "Updated %d projects", report.Updated)
					if report.Failed > 0 {
						fmt.Fprintf(out, ", %d failed (see log)", report.Failed)
					}
				}
				fmt.Fprintf(out, ", %d unchanged, %d skipped\n", report.Unchanged, report.Skipped)
				for _, p := range report.Projects {
					fmt.Fprintf(out, "  ~ %s\n", p)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report changes without writing")
	return cmd
}
