package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/caspermolin/website-sub000/internal/domain/services"
)

func newSyncCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:       "sync <people|freelancers>",
		Short:     "Create records for credited names nobody has added yet",
		Long:      "Scans every project's credits and adds each unknown name to people or freelancers. Names already present in people (or, for freelancers, in either collection) are never duplicated.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(services.SyncPeople), string(services.SyncFreelancers)},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *Deps) error {
				result, err := d.Sync.Handle(cmd.Context(), args[0], dryRun)
				if err != nil {
					return err
				}
				if globalJSON {
					return writeJSON(cmd, result)
				}
				displaySyncResult(cmd, result)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show who would be added without writing")
	return cmd
}

func displaySyncResult(cmd *cobra.Command, result *services.SyncResult) {
	out := cmd.OutOrStdout()
	target := result.Mode.Target()

	if result.DryRun {
		fmt.Fprintf(out, "Dry run: %d new %s would be added\n", result.Candidates, target)
	} else {
		fmt.Fprintf(out, "Added %d new %s", result.Created, target)
		if result.Failed > 0 {
			fmt.Fprintf(out, ", %d failed (see log)", result.Failed)
		}
		fmt.Fprintln(out)
	}
	for _, name := range result.Names {
		fmt.Fprintf(out, "  + %s\n", name)
	}
}

func newNamesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "names",
		Short: "List every known person name",
		Long:  "Lists names from people, freelancers, project credits, facility contacts and news authors, deduplicated case-insensitively.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *Deps) error {
				names := d.Sync.HandleNames(cmd.Context())
				if globalJSON {
					if names == nil {
						names = []string{}
					}
					return writeJSON(cmd, names)
				}
				for _, name := range names {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			})
		},
	}
}
