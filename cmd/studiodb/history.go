package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/caspermolin/website-sub000/internal/domain/entities"
)

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [action]",
		Short: "Show past sync, normalize and import runs",
		Long:  "Shows audit log entries. Requires the sqlite store backend.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			action := ""
			if len(args) > 0 {
				action = args[0]
			}
			return withDeps(cmd.Context(), func(d *Deps) error {
				entries, err := d.History.Handle(cmd.Context(), action, limit)
				if err != nil {
					return err
				}
				if globalJSON {
					return writeJSON(cmd, entries)
				}
				if len(entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No history recorded.")
					return nil
				}
				rows := make([][]string, 0, len(entries))
				for _, e := range entries {
					rows = append(rows, []string{
						strconv.FormatInt(e.ID, 10),
						e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
						e.Action,
						e.Collection,
						formatDetails(e),
					})
				}
				printTable(cmd, []string{"ID", "DATE", "ACTION", "COLLECTION", "DETAILS"}, rows,
					[]columnAlignment{alignRight})
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", DefaultHistoryLimit, "Maximum number of entries to display")
	return cmd
}

// formatDetails renders audit details as sorted key=value pairs.
func formatDetails(e entities.AuditEntry) string {
	keys := make([]string, 0, len(e.Details))
	for k := range e.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, e.Details[k]))
	}
	return strings.Join(parts, " ")
}
