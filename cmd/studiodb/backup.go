package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Snapshot and restore all collections",
	}

	cmd.AddCommand(
		newBackupCreateCmd(),
		newBackupListCmd(),
		newBackupRestoreCmd(),
	)

	return cmd
}

func newBackupCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Snapshot every collection into a new backup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *Deps) error {
				info, err := d.Backups.HandleCreate(cmd.Context())
				if err != nil {
					return err
				}
				if globalJSON {
					return writeJSON(cmd, info)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%d bytes)\n", info.Path, info.Size)
				return nil
			})
		},
	}
}

func newBackupListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List backups, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *Deps) error {
				infos, err := d.Backups.HandleList(cmd.Context())
				if err != nil {
					return err
				}
				if globalJSON {
					return writeJSON(cmd, infos)
				}
				if len(infos) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No backups found.")
					return nil
				}
				rows := make([][]string, 0, len(infos))
				for _, info := range infos {
					rows = append(rows, []string{
						info.Name,
						info.CreatedAt.Local().Format("2006-01-02 15:04:05"),
						strconv.FormatInt(info.Size, 10),
					})
				}
				printTable(cmd, []string{"NAME", "DATE", "SIZE"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight})
				return nil
			})
		},
	}
}

func newBackupRestoreCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "restore <name>",
		Short: "Replace collections with the contents of a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force && !confirmAction(cmd, fmt.Sprintf("Overwrite collections with %s?", args[0])) {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
				return nil
			}
			return withDeps(cmd.Context(), func(d *Deps) error {
				restored, err := d.Backups.HandleRestore(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if globalJSON {
					return writeJSON(cmd, restored)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Restored %d collections from %s\n", len(restored), args[0])
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")
	return cmd
}
