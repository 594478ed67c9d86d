package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/caspermolin/website-sub000/internal/application/handlers"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a new studio database",
		Long:  "Creates a .studiodb directory with default configuration, role table, data and backup directories.",
		RunE:  runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	base, err := basePath()
	if err != nil {
		return err
	}

	result, err := handlers.NewInitHandler().Handle(cmd.Context(), base)
	if err != nil {
		return err
	}

	if globalJSON {
		return writeJSON(cmd, result)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created %s\n", result.ConfigPath)
	fmt.Fprintf(out, "Role table: %s\n", result.RolesPath)
	fmt.Fprintf(out, "Store: %s (%s)\n", result.Backend, result.DataPath)
	fmt.Fprintln(out, "studiodb initialized successfully!")
	return nil
}
