// Package main provides the entry point for the studiodb CLI application.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	version         = "0.1.0-dev"
	globalDir       string
	globalLogLevel  string
	globalLogFormat string
	globalJSON      bool
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	rootCmd := newRootCmd()
	return rootCmd.ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "studiodb",
		Short:         "Studio collection database with credit reconciliation",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&globalDir, "dir", "C", "", "Project root containing .studiodb (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&globalLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&globalLogFormat, "log-format", "", "Log format (console, json)")
	rootCmd.PersistentFlags().BoolVar(&globalJSON, "json", false, "Write machine-readable JSON output")

	rootCmd.AddCommand(
		newInitCmd(),
		newCollectionsCmd(),
		newRolesCmd(),
		newSyncCmd(),
		newNormalizeCmd(),
		newNamesCmd(),
		newBackupCmd(),
		newHistoryCmd(),
		newServeCmd(),
	)

	return rootCmd
}
