package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/caspermolin/website-sub000/internal/application/handlers"
	"github.com/caspermolin/website-sub000/internal/domain/entities"
	"github.com/caspermolin/website-sub000/internal/domain/services"
)

func newCollectionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "collections",
		Aliases: []string{"c"},
		Short:   "Read and write collection records",
		Long:    "Manage the projects, people, freelancers, roles, facilities and news collections.",
	}

	cmd.AddCommand(
		newCollectionsListCmd(),
		newCollectionsGetCmd(),
		newCollectionsAddCmd(),
		newCollectionsUpdateCmd(),
		newCollectionsDeleteCmd(),
		newCollectionsImportCmd(),
		newExportCmd(),
	)

	return cmd
}

func newCollectionsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <collection>",
		Short: "List records in a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *Deps) error {
				recs, err := d.Collections.HandleList(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if globalJSON {
					return writeJSON(cmd, recs)
				}
				if len(recs) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "No records in %s.\n", args[0])
					return nil
				}
				displayRecords(cmd, recs)
				return nil
			})
		},
	}
}

func displayRecords(cmd *cobra.Command, recs []entities.Record) {
	rows := make([][]string, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, []string{rec.ID(), recordLabel(rec), strconv.Itoa(len(rec))})
	}
	printTable(cmd, []string{"ID", "NAME", "FIELDS"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight})
}

// recordLabel returns the record's name or title.
func recordLabel(rec entities.Record) string {
	if name := rec.String("name"); name != "" {
		return name
	}
	return rec.String("title")
}

func newCollectionsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <collection> <id>",
		Short: "Print a single record as JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *Deps) error {
				rec, err := d.Collections.HandleGet(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				return writeJSON(cmd, rec)
			})
		},
	}
}

func newCollectionsAddCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "add <collection> [json]",
		Short: "Add a record",
		Long:  "Adds a record given as a JSON object argument, --file, or stdin ('-'). Missing ids are generated.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := readItem(cmd, args[1:], file)
			if err != nil {
				return err
			}
			return runAction(cmd, args[0], handlers.ActionRequest{Action: handlers.ActionAdd, Item: item})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the record from a JSON file")
	return cmd
}

func newCollectionsUpdateCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "update <collection> [json]",
		Short: "Merge fields into an existing record",
		Long:  "Shallow-merges the given JSON object into the record with the same id.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := readItem(cmd, args[1:], file)
			if err != nil {
				return err
			}
			return runAction(cmd, args[0], handlers.ActionRequest{Action: handlers.ActionUpdate, Item: item})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the record from a JSON file")
	return cmd
}

func newCollectionsDeleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <collection> <id>...",
		Short: "Delete records by id",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			collection, ids := args[0], args[1:]
			if !force && !confirmAction(cmd, fmt.Sprintf("Delete %d record(s) from %s?", len(ids), collection)) {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
				return nil
			}
			req := handlers.ActionRequest{Action: handlers.ActionDelete, ItemID: handlers.ItemID(ids[0])}
			if len(ids) > 1 {
				req = handlers.ActionRequest{Action: handlers.ActionBulkDelete}
				for _, id := range ids {
					req.ItemIDs = append(req.ItemIDs, handlers.ItemID(id))
				}
			}
			return runAction(cmd, collection, req)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")
	return cmd
}

func runAction(cmd *cobra.Command, collection string, req handlers.ActionRequest) error {
	return withDeps(cmd.Context(), func(d *Deps) error {
		result, err := d.Collections.HandleAction(cmd.Context(), collection, req)
		if err != nil {
			return err
		}
		if globalJSON {
			return writeJSON(cmd, result)
		}

		out := cmd.OutOrStdout()
		switch req.Action {
		case handlers.ActionAdd:
			rec, _ := result.Data.(entities.Record)
			fmt.Fprintf(out, "Added %s to %s\n", rec.ID(), collection)
		case handlers.ActionUpdate:
			fmt.Fprintf(out, "Updated %s in %s\n", req.Item.ID(), collection)
		case handlers.ActionDelete:
			fmt.Fprintf(out, "Deleted %s from %s\n", req.ItemID, collection)
		case handlers.ActionBulkDelete:
			counts, _ := result.Data.(map[string]int)
			fmt.Fprintf(out, "Deleted %d of %d records from %s\n", counts["deleted"], len(req.ItemIDs), collection)
		}
		return nil
	})
}

// readItem reads a JSON object from the first argument, a file, or stdin.
func readItem(cmd *cobra.Command, args []string, file string) (entities.Record, error) {
	var data []byte
	switch {
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", file, err)
		}
		data = b
	case len(args) > 0 && args[0] != "-":
		data = []byte(args[0])
	default:
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		data = b
	}

	var rec entities.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parsing record: %w", err)
	}
	if rec == nil {
		return nil, fmt.Errorf("record must be a JSON object")
	}
	return rec, nil
}

type importFlags struct {
	format     string
	dryRun     bool
	onConflict string
}

func newCollectionsImportCmd() *cobra.Command {
	var flags importFlags

	cmd := &cobra.Command{
		Use:   "import <collection> <file>",
		Short: "Import records from JSON or CSV",
		Long: "Imports records from a JSON array or a CSV file whose header names the fields. " +
			"List fields (specialties, awards, roles, tags) use ';' between values.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0], args[1], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", "auto", "File format (json, csv, auto)")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Validate without saving")
	cmd.Flags().StringVar(&flags.onConflict, "on-conflict", "skip", "Conflict handling (skip, overwrite)")

	return cmd
}

func runImport(cmd *cobra.Command, collection, filePath string, flags importFlags) error {
	onConflict, err := services.ParseConflictStrategy(flags.onConflict)
	if err != nil {
		return err
	}

	return withDeps(cmd.Context(), func(d *Deps) error {
		opts := handlers.ImportOptions{
			Format:     flags.format,
			DryRun:     flags.dryRun,
			OnConflict: onConflict,
		}

		result, err := d.Import.Handle(cmd.Context(), collection, filePath, opts)
		if err != nil {
			return fmt.Errorf("importing file: %w", err)
		}

		if globalJSON {
			return writeJSON(cmd, result)
		}

		out := cmd.OutOrStdout()
		if len(result.Errors) > 0 {
			fmt.Fprintf(out, "Validation errors (%d):\n", len(result.Errors))
			for _, e := range result.Errors {
				fmt.Fprintf(out, "  %s\n", e.Error())
			}
			fmt.Fprintln(out)
		}

		if flags.dryRun {
			fmt.Fprintf(out, "Dry run: %d records would be imported", result.Imported)
		} else {
			fmt.Fprintf(out, "Imported: %d records", result.Imported)
		}
		if result.Overwritten > 0 {
			fmt.Fprintf(out, ", %d overwritten", result.Overwritten)
		}
		if result.Skipped > 0 {
			fmt.Fprintf(out, ", %d skipped (already exist)", result.Skipped)
		}
		if len(result.Errors) > 0 {
			fmt.Fprintf(out, ", %d errors", len(result.Errors))
		}
		fmt.Fprintln(out)
		return nil
	})
}

func confirmAction(cmd *cobra.Command, prompt string) bool {
	reader := bufio.NewReader(cmd.InOrStdin())
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", prompt)
	response, _ := reader.ReadString('\n') // Error ignored: EOF/error treated as "no"
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
