package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/caspermolin/website-sub000/internal/domain/entities"
	"github.com/caspermolin/website-sub000/internal/infrastructure/parsers"
)

type exportFlags struct {
	format string
	output string
}

// leadingColumns are written first when present; the rest follow sorted.
var leadingColumns = []string{"id", "name", "title"}

func newExportCmd() *cobra.Command {
	var flags exportFlags

	cmd := &cobra.Command{
		Use:   "export <collection>",
		Short: "Export a collection to file",
		Long:  "Exports a collection to JSON, CSV, or markdown format. CSV output can be imported back.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", "json", "Output format (json, csv, markdown)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runExport(cmd *cobra.Command, collection string, flags exportFlags) error {
	if !slices.Contains(validFormats, flags.format) {
		return fmt.Errorf("invalid format %q, valid formats: %v", flags.format, validFormats)
	}

	return withDeps(cmd.Context(), func(d *Deps) error {
		recs, err := d.Collections.HandleList(cmd.Context(), collection)
		if err != nil {
			return err
		}
		return exportRecords(cmd, collection, recs, flags)
	})
}

func exportRecords(cmd *cobra.Command, collection string, recs []entities.Record, flags exportFlags) (err error) {
	w := cmd.OutOrStdout()

	if flags.output != "" {
		f, err := os.OpenFile(flags.output, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return fmt.Errorf("creating file: %w", err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("closing file: %w", cerr)
			}
		}()
		w = f
	}

	if err := formatRecords(w, flags.format, collection, recs); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	if flags.output != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d records to %s\n", len(recs), flags.output)
	}
	return nil
}

func formatRecords(w io.Writer, format, collection string, recs []entities.Record) error {
	switch format {
	case "json":
		return formatJSON(w, recs)
	case "csv":
		return formatCSV(w, recs)
	case "markdown":
		return formatMarkdown(w, collection, recs)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func formatJSON(w io.Writer, recs []entities.Record) error {
	if recs == nil {
		recs = []entities.Record{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(recs)
}

func formatCSV(w io.Writer, recs []entities.Record) error {
	writer := csv.NewWriter(w)

	header := csvColumns(recs)
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, rec := range recs {
		row := make([]string, len(header))
		for i, col := range header {
			row[i] = csvCell(col, rec[col])
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// csvColumns returns the union of record fields: leadingColumns first, then
// the remaining fields sorted.
func csvColumns(recs []entities.Record) []string {
	seen := make(map[string]bool)
	for _, rec := range recs {
		for key := range rec {
			seen[key] = true
		}
	}

	columns := make([]string, 0, len(seen))
	for _, key := range leadingColumns {
		if seen[key] {
			columns = append(columns, key)
			delete(seen, key)
		}
	}
	rest := make([]string, 0, len(seen))
	for key := range seen {
		rest = append(rest, key)
	}
	sort.Strings(rest)
	return append(columns, rest...)
}

// csvCell renders a field so the CSV parser reads it back: strings as-is,
// list fields joined with the list separator, anything else as JSON.
func csvCell(column string, raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if !parsers.ListFields[column] {
		return string(raw)
	}
	if err := json.Unmarshal(raw, &list); err == nil && !slices.ContainsFunc(list, func(v string) bool {
		return strings.Contains(v, parsers.ListSeparator)
	}) {
		return strings.Join(list, parsers.ListSeparator)
	}
	return string(raw)
}

func formatMarkdown(w io.Writer, collection string, recs []entities.Record) error {
	if _, err := fmt.Fprintf(w, "# %s\n\nTotal: %d records\n\n", collection, len(recs)); err != nil {
		return err
	}

	if _, err := fmt.Fprint(w, "| ID | Name | Fields |\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprint(w, "|----|------|--------|\n"); err != nil {
		return err
	}

	for _, rec := range recs {
		if _, err := fmt.Fprintf(w, "| %s | %s | %d |\n",
			escapeMarkdown(rec.ID()),
			escapeMarkdown(recordLabel(rec)),
			len(rec),
		); err != nil {
			return err
		}
	}

	return nil
}

func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
