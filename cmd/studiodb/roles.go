package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/caspermolin/website-sub000/internal/application/handlers"
	"github.com/caspermolin/website-sub000/internal/domain/entities"
)

func newRolesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roles",
		Short: "Manage credit roles",
		Long:  "Manage the roles collection and inspect the role table used to normalize credits.",
	}

	cmd.AddCommand(
		newRolesListCmd(),
		newRolesAddCmd(),
		newRolesRemoveCmd(),
		newRolesTableCmd(),
	)

	return cmd
}

func newRolesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List roles",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *Deps) error {
				recs, err := d.Collections.HandleList(cmd.Context(), string(entities.CollectionRoles))
				if err != nil {
					return err
				}
				roles := entities.RolesFromRecords(recs)
				if globalJSON {
					return writeJSON(cmd, roles)
				}
				if len(roles) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No roles defined.")
					return nil
				}

				rows := make([][]string, 0, len(roles))
				for _, r := range roles {
					rows = append(rows, []string{
						r.ID,
						r.Name,
						r.Category,
						strconv.Itoa(r.Order),
						d.RoleTable.Fields[r.Name],
					})
				}
				printTable(cmd, []string{"ID", "NAME", "CATEGORY", "ORDER", "FIELD"}, rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft})
				return nil
			})
		},
	}
}

func newRolesAddCmd() *cobra.Command {
	var (
		category    string
		description string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a role",
		Long:  "Adds a role. The id is derived from the name and the order is appended after existing roles.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if category != entities.RoleCategoryCore && category != entities.RoleCategoryAdditional {
				return fmt.Errorf("invalid category %q (valid: %s, %s)", category, entities.RoleCategoryCore, entities.RoleCategoryAdditional)
			}
			item := entities.Record{}
			if err := item.Set("name", args[0]); err != nil {
				return err
			}
			if err := item.Set("category", category); err != nil {
				return err
			}
			if description != "" {
				if err := item.Set("description", description); err != nil {
					return err
				}
			}
			return runAction(cmd, string(entities.CollectionRoles), handlers.ActionRequest{Action: handlers.ActionAdd, Item: item})
		},
	}

	cmd.Flags().StringVar(&category, "category", entities.RoleCategoryAdditional, "Role category (core, additional)")
	cmd.Flags().StringVar(&description, "description", "", "Role description")
	return cmd
}

func newRolesRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(cmd, string(entities.CollectionRoles), handlers.ActionRequest{
				Action: handlers.ActionDelete,
				ItemID: handlers.ItemID(args[0]),
			})
		},
	}
}

func newRolesTableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "table",
		Short: "Show the role table used to normalize credits",
		Long:  "Shows the credit field for every role display name and the phrasings that resolve to each.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *Deps) error {
				if globalJSON {
					return writeJSON(cmd, d.RoleTable)
				}
				printTable(cmd, []string{"ROLE", "FIELD", "VARIANTS"}, roleTableRows(d.RoleTable), nil)
				return nil
			})
		},
	}
}

// roleTableRows returns one row per display name, sorted by display name,
// with its variants joined.
func roleTableRows(table entities.RoleTable) [][]string {
	variants := make(map[string][]string, len(table.Fields))
	for variant, display := range table.Variants {
		variants[display] = append(variants[display], variant)
	}

	displays := make([]string, 0, len(table.Fields))
	for display := range table.Fields {
		displays = append(displays, display)
	}
	sort.Strings(displays)

	rows := make([][]string, 0, len(displays))
	for _, display := range displays {
		vs := variants[display]
		sort.Strings(vs)
		rows = append(rows, []string{display, table.Fields[display], strings.Join(vs, ", ")})
	}
	return rows
}
