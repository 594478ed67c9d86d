package main

import (
	"github.com/spf13/cobra"

	"github.com/caspermolin/website-sub000/internal/infrastructure/httpapi"
)

func newServeCmd() *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the collections API over HTTP",
		Long:  "Serves collection reads and writes, sync, normalize and backups under /api until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *Deps) error {
				if bind == "" {
					bind = d.Config.Server.Bind
				}
				server := httpapi.New(bind, httpapi.Handlers{
					Collections: d.Collections,
					Sync:        d.Sync,
					Normalize:   d.Normalize,
					Backups:     d.Backups,
					History:     d.History,
				}, d.Logger)
				return server.Run(cmd.Context())
			})
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (default: server.bind from config)")
	return cmd
}
