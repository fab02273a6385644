package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"newsdesk/internal/config"
	"newsdesk/internal/store"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show store and pipeline counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)

				contentCount, err := st.ContentCount(cmd.Context())
				if err != nil {
					return err
				}
				exposureCount, err := st.ExposureCount(cmd.Context())
				if err != nil {
					return err
				}
				unprocessed, err := st.CountUnprocessed(cmd.Context())
				if err != nil {
					return err
				}
				archiveCount, err := st.ArchiveCount(cmd.Context())
				if err != nil {
					return err
				}

				fmt.Fprintln(out, "Newsdesk status")
				fmt.Fprintln(out, renderStatusLine("Database", statusInfo, cfg.DatabasePath(), colorize))
				fmt.Fprintln(out, renderStatusLine("Content items", statusInfo, fmt.Sprintf("%d", contentCount), colorize))
				fmt.Fprintln(out, renderStatusLine("Exposures", statusInfo, fmt.Sprintf("%d", exposureCount), colorize))
				backlogKind := statusOK
				if unprocessed > 0 {
					backlogKind = statusWarn
				}
				fmt.Fprintln(out, renderStatusLine("Unprocessed", backlogKind, fmt.Sprintf("%d", unprocessed), colorize))
				fmt.Fprintln(out, renderStatusLine("Daily archives", statusInfo, fmt.Sprintf("%d", archiveCount), colorize))
				return nil
			})
		},
	}
}
