package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"newsdesk/internal/config"
	"newsdesk/internal/ingest"
	"newsdesk/internal/logging"
	"newsdesk/internal/store"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Sweep configured feeds once and store new content",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				logger, err := logging.NewFromConfig(cfg)
				if err != nil {
					return fmt.Errorf("init logger: %w", err)
				}
				ingestor := ingest.NewIngestor(cfg.Ingest, st, logger)
				added, err := ingestor.SweepAll(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Fetched %d new items from %d feeds\n", added, len(cfg.Ingest.Feeds))
				return nil
			})
		},
	}
}
