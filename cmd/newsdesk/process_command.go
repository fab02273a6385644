package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"newsdesk/internal/analysis"
	"newsdesk/internal/batch"
	"newsdesk/internal/config"
	"newsdesk/internal/logging"
	"newsdesk/internal/ratelimit"
	"newsdesk/internal/services"
	"newsdesk/internal/services/gemini"
	"newsdesk/internal/store"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Analyze unprocessed content through the AI pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				logger, err := logging.NewFromConfig(cfg)
				if err != nil {
					return fmt.Errorf("init logger: %w", err)
				}

				client := gemini.NewClient(gemini.ConfigFromApp(cfg))
				limiter := ratelimit.NewLimiter(st, logger)
				orchestrator := analysis.NewOrchestrator(client, limiter, logger)
				guard := batch.NewFlockGuard(filepath.Join(cfg.Paths.LogDir, "newsdesk-batch.lock"))
				processor := batch.NewProcessor(st, orchestrator, guard, logger)

				out := cmd.OutOrStdout()
				totalProcessed, totalErrors := 0, 0
				for {
					result, err := processor.ProcessUnprocessed(cmd.Context())
					totalProcessed += result.Processed
					totalErrors += result.Errors
					if err != nil {
						if services.IsDailyLimit(err) {
							fmt.Fprintf(out, "Processed %d items (%d failed); daily request limit reached\n", totalProcessed, totalErrors)
							return nil
						}
						return err
					}
					if !all || result.Remaining == 0 || result.Processed == 0 {
						fmt.Fprintf(out, "Processed %d items (%d failed), %d remaining\n", totalProcessed, totalErrors, result.Remaining)
						return nil
					}
				}
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Keep processing batches until the backlog is drained")
	return cmd
}
