package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"newsdesk/internal/config"
	"newsdesk/internal/logging"
	"newsdesk/internal/notifications"
	"newsdesk/internal/recommend"
	"newsdesk/internal/store"
	"newsdesk/internal/textutil"
)

func newArchiveCommand(ctx *commandContext) *cobra.Command {
	archiveCmd := &cobra.Command{
		Use:   "archive",
		Short: "Resolve and inspect daily recommendation archives",
	}

	archiveCmd.AddCommand(newArchiveResolveCommand(ctx))
	archiveCmd.AddCommand(newArchiveShowCommand(ctx))
	return archiveCmd
}

func parseDayFlag(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Now().UTC(), nil
	}
	day, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day %q (expected YYYY-MM-DD)", value)
	}
	return day, nil
}

func newArchiveResolveCommand(ctx *commandContext) *cobra.Command {
	var dayFlag string

	cmd := &cobra.Command{
		Use:   "resolve <user>",
		Short: "Build (or fetch) the daily archive for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDayFlag(dayFlag)
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				logger, err := logging.NewFromConfig(cfg)
				if err != nil {
					return fmt.Errorf("init logger: %w", err)
				}
				existing, err := st.FindArchive(cmd.Context(), args[0], store.DayKey(day))
				if err != nil {
					return err
				}
				resolver := recommend.NewResolver(st, logger)
				archive, err := resolver.ResolveDaily(cmd.Context(), args[0], day)
				if err != nil {
					return err
				}
				if existing == nil {
					notifier := notifications.NewService(cfg)
					if err := notifier.NotifyArchiveCreated(cmd.Context(), archive.UserID, len(archive.ExposureIDs)); err != nil {
						logger.Warn("archive notification failed", logging.Error(err))
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Archive %s for %s on %s holds %d entries\n",
					archive.ID, archive.UserID, archive.Day, len(archive.ExposureIDs))
				return renderArchiveEntries(cmd, st, archive)
			})
		},
	}

	cmd.Flags().StringVar(&dayFlag, "day", "", "Calendar day to resolve (YYYY-MM-DD, defaults to today UTC)")
	return cmd
}

func newArchiveShowCommand(ctx *commandContext) *cobra.Command {
	var dayFlag string

	cmd := &cobra.Command{
		Use:   "show <user>",
		Short: "Show an existing daily archive without creating one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDayFlag(dayFlag)
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				archive, err := st.FindArchive(cmd.Context(), args[0], store.DayKey(day))
				if err != nil {
					return err
				}
				if archive == nil {
					fmt.Fprintf(cmd.OutOrStdout(), "No archive for %s on %s\n", args[0], store.DayKey(day))
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Archive %s for %s on %s holds %d entries\n",
					archive.ID, archive.UserID, archive.Day, len(archive.ExposureIDs))
				return renderArchiveEntries(cmd, st, archive)
			})
		},
	}

	cmd.Flags().StringVar(&dayFlag, "day", "", "Calendar day to show (YYYY-MM-DD, defaults to today UTC)")
	return cmd
}

func renderArchiveEntries(cmd *cobra.Command, st *store.Store, archive *store.DailyArchive) error {
	if len(archive.ExposureIDs) == 0 {
		return nil
	}
	exposures, err := st.ExposuresByIDs(cmd.Context(), archive.ExposureIDs)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(exposures))
	for i, exp := range exposures {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			textutil.Excerpt(exp.Headline, 70),
			exp.ProvocativeKeyword,
			exp.Model,
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"#", "Headline", "Keyword", "Model"},
		rows, 0,
	))
	return nil
}
