package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"newsdesk/internal/config"
	"newsdesk/internal/store"
	"newsdesk/internal/textutil"
)

func newContentCommand(ctx *commandContext) *cobra.Command {
	contentCmd := &cobra.Command{
		Use:   "content",
		Short: "Inspect stored content",
	}

	contentCmd.AddCommand(newContentListCommand(ctx))
	contentCmd.AddCommand(newContentShowCommand(ctx))
	return contentCmd
}

func newContentListCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recently ingested content",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				items, err := st.ListRecentContent(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No content stored yet")
					return nil
				}

				rows := make([][]string, 0, len(items))
				for _, item := range items {
					processed := "no"
					exp, err := st.ExposureByContent(cmd.Context(), item.ID)
					if err != nil {
						return err
					}
					if exp != nil {
						processed = "yes"
					}
					rows = append(rows, []string{
						strconv.FormatInt(item.ID, 10),
						textutil.Excerpt(item.Title, 60),
						item.PublishedAt.Format("2006-01-02 15:04"),
						strconv.Itoa(item.ProviderPriority),
						processed,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Title", "Published", "Priority", "Processed"},
					rows, 0, 3,
				))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of items to list")
	return cmd
}

func newContentShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one content item with its exposure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid content id %q", args[0])
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				item, err := st.ContentByID(cmd.Context(), id)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "ID:         %d\n", item.ID)
				fmt.Fprintf(out, "Title:      %s\n", item.Title)
				fmt.Fprintf(out, "Source:     %s\n", item.Source)
				fmt.Fprintf(out, "Link:       %s\n", item.Link)
				fmt.Fprintf(out, "Published:  %s\n", item.PublishedAt.Format("2006-01-02 15:04:05 MST"))
				fmt.Fprintf(out, "Length:     %d chars\n", item.LengthChars)

				exp, err := st.ExposureByContent(cmd.Context(), item.ID)
				if err != nil {
					return err
				}
				if exp == nil {
					fmt.Fprintln(out, "Exposure:   not processed yet")
					return nil
				}
				fmt.Fprintf(out, "Headline:   %s\n", exp.Headline)
				fmt.Fprintf(out, "Keyword:    %s\n", exp.ProvocativeKeyword)
				fmt.Fprintf(out, "Model:      %s\n", exp.Model)
				fmt.Fprintf(out, "Summary:    %s\n", exp.SummaryText)
				return nil
			})
		},
	}
}
