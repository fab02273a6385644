package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"newsdesk/internal/config"
	"newsdesk/internal/store"
)

func newPrefsCommand(ctx *commandContext) *cobra.Command {
	prefsCmd := &cobra.Command{
		Use:   "prefs",
		Short: "Manage categories, keyword weights, and user subscriptions",
	}

	prefsCmd.AddCommand(newPrefsCategoryCommand(ctx))
	prefsCmd.AddCommand(newPrefsWeightCommand(ctx))
	prefsCmd.AddCommand(newPrefsSubscribeCommand(ctx))
	return prefsCmd
}

func newPrefsCategoryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "category <name>...",
		Short: "Register interest categories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				for _, name := range args {
					name = strings.TrimSpace(name)
					if name == "" {
						continue
					}
					id, err := st.UpsertCategory(cmd.Context(), name)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Category %q ready (id %d)\n", name, id)
				}
				return nil
			})
		},
	}
}

func newPrefsWeightCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "weight <keyword> <category> <weight>",
		Short: "Set the signed weight of a keyword within a category",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			weight, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("invalid weight %q", args[2])
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				keywordID, err := st.UpsertKeyword(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				categoryID, err := st.UpsertCategory(cmd.Context(), args[1])
				if err != nil {
					return err
				}
				if err := st.SetKeywordWeight(cmd.Context(), keywordID, categoryID, weight); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Weight for %q in %q set to %g\n", args[0], args[1], weight)
				return nil
			})
		},
	}
}

func newPrefsSubscribeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "subscribe <user> <category>...",
		Short: "Replace the categories a user follows",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				userID := args[0]
				categoryIDs := make([]int64, 0, len(args)-1)
				for _, name := range args[1:] {
					id, err := st.UpsertCategory(cmd.Context(), name)
					if err != nil {
						return err
					}
					categoryIDs = append(categoryIDs, id)
				}
				if err := st.SetUserCategories(cmd.Context(), userID, categoryIDs); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "User %s now follows %d categories\n", userID, len(categoryIDs))
				return nil
			})
		},
	}
}
