package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

func newFavCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fav",
		Short: "Manage favorites",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List favorites sorted by title",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, cmdArgs []string) error {
			favorites := a.profile.Favorites.Sorted()
			if len(favorites) == 0 {
				fmt.Println("No favorites.")
				return nil
			}
			for _, fav := range favorites {
				fmt.Printf("%s\t%s\n", fav.Title, fav.URL)
			}
			return nil
		},
	}

	add := &cobra.Command{
		Use:   "add TITLE URL",
		Short: "Add a favorite",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, cmdArgs []string) error {
			if err := a.profile.Favorites.Add(cmdArgs[0], cmdArgs[1]); err != nil {
				return err
			}
			slog.Info("favorite added", "url", cmdArgs[1])
			return nil
		},
	}

	edit := &cobra.Command{
		Use:   "edit URL NEW_TITLE NEW_URL",
		Short: "Replace the title and URL of a favorite",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, cmdArgs []string) error {
			if err := a.profile.Favorites.Update(cmdArgs[0], cmdArgs[1], cmdArgs[2]); err != nil {
				return err
			}
			slog.Info("favorite updated", "url", cmdArgs[2])
			return nil
		},
	}

	rm := &cobra.Command{
		Use:   "rm URL",
		Short: "Remove a favorite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, cmdArgs []string) error {
			if err := a.profile.Favorites.Remove(cmdArgs[0]); err != nil {
				return err
			}
			slog.Info("favorite removed", "url", cmdArgs[0])
			return nil
		},
	}

	cmd.AddCommand(list, add, edit, rm)
	return cmd
}

func newHistoryCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show the browsing history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, cmdArgs []string) error {
			entries := a.profile.History.All()
			if len(entries) == 0 {
				fmt.Println("No history.")
				return nil
			}
			for _, e := range entries {
				fmt.Printf("%s\t%s\t%s\n", e.Timestamp, e.Title, e.URL)
			}
			return nil
		},
	}
}
