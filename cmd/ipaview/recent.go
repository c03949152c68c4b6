package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const timeLayout = "2006-01-02 15:04"

func newRecentCmd() *cobra.Command {
	recentCmd := &cobra.Command{
		Use:   "recent",
		Short: "Show and manage recently opened packages",
		Args:  cobra.NoArgs,
		RunE:  runRecentList,
	}

	recentCmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List recent entries, most recent first",
			Args:  cobra.NoArgs,
			RunE:  runRecentList,
		},
		&cobra.Command{
			Use:   "remove <path>",
			Short: "Remove an entry from the recent list",
			Args:  cobra.ExactArgs(1),
			RunE:  runRecentRemove,
		},
		&cobra.Command{
			Use:   "prune",
			Short: "Remove entries whose files no longer exist",
			Args:  cobra.NoArgs,
			RunE:  runRecentPrune,
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove every recent entry",
			Args:  cobra.NoArgs,
			RunE:  runRecentClear,
		},
	)
	return recentCmd
}

func runRecentList(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	entries, err := a.session.ListRecent()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, "No recent entries.")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "To open a package:")
		fmt.Fprintln(out, "  ipaview open ~/Downloads/App.ipa")
		return nil
	}

	for i, e := range entries {
		fmt.Fprintf(out, "%3d. %s  %s\n", i+1, e.OpenedAt.Local().Format(timeLayout), e.Path)
	}
	return nil
}

func runRecentRemove(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.session.RemoveRecent(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
	return nil
}

func runRecentPrune(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	pruned, err := a.session.PruneRecent()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, p := range pruned {
		fmt.Fprintf(out, "  ✗ %s\n", p)
	}
	fmt.Fprintf(out, "Pruned %d missing %s.\n", len(pruned), plural(len(pruned), "entry", "entries"))
	return nil
}

func runRecentClear(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.recent.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Cleared recent entries.")
	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
