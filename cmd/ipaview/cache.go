package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/ipaview/internal/tree"
)

func newCacheCmd() *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the extraction cache",
		Args:  cobra.NoArgs,
		RunE:  runCachePath,
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every extracted tree",
		Args:  cobra.NoArgs,
		RunE:  runCacheClear,
	}
	clearCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")

	cacheCmd.AddCommand(
		&cobra.Command{
			Use:   "path",
			Short: "Print the cache directory",
			Args:  cobra.NoArgs,
			RunE:  runCachePath,
		},
		&cobra.Command{
			Use:   "list",
			Short: "List extracted trees, newest first",
			Args:  cobra.NoArgs,
			RunE:  runCacheList,
		},
		clearCmd,
	)
	return cacheCmd
}

func runCachePath(cmd *cobra.Command, _ []string) error {
	loaded, logger, err := loadConfig(cmd, false)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	fmt.Fprintln(cmd.OutOrStdout(), loaded.Paths.CacheDir)
	return nil
}

func runCacheList(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	trees, err := a.materializer.Entries()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(trees) == 0 {
		fmt.Fprintf(out, "Cache is empty (%s).\n", a.materializer.CacheDir())
		return nil
	}

	var total int64
	for _, t := range trees {
		total += t.Size
		fmt.Fprintf(out, "  %s  %10s  %s\n", t.ModTime.Local().Format(timeLayout), tree.FormatBytes(t.Size), t.Key)
	}
	fmt.Fprintf(out, "\n%d %s, %s total\n", len(trees), plural(len(trees), "tree", "trees"), tree.FormatBytes(total))
	return nil
}

func runCacheClear(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		ok, err := confirm(cmd, fmt.Sprintf("Delete all extracted trees in %s?", a.materializer.CacheDir()))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}
	}

	if err := a.materializer.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared.")
	return nil
}
