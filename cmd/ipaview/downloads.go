package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/ipaview/internal/discover"
	"github.com/ZebulonRouseFrantzich/ipaview/internal/tree"
)

func newDownloadsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "downloads",
		Short: "List packages in the downloads directory",
		Long: `Downloads lists files in the downloads directory whose extension is one of
the configured package_extensions, newest first. The directory is
downloads_dir from the config, or the platform default.`,
		Args: cobra.NoArgs,
		RunE: runDownloads,
	}
}

func runDownloads(cmd *cobra.Command, _ []string) error {
	loaded, logger, err := loadConfig(cmd, false)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	dir := loaded.Paths.Downloads
	out := cmd.OutOrStdout()

	pkgs, err := discover.Packages(dir, loaded.Config.PackageExtensions)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Debug("downloads directory missing", "dir", dir)
		fmt.Fprintf(out, "No packages in %s.\n", dir)
		return nil
	}
	if err != nil {
		return fmt.Errorf("list downloads: %w", err)
	}

	if len(pkgs) == 0 {
		fmt.Fprintf(out, "No packages in %s.\n", dir)
		return nil
	}

	for _, p := range pkgs {
		fmt.Fprintf(out, "  %s  %10s  %s\n", p.ModTime.Local().Format(timeLayout), tree.FormatBytes(p.Size), p.Path)
	}
	return nil
}
