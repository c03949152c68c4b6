package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/ipaview/internal/config"
	"github.com/ZebulonRouseFrantzich/ipaview/internal/fsutil"
)

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the configuration file",
		Args:  cobra.NoArgs,
		RunE:  runConfigShow,
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  cobra.NoArgs,
		RunE:  runConfigInit,
	}
	initCmd.Flags().BoolP("force", "f", false, "Overwrite an existing config file")

	configCmd.AddCommand(
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file location",
			Args:  cobra.NoArgs,
			RunE:  runConfigPath,
		},
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration as Lua",
			Args:  cobra.NoArgs,
			RunE:  runConfigShow,
		},
		initCmd,
	)
	return configCmd
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	loaded, logger, err := loadConfig(cmd, false)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	fmt.Fprintln(cmd.OutOrStdout(), loaded.Paths.ConfigFile)
	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	loaded, logger, err := loadConfig(cmd, false)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	out := cmd.OutOrStdout()
	source := loaded.Paths.ConfigFile
	if !loaded.FromFile {
		source += " (not found, defaults)"
	}

	fmt.Fprintf(out, "-- config:    %s\n", source)
	fmt.Fprintf(out, "-- cache:     %s\n", loaded.Paths.CacheDir)
	fmt.Fprintf(out, "-- recent:    %s\n", loaded.Paths.RecentFile)
	fmt.Fprintf(out, "-- downloads: %s\n", loaded.Paths.Downloads)
	fmt.Fprintf(out, "-- platform:  %s\n", loaded.Platform)
	fmt.Fprint(out, config.NewGenerator().Generate(loaded.Config))
	return nil
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	loaded, logger, err := loadConfig(cmd, false)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	path := loaded.Paths.ConfigFile
	force, _ := cmd.Flags().GetBool("force")

	_, err = os.Stat(path)
	switch {
	case err == nil && !force:
		return fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("check config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	content := config.NewGenerator().Generate(config.Defaults())
	if err := fsutil.WriteFileAtomic(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	logger.Info("wrote config file", "path", path)
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
