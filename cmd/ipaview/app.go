package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/ipaview/internal/archive"
	"github.com/ZebulonRouseFrantzich/ipaview/internal/config"
	"github.com/ZebulonRouseFrantzich/ipaview/internal/logging"
	"github.com/ZebulonRouseFrantzich/ipaview/internal/recent"
	"github.com/ZebulonRouseFrantzich/ipaview/internal/service"
)

// app holds the wired components shared by the subcommands.
type app struct {
	loaded       *config.Loaded
	logger       *logging.ZapLogger
	materializer *archive.Materializer
	recent       *recent.Store
	session      *service.Session
}

// logFileName is the log written while the terminal browser owns the screen.
const logFileName = "ipaview.log"

// loadConfig resolves the effective configuration and builds the logger.
// With logToFile the logger writes to the application support directory
// instead of stderr.
func loadConfig(cmd *cobra.Command, logToFile bool) (*config.Loaded, *logging.ZapLogger, error) {
	loaded, err := config.Load(cmd.Context(), config.LoadOptions{})
	if err != nil {
		return nil, nil, err
	}

	logCfg := logging.Config{
		Level:  loaded.Config.Log.Level,
		Format: loaded.Config.Log.Format,
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logCfg.Level = "debug"
	}
	if logToFile {
		if err := os.MkdirAll(loaded.Paths.AppSupport, 0o750); err != nil {
			return nil, nil, fmt.Errorf("create application support dir: %w", err)
		}
		logCfg.OutputPath = filepath.Join(loaded.Paths.AppSupport, logFileName)
	}

	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}
	return loaded, logger, nil
}

// newApp wires config, logging, cache, recent store and session.
func newApp(cmd *cobra.Command) (*app, error) {
	return newAppLogging(cmd, false)
}

func newAppLogging(cmd *cobra.Command, logToFile bool) (*app, error) {
	loaded, logger, err := loadConfig(cmd, logToFile)
	if err != nil {
		return nil, err
	}
	cfg := loaded.Config

	materializer, err := archive.NewMaterializer(archive.Config{
		CacheDir: loaded.Paths.CacheDir,
		Logger:   logger.With("component", "archive"),
	})
	if err != nil {
		return nil, fmt.Errorf("create materializer: %w", err)
	}

	clock := service.RealClock{}
	store, err := recent.New(recent.Options{
		Path:   loaded.Paths.RecentFile,
		Limit:  cfg.RecentLimit,
		Now:    service.ClockFunc(clock),
		Logger: logger.With("component", "recent"),
	})
	if err != nil {
		return nil, fmt.Errorf("create recent store: %w", err)
	}

	session, err := service.NewSession(service.Options{
		Materializer:      materializer,
		Recent:            store,
		Logger:            logger.With("component", "session"),
		Clock:             clock,
		BundleSuffix:      cfg.BundleSuffix,
		PackageExtensions: cfg.PackageExtensions,
	})
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	logger.Debug("wired components",
		"cache_dir", loaded.Paths.CacheDir,
		"recent_file", loaded.Paths.RecentFile,
		"platform", loaded.Platform.String())

	return &app{
		loaded:       loaded,
		logger:       logger,
		materializer: materializer,
		recent:       store,
		session:      session,
	}, nil
}

func (a *app) close() {
	a.session.Close()
	_ = a.logger.Sync()
}
