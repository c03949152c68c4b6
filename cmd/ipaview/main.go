package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/ipaview/internal/config"
)

// Version will be set at build time via -ldflags
var Version = "v0.1.0-dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		verbose, _ := root.PersistentFlags().GetBool("verbose")
		fmt.Fprintf(os.Stderr, "Error: %s\n", config.FormatError(err, verbose))
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ipaview",
		Short: "Browse the contents of iOS app packages",
		Long: `IPAView extracts .ipa packages into a local cache and lets you browse
the resulting tree. Native executables are detected by their Mach-O header.

Run without arguments to open the interactive browser.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runBrowse,
	}
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging and detailed errors")

	rootCmd.AddCommand(
		newOpenCmd(),
		newListCmd(),
		newBrowseCmd(),
		newRecentCmd(),
		newCacheCmd(),
		newDownloadsCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
	return rootCmd
}
