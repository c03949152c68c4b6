package main

import (
	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/ipaview/internal/tui"
)

func newBrowseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse [path]",
		Short: "Open the interactive browser",
		Long: `Browse starts the terminal browser. With a path the package is opened
immediately; otherwise the recent entries are shown.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runBrowse,
	}
}

func runBrowse(cmd *cobra.Command, args []string) error {
	a, err := newAppLogging(cmd, true)
	if err != nil {
		return err
	}
	defer a.close()

	var path string
	if len(args) == 1 {
		path = args[0]
	}
	return tui.Run(cmd.Context(), a.session, path)
}
