package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/ipaview/internal/macho"
	"github.com/ZebulonRouseFrantzich/ipaview/internal/navigation"
	"github.com/ZebulonRouseFrantzich/ipaview/internal/service"
	"github.com/ZebulonRouseFrantzich/ipaview/internal/tree"
)

func newOpenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open <path>",
		Short: "Extract a package and print its entry point",
		Long: `Open materializes a package (or uses a directory in place), locates the
application bundle and prints where browsing would start.

The package is added to the recent entries.`,
		Args: cobra.ExactArgs(1),
		RunE: runOpen,
	}
}

func runOpen(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	res, err := a.session.OpenSource(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	printOpenResult(cmd.OutOrStdout(), res)
	return nil
}

func printOpenResult(w io.Writer, res *service.OpenResult) {
	entryPoint, err := navigation.RelativePath(res.Root, res.EntryPoint)
	if err != nil || entryPoint == "." {
		entryPoint = "(tree root)"
	}

	cached := "extracted"
	switch {
	case res.Entry.Raw:
		cached = "directory, used in place"
	case res.Entry.Reused:
		cached = "reused from cache"
	}

	fmt.Fprintf(w, "Source:      %s\n", res.Source)
	fmt.Fprintf(w, "Tree:        %s (%s)\n", res.Root, cached)
	fmt.Fprintf(w, "Entry point: %s\n", entryPoint)
	fmt.Fprintf(w, "Breadcrumbs: %s\n", formatBreadcrumbs(res.Breadcrumbs))
}

func formatBreadcrumbs(items []navigation.Item) string {
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Name
	}
	return strings.Join(names, " ")
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls <path> [subdir]",
		Short: "List a directory inside a package",
		Long: `List opens the package and lists the entry point, or subdir when given.
A relative subdir is resolved against the entry point; an absolute one must
lie inside the extracted tree.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runList,
	}
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	if _, err := a.session.OpenSource(ctx, args[0]); err != nil {
		return err
	}

	if len(args) == 2 {
		if _, err := a.session.NavigateTo(args[1]); err != nil {
			return err
		}
	}

	entries, err := a.session.List(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, formatBreadcrumbs(a.session.Breadcrumbs()))
	fmt.Fprintln(out)
	if len(entries) == 0 {
		fmt.Fprintln(out, "  (empty)")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintln(out, formatEntry(e))
	}
	return nil
}

// formatEntry renders one listing row: directories end in "/", files show
// their size and executables are tagged with the header family.
func formatEntry(e tree.Entry) string {
	if e.IsDir {
		return "  " + e.Name + "/"
	}
	line := fmt.Sprintf("  %-40s %10s", e.Name, tree.FormatBytes(e.Size))
	if e.Kind == macho.NativeExecutable {
		line += "  [exec " + e.Magic.String() + "]"
	}
	return strings.TrimRight(line, " ")
}
