package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	resolveYAML bool
	resolveTree bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <id>",
	Short: "Print the resolved documentation of one symbol",
	Long: `Build the catalog in memory and print the resolved documentation record of
the symbol with the given identifier.

Examples:
  refdocs resolve T:lib.Square          # JSON record
  refdocs resolve --yaml M:lib.Square.Area
  refdocs resolve --tree T:lib.Square   # inheritance graph reachable from the symbol`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().BoolVar(&resolveYAML, "yaml", false, "print YAML instead of JSON")
	resolveCmd.Flags().BoolVar(&resolveTree, "tree", false, "print the inheritance graph reachable from the symbol")
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	id := args[0]

	catalog, err := buildCatalog(ctx, GetRootDir(), GetConfig())
	if err != nil {
		return fmt.Errorf("failed to build catalog: %w", err)
	}

	if resolveTree {
		g, err := catalog.Graph(ctx)
		if err != nil {
			return err
		}
		ids := g.Reachable(id)
		if ids == nil {
			return fmt.Errorf("no documentation for %s", id)
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), g.Dump(ids))
		return err
	}

	rec, err := catalog.Resolve(ctx, id)
	if err != nil {
		return err
	}
	if resolveYAML {
		return writeYAML(cmd.OutOrStdout(), id, rec)
	}
	return writeJSON(cmd.OutOrStdout(), id, rec)
}
