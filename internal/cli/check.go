package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"refdocs/internal/adapter/xmldoc"
	"refdocs/internal/domain"
)

var checkVerbose bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report documentation comment diagnostics",
	Long: `Parse and resolve every documentation comment and report the diagnostics.
With -v every diagnostic is printed, followed by the canonical markup of the
comment when it parsed. Exits with a non-zero status when any comment fails
to parse.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVarP(&checkVerbose, "verbose", "v", false, "print every diagnostic")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	catalog, err := buildCatalog(ctx, GetRootDir(), GetConfig())
	if err != nil {
		return fmt.Errorf("failed to build catalog: %w", err)
	}
	reports, err := catalog.Diagnostics(ctx)
	if err != nil {
		return err
	}

	var warnings, errs int
	for _, r := range reports {
		for _, d := range r.Diagnostics {
			switch d.Severity {
			case domain.SeverityError:
				errs++
			case domain.SeverityWarning:
				warnings++
			}
			if checkVerbose {
				fmt.Fprintf(out, "%s: %s\n", r.ID, d)
			}
		}
		if checkVerbose {
			if e, ok := catalog.Lookup(r.ID); ok {
				fmt.Fprintf(out, "  %s\n", xmldoc.Format(e.Syntax))
			}
		}
	}

	fmt.Fprintf(out, "%d comments, %d warnings, %d errors\n", catalog.Len(), warnings, errs)
	if errs > 0 {
		return fmt.Errorf("found %d error diagnostics", errs)
	}
	return nil
}
