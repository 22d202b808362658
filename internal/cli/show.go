package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"refdocs/config"
	"refdocs/internal/adapter/store"
)

var showJSON bool

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a stored documentation record",
	Long: `Print the documentation record stored by 'refdocs index' for the symbol with
the given identifier, followed by its diagnostics.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "print JSON instead of text")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	id := args[0]

	dbPath := config.DocsDBPath(GetRootDir())
	if _, err := os.Stat(dbPath); err != nil {
		return fmt.Errorf("no stored records at %s; run 'refdocs index' first", dbPath)
	}
	st, err := store.NewBoltStore(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open docs store: %w", err)
	}
	defer st.Close()

	rec, err := st.GetRecord(id)
	if errors.Is(err, store.ErrRecordNotFound) {
		return fmt.Errorf("no stored record for %s", id)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if showJSON {
		return writeJSON(out, id, rec)
	}

	writeText(out, id, rec)
	diags, err := st.GetDiagnostics(id)
	if err != nil {
		return err
	}
	if len(diags) > 0 {
		fmt.Fprintln(out, "\n  Diagnostics:")
		for _, d := range diags {
			fmt.Fprintf(out, "    %s\n", d)
		}
	}
	return nil
}
