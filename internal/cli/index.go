package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"refdocs/config"
	"refdocs/internal/adapter/store"
	"refdocs/internal/usecase"
)

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Resolve documentation and store the records",
	Long: `Resolve the documentation of every symbol in the specified directory and
store the records. The records are stored in .refdocs/docs.db within the
target directory.

Examples:
  refdocs index .                 # Index current directory
  refdocs index /path/to/project  # Index specific directory`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	path := GetRootDir()
	if len(args) > 0 {
		var err error
		path, err = filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("path does not exist: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}

	cfg := GetConfig()

	if err := config.EnsureDataDir(path); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", config.DataDir, err)
	}

	dbPath := config.DocsDBPath(path)
	st, err := store.NewBoltStore(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open docs store: %w", err)
	}
	defer st.Close()

	migrationResult, err := st.CheckMigration(cfg)
	if err != nil {
		return fmt.Errorf("failed to check migration: %w", err)
	}

	if migrationResult.NeedsRebuild {
		fmt.Printf("Rebuild required: %s\n", migrationResult.Reason)
	} else if migrationResult.NeedsMigration {
		fmt.Printf("Running schema migration: %s\n", migrationResult.Reason)
		if err := st.Migrate(cfg); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	fmt.Printf("Scanning %s...\n", path)
	start := time.Now()

	catalog, err := buildCatalog(ctx, path, cfg)
	if err != nil {
		return fmt.Errorf("failed to build catalog: %w", err)
	}

	bar := progressbar.NewOptions(catalog.Len(),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Resolving[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)

	// Records are recomputed from scratch, so stale ones must not survive.
	if err := st.Clear(); err != nil {
		return fmt.Errorf("failed to clear store: %w", err)
	}

	exportUC := usecase.NewExportUseCase(catalog, st)
	result, err := exportUC.Export(ctx, func(done, total int, id string) {
		bar.Set(done)
	})
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	// Record the schema and config hash the records were built with.
	if err := st.Migrate(cfg); err != nil {
		return fmt.Errorf("failed to update schema info: %w", err)
	}

	fmt.Printf("\nIndexing complete in %s:\n", formatDuration(time.Since(start)))
	fmt.Printf("  Records:       %d\n", result.Records)
	fmt.Printf("  Empty records: %d\n", result.Empty)
	fmt.Printf("  Warnings:      %d\n", result.Warnings)
	fmt.Printf("  Errors:        %d\n", result.Errors)
	if result.Warnings+result.Errors > 0 {
		fmt.Println("\nRun 'refdocs check -v' for details.")
	}

	stored, withDiags, err := st.Stats()
	if err != nil {
		return fmt.Errorf("failed to read store stats: %w", err)
	}
	fmt.Printf("\nStored %d records (%d with diagnostics) at: %s\n", stored, withDiags, dbPath)
	return nil
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "<1s"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", h, m)
}
