package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"refdocs/config"
	"refdocs/internal/logging"
)

var (
	cfgFile  string
	cfg      *config.Config
	rootDir  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "refdocs",
	Short: "Resolve structured documentation comments and their inherited content",
	Long: `refdocs parses XML documentation comments attached to program symbols,
follows inheritdoc directives through base types, overridden members and
implemented interfaces, and stores the resolved documentation records.

Example usage:
  refdocs index .                 # Resolve and store docs for the current directory
  refdocs resolve T:lib.Square    # Print the resolved record of one symbol
  refdocs show M:lib.Square.Area  # Print a stored record
  refdocs check -v                # Report comment diagnostics`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		level := cfg.Logging.Level
		if logLevel != "" {
			level = logLevel
		}
		lvl, err := logging.ParseLevel(level)
		if err != nil {
			return err
		}
		cmd.SetContext(logging.Setup(cmd.Context(), os.Stderr, logging.Options{
			Level: lvl,
			Color: cfg.Logging.Color,
		}))

		return nil
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./refdocs.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "root directory (default is current directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}
