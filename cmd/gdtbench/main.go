package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/calibrant/gdtbench/cmd/gdtbench/commands"
	"github.com/calibrant/gdtbench/logger"
)

var rootCmd = &cobra.Command{
	Use:   "gdtbench",
	Short: "gdtbench - GD&T requirement workbench",
	Long: `gdtbench - Geometric Dimensioning & Tolerancing workbench.

Manage tolerancing projects, encode feature control frames, annotate
drawing PDFs, and run design diagnostics over requirements.

Examples:
  gdtbench serve           # Start the workbench API server
  gdtbench db migrate      # Apply pending schema migrations
  gdtbench db stats        # Show database statistics
  gdtbench seed            # Load the demo project
  gdtbench version         # Show build information`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		if err := logger.InitializeWithLevel(false, logger.VerbosityToLevel(verbosity)); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")

	rootCmd.AddCommand(commands.ServeCmd)
	rootCmd.AddCommand(commands.DbCmd)
	rootCmd.AddCommand(commands.SeedCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
