package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/calibrant/gdtbench/errors"
	"github.com/calibrant/gdtbench/store"
)

// DbCmd groups database operations.
var DbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the workbench database",
	Long: `Manage database operations.

Examples:
  gdtbench db migrate    # Apply pending schema migrations
  gdtbench db stats      # Show entity counts`,
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE:  runDbMigrate,
}

var dbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show database statistics",
	RunE:  runDbStats,
}

func init() {
	DbCmd.AddCommand(dbMigrateCmd)
	DbCmd.AddCommand(dbStatsCmd)
}

func runDbMigrate(cmd *cobra.Command, args []string) error {
	conn, cfg, err := openDatabase("")
	if err != nil {
		return errors.Wrap(err, "failed to open database")
	}
	defer conn.Close()

	pterm.Success.Printf("Database ready at %s\n", cfg.Database.Path)
	return nil
}

func runDbStats(cmd *cobra.Command, args []string) error {
	conn, cfg, err := openDatabase("")
	if err != nil {
		return errors.Wrap(err, "failed to open database")
	}
	defer conn.Close()

	totals, err := store.New(conn, nil).ProjectTotals()
	if err != nil {
		return errors.Wrap(err, "failed to query totals")
	}

	pterm.DefaultSection.Println("Database Statistics")
	fmt.Printf("Database Path: %s\n\n", cfg.Database.Path)

	return pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData{
		{"Entity", "Count"},
		{"Projects", fmt.Sprintf("%d", totals.Projects)},
		{"Drawings", fmt.Sprintf("%d", totals.Drawings)},
		{"Requirements", fmt.Sprintf("%d", totals.Requirements)},
		{"Annotations", fmt.Sprintf("%d", totals.Annotations)},
	}).Render()
}
