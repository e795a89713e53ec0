package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/calibrant/gdtbench/errors"
	"github.com/calibrant/gdtbench/logger"
	"github.com/calibrant/gdtbench/seed"
	"github.com/calibrant/gdtbench/store"
)

// SeedCmd loads the demo project into an empty database.
var SeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo project",
	Long:  `Seed an empty database with a demo project: two generated drawing PDFs, eight varied requirements, and sample annotations. Does nothing when projects already exist.`,
	RunE:  runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	conn, cfg, err := openDatabase("")
	if err != nil {
		return errors.Wrap(err, "failed to open database")
	}
	defer conn.Close()

	st := store.New(conn, logger.Logger)
	if err := seed.Run(st, cfg.Uploads.Dir, logger.Logger); err != nil {
		return errors.Wrap(err, "seed failed")
	}

	pterm.Success.Println("Seed complete.")
	return nil
}
