package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/calibrant/gdtbench/errors"
	"github.com/calibrant/gdtbench/logger"
	"github.com/calibrant/gdtbench/server"
	"github.com/calibrant/gdtbench/store"
)

// ServeCmd starts the workbench API server.
var ServeCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"server"},
	Short:   "Start the workbench API server",
	Long:    `Launch the HTTP API and WebSocket change feed for the workbench. Projects, drawings, requirements, and annotations are served as JSON; mutations are pushed to connected clients.`,
	RunE:    runServe,
}

var (
	servePort   int
	serveDBPath string
)

func init() {
	ServeCmd.Flags().IntVar(&servePort, "port", 0, "Listen port (overrides config)")
	ServeCmd.Flags().StringVar(&serveDBPath, "db-path", "", "Custom database path (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	conn, cfg, err := openDatabase(serveDBPath)
	if err != nil {
		return errors.Wrap(err, "failed to open database")
	}
	defer conn.Close()

	if servePort != 0 {
		cfg.Server.Port = servePort
	}

	st := store.New(conn, logger.Logger)
	srv := server.NewServer(st, cfg, logger.Logger)

	pterm.Info.Printf("gdtbench listening on :%d (db %s)\n", cfg.Server.Port, cfg.Database.Path)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		pterm.Info.Printf("Received %s, shutting down\n", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
