package commands

import (
	"database/sql"

	"github.com/calibrant/gdtbench/config"
	"github.com/calibrant/gdtbench/db"
	"github.com/calibrant/gdtbench/errors"
	"github.com/calibrant/gdtbench/logger"
)

// openDatabase loads config, opens the database, and applies pending
// migrations. An explicit path overrides the configured one.
func openDatabase(path string) (*sql.DB, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, errors.Wrap(err, "load configuration")
	}
	if path == "" {
		path = cfg.Database.Path
	}

	conn, err := db.Open(path, logger.Logger)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Migrate(conn, logger.Logger); err != nil {
		conn.Close()
		return nil, nil, err
	}
	return conn, cfg, nil
}
