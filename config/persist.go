package config

import (
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/calibrant/gdtbench/errors"
)

// Save writes cfg to path as TOML, rotating up to three backups of the
// previous file first (.back1 is the most recent).
func Save(cfg *Config, path string) error {
	if err := createBackup(path); err != nil {
		return errors.Wrap(err, "backup config")
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "marshal config")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "write config %s", path)
	}
	return nil
}

// createBackup rotates backups (.back1, .back2, .back3) before modifying the
// config file. A missing current file is not an error.
func createBackup(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	back3 := path + ".back3"
	back2 := path + ".back2"
	back1 := path + ".back1"

	if err := os.Remove(back3); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "remove oldest backup")
	}
	if _, err := os.Stat(back2); err == nil {
		if err := os.Rename(back2, back3); err != nil {
			return errors.Wrap(err, "rotate .back2 to .back3")
		}
	}
	if _, err := os.Stat(back1); err == nil {
		if err := os.Rename(back1, back2); err != nil {
			return errors.Wrap(err, "rotate .back1 to .back2")
		}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read config for backup")
	}
	return os.WriteFile(back1, content, 0o644)
}
