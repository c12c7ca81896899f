package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/soaringjerry/mindscope/internal/api"
	dbstore "github.com/soaringjerry/mindscope/internal/db"
	"github.com/soaringjerry/mindscope/internal/logger"
)

// MigrateIfNeeded copies a memory-store snapshot into a new SQLite database. It does nothing
// when the database file already exists or there is no snapshot to read.
func MigrateIfNeeded(snapshotPath, sqlitePath, migrationsDir string, log *logger.Logger) error {
	if sqlitePath == "" {
		return errors.New("sqlite path is required")
	}
	if sqlitePath == ":memory:" || snapshotPath == "" {
		return nil
	}
	if _, err := os.Stat(sqlitePath); err == nil {
		return nil // already migrated
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("check sqlite file: %w", err)
	}

	legacy, err := api.NewMemoryStoreFromPath(snapshotPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load snapshot: %w", err)
	}
	snapshot := api.MemoryStoreSnapshot(legacy)
	if snapshot == nil {
		return nil
	}

	log.Info("first run, migrating snapshot into sqlite", "snapshot", snapshotPath, "sqlite", sqlitePath,
		"assessments", len(snapshot.Assessments), "submissions", len(snapshot.Submissions), "users", len(snapshot.Users))

	conn, err := dbstore.OpenSQLite(sqlitePath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Warn("close sqlite after migration", "error", cerr)
		}
	}()

	if err := dbstore.RunMigrations(conn, migrationsDir); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	dst, err := dbstore.NewSQLiteStore(conn)
	if err != nil {
		return fmt.Errorf("init sqlite store: %w", err)
	}
	if err := api.CopySnapshot(snapshot, dst); err != nil {
		return fmt.Errorf("copy data: %w", err)
	}

	log.Info("snapshot migration completed")
	return nil
}
