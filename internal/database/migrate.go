package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type migration struct {
	version int
	name    string
	up      string
	down    string
}

func Migrate(database *sql.DB) error {
	return MigrateContext(context.Background(), database)
}

// MigrateContext applies every pending up migration in version order, each in
// its own transaction together with its schema_migrations row.
func MigrateContext(ctx context.Context, database *sql.DB) error {
	migrations, err := loadMigrations(migrationsFS)
	if err != nil {
		return err
	}
	current, err := Version(ctx, database)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		err := inTransaction(ctx, database, func(transaction *sql.Tx) error {
			if _, err := transaction.ExecContext(ctx, m.up); err != nil {
				return fmt.Errorf("executing migration %s: %w", m.name, err)
			}
			if _, err := transaction.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", m.version); err != nil {
				return fmt.Errorf("recording migration %d: %w", m.version, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
		slog.Info("applied migration", "version", m.version, "name", m.name)
	}
	return nil
}

// Rollback reverts the most recently applied migration. It is a no-op on an
// empty schema.
func Rollback(ctx context.Context, database *sql.DB) error {
	current, err := Version(ctx, database)
	if err != nil {
		return err
	}
	if current == 0 {
		return nil
	}

	migrations, err := loadMigrations(migrationsFS)
	if err != nil {
		return err
	}
	index := sort.Search(len(migrations), func(i int) bool { return migrations[i].version >= current })
	if index == len(migrations) || migrations[index].version != current {
		return fmt.Errorf("no migration file for applied version %d", current)
	}
	m := migrations[index]
	if m.down == "" {
		return fmt.Errorf("migration %s has no down script", m.name)
	}

	err = inTransaction(ctx, database, func(transaction *sql.Tx) error {
		if _, err := transaction.ExecContext(ctx, m.down); err != nil {
			return fmt.Errorf("reverting migration %s: %w", m.name, err)
		}
		if _, err := transaction.ExecContext(ctx, "DELETE FROM schema_migrations WHERE version = ?", m.version); err != nil {
			return fmt.Errorf("unrecording migration %d: %w", m.version, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	slog.Info("reverted migration", "version", m.version, "name", m.name)
	return nil
}

// Version reports the highest applied migration, or 0. The bookkeeping table
// is created on first use.
func Version(ctx context.Context, database *sql.DB) (int, error) {
	if _, err := database.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return 0, fmt.Errorf("creating migrations table: %w", err)
	}

	var version sql.NullInt64
	if err := database.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_migrations").Scan(&version); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return int(version.Int64), nil
}

func loadMigrations(fsys fs.FS) ([]migration, error) {
	entries, err := fs.ReadDir(fsys, "migrations")
	if err != nil {
		return nil, fmt.Errorf("reading migrations directory: %w", err)
	}

	byVersion := make(map[int]*migration)
	for _, entry := range entries {
		filename := entry.Name()
		var direction string
		switch {
		case strings.HasSuffix(filename, ".up.sql"):
			direction = "up"
		case strings.HasSuffix(filename, ".down.sql"):
			direction = "down"
		default:
			continue
		}

		content, err := fs.ReadFile(fsys, "migrations/"+filename)
		if err != nil {
			return nil, fmt.Errorf("reading migration %s: %w", filename, err)
		}

		version := extractVersion(filename)
		m, ok := byVersion[version]
		if !ok {
			m = &migration{version: version, name: strings.TrimSuffix(filename, "."+direction+".sql")}
			byVersion[version] = m
		}
		if direction == "up" {
			m.up = string(content)
		} else {
			m.down = string(content)
		}
	}

	migrations := make([]migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.up == "" {
			return nil, fmt.Errorf("migration %s has no up script", m.name)
		}
		migrations = append(migrations, *m)
	}
	sort.Slice(migrations, func(i, j int) bool { return migrations[i].version < migrations[j].version })
	return migrations, nil
}

func inTransaction(ctx context.Context, database *sql.DB, run func(*sql.Tx) error) error {
	transaction, err := database.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := run(transaction); err != nil {
		transaction.Rollback()
		return err
	}
	if err := transaction.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func extractVersion(filename string) int {
	var version int
	fmt.Sscanf(filename, "%d_", &version)
	return version
}
