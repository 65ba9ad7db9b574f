package db

import (
	"crypto/sha256"
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	embeddedmigrations "github.com/solatis/renamer/migrations"
)

// MigrationStatus represents the state of a single migration.
type MigrationStatus struct {
	ID          string
	Checksum    string
	Applied     bool
	AppliedAt   *time.Time
	ExecutionMs int64
}

// migration is one parsed migration file.
type migration struct {
	ID       string
	Checksum string
	SQL      string
}

// migrationsFor returns the embedded migrations of db's driver, sorted by
// file name.
func migrationsFor(db *sqlx.DB) ([]migration, error) {
	var fsys embed.FS
	var dir string
	switch db.DriverName() {
	case driverSQLite:
		fsys, dir = embeddedmigrations.SqliteMigrations, "sqlite"
	case driverPostgres:
		fsys, dir = embeddedmigrations.PostgresMigrations, "postgres"
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", db.DriverName())
	}
	return parseMigrationFiles(fsys, dir)
}

// MigrateUp applies every pending migration in order. Checksums of applied
// migrations are verified first; a mismatch aborts without changes.
func MigrateUp(db *sqlx.DB, log logrus.FieldLogger) error {
	if err := createMigrationsTable(db); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	migrations, err := migrationsFor(db)
	if err != nil {
		return fmt.Errorf("failed to parse migrations: %w", err)
	}

	applied, err := appliedChecksums(db)
	if err != nil {
		return fmt.Errorf("failed to query applied migrations: %w", err)
	}
	if err := validateChecksums(applied, migrations); err != nil {
		return fmt.Errorf("migration checksum validation failed: %w", err)
	}

	for _, m := range migrations {
		if _, ok := applied[m.ID]; ok {
			continue
		}

		start := time.Now()
		tx, err := db.Beginx()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %s: %w", m.ID, err)
		}
		if err := applyMigration(tx, m); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to apply migration %s: %w", m.ID, err)
		}
		duration := time.Since(start)
		if err := recordMigration(tx, m.ID, m.Checksum, duration); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %s: %w", m.ID, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %s: %w", m.ID, err)
		}

		log.WithFields(logrus.Fields{
			"migration":   m.ID,
			"duration_ms": duration.Milliseconds(),
		}).Info("applied migration")
	}

	return nil
}

// MigrateStatus returns the status of all migrations (applied and pending).
func MigrateStatus(db *sqlx.DB) ([]MigrationStatus, error) {
	if err := createMigrationsTable(db); err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}

	migrations, err := migrationsFor(db)
	if err != nil {
		return nil, fmt.Errorf("failed to parse migrations: %w", err)
	}

	var rows []struct {
		ID          string    `db:"migration_id"`
		Checksum    string    `db:"checksum"`
		AppliedAt   time.Time `db:"applied_at"`
		ExecutionMs int64     `db:"execution_ms"`
	}
	if err := db.Select(&rows, "SELECT migration_id, checksum, applied_at, execution_ms FROM migrations"); err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}

	applied := make(map[string]MigrationStatus, len(rows))
	for _, r := range rows {
		at := r.AppliedAt
		applied[r.ID] = MigrationStatus{
			ID:          r.ID,
			Checksum:    r.Checksum,
			Applied:     true,
			AppliedAt:   &at,
			ExecutionMs: r.ExecutionMs,
		}
	}

	statuses := make([]MigrationStatus, 0, len(migrations))
	for _, m := range migrations {
		if s, ok := applied[m.ID]; ok {
			statuses = append(statuses, s)
			continue
		}
		statuses = append(statuses, MigrationStatus{ID: m.ID, Checksum: m.Checksum})
	}
	return statuses, nil
}

// parseMigrationFiles extracts ordered list of migrations from embed.FS
func parseMigrationFiles(fsys embed.FS, dir string) ([]migration, error) {
	var migrations []migration

	err := fs.WalkDir(fsys, dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".sql") {
			return nil
		}
		content, err := fsys.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		migrations = append(migrations, migration{
			ID:       filepath.Base(path),
			Checksum: fmt.Sprintf("%x", sha256.Sum256(content)),
			SQL:      string(content),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].ID < migrations[j].ID
	})
	return migrations, nil
}

// createMigrationsTable ensures the tracking table exists.
// Schema must match the migrations table in 001_initial_schema.sql.
func createMigrationsTable(db *sqlx.DB) error {
	appliedAt := "TIMESTAMP"
	if db.DriverName() == driverPostgres {
		appliedAt = "TIMESTAMP WITHOUT TIME ZONE"
	}
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			migration_id TEXT PRIMARY KEY,
			checksum TEXT NOT NULL,
			applied_at ` + appliedAt + ` NOT NULL,
			execution_ms INTEGER NOT NULL
		)
	`)
	return err
}

// appliedChecksums returns migration_id -> checksum of applied migrations.
func appliedChecksums(db *sqlx.DB) (map[string]string, error) {
	var rows []struct {
		ID       string `db:"migration_id"`
		Checksum string `db:"checksum"`
	}
	if err := db.Select(&rows, "SELECT migration_id, checksum FROM migrations"); err != nil {
		return nil, err
	}
	applied := make(map[string]string, len(rows))
	for _, r := range rows {
		applied[r.ID] = r.Checksum
	}
	return applied, nil
}

// validateChecksums verifies all applied migrations match embedded checksums
func validateChecksums(applied map[string]string, migrations []migration) error {
	embedded := make(map[string]string, len(migrations))
	for _, m := range migrations {
		embedded[m.ID] = m.Checksum
	}
	for id, got := range applied {
		want, ok := embedded[id]
		if !ok {
			return fmt.Errorf("migration %s exists in database but not in embedded files", id)
		}
		if got != want {
			return fmt.Errorf("checksum mismatch for migration %s: expected %s, got %s", id, want, got)
		}
	}
	return nil
}

// applyMigration executes one migration statement by statement.
// lib/pq doesn't support multiple statements in a single Exec.
func applyMigration(tx *sqlx.Tx, m migration) error {
	for _, stmt := range strings.Split(m.SQL, ";") {
		stmt = stripComments(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("statement failed: %w", err)
		}
	}
	return nil
}

// stripComments drops "--" comment lines and surrounding whitespace.
func stripComments(stmt string) string {
	lines := strings.Split(stmt, "\n")
	kept := lines[:0]
	for _, l := range lines {
		if strings.HasPrefix(strings.TrimSpace(l), "--") {
			continue
		}
		kept = append(kept, l)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// recordMigration stores migration metadata within the migration's transaction.
func recordMigration(tx *sqlx.Tx, id, checksum string, duration time.Duration) error {
	_, err := tx.Exec(
		tx.Rebind("INSERT INTO migrations (migration_id, checksum, applied_at, execution_ms) VALUES (?, ?, ?, ?)"),
		id, checksum, time.Now().UTC(), duration.Milliseconds(),
	)
	return err
}
