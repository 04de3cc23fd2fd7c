package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"attentionos/internal/analytics/models"
	"attentionos/internal/database/repositories"
	"attentionos/pkg/logger"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// MigrationStatus represents the status of a migration
type MigrationStatus struct {
	Version   int       `json:"version"`
	Name      string    `json:"name"`
	Applied   bool      `json:"applied"`
	AppliedAt time.Time `json:"applied_at,omitempty"`
}

// Migrator handles database migrations
type Migrator struct {
	db     *sql.DB
	logger *logger.ColoredLogger
}

// NewMigrator creates a new migrator
func NewMigrator(db *sql.DB) *Migrator {
	return &Migrator{
		db:     db,
		logger: logger.DBLogger,
	}
}

// Migrate runs all pending migrations
func (m *Migrator) Migrate() error {
	current, err := m.GetCurrentVersion()
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}

	migrations, err := loadMigrations()
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	applied := 0
	for _, migration := range migrations {
		if migration.Version <= current {
			continue
		}
		if err := m.apply(migration); err != nil {
			return fmt.Errorf("failed to apply migration %d (%s): %w",
				migration.Version, migration.Name, err)
		}
		m.logger.Info("Applied migration %d: %s", migration.Version, migration.Name)
		applied++
	}

	if applied == 0 {
		m.logger.Debug("Database schema is up to date at version %d", current)
	}
	return nil
}

// GetCurrentVersion returns the latest applied migration version
func (m *Migrator) GetCurrentVersion() (int, error) {
	_, err := m.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to create migrations table: %w", err)
	}

	var version int
	err = m.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	return version, err
}

// GetMigrationStatus returns the status of every embedded migration
func (m *Migrator) GetMigrationStatus() ([]MigrationStatus, error) {
	if _, err := m.GetCurrentVersion(); err != nil {
		return nil, err
	}

	rows, err := m.db.Query("SELECT version, applied_at FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer rows.Close()

	appliedAt := make(map[int]time.Time)
	for rows.Next() {
		var version int
		var at time.Time
		if err := rows.Scan(&version, &at); err != nil {
			return nil, fmt.Errorf("failed to scan migration record: %w", err)
		}
		appliedAt[version] = at
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	migrations, err := loadMigrations()
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}

	status := make([]MigrationStatus, len(migrations))
	for i, migration := range migrations {
		at, ok := appliedAt[migration.Version]
		status[i] = MigrationStatus{
			Version:   migration.Version,
			Name:      migration.Name,
			Applied:   ok,
			AppliedAt: at,
		}
	}
	return status, nil
}

// Seed writes the achievement catalog into the achievements table
func (m *Migrator) Seed(ctx context.Context, definitions []models.AchievementDefinition) error {
	repo := repositories.NewAchievementRepository(m.db)
	if err := repo.SyncCatalog(ctx, definitions); err != nil {
		return fmt.Errorf("failed to seed achievements: %w", err)
	}

	m.logger.Info("Seeded %d achievements", len(definitions))
	return nil
}

func (m *Migrator) apply(migration Migration) error {
	return repositories.WithTx(context.Background(), m.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(migration.SQL); err != nil {
			return fmt.Errorf("failed to execute migration SQL: %w", err)
		}

		_, err := tx.Exec(
			"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
			migration.Version, migration.Name,
		)
		if err != nil {
			return fmt.Errorf("failed to record migration: %w", err)
		}
		return nil
	})
}

// loadMigrations reads the embedded NNN_name.sql files in version order
func loadMigrations() ([]Migration, error) {
	entries, err := fs.Glob(migrationFiles, "migrations/*.sql")
	if err != nil {
		return nil, err
	}

	migrations := make([]Migration, 0, len(entries))
	for _, entry := range entries {
		filename := path.Base(entry)
		parts := strings.SplitN(filename, "_", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid migration filename format: %s", filename)
		}

		version, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, fmt.Errorf("invalid version in filename %s: %w", filename, err)
		}

		content, err := fs.ReadFile(migrationFiles, entry)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", entry, err)
		}

		migrations = append(migrations, Migration{
			Version: version,
			Name:    strings.TrimSuffix(parts[1], ".sql"),
			SQL:     string(content),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}
