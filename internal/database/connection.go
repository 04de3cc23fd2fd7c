package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"attentionos/pkg/logger"
)

// DB represents a database connection with additional functionality
type DB struct {
	*sql.DB
	logger   *logger.ColoredLogger
	migrator *Migrator
}

// Config holds database configuration
type Config struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	MigrateOnStart  bool
}

// DefaultConfig returns a default database configuration
func DefaultConfig(dataDir string) *Config {
	return &Config{
		Path:            filepath.Join(dataDir, "attentionos.db"),
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		MigrateOnStart:  true,
	}
}

// NewConnection creates a new database connection
func NewConnection(config *Config) (*DB, error) {
	log := logger.DBLogger

	// Ensure directory exists
	dir := filepath.Dir(config.Path)
	if err := ensureDir(dir); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite3", config.Path+"?_foreign_keys=on&_journal_mode=WAL&_timeout=10000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB.SetMaxOpenConns(config.MaxOpenConns)
	sqlDB.SetMaxIdleConns(config.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(config.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{
		DB:       sqlDB,
		logger:   log,
		migrator: NewMigrator(sqlDB),
	}

	if config.MigrateOnStart {
		if err := db.migrator.Migrate(); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	log.Info("Connected to SQLite database: %s", config.Path)
	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	if db.DB != nil {
		db.logger.Info("Closing database connection")
		return db.DB.Close()
	}
	return nil
}

// GetMigrator returns the database migrator
func (db *DB) GetMigrator() *Migrator {
	return db.migrator
}

// Health checks database health
func (db *DB) Health(ctx context.Context) error {
	return db.PingContext(ctx)
}

// Backup writes a consistent copy of the database to backupPath
func (db *DB) Backup(ctx context.Context, backupPath string) error {
	dir := filepath.Dir(backupPath)
	if err := ensureDir(dir); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}

	// VACUUM INTO needs SQLite 3.27+ and cannot run inside a transaction
	if _, err := db.ExecContext(ctx, "VACUUM INTO ?", backupPath); err != nil {
		return fmt.Errorf("failed to backup database: %w", err)
	}

	db.logger.Info("Database backed up to: %s", backupPath)
	return nil
}

// ensureDir creates a directory if it doesn't exist
func ensureDir(dir string) error {
	if dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0755)
}
