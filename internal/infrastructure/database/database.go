package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"easysign/internal/config"
)

type Database struct {
	DB     *sql.DB
	logger *zap.Logger
}

func NewDatabase(cfg *config.Config, logger *zap.Logger) (*Database, error) {
	// Build PostgreSQL connection string
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.DBName,
		cfg.Database.SSLMode,
	)

	db, err := sql.Open(cfg.Database.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Database connected successfully",
		zap.String("driver", cfg.Database.Driver),
		zap.String("host", cfg.Database.Host),
		zap.Int("port", cfg.Database.Port),
		zap.String("dbname", cfg.Database.DBName),
	)

	database := &Database{
		DB:     db,
		logger: logger,
	}

	// Run migrations
	if err := database.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return database, nil
}

var migrations = []struct {
	name string
	sql  string
}{
	{"users", `
	CREATE TABLE IF NOT EXISTS users (
		id VARCHAR(64) PRIMARY KEY,
		name VARCHAR(255) DEFAULT '',
		email VARCHAR(255) NOT NULL UNIQUE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`},
	{"documents", `
	CREATE TABLE IF NOT EXISTS documents (
		id VARCHAR(64) PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		file_url TEXT NOT NULL,
		signed_file_url TEXT,
		filename VARCHAR(255) DEFAULT '',
		is_template BOOLEAN NOT NULL DEFAULT FALSE,
		owner_id VARCHAR(64) NOT NULL,
		owner_email VARCHAR(255) NOT NULL,
		status VARCHAR(32) NOT NULL,
		version BIGINT NOT NULL DEFAULT 1,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`},
	{"signing_parties", `
	CREATE TABLE IF NOT EXISTS signing_parties (
		document_id VARCHAR(64) NOT NULL REFERENCES documents(id),
		position INT NOT NULL,
		user_id VARCHAR(64),
		email VARCHAR(255) DEFAULT '',
		signed BOOLEAN NOT NULL DEFAULT FALSE,
		signed_at TIMESTAMP,
		signature_image TEXT DEFAULT '',
		PRIMARY KEY (document_id, position)
	);
	`},
	{"signature_assets", `
	CREATE TABLE IF NOT EXISTS signature_assets (
		id VARCHAR(64) PRIMARY KEY,
		user_id VARCHAR(64) NOT NULL,
		sign_url TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`},
	{"document_events", `
	CREATE TABLE IF NOT EXISTS document_events (
		id BIGSERIAL PRIMARY KEY,
		document_id VARCHAR(64) NOT NULL,
		kind VARCHAR(32) NOT NULL,
		actor VARCHAR(255) DEFAULT '',
		detail TEXT DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`},
	// Indexes are created separately (PostgreSQL doesn't support IF NOT EXISTS in the same statement)
	{"idx_documents_owner", `CREATE INDEX IF NOT EXISTS idx_documents_owner ON documents(owner_id);`},
	{"idx_signing_parties_user", `CREATE INDEX IF NOT EXISTS idx_signing_parties_user ON signing_parties(user_id);`},
	{"idx_signature_assets_user", `CREATE INDEX IF NOT EXISTS idx_signature_assets_user ON signature_assets(user_id, created_at DESC);`},
	{"idx_document_events_document", `CREATE INDEX IF NOT EXISTS idx_document_events_document ON document_events(document_id, id);`},
}

func (d *Database) migrate() error {
	for _, m := range migrations {
		if _, err := d.DB.Exec(m.sql); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", m.name, err)
		}
	}

	d.logger.Info("Database migrations completed successfully",
		zap.Int("migrations", len(migrations)),
	)
	return nil
}

// WithTx runs fn in a transaction, committing when fn returns nil
func (d *Database) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := d.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			d.logger.Warn("Failed to rollback transaction", zap.Error(rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (d *Database) Close() error {
	return d.DB.Close()
}
