package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/cleared-dev/fincore/internal/model"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS tenant_finance (
	tenant_id  TEXT PRIMARY KEY,
	version    INTEGER NOT NULL,
	document   TEXT NOT NULL,
	updated_at TEXT NOT NULL
);`

// SQLite stores tenant documents in a SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (and migrates) a SQLite database. Use ":memory:" for tests.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and writes serialised.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating sqlite: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Load implements Repository.
func (s *SQLite) Load(ctx context.Context, tenantID string) (*model.FinanceData, error) {
	if err := ValidateTenantID(tenantID); err != nil {
		return nil, err
	}
	var (
		version int64
		doc     string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT version, document FROM tenant_finance WHERE tenant_id = ?`, tenantID,
	).Scan(&version, &doc)
	if errors.Is(err, sql.ErrNoRows) {
		return model.NewFinanceData(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading tenant %s: %w", tenantID, err)
	}
	data, err := decode([]byte(doc))
	if err != nil {
		return nil, err
	}
	data.Version = version
	return data, nil
}

// Save implements Repository.
func (s *SQLite) Save(ctx context.Context, tenantID string, data *model.FinanceData) error {
	if err := ValidateTenantID(tenantID); err != nil {
		return err
	}
	next := *data
	next.Version = data.Version + 1
	b, err := encode(&next)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO tenant_finance (tenant_id, version, document, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(tenant_id) DO UPDATE SET
			version = excluded.version,
			document = excluded.document,
			updated_at = excluded.updated_at
		WHERE tenant_finance.version = ?`,
		tenantID, next.Version, string(b), time.Now().UTC().Format(time.RFC3339Nano), data.Version,
	)
	if err != nil {
		return fmt.Errorf("saving tenant %s: %w", tenantID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("saving tenant %s: %w", tenantID, err)
	}
	if n == 0 {
		return fmt.Errorf("%w (tenant %s, loaded version %d)", ErrConflict, tenantID, data.Version)
	}
	data.Version = next.Version
	return nil
}
