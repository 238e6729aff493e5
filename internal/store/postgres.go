package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cleared-dev/fincore/internal/model"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS tenant_finance (
	tenant_id  TEXT PRIMARY KEY,
	version    BIGINT NOT NULL,
	document   JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Postgres stores tenant documents as JSONB rows. Update holds a row lock for
// the whole read-modify-write, so concurrent processes serialise per tenant.
type Postgres struct {
	db *pgxpool.Pool
}

// NewPostgres connects to dsn and migrates the schema.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is not set")
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database URL: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 0
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrating postgres: %w", err)
	}
	return &Postgres{db: pool}, nil
}

// Close releases the pool.
func (p *Postgres) Close() error {
	p.db.Close()
	return nil
}

// Load implements Repository.
func (p *Postgres) Load(ctx context.Context, tenantID string) (*model.FinanceData, error) {
	if err := ValidateTenantID(tenantID); err != nil {
		return nil, err
	}
	return p.load(ctx, p.db, tenantID, "")
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (p *Postgres) load(ctx context.Context, q queryRower, tenantID, suffix string) (*model.FinanceData, error) {
	var (
		version int64
		doc     []byte
	)
	err := q.QueryRow(ctx,
		`SELECT version, document FROM tenant_finance WHERE tenant_id = $1`+suffix, tenantID,
	).Scan(&version, &doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.NewFinanceData(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading tenant %s: %w", tenantID, err)
	}
	data, err := decode(doc)
	if err != nil {
		return nil, err
	}
	data.Version = version
	return data, nil
}

// Save implements Repository with an optimistic version check.
func (p *Postgres) Save(ctx context.Context, tenantID string, data *model.FinanceData) error {
	if err := ValidateTenantID(tenantID); err != nil {
		return err
	}
	next := *data
	next.Version = data.Version + 1
	b, err := encode(&next)
	if err != nil {
		return err
	}

	tag, err := p.db.Exec(ctx, `
		INSERT INTO tenant_finance (tenant_id, version, document, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (tenant_id) DO UPDATE SET
			version = EXCLUDED.version,
			document = EXCLUDED.document,
			updated_at = now()
		WHERE tenant_finance.version = $4`,
		tenantID, next.Version, string(b), data.Version,
	)
	if err != nil {
		return fmt.Errorf("saving tenant %s: %w", tenantID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w (tenant %s, loaded version %d)", ErrConflict, tenantID, data.Version)
	}
	data.Version = next.Version
	return nil
}

// Update implements Store inside a transaction holding the tenant row lock.
func (p *Postgres) Update(ctx context.Context, tenantID string, fn func(*model.FinanceData) error) error {
	if err := ValidateTenantID(tenantID); err != nil {
		return err
	}

	tx, err := p.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	empty, err := encode(model.NewFinanceData())
	if err != nil {
		return err
	}
	// Make sure a row exists so that first writers also serialise on the lock.
	if _, err := tx.Exec(ctx, `
		INSERT INTO tenant_finance (tenant_id, version, document)
		VALUES ($1, 0, $2)
		ON CONFLICT (tenant_id) DO NOTHING`, tenantID, string(empty)); err != nil {
		return fmt.Errorf("initialising tenant %s: %w", tenantID, err)
	}

	data, err := p.load(ctx, tx, tenantID, " FOR UPDATE")
	if err != nil {
		return err
	}
	if err := fn(data); err != nil {
		return err
	}

	data.Version++
	b, err := encode(data)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`UPDATE tenant_finance SET version = $2, document = $3, updated_at = now() WHERE tenant_id = $1`,
		tenantID, data.Version, string(b),
	); err != nil {
		return fmt.Errorf("saving tenant %s: %w", tenantID, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing tenant %s: %w", tenantID, err)
	}
	return nil
}
