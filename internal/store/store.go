// Package store persists a tenant's FinanceData as one document.
//
// A Repository offers whole-document Load and Save. Saves are checked
// against the version that was loaded, so a lost update surfaces as
// ErrConflict instead of silently replacing newer data. A Store adds Update,
// which serialises read-modify-write cycles per tenant.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/cleared-dev/fincore/internal/model"
)

// ErrConflict is returned when a save races with another writer.
var ErrConflict = errors.New("store: tenant document was modified concurrently")

// Repository loads and saves a tenant dataset as one document.
type Repository interface {
	// Load returns the tenant dataset, or an initialised empty one on first access.
	Load(ctx context.Context, tenantID string) (*model.FinanceData, error)
	// Save replaces the tenant dataset. data.Version must match the stored
	// version; on success it is incremented.
	Save(ctx context.Context, tenantID string, data *model.FinanceData) error
}

// Store is a Repository with serialised read-modify-write.
type Store interface {
	Repository
	// Update loads the dataset, applies fn and saves the result. Nothing is
	// saved when fn returns an error.
	Update(ctx context.Context, tenantID string, fn func(*model.FinanceData) error) error
}

// Locked serialises updates per tenant with an in-process mutex.
type Locked struct {
	Repository

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLocked wraps repo with per-tenant locking.
func NewLocked(repo Repository) *Locked {
	return &Locked{Repository: repo, locks: make(map[string]*sync.Mutex)}
}

func (l *Locked) tenantLock(tenantID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[tenantID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[tenantID] = m
	}
	return m
}

// Update implements Store.
func (l *Locked) Update(ctx context.Context, tenantID string, fn func(*model.FinanceData) error) error {
	m := l.tenantLock(tenantID)
	m.Lock()
	defer m.Unlock()

	data, err := l.Load(ctx, tenantID)
	if err != nil {
		return err
	}
	if err := fn(data); err != nil {
		return err
	}
	return l.Save(ctx, tenantID, data)
}

// Close closes the wrapped repository when it holds resources.
func (l *Locked) Close() error {
	if c, ok := l.Repository.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

// ValidateTenantID rejects identifiers that cannot be used as keys or paths.
func ValidateTenantID(tenantID string) error {
	if strings.TrimSpace(tenantID) == "" {
		return model.Invalid("tenant", "tenant id is required")
	}
	if strings.ContainsAny(tenantID, `/\`) || strings.Contains(tenantID, "..") {
		return model.Invalid("tenant", "tenant id %q contains path characters", tenantID)
	}
	return nil
}

func encode(data *model.FinanceData) ([]byte, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encoding finance data: %w", err)
	}
	return b, nil
}

func decode(b []byte) (*model.FinanceData, error) {
	var data model.FinanceData
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("decoding finance data: %w", err)
	}
	data.Normalize()
	return &data, nil
}

func checkVersion(stored, loaded int64) error {
	if stored != loaded {
		return fmt.Errorf("%w (stored version %d, loaded version %d)", ErrConflict, stored, loaded)
	}
	return nil
}
