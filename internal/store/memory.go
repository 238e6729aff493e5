package store

import (
	"context"
	"sync"

	"github.com/cleared-dev/fincore/internal/model"
)

// Memory keeps encoded documents in memory. Values are copied in and out,
// so callers never share state with the store.
type Memory struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemory creates an empty in-memory repository.
func NewMemory() *Memory {
	return &Memory{docs: make(map[string][]byte)}
}

// Load implements Repository.
func (m *Memory) Load(_ context.Context, tenantID string) (*model.FinanceData, error) {
	if err := ValidateTenantID(tenantID); err != nil {
		return nil, err
	}
	m.mu.RLock()
	b, ok := m.docs[tenantID]
	m.mu.RUnlock()
	if !ok {
		return model.NewFinanceData(), nil
	}
	return decode(b)
}

// Save implements Repository.
func (m *Memory) Save(_ context.Context, tenantID string, data *model.FinanceData) error {
	if err := ValidateTenantID(tenantID); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var stored int64
	if b, ok := m.docs[tenantID]; ok {
		cur, err := decode(b)
		if err != nil {
			return err
		}
		stored = cur.Version
	}
	if err := checkVersion(stored, data.Version); err != nil {
		return err
	}

	data.Version++
	b, err := encode(data)
	if err != nil {
		data.Version--
		return err
	}
	m.docs[tenantID] = b
	return nil
}

// Tenants returns the ids of tenants with a saved document.
func (m *Memory) Tenants() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.docs))
	for id := range m.docs {
		ids = append(ids, id)
	}
	return ids
}
