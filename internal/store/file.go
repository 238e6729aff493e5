package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cleared-dev/fincore/internal/model"
)

// File stores one JSON document per tenant under a directory.
type File struct {
	dir string
}

// NewFile creates a file repository rooted at dir, creating it if needed.
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store dir: %w", err)
	}
	return &File{dir: dir}, nil
}

func (f *File) path(tenantID string) string {
	return filepath.Join(f.dir, tenantID+".json")
}

// Load implements Repository.
func (f *File) Load(_ context.Context, tenantID string) (*model.FinanceData, error) {
	if err := ValidateTenantID(tenantID); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(f.path(tenantID))
	if errors.Is(err, fs.ErrNotExist) {
		return model.NewFinanceData(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading tenant %s: %w", tenantID, err)
	}
	return decode(b)
}

// Save implements Repository. The document is written to a temp file and
// renamed into place.
func (f *File) Save(ctx context.Context, tenantID string, data *model.FinanceData) error {
	cur, err := f.Load(ctx, tenantID)
	if err != nil {
		return err
	}
	if err := checkVersion(cur.Version, data.Version); err != nil {
		return err
	}

	data.Version++
	b, err := encode(data)
	if err != nil {
		data.Version--
		return err
	}

	tmp, err := os.CreateTemp(f.dir, tenantID+".*.tmp")
	if err != nil {
		data.Version--
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		data.Version--
		return fmt.Errorf("writing tenant %s: %w", tenantID, err)
	}
	if err := tmp.Close(); err != nil {
		data.Version--
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path(tenantID)); err != nil {
		data.Version--
		return fmt.Errorf("replacing tenant %s: %w", tenantID, err)
	}
	return nil
}
