package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"

	"github.com/cleared-dev/fincore/internal/model"
)

// GCS stores each tenant document as an object in a Cloud Storage bucket.
// Writes are conditioned on the object generation that was read, so a
// concurrent writer fails with ErrConflict.
type GCS struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCS creates a client using Application Default Credentials.
func NewGCS(ctx context.Context, bucket, prefix string) (*GCS, error) {
	if bucket == "" {
		return nil, fmt.Errorf("gcs bucket is not set")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCS{client: client, bucket: bucket, prefix: prefix}, nil
}

// Close closes the storage client.
func (g *GCS) Close() error {
	return g.client.Close()
}

// ObjectName returns the object path of a tenant document.
func ObjectName(prefix, tenantID string) string {
	return path.Join(prefix, "tenants", tenantID, "finance.json")
}

func (g *GCS) object(tenantID string) *storage.ObjectHandle {
	return g.client.Bucket(g.bucket).Object(ObjectName(g.prefix, tenantID))
}

// read returns the stored document and its generation; generation 0 means absent.
func (g *GCS) read(ctx context.Context, tenantID string) (*model.FinanceData, int64, error) {
	r, err := g.object(tenantID).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return model.NewFinanceData(), 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("open GCS object reader: %w", err)
	}
	defer r.Close()

	b, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, fmt.Errorf("read GCS object: %w", err)
	}
	data, err := decode(b)
	if err != nil {
		return nil, 0, err
	}
	return data, r.Attrs.Generation, nil
}

// Load implements Repository.
func (g *GCS) Load(ctx context.Context, tenantID string) (*model.FinanceData, error) {
	if err := ValidateTenantID(tenantID); err != nil {
		return nil, err
	}
	data, _, err := g.read(ctx, tenantID)
	return data, err
}

// Save implements Repository.
func (g *GCS) Save(ctx context.Context, tenantID string, data *model.FinanceData) error {
	if err := ValidateTenantID(tenantID); err != nil {
		return err
	}
	cur, gen, err := g.read(ctx, tenantID)
	if err != nil {
		return err
	}
	if err := checkVersion(cur.Version, data.Version); err != nil {
		return err
	}

	next := *data
	next.Version = data.Version + 1
	b, err := encode(&next)
	if err != nil {
		return err
	}

	cond := storage.Conditions{GenerationMatch: gen}
	if gen == 0 {
		cond = storage.Conditions{DoesNotExist: true}
	}
	w := g.object(tenantID).If(cond).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(b); err != nil {
		_ = w.Close()
		return fmt.Errorf("write GCS object: %w", err)
	}
	if err := w.Close(); err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusPreconditionFailed {
			return fmt.Errorf("%w (tenant %s)", ErrConflict, tenantID)
		}
		return fmt.Errorf("finalize upload: %w", err)
	}
	data.Version = next.Version
	return nil
}
