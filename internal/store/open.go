package store

import (
	"context"
	"fmt"
	"time"
)

// Drivers understood by Open.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverGCS      = "gcs"
)

// Options selects and configures a backend.
type Options struct {
	Driver   string
	Dir      string // file
	Path     string // sqlite
	DSN      string // postgres
	Bucket   string // gcs
	Prefix   string // gcs
	CacheTTL time.Duration
}

// Open builds the configured Store. The returned close function releases
// backend resources.
func Open(ctx context.Context, opts Options) (Store, func() error, error) {
	noop := func() error { return nil }

	if opts.Driver == DriverPostgres {
		pg, err := NewPostgres(ctx, opts.DSN)
		if err != nil {
			return nil, noop, err
		}
		return pg, pg.Close, nil
	}

	var (
		repo    Repository
		closeFn = noop
	)
	switch opts.Driver {
	case "", DriverMemory:
		repo = NewMemory()
	case DriverFile:
		f, err := NewFile(opts.Dir)
		if err != nil {
			return nil, noop, err
		}
		repo = f
	case DriverSQLite:
		s, err := NewSQLite(opts.Path)
		if err != nil {
			return nil, noop, err
		}
		repo, closeFn = s, s.Close
	case DriverGCS:
		g, err := NewGCS(ctx, opts.Bucket, opts.Prefix)
		if err != nil {
			return nil, noop, err
		}
		repo, closeFn = g, g.Close
	default:
		return nil, noop, fmt.Errorf("unknown store driver %q", opts.Driver)
	}

	if opts.CacheTTL > 0 {
		repo = NewCached(repo, opts.CacheTTL)
	}
	return NewLocked(repo), closeFn, nil
}
