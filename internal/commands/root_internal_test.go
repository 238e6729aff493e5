package commands

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/fincore/internal/config"
	"github.com/cleared-dev/fincore/internal/store"
)

func TestRun_ClosesStoreOnError(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Store = config.StoreConfig{Driver: store.DriverSQLite, Dir: dir}
	path := filepath.Join(dir, "fincore.yaml")
	require.NoError(t, config.Save(path, cfg))

	a := &app{configPath: path}
	closed := false
	boom := errors.New("boom")

	cmd := &cobra.Command{Use: "x"}
	cmd.SetContext(context.Background())
	err := a.run(func(cmd *cobra.Command, args []string) error {
		require.NotNil(t, a.store)
		inner := a.closeStore
		a.closeStore = func() error {
			closed = true
			return inner()
		}
		return boom
	})(cmd, nil)

	require.ErrorIs(t, err, boom)
	assert.True(t, closed, "store closed after a failing command")
	assert.Nil(t, a.store)
}

func TestRun_ReportsCloseError(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Store = config.StoreConfig{Driver: store.DriverMemory}
	path := filepath.Join(dir, "fincore.yaml")
	require.NoError(t, config.Save(path, cfg))

	a := &app{configPath: path}
	closeErr := errors.New("close failed")

	cmd := &cobra.Command{Use: "x"}
	cmd.SetContext(context.Background())
	err := a.run(func(cmd *cobra.Command, args []string) error {
		a.closeStore = func() error { return closeErr }
		return nil
	})(cmd, nil)
	require.ErrorIs(t, err, closeErr)
}
