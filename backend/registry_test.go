package backend_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okailora/okailora/backend"
	pkgerrors "github.com/okailora/okailora/pkg/errors"
	"github.com/okailora/okailora/pkg/sdk"
	"github.com/okailora/okailora/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seed = `
- id: okailora/MedicalQA-T5
  type: generation
  description: Medical question answering
- id: okailora/ClinicalBERT-Enhanced
  type: classification
  description: Clinical notes classifier
`

func TestLoadDeployments(t *testing.T) {
	t.Parallel()
	cases := []struct {
		desc  string
		input string
		count int
		err   error
	}{
		{desc: "seed file", input: seed, count: 2},
		{desc: "empty file", input: "", count: 0},
		{desc: "unknown type", input: "- id: x\n  type: regression\n", err: sdk.ErrInvalidModelType},
		{desc: "missing id", input: "- type: bbox\n", err: pkgerrors.ErrEmptyKey},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()
			ds, err := backend.LoadDeployments(strings.NewReader(tc.input))
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)

				return
			}
			require.NoError(t, err)
			assert.Len(t, ds, tc.count)
		})
	}
}

func TestRegistryPersists(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "deployments.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o600))

	reg, err := backend.NewRegistry(ctx, storage.NewInMemoryStorage(), path)
	require.NoError(t, err)

	d, err := reg.Get(ctx, "okailora/MedicalQA-T5")
	require.NoError(t, err)
	assert.Equal(t, "generation", d.Type)

	_, err = reg.Get(ctx, "missing")
	assert.ErrorIs(t, err, pkgerrors.ErrNotFound)

	require.NoError(t, reg.Put(ctx, backend.Deployment{ID: "okailora/MedicalQA-T5", Type: "classification", Description: "retrained"}))
	require.NoError(t, reg.Put(ctx, backend.Deployment{ID: "session-1", Type: "bbox"}))

	reloaded, err := backend.NewRegistry(ctx, storage.NewInMemoryStorage(), path)
	require.NoError(t, err)
	all, err := reloaded.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, backend.Deployment{ID: "okailora/MedicalQA-T5", Type: "classification", Description: "retrained"}, all[0])
	assert.Equal(t, "session-1", all[2].ID)
}

func TestRegistryWithoutFile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	reg, err := backend.NewRegistry(ctx, storage.NewInMemoryStorage(), filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	all, err := reg.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRegistryOnSQLite(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cfg := storage.Config{Type: storage.SQLite, SQLitePath: filepath.Join(t.TempDir(), "okailora.db")}

	db, err := storage.Open(cfg)
	require.NoError(t, err)
	reg, err := backend.NewRegistry(ctx, db.Store("deployments", storage.DecodeJSON[backend.Deployment]()), "")
	require.NoError(t, err)
	require.NoError(t, reg.Put(ctx, backend.Deployment{ID: "okailora/RadiologyNet", Type: "segmentation"}))
	require.NoError(t, db.Close())

	db, err = storage.Open(cfg)
	require.NoError(t, err)
	defer db.Close()
	reg, err = backend.NewRegistry(ctx, db.Store("deployments", storage.DecodeJSON[backend.Deployment]()), "")
	require.NoError(t, err)

	d, err := reg.Get(ctx, "okailora/RadiologyNet")
	require.NoError(t, err)
	assert.Equal(t, "segmentation", d.Type)
}
