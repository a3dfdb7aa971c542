package storage_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/okailora/okailora/pkg/errors"
	"github.com/okailora/okailora/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStorageCRUD(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := storage.NewInMemoryStorage()

	require.NoError(t, s.Create(ctx, "a", 1))
	assert.ErrorIs(t, s.Create(ctx, "a", 2), errors.ErrEntityExists)
	assert.ErrorIs(t, s.Create(ctx, "", 2), errors.ErrEmptyKey)

	v, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, errors.ErrNotFound)

	require.NoError(t, s.Update(ctx, "a", 3))
	assert.ErrorIs(t, s.Update(ctx, "missing", 3), errors.ErrNotFound)

	v, err = s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	require.NoError(t, s.Delete(ctx, "a"))
	require.NoError(t, s.Delete(ctx, "a"))
	_, err = s.Get(ctx, "a")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestInMemoryStorageListOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := storage.NewInMemoryStorage()

	for i := range 5 {
		require.NoError(t, s.Create(ctx, fmt.Sprintf("k%d", i), i))
	}
	require.NoError(t, s.Delete(ctx, "k1"))

	cases := []struct {
		name          string
		offset, limit uint64
		expected      []any
	}{
		{name: "all", offset: 0, limit: 10, expected: []any{0, 2, 3, 4}},
		{name: "page", offset: 1, limit: 2, expected: []any{2, 3}},
		{name: "past end", offset: 10, limit: 2, expected: nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, total, err := s.List(ctx, tc.offset, tc.limit)
			require.NoError(t, err)
			assert.Equal(t, uint64(4), total)
			assert.Equal(t, tc.expected, got)
		})
	}
}
