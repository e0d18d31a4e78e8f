package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Get(ctx, "units")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "units", "metric"))
	require.NoError(t, s.Set(ctx, "units", "imperial"))

	v, err := s.Get(ctx, "units")
	require.NoError(t, err)
	assert.Equal(t, "imperial", v)
	assert.NoError(t, s.Close())
}
