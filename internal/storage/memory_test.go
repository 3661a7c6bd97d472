package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorage_LargeCollection(t *testing.T) {
	// given
	s, err := NewMemoryStorage()
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()
	value := largeCollection(10000)
	require.Greater(t, len(value), 1<<20)

	// when
	require.NoError(t, s.Set(ctx, "products", value))

	// then
	got, err := s.Get(ctx, "products")
	require.NoError(t, err)
	assert.Equal(t, value, got)
}

func TestMemoryStorage_CopiesValues(t *testing.T) {
	s, err := NewMemoryStorage()
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	value := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", value))
	value[0] = 'x'

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	got[1] = 'y'
	again, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}

func TestMemoryStorage_ClosedAndCanceled(t *testing.T) {
	s, err := NewMemoryStorage()
	require.NoError(t, err)
	ctx := context.Background()

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, s.Set(canceled, "k", []byte("v")), context.Canceled)
	assert.ErrorIs(t, s.Set(ctx, "", []byte("v")), ErrInvalidKey)

	require.NoError(t, s.Close())
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.Set(ctx, "k", []byte("v")), ErrClosed)
	_, err = s.Keys(ctx, "")
	assert.ErrorIs(t, err, ErrClosed)
}
