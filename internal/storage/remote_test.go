package storage

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseBackend runs the Backend contract against any medium.
func exerciseBackend(t *testing.T, b Backend) {
	t.Helper()
	ctx := context.Background()

	_, err := b.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, b.Set(ctx, "orders_u2", []byte(`[{"id":"o2"}]`)))
	require.NoError(t, b.Set(ctx, "orders_u1", []byte(`[{"id":"o1"}]`)))
	require.NoError(t, b.Set(ctx, "products", []byte(`[]`)))

	got, err := b.Get(ctx, "orders_u1")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"o1"}]`, string(got))

	keys, err := b.Keys(ctx, "orders_")
	require.NoError(t, err)
	assert.Equal(t, []string{"orders_u1", "orders_u2"}, keys)

	require.NoError(t, b.Delete(ctx, "orders_u1"))
	require.NoError(t, b.Delete(ctx, "orders_u1"))
	_, err = b.Get(ctx, "orders_u1")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	exerciseLargeCollection(t, b)
	exerciseGlobPrefixes(t, b)
}

// largeCollection renders n catalog-like records as one JSON array.
func largeCollection(n int) []byte {
	var b strings.Builder
	b.WriteString("[")
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, `{"id":"p-%d","name":"Product %d","description":%q,"price":"%d.99","tags":["a","b"]}`,
			i, i, strings.Repeat("lorem ipsum ", 20), i)
	}
	b.WriteString("]")
	return []byte(b.String())
}

// exerciseLargeCollection writes a whole collection of several hundred KB as one value.
func exerciseLargeCollection(t *testing.T, b Backend) {
	t.Helper()
	ctx := context.Background()

	for _, n := range []int{5, 50, 1000} {
		value := largeCollection(n)
		require.NoError(t, b.Set(ctx, "products", value), "%d records, %d bytes", n, len(value))
		got, err := b.Get(ctx, "products")
		require.NoError(t, err)
		assert.JSONEq(t, string(value), string(got))
	}
	require.NoError(t, b.Delete(ctx, "products"))
}

// exerciseGlobPrefixes checks that prefixes are matched literally.
func exerciseGlobPrefixes(t *testing.T, b Backend) {
	t.Helper()
	ctx := context.Background()

	for _, k := range []string{"cart_u1", "cart_u[1]", "cart_*x", "cart_?z", `cart_\w`} {
		require.NoError(t, b.Set(ctx, k, []byte(`[]`)))
	}

	tests := []struct {
		prefix string
		want   []string
	}{
		{"cart_u[", []string{"cart_u[1]"}},
		{"cart_*", []string{"cart_*x"}},
		{"cart_?", []string{"cart_?z"}},
		{`cart_\`, []string{`cart_\w`}},
	}
	for _, tt := range tests {
		keys, err := b.Keys(ctx, tt.prefix)
		require.NoError(t, err)
		assert.Equal(t, tt.want, keys, "prefix %q", tt.prefix)
	}

	keys, err := b.Keys(ctx, "cart_")
	require.NoError(t, err)
	assert.Len(t, keys, 5)
}

func TestRedisStorage(t *testing.T) {
	addr := os.Getenv("STOREFRONT_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("STOREFRONT_TEST_REDIS_ADDR not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	r, err := NewRedisStorage(ctx, RedisOptions{Addr: addr, Namespace: "test-" + uuid.NewString()})
	require.NoError(t, err)
	defer r.Close()

	exerciseBackend(t, r)
}

func TestPostgresStorage(t *testing.T) {
	url := os.Getenv("STOREFRONT_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("STOREFRONT_TEST_POSTGRES_URL not set")
	}
	ctx := context.Background()

	table := "test_" + uuid.NewString()[:8]
	p, err := NewPostgresStorage(ctx, url, table, 5*time.Second)
	require.NoError(t, err)
	defer p.Close()
	require.NoError(t, p.EnsureSchema(ctx))
	t.Cleanup(func() {
		_, _ = p.pool.Exec(context.Background(), "DROP TABLE IF EXISTS "+table)
	})

	exerciseBackend(t, p)
}

func TestPostgresStorage_RejectsTableName(t *testing.T) {
	_, err := NewPostgresStorage(context.Background(), "postgres://localhost/x", "bad;drop", time.Second)
	assert.Error(t, err)
}

func TestBadgerStorage_Contract(t *testing.T) {
	exerciseBackend(t, createTestStorage(t))
}

func TestMemoryStorage_Contract(t *testing.T) {
	s, err := NewMemoryStorage()
	require.NoError(t, err)
	defer s.Close()

	exerciseBackend(t, s)
}
