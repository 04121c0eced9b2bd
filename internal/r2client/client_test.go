package r2client

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RequiresConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  Config
	}{
		{"empty", Config{}},
		{"missing bucket", Config{Endpoint: "https://acct.r2.cloudflarestorage.com", AccessKeyID: "id", SecretKey: "secret"}},
		{"missing secret", Config{Endpoint: "https://acct.r2.cloudflarestorage.com", AccessKeyID: "id", Bucket: "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := New(context.Background(), tt.cfg)
			assert.Error(t, err)
		})
	}
}

func TestCompressDecompress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{"text", []byte(strings.Repeat("chat_messages search_logs ", 1000))},
		{"binary", func() []byte {
			b := make([]byte, 1<<20)
			for i := range b {
				b[i] = byte(i % 251)
			}
			return b
		}()},
		{"empty", []byte{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var compressed bytes.Buffer
			require.NoError(t, Compress(&compressed, bytes.NewReader(tt.data)))

			var out bytes.Buffer
			require.NoError(t, Decompress(&out, &compressed))
			assert.True(t, bytes.Equal(tt.data, out.Bytes()))
		})
	}
}

func TestDecompress_InvalidData(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	assert.Error(t, Decompress(&out, strings.NewReader("this is not zstd compressed data")))
}

func TestMemoryStore_ConditionalWrites(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := NewMemoryStore()

	etag, ok, err := m.CreateIfAbsent(ctx, "k", strings.NewReader("v1"), "")
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = m.CreateIfAbsent(ctx, "k", strings.NewReader("v2"), "")
	require.NoError(t, err)
	assert.False(t, ok, "key already exists")

	_, ok, err = m.ReplaceIfMatch(ctx, "k", strings.NewReader("v2"), "stale", "")
	require.NoError(t, err)
	assert.False(t, ok, "etag mismatch")

	_, ok, err = m.ReplaceIfMatch(ctx, "k", strings.NewReader("v2"), etag, "")
	require.NoError(t, err)
	assert.True(t, ok)

	rc, _, err := m.Get(ctx, "k")
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	assert.Equal(t, "v2", string(data))

	require.NoError(t, m.Delete(ctx, "k"))
	_, err = m.Stat(ctx, "k")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLock_Exclusive(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemoryStore()

	a := NewLock(store, "locks/backup.lock", time.Minute)
	b := NewLock(store, "locks/backup.lock", time.Minute)
	assert.NotEqual(t, a.Owner(), b.Owner())

	ok, err := a.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = b.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "lease is held")

	require.NoError(t, b.Release(ctx), "releasing an unheld lock is a no-op")
	assert.Len(t, store.Keys(), 1)

	require.NoError(t, a.Release(ctx))
	assert.Empty(t, store.Keys())

	ok, err = b.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLock_TakesOverExpiredLease(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemoryStore()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	stale := NewLock(store, "lock", time.Minute)
	stale.now = func() time.Time { return now }
	ok, err := stale.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	fresh := NewLock(store, "lock", time.Minute)
	fresh.now = func() time.Time { return now.Add(2 * time.Minute) }
	ok, err = fresh.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	// The previous holder must not delete the new owner's lease.
	require.NoError(t, stale.Release(ctx))
	assert.Len(t, store.Keys(), 1)

	require.NoError(t, fresh.Release(ctx))
	assert.Empty(t, store.Keys())
}

func TestLock_CorruptLeaseCountsAsExpired(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Put(ctx, "lock", strings.NewReader("not json"), "")
	require.NoError(t, err)

	ok, err := NewLock(store, "lock", time.Minute).Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}
