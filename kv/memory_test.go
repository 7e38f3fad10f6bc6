package kv_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Acceleronix/cmp-auth-mcp-server/kv"
	"github.com/stretchr/testify/require"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	c := &clock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := kv.NewMemoryStore(kv.WithNowTime(c.Now))

	t.Run("missing key", func(t *testing.T) {
		_, err := s.Get(ctx, "absent")
		require.ErrorIs(t, err, kv.ErrNotFound)
	})

	t.Run("put get delete", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, "k", []byte("v"), 0))
		v, err := s.Get(ctx, "k")
		require.NoError(t, err)
		require.Equal(t, []byte("v"), v)

		require.NoError(t, s.Delete(ctx, "k"))
		_, err = s.Get(ctx, "k")
		require.ErrorIs(t, err, kv.ErrNotFound)
	})

	t.Run("ttl expiry", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, "ttl", []byte("v"), time.Minute))
		c.now = c.now.Add(59 * time.Second)
		_, err := s.Get(ctx, "ttl")
		require.NoError(t, err)

		c.now = c.now.Add(time.Second)
		_, err = s.Get(ctx, "ttl")
		require.ErrorIs(t, err, kv.ErrNotFound)
	})

	t.Run("take is single use", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, "code", []byte("grant"), time.Minute))
		v, err := s.Take(ctx, "code")
		require.NoError(t, err)
		require.Equal(t, []byte("grant"), v)

		_, err = s.Take(ctx, "code")
		require.ErrorIs(t, err, kv.ErrNotFound)
	})
}

func TestMemoryStoreSweepsExpiredItems(t *testing.T) {
	ctx := context.Background()
	c := &clock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := kv.NewMemoryStore(kv.WithNowTime(c.Now))

	for i := 0; i < 10000; i++ {
		require.NoError(t, s.Put(ctx, fmt.Sprintf("authreq:%d", i), []byte("v"), time.Minute))
	}
	require.NoError(t, s.Put(ctx, "client:1", []byte("v"), 0))
	require.Equal(t, 10001, s.Len())

	c.now = c.now.Add(24 * time.Hour)
	for i := 0; i < 10; i++ {
		require.NoError(t, s.Put(ctx, fmt.Sprintf("login:%d", i), []byte("v"), time.Hour))
	}
	require.Equal(t, 11, s.Len())

	c.now = c.now.Add(2 * time.Hour)
	require.NoError(t, s.Put(ctx, "late", []byte("v"), 10*time.Second))
	require.Equal(t, 2, s.Len())

	// Within the sweep interval expired items stay until the next sweep
	c.now = c.now.Add(30 * time.Second)
	require.NoError(t, s.Put(ctx, "later", []byte("v"), time.Hour))
	require.Equal(t, 3, s.Len())
	_, err := s.Get(ctx, "late")
	require.ErrorIs(t, err, kv.ErrNotFound)

	c.now = c.now.Add(30 * time.Second)
	require.NoError(t, s.Put(ctx, "latest", []byte("v"), time.Hour))
	require.Equal(t, 3, s.Len())
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	s := kv.NewMemoryStore()

	type record struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	require.NoError(t, kv.PutJSON(ctx, s, "rec", record{Name: "a", Count: 2}, 0))

	var got record
	require.NoError(t, kv.GetJSON(ctx, s, "rec", &got))
	require.Equal(t, record{Name: "a", Count: 2}, got)

	var taken record
	require.NoError(t, kv.TakeJSON(ctx, s, "rec", &taken))
	require.Equal(t, got, taken)
	require.ErrorIs(t, kv.GetJSON(ctx, s, "rec", &got), kv.ErrNotFound)
}
