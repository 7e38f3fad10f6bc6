package loginsession_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Acceleronix/cmp-auth-mcp-server/kv"
	"github.com/Acceleronix/cmp-auth-mcp-server/server/loginsession"
)

func TestKVRepo(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	repo := loginsession.NewKVRepo(kv.NewMemoryStore(kv.WithNowTime(clock)), time.Hour, loginsession.WithNowTime(clock))
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		s, err := repo.Create(ctx, "a@b.com")
		require.NoError(t, err)
		require.NotEmpty(t, s.ID)

		got, err := repo.Get(ctx, s.ID)
		require.NoError(t, err)
		require.Equal(t, "a@b.com", got.Email)
	})

	t.Run("delete", func(t *testing.T) {
		s, err := repo.Create(ctx, "a@b.com")
		require.NoError(t, err)
		require.NoError(t, repo.Delete(ctx, s.ID))
		_, err = repo.Get(ctx, s.ID)
		require.ErrorIs(t, err, loginsession.ErrSessionNotFound)
	})

	t.Run("expiry", func(t *testing.T) {
		s, err := repo.Create(ctx, "a@b.com")
		require.NoError(t, err)
		now = now.Add(2 * time.Hour)
		_, err = repo.Get(ctx, s.ID)
		require.ErrorIs(t, err, loginsession.ErrSessionNotFound)
	})

	t.Run("email required", func(t *testing.T) {
		_, err := repo.Create(ctx, "")
		require.Error(t, err)
	})
}
