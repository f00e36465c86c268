package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/arthurdotwork/songroom/internal/adapters/secondary/store"
	"github.com/arthurdotwork/songroom/internal/domain"
	"github.com/arthurdotwork/songroom/internal/infrastructure/redis"
	"github.com/stretchr/testify/require"
)

func testProfileStore(t *testing.T, profiles domain.ProfileStore) {
	t.Helper()

	ctx := context.Background()

	t.Run("it should report a missing profile as absence", func(t *testing.T) {
		_, ok, err := profiles.Profile(ctx, "room-missing")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("it should round-trip a profile", func(t *testing.T) {
		profile := domain.GuestProfile{Name: "arthur", UserID: "u-1"}
		require.NoError(t, profiles.SaveProfile(ctx, "room-1", profile))

		got, ok, err := profiles.Profile(ctx, "room-1")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, profile, got)
	})

	t.Run("it should overwrite an existing profile", func(t *testing.T) {
		require.NoError(t, profiles.SaveProfile(ctx, "room-2", domain.GuestProfile{Name: "before"}))
		require.NoError(t, profiles.SaveProfile(ctx, "room-2", domain.GuestProfile{Name: "after"}))

		got, ok, err := profiles.Profile(ctx, "room-2")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "after", got.Name)
	})

	t.Run("it should keep rooms isolated", func(t *testing.T) {
		require.NoError(t, profiles.SaveProfile(ctx, "room-3", domain.GuestProfile{Name: "three"}))

		_, ok, err := profiles.Profile(ctx, "room-4")
		require.NoError(t, err)
		require.False(t, ok)
	})
}

func TestMemoryProfileStore(t *testing.T) {
	t.Parallel()

	testProfileStore(t, store.NewMemoryProfileStore())
}

func TestSQLiteProfileStore(t *testing.T) {
	t.Parallel()

	profiles, err := store.NewSQLiteProfileStore(filepath.Join(t.TempDir(), "profiles.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = profiles.Close() })

	testProfileStore(t, profiles)
}

func TestSQLiteProfileStore_Reopen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "profiles.db")

	first, err := store.NewSQLiteProfileStore(path)
	require.NoError(t, err)
	require.NoError(t, first.SaveProfile(ctx, "room-1", domain.GuestProfile{Name: "arthur"}))
	require.NoError(t, first.Close())

	second, err := store.NewSQLiteProfileStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	got, ok, err := second.Profile(ctx, "room-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "arthur", got.Name)
}

func TestRedisProfileStore(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)

	testProfileStore(t, store.NewRedisProfileStore(redis.NewClient(mr.Addr())))
}
