package cmd

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/arthurdotwork/songroom/internal/adapters/secondary/rooms"
	"github.com/arthurdotwork/songroom/internal/adapters/secondary/store"
	"github.com/arthurdotwork/songroom/internal/adapters/secondary/ws"
	"github.com/arthurdotwork/songroom/internal/domain"
	"github.com/arthurdotwork/songroom/internal/infrastructure/redis"
)

func env(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return fallback
}

func newClient(ctx context.Context) *domain.Client {
	dialer := ws.NewDialer(env("SONGROOM_WS_HOST", "localhost:8080"))
	registry := domain.NewRegistry(ctx, dialer)

	return domain.NewClient(registry, newProfileStore(ctx))
}

func newProfileStore(ctx context.Context) domain.ProfileStore {
	if addr := os.Getenv("SONGROOM_REDIS_ADDR"); addr != "" {
		return store.NewRedisProfileStore(redis.NewClient(addr))
	}

	path := env("SONGROOM_DB", defaultDBPath())
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		slog.WarnContext(ctx, "falling back to in-memory profile store", "path", path, "error", err)
		return store.NewMemoryProfileStore()
	}

	sqliteStore, err := store.NewSQLiteProfileStore(path)
	if err != nil {
		slog.WarnContext(ctx, "falling back to in-memory profile store", "path", path, "error", err)
		return store.NewMemoryProfileStore()
	}

	return sqliteStore
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "songroom.db"
	}

	return filepath.Join(home, ".songroom", "profiles.db")
}

func newDirectory() *rooms.Directory {
	return rooms.NewDirectory(env("SONGROOM_API_BASE", "http://localhost:8080"), os.Getenv("SONGROOM_TOKEN"))
}
