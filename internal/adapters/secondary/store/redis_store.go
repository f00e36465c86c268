package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/arthurdotwork/songroom/internal/domain"
	"github.com/arthurdotwork/songroom/internal/infrastructure/redis"
)

// RedisProfileStore shares guest profiles across devices pointing at the
// same redis, e.g. a fleet of kiosk player displays.
type RedisProfileStore struct {
	redisClient *redis.Client
}

func NewRedisProfileStore(redisClient *redis.Client) *RedisProfileStore {
	return &RedisProfileStore{redisClient: redisClient}
}

func profileKey(roomID string) string {
	return fmt.Sprintf("songroom:guest:%s", roomID)
}

func (s *RedisProfileStore) Profile(ctx context.Context, roomID string) (domain.GuestProfile, bool, error) {
	var profile domain.GuestProfile

	if err := s.redisClient.GetJSON(ctx, profileKey(roomID), &profile); err != nil {
		if errors.Is(err, redis.ErrNotFound) {
			return domain.GuestProfile{}, false, nil
		}

		return domain.GuestProfile{}, false, fmt.Errorf("redisClient.GetJSON: %w", err)
	}

	return profile, true, nil
}

func (s *RedisProfileStore) SaveProfile(ctx context.Context, roomID string, profile domain.GuestProfile) error {
	if err := s.redisClient.SetJSON(ctx, profileKey(roomID), profile); err != nil {
		return fmt.Errorf("redisClient.SetJSON: %w", err)
	}

	return nil
}
