package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"labcart/models"
	"labcart/utils"

	"github.com/go-redis/redis/v8"
)

// RedisStateStore persists the restorable wizard fields in Redis under the
// identity key. Entries carry the wizard TTL both as a Redis expiry and as a
// LastUpdated guard, so a stale state is never restored even if the key
// outlives its intended window.
type RedisStateStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func wizardKey(userKey string) string {
	return utils.WizardKeyPrefix + userKey
}

func (s *RedisStateStore) Load(ctx context.Context, userKey string) (*models.WizardState, error) {
	data, err := s.Client.Get(ctx, wizardKey(userKey)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, NewStorageError(fmt.Sprintf("wizard state fetch failed: %v", err))
	}

	var state models.WizardState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, NewStorageError(fmt.Sprintf("wizard state parse failed: %v", err))
	}
	if time.Since(state.LastUpdated) > s.TTL {
		_ = s.Client.Del(ctx, wizardKey(userKey)).Err()
		return nil, nil
	}
	return &state, nil
}

func (s *RedisStateStore) Save(ctx context.Context, userKey string, state *models.WizardState) error {
	if state.LastUpdated.IsZero() {
		state.LastUpdated = time.Now()
	}
	data, err := json.Marshal(state)
	if err != nil {
		return NewStorageError(fmt.Sprintf("wizard state marshal failed: %v", err))
	}
	if err := s.Client.Set(ctx, wizardKey(userKey), data, s.TTL).Err(); err != nil {
		return NewStorageError(fmt.Sprintf("wizard state store failed: %v", err))
	}
	return nil
}

func (s *RedisStateStore) Delete(ctx context.Context, userKey string) error {
	if err := s.Client.Del(ctx, wizardKey(userKey)).Err(); err != nil {
		return NewStorageError(fmt.Sprintf("wizard state delete failed: %v", err))
	}
	return nil
}
