package slotlock

import (
	"context"
	"fmt"
	"strings"
	"time"

	"labcart/models"

	"github.com/go-redis/redis/v8"
)

// acquireScript performs the whole acquire decision in one round trip so two
// racing sessions can never both observe a free slot. Returns 1 on success,
// 0 on a foreign hold, -1 when the slot is already booked.
var acquireScript = redis.NewScript(`
if redis.call("SISMEMBER", KEYS[2], ARGV[3]) == 1 then
  return -1
end
local holder = redis.call("GET", KEYS[1])
if holder == false or holder == ARGV[1] then
  redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
  return 1
end
return 0
`)

// releaseScript deletes the hold only when the caller still owns it, so a
// session cannot free a slot that expired and was re-acquired by someone else.
var releaseScript = redis.NewScript(`
local holder = redis.call("GET", KEYS[1])
if holder == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// confirmScript promotes a hold into the booked set and drops the hold in one
// atomic step. Returns 1 on success, 0 when the caller is not the holder.
var confirmScript = redis.NewScript(`
local holder = redis.call("GET", KEYS[1])
if holder == ARGV[1] then
  redis.call("SADD", KEYS[2], ARGV[2])
  redis.call("DEL", KEYS[1])
  return 1
end
return 0
`)

type redisManager struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisManager builds a Manager on a dedicated Redis client. Hold expiry
// is enforced by Redis key TTL, never by client-side timers, so a crashed or
// navigated-away client cannot leak a slot.
func NewRedisManager(client *redis.Client, ttl time.Duration) Manager {
	return &redisManager{client: client, ttl: ttl}
}

func (m *redisManager) Acquire(ctx context.Context, key models.SlotKey, holderID string) (*models.SlotLock, error) {
	keys := []string{holdKey(key), bookedKey(key.LabName, key.Date)}
	res, err := acquireScript.Run(ctx, m.client, keys, holderID, m.ttl.Milliseconds(), key.Time).Int()
	if err != nil {
		return nil, fmt.Errorf("acquire slot lock: %w", err)
	}
	switch res {
	case 1:
		now := time.Now()
		return &models.SlotLock{
			Key:        key,
			HolderID:   holderID,
			AcquiredAt: now,
			ExpiresAt:  now.Add(m.ttl),
		}, nil
	case -1:
		return nil, ErrSlotBooked
	default:
		return nil, ErrSlotConflict
	}
}

func (m *redisManager) Release(ctx context.Context, key models.SlotKey, holderID string) error {
	_, err := releaseScript.Run(ctx, m.client, []string{holdKey(key)}, holderID).Result()
	if err != nil {
		return fmt.Errorf("release slot lock: %w", err)
	}
	return nil
}

func (m *redisManager) Confirm(ctx context.Context, key models.SlotKey, holderID string) error {
	keys := []string{holdKey(key), bookedKey(key.LabName, key.Date)}
	res, err := confirmScript.Run(ctx, m.client, keys, holderID, key.Time).Int()
	if err != nil {
		return fmt.Errorf("confirm slot lock: %w", err)
	}
	if res != 1 {
		return ErrNotHolder
	}
	return nil
}

func (m *redisManager) Unbook(ctx context.Context, key models.SlotKey) error {
	if err := m.client.SRem(ctx, bookedKey(key.LabName, key.Date), key.Time).Err(); err != nil {
		return fmt.Errorf("unbook slot: %w", err)
	}
	return nil
}

func (m *redisManager) ListUnavailable(ctx context.Context, labName, date string) ([]string, error) {
	times, err := m.client.SMembers(ctx, bookedKey(labName, date)).Result()
	if err != nil {
		return nil, fmt.Errorf("list booked slots: %w", err)
	}

	// Live holds are separate PX keys; scan them by prefix and take the time
	// suffix.
	prefix := fmt.Sprintf("slot:hold:%s|%s|", labName, date)
	iter := m.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		times = append(times, strings.TrimPrefix(iter.Val(), prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan held slots: %w", err)
	}
	return times, nil
}
