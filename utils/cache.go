// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"labcart/config"

	"github.com/go-redis/redis/v8"
)

var (
	// CacheClient is the generic cache client (carts, catalog snapshots).
	CacheClient *redis.Client
	// SlotLockClient is the dedicated client backing slot locks.
	SlotLockClient *redis.Client
	// WizardCacheClient is the dedicated client for checkout wizard state.
	WizardCacheClient *redis.Client
)

func newClient(db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
}

func mustPing(client *redis.Client, name string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (%s): %v", name, err)
	}
}

// InitRedis initializes all Redis clients up front so a bad address fails fast.
func InitRedis() {
	CacheClient = newClient(config.AppConfig.RedisCacheDB)
	mustPing(CacheClient, "Cache")
	SlotLockClient = newClient(config.AppConfig.RedisSlotLockDB)
	mustPing(SlotLockClient, "SlotLock")
	WizardCacheClient = newClient(config.AppConfig.RedisWizardDB)
	mustPing(WizardCacheClient, "Wizard")
}

// GetCacheClient returns the generic cache client.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		CacheClient = newClient(config.AppConfig.RedisCacheDB)
		mustPing(CacheClient, "Cache")
	}
	return CacheClient
}

// GetSlotLockClient returns the Redis client backing slot locks.
func GetSlotLockClient() *redis.Client {
	if SlotLockClient == nil {
		SlotLockClient = newClient(config.AppConfig.RedisSlotLockDB)
		mustPing(SlotLockClient, "SlotLock")
	}
	return SlotLockClient
}

// GetWizardCacheClient returns the Redis client for checkout wizard state.
func GetWizardCacheClient() *redis.Client {
	if WizardCacheClient == nil {
		WizardCacheClient = newClient(config.AppConfig.RedisWizardDB)
		mustPing(WizardCacheClient, "Wizard")
	}
	return WizardCacheClient
}
