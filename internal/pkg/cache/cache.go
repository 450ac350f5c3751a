package cache

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/memberhive/memberhive/internal/pkg/env"
	"github.com/redis/go-redis/v9"
)

var (
	client *redis.Client
	ctx    = context.Background()
)

// ErrMiss is returned by Port implementations on a cache miss.
var ErrMiss = errors.New("cache: miss")

// Well-known invalidation tags. Every plan mutation clears TagPlans, every
// subscription mutation clears TagSubscriptions, and entitlement changes
// clear the per-group-per-user tag.
const (
	TagPlans         = "plans"
	TagSubscriptions = "subscriptions"
)

// GroupUserTag builds the invalidation tag for one user's membership in one
// entitlement group.
func GroupUserTag(groupID, userID uint) string {
	return fmt.Sprintf("group:%d:user:%d", groupID, userID)
}

// SetupCache initializes the connection to the cache server
func SetupCache() {
	host := env.GetEnv("CACHE_HOST", "localhost")
	port := env.GetEnv("CACHE_PORT", "6379")

	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: "", // no password set
		DB:       0,  // use default DB
	})

	// Test the connection
	pong, err := client.Ping(ctx).Result()
	if err != nil {
		log.Printf("Warning: Could not connect to cache: %v", err)
	} else {
		log.Printf("Successfully connected to cache: %s", pong)
	}
}

// GetClient returns the Redis client instance
func GetClient() *redis.Client {
	if client == nil {
		SetupCache()
	}
	return client
}

// Set stores a value in the cache with the given key and expiration time
func Set(key string, value interface{}, expiration time.Duration) error {
	return GetClient().Set(ctx, key, value, expiration).Err()
}

// SetTagged stores a value and registers its key under each tag so the
// whole tag can be invalidated at once.
func SetTagged(key string, value interface{}, expiration time.Duration, tags ...string) error {
	if err := Set(key, value, expiration); err != nil {
		return err
	}
	for _, tag := range tags {
		if err := GetClient().SAdd(ctx, tagKey(tag), key).Err(); err != nil {
			return err
		}
	}
	return nil
}

// Get retrieves a value from the cache by key
func Get(key string) (string, error) {
	return GetClient().Get(ctx, key).Result()
}

// Delete removes a value from the cache by key
func Delete(key string) error {
	return GetClient().Del(ctx, key).Err()
}

// ClearTag deletes every key registered under the tag, then the tag set
// itself. Unknown tags are a no-op.
func ClearTag(tag string) error {
	keys, err := GetClient().SMembers(ctx, tagKey(tag)).Result()
	if err != nil {
		return err
	}
	if len(keys) > 0 {
		if err := GetClient().Del(ctx, keys...).Err(); err != nil {
			return err
		}
	}
	return GetClient().Del(ctx, tagKey(tag)).Err()
}

func tagKey(tag string) string {
	return "tag:" + tag
}
