package cache

import (
	"time"

	"github.com/redis/go-redis/v9"
)

// Port is the cache contract services depend on, so tests can swap the
// Redis client for a no-op.
type Port interface {
	Get(key string) (string, error)
	SetTagged(key string, value interface{}, expiration time.Duration, tags ...string) error
	ClearTag(tag string) error
}

// Redis is the Port backed by the shared Redis client.
type Redis struct{}

func (Redis) Get(key string) (string, error) {
	val, err := Get(key)
	if err == redis.Nil {
		return "", ErrMiss
	}
	return val, err
}

func (Redis) SetTagged(key string, value interface{}, expiration time.Duration, tags ...string) error {
	return SetTagged(key, value, expiration, tags...)
}

func (Redis) ClearTag(tag string) error {
	return ClearTag(tag)
}

// Noop satisfies Port without caching anything. Used in tests and when no
// cache server is configured.
type Noop struct{}

func (Noop) Get(key string) (string, error) { return "", ErrMiss }

func (Noop) SetTagged(key string, value interface{}, expiration time.Duration, tags ...string) error {
	return nil
}

func (Noop) ClearTag(tag string) error { return nil }
