package common

import "time"

// Cache is the TTL cache capability used for priority scores and the
// suppression set. Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the cached value and whether a live entry exists.
	Get(key string) (interface{}, bool)

	// Put stores a value with the given TTL. A non-positive TTL stores
	// the value without expiry.
	Put(key string, value interface{}, ttl time.Duration)

	// Forget drops the entry for key.
	Forget(key string)

	// Remember returns the cached value for key, computing and storing
	// it via fn on a miss.
	Remember(key string, ttl time.Duration, fn func() (interface{}, error)) (interface{}, error)
}
