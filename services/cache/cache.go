package cache

import (
	"time"
)

// CacheService is the expiring key-value store behind the fetch guard. The
// scraper writes a key when the source starts throttling and checks it
// before every fetch, so the block survives process restarts.
type CacheService interface {
	// Get retrieves a value from the cache
	Get(key string) ([]byte, error)

	// Set stores a value in the cache with an expiration time
	Set(key string, value []byte, expiration time.Duration) error

	// Delete removes a value from the cache
	Delete(key string) error
}
