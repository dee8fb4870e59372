package cache

import "time"

// CacheService abstracts the caching backend used for catalog data,
// shipping configuration snapshots and enum responses.
type CacheService interface {
	// Get retrieves a value from the cache. Second return is false on miss.
	Get(key string) (interface{}, bool)

	// Set adds a value to the cache with a TTL
	Set(key string, value interface{}, duration time.Duration)

	// Delete removes a value from the cache
	Delete(key string)

	// Flush removes all items
	Flush()
}
