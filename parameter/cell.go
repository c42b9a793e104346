package parameter

import "time"

// Cell cache
const (
	// EvictDebounceCycles is the number of full update cycles a zero-count cell survives before eviction
	EvictDebounceCycles = 1

	// FetchWorkers bounds concurrent transport requests
	FetchWorkers = 8

	// FetchTimeout bounds a single transport request
	FetchTimeout = 10 * time.Second

	// PayloadCacheSize is the per-shard capacity of the in-memory payload LRU
	PayloadCacheSize = 64

	// StaleFrames is how many repaints a cell image stays usable as a placeholder after it was last ready or used
	StaleFrames = 120

	// RedisTileTTL is the expiry of shared tile bytes
	RedisTileTTL = 24 * time.Hour
)
