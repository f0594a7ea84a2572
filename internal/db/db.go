package db

import (
	"context"
	"time"
)

// Store is the main substrate facade combining all sub-interfaces.
//
//nolint:interfacebloat // consumers depend on the narrow sub-interfaces
type Store interface {
	Pinger
	KVStore
	SetStore
	SortedSetStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks substrate connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides scalar payload storage and the atomic counter.
type KVStore interface {
	// MSet stores alternating key/value pairs in one command.
	MSet(ctx context.Context, pairs []string) error
	// MGet returns one entry per key, nil for absent keys, aligned to keys.
	MGet(ctx context.Context, keys []string) ([]*string, error)
	// Del removes keys; deleting absent keys is a no-op.
	Del(ctx context.Context, keys []string) error
	// IncrBy atomically increments a counter and returns the new total.
	IncrBy(ctx context.Context, key string, n int64) (int64, error)
}

// SetStore provides unordered string-set operations.
type SetStore interface {
	SAdd(ctx context.Context, key string, members []string) error
	SRem(ctx context.Context, key string, members []string) error
	SMembers(ctx context.Context, key string) ([]string, error)
}

// ScoreMember is one scored entry for a sorted-set write.
type ScoreMember struct {
	Score  float64
	Member string
}

// SortedSetStore provides score-ordered sorted-set operations.
type SortedSetStore interface {
	ZAdd(ctx context.Context, key string, entries []ScoreMember) error
	ZRem(ctx context.Context, key string, members []string) error
	// ZRangeByScore returns members with min <= score <= max, ascending.
	ZRangeByScore(ctx context.Context, key string, min, max float64) ([]string, error)
	// ZRange returns members by rank, ascending; stop -1 means the end.
	ZRange(ctx context.Context, key string, start, stop int64) ([]string, error)
}
