package redis

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/richdex/internal/db"
)

// MSet stores alternating key/value pairs in a single command.
func (s *Store) MSet(ctx context.Context, pairs []string) error {
	if len(pairs) == 0 {
		return nil
	}
	if len(pairs)%2 != 0 {
		return &db.Error{Op: db.OpMSet, Err: fmt.Errorf("odd argument count %d", len(pairs))}
	}

	cmd := s.b().Mset().KeyValue()
	for i := 0; i+1 < len(pairs); i += 2 {
		cmd = cmd.KeyValue(pairs[i], pairs[i+1])
	}
	if err := s.do(ctx, cmd.Build()).Error(); err != nil {
		return &db.Error{Op: db.OpMSet, Err: err}
	}
	return nil
}

// MGet returns one entry per key, nil for absent keys, aligned to keys.
func (s *Store) MGet(ctx context.Context, keys []string) ([]*string, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	cmd := s.b().Mget().Key(keys...).Build()
	arr, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpMGet, Err: err}
	}

	out := make([]*string, len(arr))
	for i, msg := range arr {
		v, err := msg.ToString()
		if err != nil {
			if rueidis.IsRedisNil(err) {
				continue
			}
			return nil, &db.Error{Op: db.OpMGet, Err: fmt.Errorf("key %s: %w", keys[i], err)}
		}
		out[i] = &v
	}
	return out, nil
}

// Del removes keys. Deleting absent keys is a no-op.
func (s *Store) Del(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	cmd := s.b().Del().Key(keys...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpDel, Err: err}
	}
	return nil
}

// IncrBy atomically increments a counter and returns the new total.
func (s *Store) IncrBy(ctx context.Context, key string, n int64) (int64, error) {
	cmd := s.b().Incrby().Key(key).Increment(n).Build()
	total, err := s.do(ctx, cmd).AsInt64()
	if err != nil {
		return 0, &db.Error{Op: db.OpIncrBy, Err: err}
	}
	return total, nil
}
