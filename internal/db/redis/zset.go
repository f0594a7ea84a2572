package redis

import (
	"context"
	"strconv"

	"github.com/kailas-cloud/richdex/internal/db"
)

// ZAdd adds or updates scored members in a sorted set.
func (s *Store) ZAdd(ctx context.Context, key string, entries []db.ScoreMember) error {
	if len(entries) == 0 {
		return nil
	}
	cmd := s.b().Zadd().Key(key).ScoreMember()
	for _, e := range entries {
		cmd = cmd.ScoreMember(e.Score, e.Member)
	}
	if err := s.do(ctx, cmd.Build()).Error(); err != nil {
		return &db.Error{Op: db.OpZAdd, Err: err}
	}
	return nil
}

// ZRem removes members from a sorted set. Absent members are a no-op.
func (s *Store) ZRem(ctx context.Context, key string, members []string) error {
	if len(members) == 0 {
		return nil
	}
	cmd := s.b().Zrem().Key(key).Member(members...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpZRem, Err: err}
	}
	return nil
}

// ZRangeByScore returns members with min <= score <= max, ascending.
func (s *Store) ZRangeByScore(ctx context.Context, key string, min, max float64) ([]string, error) {
	cmd := s.b().Zrangebyscore().Key(key).
		Min(formatScore(min)).
		Max(formatScore(max)).
		Build()
	members, err := s.do(ctx, cmd).AsStrSlice()
	if err != nil {
		return nil, &db.Error{Op: db.OpZRangeBy, Err: err}
	}
	return members, nil
}

// ZRange returns members by rank, ascending. stop -1 means the end.
func (s *Store) ZRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	cmd := s.b().Zrange().Key(key).
		Min(strconv.FormatInt(start, 10)).
		Max(strconv.FormatInt(stop, 10)).
		Build()
	members, err := s.do(ctx, cmd).AsStrSlice()
	if err != nil {
		return nil, &db.Error{Op: db.OpZRange, Err: err}
	}
	return members, nil
}

func formatScore(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
