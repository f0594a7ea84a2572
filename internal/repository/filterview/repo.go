// Package filterview maintains the materialized filter views: on every
// write each declared predicate is evaluated and matching ids land in
// the view's set (unordered filters) or sorted set keyed by the order
// field's score (ordered filters).
package filterview

import (
	"context"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/richdex/internal/chunk"
	"github.com/kailas-cloud/richdex/internal/db"
	"github.com/kailas-cloud/richdex/internal/domain"
	"github.com/kailas-cloud/richdex/internal/domain/collection"
	"github.com/kailas-cloud/richdex/internal/domain/filter"
	"github.com/kailas-cloud/richdex/internal/domain/record"
)

type store interface {
	SAdd(ctx context.Context, key string, members []string) error
	SRem(ctx context.Context, key string, members []string) error
	SMembers(ctx context.Context, key string) ([]string, error)
	ZAdd(ctx context.Context, key string, entries []db.ScoreMember) error
	ZRem(ctx context.Context, key string, members []string) error
	ZRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	ZRangeByScore(ctx context.Context, key string, min, max float64) ([]string, error)
}

// Repo maintains one collection's filter views.
type Repo struct {
	store   store
	decl    collection.Declaration
	chunker chunk.Chunker
}

// New creates a filter-view repository.
func New(s store, decl collection.Declaration, c chunk.Chunker) *Repo {
	return &Repo{store: s, decl: decl, chunker: c}
}

// Insert evaluates every declared filter against the given records and
// adds matching ids to the view. An ordered filter silently skips a
// matching record that lacks the order field.
func (r *Repo) Insert(ctx context.Context, recs []record.Record) error {
	for _, def := range r.decl.Filters() {
		if err := r.insertOne(ctx, def, recs); err != nil {
			return fmt.Errorf("filter %s: %w", def.Name(), err)
		}
	}
	return nil
}

// Remove purges the given ids from every filter view without
// re-evaluating predicates. Purging an absent id is a no-op.
func (r *Repo) Remove(ctx context.Context, ids []string) error {
	for _, def := range r.decl.Filters() {
		key := filterKey(r.decl.Name(), def.Name())
		var err error
		if def.Ordered() {
			err = r.chunker.Each(ids, 1, func(c []string) error {
				return r.store.ZRem(ctx, key, c)
			})
		} else {
			err = r.chunker.Each(ids, 1, func(c []string) error {
				return r.store.SRem(ctx, key, c)
			})
		}
		if err != nil {
			return fmt.Errorf("filter %s: %w", def.Name(), err)
		}
	}
	return nil
}

// IDs returns every id in the named view, ascending by score for
// ordered filters and in no particular order otherwise.
func (r *Repo) IDs(ctx context.Context, name string) ([]string, error) {
	def, ok := r.decl.Filter(name)
	if !ok {
		return nil, fmt.Errorf("filter %s: %w", name, domain.ErrFilterNotFound)
	}

	key := filterKey(r.decl.Name(), name)
	var (
		ids []string
		err error
	)
	if def.Ordered() {
		ids, err = r.store.ZRange(ctx, key, 0, -1)
	} else {
		ids, err = r.store.SMembers(ctx, key)
	}
	if err != nil {
		return nil, fmt.Errorf("filter %s: %w", name, err)
	}
	return ids, nil
}

// RangeIDs returns the ids in the named ordered view whose order score
// lies in [min, max] inclusive, ascending.
func (r *Repo) RangeIDs(ctx context.Context, name string, min, max float64) ([]string, error) {
	def, ok := r.decl.Filter(name)
	if !ok {
		return nil, fmt.Errorf("filter %s: %w", name, domain.ErrFilterNotFound)
	}
	if !def.Ordered() {
		return nil, fmt.Errorf("filter %s: %w", name, domain.ErrFilterUnordered)
	}

	ids, err := r.store.ZRangeByScore(ctx, filterKey(r.decl.Name(), name), min, max)
	if err != nil {
		return nil, fmt.Errorf("filter %s: %w", name, err)
	}
	return ids, nil
}

func (r *Repo) insertOne(ctx context.Context, def filter.Definition, recs []record.Record) error {
	key := filterKey(r.decl.Name(), def.Name())

	if !def.Ordered() {
		var members []string
		for _, rec := range recs {
			ok, err := def.Match(rec)
			if err != nil {
				return err
			}
			if ok {
				members = append(members, rec.Key())
			}
		}
		return r.chunker.Each(members, 1, func(c []string) error {
			return r.store.SAdd(ctx, key, c)
		})
	}

	var args []string
	for _, rec := range recs {
		ok, err := def.Match(rec)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		v, present := rec.Get(def.OrderField())
		if !present {
			continue
		}
		score, scorable := v.Score()
		if !scorable {
			continue
		}
		args = append(args, strconv.FormatFloat(score, 'f', -1, 64), rec.Key())
	}

	return r.chunker.Each(args, 2, func(c []string) error {
		entries := make([]db.ScoreMember, 0, len(c)/2)
		for i := 0; i+1 < len(c); i += 2 {
			score, err := strconv.ParseFloat(c[i], 64)
			if err != nil {
				return fmt.Errorf("parse score %q: %w", c[i], err)
			}
			entries = append(entries, db.ScoreMember{Score: score, Member: c[i+1]})
		}
		return r.store.ZAdd(ctx, key, entries)
	})
}

func filterKey(collection, name string) string {
	return fmt.Sprintf("filter::%s:%s", collection, name)
}
