// Package index maintains the per-field secondary indexes in lock-step
// with primary record writes: set membership for text fields, scored
// membership for numeric and temporal fields.
package index

import (
	"context"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/richdex/internal/chunk"
	"github.com/kailas-cloud/richdex/internal/db"
	"github.com/kailas-cloud/richdex/internal/domain/collection"
	"github.com/kailas-cloud/richdex/internal/domain/collection/field"
	"github.com/kailas-cloud/richdex/internal/domain/record"
)

// store is the consumer interface for index structures (ISP).
type store interface {
	SAdd(ctx context.Context, key string, members []string) error
	SRem(ctx context.Context, key string, members []string) error
	SMembers(ctx context.Context, key string) ([]string, error)
	ZAdd(ctx context.Context, key string, entries []db.ScoreMember) error
	ZRem(ctx context.Context, key string, members []string) error
	ZRangeByScore(ctx context.Context, key string, min, max float64) ([]string, error)
}

// Repo maintains one collection's secondary indexes.
type Repo struct {
	store   store
	decl    collection.Declaration
	chunker chunk.Chunker
}

// New creates an index repository.
func New(s store, decl collection.Declaration, c chunk.Chunker) *Repo {
	return &Repo{store: s, decl: decl, chunker: c}
}

// Insert adds index entries for every indexed field present on the
// given records. A record lacking a field contributes no entry for that
// field only; partial indexing is normal.
func (r *Repo) Insert(ctx context.Context, recs []record.Record) error {
	for _, f := range r.decl.IndexedFields() {
		var err error
		if f.Kind() == record.KindText {
			err = r.insertText(ctx, f, recs)
		} else {
			err = r.insertScored(ctx, f, recs)
		}
		if err != nil {
			return fmt.Errorf("index %s: %w", f.Name(), err)
		}
	}
	return nil
}

// Remove retracts index entries for the given records. Removing an id
// already absent from an index is a no-op.
func (r *Repo) Remove(ctx context.Context, recs []record.Record) error {
	for _, f := range r.decl.IndexedFields() {
		var err error
		if f.Kind() == record.KindText {
			err = r.removeText(ctx, f, recs)
		} else {
			err = r.removeScored(ctx, f, recs)
		}
		if err != nil {
			return fmt.Errorf("index %s: %w", f.Name(), err)
		}
	}
	return nil
}

// IDsByValue returns the ids of records whose field equals v: exact set
// membership for text, a min=max score range otherwise.
func (r *Repo) IDsByValue(ctx context.Context, f field.Field, v record.Value) ([]string, error) {
	if f.Kind() == record.KindText {
		ids, err := r.store.SMembers(ctx, textIndexKey(r.decl.Name(), f.Name(), v.String()))
		if err != nil {
			return nil, fmt.Errorf("index %s: %w", f.Name(), err)
		}
		return ids, nil
	}

	score, ok := v.Score()
	if !ok {
		return nil, fmt.Errorf("index %s: value %q has no score", f.Name(), v.String())
	}
	return r.IDsByRange(ctx, f, score, score)
}

// IDsByRange returns the ids of records whose field score lies in
// [min, max] inclusive, ascending by score.
func (r *Repo) IDsByRange(ctx context.Context, f field.Field, min, max float64) ([]string, error) {
	ids, err := r.store.ZRangeByScore(ctx, sortedIndexKey(r.decl.Name(), f.Name()), min, max)
	if err != nil {
		return nil, fmt.Errorf("index %s: %w", f.Name(), err)
	}
	return ids, nil
}

func (r *Repo) insertText(ctx context.Context, f field.Field, recs []record.Record) error {
	byValue, order := groupByValue(f, recs)
	for _, val := range order {
		key := textIndexKey(r.decl.Name(), f.Name(), val)
		err := r.chunker.Each(byValue[val], 1, func(c []string) error {
			return r.store.SAdd(ctx, key, c)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *Repo) removeText(ctx context.Context, f field.Field, recs []record.Record) error {
	byValue, order := groupByValue(f, recs)
	for _, val := range order {
		key := textIndexKey(r.decl.Name(), f.Name(), val)
		err := r.chunker.Each(byValue[val], 1, func(c []string) error {
			return r.store.SRem(ctx, key, c)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// insertScored batches score/member pairs through the chunker as a flat
// argument sequence with group size 2, so a score is never separated
// from its id.
func (r *Repo) insertScored(ctx context.Context, f field.Field, recs []record.Record) error {
	args := make([]string, 0, len(recs)*2)
	for _, rec := range recs {
		v, ok := rec.Get(f.Name())
		if !ok {
			continue
		}
		score, ok := v.Score()
		if !ok {
			return fmt.Errorf("record %s: value has no score", rec.Key())
		}
		args = append(args, strconv.FormatFloat(score, 'f', -1, 64), rec.Key())
	}

	key := sortedIndexKey(r.decl.Name(), f.Name())
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

func (r *Repo) removeScored(ctx context.Context, f field.Field, recs []record.Record) error {
	members := make([]string, 0, len(recs))
	for _, rec := range recs {
		if _, ok := rec.Get(f.Name()); !ok {
			continue
		}
		members = append(members, rec.Key())
	}

	key := sortedIndexKey(r.decl.Name(), f.Name())
	return r.chunker.Each(members, 1, func(c []string) error {
		return r.store.ZRem(ctx, key, c)
	})
}

// groupByValue collects record ids per distinct field value, preserving
// first-seen value order for deterministic command sequences.
func groupByValue(f field.Field, recs []record.Record) (map[string][]string, []string) {
	byValue := make(map[string][]string)
	var order []string
	for _, rec := range recs {
		v, ok := rec.Get(f.Name())
		if !ok {
			continue
		}
		s := v.String()
		if _, seen := byValue[s]; !seen {
			order = append(order, s)
		}
		byValue[s] = append(byValue[s], rec.Key())
	}
	return byValue, order
}

func textIndexKey(collection, field, value string) string {
	return fmt.Sprintf("index::%s:%s:%s", collection, field, value)
}

func sortedIndexKey(collection, field string) string {
	return fmt.Sprintf("index::%s:%s", collection, field)
}
