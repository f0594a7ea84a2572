// Package record persists whole records as serialized payloads keyed by
// collection name and id.
package record

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/richdex/internal/chunk"
	"github.com/kailas-cloud/richdex/internal/domain"
	"github.com/kailas-cloud/richdex/internal/domain/collection"
	"github.com/kailas-cloud/richdex/internal/domain/record"
)

// store is the consumer interface for record payloads (ISP).
type store interface {
	MSet(ctx context.Context, pairs []string) error
	MGet(ctx context.Context, keys []string) ([]*string, error)
	Del(ctx context.Context, keys []string) error
}

// Repo reads and writes one collection's primary records.
type Repo struct {
	store   store
	decl    collection.Declaration
	chunker chunk.Chunker
}

// New creates a record repository.
func New(s store, decl collection.Declaration, c chunk.Chunker) *Repo {
	return &Repo{store: s, decl: decl, chunker: c}
}

// PutMany stores records via chunked MSET. Key/value pairs are atomic
// groups: a key is never separated from its payload.
func (r *Repo) PutMany(ctx context.Context, recs []record.Record) error {
	pairs := make([]string, 0, len(recs)*2)
	for _, rec := range recs {
		payload, err := encodeRecord(rec)
		if err != nil {
			return err
		}
		pairs = append(pairs, recordKey(r.decl.Name(), rec.Key()), payload)
	}

	err := r.chunker.Each(pairs, 2, func(c []string) error {
		return r.store.MSet(ctx, c)
	})
	if err != nil {
		return fmt.Errorf("put records: %w", err)
	}
	return nil
}

// GetMany returns the records for ids, order aligned to the input, with
// absent entries dropped. Replies from successive chunks are
// concatenated in order.
func (r *Repo) GetMany(ctx context.Context, ids []string) ([]record.Record, error) {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = recordKey(r.decl.Name(), id)
	}

	payloads, err := chunk.Collect(r.chunker, keys, 1, func(c []string) ([]*string, error) {
		return r.store.MGet(ctx, c)
	})
	if err != nil {
		return nil, fmt.Errorf("get records: %w", err)
	}

	recs := make([]record.Record, 0, len(payloads))
	for i, p := range payloads {
		if p == nil {
			continue
		}
		rec, err := decodeRecord(r.decl, *p)
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", ids[i], err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// Get returns one record, or domain.ErrNotFound.
func (r *Repo) Get(ctx context.Context, id string) (record.Record, error) {
	recs, err := r.GetMany(ctx, []string{id})
	if err != nil {
		return record.Record{}, err
	}
	if len(recs) == 0 {
		return record.Record{}, domain.ErrNotFound
	}
	return recs[0], nil
}

// DeleteMany removes the primary entries for ids. Absent ids are a no-op.
func (r *Repo) DeleteMany(ctx context.Context, ids []string) error {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = recordKey(r.decl.Name(), id)
	}

	err := r.chunker.Each(keys, 1, func(c []string) error {
		return r.store.Del(ctx, c)
	})
	if err != nil {
		return fmt.Errorf("delete records: %w", err)
	}
	return nil
}

func recordKey(collection, id string) string {
	return fmt.Sprintf("%s:%s", collection, id)
}
