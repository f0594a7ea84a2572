package document

import (
	"context"

	"github.com/kailas-cloud/richdex/internal/domain/collection/field"
	"github.com/kailas-cloud/richdex/internal/domain/record"
)

// Records defines the primary storage contract for records.
type Records interface {
	PutMany(ctx context.Context, recs []record.Record) error
	GetMany(ctx context.Context, ids []string) ([]record.Record, error)
	Get(ctx context.Context, id string) (record.Record, error)
	DeleteMany(ctx context.Context, ids []string) error
}

// Indexes maintains and queries the per-field secondary indexes.
type Indexes interface {
	Insert(ctx context.Context, recs []record.Record) error
	Remove(ctx context.Context, recs []record.Record) error
	IDsByValue(ctx context.Context, f field.Field, v record.Value) ([]string, error)
	IDsByRange(ctx context.Context, f field.Field, min, max float64) ([]string, error)
}

// Views maintains and queries the materialized filter views.
type Views interface {
	Insert(ctx context.Context, recs []record.Record) error
	Remove(ctx context.Context, ids []string) error
	IDs(ctx context.Context, name string) ([]string, error)
	RangeIDs(ctx context.Context, name string, min, max float64) ([]string, error)
}

// IDAllocator reserves contiguous identifier blocks.
type IDAllocator interface {
	Allocate(ctx context.Context, n int64) (int64, error)
}
