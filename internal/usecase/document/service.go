// Package document implements the query surface of one collection:
// writes fan out to the record store, the secondary indexes, and the
// filter views; reads resolve ids through an index or view and hydrate
// records from primary storage.
package document

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/richdex/internal/domain"
	"github.com/kailas-cloud/richdex/internal/domain/collection"
	"github.com/kailas-cloud/richdex/internal/domain/collection/field"
	"github.com/kailas-cloud/richdex/internal/domain/record"
)

// Service executes queries against one collection.
//
// Writes are not atomic across the three structures: a failure between
// the primary write and the index updates can leave an index entry
// behind. The substrate offers no cross-key transaction that spans
// chunked batches, so callers retry instead.
type Service struct {
	decl    collection.Declaration
	records Records
	indexes Indexes
	views   Views
	ids     IDAllocator
}

// New creates a document service over the given collection declaration.
func New(decl collection.Declaration, records Records, indexes Indexes, views Views, ids IDAllocator) *Service {
	return &Service{
		decl:    decl,
		records: records,
		indexes: indexes,
		views:   views,
		ids:     ids,
	}
}

// Declaration returns the collection declaration the service serves.
func (s *Service) Declaration() collection.Declaration { return s.decl }

// Insert stores one record and returns it with its identifier set.
func (s *Service) Insert(ctx context.Context, rec record.Record) (record.Record, error) {
	out, err := s.InsertMany(ctx, []record.Record{rec})
	if err != nil {
		return record.Record{}, err
	}
	return out[0], nil
}

// InsertMany stores records and maintains indexes and filter views.
// For auto-id collections, records without an identifier receive ids
// from one contiguous allocated block, assigned in input order; a
// record that already carries an id keeps it. Without auto-id every
// record must carry an id.
func (s *Service) InsertMany(ctx context.Context, recs []record.Record) ([]record.Record, error) {
	if len(recs) == 0 {
		return nil, nil
	}

	recs, err := s.assignIDs(ctx, recs)
	if err != nil {
		return nil, err
	}

	if err := s.records.PutMany(ctx, recs); err != nil {
		return nil, fmt.Errorf("put records: %w", err)
	}
	if err := s.indexes.Insert(ctx, recs); err != nil {
		return nil, fmt.Errorf("update indexes: %w", err)
	}
	if err := s.views.Insert(ctx, recs); err != nil {
		return nil, fmt.Errorf("update filter views: %w", err)
	}
	return recs, nil
}

// Remove deletes one record and retracts its index and view entries.
// A nonexistent id is a silent no-op.
func (s *Service) Remove(ctx context.Context, id string) error {
	return s.RemoveMany(ctx, []string{id})
}

// RemoveMany deletes records by id. Existing records are read first so
// their index and view entries can be retracted; absent ids are
// skipped. Removing twice is safe.
func (s *Service) RemoveMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	recs, err := s.records.GetMany(ctx, ids)
	if err != nil {
		return fmt.Errorf("read records: %w", err)
	}
	if len(recs) == 0 {
		return nil
	}

	present := make([]string, 0, len(recs))
	for _, rec := range recs {
		present = append(present, rec.Key())
	}

	if err := s.records.DeleteMany(ctx, present); err != nil {
		return fmt.Errorf("delete records: %w", err)
	}
	if err := s.indexes.Remove(ctx, recs); err != nil {
		return fmt.Errorf("retract indexes: %w", err)
	}
	if err := s.views.Remove(ctx, present); err != nil {
		return fmt.Errorf("retract filter views: %w", err)
	}
	return nil
}

// Upsert replaces one record: any previous version is removed in full
// and the new record inserted under the same id. Fields absent from the
// new record are not preserved.
func (s *Service) Upsert(ctx context.Context, rec record.Record) (record.Record, error) {
	out, err := s.UpsertMany(ctx, []record.Record{rec})
	if err != nil {
		return record.Record{}, err
	}
	return out[0], nil
}

// UpsertMany replaces records by id. Records without an id are plain
// inserts (allocated for auto-id collections, rejected otherwise).
func (s *Service) UpsertMany(ctx context.Context, recs []record.Record) ([]record.Record, error) {
	if len(recs) == 0 {
		return nil, nil
	}

	var existing []string
	for _, rec := range recs {
		if id := rec.Key(); id != "" {
			existing = append(existing, id)
		}
	}
	if len(existing) > 0 {
		if err := s.RemoveMany(ctx, existing); err != nil {
			return nil, err
		}
	}
	return s.InsertMany(ctx, recs)
}

// FindByID returns one record, or domain.ErrNotFound.
func (s *Service) FindByID(ctx context.Context, id string) (record.Record, error) {
	rec, err := s.records.Get(ctx, id)
	if err != nil {
		return record.Record{}, fmt.Errorf("find %s: %w", id, err)
	}
	return rec, nil
}

// FindByIDs returns the records for ids, order aligned to the input,
// absent entries dropped.
func (s *Service) FindByIDs(ctx context.Context, ids []string) ([]record.Record, error) {
	recs, err := s.records.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("find records: %w", err)
	}
	return recs, nil
}

// FindBy returns the records whose field equals v. Text fields match
// exactly; numeric and temporal fields resolve through a min=max score
// range.
func (s *Service) FindBy(ctx context.Context, fieldName string, v record.Value) ([]record.Record, error) {
	ids, err := s.FindIDsBy(ctx, fieldName, v)
	if err != nil {
		return nil, err
	}
	return s.FindByIDs(ctx, ids)
}

// FindIDsBy is FindBy without record hydration.
func (s *Service) FindIDsBy(ctx context.Context, fieldName string, v record.Value) ([]string, error) {
	f, err := s.indexedField(fieldName)
	if err != nil {
		return nil, err
	}
	if v.Kind() != f.Kind() {
		return nil, fmt.Errorf("field %s is %s, queried as %s: %w",
			fieldName, f.Kind(), v.Kind(), domain.ErrKindMismatch)
	}

	ids, err := s.indexes.IDsByValue(ctx, f, v)
	if err != nil {
		return nil, fmt.Errorf("query index %s: %w", fieldName, err)
	}
	return ids, nil
}

// FindRangeBy returns the records whose field value lies in [min, max]
// inclusive, ascending. Temporal bounds compare by epoch millisecond.
func (s *Service) FindRangeBy(ctx context.Context, fieldName string, min, max record.Value) ([]record.Record, error) {
	ids, err := s.FindIDsRangeBy(ctx, fieldName, min, max)
	if err != nil {
		return nil, err
	}
	return s.FindByIDs(ctx, ids)
}

// FindIDsRangeBy is FindRangeBy without record hydration.
func (s *Service) FindIDsRangeBy(ctx context.Context, fieldName string, min, max record.Value) ([]string, error) {
	f, err := s.indexedField(fieldName)
	if err != nil {
		return nil, err
	}
	if f.Kind() == record.KindText {
		return nil, fmt.Errorf("field %s: %w", fieldName, domain.ErrTextRange)
	}

	lo, err := s.bound(f, min)
	if err != nil {
		return nil, err
	}
	hi, err := s.bound(f, max)
	if err != nil {
		return nil, err
	}

	ids, err := s.indexes.IDsByRange(ctx, f, lo, hi)
	if err != nil {
		return nil, fmt.Errorf("query index %s: %w", fieldName, err)
	}
	return ids, nil
}

// FindByFilter returns the records of a named view in its natural
// order: score-ascending for ordered filters, unspecified otherwise.
func (s *Service) FindByFilter(ctx context.Context, name string) ([]record.Record, error) {
	ids, err := s.views.IDs(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.FindByIDs(ctx, ids)
}

// FindRangeByFilter returns the records of an ordered view whose order
// score lies in [min, max] inclusive, ascending.
func (s *Service) FindRangeByFilter(ctx context.Context, name string, min, max record.Value) ([]record.Record, error) {
	def, ok := s.decl.Filter(name)
	if !ok {
		return nil, fmt.Errorf("filter %s: %w", name, domain.ErrFilterNotFound)
	}
	if !def.Ordered() {
		return nil, fmt.Errorf("filter %s: %w", name, domain.ErrFilterUnordered)
	}

	kind, _ := s.decl.Kind(def.OrderField())
	lo, err := rangeBound(def.OrderField(), kind, min)
	if err != nil {
		return nil, err
	}
	hi, err := rangeBound(def.OrderField(), kind, max)
	if err != nil {
		return nil, err
	}

	ids, err := s.views.RangeIDs(ctx, name, lo, hi)
	if err != nil {
		return nil, err
	}
	return s.FindByIDs(ctx, ids)
}

// assignIDs gives every record an identifier. Auto-id collections draw
// one contiguous block for the records that arrive without one; other
// collections require explicit ids.
func (s *Service) assignIDs(ctx context.Context, recs []record.Record) ([]record.Record, error) {
	if !s.decl.AutoID() {
		for _, rec := range recs {
			if rec.Key() == "" {
				return nil, fmt.Errorf("collection %s: %w", s.decl.Name(), domain.ErrMissingID)
			}
		}
		return recs, nil
	}

	var missing int64
	for _, rec := range recs {
		if rec.Key() == "" {
			missing++
		}
	}
	if missing == 0 {
		return recs, nil
	}

	next, err := s.ids.Allocate(ctx, missing)
	if err != nil {
		return nil, fmt.Errorf("allocate ids: %w", err)
	}

	out := make([]record.Record, len(recs))
	for i, rec := range recs {
		if rec.Key() == "" {
			rec = rec.WithID(record.Number(float64(next)))
			next++
		}
		out[i] = rec
	}
	return out, nil
}

func (s *Service) indexedField(name string) (field.Field, error) {
	f, ok := s.decl.Field(name)
	if !ok || !f.Indexed() {
		return field.Field{}, fmt.Errorf("field %s: %w", name, domain.ErrFieldNotIndexed)
	}
	return f, nil
}

func (s *Service) bound(f field.Field, v record.Value) (float64, error) {
	return rangeBound(f.Name(), f.Kind(), v)
}

func rangeBound(fieldName string, kind record.Kind, v record.Value) (float64, error) {
	if v.Kind() != kind {
		return 0, fmt.Errorf("field %s is %s, bound is %s: %w",
			fieldName, kind, v.Kind(), domain.ErrKindMismatch)
	}
	score, ok := v.Score()
	if !ok {
		return 0, fmt.Errorf("field %s: %w", fieldName, domain.ErrTextRange)
	}
	return score, nil
}
