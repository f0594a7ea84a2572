package richdex

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/richdex/internal/domain"
	"github.com/kailas-cloud/richdex/internal/domain/record"
	documentuc "github.com/kailas-cloud/richdex/internal/usecase/document"
)

// Collection is the document API for one declared collection.
type Collection struct {
	name string
	svc  *documentuc.Service
}

// Name returns the collection name.
func (c *Collection) Name() string { return c.name }

// Insert stores a new document, populating every index and filter view.
// Returns the stored document, with the assigned id on auto-id
// collections.
func (c *Collection) Insert(ctx context.Context, doc Document) (Document, error) {
	rec, err := c.toRecord(doc)
	if err != nil {
		return nil, err
	}
	stored, err := c.svc.Insert(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("insert: %w", err)
	}
	return fromRecord(stored), nil
}

// InsertMany stores documents in order. Auto ids are allocated as one
// contiguous block per call.
func (c *Collection) InsertMany(ctx context.Context, docs []Document) ([]Document, error) {
	recs, err := c.toRecords(docs)
	if err != nil {
		return nil, err
	}
	stored, err := c.svc.InsertMany(ctx, recs)
	if err != nil {
		return nil, fmt.Errorf("insert many: %w", err)
	}
	return fromRecords(stored), nil
}

// Remove deletes a document and retracts its index and view entries.
// Removing an absent id is a no-op.
func (c *Collection) Remove(ctx context.Context, id string) error {
	if err := c.svc.Remove(ctx, id); err != nil {
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}

// RemoveMany deletes documents by id.
func (c *Collection) RemoveMany(ctx context.Context, ids []string) error {
	if err := c.svc.RemoveMany(ctx, ids); err != nil {
		return fmt.Errorf("remove many: %w", err)
	}
	return nil
}

// Upsert replaces a document wholly: stale index and view entries from
// the previous version are retracted.
func (c *Collection) Upsert(ctx context.Context, doc Document) (Document, error) {
	rec, err := c.toRecord(doc)
	if err != nil {
		return nil, err
	}
	stored, err := c.svc.Upsert(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("upsert: %w", err)
	}
	return fromRecord(stored), nil
}

// UpsertMany replaces documents wholly, in order.
func (c *Collection) UpsertMany(ctx context.Context, docs []Document) ([]Document, error) {
	recs, err := c.toRecords(docs)
	if err != nil {
		return nil, err
	}
	stored, err := c.svc.UpsertMany(ctx, recs)
	if err != nil {
		return nil, fmt.Errorf("upsert many: %w", err)
	}
	return fromRecords(stored), nil
}

// FindByID returns one document, or ErrNotFound.
func (c *Collection) FindByID(ctx context.Context, id string) (Document, error) {
	rec, err := c.svc.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find by id: %w", err)
	}
	return fromRecord(rec), nil
}

// FindByIDs returns present documents in the order of ids; absent ids
// are skipped.
func (c *Collection) FindByIDs(ctx context.Context, ids []string) ([]Document, error) {
	recs, err := c.svc.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("find by ids: %w", err)
	}
	return fromRecords(recs), nil
}

// FindBy returns documents whose indexed field equals value.
func (c *Collection) FindBy(ctx context.Context, field string, value any) ([]Document, error) {
	v, err := toValue(value)
	if err != nil {
		return nil, err
	}
	recs, err := c.svc.FindBy(ctx, field, v)
	if err != nil {
		return nil, fmt.Errorf("find by %s: %w", field, err)
	}
	return fromRecords(recs), nil
}

// FindIDsBy returns the ids whose indexed field equals value.
func (c *Collection) FindIDsBy(ctx context.Context, field string, value any) ([]string, error) {
	v, err := toValue(value)
	if err != nil {
		return nil, err
	}
	ids, err := c.svc.FindIDsBy(ctx, field, v)
	if err != nil {
		return nil, fmt.Errorf("find ids by %s: %w", field, err)
	}
	return ids, nil
}

// FindRangeBy returns documents whose numeric or time field lies in
// [min, max] inclusive, ascending.
func (c *Collection) FindRangeBy(ctx context.Context, field string, min, max any) ([]Document, error) {
	lo, hi, err := toBounds(min, max)
	if err != nil {
		return nil, err
	}
	recs, err := c.svc.FindRangeBy(ctx, field, lo, hi)
	if err != nil {
		return nil, fmt.Errorf("find range by %s: %w", field, err)
	}
	return fromRecords(recs), nil
}

// FindIDsRangeBy returns the ids whose numeric or time field lies in
// [min, max] inclusive, ascending.
func (c *Collection) FindIDsRangeBy(ctx context.Context, field string, min, max any) ([]string, error) {
	lo, hi, err := toBounds(min, max)
	if err != nil {
		return nil, err
	}
	ids, err := c.svc.FindIDsRangeBy(ctx, field, lo, hi)
	if err != nil {
		return nil, fmt.Errorf("find ids range by %s: %w", field, err)
	}
	return ids, nil
}

// FindByFilter returns the members of a filter view: insertion-set
// order for unordered views, ascending by order field for ordered ones.
func (c *Collection) FindByFilter(ctx context.Context, name string) ([]Document, error) {
	recs, err := c.svc.FindByFilter(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("filter %s: %w", name, err)
	}
	return fromRecords(recs), nil
}

// FindRangeByFilter returns the members of an ordered filter view whose
// order field lies in [min, max] inclusive.
func (c *Collection) FindRangeByFilter(ctx context.Context, name string, min, max any) ([]Document, error) {
	lo, hi, err := toBounds(min, max)
	if err != nil {
		return nil, err
	}
	recs, err := c.svc.FindRangeByFilter(ctx, name, lo, hi)
	if err != nil {
		return nil, fmt.Errorf("filter range %s: %w", name, err)
	}
	return fromRecords(recs), nil
}

// toRecord converts a Document and checks every declared field against
// its schema kind, so a mismatch fails before anything is written.
// Undeclared fields pass through untyped-as-given, same as the HTTP
// surface.
func (c *Collection) toRecord(doc Document) (record.Record, error) {
	decl := c.svc.Declaration()
	fields := make(map[string]record.Value, len(doc))
	for name, raw := range doc {
		v, err := toValue(raw)
		if err != nil {
			return record.Record{}, fmt.Errorf("field %q: %w", name, err)
		}
		if kind, declared := decl.Kind(name); declared && v.Kind() != kind {
			// A numeric struct id on a text-id collection is stored
			// by its decimal rendering.
			if name == record.IDField && kind == record.KindText && v.Kind() == record.KindNumeric {
				v = record.Text(v.String())
			} else {
				return record.Record{}, fmt.Errorf("field %q: got %s, want %s: %w",
					name, v.Kind(), kind, domain.ErrKindMismatch)
			}
		}
		fields[name] = v
	}
	return record.New(fields), nil
}

func (c *Collection) toRecords(docs []Document) ([]record.Record, error) {
	recs := make([]record.Record, len(docs))
	for i, doc := range docs {
		var err error
		recs[i], err = c.toRecord(doc)
		if err != nil {
			return nil, err
		}
	}
	return recs, nil
}

// sampleRecord converts a default-valued sample document for field
// kind inference.
func sampleRecord(doc Document) (record.Record, error) {
	fields := make(map[string]record.Value, len(doc))
	for name, raw := range doc {
		v, err := toValue(raw)
		if err != nil {
			return record.Record{}, fmt.Errorf("field %q: %w", name, err)
		}
		fields[name] = v
	}
	return record.New(fields), nil
}

func fromRecord(rec record.Record) Document {
	doc := make(Document, rec.Len())
	for name, v := range rec.Fields() {
		switch v.Kind() {
		case record.KindText:
			doc[name] = v.Text()
		case record.KindNumeric:
			doc[name] = v.Number()
		case record.KindTime:
			doc[name] = v.Time()
		}
	}
	return doc
}

func fromRecords(recs []record.Record) []Document {
	docs := make([]Document, len(recs))
	for i, rec := range recs {
		docs[i] = fromRecord(rec)
	}
	return docs
}

// toValue maps a Go value onto a typed field value.
func toValue(raw any) (record.Value, error) {
	switch v := raw.(type) {
	case string:
		return record.Text(v), nil
	case time.Time:
		return record.Time(v), nil
	case float64:
		return record.Number(v), nil
	case float32:
		return record.Number(float64(v)), nil
	case int:
		return record.Number(float64(v)), nil
	case int8:
		return record.Number(float64(v)), nil
	case int16:
		return record.Number(float64(v)), nil
	case int32:
		return record.Number(float64(v)), nil
	case int64:
		return record.Number(float64(v)), nil
	case uint:
		return record.Number(float64(v)), nil
	case uint8:
		return record.Number(float64(v)), nil
	case uint16:
		return record.Number(float64(v)), nil
	case uint32:
		return record.Number(float64(v)), nil
	case uint64:
		return record.Number(float64(v)), nil
	case record.Value:
		return v, nil
	default:
		return record.Value{}, fmt.Errorf("richdex: unsupported value type %T", raw)
	}
}

func toBounds(min, max any) (record.Value, record.Value, error) {
	lo, err := toValue(min)
	if err != nil {
		return record.Value{}, record.Value{}, err
	}
	hi, err := toValue(max)
	if err != nil {
		return record.Value{}, record.Value{}, err
	}
	return lo, hi, nil
}
