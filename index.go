package richdex

import (
	"context"
	"fmt"
)

// TypedIndex is a generic, schema-first view of a collection backed by
// a richdex Client. Schema is inferred from T's struct tags at
// construction time.
type TypedIndex[T any] struct {
	name   string
	client *Client
	meta   *schemaMeta
}

// NewIndex creates a typed handle for the given collection name.
// T must be a struct with richdex tags. Schema is parsed once and
// cached.
func NewIndex[T any](client *Client, name string) (*TypedIndex[T], error) {
	meta, err := parseSchema[T]()
	if err != nil {
		return nil, fmt.Errorf("new index %q: %w", name, err)
	}
	return &TypedIndex[T]{name: name, client: client, meta: meta}, nil
}

// Declare builds the WithCollection option matching T's schema, for
// wiring the collection into a Client. Filter views and WithAutoID go
// in extra.
func Declare[T any](name string, extra ...CollectionOption) (Option, error) {
	meta, err := parseSchema[T]()
	if err != nil {
		return nil, fmt.Errorf("declare %q: %w", name, err)
	}
	return WithCollection(name, meta.collectionOptions(extra...)...), nil
}

// Insert stores a typed item and returns it with any assigned id.
func (idx *TypedIndex[T]) Insert(ctx context.Context, item T) (T, error) {
	var zero T
	col, err := idx.collection()
	if err != nil {
		return zero, err
	}
	stored, err := col.Insert(ctx, idx.meta.toDocument(item))
	if err != nil {
		return zero, err
	}
	return idx.typed(stored)
}

// InsertMany stores items in order.
func (idx *TypedIndex[T]) InsertMany(ctx context.Context, items []T) ([]T, error) {
	col, err := idx.collection()
	if err != nil {
		return nil, err
	}
	docs := make([]Document, len(items))
	for i, item := range items {
		docs[i] = idx.meta.toDocument(item)
	}
	stored, err := col.InsertMany(ctx, docs)
	if err != nil {
		return nil, err
	}
	return idx.typedSlice(stored)
}

// Upsert replaces an item wholly.
func (idx *TypedIndex[T]) Upsert(ctx context.Context, item T) (T, error) {
	var zero T
	col, err := idx.collection()
	if err != nil {
		return zero, err
	}
	stored, err := col.Upsert(ctx, idx.meta.toDocument(item))
	if err != nil {
		return zero, err
	}
	return idx.typed(stored)
}

// Get retrieves a typed item by id.
func (idx *TypedIndex[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	col, err := idx.collection()
	if err != nil {
		return zero, err
	}
	doc, err := col.FindByID(ctx, id)
	if err != nil {
		return zero, err
	}
	return idx.typed(doc)
}

// Delete removes an item by id.
func (idx *TypedIndex[T]) Delete(ctx context.Context, id string) error {
	col, err := idx.collection()
	if err != nil {
		return err
	}
	return col.Remove(ctx, id)
}

// FindBy returns items whose indexed field equals value.
func (idx *TypedIndex[T]) FindBy(ctx context.Context, field string, value any) ([]T, error) {
	col, err := idx.collection()
	if err != nil {
		return nil, err
	}
	docs, err := col.FindBy(ctx, field, value)
	if err != nil {
		return nil, err
	}
	return idx.typedSlice(docs)
}

// FindRangeBy returns items whose numeric or time field lies in
// [min, max] inclusive, ascending.
func (idx *TypedIndex[T]) FindRangeBy(ctx context.Context, field string, min, max any) ([]T, error) {
	col, err := idx.collection()
	if err != nil {
		return nil, err
	}
	docs, err := col.FindRangeBy(ctx, field, min, max)
	if err != nil {
		return nil, err
	}
	return idx.typedSlice(docs)
}

// FindByFilter returns the members of a filter view.
func (idx *TypedIndex[T]) FindByFilter(ctx context.Context, name string) ([]T, error) {
	col, err := idx.collection()
	if err != nil {
		return nil, err
	}
	docs, err := col.FindByFilter(ctx, name)
	if err != nil {
		return nil, err
	}
	return idx.typedSlice(docs)
}

func (idx *TypedIndex[T]) collection() (*Collection, error) {
	if idx.client == nil {
		return nil, fmt.Errorf("index %q: client not set", idx.name)
	}
	return idx.client.Collection(idx.name)
}

func (idx *TypedIndex[T]) typed(doc Document) (T, error) {
	item, ok := idx.meta.fromDocument(doc).(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("index %q: type assertion failed", idx.name)
	}
	return item, nil
}

func (idx *TypedIndex[T]) typedSlice(docs []Document) ([]T, error) {
	items := make([]T, len(docs))
	for i, doc := range docs {
		var err error
		items[i], err = idx.typed(doc)
		if err != nil {
			return nil, err
		}
	}
	return items, nil
}
