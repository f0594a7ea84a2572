// Package collection defines the immutable per-collection declaration:
// the schema (field kinds and index flags) plus the named filter views.
// The declaration is fixed at construction and shared by every other
// component; nothing mutates it afterwards.
package collection

import (
	"fmt"

	"github.com/kailas-cloud/richdex/internal/domain"
	"github.com/kailas-cloud/richdex/internal/domain/collection/field"
	"github.com/kailas-cloud/richdex/internal/domain/filter"
	"github.com/kailas-cloud/richdex/internal/domain/record"
)

// Declaration is the immutable configuration of one collection.
type Declaration struct {
	name    string
	fields  map[string]field.Field
	order   []string // field declaration order
	filters []filter.Definition
	byName  map[string]filter.Definition
	autoID  bool
}

// New validates and creates a Declaration.
//
// Configuration errors (all wrap domain.ErrInvalidSchema): empty name,
// duplicate field or filter names, a declared "id" field, or a filter
// order field that is undeclared or text-kind. Ordering by "id" is
// allowed only for auto-id collections, where ids are numeric.
func New(name string, fields []field.Field, filters []filter.Definition, autoID bool) (Declaration, error) {
	if name == "" {
		return Declaration{}, fmt.Errorf("collection name is required: %w", domain.ErrInvalidSchema)
	}

	fieldMap := make(map[string]field.Field, len(fields))
	order := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.Name() == record.IDField {
			return Declaration{}, fmt.Errorf(
				"collection %s: field name %q is reserved: %w", name, record.IDField, domain.ErrInvalidSchema)
		}
		if _, dup := fieldMap[f.Name()]; dup {
			return Declaration{}, fmt.Errorf(
				"collection %s: duplicate field %q: %w", name, f.Name(), domain.ErrInvalidSchema)
		}
		fieldMap[f.Name()] = f
		order = append(order, f.Name())
	}

	byName := make(map[string]filter.Definition, len(filters))
	for _, flt := range filters {
		if _, dup := byName[flt.Name()]; dup {
			return Declaration{}, fmt.Errorf(
				"collection %s: duplicate filter %q: %w", name, flt.Name(), domain.ErrInvalidSchema)
		}
		if err := checkOrderField(name, flt, fieldMap, autoID); err != nil {
			return Declaration{}, err
		}
		byName[flt.Name()] = flt
	}

	return Declaration{
		name:    name,
		fields:  fieldMap,
		order:   order,
		filters: filters,
		byName:  byName,
		autoID:  autoID,
	}, nil
}

// NewFromSample infers field kinds from a representative default-valued
// record and creates a Declaration. Every field named in indexed must be
// present in the sample; otherwise its kind is unknown and the
// declaration fails.
func NewFromSample(
	name string, sample record.Record, indexed []string,
	filters []filter.Definition, autoID bool,
) (Declaration, error) {
	indexedSet := make(map[string]bool, len(indexed))
	for _, n := range indexed {
		indexedSet[n] = true
	}

	fields := make([]field.Field, 0, sample.Len())
	for fname, v := range sample.Fields() {
		if fname == record.IDField {
			continue
		}
		f, err := field.New(fname, v.Kind(), indexedSet[fname])
		if err != nil {
			return Declaration{}, fmt.Errorf("collection %s: %w: %w", name, err, domain.ErrInvalidSchema)
		}
		fields = append(fields, f)
		delete(indexedSet, fname)
	}

	delete(indexedSet, record.IDField)
	for missing := range indexedSet {
		return Declaration{}, fmt.Errorf(
			"collection %s: indexed field %q absent from sample record: %w",
			name, missing, domain.ErrInvalidSchema)
	}

	return New(name, fields, filters, autoID)
}

func checkOrderField(col string, flt filter.Definition, fields map[string]field.Field, autoID bool) error {
	if !flt.Ordered() {
		return nil
	}
	if flt.OrderField() == record.IDField {
		if !autoID {
			return fmt.Errorf(
				"collection %s: filter %q orders by id, which is only numeric for auto-id collections: %w",
				col, flt.Name(), domain.ErrInvalidSchema)
		}
		return nil
	}
	f, ok := fields[flt.OrderField()]
	if !ok {
		return fmt.Errorf(
			"collection %s: filter %q order field %q is not declared: %w",
			col, flt.Name(), flt.OrderField(), domain.ErrInvalidSchema)
	}
	if f.Kind() == record.KindText {
		return fmt.Errorf(
			"collection %s: filter %q order field %q is text-kind: %w",
			col, flt.Name(), flt.OrderField(), domain.ErrInvalidSchema)
	}
	return nil
}

// Name returns the collection name.
func (d Declaration) Name() string { return d.name }

// AutoID reports whether ids are allocated from the shared counter.
func (d Declaration) AutoID() bool { return d.autoID }

// Field returns a declared field by name.
func (d Declaration) Field(name string) (field.Field, bool) {
	f, ok := d.fields[name]
	return f, ok
}

// Fields returns the declared fields in declaration order.
func (d Declaration) Fields() []field.Field {
	out := make([]field.Field, 0, len(d.order))
	for _, n := range d.order {
		out = append(out, d.fields[n])
	}
	return out
}

// IndexedFields returns the declared fields carrying an index,
// in declaration order.
func (d Declaration) IndexedFields() []field.Field {
	out := make([]field.Field, 0, len(d.order))
	for _, n := range d.order {
		if f := d.fields[n]; f.Indexed() {
			out = append(out, f)
		}
	}
	return out
}

// Filters returns the declared filters in declaration order.
func (d Declaration) Filters() []filter.Definition { return d.filters }

// Filter returns a declared filter by name.
func (d Declaration) Filter(name string) (filter.Definition, bool) {
	f, ok := d.byName[name]
	return f, ok
}

// Kind returns the declared kind of a field. The reserved id field
// reports numeric for auto-id collections and text otherwise.
func (d Declaration) Kind(name string) (record.Kind, bool) {
	if name == record.IDField {
		if d.autoID {
			return record.KindNumeric, true
		}
		return record.KindText, true
	}
	f, ok := d.fields[name]
	if !ok {
		return "", false
	}
	return f.Kind(), true
}
