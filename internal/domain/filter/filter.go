// Package filter defines named, predicate-driven materialized views
// over a collection's records.
package filter

import (
	"fmt"

	"github.com/kailas-cloud/richdex/internal/domain/record"
)

// Predicate decides whether a record belongs to a filter view.
type Predicate interface {
	Match(r record.Record) (bool, error)
}

// Func adapts a plain function to the Predicate interface.
type Func func(r record.Record) bool

// Match implements Predicate.
func (f Func) Match(r record.Record) (bool, error) { return f(r), nil }

// Definition is an immutable filter declaration: a name, a predicate,
// and an optional order field. With an order field the materialized
// view is score-ordered by that field's value; without one it is an
// unordered id set.
type Definition struct {
	name       string
	pred       Predicate
	orderField string
}

// New creates an unordered filter definition.
func New(name string, pred Predicate) (Definition, error) {
	return NewOrdered(name, pred, "")
}

// NewOrdered creates a filter definition ordered by the given field.
// An empty orderField yields an unordered view.
func NewOrdered(name string, pred Predicate, orderField string) (Definition, error) {
	if name == "" {
		return Definition{}, fmt.Errorf("filter name is required")
	}
	if pred == nil {
		return Definition{}, fmt.Errorf("filter %q: predicate is required", name)
	}
	return Definition{name: name, pred: pred, orderField: orderField}, nil
}

// Name returns the filter name.
func (d Definition) Name() string { return d.name }

// OrderField returns the order field name, or "" for unordered views.
func (d Definition) OrderField() string { return d.orderField }

// Ordered reports whether the view is score-ordered.
func (d Definition) Ordered() bool { return d.orderField != "" }

// Match evaluates the predicate against a record.
func (d Definition) Match(r record.Record) (bool, error) {
	return d.pred.Match(r)
}
