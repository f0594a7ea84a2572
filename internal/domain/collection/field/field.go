// Package field defines the immutable field descriptors a collection
// schema is made of.
package field

import (
	"fmt"

	"github.com/kailas-cloud/richdex/internal/domain/record"
)

// Field is an immutable value object describing one schema field:
// its value kind and whether it carries a secondary index.
type Field struct {
	name    string
	kind    record.Kind
	indexed bool
}

// New validates and creates a Field.
// Name must be non-empty, max 64 chars. Kind must be a known kind.
func New(name string, kind record.Kind, indexed bool) (Field, error) {
	if name == "" {
		return Field{}, fmt.Errorf("field name is required")
	}
	if len(name) > 64 {
		return Field{}, fmt.Errorf("field name %q too long (max 64)", name)
	}
	if !kind.Valid() {
		return Field{}, fmt.Errorf("invalid kind %q for field %q", kind, name)
	}
	return Field{name: name, kind: kind, indexed: indexed}, nil
}

// Reconstruct creates a Field without validation (storage hydration).
func Reconstruct(name string, kind record.Kind, indexed bool) Field {
	return Field{name: name, kind: kind, indexed: indexed}
}

// Name returns the field name.
func (f Field) Name() string { return f.name }

// Kind returns the field value kind.
func (f Field) Kind() record.Kind { return f.kind }

// Indexed reports whether the field carries a secondary index.
func (f Field) Indexed() bool { return f.indexed }
