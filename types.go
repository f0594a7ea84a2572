package richdex

// FieldKind defines the value kind of a collection field.
type FieldKind string

// Field kind constants.
const (
	FieldText    FieldKind = "text"
	FieldNumeric FieldKind = "numeric"
	FieldTime    FieldKind = "time"
)

// Document is an untyped record for the low-level API. Values are
// strings, numbers (any Go numeric type) or time.Time. The "id" key
// holds the record identity; collections with auto ids assign it on
// insert.
type Document map[string]any
