package record

// IDField is the reserved field name carrying the record identifier.
const IDField = "id"

// Record is one logical document: a mapping from field name to value.
// Fields with no value are simply absent. Records are value objects;
// mutation helpers return copies.
type Record struct {
	fields map[string]Value
}

// New creates a Record from the given fields. Zero values are dropped.
func New(fields map[string]Value) Record {
	c := make(map[string]Value, len(fields))
	for k, v := range fields {
		if v.IsZero() {
			continue
		}
		c[k] = v
	}
	return Record{fields: c}
}

// Reconstruct creates a Record without copying (storage hydration).
func Reconstruct(fields map[string]Value) Record {
	return Record{fields: fields}
}

// ID returns the record identifier value, if present.
func (r Record) ID() (Value, bool) {
	v, ok := r.fields[IDField]
	return v, ok
}

// Key returns the string form of the identifier, or "" when absent.
func (r Record) Key() string {
	v, ok := r.fields[IDField]
	if !ok {
		return ""
	}
	return v.String()
}

// Get returns the value of a field, if present.
func (r Record) Get(name string) (Value, bool) {
	v, ok := r.fields[name]
	return v, ok
}

// Fields returns the underlying field map. Callers must not mutate it.
func (r Record) Fields() map[string]Value { return r.fields }

// Len returns the number of present fields.
func (r Record) Len() int { return len(r.fields) }

// WithID returns a copy of the record carrying the given identifier.
func (r Record) WithID(id Value) Record {
	c := make(map[string]Value, len(r.fields)+1)
	for k, v := range r.fields {
		c[k] = v
	}
	c[IDField] = id
	return Record{fields: c}
}

// Equal reports field-for-field equality, field order irrelevant.
func (r Record) Equal(o Record) bool {
	if len(r.fields) != len(o.fields) {
		return false
	}
	for k, v := range r.fields {
		ov, ok := o.fields[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}
