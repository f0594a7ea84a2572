package richdex

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

const tagKey = "richdex"

var timeType = reflect.TypeOf(time.Time{})

// schemaMeta holds parsed struct tag metadata, cached per TypedIndex.
type schemaMeta struct {
	typ   reflect.Type // struct type for reconstruction
	idIdx int          // -1 on auto-id structs without an id field

	fields []fieldMapping
}

type fieldMapping struct {
	structIdx int
	name      string
	kind      FieldKind
	indexed   bool
}

// parseSchema reflects on T and extracts richdex struct tag metadata.
// Field kinds are inferred from Go types: string is text, numeric types
// are numeric, time.Time is time.
func parseSchema[T any]() (*schemaMeta, error) {
	var zero T
	t := reflect.TypeOf(zero)
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("richdex: type %v is not a struct", t)
	}

	meta := &schemaMeta{typ: t, idIdx: -1}

	for i := range t.NumField() {
		f := t.Field(i)
		tag := f.Tag.Get(tagKey)
		if tag == "" || tag == "-" {
			continue
		}
		if err := applyTag(meta, i, f, tag); err != nil {
			return nil, err
		}
	}

	if meta.idIdx == -1 && len(meta.fields) == 0 {
		return nil, fmt.Errorf("richdex: no tagged fields in %s", t)
	}
	return meta, nil
}

// applyTag processes a single struct field's richdex tag.
func applyTag(meta *schemaMeta, idx int, f reflect.StructField, tag string) error {
	parts := strings.SplitN(tag, ",", 2)
	name := parts[0]
	modifier := ""
	if len(parts) == 2 {
		modifier = parts[1]
	}

	kind, err := kindOf(f.Type)
	if err != nil {
		return fmt.Errorf("richdex: field %s: %w", f.Name, err)
	}

	switch modifier {
	case "id":
		if meta.idIdx != -1 {
			return fmt.Errorf("richdex: duplicate id tag on field %s", f.Name)
		}
		meta.idIdx = idx
	case "indexed":
		meta.fields = append(meta.fields, fieldMapping{
			structIdx: idx, name: name, kind: kind, indexed: true,
		})
	case "":
		meta.fields = append(meta.fields, fieldMapping{
			structIdx: idx, name: name, kind: kind, indexed: false,
		})
	default:
		return fmt.Errorf("richdex: unknown modifier %q on field %s", modifier, f.Name)
	}
	return nil
}

func kindOf(t reflect.Type) (FieldKind, error) {
	if t == timeType {
		return FieldTime, nil
	}
	switch t.Kind() {
	case reflect.String:
		return FieldText, nil
	case reflect.Float32, reflect.Float64,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return FieldNumeric, nil
	default:
		return "", fmt.Errorf("unsupported type %s", t)
	}
}

// collectionOptions builds the schema declaration for WithCollection.
func (m *schemaMeta) collectionOptions(extra ...CollectionOption) []CollectionOption {
	opts := make([]CollectionOption, 0, len(m.fields)+len(extra))
	for _, f := range m.fields {
		if f.indexed {
			opts = append(opts, WithField(f.name, f.kind))
		} else {
			opts = append(opts, WithStoredField(f.name, f.kind))
		}
	}
	return append(opts, extra...)
}

// toDocument converts a typed struct to Document using schema metadata.
func (m *schemaMeta) toDocument(item any) Document {
	v := reflect.ValueOf(item)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}

	doc := make(Document, len(m.fields)+1)
	if m.idIdx != -1 {
		if id, ok := idValue(v.Field(m.idIdx)); ok {
			doc["id"] = id
		}
	}
	for _, f := range m.fields {
		fv := v.Field(f.structIdx)
		switch f.kind {
		case FieldText:
			doc[f.name] = fv.String()
		case FieldNumeric:
			doc[f.name] = toFloat64(fv)
		case FieldTime:
			doc[f.name] = fv.Interface().(time.Time)
		}
	}
	return doc
}

// fromDocument converts a Document back to a typed struct.
func (m *schemaMeta) fromDocument(doc Document) any {
	v := reflect.New(m.typ).Elem()

	if m.idIdx != -1 {
		if raw, ok := doc["id"]; ok {
			setID(v.Field(m.idIdx), raw)
		}
	}
	for _, f := range m.fields {
		raw, ok := doc[f.name]
		if !ok {
			continue
		}
		fv := v.Field(f.structIdx)
		switch val := raw.(type) {
		case string:
			fv.SetString(val)
		case float64:
			setFloat(fv, val)
		case time.Time:
			fv.Set(reflect.ValueOf(val))
		}
	}
	return v.Interface()
}

// idValue renders a struct id field for the wire. A numeric id stays a
// number so it matches the id kind of auto-id collections. A zero id is
// treated as unset so those collections can allocate.
func idValue(v reflect.Value) (any, bool) {
	if v.Kind() == reflect.String {
		s := v.String()
		return s, s != ""
	}
	f := toFloat64(v)
	return f, f != 0
}

func setID(v reflect.Value, raw any) {
	switch val := raw.(type) {
	case string:
		if v.Kind() == reflect.String {
			v.SetString(val)
		} else if f, err := strconv.ParseFloat(val, 64); err == nil {
			setFloat(v, f)
		}
	case float64:
		if v.Kind() == reflect.String {
			v.SetString(strconv.FormatFloat(val, 'f', -1, 64))
		} else {
			setFloat(v, val)
		}
	}
}

func toFloat64(v reflect.Value) float64 {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return v.Float()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	default:
		return 0
	}
}

func setFloat(v reflect.Value, f float64) {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		v.SetFloat(f)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v.SetInt(int64(f))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v.SetUint(uint64(f))
	}
}
