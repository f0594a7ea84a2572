package chi

import (
	"fmt"
	"strconv"
	"time"

	"github.com/kailas-cloud/richdex/internal/domain/collection"
	"github.com/kailas-cloud/richdex/internal/domain/record"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error response codes.
const (
	codeBadRequest      = "bad_request"
	codeNotFound        = "not_found"
	codeCollectionMiss  = "collection_not_found"
	codeFilterNotFound  = "filter_not_found"
	codeFilterUnordered = "filter_unordered"
	codeMissingID       = "missing_id"
	codeNotIndexed      = "field_not_indexed"
	codeTextRange       = "text_range"
	codeKindMismatch    = "kind_mismatch"
	codeInternal        = "internal_error"
)

// docToMap renders a record for the API: text as strings, numerics as
// numbers, temporal fields as RFC 3339 UTC strings.
func docToMap(r record.Record) map[string]any {
	m := make(map[string]any, r.Len())
	for name, v := range r.Fields() {
		switch v.Kind() {
		case record.KindText:
			m[name] = v.Text()
		case record.KindNumeric:
			m[name] = v.Number()
		case record.KindTime:
			m[name] = v.Time().UTC().Format(time.RFC3339Nano)
		}
	}
	return m
}

// docFromMap parses an API document against the declared schema.
// Temporal fields accept RFC 3339 strings or epoch milliseconds.
func docFromMap(decl collection.Declaration, m map[string]any) (record.Record, error) {
	fields := make(map[string]record.Value, len(m))
	for name, raw := range m {
		kind, declared := decl.Kind(name)

		if declared && kind == record.KindTime {
			v, err := timeValue(name, raw)
			if err != nil {
				return record.Record{}, err
			}
			fields[name] = v
			continue
		}

		switch val := raw.(type) {
		case string:
			if declared && kind != record.KindText {
				return record.Record{}, fmt.Errorf("field %q: expected %s, got string", name, kind)
			}
			fields[name] = record.Text(val)
		case float64:
			if declared && kind == record.KindText {
				return record.Record{}, fmt.Errorf("field %q: expected text, got number", name)
			}
			fields[name] = record.Number(val)
		default:
			return record.Record{}, fmt.Errorf("field %q: unsupported value type %T", name, raw)
		}
	}
	return record.New(fields), nil
}

func timeValue(name string, raw any) (record.Value, error) {
	switch val := raw.(type) {
	case string:
		t, err := time.Parse(time.RFC3339Nano, val)
		if err != nil {
			return record.Value{}, fmt.Errorf("field %q: %w", name, err)
		}
		return record.Time(t), nil
	case float64:
		return record.Time(time.UnixMilli(int64(val))), nil
	default:
		return record.Value{}, fmt.Errorf("field %q: unsupported time value type %T", name, raw)
	}
}

// parseParamValue converts a query parameter into a typed value
// according to the field's declared kind.
func parseParamValue(kind record.Kind, raw string) (record.Value, error) {
	switch kind {
	case record.KindText:
		return record.Text(raw), nil
	case record.KindNumeric:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return record.Value{}, fmt.Errorf("numeric value %q: %w", raw, err)
		}
		return record.Number(f), nil
	case record.KindTime:
		if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			return record.Time(t), nil
		}
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return record.Value{}, fmt.Errorf("time value %q: want RFC 3339 or epoch millis", raw)
		}
		return record.Time(time.UnixMilli(ms)), nil
	default:
		return record.Value{}, fmt.Errorf("unknown kind %q", kind)
	}
}
