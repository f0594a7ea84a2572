package record

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kailas-cloud/richdex/internal/domain/collection"
	"github.com/kailas-cloud/richdex/internal/domain/record"
)

// encodeRecord serializes a record to its self-describing JSON payload.
// Temporal values are stored as epoch milliseconds so the sorted-index
// score and the stored form agree.
func encodeRecord(r record.Record) (string, error) {
	m := make(map[string]any, r.Len())
	for name, v := range r.Fields() {
		switch v.Kind() {
		case record.KindText:
			m[name] = v.Text()
		case record.KindNumeric:
			m[name] = v.Number()
		case record.KindTime:
			m[name] = v.Time().UnixMilli()
		}
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("marshal record %s: %w", r.Key(), err)
	}
	return string(data), nil
}

// decodeRecord parses a payload back into a record, reconstituting every
// field whose declared kind is temporal from its epoch-millisecond form.
// All other kinds pass through unchanged.
func decodeRecord(decl collection.Declaration, payload string) (record.Record, error) {
	var m map[string]any
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		return record.Record{}, fmt.Errorf("unmarshal record: %w", err)
	}

	fields := make(map[string]record.Value, len(m))
	for name, raw := range m {
		v, err := decodeValue(decl, name, raw)
		if err != nil {
			return record.Record{}, err
		}
		fields[name] = v
	}
	return record.Reconstruct(fields), nil
}

func decodeValue(decl collection.Declaration, name string, raw any) (record.Value, error) {
	kind, declared := decl.Kind(name)

	switch val := raw.(type) {
	case string:
		return record.Text(val), nil
	case float64:
		if declared && kind == record.KindTime {
			return record.Time(time.UnixMilli(int64(val))), nil
		}
		return record.Number(val), nil
	default:
		return record.Value{}, fmt.Errorf("field %q: unsupported payload type %T", name, raw)
	}
}
