package record

import (
	"strconv"
	"time"
)

// Kind is the value category of a record field.
type Kind string

// Field value kinds.
const (
	// KindText is an exact-match string value.
	KindText    Kind = "text"
	KindNumeric Kind = "numeric"
	KindTime    Kind = "time"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindText || k == KindNumeric || k == KindTime
}

// Value is a closed tagged union over the three field kinds.
// The zero Value has no kind and represents an absent field.
type Value struct {
	kind Kind
	text string
	num  float64
	ts   time.Time
}

// Text creates a text value.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Number creates a numeric value.
func Number(f float64) Value { return Value{kind: KindNumeric, num: f} }

// Time creates a temporal value.
func Time(t time.Time) Value { return Value{kind: KindTime, ts: t} }

// Kind returns the value category.
func (v Value) Kind() Kind { return v.kind }

// IsZero reports whether the value is absent.
func (v Value) IsZero() bool { return v.kind == "" }

// Text returns the string payload of a text value.
func (v Value) Text() string { return v.text }

// Number returns the numeric payload of a numeric value.
func (v Value) Number() float64 { return v.num }

// Time returns the temporal payload of a temporal value.
func (v Value) Time() time.Time { return v.ts }

// Score returns the ordering key for range-capable structures:
// the numeric value itself, or the epoch-millisecond form of a
// temporal value. Text values have no score.
func (v Value) Score() (float64, bool) {
	switch v.kind {
	case KindNumeric:
		return v.num, true
	case KindTime:
		return float64(v.ts.UnixMilli()), true
	default:
		return 0, false
	}
}

// String returns the canonical string form used in substrate keys
// and set members.
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumeric:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindTime:
		return strconv.FormatInt(v.ts.UnixMilli(), 10)
	default:
		return ""
	}
}

// Equal reports value equality. Temporal values compare by instant.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindText:
		return v.text == o.text
	case KindNumeric:
		return v.num == o.num
	case KindTime:
		return v.ts.Equal(o.ts)
	default:
		return true
	}
}
