// Package term provides the generic scene term: an ordered key/value map
// structure mirroring the dynamically-typed form a scene takes when it
// crosses a foreign-function boundary. Keys are present only when their
// data exists; absence, not a null value, signals "no data".
package term

import (
	"math"
	"strconv"
	"strings"
)

// Field is one key/value entry of a Map.
type Field struct {
	Key   string
	Value any
}

// Map is an ordered, growable association of field names to values.
// Insertion order is preserved. Values are restricted to the wire types:
// uint32, float64, string, []float64, []uint32, *Map and []*Map.
type Map struct {
	fields []Field
}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{}
}

// Set stores value under key, replacing an existing entry in place or
// appending a new one.
func (m *Map) Set(key string, value any) {
	for i := range m.fields {
		if m.fields[i].Key == key {
			m.fields[i].Value = value
			return
		}
	}
	m.fields = append(m.fields, Field{Key: key, Value: value})
}

// Get returns the raw value stored under key.
func (m *Map) Get(key string) (any, bool) {
	for i := range m.fields {
		if m.fields[i].Key == key {
			return m.fields[i].Value, true
		}
	}
	return nil, false
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Len returns the number of fields.
func (m *Map) Len() int {
	return len(m.fields)
}

// Fields returns the entries in insertion order.
func (m *Map) Fields() []Field {
	return m.fields
}

// Uint returns the value under key as uint32. Signed and floating inputs
// are accepted when they represent a non-negative whole number.
func (m *Map) Uint(key string) (uint32, bool) {
	v, ok := m.Get(key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case uint32:
		return n, true
	case int:
		if n >= 0 && int64(n) <= math.MaxUint32 {
			return uint32(n), true
		}
	case int64:
		if n >= 0 && n <= math.MaxUint32 {
			return uint32(n), true
		}
	case uint64:
		if n <= math.MaxUint32 {
			return uint32(n), true
		}
	case float64:
		if n >= 0 && n <= math.MaxUint32 && n == float64(uint32(n)) {
			return uint32(n), true
		}
	}
	return 0, false
}

// Float returns the value under key as float64.
func (m *Map) Float(key string) (float64, bool) {
	v, ok := m.Get(key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case uint32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// String returns the value under key as a string.
func (m *Map) String(key string) (string, bool) {
	v, ok := m.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Floats returns the value under key as a flat float64 sequence.
func (m *Map) Floats(key string) ([]float64, bool) {
	v, ok := m.Get(key)
	if !ok {
		return nil, false
	}
	f, ok := v.([]float64)
	return f, ok
}

// Uints returns the value under key as a uint32 sequence.
func (m *Map) Uints(key string) ([]uint32, bool) {
	v, ok := m.Get(key)
	if !ok {
		return nil, false
	}
	u, ok := v.([]uint32)
	return u, ok
}

// Maps returns the value under key as a list of nested maps.
func (m *Map) Maps(key string) ([]*Map, bool) {
	v, ok := m.Get(key)
	if !ok {
		return nil, false
	}
	l, ok := v.([]*Map)
	return l, ok
}

// Dump renders the map as a single-line human-readable string, mainly for
// diagnostics and CLI output.
func (m *Map) Dump() string {
	var sb strings.Builder
	dumpMap(&sb, m)
	return sb.String()
}

func dumpMap(sb *strings.Builder, m *Map) {
	sb.WriteByte('{')
	for i, f := range m.fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(f.Key)
		sb.WriteString(": ")
		dumpValue(sb, f.Value)
	}
	sb.WriteByte('}')
}

func dumpValue(sb *strings.Builder, v any) {
	switch val := v.(type) {
	case string:
		sb.WriteString(strconv.Quote(val))
	case uint32:
		sb.WriteString(strconv.FormatUint(uint64(val), 10))
	case float64:
		sb.WriteString(strconv.FormatFloat(val, 'g', -1, 64))
	case []float64:
		sb.WriteByte('[')
		for i, f := range val {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
		}
		sb.WriteByte(']')
	case []uint32:
		sb.WriteByte('[')
		for i, u := range val {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(strconv.FormatUint(uint64(u), 10))
		}
		sb.WriteByte(']')
	case *Map:
		dumpMap(sb, val)
	case []*Map:
		sb.WriteByte('[')
		for i, m := range val {
			if i > 0 {
				sb.WriteString(", ")
			}
			dumpMap(sb, m)
		}
		sb.WriteByte(']')
	default:
		sb.WriteString("<?>")
	}
}
