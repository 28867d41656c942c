package fbx

import "strings"

// Record is one node of the raw FBX container tree, shared by the binary
// and ascii readers and writers. Attribute values are restricted to
// int16, int32, int64, float32, float64, bool, string, []byte and the
// numeric array types []int32, []int64, []float32, []float64.
type Record struct {
	Name     string
	Attrs    []any
	Children []*Record
}

// NewRecord builds a record with the given attributes.
func NewRecord(name string, attrs ...any) *Record {
	return &Record{Name: name, Attrs: attrs}
}

// Add appends child records and returns r for chaining.
func (r *Record) Add(children ...*Record) *Record {
	r.Children = append(r.Children, children...)
	return r
}

// Child returns the first child with the given name, or nil. Safe on nil.
func (r *Record) Child(name string) *Record {
	if r == nil {
		return nil
	}
	for _, c := range r.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ChildAll returns every child with the given name. Safe on nil.
func (r *Record) ChildAll(name string) []*Record {
	if r == nil {
		return nil
	}
	var out []*Record
	for _, c := range r.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Attr returns the i-th attribute or nil. Safe on nil.
func (r *Record) Attr(i int) any {
	if r == nil || i < 0 || i >= len(r.Attrs) {
		return nil
	}
	return r.Attrs[i]
}

// Int returns the i-th attribute as int64, or def when absent or
// non-numeric.
func (r *Record) Int(i int, def int64) int64 {
	switch v := r.Attr(i).(type) {
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	case float32:
		return int64(v)
	case float64:
		return int64(v)
	}
	return def
}

// Float returns the i-th attribute as float64, or def.
func (r *Record) Float(i int, def float64) float64 {
	switch v := r.Attr(i).(type) {
	case int16:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case float32:
		return float64(v)
	case float64:
		return v
	}
	return def
}

// Str returns the i-th attribute as a string, or "".
func (r *Record) Str(i int) string {
	if s, ok := r.Attr(i).(string); ok {
		return s
	}
	return ""
}

// Floats returns the i-th attribute as a float64 slice, converting from
// float32 arrays when needed.
func (r *Record) Floats(i int) []float64 {
	switch v := r.Attr(i).(type) {
	case []float64:
		return v
	case []float32:
		out := make([]float64, len(v))
		for j, f := range v {
			out[j] = float64(f)
		}
		return out
	}
	return nil
}

// Ints returns the i-th attribute as an int64 slice, converting from the
// other numeric array encodings when needed.
func (r *Record) Ints(i int) []int64 {
	switch v := r.Attr(i).(type) {
	case []int64:
		return v
	case []int32:
		out := make([]int64, len(v))
		for j, n := range v {
			out[j] = int64(n)
		}
		return out
	case []float64:
		out := make([]int64, len(v))
		for j, f := range v {
			out[j] = int64(f)
		}
		return out
	case []float32:
		out := make([]int64, len(v))
		for j, f := range v {
			out[j] = int64(f)
		}
		return out
	}
	return nil
}

// objectName extracts the display name from an object record's name
// attribute. Binary files store "Name\x00\x01Class", ascii files
// "Class::Name".
func objectName(r *Record) string {
	s := r.Str(1)
	if i := strings.Index(s, "\x00\x01"); i >= 0 {
		return s[:i]
	}
	if i := strings.Index(s, "::"); i >= 0 {
		return s[i+2:]
	}
	return s
}

// joinObjectName builds the binary-convention name attribute.
func joinObjectName(name, class string) string {
	return name + "\x00\x01" + class
}
