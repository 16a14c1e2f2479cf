package value

import (
	"math"
	"strconv"
)

// Kind represents the semantic type of a Value
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindList
	KindMap
)

// String is used to satisfy fmt.Stringer interface
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	}
	return "unknown"
}

// Value represents a parsed, format-neutral document tree.
//
// Values are treated as immutable snapshots: every operation in this package returns a new Value sharing unmodified
// substructure with the input, so callers holding a prior reference observe no change.
type Value interface {
	Kind() Kind
}

// Null represents absent / null value
type Null struct{}

// Bool represents boolean value
type Bool bool

// Number represents numeric value, stored as it's canonical decimal literal to avoid precision loss on round-trips
type Number string

// String represents string value
type String string

// List represents ordered list of values
type List []Value

// Field represents single key and value pair of Map
type Field struct {
	Key   string
	Value Value
}

// Map represents ordered string to Value mapping. Kept as a slice to preserve insertion order.
type Map []Field

func (Null) Kind() Kind   { return KindNull }
func (Bool) Kind() Kind   { return KindBool }
func (Number) Kind() Kind { return KindNumber }
func (String) Kind() Kind { return KindString }
func (List) Kind() Kind   { return KindList }
func (Map) Kind() Kind    { return KindMap }

// NumberOf returns Number with canonical decimal representation of <f>
func NumberOf(f float64) Number {
	if f == math.Trunc(f) && math.Abs(f) < 1e21 {
		return Number(strconv.FormatFloat(f, 'f', -1, 64))
	}
	return Number(strconv.FormatFloat(f, 'g', -1, 64))
}

// NumberOfInt returns Number with decimal representation of <i>
func NumberOfInt(i int64) Number {
	return Number(strconv.FormatInt(i, 10))
}

// Float64 returns numeric value of <n> and false if it's literal can not be parsed
func (n Number) Float64() (float64, bool) {
	f, err := strconv.ParseFloat(string(n), 64)
	return f, err == nil
}

// IndexOf returns index of the field with <key> in <m> or -1 if no such field exist
func (m Map) IndexOf(key string) int {
	for i, field := range m {
		if field.Key == key {
			return i
		}
	}
	return -1
}

// Find returns value of the field with <key> in <m> and false if no such field exist
func (m Map) Find(key string) (Value, bool) {
	if i := m.IndexOf(key); i >= 0 {
		return m[i].Value, true
	}
	return nil, false
}

// Keys returns keys of <m> in insertion order
func (m Map) Keys() []string {
	keys := make([]string, len(m))
	for i, field := range m {
		keys[i] = field.Key
	}
	return keys
}

// With returns copy of <m> with <key> set to <v>, appending the field if it did not exist
func (m Map) With(key string, v Value) Map {
	if i := m.IndexOf(key); i >= 0 {
		out := make(Map, len(m))
		copy(out, m)
		out[i].Value = v
		return out
	}
	out := make(Map, len(m), len(m)+1)
	copy(out, m)
	return append(out, Field{Key: key, Value: v})
}

// Without returns copy of <m> with the field with <key> removed or <m> itself if no such field exist
func (m Map) Without(key string) Map {
	i := m.IndexOf(key)
	if i < 0 {
		return m
	}
	out := make(Map, 0, len(m)-1)
	out = append(out, m[:i]...)
	return append(out, m[i+1:]...)
}

// Equal returns true if <a> and <b> are deeply equal.
//
// Maps are compared by key set regardless of insertion order. Numbers are compared by literal first, then numerically,
// so '1.0' equals '1'.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Null:
		return true
	case Bool:
		return av == b.(Bool)
	case String:
		return av == b.(String)
	case Number:
		bv := b.(Number)
		if av == bv {
			return true
		}
		af, aOk := av.Float64()
		bf, bOk := bv.Float64()
		return aOk && bOk && af == bf
	case List:
		bv := b.(List)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Map:
		bv := b.(Map)
		if len(av) != len(bv) {
			return false
		}
		for _, field := range av {
			other, ok := bv.Find(field.Key)
			if !ok || !Equal(field.Value, other) {
				return false
			}
		}
		return true
	}
	return false
}
