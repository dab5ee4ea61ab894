package oasgen

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// ValueKind tags the variant held by a Value.
type ValueKind int

const (
	KindInvalid ValueKind = iota // zero Value: the absent/undefined sentinel
	KindNull
	KindNumber
	KindString
	KindBool
	KindArray
	KindObject
)

func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindBool:
		return "boolean"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	}
	return "undefined"
}

// Value is a closed variant over the JSON data model. The zero Value is
// invalid and has no schema representation.
type Value struct {
	kind ValueKind
	num  Number
	str  string
	b    bool
	arr  []Value
	obj  *Object
}

// Number is a sampled JSON number. Text is the literal as it appeared in the
// input; Float is its float64 interpretation.
type Number struct {
	Text  string
	Float float64
}

// IsInteger reports whether the number has no fractional part.
func (n Number) IsInteger() bool {
	return !math.IsInf(n.Float, 0) && !math.IsNaN(n.Float) && n.Float == math.Trunc(n.Float)
}

// Null returns the null Value.
func Null() Value { return Value{kind: KindNull} }

// Bool returns a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// String returns a string Value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Float returns a number Value for f. NaN and infinities are not JSON
// numbers; FromGo rejects them before reaching here.
func Float(f float64) Value {
	return Value{kind: KindNumber, num: Number{Text: formatFloat(f), Float: f}}
}

// Int returns a number Value for i.
func Int(i int64) Value {
	return Value{kind: KindNumber, num: Number{Text: strconv.FormatInt(i, 10), Float: float64(i)}}
}

var jsonNumberRe = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

// NumberText returns a number Value from a JSON number literal. Text outside
// the JSON number grammar (NaN, Inf, 1_0, hex) is rejected.
func NumberText(text string) (Value, error) {
	if !jsonNumberRe.MatchString(text) {
		return Value{}, fmt.Errorf("not a JSON number: %q", text)
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		// ParseFloat reports out-of-range literals with ±Inf; those are still
		// syntactically valid JSON numbers.
		if ne, ok := err.(*strconv.NumError); !ok || ne.Err != strconv.ErrRange {
			return Value{}, err
		}
	}
	return Value{kind: KindNumber, num: Number{Text: text, Float: f}}, nil
}

// Array returns an array Value holding elems.
func Array(elems ...Value) Value {
	if elems == nil {
		elems = []Value{}
	}
	return Value{kind: KindArray, arr: elems}
}

// ObjectValue wraps an ordered object. A nil object yields an empty one.
func ObjectValue(o *Object) Value {
	if o == nil {
		o = NewObject()
	}
	return Value{kind: KindObject, obj: o}
}

func (v Value) Kind() ValueKind { return v.kind }
func (v Value) IsValid() bool   { return v.kind != KindInvalid }

// AsNumber returns the number payload; ok is false for other kinds.
func (v Value) AsNumber() (Number, bool) { return v.num, v.kind == KindNumber }

// AsString returns the string payload; ok is false for other kinds.
func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

// AsBool returns the boolean payload; ok is false for other kinds.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// Elems returns the elements of an array Value (nil for other kinds).
func (v Value) Elems() []Value { return v.arr }

// Object returns the members of an object Value (nil for other kinds).
func (v Value) Object() *Object { return v.obj }

// Object is a string-keyed mapping that remembers insertion order.
type Object struct {
	keys []string
	vals map[string]Value
}

// NewObject returns an empty ordered object.
func NewObject() *Object { return &Object{vals: map[string]Value{}} }

// Set stores v under key. Setting an existing key replaces the value and keeps
// the key at its first position.
func (o *Object) Set(key string, v Value) *Object {
	if _, ok := o.vals[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.vals[key] = v
	return o
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	if o == nil {
		return Value{}, false
	}
	v, ok := o.vals[key]
	return v, ok
}

// Keys returns the keys in insertion order. The slice must not be modified.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	return o.keys
}

// Len returns the number of members.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// formatFloat renders f the way a JavaScript host prints numbers: whole values
// below 1e21 without exponent, everything else in shortest form.
func formatFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
