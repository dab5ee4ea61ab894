package oasgen

import (
	"encoding"
	"encoding/base64"
	"encoding/json"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

type undefined struct{}

// Undefined is the absent-value sentinel. It is distinct from nil, which
// converts to null. Inferring a schema from Undefined, or from any value that
// contains it, fails with *UnsupportedValueError.
var Undefined any = undefined{}

var (
	valueType     = reflect.TypeOf(Value{})
	objectPtrType = reflect.TypeOf((*Object)(nil))
	numberType    = reflect.TypeOf(json.Number(""))
	rawType       = reflect.TypeOf(json.RawMessage(nil))
	undefinedType = reflect.TypeOf(undefined{})

	jsonMarshalerType = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)

// FromGo converts an in-memory Go value into a Value following the
// encoding/json data model: structs use their JSON field names in declaration
// order, map keys are sorted, nil pointers, maps and slices become null, and
// json.Marshaler / encoding.TextMarshaler implementations are honored.
func FromGo(v any) (Value, error) {
	return fromGo(reflect.ValueOf(v), RootPath())
}

func fromGo(rv reflect.Value, p PathRef) (Value, error) {
	if !rv.IsValid() {
		return Null(), nil
	}
	switch rv.Type() {
	case valueType:
		if rv.CanInterface() {
			return rv.Interface().(Value), nil
		}
	case objectPtrType:
		if rv.CanInterface() {
			return ObjectValue(rv.Interface().(*Object)), nil
		}
	case undefinedType:
		return Value{}, &UnsupportedValueError{Path: p.Pointer()}
	case numberType:
		v, err := NumberText(rv.String())
		if err != nil {
			return Value{}, &UnsupportedValueError{Path: p.Pointer(), GoType: "json.Number(" + strconv.Quote(rv.String()) + ")"}
		}
		return v, nil
	case rawType:
		return fromRawJSON(rv.Bytes(), p)
	}

	if m, ok := marshalerOf(rv); ok {
		if jm, ok := m.Interface().(json.Marshaler); ok {
			b, err := jm.MarshalJSON()
			if err != nil {
				return Value{}, &UnsupportedValueError{Path: p.Pointer(), GoType: rv.Type().String()}
			}
			return fromRawJSON(b, p)
		}
		b, err := m.Interface().(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return Value{}, &UnsupportedValueError{Path: p.Pointer(), GoType: rv.Type().String()}
		}
		return String(string(b)), nil
	}

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null(), nil
		}
		return fromGo(rv.Elem(), p)
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		return Value{kind: KindNumber, num: Number{Text: strconv.FormatUint(u, 10), Float: float64(u)}}, nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return Value{}, &UnsupportedValueError{Path: p.Pointer(), GoType: rv.Type().String() + "(" + strconv.FormatFloat(f, 'g', -1, 64) + ")"}
		}
		return Float(f), nil
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Slice:
		if rv.IsNil() {
			return Null(), nil
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return String(base64.StdEncoding.EncodeToString(rv.Bytes())), nil
		}
		return fromGoList(rv, p)
	case reflect.Array:
		return fromGoList(rv, p)
	case reflect.Map:
		if rv.IsNil() {
			return Null(), nil
		}
		return fromGoMap(rv, p)
	case reflect.Struct:
		obj := NewObject()
		if err := addStructFields(obj, rv, p); err != nil {
			return Value{}, err
		}
		return ObjectValue(obj), nil
	}
	return Value{}, &UnsupportedValueError{Path: p.Pointer(), GoType: rv.Type().String()}
}

// marshalerOf returns rv, or its address when only the pointer type has the
// method, if it implements json.Marshaler or encoding.TextMarshaler. Nil
// pointers and interfaces are left to the caller so they become null.
func marshalerOf(rv reflect.Value) (reflect.Value, bool) {
	if rv.Kind() == reflect.Interface || !rv.CanInterface() {
		return reflect.Value{}, false
	}
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return reflect.Value{}, false
	}
	implements := func(t reflect.Type) bool {
		return t.Implements(jsonMarshalerType) || t.Implements(textMarshalerType)
	}
	if implements(rv.Type()) {
		return rv, true
	}
	if rv.Kind() != reflect.Pointer && rv.CanAddr() && implements(reflect.PointerTo(rv.Type())) {
		return rv.Addr(), true
	}
	return reflect.Value{}, false
}

func fromRawJSON(b []byte, p PathRef) (Value, error) {
	v, err := DecodeValue(JSONBytes(b))
	if err != nil {
		return Value{}, &UnsupportedValueError{Path: p.Pointer(), GoType: "invalid JSON from marshaler"}
	}
	return v, nil
}

func fromGoList(rv reflect.Value, p PathRef) (Value, error) {
	elems := make([]Value, rv.Len())
	for i := range elems {
		v, err := fromGo(rv.Index(i), p.Index(i))
		if err != nil {
			return Value{}, err
		}
		elems[i] = v
	}
	return Array(elems...), nil
}

func fromGoMap(rv reflect.Value, p PathRef) (Value, error) {
	type entry struct {
		key string
		val reflect.Value
	}
	entries := make([]entry, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k, ok := mapKeyString(iter.Key())
		if !ok {
			return Value{}, &UnsupportedValueError{Path: p.Pointer(), GoType: rv.Type().String()}
		}
		entries = append(entries, entry{key: k, val: iter.Value()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })

	obj := NewObject()
	for _, e := range entries {
		v, err := fromGo(e.val, p.Field(e.key))
		if err != nil {
			return Value{}, err
		}
		obj.Set(e.key, v)
	}
	return ObjectValue(obj), nil
}

func mapKeyString(k reflect.Value) (string, bool) {
	if k.Kind() == reflect.String {
		return k.String(), true
	}
	if k.CanInterface() && k.Type().Implements(textMarshalerType) {
		b, err := k.Interface().(encoding.TextMarshaler).MarshalText()
		return string(b), err == nil
	}
	switch k.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(k.Uint(), 10), true
	}
	return "", false
}

// addStructFields appends the exported fields of rv to obj. Untagged embedded
// structs are flattened; on a name clash the first field wins.
func addStructFields(obj *Object, rv reflect.Value, p PathRef) error {
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		name, opts := parseJSONTag(sf.Tag.Get("json"))
		if name == "-" && opts == "" {
			continue
		}
		fv := rv.Field(i)
		if sf.Anonymous && name == "" {
			ft := sf.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				if fv.Kind() == reflect.Pointer {
					if fv.IsNil() {
						continue
					}
					fv = fv.Elem()
				}
				if err := addStructFields(obj, fv, p); err != nil {
					return err
				}
				continue
			}
		}
		if !sf.IsExported() {
			continue
		}
		if name == "" {
			name = sf.Name
		}
		if _, dup := obj.Get(name); dup {
			continue
		}
		if hasTagOption(opts, "omitempty") && isEmptyValue(fv) {
			continue
		}
		v, err := fromGo(fv, p.Field(name))
		if err != nil {
			return err
		}
		if hasTagOption(opts, "string") && (v.Kind() == KindNumber || v.Kind() == KindBool || v.Kind() == KindString) {
			v = String(scalarText(v))
		}
		obj.Set(name, v)
	}
	return nil
}

func parseJSONTag(tag string) (string, string) {
	name, opts, _ := strings.Cut(tag, ",")
	return name, opts
}

func hasTagOption(opts, want string) bool {
	for opts != "" {
		var o string
		o, opts, _ = strings.Cut(opts, ",")
		if o == want {
			return true
		}
	}
	return false
}

func scalarText(v Value) string {
	switch v.Kind() {
	case KindNumber:
		return v.num.Text
	case KindBool:
		return strconv.FormatBool(v.b)
	}
	return strconv.Quote(v.str)
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Interface, reflect.Pointer:
		return v.IsZero()
	}
	return false
}
