package oasgen

import (
	"math"
	"regexp"
)

const (
	int32Bound     = 2147483647 // exclusive on both sides
	maxSafeInteger = 1<<53 - 1
)

// sep is one UTF-16 code unit other than a line terminator. It separates the
// date from the time and is deliberately not restricted to 'T'.
const sep = `[^\n\r\x{2028}\x{2029}\x{10000}-\x{10FFFF}]`

var (
	dateRe     = regexp.MustCompile(`^(19|20)\d{2}-(0[1-9]|1[0-2])-(0[1-9]|[12][0-9]|3[01])$`)
	dateTimeRe = regexp.MustCompile(`^(19|20)\d{2}-(0[1-9]|1[0-2])-(0[1-9]|[12][0-9]|3[01])` + sep +
		`([0-1][0-9]|2[0-3]):[0-5][0-9]:[0-5][0-9](\.[0-9]{1,3})?(Z|(\+|-)([0-1][0-9]|2[0-3]):[0-5][0-9])$`)
)

// Infer builds the schema describing the shape of v. It fails with
// *UnsupportedValueError when v, or any value nested in it, is invalid.
func Infer(v Value, cfg Config) (Schema, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return inferValue(v, &cfg, RootPath())
}

func inferValue(v Value, cfg *Config, p PathRef) (Schema, error) {
	switch v.kind {
	case KindNull:
		return &NullableSchema{As: cfg.nullType()}, nil
	case KindNumber:
		return inferNumber(v.num, cfg), nil
	case KindArray:
		return inferArray(v.arr, cfg, p)
	case KindObject:
		return inferObject(v.obj, cfg, p)
	case KindString:
		return inferString(v.str, cfg), nil
	case KindBool:
		s := &BooleanSchema{}
		if cfg.IncludeExamples {
			b := v.b
			s.Example = &b
		}
		return s, nil
	}
	return nil, &UnsupportedValueError{Path: p.Pointer()}
}

func inferNumber(n Number, cfg *Config) Schema {
	var example *Number
	if cfg.IncludeExamples {
		example = &n
	}
	if n.IsInteger() && cfg.AllowIntegers {
		return &IntegerSchema{IntegerFormat: integerFormat(n.Float), Example: example}
	}
	return &NumberSchema{Example: example}
}

func integerFormat(f float64) string {
	switch {
	case f < int32Bound && f > -int32Bound:
		return FormatInt32
	case math.Abs(f) <= maxSafeInteger:
		return FormatInt64
	}
	return FormatUnsafe
}

func inferString(s string, cfg *Config) Schema {
	out := &StringSchema{}
	switch {
	case dateTimeRe.MatchString(s):
		out.StringFormat = FormatDateTime
	case dateRe.MatchString(s):
		out.StringFormat = FormatDate
	}
	if cfg.IncludeExamples {
		out.Example = &s
	}
	return out
}

func inferObject(obj *Object, cfg *Config, p PathRef) (Schema, error) {
	props := NewProperties()
	for _, k := range obj.Keys() {
		v, _ := obj.Get(k)
		s, err := inferValue(v, cfg, p.Field(k))
		if err != nil {
			return nil, err
		}
		props.Set(k, s)
	}
	return &ObjectSchema{Properties: props}, nil
}

func inferArray(elems []Value, cfg *Config, p PathRef) (Schema, error) {
	if cfg.AllowOneOf {
		return inferArrayOneOf(elems, cfg, p)
	}
	return inferArrayMerged(elems, cfg, p)
}

// inferArrayOneOf infers every element and keeps the first of each group of
// similar schemas, in first-seen order.
func inferArrayOneOf(elems []Value, cfg *Config, p PathRef) (Schema, error) {
	var variants []Schema
	for i, e := range elems {
		s, err := inferValue(e, cfg, p.Index(i))
		if err != nil {
			return nil, err
		}
		if !containsSimilar(variants, s) {
			variants = append(variants, s)
		}
	}
	out := &ArraySchema{}
	switch len(variants) {
	case 0:
	case 1:
		out.Items = &Items{Single: variants[0]}
	default:
		out.Items = &Items{OneOf: variants}
	}
	return out, nil
}

func containsSimilar(list []Schema, s Schema) bool {
	for _, have := range list {
		if similar(have, s) {
			return true
		}
	}
	return false
}

// similar reports whether two element schemas collapse into one union member:
// primitives with equal type and format, or objects with equal property name
// sets. Arrays are never similar.
func similar(a, b Schema) bool {
	ao, aObj := a.(*ObjectSchema)
	bo, bObj := b.(*ObjectSchema)
	if aObj || bObj {
		return aObj && bObj && ao.Properties.sameNames(bo.Properties)
	}
	if _, ok := a.(*ArraySchema); ok {
		return false
	}
	if _, ok := b.(*ArraySchema); ok {
		return false
	}
	return a.Type() == b.Type() && a.Format() == b.Format()
}

// inferArrayMerged folds the members of all object elements into one object,
// later elements overwriting earlier values for a shared key, and infers the
// items from it. Without any object member the first element decides.
func inferArrayMerged(elems []Value, cfg *Config, p PathRef) (Schema, error) {
	merged := NewObject()
	from := map[string]int{}
	for i, e := range elems {
		if e.kind != KindObject {
			continue
		}
		for _, k := range e.obj.Keys() {
			v, _ := e.obj.Get(k)
			merged.Set(k, v)
			from[k] = i
		}
	}

	out := &ArraySchema{}
	switch {
	case merged.Len() > 0:
		props := NewProperties()
		for _, k := range merged.Keys() {
			v, _ := merged.Get(k)
			s, err := inferValue(v, cfg, p.Index(from[k]).Field(k))
			if err != nil {
				return nil, err
			}
			props.Set(k, s)
		}
		out.Items = &Items{Single: &ObjectSchema{Properties: props}}
	case len(elems) > 0:
		s, err := inferValue(elems[0], cfg, p.Index(0))
		if err != nil {
			return nil, err
		}
		out.Items = &Items{Single: s}
	}
	return out, nil
}
