package oasgen

import (
	"fmt"
)

// ParseSchemaJSON rebuilds a Schema tree from its JSON rendering.
func ParseSchemaJSON(data []byte, opts ...ParseOpt) (Schema, error) {
	v, err := DecodeValue(JSONBytes(data), opts...)
	if err != nil {
		return nil, err
	}
	return SchemaFromDocument(v)
}

// ParseSchemaYAML rebuilds a Schema tree from its YAML rendering.
func ParseSchemaYAML(data []byte, opts ...ParseOpt) (Schema, error) {
	v, err := ValueFromYAML(data, opts...)
	if err != nil {
		return nil, err
	}
	return SchemaFromDocument(v)
}

// SchemaFromDocument converts a schema document, as produced by Document,
// back into a Schema. A node whose format is "nullable" becomes a
// *NullableSchema regardless of its declared type. Unknown members are
// ignored.
func SchemaFromDocument(doc Value) (Schema, error) {
	return schemaFrom(doc, RootPath())
}

func schemaFrom(doc Value, p PathRef) (Schema, error) {
	if doc.kind != KindObject {
		return nil, invalidSchema(p, "schema must be an object, got "+doc.kind.String())
	}
	o := doc.obj
	typ, err := stringMember(o, "type", p)
	if err != nil {
		return nil, err
	}
	format, err := stringMember(o, "format", p)
	if err != nil {
		return nil, err
	}
	if format == FormatNullable {
		nt := NullType(typ)
		if !nt.valid() {
			return nil, invalidSchema(p.Field("type"), fmt.Sprintf("nullable type %q is not a primitive type", typ))
		}
		return &NullableSchema{As: nt}, nil
	}

	example, hasExample := o.Get("example")
	switch typ {
	case TypeString:
		s := &StringSchema{StringFormat: format}
		if hasExample {
			str, ok := example.AsString()
			if !ok {
				return nil, exampleMismatch(p, typ, example)
			}
			s.Example = &str
		}
		return s, nil
	case TypeNumber, TypeInteger:
		var ex *Number
		if hasExample {
			n, ok := example.AsNumber()
			if !ok {
				return nil, exampleMismatch(p, typ, example)
			}
			ex = &n
		}
		if typ == TypeNumber {
			return &NumberSchema{Example: ex}, nil
		}
		return &IntegerSchema{IntegerFormat: format, Example: ex}, nil
	case TypeBoolean:
		s := &BooleanSchema{}
		if hasExample {
			b, ok := example.AsBool()
			if !ok {
				return nil, exampleMismatch(p, typ, example)
			}
			s.Example = &b
		}
		return s, nil
	case TypeObject:
		return objectFrom(o, p)
	case TypeArray:
		return arrayFrom(o, p)
	}
	return nil, invalidSchema(p.Field("type"), fmt.Sprintf("unknown type %q", typ))
}

func objectFrom(o *Object, p PathRef) (Schema, error) {
	out := &ObjectSchema{Properties: NewProperties()}
	if pv, ok := o.Get("properties"); ok {
		if pv.kind != KindObject {
			return nil, invalidSchema(p.Field("properties"), "properties must be an object")
		}
		pp := p.Field("properties")
		for _, name := range pv.obj.Keys() {
			child, _ := pv.obj.Get(name)
			s, err := schemaFrom(child, pp.Field(name))
			if err != nil {
				return nil, err
			}
			out.Properties.Set(name, s)
		}
	}
	if ap, ok := o.Get("additionalProperties"); ok {
		b, isBool := ap.AsBool()
		if !isBool {
			return nil, invalidSchema(p.Field("additionalProperties"), "additionalProperties must be a boolean")
		}
		out.AdditionalProperties = &b
	}
	return out, nil
}

func arrayFrom(o *Object, p PathRef) (Schema, error) {
	out := &ArraySchema{}
	iv, ok := o.Get("items")
	if !ok {
		return out, nil
	}
	ip := p.Field("items")
	if iv.kind == KindObject {
		if variants, ok := iv.obj.Get("oneOf"); ok {
			if variants.kind != KindArray {
				return nil, invalidSchema(ip.Field("oneOf"), "oneOf must be an array")
			}
			items := &Items{}
			for i, e := range variants.arr {
				s, err := schemaFrom(e, ip.Field("oneOf").Index(i))
				if err != nil {
					return nil, err
				}
				items.OneOf = append(items.OneOf, s)
			}
			out.Items = items
			return out, nil
		}
	}
	s, err := schemaFrom(iv, ip)
	if err != nil {
		return nil, err
	}
	out.Items = &Items{Single: s}
	return out, nil
}

func stringMember(o *Object, name string, p PathRef) (string, error) {
	v, ok := o.Get(name)
	if !ok {
		return "", nil
	}
	s, ok := v.AsString()
	if !ok {
		return "", invalidSchema(p.Field(name), name+" must be a string")
	}
	return s, nil
}

func exampleMismatch(p PathRef, typ string, ex Value) error {
	return invalidSchema(p.Field("example"), fmt.Sprintf("%s example for %s schema", ex.kind, typ))
}

func invalidSchema(p PathRef, msg string) error {
	return Issues{p.Issue(CodeInvalidSchema, msg)}
}
