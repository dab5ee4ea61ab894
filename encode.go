package oasgen

import (
	"bytes"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Schema nodes serialize through an ordered document Value so that property
// order survives both JSON and YAML output.

func (s *StringSchema) document() Value {
	o := NewObject().Set("type", String(TypeString))
	if s.StringFormat != "" {
		o.Set("format", String(s.StringFormat))
	}
	if s.Example != nil {
		o.Set("example", String(*s.Example))
	}
	return ObjectValue(o)
}

func (s *NumberSchema) document() Value {
	o := NewObject().Set("type", String(TypeNumber))
	if s.Example != nil {
		o.Set("example", Value{kind: KindNumber, num: *s.Example})
	}
	return ObjectValue(o)
}

func (s *IntegerSchema) document() Value {
	o := NewObject().Set("type", String(TypeInteger))
	if s.IntegerFormat != "" {
		o.Set("format", String(s.IntegerFormat))
	}
	if s.Example != nil {
		o.Set("example", Value{kind: KindNumber, num: *s.Example})
	}
	return ObjectValue(o)
}

func (s *BooleanSchema) document() Value {
	o := NewObject().Set("type", String(TypeBoolean))
	if s.Example != nil {
		o.Set("example", Bool(*s.Example))
	}
	return ObjectValue(o)
}

func (s *NullableSchema) document() Value {
	return ObjectValue(NewObject().Set("type", String(string(s.As))).Set("format", String(FormatNullable)))
}

func (s *ObjectSchema) document() Value {
	props := NewObject()
	for _, n := range s.Properties.Names() {
		c, _ := s.Properties.Get(n)
		props.Set(n, c.document())
	}
	o := NewObject().Set("type", String(TypeObject)).Set("properties", ObjectValue(props))
	if s.AdditionalProperties != nil {
		o.Set("additionalProperties", Bool(*s.AdditionalProperties))
	}
	return ObjectValue(o)
}

func (s *ArraySchema) document() Value {
	o := NewObject().Set("type", String(TypeArray))
	switch {
	case s.Items == nil:
	case len(s.Items.OneOf) > 0:
		variants := make([]Value, len(s.Items.OneOf))
		for i, v := range s.Items.OneOf {
			variants[i] = v.document()
		}
		o.Set("items", ObjectValue(NewObject().Set("oneOf", Array(variants...))))
	case s.Items.Single != nil:
		o.Set("items", s.Items.Single.document())
	}
	return ObjectValue(o)
}

// Document returns the schema as a plain ordered JSON document.
func Document(s Schema) Value { return s.document() }

func (s *StringSchema) MarshalJSON() ([]byte, error)   { return s.document().MarshalJSON() }
func (s *NumberSchema) MarshalJSON() ([]byte, error)   { return s.document().MarshalJSON() }
func (s *IntegerSchema) MarshalJSON() ([]byte, error)  { return s.document().MarshalJSON() }
func (s *BooleanSchema) MarshalJSON() ([]byte, error)  { return s.document().MarshalJSON() }
func (s *NullableSchema) MarshalJSON() ([]byte, error) { return s.document().MarshalJSON() }
func (s *ObjectSchema) MarshalJSON() ([]byte, error)   { return s.document().MarshalJSON() }
func (s *ArraySchema) MarshalJSON() ([]byte, error)    { return s.document().MarshalJSON() }

func (s *StringSchema) MarshalYAML() (any, error)   { return s.document().MarshalYAML() }
func (s *NumberSchema) MarshalYAML() (any, error)   { return s.document().MarshalYAML() }
func (s *IntegerSchema) MarshalYAML() (any, error)  { return s.document().MarshalYAML() }
func (s *BooleanSchema) MarshalYAML() (any, error)  { return s.document().MarshalYAML() }
func (s *NullableSchema) MarshalYAML() (any, error) { return s.document().MarshalYAML() }
func (s *ObjectSchema) MarshalYAML() (any, error)   { return s.document().MarshalYAML() }
func (s *ArraySchema) MarshalYAML() (any, error)    { return s.document().MarshalYAML() }

// MarshalIndent renders s as indented JSON.
func MarshalIndent(s Schema, prefix, indent string) ([]byte, error) {
	raw, err := s.document().MarshalJSON()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, prefix, indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalYAML renders s as a YAML document with two-space indentation.
func MarshalYAML(s Schema) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s.document().yamlNode()); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalJSON renders the value as compact JSON. Numbers are written using
// their literal text, objects in insertion order, strings without HTML
// escaping.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) writeJSON(buf *bytes.Buffer) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		if v.b {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case KindNumber:
		buf.WriteString(v.num.Text)
	case KindString:
		return writeJSONString(buf, v.str)
	case KindArray:
		buf.WriteByte('[')
		for i, e := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := e.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		for i, k := range v.obj.Keys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONString(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			e, _ := v.obj.Get(k)
			if err := e.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return &UnsupportedValueError{Path: "/"}
	}
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encode terminates every value with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (v Value) MarshalYAML() (any, error) {
	if !v.IsValid() {
		return nil, &UnsupportedValueError{Path: "/"}
	}
	return v.yamlNode(), nil
}

func (v Value) yamlNode() *yaml.Node {
	switch v.kind {
	case KindBool:
		if v.b {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: "true"}
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: "false"}
	case KindNumber:
		tag := "!!int"
		if strings.ContainsAny(v.num.Text, ".eE") {
			tag = "!!float"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: v.num.Text}
	case KindString:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.str}
	case KindArray:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range v.arr {
			n.Content = append(n.Content, e.yamlNode())
		}
		return n
	case KindObject:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range v.obj.Keys() {
			e, _ := v.obj.Get(k)
			n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, e.yamlNode())
		}
		return n
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
}
