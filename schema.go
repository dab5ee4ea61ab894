package oasgen

// Schema type names.
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
	TypeObject  = "object"
	TypeArray   = "array"
)

// Format hints.
const (
	FormatInt32    = "int32"
	FormatInt64    = "int64"
	FormatUnsafe   = "unsafe" // integer beyond float64's exact range
	FormatDate     = "date"
	FormatDateTime = "date-time"
	FormatNullable = "nullable" // declared type stands in for null
)

// Schema is an inferred type descriptor. The concrete type is one of
// *StringSchema, *NumberSchema, *IntegerSchema, *BooleanSchema,
// *ObjectSchema, *ArraySchema or *NullableSchema.
//
// Every implementation marshals to JSON and YAML; see encode.go.
type Schema interface {
	// Type returns the declared type name. For *NullableSchema this is the
	// configured stand-in type.
	Type() string
	// Format returns the format hint, or "" when there is none.
	Format() string
	MarshalJSON() ([]byte, error)
	MarshalYAML() (any, error)

	document() Value
}

// StringSchema describes a sampled string.
type StringSchema struct {
	StringFormat string // "", FormatDate or FormatDateTime
	Example      *string
}

func (*StringSchema) Type() string     { return TypeString }
func (s *StringSchema) Format() string { return s.StringFormat }

// NumberSchema describes a non-integral number, or any number when integers
// are not inferred.
type NumberSchema struct {
	Example *Number
}

func (*NumberSchema) Type() string   { return TypeNumber }
func (*NumberSchema) Format() string { return "" }

// IntegerSchema describes a whole number.
type IntegerSchema struct {
	IntegerFormat string // FormatInt32, FormatInt64 or FormatUnsafe
	Example       *Number
}

func (*IntegerSchema) Type() string     { return TypeInteger }
func (s *IntegerSchema) Format() string { return s.IntegerFormat }

// BooleanSchema describes a sampled boolean.
type BooleanSchema struct {
	Example *bool
}

func (*BooleanSchema) Type() string   { return TypeBoolean }
func (*BooleanSchema) Format() string { return "" }

// NullableSchema marks a sampled null. It declares the configured NullType.
type NullableSchema struct {
	As NullType
}

func (s *NullableSchema) Type() string { return string(s.As) }
func (*NullableSchema) Format() string { return FormatNullable }

// ObjectSchema describes a sampled object.
type ObjectSchema struct {
	Properties *Properties
	// AdditionalProperties is never set by inference.
	AdditionalProperties *bool
}

func (*ObjectSchema) Type() string   { return TypeObject }
func (*ObjectSchema) Format() string { return "" }

// ArraySchema describes a sampled array. Items is nil when the array was empty.
type ArraySchema struct {
	Items *Items
}

func (*ArraySchema) Type() string   { return TypeArray }
func (*ArraySchema) Format() string { return "" }

// Items holds the element schema of an array: either Single, or a OneOf
// union of two or more distinct schemas.
type Items struct {
	Single Schema
	OneOf  []Schema
}

// Properties is an ordered name → schema mapping.
type Properties struct {
	names  []string
	byName map[string]Schema
}

// NewProperties returns an empty property set.
func NewProperties() *Properties { return &Properties{byName: map[string]Schema{}} }

// Set adds or replaces a property; a replaced property keeps its position.
func (p *Properties) Set(name string, s Schema) {
	if _, ok := p.byName[name]; !ok {
		p.names = append(p.names, name)
	}
	p.byName[name] = s
}

// Get returns the schema of the named property.
func (p *Properties) Get(name string) (Schema, bool) {
	if p == nil {
		return nil, false
	}
	s, ok := p.byName[name]
	return s, ok
}

// Names returns the property names in order. The slice must not be modified.
func (p *Properties) Names() []string {
	if p == nil {
		return nil
	}
	return p.names
}

// Len returns the number of properties.
func (p *Properties) Len() int {
	if p == nil {
		return 0
	}
	return len(p.names)
}

// sameNames reports whether p and q hold the same set of names, ignoring order.
func (p *Properties) sameNames(q *Properties) bool {
	if p.Len() != q.Len() {
		return false
	}
	for _, n := range p.Names() {
		if _, ok := q.Get(n); !ok {
			return false
		}
	}
	return true
}
