package oasgen

import (
	"fmt"
	"strings"
)

// NullType is the primitive type name declared for a sampled null.
type NullType string

const (
	NullNumber  NullType = "number"
	NullString  NullType = "string"
	NullInteger NullType = "integer"
	NullBoolean NullType = "boolean"
)

// ParseNullType parses a null type name (case-insensitive).
func ParseNullType(s string) (NullType, error) {
	nt := NullType(strings.ToLower(strings.TrimSpace(s)))
	if !nt.valid() {
		return "", fmt.Errorf("null type %q: must be one of number, string, integer, boolean", s)
	}
	return nt, nil
}

func (t NullType) valid() bool {
	switch t {
	case NullNumber, NullString, NullInteger, NullBoolean:
		return true
	}
	return false
}

// Config selects the inference policy. It is read-only during inference and
// safe to share between goroutines.
type Config struct {
	// AllowIntegers infers integer (with int32/int64/unsafe format) for whole numbers.
	AllowIntegers bool `json:"allowIntegers" yaml:"allowIntegers" mapstructure:"allow_integers"`
	// IncludeExamples embeds each sampled literal as the example of its schema.
	IncludeExamples bool `json:"includeExamples" yaml:"includeExamples" mapstructure:"include_examples"`
	// NullType is declared for null values, marked with the nullable format.
	// The empty value means NullString.
	NullType NullType `json:"nullType" yaml:"nullType" mapstructure:"null_type"`
	// AllowOneOf infers every array element and unions the distinct schemas.
	// When false, object elements are merged into one representative schema.
	AllowOneOf bool `json:"allowOneOf" yaml:"allowOneOf" mapstructure:"allow_one_of"`
}

// DefaultConfig returns the settings the generator starts with.
func DefaultConfig() Config {
	return Config{
		AllowIntegers:   true,
		IncludeExamples: true,
		NullType:        NullString,
	}
}

// Validate reports an invalid_config issue for an unknown NullType.
func (c Config) Validate() error {
	if c.NullType != "" && !c.NullType.valid() {
		return Issues{RootPath().Issue(CodeInvalidConfig,
			fmt.Sprintf("null type %q: must be one of number, string, integer, boolean", string(c.NullType)),
			"field", "nullType")}
	}
	return nil
}

func (c Config) nullType() NullType {
	if c.NullType == "" {
		return NullString
	}
	return c.NullType
}
