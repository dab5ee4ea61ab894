package oasgen

// InferFromJSONText parses text as a single JSON document and infers its
// schema. Parse failures are reported as *ParseError (errors.Is
// ErrInvalidJSON); values without a schema representation as
// *UnsupportedValueError. An invalid cfg is reported before any parsing.
func InferFromJSONText(text string, cfg Config, opts ...ParseOpt) (Schema, error) {
	return InferFromJSON(JSONBytes([]byte(text)), cfg, opts...)
}

// InferFromJSON reads one JSON document from src and infers its schema.
func InferFromJSON(src Source, cfg Config, opts ...ParseOpt) (Schema, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	v, err := DecodeValue(src, opts...)
	if err != nil {
		return nil, err
	}
	return Infer(v, cfg)
}

// InferFromYAML infers the schema of the first document of a YAML stream.
func InferFromYAML(data []byte, cfg Config, opts ...ParseOpt) (Schema, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	v, err := ValueFromYAML(data, opts...)
	if err != nil {
		return nil, err
	}
	return Infer(v, cfg)
}

// InferFromValue infers the schema of an in-memory Go value. See FromGo for
// the accepted shapes.
func InferFromValue(v any, cfg Config) (Schema, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	val, err := FromGo(v)
	if err != nil {
		return nil, err
	}
	return Infer(val, cfg)
}
