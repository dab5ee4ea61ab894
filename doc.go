// Package oasgen infers OpenAPI 3 style schema definitions from sample data.
//
// A sample (JSON text, YAML, or an in-memory Go value) is read into an ordered
// Value and walked once to produce a Schema tree:
//
//   - numbers become integer (int32/int64/unsafe) or number
//   - strings get a date or date-time format when they look like one
//   - null becomes the configured NullType marked with the nullable format
//   - arrays either merge their object elements into one item schema, or
//     union the distinct element schemas under oneOf (Config.AllowOneOf)
//
// Member order of the input is kept in the output. The tree renders to JSON
// or YAML and can be read back with ParseSchemaJSON and ParseSchemaYAML.
//
// Typical usage:
//
//	s, err := oasgen.InferFromJSONText(`{"id": 1, "tags": ["a"]}`, oasgen.DefaultConfig())
//	if err != nil {
//		var pe *oasgen.ParseError
//		if errors.As(err, &pe) { ... }
//	}
//	out, err := oasgen.MarshalYAML(s)
//
// Parsing enforces the limits in ParseOpt (duplicate keys, depth, size) and
// reports problems as Issues carrying a JSON Pointer, a stable code and a
// message. Importing the source package switches the tokenizer to go-json.
package oasgen
