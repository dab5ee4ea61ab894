package oasgen

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ValueFromYAML decodes the first document of a YAML stream into a Value.
// Mapping order is preserved. Timestamps and other non-JSON scalars become
// strings holding their literal text. Duplicate keys are handled according to
// opt.Strictness; MaxDepth and MaxBytes apply as for JSON.
func ValueFromYAML(data []byte, opts ...ParseOpt) (Value, error) {
	opt := lastParseOpt(opts)
	if opt.MaxBytes > 0 && int64(len(data)) > opt.MaxBytes {
		return Value{}, &ParseError{Issue: Issue{Path: "/", Code: CodeTruncated, Message: "max bytes exceeded", Offset: opt.MaxBytes}}
	}
	var root yaml.Node
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return Value{}, parseIssue("/", "empty YAML document", err, -1)
		}
		return Value{}, parseIssue("/", err.Error(), err, -1)
	}
	y := &yamlConverter{opt: opt}
	return y.value(&root, RootPath(), 0)
}

type yamlConverter struct {
	opt ParseOpt

	decoded      int // nodes converted so far
	aliasDecoded int // of which reached through an alias
	aliasDepth   int
}

// allowedAliasRatio caps the share of nodes that may come from alias
// expansion. Small documents may alias freely; large ones may not.
func allowedAliasRatio(decoded int) float64 {
	switch {
	case decoded <= 400_000:
		return 0.99
	case decoded >= 4_000_000:
		return 0.10
	default:
		return 0.10 + 0.89*(1-float64(decoded-400_000)/3_600_000)
	}
}

func (y *yamlConverter) value(n *yaml.Node, p PathRef, depth int) (Value, error) {
	y.decoded++
	if y.aliasDepth > 0 {
		y.aliasDecoded++
		if y.decoded > 1000 && float64(y.aliasDecoded)/float64(y.decoded) > allowedAliasRatio(y.decoded) {
			return Value{}, y.fail(n, p, "document contains excessive aliasing")
		}
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null(), nil
		}
		return y.value(n.Content[0], p, depth)
	case yaml.AliasNode:
		y.aliasDepth++
		v, err := y.value(n.Alias, p, depth)
		y.aliasDepth--
		return v, err
	case yaml.MappingNode:
		if err := y.enter(n, p, depth); err != nil {
			return Value{}, err
		}
		return y.mapping(n, p, depth+1)
	case yaml.SequenceNode:
		if err := y.enter(n, p, depth); err != nil {
			return Value{}, err
		}
		elems := make([]Value, 0, len(n.Content))
		for i, c := range n.Content {
			v, err := y.value(c, p.Index(i), depth+1)
			if err != nil {
				return Value{}, err
			}
			elems = append(elems, v)
		}
		return Array(elems...), nil
	case yaml.ScalarNode:
		return y.scalar(n, p)
	}
	return Value{}, y.fail(n, p, fmt.Sprintf("unsupported YAML node kind %d", n.Kind))
}

func (y *yamlConverter) enter(n *yaml.Node, p PathRef, depth int) error {
	if y.opt.MaxDepth > 0 && depth+1 > y.opt.MaxDepth {
		return y.fail(n, p, "max depth exceeded")
	}
	return nil
}

func (y *yamlConverter) mapping(n *yaml.Node, p PathRef, depth int) (Value, error) {
	obj := NewObject()
	first := map[string]*yaml.Node{}
	for i := 0; i+1 < len(n.Content); i += 2 {
		kn, vn := n.Content[i], n.Content[i+1]
		key := kn.Value
		if kn.Kind == yaml.AliasNode && kn.Alias != nil {
			key = kn.Alias.Value
		}
		if prev, dup := first[key]; dup && y.opt.Strictness.OnDuplicateKey != Ignore {
			iss := Issue{
				Path:    p.Field(key).Pointer(),
				Code:    CodeDuplicateKey,
				Message: fmt.Sprintf("duplicate YAML key %q at %d:%d (first at %d:%d)", key, kn.Line, kn.Column, prev.Line, prev.Column),
				Offset:  -1,
				Params:  map[string]any{"line": kn.Line, "column": kn.Column, "firstLine": prev.Line, "firstColumn": prev.Column},
			}
			if y.opt.Strictness.OnDuplicateKey == Error || y.opt.FailFast {
				return Value{}, &ParseError{Issue: iss}
			}
			if y.opt.IssueSink != nil {
				y.opt.IssueSink(iss)
			}
		} else if !dup {
			first[key] = kn
		}
		v, err := y.value(vn, p.Field(key), depth)
		if err != nil {
			return Value{}, err
		}
		obj.Set(key, v)
	}
	return ObjectValue(obj), nil
}

func (y *yamlConverter) scalar(n *yaml.Node, p PathRef) (Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return Null(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return Value{}, y.fail(n, p, err.Error())
		}
		return Bool(b), nil
	case "!!int", "!!float":
		if jsonNumberRe.MatchString(n.Value) {
			return NumberText(n.Value)
		}
		var f float64
		if err := n.Decode(&f); err != nil {
			return Value{}, y.fail(n, p, err.Error())
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return Value{}, y.fail(n, p, "non-finite number "+strconv.Quote(n.Value))
		}
		return Float(f), nil
	}
	return String(n.Value), nil
}

func (y *yamlConverter) fail(n *yaml.Node, p PathRef, msg string) error {
	return &ParseError{Issue: Issue{
		Path:    p.Pointer(),
		Code:    CodeParseError,
		Message: fmt.Sprintf("%s (line %d, column %d)", msg, n.Line, n.Column),
		Offset:  -1,
		Params:  map[string]any{"line": n.Line, "column": n.Column},
	}}
}
