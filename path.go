package oasgen

import (
	"strconv"
	"strings"
)

// PathRef builds JSON Pointer paths in a chain-safe way.
type PathRef struct {
	parts []string
}

// RootPath returns the pointer to the document root.
func RootPath() PathRef { return PathRef{} }

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// Field returns the pointer to the named member. Names are escaped per RFC 6901.
func (p PathRef) Field(name string) PathRef {
	return PathRef{parts: append(p.parts[:len(p.parts):len(p.parts)], pointerEscaper.Replace(name))}
}

// Index returns the pointer to the i-th element.
func (p PathRef) Index(i int) PathRef {
	return PathRef{parts: append(p.parts[:len(p.parts):len(p.parts)], strconv.Itoa(i))}
}

// Pointer renders the path; the root renders as "/".
func (p PathRef) Pointer() string {
	if len(p.parts) == 0 {
		return "/"
	}
	return "/" + strings.Join(p.parts, "/")
}

func (p PathRef) String() string { return p.Pointer() }

// Issue creates an Issue at this path. kv is a flat list of param pairs.
func (p PathRef) Issue(code, msg string, kv ...any) Issue {
	var m map[string]any
	if len(kv) > 1 {
		m = make(map[string]any, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			k, _ := kv[i].(string)
			m[k] = kv[i+1]
		}
	}
	return Issue{Path: p.Pointer(), Code: code, Message: msg, Offset: -1, Params: m}
}
