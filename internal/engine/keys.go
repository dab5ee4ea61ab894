package engine

// KeyTracker tells object keys apart from string values for tokenizers that
// report both as plain strings. The zero value is ready to use.
type KeyTracker struct {
	stack []keyFrame
}

type keyFrame struct {
	object       bool
	expectingKey bool
}

// Delim classifies one of '{', '}', '[' or ']'.
func (k *KeyTracker) Delim(d rune) Kind {
	switch d {
	case '{':
		k.stack = append(k.stack, keyFrame{object: true, expectingKey: true})
		return KindBeginObject
	case '[':
		k.stack = append(k.stack, keyFrame{})
		return KindBeginArray
	}
	if n := len(k.stack); n > 0 {
		k.stack = k.stack[:n-1]
	}
	k.valueDone()
	if d == '}' {
		return KindEndObject
	}
	return KindEndArray
}

// StringToken classifies a string token as a key or a string value.
func (k *KeyTracker) StringToken() Kind {
	if n := len(k.stack); n > 0 && k.stack[n-1].object && k.stack[n-1].expectingKey {
		k.stack[n-1].expectingKey = false
		return KindKey
	}
	k.valueDone()
	return KindString
}

// Scalar records a number, bool or null token and returns kind unchanged.
func (k *KeyTracker) Scalar(kind Kind) Kind {
	k.valueDone()
	return kind
}

func (k *KeyTracker) valueDone() {
	if n := len(k.stack); n > 0 && k.stack[n-1].object {
		k.stack[n-1].expectingKey = true
	}
}
