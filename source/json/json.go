// Package json tokenizes JSON with encoding/json's streaming Decoder.
package json

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"

	eng "github.com/LukeHagar/openapi-definition-generator/internal/engine"
)

// Source is an engine.TokenSource over encoding/json.
type Source struct {
	dec        *json.Decoder
	keys       eng.KeyTracker
	lastOffset int64
}

// NewReader wraps an io.Reader into a token source.
func NewReader(r io.Reader) *Source {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return &Source{dec: dec, lastOffset: -1}
}

// NewBytes wraps a byte slice into a token source.
func NewBytes(b []byte) *Source { return NewReader(bytes.NewReader(b)) }

func (s *Source) NextToken() (eng.Token, error) {
	tok, err := s.dec.Token()
	if err != nil {
		return eng.Token{}, err
	}
	s.lastOffset = s.dec.InputOffset()

	t := eng.Token{Offset: s.lastOffset}
	switch v := tok.(type) {
	case json.Delim:
		t.Kind = s.keys.Delim(rune(v))
	case string:
		t.Kind, t.String = s.keys.StringToken(), v
	case json.Number:
		t.Kind, t.Number = s.keys.Scalar(eng.KindNumber), string(v)
	case float64:
		t.Kind, t.Number = s.keys.Scalar(eng.KindNumber), strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		t.Kind, t.Bool = s.keys.Scalar(eng.KindBool), v
	default:
		t.Kind = s.keys.Scalar(eng.KindNull)
	}
	return t, nil
}

func (s *Source) Location() int64 { return s.lastOffset }
