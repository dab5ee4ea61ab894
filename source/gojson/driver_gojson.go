// Package gojson tokenizes JSON with github.com/goccy/go-json.
package gojson

import (
	"bytes"
	"io"
	"strconv"

	j "github.com/goccy/go-json"

	oasgen "github.com/LukeHagar/openapi-definition-generator"
	eng "github.com/LukeHagar/openapi-definition-generator/internal/engine"
)

// Driver returns an oasgen.JSONDriver backed by goccy/go-json.
func Driver() oasgen.JSONDriver { return driverGoJSON{} }

type driverGoJSON struct{}

func (driverGoJSON) NewReader(r io.Reader) oasgen.Source { return NewReader(r) }
func (driverGoJSON) NewBytes(b []byte) oasgen.Source     { return NewBytes(b) }
func (driverGoJSON) Name() string                        { return "go-json" }

// Source is an engine.TokenSource over a go-json Decoder.
type Source struct {
	dec        *j.Decoder
	keys       eng.KeyTracker
	lastOffset int64
}

// NewReader wraps an io.Reader into a token source.
func NewReader(r io.Reader) *Source {
	dec := j.NewDecoder(r)
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
	case j.Delim:
		t.Kind = s.keys.Delim(rune(v))
	case string:
		t.Kind, t.String = s.keys.StringToken(), v
	case j.Number:
		t.Kind, t.Number = s.keys.Scalar(eng.KindNumber), string(v)
	case bool:
		t.Kind, t.Bool = s.keys.Scalar(eng.KindBool), v
	case float64:
		t.Kind, t.Number = s.keys.Scalar(eng.KindNumber), strconv.FormatFloat(v, 'g', -1, 64)
	default:
		t.Kind = s.keys.Scalar(eng.KindNull)
	}
	return t, nil
}

func (s *Source) Location() int64 { return s.lastOffset }
