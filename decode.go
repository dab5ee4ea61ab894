package oasgen

import (
	"encoding/json"
	"errors"
	"io"
	"math"

	eng "github.com/LukeHagar/openapi-definition-generator/internal/engine"
)

// DecodeValue reads exactly one JSON document from src into a Value. Object
// member order is preserved. A repeated key keeps its first position and takes
// the later value unless opt.Strictness rejects duplicates. Data after the
// top-level value is an error.
func DecodeValue(src Source, opts ...ParseOpt) (Value, error) {
	opt := lastParseOpt(opts)
	var sink func(eng.SimpleIssue)
	if opt.IssueSink != nil {
		sink = func(si eng.SimpleIssue) {
			opt.IssueSink(Issue{Path: si.Path, Code: si.Code, Message: si.Message, Offset: si.Offset})
		}
	}
	ts := eng.WrapWithEnforcement(src, eng.EnforceOptions{
		OnDuplicate: toEngineDup(opt.Strictness.OnDuplicateKey),
		MaxDepth:    opt.MaxDepth,
		MaxBytes:    opt.MaxBytes,
		IssueSink:   sink,
		FailFast:    opt.FailFast,
	})
	d := &decoder{src: ts, mode: opt.NumberMode}

	tok, err := ts.NextToken()
	if err != nil {
		return Value{}, d.fail(RootPath(), err)
	}
	v, err := d.value(tok, RootPath())
	if err != nil {
		return Value{}, err
	}
	if _, err := ts.NextToken(); err == nil {
		return Value{}, parseIssue("/", "unexpected data after top-level value", nil, ts.Location())
	} else if !errors.Is(err, io.EOF) {
		return Value{}, d.fail(RootPath(), err)
	}
	return v, nil
}

func toEngineDup(s Severity) eng.DuplicateStrictness {
	switch s {
	case Error:
		return eng.DupError
	case Warn:
		return eng.DupWarn
	default:
		return eng.DupIgnore
	}
}

type decoder struct {
	src  eng.TokenSource
	mode NumberMode
}

func (d *decoder) next(p PathRef) (Token, error) {
	tok, err := d.src.NextToken()
	if err != nil {
		return Token{}, d.fail(p, err)
	}
	return tok, nil
}

func (d *decoder) value(tok Token, p PathRef) (Value, error) {
	switch tok.Kind {
	case TokenBeginObject:
		return d.object(p)
	case TokenBeginArray:
		return d.array(p)
	case TokenString:
		return String(tok.String), nil
	case TokenNumber:
		return d.number(tok, p)
	case TokenBool:
		return Bool(tok.Bool), nil
	case TokenNull:
		return Null(), nil
	}
	return Value{}, parseIssue(p.Pointer(), "unexpected "+tok.Kind.String()+" token", nil, tok.Offset)
}

func (d *decoder) object(p PathRef) (Value, error) {
	obj := NewObject()
	for {
		tok, err := d.next(p)
		if err != nil {
			return Value{}, err
		}
		if tok.Kind == TokenEndObject {
			return ObjectValue(obj), nil
		}
		if tok.Kind != TokenKey {
			return Value{}, parseIssue(p.Pointer(), "expected object key, got "+tok.Kind.String(), nil, tok.Offset)
		}
		fp := p.Field(tok.String)
		vt, err := d.next(fp)
		if err != nil {
			return Value{}, err
		}
		v, err := d.value(vt, fp)
		if err != nil {
			return Value{}, err
		}
		obj.Set(tok.String, v)
	}
}

func (d *decoder) array(p PathRef) (Value, error) {
	elems := []Value{}
	for {
		tok, err := d.next(p)
		if err != nil {
			return Value{}, err
		}
		if tok.Kind == TokenEndArray {
			return Array(elems...), nil
		}
		v, err := d.value(tok, p.Index(len(elems)))
		if err != nil {
			return Value{}, err
		}
		elems = append(elems, v)
	}
}

func (d *decoder) number(tok Token, p PathRef) (Value, error) {
	v, err := NumberText(tok.Number)
	if err != nil {
		return Value{}, parseIssue(p.Pointer(), "invalid number literal "+tok.Number, err, tok.Offset)
	}
	if d.mode == NumberFloat64 && !math.IsInf(v.num.Float, 0) {
		v.num.Text = formatFloat(v.num.Float)
	}
	return v, nil
}

// fail maps tokenizer and enforcement errors to a *ParseError.
func (d *decoder) fail(p PathRef, err error) error {
	var ie eng.IssueError
	if errors.As(err, &ie) {
		return &ParseError{Issue: Issue{Path: ie.Path, Code: ie.Code, Message: ie.Message, Offset: ie.Offset, Cause: err}}
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return parseIssue(p.Pointer(), "unexpected end of input", err, d.src.Location())
	}
	var se *json.SyntaxError
	if errors.As(err, &se) {
		return parseIssue(p.Pointer(), se.Error(), err, se.Offset)
	}
	return parseIssue(p.Pointer(), err.Error(), err, d.src.Location())
}
