package oasgen

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes.
const (
	CodeParseError       = "parse_error"
	CodeUnsupportedValue = "unsupported_value"
	CodeDuplicateKey     = "duplicate_key"
	CodeTruncated        = "truncated"
	CodeInvalidConfig    = "invalid_config"
	CodeInvalidSchema    = "invalid_schema"
)

var (
	// ErrInvalidJSON matches every *ParseError via errors.Is.
	ErrInvalidJSON = errors.New("invalid JSON")
	// ErrUnsupportedValue matches every *UnsupportedValueError via errors.Is.
	ErrUnsupportedValue = errors.New("unsupported value")
)

// Issue represents a single problem found while reading input.
type Issue struct {
	Path    string // JSON Pointer (for example: /items/2/price).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints.
	Cause   error  // Optional: underlying error.
	Offset  int64  // Byte offset in the input source (-1 when unknown).
	// Params carries structured parameters for i18n and observability.
	Params map[string]any
}

// Issues is a collection of issues that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	lim := min(len(iss), maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		// e.g. parse_error at /a: unexpected EOF
		fmt.Fprintf(b, "%s at %s", iss[i].Code, iss[i].Path)
		if iss[i].Message != "" {
			fmt.Fprintf(b, ": %s", iss[i].Message)
		}
	}
	if n := len(iss); n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AsIssues extracts Issues from an error. Both *ParseError and
// *UnsupportedValueError expose their issues this way.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Issues(), true
	}
	var ue *UnsupportedValueError
	if errors.As(err, &ue) {
		return ue.Issues(), true
	}
	return nil, false
}

// ParseError reports input text that is not valid JSON (or YAML), or that
// violated an enforcement limit while being read.
type ParseError struct {
	Issue Issue
}

func (e *ParseError) Error() string {
	if e.Issue.Path == "" || e.Issue.Path == "/" {
		return "invalid JSON: " + e.Issue.Message
	}
	return fmt.Sprintf("invalid JSON at %s: %s", e.Issue.Path, e.Issue.Message)
}

func (e *ParseError) Unwrap() error { return e.Issue.Cause }

func (e *ParseError) Is(target error) bool { return target == ErrInvalidJSON }

// Issues returns the error as a single-entry Issues list.
func (e *ParseError) Issues() Issues { return Issues{e.Issue} }

// UnsupportedValueError reports a value that has no schema representation:
// the Undefined sentinel, an invalid Value, or a non-data Go value such as a
// func or channel.
type UnsupportedValueError struct {
	Path   string // JSON Pointer of the offending value
	GoType string // dynamic Go type, empty for invalid Values
}

func (e *UnsupportedValueError) Error() string {
	what := "undefined value"
	if e.GoType != "" {
		what = "value of type " + e.GoType
	}
	return fmt.Sprintf("%s at %s cannot be converted to an OpenAPI schema", what, e.Path)
}

func (e *UnsupportedValueError) Is(target error) bool { return target == ErrUnsupportedValue }

// Issues returns the error as a single-entry Issues list.
func (e *UnsupportedValueError) Issues() Issues {
	params := map[string]any{}
	if e.GoType != "" {
		params["type"] = e.GoType
	}
	return Issues{{Path: e.Path, Code: CodeUnsupportedValue, Message: e.Error(), Offset: -1, Params: params}}
}

func parseIssue(path, msg string, cause error, offset int64) *ParseError {
	if path == "" {
		path = "/"
	}
	return &ParseError{Issue: Issue{Path: path, Code: CodeParseError, Message: msg, Cause: cause, Offset: offset}}
}
