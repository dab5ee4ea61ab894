package httpapi

import (
	oasgen "github.com/LukeHagar/openapi-definition-generator"
	"github.com/LukeHagar/openapi-definition-generator/i18n"
)

// DefaultParseOpt returns a recommended default for HTTP JSON boundaries.
// - Duplicate keys are errors
// - Nesting and body size are bounded
func DefaultParseOpt() oasgen.ParseOpt {
	return oasgen.ParseOpt{
		Strictness: oasgen.Strictness{OnDuplicateKey: oasgen.Error},
		MaxDepth:   256,
		MaxBytes:   8 << 20,
	}
}

// IssueJSON is the wire shape of one issue.
type IssueJSON struct {
	Path    string         `json:"path"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Detail  string         `json:"detail,omitempty"`
	Offset  *int64         `json:"offset,omitempty"`
	Params  map[string]any `json:"params,omitempty"`
}

// ErrorPayload shapes Issues for JSON responses. Messages are localized for
// lang ("" means English); the original message is kept as detail.
func ErrorPayload(issues []oasgen.Issue, lang string) map[string]any {
	tr := i18n.For(lang)
	out := make([]IssueJSON, 0, len(issues))
	for _, is := range issues {
		ij := IssueJSON{
			Path:    is.Path,
			Code:    is.Code,
			Message: tr.Message(is.Code, map[string]string{"path": is.Path}),
			Detail:  is.Message,
			Params:  is.Params,
		}
		if is.Offset >= 0 {
			off := is.Offset
			ij.Offset = &off
		}
		out = append(out, ij)
	}
	return map[string]any{"issues": out}
}
