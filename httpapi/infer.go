package httpapi

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	oasgen "github.com/LukeHagar/openapi-definition-generator"
	"github.com/LukeHagar/openapi-definition-generator/i18n"
)

// settings are the per-request inference settings after query overrides.
type settings struct {
	cfg    oasgen.Config
	format string
	input  string
}

func (st settings) key() string {
	return fmt.Sprintf("%t|%t|%s|%t|%s|%s", st.cfg.AllowIntegers, st.cfg.IncludeExamples, st.cfg.NullType, st.cfg.AllowOneOf, st.format, st.input)
}

func (s *Server) handleInfer(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.inst.tracer.Start(r.Context(), "oasgen.infer")
	defer span.End()
	lang := i18n.Negotiate(r.Header.Get("Accept-Language"))
	log := s.log.WithField("request_id", RequestIDFromContext(ctx))

	fail := func(status int, issues oasgen.Issues) {
		span.SetStatus(codes.Error, issues.Error())
		span.SetAttributes(attribute.String("oasgen.issue.code", issues[0].Code))
		writeJSON(w, status, ErrorPayload(issues, lang))
	}

	st, err := s.settingsFor(r)
	if err != nil {
		iss, _ := oasgen.AsIssues(err)
		fail(http.StatusBadRequest, iss)
		return
	}
	span.SetAttributes(
		attribute.String("oasgen.output.format", st.format),
		attribute.String("oasgen.input.format", st.input),
		attribute.Bool("oasgen.allow_one_of", st.cfg.AllowOneOf),
	)

	body, err := readBody(r.Body, s.parseOpt.MaxBytes)
	if err != nil {
		if iss, ok := oasgen.AsIssues(err); ok {
			fail(http.StatusRequestEntityTooLarge, iss)
			return
		}
		span.RecordError(err)
		fail(http.StatusBadRequest, oasgen.Issues{oasgen.RootPath().Issue(oasgen.CodeParseError, "reading body: "+err.Error())})
		return
	}
	span.SetAttributes(attribute.Int("oasgen.input.bytes", len(body)))

	var key string
	if s.cache != nil {
		sum := sha256.Sum256(body)
		key = hex.EncodeToString(sum[:]) + "|" + st.key()
		if hit, ok := s.cache.Get(key); ok {
			span.SetAttributes(attribute.Bool("oasgen.cache.hit", true))
			w.Header().Set("X-Cache", "hit")
			writeBody(w, hit)
			return
		}
		span.SetAttributes(attribute.Bool("oasgen.cache.hit", false))
		w.Header().Set("X-Cache", "miss")
	}

	opt := s.parseOpt
	opt.IssueSink = func(is oasgen.Issue) {
		log.WithFields(logrus.Fields{"code": is.Code, "path": is.Path}).Warn(is.Message)
	}
	var v oasgen.Value
	if st.input == FormatYAML {
		v, err = oasgen.ValueFromYAML(body, opt)
	} else {
		v, err = oasgen.DecodeValue(oasgen.JSONBytes(body), opt)
	}
	var schema oasgen.Schema
	if err == nil {
		schema, err = oasgen.Infer(v, st.cfg)
	}
	if err != nil {
		span.RecordError(err)
		iss, ok := oasgen.AsIssues(err)
		if !ok {
			log.WithError(err).Error("inference failed")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		fail(statusFor(iss), iss)
		return
	}

	resp, err := render(schema, st.format)
	if err != nil {
		span.RecordError(err)
		log.WithError(err).Error("rendering schema")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if s.cache != nil {
		s.cache.Add(key, resp)
	}
	writeBody(w, resp)
}

// settingsFor applies query overrides on top of the server defaults.
func (s *Server) settingsFor(r *http.Request) (settings, error) {
	st := settings{cfg: s.cfg, format: s.format, input: FormatJSON}
	if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		st.input = FormatYAML
	}
	q := r.URL.Query()
	var iss oasgen.Issues
	boolParam := func(name string, dst *bool) {
		raw := q.Get(name)
		if raw == "" {
			return
		}
		b, err := strconv.ParseBool(raw)
		if err != nil {
			iss = append(iss, oasgen.RootPath().Issue(oasgen.CodeInvalidConfig, name+" must be a boolean", "field", name))
			return
		}
		*dst = b
	}
	boolParam("allowIntegers", &st.cfg.AllowIntegers)
	boolParam("includeExamples", &st.cfg.IncludeExamples)
	boolParam("allowOneOf", &st.cfg.AllowOneOf)
	if raw := q.Get("nullType"); raw != "" {
		nt, err := oasgen.ParseNullType(raw)
		if err != nil {
			iss = append(iss, oasgen.RootPath().Issue(oasgen.CodeInvalidConfig, err.Error(), "field", "nullType"))
		} else {
			st.cfg.NullType = nt
		}
	}
	for _, p := range []struct {
		name string
		dst  *string
	}{{"format", &st.format}, {"input", &st.input}} {
		switch raw := strings.ToLower(q.Get(p.name)); raw {
		case "":
		case FormatJSON, FormatYAML:
			*p.dst = raw
		default:
			iss = append(iss, oasgen.RootPath().Issue(oasgen.CodeInvalidConfig, p.name+" must be json or yaml", "field", p.name))
		}
	}
	if len(iss) > 0 {
		return settings{}, iss
	}
	return st, nil
}

// readBody reads at most max bytes (unbounded when max <= 0). A larger body
// is reported as a truncated issue.
func readBody(body io.Reader, max int64) ([]byte, error) {
	if max <= 0 {
		return io.ReadAll(body)
	}
	b, err := io.ReadAll(io.LimitReader(body, max+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > max {
		return nil, oasgen.Issues{{Path: "/", Code: oasgen.CodeTruncated, Message: "max bytes exceeded", Offset: max}}
	}
	return b, nil
}

func statusFor(iss oasgen.Issues) int {
	for _, is := range iss {
		if is.Code == oasgen.CodeTruncated {
			return http.StatusRequestEntityTooLarge
		}
	}
	return http.StatusBadRequest
}

func render(s oasgen.Schema, format string) (cachedResponse, error) {
	if format == FormatYAML {
		b, err := oasgen.MarshalYAML(s)
		return cachedResponse{contentType: "application/yaml", body: b}, err
	}
	b, err := s.MarshalJSON()
	return cachedResponse{contentType: "application/json", body: b}, err
}

func writeBody(w http.ResponseWriter, c cachedResponse) {
	w.Header().Set("Content-Type", c.contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(c.body)
}
