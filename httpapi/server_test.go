package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	oasgen "github.com/LukeHagar/openapi-definition-generator"
)

func newServer(t *testing.T, opts Options) *Server {
	t.Helper()
	s, err := New(opts)
	require.NoError(t, err)
	return s
}

func do(h http.Handler, method, target, body string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeIssues(t *testing.T, rec *httptest.ResponseRecorder) []IssueJSON {
	t.Helper()
	var payload struct {
		Issues []IssueJSON `json:"issues"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload), rec.Body.String())
	require.NotEmpty(t, payload.Issues)
	return payload.Issues
}

func TestInfer_DefaultJSON(t *testing.T) {
	s := newServer(t, Options{})
	rec := do(s, http.MethodPost, "/v1/infer", `{"a":1,"b":"1999-12-31"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
	assert.JSONEq(t, `{"type":"object","properties":{
		"a":{"type":"integer","format":"int32","example":1},
		"b":{"type":"string","format":"date","example":"1999-12-31"}}}`, rec.Body.String())
}

func TestInfer_QueryOverrides(t *testing.T) {
	s := newServer(t, Options{})
	rec := do(s, http.MethodPost, "/v1/infer?allowOneOf=true&includeExamples=false&nullType=integer&format=yaml", `[1,"x",null]`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))

	back, err := oasgen.ParseSchemaYAML(rec.Body.Bytes())
	require.NoError(t, err)
	arr := back.(*oasgen.ArraySchema)
	require.NotNil(t, arr.Items)
	require.Len(t, arr.Items.OneOf, 3)
	assert.Equal(t, "integer", arr.Items.OneOf[2].Type())
	assert.Equal(t, oasgen.FormatNullable, arr.Items.OneOf[2].Format())
}

func TestInfer_YAMLInput(t *testing.T) {
	s := newServer(t, Options{Format: FormatJSON})
	rec := do(s, http.MethodPost, "/v1/infer", "name: x\ncount: 3\n", "Content-Type", "application/yaml")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"type":"object","properties":{
		"name":{"type":"string","example":"x"},
		"count":{"type":"integer","format":"int32","example":3}}}`, rec.Body.String())
}

func TestInfer_ParseErrorLocalized(t *testing.T) {
	s := newServer(t, Options{})

	rec := do(s, http.MethodPost, "/v1/infer", `[`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	iss := decodeIssues(t, rec)
	assert.Equal(t, oasgen.CodeParseError, iss[0].Code)
	assert.Equal(t, "invalid JSON", iss[0].Message)
	assert.NotEmpty(t, iss[0].Detail)

	rec = do(s, http.MethodPost, "/v1/infer", `[`, "Accept-Language", "ja-JP,ja;q=0.9")
	iss = decodeIssues(t, rec)
	assert.Equal(t, "JSON の解析に失敗しました", iss[0].Message)
}

func TestInfer_DuplicateKeyRejected(t *testing.T) {
	s := newServer(t, Options{})
	rec := do(s, http.MethodPost, "/v1/infer", `{"x":{"a":1,"a":2}}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	iss := decodeIssues(t, rec)
	assert.Equal(t, oasgen.CodeDuplicateKey, iss[0].Code)
	assert.Equal(t, "/x/a", iss[0].Path)
	assert.Equal(t, "duplicate key at /x/a", iss[0].Message)
}

func TestInfer_DuplicateKeyWarnIsLogged(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	opt := oasgen.ParseOpt{Strictness: oasgen.Strictness{OnDuplicateKey: oasgen.Warn}}
	s := newServer(t, Options{ParseOpt: &opt, Logger: logger})

	rec := do(s, http.MethodPost, "/v1/infer", `{"a":1,"a":"x"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Data["code"] == oasgen.CodeDuplicateKey {
			warned = true
			assert.Equal(t, rec.Header().Get(RequestIDHeader), e.Data["request_id"])
		}
	}
	assert.True(t, warned, "expected a duplicate key warning in the log")
}

func TestInfer_TooLarge(t *testing.T) {
	opt := DefaultParseOpt()
	opt.MaxBytes = 8
	s := newServer(t, Options{ParseOpt: &opt})

	rec := do(s, http.MethodPost, "/v1/infer", `{"key":"value"}`)
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, oasgen.CodeTruncated, decodeIssues(t, rec)[0].Code)
}

func TestInfer_InvalidQuery(t *testing.T) {
	s := newServer(t, Options{})
	rec := do(s, http.MethodPost, "/v1/infer?allowOneOf=maybe&nullType=date&format=xml", `{}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	iss := decodeIssues(t, rec)
	require.Len(t, iss, 3)
	for _, is := range iss {
		assert.Equal(t, oasgen.CodeInvalidConfig, is.Code)
	}
	assert.Equal(t, "allowOneOf", iss[0].Params["field"])
}

func TestRouting(t *testing.T) {
	s := newServer(t, Options{})

	rec := do(s, http.MethodGet, "/v1/infer", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = do(s, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","driver":"`+oasgen.CurrentJSONDriver().Name()+`"}`, rec.Body.String())

	rec = do(s, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInfer_Cache(t *testing.T) {
	s := newServer(t, Options{CacheSize: 4})

	first := do(s, http.MethodPost, "/v1/infer", `{"a":[1,2]}`)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "miss", first.Header().Get("X-Cache"))

	second := do(s, http.MethodPost, "/v1/infer", `{"a":[1,2]}`)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "hit", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())

	// Settings are part of the key.
	third := do(s, http.MethodPost, "/v1/infer?format=yaml", `{"a":[1,2]}`)
	assert.Equal(t, "miss", third.Header().Get("X-Cache"))

	// Failures are not cached.
	do(s, http.MethodPost, "/v1/infer", `{`)
	again := do(s, http.MethodPost, "/v1/infer", `{`)
	assert.Equal(t, "miss", again.Header().Get("X-Cache"))
}

func TestRequestID_Propagated(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	s := newServer(t, Options{Logger: logger})

	rec := do(s, http.MethodGet, "/healthz", "", RequestIDHeader, "abc-123")
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "abc-123", entry.Data["request_id"])
	assert.Equal(t, http.StatusOK, entry.Data["status"])
	assert.Equal(t, "/healthz", entry.Data["path"])
}

func TestTelemetry(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer tp.Shutdown(context.Background())
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	s := newServer(t, Options{TracerProvider: tp, MeterProvider: mp})
	do(s, http.MethodPost, "/v1/infer", `{"a":1}`)
	do(s, http.MethodPost, "/v1/infer", `[`)

	names := map[string]int{}
	var statuses []int64
	for _, span := range exporter.GetSpans() {
		names[span.Name]++
		for _, kv := range span.Attributes {
			if kv.Key == "http.status_code" {
				statuses = append(statuses, kv.Value.AsInt64())
			}
		}
	}
	assert.Equal(t, 2, names["HTTP POST /v1/infer"])
	assert.Equal(t, 2, names["oasgen.infer"])
	assert.ElementsMatch(t, []int64{200, 400}, statuses)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	totals := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					totals[m.Name] += dp.Value
				}
			}
		}
	}
	assert.Equal(t, int64(2), totals["oasgen.http.requests"])
	assert.Equal(t, int64(1), totals["oasgen.http.errors"])
}

func TestNew_RejectsBadOptions(t *testing.T) {
	_, err := New(Options{Format: "xml"})
	assert.Error(t, err)

	cfg := oasgen.DefaultConfig()
	cfg.NullType = "date"
	_, err = New(Options{Config: &cfg})
	iss, ok := oasgen.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, oasgen.CodeInvalidConfig, iss[0].Code)
}

func TestNew_KeepsExplicitZeroConfig(t *testing.T) {
	s := newServer(t, Options{Config: &oasgen.Config{NullType: oasgen.NullString}})
	rec := do(s, http.MethodPost, "/v1/infer", `{"n":7}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"type":"object","properties":{"n":{"type":"number"}}}`, rec.Body.String())
}

func TestInfer_YAMLAliasFanoutRejected(t *testing.T) {
	s := newServer(t, Options{})
	rec := do(s, http.MethodPost, "/v1/infer", aliasFanoutYAML(8), "Content-Type", "application/yaml")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	iss := decodeIssues(t, rec)
	assert.Equal(t, oasgen.CodeParseError, iss[0].Code)
	assert.Contains(t, iss[0].Detail, "aliasing")
}

// aliasFanoutYAML builds levels of anchors that each reference the previous
// one ten times.
func aliasFanoutYAML(levels int) string {
	var b strings.Builder
	b.WriteString("l0: &l0 [x, x, x, x, x, x, x, x, x, x]\n")
	for i := 1; i < levels; i++ {
		prev := "*l" + strconv.Itoa(i-1)
		refs := strings.TrimSuffix(strings.Repeat(prev+", ", 10), ", ")
		b.WriteString("l" + strconv.Itoa(i) + ": &l" + strconv.Itoa(i) + " [" + refs + "]\n")
	}
	return b.String()
}
