// Package httpapi serves schema inference over HTTP.
//
//	POST /v1/infer   body: JSON (or YAML) sample; response: the schema
//	GET  /healthz
//
// Query parameters on /v1/infer override the server's inference settings:
// allowIntegers, includeExamples, allowOneOf, nullType, format (json|yaml)
// and input (json|yaml).
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	oasgen "github.com/LukeHagar/openapi-definition-generator"
	"github.com/LukeHagar/openapi-definition-generator/internal/logging"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Options configures a Server. The zero value serves with DefaultConfig,
// DefaultParseOpt, JSON output, no cache and the global OpenTelemetry
// providers.
type Options struct {
	Config   *oasgen.Config
	ParseOpt *oasgen.ParseOpt
	// Format is the default output format, FormatJSON or FormatYAML.
	Format string
	// CacheSize bounds the number of cached responses; 0 disables caching.
	CacheSize int

	Logger         logrus.FieldLogger
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
}

// Server is an http.Handler exposing the inference endpoints.
type Server struct {
	cfg      oasgen.Config
	parseOpt oasgen.ParseOpt
	format   string
	log      logrus.FieldLogger
	cache    *lru.Cache[string, cachedResponse]
	inst     instruments
	handler  http.Handler
}

type cachedResponse struct {
	contentType string
	body        []byte
}

// New validates opts and builds the handler chain.
func New(opts Options) (*Server, error) {
	s := &Server{
		cfg:    oasgen.DefaultConfig(),
		format: opts.Format,
		log:    opts.Logger,
	}
	if opts.Config != nil {
		s.cfg = *opts.Config
	}
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}
	s.parseOpt = DefaultParseOpt()
	if opts.ParseOpt != nil {
		s.parseOpt = *opts.ParseOpt
	}
	switch s.format {
	case "":
		s.format = FormatJSON
	case FormatJSON, FormatYAML:
	default:
		return nil, errors.New("httpapi: format must be json or yaml")
	}
	if s.log == nil {
		s.log = logging.Discard()
	}
	if opts.CacheSize > 0 {
		c, err := lru.New[string, cachedResponse](opts.CacheSize)
		if err != nil {
			return nil, err
		}
		s.cache = c
	}

	tp, mp := opts.TracerProvider, opts.MeterProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	inst, err := newInstruments(tp, mp)
	if err != nil {
		return nil, err
	}
	s.inst = inst

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/infer", s.handleInfer)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	s.handler = requestID(accessLog(s.log, inst.instrument(mux)))
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.handler.ServeHTTP(w, r) }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.log.WithField("addr", addr).Info("listening")

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"driver": oasgen.CurrentJSONDriver().Name(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}
