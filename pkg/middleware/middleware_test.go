package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

func newRouter(mw ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	for _, m := range mw {
		r.Use(m)
	}
	r.Get("/nodes/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chi.URLParam(r, "id")))
	})
	r.Post("/fail", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	return r
}

func serve(h http.Handler, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestPrometheusLabelsByRoute(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := newRouter(Prometheus(WithRegistry(reg), WithNamespace("test")))

	serve(r, http.MethodGet, "/nodes/1")
	serve(r, http.MethodGet, "/nodes/2")
	serve(r, http.MethodPost, "/fail")
	serve(r, http.MethodGet, "/missing")

	expected := `
# HELP test_http_requests_total Total number of HTTP requests served
# TYPE test_http_requests_total counter
test_http_requests_total{method="GET",route="/nodes/{id}",status="200"} 2
test_http_requests_total{method="GET",route="unmatched",status="404"} 1
test_http_requests_total{method="POST",route="/fail",status="500"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "test_http_requests_total"); err != nil {
		t.Error(err)
	}
	if n, err := testutil.GatherAndCount(reg, "test_http_request_duration_seconds"); err != nil || n != 3 {
		t.Errorf("duration series = %d, %v; want 3", n, err)
	}
}

func TestPrometheusInFlight(t *testing.T) {
	reg := prometheus.NewRegistry()
	var during float64
	mw := Prometheus(WithRegistry(reg), WithSubsystem("web"))

	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mfs, _ := reg.Gather()
		for _, mf := range mfs {
			if mf.GetName() == "vfiber_web_requests_in_flight" {
				during = mf.GetMetric()[0].GetGauge().GetValue()
			}
		}
	}))
	serve(h, http.MethodGet, "/")

	if during != 1 {
		t.Errorf("in flight during request = %v, want 1", during)
	}
	if n, _ := testutil.GatherAndCount(reg, "vfiber_web_requests_total"); n != 1 {
		t.Errorf("requests series = %d, want 1", n)
	}
}

type recordedSpan struct {
	noop.Span
	name   string
	attrs  map[attribute.Key]attribute.Value
	status codes.Code
	ended  bool
}

func (s *recordedSpan) SetName(name string) { s.name = name }

func (s *recordedSpan) SetAttributes(kv ...attribute.KeyValue) {
	for _, a := range kv {
		s.attrs[a.Key] = a.Value
	}
}

func (s *recordedSpan) SetStatus(code codes.Code, _ string) { s.status = code }

func (s *recordedSpan) End(...trace.SpanEndOption) { s.ended = true }

type recordingTracer struct {
	noop.Tracer
	spans []*recordedSpan
}

func (t *recordingTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	s := &recordedSpan{name: name, attrs: map[attribute.Key]attribute.Value{}}
	cfg := trace.NewSpanStartConfig(opts...)
	s.SetAttributes(cfg.Attributes()...)
	t.spans = append(t.spans, s)
	return trace.ContextWithSpan(ctx, s), s
}

type recordingProvider struct {
	noop.TracerProvider
	tracer *recordingTracer
}

func (p recordingProvider) Tracer(string, ...trace.TracerOption) trace.Tracer {
	return p.tracer
}

func TestOpenTelemetrySpans(t *testing.T) {
	tracer := &recordingTracer{}
	var inHandler trace.Span
	r := chi.NewRouter()
	r.Use(OpenTelemetry(WithTracerProvider(recordingProvider{tracer: tracer})))
	r.Get("/nodes/{id}", func(w http.ResponseWriter, r *http.Request) {
		inHandler = trace.SpanFromContext(r.Context())
	})
	r.Post("/fail", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	serve(r, http.MethodGet, "/nodes/7")
	serve(r, http.MethodPost, "/fail")

	if len(tracer.spans) != 2 {
		t.Fatalf("spans = %d, want 2", len(tracer.spans))
	}
	ok, failed := tracer.spans[0], tracer.spans[1]
	if inHandler != trace.Span(ok) {
		t.Error("handler did not see the request span")
	}
	if ok.name != "GET /nodes/{id}" || !ok.ended {
		t.Errorf("span = %q ended=%v", ok.name, ok.ended)
	}
	if got := ok.attrs["http.target"].AsString(); got != "/nodes/7" {
		t.Errorf("http.target = %q", got)
	}
	if got := ok.attrs["http.status_code"].AsInt64(); got != 200 {
		t.Errorf("http.status_code = %d", got)
	}
	if ok.status != codes.Ok {
		t.Errorf("status = %v, want Ok", ok.status)
	}
	if failed.status != codes.Error {
		t.Errorf("status = %v, want Error", failed.status)
	}
}

func TestOpenTelemetryFilter(t *testing.T) {
	tracer := &recordingTracer{}
	r := newRouter(OpenTelemetry(
		WithTracerProvider(recordingProvider{tracer: tracer}),
		WithFilter(func(r *http.Request) bool { return r.URL.Path != "/nodes/skip" }),
	))

	rec := serve(r, http.MethodGet, "/nodes/skip")
	if rec.Body.String() != "skip" {
		t.Errorf("body = %q", rec.Body.String())
	}
	if len(tracer.spans) != 0 {
		t.Errorf("filtered request traced: %d spans", len(tracer.spans))
	}
}
