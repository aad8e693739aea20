// Package middleware provides HTTP middleware for the stream server.
//
// # OpenTelemetry Middleware
//
// OpenTelemetry starts a server span for every request. The span is named
// after the matched chi route once the handler returns, and carries the
// method, route and status code:
//
//	r := chi.NewRouter()
//	r.Use(middleware.OpenTelemetry(
//	    middleware.WithTracerName("vfiber"),
//	    middleware.WithFilter(func(r *http.Request) bool {
//	        return r.URL.Path != "/healthz"
//	    }),
//	))
//
// The tracer comes from the global provider unless WithTracerProvider is
// given. Handlers reach the span with trace.SpanFromContext(r.Context()).
//
// # Prometheus Metrics
//
// Prometheus records request counts, durations and requests in flight,
// labelled by route pattern rather than raw path so that node ids in event
// URLs do not explode cardinality:
//
//	reg := prometheus.NewRegistry()
//	r.Use(middleware.Prometheus(
//	    middleware.WithRegistry(reg),
//	    middleware.WithNamespace("vfiber"),
//	))
//
// Metrics exposed (with namespace "vfiber"):
//   - vfiber_http_requests_total{route, method, status}
//   - vfiber_http_request_duration_seconds{route}
//   - vfiber_http_requests_in_flight
package middleware
