// Package middleware provides observability plugins for the navigation
// core.
//
// This package includes:
//   - OpenTelemetry tracing for navigations
//   - Prometheus metrics for navigations
//
// Both are router.Plugin values attached with Use:
//
//	r, _ := router.New(router.WithRoutes(routes...))
//	detach := r.Use(middleware.Prometheus(
//	    middleware.WithNamespace("myapp"),
//	))
//	defer detach()
//
// # OpenTelemetry
//
// The OpenTelemetry plugin records one span per finished navigation:
// target and source full paths, mode, redirect hops, and the failure
// kind as span status. The tracer comes from the global provider;
// configure it in main() before navigating:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
//
// # Prometheus
//
// Metrics collected:
//   - wayfind_navigations_total: counter by outcome and mode
//   - wayfind_navigation_duration_seconds: histogram by mode
//   - wayfind_redirect_hops: histogram of redirects per navigation
//   - wayfind_guard_errors_total: counter of guard errors
//
// Expose them the usual way:
//
//	http.Handle("/metrics", promhttp.Handler())
//	go http.ListenAndServe(":9090", nil)
package middleware
