package middleware

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wayfind-go/wayfind/pkg/router"
)

// defaultTracerName is the tracer used when none is configured.
const defaultTracerName = "wayfind"

// OTelConfig configures the OpenTelemetry plugin.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "wayfind").
	TracerName string

	// IncludeRouteName includes the matched route's name in spans.
	// Enabled by default.
	IncludeRouteName bool

	// Filter decides which navigations to trace. Return true to trace,
	// false to skip. If nil, all navigations are traced.
	Filter func(evt router.Event) bool

	// AttributeExtractor extracts custom attributes per navigation.
	AttributeExtractor func(evt router.Event) []attribute.KeyValue

	// tracer is the resolved tracer instance.
	tracer trace.Tracer
}

// OTelOption configures the OpenTelemetry plugin.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) { c.TracerName = name }
}

// WithIncludeRouteName enables/disables the route-name attribute.
func WithIncludeRouteName(include bool) OTelOption {
	return func(c *OTelConfig) { c.IncludeRouteName = include }
}

// WithNavigationFilter sets a filter function for navigations.
func WithNavigationFilter(filter func(evt router.Event) bool) OTelOption {
	return func(c *OTelConfig) { c.Filter = filter }
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(evt router.Event) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) { c.AttributeExtractor = extractor }
}

func defaultOTelConfig() OTelConfig {
	return OTelConfig{
		TracerName:       defaultTracerName,
		IncludeRouteName: true,
	}
}

// OpenTelemetry creates a plugin that records one span per finished
// navigation. Spans are emitted from the AfterEach hook and backdated
// with the navigation's duration, so their start/end bracket the real
// pipeline run. Failure kinds become the span status description;
// guard errors are recorded as span errors.
//
// The tracer uses the global OpenTelemetry tracer provider. Configure
// it in your main() before navigating:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
func OpenTelemetry(opts ...OTelOption) router.Plugin {
	config := defaultOTelConfig()
	for _, opt := range opts {
		opt(&config)
	}
	config.tracer = otel.Tracer(config.TracerName)

	return func(r *router.Router) (detach func()) {
		return r.AfterEach(func(evt router.Event) {
			if config.Filter != nil && !config.Filter(evt) {
				return
			}

			end := time.Now()
			start := end.Add(-evt.Duration)

			attrs := []attribute.KeyValue{
				attribute.String("wayfind.from", fullPathOrUnset(evt.From)),
				attribute.String("wayfind.to", fullPathOrUnset(evt.To)),
				attribute.String("wayfind.mode", evt.Mode),
				attribute.Int("wayfind.redirect_hops", evt.RedirectHops),
				attribute.Int64("wayfind.sequence", evt.Sequence),
			}
			if config.IncludeRouteName && evt.To != nil && evt.To.Name != "" {
				attrs = append(attrs, attribute.String("wayfind.route", evt.To.Name))
			}
			if config.AttributeExtractor != nil {
				attrs = append(attrs, config.AttributeExtractor(evt)...)
			}

			_, span := config.tracer.Start(
				context.Background(),
				spanName(evt),
				trace.WithSpanKind(trace.SpanKindInternal),
				trace.WithAttributes(attrs...),
				trace.WithTimestamp(start),
			)

			if f := evt.Failure; f != nil {
				if f.Err != nil {
					span.RecordError(f.Err)
				}
				span.SetStatus(codes.Error, f.Kind.String())
			} else {
				span.SetStatus(codes.Ok, "")
			}

			span.End(trace.WithTimestamp(end))
		})
	}
}

// spanName names the span after the target path.
func spanName(evt router.Event) string {
	return "navigate " + fullPathOrUnset(evt.To)
}

func fullPathOrUnset(loc *router.Location) string {
	if loc == nil {
		return ""
	}
	return loc.FullPath
}
