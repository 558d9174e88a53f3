package observability

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/propagation"
	otelmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	oteltrace "go.opentelemetry.io/otel/trace"
)

var (
	requestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total requests by service, endpoint, method, and status.",
		},
		[]string{"service", "endpoint", "method", "status"},
	)
)

func init() { prometheus.MustRegister(requestCounter) }

// SetupObservability installs the otel meter and tracer providers. Spans are
// exported over OTLP/HTTP only when otlpEndpoint is set.
func SetupObservability(ctx context.Context, serviceName, otlpEndpoint string) (shutdown func(context.Context) error, promHandler http.Handler, tracer oteltrace.Tracer, err error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	promExporter, err := otelprom.New()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create prometheus exporter: %w", err)
	}
	meterProvider := otelmetric.NewMeterProvider(otelmetric.WithReader(promExporter))
	otel.SetMeterProvider(meterProvider)

	res, err := resource.New(ctx, resource.WithAttributes(attribute.String("service.name", serviceName)))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create otel resource: %w", err)
	}

	opts := []trace.TracerProviderOption{trace.WithResource(res)}
	if endpoint := strings.TrimSpace(otlpEndpoint); endpoint != "" {
		exp, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint))
		if err != nil {
			return nil, nil, nil, fmt.Errorf("create otlp exporter: %w", err)
		}
		opts = append(opts, trace.WithBatcher(exp))
	}
	tp := trace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)

	shutdown = func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), meterProvider.Shutdown(ctx))
	}
	return shutdown, promhttp.Handler(), otel.Tracer(serviceName), nil
}

// MetricsAndTracingMiddleware counts requests by chi route pattern, so ids in
// paths do not inflate label cardinality.
func MetricsAndTracingMiddleware(tracer oteltrace.Tracer, serviceName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			method := r.Method
			ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
			rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			ctx, span := tracer.Start(ctx, method+" "+r.URL.Path)
			span.SetAttributes(
				attribute.String("http.method", method),
				attribute.String("http.target", r.URL.Path),
				attribute.String("service.name", serviceName),
			)
			if rid := middleware.GetReqID(ctx); rid != "" {
				span.SetAttributes(attribute.String("http.request_id", rid))
			}
			rw.Header().Set("Trace-ID", span.SpanContext().TraceID().String())

			next.ServeHTTP(rw, r.WithContext(ctx))

			endpoint := routePattern(r)
			span.SetName(method + " " + endpoint)
			span.SetAttributes(
				attribute.String("http.route", endpoint),
				attribute.Int("http.status_code", rw.status),
			)
			requestCounter.WithLabelValues(serviceName, endpoint, method, strconv.Itoa(rw.status)).Inc()
			span.End()
		})
	}
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack lets websocket upgrades pass through the recorder.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return h.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }
