// Package o11y initializes the OpenTelemetry tracer and meter providers the estimator uses to
// record C5/C6 search duration and round counts, and to trace each estimate end to end.
package o11y

import (
	"context"
	"crypto/tls"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

// Opts configures the OTLP/gRPC exporters used by InitTracer and InitMetrics.
type Opts struct {
	ServiceName     string
	CollectorHeader map[string]string
	CollectorUrl    string
	InsecureMode    bool
	ChainID         uint64
}

// IsEnabled reports whether observability should be wired up at all: the estimator runs fine
// without a collector configured.
func IsEnabled(serviceName string) bool {
	return serviceName != ""
}

func dialOption(insecureMode bool) grpc.DialOption {
	if insecureMode {
		return grpc.WithTransportCredentials(insecure.NewCredentials())
	}
	return grpc.WithTransportCredentials(credentials.NewTLS(&tls.Config{}))
}

func newResource(opts *Opts) *resource.Resource {
	r, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			attribute.String("service.name", opts.ServiceName),
			attribute.Int64("chain.id", int64(opts.ChainID)),
		),
	)
	if err != nil {
		return resource.Default()
	}
	return r
}

// InitTracer registers a global OTLP/gRPC trace provider and returns a cleanup function the
// caller should defer.
func InitTracer(opts *Opts) func() {
	ctx := context.Background()
	conn, err := grpc.Dial(opts.CollectorUrl, dialOption(opts.InsecureMode))
	if err != nil {
		return func() {}
	}

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithGRPCConn(conn),
		otlptracegrpc.WithHeaders(opts.CollectorHeader),
	)
	if err != nil {
		return func() {}
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(newResource(opts)),
	)
	otel.SetTracerProvider(tp)

	return func() {
		_ = tp.Shutdown(ctx)
		_ = conn.Close()
	}
}

// InitMetrics registers a global OTLP/gRPC meter provider and returns a cleanup function the
// caller should defer.
func InitMetrics(opts *Opts) func() {
	ctx := context.Background()
	conn, err := grpc.Dial(opts.CollectorUrl, dialOption(opts.InsecureMode))
	if err != nil {
		return func() {}
	}

	exporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithGRPCConn(conn),
		otlpmetricgrpc.WithHeaders(opts.CollectorHeader),
	)
	if err != nil {
		return func() {}
	}

	mp := metric.NewMeterProvider(
		metric.WithReader(metric.NewPeriodicReader(exporter)),
		metric.WithResource(newResource(opts)),
	)
	otel.SetMeterProvider(mp)

	return func() {
		_ = mp.Shutdown(ctx)
		_ = conn.Close()
	}
}
