package otel

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const serviceName = "abadmin"

// Recorder exports request and operation metrics to an OTEL Collector.
type Recorder struct {
	provider         *sdkmetric.MeterProvider
	requestsTotal    metric.Int64Counter
	requestDuration  metric.Float64Histogram
	operationsTotal  metric.Int64Counter
	analysisDuration metric.Float64Histogram
}

// NewRecorder creates a recorder that pushes to the configured OTLP gRPC endpoint.
func NewRecorder(ctx context.Context, cfg Config) (*Recorder, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return nil, fmt.Errorf("OTEL exporter is disabled or endpoint not configured")
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	version := cfg.ServiceVersion
	if version == "" {
		version = "dev"
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)

	return newRecorder(provider)
}

func newRecorder(provider *sdkmetric.MeterProvider) (*Recorder, error) {
	meter := provider.Meter(serviceName)

	requestsTotal, err := meter.Int64Counter(
		"abadmin_http_requests_total",
		metric.WithDescription("HTTP requests served"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating requests counter: %w", err)
	}

	requestDuration, err := meter.Float64Histogram(
		"abadmin_http_request_duration_seconds",
		metric.WithDescription("HTTP request latency in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request duration histogram: %w", err)
	}

	operationsTotal, err := meter.Int64Counter(
		"abadmin_operations_total",
		metric.WithDescription("Service operations by outcome"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating operations counter: %w", err)
	}

	analysisDuration, err := meter.Float64Histogram(
		"abadmin_analysis_duration_seconds",
		metric.WithDescription("Latency of calls to the analysis service in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating analysis duration histogram: %w", err)
	}

	return &Recorder{
		provider:         provider,
		requestsTotal:    requestsTotal,
		requestDuration:  requestDuration,
		operationsTotal:  operationsTotal,
		analysisDuration: analysisDuration,
	}, nil
}

func (r *Recorder) RecordRequest(ctx context.Context, method, route string, status int, duration time.Duration) {
	opt := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.String("status", strconv.Itoa(status)),
	)
	r.requestsTotal.Add(ctx, 1, opt)
	r.requestDuration.Record(ctx, duration.Seconds(), opt)
}

func (r *Recorder) RecordOperation(ctx context.Context, operation string, err error) {
	r.operationsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome(err)),
	))
}

func (r *Recorder) RecordAnalysis(ctx context.Context, duration time.Duration, err error) {
	r.analysisDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("outcome", outcome(err)),
	))
}

// Close shuts down the recorder and flushes any pending metrics.
func (r *Recorder) Close(ctx context.Context) error {
	return r.provider.Shutdown(ctx)
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
