// Package telemetry implements C11: OTLP trace export bootstrap and the
// per-investigation span/metrics wrapper that every pipeline run is
// instrumented with.
package telemetry

import (
	"context"
	"crypto/tls"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/arclight-labs/rca-engine/internal/logging"
)

var log = logging.Get("telemetry")

// Config mirrors the tracing fields of internal/config.Config so this
// package stays decoupled from it.
type Config struct {
	Enabled     bool
	Endpoint    string
	TLSInsecure bool
}

var (
	initMu               sync.Mutex
	telemetryInitialized bool
	tracerProvider       *sdktrace.TracerProvider
)

// Init bootstraps the OTLP exporter and installs the global tracer
// provider. Idempotent: a second call is a no-op and returns nil, so
// callers don't need to track whether telemetry has already started.
func Init(ctx context.Context, cfg Config) error {
	initMu.Lock()
	defer initMu.Unlock()

	if telemetryInitialized {
		return nil
	}

	if !cfg.Enabled {
		log.Info("telemetry disabled")
		telemetryInitialized = true
		return nil
	}

	if cfg.Endpoint == "" {
		return fmt.Errorf("telemetry enabled but endpoint not configured")
	}

	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var dialOptions []grpc.DialOption
	var otlpOptions []otlptracegrpc.Option
	if cfg.TLSInsecure {
		tlsConfig := &tls.Config{InsecureSkipVerify: true, MinVersion: tls.VersionTLS12}
		dialOptions = append(dialOptions, grpc.WithTransportCredentials(credentials.NewTLS(tlsConfig)))
	} else {
		dialOptions = append(dialOptions, grpc.WithTransportCredentials(insecure.NewCredentials()))
		otlpOptions = append(otlpOptions, otlptracegrpc.WithInsecure())
	}
	otlpOptions = append(otlpOptions,
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
		otlptracegrpc.WithDialOption(dialOptions...),
	)

	exporter, err := otlptracegrpc.New(dialCtx, otlpOptions...)
	if err != nil {
		return fmt.Errorf("create OTLP exporter: %w", err)
	}

	res, err := resource.New(dialCtx, resource.WithAttributes(
		semconv.ServiceName("rca-engine"),
		semconv.ServiceVersion("0.1.0"),
	))
	if err != nil {
		return fmt.Errorf("create resource: %w", err)
	}

	tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tracerProvider)

	log.Info("telemetry initialized", logging.F("endpoint", cfg.Endpoint))
	telemetryInitialized = true
	return nil
}

// Shutdown flushes and stops the tracer provider. No-op if Init was never
// called with tracing enabled.
func Shutdown(ctx context.Context) error {
	initMu.Lock()
	defer initMu.Unlock()
	if tracerProvider == nil {
		return nil
	}
	return tracerProvider.Shutdown(ctx)
}

// resetForTest restores package state so a test can re-run Init. Only
// intended to be called from this package's own tests.
func resetForTest() {
	initMu.Lock()
	defer initMu.Unlock()
	telemetryInitialized = false
	tracerProvider = nil
}

// InvestigationAttributes describes one investigation for span tagging.
type InvestigationAttributes struct {
	InvestigationID string
	Region          string
	Type            string
	AssumeRoleARN   string
	ExternalID      string
}

// StartInvestigationSpan starts the root span for one pipeline run,
// tagging it with the attributes every investigation carries.
func StartInvestigationSpan(ctx context.Context, attrs InvestigationAttributes) (context.Context, trace.Span) {
	tracer := otel.Tracer("rca-engine/investigation")
	ctx, span := tracer.Start(ctx, "investigation")
	span.SetAttributes(
		attribute.String("investigation.id", attrs.InvestigationID),
		attribute.String("investigation.region", attrs.Region),
		attribute.String("investigation.type", attrs.Type),
	)
	if attrs.AssumeRoleARN != "" {
		span.SetAttributes(attribute.String("investigation.assume_role_arn", attrs.AssumeRoleARN))
	}
	if attrs.ExternalID != "" {
		span.SetAttributes(attribute.String("investigation.external_id", attrs.ExternalID))
	}
	return ctx, span
}

// RecordInput attaches the raw investigation input as both a span
// attribute and a span event, for correlating a trace with the request
// that produced it.
func RecordInput(span trace.Span, input string) {
	span.SetAttributes(attribute.String("investigation.input", input))
	span.AddEvent("investigation.input", trace.WithAttributes(attribute.String("value", input)))
}

// RecordOutput attaches the final report summary as both a span
// attribute and a span event.
func RecordOutput(span trace.Span, output string) {
	span.SetAttributes(attribute.String("investigation.output", output))
	span.AddEvent("investigation.output", trace.WithAttributes(attribute.String("value", output)))
}

// RecordFailure marks the span as failed with the error's type and
// message.
func RecordFailure(span trace.Span, err error) {
	span.SetAttributes(
		attribute.Bool("error", true),
		attribute.String("error.type", fmt.Sprintf("%T", err)),
		attribute.String("error.message", err.Error()),
	)
	span.RecordError(err)
}
