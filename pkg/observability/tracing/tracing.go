/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package tracing

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/trustbloc/logutil-go/pkg/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.12.0"
	"go.opentelemetry.io/otel/trace"
)

var logger = log.New("tracing")

// SpanExporterType specifies the type of span exporter used by tracer provider.
type SpanExporterType = string

const (
	None   SpanExporterType = ""
	Jaeger SpanExporterType = "JAEGER"
	Stdout SpanExporterType = "STDOUT"
)

const (
	JaegerAgentEndpointEnvKey     = "OTEL_EXPORTER_JAEGER_AGENT_HOST"
	JaegerCollectorEndpointEnvKey = "OTEL_EXPORTER_JAEGER_ENDPOINT"
	tracerName                    = "https://github.com/trustbloc/wallet"
)

type options struct {
	writer      io.Writer
	sampleRatio float64
	syncExport  bool
}

// Opt configures Initialize.
type Opt func(o *options)

// WithWriter sets where the STDOUT exporter writes spans.
func WithWriter(w io.Writer) Opt {
	return func(o *options) {
		o.writer = w
	}
}

// WithSampleRatio samples root spans at the given ratio. Child spans follow their parent.
func WithSampleRatio(ratio float64) Opt {
	return func(o *options) {
		o.sampleRatio = ratio
	}
}

// WithSyncExport exports every span as soon as it ends. One-shot commands use it so that no span
// is lost when the process exits.
func WithSyncExport() Opt {
	return func(o *options) {
		o.syncExport = true
	}
}

// IsExporterSupported reports whether the exporter type can be passed to Initialize.
func IsExporterSupported(exporter SpanExporterType) bool {
	switch exporter {
	case None, Jaeger, Stdout:
		return true
	default:
		return false
	}
}

// Initialize registers a tracer provider exporting to the given exporter as the global provider.
// It returns a shutdown func flushing pending spans and the wallet tracer. With exporter None the
// tracer is a no-op and nothing is registered.
func Initialize(exporter SpanExporterType, serviceName string, opts ...Opt) (func(), trace.Tracer, error) {
	if exporter == None {
		return func() {}, trace.NewNoopTracerProvider().Tracer(""), nil
	}

	o := &options{writer: os.Stdout, sampleRatio: 1}
	for _, opt := range opts {
		opt(o)
	}

	spanExporter, err := newExporter(exporter, o)
	if err != nil {
		return nil, nil, err
	}

	processor := tracesdk.WithBatcher(spanExporter)
	if o.syncExport {
		processor = tracesdk.WithSyncer(spanExporter)
	}

	tracerProvider := tracesdk.NewTracerProvider(
		processor,
		tracesdk.WithSampler(tracesdk.ParentBased(tracesdk.TraceIDRatioBased(o.sampleRatio))),
		tracesdk.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
			semconv.ProcessPIDKey.Int(os.Getpid()),
		)),
	)

	otel.SetTracerProvider(tracerProvider)

	// traceparent and tracestate headers go out on issuer and verifier requests.
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return func() {
		if shutdownErr := tracerProvider.Shutdown(context.Background()); shutdownErr != nil {
			logger.Warn("Error shutting down tracer provider", log.WithError(shutdownErr))
		}
	}, tracerProvider.Tracer(tracerName), nil
}

func newExporter(exporter SpanExporterType, o *options) (tracesdk.SpanExporter, error) {
	switch exporter {
	case Jaeger:
		var endpoint jaeger.EndpointOption

		switch {
		case os.Getenv(JaegerAgentEndpointEnvKey) != "":
			endpoint = jaeger.WithAgentEndpoint()
		case os.Getenv(JaegerCollectorEndpointEnvKey) != "":
			endpoint = jaeger.WithCollectorEndpoint()
		default:
			return nil, fmt.Errorf("neither agent nor collector endpoint is provided")
		}

		e, err := jaeger.New(endpoint)
		if err != nil {
			return nil, fmt.Errorf("create jaeger exporter: %w", err)
		}

		return e, nil
	case Stdout:
		e, err := stdouttrace.New(stdouttrace.WithWriter(o.writer))
		if err != nil {
			return nil, fmt.Errorf("create stdout exporter: %w", err)
		}

		return e, nil
	default:
		return nil, fmt.Errorf("unsupported exporter type: %s", exporter)
	}
}
