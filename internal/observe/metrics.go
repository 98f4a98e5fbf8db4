// Package observe provides application-wide observability primitives for
// Aide: OpenTelemetry metrics, distributed tracing, structured logging, and
// HTTP middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can still be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all Aide metrics.
const meterName = "github.com/aidekit/aide"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Intent pipeline ---

	// Predictions counts classified utterances. Use with attributes:
	//   attribute.String("label", ...), attribute.String("outcome", "confident"|"fallback")
	Predictions metric.Int64Counter

	// Confidence tracks the confidence value of every scored prediction.
	Confidence metric.Float64Histogram

	// HandlerDuration tracks intent handler execution latency. Use with
	// attribute: attribute.String("label", ...)
	HandlerDuration metric.Float64Histogram

	// ScorerDuration tracks scorer backend latency. Use with attribute:
	//   attribute.String("scorer", ...)
	ScorerDuration metric.Float64Histogram

	// --- Dataset generation ---

	// GeneratedExamples counts examples emitted by the template expander. Use
	// with attributes:
	//   attribute.String("intent", ...), attribute.String("policy", ...)
	GeneratedExamples metric.Int64Counter

	// GenerationFailures counts discarded expansion attempts. Use with
	// attributes:
	//   attribute.String("intent", ...), attribute.String("reason", "missing_entity"|"duplicate")
	GenerationFailures metric.Int64Counter

	// --- Error counters ---

	// ProviderErrors counts collaborator API errors. Use with attributes:
	//   attribute.String("provider", ...), attribute.String("kind", ...)
	ProviderErrors metric.Int64Counter

	// --- HTTP middleware ---

	// HTTPRequestDuration tracks HTTP request processing time. Use with attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds) for handler
// and scorer latencies, which range from microseconds (keyword scorer) to
// seconds (remote LLM judges).
var latencyBuckets = []float64{
	0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
}

// confidenceBuckets covers the coefficient-of-variation range; values above 2
// are effectively certain.
var confidenceBuckets = []float64{
	0.1, 0.25, 0.5, 0.75, 1, 1.5, 2,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Counters.
	if met.Predictions, err = m.Int64Counter("aide.intent.predictions",
		metric.WithDescription("Total classified utterances by label and outcome."),
	); err != nil {
		return nil, err
	}
	if met.GeneratedExamples, err = m.Int64Counter("aide.generation.examples",
		metric.WithDescription("Total generated training examples by intent and policy."),
	); err != nil {
		return nil, err
	}
	if met.GenerationFailures, err = m.Int64Counter("aide.generation.failures",
		metric.WithDescription("Total discarded expansion attempts by intent and reason."),
	); err != nil {
		return nil, err
	}
	if met.ProviderErrors, err = m.Int64Counter("aide.provider.errors",
		metric.WithDescription("Total collaborator API errors by provider and kind."),
	); err != nil {
		return nil, err
	}

	// Histograms.
	if met.Confidence, err = m.Float64Histogram("aide.intent.confidence",
		metric.WithDescription("Confidence of every scored prediction."),
		metric.WithExplicitBucketBoundaries(confidenceBuckets...),
	); err != nil {
		return nil, err
	}
	if met.HandlerDuration, err = m.Float64Histogram("aide.handler.duration",
		metric.WithDescription("Latency of intent handler execution."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ScorerDuration, err = m.Float64Histogram("aide.scorer.duration",
		metric.WithDescription("Latency of scorer backends."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("aide.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordPrediction records one classified utterance: a counter increment by
// label and outcome plus a confidence histogram sample. Satisfies the intent
// engine's Recorder interface.
func (m *Metrics) RecordPrediction(ctx context.Context, label string, confident bool, confidence float64) {
	outcome := "fallback"
	if confident {
		outcome = "confident"
	}
	m.Predictions.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("label", label),
			attribute.String("outcome", outcome),
		),
	)
	m.Confidence.Record(ctx, confidence)
}

// RecordHandler records one handler execution. Satisfies the dispatch table's
// Recorder interface.
func (m *Metrics) RecordHandler(ctx context.Context, label string, elapsed time.Duration) {
	m.HandlerDuration.Record(ctx, elapsed.Seconds(),
		metric.WithAttributes(attribute.String("label", label)),
	)
}

// RecordGeneration records the outcome of one intent's template expansion:
// the emitted example count plus a failure increment per discard reason.
func (m *Metrics) RecordGeneration(ctx context.Context, intentLabel, policy string, examples, missingEntity, duplicate int) {
	m.GeneratedExamples.Add(ctx, int64(examples),
		metric.WithAttributes(
			attribute.String("intent", intentLabel),
			attribute.String("policy", policy),
		),
	)
	if missingEntity > 0 {
		m.GenerationFailures.Add(ctx, int64(missingEntity),
			metric.WithAttributes(
				attribute.String("intent", intentLabel),
				attribute.String("reason", "missing_entity"),
			),
		)
	}
	if duplicate > 0 {
		m.GenerationFailures.Add(ctx, int64(duplicate),
			metric.WithAttributes(
				attribute.String("intent", intentLabel),
				attribute.String("reason", "duplicate"),
			),
		)
	}
}

// RecordProviderError records a collaborator API error.
func (m *Metrics) RecordProviderError(ctx context.Context, provider, kind string) {
	m.ProviderErrors.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("kind", kind),
		),
	)
}
