// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package conneg

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName identifies this package's OpenTelemetry meter.
const meterName = "rivaas.dev/conneg"

// Outcome classifies how a negotiation ended, used as a metric attribute.
type Outcome string

const (
	// OutcomeMatch means an accept entry matched an offered representation.
	OutcomeMatch Outcome = "match"
	// OutcomeDefault means no preference was stated and the first declared
	// offer was served.
	OutcomeDefault Outcome = "default"
	// OutcomeNotAcceptable means no offered representation was compatible.
	OutcomeNotAcceptable Outcome = "not_acceptable"
	// OutcomeMalformed means the Accept input could not be parsed at all.
	OutcomeMalformed Outcome = "malformed"
)

// EventType represents the severity of an internal operational event.
type EventType int

const (
	// EventError indicates an error event (e.g., failed to start the
	// metrics endpoint).
	EventError EventType = iota
	// EventWarning indicates a warning event.
	EventWarning
	// EventInfo indicates an informational event (e.g., metrics server
	// started).
	EventInfo
	// EventDebug indicates a debug event.
	EventDebug
)

// Event represents an internal operational event from the metrics layer.
type Event struct {
	Type    EventType
	Message string
	Args    []any // slog-style key-value pairs
}

// EventHandler processes internal operational events. Implementations can
// log events, forward them to monitoring systems, or drop them.
type EventHandler func(Event)

// DefaultEventHandler returns an EventHandler that logs events to the
// provided slog.Logger. A nil logger yields a no-op handler.
func DefaultEventHandler(logger *slog.Logger) EventHandler {
	if logger == nil {
		return func(Event) {}
	}

	return func(e Event) {
		switch e.Type {
		case EventError:
			logger.Error(e.Message, e.Args...)
		case EventWarning:
			logger.Warn(e.Message, e.Args...)
		case EventInfo:
			logger.Info(e.Message, e.Args...)
		case EventDebug:
			logger.Debug(e.Message, e.Args...)
		}
	}
}

// Provider represents the available metrics providers.
type Provider string

const (
	// PrometheusProvider uses the Prometheus exporter (default).
	PrometheusProvider Provider = "prometheus"
	// OTLPProvider uses the OTLP HTTP exporter.
	OTLPProvider Provider = "otlp"
	// StdoutProvider uses the stdout exporter (development/testing).
	StdoutProvider Provider = "stdout"
)

// Recorder exports negotiation outcome metrics through OpenTelemetry.
// All methods are safe for concurrent use, and all methods are nil-safe so
// an unconfigured (nil) Recorder is a valid no-op.
//
// By default the Recorder does NOT set the global OpenTelemetry meter
// provider; use [WithGlobalMeterProvider] for global registration. This
// lets multiple Recorder instances coexist in one process.
type Recorder struct {
	provider            Provider
	meter               metric.Meter
	meterProvider       metric.MeterProvider
	customMeterProvider bool
	registerGlobal      bool

	serviceName        string
	serviceVersion     string
	serviceNameAttr    attribute.KeyValue
	serviceVersionAttr attribute.KeyValue

	prometheusRegistry *promclient.Registry
	prometheusHandler  http.Handler
	metricsAddr        string
	metricsPath        string
	metricsServer      *http.Server

	otlpEndpoint   string
	exportInterval time.Duration

	eventHandler EventHandler

	negotiations metric.Int64Counter
}

// New creates a Recorder with the given options. Without a provider option
// it defaults to Prometheus with no self-hosted endpoint; scrape it by
// mounting [Recorder.Handler] on an existing mux.
func New(opts ...RecorderOption) (*Recorder, error) {
	r := &Recorder{
		provider:       PrometheusProvider,
		serviceName:    "conneg",
		serviceVersion: "unknown",
		metricsPath:    "/metrics",
		exportInterval: 30 * time.Second,
		eventHandler:   func(Event) {},
	}

	for _, opt := range opts {
		opt(r)
	}

	r.serviceNameAttr = attribute.String("service.name", r.serviceName)
	r.serviceVersionAttr = attribute.String("service.version", r.serviceVersion)

	if err := r.initializeProvider(); err != nil {
		return nil, fmt.Errorf("initializing metrics provider: %w", err)
	}

	return r, nil
}

// MustNew is like [New] but panics on error. Intended for startup paths
// where a misconfigured recorder should stop the process.
func MustNew(opts ...RecorderOption) *Recorder {
	r, err := New(opts...)
	if err != nil {
		panic("conneg: " + err.Error())
	}
	return r
}

// initializeMetrics creates the package's instruments on the configured
// meter.
func (r *Recorder) initializeMetrics() error {
	var err error
	r.negotiations, err = r.meter.Int64Counter(
		"conneg_negotiations_total",
		metric.WithDescription("Content negotiation outcomes by result and selected media type"),
		metric.WithUnit("{negotiation}"),
	)
	if err != nil {
		return fmt.Errorf("creating negotiation counter: %w", err)
	}
	return nil
}

// RecordNegotiation counts one negotiation outcome. mediaType is the
// selected representation's media type, empty for failure outcomes.
// Safe to call on a nil Recorder.
func (r *Recorder) RecordNegotiation(ctx context.Context, outcome Outcome, mediaType string) {
	if r == nil || r.negotiations == nil {
		return
	}

	attrs := make([]attribute.KeyValue, 0, 4)
	attrs = append(attrs,
		r.serviceNameAttr,
		r.serviceVersionAttr,
		attribute.String("outcome", string(outcome)),
	)
	if mediaType != "" {
		attrs = append(attrs, attribute.String("media_type", mediaType))
	}

	r.negotiations.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// Handler returns the Prometheus scrape handler, or nil when the recorder
// does not use the Prometheus provider.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return nil
	}
	return r.prometheusHandler
}

// Provider returns the configured metrics provider.
func (r *Recorder) Provider() Provider {
	if r == nil {
		return ""
	}
	return r.provider
}

// ServiceName returns the configured service name.
func (r *Recorder) ServiceName() string {
	if r == nil {
		return ""
	}
	return r.serviceName
}

// ServiceVersion returns the configured service version.
func (r *Recorder) ServiceVersion() string {
	if r == nil {
		return ""
	}
	return r.serviceVersion
}

// ServerAddress returns the self-hosted metrics endpoint address, empty if
// none was configured.
func (r *Recorder) ServerAddress() string {
	if r == nil {
		return ""
	}
	return r.metricsAddr
}

// Shutdown stops the self-hosted metrics endpoint (if any) and shuts down
// a recorder-owned meter provider. User-supplied meter providers are left
// running; their lifecycle belongs to the caller.
func (r *Recorder) Shutdown(ctx context.Context) error {
	if r == nil {
		return nil
	}

	var firstErr error
	if r.metricsServer != nil {
		if err := r.metricsServer.Shutdown(ctx); err != nil {
			firstErr = fmt.Errorf("shutting down metrics server: %w", err)
		}
		r.metricsServer = nil
	}

	if !r.customMeterProvider {
		if mp, ok := r.meterProvider.(interface{ Shutdown(context.Context) error }); ok {
			if err := mp.Shutdown(ctx); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("shutting down meter provider: %w", err)
			}
		}
	}

	return firstErr
}

// emit sends an operational event to the configured handler.
func (r *Recorder) emit(t EventType, msg string, args ...any) {
	if r.eventHandler != nil {
		r.eventHandler(Event{Type: t, Message: msg, Args: args})
	}
}
