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
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// RecorderOption defines functional options for [Recorder] configuration.
type RecorderOption func(*Recorder)

// WithMeterProvider supplies a custom OpenTelemetry [metric.MeterProvider].
// The recorder then creates its instruments on that provider and skips
// built-in provider initialization entirely. Provider options such as
// [WithPrometheus] are ignored, and [Recorder.Shutdown] will not shut the
// provider down; its lifecycle stays with the caller.
//
// Example:
//
//	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
//	rec, err := conneg.New(conneg.WithMeterProvider(mp))
func WithMeterProvider(provider metric.MeterProvider) RecorderOption {
	return func(r *Recorder) {
		r.meterProvider = provider
		r.customMeterProvider = true
	}
}

// WithGlobalMeterProvider registers the recorder's meter provider as the
// global OpenTelemetry meter provider via otel.SetMeterProvider. Off by
// default so multiple recorders can coexist in one process.
func WithGlobalMeterProvider() RecorderOption {
	return func(r *Recorder) {
		r.registerGlobal = true
	}
}

// WithPrometheus selects the Prometheus provider and optionally self-hosts
// a scrape endpoint. With a non-empty addr the recorder starts its own
// HTTP server there serving path; with an empty addr, mount
// [Recorder.Handler] on an existing mux instead.
//
// Example:
//
//	rec := conneg.MustNew(conneg.WithPrometheus(":9090", "/metrics"))
//	defer rec.Shutdown(context.Background())
func WithPrometheus(addr, path string) RecorderOption {
	return func(r *Recorder) {
		r.provider = PrometheusProvider
		r.metricsAddr = addr
		if path != "" {
			r.metricsPath = path
		}
	}
}

// WithOTLP selects the OTLP HTTP provider pushing to the given endpoint.
// An empty endpoint falls back to the exporter's environment-variable
// defaults.
func WithOTLP(endpoint string) RecorderOption {
	return func(r *Recorder) {
		r.provider = OTLPProvider
		r.otlpEndpoint = endpoint
	}
}

// WithStdout selects the stdout provider, printing metrics periodically.
// Intended for development and tests.
func WithStdout() RecorderOption {
	return func(r *Recorder) {
		r.provider = StdoutProvider
	}
}

// WithExportInterval sets the export interval for the OTLP and stdout
// providers. Ignored by the pull-based Prometheus provider.
func WithExportInterval(interval time.Duration) RecorderOption {
	return func(r *Recorder) {
		if interval > 0 {
			r.exportInterval = interval
		}
	}
}

// WithServiceName sets the service.name attribute stamped on all metrics.
func WithServiceName(name string) RecorderOption {
	return func(r *Recorder) {
		if name != "" {
			r.serviceName = name
		}
	}
}

// WithServiceVersion sets the service.version attribute stamped on all
// metrics.
func WithServiceVersion(version string) RecorderOption {
	return func(r *Recorder) {
		if version != "" {
			r.serviceVersion = version
		}
	}
}

// WithLogger routes internal operational events to the given slog.Logger.
// Shorthand for WithEventHandler(DefaultEventHandler(logger)).
func WithLogger(logger *slog.Logger) RecorderOption {
	return func(r *Recorder) {
		r.eventHandler = DefaultEventHandler(logger)
	}
}

// WithEventHandler sets a custom handler for internal operational events.
//
// Example:
//
//	conneg.WithEventHandler(func(e conneg.Event) {
//	    if e.Type == conneg.EventError {
//	        alerting.Notify(e.Message)
//	    }
//	})
func WithEventHandler(handler EventHandler) RecorderOption {
	return func(r *Recorder) {
		if handler != nil {
			r.eventHandler = handler
		}
	}
}
