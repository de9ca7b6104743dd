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
	"errors"
	"fmt"
	"net/http"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// initializeProvider initializes the metrics provider based on
// configuration.
func (r *Recorder) initializeProvider() error {
	// A user-provided meter provider bypasses built-in provider setup.
	if r.customMeterProvider {
		if r.meterProvider == nil {
			return fmt.Errorf("custom meter provider is nil")
		}
		r.emit(EventDebug, "using custom meter provider")
		r.meter = r.meterProvider.Meter(meterName)
		return r.initializeMetrics()
	}

	switch r.provider {
	case PrometheusProvider:
		return r.initPrometheusProvider()
	case OTLPProvider:
		return r.initOTLPProvider()
	case StdoutProvider:
		return r.initStdoutProvider()
	default:
		return fmt.Errorf("unsupported metrics provider: %s", r.provider)
	}
}

// initPrometheusProvider initializes the Prometheus metrics provider.
// A dedicated registry avoids collisions with the global default registry.
func (r *Recorder) initPrometheusProvider() error {
	r.prometheusRegistry = promclient.NewRegistry()

	exporter, err := prometheus.New(
		prometheus.WithRegisterer(r.prometheusRegistry),
	)
	if err != nil {
		return fmt.Errorf("creating Prometheus exporter: %w", err)
	}

	r.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)
	r.prometheusHandler = promhttp.HandlerFor(
		r.prometheusRegistry,
		promhttp.HandlerOpts{},
	)

	r.finishProviderSetup("prometheus")
	if err := r.initializeMetrics(); err != nil {
		return err
	}

	if r.metricsAddr != "" {
		r.startMetricsServer()
	}

	return nil
}

// initOTLPProvider initializes the OTLP HTTP metrics provider.
func (r *Recorder) initOTLPProvider() error {
	opts := []otlpmetrichttp.Option{}
	if r.otlpEndpoint != "" {
		endpoint, insecure := splitOTLPEndpoint(r.otlpEndpoint)
		opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		if insecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
	}

	exporter, err := otlpmetrichttp.New(context.Background(), opts...)
	if err != nil {
		return fmt.Errorf("creating OTLP exporter: %w", err)
	}

	r.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(
			exporter,
			sdkmetric.WithInterval(r.exportInterval),
		)),
	)

	r.finishProviderSetup("otlp")
	return r.initializeMetrics()
}

// initStdoutProvider initializes the stdout metrics provider.
func (r *Recorder) initStdoutProvider() error {
	exporter, err := stdoutmetric.New()
	if err != nil {
		return fmt.Errorf("creating stdout exporter: %w", err)
	}

	r.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(
			exporter,
			sdkmetric.WithInterval(r.exportInterval),
		)),
	)

	r.finishProviderSetup("stdout")
	return r.initializeMetrics()
}

// finishProviderSetup applies global registration and creates the meter.
func (r *Recorder) finishProviderSetup(name string) {
	if r.registerGlobal {
		r.emit(EventDebug, "setting global meter provider", "provider", name)
		otel.SetMeterProvider(r.meterProvider)
	}
	r.meter = r.meterProvider.Meter(meterName)
}

// startMetricsServer self-hosts the Prometheus scrape endpoint.
func (r *Recorder) startMetricsServer() {
	mux := http.NewServeMux()
	mux.Handle(r.metricsPath, r.prometheusHandler)

	r.metricsServer = &http.Server{
		Addr:              r.metricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		r.emit(EventInfo, "metrics server started", "addr", r.metricsAddr, "path", r.metricsPath)
		if err := r.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.emit(EventError, "metrics server failed", "addr", r.metricsAddr, "error", err)
		}
	}()
}

// splitOTLPEndpoint strips a scheme prefix from an endpoint and reports
// whether plain HTTP was requested.
func splitOTLPEndpoint(endpoint string) (string, bool) {
	const httpPrefix, httpsPrefix = "http://", "https://"
	switch {
	case len(endpoint) > len(httpPrefix) && endpoint[:len(httpPrefix)] == httpPrefix:
		return endpoint[len(httpPrefix):], true
	case len(endpoint) > len(httpsPrefix) && endpoint[:len(httpsPrefix)] == httpsPrefix:
		return endpoint[len(httpsPrefix):], false
	default:
		return endpoint, false
	}
}
