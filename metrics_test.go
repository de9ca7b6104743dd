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
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// collectOutcomes reads the negotiation counter from a manual reader and
// aggregates data points by outcome attribute.
func collectOutcomes(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	outcomes := map[string]int64{}
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != "conneg_negotiations_total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "negotiation metric should be an int64 sum")
			for _, dp := range sum.DataPoints {
				if v, found := dp.Attributes.Value(attribute.Key("outcome")); found {
					outcomes[v.AsString()] += dp.Value
				}
			}
		}
	}
	return outcomes
}

func TestRecorderCountsOutcomes(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	rec, err := New(
		WithMeterProvider(provider),
		WithServiceName("negotiation-test"),
		WithServiceVersion("v0.0.1"),
	)
	require.NoError(t, err)

	ctx := context.Background()
	rec.RecordNegotiation(ctx, OutcomeMatch, "application/json")
	rec.RecordNegotiation(ctx, OutcomeMatch, "text/html")
	rec.RecordNegotiation(ctx, OutcomeDefault, "text/html")
	rec.RecordNegotiation(ctx, OutcomeNotAcceptable, "")
	rec.RecordNegotiation(ctx, OutcomeMalformed, "")

	outcomes := collectOutcomes(t, reader)
	assert.Equal(t, int64(2), outcomes["match"])
	assert.Equal(t, int64(1), outcomes["default"])
	assert.Equal(t, int64(1), outcomes["not_acceptable"])
	assert.Equal(t, int64(1), outcomes["malformed"])
}

func TestResponderRecordsOutcomes(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	rec, err := New(WithMeterProvider(provider))
	require.NoError(t, err)

	rs := NewResponder(WithRecorder(rec))
	offers := MustOffers(HTML("x"), JSON("y"))

	send := func(accept string) {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		if accept != "" {
			req.Header.Set("Accept", accept)
		}
		_ = rs.Respond(httptest.NewRecorder(), req, http.StatusOK, offers)
	}

	send("")                 // default
	send("application/json") // match
	send("image/png")        // not acceptable
	send("bad\x00header")    // malformed

	outcomes := collectOutcomes(t, reader)
	assert.Equal(t, int64(1), outcomes["default"])
	assert.Equal(t, int64(1), outcomes["match"])
	assert.Equal(t, int64(1), outcomes["not_acceptable"])
	assert.Equal(t, int64(1), outcomes["malformed"])
}

func TestNilRecorderIsNoop(t *testing.T) {
	t.Parallel()

	var rec *Recorder
	assert.NotPanics(t, func() {
		rec.RecordNegotiation(context.Background(), OutcomeMatch, "text/html")
	})
	assert.Nil(t, rec.Handler())
	assert.NoError(t, rec.Shutdown(context.Background()))

	// Responder without a recorder stays functional.
	rs := NewResponder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	w := httptest.NewRecorder()
	require.NoError(t, rs.Respond(w, req, http.StatusOK, MustOffers(Text("ok"))))
	assert.Equal(t, "ok", w.Body.String())
}

func TestRecorderPrometheusProvider(t *testing.T) {
	t.Parallel()

	rec, err := New(
		WithPrometheus("", "/metrics"), // no self-hosted server
		WithServiceName("prom-test"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rec.Shutdown(context.Background()) })

	assert.Equal(t, PrometheusProvider, rec.Provider())
	assert.Equal(t, "prom-test", rec.ServiceName())
	assert.Empty(t, rec.ServerAddress())
	require.NotNil(t, rec.Handler())

	rec.RecordNegotiation(context.Background(), OutcomeMatch, "application/json")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	rec.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "conneg_negotiations")
}

func TestRecorderStdoutProvider(t *testing.T) {
	t.Parallel()

	rec, err := New(WithStdout())
	require.NoError(t, err)
	t.Cleanup(func() { _ = rec.Shutdown(context.Background()) })

	assert.Equal(t, StdoutProvider, rec.Provider())
	assert.Nil(t, rec.Handler(), "stdout provider has no scrape handler")
}

func TestRecorderEventHandler(t *testing.T) {
	t.Parallel()

	var events []Event
	rec, err := New(
		WithPrometheus("", ""),
		WithEventHandler(func(e Event) { events = append(events, e) }),
		WithGlobalMeterProvider(), // exercises the registration debug event
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rec.Shutdown(context.Background()) })

	require.NotEmpty(t, events)
	assert.Equal(t, EventDebug, events[0].Type)
}

func TestDefaultEventHandler(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() {
		DefaultEventHandler(nil)(Event{Type: EventError, Message: "dropped"})
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := DefaultEventHandler(logger)
	for _, typ := range []EventType{EventError, EventWarning, EventInfo, EventDebug} {
		handler(Event{Type: typ, Message: "event", Args: []any{"k", "v"}})
	}
}

func TestRecorderCustomNilProvider(t *testing.T) {
	t.Parallel()

	_, err := New(WithMeterProvider(nil))
	assert.Error(t, err)

	assert.Panics(t, func() {
		MustNew(WithMeterProvider(nil))
	})
}
