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

// Package conneg provides HTTP content negotiation and typed response
// resolution.
//
// A handler declares an ordered set of representations it is willing to
// produce. The package matches that set against the client's Accept header
// (or a query-parameter override) and selects the best representation using
// quality values, specificity, and declaration order. Only the selected
// representation's payload is ever produced; unchosen representations stay
// unrealized, so expensive encodings or I/O-backed payloads cost nothing
// when the client did not ask for them.
//
// Basic usage:
//
//	offers := conneg.MustOffers(
//	    conneg.HTML("<h1>Dashboard</h1>"),
//	    conneg.JSON(map[string]any{"title": "Dashboard"}),
//	)
//
//	rsp := conneg.NewResponder()
//	http.HandleFunc("/dashboard", func(w http.ResponseWriter, r *http.Request) {
//	    rsp.Respond(w, r, http.StatusOK, offers)
//	})
//
// With no Accept header the first declared offer wins, so the declaration
// order above makes HTML the default. A request with "Accept:
// application/json" receives the JSON representation instead, and a request
// whose preferences match none of the offers receives a 406 rendered as RFC
// 9457 problem details.
//
// # Negotiation rules
//
// Accept entries are ordered by quality value (descending), then by
// specificity (exact type/subtype beats a subtype wildcard, which beats
// */*), then by their position in the header. Media ranges with malformed
// parameters are skipped rather than failing the whole header; only a
// structurally unparseable header is rejected. Quality values outside
// [0, 1] are clamped into range.
//
// The lower-level pieces ([ParseAccept], [Negotiate], [Resolve]) are plain
// functions with no shared state and are safe for unlimited concurrent use.
//
// # Observability
//
// An optional [Recorder] exports negotiation outcome counters through
// OpenTelemetry, with Prometheus, OTLP, and stdout providers. Attach it to a
// [Responder] with [WithRecorder]. Responders without a recorder skip all
// instrumentation.
//
// The companion package rivaas.dev/conneg/route holds the route attribute
// registry and a small dispatcher that combines both.
package conneg
